package unitofwork

import (
	"context"

	"rentora-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	SubscriptionRepository() contract.SubscriptionRepository
	UsageLogRepository() contract.UsageLogRepository
	PropertyRepository() contract.PropertyRepository
	VisitRepository() contract.VisitRepository
}
