package contract

import (
	"context"

	"rentora-be/internal/entity"
	"rentora-be/internal/repository/specification"
)

// PropertyRepository backs the recompute-on-read usage path for users who
// never had a subscription row.
type PropertyRepository interface {
	Create(ctx context.Context, property *entity.Property) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Property, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type VisitRepository interface {
	Create(ctx context.Context, visit *entity.Visit) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Visit, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
