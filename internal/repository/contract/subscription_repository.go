package contract

import (
	"context"
	"time"

	"rentora-be/internal/entity"
	"rentora-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SubscriptionRepository interface {
	// Plans
	CreatePlan(ctx context.Context, plan *entity.SubscriptionPlan) error
	UpdatePlan(ctx context.Context, plan *entity.SubscriptionPlan) error
	FindOnePlan(ctx context.Context, specs ...specification.Specification) (*entity.SubscriptionPlan, error)
	FindAllPlans(ctx context.Context, specs ...specification.Specification) ([]*entity.SubscriptionPlan, error)
	FindPlanBySlug(ctx context.Context, slug string) (*entity.SubscriptionPlan, error)

	// Subscriptions
	CreateSubscription(ctx context.Context, subscription *entity.Subscription) error
	UpdateSubscription(ctx context.Context, subscription *entity.Subscription) error
	FindOneSubscription(ctx context.Context, specs ...specification.Specification) (*entity.Subscription, error)
	FindAllSubscriptions(ctx context.Context, specs ...specification.Specification) ([]*entity.Subscription, error)
	CountSubscriptions(ctx context.Context, specs ...specification.Specification) (int64, error)

	// Counter mutations. IncrementUsage applies an unconditional atomic
	// delta; TryIncrementIfBelowLimit only increments while the counter
	// stays below limit and reports whether a row was updated — the
	// opt-in hardening against the check-then-act race.
	IncrementUsage(ctx context.Context, subscriptionId uuid.UUID, feature entity.Feature, delta int) error
	TryIncrementIfBelowLimit(ctx context.Context, subscriptionId uuid.UUID, feature entity.Feature, delta, limit int) (bool, error)
	ResetUsageCounters(ctx context.Context, subscriptionId uuid.UUID, lastReset, nextReset time.Time) error
	TouchLastNotified(ctx context.Context, subscriptionId uuid.UUID) error

	// Events (append-only)
	AppendEvent(ctx context.Context, event *entity.SubscriptionEvent) error
	FindEvents(ctx context.Context, specs ...specification.Specification) ([]*entity.SubscriptionEvent, error)

	// Dashboard / Admin Stats
	SumActiveRevenue(ctx context.Context) (float64, error)
	CountByStatus(ctx context.Context, status entity.SubscriptionStatus) (int, error)
}
