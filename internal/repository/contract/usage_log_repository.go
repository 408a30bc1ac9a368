package contract

import (
	"context"
	"time"

	"rentora-be/internal/entity"
	"rentora-be/internal/repository/specification"
)

type UsageLogRepository interface {
	// Append writes an immutable usage-log row. Entries are never updated.
	Append(ctx context.Context, entry *entity.UsageLogEntry) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.UsageLogEntry, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// SumCount totals the count column over matching rows; a single entry
	// may record several consumed units.
	SumCount(ctx context.Context, specs ...specification.Specification) (int64, error)

	// AggregateByFeatureAndDay feeds the monthly report sweep.
	AggregateByFeatureAndDay(ctx context.Context, from, to time.Time) ([]*entity.UsageStat, error)

	// PurgeOlderThan is the retention cleanup; returns rows removed.
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
