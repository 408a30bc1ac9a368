package entity

import (
	"time"

	"github.com/google/uuid"
)

// UsageLogEntry is an immutable append-only record of a gated action.
// SubscriptionId is nil for free-plan users, who have no subscription row.
type UsageLogEntry struct {
	Id             uuid.UUID
	SubscriptionId *uuid.UUID
	UserId         uuid.UUID
	Feature        Feature
	ResourceId     *uuid.UUID
	Action         string
	Count          int
	WasGated       bool
	GateType       GateType
	OverrideReason *string
	IPAddress      string
	UserAgent      string
	Metadata       map[string]interface{}
	CreatedAt      time.Time
}

// UsageStat is a per-feature, per-day aggregate consumed by reports.
type UsageStat struct {
	Feature Feature
	Day     time.Time
	Total   int
}
