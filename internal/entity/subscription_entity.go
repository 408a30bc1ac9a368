package entity

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string
type BillingCycle string
type SubscriptionEventType string

const (
	SubscriptionStatusTrial     SubscriptionStatus = "trial"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusPastDue   SubscriptionStatus = "past_due"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"

	BillingCycleDaily     BillingCycle = "daily"
	BillingCycleWeekly    BillingCycle = "weekly"
	BillingCycleMonthly   BillingCycle = "monthly"
	BillingCycleQuarterly BillingCycle = "quarterly"
	BillingCycleAnnually  BillingCycle = "annually"

	EventSubscriptionCreated       SubscriptionEventType = "SUBSCRIPTION_CREATED"
	EventSubscriptionRenewed       SubscriptionEventType = "SUBSCRIPTION_RENEWED"
	EventSubscriptionCancelled     SubscriptionEventType = "SUBSCRIPTION_CANCELLED"
	EventSubscriptionStatusChanged SubscriptionEventType = "SUBSCRIPTION_STATUS_CHANGED"
)

// FreePlanSlug is the reserved catalog slug resolved for users without an
// active subscription.
const FreePlanSlug = "free"

type SubscriptionPlan struct {
	Id           uuid.UUID
	Name         string
	Slug         string
	Description  string
	Tagline      string
	Price        float64
	Currency     string
	BillingCycle BillingCycle
	TrialDays    int
	// Quota limits. -1 = unlimited, 0 = disabled.
	MaxProperties           int
	MaxVisitsPerMonth       int
	MaxBoostsPerMonth       int
	MaxMediaPerProperty     int
	MaxAmenitiesPerProperty int
	// Binary feature flags
	BoostEnabled      bool
	PremiumSupport    bool
	AdvancedAnalytics bool
	BulkOperations    bool
	// Display Settings
	IsMostPopular bool
	IsVisible     bool
	IsActive      bool
	SortOrder     int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Subscription is the per-user lifecycle record. Price and BillingCycle are
// copied from the plan at purchase time (price lock); quota limits are NOT
// snapshotted — gating always re-joins to the live plan row, so a plan limit
// change retroactively applies to existing subscribers.
type Subscription struct {
	Id           uuid.UUID
	UserId       uuid.UUID
	PlanId       uuid.UUID
	Price        float64
	Currency     string
	BillingCycle BillingCycle

	Status            SubscriptionStatus
	StartDate         time.Time
	EndDate           time.Time
	TrialEndDate      *time.Time
	AutoRenew         bool
	CancelAtPeriodEnd bool
	CancelledDate     *time.Time

	// Usage counters for the current period
	PropertiesUsed int
	VisitsUsed     int
	BoostsUsed     int
	MediaUsed      int
	AmenitiesUsed  int

	LastReset          time.Time
	NextReset          time.Time
	RenewalAttempts    int
	LastRenewalAttempt *time.Time
	LastNotifiedAt     *time.Time
	LastPaymentId      *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsCurrent reports whether the subscription grants access right now:
// trial or active, with the paid period not yet over.
func (s *Subscription) IsCurrent(now time.Time) bool {
	if s.Status != SubscriptionStatusTrial && s.Status != SubscriptionStatusActive {
		return false
	}
	return s.EndDate.After(now)
}

// SubscriptionEvent is the append-only audit trail of lifecycle transitions.
type SubscriptionEvent struct {
	Id             uuid.UUID
	SubscriptionId uuid.UUID
	UserId         uuid.UUID
	EventType      SubscriptionEventType
	Payload        map[string]interface{}
	CreatedAt      time.Time
}
