// FILE: internal/dto/subscription_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateSubscriptionRequest starts a trial or paid subscription.
type CreateSubscriptionRequest struct {
	PlanId            uuid.UUID `json:"plan_id" validate:"required"`
	TrialDaysOverride *int      `json:"trial_days_override,omitempty" validate:"omitempty,min=0"`
	AutoRenew         *bool     `json:"auto_renew,omitempty"`
	PaymentMethodRef  string    `json:"payment_method_ref,omitempty"`
}

// UpdateSubscriptionPatch is a partial update; nil fields are left untouched.
type UpdateSubscriptionPatch struct {
	Status            *string `json:"status,omitempty"`
	AutoRenew         *bool   `json:"auto_renew,omitempty"`
	CancelAtPeriodEnd *bool   `json:"cancel_at_period_end,omitempty"`
	PaymentId         *string `json:"payment_id,omitempty"`
}

// IsEmpty reports whether the patch carries no fields at all.
func (p *UpdateSubscriptionPatch) IsEmpty() bool {
	return p.Status == nil && p.AutoRenew == nil && p.CancelAtPeriodEnd == nil && p.PaymentId == nil
}

type CancelSubscriptionRequest struct {
	Immediate bool `json:"immediate"`
}

type SubscriptionResponse struct {
	Id                uuid.UUID  `json:"id"`
	UserId            uuid.UUID  `json:"user_id"`
	PlanId            uuid.UUID  `json:"plan_id"`
	PlanName          string     `json:"plan_name,omitempty"`
	Status            string     `json:"status"`
	Price             float64    `json:"price"`
	Currency          string     `json:"currency"`
	BillingCycle      string     `json:"billing_cycle"`
	StartDate         time.Time  `json:"start_date"`
	EndDate           time.Time  `json:"end_date"`
	TrialEndDate      *time.Time `json:"trial_end_date,omitempty"`
	AutoRenew         bool       `json:"auto_renew"`
	CancelAtPeriodEnd bool       `json:"cancel_at_period_end"`
	CancelledDate     *time.Time `json:"cancelled_date,omitempty"`
}

// UpsertPlanRequest is the admin payload for creating or updating a plan.
type UpsertPlanRequest struct {
	Name                    string  `json:"name" validate:"required"`
	Slug                    string  `json:"slug" validate:"required"`
	Description             string  `json:"description"`
	Tagline                 string  `json:"tagline"`
	Price                   float64 `json:"price" validate:"min=0"`
	Currency                string  `json:"currency" validate:"omitempty,len=3"`
	BillingCycle            string  `json:"billing_cycle" validate:"required,oneof=daily weekly monthly quarterly annually"`
	TrialDays               int     `json:"trial_days" validate:"min=0"`
	MaxProperties           int     `json:"max_properties" validate:"min=-1"`
	MaxVisitsPerMonth       int     `json:"max_visits_per_month" validate:"min=-1"`
	MaxBoostsPerMonth       int     `json:"max_boosts_per_month" validate:"min=-1"`
	MaxMediaPerProperty     int     `json:"max_media_per_property" validate:"min=-1"`
	MaxAmenitiesPerProperty int     `json:"max_amenities_per_property" validate:"min=-1"`
	BoostEnabled            bool    `json:"boost_enabled"`
	PremiumSupport          bool    `json:"premium_support"`
	AdvancedAnalytics       bool    `json:"advanced_analytics"`
	BulkOperations          bool    `json:"bulk_operations"`
	IsMostPopular           bool    `json:"is_most_popular"`
	IsVisible               bool    `json:"is_visible"`
	SortOrder               int     `json:"sort_order"`
}

// PlanResponse is the public pricing-page view of a plan.
type PlanResponse struct {
	Id            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Tagline       string    `json:"tagline"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	Currency      string    `json:"currency"`
	BillingCycle  string    `json:"billing_cycle"`
	TrialDays     int       `json:"trial_days"`
	IsMostPopular bool      `json:"is_most_popular"`
	Limits        PlanLimitsDTO `json:"limits"`
	Flags         PlanFlagsDTO  `json:"flags"`
}

type PlanLimitsDTO struct {
	MaxProperties           int `json:"max_properties"`
	MaxVisitsPerMonth       int `json:"max_visits_per_month"`
	MaxBoostsPerMonth       int `json:"max_boosts_per_month"`
	MaxMediaPerProperty     int `json:"max_media_per_property"`
	MaxAmenitiesPerProperty int `json:"max_amenities_per_property"`
}

type PlanFlagsDTO struct {
	BoostEnabled      bool `json:"boost_enabled"`
	PremiumSupport    bool `json:"premium_support"`
	AdvancedAnalytics bool `json:"advanced_analytics"`
	BulkOperations    bool `json:"bulk_operations"`
}

// DashboardSummary aggregates subscription counts for the admin dashboard.
type DashboardSummary struct {
	ActiveSubscriptions int     `json:"active_subscriptions"`
	TrialSubscriptions  int     `json:"trial_subscriptions"`
	PastDue             int     `json:"past_due"`
	MonthlyRevenue      float64 `json:"monthly_revenue"`
}
