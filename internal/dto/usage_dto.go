// FILE: internal/dto/usage_dto.go
// DTOs for usage gating and recording
package dto

import (
	"time"

	"rentora-be/internal/entity"

	"github.com/google/uuid"
)

// GateDecision is the result of checking a feature against the user's plan.
type GateDecision struct {
	HasAccess      bool            `json:"has_access"`
	IsGated        bool            `json:"is_gated"`
	GateType       entity.GateType `json:"gate_type,omitempty"`
	CurrentUsage   int             `json:"current_usage"`
	MaxLimit       int             `json:"max_limit"` // -1 = unlimited
	Remaining      int             `json:"remaining"`
	SubscriptionId *uuid.UUID      `json:"subscription_id,omitempty"`
	PlanId         *uuid.UUID      `json:"plan_id,omitempty"`
}

// CheckUsageRequest is the body of POST /api/usage/check.
type CheckUsageRequest struct {
	Feature string `json:"feature" validate:"required"`
	Count   int    `json:"count" validate:"omitempty,min=1"`
}

// RecordUsageRequest is the body of POST /api/usage/record.
type RecordUsageRequest struct {
	Feature        string                 `json:"feature" validate:"required"`
	ResourceId     *uuid.UUID             `json:"resource_id,omitempty"`
	Action         string                 `json:"action" validate:"required"`
	Count          int                    `json:"count" validate:"omitempty,min=1"`
	Override       bool                   `json:"override,omitempty"`
	OverrideReason string                 `json:"override_reason,omitempty"`
	IPAddress      string                 `json:"-"`
	UserAgent      string                 `json:"-"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// FeatureUsage is one row of the usage-status response.
type FeatureUsage struct {
	Feature   string          `json:"feature"`
	Used      int             `json:"used"`
	Limit     int             `json:"limit"` // -1 = unlimited
	Remaining int             `json:"remaining"`
	GateType  entity.GateType `json:"gate_type,omitempty"`
}

// UsageStatusResponse is returned by GET /api/user/usage-status.
type UsageStatusResponse struct {
	Plan             PlanInfo       `json:"plan"`
	Features         []FeatureUsage `json:"features"`
	PeriodEnd        *time.Time     `json:"period_end,omitempty"`
	UpgradeAvailable bool           `json:"upgrade_available"`
}

type PlanInfo struct {
	Id   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// UsageStatRow is a per-feature, per-day aggregate for reports.
type UsageStatRow struct {
	Feature string    `json:"feature"`
	Day     time.Time `json:"day"`
	Total   int       `json:"total"`
}
