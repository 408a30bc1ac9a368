// FILE: internal/service/usage_service.go
// Usage gating and recording. Subscribers are gated against their live plan
// row and per-period counters; users without a subscription fall back to the
// free plan and have their usage recomputed from resource rows on every read.
package service

import (
	"context"
	"time"

	"rentora-be/internal/dto"
	"rentora-be/internal/entity"
	"rentora-be/internal/pkg/billingcycle"
	"rentora-be/internal/pkg/logger"
	"rentora-be/internal/repository/specification"
	"rentora-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// softGateRatio is the fraction of the limit at which a soft warning starts:
// once remaining quota drops to 20% or below, the decision carries a SOFT
// gate type while still granting access ungated.
const softGateRatio = 0.2

type IUsageService interface {
	CheckUsage(ctx context.Context, userId uuid.UUID, feature entity.Feature, count int) (*dto.GateDecision, error)
	RecordUsage(ctx context.Context, userId uuid.UUID, req *dto.RecordUsageRequest) (*dto.GateDecision, error)
	GetUsageStatus(ctx context.Context, userId uuid.UUID) (*dto.UsageStatusResponse, error)
	GetUsageStats(ctx context.Context, from, to time.Time) ([]*entity.UsageStat, error)
}

type usageService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewUsageService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IUsageService {
	return &usageService{
		uowFactory: uowFactory,
		logger:     log,
	}
}

// entitlement is the resolved gating context for one user: the plan the
// limits come from, and (for subscribers) the subscription whose counters
// track consumption. Subscription is nil on the free-plan fallback path.
type entitlement struct {
	subscription *entity.Subscription
	plan         *entity.SubscriptionPlan
}

// CheckUsage evaluates a feature against the user's plan without consuming
// quota. count is the number of units the caller intends to consume.
func (s *usageService) CheckUsage(ctx context.Context, userId uuid.UUID, feature entity.Feature, count int) (*dto.GateDecision, error) {
	if !feature.Valid() {
		return nil, &dto.ValidationError{Field: "feature", Message: "unknown feature " + string(feature)}
	}
	if count < 1 {
		count = 1
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	ent, err := s.resolveEntitlement(ctx, uow, userId)
	if err != nil {
		return nil, err
	}

	used, err := s.resolveUsage(ctx, uow, ent, userId, feature)
	if err != nil {
		return nil, err
	}

	return s.decide(ent, feature, used, count), nil
}

// RecordUsage consumes quota for a feature. A hard-gated request without an
// override is rejected with QuotaExceededError and still leaves an audit row
// (was_gated=true, no counter increment). Overrides bypass the gate but are
// recorded with the reason.
func (s *usageService) RecordUsage(ctx context.Context, userId uuid.UUID, req *dto.RecordUsageRequest) (*dto.GateDecision, error) {
	feature := entity.Feature(req.Feature)
	if !feature.Valid() {
		return nil, &dto.ValidationError{Field: "feature", Message: "unknown feature " + req.Feature}
	}
	count := req.Count
	if count < 1 {
		count = 1
	}
	if req.Override && req.OverrideReason == "" {
		return nil, &dto.ValidationError{Field: "override_reason", Message: "override requires a reason"}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	ent, err := s.resolveEntitlement(ctx, uow, userId)
	if err != nil {
		return nil, err
	}
	used, err := s.resolveUsage(ctx, uow, ent, userId, feature)
	if err != nil {
		return nil, err
	}
	decision := s.decide(ent, feature, used, count)

	if !decision.HasAccess && !req.Override {
		if err := s.appendLog(ctx, uow, ent, userId, feature, req, count, true, decision.GateType, nil); err != nil {
			s.logger.Warn("UsageService", "Failed to record gated attempt", map[string]interface{}{
				"user_id": userId.String(),
				"feature": string(feature),
				"error":   err.Error(),
			})
		}
		return decision, &dto.QuotaExceededError{
			Feature:   string(feature),
			Limit:     decision.MaxLimit,
			Used:      decision.CurrentUsage,
			Remaining: decision.Remaining,
		}
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if ent.subscription != nil {
		limit := feature.LimitOn(ent.plan)
		if req.Override || limit < 0 {
			if err := uow.SubscriptionRepository().IncrementUsage(ctx, ent.subscription.Id, feature, count); err != nil {
				return nil, err
			}
		} else {
			// Conditional increment closes the check-then-act window against
			// concurrent recorders.
			ok, err := uow.SubscriptionRepository().TryIncrementIfBelowLimit(ctx, ent.subscription.Id, feature, count, limit)
			if err != nil {
				return nil, err
			}
			if !ok {
				uow.Rollback()
				lost := s.decide(ent, feature, limit, count)
				if logErr := s.appendLog(ctx, uow, ent, userId, feature, req, count, true, entity.GateTypeHard, nil); logErr != nil {
					s.logger.Warn("UsageService", "Failed to record gated attempt", map[string]interface{}{
						"user_id": userId.String(),
						"feature": string(feature),
						"error":   logErr.Error(),
					})
				}
				return lost, &dto.QuotaExceededError{
					Feature:   string(feature),
					Limit:     limit,
					Used:      limit,
					Remaining: 0,
				}
			}
		}
	}

	var overrideReason *string
	wasGated := false
	gateType := entity.GateTypeNone
	if req.Override && !decision.HasAccess {
		wasGated = true
		gateType = decision.GateType
		overrideReason = &req.OverrideReason
	}
	if err := s.appendLog(ctx, uow, ent, userId, feature, req, count, wasGated, gateType, overrideReason); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	// Return the post-consumption view.
	return s.decide(ent, feature, used+count, 0), nil
}

// GetUsageStatus reports every feature's consumption against the user's plan.
func (s *usageService) GetUsageStatus(ctx context.Context, userId uuid.UUID) (*dto.UsageStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	ent, err := s.resolveEntitlement(ctx, uow, userId)
	if err != nil {
		return nil, err
	}

	features := make([]dto.FeatureUsage, 0, len(entity.AllFeatures()))
	for _, feature := range entity.AllFeatures() {
		used, err := s.resolveUsage(ctx, uow, ent, userId, feature)
		if err != nil {
			return nil, err
		}
		d := s.decide(ent, feature, used, 1)
		features = append(features, dto.FeatureUsage{
			Feature:   string(feature),
			Used:      d.CurrentUsage,
			Limit:     d.MaxLimit,
			Remaining: d.Remaining,
			GateType:  d.GateType,
		})
	}

	resp := &dto.UsageStatusResponse{
		Plan: dto.PlanInfo{
			Id:   ent.plan.Id,
			Name: ent.plan.Name,
			Slug: ent.plan.Slug,
		},
		Features:         features,
		UpgradeAvailable: ent.subscription == nil || ent.plan.Slug == entity.FreePlanSlug,
	}
	if ent.subscription != nil {
		resp.PeriodEnd = &ent.subscription.EndDate
	}
	return resp, nil
}

// GetUsageStats returns per-feature daily aggregates for the given window.
func (s *usageService) GetUsageStats(ctx context.Context, from, to time.Time) ([]*entity.UsageStat, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.UsageLogRepository().AggregateByFeatureAndDay(ctx, from, to)
}

// resolveEntitlement finds the current subscription and its live plan, or
// falls back to the free plan. A missing free plan resolves to hard-coded
// defaults so gating keeps working on an unseeded catalog.
func (s *usageService) resolveEntitlement(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) (*entitlement, error) {
	now := time.Now()
	sub, err := uow.SubscriptionRepository().FindOneSubscription(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.CurrentSubscription{Now: now},
	)
	if err != nil {
		return nil, err
	}

	if sub != nil {
		// Limits come from the live plan row, not a snapshot: a plan limit
		// change applies to existing subscribers immediately.
		plan, err := uow.SubscriptionRepository().FindOnePlan(ctx, specification.ByID{ID: sub.PlanId})
		if err != nil {
			return nil, err
		}
		if plan == nil {
			return nil, &dto.NotFoundError{Resource: "plan", Id: sub.PlanId}
		}
		return &entitlement{subscription: sub, plan: plan}, nil
	}

	plan, err := uow.SubscriptionRepository().FindPlanBySlug(ctx, entity.FreePlanSlug)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		plan = defaultFreePlan()
	}
	return &entitlement{plan: plan}, nil
}

// resolveUsage returns the consumed count for one feature. Subscribers read
// their counter; free users get a recompute from resource rows, scoped to
// the current calendar month for period-bound features.
func (s *usageService) resolveUsage(ctx context.Context, uow unitofwork.UnitOfWork, ent *entitlement, userId uuid.UUID, feature entity.Feature) (int, error) {
	if ent.subscription != nil {
		return feature.UsageOn(ent.subscription), nil
	}

	from, to := billingcycle.MonthWindow(time.Now())
	var (
		n   int64
		err error
	)
	switch feature {
	case entity.FeaturePropertyCreate:
		n, err = uow.PropertyRepository().Count(ctx, specification.UserOwnedBy{UserID: userId})
	case entity.FeatureVisitSchedule:
		n, err = uow.VisitRepository().Count(ctx,
			specification.UserOwnedBy{UserID: userId},
			specification.ScheduledBetween{From: from, To: to},
		)
	case entity.FeatureBoost:
		n, err = uow.PropertyRepository().Count(ctx,
			specification.UserOwnedBy{UserID: userId},
			specification.BoostedBetween{From: from, To: to},
		)
	default:
		// Media and amenity actions have no dedicated resource table, so the
		// usage log is the source of truth for the month. Sum delivered units
		// rather than rows: one entry can carry count > 1, and denied
		// attempts leave gated rows that consumed nothing.
		n, err = uow.UsageLogRepository().SumCount(ctx,
			specification.UserOwnedBy{UserID: userId},
			specification.ByFeature{Feature: string(feature)},
			specification.Ungated{},
			specification.CreatedBetween{From: from, To: to},
		)
	}
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// decide applies the gate rules. Only a hard gate sets IsGated and blocks
// access: remaining quota cannot cover the requested units. A soft gate is a
// warning that remaining quota has dropped into the 20% band; the request
// still goes through ungated. Remaining is never clamped, so an overridden
// overrun reads back negative.
func (s *usageService) decide(ent *entitlement, feature entity.Feature, used, count int) *dto.GateDecision {
	d := &dto.GateDecision{
		CurrentUsage: used,
	}
	if ent.subscription != nil {
		d.SubscriptionId = &ent.subscription.Id
	}
	if ent.plan.Id != uuid.Nil {
		d.PlanId = &ent.plan.Id
	}

	limit := feature.LimitOn(ent.plan)
	d.MaxLimit = limit

	if !feature.EnabledOn(ent.plan) || limit == 0 {
		d.HasAccess = false
		d.IsGated = true
		d.GateType = entity.GateTypeHard
		d.MaxLimit = 0
		d.Remaining = 0
		return d
	}

	if limit < 0 {
		d.HasAccess = true
		d.Remaining = -1
		return d
	}

	remaining := limit - used
	d.Remaining = remaining

	if remaining < count {
		d.HasAccess = false
		d.IsGated = true
		d.GateType = entity.GateTypeHard
		return d
	}

	d.HasAccess = true
	if float64(remaining) <= softGateRatio*float64(limit) {
		d.GateType = entity.GateTypeSoft
	}
	return d
}

func (s *usageService) appendLog(ctx context.Context, uow unitofwork.UnitOfWork, ent *entitlement, userId uuid.UUID, feature entity.Feature, req *dto.RecordUsageRequest, count int, wasGated bool, gateType entity.GateType, overrideReason *string) error {
	var subId *uuid.UUID
	if ent.subscription != nil {
		subId = &ent.subscription.Id
	}
	action := "record"
	var resourceId *uuid.UUID
	var metadata map[string]interface{}
	ip, ua := "", ""
	if req != nil {
		if req.Action != "" {
			action = req.Action
		}
		resourceId = req.ResourceId
		metadata = req.Metadata
		ip = req.IPAddress
		ua = req.UserAgent
	}
	return uow.UsageLogRepository().Append(ctx, &entity.UsageLogEntry{
		Id:             uuid.New(),
		SubscriptionId: subId,
		UserId:         userId,
		Feature:        feature,
		ResourceId:     resourceId,
		Action:         action,
		Count:          count,
		WasGated:       wasGated,
		GateType:       gateType,
		OverrideReason: overrideReason,
		IPAddress:      ip,
		UserAgent:      ua,
		Metadata:       metadata,
		CreatedAt:      time.Now(),
	})
}

// defaultFreePlan is the last-resort entitlement when the catalog carries no
// row with the free slug.
func defaultFreePlan() *entity.SubscriptionPlan {
	return &entity.SubscriptionPlan{
		Name:                    "Free",
		Slug:                    entity.FreePlanSlug,
		Price:                   0,
		Currency:                "USD",
		BillingCycle:            entity.BillingCycleMonthly,
		MaxProperties:           entity.FeaturePropertyCreate.DefaultLimit(),
		MaxVisitsPerMonth:       entity.FeatureVisitSchedule.DefaultLimit(),
		MaxBoostsPerMonth:       entity.FeatureBoost.DefaultLimit(),
		MaxMediaPerProperty:     entity.FeatureMediaUpload.DefaultLimit(),
		MaxAmenitiesPerProperty: entity.FeatureAmenityAdd.DefaultLimit(),
		BoostEnabled:            entity.FeatureBoost.DefaultAllowed(),
		PremiumSupport:          false,
		AdvancedAnalytics:       false,
		BulkOperations:          false,
		IsVisible:               true,
		IsActive:                true,
	}
}
