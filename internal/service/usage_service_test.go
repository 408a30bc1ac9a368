package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"rentora-be/internal/dto"
	"rentora-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPlan() *entity.SubscriptionPlan {
	return &entity.SubscriptionPlan{
		Id:                      uuid.New(),
		Name:                    "Starter",
		Slug:                    "starter",
		Price:                   19,
		Currency:                "USD",
		BillingCycle:            entity.BillingCycleMonthly,
		MaxProperties:           3,
		MaxVisitsPerMonth:       10,
		MaxBoostsPerMonth:       3,
		MaxMediaPerProperty:     5,
		MaxAmenitiesPerProperty: 10,
		BoostEnabled:            true,
		IsVisible:               true,
		IsActive:                true,
	}
}

func newTestSubscription(planId uuid.UUID) *entity.Subscription {
	now := time.Now()
	return &entity.Subscription{
		Id:           uuid.New(),
		UserId:       uuid.New(),
		PlanId:       planId,
		Price:        19,
		Currency:     "USD",
		BillingCycle: entity.BillingCycleMonthly,
		Status:       entity.SubscriptionStatusActive,
		StartDate:    now.AddDate(0, 0, -10),
		EndDate:      now.AddDate(0, 0, 20),
		AutoRenew:    true,
		LastReset:    now.AddDate(0, 0, -10),
		NextReset:    now.AddDate(0, 0, 20),
	}
}

func newUsageService(uow *uowStub) IUsageService {
	return NewUsageService(&uowFactoryStub{uow: uow}, nopLogger{})
}

func TestCheckUsageHardGateAtLimit(t *testing.T) {
	uow := newUowStub()
	plan := newTestPlan()
	sub := newTestSubscription(plan.Id)
	sub.PropertiesUsed = 3
	uow.subs.plan = plan
	uow.subs.subscription = sub

	decision, err := newUsageService(uow).CheckUsage(context.Background(), sub.UserId, entity.FeaturePropertyCreate, 1)
	require.NoError(t, err)

	assert.False(t, decision.HasAccess)
	assert.True(t, decision.IsGated)
	assert.Equal(t, entity.GateTypeHard, decision.GateType)
	assert.Equal(t, 3, decision.CurrentUsage)
	assert.Equal(t, 0, decision.Remaining)
}

func TestCheckUsageSoftGateNearLimit(t *testing.T) {
	uow := newUowStub()
	plan := newTestPlan()
	plan.MaxVisitsPerMonth = 10
	sub := newTestSubscription(plan.Id)
	sub.VisitsUsed = 8
	uow.subs.plan = plan
	uow.subs.subscription = sub

	decision, err := newUsageService(uow).CheckUsage(context.Background(), sub.UserId, entity.FeatureVisitSchedule, 1)
	require.NoError(t, err)

	// Remaining 2 of 10 sits in the warning band. A soft gate is advisory:
	// access is granted and the decision is not gated.
	assert.True(t, decision.HasAccess)
	assert.False(t, decision.IsGated)
	assert.Equal(t, entity.GateTypeSoft, decision.GateType)
	assert.Equal(t, 2, decision.Remaining)
}

func TestCheckUsageSoftGateOnLastUnit(t *testing.T) {
	uow := newUowStub()
	plan := newTestPlan()
	plan.MaxVisitsPerMonth = 5
	sub := newTestSubscription(plan.Id)
	sub.VisitsUsed = 4
	uow.subs.plan = plan
	uow.subs.subscription = sub

	decision, err := newUsageService(uow).CheckUsage(context.Background(), sub.UserId, entity.FeatureVisitSchedule, 1)
	require.NoError(t, err)

	// One unit left of five: still enough for the request, so no gate —
	// just the soft warning.
	assert.True(t, decision.HasAccess)
	assert.False(t, decision.IsGated)
	assert.Equal(t, entity.GateTypeSoft, decision.GateType)
	assert.Equal(t, 1, decision.Remaining)
}

func TestCheckUsageAboveWarningBandHasNoGate(t *testing.T) {
	uow := newUowStub()
	plan := newTestPlan()
	plan.MaxVisitsPerMonth = 5
	sub := newTestSubscription(plan.Id)
	sub.VisitsUsed = 3
	uow.subs.plan = plan
	uow.subs.subscription = sub

	decision, err := newUsageService(uow).CheckUsage(context.Background(), sub.UserId, entity.FeatureVisitSchedule, 1)
	require.NoError(t, err)

	// Remaining 2 of 5 is above the 20% band: no gate of either kind.
	assert.True(t, decision.HasAccess)
	assert.False(t, decision.IsGated)
	assert.Equal(t, entity.GateTypeNone, decision.GateType)
	assert.Equal(t, 2, decision.Remaining)
}

func TestCheckUsageOverrunReportsNegativeRemaining(t *testing.T) {
	uow := newUowStub()
	plan := newTestPlan()
	sub := newTestSubscription(plan.Id)
	sub.PropertiesUsed = 5 // pushed past the limit of 3 by overrides
	uow.subs.plan = plan
	uow.subs.subscription = sub

	decision, err := newUsageService(uow).CheckUsage(context.Background(), sub.UserId, entity.FeaturePropertyCreate, 1)
	require.NoError(t, err)

	assert.False(t, decision.HasAccess)
	assert.True(t, decision.IsGated)
	assert.Equal(t, entity.GateTypeHard, decision.GateType)
	assert.Equal(t, -2, decision.Remaining)
}

func TestCheckUsageUnlimited(t *testing.T) {
	uow := newUowStub()
	plan := newTestPlan()
	plan.MaxProperties = -1
	sub := newTestSubscription(plan.Id)
	sub.PropertiesUsed = 9000
	uow.subs.plan = plan
	uow.subs.subscription = sub

	decision, err := newUsageService(uow).CheckUsage(context.Background(), sub.UserId, entity.FeaturePropertyCreate, 1)
	require.NoError(t, err)

	assert.True(t, decision.HasAccess)
	assert.False(t, decision.IsGated)
	assert.Equal(t, -1, decision.Remaining)
}

func TestCheckUsageDisabledFeatureIsHardGated(t *testing.T) {
	uow := newUowStub()
	plan := newTestPlan()
	plan.BoostEnabled = false
	sub := newTestSubscription(plan.Id)
	uow.subs.plan = plan
	uow.subs.subscription = sub

	decision, err := newUsageService(uow).CheckUsage(context.Background(), sub.UserId, entity.FeatureBoost, 1)
	require.NoError(t, err)

	assert.False(t, decision.HasAccess)
	assert.Equal(t, entity.GateTypeHard, decision.GateType)
	assert.Equal(t, 0, decision.MaxLimit)
}

func TestCheckUsageFreeFallbackWithoutCatalogRow(t *testing.T) {
	uow := newUowStub()
	// No subscription and no free plan seeded: hard-coded defaults apply,
	// and usage is recomputed from resource rows.
	uow.properties.count = 2

	decision, err := newUsageService(uow).CheckUsage(context.Background(), uuid.New(), entity.FeaturePropertyCreate, 1)
	require.NoError(t, err)

	assert.True(t, decision.HasAccess)
	assert.Equal(t, 3, decision.MaxLimit)
	assert.Equal(t, 2, decision.CurrentUsage)
	assert.Equal(t, 1, decision.Remaining)
	assert.Nil(t, decision.SubscriptionId)
}

func TestCheckUsageFreeFallbackBoostDisabled(t *testing.T) {
	uow := newUowStub()

	decision, err := newUsageService(uow).CheckUsage(context.Background(), uuid.New(), entity.FeatureBoost, 1)
	require.NoError(t, err)

	assert.False(t, decision.HasAccess)
	assert.Equal(t, entity.GateTypeHard, decision.GateType)
}

func TestCheckUsageFreeUserMediaSumsDeliveredUnits(t *testing.T) {
	uow := newUowStub()
	// A single recorded upload can carry several units; the recompute must
	// total units, not log rows.
	uow.usageLogs.sum = 3

	decision, err := newUsageService(uow).CheckUsage(context.Background(), uuid.New(), entity.FeatureMediaUpload, 1)
	require.NoError(t, err)

	assert.Equal(t, 3, decision.CurrentUsage)
	assert.Equal(t, 5, decision.MaxLimit)
	assert.Equal(t, 2, decision.Remaining)
}

func TestCheckUsageUnknownFeature(t *testing.T) {
	uow := newUowStub()

	_, err := newUsageService(uow).CheckUsage(context.Background(), uuid.New(), entity.Feature("teleport"), 1)

	var valErr *dto.ValidationError
	require.True(t, errors.As(err, &valErr))
}

func TestRecordUsageIncrementsAndLogs(t *testing.T) {
	uow := newUowStub()
	plan := newTestPlan()
	sub := newTestSubscription(plan.Id)
	uow.subs.plan = plan
	uow.subs.subscription = sub

	decision, err := newUsageService(uow).RecordUsage(context.Background(), sub.UserId, &dto.RecordUsageRequest{
		Feature: string(entity.FeaturePropertyCreate),
		Action:  "create",
	})
	require.NoError(t, err)

	require.Len(t, uow.subs.tryIncrements, 1)
	assert.Equal(t, 3, uow.subs.tryIncrements[0].limit)
	assert.Equal(t, 1, uow.subs.tryIncrements[0].delta)

	require.Len(t, uow.usageLogs.appended, 1)
	entry := uow.usageLogs.appended[0]
	assert.False(t, entry.WasGated)
	assert.Equal(t, "create", entry.Action)
	require.NotNil(t, entry.SubscriptionId)
	assert.Equal(t, sub.Id, *entry.SubscriptionId)

	assert.Equal(t, 1, decision.CurrentUsage)
	assert.Equal(t, 2, decision.Remaining)
	assert.Equal(t, 1, uow.committed)
}

func TestRecordUsageGatedLeavesAuditRowWithoutIncrement(t *testing.T) {
	uow := newUowStub()
	plan := newTestPlan()
	sub := newTestSubscription(plan.Id)
	sub.PropertiesUsed = 3
	uow.subs.plan = plan
	uow.subs.subscription = sub

	decision, err := newUsageService(uow).RecordUsage(context.Background(), sub.UserId, &dto.RecordUsageRequest{
		Feature: string(entity.FeaturePropertyCreate),
		Action:  "create",
	})

	var quotaErr *dto.QuotaExceededError
	require.True(t, errors.As(err, &quotaErr))
	assert.Equal(t, 3, quotaErr.Limit)
	assert.Equal(t, 0, quotaErr.Remaining)

	assert.False(t, decision.HasAccess)
	assert.Empty(t, uow.subs.increments)
	assert.Empty(t, uow.subs.tryIncrements)

	require.Len(t, uow.usageLogs.appended, 1)
	assert.True(t, uow.usageLogs.appended[0].WasGated)
	assert.Equal(t, entity.GateTypeHard, uow.usageLogs.appended[0].GateType)
}

func TestRecordUsageOverrideBypassesGate(t *testing.T) {
	uow := newUowStub()
	plan := newTestPlan()
	sub := newTestSubscription(plan.Id)
	sub.PropertiesUsed = 3
	uow.subs.plan = plan
	uow.subs.subscription = sub

	_, err := newUsageService(uow).RecordUsage(context.Background(), sub.UserId, &dto.RecordUsageRequest{
		Feature:        string(entity.FeaturePropertyCreate),
		Action:         "create",
		Override:       true,
		OverrideReason: "support ticket #4411",
	})
	require.NoError(t, err)

	// Overrides increment unconditionally; the conditional path would refuse.
	require.Len(t, uow.subs.increments, 1)
	assert.Empty(t, uow.subs.tryIncrements)

	require.Len(t, uow.usageLogs.appended, 1)
	entry := uow.usageLogs.appended[0]
	assert.True(t, entry.WasGated)
	require.NotNil(t, entry.OverrideReason)
	assert.Equal(t, "support ticket #4411", *entry.OverrideReason)
}

func TestRecordUsageOverrideRequiresReason(t *testing.T) {
	uow := newUowStub()

	_, err := newUsageService(uow).RecordUsage(context.Background(), uuid.New(), &dto.RecordUsageRequest{
		Feature:  string(entity.FeaturePropertyCreate),
		Action:   "create",
		Override: true,
	})

	var valErr *dto.ValidationError
	require.True(t, errors.As(err, &valErr))
}

func TestRecordUsageLosesConditionalIncrementRace(t *testing.T) {
	uow := newUowStub()
	plan := newTestPlan()
	sub := newTestSubscription(plan.Id)
	sub.PropertiesUsed = 2 // pre-check passes, conditional update refuses
	uow.subs.plan = plan
	uow.subs.subscription = sub
	uow.subs.tryIncrementOK = false

	_, err := newUsageService(uow).RecordUsage(context.Background(), sub.UserId, &dto.RecordUsageRequest{
		Feature: string(entity.FeaturePropertyCreate),
		Action:  "create",
	})

	var quotaErr *dto.QuotaExceededError
	require.True(t, errors.As(err, &quotaErr))
	assert.Empty(t, uow.subs.increments)
}

func TestGetUsageStatusFreeUser(t *testing.T) {
	uow := newUowStub()
	free := newTestPlan()
	free.Slug = entity.FreePlanSlug
	free.Name = "Free"
	free.Price = 0
	free.BoostEnabled = false
	free.MaxBoostsPerMonth = 0
	uow.subs.planBySlug = free
	uow.properties.count = 1
	uow.visits.count = 2

	status, err := newUsageService(uow).GetUsageStatus(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, "Free", status.Plan.Name)
	assert.True(t, status.UpgradeAvailable)
	assert.Nil(t, status.PeriodEnd)
	assert.Len(t, status.Features, len(entity.AllFeatures()))

	byFeature := make(map[string]dto.FeatureUsage)
	for _, f := range status.Features {
		byFeature[f.Feature] = f
	}
	assert.Equal(t, 1, byFeature[string(entity.FeaturePropertyCreate)].Used)
	assert.Equal(t, 2, byFeature[string(entity.FeatureVisitSchedule)].Used)
	assert.Equal(t, entity.GateTypeHard, byFeature[string(entity.FeatureBoost)].GateType)
}

func TestGetUsageStatusSubscriber(t *testing.T) {
	uow := newUowStub()
	plan := newTestPlan()
	sub := newTestSubscription(plan.Id)
	sub.PropertiesUsed = 1
	uow.subs.plan = plan
	uow.subs.subscription = sub

	status, err := newUsageService(uow).GetUsageStatus(context.Background(), sub.UserId)
	require.NoError(t, err)

	assert.Equal(t, plan.Name, status.Plan.Name)
	assert.False(t, status.UpgradeAvailable)
	require.NotNil(t, status.PeriodEnd)
	assert.Equal(t, sub.EndDate, *status.PeriodEnd)
}
