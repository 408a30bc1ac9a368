package service

import (
	"context"
	"errors"
	"testing"

	"rentora-be/internal/dto"
	"rentora-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func starterPlanRequest() *dto.UpsertPlanRequest {
	return &dto.UpsertPlanRequest{
		Name:                    "Starter",
		Slug:                    "starter",
		Price:                   19,
		BillingCycle:            "monthly",
		TrialDays:               14,
		MaxProperties:           15,
		MaxVisitsPerMonth:       50,
		MaxBoostsPerMonth:       3,
		MaxMediaPerProperty:     15,
		MaxAmenitiesPerProperty: 25,
		BoostEnabled:            true,
		IsVisible:               true,
		SortOrder:               1,
	}
}

func TestListVisiblePlansServedFromCache(t *testing.T) {
	uow := newUowStub()
	uow.subs.plan = newTestPlan()
	svc := NewPlanService(&uowFactoryStub{uow: uow}, nopLogger{})

	first, err := svc.ListVisiblePlans(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "starter", first[0].Slug)

	// Second read must not touch the repository.
	uow.subs.plan = nil
	second, err := svc.ListVisiblePlans(context.Background())
	require.NoError(t, err)
	assert.Len(t, second, 1)
}

func TestCreatePlanInvalidatesCache(t *testing.T) {
	uow := newUowStub()
	uow.subs.plan = newTestPlan()
	svc := NewPlanService(&uowFactoryStub{uow: uow}, nopLogger{})

	_, err := svc.ListVisiblePlans(context.Background())
	require.NoError(t, err)

	created, err := svc.CreatePlan(context.Background(), starterPlanRequest())
	require.NoError(t, err)
	assert.True(t, created.IsActive)
	assert.Equal(t, "USD", created.Currency)
	require.Len(t, uow.subs.createdPlans, 1)

	// The cache was dropped: the next read hits the repository again.
	uow.subs.plan = nil
	refreshed, err := svc.ListVisiblePlans(context.Background())
	require.NoError(t, err)
	assert.Empty(t, refreshed)
}

func TestCreatePlanRejectsSlugClash(t *testing.T) {
	uow := newUowStub()
	uow.subs.planBySlug = newTestPlan()
	svc := NewPlanService(&uowFactoryStub{uow: uow}, nopLogger{})

	_, err := svc.CreatePlan(context.Background(), starterPlanRequest())

	var valErr *dto.ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Empty(t, uow.subs.createdPlans)
}

func TestUpdatePlanRejectsSlugClash(t *testing.T) {
	uow := newUowStub()
	plan := newTestPlan()
	uow.subs.plan = plan
	uow.subs.planBySlug = newTestPlan() // another plan already owns the new slug
	svc := NewPlanService(&uowFactoryStub{uow: uow}, nopLogger{})

	req := starterPlanRequest()
	req.Slug = "growth"
	_, err := svc.UpdatePlan(context.Background(), plan.Id, req)

	var valErr *dto.ValidationError
	require.True(t, errors.As(err, &valErr))
}

func TestDeactivatePlanHidesWithoutDeleting(t *testing.T) {
	uow := newUowStub()
	plan := newTestPlan()
	uow.subs.plan = plan
	svc := NewPlanService(&uowFactoryStub{uow: uow}, nopLogger{})

	require.NoError(t, svc.DeactivatePlan(context.Background(), plan.Id))

	require.Len(t, uow.subs.updatedPlans, 1)
	assert.False(t, plan.IsActive)
	assert.False(t, plan.IsVisible)
}

func TestGetPlanBySlugNotFound(t *testing.T) {
	uow := newUowStub()
	svc := NewPlanService(&uowFactoryStub{uow: uow}, nopLogger{})

	_, err := svc.GetPlanBySlug(context.Background(), uuid.NewString())

	var notFound *dto.NotFoundError
	require.True(t, errors.As(err, &notFound))
}

func TestPlanToResponseCarriesLimitsAndFlags(t *testing.T) {
	plan := newTestPlan()
	plan.MaxProperties = -1
	plan.PremiumSupport = true

	resp := planToResponse(plan)

	assert.Equal(t, -1, resp.Limits.MaxProperties)
	assert.True(t, resp.Flags.BoostEnabled)
	assert.True(t, resp.Flags.PremiumSupport)
	assert.Equal(t, string(entity.BillingCycleMonthly), resp.BillingCycle)
}
