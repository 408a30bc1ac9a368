// FILE: internal/service/plan_service.go
// Plan catalog: public pricing-page reads served through an in-memory cache,
// admin mutations write through and invalidate it. Plans are never hard
// deleted; retirement flips is_active so historical subscriptions keep a
// valid plan reference.
package service

import (
	"context"
	"time"

	"rentora-be/internal/dto"
	"rentora-be/internal/entity"
	"rentora-be/internal/pkg/logger"
	"rentora-be/internal/repository/specification"
	"rentora-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const visiblePlansCacheKey = "plans:visible"

type IPlanService interface {
	ListVisiblePlans(ctx context.Context) ([]*dto.PlanResponse, error)
	GetPlanBySlug(ctx context.Context, slug string) (*entity.SubscriptionPlan, error)

	// Admin
	ListAllPlans(ctx context.Context) ([]*entity.SubscriptionPlan, error)
	CreatePlan(ctx context.Context, req *dto.UpsertPlanRequest) (*entity.SubscriptionPlan, error)
	UpdatePlan(ctx context.Context, id uuid.UUID, req *dto.UpsertPlanRequest) (*entity.SubscriptionPlan, error)
	DeactivatePlan(ctx context.Context, id uuid.UUID) error
}

type planService struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *cache.Cache
	logger     logger.ILogger
}

func NewPlanService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IPlanService {
	// Catalog changes are rare; five minutes of staleness on the pricing
	// page is acceptable and admin writes invalidate eagerly anyway.
	c := cache.New(5*time.Minute, 10*time.Minute)
	return &planService{
		uowFactory: uowFactory,
		cache:      c,
		logger:     log,
	}
}

// ListVisiblePlans returns active, visible plans ordered for the pricing page.
func (s *planService) ListVisiblePlans(ctx context.Context) ([]*dto.PlanResponse, error) {
	if x, found := s.cache.Get(visiblePlansCacheKey); found {
		return x.([]*dto.PlanResponse), nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	plans, err := uow.SubscriptionRepository().FindAllPlans(ctx,
		specification.Filter("is_active", true),
		specification.Filter("is_visible", true),
		specification.OrderBy{Field: "sort_order", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.PlanResponse, 0, len(plans))
	for _, plan := range plans {
		result = append(result, planToResponse(plan))
	}

	s.cache.Set(visiblePlansCacheKey, result, cache.DefaultExpiration)
	return result, nil
}

func (s *planService) GetPlanBySlug(ctx context.Context, slug string) (*entity.SubscriptionPlan, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	plan, err := uow.SubscriptionRepository().FindPlanBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, &dto.NotFoundError{Resource: "plan", Id: uuid.Nil}
	}
	return plan, nil
}

func (s *planService) ListAllPlans(ctx context.Context) ([]*entity.SubscriptionPlan, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.SubscriptionRepository().FindAllPlans(ctx,
		specification.OrderBy{Field: "sort_order", Desc: false},
	)
}

func (s *planService) CreatePlan(ctx context.Context, req *dto.UpsertPlanRequest) (*entity.SubscriptionPlan, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.SubscriptionRepository().FindPlanBySlug(ctx, req.Slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &dto.ValidationError{Field: "slug", Message: "plan slug already in use: " + req.Slug}
	}

	now := time.Now()
	plan := &entity.SubscriptionPlan{
		Id:        uuid.New(),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyPlanRequest(plan, req)

	if err := uow.SubscriptionRepository().CreatePlan(ctx, plan); err != nil {
		return nil, err
	}
	s.invalidate()
	return plan, nil
}

func (s *planService) UpdatePlan(ctx context.Context, id uuid.UUID, req *dto.UpsertPlanRequest) (*entity.SubscriptionPlan, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	plan, err := uow.SubscriptionRepository().FindOnePlan(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, &dto.NotFoundError{Resource: "plan", Id: id}
	}

	if req.Slug != plan.Slug {
		clash, err := uow.SubscriptionRepository().FindPlanBySlug(ctx, req.Slug)
		if err != nil {
			return nil, err
		}
		if clash != nil {
			return nil, &dto.ValidationError{Field: "slug", Message: "plan slug already in use: " + req.Slug}
		}
	}

	applyPlanRequest(plan, req)
	plan.UpdatedAt = time.Now()

	if err := uow.SubscriptionRepository().UpdatePlan(ctx, plan); err != nil {
		return nil, err
	}
	s.invalidate()

	// Limit changes apply to existing subscribers on their next gate check:
	// gating reads the live plan row, never a snapshot.
	s.logger.Info("PlanService", "Plan updated", map[string]interface{}{
		"plan_id": plan.Id.String(),
		"slug":    plan.Slug,
	})
	return plan, nil
}

// DeactivatePlan retires a plan from sale. Existing subscriptions on it stay
// valid and keep their locked price.
func (s *planService) DeactivatePlan(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	plan, err := uow.SubscriptionRepository().FindOnePlan(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if plan == nil {
		return &dto.NotFoundError{Resource: "plan", Id: id}
	}

	plan.IsActive = false
	plan.IsVisible = false
	plan.UpdatedAt = time.Now()

	if err := uow.SubscriptionRepository().UpdatePlan(ctx, plan); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *planService) invalidate() {
	s.cache.Delete(visiblePlansCacheKey)
}

func applyPlanRequest(plan *entity.SubscriptionPlan, req *dto.UpsertPlanRequest) {
	plan.Name = req.Name
	plan.Slug = req.Slug
	plan.Description = req.Description
	plan.Tagline = req.Tagline
	plan.Price = req.Price
	plan.Currency = req.Currency
	if plan.Currency == "" {
		plan.Currency = "USD"
	}
	plan.BillingCycle = entity.BillingCycle(req.BillingCycle)
	plan.TrialDays = req.TrialDays
	plan.MaxProperties = req.MaxProperties
	plan.MaxVisitsPerMonth = req.MaxVisitsPerMonth
	plan.MaxBoostsPerMonth = req.MaxBoostsPerMonth
	plan.MaxMediaPerProperty = req.MaxMediaPerProperty
	plan.MaxAmenitiesPerProperty = req.MaxAmenitiesPerProperty
	plan.BoostEnabled = req.BoostEnabled
	plan.PremiumSupport = req.PremiumSupport
	plan.AdvancedAnalytics = req.AdvancedAnalytics
	plan.BulkOperations = req.BulkOperations
	plan.IsMostPopular = req.IsMostPopular
	plan.IsVisible = req.IsVisible
	plan.SortOrder = req.SortOrder
}

func planToResponse(plan *entity.SubscriptionPlan) *dto.PlanResponse {
	return &dto.PlanResponse{
		Id:            plan.Id,
		Name:          plan.Name,
		Slug:          plan.Slug,
		Tagline:       plan.Tagline,
		Description:   plan.Description,
		Price:         plan.Price,
		Currency:      plan.Currency,
		BillingCycle:  string(plan.BillingCycle),
		TrialDays:     plan.TrialDays,
		IsMostPopular: plan.IsMostPopular,
		Limits: dto.PlanLimitsDTO{
			MaxProperties:           plan.MaxProperties,
			MaxVisitsPerMonth:       plan.MaxVisitsPerMonth,
			MaxBoostsPerMonth:       plan.MaxBoostsPerMonth,
			MaxMediaPerProperty:     plan.MaxMediaPerProperty,
			MaxAmenitiesPerProperty: plan.MaxAmenitiesPerProperty,
		},
		Flags: dto.PlanFlagsDTO{
			BoostEnabled:      plan.BoostEnabled,
			PremiumSupport:    plan.PremiumSupport,
			AdvancedAnalytics: plan.AdvancedAnalytics,
			BulkOperations:    plan.BulkOperations,
		},
	}
}
