// FILE: internal/service/subscription_service.go
// Lifecycle state machine for subscriptions: creation, partial updates,
// cancellation, renewal, reactivation.
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

type ISubscriptionService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateSubscriptionRequest) (*entity.Subscription, error)
	Update(ctx context.Context, id uuid.UUID, patch *dto.UpdateSubscriptionPatch) (*entity.Subscription, error)
	Cancel(ctx context.Context, id uuid.UUID, immediate bool) (*entity.Subscription, error)
	Renew(ctx context.Context, id uuid.UUID, paymentId string) (*entity.Subscription, error)
	Reactivate(ctx context.Context, id uuid.UUID, req *dto.CreateSubscriptionRequest) (*entity.Subscription, error)

	// Read accessors for dashboards
	GetActiveForUser(ctx context.Context, userId uuid.UUID) (*entity.Subscription, error)
	ListActive(ctx context.Context) ([]*entity.Subscription, error)
	ListExpiringTrials(ctx context.Context, days int) ([]*entity.Subscription, error)
	DashboardSummary(ctx context.Context) (*dto.DashboardSummary, error)
}

type subscriptionService struct {
	uowFactory unitofwork.RepositoryFactory
	notifier   NotificationCollaborator
	logger     logger.ILogger
}

func NewSubscriptionService(uowFactory unitofwork.RepositoryFactory, notifier NotificationCollaborator, log logger.ILogger) ISubscriptionService {
	return &subscriptionService{
		uowFactory: uowFactory,
		notifier:   notifier,
		logger:     log,
	}
}

// Create starts a trial or paid subscription. Enforces the single-active
// invariant: at most one trial/active subscription per user.
func (s *subscriptionService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateSubscriptionRequest) (*entity.Subscription, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil || user.Status != entity.UserStatusActive {
		return nil, &dto.NotFoundError{Resource: "user", Id: userId}
	}

	existing, err := uow.SubscriptionRepository().FindOneSubscription(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.CurrentSubscription{Now: now},
	)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &dto.InvariantViolationError{UserId: userId, SubscriptionId: existing.Id}
	}

	plan, err := uow.SubscriptionRepository().FindOnePlan(ctx, specification.ByID{ID: req.PlanId})
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, &dto.NotFoundError{Resource: "plan", Id: req.PlanId}
	}
	if !plan.IsActive {
		return nil, &dto.InvalidStateError{Status: "inactive", Action: "subscribe to plan"}
	}

	trialDays := plan.TrialDays
	if req.TrialDaysOverride != nil {
		trialDays = *req.TrialDaysOverride
	}

	status := entity.SubscriptionStatusActive
	trialEnd := billingcycle.ComputeTrialEnd(now, trialDays)
	if trialEnd != nil {
		status = entity.SubscriptionStatusTrial
	}

	autoRenew := true
	if req.AutoRenew != nil {
		autoRenew = *req.AutoRenew
	}

	sub := &entity.Subscription{
		Id:           uuid.New(),
		UserId:       userId,
		PlanId:       plan.Id,
		Price:        plan.Price, // price lock: plan price changes never reprice this subscription
		Currency:     plan.Currency,
		BillingCycle: plan.BillingCycle,
		Status:       status,
		StartDate:    now,
		EndDate:      billingcycle.ComputeEndDate(now, plan.BillingCycle),
		TrialEndDate: trialEnd,
		AutoRenew:    autoRenew,
		LastReset:    now,
		NextReset:    billingcycle.NextResetTime(now),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.SubscriptionRepository().CreateSubscription(ctx, sub); err != nil {
		return nil, err
	}
	s.appendEvent(ctx, uow, sub, entity.EventSubscriptionCreated, map[string]interface{}{
		"plan_id":    plan.Id.String(),
		"plan_name":  plan.Name,
		"status":     string(sub.Status),
		"trial_days": trialDays,
		"end_date":   sub.EndDate,
	})

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.notify(ctx, userId, NotifySubscriptionCreated, map[string]interface{}{
		"subscription_id": sub.Id.String(),
		"plan_name":       plan.Name,
		"status":          string(sub.Status),
		"end_date":        sub.EndDate,
	})

	return sub, nil
}

// Update applies a partial patch. An empty patch is a validation error, and
// a status-change event is emitted only when the status actually changes.
func (s *subscriptionService) Update(ctx context.Context, id uuid.UUID, patch *dto.UpdateSubscriptionPatch) (*entity.Subscription, error) {
	if patch == nil || patch.IsEmpty() {
		return nil, &dto.ValidationError{Field: "patch", Message: "no fields to update"}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	sub, err := uow.SubscriptionRepository().FindOneSubscription(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, &dto.NotFoundError{Resource: "subscription", Id: id}
	}

	prevStatus := sub.Status

	if patch.Status != nil {
		next := entity.SubscriptionStatus(*patch.Status)
		switch next {
		case entity.SubscriptionStatusTrial, entity.SubscriptionStatusActive,
			entity.SubscriptionStatusPastDue, entity.SubscriptionStatusCancelled,
			entity.SubscriptionStatusExpired:
		default:
			return nil, &dto.ValidationError{Field: "status", Message: "unknown status " + *patch.Status}
		}
		if next == entity.SubscriptionStatusCancelled && sub.Status != entity.SubscriptionStatusCancelled {
			now := time.Now()
			sub.CancelledDate = &now
		}
		sub.Status = next
	}
	if patch.AutoRenew != nil {
		sub.AutoRenew = *patch.AutoRenew
	}
	if patch.CancelAtPeriodEnd != nil {
		sub.CancelAtPeriodEnd = *patch.CancelAtPeriodEnd
	}
	if patch.PaymentId != nil {
		sub.LastPaymentId = patch.PaymentId
	}
	sub.UpdatedAt = time.Now()

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.SubscriptionRepository().UpdateSubscription(ctx, sub); err != nil {
		return nil, err
	}

	if sub.Status != prevStatus {
		eventType := entity.EventSubscriptionStatusChanged
		if sub.Status == entity.SubscriptionStatusCancelled {
			eventType = entity.EventSubscriptionCancelled
		}
		s.appendEvent(ctx, uow, sub, eventType, map[string]interface{}{
			"from": string(prevStatus),
			"to":   string(sub.Status),
		})
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return sub, nil
}

// Cancel ends a subscription. Immediate cancellation flips the status now;
// otherwise the subscription stays usable until end_date and only the
// cancel-at-period-end flag is set.
func (s *subscriptionService) Cancel(ctx context.Context, id uuid.UUID, immediate bool) (*entity.Subscription, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sub, err := uow.SubscriptionRepository().FindOneSubscription(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, &dto.NotFoundError{Resource: "subscription", Id: id}
	}
	if sub.Status == entity.SubscriptionStatusCancelled || sub.Status == entity.SubscriptionStatusExpired {
		return nil, &dto.InvalidStateError{Status: string(sub.Status), Action: "cancel"}
	}

	if immediate {
		status := string(entity.SubscriptionStatusCancelled)
		updated, err := s.Update(ctx, id, &dto.UpdateSubscriptionPatch{Status: &status})
		if err != nil {
			return nil, err
		}
		s.notify(ctx, sub.UserId, NotifyCancelled, map[string]interface{}{
			"subscription_id": sub.Id.String(),
			"immediate":       true,
		})
		return updated, nil
	}

	flag := true
	return s.Update(ctx, id, &dto.UpdateSubscriptionPatch{CancelAtPeriodEnd: &flag})
}

// Renew extends the subscription by one period of its stored cycle type.
// Renewing early never loses paid time: the new period starts at the later
// of end_date and now.
func (s *subscriptionService) Renew(ctx context.Context, id uuid.UUID, paymentId string) (*entity.Subscription, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()

	sub, err := uow.SubscriptionRepository().FindOneSubscription(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, &dto.NotFoundError{Resource: "subscription", Id: id}
	}
	if sub.Status == entity.SubscriptionStatusExpired {
		return nil, &dto.InvalidStateError{Status: string(sub.Status), Action: "renew"}
	}
	if sub.Status == entity.SubscriptionStatusCancelled && !sub.CancelAtPeriodEnd {
		return nil, &dto.InvalidStateError{Status: string(sub.Status), Action: "renew"}
	}

	newStart := sub.EndDate
	if newStart.Before(now) {
		newStart = now
	}

	prevEnd := sub.EndDate
	sub.StartDate = newStart
	// The stored cycle type, not the plan's current one: price-lock semantics
	// extend to the billing period.
	sub.EndDate = billingcycle.ComputeEndDate(newStart, sub.BillingCycle)
	sub.Status = entity.SubscriptionStatusActive
	sub.CancelAtPeriodEnd = false
	sub.CancelledDate = nil
	// renewal_attempts counts failed charges for the period being renewed.
	// A successful renewal opens a fresh period, so the counter starts over;
	// otherwise subscriptions with a long renewal history would hit the
	// overdue sweep's attempt cap on their first-ever failure.
	sub.RenewalAttempts = 0
	sub.LastRenewalAttempt = &now
	if paymentId != "" {
		sub.LastPaymentId = &paymentId
	}
	sub.UpdatedAt = now

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.SubscriptionRepository().UpdateSubscription(ctx, sub); err != nil {
		return nil, err
	}
	s.appendEvent(ctx, uow, sub, entity.EventSubscriptionRenewed, map[string]interface{}{
		"previous_end": prevEnd,
		"new_start":    sub.StartDate,
		"new_end":      sub.EndDate,
		"payment_id":   paymentId,
	})

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.notify(ctx, sub.UserId, NotifySubscriptionRenewed, map[string]interface{}{
		"subscription_id": sub.Id.String(),
		"new_end":         sub.EndDate,
	})

	return sub, nil
}

// Reactivate starts a fresh subscription for the owner of a cancelled or
// expired one. The old row is retained for history.
func (s *subscriptionService) Reactivate(ctx context.Context, id uuid.UUID, req *dto.CreateSubscriptionRequest) (*entity.Subscription, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	old, err := uow.SubscriptionRepository().FindOneSubscription(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if old == nil {
		return nil, &dto.NotFoundError{Resource: "subscription", Id: id}
	}
	if old.Status != entity.SubscriptionStatusCancelled && old.Status != entity.SubscriptionStatusExpired {
		return nil, &dto.InvalidStateError{Status: string(old.Status), Action: "reactivate"}
	}

	if req == nil {
		req = &dto.CreateSubscriptionRequest{PlanId: old.PlanId}
	}
	if req.PlanId == uuid.Nil {
		req.PlanId = old.PlanId
	}
	// Reactivations never re-enter trial.
	zero := 0
	req.TrialDaysOverride = &zero

	return s.Create(ctx, old.UserId, req)
}

// Read accessors

func (s *subscriptionService) GetActiveForUser(ctx context.Context, userId uuid.UUID) (*entity.Subscription, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.SubscriptionRepository().FindOneSubscription(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.CurrentSubscription{Now: time.Now()},
	)
}

func (s *subscriptionService) ListActive(ctx context.Context) ([]*entity.Subscription, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.SubscriptionRepository().FindAllSubscriptions(ctx,
		specification.CurrentSubscription{Now: time.Now()},
		specification.OrderBy{Field: "end_date", Desc: false},
	)
}

func (s *subscriptionService) ListExpiringTrials(ctx context.Context, days int) ([]*entity.Subscription, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()
	return uow.SubscriptionRepository().FindAllSubscriptions(ctx,
		specification.StatusIn{Statuses: []string{string(entity.SubscriptionStatusTrial)}},
		specification.TrialEndBetween{From: now, To: now.AddDate(0, 0, days)},
	)
}

func (s *subscriptionService) DashboardSummary(ctx context.Context) (*dto.DashboardSummary, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.SubscriptionRepository()

	active, err := repo.CountByStatus(ctx, entity.SubscriptionStatusActive)
	if err != nil {
		return nil, err
	}
	trial, err := repo.CountByStatus(ctx, entity.SubscriptionStatusTrial)
	if err != nil {
		return nil, err
	}
	pastDue, err := repo.CountByStatus(ctx, entity.SubscriptionStatusPastDue)
	if err != nil {
		return nil, err
	}
	revenue, err := repo.SumActiveRevenue(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.DashboardSummary{
		ActiveSubscriptions: active,
		TrialSubscriptions:  trial,
		PastDue:             pastDue,
		MonthlyRevenue:      revenue,
	}, nil
}

// appendEvent writes the audit row inside the caller's transaction. A failed
// event write is logged and swallowed: the state mutation must never be
// blocked by the audit trail.
func (s *subscriptionService) appendEvent(ctx context.Context, uow unitofwork.UnitOfWork, sub *entity.Subscription, eventType entity.SubscriptionEventType, payload map[string]interface{}) {
	event := &entity.SubscriptionEvent{
		Id:             uuid.New(),
		SubscriptionId: sub.Id,
		UserId:         sub.UserId,
		EventType:      eventType,
		Payload:        payload,
		CreatedAt:      time.Now(),
	}
	if err := uow.SubscriptionRepository().AppendEvent(ctx, event); err != nil {
		s.logger.Warn("SubscriptionService", "Failed to append subscription event", map[string]interface{}{
			"subscription_id": sub.Id.String(),
			"event_type":      string(eventType),
			"error":           err.Error(),
		})
	}
}

func (s *subscriptionService) notify(ctx context.Context, userId uuid.UUID, eventType string, payload map[string]interface{}) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userId, eventType, payload); err != nil {
		s.logger.Warn("SubscriptionService", "Notification dispatch failed", map[string]interface{}{
			"user_id":    userId.String(),
			"event_type": eventType,
			"error":      err.Error(),
		})
	}
}
