// FILE: internal/service/scheduler_service.go
// Periodic lifecycle sweeps. Every job is process-and-continue: a failure on
// one subscription is recorded in the summary and the batch keeps going, so
// the next tick can retry stragglers.
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

type ISchedulerService interface {
	ResetMonthlyUsage(ctx context.Context) (*dto.JobSummary, error)
	CheckTrialsEndingSoon(ctx context.Context) (*dto.JobSummary, error)
	CheckExpiringSubscriptions(ctx context.Context) (*dto.JobSummary, error)
	ProcessRenewals(ctx context.Context) (*dto.JobSummary, error)
	CheckOverduePayments(ctx context.Context) (*dto.JobSummary, error)
	SyncSubscriptionStatuses(ctx context.Context) (*dto.JobSummary, error)
	CleanupOldData(ctx context.Context) (*dto.JobSummary, error)
	GenerateMonthlyReports(ctx context.Context) (*dto.JobSummary, error)
}

// SchedulerOptions tune the sweep windows. Zero values are replaced by the
// defaults in NewSchedulerService.
type SchedulerOptions struct {
	// TrialLookaheadDays and ExpiryLookaheadDays bound the reminder windows.
	TrialLookaheadDays  int
	ExpiryLookaheadDays int
	// RenewalLookaheadHours is how far before end_date a charge is attempted.
	RenewalLookaheadHours int
	// GraceDays is how long a past_due subscription survives before the
	// overdue sweep cancels it.
	GraceDays int
	// MaxRenewalAttempts caps charge retries while past_due.
	MaxRenewalAttempts int
	// RetentionDays bounds usage-log history kept by the cleanup sweep.
	RetentionDays int
}

func (o SchedulerOptions) withDefaults() SchedulerOptions {
	if o.TrialLookaheadDays == 0 {
		o.TrialLookaheadDays = 3
	}
	if o.ExpiryLookaheadDays == 0 {
		o.ExpiryLookaheadDays = 3
	}
	if o.RenewalLookaheadHours == 0 {
		o.RenewalLookaheadHours = 24
	}
	if o.GraceDays == 0 {
		o.GraceDays = 7
	}
	if o.MaxRenewalAttempts == 0 {
		o.MaxRenewalAttempts = 3
	}
	if o.RetentionDays == 0 {
		o.RetentionDays = 180
	}
	return o
}

type schedulerService struct {
	uowFactory   unitofwork.RepositoryFactory
	subscription ISubscriptionService
	payment      PaymentCollaborator
	notifier     NotificationCollaborator
	logger       logger.ILogger
	opts         SchedulerOptions
}

func NewSchedulerService(
	uowFactory unitofwork.RepositoryFactory,
	subscription ISubscriptionService,
	payment PaymentCollaborator,
	notifier NotificationCollaborator,
	log logger.ILogger,
	opts SchedulerOptions,
) ISchedulerService {
	return &schedulerService{
		uowFactory:   uowFactory,
		subscription: subscription,
		payment:      payment,
		notifier:     notifier,
		logger:       log,
		opts:         opts.withDefaults(),
	}
}

// ResetMonthlyUsage zeroes the per-period counters of every subscription
// whose reset window has lapsed. The next_reset guard makes the sweep
// idempotent: a re-run in the same window matches nothing.
func (s *schedulerService) ResetMonthlyUsage(ctx context.Context) (*dto.JobSummary, error) {
	summary := dto.NewJobSummary("reset_monthly_usage")
	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()

	due, err := uow.SubscriptionRepository().FindAllSubscriptions(ctx,
		specification.StatusIn{Statuses: []string{
			string(entity.SubscriptionStatusTrial),
			string(entity.SubscriptionStatusActive),
			string(entity.SubscriptionStatusPastDue),
		}},
		specification.ResetDue{Now: now},
	)
	if err != nil {
		return summary, err
	}

	for _, sub := range due {
		if err := uow.SubscriptionRepository().ResetUsageCounters(ctx, sub.Id, now, billingcycle.NextResetTime(now)); err != nil {
			summary.Fail(sub.Id, err)
			continue
		}
		summary.Success()
	}

	s.logSummary(summary)
	return summary, nil
}

// CheckTrialsEndingSoon notifies users whose trial ends within the lookahead
// window. last_notified_at de-duplicates: a subscription reminded within the
// window is not reminded again.
func (s *schedulerService) CheckTrialsEndingSoon(ctx context.Context) (*dto.JobSummary, error) {
	summary := dto.NewJobSummary("check_trials_ending_soon")
	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()
	window := time.Duration(s.opts.TrialLookaheadDays) * 24 * time.Hour

	ending, err := uow.SubscriptionRepository().FindAllSubscriptions(ctx,
		specification.StatusIn{Statuses: []string{string(entity.SubscriptionStatusTrial)}},
		specification.TrialEndBetween{From: now, To: now.Add(window)},
		specification.NotNotifiedSince{Since: now.Add(-window)},
	)
	if err != nil {
		return summary, err
	}

	for _, sub := range ending {
		if err := s.remind(ctx, uow, sub, NotifyTrialEndingSoon, map[string]interface{}{
			"subscription_id": sub.Id.String(),
			"trial_end_date":  sub.TrialEndDate,
		}); err != nil {
			summary.Fail(sub.Id, err)
			continue
		}
		summary.Success()
	}

	s.logSummary(summary)
	return summary, nil
}

// CheckExpiringSubscriptions reminds users whose paid period ends soon and
// will not auto-renew.
func (s *schedulerService) CheckExpiringSubscriptions(ctx context.Context) (*dto.JobSummary, error) {
	summary := dto.NewJobSummary("check_expiring_subscriptions")
	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()
	window := time.Duration(s.opts.ExpiryLookaheadDays) * 24 * time.Hour

	expiring, err := uow.SubscriptionRepository().FindAllSubscriptions(ctx,
		specification.StatusIn{Statuses: []string{
			string(entity.SubscriptionStatusTrial),
			string(entity.SubscriptionStatusActive),
		}},
		specification.EndDateBetween{From: now, To: now.Add(window)},
		specification.NotNotifiedSince{Since: now.Add(-window)},
	)
	if err != nil {
		return summary, err
	}

	for _, sub := range expiring {
		// Auto-renewing rows belong to the renewal sweep, which charges
		// active subscriptions and reminds trials.
		if sub.AutoRenew && !sub.CancelAtPeriodEnd {
			summary.Skip()
			continue
		}
		eventType := NotifyExpiringSoon
		if !sub.AutoRenew && !sub.CancelAtPeriodEnd {
			eventType = NotifyRenewalReminder
		}
		if err := s.remind(ctx, uow, sub, eventType, map[string]interface{}{
			"subscription_id": sub.Id.String(),
			"end_date":        sub.EndDate,
		}); err != nil {
			summary.Fail(sub.Id, err)
			continue
		}
		summary.Success()
	}

	s.logSummary(summary)
	return summary, nil
}

// ProcessRenewals charges every auto-renewing active subscription whose
// period ends within the lookahead (or has already ended). A successful
// charge extends the period; a failed one moves the subscription to past_due
// for the overdue sweep to retry. Trials and non-renewing subscriptions are
// never charged here; they get a renewal reminder instead.
func (s *schedulerService) ProcessRenewals(ctx context.Context) (*dto.JobSummary, error) {
	summary := dto.NewJobSummary("process_renewals")
	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()
	lookahead := time.Duration(s.opts.RenewalLookaheadHours) * time.Hour

	due, err := uow.SubscriptionRepository().FindAllSubscriptions(ctx,
		specification.StatusIn{Statuses: []string{
			string(entity.SubscriptionStatusTrial),
			string(entity.SubscriptionStatusActive),
		}},
		specification.EndDateBefore{T: now.Add(lookahead)},
	)
	if err != nil {
		return summary, err
	}

	for _, sub := range due {
		if sub.CancelAtPeriodEnd {
			summary.Skip()
			continue
		}
		if sub.Status == entity.SubscriptionStatusTrial || !sub.AutoRenew {
			if sub.LastNotifiedAt != nil && sub.LastNotifiedAt.After(now.Add(-lookahead)) {
				summary.Skip()
				continue
			}
			if err := s.remind(ctx, uow, sub, NotifyRenewalReminder, map[string]interface{}{
				"subscription_id": sub.Id.String(),
				"end_date":        sub.EndDate,
			}); err != nil {
				summary.Fail(sub.Id, err)
				continue
			}
			summary.Success()
			continue
		}
		if err := s.attemptCharge(ctx, uow, sub, now); err != nil {
			summary.Fail(sub.Id, err)
			continue
		}
		summary.Success()
	}

	s.logSummary(summary)
	return summary, nil
}

// CheckOverduePayments retries past_due subscriptions while the grace window
// is open and cancels them once it closes or the attempt cap is hit.
func (s *schedulerService) CheckOverduePayments(ctx context.Context) (*dto.JobSummary, error) {
	summary := dto.NewJobSummary("check_overdue_payments")
	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()
	grace := time.Duration(s.opts.GraceDays) * 24 * time.Hour

	overdue, err := uow.SubscriptionRepository().FindAllSubscriptions(ctx,
		specification.StatusIn{Statuses: []string{string(entity.SubscriptionStatusPastDue)}},
	)
	if err != nil {
		return summary, err
	}

	for _, sub := range overdue {
		graceClosed := now.After(sub.EndDate.Add(grace))
		attemptsExhausted := sub.RenewalAttempts >= s.opts.MaxRenewalAttempts

		if graceClosed || attemptsExhausted {
			if _, err := s.subscription.Cancel(ctx, sub.Id, true); err != nil {
				summary.Fail(sub.Id, err)
				continue
			}
			summary.Success()
			continue
		}

		// Back off to one attempt per day while grace is open.
		if sub.LastRenewalAttempt != nil && now.Sub(*sub.LastRenewalAttempt) < 24*time.Hour {
			summary.Skip()
			continue
		}
		if err := s.attemptCharge(ctx, uow, sub, now); err != nil {
			summary.Fail(sub.Id, err)
			continue
		}
		summary.Success()
	}

	s.logSummary(summary)
	return summary, nil
}

// SyncSubscriptionStatuses settles rows no other sweep will touch. Trials
// whose trial window has closed convert in place: auto-renewing trials
// become active and are billed by the renewal sweep at period end, the rest
// expire. Then lapsed rows settle: cancel-at-period-end becomes cancelled,
// non-renewing becomes expired.
func (s *schedulerService) SyncSubscriptionStatuses(ctx context.Context) (*dto.JobSummary, error) {
	summary := dto.NewJobSummary("sync_subscription_statuses")
	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()

	trialsDone, err := uow.SubscriptionRepository().FindAllSubscriptions(ctx,
		specification.StatusIn{Statuses: []string{string(entity.SubscriptionStatusTrial)}},
		specification.TrialEndBefore{T: now},
	)
	if err != nil {
		return summary, err
	}

	for _, sub := range trialsDone {
		target := entity.SubscriptionStatusActive
		notice := ""
		switch {
		case sub.CancelAtPeriodEnd:
			target = entity.SubscriptionStatusCancelled
			notice = NotifyCancelled
		case !sub.AutoRenew:
			target = entity.SubscriptionStatusExpired
			notice = NotifyExpired
		}
		status := string(target)
		if _, err := s.subscription.Update(ctx, sub.Id, &dto.UpdateSubscriptionPatch{Status: &status}); err != nil {
			summary.Fail(sub.Id, err)
			continue
		}
		if notice != "" {
			s.notifyUser(ctx, sub.UserId, notice, map[string]interface{}{
				"subscription_id": sub.Id.String(),
				"trial_end_date":  sub.TrialEndDate,
			})
		}
		summary.Success()
	}

	lapsed, err := uow.SubscriptionRepository().FindAllSubscriptions(ctx,
		specification.StatusIn{Statuses: []string{
			string(entity.SubscriptionStatusTrial),
			string(entity.SubscriptionStatusActive),
		}},
		specification.EndDateBefore{T: now},
	)
	if err != nil {
		return summary, err
	}

	for _, sub := range lapsed {
		// Auto-renewing rows belong to the renewal sweep.
		if sub.AutoRenew && !sub.CancelAtPeriodEnd {
			summary.Skip()
			continue
		}

		target := entity.SubscriptionStatusExpired
		notice := NotifyExpired
		if sub.CancelAtPeriodEnd {
			target = entity.SubscriptionStatusCancelled
			notice = NotifyCancelled
		}
		status := string(target)
		if _, err := s.subscription.Update(ctx, sub.Id, &dto.UpdateSubscriptionPatch{Status: &status}); err != nil {
			summary.Fail(sub.Id, err)
			continue
		}
		s.notifyUser(ctx, sub.UserId, notice, map[string]interface{}{
			"subscription_id": sub.Id.String(),
			"end_date":        sub.EndDate,
		})
		summary.Success()
	}

	s.logSummary(summary)
	return summary, nil
}

// CleanupOldData purges usage-log rows past the retention horizon.
func (s *schedulerService) CleanupOldData(ctx context.Context) (*dto.JobSummary, error) {
	summary := dto.NewJobSummary("cleanup_old_data")
	uow := s.uowFactory.NewUnitOfWork(ctx)
	cutoff := time.Now().AddDate(0, 0, -s.opts.RetentionDays)

	purged, err := uow.UsageLogRepository().PurgeOlderThan(ctx, cutoff)
	if err != nil {
		return summary, err
	}
	summary.Processed = int(purged)
	summary.Succeeded = int(purged)

	s.logSummary(summary)
	return summary, nil
}

// GenerateMonthlyReports aggregates the previous calendar month's usage per
// feature and publishes one report event.
func (s *schedulerService) GenerateMonthlyReports(ctx context.Context) (*dto.JobSummary, error) {
	summary := dto.NewJobSummary("generate_monthly_reports")
	uow := s.uowFactory.NewUnitOfWork(ctx)

	from, _ := billingcycle.MonthWindow(time.Now().AddDate(0, -1, 0))
	_, to := billingcycle.MonthWindow(from)

	stats, err := uow.UsageLogRepository().AggregateByFeatureAndDay(ctx, from, to)
	if err != nil {
		return summary, err
	}

	totals := make(map[string]int)
	for _, stat := range stats {
		totals[string(stat.Feature)] += stat.Total
		summary.Success()
	}

	s.notifyUser(ctx, uuid.Nil, NotifyMonthlyReport, map[string]interface{}{
		"period_start": from,
		"period_end":   to,
		"totals":       totals,
	})

	s.logSummary(summary)
	return summary, nil
}

// attemptCharge runs one renewal charge. Success extends the subscription;
// failure stamps the attempt and parks the row in past_due.
func (s *schedulerService) attemptCharge(ctx context.Context, uow unitofwork.UnitOfWork, sub *entity.Subscription, now time.Time) error {
	paymentId, err := s.payment.Charge(ctx, sub.Id, sub.Price, sub.Currency, "")
	if err == nil {
		_, renewErr := s.subscription.Renew(ctx, sub.Id, paymentId)
		return renewErr
	}

	sub.Status = entity.SubscriptionStatusPastDue
	sub.RenewalAttempts++
	sub.LastRenewalAttempt = &now
	sub.UpdatedAt = now
	if updateErr := uow.SubscriptionRepository().UpdateSubscription(ctx, sub); updateErr != nil {
		return updateErr
	}
	s.notifyUser(ctx, sub.UserId, NotifyPaymentFailed, map[string]interface{}{
		"subscription_id": sub.Id.String(),
		"attempt":         sub.RenewalAttempts,
	})
	return &dto.UpstreamFailureError{Collaborator: "payment", Err: err}
}

// remind sends a reminder and stamps last_notified_at so the next sweep in
// the same window skips the row.
func (s *schedulerService) remind(ctx context.Context, uow unitofwork.UnitOfWork, sub *entity.Subscription, eventType string, payload map[string]interface{}) error {
	if err := s.notifier.Notify(ctx, sub.UserId, eventType, payload); err != nil {
		return &dto.UpstreamFailureError{Collaborator: "notification", Err: err}
	}
	return uow.SubscriptionRepository().TouchLastNotified(ctx, sub.Id)
}

func (s *schedulerService) notifyUser(ctx context.Context, userId uuid.UUID, eventType string, payload map[string]interface{}) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userId, eventType, payload); err != nil {
		s.logger.Warn("SchedulerService", "Notification dispatch failed", map[string]interface{}{
			"user_id":    userId.String(),
			"event_type": eventType,
			"error":      err.Error(),
		})
	}
}

func (s *schedulerService) logSummary(summary *dto.JobSummary) {
	s.logger.Info("SchedulerService", "Job finished", map[string]interface{}{
		"job":       summary.Job,
		"processed": summary.Processed,
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
		"skipped":   summary.Skipped,
	})
}
