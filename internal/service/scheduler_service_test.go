package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"rentora-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSchedulerTestService(uow *uowStub, payment *paymentStub, notifier *notifierStub) ISchedulerService {
	factory := &uowFactoryStub{uow: uow}
	subscription := NewSubscriptionService(factory, notifier, nopLogger{})
	return NewSchedulerService(factory, subscription, payment, notifier, nopLogger{}, SchedulerOptions{})
}

func TestResetMonthlyUsage(t *testing.T) {
	uow := newUowStub()
	a := newTestSubscription(uuid.New())
	b := newTestSubscription(uuid.New())
	uow.subs.subscriptions = []*entity.Subscription{a, b}

	summary, err := newSchedulerTestService(uow, &paymentStub{}, &notifierStub{}).ResetMonthlyUsage(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 2, summary.Succeeded)
	require.Len(t, uow.subs.resets, 2)
	assert.Equal(t, a.Id, uow.subs.resets[0].subscriptionId)
	assert.True(t, uow.subs.resets[0].nextReset.After(uow.subs.resets[0].lastReset))
}

func TestCheckTrialsEndingSoonRemindsAndStamps(t *testing.T) {
	uow := newUowStub()
	notifier := &notifierStub{}
	sub := newTestSubscription(uuid.New())
	sub.Status = entity.SubscriptionStatusTrial
	trialEnd := time.Now().AddDate(0, 0, 2)
	sub.TrialEndDate = &trialEnd
	uow.subs.subscriptions = []*entity.Subscription{sub}

	summary, err := newSchedulerTestService(uow, &paymentStub{}, notifier).CheckTrialsEndingSoon(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Succeeded)
	require.Len(t, notifier.notices, 1)
	assert.Equal(t, NotifyTrialEndingSoon, notifier.notices[0].eventType)
	assert.Equal(t, sub.UserId, notifier.notices[0].userId)
	require.Len(t, uow.subs.touched, 1)
	assert.Equal(t, sub.Id, uow.subs.touched[0])
}

func TestCheckTrialsEndingSoonNotifierFailure(t *testing.T) {
	uow := newUowStub()
	notifier := &notifierStub{err: errors.New("smtp down")}
	sub := newTestSubscription(uuid.New())
	sub.Status = entity.SubscriptionStatusTrial
	uow.subs.subscriptions = []*entity.Subscription{sub}

	summary, err := newSchedulerTestService(uow, &paymentStub{}, notifier).CheckTrialsEndingSoon(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failed)
	assert.Empty(t, uow.subs.touched)
}

func TestCheckExpiringSubscriptionsSkipsAutoRenewing(t *testing.T) {
	uow := newUowStub()
	notifier := &notifierStub{}
	renewing := newTestSubscription(uuid.New())
	lapsing := newTestSubscription(uuid.New())
	lapsing.AutoRenew = false
	ending := newTestSubscription(uuid.New())
	ending.CancelAtPeriodEnd = true
	uow.subs.subscriptions = []*entity.Subscription{renewing, lapsing, ending}

	summary, err := newSchedulerTestService(uow, &paymentStub{}, notifier).CheckExpiringSubscriptions(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 2, summary.Succeeded)
	require.Len(t, notifier.notices, 2)
	// Non-renewing users get nudged to renew; period-end cancellations only
	// get an expiry heads-up.
	assert.Equal(t, NotifyRenewalReminder, notifier.notices[0].eventType)
	assert.Equal(t, NotifyExpiringSoon, notifier.notices[1].eventType)
}

func TestProcessRenewalsChargesAndExtends(t *testing.T) {
	uow := newUowStub()
	payment := &paymentStub{paymentId: "pay_789"}
	notifier := &notifierStub{}
	sub := newTestSubscription(uuid.New())
	sub.EndDate = time.Now().Add(12 * time.Hour)
	oldEnd := sub.EndDate
	uow.subs.subscription = sub
	uow.subs.subscriptions = []*entity.Subscription{sub}

	summary, err := newSchedulerTestService(uow, payment, notifier).ProcessRenewals(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Succeeded)
	require.Len(t, payment.charges, 1)
	assert.Equal(t, sub.Id, payment.charges[0])

	assert.Equal(t, entity.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, oldEnd.AddDate(0, 1, 0), sub.EndDate)
	require.NotNil(t, sub.LastPaymentId)
	assert.Equal(t, "pay_789", *sub.LastPaymentId)

	require.Len(t, notifier.notices, 1)
	assert.Equal(t, NotifySubscriptionRenewed, notifier.notices[0].eventType)
}

func TestProcessRenewalsChargeFailureParksPastDue(t *testing.T) {
	uow := newUowStub()
	payment := &paymentStub{err: errors.New("card declined")}
	notifier := &notifierStub{}
	sub := newTestSubscription(uuid.New())
	uow.subs.subscription = sub
	uow.subs.subscriptions = []*entity.Subscription{sub}

	summary, err := newSchedulerTestService(uow, payment, notifier).ProcessRenewals(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, entity.SubscriptionStatusPastDue, sub.Status)
	assert.Equal(t, 1, sub.RenewalAttempts)
	assert.NotNil(t, sub.LastRenewalAttempt)

	require.Len(t, notifier.notices, 1)
	assert.Equal(t, NotifyPaymentFailed, notifier.notices[0].eventType)
}

func TestProcessRenewalsSkipsCancelAtPeriodEnd(t *testing.T) {
	uow := newUowStub()
	payment := &paymentStub{paymentId: "pay_000"}
	sub := newTestSubscription(uuid.New())
	sub.CancelAtPeriodEnd = true
	uow.subs.subscriptions = []*entity.Subscription{sub}

	summary, err := newSchedulerTestService(uow, payment, &notifierStub{}).ProcessRenewals(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, payment.charges)
}

func TestProcessRenewalsRemindsTrialsInsteadOfCharging(t *testing.T) {
	uow := newUowStub()
	payment := &paymentStub{paymentId: "pay_333"}
	notifier := &notifierStub{}
	sub := newTestSubscription(uuid.New())
	sub.Status = entity.SubscriptionStatusTrial
	sub.EndDate = time.Now().Add(12 * time.Hour)
	uow.subs.subscriptions = []*entity.Subscription{sub}

	summary, err := newSchedulerTestService(uow, payment, notifier).ProcessRenewals(context.Background())
	require.NoError(t, err)

	// A trial holds no payment commitment yet: the user gets nudged to
	// renew, never billed.
	assert.Equal(t, 1, summary.Succeeded)
	assert.Empty(t, payment.charges)
	require.Len(t, notifier.notices, 1)
	assert.Equal(t, NotifyRenewalReminder, notifier.notices[0].eventType)
	require.Len(t, uow.subs.touched, 1)
	assert.Equal(t, sub.Id, uow.subs.touched[0])
}

func TestProcessRenewalsRemindsNonRenewingActive(t *testing.T) {
	uow := newUowStub()
	payment := &paymentStub{paymentId: "pay_444"}
	notifier := &notifierStub{}
	sub := newTestSubscription(uuid.New())
	sub.AutoRenew = false
	sub.EndDate = time.Now().Add(12 * time.Hour)
	uow.subs.subscriptions = []*entity.Subscription{sub}

	summary, err := newSchedulerTestService(uow, payment, notifier).ProcessRenewals(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Succeeded)
	assert.Empty(t, payment.charges)
	require.Len(t, notifier.notices, 1)
	assert.Equal(t, NotifyRenewalReminder, notifier.notices[0].eventType)
}

func TestProcessRenewalsSkipsRecentlyRemindedTrial(t *testing.T) {
	uow := newUowStub()
	notifier := &notifierStub{}
	sub := newTestSubscription(uuid.New())
	sub.Status = entity.SubscriptionStatusTrial
	sub.EndDate = time.Now().Add(12 * time.Hour)
	notified := time.Now().Add(-1 * time.Hour)
	sub.LastNotifiedAt = &notified
	uow.subs.subscriptions = []*entity.Subscription{sub}

	summary, err := newSchedulerTestService(uow, &paymentStub{}, notifier).ProcessRenewals(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, notifier.notices)
}

func TestCheckOverduePaymentsCancelsAfterGrace(t *testing.T) {
	uow := newUowStub()
	notifier := &notifierStub{}
	sub := newTestSubscription(uuid.New())
	sub.Status = entity.SubscriptionStatusPastDue
	sub.EndDate = time.Now().AddDate(0, 0, -10) // grace window (7d) closed
	uow.subs.subscription = sub
	uow.subs.subscriptions = []*entity.Subscription{sub}

	summary, err := newSchedulerTestService(uow, &paymentStub{}, notifier).CheckOverduePayments(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, entity.SubscriptionStatusCancelled, sub.Status)
	require.Len(t, notifier.notices, 1)
	assert.Equal(t, NotifyCancelled, notifier.notices[0].eventType)
}

func TestCheckOverduePaymentsCancelsAfterMaxAttempts(t *testing.T) {
	uow := newUowStub()
	sub := newTestSubscription(uuid.New())
	sub.Status = entity.SubscriptionStatusPastDue
	sub.RenewalAttempts = 3
	uow.subs.subscription = sub
	uow.subs.subscriptions = []*entity.Subscription{sub}

	_, err := newSchedulerTestService(uow, &paymentStub{}, &notifierStub{}).CheckOverduePayments(context.Background())
	require.NoError(t, err)

	assert.Equal(t, entity.SubscriptionStatusCancelled, sub.Status)
}

func TestCheckOverduePaymentsBacksOffBetweenRetries(t *testing.T) {
	uow := newUowStub()
	payment := &paymentStub{paymentId: "pay_111"}
	sub := newTestSubscription(uuid.New())
	sub.Status = entity.SubscriptionStatusPastDue
	sub.RenewalAttempts = 1
	lastTry := time.Now().Add(-2 * time.Hour)
	sub.LastRenewalAttempt = &lastTry
	uow.subs.subscription = sub
	uow.subs.subscriptions = []*entity.Subscription{sub}

	summary, err := newSchedulerTestService(uow, payment, &notifierStub{}).CheckOverduePayments(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, payment.charges)
}

func TestCheckOverduePaymentsRetriesInsideGrace(t *testing.T) {
	uow := newUowStub()
	payment := &paymentStub{paymentId: "pay_222"}
	sub := newTestSubscription(uuid.New())
	sub.Status = entity.SubscriptionStatusPastDue
	sub.RenewalAttempts = 1
	lastTry := time.Now().Add(-48 * time.Hour)
	sub.LastRenewalAttempt = &lastTry
	uow.subs.subscription = sub
	uow.subs.subscriptions = []*entity.Subscription{sub}

	summary, err := newSchedulerTestService(uow, payment, &notifierStub{}).CheckOverduePayments(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Succeeded)
	require.Len(t, payment.charges, 1)
	assert.Equal(t, entity.SubscriptionStatusActive, sub.Status)
}

func TestCheckOverduePaymentsRetriesFirstFailureAfterRenewalHistory(t *testing.T) {
	uow := newUowStub()
	payment := &paymentStub{paymentId: "pay_555"}
	notifier := &notifierStub{}
	factory := &uowFactoryStub{uow: uow}
	subscription := NewSubscriptionService(factory, notifier, nopLogger{})
	scheduler := NewSchedulerService(factory, subscription, payment, notifier, nopLogger{}, SchedulerOptions{})

	sub := newTestSubscription(uuid.New())
	uow.subs.subscription = sub
	uow.subs.subscriptions = []*entity.Subscription{sub}

	// A long renewal history leaves no failed attempts behind.
	for i := 0; i < 3; i++ {
		_, err := subscription.Renew(context.Background(), sub.Id, "pay_ok")
		require.NoError(t, err)
	}
	require.Equal(t, 0, sub.RenewalAttempts)

	// The first-ever failed charge parks the row in past_due.
	payment.err = errors.New("card declined")
	sub.EndDate = time.Now().Add(-1 * time.Hour)
	_, err := scheduler.ProcessRenewals(context.Background())
	require.NoError(t, err)
	require.Equal(t, entity.SubscriptionStatusPastDue, sub.Status)
	require.Equal(t, 1, sub.RenewalAttempts)

	// The overdue sweep retries it; the grace window is open and one failure
	// is nowhere near the attempt cap.
	payment.err = nil
	lastTry := time.Now().Add(-48 * time.Hour)
	sub.LastRenewalAttempt = &lastTry
	summary, err := scheduler.CheckOverduePayments(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, entity.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, 0, sub.RenewalAttempts)
	assert.Len(t, payment.charges, 2)
}

func TestSyncSubscriptionStatusesSettlesLapsedRows(t *testing.T) {
	uow := newUowStub()
	notifier := &notifierStub{}
	lapsed := newTestSubscription(uuid.New())
	lapsed.AutoRenew = false
	lapsed.EndDate = time.Now().AddDate(0, 0, -1)
	uow.subs.subscription = lapsed
	uow.subs.subscriptions = []*entity.Subscription{lapsed}

	summary, err := newSchedulerTestService(uow, &paymentStub{}, notifier).SyncSubscriptionStatuses(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, entity.SubscriptionStatusExpired, lapsed.Status)
	require.Len(t, notifier.notices, 1)
	assert.Equal(t, NotifyExpired, notifier.notices[0].eventType)
}

func TestSyncSubscriptionStatusesCancelsPeriodEndRows(t *testing.T) {
	uow := newUowStub()
	notifier := &notifierStub{}
	ending := newTestSubscription(uuid.New())
	ending.CancelAtPeriodEnd = true
	ending.EndDate = time.Now().AddDate(0, 0, -1)
	uow.subs.subscription = ending
	uow.subs.subscriptions = []*entity.Subscription{ending}

	_, err := newSchedulerTestService(uow, &paymentStub{}, notifier).SyncSubscriptionStatuses(context.Background())
	require.NoError(t, err)

	assert.Equal(t, entity.SubscriptionStatusCancelled, ending.Status)
	assert.NotNil(t, ending.CancelledDate)
	require.Len(t, notifier.notices, 1)
	assert.Equal(t, NotifyCancelled, notifier.notices[0].eventType)
}

func TestSyncSubscriptionStatusesConvertsTrialsPastTrialEnd(t *testing.T) {
	uow := newUowStub()
	notifier := &notifierStub{}
	sub := newTestSubscription(uuid.New())
	sub.Status = entity.SubscriptionStatusTrial
	trialEnd := time.Now().AddDate(0, 0, -1)
	sub.TrialEndDate = &trialEnd
	uow.subs.subscription = sub
	uow.subs.subscriptions = []*entity.Subscription{sub}

	summary, err := newSchedulerTestService(uow, &paymentStub{}, notifier).SyncSubscriptionStatuses(context.Background())
	require.NoError(t, err)

	// The paid period is already running; the renewal sweep bills it at
	// period end. Conversion itself is silent.
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, entity.SubscriptionStatusActive, sub.Status)
	assert.Empty(t, notifier.notices)
}

func TestSyncSubscriptionStatusesExpiresNonRenewingTrials(t *testing.T) {
	uow := newUowStub()
	notifier := &notifierStub{}
	sub := newTestSubscription(uuid.New())
	sub.Status = entity.SubscriptionStatusTrial
	sub.AutoRenew = false
	trialEnd := time.Now().AddDate(0, 0, -1)
	sub.TrialEndDate = &trialEnd
	uow.subs.subscription = sub
	uow.subs.subscriptions = []*entity.Subscription{sub}

	summary, err := newSchedulerTestService(uow, &paymentStub{}, notifier).SyncSubscriptionStatuses(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, entity.SubscriptionStatusExpired, sub.Status)
	require.Len(t, notifier.notices, 1)
	assert.Equal(t, NotifyExpired, notifier.notices[0].eventType)
}

func TestSyncSubscriptionStatusesLeavesAutoRenewingAlone(t *testing.T) {
	uow := newUowStub()
	renewing := newTestSubscription(uuid.New())
	renewing.EndDate = time.Now().AddDate(0, 0, -1)
	uow.subs.subscriptions = []*entity.Subscription{renewing}

	summary, err := newSchedulerTestService(uow, &paymentStub{}, &notifierStub{}).SyncSubscriptionStatuses(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, entity.SubscriptionStatusActive, renewing.Status)
}

func TestCleanupOldData(t *testing.T) {
	uow := newUowStub()
	uow.usageLogs.purged = 42

	summary, err := newSchedulerTestService(uow, &paymentStub{}, &notifierStub{}).CleanupOldData(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 42, summary.Processed)
	assert.Equal(t, 42, summary.Succeeded)
}

func TestGenerateMonthlyReports(t *testing.T) {
	uow := newUowStub()
	notifier := &notifierStub{}
	uow.usageLogs.stats = []*entity.UsageStat{
		{Feature: entity.FeaturePropertyCreate, Total: 4},
		{Feature: entity.FeaturePropertyCreate, Total: 2},
		{Feature: entity.FeatureVisitSchedule, Total: 9},
	}

	summary, err := newSchedulerTestService(uow, &paymentStub{}, notifier).GenerateMonthlyReports(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Succeeded)
	require.Len(t, notifier.notices, 1)
	notice := notifier.notices[0]
	assert.Equal(t, uuid.Nil, notice.userId)
	assert.Equal(t, NotifyMonthlyReport, notice.eventType)

	totals, ok := notice.payload["totals"].(map[string]int)
	require.True(t, ok)
	assert.Equal(t, 6, totals[string(entity.FeaturePropertyCreate)])
	assert.Equal(t, 9, totals[string(entity.FeatureVisitSchedule)])
}
