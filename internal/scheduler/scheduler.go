// FILE: internal/scheduler/scheduler.go
// Cron wiring for the lifecycle sweeps. Jobs run with a background context;
// panics are recovered so one bad sweep never takes the process down.
package scheduler

import (
	"context"
	"fmt"

	"rentora-be/internal/config"
	"rentora-be/internal/dto"
	"rentora-be/internal/pkg/logger"
	"rentora-be/internal/service"

	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	cron    *cron.Cron
	service service.ISchedulerService
	logger  logger.ILogger
	cfg     config.SchedulerConfig
}

// cronLogAdapter bridges cron's logging interface onto the application logger.
type cronLogAdapter struct {
	logger logger.ILogger
}

func (a cronLogAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info("Scheduler", msg, map[string]interface{}{"kv": fmt.Sprint(keysAndValues...)})
}

func (a cronLogAdapter) Error(err error, msg string, keysAndValues ...interface{}) {
	a.logger.Error("Scheduler", msg, map[string]interface{}{
		"error": err.Error(),
		"kv":    fmt.Sprint(keysAndValues...),
	})
}

func NewScheduler(svc service.ISchedulerService, log logger.ILogger, cfg config.SchedulerConfig) *Scheduler {
	c := cron.New(cron.WithChain(cron.Recover(cronLogAdapter{logger: log})))
	return &Scheduler{
		cron:    c,
		service: svc,
		logger:  log,
		cfg:     cfg,
	}
}

// Start registers every sweep and starts the cron loop.
func (s *Scheduler) Start() {
	s.register("reset_monthly_usage", s.cfg.ResetUsageSchedule, s.service.ResetMonthlyUsage)
	s.register("check_trials_ending_soon", s.cfg.TrialReminderSchedule, s.service.CheckTrialsEndingSoon)
	s.register("check_expiring_subscriptions", s.cfg.ExpiryReminderSchedule, s.service.CheckExpiringSubscriptions)
	s.register("process_renewals", s.cfg.RenewalSchedule, s.service.ProcessRenewals)
	s.register("check_overdue_payments", s.cfg.OverdueSchedule, s.service.CheckOverduePayments)
	s.register("sync_subscription_statuses", s.cfg.StatusSyncSchedule, s.service.SyncSubscriptionStatuses)
	s.register("cleanup_old_data", s.cfg.CleanupSchedule, s.service.CleanupOldData)
	s.register("generate_monthly_reports", s.cfg.MonthlyReportSchedule, s.service.GenerateMonthlyReports)

	s.cron.Start()
	s.logger.Info("Scheduler", "Lifecycle scheduler started", nil)
}

func (s *Scheduler) register(name, spec string, job func(ctx context.Context) (*dto.JobSummary, error)) {
	_, err := s.cron.AddFunc(spec, func() {
		summary, err := job(context.Background())
		if err != nil {
			s.logger.Error("Scheduler", "Job failed", map[string]interface{}{
				"job":   name,
				"error": err.Error(),
			})
			return
		}
		if summary.Failed > 0 {
			s.logger.Warn("Scheduler", "Job finished with failures", map[string]interface{}{
				"job":    name,
				"failed": summary.Failed,
				"errors": summary.Errors,
			})
		}
	})
	if err != nil {
		s.logger.Error("Scheduler", "Failed to schedule job", map[string]interface{}{
			"job":      name,
			"schedule": spec,
			"error":    err.Error(),
		})
		return
	}
	s.logger.Info("Scheduler", "Scheduled job", map[string]interface{}{
		"job":      name,
		"schedule": spec,
	})
}

// Stop gracefully stops the cron loop and returns a context that is done
// once running jobs have finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
