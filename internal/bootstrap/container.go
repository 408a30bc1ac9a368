package bootstrap

import (
	"log"

	"rentora-be/internal/config"
	"rentora-be/internal/controller"
	"rentora-be/internal/pkg/logger"
	"rentora-be/internal/pkg/mailer"
	"rentora-be/internal/pkg/notification"
	"rentora-be/internal/pkg/payment"
	"rentora-be/internal/repository/unitofwork"
	"rentora-be/internal/scheduler"
	"rentora-be/internal/service"

	pktNats "rentora-be/pkg/nats"

	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	PlanController         controller.PlanController
	UsageController        controller.UsageController
	SubscriptionController controller.SubscriptionController

	// Background services (exposed for main.go to run)
	Scheduler *scheduler.Scheduler

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	notifier := notification.NewLifecycleNotifier(uowFactory, emailService, natsPub, sysLogger)
	paymentGateway := payment.NewMidtransGateway(cfg.Midtrans.ServerKey, cfg.Midtrans.Production, sysLogger)

	// 3. Services
	planService := service.NewPlanService(uowFactory, sysLogger)
	usageService := service.NewUsageService(uowFactory, sysLogger)
	subscriptionService := service.NewSubscriptionService(uowFactory, notifier, sysLogger)
	schedulerService := service.NewSchedulerService(
		uowFactory,
		subscriptionService,
		paymentGateway,
		notifier,
		sysLogger,
		service.SchedulerOptions{
			TrialLookaheadDays:    cfg.Scheduler.TrialLookaheadDays,
			ExpiryLookaheadDays:   cfg.Scheduler.ExpiryLookaheadDays,
			RenewalLookaheadHours: cfg.Scheduler.RenewalLookaheadHours,
			GraceDays:             cfg.Scheduler.GraceDays,
			MaxRenewalAttempts:    cfg.Scheduler.MaxRenewalAttempts,
			RetentionDays:         cfg.Scheduler.RetentionDays,
		},
	)

	// 4. Background workers
	var lifecycleScheduler *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		lifecycleScheduler = scheduler.NewScheduler(schedulerService, sysLogger, cfg.Scheduler)
	}

	// 5. Controllers
	return &Container{
		PlanController:         controller.NewPlanController(planService),
		UsageController:        controller.NewUsageController(usageService),
		SubscriptionController: controller.NewSubscriptionController(subscriptionService, sysLogger),

		Scheduler: lifecycleScheduler,
		Logger:    sysLogger,
	}
}
