// FILE: internal/pkg/notification/notifier.go
// Lifecycle notification fan-out: every notice goes onto the NATS event bus;
// notices addressed to a user additionally get an email. Delivery is
// best-effort on both legs.
package notification

import (
	"context"
	"time"

	"rentora-be/internal/pkg/logger"
	"rentora-be/internal/pkg/mailer"
	"rentora-be/internal/repository/specification"
	"rentora-be/internal/repository/unitofwork"
	"rentora-be/pkg/events"
	pktNats "rentora-be/pkg/nats"

	"github.com/google/uuid"
)

type LifecycleNotifier struct {
	uowFactory unitofwork.RepositoryFactory
	mailer     mailer.IEmailService
	publisher  *pktNats.Publisher
	logger     logger.ILogger
}

func NewLifecycleNotifier(uowFactory unitofwork.RepositoryFactory, m mailer.IEmailService, publisher *pktNats.Publisher, log logger.ILogger) *LifecycleNotifier {
	return &LifecycleNotifier{
		uowFactory: uowFactory,
		mailer:     m,
		publisher:  publisher,
		logger:     log,
	}
}

// Notify publishes the event and emails the user. A nil userId (uuid.Nil)
// marks a system-level notice that only goes to the bus.
func (n *LifecycleNotifier) Notify(ctx context.Context, userId uuid.UUID, eventType string, payload map[string]interface{}) error {
	if payload == nil {
		payload = make(map[string]interface{})
	}
	if userId != uuid.Nil {
		payload["user_id"] = userId.String()
	}

	if n.publisher != nil {
		evt := events.BaseEvent{
			Type:       eventType,
			Data:       payload,
			OccurredAt: time.Now(),
		}
		if err := n.publisher.Publish(ctx, evt); err != nil {
			n.logger.Warn("LifecycleNotifier", "Failed to publish event", map[string]interface{}{
				"event_type": eventType,
				"error":      err.Error(),
			})
		}
	}

	if userId == uuid.Nil || n.mailer == nil {
		return nil
	}

	uow := n.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return err
	}
	if user == nil || user.Email == "" {
		n.logger.Warn("LifecycleNotifier", "No deliverable address for user", map[string]interface{}{
			"user_id":    userId.String(),
			"event_type": eventType,
		})
		return nil
	}

	return n.mailer.SendLifecycleNotice(user.Email, eventType, payload)
}
