// FILE: internal/service/collaborators.go
// External collaborator contracts. Implementations live in internal/pkg
// (midtrans payment, mailer+NATS notifier); tests substitute mocks.
package service

import (
	"context"

	"github.com/google/uuid"
)

// PaymentCollaborator captures a charge for a subscription renewal or
// purchase. The retry/charging protocol is the collaborator's concern.
type PaymentCollaborator interface {
	Charge(ctx context.Context, subscriptionId uuid.UUID, amount float64, currency string, paymentMethodRef string) (paymentId string, err error)
}

// NotificationCollaborator delivers lifecycle notices. Fire-and-forget:
// callers log failures and move on, they never block a state mutation on it.
type NotificationCollaborator interface {
	Notify(ctx context.Context, userId uuid.UUID, eventType string, payload map[string]interface{}) error
}

// Notification event types.
const (
	NotifySubscriptionCreated = "SUBSCRIPTION_CREATED"
	NotifySubscriptionRenewed = "SUBSCRIPTION_RENEWED"
	NotifyTrialEndingSoon     = "TRIAL_ENDING_SOON"
	NotifyExpiringSoon        = "SUBSCRIPTION_EXPIRING_SOON"
	NotifyExpired             = "SUBSCRIPTION_EXPIRED"
	NotifyPaymentFailed       = "PAYMENT_FAILED"
	NotifyRenewalReminder     = "RENEWAL_REMINDER"
	NotifyCancelled           = "SUBSCRIPTION_CANCELLED"
	NotifyMonthlyReport       = "MONTHLY_REPORT"
)
