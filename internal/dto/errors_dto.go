// FILE: internal/dto/errors_dto.go
// Typed error taxonomy returned by the subscription and usage services.
package dto

import (
	"fmt"

	"github.com/google/uuid"
)

// NotFoundError covers absent users, plans, and subscriptions.
type NotFoundError struct {
	Resource string
	Id       uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Id)
}

// InvalidStateError signals a lifecycle transition not permitted from the
// subscription's current status.
type InvalidStateError struct {
	Status string
	Action string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s a subscription in status %q", e.Action, e.Status)
}

// InvariantViolationError signals the single-active-subscription rule would
// be broken.
type InvariantViolationError struct {
	UserId         uuid.UUID
	SubscriptionId uuid.UUID
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("user %s already has an active subscription %s", e.UserId, e.SubscriptionId)
}

// QuotaExceededError carries the remaining quota so callers can render
// "N remaining" messaging.
type QuotaExceededError struct {
	Feature   string
	Limit     int
	Used      int
	Remaining int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded for %s: %d/%d used, %d remaining", e.Feature, e.Used, e.Limit, e.Remaining)
}

// ValidationError covers malformed input such as negative counts or an
// unknown feature key.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// UpstreamFailureError wraps a payment or notification collaborator error.
type UpstreamFailureError struct {
	Collaborator string
	Err          error
}

func (e *UpstreamFailureError) Error() string {
	return fmt.Sprintf("%s collaborator failed: %v", e.Collaborator, e.Err)
}

func (e *UpstreamFailureError) Unwrap() error {
	return e.Err
}
