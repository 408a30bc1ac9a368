package entity

import (
	"time"

	"github.com/google/uuid"
)

// Property is the minimal listing row the gating engine counts against for
// users without a subscription.
type Property struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Title     string
	Status    string
	IsBoosted bool
	BoostedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Visit struct {
	Id          uuid.UUID
	PropertyId  uuid.UUID
	UserId      uuid.UUID
	ScheduledAt time.Time
	Status      string
	CreatedAt   time.Time
}
