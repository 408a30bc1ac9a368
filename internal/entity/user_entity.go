package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string
type UserStatus string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"

	UserStatusPending UserStatus = "pending"
	UserStatusActive  UserStatus = "active"
	UserStatusBlocked UserStatus = "blocked"
)

type User struct {
	Id        uuid.UUID
	Email     string
	FullName  string
	Phone     string
	Role      UserRole
	Status    UserStatus
	AvatarURL *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
