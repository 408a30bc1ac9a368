package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Property struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID `gorm:"type:uuid;not null;index"`
	Title     string    `gorm:"type:varchar(255);not null"`
	Status    string    `gorm:"type:varchar(50);not null;default:'draft'"`
	IsBoosted bool      `gorm:"default:false"`
	BoostedAt *time.Time
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Property) TableName() string {
	return "properties"
}

type Visit struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PropertyId  uuid.UUID `gorm:"type:uuid;not null;index"`
	UserId      uuid.UUID `gorm:"type:uuid;not null;index"`
	ScheduledAt time.Time `gorm:"not null;index"`
	Status      string    `gorm:"type:varchar(50);not null;default:'pending'"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (Visit) TableName() string {
	return "visits"
}
