package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type UsageLogEntry struct {
	Id             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SubscriptionId *uuid.UUID `gorm:"type:uuid;index"`
	UserId         uuid.UUID  `gorm:"type:uuid;not null;index"`
	Feature        string     `gorm:"type:varchar(50);not null;index"`
	ResourceId     *uuid.UUID `gorm:"type:uuid"`
	Action         string     `gorm:"type:varchar(50);not null"`
	Count          int        `gorm:"default:1"`
	WasGated       bool       `gorm:"default:false"`
	GateType       string     `gorm:"type:varchar(10)"`
	OverrideReason *string    `gorm:"type:text"`
	IPAddress      string     `gorm:"type:varchar(45)"`
	UserAgent      string     `gorm:"type:text"`
	Metadata       datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt      time.Time  `gorm:"autoCreateTime;index"`
}

func (UsageLogEntry) TableName() string {
	return "usage_logs"
}
