package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SubscriptionPlan struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name         string    `gorm:"type:varchar(255);not null"`
	Slug         string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Description  string    `gorm:"type:text"`
	Tagline      string    `gorm:"type:text"`
	Price        float64   `gorm:"type:decimal(10,2);not null"`
	Currency     string    `gorm:"type:varchar(10);not null;default:'USD'"`
	BillingCycle string    `gorm:"type:varchar(20);not null;default:'monthly'"`
	TrialDays    int       `gorm:"default:0"`
	// Quota Limits (-1 = unlimited, 0 = disabled)
	MaxProperties           int `gorm:"default:3"`
	MaxVisitsPerMonth       int `gorm:"default:5"`
	MaxBoostsPerMonth       int `gorm:"default:0"`
	MaxMediaPerProperty     int `gorm:"default:5"`
	MaxAmenitiesPerProperty int `gorm:"default:10"`
	// Feature Flags
	BoostEnabled      bool `gorm:"default:false"`
	PremiumSupport    bool `gorm:"default:false"`
	AdvancedAnalytics bool `gorm:"default:false"`
	BulkOperations    bool `gorm:"default:false"`
	// Display Settings
	IsMostPopular bool `gorm:"default:false"`
	IsVisible     bool `gorm:"default:true"`
	IsActive      bool `gorm:"default:true"`
	SortOrder     int  `gorm:"default:0"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (SubscriptionPlan) TableName() string {
	return "subscription_plans"
}

type Subscription struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId       uuid.UUID `gorm:"type:uuid;not null;index"`
	PlanId       uuid.UUID `gorm:"type:uuid;not null;index"`
	Price        float64   `gorm:"type:decimal(10,2);not null"`
	Currency     string    `gorm:"type:varchar(10);not null;default:'USD'"`
	BillingCycle string    `gorm:"type:varchar(20);not null"`

	Status            string     `gorm:"type:varchar(20);not null;index"`
	StartDate         time.Time  `gorm:"not null"`
	EndDate           time.Time  `gorm:"not null;index"`
	TrialEndDate      *time.Time `gorm:"index"`
	AutoRenew         bool       `gorm:"default:true"`
	CancelAtPeriodEnd bool       `gorm:"default:false"`
	CancelledDate     *time.Time

	PropertiesUsed int `gorm:"default:0"`
	VisitsUsed     int `gorm:"default:0"`
	BoostsUsed     int `gorm:"default:0"`
	MediaUsed      int `gorm:"default:0"`
	AmenitiesUsed  int `gorm:"default:0"`

	LastReset          time.Time `gorm:"not null"`
	NextReset          time.Time `gorm:"not null;index"`
	RenewalAttempts    int       `gorm:"default:0"`
	LastRenewalAttempt *time.Time
	LastNotifiedAt     *time.Time
	LastPaymentId      *string `gorm:"type:varchar(255)"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

type SubscriptionEvent struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SubscriptionId uuid.UUID      `gorm:"type:uuid;not null;index"`
	UserId         uuid.UUID      `gorm:"type:uuid;not null;index"`
	EventType      string         `gorm:"type:varchar(50);not null"`
	Payload        datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt      time.Time      `gorm:"autoCreateTime;index"`
}

func (SubscriptionEvent) TableName() string {
	return "subscription_events"
}
