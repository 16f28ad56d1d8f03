package organization

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusTrialing = "trialing"
	StatusActive   = "active"
	StatusPastDue  = "past_due"
	StatusCanceled = "canceled"
	StatusInactive = "inactive"
)

const (
	TierFree    = "free"
	TierMonthly = "monthly"
	TierYearly  = "yearly"
	TierPro     = "pro"
)

type Organization struct {
	ID                 string    `gorm:"primaryKey;type:varchar(64)"`
	Name               string    `gorm:"column:name;not null"`
	Slug               string    `gorm:"column:slug;uniqueIndex;not null"`
	BillingCustomerID  *string   `gorm:"column:billing_customer_id;index"`
	SubscriptionStatus string    `gorm:"column:subscription_status;not null"`
	SubscriptionTier   string    `gorm:"column:subscription_tier;not null"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return nil
}
