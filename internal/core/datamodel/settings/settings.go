package settings

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CategoryReviewDefaults       = "review_defaults"
	CategoryNotificationDefaults = "notification_defaults"
	CategoryFeatureFlags         = "feature_flags"
)

type SystemSetting struct {
	ID             string          `gorm:"primaryKey;type:varchar(64)"`
	OrganizationID string          `gorm:"column:organization_id;not null;uniqueIndex:idx_system_settings_org_category"`
	Category       string          `gorm:"column:category;not null;uniqueIndex:idx_system_settings_org_category"`
	Value          json.RawMessage `gorm:"column:value;type:jsonb;not null"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *SystemSetting) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}
