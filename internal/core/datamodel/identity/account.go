package identity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account is a credential record held by the local identity driver.
type Account struct {
	ID            string          `gorm:"primaryKey;type:varchar(128)"`
	Email         string          `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash  string          `gorm:"column:password_hash;not null"`
	EmailVerified bool            `gorm:"column:email_verified;not null"`
	Metadata      json.RawMessage `gorm:"column:metadata;type:jsonb"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (Account) TableName() string {
	return "auth_accounts"
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}
