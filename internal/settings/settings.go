package settings

import (
	"context"
	"encoding/json"

	settingsDatamodel "github.com/frahmantamala/beacon/internal/core/datamodel/settings"
)

const (
	CategoryReviewDefaults       = settingsDatamodel.CategoryReviewDefaults
	CategoryNotificationDefaults = settingsDatamodel.CategoryNotificationDefaults
	CategoryFeatureFlags         = settingsDatamodel.CategoryFeatureFlags
)

type ReviewDefaults struct {
	CycleLengthDays       int  `json:"cycle_length_days"`
	SelfReviewEnabled     bool `json:"self_review_enabled"`
	PeerReviewEnabled     bool `json:"peer_review_enabled"`
	AnonymousPeerFeedback bool `json:"anonymous_peer_feedback"`
}

type NotificationDefaults struct {
	EmailEnabled      bool `json:"email_enabled"`
	ReviewReminders   bool `json:"review_reminders"`
	GoalUpdates       bool `json:"goal_updates"`
	OneOnOneReminders bool `json:"one_on_one_reminders"`
}

type FeatureFlags struct {
	OKRs         bool `json:"okrs"`
	Reviews      bool `json:"reviews"`
	OneOnOnes    bool `json:"one_on_ones"`
	CalendarSync bool `json:"calendar_sync"`
}

// Defaults are seeded at signup and served whenever a row is missing.
var Defaults = map[string]interface{}{
	CategoryReviewDefaults: ReviewDefaults{
		CycleLengthDays:       90,
		SelfReviewEnabled:     true,
		PeerReviewEnabled:     false,
		AnonymousPeerFeedback: true,
	},
	CategoryNotificationDefaults: NotificationDefaults{
		EmailEnabled:      true,
		ReviewReminders:   true,
		GoalUpdates:       true,
		OneOnOneReminders: true,
	},
	CategoryFeatureFlags: FeatureFlags{
		OKRs:         true,
		Reviews:      true,
		OneOnOnes:    true,
		CalendarSync: false,
	},
}

// Categories lists the known categories in seeding order.
var Categories = []string{CategoryReviewDefaults, CategoryNotificationDefaults, CategoryFeatureFlags}

type Setting struct {
	Category  string          `json:"category"`
	Value     json.RawMessage `json:"value"`
	IsDefault bool            `json:"is_default"`
}

type Repository interface {
	CreateIfMissing(ctx context.Context, rows []*settingsDatamodel.SystemSetting) error
	Get(ctx context.Context, organizationID, category string) (*settingsDatamodel.SystemSetting, error)
}
