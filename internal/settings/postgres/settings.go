package postgres

import (
	"context"
	"errors"
	"fmt"

	settingsDatamodel "github.com/frahmantamala/beacon/internal/core/datamodel/settings"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) CreateIfMissing(ctx context.Context, rows []*settingsDatamodel.SystemSetting) error {
	if len(rows) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "organization_id"}, {Name: "category"}},
			DoNothing: true,
		}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}
	return nil
}

func (r *SettingsRepository) Get(ctx context.Context, organizationID, category string) (*settingsDatamodel.SystemSetting, error) {
	var row settingsDatamodel.SystemSetting
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND category = ?", organizationID, category).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}
