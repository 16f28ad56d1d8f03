package settings

import (
	"context"
	"encoding/json"
	"fmt"

	errors "github.com/frahmantamala/beacon/internal"
	settingsDatamodel "github.com/frahmantamala/beacon/internal/core/datamodel/settings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// SeedDefaults writes one row per category. Existing rows are kept.
func (s *Service) SeedDefaults(ctx context.Context, organizationID string) error {
	rows := make([]*settingsDatamodel.SystemSetting, 0, len(Categories))
	for _, category := range Categories {
		value, err := json.Marshal(Defaults[category])
		if err != nil {
			return fmt.Errorf("encode %s defaults: %w", category, err)
		}
		rows = append(rows, &settingsDatamodel.SystemSetting{
			OrganizationID: organizationID,
			Category:       category,
			Value:          value,
		})
	}
	return s.repo.CreateIfMissing(ctx, rows)
}

// Get returns the stored value, or the default when the row is missing.
func (s *Service) Get(ctx context.Context, organizationID, category string) (*Setting, error) {
	def, known := Defaults[category]
	if !known {
		return nil, errors.ErrUnknownSetting
	}

	row, err := s.repo.Get(ctx, organizationID, category)
	if err != nil {
		return nil, fmt.Errorf("failed to load setting: %w", err)
	}
	if row != nil {
		return &Setting{Category: category, Value: row.Value}, nil
	}

	value, err := json.Marshal(def)
	if err != nil {
		return nil, err
	}
	return &Setting{Category: category, Value: value, IsDefault: true}, nil
}
