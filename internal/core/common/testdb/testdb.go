// Package testdb opens throwaway SQLite databases carrying the full schema.
package testdb

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	auditDatamodel "github.com/frahmantamala/beacon/internal/core/datamodel/audit"
	identityDatamodel "github.com/frahmantamala/beacon/internal/core/datamodel/identity"
	invitationDatamodel "github.com/frahmantamala/beacon/internal/core/datamodel/invitation"
	organizationDatamodel "github.com/frahmantamala/beacon/internal/core/datamodel/organization"
	settingsDatamodel "github.com/frahmantamala/beacon/internal/core/datamodel/settings"
	userDatamodel "github.com/frahmantamala/beacon/internal/core/datamodel/user"
)

// Open returns an isolated in-memory database. All connections share one
// named memory database and the pool is capped at one connection, so
// concurrent callers serialize instead of seeing separate databases.
func Open() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&organizationDatamodel.Organization{},
		&userDatamodel.User{},
		&invitationDatamodel.Invitation{},
		&settingsDatamodel.SystemSetting{},
		&auditDatamodel.AuditLog{},
		&identityDatamodel.Account{},
	)
	if err != nil {
		return nil, err
	}
	return db, nil
}
