package auth

import (
	"context"
	"database/sql"
	"errors"

	"github.com/frahmantamala/beacon/internal/auth"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

// GetUser loads the fields the auth middleware puts on the request context.
func (r *Repository) GetUser(ctx context.Context, userID string) (*auth.User, error) {
	var u auth.User
	query := `SELECT id, email, name, organization_id, role, is_active FROM users WHERE id = ?`

	row := r.db.WithContext(ctx).Raw(query, userID).Row()
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.OrganizationID, &u.Role, &u.IsActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
