package user

import (
	"context"
	"fmt"

	errors "github.com/frahmantamala/beacon/internal"
	userDatamodel "github.com/frahmantamala/beacon/internal/core/datamodel/user"
)

// Repository lookups return nil, nil when no row matches.
type Repository interface {
	Create(ctx context.Context, u *userDatamodel.User) error
	GetByID(ctx context.Context, id string) (*userDatamodel.User, error)
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ListByOrganization(ctx context.Context, organizationID string) ([]*userDatamodel.User, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
	}
}

func (s *Service) GetByID(ctx context.Context, userID string) (*User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	if u == nil {
		return nil, errors.ErrUserNotFound
	}
	return FromDataModel(u), nil
}

func (s *Service) ListByOrganization(ctx context.Context, organizationID string) ([]*User, error) {
	rows, err := s.repo.ListByOrganization(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*User, 0, len(rows))
	for _, row := range rows {
		users = append(users, FromDataModel(row))
	}
	return users, nil
}
