package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/frahmantamala/beacon/internal/core/common/dberr"
	identityDatamodel "github.com/frahmantamala/beacon/internal/core/datamodel/identity"
	"github.com/frahmantamala/beacon/internal/identity"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AccountRepository is the local identity driver: bcrypt-hashed credentials
// in the auth_accounts table.
type AccountRepository struct {
	db         *gorm.DB
	bcryptCost int
}

func NewAccountRepository(db *gorm.DB, bcryptCost int) *AccountRepository {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AccountRepository{db: db, bcryptCost: bcryptCost}
}

func (r *AccountRepository) CreateAccount(ctx context.Context, req identity.AccountRequest) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), r.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	var metadata json.RawMessage
	if len(req.Metadata) > 0 {
		metadata, err = json.Marshal(req.Metadata)
		if err != nil {
			return "", fmt.Errorf("encode metadata: %w", err)
		}
	}

	account := &identityDatamodel.Account{
		Email:         req.Email,
		PasswordHash:  string(hash),
		EmailVerified: req.EmailVerified,
		Metadata:      metadata,
	}
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		if dberr.IsUniqueViolation(err) {
			return "", identity.ErrEmailExists
		}
		return "", fmt.Errorf("create account: %w", err)
	}
	return account.ID, nil
}

func (r *AccountRepository) DeleteAccount(ctx context.Context, accountID string) error {
	res := r.db.WithContext(ctx).Where("id = ?", accountID).Delete(&identityDatamodel.Account{})
	if res.Error != nil {
		return fmt.Errorf("delete account: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return identity.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) Authenticate(ctx context.Context, email, password string) (string, error) {
	var account identityDatamodel.Account
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", identity.ErrInvalidCredentials
		}
		return "", fmt.Errorf("find account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", identity.ErrInvalidCredentials
	}
	return account.ID, nil
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*identityDatamodel.Account, error) {
	var account identityDatamodel.Account
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}
