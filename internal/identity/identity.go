// Package identity abstracts the account store that owns credentials.
// Profiles live in the users table; accounts live with the provider.
package identity

import (
	"context"
	"errors"
)

var (
	ErrEmailExists        = errors.New("identity: email already registered")
	ErrAccountNotFound    = errors.New("identity: account not found")
	ErrInvalidCredentials = errors.New("identity: invalid credentials")
	ErrNotSupported       = errors.New("identity: operation not supported by driver")
)

type AccountRequest struct {
	Email         string
	Password      string
	EmailVerified bool
	Metadata      map[string]string
}

// Provider creates and removes accounts. DeleteAccount is the compensation
// for CreateAccount.
type Provider interface {
	CreateAccount(ctx context.Context, req AccountRequest) (string, error)
	DeleteAccount(ctx context.Context, accountID string) error
}

// Authenticator verifies a password and returns the account id.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (string, error)
}

// TokenVerifier validates a provider-issued token and returns the account id.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}
