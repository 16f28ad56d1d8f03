// Package firebase implements the identity provider on Firebase
// Authentication.
package firebase

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/frahmantamala/beacon/internal"
	"github.com/frahmantamala/beacon/internal/identity"
	"google.golang.org/api/option"
)

// AuthClient is the subset of *auth.Client the driver calls.
type AuthClient interface {
	CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error)
	DeleteUser(ctx context.Context, uid string) error
	SetCustomUserClaims(ctx context.Context, uid string, customClaims map[string]interface{}) error
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

type Provider struct {
	client AuthClient
}

func NewProvider(client AuthClient) *Provider {
	return &Provider{client: client}
}

// NewAuthClient builds a Firebase Auth client from the identity config.
// An empty credentials file falls back to application default credentials.
func NewAuthClient(ctx context.Context, cfg internal.IdentityConfig) (*auth.Client, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth: %w", err)
	}
	return client, nil
}

func (p *Provider) CreateAccount(ctx context.Context, req identity.AccountRequest) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(req.Email).
		Password(req.Password).
		EmailVerified(req.EmailVerified)

	record, err := p.client.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return "", identity.ErrEmailExists
		}
		return "", fmt.Errorf("firebase create user: %w", err)
	}

	if len(req.Metadata) > 0 {
		claims := make(map[string]interface{}, len(req.Metadata))
		for k, v := range req.Metadata {
			claims[k] = v
		}
		if err := p.client.SetCustomUserClaims(ctx, record.UID, claims); err != nil {
			// A half-configured account is worse than none.
			_ = p.client.DeleteUser(context.WithoutCancel(ctx), record.UID)
			return "", fmt.Errorf("firebase set claims: %w", err)
		}
	}

	return record.UID, nil
}

func (p *Provider) DeleteAccount(ctx context.Context, accountID string) error {
	if err := p.client.DeleteUser(ctx, accountID); err != nil {
		if auth.IsUserNotFound(err) {
			return identity.ErrAccountNotFound
		}
		return fmt.Errorf("firebase delete user: %w", err)
	}
	return nil
}

func (p *Provider) VerifyToken(ctx context.Context, token string) (string, error) {
	decoded, err := p.client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", identity.ErrInvalidCredentials
	}
	return decoded.UID, nil
}
