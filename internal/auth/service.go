package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/beacon/internal"
	"github.com/frahmantamala/beacon/internal/identity"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

const (
	tokenUseAccess  = "access"
	tokenUseRefresh = "refresh"
)

// UserLookup loads the profile behind an identity account. It returns nil,
// nil when the profile does not exist.
type UserLookup interface {
	GetUser(ctx context.Context, userID string) (*User, error)
}

// Service is the main auth service with dependencies
type Service struct {
	accounts       identity.Authenticator
	verifier       identity.TokenVerifier
	users          UserLookup
	tokenGenerator TokenGenerator
	logger         zerolog.Logger
}

// NewService creates a new auth service. accounts may be nil when the
// identity provider handles password sign-in itself.
func NewService(accounts identity.Authenticator, users UserLookup, tokenGen TokenGenerator, logger zerolog.Logger) *Service {
	return &Service{
		accounts:       accounts,
		users:          users,
		tokenGenerator: tokenGen,
		logger:         logger,
	}
}

// WithTokenVerifier lets the middleware accept provider-issued ID tokens
// in addition to our own access tokens.
func (s *Service) WithTokenVerifier(v identity.TokenVerifier) *Service {
	s.verifier = v
	return s
}

// NewJWTTokenGenerator creates a new JWT token generator
func NewJWTTokenGenerator(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTTokenGenerator {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &JWTTokenGenerator{
		AccessTokenSecret:  []byte(accessSecret),
		RefreshTokenSecret: []byte(refreshSecret),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
	}
}

// Login validates credentials and returns tokens
func (s *Service) Login(ctx context.Context, dto LoginDTO) (*AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if s.accounts == nil {
		return nil, internal.NewForbiddenError("password login is handled by the identity provider", internal.ErrCodeInvalidCredentials)
	}

	accountID, err := s.accounts.Authenticate(ctx, dto.Email, dto.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return nil, internal.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	u, err := s.activeUser(ctx, accountID)
	if err != nil {
		if errors.Is(err, internal.ErrInvalidToken) {
			// account without a profile, e.g. an orphan from a failed signup
			s.logger.Warn().Str("account_id", accountID).Msg("login for account without profile")
			return nil, internal.ErrInvalidCredentials
		}
		return nil, err
	}

	return s.issue(u)
}

// RefreshTokens validates refresh token and returns new tokens
func (s *Service) RefreshTokens(ctx context.Context, dto RefreshTokenDTO) (*AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	claims, err := s.tokenGenerator.ValidateRefreshToken(dto.RefreshToken)
	if err != nil {
		return nil, err
	}

	// reload so role or deactivation changes apply on refresh
	u, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	return s.issue(u)
}

// Authenticate resolves a bearer token to an active user.
func (s *Service) Authenticate(ctx context.Context, token string) (*User, error) {
	claims, err := s.tokenGenerator.ValidateAccessToken(token)
	if err == nil {
		return s.activeUser(ctx, claims.UserID)
	}

	if s.verifier != nil && !errors.Is(err, internal.ErrTokenExpired) {
		accountID, verr := s.verifier.VerifyToken(ctx, token)
		if verr == nil {
			return s.activeUser(ctx, accountID)
		}
	}
	return nil, err
}

func (s *Service) activeUser(ctx context.Context, userID string) (*User, error) {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, internal.ErrInvalidToken
	}
	if !u.IsActive {
		return nil, internal.ErrUserInactive
	}
	return u, nil
}

func (s *Service) issue(u *User) (*AuthTokens, error) {
	accessToken, err := s.tokenGenerator.GenerateAccessToken(u)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(u)
	if err != nil {
		return nil, err
	}

	var expiresIn int64
	if g, ok := s.tokenGenerator.(*JWTTokenGenerator); ok {
		expiresIn = int64(g.AccessTokenTTL.Seconds())
	}

	return &AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    expiresIn,
	}, nil
}

// GenerateAccessToken creates a new access token
func (j *JWTTokenGenerator) GenerateAccessToken(u *User) (string, error) {
	return j.sign(u, tokenUseAccess, j.AccessTokenTTL, j.AccessTokenSecret)
}

// GenerateRefreshToken creates a new refresh token
func (j *JWTTokenGenerator) GenerateRefreshToken(u *User) (string, error) {
	return j.sign(u, tokenUseRefresh, j.RefreshTokenTTL, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) sign(u *User, use string, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:         u.ID,
		Email:          u.Email,
		OrganizationID: u.OrganizationID,
		Role:           u.Role,
		TokenUse:       use,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   u.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (j *JWTTokenGenerator) ValidateAccessToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, tokenUseAccess, j.AccessTokenSecret)
}

func (j *JWTTokenGenerator) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, tokenUseRefresh, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) validate(tokenString, use string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TokenUse != use {
		return nil, internal.ErrInvalidToken
	}
	return claims, nil
}
