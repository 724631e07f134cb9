package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/custodia-labs/gamefit/internal/core/domain"
	"github.com/custodia-labs/gamefit/internal/core/ports/driven"
	"github.com/custodia-labs/gamefit/internal/core/ports/driving"
)

// Ensure authService implements AuthService
var _ driving.AuthService = (*authService)(nil)

const maxTokenTTL = 365 * 24 * time.Hour

// authService implements the AuthService interface
type authService struct {
	tokenAdapter driven.TokenAdapter
}

// NewAuthService creates a new AuthService
func NewAuthService(tokenAdapter driven.TokenAdapter) driving.AuthService {
	return &authService{
		tokenAdapter: tokenAdapter,
	}
}

// ValidateToken validates a JWT token and returns the auth context
func (s *authService) ValidateToken(ctx context.Context, token string) (*domain.AuthContext, error) {
	if token == "" {
		return nil, domain.ErrTokenInvalid
	}

	claims, err := s.tokenAdapter.ParseToken(token)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	// Check expiration
	if time.Now().Unix() > claims.ExpiresAt {
		return nil, domain.ErrTokenExpired
	}

	if !claims.Role.IsValid() {
		return nil, domain.ErrTokenInvalid
	}

	return &domain.AuthContext{
		Subject: claims.Subject,
		Role:    claims.Role,
		TokenID: claims.TokenID,
	}, nil
}

// IssueToken mints a signed token for subject
func (s *authService) IssueToken(ctx context.Context, subject string, role domain.Role, ttl time.Duration) (*domain.IssuedToken, error) {
	if subject == "" {
		return nil, fmt.Errorf("%w: subject is required", domain.ErrInvalidInput)
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}
	if ttl <= 0 || ttl > maxTokenTTL {
		return nil, fmt.Errorf("%w: token lifetime must be within (0, %s]", domain.ErrInvalidInput, maxTokenTTL)
	}

	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := &domain.TokenClaims{
		Subject:   subject,
		Role:      role,
		TokenID:   generateID(),
		IssuedAt:  now.Unix(),
		ExpiresAt: expiresAt.Unix(),
	}

	token, err := s.tokenAdapter.GenerateToken(claims)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &domain.IssuedToken{
		Token:     token,
		Role:      role,
		ExpiresAt: expiresAt,
	}, nil
}

// generateID generates a random ID
func generateID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
