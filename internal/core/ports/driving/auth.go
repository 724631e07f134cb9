package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/gamefit/internal/core/domain"
)

// AuthService validates and issues API bearer tokens
type AuthService interface {
	// ValidateToken validates a JWT token and returns the auth context
	ValidateToken(ctx context.Context, token string) (*domain.AuthContext, error)

	// IssueToken mints a token for a subject with the given role and lifetime
	IssueToken(ctx context.Context, subject string, role domain.Role, ttl time.Duration) (*domain.IssuedToken, error)
}
