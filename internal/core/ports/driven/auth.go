package driven

import "github.com/custodia-labs/gamefit/internal/core/domain"

// TokenAdapter handles token cryptographic operations.
type TokenAdapter interface {
	GenerateToken(claims *domain.TokenClaims) (string, error)
	ParseToken(token string) (*domain.TokenClaims, error)
}
