package driven

import (
	"context"
)

// EmbeddingService generates text embeddings.
// Implementations wrap domain.ErrUnauthorized when the provider rejects the
// credential so callers can tell fatal failures from transient ones.
type EmbeddingService interface {
	// Embed generates one embedding per text, in input order
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a single query text
	EmbedQuery(ctx context.Context, query string) ([]float32, error)

	// Dimensions returns the embedding dimension size, 0 if unknown
	Dimensions() int

	// Model returns the model name being used
	Model() string

	// HealthCheck verifies the embedding service is available
	HealthCheck(ctx context.Context) error

	// Close releases resources held by the embedding service
	Close() error
}
