package driven

import (
	"github.com/custodia-labs/gamefit/internal/core/domain"
)

// AIServiceFactory creates embedding services from settings
type AIServiceFactory interface {
	// CreateEmbeddingService creates an embedding service from settings.
	// Returns nil, nil if settings are not configured.
	CreateEmbeddingService(settings *domain.EmbeddingSettings) (EmbeddingService, error)
}
