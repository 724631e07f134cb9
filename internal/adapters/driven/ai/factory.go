package ai

import (
	"fmt"
	"log/slog"

	"github.com/custodia-labs/gamefit/internal/core/domain"
	"github.com/custodia-labs/gamefit/internal/core/ports/driven"
)

// Ensure Factory implements AIServiceFactory
var _ driven.AIServiceFactory = (*Factory)(nil)

// Factory creates embedding services based on configuration.
// Every service it creates is wrapped in a ResilientEmbedding.
type Factory struct {
	resilience ResilienceConfig
	logger     *slog.Logger
}

// NewFactory creates a new AI service factory
func NewFactory(resilience ResilienceConfig, logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{
		resilience: resilience,
		logger:     logger,
	}
}

// CreateEmbeddingService creates an embedding service from settings
func (f *Factory) CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	var (
		svc driven.EmbeddingService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderGemini:
		svc, err = NewGeminiEmbedding(settings.APIKey, settings.Model, settings.BaseURL)
	case domain.AIProviderOpenAI:
		svc, err = NewOpenAIEmbedding(settings.APIKey, settings.Model, settings.BaseURL)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidProvider, settings.Provider)
	}
	if err != nil {
		return nil, err
	}

	return NewResilientEmbedding(svc, f.resilience, f.logger), nil
}
