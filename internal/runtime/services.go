package runtime

import (
	"sync"

	"github.com/custodia-labs/gamefit/internal/core/domain"
	"github.com/custodia-labs/gamefit/internal/core/ports/driven"
)

// Services holds the embedding service used for evidence retrieval.
// The embedding job publishes its provider here once a run succeeds, so
// query embeddings use the same model and credential as the corpus.
// Thread-safe for concurrent access.
type Services struct {
	mu sync.RWMutex

	// Config tracks capability flags
	config *domain.RuntimeConfig

	embeddingService driven.EmbeddingService
	keyFingerprint   string
}

// NewServices creates a new Services registry
func NewServices(config *domain.RuntimeConfig) *Services {
	return &Services{
		config: config,
	}
}

// Config returns the runtime configuration
func (s *Services) Config() *domain.RuntimeConfig {
	return s.config
}

// EmbeddingService returns the current embedding service (may be nil)
func (s *Services) EmbeddingService() driven.EmbeddingService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.embeddingService
}

// KeyFingerprint identifies the credential of the current embedding service
func (s *Services) KeyFingerprint() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keyFingerprint
}

// SetEmbeddingService replaces the embedding service.
// The previous service is closed unless it is the one being set.
func (s *Services) SetEmbeddingService(svc driven.EmbeddingService, keyFingerprint string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.embeddingService != nil && s.embeddingService != svc {
		_ = s.embeddingService.Close()
	}

	s.embeddingService = svc
	s.keyFingerprint = keyFingerprint
	if svc == nil {
		s.keyFingerprint = ""
	}
	s.config.SetEmbeddingAvailable(svc != nil)
}

// Close shuts down all services
func (s *Services) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.embeddingService != nil {
		_ = s.embeddingService.Close()
		s.embeddingService = nil
	}
	s.keyFingerprint = ""
	s.config.SetEmbeddingAvailable(false)

	return nil
}
