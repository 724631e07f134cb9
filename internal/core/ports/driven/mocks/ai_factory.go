package mocks

import (
	"sync"

	"github.com/custodia-labs/gamefit/internal/core/domain"
	"github.com/custodia-labs/gamefit/internal/core/ports/driven"
)

var _ driven.AIServiceFactory = (*MockAIServiceFactory)(nil)

// MockAIServiceFactory hands out a fixed embedding service and records the
// settings it was asked to build from.
type MockAIServiceFactory struct {
	mu       sync.Mutex
	Service  driven.EmbeddingService
	Err      error
	requests []domain.EmbeddingSettings
}

// NewMockAIServiceFactory creates a factory returning svc
func NewMockAIServiceFactory(svc driven.EmbeddingService) *MockAIServiceFactory {
	return &MockAIServiceFactory{Service: svc}
}

func (f *MockAIServiceFactory) CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if settings != nil {
		f.requests = append(f.requests, *settings)
	}
	if f.Err != nil {
		return nil, f.Err
	}
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}
	return f.Service, nil
}

// Requests returns the settings passed to every CreateEmbeddingService call.
func (f *MockAIServiceFactory) Requests() []domain.EmbeddingSettings {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.EmbeddingSettings, len(f.requests))
	copy(out, f.requests)
	return out
}
