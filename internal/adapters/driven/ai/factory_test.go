package ai

import (
	"errors"
	"testing"

	"github.com/custodia-labs/gamefit/internal/core/domain"
)

func TestFactory_CreateEmbeddingService_NotConfigured(t *testing.T) {
	factory := NewFactory(ResilienceConfig{}, nil)

	for _, settings := range []*domain.EmbeddingSettings{
		nil,
		{},
		{Provider: domain.AIProviderGemini},
	} {
		svc, err := factory.CreateEmbeddingService(settings)
		if err != nil {
			t.Errorf("expected no error for unconfigured settings, got %v", err)
		}
		if svc != nil {
			t.Error("expected nil service for unconfigured settings")
		}
	}
}

func TestFactory_CreateEmbeddingService_Providers(t *testing.T) {
	factory := NewFactory(DefaultResilienceConfig(), nil)

	tests := []struct {
		provider domain.AIProvider
		model    string
	}{
		{domain.AIProviderGemini, "text-embedding-004"},
		{domain.AIProviderOpenAI, "text-embedding-3-small"},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			svc, err := factory.CreateEmbeddingService(&domain.EmbeddingSettings{
				Provider: tt.provider,
				APIKey:   "test-key",
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if _, ok := svc.(*ResilientEmbedding); !ok {
				t.Errorf("expected resilient wrapper, got %T", svc)
			}
			if svc.Model() != tt.model {
				t.Errorf("expected model %s, got %s", tt.model, svc.Model())
			}
		})
	}
}

func TestFactory_CreateEmbeddingService_InvalidProvider(t *testing.T) {
	factory := NewFactory(ResilienceConfig{}, nil)

	_, err := factory.CreateEmbeddingService(&domain.EmbeddingSettings{
		Provider: "invalid",
		APIKey:   "key",
	})
	if !errors.Is(err, domain.ErrInvalidProvider) {
		t.Errorf("expected ErrInvalidProvider, got %v", err)
	}
}
