package runtime

import (
	"context"
	"testing"

	"github.com/custodia-labs/gamefit/internal/core/domain"
)

// mockEmbeddingService is a mock implementation for testing
type mockEmbeddingService struct {
	healthCheckErr error
	closed         bool
}

func (m *mockEmbeddingService) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, nil
}

func (m *mockEmbeddingService) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return nil, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	return 768
}

func (m *mockEmbeddingService) Model() string {
	return "test-model"
}

func (m *mockEmbeddingService) HealthCheck(ctx context.Context) error {
	return m.healthCheckErr
}

func (m *mockEmbeddingService) Close() error {
	m.closed = true
	return nil
}

func TestNewServices(t *testing.T) {
	config := domain.NewRuntimeConfig("csv", "none")
	services := NewServices(config)

	if services.Config() != config {
		t.Error("expected config to match")
	}
	if services.EmbeddingService() != nil {
		t.Error("expected nil embedding service initially")
	}
	if services.KeyFingerprint() != "" {
		t.Error("expected empty fingerprint initially")
	}
}

func TestServices_SetEmbeddingService(t *testing.T) {
	config := domain.NewRuntimeConfig("csv", "none")
	services := NewServices(config)

	first := &mockEmbeddingService{}
	services.SetEmbeddingService(first, "abc123")

	if services.EmbeddingService() != first {
		t.Error("expected first service")
	}
	if services.KeyFingerprint() != "abc123" {
		t.Errorf("unexpected fingerprint %q", services.KeyFingerprint())
	}
	if !config.EmbeddingAvailable() {
		t.Error("expected embedding available")
	}

	// Setting the same instance again must not close it
	services.SetEmbeddingService(first, "abc123")
	if first.closed {
		t.Error("same service should not be closed when re-set")
	}

	second := &mockEmbeddingService{}
	services.SetEmbeddingService(second, "def456")
	if !first.closed {
		t.Error("expected previous service to be closed")
	}

	services.SetEmbeddingService(nil, "ignored")
	if !second.closed {
		t.Error("expected second service to be closed")
	}
	if config.EmbeddingAvailable() {
		t.Error("expected embedding unavailable")
	}
	if services.KeyFingerprint() != "" {
		t.Error("fingerprint should be cleared with the service")
	}
}

func TestServices_Close(t *testing.T) {
	config := domain.NewRuntimeConfig("csv", "none")
	services := NewServices(config)

	svc := &mockEmbeddingService{}
	services.SetEmbeddingService(svc, "abc")

	if err := services.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !svc.closed {
		t.Error("expected service closed")
	}
	if config.EmbeddingAvailable() {
		t.Error("expected embedding unavailable after close")
	}
}
