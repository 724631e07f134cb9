package domain

import "sync"

// RuntimeConfig tracks which capabilities are available at runtime.
// Thread-safe for concurrent access.
type RuntimeConfig struct {
	mu sync.RWMutex

	// Static (set at startup, read-only)
	TableSource string // "csv" or "postgres"
	LockBackend string // "none", "redis" or "postgres"

	embeddingAvailable bool
}

// NewRuntimeConfig creates a new RuntimeConfig with initial values
func NewRuntimeConfig(tableSource, lockBackend string) *RuntimeConfig {
	return &RuntimeConfig{
		TableSource: tableSource,
		LockBackend: lockBackend,
	}
}

// EmbeddingAvailable returns whether an embedding service is registered
func (c *RuntimeConfig) EmbeddingAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.embeddingAvailable
}

// SetEmbeddingAvailable updates the embedding availability flag
func (c *RuntimeConfig) SetEmbeddingAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.embeddingAvailable = available
}

// CanRetrieveEvidence returns true if evidence retrieval is possible
func (c *RuntimeConfig) CanRetrieveEvidence() bool {
	return c.EmbeddingAvailable()
}
