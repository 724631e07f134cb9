package mocks

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"

	"github.com/custodia-labs/gamefit/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*MockEmbeddingService)(nil)

// ErrMockTransient is returned by failing Embed calls unless FailErr is set.
var ErrMockTransient = errors.New("mock: transient provider failure")

// MockEmbeddingService is a thread-safe EmbeddingService for testing.
// Vectors are derived from a hash of the text unless pinned with SetVector.
type MockEmbeddingService struct {
	mu         sync.Mutex
	dimensions int
	model      string
	vectors    map[string][]float32

	failCalls  int
	failErr    error
	queryErr   error
	shortCalls int
	block      chan struct{}
	queryBlock chan struct{}

	embedCalls int
	queryCalls int
	batchSizes []int
	closed     bool
}

// NewMockEmbeddingService creates a new MockEmbeddingService
func NewMockEmbeddingService() *MockEmbeddingService {
	return &MockEmbeddingService{
		dimensions: 8,
		model:      "mock-embedding-model",
		vectors:    make(map[string][]float32),
	}
}

func (m *MockEmbeddingService) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.embedCalls++
	m.batchSizes = append(m.batchSizes, len(texts))
	block := m.block
	m.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failCalls != 0 {
		if m.failCalls > 0 {
			m.failCalls--
		}
		if m.failErr != nil {
			return nil, m.failErr
		}
		return nil, ErrMockTransient
	}

	n := len(texts)
	if m.shortCalls > 0 && n > 0 {
		m.shortCalls--
		n--
	}

	result := make([][]float32, n)
	for i := 0; i < n; i++ {
		result[i] = m.vectorFor(texts[i])
	}
	return result, nil
}

func (m *MockEmbeddingService) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	m.mu.Lock()
	m.queryCalls++
	block := m.queryBlock
	m.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.queryErr != nil {
		return nil, m.queryErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.vectorFor(query), nil
}

func (m *MockEmbeddingService) Dimensions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dimensions
}

func (m *MockEmbeddingService) Model() string {
	return m.model
}

func (m *MockEmbeddingService) HealthCheck(ctx context.Context) error {
	return nil
}

func (m *MockEmbeddingService) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// vectorFor must be called with mu held.
func (m *MockEmbeddingService) vectorFor(text string) []float32 {
	if v, ok := m.vectors[text]; ok {
		out := make([]float32, len(v))
		copy(out, v)
		return out
	}

	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	embedding := make([]float32, m.dimensions)
	for i := range embedding {
		seed = seed*1103515245 + 12345
		embedding[i] = float32(seed%1000) / 1000.0
	}
	return embedding
}

// Helper methods for testing

// SetVector pins the vector returned for a text.
func (m *MockEmbeddingService) SetVector(text string, v []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vectors[text] = v
}

// FailCalls makes the next n Embed calls fail with err (ErrMockTransient if nil).
// A negative n fails every call.
func (m *MockEmbeddingService) FailCalls(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failCalls = n
	m.failErr = err
}

// ShortCalls makes the next n Embed calls return one vector fewer than asked.
func (m *MockEmbeddingService) ShortCalls(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shortCalls = n
}

// SetQueryError makes every EmbedQuery call fail with err.
func (m *MockEmbeddingService) SetQueryError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryErr = err
}

// Block makes Embed wait until the returned release func is called.
func (m *MockEmbeddingService) Block() (release func()) {
	ch := make(chan struct{})
	m.mu.Lock()
	m.block = ch
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			m.block = nil
			m.mu.Unlock()
			close(ch)
		})
	}
}

// BlockQueries makes EmbedQuery wait until the returned release func is
// called or the context ends.
func (m *MockEmbeddingService) BlockQueries() (release func()) {
	ch := make(chan struct{})
	m.mu.Lock()
	m.queryBlock = ch
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			m.queryBlock = nil
			m.mu.Unlock()
			close(ch)
		})
	}
}

func (m *MockEmbeddingService) SetDimensions(dim int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dimensions = dim
}

// EmbedCalls returns the number of Embed calls made.
func (m *MockEmbeddingService) EmbedCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.embedCalls
}

// QueryCalls returns the number of EmbedQuery calls made.
func (m *MockEmbeddingService) QueryCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queryCalls
}

// BatchSizes returns the size of every Embed call, in call order.
func (m *MockEmbeddingService) BatchSizes() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, len(m.batchSizes))
	copy(out, m.batchSizes)
	return out
}

// Closed reports whether Close was called.
func (m *MockEmbeddingService) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
