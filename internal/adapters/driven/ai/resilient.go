package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/gamefit/internal/core/domain"
	"github.com/custodia-labs/gamefit/internal/core/ports/driven"
	"github.com/custodia-labs/gamefit/internal/metrics"
)

// Ensure ResilientEmbedding implements EmbeddingService
var _ driven.EmbeddingService = (*ResilientEmbedding)(nil)

// ResilienceConfig tunes the rate limiter and circuit breaker placed in
// front of an embedding provider.
type ResilienceConfig struct {
	// RequestsPerSecond limits provider calls. Zero disables limiting.
	RequestsPerSecond float64
	Burst             int

	// FailureThreshold is the number of consecutive failures that opens
	// the breaker. Zero disables the breaker.
	FailureThreshold uint32
	OpenTimeout      time.Duration
	HalfOpenRequests uint32
}

// DefaultResilienceConfig returns conservative limits for hosted providers.
func DefaultResilienceConfig() ResilienceConfig {
	return ResilienceConfig{
		RequestsPerSecond: 5,
		Burst:             1,
		FailureThreshold:  5,
		OpenTimeout:       30 * time.Second,
		HalfOpenRequests:  1,
	}
}

// ResilientEmbedding wraps an EmbeddingService with a rate limiter and a
// circuit breaker. Credential and cancellation errors do not trip the breaker.
type ResilientEmbedding struct {
	next    driven.EmbeddingService
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[][]float32]
}

// NewResilientEmbedding wraps next according to cfg.
func NewResilientEmbedding(next driven.EmbeddingService, cfg ResilienceConfig, logger *slog.Logger) *ResilientEmbedding {
	if logger == nil {
		logger = slog.Default()
	}

	r := &ResilientEmbedding{next: next}

	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	if cfg.FailureThreshold > 0 {
		name := "embedding-" + next.Model()
		threshold := cfg.FailureThreshold
		r.breaker = gobreaker.NewCircuitBreaker[[][]float32](gobreaker.Settings{
			Name:        name,
			MaxRequests: cfg.HalfOpenRequests,
			Timeout:     cfg.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			IsSuccessful: func(err error) bool {
				return err == nil ||
					errors.Is(err, domain.ErrUnauthorized) ||
					errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("embedding circuit breaker state changed",
					"breaker", name, "from", from.String(), "to", to.String())
				metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			},
		})
		metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	}

	return r
}

func (r *ResilientEmbedding) call(ctx context.Context, fn func() ([][]float32, error)) ([][]float32, error) {
	if r.limiter != nil {
		start := time.Now()
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
		metrics.RateLimitWaitDuration.Observe(time.Since(start).Seconds())
	}

	if r.breaker == nil {
		return fn()
	}

	out, err := r.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: embedding provider circuit %s", domain.ErrServiceUnavailable, err)
	}
	return out, err
}

// Embed generates embeddings for multiple texts
func (r *ResilientEmbedding) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return r.call(ctx, func() ([][]float32, error) {
		return r.next.Embed(ctx, texts)
	})
}

// EmbedQuery generates an embedding for a single query text
func (r *ResilientEmbedding) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	out, err := r.call(ctx, func() ([][]float32, error) {
		v, err := r.next.EmbedQuery(ctx, query)
		if err != nil {
			return nil, err
		}
		return [][]float32{v}, nil
	})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (r *ResilientEmbedding) Dimensions() int {
	return r.next.Dimensions()
}

func (r *ResilientEmbedding) Model() string {
	return r.next.Model()
}

func (r *ResilientEmbedding) HealthCheck(ctx context.Context) error {
	return r.next.HealthCheck(ctx)
}

func (r *ResilientEmbedding) Close() error {
	return r.next.Close()
}

// BreakerState reports the breaker state, closed when no breaker is set.
func (r *ResilientEmbedding) BreakerState() gobreaker.State {
	if r.breaker == nil {
		return gobreaker.StateClosed
	}
	return r.breaker.State()
}
