package driving

import (
	"context"

	"github.com/custodia-labs/gamefit/internal/core/domain"
)

// EmbeddingJobService owns the single background embedding computation.
// All readers are safe to call at any time and return immutable copies.
type EmbeddingJobService interface {
	// Start launches the job for the quote table and credential.
	// Returns false without side effects when a run is in flight or has completed.
	Start(quotes *domain.QuoteTable, credential string) bool

	// Snapshot returns a consistent copy of the whole job state
	Snapshot() domain.JobSnapshot

	// IsRunning reports whether a computation is in flight
	IsRunning() bool

	// Progress returns the completed fraction in [0,1]
	Progress() float64

	// Status returns the human readable status message
	Status() string

	// Result returns the completed corpus, or nil unless the job succeeded
	Result() *domain.Corpus

	// Error returns the failure detail, empty unless the job failed
	Error() string

	// Reset moves a failed job back to idle.
	// Returns ErrJobNotFailed in any other state.
	Reset() error

	// Subscribe returns a channel receiving every state change and a cancel func
	Subscribe() (<-chan domain.JobSnapshot, func())

	// Wait blocks until the current run ends or ctx is done
	Wait(ctx context.Context) (domain.JobSnapshot, error)

	// Close cancels a running job and waits for it to stop
	Close() error
}
