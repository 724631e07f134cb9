package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/custodia-labs/gamefit/internal/core/domain"
	"github.com/custodia-labs/gamefit/internal/core/ports/driven"
	"github.com/custodia-labs/gamefit/internal/core/ports/driving"
	"github.com/custodia-labs/gamefit/internal/core/services"
)

// Worker warms up the embedding job at boot and restarts it after a failure.
// Only runs started with the configured credential are restarted.
type Worker struct {
	jobs   driving.EmbeddingJobService
	quotes *domain.QuoteTable
	apiKey string
	lock   driven.DistributedLock
	logger *slog.Logger

	// Configuration
	retryInterval time.Duration
	maxRestarts   int

	// Internal state
	mu       sync.RWMutex
	running  bool
	restarts int
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// WorkerConfig holds configuration for the worker.
type WorkerConfig struct {
	Jobs   driving.EmbeddingJobService
	Quotes *domain.QuoteTable
	APIKey string // empty disables auto-start

	// Lock is pinged by Health when set
	Lock   driven.DistributedLock
	Logger *slog.Logger

	RetryInterval time.Duration // zero disables restarts
	MaxRestarts   int
}

// NewWorker creates a new warmup worker.
func NewWorker(cfg WorkerConfig) *Worker {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	maxRestarts := cfg.MaxRestarts
	if maxRestarts < 0 {
		maxRestarts = 0
	}

	return &Worker{
		jobs:          cfg.Jobs,
		quotes:        cfg.Quotes,
		apiKey:        cfg.APIKey,
		lock:          cfg.Lock,
		logger:        logger,
		retryInterval: cfg.RetryInterval,
		maxRestarts:   maxRestarts,
	}
}

// Start begins the worker loop.
// It runs until Stop is called, ctx is cancelled or the job manager closes.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	w.logger.Info("worker starting",
		"auto_start", w.apiKey != "",
		"retry_interval", w.retryInterval,
		"max_restarts", w.maxRestarts,
	)

	go w.loop(ctx)
	return nil
}

// Stop gracefully stops the worker.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	select {
	case <-w.stopCh:
	default:
		close(w.stopCh)
	}
	doneCh := w.doneCh
	w.mu.Unlock()

	<-doneCh

	w.logger.Info("worker stopped")
}

// Wait blocks until the worker loop exits.
func (w *Worker) Wait() {
	w.mu.RLock()
	doneCh := w.doneCh
	w.mu.RUnlock()
	if doneCh != nil {
		<-doneCh
	}
}

func (w *Worker) loop(ctx context.Context) {
	defer func() {
		w.mu.Lock()
		w.running = false
		close(w.doneCh)
		w.mu.Unlock()
	}()

	if w.apiKey == "" {
		w.logger.Info("no embedding key configured, waiting for a manual start")
		select {
		case <-ctx.Done():
		case <-w.stopCh:
		}
		return
	}

	updates, cancel := w.jobs.Subscribe()
	defer cancel()

	w.startJob()

	fingerprint := services.CredentialFingerprint(w.apiKey)
	lastRetried := ""

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case snap, ok := <-updates:
			if !ok {
				return
			}
			if snap.Status != domain.JobStatusFailed || snap.RunID == lastRetried {
				continue
			}
			if !w.shouldRestart(snap, fingerprint) {
				continue
			}
			lastRetried = snap.RunID

			w.logger.Info("embedding job failed, restarting after interval",
				"run_id", snap.RunID,
				"error", snap.Error,
				"interval", w.retryInterval,
			)

			timer := time.NewTimer(w.retryInterval)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-w.stopCh:
				timer.Stop()
				return
			case <-timer.C:
			}

			if err := w.jobs.Reset(); err != nil {
				w.logger.Info("job no longer failed, skipping restart", "error", err)
				continue
			}

			w.mu.Lock()
			w.restarts++
			w.mu.Unlock()
			w.startJob()
		}
	}
}

func (w *Worker) shouldRestart(snap domain.JobSnapshot, fingerprint string) bool {
	if w.retryInterval <= 0 {
		return false
	}
	if snap.KeyFingerprint != fingerprint {
		return false
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.restarts >= w.maxRestarts {
		w.logger.Warn("embedding job restart limit reached", "restarts", w.restarts)
		return false
	}
	return true
}

func (w *Worker) startJob() {
	if w.jobs.Start(w.quotes, w.apiKey) {
		w.logger.Info("embedding job started by worker")
		return
	}
	w.logger.Info("embedding job not started", "status", w.jobs.Snapshot().Status)
}

// Health reports the worker and lock backend status.
type Health struct {
	Running    bool             `json:"running"`
	Restarts   int              `json:"restarts"`
	JobStatus  domain.JobStatus `json:"job_status"`
	LockHealth bool             `json:"lock_health"`
	Error      string           `json:"error,omitempty"`
}

// Health returns the health status of the worker.
func (w *Worker) Health(ctx context.Context) Health {
	w.mu.RLock()
	health := Health{
		Running:    w.running,
		Restarts:   w.restarts,
		LockHealth: true,
	}
	w.mu.RUnlock()

	health.JobStatus = w.jobs.Snapshot().Status

	if w.lock != nil {
		if err := w.lock.Ping(ctx); err != nil {
			health.LockHealth = false
			health.Error = err.Error()
		}
	}

	return health
}
