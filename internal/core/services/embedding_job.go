package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/gamefit/internal/core/domain"
	"github.com/custodia-labs/gamefit/internal/core/ports/driven"
	"github.com/custodia-labs/gamefit/internal/core/ports/driving"
	"github.com/custodia-labs/gamefit/internal/metrics"
	"github.com/custodia-labs/gamefit/internal/runtime"
)

// Ensure EmbeddingJobManager implements the interface
var _ driving.EmbeddingJobService = (*EmbeddingJobManager)(nil)

const (
	defaultBatchSize        = 50
	defaultMaxBatchAttempts = 3
	defaultRetryBackoff     = time.Second
	defaultLockTTL          = 5 * time.Minute
	maxRunningProgress      = 0.99
	lockPrefix              = "gamefit:embedding:"
)

// EmbeddingJobManager runs the single background embedding computation.
//
// State moves Idle -> Running -> Completed | Failed, and Failed -> Idle only
// through Reset. Start is a no-op outside Idle. Every mutation happens under
// mu and publishes a fresh snapshot, so readers never see a torn record.
type EmbeddingJobManager struct {
	factory          driven.AIServiceFactory
	settings         domain.EmbeddingSettings
	lock             driven.DistributedLock
	lockTTL          time.Duration
	services         *runtime.Services
	batchSize        int
	maxBatchAttempts int
	retryBackoff     time.Duration
	logger           *slog.Logger

	baseCtx    context.Context
	baseCancel context.CancelFunc

	mu      sync.Mutex
	state   domain.JobSnapshot
	done    chan struct{}
	closed  bool
	subs    map[int]chan domain.JobSnapshot
	nextSub int
}

// EmbeddingJobConfig holds dependencies for EmbeddingJobManager.
type EmbeddingJobConfig struct {
	Factory  driven.AIServiceFactory
	Settings domain.EmbeddingSettings // APIKey is supplied per Start

	// Lock guards a corpus across instances. Optional.
	Lock    driven.DistributedLock
	LockTTL time.Duration

	// Services receives the provider of a completed run. Optional.
	Services *runtime.Services

	BatchSize        int
	MaxBatchAttempts int
	RetryBackoff     time.Duration
	Logger           *slog.Logger
}

// NewEmbeddingJobManager creates an idle job manager.
func NewEmbeddingJobManager(cfg EmbeddingJobConfig) *EmbeddingJobManager {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.MaxBatchAttempts <= 0 {
		cfg.MaxBatchAttempts = defaultMaxBatchAttempts
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = defaultRetryBackoff
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = defaultLockTTL
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &EmbeddingJobManager{
		factory:          cfg.Factory,
		settings:         cfg.Settings,
		lock:             cfg.Lock,
		lockTTL:          cfg.LockTTL,
		services:         cfg.Services,
		batchSize:        cfg.BatchSize,
		maxBatchAttempts: cfg.MaxBatchAttempts,
		retryBackoff:     cfg.RetryBackoff,
		logger:           logger,
		baseCtx:          ctx,
		baseCancel:       cancel,
		state:            idleSnapshot(),
		subs:             make(map[int]chan domain.JobSnapshot),
	}
}

func idleSnapshot() domain.JobSnapshot {
	return domain.JobSnapshot{Status: domain.JobStatusIdle, Message: "idle"}
}

// Start launches the embedding run without blocking.
func (m *EmbeddingJobManager) Start(quotes *domain.QuoteTable, credential string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || m.state.Status != domain.JobStatusIdle {
		return false
	}

	now := time.Now()
	runID := uuid.NewString()
	ctx, cancel := context.WithCancel(m.baseCtx)
	done := make(chan struct{})

	m.state = domain.JobSnapshot{
		RunID:          runID,
		Status:         domain.JobStatusRunning,
		Progress:       0,
		Message:        "building corpus",
		KeyFingerprint: CredentialFingerprint(credential),
		StartedAt:      &now,
	}
	m.done = done
	m.publishLocked()

	m.logger.Info("embedding job started", "run_id", runID, "key", m.state.KeyFingerprint)

	go func() {
		defer cancel()
		m.run(ctx, runID, quotes, credential, done)
	}()
	return true
}

func (m *EmbeddingJobManager) run(ctx context.Context, runID string, quotes *domain.QuoteTable, credential string, done chan struct{}) {
	defer close(done)
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("embedding job panicked", "run_id", runID, "panic", r)
			m.fail(runID, fmt.Errorf("internal error: %v", r))
		}
	}()

	if err := m.execute(ctx, runID, quotes, credential); err != nil {
		m.fail(runID, err)
	}
}

func (m *EmbeddingJobManager) execute(ctx context.Context, runID string, quotes *domain.QuoteTable, credential string) error {
	// Step 1: Build the corpus
	docs := BuildCorpus(quotes)
	if docs == nil {
		docs = []domain.Document{}
	}
	m.update(runID, func(s *domain.JobSnapshot) {
		s.Documents = docs
		s.DocumentCount = len(docs)
	})
	metrics.EmbeddingJobDocuments.Set(float64(len(docs)))

	if len(docs) == 0 {
		return domain.ErrEmptyCorpus
	}

	// Step 2: Create the provider so a bad credential fails before any batch
	if m.factory == nil {
		return fmt.Errorf("%w: no embedding provider configured", domain.ErrServiceUnavailable)
	}
	settings := m.settings.WithAPIKey(credential)
	svc, err := m.factory.CreateEmbeddingService(&settings)
	if err != nil {
		return fmt.Errorf("create embedding service: %w", err)
	}
	if svc == nil {
		return fmt.Errorf("%w: embedding credential is required", domain.ErrUnauthorized)
	}
	published := false
	defer func() {
		if !published {
			_ = svc.Close()
		}
	}()

	// Step 3: Take the cross-instance lock for this corpus
	var lockName string
	if m.lock != nil {
		name := lockPrefix + CorpusFingerprint(docs)[:16]
		acquired, err := m.lock.Acquire(ctx, name, m.lockTTL)
		if err != nil {
			return fmt.Errorf("acquire job lock: %w", err)
		}
		if !acquired {
			return domain.ErrJobLocked
		}
		defer func() {
			if err := m.lock.Release(context.Background(), name); err != nil {
				m.logger.Warn("failed to release job lock", "lock", name, "error", err)
			}
		}()
		lockName = name
	}

	// Step 4: Embed batch by batch
	batches := partition(len(docs), m.batchSize)
	texts := domain.Texts(docs)
	m.update(runID, func(s *domain.JobSnapshot) {
		s.Model = svc.Model()
		s.BatchesTotal = len(batches)
		s.Message = "embedding 0%"
	})

	embeddings := make(domain.EmbeddingMatrix, 0, len(docs))
	for i, r := range batches {
		vecs, err := m.embedBatch(ctx, runID, svc, texts[r[0]:r[1]])
		if err != nil {
			return fmt.Errorf("batch %d/%d: %w", i+1, len(batches), err)
		}
		embeddings = append(embeddings, vecs...)

		m.extendLock(ctx, lockName)

		done := i + 1
		progress := float64(done) / float64(len(batches))
		if progress > maxRunningProgress {
			progress = maxRunningProgress
		}
		m.update(runID, func(s *domain.JobSnapshot) {
			s.BatchesDone = done
			if progress > s.Progress {
				s.Progress = progress
			}
			s.Message = fmt.Sprintf("embedding %d%% (%d/%d batches)", int(s.Progress*100), done, len(batches))
		})
	}

	if len(embeddings) != len(docs) {
		return fmt.Errorf("%w: %d embeddings for %d documents", domain.ErrEmbeddingMismatch, len(embeddings), len(docs))
	}

	// Step 5: Publish and complete
	if m.services != nil {
		m.services.SetEmbeddingService(svc, CredentialFingerprint(credential))
		published = true
	}
	m.complete(runID, embeddings)
	return nil
}

// embedBatch calls the provider with retries. Unauthorized errors and
// cancellation are returned immediately.
func (m *EmbeddingJobManager) embedBatch(ctx context.Context, runID string, svc driven.EmbeddingService, texts []string) ([][]float32, error) {
	for attempt := 1; ; attempt++ {
		start := time.Now()
		vecs, err := svc.Embed(ctx, texts)
		if err == nil && len(vecs) != len(texts) {
			err = fmt.Errorf("%w: got %d vectors for %d texts", domain.ErrEmbeddingMismatch, len(vecs), len(texts))
		}
		metrics.RecordBatch(svc.Model(), time.Since(start), err)

		if err == nil {
			return vecs, nil
		}
		if errors.Is(err, domain.ErrUnauthorized) || ctx.Err() != nil || attempt >= m.maxBatchAttempts {
			return nil, err
		}

		m.logger.Warn("embedding batch failed, retrying",
			"run_id", runID,
			"attempt", attempt,
			"max_attempts", m.maxBatchAttempts,
			"error", err,
		)
		metrics.EmbeddingBatchRetries.Inc()
		m.update(runID, func(s *domain.JobSnapshot) { s.BatchRetries++ })

		select {
		case <-time.After(m.retryBackoff * time.Duration(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (m *EmbeddingJobManager) extendLock(ctx context.Context, name string) {
	if name == "" {
		return
	}
	if err := m.lock.Extend(ctx, name, m.lockTTL); err != nil {
		m.logger.Warn("failed to extend job lock", "lock", name, "error", err)
	}
}

// update applies fn to the state of runID and publishes the result.
// Updates for a run that is no longer current are dropped.
func (m *EmbeddingJobManager) update(runID string, fn func(*domain.JobSnapshot)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.RunID != runID || m.state.Status != domain.JobStatusRunning {
		return
	}
	fn(&m.state)
	metrics.EmbeddingJobProgress.Set(m.state.Progress)
	m.publishLocked()
}

func (m *EmbeddingJobManager) complete(runID string, embeddings domain.EmbeddingMatrix) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.RunID != runID || m.state.Status != domain.JobStatusRunning {
		return
	}
	now := time.Now()
	m.state.Status = domain.JobStatusCompleted
	m.state.Progress = 1.0
	m.state.Message = "done"
	m.state.Embeddings = embeddings
	m.state.CompletedAt = &now
	m.publishLocked()

	metrics.EmbeddingJobProgress.Set(1.0)
	metrics.RecordJobOutcome(true)
	m.logger.Info("embedding job completed",
		"run_id", runID,
		"documents", len(embeddings),
		"batches", m.state.BatchesTotal,
		"retries", m.state.BatchRetries,
	)
}

func (m *EmbeddingJobManager) fail(runID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.RunID != runID || m.state.Status != domain.JobStatusRunning {
		return
	}

	msg := err.Error()
	switch {
	case errors.Is(err, domain.ErrEmptyCorpus):
		// normal outcome, message is already user facing
	case errors.Is(err, context.Canceled):
		msg = "cancelled: " + msg
	}

	now := time.Now()
	m.state.Status = domain.JobStatusFailed
	m.state.Error = msg
	m.state.Message = "failed: " + msg
	m.state.Embeddings = nil
	m.state.CompletedAt = &now
	m.publishLocked()

	metrics.RecordJobOutcome(false)
	m.logger.Error("embedding job failed", "run_id", runID, "error", err)
}

// publishLocked sends the current state to every subscriber without
// blocking. A full buffer has its pending snapshot replaced by the newest.
// Must be called with mu held.
func (m *EmbeddingJobManager) publishLocked() {
	snap := m.state
	for _, ch := range m.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

// Snapshot returns a consistent copy of the job state.
func (m *EmbeddingJobManager) Snapshot() domain.JobSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *EmbeddingJobManager) IsRunning() bool {
	return m.Snapshot().Running()
}

func (m *EmbeddingJobManager) Progress() float64 {
	return m.Snapshot().Progress
}

func (m *EmbeddingJobManager) Status() string {
	return m.Snapshot().Message
}

func (m *EmbeddingJobManager) Result() *domain.Corpus {
	return m.Snapshot().Corpus()
}

func (m *EmbeddingJobManager) Error() string {
	return m.Snapshot().Error
}

// Reset moves a failed job back to idle so it can be started again.
func (m *EmbeddingJobManager) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Status != domain.JobStatusFailed {
		return domain.ErrJobNotFailed
	}
	m.state = idleSnapshot()
	m.done = nil
	m.publishLocked()
	metrics.EmbeddingJobProgress.Set(0)

	m.logger.Info("embedding job reset")
	return nil
}

// Subscribe returns a channel that receives the current state immediately
// and every later change. The channel is closed by the cancel func or Close.
func (m *EmbeddingJobManager) Subscribe() (<-chan domain.JobSnapshot, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan domain.JobSnapshot, 1)
	ch <- m.state
	if m.closed {
		close(ch)
		return ch, func() {}
	}

	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch

	return ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if sub, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(sub)
		}
	}
}

// Wait blocks until the current run ends or ctx is done, and returns the
// resulting state. It returns immediately when nothing is running.
func (m *EmbeddingJobManager) Wait(ctx context.Context) (domain.JobSnapshot, error) {
	m.mu.Lock()
	done := m.done
	m.mu.Unlock()

	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return m.Snapshot(), ctx.Err()
		}
	}
	return m.Snapshot(), nil
}

// Close cancels a running job, waits for it and closes every subscription.
// The manager accepts no new runs afterwards.
func (m *EmbeddingJobManager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	done := m.done
	m.mu.Unlock()

	m.baseCancel()
	if done != nil {
		<-done
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, ch := range m.subs {
		delete(m.subs, id)
		close(ch)
	}
	return nil
}
