package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gamefit/internal/core/domain"
	"github.com/custodia-labs/gamefit/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/gamefit/internal/core/services"
)

const workerKey = "worker-key"

func newJobs(t *testing.T) (*services.EmbeddingJobManager, *mocks.MockEmbeddingService) {
	t.Helper()
	embedder := mocks.NewMockEmbeddingService()
	jobs := services.NewEmbeddingJobManager(services.EmbeddingJobConfig{
		Factory:      mocks.NewMockAIServiceFactory(embedder),
		Settings:     domain.EmbeddingSettings{Provider: domain.AIProviderGemini},
		RetryBackoff: time.Millisecond,
	})
	t.Cleanup(func() { _ = jobs.Close() })
	return jobs, embedder
}

func quotes() *domain.QuoteTable {
	return &domain.QuoteTable{Rows: []domain.QuoteRow{
		{GameID: "1", GameName: "Alpha", Quotes: []domain.Quote{{DimensionCode: "D01", Text: "lovely art"}}},
		{GameID: "2", GameName: "Beta", Quotes: []domain.Quote{{DimensionCode: "D03", Text: "moving story"}}},
	}}
}

func completed(jobs *services.EmbeddingJobManager) func() bool {
	return func() bool { return jobs.Snapshot().Status == domain.JobStatusCompleted }
}

func TestNewWorker_Defaults(t *testing.T) {
	jobs, _ := newJobs(t)
	w := NewWorker(WorkerConfig{Jobs: jobs, MaxRestarts: -1})

	assert.NotNil(t, w.logger)
	assert.Equal(t, 0, w.maxRestarts)
	assert.Equal(t, time.Duration(0), w.retryInterval)
}

func TestWorker_StartStop(t *testing.T) {
	jobs, _ := newJobs(t)
	w := NewWorker(WorkerConfig{Jobs: jobs})

	ctx := context.Background()
	require.NoError(t, w.Start(ctx))
	assert.True(t, w.Health(ctx).Running)

	// Start again should be no-op
	require.NoError(t, w.Start(ctx))

	w.Stop()
	assert.False(t, w.Health(ctx).Running)

	// Stop again should be no-op
	w.Stop()
}

func TestWorker_AutoStart(t *testing.T) {
	jobs, embedder := newJobs(t)
	w := NewWorker(WorkerConfig{Jobs: jobs, Quotes: quotes(), APIKey: workerKey})

	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	assert.Eventually(t, completed(jobs), 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, services.CredentialFingerprint(workerKey), jobs.Snapshot().KeyFingerprint)
	assert.Equal(t, 1, embedder.EmbedCalls())
}

func TestWorker_NoKeyLeavesJobIdle(t *testing.T) {
	jobs, _ := newJobs(t)
	w := NewWorker(WorkerConfig{Jobs: jobs, Quotes: quotes()})

	require.NoError(t, w.Start(context.Background()))
	time.Sleep(20 * time.Millisecond)
	w.Stop()

	assert.Equal(t, domain.JobStatusIdle, jobs.Snapshot().Status)
}

func TestWorker_RestartsFailedJob(t *testing.T) {
	jobs, embedder := newJobs(t)
	embedder.FailCalls(1, domain.ErrUnauthorized)

	w := NewWorker(WorkerConfig{
		Jobs:          jobs,
		Quotes:        quotes(),
		APIKey:        workerKey,
		RetryInterval: 10 * time.Millisecond,
		MaxRestarts:   2,
	})
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	assert.Eventually(t, completed(jobs), 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, w.Health(context.Background()).Restarts)
}

func TestWorker_RestartLimit(t *testing.T) {
	jobs, embedder := newJobs(t)
	embedder.FailCalls(-1, domain.ErrUnauthorized)

	w := NewWorker(WorkerConfig{
		Jobs:          jobs,
		Quotes:        quotes(),
		APIKey:        workerKey,
		RetryInterval: 5 * time.Millisecond,
		MaxRestarts:   2,
	})
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	assert.Eventually(t, func() bool {
		return w.Health(context.Background()).Restarts == 2 &&
			jobs.Snapshot().Status == domain.JobStatusFailed
	}, 2*time.Second, 5*time.Millisecond)

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 2, w.Health(context.Background()).Restarts)
	assert.Equal(t, domain.JobStatusFailed, jobs.Snapshot().Status)
}

func TestWorker_IgnoresRunsWithOtherKeys(t *testing.T) {
	jobs, embedder := newJobs(t)
	embedder.FailCalls(1, domain.ErrUnauthorized)

	require.True(t, jobs.Start(quotes(), "someone-else"))
	_, err := jobs.Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.JobStatusFailed, jobs.Snapshot().Status)

	w := NewWorker(WorkerConfig{
		Jobs:          jobs,
		Quotes:        quotes(),
		APIKey:        workerKey,
		RetryInterval: 5 * time.Millisecond,
		MaxRestarts:   3,
	})
	require.NoError(t, w.Start(context.Background()))
	time.Sleep(30 * time.Millisecond)
	w.Stop()

	assert.Equal(t, domain.JobStatusFailed, jobs.Snapshot().Status)
	assert.Equal(t, 0, w.Health(context.Background()).Restarts)
}

func TestWorker_ContextCancellation(t *testing.T) {
	jobs, _ := newJobs(t)
	w := NewWorker(WorkerConfig{Jobs: jobs, Quotes: quotes(), APIKey: workerKey})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	cancel()

	done := make(chan struct{})
	go func() {
		w.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}
	assert.False(t, w.Health(context.Background()).Running)
}

func TestWorker_StopsWhenJobsClose(t *testing.T) {
	jobs, _ := newJobs(t)
	w := NewWorker(WorkerConfig{Jobs: jobs, Quotes: quotes(), APIKey: workerKey})
	require.NoError(t, w.Start(context.Background()))

	require.NoError(t, jobs.Close())

	done := make(chan struct{})
	go func() {
		w.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after the job manager closed")
	}
}

func TestWorker_Health_LockError(t *testing.T) {
	jobs, _ := newJobs(t)
	lock := mocks.NewMockDistributedLock()
	lock.PingFn = func() error { return errors.New("connection failed") }

	w := NewWorker(WorkerConfig{Jobs: jobs, Lock: lock})

	health := w.Health(context.Background())
	assert.False(t, health.Running)
	assert.False(t, health.LockHealth)
	assert.Equal(t, "connection failed", health.Error)
	assert.Equal(t, domain.JobStatusIdle, health.JobStatus)
}
