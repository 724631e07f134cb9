package domain

import "time"

// JobStatus represents the lifecycle state of the embedding job
type JobStatus string

const (
	JobStatusIdle      JobStatus = "idle"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// IsTerminal reports whether the status ends a run.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// JobSnapshot is an immutable copy of the embedding job state.
// Slices are shared with the manager but never mutated after publication.
type JobSnapshot struct {
	RunID          string          `json:"run_id,omitempty"`
	Status         JobStatus       `json:"status"`
	Progress       float64         `json:"progress"`
	Message        string          `json:"message"`
	Error          string          `json:"error,omitempty"`
	KeyFingerprint string          `json:"key_fingerprint,omitempty"`
	Model          string          `json:"model,omitempty"`
	DocumentCount  int             `json:"document_count"`
	BatchesTotal   int             `json:"batches_total"`
	BatchesDone    int             `json:"batches_done"`
	BatchRetries   int             `json:"batch_retries"`
	StartedAt      *time.Time      `json:"started_at,omitempty"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
	Documents      []Document      `json:"-"`
	Embeddings     EmbeddingMatrix `json:"-"`
}

// Running reports whether a computation is in flight.
func (s JobSnapshot) Running() bool {
	return s.Status == JobStatusRunning
}

// Corpus returns the completed corpus, or nil unless the job succeeded.
func (s JobSnapshot) Corpus() *Corpus {
	if s.Status != JobStatusCompleted {
		return nil
	}
	return &Corpus{Documents: s.Documents, Embeddings: s.Embeddings}
}
