package domain

import "testing"

func TestJobStatus_IsTerminal(t *testing.T) {
	tests := map[JobStatus]bool{
		JobStatusIdle:      false,
		JobStatusRunning:   false,
		JobStatusCompleted: true,
		JobStatusFailed:    true,
	}
	for status, want := range tests {
		if got := status.IsTerminal(); got != want {
			t.Errorf("%s.IsTerminal() = %v, want %v", status, got, want)
		}
	}
}

func TestJobSnapshot_Corpus(t *testing.T) {
	docs := []Document{{GameID: "1"}}
	emb := EmbeddingMatrix{{1, 2}}

	running := JobSnapshot{Status: JobStatusRunning, Documents: docs}
	if running.Corpus() != nil {
		t.Error("running job should not expose a corpus")
	}
	if !running.Running() {
		t.Error("expected Running() to be true")
	}

	done := JobSnapshot{Status: JobStatusCompleted, Documents: docs, Embeddings: emb}
	c := done.Corpus()
	if c == nil || !c.Aligned() {
		t.Fatalf("expected aligned corpus, got %+v", c)
	}
}
