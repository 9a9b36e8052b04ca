package promotion

import (
	"context"

	"github.com/google/uuid"
)

// ProgressStatus is the terminal state of one request inside a batch.
type ProgressStatus string

const (
	ProgressCommitted ProgressStatus = "COMMITTED"
	ProgressFailed    ProgressStatus = "FAILED"
)

// ProgressEvent is emitted once per processed request so the confirmation UI
// can render a live progress bar over large batches.
type ProgressEvent struct {
	SourceYearID uuid.UUID      `json:"source_year_id"`
	StudentID    uuid.UUID      `json:"student_id"`
	Status       ProgressStatus `json:"status"`
	Error        string         `json:"error,omitempty"`
	Processed    int            `json:"processed"`
	Total        int            `json:"total"`
}

// ProgressPublisher fans progress events out to interested listeners.
// Publishing is best-effort; a failed publish never fails the batch.
type ProgressPublisher interface {
	Publish(ctx context.Context, event ProgressEvent)
}

// NopPublisher discards all events.
type NopPublisher struct{}

// Publish implements ProgressPublisher.
func (NopPublisher) Publish(context.Context, ProgressEvent) {}
