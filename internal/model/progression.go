package model

import (
	"time"

	"github.com/google/uuid"
)

// PromotionType classifies a single student's promotion event.
type PromotionType string

const (
	PromotionAutomatic PromotionType = "AUTOMATIC"
	PromotionManual    PromotionType = "MANUAL"
	PromotionRepeat    PromotionType = "REPEAT"
	PromotionGraduate  PromotionType = "GRADUATE"
)

// ProgressionRecord is an append-only audit row capturing one student's
// promotion event. Records are never deleted; undo marks ReversedAt instead.
//
// ToClassID is nil for GRADUATE records: graduation is terminal and has no
// target class by definition.
type ProgressionRecord struct {
	ID          uuid.UUID     `json:"id"`
	StudentID   uuid.UUID     `json:"student_id"`
	FromYearID  uuid.UUID     `json:"from_year_id"`
	ToYearID    uuid.UUID     `json:"to_year_id"`
	FromClassID uuid.UUID     `json:"from_class_id"`
	ToClassID   *uuid.UUID    `json:"to_class_id,omitempty"`
	Type        PromotionType `json:"promotion_type"`
	ExecutedAt  time.Time     `json:"executed_at"`
	ExecutedBy  uuid.UUID     `json:"executed_by"`
	ReversedAt  *time.Time    `json:"reversed_at,omitempty"`
}

// Reversed reports whether this record has already been undone.
func (r ProgressionRecord) Reversed() bool {
	return r.ReversedAt != nil
}

// PromotionError is a per-student failure inside a batch.
type PromotionError struct {
	StudentID uuid.UUID `json:"student_id"`
	Error     string    `json:"error"`
}

// PromotionResult aggregates the outcome of one execute call. A result with
// Failed > 0 still exhausts the one-shot guard for the source year.
type PromotionResult struct {
	Promoted  int              `json:"promoted"`
	Repeated  int              `json:"repeated"`
	Graduated int              `json:"graduated"`
	Failed    int              `json:"failed"`
	Errors    []PromotionError `json:"errors"`
}

// Total returns the number of requests accounted for in the result.
func (r PromotionResult) Total() int {
	return r.Promoted + r.Repeated + r.Graduated + r.Failed
}

// PromotionStats summarizes a source year's executed promotions for the
// report endpoint.
type PromotionStats struct {
	Total     int `json:"total"`
	Promoted  int `json:"promoted"`
	Repeated  int `json:"repeated"`
	Graduated int `json:"graduated"`
	Reversed  int `json:"reversed"`
}

// PromotionReport is the promotion report for one source year.
type PromotionReport struct {
	Statistics   PromotionStats      `json:"statistics"`
	Progressions []ProgressionRecord `json:"progressions"`
}

// UndoSummary aggregates the outcome of one undo call. FlagCleared is true
// only when every record in the batch ended up reversed, re-opening the
// source year for promotion.
type UndoSummary struct {
	Reversed    int              `json:"reversed"`
	Failed      int              `json:"failed"`
	Errors      []PromotionError `json:"errors"`
	FlagCleared bool             `json:"flag_cleared"`
}
