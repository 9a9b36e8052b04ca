package model

import "github.com/google/uuid"

// PromotionRequestInput is one student's instruction as submitted by the
// operator. ToClassID must be nil for GRADUATE and set for everything else.
type PromotionRequestInput struct {
	StudentID   uuid.UUID     `json:"student_id" binding:"required"`
	FromClassID uuid.UUID     `json:"from_class_id" binding:"required"`
	ToClassID   *uuid.UUID    `json:"to_class_id"`
	Type        PromotionType `json:"promotion_type" binding:"required,oneof=AUTOMATIC MANUAL REPEAT GRADUATE"`
}

// PromotionExecuteRequest is the execute payload. When Requests is empty the
// server re-derives the automatic plan from current snapshots.
type PromotionExecuteRequest struct {
	ToYearID uuid.UUID               `json:"to_year_id" binding:"required"`
	Requests []PromotionRequestInput `json:"requests" binding:"omitempty,dive"`
}

// PromotionUndoRequest is the undo payload.
type PromotionUndoRequest struct {
	ToYearID uuid.UUID `json:"to_year_id" binding:"required"`
}
