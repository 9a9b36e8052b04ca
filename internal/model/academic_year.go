package model

import (
	"time"

	"github.com/google/uuid"
)

// YearStatus is the lifecycle state of an academic year.
type YearStatus string

const (
	YearPlanning YearStatus = "PLANNING"
	YearActive   YearStatus = "ACTIVE"
	YearEnded    YearStatus = "ENDED"
)

// AcademicYear is a bounded schooling period owning a set of classes.
//
// IsPromotionDone transitions false → true exactly once, only when a promotion
// batch for this year completes. It is never reset by normal operation; the
// undo coordinator may clear it, and only after every record of the batch has
// been reversed.
type AcademicYear struct {
	ID              uuid.UUID  `json:"id"`
	SchoolID        uuid.UUID  `json:"school_id"`
	Name            string     `json:"name"`
	StartDate       time.Time  `json:"start_date"`
	EndDate         time.Time  `json:"end_date"`
	Status          YearStatus `json:"status"`
	IsCurrent       bool       `json:"is_current"`
	IsPromotionDone bool       `json:"is_promotion_done"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
