package model

import (
	"time"

	"github.com/google/uuid"
)

// Student is a read-only snapshot of a student for the promotion engine.
// CurrentClassID is nil for students not assigned to any class; such students
// cannot be auto-promoted and are reported as unassigned.
type Student struct {
	ID             uuid.UUID  `json:"id"`
	SchoolID       uuid.UUID  `json:"school_id"`
	Name           string     `json:"name"`
	CurrentClassID *uuid.UUID `json:"current_class_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
