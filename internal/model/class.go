package model

import (
	"time"

	"github.com/google/uuid"
)

// Track is a curriculum specialization that disambiguates classes within the
// tracked grades. The empty value means the class carries no track.
type Track string

const (
	TrackNone    Track = ""
	TrackScience Track = "SCIENCE"
	TrackSocial  Track = "SOCIAL"
)

// Class is a class group within one academic year. Immutable once created;
// the promotion engine treats it as a read-only snapshot.
type Class struct {
	ID             uuid.UUID `json:"id"`
	SchoolID       uuid.UUID `json:"school_id"`
	AcademicYearID uuid.UUID `json:"academic_year_id"`
	Name           string    `json:"name"`
	Grade          int       `json:"grade"`
	Track          Track     `json:"track,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// HasTrack reports whether the class carries a curriculum track.
func (c Class) HasTrack() bool {
	return c.Track != TrackNone
}
