package promotion

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/salatech/promotion-service/internal/model"
)

// ClassGroup is one source class together with its currently-assigned
// students.
type ClassGroup struct {
	Class    model.Class     `json:"class"`
	Students []model.Student `json:"students"`
}

// Eligibility is the full enrollment snapshot for a source year. Students
// with no class assignment cannot be auto-promoted; they are counted rather
// than silently dropped.
type Eligibility struct {
	Groups          []ClassGroup `json:"classes_by_grade"`
	UnassignedCount int          `json:"unassigned_count"`
}

// TotalStudents is the number of class-assigned students in the snapshot.
func (e Eligibility) TotalStudents() int {
	total := 0
	for _, g := range e.Groups {
		total += len(g.Students)
	}
	return total
}

// EnrollmentDirectory is the external student/enrollment collaborator. It
// returns students grouped by class for a source year plus the count of
// students with no class assignment.
type EnrollmentDirectory interface {
	EligibleByClass(ctx context.Context, sourceYearID uuid.UUID) (groups []ClassGroup, unassigned int, err error)
}

// Resolver enumerates promotion-eligible students for a source year,
// independent of any target year.
type Resolver struct {
	dir EnrollmentDirectory
}

// NewResolver creates a Resolver over the given enrollment collaborator.
func NewResolver(dir EnrollmentDirectory) *Resolver {
	return &Resolver{dir: dir}
}

// Resolve returns the eligibility snapshot for sourceYearID. On collaborator
// failure it returns ErrDataUnavailable and no partial grouping. Groups are
// ordered by grade, then class name, so downstream planning is deterministic.
func (r *Resolver) Resolve(ctx context.Context, sourceYearID uuid.UUID) (Eligibility, error) {
	groups, unassigned, err := r.dir.EligibleByClass(ctx, sourceYearID)
	if err != nil {
		return Eligibility{}, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Class.Grade != groups[j].Class.Grade {
			return groups[i].Class.Grade < groups[j].Class.Grade
		}
		return groups[i].Class.Name < groups[j].Class.Name
	})

	return Eligibility{Groups: groups, UnassignedCount: unassigned}, nil
}
