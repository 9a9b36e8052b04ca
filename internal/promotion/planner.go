package promotion

import (
	"github.com/google/uuid"

	"github.com/salatech/promotion-service/internal/model"
)

// Request is one student's promotion instruction, constructed by the planner
// (or edited by the operator) and consumed once by the executor.
type Request struct {
	StudentID   uuid.UUID           `json:"student_id"`
	FromClassID uuid.UUID           `json:"from_class_id"`
	ToClassID   *uuid.UUID          `json:"to_class_id,omitempty"`
	Type        model.PromotionType `json:"promotion_type"`
}

// PreviewItem is the per-class row of a promotion preview. TargetClasses is
// ordered; index 0 is the default target used for auto-generated requests.
// NoTarget flags a non-graduating class with no next-grade class in the
// destination year — a planning gap the confirming human must see.
type PreviewItem struct {
	FromClass     model.Class   `json:"from_class"`
	StudentCount  int           `json:"student_count"`
	WillGraduate  bool          `json:"will_graduate"`
	NoTarget      bool          `json:"no_target,omitempty"`
	TargetClasses []model.Class `json:"target_classes"`
}

// PreviewSummary aggregates a preview for the confirmation UI.
type PreviewSummary struct {
	TotalClasses          int `json:"total_classes"`
	TotalStudents         int `json:"total_students"`
	PromotingStudents     int `json:"promoting_students"`
	GraduatingStudents    int `json:"graduating_students"`
	StudentsWithoutTarget int `json:"students_without_target"`
	UnassignedStudents    int `json:"unassigned_students"`
}

// Preview is what the confirming human sees before execution.
type Preview struct {
	Items   []PreviewItem  `json:"preview"`
	Summary PreviewSummary `json:"summary"`
}

// Plan combines an eligibility snapshot with matcher output into a preview
// and the auto-generated request list. Pure: identical inputs always produce
// identical output, so preview and execute can be decoupled across a network
// round-trip. The execute-time guard re-check covers mutations in between.
//
// Graduating classes are marked for accounting only — no GRADUATE requests
// are generated; the executor handles graduation as a distinct type only when
// the operator submits it explicitly. Classes with no target contribute zero
// requests and are flagged in the preview instead.
func Plan(eligibility Eligibility, targetClasses []model.Class, matcher *Matcher) (Preview, []Request) {
	items := make([]PreviewItem, 0, len(eligibility.Groups))
	var requests []Request
	summary := PreviewSummary{
		UnassignedStudents: eligibility.UnassignedCount,
	}

	for _, group := range eligibility.Groups {
		match := matcher.Match(group.Class, targetClasses)
		count := len(group.Students)

		item := PreviewItem{
			FromClass:     group.Class,
			StudentCount:  count,
			WillGraduate:  match.WillGraduate,
			TargetClasses: match.Targets,
		}

		summary.TotalClasses++
		summary.TotalStudents += count

		switch {
		case match.WillGraduate:
			summary.GraduatingStudents += count

		case len(match.Targets) == 0:
			item.NoTarget = true
			summary.StudentsWithoutTarget += count

		default:
			defaultTarget := match.Targets[0].ID
			for _, student := range group.Students {
				toClass := defaultTarget
				requests = append(requests, Request{
					StudentID:   student.ID,
					FromClassID: group.Class.ID,
					ToClassID:   &toClass,
					Type:        model.PromotionAutomatic,
				})
			}
			summary.PromotingStudents += count
		}

		items = append(items, item)
	}

	return Preview{Items: items, Summary: summary}, requests
}
