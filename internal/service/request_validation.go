package service

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/salatech/promotion-service/internal/model"
	"github.com/salatech/promotion-service/internal/promotion"
)

// validateRequests checks an operator-submitted request list against the
// tenant and year-pair scope before anything reaches the executor. The class
// snapshots come from the two years (already verified to belong to the
// school); assignments maps the school's students among the referenced IDs
// to their current class, so a student from another school is simply absent.
func validateRequests(
	requests []promotion.Request,
	sourceClasses, targetClasses []model.Class,
	assignments map[uuid.UUID]*uuid.UUID,
) error {
	sourceIDs := make(map[uuid.UUID]struct{}, len(sourceClasses))
	for _, c := range sourceClasses {
		sourceIDs[c.ID] = struct{}{}
	}
	targetIDs := make(map[uuid.UUID]struct{}, len(targetClasses))
	for _, c := range targetClasses {
		targetIDs[c.ID] = struct{}{}
	}

	for _, req := range requests {
		if _, ok := sourceIDs[req.FromClassID]; !ok {
			return fmt.Errorf("%w: class %s is not in the source year", ErrRequestOutOfScope, req.FromClassID)
		}
		current, ok := assignments[req.StudentID]
		if !ok {
			return fmt.Errorf("%w: student %s does not belong to the school", ErrRequestOutOfScope, req.StudentID)
		}
		if current == nil || *current != req.FromClassID {
			return fmt.Errorf("%w: student %s is not assigned to class %s", ErrRequestOutOfScope, req.StudentID, req.FromClassID)
		}
		if req.Type == model.PromotionGraduate {
			if req.ToClassID != nil {
				return fmt.Errorf("%w: graduation for student %s must not name a target class", ErrRequestOutOfScope, req.StudentID)
			}
			continue
		}
		if req.ToClassID == nil {
			return fmt.Errorf("%w: student %s has no target class", ErrRequestOutOfScope, req.StudentID)
		}
		if _, ok := targetIDs[*req.ToClassID]; !ok {
			return fmt.Errorf("%w: class %s is not in the target year", ErrRequestOutOfScope, *req.ToClassID)
		}
	}
	return nil
}
