package promotion

import "errors"

// Engine error taxonomy. Per-class "no target available" is not an error: it
// is surfaced inside the preview so the operator can resolve it before
// confirming the batch.
var (
	// ErrAlreadyPromoted means the source year's one-shot permission is
	// exhausted. Fatal to planning and execution, never retried.
	ErrAlreadyPromoted = errors.New("source year already promoted")

	// ErrDataUnavailable means the enrollment collaborator failed; planning
	// aborts entirely rather than produce a partial, misleading preview.
	ErrDataUnavailable = errors.New("eligibility data unavailable")

	// ErrUndoWindowExpired means at least one record of the batch is older
	// than the undo window; the whole batch is no longer reversible.
	ErrUndoWindowExpired = errors.New("undo window expired")

	// ErrNothingToUndo means no progression records exist for the batch.
	ErrNothingToUndo = errors.New("no promotion batch to undo")

	// ErrLockHeld means another execution attempt for the same source year
	// currently holds the single-writer lock.
	ErrLockHeld = errors.New("promotion lock held by another operation")
)
