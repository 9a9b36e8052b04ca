package promotion

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/salatech/promotion-service/internal/model"
)

// UndoCoordinator reverses a completed promotion batch within the permitted
// window. Eligibility is all-or-nothing: once any record of the batch is
// older than the window, the whole batch stays as-is.
type UndoCoordinator struct {
	guard   Guard
	locker  Locker
	applier Applier
	ledger  Ledger
	log     zerolog.Logger

	window  time.Duration
	lockTTL time.Duration
	now     func() time.Time
}

// NewUndoCoordinator creates an UndoCoordinator with the given undo window.
func NewUndoCoordinator(
	guard Guard,
	locker Locker,
	applier Applier,
	ledger Ledger,
	log zerolog.Logger,
	window time.Duration,
	lockTTL time.Duration,
) *UndoCoordinator {
	return &UndoCoordinator{
		guard:   guard,
		locker:  locker,
		applier: applier,
		ledger:  ledger,
		log:     log.With().Str("component", "undo_coordinator").Logger(),
		window:  window,
		lockTTL: lockTTL,
		now:     time.Now,
	}
}

// Undo reverses every non-reversed record of the batch identified by
// sourceYearID/targetYearID. Per-record failures are isolated exactly as in
// the executor. The one-shot flag is cleared only when every record in the
// batch ended up reversed; a partially reversed batch leaves the source year
// closed so promotion cannot restart while stragglers remain promoted.
func (u *UndoCoordinator) Undo(ctx context.Context, sourceYearID, targetYearID uuid.UUID) (model.UndoSummary, error) {
	var summary model.UndoSummary

	records, err := u.ledger.Batch(ctx, sourceYearID, targetYearID)
	if err != nil {
		return summary, err
	}
	if len(records) == 0 {
		return summary, ErrNothingToUndo
	}

	// The window is measured from the earliest executed_at in the batch.
	earliest := records[0].ExecutedAt
	for _, rec := range records[1:] {
		if rec.ExecutedAt.Before(earliest) {
			earliest = rec.ExecutedAt
		}
	}
	if u.now().After(earliest.Add(u.window)) {
		return summary, ErrUndoWindowExpired
	}

	reversedTotal := 0
	for _, rec := range records {
		if rec.Reversed() {
			reversedTotal++
			continue
		}
		if err := u.applier.Revert(ctx, rec, u.now()); err != nil {
			u.log.Warn().
				Err(err).
				Str("student_id", rec.StudentID.String()).
				Msg("Undo failed for student")
			summary.Failed++
			summary.Errors = append(summary.Errors, model.PromotionError{
				StudentID: rec.StudentID,
				Error:     err.Error(),
			})
			continue
		}
		summary.Reversed++
		reversedTotal++
	}

	if reversedTotal == len(records) {
		if err := u.clearDoneLocked(ctx, sourceYearID); err != nil {
			return summary, err
		}
		summary.FlagCleared = true
	}

	u.log.Info().
		Str("source_year_id", sourceYearID.String()).
		Int("reversed", summary.Reversed).
		Int("failed", summary.Failed).
		Bool("flag_cleared", summary.FlagCleared).
		Msg("Undo completed")

	return summary, nil
}

// clearDoneLocked re-opens the year once every record is reversed. Like the
// executor's mark-done, the reversal is already committed here, so the lock
// is retried rather than failed on transient contention.
func (u *UndoCoordinator) clearDoneLocked(ctx context.Context, sourceYearID uuid.UUID) error {
	unlock, err := lockWithRetry(ctx, u.locker, sourceYearID, u.lockTTL)
	if err != nil {
		return err
	}
	defer unlock()
	return u.guard.ClearDone(ctx, sourceYearID)
}
