package promotion

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Guard enforces the one-shot invariant on a source year's promotion. The
// persisted is_promotion_done flag is the sole resource requiring mutual
// exclusion across concurrent callers.
type Guard interface {
	// CheckAllowed returns ErrAlreadyPromoted when the source year's
	// promotion permission is exhausted. Checked before planning and,
	// non-negotiably, at execution start.
	CheckAllowed(ctx context.Context, sourceYearID uuid.UUID) error

	// MarkDone flips is_promotion_done false → true as an atomic
	// compare-and-set. Returns ErrAlreadyPromoted if a concurrent execution
	// won the race.
	MarkDone(ctx context.Context, sourceYearID uuid.UUID) error

	// ClearDone re-opens the source year. Invoked only by the undo
	// coordinator after a fully-reversed batch.
	ClearDone(ctx context.Context, sourceYearID uuid.UUID) error
}

// Unlock releases a held lock.
type Unlock func()

// Locker is the single-writer lock scoped to a source year. Held only around
// the guard check / mark-done pair — never across a whole batch.
type Locker interface {
	// TryLock acquires the lock or returns ErrLockHeld without blocking.
	// ttl caps the hold time in case the holder crashes.
	TryLock(ctx context.Context, sourceYearID uuid.UUID, ttl time.Duration) (Unlock, error)
}

// lockRetryInterval is the pause between lock attempts while finalizing a
// committed batch.
const lockRetryInterval = 50 * time.Millisecond

// lockWithRetry keeps trying the per-year lock until granted, the ttl
// elapses, or the context ends. The initial guard check stays non-blocking
// so a second operator gets PROMOTION_IN_FLIGHT immediately, but the
// terminal flag mutation must not abandon an already-committed batch just
// because a concurrent check briefly holds the lock.
func lockWithRetry(ctx context.Context, locker Locker, sourceYearID uuid.UUID, ttl time.Duration) (Unlock, error) {
	deadline := time.Now().Add(ttl)
	for {
		unlock, err := locker.TryLock(ctx, sourceYearID, ttl)
		if err == nil {
			return unlock, nil
		}
		if !errors.Is(err, ErrLockHeld) {
			return nil, err
		}
		if time.Now().After(deadline) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
}
