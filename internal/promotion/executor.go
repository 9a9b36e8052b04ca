package promotion

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/salatech/promotion-service/internal/model"
)

// Applier commits or reverts one student's promotion. Apply performs the
// class reassignment and the ledger append as a single atomic unit: it either
// runs to completion or fails as a unit, with no partial state.
type Applier interface {
	Apply(ctx context.Context, record *model.ProgressionRecord) error
	Revert(ctx context.Context, record model.ProgressionRecord, at time.Time) error
}

// Ledger reads the durable audit trail of executed promotions.
type Ledger interface {
	// Batch returns every progression record sharing fromYearID/toYearID,
	// ordered by executed_at.
	Batch(ctx context.Context, fromYearID, toYearID uuid.UUID) ([]model.ProgressionRecord, error)
}

// Executor applies a list of promotion requests with per-student failure
// isolation. A failed request never rolls back or blocks committed requests
// before or after it in the batch.
type Executor struct {
	guard    Guard
	locker   Locker
	applier  Applier
	progress ProgressPublisher
	log      zerolog.Logger

	workers int
	lockTTL time.Duration
	now     func() time.Time
}

// NewExecutor creates an Executor. workers bounds per-student parallelism;
// values below 1 are treated as serial execution.
func NewExecutor(
	guard Guard,
	locker Locker,
	applier Applier,
	progress ProgressPublisher,
	log zerolog.Logger,
	workers int,
	lockTTL time.Duration,
) *Executor {
	if workers < 1 {
		workers = 1
	}
	if progress == nil {
		progress = NopPublisher{}
	}
	return &Executor{
		guard:    guard,
		locker:   locker,
		applier:  applier,
		progress: progress,
		log:      log.With().Str("component", "promotion_executor").Logger(),
		workers:  workers,
		lockTTL:  lockTTL,
		now:      time.Now,
	}
}

// Execute processes the batch and returns the aggregated result. The guard is
// re-checked under the single-writer lock immediately before any side effect;
// mark-done runs exactly once after the batch, even when some requests failed
// — partial success still exhausts the one-shot permission, preventing a
// duplicate re-promotion of the subset that already succeeded.
//
// On a mid-batch ErrAlreadyPromoted (a concurrent duplicate execution marked
// the year done), the remaining requests are abandoned with zero further side
// effects while already-committed requests stay committed. The asymmetry is
// logged at Error level rather than silently reconciled.
func (e *Executor) Execute(
	ctx context.Context,
	sourceYearID, targetYearID uuid.UUID,
	requests []Request,
	actorID uuid.UUID,
) (model.PromotionResult, error) {
	var result model.PromotionResult

	if err := e.checkGuardLocked(ctx, sourceYearID); err != nil {
		return result, err
	}

	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		aborted   atomic.Bool
		processed atomic.Int64
		total     = len(requests)
	)

	jobs := make(chan Request)
	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for req := range jobs {
				if aborted.Load() {
					continue
				}
				e.processOne(ctx, sourceYearID, targetYearID, req, actorID, total, &mu, &result, &aborted, &processed)
			}
		}()
	}
	for _, req := range requests {
		jobs <- req
	}
	close(jobs)
	wg.Wait()

	if aborted.Load() {
		e.log.Error().
			Str("source_year_id", sourceYearID.String()).
			Int("committed", result.Promoted+result.Repeated+result.Graduated).
			Int("failed", result.Failed).
			Int("abandoned", total-result.Total()).
			Msg("Batch aborted mid-flight: source year was promoted concurrently; committed students stay promoted, the rest were never attempted")
		return result, ErrAlreadyPromoted
	}

	if err := e.markDoneLocked(ctx, sourceYearID); err != nil {
		if errors.Is(err, ErrAlreadyPromoted) {
			// A concurrent duplicate won the compare-and-set after our last
			// per-request check. Same asymmetry as the mid-batch abort.
			e.log.Error().
				Str("source_year_id", sourceYearID.String()).
				Msg("Mark-done lost the race: a concurrent execution already exhausted the one-shot guard")
			return result, ErrAlreadyPromoted
		}
		return result, err
	}

	e.log.Info().
		Str("source_year_id", sourceYearID.String()).
		Str("target_year_id", targetYearID.String()).
		Int("promoted", result.Promoted).
		Int("repeated", result.Repeated).
		Int("graduated", result.Graduated).
		Int("failed", result.Failed).
		Msg("Promotion batch completed")

	return result, nil
}

// processOne runs the per-request algorithm: guard re-check, atomic
// reassign+append, counter update, progress event. Failures are recorded and
// never propagate to sibling requests.
func (e *Executor) processOne(
	ctx context.Context,
	sourceYearID, targetYearID uuid.UUID,
	req Request,
	actorID uuid.UUID,
	total int,
	mu *sync.Mutex,
	result *model.PromotionResult,
	aborted *atomic.Bool,
	processed *atomic.Int64,
) {
	if err := e.guard.CheckAllowed(ctx, sourceYearID); err != nil {
		if errors.Is(err, ErrAlreadyPromoted) {
			aborted.Store(true)
			return
		}
		e.recordFailure(ctx, sourceYearID, req, err, total, mu, result, processed)
		return
	}

	record := &model.ProgressionRecord{
		ID:          uuid.New(),
		StudentID:   req.StudentID,
		FromYearID:  sourceYearID,
		ToYearID:    targetYearID,
		FromClassID: req.FromClassID,
		ToClassID:   req.ToClassID,
		Type:        req.Type,
		ExecutedAt:  e.now(),
		ExecutedBy:  actorID,
	}

	if err := e.applier.Apply(ctx, record); err != nil {
		e.recordFailure(ctx, sourceYearID, req, err, total, mu, result, processed)
		return
	}

	mu.Lock()
	switch req.Type {
	case model.PromotionRepeat:
		result.Repeated++
	case model.PromotionGraduate:
		result.Graduated++
	default: // AUTOMATIC and MANUAL both count as promoted.
		result.Promoted++
	}
	mu.Unlock()

	e.progress.Publish(ctx, ProgressEvent{
		SourceYearID: sourceYearID,
		StudentID:    req.StudentID,
		Status:       ProgressCommitted,
		Processed:    int(processed.Add(1)),
		Total:        total,
	})
}

func (e *Executor) recordFailure(
	ctx context.Context,
	sourceYearID uuid.UUID,
	req Request,
	err error,
	total int,
	mu *sync.Mutex,
	result *model.PromotionResult,
	processed *atomic.Int64,
) {
	e.log.Warn().
		Err(err).
		Str("student_id", req.StudentID.String()).
		Msg("Promotion failed for student")

	mu.Lock()
	result.Failed++
	result.Errors = append(result.Errors, model.PromotionError{
		StudentID: req.StudentID,
		Error:     err.Error(),
	})
	mu.Unlock()

	e.progress.Publish(ctx, ProgressEvent{
		SourceYearID: sourceYearID,
		StudentID:    req.StudentID,
		Status:       ProgressFailed,
		Error:        err.Error(),
		Processed:    int(processed.Add(1)),
		Total:        total,
	})
}

// checkGuardLocked serializes the initial permission check against any other
// execution attempt for the same source year. The lock is released before the
// batch starts; only the check itself needs exclusivity.
func (e *Executor) checkGuardLocked(ctx context.Context, sourceYearID uuid.UUID) error {
	unlock, err := e.locker.TryLock(ctx, sourceYearID, e.lockTTL)
	if err != nil {
		return err
	}
	defer unlock()
	return e.guard.CheckAllowed(ctx, sourceYearID)
}

// markDoneLocked serializes the terminal compare-and-set. By this point the
// batch has committed, so momentary lock contention (a concurrent guard
// check, a progress reader) must be waited out rather than surfaced: the
// flag has to flip exactly once per successful run.
func (e *Executor) markDoneLocked(ctx context.Context, sourceYearID uuid.UUID) error {
	unlock, err := lockWithRetry(ctx, e.locker, sourceYearID, e.lockTTL)
	if err != nil {
		return err
	}
	defer unlock()
	return e.guard.MarkDone(ctx, sourceYearID)
}
