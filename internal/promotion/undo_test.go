package promotion

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salatech/promotion-service/internal/model"
)

func newTestUndoer(guard Guard, applier Applier, ledger Ledger, window time.Duration) *UndoCoordinator {
	return NewUndoCoordinator(guard, &fakeLocker{}, applier, ledger, zerolog.Nop(), window, time.Second)
}

func makeBatch(n int, executedAt time.Time) []model.ProgressionRecord {
	to := uuid.New()
	records := make([]model.ProgressionRecord, n)
	for i := range records {
		records[i] = model.ProgressionRecord{
			ID:          uuid.New(),
			StudentID:   uuid.New(),
			FromYearID:  uuid.New(),
			ToYearID:    uuid.New(),
			FromClassID: uuid.New(),
			ToClassID:   &to,
			Type:        model.PromotionAutomatic,
			ExecutedAt:  executedAt,
			ExecutedBy:  uuid.New(),
		}
	}
	return records
}

func TestUndoReversesFullBatchAndReopensYear(t *testing.T) {
	executedAt := time.Now().Add(-time.Hour)
	guard := &fakeGuard{done: true}
	applier := newFakeApplier()
	ledger := &fakeLedger{records: makeBatch(5, executedAt)}

	undoer := newTestUndoer(guard, applier, ledger, 24*time.Hour)

	summary, err := undoer.Undo(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, 5, summary.Reversed)
	assert.Equal(t, 0, summary.Failed)
	assert.True(t, summary.FlagCleared)
	assert.False(t, guard.isDone())
	assert.Len(t, applier.revertedIDs, 5)
}

func TestUndoWindowExpired(t *testing.T) {
	executedAt := time.Now().Add(-25 * time.Hour)
	guard := &fakeGuard{done: true}
	applier := newFakeApplier()
	ledger := &fakeLedger{records: makeBatch(3, executedAt)}

	undoer := newTestUndoer(guard, applier, ledger, 24*time.Hour)

	_, err := undoer.Undo(context.Background(), uuid.New(), uuid.New())

	assert.ErrorIs(t, err, ErrUndoWindowExpired)
	assert.Empty(t, applier.revertedIDs)
	assert.True(t, guard.isDone())
}

func TestUndoWindowMeasuredFromEarliestRecord(t *testing.T) {
	// Earliest record is out of window even though the later one is not:
	// undo is all-or-nothing, so the whole batch is refused.
	base := time.Now()
	early := makeBatch(1, base.Add(-25*time.Hour))
	late := makeBatch(1, base.Add(-2*time.Hour))

	guard := &fakeGuard{done: true}
	applier := newFakeApplier()
	ledger := &fakeLedger{records: append(late, early...)}

	undoer := newTestUndoer(guard, applier, ledger, 24*time.Hour)

	_, err := undoer.Undo(context.Background(), uuid.New(), uuid.New())

	assert.ErrorIs(t, err, ErrUndoWindowExpired)
	assert.Empty(t, applier.revertedIDs)
}

func TestUndoNothingToUndo(t *testing.T) {
	undoer := newTestUndoer(&fakeGuard{}, newFakeApplier(), &fakeLedger{}, 24*time.Hour)

	_, err := undoer.Undo(context.Background(), uuid.New(), uuid.New())

	assert.ErrorIs(t, err, ErrNothingToUndo)
}

func TestUndoPartialFailureKeepsYearClosed(t *testing.T) {
	executedAt := time.Now().Add(-time.Hour)
	records := makeBatch(4, executedAt)

	guard := &fakeGuard{done: true}
	applier := newFakeApplier()
	applier.failRevert[records[1].StudentID] = errDatabaseDown
	ledger := &fakeLedger{records: records}

	undoer := newTestUndoer(guard, applier, ledger, 24*time.Hour)

	summary, err := undoer.Undo(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Reversed)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, records[1].StudentID, summary.Errors[0].StudentID)

	// A straggler stays promoted, so the year must stay closed.
	assert.False(t, summary.FlagCleared)
	assert.True(t, guard.isDone())
}

func TestUndoSkipsAlreadyReversedRecords(t *testing.T) {
	executedAt := time.Now().Add(-time.Hour)
	records := makeBatch(3, executedAt)
	reversedAt := executedAt.Add(time.Minute)
	records[0].ReversedAt = &reversedAt

	guard := &fakeGuard{done: true}
	applier := newFakeApplier()
	ledger := &fakeLedger{records: records}

	undoer := newTestUndoer(guard, applier, ledger, 24*time.Hour)

	summary, err := undoer.Undo(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)

	// Only the two live records are reverted, yet the batch counts as fully
	// reversed and the year reopens.
	assert.Equal(t, 2, summary.Reversed)
	assert.True(t, summary.FlagCleared)
	assert.False(t, guard.isDone())
	assert.Len(t, applier.revertedIDs, 2)
}

func TestUndoLedgerFailurePropagates(t *testing.T) {
	undoer := newTestUndoer(&fakeGuard{done: true}, newFakeApplier(), &fakeLedger{err: errDatabaseDown}, 24*time.Hour)

	_, err := undoer.Undo(context.Background(), uuid.New(), uuid.New())

	assert.ErrorIs(t, err, errDatabaseDown)
}

func TestUndoClearDoneRetriesContendedLock(t *testing.T) {
	guard := &fakeGuard{done: true}
	applier := newFakeApplier()
	ledger := &fakeLedger{records: makeBatch(4, time.Now().Add(-time.Hour))}
	locker := &fakeLocker{refuse: func(call int) bool { return call <= 2 }}

	undoer := NewUndoCoordinator(guard, locker, applier, ledger, zerolog.Nop(), 24*time.Hour, time.Second)

	summary, err := undoer.Undo(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Reversed)
	assert.True(t, summary.FlagCleared)
	assert.False(t, guard.isDone())
}
