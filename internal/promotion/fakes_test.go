package promotion

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/salatech/promotion-service/internal/model"
)

// fakeGuard is an in-memory one-shot guard. failFromCall, when > 0, makes
// CheckAllowed start returning ErrAlreadyPromoted from the Nth call onward,
// simulating a concurrent execution exhausting the flag mid-batch.
type fakeGuard struct {
	mu           sync.Mutex
	done         bool
	checkCalls   int
	failFromCall int
	checkErr     error
}

func (g *fakeGuard) CheckAllowed(_ context.Context, _ uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.checkCalls++
	if g.checkErr != nil {
		return g.checkErr
	}
	if g.failFromCall > 0 && g.checkCalls >= g.failFromCall {
		return ErrAlreadyPromoted
	}
	if g.done {
		return ErrAlreadyPromoted
	}
	return nil
}

func (g *fakeGuard) MarkDone(_ context.Context, _ uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.done {
		return ErrAlreadyPromoted
	}
	g.done = true
	return nil
}

func (g *fakeGuard) ClearDone(_ context.Context, _ uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.done = false
	return nil
}

func (g *fakeGuard) isDone() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.done
}

// fakeLocker hands out the lock to one holder at a time. refuse, when set,
// simulates contention for specific acquisition attempts (1-based).
type fakeLocker struct {
	mu     sync.Mutex
	held   bool
	calls  int
	refuse func(call int) bool
}

func (l *fakeLocker) TryLock(_ context.Context, _ uuid.UUID, _ time.Duration) (Unlock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.refuse != nil && l.refuse(l.calls) {
		return nil, ErrLockHeld
	}
	if l.held {
		return nil, ErrLockHeld
	}
	l.held = true
	return func() {
		l.mu.Lock()
		l.held = false
		l.mu.Unlock()
	}, nil
}

// fakeApplier stores applied records in memory. Per-student failures are
// injected via failFor; failRevertFor does the same for Revert.
type fakeApplier struct {
	mu          sync.Mutex
	applied     []model.ProgressionRecord
	failFor     map[uuid.UUID]error
	failRevert  map[uuid.UUID]error
	revertedIDs map[uuid.UUID]bool
}

func newFakeApplier() *fakeApplier {
	return &fakeApplier{
		failFor:     map[uuid.UUID]error{},
		failRevert:  map[uuid.UUID]error{},
		revertedIDs: map[uuid.UUID]bool{},
	}
}

func (a *fakeApplier) Apply(_ context.Context, record *model.ProgressionRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err, ok := a.failFor[record.StudentID]; ok {
		return err
	}
	a.applied = append(a.applied, *record)
	return nil
}

func (a *fakeApplier) Revert(_ context.Context, record model.ProgressionRecord, _ time.Time) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err, ok := a.failRevert[record.StudentID]; ok {
		return err
	}
	a.revertedIDs[record.ID] = true
	return nil
}

func (a *fakeApplier) appliedCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.applied)
}

// fakeLedger serves a fixed batch.
type fakeLedger struct {
	records []model.ProgressionRecord
	err     error
}

func (l *fakeLedger) Batch(_ context.Context, _, _ uuid.UUID) ([]model.ProgressionRecord, error) {
	return l.records, l.err
}

// capturePublisher collects published progress events.
type capturePublisher struct {
	mu     sync.Mutex
	events []ProgressEvent
}

func (p *capturePublisher) Publish(_ context.Context, event ProgressEvent) {
	p.mu.Lock()
	p.events = append(p.events, event)
	p.mu.Unlock()
}

func (p *capturePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

// fakeDirectory serves a fixed eligibility snapshot.
type fakeDirectory struct {
	groups     []ClassGroup
	unassigned int
	err        error
}

func (d *fakeDirectory) EligibleByClass(_ context.Context, _ uuid.UUID) ([]ClassGroup, int, error) {
	if d.err != nil {
		return nil, 0, d.err
	}
	return d.groups, d.unassigned, nil
}

var errDatabaseDown = errors.New("connection refused")

// ─── Builders ───────────────────────────────────────────────────────

func makeClass(name string, grade int, track model.Track) model.Class {
	return model.Class{
		ID:    uuid.New(),
		Name:  name,
		Grade: grade,
		Track: track,
	}
}

func makeStudents(n int) []model.Student {
	students := make([]model.Student, n)
	for i := range students {
		students[i] = model.Student{ID: uuid.New()}
	}
	return students
}

func makeRequests(n int, target uuid.UUID, typ model.PromotionType) []Request {
	requests := make([]Request, n)
	for i := range requests {
		to := target
		requests[i] = Request{
			StudentID:   uuid.New(),
			FromClassID: uuid.New(),
			ToClassID:   &to,
			Type:        typ,
		}
	}
	return requests
}
