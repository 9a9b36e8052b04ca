package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salatech/promotion-service/internal/model"
	"github.com/salatech/promotion-service/internal/promotion"
)

type scopeFixture struct {
	sourceClass   model.Class
	targetClass   model.Class
	sourceClasses []model.Class
	targetClasses []model.Class
	studentID     uuid.UUID
	assignments   map[uuid.UUID]*uuid.UUID
}

func newScopeFixture() scopeFixture {
	f := scopeFixture{
		sourceClass: model.Class{ID: uuid.New(), Grade: 10, Name: "10-A"},
		targetClass: model.Class{ID: uuid.New(), Grade: 11, Name: "11-A"},
		studentID:   uuid.New(),
	}
	f.sourceClasses = []model.Class{f.sourceClass}
	f.targetClasses = []model.Class{f.targetClass}
	classID := f.sourceClass.ID
	f.assignments = map[uuid.UUID]*uuid.UUID{f.studentID: &classID}
	return f
}

func (f scopeFixture) request(typ model.PromotionType) promotion.Request {
	req := promotion.Request{
		StudentID:   f.studentID,
		FromClassID: f.sourceClass.ID,
		Type:        typ,
	}
	if typ != model.PromotionGraduate {
		to := f.targetClass.ID
		req.ToClassID = &to
	}
	return req
}

func TestValidateRequestsAcceptsInScopeBatch(t *testing.T) {
	f := newScopeFixture()
	requests := []promotion.Request{f.request(model.PromotionAutomatic)}

	require.NoError(t, validateRequests(requests, f.sourceClasses, f.targetClasses, f.assignments))
}

func TestValidateRequestsRejectsForeignStudent(t *testing.T) {
	f := newScopeFixture()
	// A student ID from another school never shows up in the scoped
	// assignment lookup.
	req := f.request(model.PromotionAutomatic)
	req.StudentID = uuid.New()

	err := validateRequests([]promotion.Request{req}, f.sourceClasses, f.targetClasses, f.assignments)
	assert.ErrorIs(t, err, ErrRequestOutOfScope)
}

func TestValidateRequestsRejectsForeignSourceClass(t *testing.T) {
	f := newScopeFixture()
	req := f.request(model.PromotionAutomatic)
	req.FromClassID = uuid.New()

	err := validateRequests([]promotion.Request{req}, f.sourceClasses, f.targetClasses, f.assignments)
	assert.ErrorIs(t, err, ErrRequestOutOfScope)
}

func TestValidateRequestsRejectsForeignTargetClass(t *testing.T) {
	f := newScopeFixture()
	req := f.request(model.PromotionManual)
	foreign := uuid.New()
	req.ToClassID = &foreign

	err := validateRequests([]promotion.Request{req}, f.sourceClasses, f.targetClasses, f.assignments)
	assert.ErrorIs(t, err, ErrRequestOutOfScope)
}

func TestValidateRequestsRejectsStaleClassAssignment(t *testing.T) {
	f := newScopeFixture()
	other := uuid.New()
	f.assignments[f.studentID] = &other

	err := validateRequests([]promotion.Request{f.request(model.PromotionAutomatic)},
		f.sourceClasses, f.targetClasses, f.assignments)
	assert.ErrorIs(t, err, ErrRequestOutOfScope)
}

func TestValidateRequestsRejectsUnassignedStudent(t *testing.T) {
	f := newScopeFixture()
	f.assignments[f.studentID] = nil

	err := validateRequests([]promotion.Request{f.request(model.PromotionAutomatic)},
		f.sourceClasses, f.targetClasses, f.assignments)
	assert.ErrorIs(t, err, ErrRequestOutOfScope)
}

func TestValidateRequestsGraduation(t *testing.T) {
	f := newScopeFixture()

	require.NoError(t, validateRequests([]promotion.Request{f.request(model.PromotionGraduate)},
		f.sourceClasses, f.targetClasses, f.assignments))

	withTarget := f.request(model.PromotionGraduate)
	to := f.targetClass.ID
	withTarget.ToClassID = &to
	err := validateRequests([]promotion.Request{withTarget},
		f.sourceClasses, f.targetClasses, f.assignments)
	assert.ErrorIs(t, err, ErrRequestOutOfScope)
}

func TestValidateRequestsRequiresTargetForPromotion(t *testing.T) {
	f := newScopeFixture()
	req := f.request(model.PromotionRepeat)
	req.ToClassID = nil

	err := validateRequests([]promotion.Request{req}, f.sourceClasses, f.targetClasses, f.assignments)
	assert.ErrorIs(t, err, ErrRequestOutOfScope)
}
