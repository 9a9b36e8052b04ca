package promotion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salatech/promotion-service/internal/model"
)

func TestPlanGeneratesOneRequestPerPromotingStudent(t *testing.T) {
	matcher := NewMatcher(DefaultCurriculum())

	tenA := makeClass("10-A", 10, model.TrackNone)
	elevenSci := makeClass("11-SCI-A", 11, model.TrackScience)
	twelveSci := makeClass("12-SCI-A", 12, model.TrackScience)

	eligibility := Eligibility{
		Groups: []ClassGroup{
			{Class: tenA, Students: makeStudents(5)},
			{Class: elevenSci, Students: makeStudents(8)},
			{Class: twelveSci, Students: makeStudents(3)},
		},
		UnassignedCount: 2,
	}
	targets := []model.Class{
		makeClass("11-SCI-A", 11, model.TrackScience),
		makeClass("12-SCI-A", 12, model.TrackScience),
	}

	preview, requests := Plan(eligibility, targets, matcher)

	// 5 + 8 promote, 3 graduate without a request row.
	require.Len(t, requests, 13)
	for _, req := range requests {
		assert.Equal(t, model.PromotionAutomatic, req.Type)
		require.NotNil(t, req.ToClassID)
	}

	assert.Equal(t, 3, preview.Summary.TotalClasses)
	assert.Equal(t, 16, preview.Summary.TotalStudents)
	assert.Equal(t, 13, preview.Summary.PromotingStudents)
	assert.Equal(t, 3, preview.Summary.GraduatingStudents)
	assert.Equal(t, 0, preview.Summary.StudentsWithoutTarget)
	assert.Equal(t, 2, preview.Summary.UnassignedStudents)
}

func TestPlanRoutesToDefaultTarget(t *testing.T) {
	matcher := NewMatcher(DefaultCurriculum())

	source := makeClass("10-A", 10, model.TrackNone)
	targetA := makeClass("11-A", 11, model.TrackNone)
	targetB := makeClass("11-B", 11, model.TrackNone)

	eligibility := Eligibility{
		Groups: []ClassGroup{{Class: source, Students: makeStudents(4)}},
	}

	preview, requests := Plan(eligibility, []model.Class{targetB, targetA}, matcher)

	require.Len(t, requests, 4)
	for _, req := range requests {
		assert.Equal(t, targetA.ID, *req.ToClassID)
		assert.Equal(t, source.ID, req.FromClassID)
	}

	require.Len(t, preview.Items, 1)
	require.Len(t, preview.Items[0].TargetClasses, 2)
	assert.Equal(t, targetA.ID, preview.Items[0].TargetClasses[0].ID)
}

func TestPlanFlagsClassesWithoutTarget(t *testing.T) {
	matcher := NewMatcher(DefaultCurriculum())

	source := makeClass("10-A", 10, model.TrackNone)
	eligibility := Eligibility{
		Groups: []ClassGroup{{Class: source, Students: makeStudents(6)}},
	}

	// Destination year has no grade-11 class at all.
	preview, requests := Plan(eligibility, []model.Class{makeClass("10-A", 10, model.TrackNone)}, matcher)

	assert.Empty(t, requests)
	require.Len(t, preview.Items, 1)
	assert.True(t, preview.Items[0].NoTarget)
	assert.Equal(t, 6, preview.Summary.StudentsWithoutTarget)
	assert.Equal(t, 0, preview.Summary.PromotingStudents)
}

func TestPlanGraduatingClassGetsNoRequests(t *testing.T) {
	matcher := NewMatcher(DefaultCurriculum())

	source := makeClass("12-SOC-A", 12, model.TrackSocial)
	eligibility := Eligibility{
		Groups: []ClassGroup{{Class: source, Students: makeStudents(7)}},
	}

	preview, requests := Plan(eligibility, nil, matcher)

	assert.Empty(t, requests)
	require.Len(t, preview.Items, 1)
	assert.True(t, preview.Items[0].WillGraduate)
	assert.False(t, preview.Items[0].NoTarget)
	assert.Equal(t, 7, preview.Summary.GraduatingStudents)
}

func TestPlanGraduatingAndPromotingClassesTogether(t *testing.T) {
	matcher := NewMatcher(DefaultCurriculum())

	twelve := makeClass("12-A", 12, model.TrackNone)
	elevenSci := makeClass("11-SCI-A", 11, model.TrackScience)
	targetTwelveSci := makeClass("12-SCI-A", 12, model.TrackScience)

	eligibility := Eligibility{
		Groups: []ClassGroup{
			{Class: twelve, Students: makeStudents(5)},
			{Class: elevenSci, Students: makeStudents(8)},
		},
	}

	preview, requests := Plan(eligibility, []model.Class{targetTwelveSci}, matcher)

	require.Len(t, requests, 8)
	for _, req := range requests {
		assert.Equal(t, elevenSci.ID, req.FromClassID)
		assert.Equal(t, targetTwelveSci.ID, *req.ToClassID)
	}

	require.Len(t, preview.Items, 2)
	for _, item := range preview.Items {
		if item.WillGraduate {
			assert.Empty(t, item.TargetClasses)
			assert.Equal(t, 5, item.StudentCount)
		} else {
			require.Len(t, item.TargetClasses, 1)
			assert.Equal(t, 8, item.StudentCount)
		}
	}
	assert.Equal(t, 5, preview.Summary.GraduatingStudents)
	assert.Equal(t, 8, preview.Summary.PromotingStudents)
}

func TestPlanIsDeterministic(t *testing.T) {
	matcher := NewMatcher(DefaultCurriculum())

	eligibility := Eligibility{
		Groups: []ClassGroup{
			{Class: makeClass("10-A", 10, model.TrackNone), Students: makeStudents(3)},
			{Class: makeClass("11-SCI-A", 11, model.TrackScience), Students: makeStudents(3)},
		},
	}
	targets := []model.Class{
		makeClass("11-SCI-A", 11, model.TrackScience),
		makeClass("12-SCI-A", 12, model.TrackScience),
	}

	previewA, requestsA := Plan(eligibility, targets, matcher)
	previewB, requestsB := Plan(eligibility, targets, matcher)

	assert.Equal(t, previewA, previewB)
	assert.Equal(t, requestsA, requestsB)
}
