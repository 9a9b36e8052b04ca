package promotion

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salatech/promotion-service/internal/model"
)

func TestResolverOrdersGroupsByGradeThenName(t *testing.T) {
	dir := &fakeDirectory{
		groups: []ClassGroup{
			{Class: makeClass("11-SOC-A", 11, model.TrackSocial)},
			{Class: makeClass("10-B", 10, model.TrackNone)},
			{Class: makeClass("11-SCI-A", 11, model.TrackScience)},
			{Class: makeClass("10-A", 10, model.TrackNone)},
		},
		unassigned: 3,
	}
	resolver := NewResolver(dir)

	eligibility, err := resolver.Resolve(context.Background(), uuid.New())
	require.NoError(t, err)

	names := make([]string, 0, len(eligibility.Groups))
	for _, g := range eligibility.Groups {
		names = append(names, g.Class.Name)
	}
	assert.Equal(t, []string{"10-A", "10-B", "11-SCI-A", "11-SOC-A"}, names)
	assert.Equal(t, 3, eligibility.UnassignedCount)
}

func TestResolverWrapsCollaboratorFailure(t *testing.T) {
	resolver := NewResolver(&fakeDirectory{err: errDatabaseDown})

	eligibility, err := resolver.Resolve(context.Background(), uuid.New())

	assert.ErrorIs(t, err, ErrDataUnavailable)
	assert.Empty(t, eligibility.Groups)
	assert.Zero(t, eligibility.UnassignedCount)
}

func TestEligibilityTotalStudents(t *testing.T) {
	eligibility := Eligibility{
		Groups: []ClassGroup{
			{Class: makeClass("10-A", 10, model.TrackNone), Students: makeStudents(5)},
			{Class: makeClass("10-B", 10, model.TrackNone), Students: makeStudents(8)},
		},
		UnassignedCount: 4,
	}

	// Unassigned students are counted separately, never in the total.
	assert.Equal(t, 13, eligibility.TotalStudents())
}
