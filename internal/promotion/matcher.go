package promotion

import (
	"sort"

	"github.com/salatech/promotion-service/internal/model"
)

// MatchResult is the outcome of matching one source class against the target
// year's classes.
type MatchResult struct {
	// WillGraduate is true for classes at the terminal grade; no target
	// lookup is performed for them.
	WillGraduate bool
	// Targets are the candidate target classes, deterministically ordered:
	// exact-track matches first, then track-less fallbacks, each sorted by
	// name. Index 0 is the default mapping used by the planner.
	Targets []model.Class
}

// Matcher maps a source class to candidate classes in the destination year.
// Pure over the provided snapshots; no side effects.
type Matcher struct {
	curriculum Curriculum
}

// NewMatcher creates a Matcher for the given curriculum.
func NewMatcher(curriculum Curriculum) *Matcher {
	return &Matcher{curriculum: curriculum}
}

// Match decides graduation vs. promotion for source and selects candidate
// target classes among candidates (the destination year's classes).
//
// Track rules: a track-specific target class must match the source track; a
// track-less target is accepted as a fallback. A track-less source class may
// match any next-grade class.
func (m *Matcher) Match(source model.Class, candidates []model.Class) MatchResult {
	if m.curriculum.IsTerminal(source.Grade) {
		return MatchResult{WillGraduate: true}
	}

	nextGrade := source.Grade + 1
	var targets []model.Class
	for _, c := range candidates {
		if c.Grade != nextGrade {
			continue
		}
		if m.curriculum.IsTracked(nextGrade) && source.HasTrack() {
			if c.HasTrack() && c.Track != source.Track {
				continue
			}
		}
		targets = append(targets, c)
	}

	sort.SliceStable(targets, func(i, j int) bool {
		ri, rj := trackRank(source, targets[i]), trackRank(source, targets[j])
		if ri != rj {
			return ri < rj
		}
		return targets[i].Name < targets[j].Name
	})

	return MatchResult{Targets: targets}
}

// trackRank orders exact-track matches ahead of track-less fallbacks so the
// default (first) candidate is the most specific one.
func trackRank(source, target model.Class) int {
	if source.HasTrack() && target.Track == source.Track {
		return 0
	}
	return 1
}
