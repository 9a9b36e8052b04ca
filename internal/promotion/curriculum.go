// Package promotion implements the academic-year promotion engine: matching
// source classes to target classes, planning a promotion batch, executing it
// with per-student failure isolation under a one-shot guard, and reversing a
// batch within the undo window.
package promotion

// Curriculum describes the grade structure the matcher operates over. It is
// decided at the configuration boundary so the engine never compares untyped
// strings.
type Curriculum struct {
	terminalGrade int
	trackedGrades map[int]struct{}
}

// NewCurriculum builds a curriculum with the given terminal grade and the set
// of grades whose classes are disambiguated by track.
func NewCurriculum(terminalGrade int, trackedGrades []int) Curriculum {
	tracked := make(map[int]struct{}, len(trackedGrades))
	for _, g := range trackedGrades {
		tracked[g] = struct{}{}
	}
	return Curriculum{terminalGrade: terminalGrade, trackedGrades: tracked}
}

// DefaultCurriculum is the standard grade 7–12 curriculum with tracked
// grades 11 and 12.
func DefaultCurriculum() Curriculum {
	return NewCurriculum(12, []int{11, 12})
}

// TerminalGrade returns the highest grade of the curriculum.
func (c Curriculum) TerminalGrade() int {
	return c.terminalGrade
}

// IsTerminal reports whether students at the given grade graduate instead of
// promoting.
func (c Curriculum) IsTerminal(grade int) bool {
	return grade >= c.terminalGrade
}

// IsTracked reports whether classes at the given grade are disambiguated by
// track.
func (c Curriculum) IsTracked(grade int) bool {
	_, ok := c.trackedGrades[grade]
	return ok
}
