// Package colle implements the constraint model, solver escalation and
// analyzer for fortnight-style oral-examination ("colle") timetables.
//
// The package is a pure library: it has no database, HTTP, or logging
// dependency. Callers parse a catalog, ask the package to solve or analyze
// it, and get back plain values.
package colle

// Slot is a recurring (teacher, subject, day, hour) offering with parity
// availability and per-parity group eligibility.
type Slot struct {
	Subject    string
	Teacher    string
	Day        string
	StartMin   int
	EndMin     int
	EvenGroups map[int]struct{}
	OddGroups  map[int]struct{}
	WorksEven  bool
	WorksOdd   bool
}

// EligibleGroups returns the eligibility set for the given week parity.
func (s Slot) EligibleGroups(parity int) map[int]struct{} {
	if parity == 0 {
		return s.EvenGroups
	}
	return s.OddGroups
}

// WorksParity reports whether the teacher behind this slot works weeks of
// the given parity.
func (s Slot) WorksParity(parity int) bool {
	if parity == 0 {
		return s.WorksEven
	}
	return s.WorksOdd
}

// Week is a single planning week; Parity is week number mod 2.
type Week struct {
	Number int
	Parity int
}

// NewWeek builds a Week from its raw number.
func NewWeek(number int) Week {
	return Week{Number: number, Parity: ((number % 2) + 2) % 2}
}

// AlternationRule configures cadence for a subject: Active gates whether the
// rule contributes a constraint at all; Frequency is the window size in
// weeks over which the cadence is measured (one of 1, 2, 4, 8).
type AlternationRule struct {
	Active    bool
	Frequency int
}

// AlternationPolicy maps subject name to its cadence rule.
type AlternationPolicy map[string]AlternationRule

// Catalog is the fully parsed input: the ordered slot list, the declared
// week order (never sorted), and the derived global group set.
type Catalog struct {
	Slots  []Slot
	Weeks  []Week
	Groups []int // sorted ascending
}

// Assignment maps a (slotIndex, weekNumber) cell to an assigned group id.
// A cell absent from the map is empty. SlotIndex refers to the slot's
// position within the Catalog.Slots slice that produced this assignment.
type Assignment struct {
	Cells map[CellKey]int
}

// CellKey identifies one (slot, week) cell of an assignment.
type CellKey struct {
	SlotIndex int
	Week      int
}

// NewAssignment returns an empty assignment.
func NewAssignment() Assignment {
	return Assignment{Cells: make(map[CellKey]int)}
}

// Get returns the assigned group for a cell and whether one exists.
func (a Assignment) Get(slotIndex, week int) (int, bool) {
	g, ok := a.Cells[CellKey{SlotIndex: slotIndex, Week: week}]
	return g, ok
}

// Set assigns a group to a cell.
func (a Assignment) Set(slotIndex, week, group int) {
	a.Cells[CellKey{SlotIndex: slotIndex, Week: week}] = group
}

// Mode is the solver escalation tier.
type Mode string

const (
	ModeStrict   Mode = "strict"
	ModeRelaxed  Mode = "relaxed"
	ModeMaximize Mode = "maximize"
)

// SolveResult is the outcome of a successful Solve call.
type SolveResult struct {
	Mode       Mode
	Assignment Assignment
}
