package colle

import "testing"

func singleGroupSet(nums ...int) map[int]struct{} {
	m := make(map[int]struct{})
	for _, n := range nums {
		m[n] = struct{}{}
	}
	return m
}

// TestAnalyzeCorruptedInputReportsOneGlobalViolation mirrors S5: a valid
// solve whose week-38 column is hand-edited so the same group sits in two
// different slots of the same (day,hour).
func TestAnalyzeCorruptedInputReportsOneGlobalViolation(t *testing.T) {
	slotA := Slot{
		Subject: "Mathematics", Teacher: "Dupont", Day: "Lundi",
		StartMin: 17 * 60, EndMin: 18 * 60,
		EvenGroups: singleGroupSet(1, 2), OddGroups: singleGroupSet(1, 2),
		WorksEven: true, WorksOdd: true,
	}
	slotB := slotA
	slotB.Teacher = "Martin"

	catalog := Catalog{
		Slots:  []Slot{slotA, slotB},
		Weeks:  []Week{NewWeek(38)},
		Groups: []int{1, 2},
	}
	assignment := NewAssignment()
	assignment.Set(0, 38, 1)
	assignment.Set(1, 38, 1)

	report := Analyze(catalog, assignment, AlternationPolicy{}, nil)

	if len(report.Contraintes.Globales) != 1 {
		t.Fatalf("expected exactly one global violation, got %v", report.Contraintes.Globales)
	}
	if report.Resume.GlobalesOk {
		t.Error("GlobalesOk should be false")
	}
}

// TestAnalyzeParityCompatibility mirrors S3: a colle assigned in week 38
// (even) for a group only eligible in odd weeks must be flagged.
func TestAnalyzeParityCompatibility(t *testing.T) {
	slot := Slot{
		Subject: "Mathematics", Teacher: "Dupont", Day: "Lundi",
		StartMin: 17 * 60, EndMin: 18 * 60,
		EvenGroups: singleGroupSet(1, 2, 3, 4), OddGroups: singleGroupSet(5, 6, 7, 8),
		WorksEven: true, WorksOdd: false,
	}
	catalog := Catalog{
		Slots:  []Slot{slot},
		Weeks:  []Week{NewWeek(38)},
		Groups: []int{1, 2, 3, 4, 5, 6, 7, 8},
	}
	assignment := NewAssignment()
	assignment.Set(0, 38, 5) // group 5 is only odd-eligible; week 38 is even

	report := Analyze(catalog, assignment, AlternationPolicy{}, nil)
	if len(report.Contraintes.CompatibilitesProfs) == 0 {
		t.Fatal("expected a parity-compatibility violation")
	}
}

func TestAnalyzeConsecutiveColles(t *testing.T) {
	slot17 := Slot{
		Subject: "Mathematics", Teacher: "Dupont", Day: "Lundi",
		StartMin: 17 * 60, EndMin: 18 * 60,
		EvenGroups: singleGroupSet(1), OddGroups: singleGroupSet(1),
		WorksEven: true, WorksOdd: true,
	}
	slot18 := slot17
	slot18.StartMin = 18 * 60
	slot18.EndMin = 19 * 60
	slot18.Subject = "Physics"

	catalog := Catalog{
		Slots:  []Slot{slot17, slot18},
		Weeks:  []Week{NewWeek(38)},
		Groups: []int{1},
	}
	assignment := NewAssignment()
	assignment.Set(0, 38, 1)
	assignment.Set(1, 38, 1)

	report := Analyze(catalog, assignment, AlternationPolicy{}, nil)
	if len(report.Contraintes.Consecutives) != 1 {
		t.Fatalf("expected one consecutive-colle violation, got %v", report.Contraintes.Consecutives)
	}
}

func TestAnalyzeStatsUtilization(t *testing.T) {
	slot := Slot{
		Subject: "Mathematics", Teacher: "Dupont", Day: "Lundi",
		StartMin: 17 * 60, EndMin: 18 * 60,
		EvenGroups: singleGroupSet(1), OddGroups: singleGroupSet(1),
		WorksEven: true, WorksOdd: false,
	}
	catalog := Catalog{
		Slots:  []Slot{slot},
		Weeks:  []Week{NewWeek(38), NewWeek(39)}, // one even, one odd
		Groups: []int{1},
	}
	assignment := NewAssignment()
	assignment.Set(0, 38, 1)

	report := Analyze(catalog, assignment, AlternationPolicy{}, nil)
	// Only week 38 is authorized (teacher doesn't work odd weeks).
	if report.Stats.Globales.TotalAuthorized != 1 {
		t.Fatalf("expected 1 authorized slot-week, got %d", report.Stats.Globales.TotalAuthorized)
	}
	if report.Stats.Globales.Utilization != 1.0 {
		t.Fatalf("expected utilization 1.0, got %f", report.Stats.Globales.Utilization)
	}
}
