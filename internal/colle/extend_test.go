package colle

import "testing"

// buildFamilyCatalog builds a catalog with two detected families {1..4}
// and {5..8}, matching S6.
func buildFamilyCatalog(t *testing.T) Catalog {
	t.Helper()
	groups := func(nums ...int) map[int]struct{} {
		m := make(map[int]struct{})
		for _, n := range nums {
			m[n] = struct{}{}
		}
		return m
	}
	slot := Slot{
		Subject:    "Mathematics",
		Teacher:    "Dupont",
		Day:        "Lundi",
		StartMin:   17 * 60,
		EndMin:     18 * 60,
		EvenGroups: groups(1, 2, 3, 4),
		OddGroups:  groups(1, 2, 3, 4),
		WorksEven:  true,
		WorksOdd:   true,
	}
	slot2 := slot
	slot2.Day = "Mardi"
	slot2.EvenGroups = groups(5, 6, 7, 8)
	slot2.OddGroups = groups(5, 6, 7, 8)

	weeks := make([]Week, 8)
	for i := 0; i < 8; i++ {
		weeks[i] = NewWeek(38 + i)
	}
	return Catalog{
		Slots:  []Slot{slot, slot2},
		Weeks:  weeks,
		Groups: []int{1, 2, 3, 4, 5, 6, 7, 8},
	}
}

func TestDetectFamiliesKeepsOnlyMinimalSets(t *testing.T) {
	catalog := buildFamilyCatalog(t)
	families := DetectFamilies(catalog)
	if len(families) != 2 {
		t.Fatalf("expected 2 minimal families, got %v", families)
	}
	if families[0][0] != 1 || families[1][0] != 5 {
		t.Errorf("unexpected family membership: %v", families)
	}
}

func TestExtendRotatesGroupsWithinFamily(t *testing.T) {
	catalog := buildFamilyCatalog(t)
	assignment := NewAssignment()
	// week 38 has group 3 in slot 0 (the {1..4} family), per S6.
	assignment.Set(0, 38, 3)

	extended := Extend(catalog, assignment)

	g, ok := extended.Get(0, 46) // maxWeek(45) + (1-1)*8 + 0 + 1 = 46
	if !ok {
		t.Fatal("expected week 46 to be populated")
	}
	if g != 4 {
		t.Errorf("shift 1: expected group 4, got %d", g)
	}

	g, ok = extended.Get(0, 54) // maxWeek(45) + (2-1)*8 + 0 + 1 = 54
	if !ok {
		t.Fatal("expected week 54 to be populated")
	}
	if g != 1 {
		t.Errorf("shift 2: expected group 1, got %d", g)
	}
}
