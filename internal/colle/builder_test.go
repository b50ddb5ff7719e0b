package colle

import "testing"

// TestBuildModelSparseVariables verifies that decision variables are
// materialized only when week parity matches slot parity, the teacher
// works that parity, and the group belongs to the matching eligibility
// set (P9).
func TestBuildModelSparseVariables(t *testing.T) {
	slot := Slot{
		Subject:    "Mathematics",
		Teacher:    "Dupont",
		Day:        "Lundi",
		StartMin:   17 * 60,
		EndMin:     18 * 60,
		EvenGroups: singleGroupSet(1, 2, 3, 4),
		OddGroups:  singleGroupSet(5, 6, 7, 8),
		WorksEven:  true,
		WorksOdd:   false,
	}
	catalog := Catalog{
		Slots:  []Slot{slot},
		Weeks:  []Week{NewWeek(38), NewWeek(39)}, // 38 even, 39 odd
		Groups: []int{1, 2, 3, 4, 5, 6, 7, 8},
	}

	model, err := BuildModel(catalog, AlternationPolicy{}, ModeMaximize)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Week 38 (even): vars only for groups 1-4.
	for g := 1; g <= 4; g++ {
		if _, ok := model.Vars[varKey{slot: 0, week: 38, group: g}]; !ok {
			t.Errorf("expected variable for even week 38 group %d", g)
		}
	}
	for g := 5; g <= 8; g++ {
		if _, ok := model.Vars[varKey{slot: 0, week: 38, group: g}]; ok {
			t.Errorf("unexpected variable for even week 38 group %d (not in even eligibility)", g)
		}
	}

	// Week 39 (odd): teacher does not work odd weeks, so no variables at all.
	for g := 1; g <= 8; g++ {
		if _, ok := model.Vars[varKey{slot: 0, week: 39, group: g}]; ok {
			t.Errorf("unexpected variable for week 39 group %d (teacher does not work odd weeks)", g)
		}
	}
}

func TestValidateAlternationPolicyRejectsBadFrequency(t *testing.T) {
	policy := AlternationPolicy{"French": {Active: true, Frequency: 3}}
	err := ValidateAlternationPolicy(policy)
	if _, ok := err.(*InvalidRuleError); !ok {
		t.Fatalf("expected InvalidRuleError, got %v", err)
	}
}

func TestDefaultAlternationPolicyIsValid(t *testing.T) {
	if err := ValidateAlternationPolicy(DefaultAlternationPolicy()); err != nil {
		t.Fatalf("default policy should validate cleanly: %v", err)
	}
}
