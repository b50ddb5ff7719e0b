package colle

import "testing"

func weeksFrom(nums ...int) []Week {
	out := make([]Week, len(nums))
	for i, n := range nums {
		out[i] = NewWeek(n)
	}
	return out
}

func TestWindowsDropsTrailingIncompleteChunk(t *testing.T) {
	weeks := weeksFrom(38, 39, 40, 41, 42)
	got := Windows(weeks, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 fortnight windows, got %d", len(got))
	}
	if got[0][0].Number != 38 || got[0][1].Number != 39 {
		t.Errorf("window 0 = %v", got[0])
	}
	if got[1][0].Number != 40 || got[1][1].Number != 41 {
		t.Errorf("window 1 = %v", got[1])
	}
}

func TestWindowsRespectsDeclaredOrder(t *testing.T) {
	weeks := weeksFrom(40, 38, 39, 41)
	got := Windows(weeks, 2)
	if got[0][0].Number != 40 || got[0][1].Number != 38 {
		t.Errorf("windows must follow declared order, got %v", got[0])
	}
}
