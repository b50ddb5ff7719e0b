package colle

import "testing"

func TestParseGroupExpression(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    []int
		wantErr bool
	}{
		{"empty", "", nil, false},
		{"singleton", "3", []int{3}, false},
		{"range", "1 à 4", []int{1, 2, 3, 4}, false},
		{"malformed", "abc", nil, true},
		{"reversed range", "5 à 2", nil, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseGroupExpression(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, g := range tc.want {
				if _, ok := got[g]; !ok {
					t.Errorf("missing group %d in %v", g, got)
				}
			}
			if len(got) != len(tc.want) {
				t.Errorf("got %d groups, want %d", len(got), len(tc.want))
			}
		})
	}
}

func TestParseHourRange(t *testing.T) {
	start, end, err := parseHourRange("17h-18h")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start != 17*60 || end != 18*60 {
		t.Errorf("got (%d,%d), want (1020,1080)", start, end)
	}

	start, end, err = parseHourRange("8h30-10h15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start != 8*60+30 || end != 10*60+15 {
		t.Errorf("got (%d,%d)", start, end)
	}

	if _, _, err := parseHourRange("not a range"); err == nil {
		t.Fatal("expected error for malformed hour range")
	}

	if _, _, err := parseHourRange("18h-17h"); err == nil {
		t.Fatal("expected error when start >= end")
	}
}

func TestExtractWeekColumnsPreservesOrder(t *testing.T) {
	weeks, err := extractWeekColumns([]string{"40", "38", "39"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{40, 38, 39}
	for i, w := range weeks {
		if w.Number != want[i] {
			t.Errorf("week[%d] = %d, want %d (order must be preserved, never sorted)", i, w.Number, want[i])
		}
	}
}

func TestNormalizeEmptyCatalog(t *testing.T) {
	_, err := Normalize(RawCatalog{WeekColumns: nil, Rows: nil})
	if _, ok := err.(*EmptyCatalogError); !ok {
		t.Fatalf("expected EmptyCatalogError, got %v", err)
	}
}

func TestNormalizeBasic(t *testing.T) {
	raw := RawCatalog{
		WeekColumns: []string{"38", "39"},
		Rows: []RawRow{
			{
				Subject: "Mathematics", Teacher: "Dupont", Day: "Lundi", Hour: "17h-18h",
				EvenGroupsRaw: "1 à 2", OddGroupsRaw: "1 à 2",
				WorksEvenRaw: "Oui", WorksOddRaw: "Oui",
			},
		},
	}
	catalog, err := Normalize(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(catalog.Slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(catalog.Slots))
	}
	if len(catalog.Weeks) != 2 {
		t.Fatalf("expected 2 weeks, got %d", len(catalog.Weeks))
	}
	if len(catalog.Groups) != 2 || catalog.Groups[0] != 1 || catalog.Groups[1] != 2 {
		t.Fatalf("expected groups [1 2], got %v", catalog.Groups)
	}
}
