package colle

import (
	"sort"
	"strconv"
	"strings"
)

// requiredColumns are the fixed catalog columns that must be present
// before any week columns.
var requiredColumns = []string{
	"Matière", "Prof", "Jour", "Heure",
	"Groupes possibles semaine paire", "Groupes possibles semaine impaire",
	"Travaille les semaines paires", "Travaille les semaines impaires",
}

// RawRow is one catalog row before normalization: fixed-column values plus
// one cell per week column, keyed by the week's declared header text.
type RawRow struct {
	Subject       string
	Teacher       string
	Day           string
	Hour          string
	EvenGroupsRaw string
	OddGroupsRaw  string
	WorksEvenRaw  string
	WorksOddRaw   string
	WeekCells     map[string]string
}

// RawCatalog is the unparsed table: the ordered week-column headers (never
// sorted — this order is load-bearing) plus the row data.
type RawCatalog struct {
	WeekColumns []string // declared order, e.g. "38", "39", ...
	Rows        []RawRow
}

// Normalize parses a RawCatalog into a Catalog of typed Slots, the ordered
// Week list, and the derived sorted Group set.
func Normalize(raw RawCatalog) (Catalog, error) {
	weeks, err := extractWeekColumns(raw.WeekColumns)
	if err != nil {
		return Catalog{}, err
	}

	slots := make([]Slot, 0, len(raw.Rows))
	groupSet := make(map[int]struct{})

	for _, row := range raw.Rows {
		startMin, endMin, err := parseHourRange(row.Hour)
		if err != nil {
			return Catalog{}, err
		}
		evenGroups, err := parseGroupExpression(row.EvenGroupsRaw)
		if err != nil {
			return Catalog{}, err
		}
		oddGroups, err := parseGroupExpression(row.OddGroupsRaw)
		if err != nil {
			return Catalog{}, err
		}
		worksEven, err := parseBoolean("Travaille les semaines paires", row.WorksEvenRaw)
		if err != nil {
			return Catalog{}, err
		}
		worksOdd, err := parseBoolean("Travaille les semaines impaires", row.WorksOddRaw)
		if err != nil {
			return Catalog{}, err
		}

		for g := range evenGroups {
			groupSet[g] = struct{}{}
		}
		for g := range oddGroups {
			groupSet[g] = struct{}{}
		}

		slots = append(slots, Slot{
			Subject:    strings.TrimSpace(row.Subject),
			Teacher:    strings.TrimSpace(row.Teacher),
			Day:        strings.TrimSpace(row.Day),
			StartMin:   startMin,
			EndMin:     endMin,
			EvenGroups: evenGroups,
			OddGroups:  oddGroups,
			WorksEven:  worksEven,
			WorksOdd:   worksOdd,
		})
	}

	if len(groupSet) == 0 {
		return Catalog{}, &EmptyCatalogError{Reason: "no groups detected in any slot"}
	}
	if len(weeks) == 0 {
		return Catalog{}, &EmptyCatalogError{Reason: "no week columns detected"}
	}

	groups := make([]int, 0, len(groupSet))
	for g := range groupSet {
		groups = append(groups, g)
	}
	sort.Ints(groups)

	return Catalog{Slots: slots, Weeks: weeks, Groups: groups}, nil
}

// extractWeekColumns parses each header as a decimal integer, preserving
// source order. It never sorts.
func extractWeekColumns(headers []string) ([]Week, error) {
	weeks := make([]Week, 0, len(headers))
	for _, h := range headers {
		trimmed := strings.TrimSpace(h)
		n, err := strconv.Atoi(trimmed)
		if err != nil {
			return nil, &ParseError{Column: "week header", Value: h, Reason: "not a decimal integer"}
		}
		weeks = append(weeks, NewWeek(n))
	}
	return weeks, nil
}

// parseGroupExpression parses "a à b" (inclusive range) or a single
// integer. Empty/null input yields the empty set.
func parseGroupExpression(text string) (map[int]struct{}, error) {
	trimmed := strings.TrimSpace(text)
	result := make(map[int]struct{})
	if trimmed == "" {
		return result, nil
	}

	if idx := strings.Index(trimmed, "à"); idx >= 0 {
		left := strings.TrimSpace(trimmed[:idx])
		right := strings.TrimSpace(trimmed[idx+len("à"):])
		a, err := strconv.Atoi(left)
		if err != nil {
			return nil, &ParseError{Column: "group expression", Value: text, Reason: "invalid range start"}
		}
		b, err := strconv.Atoi(right)
		if err != nil {
			return nil, &ParseError{Column: "group expression", Value: text, Reason: "invalid range end"}
		}
		if b < a {
			return nil, &ParseError{Column: "group expression", Value: text, Reason: "range end before start"}
		}
		for g := a; g <= b; g++ {
			result[g] = struct{}{}
		}
		return result, nil
	}

	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return nil, &ParseError{Column: "group expression", Value: text, Reason: "not a range or integer"}
	}
	result[n] = struct{}{}
	return result, nil
}

// parseHourRange parses "Xh-Yh" or "XhMM-YhMM" into minutes-since-midnight
// pairs. Whitespace inside the range is tolerated.
func parseHourRange(text string) (startMin, endMin int, err error) {
	trimmed := strings.ReplaceAll(strings.TrimSpace(text), " ", "")
	parts := strings.SplitN(trimmed, "-", 2)
	if len(parts) != 2 {
		return 0, 0, &ParseError{Column: "Heure", Value: text, Reason: "missing '-' separator"}
	}
	startMin, err = parseHHhMM(parts[0])
	if err != nil {
		return 0, 0, &ParseError{Column: "Heure", Value: text, Reason: "invalid start: " + err.Error()}
	}
	endMin, err = parseHHhMM(parts[1])
	if err != nil {
		return 0, 0, &ParseError{Column: "Heure", Value: text, Reason: "invalid end: " + err.Error()}
	}
	if startMin >= endMin {
		return 0, 0, &ParseError{Column: "Heure", Value: text, Reason: "start must be before end"}
	}
	return startMin, endMin, nil
}

// parseHHhMM parses "Xh" or "XhMM" into minutes since midnight.
func parseHHhMM(text string) (int, error) {
	idx := strings.Index(text, "h")
	if idx < 0 {
		return 0, &strconvError{text}
	}
	hourPart := text[:idx]
	minPart := text[idx+1:]

	hour, err := strconv.Atoi(hourPart)
	if err != nil {
		return 0, &strconvError{text}
	}
	minute := 0
	if minPart != "" {
		minute, err = strconv.Atoi(minPart)
		if err != nil {
			return 0, &strconvError{text}
		}
	}
	return hour*60 + minute, nil
}

type strconvError struct{ raw string }

func (e *strconvError) Error() string { return "cannot parse \"" + e.raw + "\" as HHhMM" }

// parseBoolean parses "Oui"/"Non" (case-insensitive, trimmed).
func parseBoolean(column, text string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "oui":
		return true, nil
	case "non", "":
		return false, nil
	default:
		return false, &ParseError{Column: column, Value: text, Reason: "expected Oui/Non"}
	}
}
