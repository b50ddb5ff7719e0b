package colle

import "strconv"

// RawAssignmentTable is an assignment in its external tabular form: one
// cell per (slot row index, week header), matching RawCatalog's shape.
type RawAssignmentTable struct {
	WeekColumns []string
	Rows        [][]string // Rows[slotIndex][weekColumnIndex]
}

// ParseAssignmentCells decodes a RawAssignmentTable into an Assignment.
// A cell that is neither empty nor a positive integer is treated as empty
// for counting purposes but is accumulated into invalid rather than
// aborting decoding, matching the analyzer-only InvalidAssignment error
// kind.
func ParseAssignmentCells(catalog Catalog, table RawAssignmentTable) (Assignment, []InvalidAssignmentEntry) {
	assignment := NewAssignment()
	var invalid []InvalidAssignmentEntry

	weekIndexByNumber := make(map[string]int, len(table.WeekColumns))
	for i, header := range table.WeekColumns {
		weekIndexByNumber[header] = i
	}

	for slotIdx, row := range table.Rows {
		if slotIdx >= len(catalog.Slots) {
			break
		}
		for _, w := range catalog.Weeks {
			colIdx, ok := weekIndexByNumber[strconv.Itoa(w.Number)]
			if !ok || colIdx >= len(row) {
				continue
			}
			raw := row[colIdx]
			if raw == "" {
				continue
			}
			g, err := strconv.Atoi(raw)
			if err != nil || g <= 0 {
				invalid = append(invalid, InvalidAssignmentEntry{SlotIndex: slotIdx, Week: w.Number, Raw: raw})
				continue
			}
			assignment.Set(slotIdx, w.Number, g)
		}
	}

	return assignment, invalid
}

// RenderAssignmentCells writes an Assignment back into tabular form: one
// column per declared week, a canonical decimal integer or empty string
// per cell.
func RenderAssignmentCells(catalog Catalog, assignment Assignment) RawAssignmentTable {
	table := RawAssignmentTable{
		WeekColumns: make([]string, len(catalog.Weeks)),
		Rows:        make([][]string, len(catalog.Slots)),
	}
	for i, w := range catalog.Weeks {
		table.WeekColumns[i] = strconv.Itoa(w.Number)
	}
	for si := range catalog.Slots {
		row := make([]string, len(catalog.Weeks))
		for wi, w := range catalog.Weeks {
			if g, ok := assignment.Get(si, w.Number); ok {
				row[wi] = strconv.Itoa(g)
			}
		}
		table.Rows[si] = row
	}
	return table
}
