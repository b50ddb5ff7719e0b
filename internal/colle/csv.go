package colle

import (
	"encoding/csv"
	"fmt"
	"strings"
)

// ParseCatalogCSV decodes a semicolon-separated catalog export (the format
// produced by the upstream spreadsheet tool) into a RawCatalog, ready for
// Normalize.
func ParseCatalogCSV(raw string) (RawCatalog, error) {
	reader := csv.NewReader(strings.NewReader(raw))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return RawCatalog{}, fmt.Errorf("read catalog csv: %w", err)
	}
	if len(records) == 0 {
		return RawCatalog{}, &EmptyCatalogError{Reason: "csv has no rows"}
	}

	header := records[0]
	if len(header) <= len(requiredColumns) {
		return RawCatalog{}, &ParseError{Column: "header", Value: strings.Join(header, ";"), Reason: "missing week columns"}
	}
	weekColumns := header[len(requiredColumns):]

	rows := make([]RawRow, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < len(requiredColumns) {
			continue
		}
		weekCells := make(map[string]string, len(weekColumns))
		for i, wc := range weekColumns {
			idx := len(requiredColumns) + i
			if idx < len(record) {
				weekCells[wc] = record[idx]
			}
		}
		rows = append(rows, RawRow{
			Subject:       record[0],
			Teacher:       record[1],
			Day:           record[2],
			Hour:          record[3],
			EvenGroupsRaw: record[4],
			OddGroupsRaw:  record[5],
			WorksEvenRaw:  record[6],
			WorksOddRaw:   record[7],
			WeekCells:     weekCells,
		})
	}
	return RawCatalog{WeekColumns: weekColumns, Rows: rows}, nil
}

// ParseAssignmentCSV decodes an assignment export back into a
// RawAssignmentTable. The header row is assumed to hold week numbers only,
// one slot per data row, matching RenderAssignmentCSV's output.
func ParseAssignmentCSV(raw string) (RawAssignmentTable, error) {
	reader := csv.NewReader(strings.NewReader(raw))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return RawAssignmentTable{}, fmt.Errorf("read assignment csv: %w", err)
	}
	if len(records) == 0 {
		return RawAssignmentTable{}, nil
	}

	table := RawAssignmentTable{WeekColumns: records[0]}
	table.Rows = make([][]string, 0, len(records)-1)
	for _, record := range records[1:] {
		table.Rows = append(table.Rows, record)
	}
	return table, nil
}

// RenderAssignmentCSV encodes a RawAssignmentTable into semicolon-separated
// CSV text.
func RenderAssignmentCSV(table RawAssignmentTable) (string, error) {
	var buf strings.Builder
	writer := csv.NewWriter(&buf)
	writer.Comma = ';'

	if err := writer.Write(table.WeekColumns); err != nil {
		return "", fmt.Errorf("write assignment header: %w", err)
	}
	for _, row := range table.Rows {
		if err := writer.Write(row); err != nil {
			return "", fmt.Errorf("write assignment row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("flush assignment csv: %w", err)
	}
	return buf.String(), nil
}
