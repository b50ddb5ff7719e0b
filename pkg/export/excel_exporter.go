package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const planningSheetName = "Planning"

// ExcelExporter renders Dataset records into a styled .xlsx workbook,
// with a bold shaded header row and grey fill on empty cells, after the
// styling of the original planning export.
type ExcelExporter struct {
	hiddenColumns map[string]bool
}

// NewExcelExporter builds an Excel exporter. hiddenColumns names columns
// (by header) that should be written but kept hidden, mirroring the
// "Groupes possibles semaine paire/impaire" columns of the original sheet.
func NewExcelExporter(hiddenColumns ...string) *ExcelExporter {
	hidden := make(map[string]bool, len(hiddenColumns))
	for _, h := range hiddenColumns {
		hidden[h] = true
	}
	return &ExcelExporter{hiddenColumns: hidden}
}

// Render produces .xlsx bytes for the dataset.
func (e *ExcelExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("excel requires at least one header")
	}
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	if err := f.SetSheetName("Sheet1", planningSheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DCE6F1"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder(),
	})
	if err != nil {
		return nil, fmt.Errorf("build header style: %w", err)
	}
	normalStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thinBorder(),
	})
	if err != nil {
		return nil, fmt.Errorf("build normal style: %w", err)
	}
	greyStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E6E6E6"}, Pattern: 1},
		Border:    thinBorder(),
	})
	if err != nil {
		return nil, fmt.Errorf("build empty-cell style: %w", err)
	}

	for col, header := range data.Headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(planningSheetName, cell, header); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
		if err := f.SetCellStyle(planningSheetName, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("style header: %w", err)
		}
		if e.hiddenColumns[header] {
			if err := f.SetColVisible(planningSheetName, colLetter(col+1), false); err != nil {
				return nil, fmt.Errorf("hide column: %w", err)
			}
		}
	}

	for rowIdx, row := range data.Rows {
		excelRow := rowIdx + 2
		for col, header := range data.Headers {
			cell, err := excelize.CoordinatesToCellName(col+1, excelRow)
			if err != nil {
				return nil, fmt.Errorf("row cell: %w", err)
			}
			value := row[header]
			style := normalStyle
			if value == "" {
				style = greyStyle
			}
			if err := f.SetCellValue(planningSheetName, cell, value); err != nil {
				return nil, fmt.Errorf("write cell: %w", err)
			}
			if err := f.SetCellStyle(planningSheetName, cell, cell, style); err != nil {
				return nil, fmt.Errorf("style cell: %w", err)
			}
		}
	}

	for col, width := range columnWidths(data) {
		letter := colLetter(col + 1)
		if err := f.SetColWidth(planningSheetName, letter, letter, width); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	if err := f.SetPanes(planningSheetName, &excelize.Panes{
		Freeze:      true,
		Split:       false,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("freeze header row: %w", err)
	}

	if err := f.SetActiveSheet(f.GetSheetIndex(planningSheetName)); err != nil {
		return nil, fmt.Errorf("set active sheet: %w", err)
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("render excel: %w", err)
	}
	return buf.Bytes(), nil
}

func thinBorder() []excelize.Border {
	sides := []string{"left", "top", "right", "bottom"}
	borders := make([]excelize.Border, 0, len(sides))
	for _, side := range sides {
		borders = append(borders, excelize.Border{Type: side, Color: "#000000", Style: 1})
	}
	return borders
}

// columnWidths sizes each column to its longest cell (header or value),
// clamped to a readable range, mirroring the auto-fit pass of the original
// export.
func columnWidths(data Dataset) []float64 {
	widths := make([]float64, len(data.Headers))
	for col, header := range data.Headers {
		widths[col] = float64(len(header))
	}
	for _, row := range data.Rows {
		for col, header := range data.Headers {
			if l := float64(len(row[header])); l > widths[col] {
				widths[col] = l
			}
		}
	}
	for col, w := range widths {
		widths[col] = clampWidth(w + 2)
	}
	return widths
}

func clampWidth(w float64) float64 {
	const min, max = 8, 40
	if w < min {
		return min
	}
	if w > max {
		return max
	}
	return w
}

func colLetter(col int) string {
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return "A"
	}
	return name
}
