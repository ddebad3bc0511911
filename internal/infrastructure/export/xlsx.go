// Package export writes tabular school data to xlsx workbooks.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ContentType is the MIME type of the produced workbooks
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Column describes one sheet column
type Column struct {
	Header string
	Width  float64
}

// Sheet is a named table of values. Cells may be string, numbers, bool,
// time.Time, *time.Time or decimal.Decimal.
type Sheet struct {
	Name    string
	Columns []Column
	Rows    [][]any
}

// AddRow appends a row
func (s *Sheet) AddRow(cells ...any) {
	s.Rows = append(s.Rows, cells)
}

// Workbook builds an xlsx file from sheets. The first sheet replaces the default "Sheet1".
func Workbook(sheets ...*Sheet) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook needs at least one sheet")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"1F4E79"}, Pattern: 1},
		Alignment: &excelize.Alignment{Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, sheet := range sheets {
		name := sheetName(sheet.Name, i)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return nil, fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
		if err := writeSheet(f, name, sheet, headerStyle); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, name string, sheet *Sheet, headerStyle int) error {
	sw, err := f.NewStreamWriter(name)
	if err != nil {
		return fmt.Errorf("failed to open stream writer for %s: %w", name, err)
	}

	for i, col := range sheet.Columns {
		width := col.Width
		if width <= 0 {
			width = 16
		}
		if err := sw.SetColWidth(i+1, i+1, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	header := make([]any, len(sheet.Columns))
	for i, col := range sheet.Columns {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: col.Header}
	}
	if err := sw.SetRow("A1", header, excelize.RowOpts{Height: 20}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for r, row := range sheet.Rows {
		cells := make([]any, len(row))
		for c, v := range row {
			cells[c] = cellValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+2, err)
		}
	}

	if len(sheet.Columns) > 0 {
		if err := sw.SetPanes(&excelize.Panes{
			Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
		}); err != nil {
			return fmt.Errorf("failed to freeze header: %w", err)
		}
	}
	return sw.Flush()
}

// cellValue converts values excelize does not know how to write
func cellValue(v any) any {
	switch val := v.(type) {
	case decimal.Decimal:
		f, _ := val.Round(2).Float64()
		return f
	case *decimal.Decimal:
		if val == nil {
			return nil
		}
		f, _ := val.Round(2).Float64()
		return f
	case time.Time:
		if val.IsZero() {
			return nil
		}
		return val.Format("2006-01-02")
	case *time.Time:
		if val == nil || val.IsZero() {
			return nil
		}
		return val.Format("2006-01-02")
	case fmt.Stringer:
		return val.String()
	default:
		return v
	}
}

// sheetName trims names to the 31 characters Excel allows
func sheetName(name string, index int) string {
	if name == "" {
		return fmt.Sprintf("Sheet%d", index+1)
	}
	runes := []rune(name)
	if len(runes) > 31 {
		runes = runes[:31]
	}
	return string(runes)
}

// FileName returns "<kind>-20250901-150405.xlsx"
func FileName(kind string, at time.Time) string {
	return fmt.Sprintf("%s-%s.xlsx", kind, at.UTC().Format("20060102-150405"))
}
