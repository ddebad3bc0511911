package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWorkbook(t *testing.T) {
	dob := time.Date(2014, 3, 9, 0, 0, 0, 0, time.UTC)
	students := &Sheet{
		Name:    "Students",
		Columns: []Column{{Header: "Admission No"}, {Header: "Name", Width: 30}, {Header: "Born"}, {Header: "Balance"}},
	}
	students.AddRow("ADM-001", "Amara Okafor", dob, decimal.RequireFromString("785.5"))
	students.AddRow("ADM-002", "Ben Lutz", (*time.Time)(nil), decimal.Zero)

	summary := &Sheet{Name: "Summary", Columns: []Column{{Header: "Total"}}}
	summary.AddRow(2)

	data, err := Workbook(students, summary)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Students", "Summary"}, f.GetSheetList())

	rows, err := f.GetRows("Students")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Admission No", "Name", "Born", "Balance"}, rows[0])
	assert.Equal(t, "ADM-001", rows[1][0])
	assert.Equal(t, "2014-03-09", rows[1][2])
	assert.Equal(t, "785.5", rows[1][3])
	assert.Equal(t, "", rows[2][2])
}

func TestWorkbook_NoSheets(t *testing.T) {
	_, err := Workbook()
	assert.Error(t, err)
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Sheet3", sheetName("", 2))
	assert.Len(t, []rune(sheetName("Attendance for Grade 10 Section B, Term 1", 0)), 31)
}

func TestFileName(t *testing.T) {
	at := time.Date(2025, 9, 1, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "students-20250901-150405.xlsx", FileName("students", at))
}
