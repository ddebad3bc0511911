// Package importer reads uploaded CSV and xlsx files into rows keyed by
// normalized header and validates them field by field.
package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// Format of an uploaded file
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DetectFormat picks the format from the file extension
func DetectFormat(fileName string) (Format, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// Row is one data row. Number is the 1-based line in the file, so the
// first data row is 2.
type Row struct {
	Number int
	Data   map[string]string
}

// Get returns the value of a column
func (r *Row) Get(column string) string {
	return r.Data[column]
}

// GetOrDefault returns the value of a column or def when blank
func (r *Row) GetOrDefault(column, def string) string {
	if v := r.Data[column]; v != "" {
		return v
	}
	return def
}

// IsEmpty reports whether every cell is blank
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// Table is a parsed file
type Table struct {
	Headers []string
	Rows    []*Row
}

// HasColumn reports whether the header row contains column
func (t *Table) HasColumn(column string) bool {
	for _, h := range t.Headers {
		if h == column {
			return true
		}
	}
	return false
}

// MissingColumns returns the required columns absent from the header
func (t *Table) MissingColumns(required []string) []string {
	var missing []string
	for _, c := range required {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// Read parses data in the given format. maxRows <= 0 means unlimited.
func Read(format Format, data []byte, maxRows int) (*Table, error) {
	switch format {
	case FormatCSV:
		return ReadCSV(bytes.NewReader(data), maxRows)
	case FormatXLSX:
		return ReadXLSX(bytes.NewReader(data), maxRows)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// ReadCSV parses a UTF-8 CSV file with a header row. A leading BOM is dropped.
func ReadCSV(r io.Reader, maxRows int) (*Table, error) {
	br := bufio.NewReader(r)

	head, err := br.Peek(3)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(head) >= 3 && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF {
		_, _ = br.Discard(3)
	}

	sample, err := br.Peek(4096)
	if err != nil && err != io.EOF && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(sample) == 0 {
		return nil, ErrEmptyFile
	}
	if !utf8.Valid(trimPartialRune(sample)) {
		return nil, ErrInvalidEncoding
	}

	reader := csv.NewReader(br)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	table := &Table{Headers: normalizeHeaders(header)}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedFile, line, err)
		}
		if err := table.add(line, record, maxRows); err != nil {
			return nil, err
		}
	}
	return table.finish()
}

// ReadXLSX parses the first sheet of a workbook. Row 1 is the header.
func ReadXLSX(r io.Reader, maxRows int) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrEmptyFile
	}
	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	defer func() { _ = rows.Close() }()

	var table *Table
	line := 0
	for rows.Next() {
		line++
		cols, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrMalformedFile, line, err)
		}
		if table == nil {
			if len(cols) == 0 {
				return nil, ErrMissingHeader
			}
			table = &Table{Headers: normalizeHeaders(cols)}
			continue
		}
		if err := table.add(line, cols, maxRows); err != nil {
			return nil, err
		}
	}
	if table == nil {
		return nil, ErrEmptyFile
	}
	return table.finish()
}

func (t *Table) add(line int, record []string, maxRows int) error {
	row := &Row{Number: line, Data: make(map[string]string, len(t.Headers))}
	for i, h := range t.Headers {
		if h == "" {
			continue
		}
		if i < len(record) {
			row.Data[h] = strings.TrimSpace(record[i])
		} else {
			row.Data[h] = ""
		}
	}
	if row.IsEmpty() {
		return nil
	}
	if maxRows > 0 && len(t.Rows) >= maxRows {
		return fmt.Errorf("%w: at most %d rows", ErrTooManyRows, maxRows)
	}
	t.Rows = append(t.Rows, row)
	return nil
}

func (t *Table) finish() (*Table, error) {
	if len(t.Rows) == 0 {
		return nil, ErrNoDataRows
	}
	return t, nil
}

// normalizeHeaders maps "First Name" and "first-name" to "first_name"
func normalizeHeaders(raw []string) []string {
	out := make([]string, len(raw))
	for i, h := range raw {
		h = strings.ToLower(strings.TrimSpace(h))
		h = strings.NewReplacer(" ", "_", "-", "_", ".", "").Replace(h)
		out[i] = h
	}
	return out
}

// trimPartialRune drops a rune cut in half at the end of a peeked sample
func trimPartialRune(b []byte) []byte {
	for i := 1; i < utf8.UTFMax && i <= len(b); i++ {
		if utf8.RuneStart(b[len(b)-i]) {
			if !utf8.FullRune(b[len(b)-i:]) {
				return b[:len(b)-i]
			}
			return b
		}
	}
	return b
}
