package importer

import (
	"fmt"

	"github.com/schoolhub/backend/internal/domain/shared"
)

// Row error codes
const (
	CodeRequired        = "REQUIRED"
	CodeInvalidType     = "INVALID_TYPE"
	CodeInvalidLength   = "INVALID_LENGTH"
	CodeInvalidValue    = "INVALID_VALUE"
	CodeDuplicateInFile = "DUPLICATE_IN_FILE"
	CodeDuplicateInDB   = "DUPLICATE_IN_DB"
	CodeReference       = "REFERENCE_NOT_FOUND"
	CodeRejected        = "REJECTED"
)

// File level errors
var (
	ErrUnsupportedFormat = shared.NewDomainError("IMPORT_UNSUPPORTED_FORMAT", "only .csv and .xlsx files can be imported")
	ErrEmptyFile         = shared.NewDomainError("IMPORT_EMPTY_FILE", "file is empty")
	ErrInvalidEncoding   = shared.NewDomainError("IMPORT_INVALID_ENCODING", "file must be UTF-8 encoded")
	ErrMissingHeader     = shared.NewDomainError("IMPORT_MISSING_HEADER", "file has no header row")
	ErrNoDataRows        = shared.NewDomainError("IMPORT_NO_DATA", "file contains no data rows")
	ErrMalformedFile     = shared.NewDomainError("IMPORT_MALFORMED", "file could not be parsed")
	ErrTooManyRows       = shared.NewDomainError("IMPORT_TOO_MANY_ROWS", "file has too many rows")
	ErrFileTooLarge      = shared.NewDomainError("IMPORT_FILE_TOO_LARGE", "file exceeds the maximum upload size")
)

// RowError describes a problem with one cell or row
type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e RowError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("row %d, %s: %s", e.Row, e.Field, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// Errors collects row errors up to a limit. Everything past the limit is
// only counted.
type Errors struct {
	items []RowError
	limit int
	total int
}

// NewErrors creates a collection holding at most limit errors (100 when <= 0)
func NewErrors(limit int) *Errors {
	if limit <= 0 {
		limit = 100
	}
	return &Errors{limit: limit}
}

// Add records an error
func (e *Errors) Add(err RowError) {
	e.total++
	if len(e.items) < e.limit {
		e.items = append(e.items, err)
	}
}

// Addf records an error with a formatted message
func (e *Errors) Addf(row int, field, code, format string, args ...any) {
	e.Add(RowError{Row: row, Field: field, Code: code, Message: fmt.Sprintf(format, args...)})
}

// Items returns the kept errors
func (e *Errors) Items() []RowError {
	return e.items
}

// Total counts every error added, kept or not
func (e *Errors) Total() int {
	return e.total
}

// Truncated reports whether errors were dropped
func (e *Errors) Truncated() bool {
	return e.total > len(e.items)
}

// Result summarizes an import
type Result struct {
	Total     int        `json:"total"`
	Imported  int        `json:"imported"`
	Skipped   int        `json:"skipped"`
	Errors    []RowError `json:"errors"`
	Truncated bool       `json:"truncated,omitempty"`
}

// NewResult builds the summary from the collected errors
func NewResult(total, imported int, errs *Errors) *Result {
	items := errs.Items()
	if items == nil {
		items = []RowError{}
	}
	return &Result{
		Total:     total,
		Imported:  imported,
		Skipped:   total - imported,
		Errors:    items,
		Truncated: errs.Truncated(),
	}
}
