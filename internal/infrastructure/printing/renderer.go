// Package printing renders invoices and report cards to PDF: html/template
// builds the page and headless Chrome prints it.
package printing

import (
	"context"
	"time"

	"github.com/schoolhub/backend/internal/domain/shared"
)

// Margins in millimeters
type Margins struct {
	Top, Right, Bottom, Left float64
}

// DefaultMargins are used when a request leaves margins empty
var DefaultMargins = Margins{Top: 15, Right: 12, Bottom: 15, Left: 12}

// RenderRequest contains the parameters for rendering HTML to PDF.
// Pages are always A4.
type RenderRequest struct {
	HTML       string
	Title      string
	Landscape  bool
	Margins    Margins
	FooterHTML string
	Timeout    time.Duration
}

// RenderResult contains the output from PDF rendering
type RenderResult struct {
	PDFData        []byte
	PageCount      int
	RenderDuration time.Duration
}

// PDFRenderer turns HTML into PDF
type PDFRenderer interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	Close() error
}

// ErrPDFUnavailable is returned when no browser is available for printing
var ErrPDFUnavailable = shared.NewDomainError("PDF_UNAVAILABLE", "PDF generation is not available on this server")

// RenderError represents an error during PDF rendering
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout = "RENDER_TIMEOUT"
	ErrCodeRenderFailed  = "RENDER_FAILED"
	ErrCodeInvalidHTML   = "INVALID_HTML"
	ErrCodeTemplate      = "TEMPLATE_FAILED"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{Code: code, Message: message, Cause: cause}
}

// UnavailableRenderer is used when printing is disabled
type UnavailableRenderer struct{}

// Render always fails with ErrPDFUnavailable
func (UnavailableRenderer) Render(context.Context, *RenderRequest) (*RenderResult, error) {
	return nil, ErrPDFUnavailable
}

// Close does nothing
func (UnavailableRenderer) Close() error { return nil }

var _ PDFRenderer = UnavailableRenderer{}
