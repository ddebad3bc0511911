package printing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SchoolHeader is the letterhead printed on every document
type SchoolHeader struct {
	Name    string
	Address string
	Phone   string
	Email   string
}

// StudentLine identifies the student a document is about
type StudentLine struct {
	Name            string
	AdmissionNumber string
	ClassName       string
}

// InvoiceLine is one billed item
type InvoiceLine struct {
	Description string
	Amount      decimal.Decimal
}

// PaymentLine is one recorded payment
type PaymentLine struct {
	Amount    decimal.Decimal
	Method    string
	Reference string
	PaidAt    time.Time
}

// InvoiceDocument is the data behind the invoice template
type InvoiceDocument struct {
	School       SchoolHeader
	Student      StudentLine
	Number       string
	Status       string
	Currency     string
	AcademicYear string
	Term         string
	IssueDate    time.Time
	DueDate      time.Time
	Items        []InvoiceLine
	Total        decimal.Decimal
	Paid         decimal.Decimal
	Balance      decimal.Decimal
	Payments     []PaymentLine
	Notes        string
	GeneratedAt  time.Time
}

// SubjectScore is one row of a report card
type SubjectScore struct {
	Subject     string
	Assessments int
	Average     decimal.Decimal
	Grade       string
}

// ReportCardDocument is the data behind the report card template
type ReportCardDocument struct {
	School         SchoolHeader
	Student        StudentLine
	AcademicYear   string
	Term           string
	Subjects       []SubjectScore
	OverallAverage decimal.Decimal
	OverallGrade   string
	AttendanceRate decimal.Decimal
	Remarks        string
	GeneratedAt    time.Time
}

// Document is a rendered PDF ready to be streamed or stored
type Document struct {
	FileName string
	Data     []byte
	Pages    int
}

// Printer turns school documents into PDFs
type Printer struct {
	engine   *TemplateEngine
	renderer PDFRenderer
}

// NewPrinter creates a printer
func NewPrinter(engine *TemplateEngine, renderer PDFRenderer) *Printer {
	return &Printer{engine: engine, renderer: renderer}
}

// InvoicePDF renders an invoice
func (p *Printer) InvoicePDF(ctx context.Context, doc *InvoiceDocument) (*Document, error) {
	if doc.GeneratedAt.IsZero() {
		doc.GeneratedAt = time.Now()
	}
	return p.render(ctx, TemplateInvoice, doc, "Invoice "+doc.Number, doc.Number+".pdf")
}

// ReportCardPDF renders a report card
func (p *Printer) ReportCardPDF(ctx context.Context, doc *ReportCardDocument) (*Document, error) {
	if doc.GeneratedAt.IsZero() {
		doc.GeneratedAt = time.Now()
	}
	name := fmt.Sprintf("report-card-%s-%s.pdf", doc.Student.AdmissionNumber, slug(doc.Term))
	return p.render(ctx, TemplateReportCard, doc, "Report card "+doc.Student.Name, name)
}

// HTML renders a template without printing it
func (p *Printer) HTML(name string, data any) (string, error) {
	return p.engine.Render(name, data)
}

func (p *Printer) render(ctx context.Context, tmpl string, data any, title, fileName string) (*Document, error) {
	html, err := p.engine.Render(tmpl, data)
	if err != nil {
		return nil, err
	}
	result, err := p.renderer.Render(ctx, &RenderRequest{
		HTML:       html,
		Title:      title,
		FooterHTML: pageFooter,
	})
	if err != nil {
		return nil, err
	}
	return &Document{FileName: fileName, Data: result.PDFData, Pages: result.PageCount}, nil
}

const pageFooter = `<div style="font-size:8px;width:100%;text-align:center;color:#888;">` +
	`<span class="pageNumber"></span> / <span class="totalPages"></span></div>`

func slug(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		default:
			if len(out) > 0 && out[len(out)-1] != '-' {
				out = append(out, '-')
			}
		}
	}
	if len(out) > 0 && out[len(out)-1] == '-' {
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return "term"
	}
	return string(out)
}
