package printing

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// TemplateEngine renders the built-in document templates.
// Money and numbers are formatted for the engine's language.
type TemplateEngine struct {
	lang      language.Tag
	printer   *message.Printer
	titleCase cases.Caser
	templates map[string]*template.Template
}

// TemplateEngineOption configures the template engine
type TemplateEngineOption func(*TemplateEngine)

// WithLanguage sets the formatting language (default English)
func WithLanguage(tag language.Tag) TemplateEngineOption {
	return func(e *TemplateEngine) {
		e.lang = tag
	}
}

// NewTemplateEngine parses the built-in templates
func NewTemplateEngine(opts ...TemplateEngineOption) (*TemplateEngine, error) {
	e := &TemplateEngine{lang: language.English}
	for _, opt := range opts {
		opt(e)
	}
	e.printer = message.NewPrinter(e.lang)
	e.titleCase = cases.Title(e.lang)

	e.templates = make(map[string]*template.Template, len(builtinTemplates))
	for name, body := range builtinTemplates {
		tmpl, err := template.New(name).Funcs(e.FuncMap()).Parse(baseLayout + body)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		e.templates[name] = tmpl
	}
	return e, nil
}

// Render executes the named template with data
func (e *TemplateEngine) Render(name string, data any) (string, error) {
	tmpl, ok := e.templates[name]
	if !ok {
		return "", NewRenderError(ErrCodeTemplate, "unknown template "+name, nil)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", NewRenderError(ErrCodeTemplate, "failed to render template "+name, err)
	}
	return buf.String(), nil
}

// FuncMap returns the helpers available to templates
func (e *TemplateEngine) FuncMap() template.FuncMap {
	return template.FuncMap{
		"money":   e.formatMoney,
		"number":  e.formatNumber,
		"percent": e.formatPercent,
		"date":    formatDate,
		"title":   e.title,
		"upper":   strings.ToUpper,
		"status":  e.statusText,
		"inc":     func(i int) int { return i + 1 },
	}
}

// formatMoney renders "USD 1,250.00"
func (e *TemplateEngine) formatMoney(currency string, v decimal.Decimal) string {
	amount := e.printer.Sprintf("%.2f", v.Round(2).InexactFloat64())
	if currency == "" {
		return amount
	}
	return currency + " " + amount
}

func (e *TemplateEngine) formatNumber(v decimal.Decimal) string {
	return e.printer.Sprintf("%.2f", v.Round(2).InexactFloat64())
}

func (e *TemplateEngine) formatPercent(v decimal.Decimal) string {
	return e.printer.Sprintf("%.1f%%", v.Round(1).InexactFloat64())
}

func (e *TemplateEngine) title(s string) string {
	return e.titleCase.String(strings.ToLower(s))
}

// statusText turns "partially_paid" into "Partially Paid"
func (e *TemplateEngine) statusText(s string) string {
	return e.title(strings.ReplaceAll(s, "_", " "))
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02 Jan 2006")
}
