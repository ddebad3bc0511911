package importer

import (
	"fmt"
	"net/mail"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// FieldType is the expected type of a cell
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInt     FieldType = "int"
	TypeDecimal FieldType = "decimal"
	TypeDate    FieldType = "date"
	TypeEmail   FieldType = "email"
)

// DateLayouts are tried in order when parsing date cells
var DateLayouts = []string{"2006-01-02", "02/01/2006", "2006/01/02"}

// FieldRule describes one column
type FieldRule struct {
	Column    string
	Required  bool
	Type      FieldType
	MaxLength int
	OneOf     []string
	Pattern   *regexp.Regexp
	Unique    bool
}

// RuleBuilder builds a FieldRule
type RuleBuilder struct {
	rule FieldRule
}

// Field starts a rule for column
func Field(column string) *RuleBuilder {
	return &RuleBuilder{rule: FieldRule{Column: column, Type: TypeString}}
}

func (b *RuleBuilder) Required() *RuleBuilder       { b.rule.Required = true; return b }
func (b *RuleBuilder) Int() *RuleBuilder            { b.rule.Type = TypeInt; return b }
func (b *RuleBuilder) Decimal() *RuleBuilder        { b.rule.Type = TypeDecimal; return b }
func (b *RuleBuilder) Date() *RuleBuilder           { b.rule.Type = TypeDate; return b }
func (b *RuleBuilder) Email() *RuleBuilder          { b.rule.Type = TypeEmail; return b }
func (b *RuleBuilder) MaxLength(n int) *RuleBuilder { b.rule.MaxLength = n; return b }
func (b *RuleBuilder) Unique() *RuleBuilder         { b.rule.Unique = true; return b }

// OneOf restricts the value to a fixed set, compared case-insensitively
func (b *RuleBuilder) OneOf(values ...string) *RuleBuilder {
	b.rule.OneOf = values
	return b
}

// Pattern requires the value to match expr
func (b *RuleBuilder) Pattern(expr string) *RuleBuilder {
	b.rule.Pattern = regexp.MustCompile(expr)
	return b
}

// Build returns the rule
func (b *RuleBuilder) Build() FieldRule {
	return b.rule
}

// Validator checks rows against rules and tracks in-file duplicates
type Validator struct {
	rules []FieldRule
	seen  map[string]map[string]int
	errs  *Errors
}

// NewValidator creates a validator writing into errs
func NewValidator(errs *Errors, rules ...FieldRule) *Validator {
	return &Validator{rules: rules, seen: make(map[string]map[string]int), errs: errs}
}

// RequiredColumns lists the columns marked required
func (v *Validator) RequiredColumns() []string {
	var cols []string
	for _, r := range v.rules {
		if r.Required {
			cols = append(cols, r.Column)
		}
	}
	return cols
}

// ValidateRow returns true when every rule passes
func (v *Validator) ValidateRow(row *Row) bool {
	ok := true
	for _, rule := range v.rules {
		value := row.Get(rule.Column)
		if value == "" {
			if rule.Required {
				v.errs.Addf(row.Number, rule.Column, CodeRequired, "%s is required", rule.Column)
				ok = false
			}
			continue
		}
		if err := checkType(value, rule.Type); err != nil {
			v.errs.Addf(row.Number, rule.Column, CodeInvalidType, "expected %s, got %q", rule.Type, value)
			ok = false
			continue
		}
		if rule.MaxLength > 0 && utf8.RuneCountInString(value) > rule.MaxLength {
			v.errs.Addf(row.Number, rule.Column, CodeInvalidLength, "must be at most %d characters", rule.MaxLength)
			ok = false
		}
		if len(rule.OneOf) > 0 && !slices.Contains(rule.OneOf, strings.ToLower(value)) {
			v.errs.Addf(row.Number, rule.Column, CodeInvalidValue, "must be one of %s", strings.Join(rule.OneOf, ", "))
			ok = false
		}
		if rule.Pattern != nil && !rule.Pattern.MatchString(value) {
			v.errs.Addf(row.Number, rule.Column, CodeInvalidValue, "%q has an invalid format", value)
			ok = false
		}
		if rule.Unique {
			key := strings.ToLower(value)
			if v.seen[rule.Column] == nil {
				v.seen[rule.Column] = make(map[string]int)
			}
			if first, dup := v.seen[rule.Column][key]; dup {
				v.errs.Addf(row.Number, rule.Column, CodeDuplicateInFile, "%q already appears in row %d", value, first)
				ok = false
			} else {
				v.seen[rule.Column][key] = row.Number
			}
		}
	}
	return ok
}

func checkType(value string, t FieldType) error {
	switch t {
	case TypeInt:
		_, err := strconv.Atoi(value)
		return err
	case TypeDecimal:
		_, err := decimal.NewFromString(value)
		return err
	case TypeDate:
		_, err := ParseDate(value)
		return err
	case TypeEmail:
		_, err := mail.ParseAddress(value)
		return err
	default:
		return nil
	}
}

// ParseDate parses a date cell using DateLayouts
func ParseDate(value string) (time.Time, error) {
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}
