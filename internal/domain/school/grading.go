package school

import (
	"strings"

	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// GradeBand maps a minimum percentage to a letter grade
type GradeBand struct {
	Grade      string          `json:"grade"`
	MinPercent decimal.Decimal `json:"min_percent"`
}

// GradingScale is an ordered list of bands, highest first, ending at 0
type GradingScale []GradeBand

// DefaultGradingScale returns A>=80, B>=70, C>=60, D>=50, F
func DefaultGradingScale() GradingScale {
	return GradingScale{
		{Grade: "A", MinPercent: decimal.NewFromInt(80)},
		{Grade: "B", MinPercent: decimal.NewFromInt(70)},
		{Grade: "C", MinPercent: decimal.NewFromInt(60)},
		{Grade: "D", MinPercent: decimal.NewFromInt(50)},
		{Grade: "F", MinPercent: decimal.Zero},
	}
}

// Validate checks the bands are strictly descending and the last one starts at 0
func (s GradingScale) Validate() error {
	if len(s) == 0 {
		return shared.NewDomainError("INVALID_GRADING_SCALE", "Grading scale must have at least one band")
	}
	seen := make(map[string]bool, len(s))
	hundred := decimal.NewFromInt(100)
	for i, band := range s {
		grade := strings.TrimSpace(band.Grade)
		if grade == "" {
			return shared.NewDomainError("INVALID_GRADING_SCALE", "Grade label is required")
		}
		if seen[grade] {
			return shared.NewDomainError("INVALID_GRADING_SCALE", "Grade labels must be unique")
		}
		seen[grade] = true
		if band.MinPercent.IsNegative() || band.MinPercent.GreaterThan(hundred) {
			return shared.NewDomainError("INVALID_GRADING_SCALE", "Minimum percent must be between 0 and 100")
		}
		if i > 0 && !band.MinPercent.LessThan(s[i-1].MinPercent) {
			return shared.NewDomainError("INVALID_GRADING_SCALE", "Grading scale must be strictly descending")
		}
	}
	if !s[len(s)-1].MinPercent.IsZero() {
		return shared.NewDomainError("INVALID_GRADING_SCALE", "Last grade band must start at 0")
	}
	return nil
}

// GradeFor returns the letter grade for a percentage
func (s GradingScale) GradeFor(percent decimal.Decimal) string {
	for _, band := range s {
		if percent.GreaterThanOrEqual(band.MinPercent) {
			return band.Grade
		}
	}
	if len(s) == 0 {
		return ""
	}
	return s[len(s)-1].Grade
}
