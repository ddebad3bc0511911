package school

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/schoolhub/backend/internal/domain/shared"
)

var (
	academicYearRegex = regexp.MustCompile(`^\d{4}(/\d{4})?$`)
	currencyRegex     = regexp.MustCompile(`^[A-Z]{3}$`)
)

// Settings holds the per-school configuration used across modules
type Settings struct {
	AcademicYear string
	CurrentTerm  string
	Currency     string
	Timezone     string
	GradingScale GradingScale
	Preferences  map[string]any
}

// DefaultSettings returns settings for a freshly created school
func DefaultSettings() Settings {
	year := time.Now().Year()
	return Settings{
		AcademicYear: formatAcademicYear(year),
		CurrentTerm:  "Term 1",
		Currency:     "USD",
		Timezone:     "UTC",
		GradingScale: DefaultGradingScale(),
		Preferences:  map[string]any{},
	}
}

// Normalize validates the settings and fills defaults for empty fields
func (s Settings) Normalize() (Settings, error) {
	def := DefaultSettings()

	s.AcademicYear = strings.TrimSpace(s.AcademicYear)
	if s.AcademicYear == "" {
		s.AcademicYear = def.AcademicYear
	}
	if !academicYearRegex.MatchString(s.AcademicYear) {
		return s, shared.NewDomainError("INVALID_ACADEMIC_YEAR", "Academic year must look like 2025 or 2025/2026")
	}

	term, err := shared.OptionalText("INVALID_TERM", "Term", s.CurrentTerm, 50)
	if err != nil {
		return s, err
	}
	s.CurrentTerm = term

	s.Currency = strings.ToUpper(strings.TrimSpace(s.Currency))
	if s.Currency == "" {
		s.Currency = def.Currency
	}
	if !currencyRegex.MatchString(s.Currency) {
		return s, shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter ISO 4217 code")
	}

	s.Timezone = strings.TrimSpace(s.Timezone)
	if s.Timezone == "" {
		s.Timezone = def.Timezone
	}
	if _, err := time.LoadLocation(s.Timezone); err != nil {
		return s, shared.NewDomainError("INVALID_TIMEZONE", "Timezone must be an IANA zone name")
	}

	if len(s.GradingScale) == 0 {
		s.GradingScale = def.GradingScale
	}
	if err := s.GradingScale.Validate(); err != nil {
		return s, err
	}

	if s.Preferences == nil {
		s.Preferences = map[string]any{}
	}
	return s, nil
}

// Location returns the school timezone, falling back to UTC
func (s Settings) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func formatAcademicYear(start int) string {
	return fmt.Sprintf("%d/%d", start, start+1)
}
