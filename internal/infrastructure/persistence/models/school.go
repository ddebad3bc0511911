package models

import (
	"encoding/json"

	"github.com/schoolhub/backend/internal/domain/school"
	"gorm.io/datatypes"
)

// SchoolModel is the persistence model for the School aggregate.
// Settings are flattened into columns; the grading scale and preferences are jsonb.
type SchoolModel struct {
	AggregateModel
	Code         string         `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name         string         `gorm:"type:varchar(200);not null"`
	Address      string         `gorm:"type:text"`
	Phone        string         `gorm:"type:varchar(50)"`
	Email        string         `gorm:"type:varchar(200)"`
	Status       school.Status  `gorm:"type:varchar(20);not null;default:'active'"`
	AcademicYear string         `gorm:"type:varchar(20)"`
	CurrentTerm  string         `gorm:"type:varchar(50)"`
	Currency     string         `gorm:"type:varchar(3);not null;default:'USD'"`
	Timezone     string         `gorm:"type:varchar(64);not null;default:'UTC'"`
	GradingScale datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`
	Preferences  datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'"`
}

// TableName returns the table name for GORM
func (SchoolModel) TableName() string {
	return "schools"
}

// ToDomain converts the persistence model to a domain School.
// Malformed json columns fall back to defaults.
func (m *SchoolModel) ToDomain() *school.School {
	var scale school.GradingScale
	if len(m.GradingScale) > 0 {
		_ = json.Unmarshal(m.GradingScale, &scale)
	}
	if len(scale) == 0 {
		scale = school.DefaultGradingScale()
	}
	prefs := map[string]any{}
	if len(m.Preferences) > 0 {
		_ = json.Unmarshal(m.Preferences, &prefs)
	}
	return &school.School{
		BaseAggregateRoot: m.AggregateRoot(),
		Code:              m.Code,
		Name:              m.Name,
		Address:           m.Address,
		Phone:             m.Phone,
		Email:             m.Email,
		Status:            m.Status,
		Settings: school.Settings{
			AcademicYear: m.AcademicYear,
			CurrentTerm:  m.CurrentTerm,
			Currency:     m.Currency,
			Timezone:     m.Timezone,
			GradingScale: scale,
			Preferences:  prefs,
		},
	}
}

// FromDomain populates the persistence model from a domain School.
func (m *SchoolModel) FromDomain(s *school.School) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.Code = s.Code
	m.Name = s.Name
	m.Address = s.Address
	m.Phone = s.Phone
	m.Email = s.Email
	m.Status = s.Status
	m.AcademicYear = s.Settings.AcademicYear
	m.CurrentTerm = s.Settings.CurrentTerm
	m.Currency = s.Settings.Currency
	m.Timezone = s.Settings.Timezone
	m.GradingScale = mustJSON(s.Settings.GradingScale, "[]")
	m.Preferences = mustJSON(s.Settings.Preferences, "{}")
}

// SchoolModelFromDomain creates a new persistence model from a domain School.
func SchoolModelFromDomain(s *school.School) *SchoolModel {
	m := &SchoolModel{}
	m.FromDomain(s)
	return m
}

func mustJSON(v any, empty string) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil || string(b) == "null" {
		return datatypes.JSON(empty)
	}
	return datatypes.JSON(b)
}
