package school

import (
	"regexp"
	"strings"
	"time"

	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/shared"
)

// Status represents the lifecycle state of a school
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusInactive  Status = "inactive"
)

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusSuspended, StatusInactive:
		return true
	}
	return false
}

var codeRegex = regexp.MustCompile(`^[A-Z0-9_-]+$`)

// School is the tenant: every school-scoped row carries its ID as tenant_id
type School struct {
	shared.BaseAggregateRoot
	Code     string
	Name     string
	Address  string
	Phone    string
	Email    string
	Status   Status
	Settings Settings
}

// NewSchool creates an active school with default settings
func NewSchool(code, name string) (*School, error) {
	code, err := normalizeCode(code)
	if err != nil {
		return nil, err
	}
	name, err = shared.RequireText("INVALID_NAME", "Name", name, 200)
	if err != nil {
		return nil, err
	}

	s := &School{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Status:            StatusActive,
		Settings:          DefaultSettings(),
	}
	s.AddDomainEvent(NewSchoolCreatedEvent(s))
	return s, nil
}

// Update changes the school profile
func (s *School) Update(name, address, phone, email string) error {
	name, err := shared.RequireText("INVALID_NAME", "Name", name, 200)
	if err != nil {
		return err
	}
	address, err = shared.OptionalText("INVALID_ADDRESS", "Address", address, 500)
	if err != nil {
		return err
	}
	phone, err = shared.OptionalText("INVALID_PHONE", "Phone", phone, 50)
	if err != nil {
		return err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email != "" {
		if err := identity.ValidateEmail(email); err != nil {
			return err
		}
	}

	s.Name = name
	s.Address = address
	s.Phone = phone
	s.Email = email
	s.Touch()
	s.AddDomainEvent(NewSchoolUpdatedEvent(s))
	return nil
}

// Suspend blocks sign-in for every user of the school
func (s *School) Suspend() error {
	if s.Status == StatusSuspended {
		return shared.NewDomainError("ALREADY_SUSPENDED", "School is already suspended")
	}
	old := s.Status
	s.Status = StatusSuspended
	s.Touch()
	s.AddDomainEvent(NewSchoolStatusChangedEvent(s, old))
	return nil
}

// Activate re-enables a suspended or inactive school
func (s *School) Activate() error {
	if s.Status == StatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "School is already active")
	}
	old := s.Status
	s.Status = StatusActive
	s.Touch()
	s.AddDomainEvent(NewSchoolStatusChangedEvent(s, old))
	return nil
}

// Deactivate marks the school as no longer operating
func (s *School) Deactivate() error {
	if s.Status == StatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "School is already inactive")
	}
	old := s.Status
	s.Status = StatusInactive
	s.Touch()
	s.AddDomainEvent(NewSchoolStatusChangedEvent(s, old))
	return nil
}

// UpdateSettings replaces the school settings after validating them
func (s *School) UpdateSettings(settings Settings) error {
	settings, err := settings.Normalize()
	if err != nil {
		return err
	}
	s.Settings = settings
	s.Touch()
	s.AddDomainEvent(NewSchoolSettingsUpdatedEvent(s))
	return nil
}

// IsActive reports whether users of the school may sign in
func (s *School) IsActive() bool {
	return s.Status == StatusActive
}

// Today returns the current date in the school's timezone
func (s *School) Today() time.Time {
	loc := s.Settings.Location()
	now := time.Now().In(loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func normalizeCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) < 2 || len(code) > 50 {
		return "", shared.NewDomainError("INVALID_CODE", "Code must be between 2 and 50 characters")
	}
	if !codeRegex.MatchString(code) {
		return "", shared.NewDomainError("INVALID_CODE", "Code can only contain letters, numbers, underscores and hyphens")
	}
	return code, nil
}
