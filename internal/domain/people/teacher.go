package people

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/shared"
)

// TeacherStatus is the employment state of a teacher
type TeacherStatus string

const (
	TeacherStatusActive   TeacherStatus = "active"
	TeacherStatusOnLeave  TeacherStatus = "on_leave"
	TeacherStatusInactive TeacherStatus = "inactive"
)

// IsValid reports whether s is a known status
func (s TeacherStatus) IsValid() bool {
	switch s {
	case TeacherStatusActive, TeacherStatusOnLeave, TeacherStatusInactive:
		return true
	}
	return false
}

// TeacherProfile carries the editable fields of a teacher
type TeacherProfile struct {
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	Qualification  string
	Specialization string
	HireDate       *time.Time
}

// Teacher is a member of teaching staff
type Teacher struct {
	shared.TenantAggregateRoot
	EmployeeNumber string
	TeacherProfile
	UserID *uuid.UUID
	Status TeacherStatus
}

// NewTeacher creates an active teacher
func NewTeacher(tenantID uuid.UUID, employeeNumber string, profile TeacherProfile) (*Teacher, error) {
	employeeNumber, err := shared.RequireText("INVALID_EMPLOYEE_NUMBER", "Employee number", employeeNumber, 50)
	if err != nil {
		return nil, err
	}
	profile, err = profile.normalize()
	if err != nil {
		return nil, err
	}

	t := &Teacher{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		EmployeeNumber:      strings.ToUpper(employeeNumber),
		TeacherProfile:      profile,
		Status:              TeacherStatusActive,
	}
	t.AddDomainEvent(NewTeacherCreatedEvent(t))
	return t, nil
}

// UpdateProfile replaces the editable fields
func (t *Teacher) UpdateProfile(profile TeacherProfile) error {
	profile, err := profile.normalize()
	if err != nil {
		return err
	}
	t.TeacherProfile = profile
	t.Touch()
	t.AddDomainEvent(NewTeacherUpdatedEvent(t))
	return nil
}

// ChangeStatus moves the teacher to another employment state
func (t *Teacher) ChangeStatus(status TeacherStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown teacher status")
	}
	if t.Status == status {
		return shared.NewDomainError("INVALID_STATE", "Teacher already has this status")
	}
	old := t.Status
	t.Status = status
	t.Touch()
	t.AddDomainEvent(NewTeacherStatusChangedEvent(t, old))
	return nil
}

// LinkUser attaches the teacher's login account
func (t *Teacher) LinkUser(userID *uuid.UUID) {
	t.UserID = userID
	t.Touch()
}

// FullName returns "First Last"
func (t *Teacher) FullName() string {
	return strings.TrimSpace(t.FirstName + " " + t.LastName)
}

func (p TeacherProfile) normalize() (TeacherProfile, error) {
	var err error
	if p.FirstName, err = shared.RequireText("INVALID_NAME", "First name", p.FirstName, 100); err != nil {
		return p, err
	}
	if p.LastName, err = shared.RequireText("INVALID_NAME", "Last name", p.LastName, 100); err != nil {
		return p, err
	}
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	if p.Email != "" {
		if err := identity.ValidateEmail(p.Email); err != nil {
			return p, err
		}
	}
	if p.Phone, err = shared.OptionalText("INVALID_PHONE", "Phone", p.Phone, 50); err != nil {
		return p, err
	}
	if p.Qualification, err = shared.OptionalText("INVALID_QUALIFICATION", "Qualification", p.Qualification, 200); err != nil {
		return p, err
	}
	if p.Specialization, err = shared.OptionalText("INVALID_SPECIALIZATION", "Specialization", p.Specialization, 200); err != nil {
		return p, err
	}
	if p.HireDate != nil {
		d := truncateDay(*p.HireDate)
		p.HireDate = &d
	}
	return p, nil
}
