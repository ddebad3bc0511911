package people

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/shared"
)

// Gender of a student
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// ParseGender validates a gender value; empty means unspecified
func ParseGender(s string) (Gender, error) {
	g := Gender(strings.ToLower(strings.TrimSpace(s)))
	switch g {
	case "", GenderMale, GenderFemale, GenderOther:
		return g, nil
	}
	return "", shared.NewDomainError("INVALID_GENDER", "Gender must be male, female or other")
}

// StudentStatus is the enrollment state of a student
type StudentStatus string

const (
	StudentStatusActive      StudentStatus = "active"
	StudentStatusSuspended   StudentStatus = "suspended"
	StudentStatusGraduated   StudentStatus = "graduated"
	StudentStatusTransferred StudentStatus = "transferred"
)

// IsValid reports whether s is a known status
func (s StudentStatus) IsValid() bool {
	switch s {
	case StudentStatusActive, StudentStatusSuspended, StudentStatusGraduated, StudentStatusTransferred:
		return true
	}
	return false
}

// LeavesClass reports whether a student in this status no longer sits in a class
func (s StudentStatus) LeavesClass() bool {
	return s == StudentStatusGraduated || s == StudentStatusTransferred
}

// Guardian holds the contact details of a student's parent or guardian
type Guardian struct {
	Name  string
	Phone string
	Email string
}

// StudentProfile carries the editable fields of a student
type StudentProfile struct {
	FirstName      string
	LastName       string
	Gender         Gender
	DateOfBirth    *time.Time
	EnrollmentDate *time.Time
	Address        string
	Guardian       Guardian
}

// Student is a learner enrolled at a school
type Student struct {
	shared.TenantAggregateRoot
	AdmissionNumber string
	StudentProfile
	ClassID       *uuid.UUID
	ParentUserID  *uuid.UUID
	StudentUserID *uuid.UUID
	Status        StudentStatus
}

// NewStudent creates an active student
func NewStudent(tenantID uuid.UUID, admissionNumber string, profile StudentProfile) (*Student, error) {
	admissionNumber, err := shared.RequireText("INVALID_ADMISSION_NUMBER", "Admission number", admissionNumber, 50)
	if err != nil {
		return nil, err
	}
	profile, err = profile.normalize()
	if err != nil {
		return nil, err
	}
	if profile.EnrollmentDate == nil {
		today := truncateDay(time.Now())
		profile.EnrollmentDate = &today
	}

	s := &Student{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		AdmissionNumber:     strings.ToUpper(admissionNumber),
		StudentProfile:      profile,
		Status:              StudentStatusActive,
	}
	s.AddDomainEvent(NewStudentCreatedEvent(s))
	return s, nil
}

// UpdateProfile replaces the editable fields
func (s *Student) UpdateProfile(profile StudentProfile) error {
	profile, err := profile.normalize()
	if err != nil {
		return err
	}
	if profile.EnrollmentDate == nil {
		profile.EnrollmentDate = s.EnrollmentDate
	}
	s.StudentProfile = profile
	s.Touch()
	s.AddDomainEvent(NewStudentUpdatedEvent(s))
	return nil
}

// AssignClass places the student in a class; nil removes the assignment
func (s *Student) AssignClass(classID *uuid.UUID) error {
	if classID != nil && s.Status.LeavesClass() {
		return shared.NewDomainError("INVALID_STATE", "Graduated or transferred students cannot join a class")
	}
	old := s.ClassID
	s.ClassID = classID
	s.Touch()
	s.AddDomainEvent(NewStudentClassChangedEvent(s, old))
	return nil
}

// ChangeStatus moves the student to another enrollment state.
// Graduated and transferred students leave their class.
func (s *Student) ChangeStatus(status StudentStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown student status")
	}
	if s.Status == status {
		return shared.NewDomainError("INVALID_STATE", "Student already has this status")
	}
	old := s.Status
	s.Status = status
	if status.LeavesClass() && s.ClassID != nil {
		prev := s.ClassID
		s.ClassID = nil
		s.AddDomainEvent(NewStudentClassChangedEvent(s, prev))
	}
	s.Touch()
	s.AddDomainEvent(NewStudentStatusChangedEvent(s, old))
	return nil
}

// LinkUsers attaches the student's own login and the parent login
func (s *Student) LinkUsers(studentUserID, parentUserID *uuid.UUID) {
	s.StudentUserID = studentUserID
	s.ParentUserID = parentUserID
	s.Touch()
}

// FullName returns "First Last"
func (s *Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// VisibleTo reports whether the actor may read this student's records.
// Students see themselves and parents see their linked children.
func (s *Student) VisibleTo(actor identity.Actor) bool {
	switch actor.Role {
	case identity.RoleStudent:
		return s.StudentUserID != nil && *s.StudentUserID == actor.UserID
	case identity.RoleParent:
		return s.ParentUserID != nil && *s.ParentUserID == actor.UserID
	case identity.RoleSuperAdmin:
		return true
	}
	return s.TenantID == actor.TenantID
}

// IsActive reports whether the student is currently enrolled
func (s *Student) IsActive() bool {
	return s.Status == StudentStatusActive
}

func (p StudentProfile) normalize() (StudentProfile, error) {
	var err error
	if p.FirstName, err = shared.RequireText("INVALID_NAME", "First name", p.FirstName, 100); err != nil {
		return p, err
	}
	if p.LastName, err = shared.RequireText("INVALID_NAME", "Last name", p.LastName, 100); err != nil {
		return p, err
	}
	if p.Gender, err = ParseGender(string(p.Gender)); err != nil {
		return p, err
	}
	if p.DateOfBirth != nil {
		dob := truncateDay(*p.DateOfBirth)
		if dob.After(truncateDay(time.Now())) {
			return p, shared.NewDomainError("INVALID_DATE_OF_BIRTH", "Date of birth cannot be in the future")
		}
		p.DateOfBirth = &dob
	}
	if p.EnrollmentDate != nil {
		d := truncateDay(*p.EnrollmentDate)
		p.EnrollmentDate = &d
	}
	if p.Address, err = shared.OptionalText("INVALID_ADDRESS", "Address", p.Address, 500); err != nil {
		return p, err
	}
	if p.Guardian.Name, err = shared.OptionalText("INVALID_GUARDIAN", "Guardian name", p.Guardian.Name, 200); err != nil {
		return p, err
	}
	if p.Guardian.Phone, err = shared.OptionalText("INVALID_GUARDIAN", "Guardian phone", p.Guardian.Phone, 50); err != nil {
		return p, err
	}
	p.Guardian.Email = strings.ToLower(strings.TrimSpace(p.Guardian.Email))
	if p.Guardian.Email != "" {
		if err := identity.ValidateEmail(p.Guardian.Email); err != nil {
			return p, err
		}
	}
	return p, nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
