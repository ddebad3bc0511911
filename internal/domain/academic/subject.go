package academic

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/shared"
)

var subjectCodeRegex = regexp.MustCompile(`^[A-Z0-9_-]+$`)

// Subject is a course of study offered by the school
type Subject struct {
	shared.TenantAggregateRoot
	Code        string
	Name        string
	Description string
	IsActive    bool
}

// NewSubject creates an active subject
func NewSubject(tenantID uuid.UUID, code, name, description string) (*Subject, error) {
	code, err := normalizeSubjectCode(code)
	if err != nil {
		return nil, err
	}
	s := &Subject{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		IsActive:            true,
	}
	if err := s.setDetails(name, description); err != nil {
		return nil, err
	}
	s.AddDomainEvent(NewSubjectCreatedEvent(s))
	return s, nil
}

// Update changes name, description and active flag
func (s *Subject) Update(name, description string, active bool) error {
	if err := s.setDetails(name, description); err != nil {
		return err
	}
	s.IsActive = active
	s.Touch()
	s.AddDomainEvent(NewSubjectUpdatedEvent(s))
	return nil
}

func (s *Subject) setDetails(name, description string) error {
	name, err := shared.RequireText("INVALID_NAME", "Name", name, 100)
	if err != nil {
		return err
	}
	description, err = shared.OptionalText("INVALID_DESCRIPTION", "Description", description, 1000)
	if err != nil {
		return err
	}
	s.Name = name
	s.Description = description
	return nil
}

func normalizeSubjectCode(code string) (string, error) {
	code, err := shared.RequireText("INVALID_CODE", "Code", code, 20)
	if err != nil {
		return "", err
	}
	code = strings.ToUpper(code)
	if !subjectCodeRegex.MatchString(code) {
		return "", shared.NewDomainError("INVALID_CODE", "Code can only contain letters, numbers, underscores and hyphens")
	}
	return code, nil
}

// ClassSubject links a subject to a class, optionally with the teacher who teaches it
type ClassSubject struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	ClassID   uuid.UUID
	SubjectID uuid.UUID
	TeacherID *uuid.UUID
	CreatedAt time.Time
}

// NewClassSubject creates a class-subject assignment
func NewClassSubject(tenantID, classID, subjectID uuid.UUID, teacherID *uuid.UUID) *ClassSubject {
	return &ClassSubject{
		ID:        uuid.New(),
		TenantID:  tenantID,
		ClassID:   classID,
		SubjectID: subjectID,
		TeacherID: teacherID,
		CreatedAt: time.Now(),
	}
}
