package academic

import (
	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/shared"
)

// DefaultCapacity is used when a class is created without a capacity
const DefaultCapacity = 40

// Grade levels accepted for a class
const (
	MinGradeLevel = 1
	MaxGradeLevel = 13
)

// ClassDetails carries the editable fields of a class
type ClassDetails struct {
	Name         string
	GradeLevel   int
	Section      string
	AcademicYear string
	Capacity     int
	Room         string
}

// Class is a group of students taught together for an academic year
type Class struct {
	shared.TenantAggregateRoot
	ClassDetails
	HomeroomTeacherID *uuid.UUID
	IsActive          bool
}

// NewClass creates an active class
func NewClass(tenantID uuid.UUID, details ClassDetails) (*Class, error) {
	details, err := details.normalize()
	if err != nil {
		return nil, err
	}
	c := &Class{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ClassDetails:        details,
		IsActive:            true,
	}
	c.AddDomainEvent(NewClassCreatedEvent(c))
	return c, nil
}

// Update replaces the editable fields. Capacity cannot drop below the enrolled count.
func (c *Class) Update(details ClassDetails, enrolled int64) error {
	details, err := details.normalize()
	if err != nil {
		return err
	}
	if int64(details.Capacity) < enrolled {
		return shared.NewDomainError("CAPACITY_TOO_LOW", "Capacity cannot be lower than the number of enrolled students")
	}
	c.ClassDetails = details
	c.Touch()
	c.AddDomainEvent(NewClassUpdatedEvent(c))
	return nil
}

// AssignTeacher sets or clears the homeroom teacher
func (c *Class) AssignTeacher(teacherID *uuid.UUID) {
	c.HomeroomTeacherID = teacherID
	c.Touch()
	c.AddDomainEvent(NewClassUpdatedEvent(c))
}

// SetActive toggles whether the class is in use
func (c *Class) SetActive(active bool) {
	if c.IsActive == active {
		return
	}
	c.IsActive = active
	c.Touch()
	c.AddDomainEvent(NewClassUpdatedEvent(c))
}

// HasRoomFor reports whether another student fits given the current enrollment
func (c *Class) HasRoomFor(enrolled int64) bool {
	return enrolled < int64(c.Capacity)
}

// DisplayName returns the name with its section, e.g. "Grade 5 B"
func (c *Class) DisplayName() string {
	if c.Section == "" {
		return c.Name
	}
	return c.Name + " " + c.Section
}

func (d ClassDetails) normalize() (ClassDetails, error) {
	var err error
	if d.Name, err = shared.RequireText("INVALID_NAME", "Name", d.Name, 100); err != nil {
		return d, err
	}
	if d.GradeLevel < MinGradeLevel || d.GradeLevel > MaxGradeLevel {
		return d, shared.NewDomainError("INVALID_GRADE_LEVEL", "Grade level must be between 1 and 13")
	}
	if d.Section, err = shared.OptionalText("INVALID_SECTION", "Section", d.Section, 20); err != nil {
		return d, err
	}
	if d.AcademicYear, err = shared.OptionalText("INVALID_ACADEMIC_YEAR", "Academic year", d.AcademicYear, 20); err != nil {
		return d, err
	}
	if d.Room, err = shared.OptionalText("INVALID_ROOM", "Room", d.Room, 50); err != nil {
		return d, err
	}
	if d.Capacity == 0 {
		d.Capacity = DefaultCapacity
	}
	if d.Capacity < 0 {
		return d, shared.NewDomainError("INVALID_CAPACITY", "Capacity must be greater than zero")
	}
	return d, nil
}
