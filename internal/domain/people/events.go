package people

import (
	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/shared"
)

// Aggregate types
const (
	AggregateTypeStudent = "Student"
	AggregateTypeTeacher = "Teacher"
)

// Event types
const (
	EventTypeStudentCreated       = "student.created"
	EventTypeStudentUpdated       = "student.updated"
	EventTypeStudentClassChanged  = "student.class_changed"
	EventTypeStudentStatusChanged = "student.status_changed"
	EventTypeStudentDeleted       = "student.deleted"

	EventTypeTeacherCreated       = "teacher.created"
	EventTypeTeacherUpdated       = "teacher.updated"
	EventTypeTeacherStatusChanged = "teacher.status_changed"
	EventTypeTeacherDeleted       = "teacher.deleted"
)

// StudentCreatedEvent is published when a student is admitted
type StudentCreatedEvent struct {
	shared.BaseDomainEvent
	AdmissionNumber string `json:"admission_number"`
}

// NewStudentCreatedEvent creates a StudentCreatedEvent
func NewStudentCreatedEvent(s *Student) *StudentCreatedEvent {
	return &StudentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStudentCreated, AggregateTypeStudent, s.ID, s.TenantID),
		AdmissionNumber: s.AdmissionNumber,
	}
}

// StudentUpdatedEvent is published when the student profile changes
type StudentUpdatedEvent struct {
	shared.BaseDomainEvent
}

// NewStudentUpdatedEvent creates a StudentUpdatedEvent
func NewStudentUpdatedEvent(s *Student) *StudentUpdatedEvent {
	return &StudentUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStudentUpdated, AggregateTypeStudent, s.ID, s.TenantID),
	}
}

// StudentClassChangedEvent is published when a student joins or leaves a class
type StudentClassChangedEvent struct {
	shared.BaseDomainEvent
	OldClassID *uuid.UUID `json:"old_class_id,omitempty"`
	NewClassID *uuid.UUID `json:"new_class_id,omitempty"`
}

// NewStudentClassChangedEvent creates a StudentClassChangedEvent
func NewStudentClassChangedEvent(s *Student, old *uuid.UUID) *StudentClassChangedEvent {
	return &StudentClassChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStudentClassChanged, AggregateTypeStudent, s.ID, s.TenantID),
		OldClassID:      old,
		NewClassID:      s.ClassID,
	}
}

// StudentStatusChangedEvent is published when enrollment status changes
type StudentStatusChangedEvent struct {
	shared.BaseDomainEvent
	OldStatus StudentStatus `json:"old_status"`
	NewStatus StudentStatus `json:"new_status"`
}

// NewStudentStatusChangedEvent creates a StudentStatusChangedEvent
func NewStudentStatusChangedEvent(s *Student, old StudentStatus) *StudentStatusChangedEvent {
	return &StudentStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStudentStatusChanged, AggregateTypeStudent, s.ID, s.TenantID),
		OldStatus:       old,
		NewStatus:       s.Status,
	}
}

// StudentDeletedEvent is published after a student record is removed
type StudentDeletedEvent struct {
	shared.BaseDomainEvent
}

// NewStudentDeletedEvent creates a StudentDeletedEvent
func NewStudentDeletedEvent(s *Student) *StudentDeletedEvent {
	return &StudentDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStudentDeleted, AggregateTypeStudent, s.ID, s.TenantID),
	}
}

// TeacherCreatedEvent is published when a teacher is hired
type TeacherCreatedEvent struct {
	shared.BaseDomainEvent
	EmployeeNumber string `json:"employee_number"`
}

// NewTeacherCreatedEvent creates a TeacherCreatedEvent
func NewTeacherCreatedEvent(t *Teacher) *TeacherCreatedEvent {
	return &TeacherCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTeacherCreated, AggregateTypeTeacher, t.ID, t.TenantID),
		EmployeeNumber:  t.EmployeeNumber,
	}
}

// TeacherUpdatedEvent is published when a teacher profile changes
type TeacherUpdatedEvent struct {
	shared.BaseDomainEvent
}

// NewTeacherUpdatedEvent creates a TeacherUpdatedEvent
func NewTeacherUpdatedEvent(t *Teacher) *TeacherUpdatedEvent {
	return &TeacherUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTeacherUpdated, AggregateTypeTeacher, t.ID, t.TenantID),
	}
}

// TeacherStatusChangedEvent is published when employment status changes
type TeacherStatusChangedEvent struct {
	shared.BaseDomainEvent
	OldStatus TeacherStatus `json:"old_status"`
	NewStatus TeacherStatus `json:"new_status"`
}

// NewTeacherStatusChangedEvent creates a TeacherStatusChangedEvent
func NewTeacherStatusChangedEvent(t *Teacher, old TeacherStatus) *TeacherStatusChangedEvent {
	return &TeacherStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTeacherStatusChanged, AggregateTypeTeacher, t.ID, t.TenantID),
		OldStatus:       old,
		NewStatus:       t.Status,
	}
}

// TeacherDeletedEvent is published after a teacher record is removed
type TeacherDeletedEvent struct {
	shared.BaseDomainEvent
}

// NewTeacherDeletedEvent creates a TeacherDeletedEvent
func NewTeacherDeletedEvent(t *Teacher) *TeacherDeletedEvent {
	return &TeacherDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTeacherDeleted, AggregateTypeTeacher, t.ID, t.TenantID),
	}
}
