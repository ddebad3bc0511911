package academic

import "github.com/schoolhub/backend/internal/domain/shared"

// Aggregate types
const (
	AggregateTypeClass   = "Class"
	AggregateTypeSubject = "Subject"
)

// Event types
const (
	EventTypeClassCreated   = "class.created"
	EventTypeClassUpdated   = "class.updated"
	EventTypeClassDeleted   = "class.deleted"
	EventTypeSubjectCreated = "subject.created"
	EventTypeSubjectUpdated = "subject.updated"
	EventTypeSubjectDeleted = "subject.deleted"
)

// ClassEvent is published on class lifecycle changes
type ClassEvent struct {
	shared.BaseDomainEvent
	Name       string `json:"name"`
	GradeLevel int    `json:"grade_level"`
}

func newClassEvent(eventType string, c *Class) *ClassEvent {
	return &ClassEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeClass, c.ID, c.TenantID),
		Name:            c.Name,
		GradeLevel:      c.GradeLevel,
	}
}

// NewClassCreatedEvent creates a class.created event
func NewClassCreatedEvent(c *Class) *ClassEvent { return newClassEvent(EventTypeClassCreated, c) }

// NewClassUpdatedEvent creates a class.updated event
func NewClassUpdatedEvent(c *Class) *ClassEvent { return newClassEvent(EventTypeClassUpdated, c) }

// NewClassDeletedEvent creates a class.deleted event
func NewClassDeletedEvent(c *Class) *ClassEvent { return newClassEvent(EventTypeClassDeleted, c) }

// SubjectEvent is published on subject lifecycle changes
type SubjectEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
}

func newSubjectEvent(eventType string, s *Subject) *SubjectEvent {
	return &SubjectEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeSubject, s.ID, s.TenantID),
		Code:            s.Code,
	}
}

// NewSubjectCreatedEvent creates a subject.created event
func NewSubjectCreatedEvent(s *Subject) *SubjectEvent {
	return newSubjectEvent(EventTypeSubjectCreated, s)
}

// NewSubjectUpdatedEvent creates a subject.updated event
func NewSubjectUpdatedEvent(s *Subject) *SubjectEvent {
	return newSubjectEvent(EventTypeSubjectUpdated, s)
}

// NewSubjectDeletedEvent creates a subject.deleted event
func NewSubjectDeletedEvent(s *Subject) *SubjectEvent {
	return newSubjectEvent(EventTypeSubjectDeleted, s)
}
