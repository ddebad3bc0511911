package school

import "github.com/schoolhub/backend/internal/domain/shared"

// AggregateTypeSchool is the aggregate type for schools
const AggregateTypeSchool = "School"

// School event types
const (
	EventTypeSchoolCreated         = "school.created"
	EventTypeSchoolUpdated         = "school.updated"
	EventTypeSchoolStatusChanged   = "school.status_changed"
	EventTypeSchoolSettingsUpdated = "school.settings_updated"
	EventTypeSchoolDeleted         = "school.deleted"
)

// SchoolCreatedEvent is published when a school is registered
type SchoolCreatedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
	Name string `json:"name"`
}

// NewSchoolCreatedEvent creates a SchoolCreatedEvent
func NewSchoolCreatedEvent(s *School) *SchoolCreatedEvent {
	return &SchoolCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSchoolCreated, AggregateTypeSchool, s.ID, s.ID),
		Code:            s.Code,
		Name:            s.Name,
	}
}

// SchoolUpdatedEvent is published when the school profile changes
type SchoolUpdatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewSchoolUpdatedEvent creates a SchoolUpdatedEvent
func NewSchoolUpdatedEvent(s *School) *SchoolUpdatedEvent {
	return &SchoolUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSchoolUpdated, AggregateTypeSchool, s.ID, s.ID),
		Name:            s.Name,
	}
}

// SchoolStatusChangedEvent is published on suspend and activate
type SchoolStatusChangedEvent struct {
	shared.BaseDomainEvent
	OldStatus Status `json:"old_status"`
	NewStatus Status `json:"new_status"`
}

// NewSchoolStatusChangedEvent creates a SchoolStatusChangedEvent
func NewSchoolStatusChangedEvent(s *School, old Status) *SchoolStatusChangedEvent {
	return &SchoolStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSchoolStatusChanged, AggregateTypeSchool, s.ID, s.ID),
		OldStatus:       old,
		NewStatus:       s.Status,
	}
}

// SchoolSettingsUpdatedEvent is published when settings change
type SchoolSettingsUpdatedEvent struct {
	shared.BaseDomainEvent
	AcademicYear string `json:"academic_year"`
	CurrentTerm  string `json:"current_term"`
}

// NewSchoolSettingsUpdatedEvent creates a SchoolSettingsUpdatedEvent
func NewSchoolSettingsUpdatedEvent(s *School) *SchoolSettingsUpdatedEvent {
	return &SchoolSettingsUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSchoolSettingsUpdated, AggregateTypeSchool, s.ID, s.ID),
		AcademicYear:    s.Settings.AcademicYear,
		CurrentTerm:     s.Settings.CurrentTerm,
	}
}

// SchoolDeletedEvent is published after a school has been removed
type SchoolDeletedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
}

// NewSchoolDeletedEvent creates a SchoolDeletedEvent
func NewSchoolDeletedEvent(s *School) *SchoolDeletedEvent {
	return &SchoolDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSchoolDeleted, AggregateTypeSchool, s.ID, s.ID),
		Code:            s.Code,
	}
}
