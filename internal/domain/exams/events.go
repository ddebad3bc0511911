package exams

import (
	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/shared"
)

// AggregateTypeExam is the aggregate type for exams
const AggregateTypeExam = "Exam"

// Event types
const (
	EventTypeExamCreated     = "exam.created"
	EventTypeExamUpdated     = "exam.updated"
	EventTypeExamCancelled   = "exam.cancelled"
	EventTypeExamCompleted   = "exam.completed"
	EventTypeExamDeleted     = "exam.deleted"
	EventTypeResultsRecorded = "exam.results_recorded"
)

// ExamEvent is published on exam lifecycle changes
type ExamEvent struct {
	shared.BaseDomainEvent
	ClassID   uuid.UUID  `json:"class_id"`
	SubjectID uuid.UUID  `json:"subject_id"`
	Status    ExamStatus `json:"status"`
}

// NewExamEvent creates an ExamEvent of the given type
func NewExamEvent(eventType string, e *Exam) *ExamEvent {
	return &ExamEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeExam, e.ID, e.TenantID),
		ClassID:         e.ClassID,
		SubjectID:       e.SubjectID,
		Status:          e.Status,
	}
}

// ResultsRecordedEvent is published after marks are entered for an exam
type ResultsRecordedEvent struct {
	shared.BaseDomainEvent
	Count int `json:"count"`
}

// NewResultsRecordedEvent creates a ResultsRecordedEvent
func NewResultsRecordedEvent(e *Exam, count int) *ResultsRecordedEvent {
	return &ResultsRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeResultsRecorded, AggregateTypeExam, e.ID, e.TenantID),
		Count:           count,
	}
}
