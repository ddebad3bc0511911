package attendance

import (
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/shared"
)

// AggregateTypeAttendance is the aggregate type for attendance records
const AggregateTypeAttendance = "Attendance"

// Event types
const (
	EventTypeAttendanceMarked  = "attendance.marked"
	EventTypeAttendanceUpdated = "attendance.updated"
	EventTypeAttendanceDeleted = "attendance.deleted"
)

// MarkedEvent is published once per class register submission
type MarkedEvent struct {
	shared.BaseDomainEvent
	Date    time.Time `json:"date"`
	Records int       `json:"records"`
}

// NewMarkedEvent creates a MarkedEvent keyed by the class
func NewMarkedEvent(tenantID, classID uuid.UUID, date time.Time, records int) *MarkedEvent {
	return &MarkedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAttendanceMarked, AggregateTypeAttendance, classID, tenantID),
		Date:            date,
		Records:         records,
	}
}

// RecordChangedEvent is published when a single record is edited or removed
type RecordChangedEvent struct {
	shared.BaseDomainEvent
	StudentID uuid.UUID `json:"student_id"`
	Status    Status    `json:"status"`
}

// NewRecordChangedEvent creates a RecordChangedEvent
func NewRecordChangedEvent(eventType string, r *Record) *RecordChangedEvent {
	return &RecordChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeAttendance, r.ID, r.TenantID),
		StudentID:       r.StudentID,
		Status:          r.Status,
	}
}
