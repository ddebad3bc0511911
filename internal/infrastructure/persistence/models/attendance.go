package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/attendance"
)

// AttendanceRecordModel is the persistence model for an attendance Record.
// (student_id, class_id, date) is unique.
type AttendanceRecordModel struct {
	TenantAggregateModel
	StudentID uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_attendance_unique,priority:1"`
	ClassID   uuid.UUID         `gorm:"type:uuid;not null;index;uniqueIndex:idx_attendance_unique,priority:2"`
	Date      time.Time         `gorm:"type:date;not null;uniqueIndex:idx_attendance_unique,priority:3"`
	Status    attendance.Status `gorm:"type:varchar(10);not null"`
	Remarks   string            `gorm:"type:varchar(500)"`
	MarkedBy  *uuid.UUID        `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (AttendanceRecordModel) TableName() string {
	return "attendance_records"
}

// ToDomain converts the persistence model to a domain Record.
func (m *AttendanceRecordModel) ToDomain() *attendance.Record {
	return &attendance.Record{
		TenantAggregateRoot: m.TenantAggregateRoot(),
		StudentID:           m.StudentID,
		ClassID:             m.ClassID,
		Date:                m.Date,
		Status:              m.Status,
		Remarks:             m.Remarks,
		MarkedBy:            m.MarkedBy,
	}
}

// AttendanceRecordModelFromDomain creates a new persistence model from a domain Record.
func AttendanceRecordModelFromDomain(r *attendance.Record) *AttendanceRecordModel {
	m := &AttendanceRecordModel{
		StudentID: r.StudentID,
		ClassID:   r.ClassID,
		Date:      r.Date,
		Status:    r.Status,
		Remarks:   r.Remarks,
		MarkedBy:  r.MarkedBy,
	}
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	return m
}
