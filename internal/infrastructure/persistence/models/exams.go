package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/exams"
	"github.com/shopspring/decimal"
)

// ExamModel is the persistence model for the Exam aggregate.
type ExamModel struct {
	TenantAggregateModel
	Name         string           `gorm:"type:varchar(200);not null"`
	ClassID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	SubjectID    uuid.UUID        `gorm:"type:uuid;not null;index"`
	Type         exams.ExamType   `gorm:"type:varchar(20);not null"`
	ExamDate     time.Time        `gorm:"type:date;not null;index"`
	MaxMarks     decimal.Decimal  `gorm:"type:decimal(10,2);not null"`
	PassMarks    decimal.Decimal  `gorm:"type:decimal(10,2);not null"`
	Term         string           `gorm:"type:varchar(50)"`
	AcademicYear string           `gorm:"type:varchar(20)"`
	Status       exams.ExamStatus `gorm:"type:varchar(20);not null;default:'scheduled'"`
}

// TableName returns the table name for GORM
func (ExamModel) TableName() string {
	return "exams"
}

// ToDomain converts the persistence model to a domain Exam.
func (m *ExamModel) ToDomain() *exams.Exam {
	return &exams.Exam{
		TenantAggregateRoot: m.TenantAggregateRoot(),
		ExamDetails: exams.ExamDetails{
			Name:         m.Name,
			ClassID:      m.ClassID,
			SubjectID:    m.SubjectID,
			Type:         m.Type,
			ExamDate:     m.ExamDate,
			MaxMarks:     m.MaxMarks,
			PassMarks:    m.PassMarks,
			Term:         m.Term,
			AcademicYear: m.AcademicYear,
		},
		Status: m.Status,
	}
}

// ExamModelFromDomain creates a new persistence model from a domain Exam.
func ExamModelFromDomain(e *exams.Exam) *ExamModel {
	m := &ExamModel{
		Name:         e.Name,
		ClassID:      e.ClassID,
		SubjectID:    e.SubjectID,
		Type:         e.Type,
		ExamDate:     e.ExamDate,
		MaxMarks:     e.MaxMarks,
		PassMarks:    e.PassMarks,
		Term:         e.Term,
		AcademicYear: e.AcademicYear,
		Status:       e.Status,
	}
	m.FromDomainTenantAggregateRoot(e.TenantAggregateRoot)
	return m
}

// ExamResultModel is the persistence model for an exam Result.
// (exam_id, student_id) is unique.
type ExamResultModel struct {
	TenantAggregateModel
	ExamID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_exam_result_unique,priority:1"`
	StudentID  uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_exam_result_unique,priority:2"`
	Marks      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Percentage decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	Grade      string          `gorm:"type:varchar(10)"`
	Passed     bool            `gorm:"not null;default:false"`
	Remarks    string          `gorm:"type:varchar(500)"`
	RecordedBy *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (ExamResultModel) TableName() string {
	return "exam_results"
}

// ToDomain converts the persistence model to a domain Result.
func (m *ExamResultModel) ToDomain() *exams.Result {
	return &exams.Result{
		TenantAggregateRoot: m.TenantAggregateRoot(),
		ExamID:              m.ExamID,
		StudentID:           m.StudentID,
		Marks:               m.Marks,
		Percentage:          m.Percentage,
		Grade:               m.Grade,
		Passed:              m.Passed,
		Remarks:             m.Remarks,
		RecordedBy:          m.RecordedBy,
	}
}

// ExamResultModelFromDomain creates a new persistence model from a domain Result.
func ExamResultModelFromDomain(r *exams.Result) *ExamResultModel {
	m := &ExamResultModel{
		ExamID:     r.ExamID,
		StudentID:  r.StudentID,
		Marks:      r.Marks,
		Percentage: r.Percentage,
		Grade:      r.Grade,
		Passed:     r.Passed,
		Remarks:    r.Remarks,
		RecordedBy: r.RecordedBy,
	}
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	return m
}
