package exams

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ExamType classifies assessments
type ExamType string

const (
	TypeQuiz       ExamType = "quiz"
	TypeAssignment ExamType = "assignment"
	TypeMidterm    ExamType = "midterm"
	TypeFinal      ExamType = "final"
)

// ParseExamType validates an exam type
func ParseExamType(s string) (ExamType, error) {
	t := ExamType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case TypeQuiz, TypeAssignment, TypeMidterm, TypeFinal:
		return t, nil
	}
	return "", shared.NewDomainError("INVALID_EXAM_TYPE", "Type must be quiz, assignment, midterm or final")
}

// ExamStatus is the lifecycle state of an exam
type ExamStatus string

const (
	StatusScheduled ExamStatus = "scheduled"
	StatusCompleted ExamStatus = "completed"
	StatusCancelled ExamStatus = "cancelled"
)

// ExamDetails carries the editable fields of an exam
type ExamDetails struct {
	Name         string
	ClassID      uuid.UUID
	SubjectID    uuid.UUID
	Type         ExamType
	ExamDate     time.Time
	MaxMarks     decimal.Decimal
	PassMarks    decimal.Decimal
	Term         string
	AcademicYear string
}

// Exam is an assessment of one subject for one class
type Exam struct {
	shared.TenantAggregateRoot
	ExamDetails
	Status ExamStatus
}

// NewExam creates a scheduled exam
func NewExam(tenantID uuid.UUID, details ExamDetails) (*Exam, error) {
	details, err := details.normalize()
	if err != nil {
		return nil, err
	}
	e := &Exam{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ExamDetails:         details,
		Status:              StatusScheduled,
	}
	e.AddDomainEvent(NewExamEvent(EventTypeExamCreated, e))
	return e, nil
}

// Update replaces the editable fields. Cancelled exams are frozen and
// max marks cannot change once results have been recorded.
func (e *Exam) Update(details ExamDetails, hasResults bool) error {
	if e.Status == StatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cancelled exams cannot be edited")
	}
	details, err := details.normalize()
	if err != nil {
		return err
	}
	if hasResults && (!details.MaxMarks.Equal(e.MaxMarks) || details.ClassID != e.ClassID) {
		return shared.NewDomainError("INVALID_STATE", "Max marks and class cannot change once results exist")
	}
	e.ExamDetails = details
	e.Touch()
	e.AddDomainEvent(NewExamEvent(EventTypeExamUpdated, e))
	return nil
}

// Cancel calls the exam off
func (e *Exam) Cancel() error {
	if e.Status != StatusScheduled {
		return shared.NewDomainError("INVALID_STATE", "Only scheduled exams can be cancelled")
	}
	e.Status = StatusCancelled
	e.Touch()
	e.AddDomainEvent(NewExamEvent(EventTypeExamCancelled, e))
	return nil
}

// Complete closes the exam
func (e *Exam) Complete() error {
	if e.Status != StatusScheduled {
		return shared.NewDomainError("INVALID_STATE", "Only scheduled exams can be completed")
	}
	e.Status = StatusCompleted
	e.Touch()
	e.AddDomainEvent(NewExamEvent(EventTypeExamCompleted, e))
	return nil
}

// CanRecordResults reports whether marks may be entered
func (e *Exam) CanRecordResults() bool {
	return e.Status != StatusCancelled
}

// ValidateMarks checks marks are within 0..MaxMarks
func (e *Exam) ValidateMarks(marks decimal.Decimal) error {
	if marks.IsNegative() || marks.GreaterThan(e.MaxMarks) {
		return shared.NewDomainError("INVALID_MARKS", "Marks must be between 0 and "+e.MaxMarks.String())
	}
	return nil
}

// Percentage converts marks to a percentage of MaxMarks rounded to 2 places
func (e *Exam) Percentage(marks decimal.Decimal) decimal.Decimal {
	if !e.MaxMarks.IsPositive() {
		return decimal.Zero
	}
	return marks.Mul(decimal.NewFromInt(100)).Div(e.MaxMarks).Round(2)
}

func (d ExamDetails) normalize() (ExamDetails, error) {
	var err error
	if d.Name, err = shared.RequireText("INVALID_NAME", "Name", d.Name, 200); err != nil {
		return d, err
	}
	if d.ClassID == uuid.Nil || d.SubjectID == uuid.Nil {
		return d, shared.NewDomainError("INVALID_INPUT", "Class and subject are required")
	}
	if d.Type, err = ParseExamType(string(d.Type)); err != nil {
		return d, err
	}
	if d.ExamDate.IsZero() {
		return d, shared.NewDomainError("INVALID_DATE", "Exam date is required")
	}
	d.ExamDate = time.Date(d.ExamDate.Year(), d.ExamDate.Month(), d.ExamDate.Day(), 0, 0, 0, 0, time.UTC)
	if err = shared.RequirePositive("INVALID_MAX_MARKS", "Max marks", d.MaxMarks); err != nil {
		return d, err
	}
	if d.PassMarks.IsNegative() || d.PassMarks.GreaterThan(d.MaxMarks) {
		return d, shared.NewDomainError("INVALID_PASS_MARKS", "Pass marks must be between 0 and max marks")
	}
	if d.Term, err = shared.OptionalText("INVALID_TERM", "Term", d.Term, 50); err != nil {
		return d, err
	}
	if d.AcademicYear, err = shared.OptionalText("INVALID_ACADEMIC_YEAR", "Academic year", d.AcademicYear, 20); err != nil {
		return d, err
	}
	return d, nil
}
