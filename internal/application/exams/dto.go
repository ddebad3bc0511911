package exams

import (
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/exams"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ExamRequest creates or replaces an exam
type ExamRequest struct {
	Name         string          `json:"name" binding:"required,notblank,max=200"`
	ClassID      uuid.UUID       `json:"class_id" binding:"required"`
	SubjectID    uuid.UUID       `json:"subject_id" binding:"required"`
	Type         string          `json:"type" binding:"required,oneof=quiz assignment midterm final"`
	ExamDate     *shared.Date    `json:"exam_date" binding:"required"`
	MaxMarks     decimal.Decimal `json:"max_marks"`
	PassMarks    decimal.Decimal `json:"pass_marks"`
	Term         string          `json:"term" binding:"max=50"`
	AcademicYear string          `json:"academic_year" binding:"max=20"`
}

func (r ExamRequest) details() exams.ExamDetails {
	d := exams.ExamDetails{
		Name:         r.Name,
		ClassID:      r.ClassID,
		SubjectID:    r.SubjectID,
		Type:         exams.ExamType(r.Type),
		MaxMarks:     r.MaxMarks,
		PassMarks:    r.PassMarks,
		Term:         r.Term,
		AcademicYear: r.AcademicYear,
	}
	if t := r.ExamDate.TimePtr(); t != nil {
		d.ExamDate = *t
	}
	return d
}

// ExamListFilter narrows exam listings
type ExamListFilter struct {
	shared.PageQuery
	ClassID   *uuid.UUID   `form:"class_id,parser=encoding.TextUnmarshaler"`
	SubjectID *uuid.UUID   `form:"subject_id,parser=encoding.TextUnmarshaler"`
	Status    string       `form:"status" binding:"omitempty,oneof=scheduled completed cancelled"`
	Term      string       `form:"term"`
	From      *shared.Date `form:"from"`
	To        *shared.Date `form:"to"`
}

// ExamResponse is the API view of an exam
type ExamResponse struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	ClassID      uuid.UUID       `json:"class_id"`
	SubjectID    uuid.UUID       `json:"subject_id"`
	Type         string          `json:"type"`
	ExamDate     shared.Date     `json:"exam_date"`
	MaxMarks     decimal.Decimal `json:"max_marks"`
	PassMarks    decimal.Decimal `json:"pass_marks"`
	Term         string          `json:"term,omitempty"`
	AcademicYear string          `json:"academic_year,omitempty"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Version      int             `json:"version"`
}

// ToExamResponse converts an exam
func ToExamResponse(e *exams.Exam) ExamResponse {
	return ExamResponse{
		ID:           e.ID,
		Name:         e.Name,
		ClassID:      e.ClassID,
		SubjectID:    e.SubjectID,
		Type:         string(e.Type),
		ExamDate:     shared.NewDate(e.ExamDate),
		MaxMarks:     e.MaxMarks,
		PassMarks:    e.PassMarks,
		Term:         e.Term,
		AcademicYear: e.AcademicYear,
		Status:       string(e.Status),
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
		Version:      e.Version,
	}
}

// ResultEntry is one student's mark
type ResultEntry struct {
	StudentID uuid.UUID       `json:"student_id" binding:"required"`
	Marks     decimal.Decimal `json:"marks"`
	Remarks   string          `json:"remarks" binding:"max=500"`
}

// RecordResultsRequest enters marks for an exam
type RecordResultsRequest struct {
	Results []ResultEntry `json:"results" binding:"required,min=1,max=500,dive"`
}

// ResultResponse is the API view of a result
type ResultResponse struct {
	ID          uuid.UUID       `json:"id"`
	ExamID      uuid.UUID       `json:"exam_id"`
	ExamName    string          `json:"exam_name,omitempty"`
	StudentID   uuid.UUID       `json:"student_id"`
	StudentName string          `json:"student_name,omitempty"`
	Marks       decimal.Decimal `json:"marks"`
	Percentage  decimal.Decimal `json:"percentage"`
	Grade       string          `json:"grade"`
	Passed      bool            `json:"passed"`
	Remarks     string          `json:"remarks,omitempty"`
	RecordedBy  *uuid.UUID      `json:"recorded_by,omitempty"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToResultResponse converts a result
func ToResultResponse(r *exams.Result) ResultResponse {
	return ResultResponse{
		ID:         r.ID,
		ExamID:     r.ExamID,
		StudentID:  r.StudentID,
		Marks:      r.Marks,
		Percentage: r.Percentage,
		Grade:      r.Grade,
		Passed:     r.Passed,
		Remarks:    r.Remarks,
		RecordedBy: r.RecordedBy,
		UpdatedAt:  r.UpdatedAt,
	}
}

// RecordResultsResponse reports a marks submission
type RecordResultsResponse struct {
	ExamID   uuid.UUID        `json:"exam_id"`
	Recorded int              `json:"recorded"`
	Results  []ResultResponse `json:"results"`
}

// ReportCardResponse is a student's term report
type ReportCardResponse struct {
	exams.ReportCard
	StudentName     string          `json:"student_name"`
	AdmissionNumber string          `json:"admission_number"`
	ClassName       string          `json:"class_name,omitempty"`
	AcademicYear    string          `json:"academic_year"`
	AttendanceRate  decimal.Decimal `json:"attendance_rate"`
}
