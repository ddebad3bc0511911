package exams

import (
	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/school"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Result is one student's mark in one exam
type Result struct {
	shared.TenantAggregateRoot
	ExamID     uuid.UUID
	StudentID  uuid.UUID
	Marks      decimal.Decimal
	Percentage decimal.Decimal
	Grade      string
	Passed     bool
	Remarks    string
	RecordedBy *uuid.UUID
}

// NewResult grades marks against the exam and the school's grading scale
func NewResult(exam *Exam, studentID uuid.UUID, marks decimal.Decimal, remarks string, scale school.GradingScale) (*Result, error) {
	r := &Result{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(exam.TenantID),
		ExamID:              exam.ID,
		StudentID:           studentID,
	}
	if err := r.Regrade(exam, marks, remarks, scale); err != nil {
		return nil, err
	}
	return r, nil
}

// Regrade replaces the marks and recomputes grade and pass flag
func (r *Result) Regrade(exam *Exam, marks decimal.Decimal, remarks string, scale school.GradingScale) error {
	if !exam.CanRecordResults() {
		return shared.NewDomainError("INVALID_STATE", "Results cannot be recorded for a cancelled exam")
	}
	if err := exam.ValidateMarks(marks); err != nil {
		return err
	}
	remarks, err := shared.OptionalText("INVALID_REMARKS", "Remarks", remarks, 500)
	if err != nil {
		return err
	}
	r.Marks = marks
	r.Percentage = exam.Percentage(marks)
	r.Grade = scale.GradeFor(r.Percentage)
	r.Passed = marks.GreaterThanOrEqual(exam.PassMarks)
	r.Remarks = remarks
	r.Touch()
	return nil
}

// SubjectAverage is one line of a report card
type SubjectAverage struct {
	SubjectID   uuid.UUID       `json:"subject_id"`
	SubjectName string          `json:"subject_name"`
	Exams       int             `json:"exams"`
	Average     decimal.Decimal `json:"average_percent"`
	Grade       string          `json:"grade"`
}

// ReportCard summarizes a student's results for a term
type ReportCard struct {
	StudentID      uuid.UUID        `json:"student_id"`
	Term           string           `json:"term"`
	Subjects       []SubjectAverage `json:"subjects"`
	OverallAverage decimal.Decimal  `json:"overall_average"`
	OverallGrade   string           `json:"overall_grade"`
}

// ScoredResult pairs a result with the subject it belongs to
type ScoredResult struct {
	SubjectID   uuid.UUID
	SubjectName string
	Percentage  decimal.Decimal
}

// BuildReportCard averages percentages per subject, then across subjects
func BuildReportCard(studentID uuid.UUID, term string, results []ScoredResult, scale school.GradingScale) ReportCard {
	card := ReportCard{StudentID: studentID, Term: term, Subjects: []SubjectAverage{}}

	order := make([]uuid.UUID, 0)
	sums := make(map[uuid.UUID]decimal.Decimal)
	counts := make(map[uuid.UUID]int)
	names := make(map[uuid.UUID]string)
	for _, r := range results {
		if _, ok := sums[r.SubjectID]; !ok {
			order = append(order, r.SubjectID)
			sums[r.SubjectID] = decimal.Zero
		}
		sums[r.SubjectID] = sums[r.SubjectID].Add(r.Percentage)
		counts[r.SubjectID]++
		names[r.SubjectID] = r.SubjectName
	}

	total := decimal.Zero
	for _, id := range order {
		avg := sums[id].Div(decimal.NewFromInt(int64(counts[id]))).Round(2)
		card.Subjects = append(card.Subjects, SubjectAverage{
			SubjectID:   id,
			SubjectName: names[id],
			Exams:       counts[id],
			Average:     avg,
			Grade:       scale.GradeFor(avg),
		})
		total = total.Add(avg)
	}
	if len(order) > 0 {
		card.OverallAverage = total.Div(decimal.NewFromInt(int64(len(order)))).Round(2)
		card.OverallGrade = scale.GradeFor(card.OverallAverage)
	}
	return card
}
