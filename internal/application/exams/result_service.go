package exams

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/academic"
	"github.com/schoolhub/backend/internal/domain/attendance"
	"github.com/schoolhub/backend/internal/domain/exams"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/people"
	"github.com/schoolhub/backend/internal/domain/school"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/schoolhub/backend/internal/infrastructure/printing"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ResultService records marks and builds report cards
type ResultService struct {
	examRepo       exams.ExamRepository
	resultRepo     exams.ResultRepository
	studentRepo    people.StudentRepository
	subjectRepo    academic.SubjectRepository
	classRepo      academic.ClassRepository
	schoolRepo     school.Repository
	attendanceRepo attendance.Repository
	printer        *printing.Printer
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// ResultServiceDeps groups the collaborators of ResultService
type ResultServiceDeps struct {
	ExamRepo       exams.ExamRepository
	ResultRepo     exams.ResultRepository
	StudentRepo    people.StudentRepository
	SubjectRepo    academic.SubjectRepository
	ClassRepo      academic.ClassRepository
	SchoolRepo     school.Repository
	AttendanceRepo attendance.Repository
	// Printer may be nil, in which case PDFs are unavailable
	Printer        *printing.Printer
	EventPublisher shared.EventPublisher
	Logger         *zap.Logger
}

// NewResultService creates a new result service
func NewResultService(deps ResultServiceDeps) *ResultService {
	return &ResultService{
		examRepo:       deps.ExamRepo,
		resultRepo:     deps.ResultRepo,
		studentRepo:    deps.StudentRepo,
		subjectRepo:    deps.SubjectRepo,
		classRepo:      deps.ClassRepo,
		schoolRepo:     deps.SchoolRepo,
		attendanceRepo: deps.AttendanceRepo,
		printer:        deps.Printer,
		eventPublisher: deps.EventPublisher,
		logger:         deps.Logger,
	}
}

// RecordResults upserts marks for an exam. Students must belong to the exam's class.
func (s *ResultService) RecordResults(ctx context.Context, actor identity.Actor, examID uuid.UUID, req RecordResultsRequest) (*RecordResultsResponse, error) {
	exam, err := findExam(ctx, s.examRepo, actor.TenantID, examID)
	if err != nil {
		return nil, err
	}
	if !exam.CanRecordResults() {
		return nil, shared.NewDomainError("INVALID_STATE", "Results cannot be recorded for a cancelled exam")
	}
	if len(req.Results) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "At least one result is required")
	}

	ids := make([]uuid.UUID, 0, len(req.Results))
	seen := make(map[uuid.UUID]bool, len(req.Results))
	for _, e := range req.Results {
		if seen[e.StudentID] {
			return nil, shared.NewDomainError("DUPLICATE_ENTRY",
				fmt.Sprintf("Student %s appears more than once", e.StudentID))
		}
		seen[e.StudentID] = true
		ids = append(ids, e.StudentID)
	}

	students, err := s.studentRepo.FindByIDs(ctx, actor.TenantID, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*people.Student, len(students))
	for _, st := range students {
		byID[st.ID] = st
	}
	for _, id := range ids {
		st, ok := byID[id]
		if !ok || st.ClassID == nil || *st.ClassID != exam.ClassID {
			return nil, shared.NewDomainError("STUDENT_NOT_IN_CLASS",
				fmt.Sprintf("Student %s is not enrolled in the exam's class", id))
		}
	}

	existing, err := s.resultRepo.FindByExamAndStudents(ctx, actor.TenantID, exam.ID, ids)
	if err != nil {
		return nil, err
	}
	current := make(map[uuid.UUID]*exams.Result, len(existing))
	for _, r := range existing {
		current[r.StudentID] = r
	}

	scale := s.gradingScale(ctx, actor.TenantID)
	recordedBy := actor.UserID
	results := make([]*exams.Result, 0, len(req.Results))
	for _, e := range req.Results {
		r, ok := current[e.StudentID]
		if ok {
			err = r.Regrade(exam, e.Marks, e.Remarks, scale)
		} else {
			r, err = exams.NewResult(exam, e.StudentID, e.Marks, e.Remarks, scale)
		}
		if err != nil {
			return nil, err
		}
		r.RecordedBy = &recordedBy
		results = append(results, r)
	}

	if err := s.resultRepo.Upsert(ctx, results); err != nil {
		return nil, err
	}
	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, exams.NewResultsRecordedEvent(exam, len(results))); err != nil {
			s.logger.Warn("Failed to publish result events", zap.Error(err))
		}
	}

	s.logger.Info("Exam results recorded",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("exam_id", exam.ID.String()),
		zap.Int("results", len(results)))

	resp := &RecordResultsResponse{ExamID: exam.ID, Recorded: len(results), Results: make([]ResultResponse, len(results))}
	for i, r := range results {
		resp.Results[i] = ToResultResponse(r)
		resp.Results[i].ExamName = exam.Name
		resp.Results[i].StudentName = byID[r.StudentID].FullName()
	}
	return resp, nil
}

// ListResults returns every result of an exam
func (s *ResultService) ListResults(ctx context.Context, tenantID, examID uuid.UUID) ([]ResultResponse, error) {
	exam, err := findExam(ctx, s.examRepo, tenantID, examID)
	if err != nil {
		return nil, err
	}
	results, err := s.resultRepo.FindByExam(ctx, tenantID, examID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(results))
	for i, r := range results {
		ids[i] = r.StudentID
	}
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) > 0 {
		students, err := s.studentRepo.FindByIDs(ctx, tenantID, ids)
		if err != nil {
			return nil, err
		}
		for _, st := range students {
			names[st.ID] = st.FullName()
		}
	}

	out := make([]ResultResponse, len(results))
	for i, r := range results {
		out[i] = ToResultResponse(r)
		out[i].ExamName = exam.Name
		out[i].StudentName = names[r.StudentID]
	}
	return out, nil
}

// StudentResults returns a student's results, optionally for one term
func (s *ResultService) StudentResults(ctx context.Context, actor identity.Actor, studentID uuid.UUID, term string) ([]ResultResponse, error) {
	student, err := s.visibleStudent(ctx, actor, studentID)
	if err != nil {
		return nil, err
	}
	results, err := s.resultRepo.FindByStudent(ctx, actor.TenantID, student.ID, term)
	if err != nil {
		return nil, err
	}
	examsByID, err := s.examsFor(ctx, actor.TenantID, results)
	if err != nil {
		return nil, err
	}

	out := make([]ResultResponse, len(results))
	for i, r := range results {
		out[i] = ToResultResponse(r)
		out[i].StudentName = student.FullName()
		if e, ok := examsByID[r.ExamID]; ok {
			out[i].ExamName = e.Name
		}
	}
	return out, nil
}

// ReportCard averages a student's results per subject for a term.
// An empty term means the school's current term.
func (s *ResultService) ReportCard(ctx context.Context, actor identity.Actor, studentID uuid.UUID, term string) (*ReportCardResponse, error) {
	card, _, err := s.buildReportCard(ctx, actor, studentID, term)
	return card, err
}

// ReportCardPDF prints the report card
func (s *ResultService) ReportCardPDF(ctx context.Context, actor identity.Actor, studentID uuid.UUID, term string) (*printing.Document, error) {
	if s.printer == nil {
		return nil, printing.ErrPDFUnavailable
	}
	card, sch, err := s.buildReportCard(ctx, actor, studentID, term)
	if err != nil {
		return nil, err
	}

	doc := &printing.ReportCardDocument{
		Student: printing.StudentLine{
			Name:            card.StudentName,
			AdmissionNumber: card.AdmissionNumber,
			ClassName:       card.ClassName,
		},
		AcademicYear:   card.AcademicYear,
		Term:           card.Term,
		OverallAverage: card.OverallAverage,
		OverallGrade:   card.OverallGrade,
		AttendanceRate: card.AttendanceRate,
	}
	if sch != nil {
		doc.School = schoolHeader(sch)
	}
	for _, sub := range card.Subjects {
		doc.Subjects = append(doc.Subjects, printing.SubjectScore{
			Subject:     sub.SubjectName,
			Assessments: sub.Exams,
			Average:     sub.Average,
			Grade:       sub.Grade,
		})
	}

	pdf, err := s.printer.ReportCardPDF(ctx, doc)
	if err != nil {
		s.logger.Error("Failed to print report card", zap.String("student_id", studentID.String()), zap.Error(err))
		return nil, err
	}
	return pdf, nil
}

func (s *ResultService) buildReportCard(ctx context.Context, actor identity.Actor, studentID uuid.UUID, term string) (*ReportCardResponse, *school.School, error) {
	student, err := s.visibleStudent(ctx, actor, studentID)
	if err != nil {
		return nil, nil, err
	}
	sch := s.loadSchool(ctx, actor.TenantID)
	scale := school.DefaultGradingScale()
	resp := &ReportCardResponse{
		StudentName:     student.FullName(),
		AdmissionNumber: student.AdmissionNumber,
	}
	if sch != nil {
		scale = sch.Settings.GradingScale
		resp.AcademicYear = sch.Settings.AcademicYear
		if term == "" {
			term = sch.Settings.CurrentTerm
		}
	}

	results, err := s.resultRepo.FindByStudent(ctx, actor.TenantID, student.ID, term)
	if err != nil {
		return nil, nil, err
	}
	examsByID, err := s.examsFor(ctx, actor.TenantID, results)
	if err != nil {
		return nil, nil, err
	}

	subjectNames := make(map[uuid.UUID]string)
	scored := make([]exams.ScoredResult, 0, len(results))
	for _, r := range results {
		exam, ok := examsByID[r.ExamID]
		if !ok || exam.Status == exams.StatusCancelled {
			continue
		}
		name, ok := subjectNames[exam.SubjectID]
		if !ok {
			name = s.subjectName(ctx, actor.TenantID, exam.SubjectID)
			subjectNames[exam.SubjectID] = name
		}
		scored = append(scored, exams.ScoredResult{
			SubjectID:   exam.SubjectID,
			SubjectName: name,
			Percentage:  r.Percentage,
		})
	}
	resp.ReportCard = exams.BuildReportCard(student.ID, term, scored, scale)

	if student.ClassID != nil {
		if class, err := s.classRepo.FindByID(ctx, actor.TenantID, *student.ClassID); err == nil {
			resp.ClassName = class.DisplayName()
		}
	}
	resp.AttendanceRate = decimal.Zero
	if s.attendanceRepo != nil {
		summary, err := s.attendanceRepo.Summarize(ctx, actor.TenantID, attendance.Query{StudentID: &student.ID})
		if err != nil {
			s.logger.Warn("Failed to summarize attendance for report card", zap.Error(err))
		} else {
			resp.AttendanceRate = summary.Rate()
		}
	}
	return resp, sch, nil
}

func (s *ResultService) visibleStudent(ctx context.Context, actor identity.Actor, studentID uuid.UUID) (*people.Student, error) {
	student, err := s.studentRepo.FindByID(ctx, actor.TenantID, studentID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("STUDENT_NOT_FOUND", "Student not found")
		}
		return nil, err
	}
	if !student.VisibleTo(actor) {
		return nil, shared.NewDomainError("FORBIDDEN", "You cannot view this student's results")
	}
	return student, nil
}

func (s *ResultService) examsFor(ctx context.Context, tenantID uuid.UUID, results []*exams.Result) (map[uuid.UUID]*exams.Exam, error) {
	ids := make([]uuid.UUID, 0, len(results))
	seen := make(map[uuid.UUID]bool, len(results))
	for _, r := range results {
		if !seen[r.ExamID] {
			seen[r.ExamID] = true
			ids = append(ids, r.ExamID)
		}
	}
	out := make(map[uuid.UUID]*exams.Exam, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	list, err := s.examRepo.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	for _, e := range list {
		out[e.ID] = e
	}
	return out, nil
}

func (s *ResultService) subjectName(ctx context.Context, tenantID, id uuid.UUID) string {
	subject, err := s.subjectRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return ""
	}
	return subject.Name
}

func (s *ResultService) loadSchool(ctx context.Context, tenantID uuid.UUID) *school.School {
	sch, err := s.schoolRepo.FindByID(ctx, tenantID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Failed to load school settings", zap.Error(err))
		}
		return nil
	}
	return sch
}

func (s *ResultService) gradingScale(ctx context.Context, tenantID uuid.UUID) school.GradingScale {
	if sch := s.loadSchool(ctx, tenantID); sch != nil && len(sch.Settings.GradingScale) > 0 {
		return sch.Settings.GradingScale
	}
	return school.DefaultGradingScale()
}

func schoolHeader(sch *school.School) printing.SchoolHeader {
	return printing.SchoolHeader{
		Name:    sch.Name,
		Address: sch.Address,
		Phone:   sch.Phone,
		Email:   sch.Email,
	}
}
