package exams

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/academic"
	"github.com/schoolhub/backend/internal/domain/exams"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ExamService schedules and manages exams
type ExamService struct {
	examRepo       exams.ExamRepository
	resultRepo     exams.ResultRepository
	classRepo      academic.ClassRepository
	subjectRepo    academic.SubjectRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewExamService creates a new exam service
func NewExamService(
	examRepo exams.ExamRepository,
	resultRepo exams.ResultRepository,
	classRepo academic.ClassRepository,
	subjectRepo academic.SubjectRepository,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *ExamService {
	return &ExamService{
		examRepo:       examRepo,
		resultRepo:     resultRepo,
		classRepo:      classRepo,
		subjectRepo:    subjectRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Create schedules an exam for a class and subject
func (s *ExamService) Create(ctx context.Context, actor identity.Actor, req ExamRequest) (*ExamResponse, error) {
	if err := s.checkRefs(ctx, actor.TenantID, req.ClassID, req.SubjectID); err != nil {
		return nil, err
	}
	exam, err := exams.NewExam(actor.TenantID, req.details())
	if err != nil {
		return nil, err
	}
	exam.SetCreatedBy(actor.UserID)

	if err := s.examRepo.Save(ctx, exam); err != nil {
		return nil, err
	}
	s.publish(ctx, exam)

	s.logger.Info("Exam scheduled",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("exam_id", exam.ID.String()),
		zap.String("class_id", exam.ClassID.String()),
		zap.Time("exam_date", exam.ExamDate))

	resp := ToExamResponse(exam)
	return &resp, nil
}

// Get returns an exam
func (s *ExamService) Get(ctx context.Context, tenantID, id uuid.UUID) (*ExamResponse, error) {
	exam, err := findExam(ctx, s.examRepo, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToExamResponse(exam)
	return &resp, nil
}

// List lists exams
func (s *ExamService) List(ctx context.Context, tenantID uuid.UUID, filter ExamListFilter) ([]ExamResponse, int64, error) {
	f := filter.PageQuery.Filter().
		With("status", filter.Status).
		With("term", filter.Term)
	if filter.ClassID != nil {
		f = f.With("class_id", *filter.ClassID)
	}
	if filter.SubjectID != nil {
		f = f.With("subject_id", *filter.SubjectID)
	}
	if t := filter.From.TimePtr(); t != nil {
		f = f.With("from", *t)
	}
	if t := filter.To.TimePtr(); t != nil {
		f = f.With("to", *t)
	}

	list, total, err := s.examRepo.FindAll(ctx, tenantID, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]ExamResponse, len(list))
	for i, e := range list {
		out[i] = ToExamResponse(e)
	}
	return out, total, nil
}

// Update replaces the exam details
func (s *ExamService) Update(ctx context.Context, tenantID, id uuid.UUID, req ExamRequest) (*ExamResponse, error) {
	exam, err := findExam(ctx, s.examRepo, tenantID, id)
	if err != nil {
		return nil, err
	}
	if req.ClassID != exam.ClassID || req.SubjectID != exam.SubjectID {
		if err := s.checkRefs(ctx, tenantID, req.ClassID, req.SubjectID); err != nil {
			return nil, err
		}
	}
	count, err := s.resultRepo.CountByExam(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := exam.Update(req.details(), count > 0); err != nil {
		return nil, err
	}
	if err := s.examRepo.Save(ctx, exam); err != nil {
		return nil, err
	}
	s.publish(ctx, exam)

	resp := ToExamResponse(exam)
	return &resp, nil
}

// Cancel calls a scheduled exam off
func (s *ExamService) Cancel(ctx context.Context, tenantID, id uuid.UUID) (*ExamResponse, error) {
	return s.transition(ctx, tenantID, id, "cancelled", (*exams.Exam).Cancel)
}

// Complete closes a scheduled exam
func (s *ExamService) Complete(ctx context.Context, tenantID, id uuid.UUID) (*ExamResponse, error) {
	return s.transition(ctx, tenantID, id, "completed", (*exams.Exam).Complete)
}

// Delete removes an exam without results
func (s *ExamService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	exam, err := findExam(ctx, s.examRepo, tenantID, id)
	if err != nil {
		return err
	}
	count, err := s.resultRepo.CountByExam(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("IN_USE", "Exam already has results")
	}
	if err := s.examRepo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	exam.AddDomainEvent(exams.NewExamEvent(exams.EventTypeExamDeleted, exam))
	s.publish(ctx, exam)
	return nil
}

func (s *ExamService) transition(ctx context.Context, tenantID, id uuid.UUID, what string, fn func(*exams.Exam) error) (*ExamResponse, error) {
	exam, err := findExam(ctx, s.examRepo, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := fn(exam); err != nil {
		return nil, err
	}
	if err := s.examRepo.Save(ctx, exam); err != nil {
		return nil, err
	}
	s.publish(ctx, exam)

	s.logger.Info("Exam "+what,
		zap.String("tenant_id", tenantID.String()),
		zap.String("exam_id", id.String()))

	resp := ToExamResponse(exam)
	return &resp, nil
}

// checkRefs verifies the class and subject exist in the school
func (s *ExamService) checkRefs(ctx context.Context, tenantID, classID, subjectID uuid.UUID) error {
	if _, err := s.classRepo.FindByID(ctx, tenantID, classID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("CLASS_NOT_FOUND", "Class not found")
		}
		return err
	}
	if _, err := s.subjectRepo.FindByID(ctx, tenantID, subjectID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("SUBJECT_NOT_FOUND", "Subject not found")
		}
		return err
	}
	return nil
}

func (s *ExamService) publish(ctx context.Context, exam *exams.Exam) {
	if err := shared.PublishAndClear(ctx, s.eventPublisher, exam); err != nil {
		s.logger.Warn("Failed to publish exam events", zap.Error(err))
	}
}

func findExam(ctx context.Context, repo exams.ExamRepository, tenantID, id uuid.UUID) (*exams.Exam, error) {
	exam, err := repo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("EXAM_NOT_FOUND", "Exam not found")
		}
		return nil, err
	}
	return exam, nil
}
