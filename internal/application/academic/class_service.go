package academic

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/academic"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/people"
	"github.com/schoolhub/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ClassService manages classes
type ClassService struct {
	classRepo      academic.ClassRepository
	studentRepo    people.StudentRepository
	teacherRepo    people.TeacherRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewClassService creates a new class service
func NewClassService(
	classRepo academic.ClassRepository,
	studentRepo people.StudentRepository,
	teacherRepo people.TeacherRepository,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *ClassService {
	return &ClassService{
		classRepo:      classRepo,
		studentRepo:    studentRepo,
		teacherRepo:    teacherRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Create creates a class
func (s *ClassService) Create(ctx context.Context, actor identity.Actor, req ClassRequest) (*ClassResponse, error) {
	class, err := academic.NewClass(actor.TenantID, req.details())
	if err != nil {
		return nil, err
	}
	if req.IsActive != nil {
		class.SetActive(*req.IsActive)
	}
	class.SetCreatedBy(actor.UserID)

	if err := s.classRepo.Save(ctx, class); err != nil {
		return nil, err
	}
	s.publish(ctx, class)

	s.logger.Info("Class created",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("class_id", class.ID.String()),
		zap.String("name", class.DisplayName()))

	resp := ToClassResponse(class)
	return &resp, nil
}

// Get returns a class with its current enrollment
func (s *ClassService) Get(ctx context.Context, tenantID, id uuid.UUID) (*ClassResponse, error) {
	class, err := s.find(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	count, err := s.studentRepo.CountByClass(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToClassResponse(class)
	resp.StudentCount = &count
	return &resp, nil
}

// List lists classes
func (s *ClassService) List(ctx context.Context, tenantID uuid.UUID, filter ClassListFilter) ([]ClassResponse, int64, error) {
	f := filter.PageQuery.Filter().With("academic_year", filter.AcademicYear)
	if filter.GradeLevel > 0 {
		f = f.With("grade_level", filter.GradeLevel)
	}
	if filter.TeacherID != nil {
		f = f.With("teacher_id", *filter.TeacherID)
	}
	if filter.IsActive != nil {
		f = f.With("is_active", *filter.IsActive)
	}
	classes, total, err := s.classRepo.FindAll(ctx, tenantID, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]ClassResponse, len(classes))
	for i, c := range classes {
		out[i] = ToClassResponse(c)
	}
	return out, total, nil
}

// ListForTeacher returns the classes a teacher is homeroom teacher of
func (s *ClassService) ListForTeacher(ctx context.Context, tenantID, teacherID uuid.UUID) ([]ClassResponse, error) {
	classes, err := s.classRepo.FindByTeacher(ctx, tenantID, teacherID)
	if err != nil {
		return nil, err
	}
	out := make([]ClassResponse, len(classes))
	for i, c := range classes {
		out[i] = ToClassResponse(c)
	}
	return out, nil
}

// Update replaces the class details. Capacity may not drop below the enrollment.
func (s *ClassService) Update(ctx context.Context, tenantID, id uuid.UUID, req ClassRequest) (*ClassResponse, error) {
	class, err := s.find(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	enrolled, err := s.studentRepo.CountByClass(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := class.Update(req.details(), enrolled); err != nil {
		return nil, err
	}
	if req.IsActive != nil {
		class.SetActive(*req.IsActive)
	}
	if err := s.classRepo.Save(ctx, class); err != nil {
		return nil, err
	}
	s.publish(ctx, class)

	resp := ToClassResponse(class)
	resp.StudentCount = &enrolled
	return &resp, nil
}

// AssignTeacher sets or clears the homeroom teacher
func (s *ClassService) AssignTeacher(ctx context.Context, tenantID, id uuid.UUID, req AssignTeacherRequest) (*ClassResponse, error) {
	class, err := s.find(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if req.TeacherID != nil {
		teacher, err := s.teacherRepo.FindByID(ctx, tenantID, *req.TeacherID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("TEACHER_NOT_FOUND", "Teacher not found")
			}
			return nil, err
		}
		if teacher.Status != people.TeacherStatusActive {
			return nil, shared.NewDomainError("TEACHER_INACTIVE", "Only active teachers can be assigned")
		}
	}
	class.AssignTeacher(req.TeacherID)
	if err := s.classRepo.Save(ctx, class); err != nil {
		return nil, err
	}
	s.publish(ctx, class)

	resp := ToClassResponse(class)
	return &resp, nil
}

// Delete removes a class without enrolled students
func (s *ClassService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	class, err := s.find(ctx, tenantID, id)
	if err != nil {
		return err
	}
	enrolled, err := s.studentRepo.CountByClass(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if enrolled > 0 {
		return shared.NewDomainError("IN_USE", "Class still has enrolled students")
	}
	if err := s.classRepo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	class.AddDomainEvent(academic.NewClassDeletedEvent(class))
	s.publish(ctx, class)

	s.logger.Info("Class deleted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("class_id", id.String()))
	return nil
}

func (s *ClassService) find(ctx context.Context, tenantID, id uuid.UUID) (*academic.Class, error) {
	class, err := s.classRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("CLASS_NOT_FOUND", "Class not found")
		}
		return nil, err
	}
	return class, nil
}

func (s *ClassService) publish(ctx context.Context, class *academic.Class) {
	if err := shared.PublishAndClear(ctx, s.eventPublisher, class); err != nil {
		s.logger.Warn("Failed to publish class events", zap.Error(err))
	}
}
