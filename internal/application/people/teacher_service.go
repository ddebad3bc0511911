package people

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

// TeacherService manages teaching staff
type TeacherService struct {
	teacherRepo    people.TeacherRepository
	classRepo      academic.ClassRepository
	userRepo       identity.UserRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewTeacherService creates a new teacher service
func NewTeacherService(
	teacherRepo people.TeacherRepository,
	classRepo academic.ClassRepository,
	userRepo identity.UserRepository,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *TeacherService {
	return &TeacherService{
		teacherRepo:    teacherRepo,
		classRepo:      classRepo,
		userRepo:       userRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Create adds a teacher
func (s *TeacherService) Create(ctx context.Context, actor identity.Actor, req CreateTeacherRequest) (*TeacherResponse, error) {
	exists, err := s.teacherRepo.ExistsByEmployeeNumber(ctx, actor.TenantID, req.EmployeeNumber, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Employee number already exists")
	}

	teacher, err := people.NewTeacher(actor.TenantID, req.EmployeeNumber, req.TeacherProfileDTO.toDomain())
	if err != nil {
		return nil, err
	}
	teacher.SetCreatedBy(actor.UserID)
	if err := s.linkUser(ctx, teacher, req.UserID); err != nil {
		return nil, err
	}

	if err := s.teacherRepo.Save(ctx, teacher); err != nil {
		return nil, err
	}
	s.syncUser(ctx, teacher)
	s.publish(ctx, teacher)

	s.logger.Info("Teacher created",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("teacher_id", teacher.ID.String()))

	resp := ToTeacherResponse(teacher)
	return &resp, nil
}

// Get returns a teacher
func (s *TeacherService) Get(ctx context.Context, tenantID, id uuid.UUID) (*TeacherResponse, error) {
	teacher, err := s.find(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToTeacherResponse(teacher)
	return &resp, nil
}

// List lists teachers
func (s *TeacherService) List(ctx context.Context, tenantID uuid.UUID, filter TeacherListFilter) ([]TeacherResponse, int64, error) {
	f := filter.PageQuery.Filter().With("status", filter.Status)
	teachers, total, err := s.teacherRepo.FindAll(ctx, tenantID, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]TeacherResponse, len(teachers))
	for i, t := range teachers {
		out[i] = ToTeacherResponse(t)
	}
	return out, total, nil
}

// Update replaces the teacher profile
func (s *TeacherService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateTeacherRequest) (*TeacherResponse, error) {
	teacher, err := s.find(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := teacher.UpdateProfile(req.TeacherProfileDTO.toDomain()); err != nil {
		return nil, err
	}
	if err := s.linkUser(ctx, teacher, req.UserID); err != nil {
		return nil, err
	}
	if err := s.teacherRepo.Save(ctx, teacher); err != nil {
		return nil, err
	}
	s.syncUser(ctx, teacher)
	s.publish(ctx, teacher)

	resp := ToTeacherResponse(teacher)
	return &resp, nil
}

// ChangeStatus changes the employment state
func (s *TeacherService) ChangeStatus(ctx context.Context, tenantID, id uuid.UUID, req ChangeTeacherStatusRequest) (*TeacherResponse, error) {
	teacher, err := s.find(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := teacher.ChangeStatus(people.TeacherStatus(req.Status)); err != nil {
		return nil, err
	}
	if err := s.teacherRepo.Save(ctx, teacher); err != nil {
		return nil, err
	}
	s.publish(ctx, teacher)

	resp := ToTeacherResponse(teacher)
	return &resp, nil
}

// Delete removes a teacher who is not the homeroom teacher of any class
func (s *TeacherService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	teacher, err := s.find(ctx, tenantID, id)
	if err != nil {
		return err
	}
	homerooms, err := s.classRepo.CountByTeacher(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if homerooms > 0 {
		return shared.NewDomainError("IN_USE", "Teacher is still the homeroom teacher of a class")
	}
	if err := s.teacherRepo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	teacher.AddDomainEvent(people.NewTeacherDeletedEvent(teacher))
	s.publish(ctx, teacher)

	s.logger.Info("Teacher deleted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("teacher_id", id.String()))
	return nil
}

// Exists reports whether the teacher belongs to the school
func (s *TeacherService) Exists(ctx context.Context, tenantID, id uuid.UUID) error {
	_, err := s.find(ctx, tenantID, id)
	return err
}

func (s *TeacherService) linkUser(ctx context.Context, teacher *people.Teacher, userID *uuid.UUID) error {
	if userID == nil {
		teacher.LinkUser(nil)
		return nil
	}
	user, err := s.userRepo.FindByIDForTenant(ctx, teacher.TenantID, *userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("USER_NOT_FOUND", "Linked user not found")
		}
		return err
	}
	if user.Role != identity.RoleTeacher && user.Role != identity.RoleSchoolAdmin {
		return shared.NewDomainError("INVALID_USER_ROLE", "Linked user must be a teacher or school admin")
	}
	teacher.LinkUser(userID)
	return nil
}

// syncUser points the teacher's login at the teacher record
func (s *TeacherService) syncUser(ctx context.Context, teacher *people.Teacher) {
	if teacher.UserID == nil {
		return
	}
	user, err := s.userRepo.FindByIDForTenant(ctx, teacher.TenantID, *teacher.UserID)
	if err != nil {
		s.logger.Warn("Failed to load teacher user", zap.Error(err))
		return
	}
	if user.ProfileID != nil && *user.ProfileID == teacher.ID {
		return
	}
	id := teacher.ID
	user.LinkProfile(&id)
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Warn("Failed to link teacher user profile", zap.Error(err))
	}
}

func (s *TeacherService) find(ctx context.Context, tenantID, id uuid.UUID) (*people.Teacher, error) {
	teacher, err := s.teacherRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("TEACHER_NOT_FOUND", "Teacher not found")
		}
		return nil, err
	}
	return teacher, nil
}

func (s *TeacherService) publish(ctx context.Context, teacher *people.Teacher) {
	if err := shared.PublishAndClear(ctx, s.eventPublisher, teacher); err != nil {
		s.logger.Warn("Failed to publish teacher events", zap.Error(err))
	}
}
