package school

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/school"
	"github.com/schoolhub/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SchoolService manages the tenants of the platform. Super admin only.
type SchoolService struct {
	schoolRepo     school.Repository
	userRepo       identity.UserRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewSchoolService creates a new school service
func NewSchoolService(
	schoolRepo school.Repository,
	userRepo identity.UserRepository,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *SchoolService {
	return &SchoolService{
		schoolRepo:     schoolRepo,
		userRepo:       userRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Create creates a school together with its first active school admin
func (s *SchoolService) Create(ctx context.Context, actor identity.Actor, req CreateSchoolRequest) (*CreateSchoolResult, error) {
	sch, err := school.NewSchool(req.Code, req.Name)
	if err != nil {
		return nil, err
	}
	if err := sch.Update(req.Name, req.Address, req.Phone, req.Email); err != nil {
		return nil, err
	}

	exists, err := s.schoolRepo.ExistsByCode(ctx, sch.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "School code already exists")
	}

	admin, err := identity.NewActiveUser(sch.ID, req.Admin.Username, req.Admin.Password, identity.RoleSchoolAdmin)
	if err != nil {
		return nil, err
	}
	if err := admin.SetEmail(req.Admin.Email); err != nil {
		return nil, err
	}
	if err := admin.SetDisplayName(req.Admin.DisplayName); err != nil {
		return nil, err
	}
	admin.SetCreatedBy(actor.UserID)

	if err := s.schoolRepo.Create(ctx, sch); err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		// roll the school back so the code can be reused
		if derr := s.schoolRepo.Delete(ctx, sch.ID); derr != nil {
			s.logger.Error("Failed to remove school after admin creation failed",
				zap.String("school_id", sch.ID.String()), zap.Error(derr))
		}
		return nil, err
	}

	s.publish(ctx, sch)
	if err := shared.PublishAndClear(ctx, s.eventPublisher, admin); err != nil {
		s.logger.Warn("Failed to publish user events", zap.Error(err))
	}

	s.logger.Info("School created",
		zap.String("school_id", sch.ID.String()),
		zap.String("code", sch.Code),
		zap.String("admin_id", admin.ID.String()))

	return &CreateSchoolResult{School: ToSchoolResponse(sch), AdminID: admin.ID}, nil
}

// Get returns a school by id
func (s *SchoolService) Get(ctx context.Context, id uuid.UUID) (*SchoolResponse, error) {
	sch, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToSchoolResponse(sch)
	return &resp, nil
}

// List lists schools
func (s *SchoolService) List(ctx context.Context, filter SchoolListFilter) ([]SchoolResponse, int64, error) {
	f := filter.PageQuery.Filter().With("status", filter.Status)
	schools, total, err := s.schoolRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]SchoolResponse, len(schools))
	for i, sch := range schools {
		out[i] = ToSchoolResponse(sch)
	}
	return out, total, nil
}

// Update changes the school profile
func (s *SchoolService) Update(ctx context.Context, id uuid.UUID, req UpdateSchoolRequest) (*SchoolResponse, error) {
	return s.mutate(ctx, id, func(sch *school.School) error {
		return sch.Update(req.Name, req.Address, req.Phone, req.Email)
	})
}

// Suspend blocks sign-in for the school
func (s *SchoolService) Suspend(ctx context.Context, id uuid.UUID) (*SchoolResponse, error) {
	return s.mutate(ctx, id, (*school.School).Suspend)
}

// Activate re-enables a school
func (s *SchoolService) Activate(ctx context.Context, id uuid.UUID) (*SchoolResponse, error) {
	return s.mutate(ctx, id, (*school.School).Activate)
}

// Delete removes a school that no longer has any users
func (s *SchoolService) Delete(ctx context.Context, id uuid.UUID) error {
	sch, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	users, err := s.userRepo.Count(ctx, id)
	if err != nil {
		return err
	}
	if users > 0 {
		return shared.NewDomainError("IN_USE", "School still has users")
	}
	if err := s.schoolRepo.Delete(ctx, id); err != nil {
		return err
	}
	sch.AddDomainEvent(school.NewSchoolDeletedEvent(sch))
	s.publish(ctx, sch)

	s.logger.Info("School deleted", zap.String("school_id", id.String()))
	return nil
}

func (s *SchoolService) mutate(ctx context.Context, id uuid.UUID, fn func(*school.School) error) (*SchoolResponse, error) {
	sch, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(sch); err != nil {
		return nil, err
	}
	if err := s.schoolRepo.Update(ctx, sch); err != nil {
		return nil, err
	}
	s.publish(ctx, sch)
	resp := ToSchoolResponse(sch)
	return &resp, nil
}

func (s *SchoolService) find(ctx context.Context, id uuid.UUID) (*school.School, error) {
	sch, err := s.schoolRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("SCHOOL_NOT_FOUND", "School not found")
		}
		return nil, err
	}
	return sch, nil
}

func (s *SchoolService) publish(ctx context.Context, sch *school.School) {
	if err := shared.PublishAndClear(ctx, s.eventPublisher, sch); err != nil {
		s.logger.Warn("Failed to publish school events", zap.Error(err))
	}
}
