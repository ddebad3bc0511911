package school

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/school"
	"github.com/schoolhub/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SettingsService reads and changes the settings of the caller's school
type SettingsService struct {
	schoolRepo     school.Repository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewSettingsService creates a new settings service
func NewSettingsService(schoolRepo school.Repository, eventPublisher shared.EventPublisher, logger *zap.Logger) *SettingsService {
	return &SettingsService{schoolRepo: schoolRepo, eventPublisher: eventPublisher, logger: logger}
}

// GetSettings returns the school settings
func (s *SettingsService) GetSettings(ctx context.Context, tenantID uuid.UUID) (*SettingsDTO, error) {
	sch, err := s.load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	dto := ToSettingsDTO(sch.Settings)
	return &dto, nil
}

// UpdateSettings replaces the school settings. Empty fields fall back to defaults.
func (s *SettingsService) UpdateSettings(ctx context.Context, tenantID uuid.UUID, req SettingsDTO) (*SettingsDTO, error) {
	sch, err := s.load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if err := sch.UpdateSettings(req.toDomain()); err != nil {
		return nil, err
	}
	if err := s.schoolRepo.Update(ctx, sch); err != nil {
		return nil, err
	}
	if err := shared.PublishAndClear(ctx, s.eventPublisher, sch); err != nil {
		s.logger.Warn("Failed to publish settings events", zap.Error(err))
	}

	s.logger.Info("School settings updated",
		zap.String("tenant_id", tenantID.String()),
		zap.String("academic_year", sch.Settings.AcademicYear),
		zap.String("term", sch.Settings.CurrentTerm))

	dto := ToSettingsDTO(sch.Settings)
	return &dto, nil
}

// Load returns the school itself, used by other services that need its settings
func (s *SettingsService) Load(ctx context.Context, tenantID uuid.UUID) (*school.School, error) {
	return s.load(ctx, tenantID)
}

func (s *SettingsService) load(ctx context.Context, tenantID uuid.UUID) (*school.School, error) {
	sch, err := s.schoolRepo.FindByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("SCHOOL_NOT_FOUND", "School not found")
		}
		return nil, err
	}
	return sch, nil
}
