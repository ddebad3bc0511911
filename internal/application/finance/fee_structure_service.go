package finance

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/academic"
	"github.com/schoolhub/backend/internal/domain/finance"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// FeeStructureService manages the fees a school charges
type FeeStructureService struct {
	feeRepo        finance.FeeStructureRepository
	classRepo      academic.ClassRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewFeeStructureService creates a new fee structure service
func NewFeeStructureService(
	feeRepo finance.FeeStructureRepository,
	classRepo academic.ClassRepository,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *FeeStructureService {
	return &FeeStructureService{
		feeRepo:        feeRepo,
		classRepo:      classRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Create adds a fee structure
func (s *FeeStructureService) Create(ctx context.Context, actor identity.Actor, req FeeStructureRequest) (*FeeStructureResponse, error) {
	if err := s.checkClass(ctx, actor.TenantID, req.ClassID); err != nil {
		return nil, err
	}
	fee, err := finance.NewFeeStructure(actor.TenantID, req.details())
	if err != nil {
		return nil, err
	}
	if req.IsActive != nil && !*req.IsActive {
		if err := fee.Deactivate(); err != nil {
			return nil, err
		}
	}
	fee.SetCreatedBy(actor.UserID)

	if err := s.feeRepo.Save(ctx, fee); err != nil {
		return nil, err
	}
	s.publish(ctx, fee)

	s.logger.Info("Fee structure created",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("fee_structure_id", fee.ID.String()),
		zap.String("amount", fee.Amount.StringFixed(2)))

	resp := ToFeeStructureResponse(fee)
	return &resp, nil
}

// Get returns a fee structure
func (s *FeeStructureService) Get(ctx context.Context, tenantID, id uuid.UUID) (*FeeStructureResponse, error) {
	fee, err := findFeeStructure(ctx, s.feeRepo, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToFeeStructureResponse(fee)
	return &resp, nil
}

// List lists fee structures
func (s *FeeStructureService) List(ctx context.Context, tenantID uuid.UUID, filter FeeStructureListFilter) ([]FeeStructureResponse, int64, error) {
	f := filter.PageQuery.Filter()
	if filter.ClassID != nil {
		f = f.With("class_id", *filter.ClassID)
	}
	if filter.IsActive != nil {
		f = f.With("is_active", *filter.IsActive)
	}

	list, total, err := s.feeRepo.FindAll(ctx, tenantID, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]FeeStructureResponse, len(list))
	for i, fee := range list {
		out[i] = ToFeeStructureResponse(fee)
	}
	return out, total, nil
}

// Update replaces a fee structure's details. Existing invoices keep their amounts.
func (s *FeeStructureService) Update(ctx context.Context, tenantID, id uuid.UUID, req FeeStructureRequest) (*FeeStructureResponse, error) {
	fee, err := findFeeStructure(ctx, s.feeRepo, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkClass(ctx, tenantID, req.ClassID); err != nil {
		return nil, err
	}
	if err := fee.Update(req.details()); err != nil {
		return nil, err
	}
	if req.IsActive != nil && *req.IsActive != fee.IsActive {
		if *req.IsActive {
			err = fee.Activate()
		} else {
			err = fee.Deactivate()
		}
		if err != nil {
			return nil, err
		}
	}
	if err := s.feeRepo.Save(ctx, fee); err != nil {
		return nil, err
	}
	s.publish(ctx, fee)

	resp := ToFeeStructureResponse(fee)
	return &resp, nil
}

// Activate makes a fee structure billable again
func (s *FeeStructureService) Activate(ctx context.Context, tenantID, id uuid.UUID) (*FeeStructureResponse, error) {
	return s.transition(ctx, tenantID, id, "activated", (*finance.FeeStructure).Activate)
}

// Deactivate withdraws a fee structure from billing
func (s *FeeStructureService) Deactivate(ctx context.Context, tenantID, id uuid.UUID) (*FeeStructureResponse, error) {
	return s.transition(ctx, tenantID, id, "deactivated", (*finance.FeeStructure).Deactivate)
}

// Delete removes a fee structure nobody has been billed for
func (s *FeeStructureService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	fee, err := findFeeStructure(ctx, s.feeRepo, tenantID, id)
	if err != nil {
		return err
	}
	count, err := s.feeRepo.CountInvoices(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("IN_USE", "Fee structure has invoices; deactivate it instead")
	}
	if err := s.feeRepo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	fee.AddDomainEvent(finance.NewFeeStructureEvent(finance.EventTypeFeeStructureDeleted, fee))
	s.publish(ctx, fee)

	s.logger.Info("Fee structure deleted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("fee_structure_id", id.String()))
	return nil
}

func (s *FeeStructureService) transition(ctx context.Context, tenantID, id uuid.UUID, what string, fn func(*finance.FeeStructure) error) (*FeeStructureResponse, error) {
	fee, err := findFeeStructure(ctx, s.feeRepo, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := fn(fee); err != nil {
		return nil, err
	}
	if err := s.feeRepo.Save(ctx, fee); err != nil {
		return nil, err
	}
	s.publish(ctx, fee)

	s.logger.Info("Fee structure "+what,
		zap.String("tenant_id", tenantID.String()),
		zap.String("fee_structure_id", id.String()))

	resp := ToFeeStructureResponse(fee)
	return &resp, nil
}

func (s *FeeStructureService) checkClass(ctx context.Context, tenantID uuid.UUID, classID *uuid.UUID) error {
	if classID == nil || *classID == uuid.Nil {
		return nil
	}
	if _, err := s.classRepo.FindByID(ctx, tenantID, *classID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("CLASS_NOT_FOUND", "Class not found")
		}
		return err
	}
	return nil
}

func (s *FeeStructureService) publish(ctx context.Context, fee *finance.FeeStructure) {
	if err := shared.PublishAndClear(ctx, s.eventPublisher, fee); err != nil {
		s.logger.Warn("Failed to publish fee structure events", zap.Error(err))
	}
}

func findFeeStructure(ctx context.Context, repo finance.FeeStructureRepository, tenantID, id uuid.UUID) (*finance.FeeStructure, error) {
	fee, err := repo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("FEE_STRUCTURE_NOT_FOUND", "Fee structure not found")
		}
		return nil, err
	}
	return fee, nil
}
