package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/finance"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/schoolhub/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormFeeStructureRepository implements FeeStructureRepository using GORM
type GormFeeStructureRepository struct {
	db *gorm.DB
}

// NewGormFeeStructureRepository creates a new GormFeeStructureRepository
func NewGormFeeStructureRepository(db *gorm.DB) *GormFeeStructureRepository {
	return &GormFeeStructureRepository{db: db}
}

// Save creates or updates a fee structure
func (r *GormFeeStructureRepository) Save(ctx context.Context, fee *finance.FeeStructure) error {
	return saveVersioned(ctx, r.db, models.FeeStructureModelFromDomain(fee), fee.ID, fee.Version)
}

// Delete deletes a fee structure
func (r *GormFeeStructureRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteResult(r.db.WithContext(ctx).Delete(&models.FeeStructureModel{}, "tenant_id = ? AND id = ?", tenantID, id))
}

// FindByID finds a fee structure within a school
func (r *GormFeeStructureRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*finance.FeeStructure, error) {
	var model models.FeeStructureModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists fee structures matching the filter
func (r *GormFeeStructureRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*finance.FeeStructure, int64, error) {
	var feeModels []*models.FeeStructureModel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.FeeStructureModel{}).Where("tenant_id = ?", tenantID)
	query = applySearch(query, filter.Search, "name", "description")
	for key, value := range filter.Filters {
		switch key {
		case "class_id":
			query = query.Where("class_id = ?", value)
		case "is_active":
			query = query.Where("is_active = ?", value)
		case "academic_year":
			query = query.Where("academic_year = ?", value)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := applyPaging(query, filter, FeeStructureSortFields, "name").Find(&feeModels).Error; err != nil {
		return nil, 0, err
	}

	result := make([]*finance.FeeStructure, len(feeModels))
	for i, model := range feeModels {
		result[i] = model.ToDomain()
	}
	return result, total, nil
}

// CountInvoices counts invoices generated from the fee structure
func (r *GormFeeStructureRepository) CountInvoices(ctx context.Context, tenantID, id uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("tenant_id = ? AND fee_structure_id = ?", tenantID, id).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ finance.FeeStructureRepository = (*GormFeeStructureRepository)(nil)
