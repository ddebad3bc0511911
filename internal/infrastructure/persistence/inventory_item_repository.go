package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/inventory"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/schoolhub/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInventoryItemRepository implements ItemRepository using GORM
type GormInventoryItemRepository struct {
	db *gorm.DB
}

// NewGormInventoryItemRepository creates a new GormInventoryItemRepository
func NewGormInventoryItemRepository(db *gorm.DB) *GormInventoryItemRepository {
	return &GormInventoryItemRepository{db: db}
}

// Save creates or updates an item
func (r *GormInventoryItemRepository) Save(ctx context.Context, item *inventory.Item) error {
	return saveVersioned(ctx, r.db, models.InventoryItemModelFromDomain(item), item.ID, item.Version)
}

// SaveWithMovement writes the item and its stock movement in one transaction.
// A concurrent adjustment makes the version check fail and nothing is written.
func (r *GormInventoryItemRepository) SaveWithMovement(ctx context.Context, item *inventory.Item, movement *inventory.Movement) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveVersioned(ctx, tx, models.InventoryItemModelFromDomain(item), item.ID, item.Version); err != nil {
			return err
		}
		if movement == nil {
			return nil
		}
		return tx.Create(models.InventoryMovementModelFromDomain(movement)).Error
	})
}

// Delete deletes an item and its movement history
func (r *GormInventoryItemRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ? AND item_id = ?", tenantID, id).Delete(&models.InventoryMovementModel{}).Error; err != nil {
			return err
		}
		return deleteResult(tx.Delete(&models.InventoryItemModel{}, "tenant_id = ? AND id = ?", tenantID, id))
	})
}

// FindByID finds an item within a school
func (r *GormInventoryItemRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Item, error) {
	var model models.InventoryItemModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists items matching the filter
func (r *GormInventoryItemRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*inventory.Item, int64, error) {
	var itemModels []*models.InventoryItemModel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.InventoryItemModel{}).Where("tenant_id = ?", tenantID)
	query = applySearch(query, filter.Search, "code", "name", "supplier")
	for key, value := range filter.Filters {
		switch key {
		case "category":
			query = query.Where("category = ?", value)
		case "low_stock":
			if low, ok := value.(bool); ok && low {
				query = query.Where("reorder_level > 0 AND quantity <= reorder_level")
			}
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := applyPaging(query, filter, InventoryItemSortFields, "name").Find(&itemModels).Error; err != nil {
		return nil, 0, err
	}

	result := make([]*inventory.Item, len(itemModels))
	for i, model := range itemModels {
		result[i] = model.ToDomain()
	}
	return result, total, nil
}

// ExistsByCode checks whether the item code is taken in the school
func (r *GormInventoryItemRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&models.InventoryItemModel{}).
		Where("tenant_id = ? AND code = ?", tenantID, strings.ToUpper(strings.TrimSpace(code)))
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindMovements lists an item's stock movements, newest first
func (r *GormInventoryItemRepository) FindMovements(ctx context.Context, tenantID, itemID uuid.UUID, filter shared.Filter) ([]*inventory.Movement, int64, error) {
	var movementModels []*models.InventoryMovementModel
	var total int64

	query := r.db.WithContext(ctx).
		Model(&models.InventoryMovementModel{}).
		Where("tenant_id = ? AND item_id = ?", tenantID, itemID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&movementModels).Error; err != nil {
		return nil, 0, err
	}

	result := make([]*inventory.Movement, len(movementModels))
	for i, model := range movementModels {
		result[i] = model.ToDomain()
	}
	return result, total, nil
}

var _ inventory.ItemRepository = (*GormInventoryItemRepository)(nil)
