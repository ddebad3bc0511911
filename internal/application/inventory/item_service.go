package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/inventory"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/schoolhub/backend/internal/infrastructure/export"
	"go.uber.org/zap"
)

const openingStockReason = "Opening stock"

// ItemService manages a school's stock of books, uniforms and supplies
type ItemService struct {
	itemRepo       inventory.ItemRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewItemService creates a new inventory item service
func NewItemService(itemRepo inventory.ItemRepository, eventPublisher shared.EventPublisher, logger *zap.Logger) *ItemService {
	return &ItemService{
		itemRepo:       itemRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Create adds an item. A non-zero opening quantity is recorded as the first movement.
func (s *ItemService) Create(ctx context.Context, actor identity.Actor, req ItemRequest) (*ItemResponse, error) {
	if err := s.checkCode(ctx, actor.TenantID, req.Code, nil); err != nil {
		return nil, err
	}
	item, err := inventory.NewItem(actor.TenantID, req.Code, req.details(), 0)
	if err != nil {
		return nil, err
	}
	item.SetCreatedBy(actor.UserID)

	var movement *inventory.Movement
	if req.Quantity > 0 {
		by := actor.UserID
		if movement, err = item.AdjustStock(req.Quantity, openingStockReason, &by); err != nil {
			return nil, err
		}
	}
	if err := s.itemRepo.SaveWithMovement(ctx, item, movement); err != nil {
		return nil, err
	}
	s.publish(ctx, item)

	s.logger.Info("Inventory item created",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("item_id", item.ID.String()),
		zap.String("code", item.Code),
		zap.Int("quantity", item.Quantity))

	resp := ToItemResponse(item)
	return &resp, nil
}

// Get returns an item
func (s *ItemService) Get(ctx context.Context, tenantID, id uuid.UUID) (*ItemResponse, error) {
	item, err := s.find(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToItemResponse(item)
	return &resp, nil
}

// List lists items, optionally only those at or below their reorder level
func (s *ItemService) List(ctx context.Context, tenantID uuid.UUID, filter ItemListFilter) ([]ItemResponse, int64, error) {
	f := filter.PageQuery.Filter().With("category", filter.Category)
	if filter.LowStock != nil && *filter.LowStock {
		f = f.With("low_stock", true)
	}
	items, total, err := s.itemRepo.FindAll(ctx, tenantID, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]ItemResponse, len(items))
	for i, item := range items {
		out[i] = ToItemResponse(item)
	}
	return out, total, nil
}

// Update replaces an item's details. The quantity is left alone.
func (s *ItemService) Update(ctx context.Context, tenantID, id uuid.UUID, req ItemRequest) (*ItemResponse, error) {
	item, err := s.find(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code != item.Code {
		if err := s.checkCode(ctx, tenantID, code, &id); err != nil {
			return nil, err
		}
		item.Code = code
	}
	if err := item.Update(req.details()); err != nil {
		return nil, err
	}
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	s.publish(ctx, item)

	resp := ToItemResponse(item)
	return &resp, nil
}

// Delete removes an item with its movement history
func (s *ItemService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	item, err := s.find(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := s.itemRepo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	item.AddDomainEvent(inventory.NewItemEvent(inventory.EventTypeItemDeleted, item))
	s.publish(ctx, item)

	s.logger.Info("Inventory item deleted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("code", item.Code))
	return nil
}

// AdjustStock applies a signed quantity change and records the movement.
// A concurrent adjustment of the same item fails with a concurrency conflict.
func (s *ItemService) AdjustStock(ctx context.Context, actor identity.Actor, id uuid.UUID, req AdjustStockRequest) (*AdjustStockResponse, error) {
	item, err := s.find(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	by := actor.UserID
	movement, err := item.AdjustStock(req.Delta, req.Reason, &by)
	if err != nil {
		return nil, err
	}
	if err := s.itemRepo.SaveWithMovement(ctx, item, movement); err != nil {
		return nil, err
	}
	low := item.IsLowStock()
	s.publish(ctx, item)

	s.logger.Info("Stock adjusted",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("code", item.Code),
		zap.Int("delta", req.Delta),
		zap.Int("quantity", item.Quantity),
		zap.Bool("low_stock", low))

	return &AdjustStockResponse{Item: ToItemResponse(item), Movement: ToMovementResponse(movement)}, nil
}

// ListMovements returns an item's stock history, newest first
func (s *ItemService) ListMovements(ctx context.Context, tenantID, id uuid.UUID, page shared.PageQuery) ([]MovementResponse, int64, error) {
	if _, err := s.find(ctx, tenantID, id); err != nil {
		return nil, 0, err
	}
	movements, total, err := s.itemRepo.FindMovements(ctx, tenantID, id, page.Filter())
	if err != nil {
		return nil, 0, err
	}
	out := make([]MovementResponse, len(movements))
	for i, m := range movements {
		out[i] = ToMovementResponse(m)
	}
	return out, total, nil
}

// Export writes the items matching the filter to an xlsx workbook
func (s *ItemService) Export(ctx context.Context, tenantID uuid.UUID, filter ItemListFilter) ([]byte, string, error) {
	sheet, err := s.ExportSheet(ctx, tenantID, filter)
	if err != nil {
		return nil, "", err
	}
	data, err := export.Workbook(sheet)
	if err != nil {
		return nil, "", err
	}
	return data, export.FileName("inventory", time.Now()), nil
}

// ExportSheet builds the stock sheet, walking every page of the filter
func (s *ItemService) ExportSheet(ctx context.Context, tenantID uuid.UUID, filter ItemListFilter) (*export.Sheet, error) {
	sheet := &export.Sheet{
		Name: "Inventory",
		Columns: []export.Column{
			{Header: "Code", Width: 14},
			{Header: "Name", Width: 30},
			{Header: "Category", Width: 16},
			{Header: "Unit", Width: 8},
			{Header: "Quantity", Width: 10},
			{Header: "Reorder Level", Width: 14},
			{Header: "Unit Cost", Width: 12},
			{Header: "Total Value", Width: 14},
			{Header: "Location", Width: 18},
			{Header: "Supplier", Width: 22},
		},
	}
	filter.Page, filter.PageSize = 1, shared.MaxPageSize
	for {
		items, total, err := s.List(ctx, tenantID, filter)
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			sheet.AddRow(it.Code, it.Name, it.Category, it.Unit, it.Quantity, it.ReorderLevel,
				it.UnitCost, it.TotalValue, it.Location, it.Supplier)
		}
		if len(items) < filter.PageSize || int64(filter.Page*filter.PageSize) >= total {
			break
		}
		filter.Page++
	}
	return sheet, nil
}

func (s *ItemService) checkCode(ctx context.Context, tenantID uuid.UUID, code string, excludeID *uuid.UUID) error {
	exists, err := s.itemRepo.ExistsByCode(ctx, tenantID, strings.ToUpper(strings.TrimSpace(code)), excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS", "An item with this code already exists")
	}
	return nil
}

func (s *ItemService) find(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Item, error) {
	item, err := s.itemRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("ITEM_NOT_FOUND", "Inventory item not found")
		}
		return nil, err
	}
	return item, nil
}

func (s *ItemService) publish(ctx context.Context, item *inventory.Item) {
	if err := shared.PublishAndClear(ctx, s.eventPublisher, item); err != nil {
		s.logger.Warn("Failed to publish inventory events", zap.Error(err))
	}
}
