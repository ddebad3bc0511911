package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/inventory"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ItemRequest creates or replaces an inventory item.
// Quantity is only read on create; later changes go through stock adjustments.
type ItemRequest struct {
	Code         string          `json:"code" binding:"required,notblank,max=50"`
	Name         string          `json:"name" binding:"required,notblank,max=200"`
	Category     string          `json:"category" binding:"max=100"`
	Unit         string          `json:"unit" binding:"max=20"`
	Quantity     int             `json:"quantity" binding:"min=0,max=2147483647"`
	ReorderLevel int             `json:"reorder_level" binding:"min=0,max=2147483647"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	Location     string          `json:"location" binding:"max=200"`
	Supplier     string          `json:"supplier" binding:"max=200"`
	Notes        string          `json:"notes" binding:"max=2000"`
}

func (r ItemRequest) details() inventory.ItemDetails {
	return inventory.ItemDetails{
		Name:         r.Name,
		Category:     r.Category,
		Unit:         r.Unit,
		ReorderLevel: r.ReorderLevel,
		UnitCost:     r.UnitCost,
		Location:     r.Location,
		Supplier:     r.Supplier,
		Notes:        r.Notes,
	}
}

// AdjustStockRequest moves stock in (positive delta) or out (negative delta)
type AdjustStockRequest struct {
	Delta  int    `json:"delta" binding:"required,ne=0,min=-2147483647,max=2147483647"`
	Reason string `json:"reason" binding:"required,notblank,max=500"`
}

// ItemListFilter narrows item listings
type ItemListFilter struct {
	shared.PageQuery
	Category string `form:"category"`
	LowStock *bool  `form:"low_stock"`
}

// ItemResponse is the API view of an inventory item
type ItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Category     string          `json:"category,omitempty"`
	Unit         string          `json:"unit"`
	Quantity     int             `json:"quantity"`
	ReorderLevel int             `json:"reorder_level"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	TotalValue   decimal.Decimal `json:"total_value"`
	IsLowStock   bool            `json:"is_low_stock"`
	Location     string          `json:"location,omitempty"`
	Supplier     string          `json:"supplier,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Version      int             `json:"version"`
}

// ToItemResponse converts an item
func ToItemResponse(i *inventory.Item) ItemResponse {
	return ItemResponse{
		ID:           i.ID,
		Code:         i.Code,
		Name:         i.Name,
		Category:     i.Category,
		Unit:         i.Unit,
		Quantity:     i.Quantity,
		ReorderLevel: i.ReorderLevel,
		UnitCost:     i.UnitCost,
		TotalValue:   i.TotalValue(),
		IsLowStock:   i.IsLowStock(),
		Location:     i.Location,
		Supplier:     i.Supplier,
		Notes:        i.Notes,
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
		Version:      i.Version,
	}
}

// MovementResponse is the API view of a stock movement
type MovementResponse struct {
	ID            uuid.UUID  `json:"id"`
	ItemID        uuid.UUID  `json:"item_id"`
	Delta         int        `json:"delta"`
	QuantityAfter int        `json:"quantity_after"`
	Reason        string     `json:"reason"`
	CreatedBy     *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ToMovementResponse converts a movement
func ToMovementResponse(m *inventory.Movement) MovementResponse {
	return MovementResponse{
		ID:            m.ID,
		ItemID:        m.ItemID,
		Delta:         m.Delta,
		QuantityAfter: m.QuantityAfter,
		Reason:        m.Reason,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
	}
}

// AdjustStockResponse returns the item after the adjustment and the movement recorded
type AdjustStockResponse struct {
	Item     ItemResponse     `json:"item"`
	Movement MovementResponse `json:"movement"`
}
