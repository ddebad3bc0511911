package inventory

import "github.com/schoolhub/backend/internal/domain/shared"

// AggregateTypeItem is the aggregate type for inventory items
const AggregateTypeItem = "InventoryItem"

// Event types
const (
	EventTypeItemCreated   = "inventory.item_created"
	EventTypeItemUpdated   = "inventory.item_updated"
	EventTypeItemDeleted   = "inventory.item_deleted"
	EventTypeStockAdjusted = "inventory.stock_adjusted"
	EventTypeLowStock      = "inventory.low_stock"
)

// ItemEvent is published on item lifecycle changes
type ItemEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
	Name string `json:"name"`
}

// NewItemEvent creates an ItemEvent of the given type
func NewItemEvent(eventType string, i *Item) *ItemEvent {
	return &ItemEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeItem, i.ID, i.TenantID),
		Code:            i.Code,
		Name:            i.Name,
	}
}

// StockAdjustedEvent is published after every stock movement
type StockAdjustedEvent struct {
	shared.BaseDomainEvent
	Delta    int `json:"delta"`
	Quantity int `json:"quantity"`
}

// NewStockAdjustedEvent creates a StockAdjustedEvent
func NewStockAdjustedEvent(i *Item, delta int) *StockAdjustedEvent {
	return &StockAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAdjusted, AggregateTypeItem, i.ID, i.TenantID),
		Delta:           delta,
		Quantity:        i.Quantity,
	}
}

// LowStockEvent is published when an item drops to its reorder level
type LowStockEvent struct {
	shared.BaseDomainEvent
	Code         string `json:"code"`
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	ReorderLevel int    `json:"reorder_level"`
}

// NewLowStockEvent creates a LowStockEvent
func NewLowStockEvent(i *Item) *LowStockEvent {
	return &LowStockEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLowStock, AggregateTypeItem, i.ID, i.TenantID),
		Code:            i.Code,
		Name:            i.Name,
		Quantity:        i.Quantity,
		ReorderLevel:    i.ReorderLevel,
	}
}
