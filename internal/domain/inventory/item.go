package inventory

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DefaultUnit is used when an item is created without a unit
const DefaultUnit = "pcs"

// MaxQuantity bounds stored quantities and reorder levels (a Postgres integer)
const MaxQuantity = math.MaxInt32

// ItemDetails carries the editable fields of an inventory item
type ItemDetails struct {
	Name         string
	Category     string
	Unit         string
	ReorderLevel int
	UnitCost     decimal.Decimal
	Location     string
	Supplier     string
	Notes        string
}

// Item is a stocked school asset or consumable (books, chalk, uniforms)
type Item struct {
	shared.TenantAggregateRoot
	Code string
	ItemDetails
	Quantity int
}

// Movement records a single stock adjustment
type Movement struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	ItemID        uuid.UUID
	Delta         int
	QuantityAfter int
	Reason        string
	CreatedBy     *uuid.UUID
	CreatedAt     time.Time
}

// NewItem creates an inventory item with an opening quantity
func NewItem(tenantID uuid.UUID, code string, details ItemDetails, quantity int) (*Item, error) {
	code, err := shared.RequireText("INVALID_CODE", "Code", code, 50)
	if err != nil {
		return nil, err
	}
	if quantity < 0 || quantity > MaxQuantity {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be between 0 and 2147483647")
	}
	details, err = details.normalize()
	if err != nil {
		return nil, err
	}
	item := &Item{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(code),
		ItemDetails:         details,
		Quantity:            quantity,
	}
	item.AddDomainEvent(NewItemEvent(EventTypeItemCreated, item))
	return item, nil
}

// Update replaces the editable fields
func (i *Item) Update(details ItemDetails) error {
	details, err := details.normalize()
	if err != nil {
		return err
	}
	wasLow := i.IsLowStock()
	i.ItemDetails = details
	i.Touch()
	i.AddDomainEvent(NewItemEvent(EventTypeItemUpdated, i))
	if !wasLow && i.IsLowStock() {
		i.AddDomainEvent(NewLowStockEvent(i))
	}
	return nil
}

// AdjustStock applies delta and returns the movement to persist.
// The resulting quantity must stay non-negative. A LowStock event fires when
// the quantity crosses down to or below the reorder level.
func (i *Item) AdjustStock(delta int, reason string, by *uuid.UUID) (*Movement, error) {
	if delta == 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Adjustment cannot be zero")
	}
	reason, err := shared.RequireText("INVALID_REASON", "Reason", reason, 500)
	if err != nil {
		return nil, err
	}
	if delta > MaxQuantity || delta < -MaxQuantity {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Adjustment is out of range")
	}
	next := i.Quantity + delta
	if next < 0 {
		return nil, shared.NewDomainError("INSUFFICIENT_STOCK", "Adjustment would make quantity negative")
	}
	if next > MaxQuantity {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Adjustment would exceed the maximum quantity")
	}

	wasLow := i.IsLowStock()
	i.Quantity = next
	i.Touch()

	m := &Movement{
		ID:            uuid.New(),
		TenantID:      i.TenantID,
		ItemID:        i.ID,
		Delta:         delta,
		QuantityAfter: next,
		Reason:        reason,
		CreatedBy:     by,
		CreatedAt:     time.Now(),
	}
	i.AddDomainEvent(NewStockAdjustedEvent(i, delta))
	if !wasLow && i.IsLowStock() {
		i.AddDomainEvent(NewLowStockEvent(i))
	}
	return m, nil
}

// IsLowStock reports whether quantity is at or below the reorder level.
// Items with a zero reorder level are never low.
func (i *Item) IsLowStock() bool {
	return i.ReorderLevel > 0 && i.Quantity <= i.ReorderLevel
}

// TotalValue returns quantity times unit cost
func (i *Item) TotalValue() decimal.Decimal {
	return i.UnitCost.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (d ItemDetails) normalize() (ItemDetails, error) {
	var err error
	if d.Name, err = shared.RequireText("INVALID_NAME", "Name", d.Name, 200); err != nil {
		return d, err
	}
	if d.Category, err = shared.OptionalText("INVALID_CATEGORY", "Category", d.Category, 100); err != nil {
		return d, err
	}
	d.Unit = strings.TrimSpace(d.Unit)
	if d.Unit == "" {
		d.Unit = DefaultUnit
	}
	if d.ReorderLevel < 0 || d.ReorderLevel > MaxQuantity {
		return d, shared.NewDomainError("INVALID_REORDER_LEVEL", "Reorder level must be between 0 and 2147483647")
	}
	if err = shared.RequireNonNegative("INVALID_UNIT_COST", "Unit cost", d.UnitCost); err != nil {
		return d, err
	}
	if d.Location, err = shared.OptionalText("INVALID_LOCATION", "Location", d.Location, 200); err != nil {
		return d, err
	}
	if d.Supplier, err = shared.OptionalText("INVALID_SUPPLIER", "Supplier", d.Supplier, 200); err != nil {
		return d, err
	}
	if d.Notes, err = shared.OptionalText("INVALID_NOTES", "Notes", d.Notes, 2000); err != nil {
		return d, err
	}
	return d, nil
}
