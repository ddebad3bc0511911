package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// InventoryItemModel is the persistence model for an inventory Item.
type InventoryItemModel struct {
	TenantAggregateModel
	Code         string          `gorm:"type:varchar(50);not null"`
	Name         string          `gorm:"type:varchar(200);not null"`
	Category     string          `gorm:"type:varchar(100);index"`
	Unit         string          `gorm:"type:varchar(20);not null;default:'pcs'"`
	Quantity     int             `gorm:"not null;default:0"`
	ReorderLevel int             `gorm:"not null;default:0"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Location     string          `gorm:"type:varchar(200)"`
	Supplier     string          `gorm:"type:varchar(200)"`
	Notes        string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (InventoryItemModel) TableName() string {
	return "inventory_items"
}

// ToDomain converts the persistence model to a domain Item.
func (m *InventoryItemModel) ToDomain() *inventory.Item {
	return &inventory.Item{
		TenantAggregateRoot: m.TenantAggregateRoot(),
		Code:                m.Code,
		ItemDetails: inventory.ItemDetails{
			Name:         m.Name,
			Category:     m.Category,
			Unit:         m.Unit,
			ReorderLevel: m.ReorderLevel,
			UnitCost:     m.UnitCost,
			Location:     m.Location,
			Supplier:     m.Supplier,
			Notes:        m.Notes,
		},
		Quantity: m.Quantity,
	}
}

// InventoryItemModelFromDomain creates a new persistence model from a domain Item.
func InventoryItemModelFromDomain(it *inventory.Item) *InventoryItemModel {
	m := &InventoryItemModel{
		Code:         it.Code,
		Name:         it.Name,
		Category:     it.Category,
		Unit:         it.Unit,
		Quantity:     it.Quantity,
		ReorderLevel: it.ReorderLevel,
		UnitCost:     it.UnitCost,
		Location:     it.Location,
		Supplier:     it.Supplier,
		Notes:        it.Notes,
	}
	m.FromDomainTenantAggregateRoot(it.TenantAggregateRoot)
	return m
}

// InventoryMovementModel is an append-only stock adjustment.
type InventoryMovementModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key"`
	TenantID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	ItemID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	Delta         int        `gorm:"not null"`
	QuantityAfter int        `gorm:"not null"`
	Reason        string     `gorm:"type:varchar(500)"`
	CreatedBy     *uuid.UUID `gorm:"type:uuid"`
	CreatedAt     time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InventoryMovementModel) TableName() string {
	return "inventory_movements"
}

// ToDomain converts the persistence model to a domain Movement.
func (m *InventoryMovementModel) ToDomain() *inventory.Movement {
	return &inventory.Movement{
		ID:            m.ID,
		TenantID:      m.TenantID,
		ItemID:        m.ItemID,
		Delta:         m.Delta,
		QuantityAfter: m.QuantityAfter,
		Reason:        m.Reason,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
	}
}

// InventoryMovementModelFromDomain creates a new persistence model from a domain Movement.
func InventoryMovementModelFromDomain(mv *inventory.Movement) *InventoryMovementModel {
	return &InventoryMovementModel{
		ID:            mv.ID,
		TenantID:      mv.TenantID,
		ItemID:        mv.ItemID,
		Delta:         mv.Delta,
		QuantityAfter: mv.QuantityAfter,
		Reason:        mv.Reason,
		CreatedBy:     mv.CreatedBy,
		CreatedAt:     mv.CreatedAt,
	}
}
