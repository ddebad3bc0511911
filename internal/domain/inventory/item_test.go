package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewItem(t *testing.T) {
	item, err := NewItem(uuid.New(), "chalk-w", ItemDetails{Name: "White chalk", ReorderLevel: 10, UnitCost: decimal.NewFromFloat(0.5)}, 20)
	require.NoError(t, err)
	assert.Equal(t, "CHALK-W", item.Code)
	assert.Equal(t, DefaultUnit, item.Unit)
	assert.False(t, item.IsLowStock())
	assert.True(t, decimal.NewFromInt(10).Equal(item.TotalValue()))

	_, err = NewItem(uuid.New(), "", ItemDetails{Name: "x"}, 0)
	assert.EqualError(t, err, "Code is required")
	_, err = NewItem(uuid.New(), "X", ItemDetails{Name: ""}, 0)
	assert.EqualError(t, err, "Name is required")
	_, err = NewItem(uuid.New(), "X", ItemDetails{Name: "x"}, -1)
	assert.Error(t, err)
	_, err = NewItem(uuid.New(), "X", ItemDetails{Name: "x", UnitCost: decimal.NewFromInt(-1)}, 0)
	assert.EqualError(t, err, "Unit cost must be non-negative")
}

func TestItem_AdjustStock(t *testing.T) {
	by := uuid.New()
	item, err := NewItem(uuid.New(), "BK-1", ItemDetails{Name: "Exercise book", ReorderLevel: 5}, 8)
	require.NoError(t, err)
	item.ClearDomainEvents()

	m, err := item.AdjustStock(-2, "issued to 5B", &by)
	require.NoError(t, err)
	assert.Equal(t, 6, m.QuantityAfter)
	assert.Equal(t, -2, m.Delta)
	assert.Len(t, item.GetDomainEvents(), 1)

	_, err = item.AdjustStock(-1, "issued", &by)
	require.NoError(t, err)
	events := item.GetDomainEvents()
	require.Len(t, events, 3)
	assert.Equal(t, EventTypeLowStock, events[2].EventType())

	_, err = item.AdjustStock(-1, "issued", &by)
	require.NoError(t, err)
	assert.Len(t, item.GetDomainEvents(), 4, "already low, no second alert")

	_, err = item.AdjustStock(-10, "issued", &by)
	assert.Error(t, err)
	assert.Equal(t, 4, item.Quantity)

	_, err = item.AdjustStock(0, "noop", &by)
	assert.Error(t, err)
	_, err = item.AdjustStock(3, " ", &by)
	assert.Error(t, err)
}

func TestItem_QuantityBounds(t *testing.T) {
	_, err := NewItem(uuid.New(), "BK-2", ItemDetails{Name: "Atlas"}, MaxQuantity+1)
	assert.Error(t, err)
	_, err = NewItem(uuid.New(), "BK-2", ItemDetails{Name: "Atlas", ReorderLevel: MaxQuantity + 1}, 1)
	assert.Error(t, err)

	item, err := NewItem(uuid.New(), "BK-2", ItemDetails{Name: "Atlas"}, MaxQuantity-1)
	require.NoError(t, err)

	_, err = item.AdjustStock(2, "donation", nil)
	assert.Error(t, err)
	assert.Equal(t, MaxQuantity-1, item.Quantity)

	_, err = item.AdjustStock(1<<40, "typo", nil)
	assert.Error(t, err)

	m, err := item.AdjustStock(1, "donation", nil)
	require.NoError(t, err)
	assert.Equal(t, MaxQuantity, m.QuantityAfter)
}
