package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/inventory"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestItem(t *testing.T, schoolID uuid.UUID, code string, qty, reorder int) *inventory.Item {
	t.Helper()
	item, err := inventory.NewItem(schoolID, code, inventory.ItemDetails{
		Name:         "Exercise book " + code,
		Category:     "stationery",
		Unit:         "pcs",
		ReorderLevel: reorder,
		UnitCost:     decimal.NewFromFloat(1.25),
	}, qty)
	require.NoError(t, err)
	return item
}

func TestGormInventoryItemRepository_SaveWithMovement(t *testing.T) {
	ctx := context.Background()
	repo := NewGormInventoryItemRepository(newSQLiteDB(t))
	schoolID := uuid.New()

	item := newTestItem(t, schoolID, "bk-01", 40, 10)
	require.NoError(t, repo.Save(ctx, item))

	loaded, err := repo.FindByID(ctx, schoolID, item.ID)
	require.NoError(t, err)
	movement, err := loaded.AdjustStock(-35, "issued to grade 7", nil)
	require.NoError(t, err)
	require.NoError(t, repo.SaveWithMovement(ctx, loaded, movement))

	stored, err := repo.FindByID(ctx, schoolID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Quantity)

	movements, total, err := repo.FindMovements(ctx, schoolID, item.ID, defaultTestFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, movements, 1)
	assert.Equal(t, -35, movements[0].Delta)
	assert.Equal(t, 5, movements[0].QuantityAfter)

	f := defaultTestFilter()
	f.Filters["low_stock"] = true
	low, lowTotal, err := repo.FindAll(ctx, schoolID, f)
	require.NoError(t, err)
	assert.Equal(t, int64(1), lowTotal)
	assert.Len(t, low, 1)
}

func TestGormInventoryItemRepository_ConcurrentAdjustment(t *testing.T) {
	ctx := context.Background()
	repo := NewGormInventoryItemRepository(newSQLiteDB(t))
	schoolID := uuid.New()

	item := newTestItem(t, schoolID, "bk-02", 10, 0)
	require.NoError(t, repo.Save(ctx, item))

	a, err := repo.FindByID(ctx, schoolID, item.ID)
	require.NoError(t, err)
	b, err := repo.FindByID(ctx, schoolID, item.ID)
	require.NoError(t, err)

	ma, err := a.AdjustStock(-6, "class 7A", nil)
	require.NoError(t, err)
	require.NoError(t, repo.SaveWithMovement(ctx, a, ma))

	mb, err := b.AdjustStock(-6, "class 7B", nil)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.SaveWithMovement(ctx, b, mb), shared.ErrConcurrencyConflict)

	_, total, err := repo.FindMovements(ctx, schoolID, item.ID, defaultTestFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	stored, err := repo.FindByID(ctx, schoolID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stored.Quantity)
}

func TestGormInventoryItemRepository_ExistsByCode(t *testing.T) {
	ctx := context.Background()
	repo := NewGormInventoryItemRepository(newSQLiteDB(t))
	schoolID := uuid.New()

	item := newTestItem(t, schoolID, "CH-01", 1, 0)
	require.NoError(t, repo.Save(ctx, item))

	exists, err := repo.ExistsByCode(ctx, schoolID, "ch-01", nil)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByCode(ctx, schoolID, "CH-01", &item.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}
