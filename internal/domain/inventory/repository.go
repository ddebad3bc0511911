package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/shared"
)

// ItemRepository persists inventory items and their movements
type ItemRepository interface {
	Save(ctx context.Context, item *Item) error
	// SaveWithMovement updates the item under a version check and appends the movement atomically
	SaveWithMovement(ctx context.Context, item *Item, movement *Movement) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Item, error)
	// FindAll supports filters: category, low_stock
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*Item, int64, error)
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string, excludeID *uuid.UUID) (bool, error)
	FindMovements(ctx context.Context, tenantID, itemID uuid.UUID, filter shared.Filter) ([]*Movement, int64, error)
}
