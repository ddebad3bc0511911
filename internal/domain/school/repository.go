package school

import (
	"context"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/shared"
)

// Repository persists schools
type Repository interface {
	Create(ctx context.Context, school *School) error
	Update(ctx context.Context, school *School) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*School, error)
	FindByCode(ctx context.Context, code string) (*School, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]*School, int64, error)
	// FindActiveIDs lists every active school, used by periodic sweeps
	FindActiveIDs(ctx context.Context) ([]uuid.UUID, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	CountByStatus(ctx context.Context) (map[Status]int64, error)
}
