package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence.
// Every lookup is scoped to the given tenant (school, or PlatformTenantID for super admins).
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// Update updates an existing user
	Update(ctx context.Context, user *User) error

	// Delete deletes a user by ID
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	// FindByID finds a user by ID regardless of tenant (token refresh, current user)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByIDForTenant finds a user by ID within a school
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*User, error)

	// FindByUsername finds a user by username within a school
	FindByUsername(ctx context.Context, tenantID uuid.UUID, username string) (*User, error)

	// FindAll returns users of a school matching the filter
	FindAll(ctx context.Context, tenantID uuid.UUID, filter UserFilter) ([]*User, int64, error)

	// FindByRole returns every active user of a school holding the role
	FindByRole(ctx context.Context, tenantID uuid.UUID, role Role) ([]*User, error)

	// FindByIDs returns users of a school by id
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*User, error)

	// ExistsByUsername checks if a username already exists in the school
	ExistsByUsername(ctx context.Context, tenantID uuid.UUID, username string) (bool, error)

	// ExistsByEmail checks if an email already exists in the school
	ExistsByEmail(ctx context.Context, tenantID uuid.UUID, email string) (bool, error)

	// Count returns the number of users in a school
	Count(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// CountByRole returns platform-wide user counts per role
	CountByRole(ctx context.Context) (map[Role]int64, error)
}

// UserFilter contains filter options for querying users
type UserFilter struct {
	// Search keyword for username, email, or display name
	Keyword string

	Role   *Role
	Status *UserStatus

	Page     int
	PageSize int

	SortBy    string
	SortOrder string // "asc" or "desc"
}

// NewUserFilter creates a new UserFilter with default values
func NewUserFilter() UserFilter {
	return UserFilter{
		Page:      1,
		PageSize:  20,
		SortBy:    "created_at",
		SortOrder: "desc",
	}
}
