package identity

import (
	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/shared"
)

// Actor is the authenticated caller of an operation, taken from the access token
type Actor struct {
	TenantID  uuid.UUID
	UserID    uuid.UUID
	Role      Role
	ProfileID *uuid.UUID
}

// Can reports whether the actor's role grants the permission code
func (a Actor) Can(code string) bool {
	return a.Role.HasPermission(code)
}

// IsSuperAdmin reports whether the actor administers the platform
func (a Actor) IsSuperAdmin() bool {
	return a.Role == RoleSuperAdmin
}

// RequireProfile returns the linked student or teacher record id
func (a Actor) RequireProfile() (uuid.UUID, error) {
	if a.ProfileID == nil || *a.ProfileID == uuid.Nil {
		return uuid.Nil, shared.NewDomainError("PROFILE_NOT_LINKED", "Your account is not linked to a profile")
	}
	return *a.ProfileID, nil
}
