package identity

import (
	"github.com/schoolhub/backend/internal/domain/shared"
)

// Aggregate type constant for User
const AggregateTypeUser = "User"

// User domain event types
const (
	EventTypeUserCreated         = "user.created"
	EventTypeUserPasswordChanged = "user.password_changed"
	EventTypeUserStatusChanged   = "user.status_changed"
	EventTypeUserRoleChanged     = "user.role_changed"
	EventTypeUserDeleted         = "user.deleted"
)

// UserCreatedEvent is published when a user is created
type UserCreatedEvent struct {
	shared.BaseDomainEvent
	Username string     `json:"username"`
	Role     Role       `json:"role"`
	Status   UserStatus `json:"status"`
}

// NewUserCreatedEvent creates a new UserCreatedEvent
func NewUserCreatedEvent(user *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserCreated, AggregateTypeUser, user.ID, user.TenantID),
		Username:        user.Username,
		Role:            user.Role,
		Status:          user.Status,
	}
}

// UserPasswordChangedEvent is published when a user's password is changed
type UserPasswordChangedEvent struct {
	shared.BaseDomainEvent
	Username string `json:"username"`
}

// NewUserPasswordChangedEvent creates a new UserPasswordChangedEvent
func NewUserPasswordChangedEvent(user *User) *UserPasswordChangedEvent {
	return &UserPasswordChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserPasswordChanged, AggregateTypeUser, user.ID, user.TenantID),
		Username:        user.Username,
	}
}

// UserStatusChangedEvent is published on activation, deactivation, lock and unlock
type UserStatusChangedEvent struct {
	shared.BaseDomainEvent
	OldStatus UserStatus `json:"old_status"`
	NewStatus UserStatus `json:"new_status"`
}

// NewUserStatusChangedEvent creates a new UserStatusChangedEvent
func NewUserStatusChangedEvent(user *User, oldStatus UserStatus) *UserStatusChangedEvent {
	return &UserStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserStatusChanged, AggregateTypeUser, user.ID, user.TenantID),
		OldStatus:       oldStatus,
		NewStatus:       user.Status,
	}
}

// UserRoleChangedEvent is published when a school user changes role
type UserRoleChangedEvent struct {
	shared.BaseDomainEvent
	OldRole Role `json:"old_role"`
	NewRole Role `json:"new_role"`
}

// NewUserRoleChangedEvent creates a new UserRoleChangedEvent
func NewUserRoleChangedEvent(user *User, oldRole Role) *UserRoleChangedEvent {
	return &UserRoleChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRoleChanged, AggregateTypeUser, user.ID, user.TenantID),
		OldRole:         oldRole,
		NewRole:         user.Role,
	}
}

// UserDeletedEvent is published after a user has been removed
type UserDeletedEvent struct {
	shared.BaseDomainEvent
	Username string `json:"username"`
}

// NewUserDeletedEvent creates a new UserDeletedEvent
func NewUserDeletedEvent(user *User) *UserDeletedEvent {
	return &UserDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserDeleted, AggregateTypeUser, user.ID, user.TenantID),
		Username:        user.Username,
	}
}
