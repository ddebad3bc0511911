package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/shared"
)

// LoginInput contains the input for user login.
// An empty school code signs in to the platform (super admins).
type LoginInput struct {
	SchoolCode string `json:"school_code" binding:"omitempty,max=50"`
	Username   string `json:"username" binding:"required,min=3,max=100"`
	Password   string `json:"password" binding:"required,max=128"`
	IP         string `json:"-"`
}

// TokenResult is an issued access/refresh token pair
type TokenResult struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	TokenResult
	User UserInfo `json:"user"`
}

// UserInfo is the signed-in user as shown to the front end
type UserInfo struct {
	ID                 uuid.UUID  `json:"id"`
	TenantID           uuid.UUID  `json:"tenant_id"`
	Username           string     `json:"username"`
	DisplayName        string     `json:"display_name"`
	Email              string     `json:"email"`
	Phone              string     `json:"phone"`
	Role               string     `json:"role"`
	ProfileID          *uuid.UUID `json:"profile_id,omitempty"`
	MustChangePassword bool       `json:"must_change_password"`
	Permissions        []string   `json:"permissions"`
}

// RefreshTokenInput contains the input for token refresh
type RefreshTokenInput struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutInput contains the input for user logout
type LogoutInput struct {
	UserID   uuid.UUID
	TokenJTI string
	TokenTTL time.Duration
}

// ChangePasswordInput contains the input for password change
type ChangePasswordInput struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

// CreateUserRequest creates a school user
type CreateUserRequest struct {
	Username    string     `json:"username" binding:"required,min=3,max=100"`
	Password    string     `json:"password" binding:"required,min=8,max=128"`
	Email       string     `json:"email" binding:"omitempty,email,max=200"`
	Phone       string     `json:"phone" binding:"omitempty,max=50"`
	DisplayName string     `json:"display_name" binding:"omitempty,max=200"`
	Role        string     `json:"role" binding:"required,user_role"`
	ProfileID   *uuid.UUID `json:"profile_id"`
	Activate    bool       `json:"activate"`
}

// UpdateUserRequest changes the editable fields of a user; nil fields are left alone
type UpdateUserRequest struct {
	Email       *string    `json:"email" binding:"omitempty,max=200"`
	Phone       *string    `json:"phone" binding:"omitempty,max=50"`
	DisplayName *string    `json:"display_name" binding:"omitempty,max=200"`
	Role        *string    `json:"role" binding:"omitempty,user_role"`
	ProfileID   *uuid.UUID `json:"profile_id"`
}

// ResetPasswordRequest sets a new password for another user
type ResetPasswordRequest struct {
	NewPassword       string `json:"new_password" binding:"required,min=8,max=128"`
	MustChangeOnLogin bool   `json:"must_change_on_login"`
}

// UserListFilter filters the user list
type UserListFilter struct {
	shared.PageQuery
	Role   string `form:"role" binding:"omitempty,user_role"`
	Status string `form:"status" binding:"omitempty,oneof=pending active locked deactivated"`
}

// UserResponse is a user in API responses
type UserResponse struct {
	ID                 uuid.UUID  `json:"id"`
	TenantID           uuid.UUID  `json:"tenant_id"`
	Username           string     `json:"username"`
	Email              string     `json:"email"`
	Phone              string     `json:"phone"`
	DisplayName        string     `json:"display_name"`
	Role               string     `json:"role"`
	Status             string     `json:"status"`
	ProfileID          *uuid.UUID `json:"profile_id,omitempty"`
	LastLoginAt        *time.Time `json:"last_login_at,omitempty"`
	LockedUntil        *time.Time `json:"locked_until,omitempty"`
	MustChangePassword bool       `json:"must_change_password"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// ToUserResponse converts a domain user
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:                 u.ID,
		TenantID:           u.TenantID,
		Username:           u.Username,
		Email:              u.Email,
		Phone:              u.Phone,
		DisplayName:        u.DisplayName,
		Role:               string(u.Role),
		Status:             string(u.Status),
		ProfileID:          u.ProfileID,
		LastLoginAt:        u.LastLoginAt,
		LockedUntil:        u.LockedUntil,
		MustChangePassword: u.MustChangePassword,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

func toUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:                 u.ID,
		TenantID:           u.TenantID,
		Username:           u.Username,
		DisplayName:        u.GetDisplayNameOrUsername(),
		Email:              u.Email,
		Phone:              u.Phone,
		Role:               string(u.Role),
		ProfileID:          u.ProfileID,
		MustChangePassword: u.MustChangePassword,
		Permissions:        u.Role.Permissions(),
	}
}
