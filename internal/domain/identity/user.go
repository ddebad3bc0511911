package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// UserStatus represents the status of a user
type UserStatus string

const (
	UserStatusPending     UserStatus = "pending"     // Awaiting activation
	UserStatusActive      UserStatus = "active"      // Normal active status
	UserStatusLocked      UserStatus = "locked"      // Locked due to failed attempts
	UserStatusDeactivated UserStatus = "deactivated" // Manually deactivated
)

// PlatformTenantID is the tenant of super admins, who do not belong to a school
var PlatformTenantID = uuid.Nil

// Password cost for bcrypt
const bcryptCost = 12

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	letterRegex   = regexp.MustCompile(`[a-zA-Z]`)
	digitRegex    = regexp.MustCompile(`[0-9]`)
)

// User is an account that can sign in to a school (or the platform, for super admins)
type User struct {
	shared.TenantAggregateRoot
	Username           string
	Email              string
	Phone              string
	PasswordHash       string
	DisplayName        string
	Role               Role
	Status             UserStatus
	ProfileID          *uuid.UUID // student, teacher or guardian record this account belongs to
	LastLoginAt        *time.Time
	LastLoginIP        string
	FailedAttempts     int
	LockedUntil        *time.Time
	PasswordChangedAt  *time.Time
	MustChangePassword bool
}

// NewUser creates a new pending user with the given role
func NewUser(tenantID uuid.UUID, username, password string, role Role) (*User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown role")
	}
	if role == RoleSuperAdmin && tenantID != PlatformTenantID {
		return nil, shared.NewDomainError("INVALID_ROLE", "Super admins cannot belong to a school")
	}
	if role != RoleSuperAdmin && tenantID == PlatformTenantID {
		return nil, shared.NewDomainError("INVALID_ROLE", "School users must belong to a school")
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.WrapDomainError("PASSWORD_HASH_ERROR", "Failed to hash password", err)
	}

	now := time.Now()
	user := &User{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Username:            strings.ToLower(strings.TrimSpace(username)),
		PasswordHash:        passwordHash,
		Role:                role,
		Status:              UserStatusPending,
		PasswordChangedAt:   &now,
	}

	user.AddDomainEvent(NewUserCreatedEvent(user))

	return user, nil
}

// NewActiveUser creates a new user that is immediately active
func NewActiveUser(tenantID uuid.UUID, username, password string, role Role) (*User, error) {
	user, err := NewUser(tenantID, username, password, role)
	if err != nil {
		return nil, err
	}

	user.Status = UserStatusActive
	return user, nil
}

// SetEmail sets the user's email
func (u *User) SetEmail(email string) error {
	email = strings.TrimSpace(email)
	if email != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
		email = strings.ToLower(email)
	}

	u.Email = email
	u.Touch()
	return nil
}

// SetPhone sets the user's phone number
func (u *User) SetPhone(phone string) error {
	phone, err := shared.OptionalText("INVALID_PHONE", "Phone", phone, 50)
	if err != nil {
		return err
	}
	u.Phone = phone
	u.Touch()
	return nil
}

// SetDisplayName sets the user's display name
func (u *User) SetDisplayName(displayName string) error {
	displayName, err := shared.OptionalText("INVALID_DISPLAY_NAME", "Display name", displayName, 200)
	if err != nil {
		return err
	}
	u.DisplayName = displayName
	u.Touch()
	return nil
}

// LinkProfile attaches the student, teacher or guardian record the account represents
func (u *User) LinkProfile(profileID *uuid.UUID) {
	u.ProfileID = profileID
	u.Touch()
}

// ChangeRole moves a school user to another school role
func (u *User) ChangeRole(role Role) error {
	if !role.IsValid() || role == RoleSuperAdmin {
		return shared.NewDomainError("INVALID_ROLE", "Role cannot be assigned to a school user")
	}
	if u.Role == RoleSuperAdmin {
		return shared.NewDomainError("INVALID_ROLE", "Super admin role cannot be changed")
	}
	if u.Role == role {
		return nil
	}
	old := u.Role
	u.Role = role
	u.Touch()
	u.AddDomainEvent(NewUserRoleChangedEvent(u, old))
	return nil
}

// ChangePassword changes the user's password after verifying the current one
func (u *User) ChangePassword(oldPassword, newPassword string) error {
	if !u.VerifyPassword(oldPassword) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}
	if oldPassword == newPassword {
		return shared.NewDomainError("INVALID_PASSWORD", "New password must differ from the current password")
	}

	return u.SetPassword(newPassword)
}

// SetPassword sets a new password (admin reset, no old password check)
func (u *User) SetPassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		return shared.WrapDomainError("PASSWORD_HASH_ERROR", "Failed to hash password", err)
	}

	u.PasswordHash = passwordHash
	now := time.Now()
	u.PasswordChangedAt = &now
	u.MustChangePassword = false
	u.Touch()

	u.AddDomainEvent(NewUserPasswordChangedEvent(u))

	return nil
}

// ForcePasswordChange marks that user must change password on next login
func (u *User) ForcePasswordChange() {
	u.MustChangePassword = true
	u.Touch()
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// Activate activates the user
func (u *User) Activate() error {
	if u.Status == UserStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "User is already active")
	}

	oldStatus := u.Status
	u.Status = UserStatusActive
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.Touch()

	u.AddDomainEvent(NewUserStatusChangedEvent(u, oldStatus))

	return nil
}

// Deactivate deactivates the user
func (u *User) Deactivate() error {
	if u.Status == UserStatusDeactivated {
		return shared.NewDomainError("ALREADY_DEACTIVATED", "User is already deactivated")
	}

	oldStatus := u.Status
	u.Status = UserStatusDeactivated
	u.Touch()

	u.AddDomainEvent(NewUserStatusChangedEvent(u, oldStatus))

	return nil
}

// Lock locks the user account
func (u *User) Lock(duration time.Duration) error {
	if u.Status == UserStatusDeactivated {
		return shared.NewDomainError("USER_DEACTIVATED", "Cannot lock a deactivated user")
	}

	oldStatus := u.Status
	u.Status = UserStatusLocked
	if duration > 0 {
		lockedUntil := time.Now().Add(duration)
		u.LockedUntil = &lockedUntil
	}
	u.Touch()

	u.AddDomainEvent(NewUserStatusChangedEvent(u, oldStatus))

	return nil
}

// Unlock unlocks the user account
func (u *User) Unlock() error {
	if u.Status != UserStatusLocked {
		return shared.NewDomainError("NOT_LOCKED", "User is not locked")
	}

	u.Status = UserStatusActive
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.Touch()

	u.AddDomainEvent(NewUserStatusChangedEvent(u, UserStatusLocked))

	return nil
}

// RecordLoginSuccess records a successful login. An expired lock is lifted.
func (u *User) RecordLoginSuccess(ip string) {
	now := time.Now()
	if u.Status == UserStatusLocked {
		u.Status = UserStatusActive
		u.LockedUntil = nil
	}
	u.LastLoginAt = &now
	u.LastLoginIP = ip
	u.FailedAttempts = 0
	u.Touch()
}

// RecordLoginFailure records a failed login attempt.
// Returns true if the account got locked.
func (u *User) RecordLoginFailure(maxAttempts int, lockDuration time.Duration) bool {
	u.FailedAttempts++
	u.Touch()

	if maxAttempts > 0 && u.FailedAttempts >= maxAttempts {
		_ = u.Lock(lockDuration)
		return true
	}

	return false
}

// IsActive returns true if user is active
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// IsLocked returns true while the lock has not expired
func (u *User) IsLocked() bool {
	if u.Status != UserStatusLocked {
		return false
	}
	if u.LockedUntil != nil && time.Now().After(*u.LockedUntil) {
		return false
	}
	return true
}

// CanLogin returns true if user can login
func (u *User) CanLogin() bool {
	switch u.Status {
	case UserStatusDeactivated, UserStatusPending:
		return false
	}
	return !u.IsLocked()
}

// IsSuperAdmin reports whether the user administers the whole platform
func (u *User) IsSuperAdmin() bool {
	return u.Role == RoleSuperAdmin
}

// GetDisplayNameOrUsername returns display name if set, otherwise username
func (u *User) GetDisplayNameOrUsername() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

func validateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot be empty")
	}
	if len(username) < 3 {
		return shared.NewDomainError("INVALID_USERNAME", "Username must be at least 3 characters")
	}
	if len(username) > 100 {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot exceed 100 characters")
	}
	if !usernameRegex.MatchString(username) {
		return shared.NewDomainError("INVALID_USERNAME", "Username can only contain letters, numbers, underscores, hyphens, and dots")
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	}
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 128 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 128 characters")
	}
	if !letterRegex.MatchString(password) || !digitRegex.MatchString(password) {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}
	return nil
}

func validateEmail(email string) error {
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

// ValidateEmail exposes the user e-mail rule to other contexts (guardians, teachers)
func ValidateEmail(email string) error {
	return validateEmail(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
