package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	TenantAggregateModel
	Username           string              `gorm:"type:varchar(100);not null"`
	Email              string              `gorm:"type:varchar(200)"`
	Phone              string              `gorm:"type:varchar(50)"`
	PasswordHash       string              `gorm:"type:varchar(255);not null"`
	DisplayName        string              `gorm:"type:varchar(200)"`
	Role               identity.Role       `gorm:"type:varchar(20);not null;index"`
	Status             identity.UserStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	ProfileID          *uuid.UUID          `gorm:"type:uuid"`
	LastLoginAt        *time.Time
	LastLoginIP        string `gorm:"type:varchar(45)"`
	FailedAttempts     int    `gorm:"not null;default:0"`
	LockedUntil        *time.Time
	PasswordChangedAt  *time.Time
	MustChangePassword bool `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		TenantAggregateRoot: m.TenantAggregateRoot(),
		Username:            m.Username,
		Email:               m.Email,
		Phone:               m.Phone,
		PasswordHash:        m.PasswordHash,
		DisplayName:         m.DisplayName,
		Role:                m.Role,
		Status:              m.Status,
		ProfileID:           m.ProfileID,
		LastLoginAt:         m.LastLoginAt,
		LastLoginIP:         m.LastLoginIP,
		FailedAttempts:      m.FailedAttempts,
		LockedUntil:         m.LockedUntil,
		PasswordChangedAt:   m.PasswordChangedAt,
		MustChangePassword:  m.MustChangePassword,
	}
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainTenantAggregateRoot(u.TenantAggregateRoot)
	m.Username = u.Username
	m.Email = u.Email
	m.Phone = u.Phone
	m.PasswordHash = u.PasswordHash
	m.DisplayName = u.DisplayName
	m.Role = u.Role
	m.Status = u.Status
	m.ProfileID = u.ProfileID
	m.LastLoginAt = u.LastLoginAt
	m.LastLoginIP = u.LastLoginIP
	m.FailedAttempts = u.FailedAttempts
	m.LockedUntil = u.LockedUntil
	m.PasswordChangedAt = u.PasswordChangedAt
	m.MustChangePassword = u.MustChangePassword
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
