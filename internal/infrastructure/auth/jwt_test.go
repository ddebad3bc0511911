package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "schoolhub-test",
		MaxRefreshCount:        3,
	})
}

func newTestInput() GenerateTokenInput {
	profileID := uuid.New()
	return GenerateTokenInput{
		TenantID:  uuid.New(),
		UserID:    uuid.New(),
		Username:  "teacher.jane",
		Role:      identity.RoleTeacher,
		ProfileID: &profileID,
	}
}

func TestNewJWTService_UsesSecretForRefreshIfNotProvided(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "test-secret"})
	assert.Equal(t, []byte("test-secret"), svc.refreshSecret)
}

func TestGenerateTokenPair(t *testing.T) {
	svc := newTestJWTService()

	pair, err := svc.GenerateTokenPair(newTestInput())

	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.True(t, pair.RefreshTokenExpiresAt.After(pair.AccessTokenExpiresAt))
}

func TestValidateAccessToken(t *testing.T) {
	svc := newTestJWTService()
	input := newTestInput()
	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)

	t.Run("returns the identity claims", func(t *testing.T) {
		claims, err := svc.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)

		assert.Equal(t, input.TenantID.String(), claims.TenantID)
		assert.Equal(t, input.UserID.String(), claims.UserID)
		assert.Equal(t, "teacher.jane", claims.Username)
		assert.Equal(t, identity.RoleTeacher, claims.GetRole())
		assert.Equal(t, input.ProfileID, claims.GetProfileUUID())
		assert.Equal(t, TokenTypeAccess, claims.TokenType)
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("rejects a refresh token", func(t *testing.T) {
		_, err := svc.ValidateAccessToken(pair.RefreshToken)
		assert.Error(t, err)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := svc.ValidateAccessToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects tokens signed with another secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{
			Secret:                "another-secret-key-at-least-32-chars",
			AccessTokenExpiration: time.Minute,
			Issuer:                "schoolhub-test",
		})
		forged, err := other.GenerateTokenPair(input)
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(forged.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects tokens from another issuer", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{
			Secret:                "test-secret-key-at-least-32-chars",
			AccessTokenExpiration: time.Minute,
			Issuer:                "someone-else",
		})
		foreign, err := other.GenerateTokenPair(input)
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(foreign.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestValidateAccessToken_Expired(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: -time.Minute,
		Issuer:                "schoolhub-test",
	})
	pair, err := svc.GenerateTokenPair(newTestInput())
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateRefreshToken_WrongTokenType(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{
		Secret:                 "shared-secret-key-at-least-32-chars",
		AccessTokenExpiration:  time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "schoolhub-test",
	})
	pair, err := svc.GenerateTokenPair(newTestInput())
	require.NoError(t, err)

	_, err = svc.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidTokenType)
}

func TestRefreshTokenPair(t *testing.T) {
	svc := newTestJWTService()
	input := newTestInput()
	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)

	t.Run("carries the current role", func(t *testing.T) {
		next, err := svc.RefreshTokenPair(pair.RefreshToken, identity.RoleSchoolAdmin, nil)
		require.NoError(t, err)

		claims, err := svc.ValidateAccessToken(next.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, identity.RoleSchoolAdmin, claims.GetRole())
		assert.Nil(t, claims.GetProfileUUID())
		assert.Equal(t, input.UserID.String(), claims.UserID)

		refresh, err := svc.ValidateRefreshToken(next.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, 1, refresh.RefreshCount)
	})

	t.Run("stops at the refresh limit", func(t *testing.T) {
		current := pair.RefreshToken
		for i := 0; i < 3; i++ {
			next, err := svc.RefreshTokenPair(current, identity.RoleTeacher, input.ProfileID)
			require.NoError(t, err)
			current = next.RefreshToken
		}

		_, err := svc.RefreshTokenPair(current, identity.RoleTeacher, input.ProfileID)
		assert.ErrorIs(t, err, ErrMaxRefreshExceeded)
	})

	t.Run("refuses access tokens", func(t *testing.T) {
		_, err := svc.RefreshTokenPair(pair.AccessToken, identity.RoleTeacher, nil)
		assert.Error(t, err)
	})
}

func TestClaims_Helpers(t *testing.T) {
	schoolID := uuid.New()
	claims := &Claims{TenantID: schoolID.String(), UserID: "bad", Role: string(identity.RoleTeacher), ProfileID: "bad"}

	got, err := claims.GetTenantUUID()
	require.NoError(t, err)
	assert.Equal(t, schoolID, got)

	_, err = claims.GetUserUUID()
	assert.Error(t, err)
	assert.Nil(t, claims.GetProfileUUID())

	assert.True(t, claims.HasPermission(identity.PermAttendanceMark))
	assert.False(t, claims.HasPermission("invoices:read"))
	assert.Zero(t, claims.GetRemainingTTL())
	assert.True(t, claims.GetIssuedAtTime().IsZero())
}
