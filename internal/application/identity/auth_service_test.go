package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/school"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/schoolhub/backend/internal/infrastructure/auth"
	"github.com/schoolhub/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testPassword = "Secret123"

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-that-is-long-enough",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "schoolhub-test",
		MaxRefreshCount:        3,
	})
}

func newTestSchool(t *testing.T) *school.School {
	t.Helper()
	s, err := school.NewSchool("GREEN", "Greenfield High")
	require.NoError(t, err)
	return s
}

func newTestUser(t *testing.T, tenantID uuid.UUID, role identity.Role) *identity.User {
	t.Helper()
	u, err := identity.NewActiveUser(tenantID, "jdoe", testPassword, role)
	require.NoError(t, err)
	u.ClearDomainEvents()
	return u
}

type authFixture struct {
	users     *MockUserRepository
	schools   *MockSchoolRepository
	blacklist *auth.InMemoryTokenBlacklist
	jwt       *auth.JWTService
	svc       *AuthService
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:     new(MockUserRepository),
		schools:   new(MockSchoolRepository),
		blacklist: auth.NewInMemoryTokenBlacklist(),
		jwt:       newTestJWTService(),
	}
	f.svc = NewAuthService(f.users, f.schools, f.jwt, f.blacklist, AuthServiceConfig{
		MaxLoginAttempts: 3,
		LockDuration:     15 * time.Minute,
	}, zap.NewNop())
	return f
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("school user signs in with school code", func(t *testing.T) {
		f := newAuthFixture()
		sch := newTestSchool(t)
		user := newTestUser(t, sch.ID, identity.RoleTeacher)

		f.schools.On("FindByCode", ctx, "GREEN").Return(sch, nil)
		f.users.On("FindByUsername", ctx, sch.ID, "jdoe").Return(user, nil)
		f.users.On("Update", ctx, user).Return(nil)

		result, err := f.svc.Login(ctx, LoginInput{SchoolCode: "GREEN", Username: "jdoe", Password: testPassword, IP: "10.0.0.1"})
		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEmpty(t, result.RefreshToken)
		assert.Equal(t, "teacher", result.User.Role)
		assert.Equal(t, sch.ID, result.User.TenantID)
		assert.Contains(t, result.User.Permissions, identity.PermAttendanceMark)
		assert.Equal(t, "10.0.0.1", user.LastLoginIP)

		claims, err := f.jwt.ValidateAccessToken(result.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, sch.ID.String(), claims.TenantID)
		f.users.AssertExpectations(t)
	})

	t.Run("super admin signs in without school code", func(t *testing.T) {
		f := newAuthFixture()
		user := newTestUser(t, identity.PlatformTenantID, identity.RoleSuperAdmin)

		f.users.On("FindByUsername", ctx, identity.PlatformTenantID, "jdoe").Return(user, nil)
		f.users.On("Update", ctx, user).Return(nil)

		result, err := f.svc.Login(ctx, LoginInput{Username: "jdoe", Password: testPassword})
		require.NoError(t, err)
		assert.Equal(t, "super_admin", result.User.Role)
		f.schools.AssertNotCalled(t, "FindByCode", mock.Anything, mock.Anything)
	})

	t.Run("unknown school is reported as invalid credentials", func(t *testing.T) {
		f := newAuthFixture()
		f.schools.On("FindByCode", ctx, "NOPE").Return(nil, shared.ErrNotFound)

		_, err := f.svc.Login(ctx, LoginInput{SchoolCode: "NOPE", Username: "jdoe", Password: testPassword})
		assertDomainCode(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("suspended school cannot sign in", func(t *testing.T) {
		f := newAuthFixture()
		sch := newTestSchool(t)
		require.NoError(t, sch.Suspend())
		f.schools.On("FindByCode", ctx, "GREEN").Return(sch, nil)

		_, err := f.svc.Login(ctx, LoginInput{SchoolCode: "GREEN", Username: "jdoe", Password: testPassword})
		assertDomainCode(t, err, "SCHOOL_INACTIVE")
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newAuthFixture()
		sch := newTestSchool(t)
		f.schools.On("FindByCode", ctx, "GREEN").Return(sch, nil)
		f.users.On("FindByUsername", ctx, sch.ID, "ghost").Return(nil, shared.ErrNotFound)

		_, err := f.svc.Login(ctx, LoginInput{SchoolCode: "GREEN", Username: "ghost", Password: testPassword})
		assertDomainCode(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("wrong password counts a failure and locks at the limit", func(t *testing.T) {
		f := newAuthFixture()
		sch := newTestSchool(t)
		user := newTestUser(t, sch.ID, identity.RoleStudent)
		f.schools.On("FindByCode", ctx, "GREEN").Return(sch, nil)
		f.users.On("FindByUsername", ctx, sch.ID, "jdoe").Return(user, nil)
		f.users.On("Update", ctx, user).Return(nil)

		for i := 0; i < 2; i++ {
			_, err := f.svc.Login(ctx, LoginInput{SchoolCode: "GREEN", Username: "jdoe", Password: "Wrong1234"})
			assertDomainCode(t, err, "INVALID_CREDENTIALS")
		}
		_, err := f.svc.Login(ctx, LoginInput{SchoolCode: "GREEN", Username: "jdoe", Password: "Wrong1234"})
		assertDomainCode(t, err, "ACCOUNT_LOCKED")
		assert.Equal(t, identity.UserStatusLocked, user.Status)

		_, err = f.svc.Login(ctx, LoginInput{SchoolCode: "GREEN", Username: "jdoe", Password: testPassword})
		assertDomainCode(t, err, "ACCOUNT_LOCKED")
	})

	t.Run("deactivated account", func(t *testing.T) {
		f := newAuthFixture()
		sch := newTestSchool(t)
		user := newTestUser(t, sch.ID, identity.RoleParent)
		require.NoError(t, user.Deactivate())
		f.schools.On("FindByCode", ctx, "GREEN").Return(sch, nil)
		f.users.On("FindByUsername", ctx, sch.ID, "jdoe").Return(user, nil)

		_, err := f.svc.Login(ctx, LoginInput{SchoolCode: "GREEN", Username: "jdoe", Password: testPassword})
		assertDomainCode(t, err, "ACCOUNT_DEACTIVATED")
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	sch := newTestSchool(t)
	user := newTestUser(t, sch.ID, identity.RoleTeacher)

	pair, err := f.jwt.GenerateTokenPair(auth.GenerateTokenInput{
		TenantID: sch.ID, UserID: user.ID, Username: user.Username, Role: user.Role,
	})
	require.NoError(t, err)

	t.Run("picks up the current role", func(t *testing.T) {
		require.NoError(t, user.ChangeRole(identity.RoleSchoolAdmin))
		f.users.On("FindByID", ctx, user.ID).Return(user, nil).Once()

		result, err := f.svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: pair.RefreshToken})
		require.NoError(t, err)

		claims, err := f.jwt.ValidateAccessToken(result.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, identity.RoleSchoolAdmin, claims.GetRole())
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := f.svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: "not-a-token"})
		assertDomainCode(t, err, "TOKEN_INVALID")
	})

	t.Run("rejects access tokens", func(t *testing.T) {
		_, err := f.svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: pair.AccessToken})
		assertDomainCode(t, err, "TOKEN_INVALID")
	})

	t.Run("rejects deactivated users", func(t *testing.T) {
		other := newTestUser(t, sch.ID, identity.RoleStudent)
		require.NoError(t, other.Deactivate())
		p, err := f.jwt.GenerateTokenPair(auth.GenerateTokenInput{TenantID: sch.ID, UserID: other.ID, Username: other.Username, Role: other.Role})
		require.NoError(t, err)
		f.users.On("FindByID", ctx, other.ID).Return(other, nil).Once()

		_, err = f.svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: p.RefreshToken})
		assertDomainCode(t, err, "ACCOUNT_INACTIVE")
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	err := f.svc.Logout(ctx, LogoutInput{UserID: uuid.New(), TokenJTI: "jti-1", TokenTTL: time.Minute})
	require.NoError(t, err)

	revoked, err := f.blacklist.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestAuthService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	sch := newTestSchool(t)
	user := newTestUser(t, sch.ID, identity.RoleTeacher)
	issuedAt := time.Now().Add(-time.Minute)

	f.users.On("FindByID", ctx, user.ID).Return(user, nil)
	f.users.On("Update", ctx, user).Return(nil).Once()

	err := f.svc.ChangePassword(ctx, user.ID, ChangePasswordInput{OldPassword: testPassword, NewPassword: "Another456"})
	require.NoError(t, err)
	assert.True(t, user.VerifyPassword("Another456"))

	revoked, err := f.blacklist.IsUserTokenRevoked(ctx, user.ID.String(), issuedAt)
	require.NoError(t, err)
	assert.True(t, revoked)

	err = f.svc.ChangePassword(ctx, user.ID, ChangePasswordInput{OldPassword: "Wrong1234", NewPassword: "Another789"})
	assertDomainCode(t, err, "INVALID_PASSWORD")
	f.users.AssertNumberOfCalls(t, "Update", 1)
}

func TestAuthService_GetCurrentUser(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	id := uuid.New()
	f.users.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

	_, err := f.svc.GetCurrentUser(ctx, id)
	assertDomainCode(t, err, "USER_NOT_FOUND")
}

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), "expected domain error, got %v", err)
	assert.Equal(t, code, de.Code)
}
