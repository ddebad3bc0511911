package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/school"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/schoolhub/backend/internal/infrastructure/auth"
	"github.com/schoolhub/backend/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSchoolFinder struct {
	mock.Mock
}

func (m *mockSchoolFinder) FindByID(ctx context.Context, id uuid.UUID) (*school.School, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*school.School), args.Error(1)
}

func newTenantRouter(t *testing.T, cfg TenantMiddlewareConfig) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	jwtService := newTestJWTService()
	router := gin.New()
	router.Use(JWTAuthMiddleware(jwtService), TenantMiddlewareWithConfig(cfg))
	return router, jwtService
}

func tokenFor(t *testing.T, jwtService *auth.JWTService, tenantID uuid.UUID, role identity.Role) string {
	t.Helper()
	pair, err := jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		TenantID: tenantID,
		UserID:   uuid.New(),
		Username: "user",
		Role:     role,
	})
	require.NoError(t, err)
	return "Bearer " + pair.AccessToken
}

func doTenantRequest(router *gin.Engine, token, schoolHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", token)
	if schoolHeader != "" {
		req.Header.Set(SchoolIDHeader, schoolHeader)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestTenantMiddleware_FromClaims(t *testing.T) {
	router, jwtService := newTenantRouter(t, DefaultTenantConfig())
	schoolID := uuid.New()

	var captured string
	var ctxTenant string
	router.GET("/test", func(c *gin.Context) {
		captured = GetTenantID(c)
		ctxTenant = logger.GetTenantID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	rec := doTenantRequest(router, tokenFor(t, jwtService, schoolID, identity.RoleTeacher), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, schoolID.String(), captured)
	assert.Equal(t, schoolID.String(), ctxTenant)
}

func TestTenantMiddleware_SchoolHeader(t *testing.T) {
	own := uuid.New()
	other := uuid.New()

	tests := []struct {
		name       string
		tenant     uuid.UUID
		role       identity.Role
		header     string
		wantStatus int
		wantTenant string
	}{
		{"super admin switches school", identity.PlatformTenantID, identity.RoleSuperAdmin, other.String(), http.StatusOK, other.String()},
		{"super admin without header stays on platform", identity.PlatformTenantID, identity.RoleSuperAdmin, "", http.StatusOK, uuid.Nil.String()},
		{"school admin naming own school", own, identity.RoleSchoolAdmin, own.String(), http.StatusOK, own.String()},
		{"school admin naming other school", own, identity.RoleSchoolAdmin, other.String(), http.StatusForbidden, ""},
		{"malformed header", own, identity.RoleSuperAdmin, "not-a-uuid", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, jwtService := newTenantRouter(t, DefaultTenantConfig())
			var captured string
			router.GET("/test", func(c *gin.Context) {
				captured = GetTenantID(c)
				c.Status(http.StatusOK)
			})

			rec := doTenantRequest(router, tokenFor(t, jwtService, tt.tenant, tt.role), tt.header)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantTenant, captured)
		})
	}
}

func TestTenantMiddleware_OverrideDisabled(t *testing.T) {
	cfg := DefaultTenantConfig()
	cfg.AllowOverride = false
	router, jwtService := newTenantRouter(t, cfg)
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := doTenantRequest(router, tokenFor(t, jwtService, identity.PlatformTenantID, identity.RoleSuperAdmin), uuid.New().String())
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTenantMiddleware_WithSchoolValidator(t *testing.T) {
	active, err := school.NewSchool("GREEN", "Greenfield High")
	require.NoError(t, err)
	suspended, err := school.NewSchool("OAK", "Oakridge")
	require.NoError(t, err)
	require.NoError(t, suspended.Suspend())
	missing := uuid.New()

	finder := new(mockSchoolFinder)
	finder.On("FindByID", mock.Anything, active.ID).Return(active, nil)
	finder.On("FindByID", mock.Anything, suspended.ID).Return(suspended, nil)
	finder.On("FindByID", mock.Anything, missing).Return(nil, shared.ErrNotFound)

	cfg := DefaultTenantConfig()
	cfg.Validator = NewSchoolValidator(finder)
	router, jwtService := newTenantRouter(t, cfg)

	var code string
	router.GET("/test", func(c *gin.Context) {
		code = GetTenantCode(c)
		c.Status(http.StatusOK)
	})

	t.Run("active school", func(t *testing.T) {
		rec := doTenantRequest(router, tokenFor(t, jwtService, active.ID, identity.RoleTeacher), "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "GREEN", code)
	})

	t.Run("suspended school", func(t *testing.T) {
		rec := doTenantRequest(router, tokenFor(t, jwtService, suspended.ID, identity.RoleTeacher), "")
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "ERR_SCHOOL_INACTIVE")
	})

	t.Run("unknown school", func(t *testing.T) {
		rec := doTenantRequest(router, tokenFor(t, jwtService, missing, identity.RoleTeacher), "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("platform tenant skips validation", func(t *testing.T) {
		rec := doTenantRequest(router, tokenFor(t, jwtService, identity.PlatformTenantID, identity.RoleSuperAdmin), "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	finder.AssertNotCalled(t, "FindByID", mock.Anything, identity.PlatformTenantID)
}

func TestTenantMiddleware_ValidatorError(t *testing.T) {
	finder := new(mockSchoolFinder)
	finder.On("FindByID", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	cfg := DefaultTenantConfig()
	cfg.Validator = NewSchoolValidator(finder)
	router, jwtService := newTenantRouter(t, cfg)
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := doTenantRequest(router, tokenFor(t, jwtService, uuid.New(), identity.RoleTeacher), "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestTenantMiddleware_RequiresClaims(t *testing.T) {
	router := gin.New()
	router.Use(TenantMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetActor(t *testing.T) {
	jwtService := newTestJWTService()
	schoolID := uuid.New()
	userID := uuid.New()
	profileID := uuid.New()
	pair, err := jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		TenantID:  schoolID,
		UserID:    userID,
		Username:  "student1",
		Role:      identity.RoleStudent,
		ProfileID: &profileID,
	})
	require.NoError(t, err)

	router := gin.New()
	router.Use(JWTAuthMiddleware(jwtService), TenantMiddleware())

	var actor identity.Actor
	var ok bool
	router.GET("/test", func(c *gin.Context) {
		actor, ok = GetActor(c)
		c.Status(http.StatusOK)
	})

	doTenantRequest(router, "Bearer "+pair.AccessToken, "")

	require.True(t, ok)
	assert.Equal(t, schoolID, actor.TenantID)
	assert.Equal(t, userID, actor.UserID)
	assert.Equal(t, identity.RoleStudent, actor.Role)
	require.NotNil(t, actor.ProfileID)
	assert.Equal(t, profileID, *actor.ProfileID)
}

func TestGetActor_NoClaims(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := GetActor(c)
	assert.False(t, ok)

	_, err := GetTenantUUID(c)
	assert.Error(t, err)
}
