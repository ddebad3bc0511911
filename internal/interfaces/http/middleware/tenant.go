package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/school"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/schoolhub/backend/internal/infrastructure/logger"
	"github.com/schoolhub/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Tenant context keys
const (
	TenantIDKey   = "tenant_id"
	TenantCodeKey = "tenant_code"
)

// ErrSchoolInactive is returned by a TenantValidator for suspended or inactive schools
var ErrSchoolInactive = errors.New("school is not active")

// TenantInfo holds the resolved school
type TenantInfo struct {
	ID   uuid.UUID `json:"id"`
	Code string    `json:"code"`
}

// TenantValidator checks that a school exists and may be used
type TenantValidator interface {
	ValidateTenant(ctx context.Context, tenantID uuid.UUID) (*TenantInfo, error)
}

// TenantMiddlewareConfig holds configuration for tenant middleware
type TenantMiddlewareConfig struct {
	// SkipPaths are paths that don't require tenant context (e.g., health check)
	SkipPaths []string
	// SkipPathPrefixes are path prefixes that don't require tenant context
	SkipPathPrefixes []string
	// AllowOverride lets super admins pick a school with the X-School-ID header
	AllowOverride bool
	// Validator is an optional check that the school exists and is active
	Validator TenantValidator
	Logger    *zap.Logger
}

// DefaultTenantConfig returns default tenant middleware configuration
func DefaultTenantConfig() TenantMiddlewareConfig {
	return TenantMiddlewareConfig{
		SkipPaths:        []string{"/health", "/api/v1/health", "/api/v1/auth/login", "/api/v1/auth/refresh"},
		SkipPathPrefixes: []string{"/swagger"},
		AllowOverride:    true,
	}
}

// TenantMiddleware resolves the school from JWT claims
func TenantMiddleware() gin.HandlerFunc {
	return TenantMiddlewareWithConfig(DefaultTenantConfig())
}

// TenantMiddlewareWithConfig resolves the school the request acts in. The JWT
// tenant is authoritative; super admins may switch school with X-School-ID.
// The result is stored in gin.Context and in the request context, where the
// GORM tenant scope reads it.
func TenantMiddlewareWithConfig(cfg TenantMiddlewareConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		claims := GetJWTClaims(c)
		if claims == nil {
			abortWithError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}

		tenantID, err := claims.GetTenantUUID()
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, dto.ErrCodeTokenInvalid, "Invalid school in token")
			return
		}

		if header := strings.TrimSpace(c.GetHeader(SchoolIDHeader)); header != "" {
			override, err := uuid.Parse(header)
			if err != nil {
				abortWithError(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "X-School-ID must be a valid UUID")
				return
			}
			if override != tenantID {
				if !cfg.AllowOverride || claims.GetRole() != identity.RoleSuperAdmin {
					abortWithError(c, http.StatusForbidden, dto.ErrCodeForbidden, "Only super admins may act in another school")
					return
				}
				tenantID = override
			}
		}

		var info *TenantInfo
		if tenantID != identity.PlatformTenantID && cfg.Validator != nil {
			info, err = cfg.Validator.ValidateTenant(c.Request.Context(), tenantID)
			if err != nil {
				log.Warn("Tenant validation failed",
					zap.String("tenant_id", tenantID.String()),
					zap.Error(err))
				respondTenantError(c, err)
				return
			}
		}

		c.Set(TenantIDKey, tenantID.String())
		if info != nil {
			c.Set(TenantCodeKey, info.Code)
		}
		c.Request = c.Request.WithContext(logger.WithTenantID(c.Request.Context(), tenantID.String()))

		c.Next()
	}
}

func respondTenantError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrSchoolInactive):
		abortWithError(c, http.StatusForbidden, "ERR_SCHOOL_INACTIVE", "School is suspended or inactive")
	case errors.Is(err, shared.ErrNotFound):
		abortWithError(c, http.StatusNotFound, "ERR_SCHOOL_NOT_FOUND", "School not found")
	default:
		abortWithError(c, http.StatusInternalServerError, dto.ErrCodeInternal, "Failed to resolve school")
	}
}

// SchoolFinder loads a school by ID
type SchoolFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*school.School, error)
}

// SchoolValidator is the TenantValidator backed by the school repository
type SchoolValidator struct {
	finder SchoolFinder
}

// NewSchoolValidator creates a SchoolValidator
func NewSchoolValidator(finder SchoolFinder) *SchoolValidator {
	return &SchoolValidator{finder: finder}
}

// ValidateTenant rejects unknown, suspended and inactive schools
func (v *SchoolValidator) ValidateTenant(ctx context.Context, tenantID uuid.UUID) (*TenantInfo, error) {
	s, err := v.finder.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !s.IsActive() {
		return nil, ErrSchoolInactive
	}
	return &TenantInfo{ID: s.ID, Code: s.Code}, nil
}

// GetTenantID retrieves the tenant ID from gin.Context
func GetTenantID(c *gin.Context) string {
	return c.GetString(TenantIDKey)
}

// GetTenantUUID retrieves the tenant ID as UUID from gin.Context
func GetTenantUUID(c *gin.Context) (uuid.UUID, error) {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return uuid.Nil, errors.New("tenant_id not found in context")
	}
	return uuid.Parse(tenantID)
}

// GetTenantCode retrieves the school code set by a TenantValidator
func GetTenantCode(c *gin.Context) string {
	return c.GetString(TenantCodeKey)
}

// GetActor builds the calling identity passed to application services
func GetActor(c *gin.Context) (identity.Actor, bool) {
	claims := GetJWTClaims(c)
	if claims == nil {
		return identity.Actor{}, false
	}
	userID, err := claims.GetUserUUID()
	if err != nil {
		return identity.Actor{}, false
	}
	tenantID, err := GetTenantUUID(c)
	if err != nil {
		if tenantID, err = claims.GetTenantUUID(); err != nil {
			return identity.Actor{}, false
		}
	}
	return identity.Actor{
		TenantID:  tenantID,
		UserID:    userID,
		Role:      claims.GetRole(),
		ProfileID: claims.GetProfileUUID(),
	}, true
}
