package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/infrastructure/auth"
	"github.com/schoolhub/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// PermissionConfig holds configuration for permission middleware
type PermissionConfig struct {
	Logger *zap.Logger
	// OnDenied replaces the default 403 response when set
	OnDenied func(c *gin.Context, requiredPerms []string)
}

// RequirePermission creates middleware that requires a specific permission
func RequirePermission(permission string) gin.HandlerFunc {
	return RequireAnyPermission(permission)
}

// RequirePermissionWithConfig creates middleware with custom config
func RequirePermissionWithConfig(permission string, cfg PermissionConfig) gin.HandlerFunc {
	return RequireAnyPermissionWithConfig(cfg, permission)
}

// RequireAnyPermission passes when the caller's role grants at least one of the permissions
func RequireAnyPermission(permissions ...string) gin.HandlerFunc {
	return RequireAnyPermissionWithConfig(PermissionConfig{}, permissions...)
}

// RequireAnyPermissionWithConfig is RequireAnyPermission with custom config
func RequireAnyPermissionWithConfig(cfg PermissionConfig, permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			handlePermissionDenied(c, cfg, permissions, "No authentication claims found")
			return
		}

		if !hasAny(claims, permissions) {
			handlePermissionDenied(c, cfg, permissions, "Role lacks required permission")
			return
		}

		if cfg.Logger != nil {
			cfg.Logger.Debug("Permission check passed",
				zap.String("user_id", claims.UserID),
				zap.String("role", claims.Role),
				zap.Strings("required_any", permissions))
		}
		c.Next()
	}
}

// RequireResource checks resource:action where the action follows the HTTP method:
// GET -> read, POST -> create, PUT/PATCH -> update, DELETE -> delete
func RequireResource(resource string) gin.HandlerFunc {
	return RequireResourceWithConfig(resource, PermissionConfig{})
}

// RequireResourceWithConfig creates middleware with custom config
func RequireResourceWithConfig(resource string, cfg PermissionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		permission := resource + ":" + methodToAction(c.Request.Method)

		claims := GetJWTClaims(c)
		if claims == nil {
			handlePermissionDenied(c, cfg, []string{permission}, "No authentication claims found")
			return
		}

		if !claims.HasPermission(permission) {
			handlePermissionDenied(c, cfg, []string{permission}, "Role lacks required permission for resource")
			return
		}
		c.Next()
	}
}

// RequireRole passes only for the listed roles
func RequireRole(roles ...identity.Role) gin.HandlerFunc {
	return RequireCustomPermission(func(claims *auth.Claims, _ *gin.Context) bool {
		role := claims.GetRole()
		for _, r := range roles {
			if r == role {
				return true
			}
		}
		return false
	})
}

func methodToAction(method string) string {
	switch strings.ToUpper(method) {
	case http.MethodPost:
		return identity.ActionCreate
	case http.MethodPut, http.MethodPatch:
		return identity.ActionUpdate
	case http.MethodDelete:
		return identity.ActionDelete
	default:
		return identity.ActionRead
	}
}

func hasAny(claims *auth.Claims, permissions []string) bool {
	for _, p := range permissions {
		if claims.HasPermission(p) {
			return true
		}
	}
	return false
}

func handlePermissionDenied(c *gin.Context, cfg PermissionConfig, requiredPerms []string, reason string) {
	if cfg.OnDenied != nil {
		cfg.OnDenied(c, requiredPerms)
		c.Abort()
		return
	}

	if cfg.Logger != nil {
		cfg.Logger.Warn("Permission denied",
			zap.String("reason", reason),
			zap.String("user_id", GetJWTUserID(c)),
			zap.String("role", GetJWTRole(c)),
			zap.Strings("required_permissions", requiredPerms),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method))
	}

	abortWithError(c, http.StatusForbidden, dto.ErrCodeForbidden, "Access denied: insufficient permissions")
}

// HasPermission checks a permission from inside a handler
func HasPermission(c *gin.Context, permission string) bool {
	claims := GetJWTClaims(c)
	if claims == nil {
		return false
	}
	return claims.HasPermission(permission)
}

// CheckPermissionFunc is a function type for custom permission checking
type CheckPermissionFunc func(claims *auth.Claims, c *gin.Context) bool

// RequireCustomPermission creates middleware with a custom permission check function
func RequireCustomPermission(checkFunc CheckPermissionFunc) gin.HandlerFunc {
	return RequireCustomPermissionWithConfig(checkFunc, PermissionConfig{})
}

// RequireCustomPermissionWithConfig creates custom permission middleware with config
func RequireCustomPermissionWithConfig(checkFunc CheckPermissionFunc, cfg PermissionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			handlePermissionDenied(c, cfg, []string{"custom"}, "No authentication claims found")
			return
		}

		if !checkFunc(claims, c) {
			handlePermissionDenied(c, cfg, []string{"custom"}, "Custom permission check failed")
			return
		}
		c.Next()
	}
}
