package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type ctxProbeKey struct{}

func TestDefaultProfilingConfig(t *testing.T) {
	cfg := DefaultProfilingConfig()

	assert.True(t, cfg.Enabled)
	assert.Contains(t, cfg.SkipPaths, "/health")
	assert.Contains(t, cfg.SkipPathPrefixes, "/swagger")
}

func TestProfilingMiddleware(t *testing.T) {
	tests := []struct {
		name string
		cfg  ProfilingConfig
		path string
	}{
		{"disabled", ProfilingConfig{Enabled: false}, "/api/v1/students"},
		{"enabled", DefaultProfilingConfig(), "/api/v1/students"},
		{"skipped path", DefaultProfilingConfig(), "/health"},
		{"skipped prefix", DefaultProfilingConfig(), "/swagger/index.html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(ProfilingWithConfig(tt.cfg))

			handlerCalled := false
			r.GET(tt.path, func(c *gin.Context) {
				handlerCalled = true
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.True(t, handlerCalled)
		})
	}
}

func TestProfilingMiddleware_ContextPreserved(t *testing.T) {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), ctxProbeKey{}, "kept"))
		c.Next()
	})
	r.Use(Profiling())

	var got any
	r.GET("/api/v1/classes/:id", func(c *gin.Context) {
		got = c.Request.Context().Value(ctxProbeKey{})
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/classes/abc", nil))
	assert.Equal(t, "kept", got)
}

func TestProfilingLabels(t *testing.T) {
	r := gin.New()

	var labels []string
	r.Use(func(c *gin.Context) {
		c.Set(JWTTenantIDKey, "token-school")
		c.Set(TenantIDKey, "resolved-school")
		c.Next()
	})
	r.POST("/api/v1/invoices/:id/payments", func(c *gin.Context) {
		labels = profilingLabels(c)
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/invoices/42/payments", nil))

	assert.Equal(t, []string{
		ProfilingLabelMethod, http.MethodPost,
		ProfilingLabelRoute, "/api/v1/invoices/:id/payments",
		ProfilingLabelController, "invoices",
		ProfilingLabelTenantID, "resolved-school",
	}, labels)
}

func TestExtractControllerFromRoute(t *testing.T) {
	tests := map[string]string{
		"/api/v1/students":            "students",
		"/api/v1/students/:id":        "students",
		"/api/v1/inventory/items/:id": "inventory",
		"/api/v2/fee-structures":      "fee-structures",
		"/health":                     "health",
		"/swagger/*any":               "swagger",
		"/api/v1/:id":                 "",
		"":                            "",
	}
	for route, want := range tests {
		assert.Equal(t, want, extractControllerFromRoute(route), route)
	}
}

func TestIsVersionSegment(t *testing.T) {
	assert.True(t, isVersionSegment("v1"))
	assert.True(t, isVersionSegment("V12"))
	assert.False(t, isVersionSegment("v"))
	assert.False(t, isVersionSegment("vx"))
	assert.False(t, isVersionSegment("students"))
}
