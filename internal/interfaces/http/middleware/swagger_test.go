package middleware

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/schoolhub/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
)

func swaggerRequest(cfg config.SwaggerConfig, remoteAddr string) *httptest.ResponseRecorder {
	router := gin.New()
	router.GET("/swagger/*any", SwaggerProtection(cfg), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "swagger"})
	})

	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSwaggerProtection(t *testing.T) {
	tests := []struct {
		name       string
		cfg        config.SwaggerConfig
		remoteAddr string
		wantStatus int
		wantCode   string
	}{
		{"disabled", config.SwaggerConfig{Enabled: false}, "10.0.0.1:1234", http.StatusNotFound, "ERR_NOT_FOUND"},
		{"enabled without allow list", config.SwaggerConfig{Enabled: true}, "203.0.113.9:1234", http.StatusOK, ""},
		{"exact ip allowed", config.SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.1"}}, "10.0.0.1:1234", http.StatusOK, ""},
		{"ip denied", config.SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.1"}}, "10.0.0.2:1234", http.StatusForbidden, "ERR_FORBIDDEN"},
		{"cidr allowed", config.SwaggerConfig{Enabled: true, AllowedIPs: []string{"192.168.0.0/16"}}, "192.168.4.20:80", http.StatusOK, ""},
		{"cidr denied", config.SwaggerConfig{Enabled: true, AllowedIPs: []string{"192.168.0.0/16"}}, "172.16.0.1:80", http.StatusForbidden, "ERR_FORBIDDEN"},
		{"bad entries ignored", config.SwaggerConfig{Enabled: true, AllowedIPs: []string{"nonsense", "10.0.0.0/33"}}, "10.0.0.1:80", http.StatusForbidden, "ERR_FORBIDDEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := swaggerRequest(tt.cfg, tt.remoteAddr)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				assert.Contains(t, w.Body.String(), tt.wantCode)
			}
		})
	}
}

func TestIsIPAllowed(t *testing.T) {
	ips, nets := parseAllowList([]string{"127.0.0.1", " ::1 ", "10.0.0.0/8"})

	assert.True(t, isIPAllowed(net.ParseIP("127.0.0.1"), ips, nets))
	assert.True(t, isIPAllowed(net.ParseIP("::1"), ips, nets))
	assert.True(t, isIPAllowed(net.ParseIP("10.20.30.40"), ips, nets))
	assert.False(t, isIPAllowed(net.ParseIP("11.0.0.1"), ips, nets))
	assert.False(t, isIPAllowed(nil, ips, nets))
}
