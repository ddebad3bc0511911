package testutil

import (
	"io"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/schoolhub/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEchoEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/echo", func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.JSON(http.StatusOK, dto.Response{Success: true, Data: gin.H{
			"auth":         c.GetHeader("Authorization"),
			"content_type": c.GetHeader("Content-Type"),
			"school":       c.GetHeader("X-School-ID"),
			"body":         string(body),
		}})
	})
	r.GET("/missing", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.Response{Error: &dto.ErrorInfo{Code: "ERR_NOT_FOUND", Message: "Student not found"}})
	})
	return r
}

func TestDo(t *testing.T) {
	engine := newEchoEngine()

	tc := Do(t, engine, Request{
		Method:  http.MethodPost,
		Path:    "/echo",
		Token:   "abc",
		Body:    map[string]string{"name": "Ada"},
		Headers: map[string]string{"X-School-ID": "s-1"},
	})
	require.Equal(t, http.StatusOK, tc.ResponseCode())
	AssertSuccessResponse(t, tc)

	resp := JSONResponseAs[struct {
		Data map[string]string `json:"data"`
	}](t, tc)
	assert.Equal(t, "Bearer abc", resp.Data["auth"])
	assert.Equal(t, "application/json", resp.Data["content_type"])
	assert.Equal(t, "s-1", resp.Data["school"])
	assert.JSONEq(t, `{"name":"Ada"}`, resp.Data["body"])
}

func TestDo_DefaultsToGet(t *testing.T) {
	tc := Do(t, newEchoEngine(), Request{Path: "/missing"})
	assert.Equal(t, http.StatusNotFound, tc.ResponseCode())
	AssertErrorResponse(t, tc, "ERR_NOT_FOUND")
}
