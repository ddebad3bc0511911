package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/schoolhub/backend/internal/interfaces/http/dto"
)

// BodyLimit returns a middleware that limits request body size
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			abortWithError(c, http.StatusRequestEntityTooLarge, dto.ErrCodePayloadTooLarge,
				"Request body exceeds maximum allowed size")
			return
		}

		// Chunked bodies carry no Content-Length; cap the reader as well
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
