package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/schoolhub/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// HTTPMetrics records request count, latency and in-flight requests on meter.
// A nil meter, or a failure creating instruments, yields a pass-through handler.
func HTTPMetrics(meter metric.Meter, log *zap.Logger) gin.HandlerFunc {
	if meter == nil {
		return passThrough
	}
	if log == nil {
		log = zap.NewNop()
	}

	instruments, err := telemetry.NewHTTPInstruments(meter)
	if err != nil {
		log.Warn("HTTP metrics disabled", zap.Error(err))
		return passThrough
	}
	active, err := meter.Int64UpDownCounter("http_server_active_requests",
		metric.WithDescription("Number of currently active HTTP requests"),
		metric.WithUnit("{request}"))
	if err != nil {
		log.Warn("HTTP metrics disabled", zap.Error(err))
		return passThrough
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()

		active.Add(ctx, 1)
		c.Next()
		active.Add(ctx, -1)

		instruments.Record(ctx, c.Request.Method, routePattern(c), c.Writer.Status(), time.Since(start))
	}
}

func passThrough(c *gin.Context) {
	c.Next()
}

// routePattern keeps metric cardinality bounded: the gin route, never the raw path
func routePattern(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unknown"
}

// HTTPMetricsStatusGroup buckets a status code into its class
func HTTPMetricsStatusGroup(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "2xx"
	case statusCode >= 300 && statusCode < 400:
		return "3xx"
	case statusCode >= 400 && statusCode < 500:
		return "4xx"
	case statusCode >= 500:
		return "5xx"
	default:
		return "other"
	}
}
