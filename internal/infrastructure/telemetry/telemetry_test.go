package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/attendance"
	"github.com/schoolhub/backend/internal/domain/finance"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/schoolhub/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestSetup_AllDisabled(t *testing.T) {
	p, err := Setup(context.Background(), config.TelemetryConfig{}, "test", zap.NewNop())
	require.NoError(t, err)

	assert.False(t, p.TracingEnabled())
	assert.NotNil(t, p.Meter("test"))
	assert.False(t, p.ZapCore(zapcore.InfoLevel).Enabled(zapcore.ErrorLevel))
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestSetup_ProfilingRequiresAddress(t *testing.T) {
	_, err := Setup(context.Background(), config.TelemetryConfig{ProfilingEnabled: true}, "test", zap.NewNop())
	assert.Error(t, err)
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(1).Description(), "AlwaysOnSampler")
	assert.Equal(t, "AlwaysOffSampler", sampler(0).Description())
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased")
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func TestEventMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewEventMetrics(provider.Meter("test"))
	require.NoError(t, err)
	assert.Empty(t, m.EventTypes())

	ctx := context.Background()
	schoolID := uuid.New()

	invoice := &finance.Invoice{}
	invoice.ID = uuid.New()
	invoice.TenantID = schoolID
	payment := finance.Payment{ID: uuid.New(), Amount: decimal.RequireFromString("120.50")}
	require.NoError(t, m.Handle(ctx, finance.NewPaymentRecordedEvent(invoice, payment)))
	require.NoError(t, m.Handle(ctx, attendance.NewMarkedEvent(schoolID, uuid.New(), time.Now(), 28)))

	data := collect(t, reader)

	events := data["schoolhub_domain_events_total"].(metricdata.Sum[int64])
	var total int64
	for _, dp := range events.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(2), total)

	payments := data["schoolhub_payments_collected"].(metricdata.Sum[float64])
	require.Len(t, payments.DataPoints, 1)
	assert.InDelta(t, 120.5, payments.DataPoints[0].Value, 0.001)

	marked := data["schoolhub_attendance_records_marked_total"].(metricdata.Sum[int64])
	require.Len(t, marked.DataPoints, 1)
	assert.Equal(t, int64(28), marked.DataPoints[0].Value)
}

func TestHTTPInstruments(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	h, err := NewHTTPInstruments(provider.Meter("test"))
	require.NoError(t, err)

	h.Record(context.Background(), "GET", "/api/v1/students", 200, 30*time.Millisecond)
	h.Record(context.Background(), "GET", "/api/v1/students", 200, 50*time.Millisecond)

	data := collect(t, reader)
	requests := data["http_server_request_total"].(metricdata.Sum[int64])
	require.Len(t, requests.DataPoints, 1)
	assert.Equal(t, int64(2), requests.DataPoints[0].Value)

	duration := data["http_server_request_duration_seconds"].(metricdata.Histogram[float64])
	require.Len(t, duration.DataPoints, 1)
	assert.Equal(t, uint64(2), duration.DataPoints[0].Count)
}

func TestSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	ctx, span := tp.Tracer("test").Start(context.Background(), "root")

	assert.NotEmpty(t, TraceID(ctx))
	assert.Empty(t, TraceID(context.Background()))

	EndSpan(span, errors.New("invoice not found"))
	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "invoice not found", ended[0].Status().Description)
}

var _ shared.EventHandler = (*EventMetrics)(nil)
