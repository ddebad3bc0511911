package telemetry

import (
	"context"
	"time"

	"github.com/schoolhub/backend/internal/domain/attendance"
	"github.com/schoolhub/backend/internal/domain/finance"
	"github.com/schoolhub/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HTTPDurationBuckets are histogram boundaries for request latency in seconds
var HTTPDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// HTTPInstruments records request counts and latency
type HTTPInstruments struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

// NewHTTPInstruments creates the HTTP server instruments on meter
func NewHTTPInstruments(meter metric.Meter) (*HTTPInstruments, error) {
	requests, err := meter.Int64Counter("http_server_request_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("http_server_request_duration_seconds",
		metric.WithDescription("HTTP request latency in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(HTTPDurationBuckets...))
	if err != nil {
		return nil, err
	}
	return &HTTPInstruments{requests: requests, duration: duration}, nil
}

// Record adds one finished request
func (h *HTTPInstruments) Record(ctx context.Context, method, route string, status int, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)
	h.requests.Add(ctx, 1, attrs)
	h.duration.Record(ctx, elapsed.Seconds(), attrs)
}

// EventMetrics turns domain events into business counters: events by type,
// payments collected and attendance records marked.
type EventMetrics struct {
	events     metric.Int64Counter
	payments   metric.Float64Counter
	attendance metric.Int64Counter
}

// NewEventMetrics creates the business instruments on meter
func NewEventMetrics(meter metric.Meter) (*EventMetrics, error) {
	events, err := meter.Int64Counter("schoolhub_domain_events_total",
		metric.WithDescription("Domain events published, by type"),
		metric.WithUnit("{event}"))
	if err != nil {
		return nil, err
	}
	payments, err := meter.Float64Counter("schoolhub_payments_collected",
		metric.WithDescription("Sum of recorded fee payments"),
		metric.WithUnit("{currency}"))
	if err != nil {
		return nil, err
	}
	marked, err := meter.Int64Counter("schoolhub_attendance_records_marked_total",
		metric.WithDescription("Attendance records written through class registers"),
		metric.WithUnit("{record}"))
	if err != nil {
		return nil, err
	}
	return &EventMetrics{events: events, payments: payments, attendance: marked}, nil
}

// EventTypes subscribes to every event
func (m *EventMetrics) EventTypes() []string {
	return nil
}

// Handle counts the event
func (m *EventMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	m.events.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", event.EventType()),
		attribute.String("aggregate_type", event.AggregateType()),
	))

	switch e := event.(type) {
	case *finance.PaymentRecordedEvent:
		amount, _ := e.Amount.Float64()
		m.payments.Add(ctx, amount)
	case *attendance.MarkedEvent:
		m.attendance.Add(ctx, int64(e.Records))
	}
	return nil
}

var _ shared.EventHandler = (*EventMetrics)(nil)
