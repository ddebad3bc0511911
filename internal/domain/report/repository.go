package report

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StatisticsRepository runs the aggregation queries behind statistics and dashboards
type StatisticsRepository interface {
	// PeopleSummary counts students, teachers, classes and subjects of a school
	PeopleSummary(ctx context.Context, tenantID uuid.UUID) (*PeopleSummary, error)

	// AttendanceTrend returns one point per day that has records in [from, to]
	AttendanceTrend(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]AttendancePoint, error)

	// FinanceSummary totals issued invoices; overdue is judged against today
	FinanceSummary(ctx context.Context, tenantID uuid.UUID, today time.Time) (*FinanceSummary, error)

	// FeeCollectionTrend returns billed (by issue date) and collected (by payment date) per month since from
	FeeCollectionTrend(ctx context.Context, tenantID uuid.UUID, from time.Time) ([]FeePoint, error)

	// ExamPerformance groups results by subject; an empty term means all terms
	ExamPerformance(ctx context.Context, tenantID uuid.UUID, term string) ([]SubjectPerformance, error)

	// EnrollmentByClass counts active students per active class
	EnrollmentByClass(ctx context.Context, tenantID uuid.UUID) ([]ClassEnrollment, error)

	// LowStockCount counts items at or below their reorder level
	LowStockCount(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// PublishedAnnouncements counts announcements currently visible
	PublishedAnnouncements(ctx context.Context, tenantID uuid.UUID, now time.Time) (int64, error)

	// PlatformSummary aggregates across every school
	PlatformSummary(ctx context.Context) (*PlatformSummary, error)
}
