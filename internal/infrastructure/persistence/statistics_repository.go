package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/attendance"
	"github.com/schoolhub/backend/internal/domain/communication"
	"github.com/schoolhub/backend/internal/domain/finance"
	"github.com/schoolhub/backend/internal/domain/people"
	"github.com/schoolhub/backend/internal/domain/report"
	"github.com/schoolhub/backend/internal/infrastructure/persistence/tenant"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormStatisticsRepository implements StatisticsRepository using GORM
type GormStatisticsRepository struct {
	db *gorm.DB
}

// NewGormStatisticsRepository creates a new GormStatisticsRepository
func NewGormStatisticsRepository(db *gorm.DB) *GormStatisticsRepository {
	return &GormStatisticsRepository{db: db}
}

// billedStatuses are the invoice statuses that count as billed money
var billedStatuses = []finance.InvoiceStatus{
	finance.InvoiceStatusIssued,
	finance.InvoiceStatusPartiallyPaid,
	finance.InvoiceStatusPaid,
	finance.InvoiceStatusOverdue,
}

type labelCount struct {
	Label string
	Count int64
}

// countBy groups a table of one school (or all when tenantID is nil) by column
func (r *GormStatisticsRepository) countBy(ctx context.Context, table, column string, tenantID *uuid.UUID) ([]report.CountByKey, int64, error) {
	var rows []labelCount
	query := r.db.WithContext(ctx).Table(table).Select(column + " AS label, COUNT(*) AS count")
	if tenantID != nil {
		query = query.Where("tenant_id = ?", *tenantID)
	}
	if err := query.Group(column).Order(column).Scan(&rows).Error; err != nil {
		return nil, 0, err
	}

	result := make([]report.CountByKey, len(rows))
	var total int64
	for i, row := range rows {
		result[i] = report.CountByKey{Key: row.Label, Count: row.Count}
		total += row.Count
	}
	return result, total, nil
}

func (r *GormStatisticsRepository) count(ctx context.Context, table string, query string, args ...any) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Table(table).Where(query, args...).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func countOf(counts []report.CountByKey, key string) int64 {
	for _, c := range counts {
		if c.Key == key {
			return c.Count
		}
	}
	return 0
}

// PeopleSummary counts students, teachers, classes and subjects of a school
func (r *GormStatisticsRepository) PeopleSummary(ctx context.Context, tenantID uuid.UUID) (*report.PeopleSummary, error) {
	byStatus, students, err := r.countBy(ctx, "students", "status", &tenantID)
	if err != nil {
		return nil, err
	}
	byGender, _, err := r.countBy(ctx, "students", "gender", &tenantID)
	if err != nil {
		return nil, err
	}
	teachersByStatus, teachers, err := r.countBy(ctx, "teachers", "status", &tenantID)
	if err != nil {
		return nil, err
	}
	classes, err := r.count(ctx, "classes", "tenant_id = ? AND is_active = ?", tenantID, true)
	if err != nil {
		return nil, err
	}
	subjects, err := r.count(ctx, "subjects", "tenant_id = ? AND is_active = ?", tenantID, true)
	if err != nil {
		return nil, err
	}

	return &report.PeopleSummary{
		Students:         students,
		ActiveStudents:   countOf(byStatus, string(people.StudentStatusActive)),
		StudentsByStatus: byStatus,
		StudentsByGender: byGender,
		Teachers:         teachers,
		ActiveTeachers:   countOf(teachersByStatus, string(people.TeacherStatusActive)),
		Classes:          classes,
		Subjects:         subjects,
	}, nil
}

// AttendanceTrend returns one point per day that has records in [from, to]
func (r *GormStatisticsRepository) AttendanceTrend(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]report.AttendancePoint, error) {
	var rows []struct {
		Date   time.Time
		Status attendance.Status
		Count  int64
	}
	if err := r.db.WithContext(ctx).
		Table("attendance_records").
		Select("date, status, COUNT(*) AS count").
		Where("tenant_id = ? AND date >= ? AND date <= ?", tenantID, attendance.Day(from), attendance.Day(to)).
		Group("date, status").
		Order("date ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	points := make([]report.AttendancePoint, 0)
	index := make(map[string]int)
	summaries := make([]attendance.Summary, 0)
	for _, row := range rows {
		key := row.Date.Format("2006-01-02")
		i, ok := index[key]
		if !ok {
			i = len(points)
			index[key] = i
			points = append(points, report.AttendancePoint{Date: attendance.Day(row.Date)})
			summaries = append(summaries, attendance.Summary{})
		}
		summaries[i].Add(row.Status, row.Count)
	}
	for i := range points {
		s := summaries[i]
		points[i].Total = s.Total
		points[i].Present = s.Present
		points[i].Late = s.Late
		points[i].Absent = s.Absent
		points[i].Excused = s.Excused
		points[i].Rate = s.Rate()
	}
	return points, nil
}

// FinanceSummary totals issued invoices; overdue is judged against today
func (r *GormStatisticsRepository) FinanceSummary(ctx context.Context, tenantID uuid.UUID, today time.Time) (*report.FinanceSummary, error) {
	var totals struct {
		Billed    decimal.Decimal
		Collected decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Table("invoices").
		Select("COALESCE(SUM(total_amount), 0) AS billed, COALESCE(SUM(paid_amount), 0) AS collected").
		Where("tenant_id = ? AND status IN ?", tenantID, billedStatuses).
		Scan(&totals).Error; err != nil {
		return nil, err
	}

	var overdue struct {
		Invoices int64
		Amount   decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Table("invoices").
		Select("COUNT(*) AS invoices, COALESCE(SUM(total_amount - paid_amount), 0) AS amount").
		Where("tenant_id = ? AND status IN ? AND due_date < ?", tenantID, outstandingStatuses(), today).
		Scan(&overdue).Error; err != nil {
		return nil, err
	}

	return &report.FinanceSummary{
		Billed:          totals.Billed,
		Collected:       totals.Collected,
		Outstanding:     totals.Billed.Sub(totals.Collected),
		OverdueInvoices: overdue.Invoices,
		OverdueAmount:   overdue.Amount,
	}, nil
}

// FeeCollectionTrend returns billed (by issue date) and collected (by payment date) per month since from.
// Rows are bucketed in Go so the same query runs on every dialect.
func (r *GormStatisticsRepository) FeeCollectionTrend(ctx context.Context, tenantID uuid.UUID, from time.Time) ([]report.FeePoint, error) {
	var billed []struct {
		IssueDate   time.Time
		TotalAmount decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Table("invoices").
		Select("issue_date, total_amount").
		Where("tenant_id = ? AND status IN ? AND issue_date >= ?", tenantID, billedStatuses, from).
		Scan(&billed).Error; err != nil {
		return nil, err
	}

	var collected []struct {
		PaidAt time.Time
		Amount decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Table("payments").
		Select("paid_at, amount").
		Where("tenant_id = ? AND paid_at >= ?", tenantID, from).
		Scan(&collected).Error; err != nil {
		return nil, err
	}

	start := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Now().UTC()
	points := make([]report.FeePoint, 0)
	index := make(map[string]int)
	for m := start; !m.After(end); m = m.AddDate(0, 1, 0) {
		key := m.Format("2006-01")
		index[key] = len(points)
		points = append(points, report.FeePoint{Month: key, Billed: decimal.Zero, Collected: decimal.Zero})
	}
	bucket := func(at time.Time) int {
		key := at.Format("2006-01")
		if i, ok := index[key]; ok {
			return i
		}
		index[key] = len(points)
		points = append(points, report.FeePoint{Month: key, Billed: decimal.Zero, Collected: decimal.Zero})
		return index[key]
	}
	for _, row := range billed {
		i := bucket(row.IssueDate)
		points[i].Billed = points[i].Billed.Add(row.TotalAmount)
	}
	for _, row := range collected {
		i := bucket(row.PaidAt)
		points[i].Collected = points[i].Collected.Add(row.Amount)
	}
	return points, nil
}

// ExamPerformance groups results by subject; an empty term means all terms
func (r *GormStatisticsRepository) ExamPerformance(ctx context.Context, tenantID uuid.UUID, term string) ([]report.SubjectPerformance, error) {
	var rows []struct {
		SubjectID      uuid.UUID
		SubjectName    string
		Results        int64
		Passed         int64
		AveragePercent decimal.Decimal
	}
	query := r.db.WithContext(ctx).
		Table("exam_results r").
		Select(`
			s.id AS subject_id,
			s.name AS subject_name,
			COUNT(*) AS results,
			SUM(CASE WHEN r.passed THEN 1 ELSE 0 END) AS passed,
			COALESCE(AVG(r.percentage), 0) AS average_percent
		`).
		Joins("JOIN exams e ON e.id = r.exam_id").
		Joins("JOIN subjects s ON s.id = e.subject_id").
		Where("r.tenant_id = ?", tenantID)
	if term != "" {
		query = query.Where("e.term = ?", term)
	}
	if err := query.Group("s.id, s.name").Order("s.name").Scan(&rows).Error; err != nil {
		return nil, err
	}

	result := make([]report.SubjectPerformance, len(rows))
	for i, row := range rows {
		result[i] = report.SubjectPerformance{
			SubjectID:      row.SubjectID,
			SubjectName:    row.SubjectName,
			Results:        row.Results,
			AveragePercent: row.AveragePercent.Round(2),
			PassRate:       report.Percent(row.Passed, row.Results),
		}
	}
	return result, nil
}

// EnrollmentByClass counts active students per active class
func (r *GormStatisticsRepository) EnrollmentByClass(ctx context.Context, tenantID uuid.UUID) ([]report.ClassEnrollment, error) {
	var rows []struct {
		ClassID    uuid.UUID
		ClassName  string
		GradeLevel int
		Capacity   int
		Enrolled   int64
	}
	if err := r.db.WithContext(ctx).
		Table("classes c").
		Select("c.id AS class_id, c.name AS class_name, c.grade_level, c.capacity, COUNT(s.id) AS enrolled").
		Joins("LEFT JOIN students s ON s.class_id = c.id AND s.status = ?", people.StudentStatusActive).
		Where("c.tenant_id = ? AND c.is_active = ?", tenantID, true).
		Group("c.id, c.name, c.grade_level, c.capacity").
		Order("c.grade_level, c.name").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	result := make([]report.ClassEnrollment, len(rows))
	for i, row := range rows {
		result[i] = report.ClassEnrollment{
			ClassID:    row.ClassID,
			ClassName:  row.ClassName,
			GradeLevel: row.GradeLevel,
			Capacity:   row.Capacity,
			Enrolled:   row.Enrolled,
			FillRate:   report.Percent(row.Enrolled, int64(row.Capacity)),
		}
	}
	return result, nil
}

// LowStockCount counts items at or below their reorder level
func (r *GormStatisticsRepository) LowStockCount(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	return r.count(ctx, "inventory_items", "tenant_id = ? AND reorder_level > 0 AND quantity <= reorder_level", tenantID)
}

// PublishedAnnouncements counts announcements currently visible
func (r *GormStatisticsRepository) PublishedAnnouncements(ctx context.Context, tenantID uuid.UUID, now time.Time) (int64, error) {
	return r.count(ctx, "announcements",
		"tenant_id = ? AND status = ? AND (expires_at IS NULL OR expires_at > ?)",
		tenantID, communication.AnnouncementStatusPublished, now)
}

// PlatformSummary aggregates across every school
func (r *GormStatisticsRepository) PlatformSummary(ctx context.Context) (*report.PlatformSummary, error) {
	ctx = tenant.WithoutGuard(ctx)
	schoolsByStatus, schools, err := r.countBy(ctx, "schools", "status", nil)
	if err != nil {
		return nil, err
	}
	usersByRole, users, err := r.countBy(ctx, "users", "role", nil)
	if err != nil {
		return nil, err
	}

	var students, teachers int64
	if err := r.db.WithContext(ctx).Table("students").Count(&students).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Table("teachers").Count(&teachers).Error; err != nil {
		return nil, err
	}

	return &report.PlatformSummary{
		Schools:         schools,
		SchoolsByStatus: schoolsByStatus,
		Users:           users,
		UsersByRole:     usersByRole,
		Students:        students,
		Teachers:        teachers,
	}, nil
}

var _ report.StatisticsRepository = (*GormStatisticsRepository)(nil)
