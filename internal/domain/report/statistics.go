package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CountByKey is a labelled count, used for status and gender breakdowns
type CountByKey struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// PeopleSummary aggregates the people of a school
type PeopleSummary struct {
	Students         int64        `json:"students"`
	ActiveStudents   int64        `json:"active_students"`
	StudentsByStatus []CountByKey `json:"students_by_status"`
	StudentsByGender []CountByKey `json:"students_by_gender"`
	Teachers         int64        `json:"teachers"`
	ActiveTeachers   int64        `json:"active_teachers"`
	Classes          int64        `json:"classes"`
	Subjects         int64        `json:"subjects"`
}

// FinanceSummary aggregates invoices of a school, excluding drafts and cancelled ones
type FinanceSummary struct {
	Billed          decimal.Decimal `json:"billed"`
	Collected       decimal.Decimal `json:"collected"`
	Outstanding     decimal.Decimal `json:"outstanding"`
	OverdueInvoices int64           `json:"overdue_invoices"`
	OverdueAmount   decimal.Decimal `json:"overdue_amount"`
}

// CollectionRate is collected/billed as a percentage
func (f FinanceSummary) CollectionRate() decimal.Decimal {
	if f.Billed.IsZero() {
		return decimal.Zero
	}
	return f.Collected.Mul(decimal.NewFromInt(100)).Div(f.Billed).Round(2)
}

// Overview is the school-level statistics card set
type Overview struct {
	People                 PeopleSummary   `json:"people"`
	AttendanceRate30d      decimal.Decimal `json:"attendance_rate_30d"`
	Finance                FinanceSummary  `json:"finance"`
	CollectionRate         decimal.Decimal `json:"collection_rate"`
	LowStockItems          int64           `json:"low_stock_items"`
	PublishedAnnouncements int64           `json:"published_announcements"`
	GeneratedAt            time.Time       `json:"generated_at"`
}

// AttendancePoint is one day of an attendance trend
type AttendancePoint struct {
	Date    time.Time       `json:"date"`
	Total   int64           `json:"total"`
	Present int64           `json:"present"`
	Late    int64           `json:"late"`
	Absent  int64           `json:"absent"`
	Excused int64           `json:"excused"`
	Rate    decimal.Decimal `json:"rate"`
}

// FeePoint is one month of billed versus collected fees
type FeePoint struct {
	Month     string          `json:"month"` // YYYY-MM
	Billed    decimal.Decimal `json:"billed"`
	Collected decimal.Decimal `json:"collected"`
}

// SubjectPerformance summarizes exam results of one subject
type SubjectPerformance struct {
	SubjectID      uuid.UUID       `json:"subject_id"`
	SubjectName    string          `json:"subject_name"`
	Results        int64           `json:"results"`
	AveragePercent decimal.Decimal `json:"average_percent"`
	PassRate       decimal.Decimal `json:"pass_rate"`
}

// ClassEnrollment is the headcount of one class against its capacity
type ClassEnrollment struct {
	ClassID    uuid.UUID       `json:"class_id"`
	ClassName  string          `json:"class_name"`
	GradeLevel int             `json:"grade_level"`
	Capacity   int             `json:"capacity"`
	Enrolled   int64           `json:"enrolled"`
	FillRate   decimal.Decimal `json:"fill_rate"`
}

// PlatformSummary is what the super admin dashboard shows
type PlatformSummary struct {
	Schools         int64        `json:"schools"`
	SchoolsByStatus []CountByKey `json:"schools_by_status"`
	Users           int64        `json:"users"`
	UsersByRole     []CountByKey `json:"users_by_role"`
	Students        int64        `json:"students"`
	Teachers        int64        `json:"teachers"`
}

// Percent returns part*100/total rounded to two decimals, zero when total is zero
func Percent(part, total int64) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(part).Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(total)).Round(2)
}
