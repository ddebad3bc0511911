package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/application/communication"
	"github.com/schoolhub/backend/internal/application/finance"
	"github.com/schoolhub/backend/internal/domain/attendance"
	"github.com/schoolhub/backend/internal/domain/report"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TrendQuery is the period of an attendance trend; the last 30 days when empty
type TrendQuery struct {
	From *shared.Date `form:"from"`
	To   *shared.Date `form:"to"`
}

// FeeTrendQuery selects how many months a fee trend covers
type FeeTrendQuery struct {
	Months int `form:"months" binding:"omitempty,min=1,max=24"`
}

// ExamPerformanceQuery limits exam performance to one term
type ExamPerformanceQuery struct {
	Term string `form:"term" binding:"max=50"`
}

// ExportRequest selects a report and its filters
type ExportRequest struct {
	Kind    string       `form:"kind" json:"kind" binding:"required,oneof=students attendance invoices inventory"`
	ClassID *uuid.UUID   `form:"class_id,parser=encoding.TextUnmarshaler" json:"class_id"`
	Status  string       `form:"status" json:"status" binding:"max=30"`
	From    *shared.Date `form:"from" json:"from"`
	To      *shared.Date `form:"to" json:"to"`
}

// ArchiveResponse points at an export stored in object storage
type ArchiveResponse struct {
	Key         string    `json:"key"`
	FileName    string    `json:"file_name"`
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// RecentSchool is a row of the platform dashboard
type RecentSchool struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// PlatformDashboard is what a super admin sees
type PlatformDashboard struct {
	Summary       report.PlatformSummary `json:"summary"`
	RecentSchools []RecentSchool         `json:"recent_schools"`
}

// AdminDashboard is what a school admin sees
type AdminDashboard struct {
	Overview       report.Overview                      `json:"overview"`
	RecentInvoices []finance.InvoiceResponse            `json:"recent_invoices"`
	Announcements  []communication.AnnouncementResponse `json:"announcements"`
	UnreadMessages int64                                `json:"unread_messages"`
}

// TeacherClass is one class on the teacher dashboard
type TeacherClass struct {
	ID                    uuid.UUID `json:"id"`
	Name                  string    `json:"name"`
	GradeLevel            int       `json:"grade_level"`
	IsClassTeacher        bool      `json:"is_class_teacher"`
	AttendanceMarkedToday bool      `json:"attendance_marked_today"`
}

// UpcomingExam is an exam on the teacher dashboard
type UpcomingExam struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	ClassID   uuid.UUID   `json:"class_id"`
	ClassName string      `json:"class_name,omitempty"`
	SubjectID uuid.UUID   `json:"subject_id"`
	Type      string      `json:"type"`
	ExamDate  shared.Date `json:"exam_date"`
}

// TeacherDashboard is what a teacher sees
type TeacherDashboard struct {
	Classes        []TeacherClass                       `json:"classes"`
	UpcomingExams  []UpcomingExam                       `json:"upcoming_exams"`
	Announcements  []communication.AnnouncementResponse `json:"announcements"`
	UnreadMessages int64                                `json:"unread_messages"`
}

// RecentResult is an exam result on the student dashboard
type RecentResult struct {
	ExamID     uuid.UUID       `json:"exam_id"`
	ExamName   string          `json:"exam_name,omitempty"`
	ExamDate   *shared.Date    `json:"exam_date,omitempty"`
	Marks      decimal.Decimal `json:"marks"`
	MaxMarks   decimal.Decimal `json:"max_marks"`
	Percentage decimal.Decimal `json:"percentage"`
	Grade      string          `json:"grade"`
	Passed     bool            `json:"passed"`
}

// StudentSummary is one student's part of a student or parent dashboard
type StudentSummary struct {
	StudentID           uuid.UUID                 `json:"student_id"`
	StudentName         string                    `json:"student_name"`
	ClassID             *uuid.UUID                `json:"class_id,omitempty"`
	Attendance          attendance.Summary        `json:"attendance"`
	AttendanceRate      decimal.Decimal           `json:"attendance_rate"`
	RecentResults       []RecentResult            `json:"recent_results"`
	OutstandingInvoices []finance.InvoiceResponse `json:"outstanding_invoices"`
	OutstandingBalance  decimal.Decimal           `json:"outstanding_balance"`
}

// StudentDashboard is what a student sees, and what a parent sees per child
type StudentDashboard struct {
	Students       []StudentSummary                     `json:"students"`
	Announcements  []communication.AnnouncementResponse `json:"announcements"`
	UnreadMessages int64                                `json:"unread_messages"`
}

// Dashboard is the role-specific dashboard; exactly one section is set
type Dashboard struct {
	Role     string             `json:"role"`
	Platform *PlatformDashboard `json:"platform,omitempty"`
	Admin    *AdminDashboard    `json:"admin,omitempty"`
	Teacher  *TeacherDashboard  `json:"teacher,omitempty"`
	Student  *StudentDashboard  `json:"student,omitempty"`
}
