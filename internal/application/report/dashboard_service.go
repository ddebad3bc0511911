package report

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/application/communication"
	"github.com/schoolhub/backend/internal/application/finance"
	"github.com/schoolhub/backend/internal/domain/academic"
	"github.com/schoolhub/backend/internal/domain/attendance"
	domaincomm "github.com/schoolhub/backend/internal/domain/communication"
	"github.com/schoolhub/backend/internal/domain/exams"
	domainfinance "github.com/schoolhub/backend/internal/domain/finance"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/people"
	"github.com/schoolhub/backend/internal/domain/school"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	dashboardListSize = 5
	upcomingExamDays  = 14
)

// VisibleAnnouncements lists what the caller's dashboard shows
type VisibleAnnouncements interface {
	ListVisible(ctx context.Context, actor identity.Actor, limit int) ([]communication.AnnouncementResponse, error)
}

// DashboardServiceDeps collects the dashboard's collaborators
type DashboardServiceDeps struct {
	Statistics     *StatisticsService
	Announcements  VisibleAnnouncements
	SchoolRepo     school.Repository
	ClassRepo      academic.ClassRepository
	SubjectRepo    academic.SubjectRepository
	StudentRepo    people.StudentRepository
	AttendanceRepo attendance.Repository
	ExamRepo       exams.ExamRepository
	ResultRepo     exams.ResultRepository
	InvoiceRepo    domainfinance.InvoiceRepository
	MessageRepo    domaincomm.MessageRepository
	Logger         *zap.Logger
}

// DashboardService assembles the role-specific dashboards
type DashboardService struct {
	DashboardServiceDeps
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(deps DashboardServiceDeps) *DashboardService {
	return &DashboardService{DashboardServiceDeps: deps}
}

// Dashboard returns the dashboard of the actor's role
func (s *DashboardService) Dashboard(ctx context.Context, actor identity.Actor) (*Dashboard, error) {
	d := &Dashboard{Role: string(actor.Role)}
	var err error
	switch actor.Role {
	case identity.RoleSuperAdmin:
		d.Platform, err = s.platform(ctx)
	case identity.RoleSchoolAdmin:
		d.Admin, err = s.admin(ctx, actor)
	case identity.RoleTeacher:
		d.Teacher, err = s.teacher(ctx, actor)
	case identity.RoleStudent, identity.RoleParent:
		d.Student, err = s.student(ctx, actor)
	default:
		return nil, shared.ErrForbidden
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DashboardService) platform(ctx context.Context) (*PlatformDashboard, error) {
	summary, err := s.Statistics.Platform(ctx)
	if err != nil {
		return nil, err
	}
	schools, _, err := s.SchoolRepo.FindAll(ctx, recentFilter())
	if err != nil {
		return nil, err
	}
	recent := make([]RecentSchool, len(schools))
	for i, sch := range schools {
		recent[i] = RecentSchool{
			ID:        sch.ID,
			Code:      sch.Code,
			Name:      sch.Name,
			Status:    string(sch.Status),
			CreatedAt: sch.CreatedAt,
		}
	}
	return &PlatformDashboard{Summary: *summary, RecentSchools: recent}, nil
}

func (s *DashboardService) admin(ctx context.Context, actor identity.Actor) (*AdminDashboard, error) {
	overview, err := s.Statistics.Overview(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}
	invoices, _, err := s.InvoiceRepo.FindAll(ctx, actor.TenantID, recentFilter())
	if err != nil {
		return nil, err
	}
	recent := make([]finance.InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		recent[i] = finance.ToInvoiceResponse(inv)
	}
	announcements, unread, err := s.inbox(ctx, actor)
	if err != nil {
		return nil, err
	}
	return &AdminDashboard{
		Overview:       *overview,
		RecentInvoices: recent,
		Announcements:  announcements,
		UnreadMessages: unread,
	}, nil
}

func (s *DashboardService) teacher(ctx context.Context, actor identity.Actor) (*TeacherDashboard, error) {
	teacherID, err := actor.RequireProfile()
	if err != nil {
		return nil, err
	}
	classes, err := s.teacherClasses(ctx, actor.TenantID, teacherID)
	if err != nil {
		return nil, err
	}
	today := s.Statistics.today(ctx, actor.TenantID)

	ids := make([]uuid.UUID, len(classes))
	names := make(map[uuid.UUID]string, len(classes))
	for i, c := range classes {
		ids[i] = c.ID
		names[c.ID] = c.DisplayName()
	}

	dash := &TeacherDashboard{Classes: make([]TeacherClass, len(classes)), UpcomingExams: []UpcomingExam{}}
	if len(ids) > 0 {
		marked, err := s.AttendanceRepo.MarkedClasses(ctx, actor.TenantID, ids, today)
		if err != nil {
			return nil, err
		}
		upcoming, err := s.ExamRepo.FindUpcoming(ctx, actor.TenantID, ids, today, today.AddDate(0, 0, upcomingExamDays))
		if err != nil {
			return nil, err
		}
		for _, e := range upcoming {
			dash.UpcomingExams = append(dash.UpcomingExams, UpcomingExam{
				ID:        e.ID,
				Name:      e.Name,
				ClassID:   e.ClassID,
				ClassName: names[e.ClassID],
				SubjectID: e.SubjectID,
				Type:      string(e.Type),
				ExamDate:  shared.NewDate(e.ExamDate),
			})
		}
		for i, c := range classes {
			dash.Classes[i] = TeacherClass{
				ID:                    c.ID,
				Name:                  c.DisplayName(),
				GradeLevel:            c.GradeLevel,
				IsClassTeacher:        c.HomeroomTeacherID != nil && *c.HomeroomTeacherID == teacherID,
				AttendanceMarkedToday: marked[c.ID],
			}
		}
	}

	dash.Announcements, dash.UnreadMessages, err = s.inbox(ctx, actor)
	if err != nil {
		return nil, err
	}
	return dash, nil
}

// teacherClasses returns the homeroom classes plus every class the teacher teaches a subject in
func (s *DashboardService) teacherClasses(ctx context.Context, tenantID, teacherID uuid.UUID) ([]*academic.Class, error) {
	homeroom, err := s.ClassRepo.FindByTeacher(ctx, tenantID, teacherID)
	if err != nil {
		return nil, err
	}
	taught, err := s.SubjectRepo.FindClassesTaughtBy(ctx, tenantID, teacherID)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]bool, len(homeroom))
	classes := make([]*academic.Class, 0, len(homeroom)+len(taught))
	for _, c := range homeroom {
		seen[c.ID] = true
		classes = append(classes, c)
	}
	var missing []uuid.UUID
	for _, id := range taught {
		if !seen[id] {
			seen[id] = true
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		more, err := s.ClassRepo.FindByIDs(ctx, tenantID, missing)
		if err != nil {
			return nil, err
		}
		classes = append(classes, more...)
	}

	active := classes[:0]
	for _, c := range classes {
		if c.IsActive {
			active = append(active, c)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		if active[i].GradeLevel != active[j].GradeLevel {
			return active[i].GradeLevel < active[j].GradeLevel
		}
		return active[i].DisplayName() < active[j].DisplayName()
	})
	return active, nil
}

func (s *DashboardService) student(ctx context.Context, actor identity.Actor) (*StudentDashboard, error) {
	var students []*people.Student
	if actor.Role == identity.RoleStudent {
		st, err := s.StudentRepo.FindByStudentUser(ctx, actor.TenantID, actor.UserID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if st != nil {
			students = append(students, st)
		}
	} else {
		children, err := s.StudentRepo.FindByParentUser(ctx, actor.TenantID, actor.UserID)
		if err != nil {
			return nil, err
		}
		students = children
	}

	today := s.Statistics.today(ctx, actor.TenantID)
	dash := &StudentDashboard{Students: make([]StudentSummary, 0, len(students))}
	for _, st := range students {
		summary, err := s.studentSummary(ctx, actor.TenantID, st, today)
		if err != nil {
			return nil, err
		}
		dash.Students = append(dash.Students, *summary)
	}

	var err error
	dash.Announcements, dash.UnreadMessages, err = s.inbox(ctx, actor)
	if err != nil {
		return nil, err
	}
	return dash, nil
}

func (s *DashboardService) studentSummary(ctx context.Context, tenantID uuid.UUID, st *people.Student, today time.Time) (*StudentSummary, error) {
	from := today.AddDate(0, 0, -(attendanceWindowDays - 1))
	att, err := s.AttendanceRepo.Summarize(ctx, tenantID, attendance.Query{StudentID: &st.ID, From: &from, To: &today})
	if err != nil {
		return nil, err
	}

	results, err := s.ResultRepo.FindRecentByStudent(ctx, tenantID, st.ID, dashboardListSize)
	if err != nil {
		return nil, err
	}
	examIDs := make([]uuid.UUID, len(results))
	for i, r := range results {
		examIDs[i] = r.ExamID
	}
	examsByID := make(map[uuid.UUID]*exams.Exam, len(results))
	if len(examIDs) > 0 {
		list, err := s.ExamRepo.FindByIDs(ctx, tenantID, examIDs)
		if err != nil {
			return nil, err
		}
		for _, e := range list {
			examsByID[e.ID] = e
		}
	}
	recent := make([]RecentResult, len(results))
	for i, r := range results {
		rr := RecentResult{
			ExamID:     r.ExamID,
			Marks:      r.Marks,
			Percentage: r.Percentage,
			Grade:      r.Grade,
			Passed:     r.Passed,
		}
		if e, ok := examsByID[r.ExamID]; ok {
			date := shared.NewDate(e.ExamDate)
			rr.ExamName = e.Name
			rr.ExamDate = &date
			rr.MaxMarks = e.MaxMarks
		}
		recent[i] = rr
	}

	invoices, err := s.InvoiceRepo.FindByStudents(ctx, tenantID, []uuid.UUID{st.ID}, true)
	if err != nil {
		return nil, err
	}
	outstanding := make([]finance.InvoiceResponse, len(invoices))
	balance := decimal.Zero
	for i, inv := range invoices {
		outstanding[i] = finance.ToInvoiceResponse(inv)
		outstanding[i].StudentName = st.FullName()
		balance = balance.Add(inv.Balance())
	}

	return &StudentSummary{
		StudentID:           st.ID,
		StudentName:         st.FullName(),
		ClassID:             st.ClassID,
		Attendance:          att,
		AttendanceRate:      att.Rate(),
		RecentResults:       recent,
		OutstandingInvoices: outstanding,
		OutstandingBalance:  balance,
	}, nil
}

// inbox returns the announcements and unread message count every school dashboard shows
func (s *DashboardService) inbox(ctx context.Context, actor identity.Actor) ([]communication.AnnouncementResponse, int64, error) {
	announcements, err := s.Announcements.ListVisible(ctx, actor, dashboardListSize)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.MessageRepo.CountUnread(ctx, actor.TenantID, actor.UserID)
	if err != nil {
		return nil, 0, err
	}
	return announcements, unread, nil
}

func recentFilter() shared.Filter {
	return shared.Filter{Page: 1, PageSize: dashboardListSize, OrderBy: "created_at", OrderDir: "desc"}
}
