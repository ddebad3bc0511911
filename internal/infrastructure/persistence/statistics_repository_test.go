package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/academic"
	"github.com/schoolhub/backend/internal/domain/attendance"
	"github.com/schoolhub/backend/internal/domain/exams"
	"github.com/schoolhub/backend/internal/domain/finance"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/people"
	"github.com/schoolhub/backend/internal/domain/report"
	"github.com/schoolhub/backend/internal/domain/school"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type statisticsFixture struct {
	schoolID uuid.UUID
	class    *academic.Class
	subject  *academic.Subject
	students []*people.Student
}

func seedStatistics(t *testing.T, db *gorm.DB) statisticsFixture {
	t.Helper()
	ctx := context.Background()
	schoolID := uuid.New()

	class, err := academic.NewClass(schoolID, academic.ClassDetails{Name: "Grade 7A", GradeLevel: 7, Capacity: 40})
	require.NoError(t, err)
	require.NoError(t, NewGormClassRepository(db).Save(ctx, class))

	subject, err := academic.NewSubject(schoolID, "MATH", "Mathematics", "")
	require.NoError(t, err)
	require.NoError(t, NewGormSubjectRepository(db).Save(ctx, subject))

	teacher, err := people.NewTeacher(schoolID, "T-001", people.TeacherProfile{FirstName: "Grace", LastName: "Hopper"})
	require.NoError(t, err)
	require.NoError(t, NewGormTeacherRepository(db).Save(ctx, teacher))

	studentRepo := NewGormStudentRepository(db)
	var students []*people.Student
	for i, name := range []string{"Ada", "Bola", "Chi"} {
		s := newTestStudent(t, schoolID, "ADM-10"+string(rune('0'+i)), name)
		require.NoError(t, s.AssignClass(&class.ID))
		students = append(students, s)
	}
	require.NoError(t, students[2].ChangeStatus(people.StudentStatusSuspended))
	require.NoError(t, studentRepo.SaveBatch(ctx, students))

	return statisticsFixture{schoolID: schoolID, class: class, subject: subject, students: students}
}

func TestGormStatisticsRepository_PeopleAndEnrollment(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	fx := seedStatistics(t, db)
	repo := NewGormStatisticsRepository(db)

	summary, err := repo.PeopleSummary(ctx, fx.schoolID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.Students)
	assert.Equal(t, int64(2), summary.ActiveStudents)
	assert.Equal(t, int64(1), summary.Teachers)
	assert.Equal(t, int64(1), summary.ActiveTeachers)
	assert.Equal(t, int64(1), summary.Classes)
	assert.Equal(t, int64(1), summary.Subjects)
	assert.Equal(t, []report.CountByKey{{Key: "female", Count: 3}}, summary.StudentsByGender)

	enrollment, err := repo.EnrollmentByClass(ctx, fx.schoolID)
	require.NoError(t, err)
	require.Len(t, enrollment, 1)
	assert.Equal(t, int64(2), enrollment[0].Enrolled)
	assert.True(t, enrollment[0].FillRate.Equal(decimal.NewFromInt(5)))
}

func TestGormStatisticsRepository_AttendanceTrend(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	fx := seedStatistics(t, db)
	repo := NewGormStatisticsRepository(db)
	attendanceRepo := NewGormAttendanceRepository(db)

	day1 := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	var records []*attendance.Record
	for _, d := range []struct {
		date   time.Time
		status []attendance.Status
	}{
		{day1, []attendance.Status{attendance.StatusPresent, attendance.StatusAbsent}},
		{day2, []attendance.Status{attendance.StatusPresent, attendance.StatusLate}},
	} {
		for i, st := range d.status {
			r, err := attendance.NewRecord(fx.schoolID, fx.students[i].ID, fx.class.ID, d.date, day2, st, "")
			require.NoError(t, err)
			records = append(records, r)
		}
	}
	require.NoError(t, attendanceRepo.Upsert(ctx, records))

	trend, err := repo.AttendanceTrend(ctx, fx.schoolID, day1, day2)
	require.NoError(t, err)
	require.Len(t, trend, 2)
	assert.Equal(t, int64(2), trend[0].Total)
	assert.True(t, trend[0].Rate.Equal(decimal.NewFromInt(50)))
	assert.True(t, trend[1].Rate.Equal(decimal.NewFromInt(100)))
}

func TestGormStatisticsRepository_Finance(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	fx := seedStatistics(t, db)
	repo := NewGormStatisticsRepository(db)
	invoiceRepo := NewGormInvoiceRepository(db)

	now := time.Now().UTC()
	issue := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -2, 0)

	inv := newTestInvoice(t, fx.schoolID, fx.students[0].ID, "INV-1", issue)
	require.NoError(t, inv.Issue())
	_, err := inv.RecordPayment(decimal.NewFromInt(100), finance.PaymentMethodCash, "", issue.AddDate(0, 0, 1), nil)
	require.NoError(t, err)
	require.NoError(t, invoiceRepo.Save(ctx, inv))

	draft := newTestInvoice(t, fx.schoolID, fx.students[1].ID, "INV-2", issue)
	require.NoError(t, invoiceRepo.Save(ctx, draft))

	summary, err := repo.FinanceSummary(ctx, fx.schoolID, issue.AddDate(0, 1, 15))
	require.NoError(t, err)
	assert.True(t, summary.Billed.Equal(decimal.NewFromInt(350)), summary.Billed.String())
	assert.True(t, summary.Collected.Equal(decimal.NewFromInt(100)))
	assert.True(t, summary.Outstanding.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, int64(1), summary.OverdueInvoices)
	assert.True(t, summary.OverdueAmount.Equal(decimal.NewFromInt(250)))

	trend, err := repo.FeeCollectionTrend(ctx, fx.schoolID, issue)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(trend), 3)
	assert.Equal(t, issue.Format("2006-01"), trend[0].Month)
	assert.True(t, trend[0].Billed.Equal(decimal.NewFromInt(350)))
	assert.True(t, trend[0].Collected.Equal(decimal.NewFromInt(100)))
	assert.True(t, trend[1].Billed.IsZero())
}

func TestGormStatisticsRepository_ExamPerformance(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	fx := seedStatistics(t, db)
	repo := NewGormStatisticsRepository(db)

	exam, err := exams.NewExam(fx.schoolID, exams.ExamDetails{
		Name:      "Midterm",
		ClassID:   fx.class.ID,
		SubjectID: fx.subject.ID,
		Type:      exams.TypeMidterm,
		ExamDate:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		MaxMarks:  decimal.NewFromInt(100),
		PassMarks: decimal.NewFromInt(50),
		Term:      "Term 1",
	})
	require.NoError(t, err)
	require.NoError(t, NewGormExamRepository(db).Save(ctx, exam))

	scale := school.DefaultGradingScale()
	var results []*exams.Result
	for i, marks := range []int64{80, 40} {
		r, err := exams.NewResult(exam, fx.students[i].ID, decimal.NewFromInt(marks), "", scale)
		require.NoError(t, err)
		results = append(results, r)
	}
	require.NoError(t, NewGormResultRepository(db).Upsert(ctx, results))

	perf, err := repo.ExamPerformance(ctx, fx.schoolID, "Term 1")
	require.NoError(t, err)
	require.Len(t, perf, 1)
	assert.Equal(t, "Mathematics", perf[0].SubjectName)
	assert.Equal(t, int64(2), perf[0].Results)
	assert.True(t, perf[0].AveragePercent.Equal(decimal.NewFromInt(60)))
	assert.True(t, perf[0].PassRate.Equal(decimal.NewFromInt(50)))

	none, err := repo.ExamPerformance(ctx, fx.schoolID, "Term 3")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGormStatisticsRepository_PlatformSummary(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	fx := seedStatistics(t, db)
	repo := NewGormStatisticsRepository(db)

	s, err := school.NewSchool("GREEN", "Green Valley")
	require.NoError(t, err)
	s.ID = fx.schoolID
	require.NoError(t, NewGormSchoolRepository(db).Create(ctx, s))

	admin, err := identity.NewActiveUser(fx.schoolID, "admin", "Password123", identity.RoleSchoolAdmin)
	require.NoError(t, err)
	require.NoError(t, NewGormUserRepository(db).Create(ctx, admin))

	summary, err := repo.PlatformSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.Schools)
	assert.Equal(t, int64(1), summary.Users)
	assert.Equal(t, int64(3), summary.Students)
	assert.Equal(t, int64(1), summary.Teachers)
	assert.Equal(t, []report.CountByKey{{Key: "school_admin", Count: 1}}, summary.UsersByRole)
}
