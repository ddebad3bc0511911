package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	appattendance "github.com/schoolhub/backend/internal/application/attendance"
	"github.com/schoolhub/backend/internal/application/communication"
	appfinance "github.com/schoolhub/backend/internal/application/finance"
	appinventory "github.com/schoolhub/backend/internal/application/inventory"
	apppeople "github.com/schoolhub/backend/internal/application/people"
	"github.com/schoolhub/backend/internal/domain/academic"
	"github.com/schoolhub/backend/internal/domain/attendance"
	domaincomm "github.com/schoolhub/backend/internal/domain/communication"
	"github.com/schoolhub/backend/internal/domain/exams"
	"github.com/schoolhub/backend/internal/domain/finance"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/people"
	"github.com/schoolhub/backend/internal/domain/report"
	"github.com/schoolhub/backend/internal/domain/school"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/schoolhub/backend/internal/infrastructure/export"
	"github.com/stretchr/testify/mock"
)

// MockStatisticsRepository is a mock implementation of report.StatisticsRepository
type MockStatisticsRepository struct {
	mock.Mock
}

func (m *MockStatisticsRepository) PeopleSummary(ctx context.Context, tenantID uuid.UUID) (*report.PeopleSummary, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.PeopleSummary), args.Error(1)
}

func (m *MockStatisticsRepository) AttendanceTrend(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]report.AttendancePoint, error) {
	args := m.Called(ctx, tenantID, from, to)
	return args.Get(0).([]report.AttendancePoint), args.Error(1)
}

func (m *MockStatisticsRepository) FinanceSummary(ctx context.Context, tenantID uuid.UUID, today time.Time) (*report.FinanceSummary, error) {
	args := m.Called(ctx, tenantID, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.FinanceSummary), args.Error(1)
}

func (m *MockStatisticsRepository) FeeCollectionTrend(ctx context.Context, tenantID uuid.UUID, from time.Time) ([]report.FeePoint, error) {
	args := m.Called(ctx, tenantID, from)
	return args.Get(0).([]report.FeePoint), args.Error(1)
}

func (m *MockStatisticsRepository) ExamPerformance(ctx context.Context, tenantID uuid.UUID, term string) ([]report.SubjectPerformance, error) {
	args := m.Called(ctx, tenantID, term)
	return args.Get(0).([]report.SubjectPerformance), args.Error(1)
}

func (m *MockStatisticsRepository) EnrollmentByClass(ctx context.Context, tenantID uuid.UUID) ([]report.ClassEnrollment, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]report.ClassEnrollment), args.Error(1)
}

func (m *MockStatisticsRepository) LowStockCount(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStatisticsRepository) PublishedAnnouncements(ctx context.Context, tenantID uuid.UUID, now time.Time) (int64, error) {
	args := m.Called(ctx, tenantID, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStatisticsRepository) PlatformSummary(ctx context.Context) (*report.PlatformSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.PlatformSummary), args.Error(1)
}

// MockSchoolRepository mocks the school lookups
type MockSchoolRepository struct {
	school.Repository
	mock.Mock
}

func (m *MockSchoolRepository) FindByID(ctx context.Context, id uuid.UUID) (*school.School, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*school.School), args.Error(1)
}

func (m *MockSchoolRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*school.School, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*school.School), args.Get(1).(int64), args.Error(2)
}

func (m *MockSchoolRepository) FindActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// MockClassRepository mocks the teacher's class lookups
type MockClassRepository struct {
	academic.ClassRepository
	mock.Mock
}

func (m *MockClassRepository) FindByTeacher(ctx context.Context, tenantID, teacherID uuid.UUID) ([]*academic.Class, error) {
	args := m.Called(ctx, tenantID, teacherID)
	return args.Get(0).([]*academic.Class), args.Error(1)
}

func (m *MockClassRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*academic.Class, error) {
	args := m.Called(ctx, tenantID, ids)
	return args.Get(0).([]*academic.Class), args.Error(1)
}

// MockSubjectRepository mocks the subject teaching lookup
type MockSubjectRepository struct {
	academic.SubjectRepository
	mock.Mock
}

func (m *MockSubjectRepository) FindClassesTaughtBy(ctx context.Context, tenantID, teacherID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, tenantID, teacherID)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// MockStudentRepository mocks the user to student lookups
type MockStudentRepository struct {
	people.StudentRepository
	mock.Mock
}

func (m *MockStudentRepository) FindByStudentUser(ctx context.Context, tenantID, userID uuid.UUID) (*people.Student, error) {
	args := m.Called(ctx, tenantID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*people.Student), args.Error(1)
}

func (m *MockStudentRepository) FindByParentUser(ctx context.Context, tenantID, parentUserID uuid.UUID) ([]*people.Student, error) {
	args := m.Called(ctx, tenantID, parentUserID)
	return args.Get(0).([]*people.Student), args.Error(1)
}

// MockAttendanceRepository mocks the dashboard's attendance queries
type MockAttendanceRepository struct {
	attendance.Repository
	mock.Mock
}

func (m *MockAttendanceRepository) MarkedClasses(ctx context.Context, tenantID uuid.UUID, classIDs []uuid.UUID, date time.Time) (map[uuid.UUID]bool, error) {
	args := m.Called(ctx, tenantID, classIDs, date)
	return args.Get(0).(map[uuid.UUID]bool), args.Error(1)
}

func (m *MockAttendanceRepository) Summarize(ctx context.Context, tenantID uuid.UUID, q attendance.Query) (attendance.Summary, error) {
	args := m.Called(ctx, tenantID, q)
	return args.Get(0).(attendance.Summary), args.Error(1)
}

// MockExamRepository mocks the exam lookups
type MockExamRepository struct {
	exams.ExamRepository
	mock.Mock
}

func (m *MockExamRepository) FindUpcoming(ctx context.Context, tenantID uuid.UUID, classIDs []uuid.UUID, from, to time.Time) ([]*exams.Exam, error) {
	args := m.Called(ctx, tenantID, classIDs, from, to)
	return args.Get(0).([]*exams.Exam), args.Error(1)
}

func (m *MockExamRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*exams.Exam, error) {
	args := m.Called(ctx, tenantID, ids)
	return args.Get(0).([]*exams.Exam), args.Error(1)
}

// MockResultRepository mocks the recent results lookup
type MockResultRepository struct {
	exams.ResultRepository
	mock.Mock
}

func (m *MockResultRepository) FindRecentByStudent(ctx context.Context, tenantID, studentID uuid.UUID, limit int) ([]*exams.Result, error) {
	args := m.Called(ctx, tenantID, studentID, limit)
	return args.Get(0).([]*exams.Result), args.Error(1)
}

// MockInvoiceRepository mocks the invoice lookups
type MockInvoiceRepository struct {
	finance.InvoiceRepository
	mock.Mock
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*finance.Invoice, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]*finance.Invoice), args.Get(1).(int64), args.Error(2)
}

func (m *MockInvoiceRepository) FindByStudents(ctx context.Context, tenantID uuid.UUID, studentIDs []uuid.UUID, outstandingOnly bool) ([]*finance.Invoice, error) {
	args := m.Called(ctx, tenantID, studentIDs, outstandingOnly)
	return args.Get(0).([]*finance.Invoice), args.Error(1)
}

// MockMessageRepository mocks the unread count
type MockMessageRepository struct {
	domaincomm.MessageRepository
	mock.Mock
}

func (m *MockMessageRepository) CountUnread(ctx context.Context, tenantID, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, userID)
	return args.Get(0).(int64), args.Error(1)
}

type stubAnnouncements struct {
	list []communication.AnnouncementResponse
}

func (s stubAnnouncements) ListVisible(context.Context, identity.Actor, int) ([]communication.AnnouncementResponse, error) {
	return s.list, nil
}

// MockObjectStorage is a mock implementation of storage.ObjectStorage
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	return m.Called(ctx, key, data, contentType).Error(0)
}

func (m *MockObjectStorage) GenerateUploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, contentType, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) DeleteObject(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockObjectStorage) ObjectExists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// sheetStub records the filters each builder received
type sheetStub struct {
	students   []apppeople.StudentListFilter
	attendance []appattendance.ExportQuery
	invoices   []appfinance.InvoiceListFilter
	inventory  int
}

func stubSheet(name string) *export.Sheet {
	sheet := &export.Sheet{Name: name, Columns: []export.Column{{Header: "Name", Width: 20}}}
	sheet.AddRow("row 1")
	return sheet
}

func (s *sheetStub) studentSheet(_ context.Context, _ uuid.UUID, f apppeople.StudentListFilter) (*export.Sheet, error) {
	s.students = append(s.students, f)
	return stubSheet("Students"), nil
}

func (s *sheetStub) attendanceSheets(_ context.Context, _ uuid.UUID, q appattendance.ExportQuery) ([]*export.Sheet, error) {
	s.attendance = append(s.attendance, q)
	return []*export.Sheet{stubSheet("Register"), stubSheet("Totals")}, nil
}

func (s *sheetStub) invoiceSheet(_ context.Context, _ uuid.UUID, f appfinance.InvoiceListFilter) (*export.Sheet, error) {
	s.invoices = append(s.invoices, f)
	return stubSheet("Invoices"), nil
}

func (s *sheetStub) inventorySheet(_ context.Context, _ uuid.UUID, _ appinventory.ItemListFilter) (*export.Sheet, error) {
	s.inventory++
	return stubSheet("Inventory"), nil
}

type studentSheetFunc func(context.Context, uuid.UUID, apppeople.StudentListFilter) (*export.Sheet, error)

func (f studentSheetFunc) ExportSheet(ctx context.Context, id uuid.UUID, filter apppeople.StudentListFilter) (*export.Sheet, error) {
	return f(ctx, id, filter)
}

type attendanceSheetsFunc func(context.Context, uuid.UUID, appattendance.ExportQuery) ([]*export.Sheet, error)

func (f attendanceSheetsFunc) ExportSheets(ctx context.Context, id uuid.UUID, q appattendance.ExportQuery) ([]*export.Sheet, error) {
	return f(ctx, id, q)
}

type invoiceSheetFunc func(context.Context, uuid.UUID, appfinance.InvoiceListFilter) (*export.Sheet, error)

func (f invoiceSheetFunc) ExportSheet(ctx context.Context, id uuid.UUID, filter appfinance.InvoiceListFilter) (*export.Sheet, error) {
	return f(ctx, id, filter)
}

type inventorySheetFunc func(context.Context, uuid.UUID, appinventory.ItemListFilter) (*export.Sheet, error)

func (f inventorySheetFunc) ExportSheet(ctx context.Context, id uuid.UUID, filter appinventory.ItemListFilter) (*export.Sheet, error) {
	return f(ctx, id, filter)
}
