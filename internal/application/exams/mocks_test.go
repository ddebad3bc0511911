package exams

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/academic"
	"github.com/schoolhub/backend/internal/domain/attendance"
	"github.com/schoolhub/backend/internal/domain/exams"
	"github.com/schoolhub/backend/internal/domain/people"
	"github.com/schoolhub/backend/internal/domain/school"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/schoolhub/backend/internal/infrastructure/printing"
	"github.com/stretchr/testify/mock"
)

type MockExamRepository struct {
	mock.Mock
}

func (m *MockExamRepository) Save(ctx context.Context, e *exams.Exam) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockExamRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockExamRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*exams.Exam, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*exams.Exam), args.Error(1)
}

func (m *MockExamRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*exams.Exam, error) {
	args := m.Called(ctx, tenantID, ids)
	return args.Get(0).([]*exams.Exam), args.Error(1)
}

func (m *MockExamRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*exams.Exam, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]*exams.Exam), args.Get(1).(int64), args.Error(2)
}

func (m *MockExamRepository) FindUpcoming(ctx context.Context, tenantID uuid.UUID, classIDs []uuid.UUID, from, to time.Time) ([]*exams.Exam, error) {
	args := m.Called(ctx, tenantID, classIDs, from, to)
	return args.Get(0).([]*exams.Exam), args.Error(1)
}

type MockResultRepository struct {
	mock.Mock
}

func (m *MockResultRepository) Upsert(ctx context.Context, results []*exams.Result) error {
	return m.Called(ctx, results).Error(0)
}

func (m *MockResultRepository) FindByExam(ctx context.Context, tenantID, examID uuid.UUID) ([]*exams.Result, error) {
	args := m.Called(ctx, tenantID, examID)
	return args.Get(0).([]*exams.Result), args.Error(1)
}

func (m *MockResultRepository) FindByExamAndStudents(ctx context.Context, tenantID, examID uuid.UUID, studentIDs []uuid.UUID) ([]*exams.Result, error) {
	args := m.Called(ctx, tenantID, examID, studentIDs)
	return args.Get(0).([]*exams.Result), args.Error(1)
}

func (m *MockResultRepository) FindByStudent(ctx context.Context, tenantID, studentID uuid.UUID, term string) ([]*exams.Result, error) {
	args := m.Called(ctx, tenantID, studentID, term)
	return args.Get(0).([]*exams.Result), args.Error(1)
}

func (m *MockResultRepository) FindRecentByStudent(ctx context.Context, tenantID, studentID uuid.UUID, limit int) ([]*exams.Result, error) {
	args := m.Called(ctx, tenantID, studentID, limit)
	return args.Get(0).([]*exams.Result), args.Error(1)
}

func (m *MockResultRepository) CountByExam(ctx context.Context, tenantID, examID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, examID)
	return args.Get(0).(int64), args.Error(1)
}

// MockStudentRepository mocks student lookups. Other methods hit the nil embedded interface.
type MockStudentRepository struct {
	people.StudentRepository
	mock.Mock
}

func (m *MockStudentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*people.Student, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*people.Student), args.Error(1)
}

func (m *MockStudentRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*people.Student, error) {
	args := m.Called(ctx, tenantID, ids)
	return args.Get(0).([]*people.Student), args.Error(1)
}

type MockClassRepository struct {
	academic.ClassRepository
	mock.Mock
}

func (m *MockClassRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*academic.Class, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*academic.Class), args.Error(1)
}

type MockSubjectRepository struct {
	academic.SubjectRepository
	mock.Mock
}

func (m *MockSubjectRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*academic.Subject, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*academic.Subject), args.Error(1)
}

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

type MockAttendanceRepository struct {
	attendance.Repository
	mock.Mock
}

func (m *MockAttendanceRepository) Summarize(ctx context.Context, tenantID uuid.UUID, q attendance.Query) (attendance.Summary, error) {
	args := m.Called(ctx, tenantID, q)
	return args.Get(0).(attendance.Summary), args.Error(1)
}

// stubRenderer returns a fixed PDF and keeps the last request
type stubRenderer struct {
	last *printing.RenderRequest
}

func (r *stubRenderer) Render(_ context.Context, req *printing.RenderRequest) (*printing.RenderResult, error) {
	r.last = req
	return &printing.RenderResult{PDFData: []byte("%PDF-1.4 stub"), PageCount: 1}, nil
}

func (r *stubRenderer) Close() error { return nil }
