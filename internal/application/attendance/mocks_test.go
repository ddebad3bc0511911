package attendance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/academic"
	"github.com/schoolhub/backend/internal/domain/attendance"
	"github.com/schoolhub/backend/internal/domain/people"
	"github.com/schoolhub/backend/internal/domain/school"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) Upsert(ctx context.Context, records []*attendance.Record) error {
	return m.Called(ctx, records).Error(0)
}

func (m *MockRecordRepository) Save(ctx context.Context, r *attendance.Record) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRecordRepository) FindByClassAndDate(ctx context.Context, tenantID, classID uuid.UUID, date time.Time, studentIDs []uuid.UUID) ([]*attendance.Record, error) {
	args := m.Called(ctx, tenantID, classID, date, studentIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*attendance.Record), args.Error(1)
}

func (m *MockRecordRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockRecordRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*attendance.Record, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*attendance.Record), args.Error(1)
}

func (m *MockRecordRepository) FindAll(ctx context.Context, tenantID uuid.UUID, q attendance.Query, filter shared.Filter) ([]*attendance.Record, int64, error) {
	args := m.Called(ctx, tenantID, q, filter)
	return args.Get(0).([]*attendance.Record), args.Get(1).(int64), args.Error(2)
}

func (m *MockRecordRepository) FindForExport(ctx context.Context, tenantID uuid.UUID, q attendance.Query) ([]*attendance.Record, error) {
	args := m.Called(ctx, tenantID, q)
	return args.Get(0).([]*attendance.Record), args.Error(1)
}

func (m *MockRecordRepository) Summarize(ctx context.Context, tenantID uuid.UUID, q attendance.Query) (attendance.Summary, error) {
	args := m.Called(ctx, tenantID, q)
	return args.Get(0).(attendance.Summary), args.Error(1)
}

func (m *MockRecordRepository) MarkedClasses(ctx context.Context, tenantID uuid.UUID, classIDs []uuid.UUID, date time.Time) (map[uuid.UUID]bool, error) {
	args := m.Called(ctx, tenantID, classIDs, date)
	return args.Get(0).(map[uuid.UUID]bool), args.Error(1)
}

// MockStudentRepository mocks bulk lookups. Other methods hit the nil embedded interface.
type MockStudentRepository struct {
	people.StudentRepository
	mock.Mock
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

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}
