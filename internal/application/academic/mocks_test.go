package academic

import (
	"context"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/academic"
	"github.com/schoolhub/backend/internal/domain/people"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

type MockClassRepository struct {
	mock.Mock
}

func (m *MockClassRepository) Save(ctx context.Context, c *academic.Class) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockClassRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockClassRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*academic.Class, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*academic.Class), args.Error(1)
}

func (m *MockClassRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*academic.Class, error) {
	args := m.Called(ctx, tenantID, ids)
	return args.Get(0).([]*academic.Class), args.Error(1)
}

func (m *MockClassRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*academic.Class, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]*academic.Class), args.Get(1).(int64), args.Error(2)
}

func (m *MockClassRepository) FindByTeacher(ctx context.Context, tenantID, teacherID uuid.UUID) ([]*academic.Class, error) {
	args := m.Called(ctx, tenantID, teacherID)
	return args.Get(0).([]*academic.Class), args.Error(1)
}

func (m *MockClassRepository) FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*academic.Class, error) {
	args := m.Called(ctx, tenantID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*academic.Class), args.Error(1)
}

func (m *MockClassRepository) CountByTeacher(ctx context.Context, tenantID, teacherID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, teacherID)
	return args.Get(0).(int64), args.Error(1)
}

type MockSubjectRepository struct {
	mock.Mock
}

func (m *MockSubjectRepository) Save(ctx context.Context, s *academic.Subject) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockSubjectRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockSubjectRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*academic.Subject, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*academic.Subject), args.Error(1)
}

func (m *MockSubjectRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*academic.Subject, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]*academic.Subject), args.Get(1).(int64), args.Error(2)
}

func (m *MockSubjectRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, code, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSubjectRepository) AssignToClass(ctx context.Context, link *academic.ClassSubject) error {
	return m.Called(ctx, link).Error(0)
}

func (m *MockSubjectRepository) RemoveFromClass(ctx context.Context, tenantID, classID, subjectID uuid.UUID) error {
	return m.Called(ctx, tenantID, classID, subjectID).Error(0)
}

func (m *MockSubjectRepository) FindClassSubject(ctx context.Context, tenantID, classID, subjectID uuid.UUID) (*academic.ClassSubject, error) {
	args := m.Called(ctx, tenantID, classID, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*academic.ClassSubject), args.Error(1)
}

func (m *MockSubjectRepository) FindClassSubjects(ctx context.Context, tenantID, classID uuid.UUID) ([]*academic.ClassSubject, error) {
	args := m.Called(ctx, tenantID, classID)
	return args.Get(0).([]*academic.ClassSubject), args.Error(1)
}

func (m *MockSubjectRepository) FindClassesTaughtBy(ctx context.Context, tenantID, teacherID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, tenantID, teacherID)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockSubjectRepository) CountClassLinks(ctx context.Context, tenantID, subjectID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, subjectID)
	return args.Get(0).(int64), args.Error(1)
}

// MockStudentRepository covers enrollment counts only.
type MockStudentRepository struct {
	people.StudentRepository
	mock.Mock
}

func (m *MockStudentRepository) CountByClass(ctx context.Context, tenantID, classID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, classID)
	return args.Get(0).(int64), args.Error(1)
}

// MockTeacherRepository covers lookups only.
type MockTeacherRepository struct {
	people.TeacherRepository
	mock.Mock
}

func (m *MockTeacherRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*people.Teacher, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*people.Teacher), args.Error(1)
}
