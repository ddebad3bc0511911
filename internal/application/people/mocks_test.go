package people

import (
	"context"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/academic"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/people"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

type MockStudentRepository struct {
	mock.Mock
}

func (m *MockStudentRepository) Save(ctx context.Context, s *people.Student) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockStudentRepository) SaveBatch(ctx context.Context, students []*people.Student) error {
	return m.Called(ctx, students).Error(0)
}

func (m *MockStudentRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
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

func (m *MockStudentRepository) FindByAdmissionNumber(ctx context.Context, tenantID uuid.UUID, number string) (*people.Student, error) {
	args := m.Called(ctx, tenantID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*people.Student), args.Error(1)
}

func (m *MockStudentRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*people.Student, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]*people.Student), args.Get(1).(int64), args.Error(2)
}

func (m *MockStudentRepository) FindByClass(ctx context.Context, tenantID, classID uuid.UUID, activeOnly bool) ([]*people.Student, error) {
	args := m.Called(ctx, tenantID, classID, activeOnly)
	return args.Get(0).([]*people.Student), args.Error(1)
}

func (m *MockStudentRepository) FindByParentUser(ctx context.Context, tenantID, parentUserID uuid.UUID) ([]*people.Student, error) {
	args := m.Called(ctx, tenantID, parentUserID)
	return args.Get(0).([]*people.Student), args.Error(1)
}

func (m *MockStudentRepository) FindByStudentUser(ctx context.Context, tenantID, userID uuid.UUID) (*people.Student, error) {
	args := m.Called(ctx, tenantID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*people.Student), args.Error(1)
}

func (m *MockStudentRepository) ExistingAdmissionNumbers(ctx context.Context, tenantID uuid.UUID, numbers []string) (map[string]bool, error) {
	args := m.Called(ctx, tenantID, numbers)
	return args.Get(0).(map[string]bool), args.Error(1)
}

func (m *MockStudentRepository) ExistsByAdmissionNumber(ctx context.Context, tenantID uuid.UUID, number string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, number, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStudentRepository) CountByClass(ctx context.Context, tenantID, classID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, classID)
	return args.Get(0).(int64), args.Error(1)
}

type MockTeacherRepository struct {
	mock.Mock
}

func (m *MockTeacherRepository) Save(ctx context.Context, t *people.Teacher) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockTeacherRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockTeacherRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*people.Teacher, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*people.Teacher), args.Error(1)
}

func (m *MockTeacherRepository) FindByUserID(ctx context.Context, tenantID, userID uuid.UUID) (*people.Teacher, error) {
	args := m.Called(ctx, tenantID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*people.Teacher), args.Error(1)
}

func (m *MockTeacherRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*people.Teacher, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]*people.Teacher), args.Get(1).(int64), args.Error(2)
}

func (m *MockTeacherRepository) ExistsByEmployeeNumber(ctx context.Context, tenantID uuid.UUID, number string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, number, excludeID)
	return args.Bool(0), args.Error(1)
}

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

// MockUserRepository covers the user lookups made when linking accounts
type MockUserRepository struct {
	identity.UserRepository
	mock.Mock
}

func (m *MockUserRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}
