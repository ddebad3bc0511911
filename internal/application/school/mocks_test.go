package school

import (
	"context"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/school"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository mocks the user calls school services make. Other methods hit the nil embedded interface.
type MockUserRepository struct {
	identity.UserRepository
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Count(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

// MockSchoolRepository is a mock implementation of school.Repository
type MockSchoolRepository struct {
	mock.Mock
}

func (m *MockSchoolRepository) Create(ctx context.Context, s *school.School) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockSchoolRepository) Update(ctx context.Context, s *school.School) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockSchoolRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSchoolRepository) FindByID(ctx context.Context, id uuid.UUID) (*school.School, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*school.School), args.Error(1)
}

func (m *MockSchoolRepository) FindByCode(ctx context.Context, code string) (*school.School, error) {
	args := m.Called(ctx, code)
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

func (m *MockSchoolRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockSchoolRepository) CountByStatus(ctx context.Context) (map[school.Status]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[school.Status]int64), args.Error(1)
}
