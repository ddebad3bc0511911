package inventory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/inventory"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/schoolhub/backend/internal/infrastructure/notification"
	"github.com/stretchr/testify/mock"
)

// MockItemRepository is a mock implementation of inventory.ItemRepository
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) Save(ctx context.Context, item *inventory.Item) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockItemRepository) SaveWithMovement(ctx context.Context, item *inventory.Item, movement *inventory.Movement) error {
	return m.Called(ctx, item, movement).Error(0)
}

func (m *MockItemRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockItemRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Item, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Item), args.Error(1)
}

func (m *MockItemRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*inventory.Item, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]*inventory.Item), args.Get(1).(int64), args.Error(2)
}

func (m *MockItemRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, code, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockItemRepository) FindMovements(ctx context.Context, tenantID, itemID uuid.UUID, filter shared.Filter) ([]*inventory.Movement, int64, error) {
	args := m.Called(ctx, tenantID, itemID, filter)
	return args.Get(0).([]*inventory.Movement), args.Get(1).(int64), args.Error(2)
}

// MockUserRepository mocks the admin lookup of the stock alert
type MockUserRepository struct {
	identity.UserRepository
	mock.Mock
}

func (m *MockUserRepository) FindByRole(ctx context.Context, tenantID uuid.UUID, role identity.Role) ([]*identity.User, error) {
	args := m.Called(ctx, tenantID, role)
	return args.Get(0).([]*identity.User), args.Error(1)
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return m.Called(ctx, events).Error(0)
}

type recordingMailer struct {
	mu     sync.Mutex
	emails []*notification.Email
}

func (r *recordingMailer) Dispatch(email *notification.Email) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emails = append(r.emails, email)
	return true
}

func (r *recordingMailer) sent() []*notification.Email {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*notification.Email(nil), r.emails...)
}
