package communication

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/academic"
	"github.com/schoolhub/backend/internal/domain/communication"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/people"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/schoolhub/backend/internal/infrastructure/notification"
	"github.com/stretchr/testify/mock"
)

// MockAnnouncementRepository is a mock implementation of communication.AnnouncementRepository
type MockAnnouncementRepository struct {
	mock.Mock
}

func (m *MockAnnouncementRepository) Save(ctx context.Context, a *communication.Announcement) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockAnnouncementRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockAnnouncementRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*communication.Announcement, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*communication.Announcement), args.Error(1)
}

func (m *MockAnnouncementRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*communication.Announcement, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]*communication.Announcement), args.Get(1).(int64), args.Error(2)
}

func (m *MockAnnouncementRepository) FindVisible(ctx context.Context, tenantID uuid.UUID, audiences []communication.Audience, now time.Time, limit int) ([]*communication.Announcement, error) {
	args := m.Called(ctx, tenantID, audiences, now, limit)
	return args.Get(0).([]*communication.Announcement), args.Error(1)
}

func (m *MockAnnouncementRepository) FindExpired(ctx context.Context, now time.Time, limit int) ([]*communication.Announcement, error) {
	args := m.Called(ctx, now, limit)
	return args.Get(0).([]*communication.Announcement), args.Error(1)
}

// MockMessageRepository is a mock implementation of communication.MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Save(ctx context.Context, msg *communication.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MockMessageRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockMessageRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*communication.Message, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*communication.Message), args.Error(1)
}

func (m *MockMessageRepository) FindInbox(ctx context.Context, tenantID, userID uuid.UUID, unreadOnly bool, filter shared.Filter) ([]*communication.Message, int64, error) {
	args := m.Called(ctx, tenantID, userID, unreadOnly, filter)
	return args.Get(0).([]*communication.Message), args.Get(1).(int64), args.Error(2)
}

func (m *MockMessageRepository) FindSent(ctx context.Context, tenantID, userID uuid.UUID, filter shared.Filter) ([]*communication.Message, int64, error) {
	args := m.Called(ctx, tenantID, userID, filter)
	return args.Get(0).([]*communication.Message), args.Get(1).(int64), args.Error(2)
}

func (m *MockMessageRepository) CountUnread(ctx context.Context, tenantID, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockClassRepository mocks the class existence check
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

// MockStudentRepository mocks the class membership lookups
type MockStudentRepository struct {
	people.StudentRepository
	mock.Mock
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

// MockUserRepository mocks the user lookups of messaging and notifications
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

func (m *MockUserRepository) FindByRole(ctx context.Context, tenantID uuid.UUID, role identity.Role) ([]*identity.User, error) {
	args := m.Called(ctx, tenantID, role)
	return args.Get(0).([]*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*identity.User, error) {
	args := m.Called(ctx, tenantID, ids)
	return args.Get(0).([]*identity.User), args.Error(1)
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
