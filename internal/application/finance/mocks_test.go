package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/academic"
	"github.com/schoolhub/backend/internal/domain/finance"
	"github.com/schoolhub/backend/internal/domain/people"
	"github.com/schoolhub/backend/internal/domain/school"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/schoolhub/backend/internal/infrastructure/printing"
	"github.com/stretchr/testify/mock"
)

// MockFeeStructureRepository is a mock implementation of finance.FeeStructureRepository
type MockFeeStructureRepository struct {
	mock.Mock
}

func (m *MockFeeStructureRepository) Save(ctx context.Context, fee *finance.FeeStructure) error {
	return m.Called(ctx, fee).Error(0)
}

func (m *MockFeeStructureRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockFeeStructureRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*finance.FeeStructure, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.FeeStructure), args.Error(1)
}

func (m *MockFeeStructureRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*finance.FeeStructure, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]*finance.FeeStructure), args.Get(1).(int64), args.Error(2)
}

func (m *MockFeeStructureRepository) CountInvoices(ctx context.Context, tenantID, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, id)
	return args.Get(0).(int64), args.Error(1)
}

// MockInvoiceRepository is a mock implementation of finance.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) Save(ctx context.Context, inv *finance.Invoice) error {
	return m.Called(ctx, inv).Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*finance.Invoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*finance.Invoice, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]*finance.Invoice), args.Get(1).(int64), args.Error(2)
}

func (m *MockInvoiceRepository) FindByStudents(ctx context.Context, tenantID uuid.UUID, studentIDs []uuid.UUID, outstandingOnly bool) ([]*finance.Invoice, error) {
	args := m.Called(ctx, tenantID, studentIDs, outstandingOnly)
	return args.Get(0).([]*finance.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindOverdueCandidates(ctx context.Context, tenantID uuid.UUID, before time.Time) ([]*finance.Invoice, error) {
	args := m.Called(ctx, tenantID, before)
	return args.Get(0).([]*finance.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) InvoicedStudents(ctx context.Context, tenantID, feeStructureID uuid.UUID, term string) (map[uuid.UUID]bool, error) {
	args := m.Called(ctx, tenantID, feeStructureID, term)
	return args.Get(0).(map[uuid.UUID]bool), args.Error(1)
}

func (m *MockInvoiceRepository) NextSequence(ctx context.Context, tenantID uuid.UUID, prefix string) (int64, error) {
	args := m.Called(ctx, tenantID, prefix)
	return args.Get(0).(int64), args.Error(1)
}

// MockStudentRepository mocks the student lookups billing needs
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

// MockClassRepository mocks class lookups
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

// MockSchoolRepository mocks the school lookups billing needs
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

func (m *MockSchoolRepository) FindActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return m.Called(ctx, events).Error(0)
}

type stubRenderer struct {
	last *printing.RenderRequest
}

func (r *stubRenderer) Render(_ context.Context, req *printing.RenderRequest) (*printing.RenderResult, error) {
	r.last = req
	return &printing.RenderResult{PDFData: []byte("%PDF-1.4 stub"), PageCount: 1}, nil
}

func (r *stubRenderer) Close() error { return nil }
