package finance

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/finance"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), "expected domain error, got %v", err)
	assert.Equal(t, code, de.Code)
}

func newFee(t *testing.T, tenantID uuid.UUID, amount string, classID *uuid.UUID) *finance.FeeStructure {
	t.Helper()
	fee, err := finance.NewFeeStructure(tenantID, finance.FeeDetails{
		Name:      "Tuition",
		ClassID:   classID,
		Amount:    decimal.RequireFromString(amount),
		Frequency: finance.FrequencyTermly,
		DueDays:   14,
	})
	require.NoError(t, err)
	fee.ClearDomainEvents()
	return fee
}

func TestFeeStructureService_Create(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	actor := identity.Actor{TenantID: tenantID, UserID: uuid.New(), Role: identity.RoleSchoolAdmin}

	t.Run("creates an inactive structure on request", func(t *testing.T) {
		fees, classes := new(MockFeeStructureRepository), new(MockClassRepository)
		svc := NewFeeStructureService(fees, classes, nil, zap.NewNop())
		fees.On("Save", ctx, mock.MatchedBy(func(f *finance.FeeStructure) bool {
			return f.TenantID == tenantID && !f.IsActive && f.DueDays == finance.DefaultDueDays
		})).Return(nil)

		inactive := false
		resp, err := svc.Create(ctx, actor, FeeStructureRequest{
			Name:     "Library fee",
			Amount:   decimal.NewFromInt(25),
			IsActive: &inactive,
		})
		require.NoError(t, err)
		assert.Equal(t, "termly", resp.Frequency)
		assert.True(t, decimal.NewFromInt(25).Equal(resp.Amount))
		assert.False(t, resp.IsActive)
		classes.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown class", func(t *testing.T) {
		fees, classes := new(MockFeeStructureRepository), new(MockClassRepository)
		svc := NewFeeStructureService(fees, classes, nil, zap.NewNop())
		classID := uuid.New()
		classes.On("FindByID", ctx, tenantID, classID).Return(nil, shared.ErrNotFound)

		_, err := svc.Create(ctx, actor, FeeStructureRequest{Name: "Lab", ClassID: &classID, Amount: decimal.NewFromInt(5)})
		requireCode(t, err, "CLASS_NOT_FOUND")
		fees.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("negative amount", func(t *testing.T) {
		svc := NewFeeStructureService(new(MockFeeStructureRepository), new(MockClassRepository), nil, zap.NewNop())
		_, err := svc.Create(ctx, actor, FeeStructureRequest{Name: "Refund", Amount: decimal.NewFromInt(-1)})
		requireCode(t, err, "INVALID_AMOUNT")
	})
}

func TestFeeStructureService_Deactivate(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	fees := new(MockFeeStructureRepository)
	pub := new(MockEventPublisher)
	svc := NewFeeStructureService(fees, new(MockClassRepository), pub, zap.NewNop())

	fee := newFee(t, tenantID, "100", nil)
	fees.On("FindByID", ctx, tenantID, fee.ID).Return(fee, nil)
	fees.On("Save", ctx, fee).Return(nil)
	pub.On("Publish", ctx, mock.Anything).Return(nil).Once()

	resp, err := svc.Deactivate(ctx, tenantID, fee.ID)
	require.NoError(t, err)
	assert.False(t, resp.IsActive)
	pub.AssertExpectations(t)

	_, err = svc.Deactivate(ctx, tenantID, fee.ID)
	requireCode(t, err, "ALREADY_INACTIVE")
}

func TestFeeStructureService_Delete(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("refused once invoiced", func(t *testing.T) {
		fees := new(MockFeeStructureRepository)
		svc := NewFeeStructureService(fees, new(MockClassRepository), nil, zap.NewNop())
		fee := newFee(t, tenantID, "100", nil)
		fees.On("FindByID", ctx, tenantID, fee.ID).Return(fee, nil)
		fees.On("CountInvoices", ctx, tenantID, fee.ID).Return(int64(3), nil)

		requireCode(t, svc.Delete(ctx, tenantID, fee.ID), "IN_USE")
		fees.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("deletes and announces", func(t *testing.T) {
		fees := new(MockFeeStructureRepository)
		pub := new(MockEventPublisher)
		svc := NewFeeStructureService(fees, new(MockClassRepository), pub, zap.NewNop())
		fee := newFee(t, tenantID, "100", nil)
		fees.On("FindByID", ctx, tenantID, fee.ID).Return(fee, nil)
		fees.On("CountInvoices", ctx, tenantID, fee.ID).Return(int64(0), nil)
		fees.On("Delete", ctx, tenantID, fee.ID).Return(nil)
		pub.On("Publish", ctx, mock.MatchedBy(func(events []shared.DomainEvent) bool {
			return len(events) == 1 && events[0].EventType() == finance.EventTypeFeeStructureDeleted
		})).Return(nil)

		require.NoError(t, svc.Delete(ctx, tenantID, fee.ID))
		pub.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		fees := new(MockFeeStructureRepository)
		svc := NewFeeStructureService(fees, new(MockClassRepository), nil, zap.NewNop())
		id := uuid.New()
		fees.On("FindByID", ctx, tenantID, id).Return(nil, shared.ErrNotFound)
		requireCode(t, svc.Delete(ctx, tenantID, id), "FEE_STRUCTURE_NOT_FOUND")
	})
}

func TestFeeStructureService_List(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	classID := uuid.New()
	fees := new(MockFeeStructureRepository)
	svc := NewFeeStructureService(fees, new(MockClassRepository), nil, zap.NewNop())

	active := true
	fees.On("FindAll", ctx, tenantID, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Filters["class_id"] == classID && f.Filters["is_active"] == true
	})).Return([]*finance.FeeStructure{newFee(t, tenantID, "50", &classID)}, int64(1), nil)

	items, total, err := svc.List(ctx, tenantID, FeeStructureListFilter{ClassID: &classID, IsActive: &active})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, &classID, items[0].ClassID)
}
