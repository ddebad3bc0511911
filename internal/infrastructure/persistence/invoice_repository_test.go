package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/finance"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInvoice(t *testing.T, schoolID, studentID uuid.UUID, number string, issue time.Time) *finance.Invoice {
	t.Helper()
	tuition, err := finance.NewInvoiceItem("Tuition", decimal.NewFromInt(300))
	require.NoError(t, err)
	books, err := finance.NewInvoiceItem("Books", decimal.NewFromInt(50))
	require.NoError(t, err)

	inv, err := finance.NewInvoice(schoolID, number, finance.InvoiceDraft{
		StudentID: studentID,
		Term:      "Term 1",
		Items:     []finance.InvoiceItem{tuition, books},
		IssueDate: issue,
		DueDate:   issue.AddDate(0, 0, 30),
	})
	require.NoError(t, err)
	return inv
}

func TestGormInvoiceRepository_SaveWithItemsAndPayments(t *testing.T) {
	ctx := context.Background()
	repo := NewGormInvoiceRepository(newSQLiteDB(t))
	schoolID, studentID := uuid.New(), uuid.New()
	issue := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	inv := newTestInvoice(t, schoolID, studentID, "INV-202601-00001", issue)
	require.NoError(t, repo.Save(ctx, inv))

	loaded, err := repo.FindByID(ctx, schoolID, inv.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 2)
	assert.Equal(t, "Tuition", loaded.Items[0].Description)
	assert.True(t, loaded.TotalAmount.Equal(decimal.NewFromInt(350)))

	require.NoError(t, loaded.Issue())
	_, err = loaded.RecordPayment(decimal.NewFromInt(100), finance.PaymentMethodCash, "R-1", issue.AddDate(0, 0, 2), nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, loaded))

	reloaded, err := repo.FindByID(ctx, schoolID, inv.ID)
	require.NoError(t, err)
	_, err = reloaded.RecordPayment(decimal.NewFromInt(250), finance.PaymentMethodBankTransfer, "R-2", issue.AddDate(0, 0, 9), nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, reloaded))

	final, err := repo.FindByID(ctx, schoolID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, finance.InvoiceStatusPaid, final.Status)
	require.Len(t, final.Payments, 2)
	assert.Equal(t, "R-1", final.Payments[0].Reference)
	assert.Len(t, final.Items, 2)
}

func TestGormInvoiceRepository_StaleSaveIsRejected(t *testing.T) {
	ctx := context.Background()
	repo := NewGormInvoiceRepository(newSQLiteDB(t))
	schoolID := uuid.New()
	issue := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	inv := newTestInvoice(t, schoolID, uuid.New(), "INV-202601-00002", issue)
	require.NoError(t, inv.Issue())
	require.NoError(t, repo.Save(ctx, inv))

	a, err := repo.FindByID(ctx, schoolID, inv.ID)
	require.NoError(t, err)
	b, err := repo.FindByID(ctx, schoolID, inv.ID)
	require.NoError(t, err)

	_, err = a.RecordPayment(decimal.NewFromInt(350), finance.PaymentMethodCash, "", issue, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, a))

	_, err = b.RecordPayment(decimal.NewFromInt(350), finance.PaymentMethodCash, "", issue, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Save(ctx, b), shared.ErrConcurrencyConflict)

	stored, err := repo.FindByID(ctx, schoolID, inv.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Payments, 1)
}

func TestGormInvoiceRepository_Queries(t *testing.T) {
	ctx := context.Background()
	repo := NewGormInvoiceRepository(newSQLiteDB(t))
	schoolID, studentID := uuid.New(), uuid.New()
	feeID := uuid.New()
	issue := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	issued := newTestInvoice(t, schoolID, studentID, "INV-202601-00001", issue)
	issued.FeeStructureID = &feeID
	require.NoError(t, issued.Issue())
	draft := newTestInvoice(t, schoolID, studentID, "INV-202601-00007", issue)
	for _, inv := range []*finance.Invoice{issued, draft} {
		require.NoError(t, repo.Save(ctx, inv))
	}

	seq, err := repo.NextSequence(ctx, schoolID, "INV-202601-")
	require.NoError(t, err)
	assert.Equal(t, int64(8), seq)

	seq, err = repo.NextSequence(ctx, schoolID, "INV-202602-")
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)

	overdue, err := repo.FindOverdueCandidates(ctx, schoolID, issue.AddDate(0, 2, 0))
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, issued.ID, overdue[0].ID)

	outstanding, err := repo.FindByStudents(ctx, schoolID, []uuid.UUID{studentID}, true)
	require.NoError(t, err)
	assert.Len(t, outstanding, 1)

	all, err := repo.FindByStudents(ctx, schoolID, []uuid.UUID{studentID}, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	invoiced, err := repo.InvoicedStudents(ctx, schoolID, feeID, "Term 1")
	require.NoError(t, err)
	assert.True(t, invoiced[studentID])

	require.NoError(t, repo.Delete(ctx, schoolID, draft.ID))
	_, err = repo.FindByID(ctx, schoolID, draft.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
