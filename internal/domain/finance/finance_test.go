package finance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFeeStructure(t *testing.T) {
	f, err := NewFeeStructure(uuid.New(), FeeDetails{Name: "Tuition", Amount: decimal.NewFromFloat(1500.555)})
	require.NoError(t, err)
	assert.Equal(t, FrequencyTermly, f.Frequency)
	assert.Equal(t, DefaultDueDays, f.DueDays)
	assert.Equal(t, "1500.56", f.Amount.StringFixed(2))
	assert.True(t, f.IsActive)

	_, err = NewFeeStructure(uuid.New(), FeeDetails{Name: "Tuition", Amount: decimal.NewFromInt(-1)})
	assert.EqualError(t, err, "Amount must be non-negative")
	_, err = NewFeeStructure(uuid.New(), FeeDetails{Name: " ", Amount: decimal.NewFromInt(1)})
	assert.EqualError(t, err, "Name is required")
	_, err = NewFeeStructure(uuid.New(), FeeDetails{Name: "Bus", Amount: decimal.NewFromInt(1), Frequency: "weekly"})
	assert.Error(t, err)

	require.NoError(t, f.Deactivate())
	assert.Error(t, f.Deactivate())
	require.NoError(t, f.Activate())
}

func newTestInvoice(t *testing.T, amounts ...int64) *Invoice {
	t.Helper()
	items := make([]InvoiceItem, 0, len(amounts))
	for _, a := range amounts {
		item, err := NewInvoiceItem("Tuition", decimal.NewFromInt(a))
		require.NoError(t, err)
		items = append(items, item)
	}
	issue := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	inv, err := NewInvoice(uuid.New(), FormatInvoiceNumber(issue, 1), InvoiceDraft{
		StudentID: uuid.New(),
		Items:     items,
		IssueDate: issue,
		DueDate:   issue.AddDate(0, 0, 30),
	})
	require.NoError(t, err)
	return inv
}

func TestFormatInvoiceNumber(t *testing.T) {
	at := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "INV-202503-00042", FormatInvoiceNumber(at, 42))
	assert.Equal(t, "INV-202503-", InvoiceNumberPrefix(at))
}

func TestNewInvoice(t *testing.T) {
	inv := newTestInvoice(t, 1000, 250)
	assert.Equal(t, InvoiceStatusDraft, inv.Status)
	assert.True(t, decimal.NewFromInt(1250).Equal(inv.TotalAmount))
	assert.True(t, inv.Balance().Equal(inv.TotalAmount))

	_, err := NewInvoice(uuid.New(), "INV-1", InvoiceDraft{StudentID: uuid.New()})
	assert.Error(t, err)

	item, _ := NewInvoiceItem("Fee", decimal.NewFromInt(10))
	issue := time.Now()
	_, err = NewInvoice(uuid.New(), "INV-1", InvoiceDraft{StudentID: uuid.New(), Items: []InvoiceItem{item}, IssueDate: issue, DueDate: issue.AddDate(0, 0, -1)})
	assert.Error(t, err)

	_, err = NewInvoiceItem("Fee", decimal.NewFromInt(-5))
	assert.EqualError(t, err, "Item amount must be non-negative")
}

func TestInvoice_PaymentFlow(t *testing.T) {
	inv := newTestInvoice(t, 1000)

	_, err := inv.RecordPayment(decimal.NewFromInt(100), PaymentMethodCash, "", time.Time{}, nil)
	assert.Error(t, err, "draft invoices cannot take payments")

	require.NoError(t, inv.Issue())
	assert.Error(t, inv.Issue())
	assert.Error(t, inv.UpdateDraft(InvoiceDraft{}))

	_, err = inv.RecordPayment(decimal.NewFromInt(1001), PaymentMethodCash, "", time.Time{}, nil)
	assert.Error(t, err)
	_, err = inv.RecordPayment(decimal.Zero, PaymentMethodCash, "", time.Time{}, nil)
	assert.Error(t, err)
	_, err = inv.RecordPayment(decimal.NewFromInt(10), "barter", "", time.Time{}, nil)
	assert.Error(t, err)

	p, err := inv.RecordPayment(decimal.NewFromInt(400), PaymentMethodMobileMoney, "MP123", time.Time{}, nil)
	require.NoError(t, err)
	assert.Equal(t, PaymentMethodMobileMoney, p.Method)
	assert.Equal(t, InvoiceStatusPartiallyPaid, inv.Status)
	assert.True(t, decimal.NewFromInt(600).Equal(inv.Balance()))

	assert.Error(t, inv.Cancel("mistake"))

	_, err = inv.RecordPayment(decimal.NewFromInt(600), PaymentMethodCard, "", time.Time{}, nil)
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusPaid, inv.Status)
	assert.True(t, inv.Balance().IsZero())
	assert.False(t, inv.CanDelete())
}

func TestInvoice_IssueWithNothingDue(t *testing.T) {
	inv := newTestInvoice(t, 0)
	require.NoError(t, inv.Issue())
	assert.Equal(t, InvoiceStatusPaid, inv.Status)
	assert.True(t, inv.Balance().IsZero())

	events := inv.GetDomainEvents()
	assert.Equal(t, EventTypeInvoiceIssued, events[len(events)-1].EventType())

	assert.False(t, inv.MarkOverdue(inv.DueDate.AddDate(0, 1, 0)))
	assert.Error(t, inv.Cancel("waived"))
	_, err := inv.RecordPayment(decimal.NewFromInt(1), PaymentMethodCash, "", time.Time{}, nil)
	assert.Error(t, err)
}

func TestInvoice_MarkOverdue(t *testing.T) {
	inv := newTestInvoice(t, 500)
	afterDue := inv.DueDate.AddDate(0, 0, 1)

	assert.False(t, inv.MarkOverdue(afterDue), "drafts never go overdue")
	require.NoError(t, inv.Issue())
	assert.False(t, inv.MarkOverdue(inv.DueDate))
	assert.True(t, inv.MarkOverdue(afterDue))
	assert.Equal(t, InvoiceStatusOverdue, inv.Status)
	assert.False(t, inv.MarkOverdue(afterDue))

	_, err := inv.RecordPayment(decimal.NewFromInt(500), PaymentMethodCash, "", time.Time{}, nil)
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusPaid, inv.Status)
}

func TestInvoice_Cancel(t *testing.T) {
	inv := newTestInvoice(t, 500)
	require.NoError(t, inv.Cancel("duplicate"))
	assert.Equal(t, InvoiceStatusCancelled, inv.Status)
	assert.Equal(t, "duplicate", inv.CancelReason)
	assert.Error(t, inv.Cancel(""))
	assert.Error(t, inv.Issue())
}
