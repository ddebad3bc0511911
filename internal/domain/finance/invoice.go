package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceStatus is the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "draft"
	InvoiceStatusIssued        InvoiceStatus = "issued"
	InvoiceStatusPartiallyPaid InvoiceStatus = "partially_paid"
	InvoiceStatusPaid          InvoiceStatus = "paid"
	InvoiceStatusOverdue       InvoiceStatus = "overdue"
	InvoiceStatusCancelled     InvoiceStatus = "cancelled"
)

// IsValid reports whether s is a known status
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusIssued, InvoiceStatusPartiallyPaid,
		InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// CanAcceptPayment reports whether payments may be recorded in this status
func (s InvoiceStatus) CanAcceptPayment() bool {
	return s == InvoiceStatusIssued || s == InvoiceStatusPartiallyPaid || s == InvoiceStatusOverdue
}

// IsOutstanding reports whether money is still owed
func (s InvoiceStatus) IsOutstanding() bool {
	return s.CanAcceptPayment()
}

// PaymentMethod is how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodMobileMoney  PaymentMethod = "mobile_money"
	PaymentMethodCheque       PaymentMethod = "cheque"
)

// ParsePaymentMethod validates a payment method
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCard, PaymentMethodMobileMoney, PaymentMethodCheque:
		return m, nil
	}
	return "", shared.NewDomainError("INVALID_PAYMENT_METHOD", "Method must be cash, bank_transfer, card, mobile_money or cheque")
}

// InvoiceItem is one billed line
type InvoiceItem struct {
	ID          uuid.UUID
	Description string
	Amount      decimal.Decimal
}

// NewInvoiceItem validates and creates a line item
func NewInvoiceItem(description string, amount decimal.Decimal) (InvoiceItem, error) {
	description, err := shared.RequireText("INVALID_ITEM", "Item description", description, 500)
	if err != nil {
		return InvoiceItem{}, err
	}
	if err := shared.RequireNonNegative("INVALID_ITEM", "Item amount", amount); err != nil {
		return InvoiceItem{}, err
	}
	return InvoiceItem{ID: uuid.New(), Description: description, Amount: amount.Round(2)}, nil
}

// Payment is money received against an invoice
type Payment struct {
	ID         uuid.UUID
	Amount     decimal.Decimal
	Method     PaymentMethod
	Reference  string
	PaidAt     time.Time
	RecordedBy *uuid.UUID
	CreatedAt  time.Time
}

// Invoice bills a student
type Invoice struct {
	shared.TenantAggregateRoot
	InvoiceNumber  string
	StudentID      uuid.UUID
	FeeStructureID *uuid.UUID
	AcademicYear   string
	Term           string
	Items          []InvoiceItem
	TotalAmount    decimal.Decimal
	PaidAmount     decimal.Decimal
	Status         InvoiceStatus
	IssueDate      time.Time
	DueDate        time.Time
	Notes          string
	CancelReason   string
	Payments       []Payment
}

// InvoiceDraft carries the editable fields of a draft invoice
type InvoiceDraft struct {
	StudentID      uuid.UUID
	FeeStructureID *uuid.UUID
	AcademicYear   string
	Term           string
	Items          []InvoiceItem
	IssueDate      time.Time
	DueDate        time.Time
	Notes          string
}

// FormatInvoiceNumber builds INV-YYYYMM-NNNNN
func FormatInvoiceNumber(at time.Time, seq int64) string {
	return fmt.Sprintf("INV-%s-%05d", at.Format("200601"), seq)
}

// InvoiceNumberPrefix returns the INV-YYYYMM- prefix for the month of at
func InvoiceNumberPrefix(at time.Time) string {
	return "INV-" + at.Format("200601") + "-"
}

// NewInvoice creates a draft invoice
func NewInvoice(tenantID uuid.UUID, number string, draft InvoiceDraft) (*Invoice, error) {
	number, err := shared.RequireText("INVALID_INVOICE_NUMBER", "Invoice number", number, 50)
	if err != nil {
		return nil, err
	}
	inv := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		InvoiceNumber:       number,
		PaidAmount:          decimal.Zero,
		Status:              InvoiceStatusDraft,
		Payments:            []Payment{},
	}
	if err := inv.apply(draft); err != nil {
		return nil, err
	}
	inv.AddDomainEvent(NewInvoiceEvent(EventTypeInvoiceCreated, inv))
	return inv, nil
}

// UpdateDraft replaces the editable fields. Only drafts can be edited.
func (i *Invoice) UpdateDraft(draft InvoiceDraft) error {
	if i.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft invoices can be edited")
	}
	if err := i.apply(draft); err != nil {
		return err
	}
	i.Touch()
	i.AddDomainEvent(NewInvoiceEvent(EventTypeInvoiceUpdated, i))
	return nil
}

func (i *Invoice) apply(d InvoiceDraft) error {
	if d.StudentID == uuid.Nil {
		return shared.NewDomainError("INVALID_STUDENT", "Student is required")
	}
	if len(d.Items) == 0 {
		return shared.NewDomainError("INVALID_ITEMS", "Invoice must have at least one item")
	}
	total := decimal.Zero
	for _, item := range d.Items {
		if err := shared.RequireNonNegative("INVALID_ITEM", "Item amount", item.Amount); err != nil {
			return err
		}
		if strings.TrimSpace(item.Description) == "" {
			return shared.NewDomainError("INVALID_ITEM", "Item description is required")
		}
		total = total.Add(item.Amount)
	}
	if d.IssueDate.IsZero() {
		d.IssueDate = time.Now()
	}
	d.IssueDate = day(d.IssueDate)
	if d.DueDate.IsZero() {
		d.DueDate = d.IssueDate.AddDate(0, 0, DefaultDueDays)
	}
	d.DueDate = day(d.DueDate)
	if d.DueDate.Before(d.IssueDate) {
		return shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be before the issue date")
	}
	notes, err := shared.OptionalText("INVALID_NOTES", "Notes", d.Notes, 2000)
	if err != nil {
		return err
	}

	i.StudentID = d.StudentID
	i.FeeStructureID = d.FeeStructureID
	i.AcademicYear = strings.TrimSpace(d.AcademicYear)
	i.Term = strings.TrimSpace(d.Term)
	i.Items = d.Items
	i.TotalAmount = total
	i.IssueDate = d.IssueDate
	i.DueDate = d.DueDate
	i.Notes = notes
	return nil
}

// Issue sends a draft invoice to the payer. An invoice with nothing to pay is settled on issue.
func (i *Invoice) Issue() error {
	if i.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft invoices can be issued")
	}
	i.Status = InvoiceStatusIssued
	if !i.Balance().IsPositive() {
		i.Status = InvoiceStatusPaid
	}
	i.Touch()
	i.AddDomainEvent(NewInvoiceEvent(EventTypeInvoiceIssued, i))
	return nil
}

// RecordPayment applies a payment. The amount may not exceed the balance.
func (i *Invoice) RecordPayment(amount decimal.Decimal, method PaymentMethod, reference string, paidAt time.Time, recordedBy *uuid.UUID) (*Payment, error) {
	if !i.Status.CanAcceptPayment() {
		return nil, shared.NewDomainError("INVALID_STATE", "Payments can only be recorded for issued, partially paid or overdue invoices")
	}
	if err := shared.RequirePositive("INVALID_AMOUNT", "Payment amount", amount); err != nil {
		return nil, err
	}
	amount = amount.Round(2)
	if amount.GreaterThan(i.Balance()) {
		return nil, shared.NewDomainError("PAYMENT_EXCEEDS_BALANCE", "Payment exceeds the outstanding balance of "+i.Balance().StringFixed(2))
	}
	method, err := ParsePaymentMethod(string(method))
	if err != nil {
		return nil, err
	}
	reference, err = shared.OptionalText("INVALID_REFERENCE", "Reference", reference, 100)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if paidAt.IsZero() {
		paidAt = now
	}
	if paidAt.After(now.Add(time.Minute)) {
		return nil, shared.NewDomainError("INVALID_DATE", "Payment date cannot be in the future")
	}

	p := Payment{
		ID:         uuid.New(),
		Amount:     amount,
		Method:     method,
		Reference:  reference,
		PaidAt:     paidAt,
		RecordedBy: recordedBy,
		CreatedAt:  now,
	}
	i.Payments = append(i.Payments, p)
	i.PaidAmount = i.PaidAmount.Add(amount)
	if i.Balance().IsZero() {
		i.Status = InvoiceStatusPaid
	} else {
		i.Status = InvoiceStatusPartiallyPaid
	}
	i.Touch()
	i.AddDomainEvent(NewPaymentRecordedEvent(i, p))
	return &p, nil
}

// MarkOverdue flags an unpaid invoice whose due date has passed.
// Returns true when the status changed.
func (i *Invoice) MarkOverdue(today time.Time) bool {
	if i.Status != InvoiceStatusIssued && i.Status != InvoiceStatusPartiallyPaid {
		return false
	}
	if !day(today).After(i.DueDate) {
		return false
	}
	i.Status = InvoiceStatusOverdue
	i.Touch()
	i.AddDomainEvent(NewInvoiceEvent(EventTypeInvoiceOverdue, i))
	return true
}

// Cancel voids a draft or issued invoice that has no payments
func (i *Invoice) Cancel(reason string) error {
	if i.Status != InvoiceStatusDraft && i.Status != InvoiceStatusIssued {
		return shared.NewDomainError("INVALID_STATE", "Only draft or issued invoices can be cancelled")
	}
	if len(i.Payments) > 0 || i.PaidAmount.IsPositive() {
		return shared.NewDomainError("INVALID_STATE", "Invoices with payments cannot be cancelled")
	}
	reason, err := shared.OptionalText("INVALID_REASON", "Reason", reason, 500)
	if err != nil {
		return err
	}
	i.Status = InvoiceStatusCancelled
	i.CancelReason = reason
	i.Touch()
	i.AddDomainEvent(NewInvoiceEvent(EventTypeInvoiceCancelled, i))
	return nil
}

// CanDelete reports whether the invoice may be removed
func (i *Invoice) CanDelete() bool {
	return i.Status == InvoiceStatusDraft
}

// Balance returns total minus paid
func (i *Invoice) Balance() decimal.Decimal {
	return i.TotalAmount.Sub(i.PaidAmount)
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
