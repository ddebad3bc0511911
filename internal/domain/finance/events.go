package finance

import (
	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate types
const (
	AggregateTypeFeeStructure = "FeeStructure"
	AggregateTypeInvoice      = "Invoice"
)

// Event types
const (
	EventTypeFeeStructureCreated = "fee_structure.created"
	EventTypeFeeStructureUpdated = "fee_structure.updated"
	EventTypeFeeStructureDeleted = "fee_structure.deleted"

	EventTypeInvoiceCreated   = "invoice.created"
	EventTypeInvoiceUpdated   = "invoice.updated"
	EventTypeInvoiceIssued    = "invoice.issued"
	EventTypeInvoiceOverdue   = "invoice.overdue"
	EventTypeInvoiceCancelled = "invoice.cancelled"
	EventTypeInvoiceDeleted   = "invoice.deleted"
	EventTypePaymentRecorded  = "invoice.payment_recorded"
)

// FeeStructureEvent is published on fee structure changes
type FeeStructureEvent struct {
	shared.BaseDomainEvent
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// NewFeeStructureEvent creates a FeeStructureEvent of the given type
func NewFeeStructureEvent(eventType string, f *FeeStructure) *FeeStructureEvent {
	return &FeeStructureEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeFeeStructure, f.ID, f.TenantID),
		Name:            f.Name,
		Amount:          f.Amount,
	}
}

// InvoiceEvent is published on invoice lifecycle changes
type InvoiceEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	StudentID     uuid.UUID       `json:"student_id"`
	Status        InvoiceStatus   `json:"status"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// NewInvoiceEvent creates an InvoiceEvent of the given type
func NewInvoiceEvent(eventType string, i *Invoice) *InvoiceEvent {
	return &InvoiceEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeInvoice, i.ID, i.TenantID),
		InvoiceNumber:   i.InvoiceNumber,
		StudentID:       i.StudentID,
		Status:          i.Status,
		TotalAmount:     i.TotalAmount,
	}
}

// PaymentRecordedEvent is published when money is received
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	PaymentID uuid.UUID       `json:"payment_id"`
	Amount    decimal.Decimal `json:"amount"`
	Balance   decimal.Decimal `json:"balance"`
}

// NewPaymentRecordedEvent creates a PaymentRecordedEvent
func NewPaymentRecordedEvent(i *Invoice, p Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, AggregateTypeInvoice, i.ID, i.TenantID),
		PaymentID:       p.ID,
		Amount:          p.Amount,
		Balance:         i.Balance(),
	}
}
