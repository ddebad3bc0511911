package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/finance"
	"github.com/shopspring/decimal"
)

// FeeStructureModel is the persistence model for the FeeStructure aggregate.
type FeeStructureModel struct {
	TenantAggregateModel
	Name         string            `gorm:"type:varchar(200);not null"`
	ClassID      *uuid.UUID        `gorm:"type:uuid;index"`
	Amount       decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	Frequency    finance.Frequency `gorm:"type:varchar(20);not null"`
	AcademicYear string            `gorm:"type:varchar(20)"`
	Term         string            `gorm:"type:varchar(50)"`
	DueDays      int               `gorm:"not null;default:30"`
	Description  string            `gorm:"type:text"`
	IsActive     bool              `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (FeeStructureModel) TableName() string {
	return "fee_structures"
}

// ToDomain converts the persistence model to a domain FeeStructure.
func (m *FeeStructureModel) ToDomain() *finance.FeeStructure {
	return &finance.FeeStructure{
		TenantAggregateRoot: m.TenantAggregateRoot(),
		FeeDetails: finance.FeeDetails{
			Name:         m.Name,
			ClassID:      m.ClassID,
			Amount:       m.Amount,
			Frequency:    m.Frequency,
			AcademicYear: m.AcademicYear,
			Term:         m.Term,
			DueDays:      m.DueDays,
			Description:  m.Description,
		},
		IsActive: m.IsActive,
	}
}

// FeeStructureModelFromDomain creates a new persistence model from a domain FeeStructure.
func FeeStructureModelFromDomain(f *finance.FeeStructure) *FeeStructureModel {
	m := &FeeStructureModel{
		Name:         f.Name,
		ClassID:      f.ClassID,
		Amount:       f.Amount,
		Frequency:    f.Frequency,
		AcademicYear: f.AcademicYear,
		Term:         f.Term,
		DueDays:      f.DueDays,
		Description:  f.Description,
		IsActive:     f.IsActive,
	}
	m.FromDomainTenantAggregateRoot(f.TenantAggregateRoot)
	return m
}

// InvoiceModel is the persistence model for the Invoice aggregate.
// Items and payments live in child tables.
type InvoiceModel struct {
	TenantAggregateModel
	InvoiceNumber  string                `gorm:"type:varchar(30);not null"`
	StudentID      uuid.UUID             `gorm:"type:uuid;not null;index"`
	FeeStructureID *uuid.UUID            `gorm:"type:uuid;index"`
	AcademicYear   string                `gorm:"type:varchar(20)"`
	Term           string                `gorm:"type:varchar(50)"`
	TotalAmount    decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	PaidAmount     decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	Status         finance.InvoiceStatus `gorm:"type:varchar(20);not null;index"`
	IssueDate      time.Time             `gorm:"type:date;not null"`
	DueDate        time.Time             `gorm:"type:date;not null;index"`
	Notes          string                `gorm:"type:text"`
	CancelReason   string                `gorm:"type:varchar(500)"`
	Items          []InvoiceItemModel    `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	Payments       []PaymentModel        `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice.
func (m *InvoiceModel) ToDomain() *finance.Invoice {
	items := make([]finance.InvoiceItem, len(m.Items))
	for i, it := range m.Items {
		items[i] = finance.InvoiceItem{ID: it.ID, Description: it.Description, Amount: it.Amount}
	}
	payments := make([]finance.Payment, len(m.Payments))
	for i, p := range m.Payments {
		payments[i] = finance.Payment{
			ID:         p.ID,
			Amount:     p.Amount,
			Method:     p.Method,
			Reference:  p.Reference,
			PaidAt:     p.PaidAt,
			RecordedBy: p.RecordedBy,
			CreatedAt:  p.CreatedAt,
		}
	}
	return &finance.Invoice{
		TenantAggregateRoot: m.TenantAggregateRoot(),
		InvoiceNumber:       m.InvoiceNumber,
		StudentID:           m.StudentID,
		FeeStructureID:      m.FeeStructureID,
		AcademicYear:        m.AcademicYear,
		Term:                m.Term,
		Items:               items,
		TotalAmount:         m.TotalAmount,
		PaidAmount:          m.PaidAmount,
		Status:              m.Status,
		IssueDate:           m.IssueDate,
		DueDate:             m.DueDate,
		Notes:               m.Notes,
		CancelReason:        m.CancelReason,
		Payments:            payments,
	}
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *finance.Invoice) *InvoiceModel {
	m := &InvoiceModel{
		InvoiceNumber:  inv.InvoiceNumber,
		StudentID:      inv.StudentID,
		FeeStructureID: inv.FeeStructureID,
		AcademicYear:   inv.AcademicYear,
		Term:           inv.Term,
		TotalAmount:    inv.TotalAmount,
		PaidAmount:     inv.PaidAmount,
		Status:         inv.Status,
		IssueDate:      inv.IssueDate,
		DueDate:        inv.DueDate,
		Notes:          inv.Notes,
		CancelReason:   inv.CancelReason,
	}
	m.FromDomainTenantAggregateRoot(inv.TenantAggregateRoot)
	m.Items = make([]InvoiceItemModel, len(inv.Items))
	for i, it := range inv.Items {
		m.Items[i] = InvoiceItemModel{
			ID:          it.ID,
			TenantID:    inv.TenantID,
			InvoiceID:   inv.ID,
			Description: it.Description,
			Amount:      it.Amount,
			SortOrder:   i,
		}
	}
	m.Payments = make([]PaymentModel, len(inv.Payments))
	for i, p := range inv.Payments {
		m.Payments[i] = PaymentModel{
			ID:         p.ID,
			TenantID:   inv.TenantID,
			InvoiceID:  inv.ID,
			Amount:     p.Amount,
			Method:     p.Method,
			Reference:  p.Reference,
			PaidAt:     p.PaidAt,
			RecordedBy: p.RecordedBy,
			CreatedAt:  p.CreatedAt,
		}
	}
	return m
}

// InvoiceItemModel is one line of an invoice.
type InvoiceItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID    uuid.UUID       `gorm:"type:uuid;not null"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"type:varchar(500);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	SortOrder   int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// PaymentModel is a payment against an invoice. Payments are append-only.
type PaymentModel struct {
	ID         uuid.UUID             `gorm:"type:uuid;primary_key"`
	TenantID   uuid.UUID             `gorm:"type:uuid;not null;index"`
	InvoiceID  uuid.UUID             `gorm:"type:uuid;not null;index"`
	Amount     decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	Method     finance.PaymentMethod `gorm:"type:varchar(20);not null"`
	Reference  string                `gorm:"type:varchar(100)"`
	PaidAt     time.Time             `gorm:"not null;index"`
	RecordedBy *uuid.UUID            `gorm:"type:uuid"`
	CreatedAt  time.Time             `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}
