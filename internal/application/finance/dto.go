package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/finance"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// FeeStructureRequest creates or replaces a fee structure
type FeeStructureRequest struct {
	Name         string          `json:"name" binding:"required,notblank,max=200"`
	ClassID      *uuid.UUID      `json:"class_id"`
	Amount       decimal.Decimal `json:"amount"`
	Frequency    string          `json:"frequency" binding:"omitempty,oneof=one_time monthly termly annually"`
	AcademicYear string          `json:"academic_year" binding:"max=20"`
	Term         string          `json:"term" binding:"max=50"`
	DueDays      int             `json:"due_days" binding:"omitempty,min=0,max=365"`
	Description  string          `json:"description" binding:"max=1000"`
	IsActive     *bool           `json:"is_active"`
}

func (r FeeStructureRequest) details() finance.FeeDetails {
	return finance.FeeDetails{
		Name:         r.Name,
		ClassID:      r.ClassID,
		Amount:       r.Amount,
		Frequency:    finance.Frequency(r.Frequency),
		AcademicYear: r.AcademicYear,
		Term:         r.Term,
		DueDays:      r.DueDays,
		Description:  r.Description,
	}
}

// FeeStructureListFilter narrows fee structure listings
type FeeStructureListFilter struct {
	shared.PageQuery
	ClassID  *uuid.UUID `form:"class_id,parser=encoding.TextUnmarshaler"`
	IsActive *bool      `form:"is_active"`
}

// FeeStructureResponse is the API view of a fee structure
type FeeStructureResponse struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	ClassID      *uuid.UUID      `json:"class_id,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Frequency    string          `json:"frequency"`
	AcademicYear string          `json:"academic_year,omitempty"`
	Term         string          `json:"term,omitempty"`
	DueDays      int             `json:"due_days"`
	Description  string          `json:"description,omitempty"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Version      int             `json:"version"`
}

// ToFeeStructureResponse converts a fee structure
func ToFeeStructureResponse(f *finance.FeeStructure) FeeStructureResponse {
	return FeeStructureResponse{
		ID:           f.ID,
		Name:         f.Name,
		ClassID:      f.ClassID,
		Amount:       f.Amount,
		Frequency:    string(f.Frequency),
		AcademicYear: f.AcademicYear,
		Term:         f.Term,
		DueDays:      f.DueDays,
		Description:  f.Description,
		IsActive:     f.IsActive,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
		Version:      f.Version,
	}
}

// InvoiceItemRequest is one billed line
type InvoiceItemRequest struct {
	Description string          `json:"description" binding:"required,notblank,max=500"`
	Amount      decimal.Decimal `json:"amount"`
}

// InvoiceRequest creates or replaces a draft invoice
type InvoiceRequest struct {
	StudentID      uuid.UUID            `json:"student_id" binding:"required"`
	FeeStructureID *uuid.UUID           `json:"fee_structure_id"`
	AcademicYear   string               `json:"academic_year" binding:"max=20"`
	Term           string               `json:"term" binding:"max=50"`
	Items          []InvoiceItemRequest `json:"items" binding:"required,min=1,max=100,dive"`
	IssueDate      *shared.Date         `json:"issue_date"`
	DueDate        *shared.Date         `json:"due_date"`
	Notes          string               `json:"notes" binding:"max=2000"`
	Issue          bool                 `json:"issue"`
}

// InvoiceListFilter narrows invoice listings
type InvoiceListFilter struct {
	shared.PageQuery
	StudentID      *uuid.UUID   `form:"student_id,parser=encoding.TextUnmarshaler"`
	FeeStructureID *uuid.UUID   `form:"fee_structure_id,parser=encoding.TextUnmarshaler"`
	Status         string       `form:"status" binding:"omitempty,oneof=draft issued partially_paid paid overdue cancelled"`
	From           *shared.Date `form:"from"`
	To             *shared.Date `form:"to"`
}

// RecordPaymentRequest records money received against an invoice
type RecordPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Method    string          `json:"method" binding:"required,oneof=cash bank_transfer card mobile_money cheque"`
	Reference string          `json:"reference" binding:"max=100"`
	PaidAt    *time.Time      `json:"paid_at"`
}

// CancelInvoiceRequest voids an invoice
type CancelInvoiceRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// GenerateInvoicesRequest bills every active student of a class from a fee structure
type GenerateInvoicesRequest struct {
	FeeStructureID uuid.UUID    `json:"fee_structure_id" binding:"required"`
	ClassID        *uuid.UUID   `json:"class_id"`
	IssueDate      *shared.Date `json:"issue_date"`
	Issue          bool         `json:"issue"`
}

// GenerateInvoicesResult reports a bulk billing run
type GenerateInvoicesResult struct {
	Created  int               `json:"created"`
	Skipped  int               `json:"skipped"`
	Invoices []InvoiceResponse `json:"invoices"`
}

// InvoiceItemResponse is the API view of an invoice line
type InvoiceItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// PaymentResponse is the API view of a payment
type PaymentResponse struct {
	ID         uuid.UUID       `json:"id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Reference  string          `json:"reference,omitempty"`
	PaidAt     time.Time       `json:"paid_at"`
	RecordedBy *uuid.UUID      `json:"recorded_by,omitempty"`
}

// InvoiceResponse is the API view of an invoice
type InvoiceResponse struct {
	ID             uuid.UUID             `json:"id"`
	InvoiceNumber  string                `json:"invoice_number"`
	StudentID      uuid.UUID             `json:"student_id"`
	StudentName    string                `json:"student_name,omitempty"`
	FeeStructureID *uuid.UUID            `json:"fee_structure_id,omitempty"`
	AcademicYear   string                `json:"academic_year,omitempty"`
	Term           string                `json:"term,omitempty"`
	Items          []InvoiceItemResponse `json:"items"`
	TotalAmount    decimal.Decimal       `json:"total_amount"`
	PaidAmount     decimal.Decimal       `json:"paid_amount"`
	Balance        decimal.Decimal       `json:"balance"`
	Status         string                `json:"status"`
	IssueDate      shared.Date           `json:"issue_date"`
	DueDate        shared.Date           `json:"due_date"`
	Notes          string                `json:"notes,omitempty"`
	CancelReason   string                `json:"cancel_reason,omitempty"`
	Payments       []PaymentResponse     `json:"payments"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
	Version        int                   `json:"version"`
}

// ToInvoiceResponse converts an invoice
func ToInvoiceResponse(i *finance.Invoice) InvoiceResponse {
	items := make([]InvoiceItemResponse, len(i.Items))
	for k, item := range i.Items {
		items[k] = InvoiceItemResponse{ID: item.ID, Description: item.Description, Amount: item.Amount}
	}
	payments := make([]PaymentResponse, len(i.Payments))
	for k, p := range i.Payments {
		payments[k] = PaymentResponse{
			ID:         p.ID,
			Amount:     p.Amount,
			Method:     string(p.Method),
			Reference:  p.Reference,
			PaidAt:     p.PaidAt,
			RecordedBy: p.RecordedBy,
		}
	}
	return InvoiceResponse{
		ID:             i.ID,
		InvoiceNumber:  i.InvoiceNumber,
		StudentID:      i.StudentID,
		FeeStructureID: i.FeeStructureID,
		AcademicYear:   i.AcademicYear,
		Term:           i.Term,
		Items:          items,
		TotalAmount:    i.TotalAmount,
		PaidAmount:     i.PaidAmount,
		Balance:        i.Balance(),
		Status:         string(i.Status),
		IssueDate:      shared.NewDate(i.IssueDate),
		DueDate:        shared.NewDate(i.DueDate),
		Notes:          i.Notes,
		CancelReason:   i.CancelReason,
		Payments:       payments,
		CreatedAt:      i.CreatedAt,
		UpdatedAt:      i.UpdatedAt,
		Version:        i.Version,
	}
}

// StudentInvoicesResponse groups one student's invoices for the self-service views
type StudentInvoicesResponse struct {
	StudentID   uuid.UUID         `json:"student_id"`
	StudentName string            `json:"student_name"`
	Outstanding decimal.Decimal   `json:"outstanding"`
	Invoices    []InvoiceResponse `json:"invoices"`
}
