package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/shared"
)

// FeeStructureRepository persists fee structures
type FeeStructureRepository interface {
	Save(ctx context.Context, fee *FeeStructure) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*FeeStructure, error)
	// FindAll supports filters: class_id, is_active
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*FeeStructure, int64, error)
	CountInvoices(ctx context.Context, tenantID, id uuid.UUID) (int64, error)
}

// InvoiceRepository persists invoices with their items and payments
type InvoiceRepository interface {
	// Save writes the invoice, replacing its items and inserting new payments
	Save(ctx context.Context, invoice *Invoice) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)
	// FindAll supports filters: student_id, status, from, to, fee_structure_id
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*Invoice, int64, error)
	FindByStudents(ctx context.Context, tenantID uuid.UUID, studentIDs []uuid.UUID, outstandingOnly bool) ([]*Invoice, error)
	// FindOverdueCandidates returns issued or partially paid invoices due before the date
	FindOverdueCandidates(ctx context.Context, tenantID uuid.UUID, before time.Time) ([]*Invoice, error)
	// InvoicedStudents returns which students already hold a non-cancelled invoice for the structure and term
	InvoicedStudents(ctx context.Context, tenantID, feeStructureID uuid.UUID, term string) (map[uuid.UUID]bool, error)
	// NextSequence returns the next number to use with the given INV-YYYYMM- prefix
	NextSequence(ctx context.Context, tenantID uuid.UUID, prefix string) (int64, error)
}
