package persistence

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/finance"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/schoolhub/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// Save writes the invoice header, replaces its items and appends unseen payments
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *finance.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveVersioned(ctx, tx, model, invoice.ID, invoice.Version); err != nil {
			return err
		}

		if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceItemModel{}).Error; err != nil {
			return err
		}
		if len(model.Items) > 0 {
			if err := tx.Create(&model.Items).Error; err != nil {
				return err
			}
		}

		if len(model.Payments) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.Payments).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete deletes an invoice with its items and payments
func (r *GormInvoiceRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ? AND invoice_id = ?", tenantID, id).Delete(&models.PaymentModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tenant_id = ? AND invoice_id = ?", tenantID, id).Delete(&models.InvoiceItemModel{}).Error; err != nil {
			return err
		}
		return deleteResult(tx.Delete(&models.InvoiceModel{}, "tenant_id = ? AND id = ?", tenantID, id))
	})
}

// FindByID finds an invoice with its items and payments
func (r *GormInvoiceRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*finance.Invoice, error) {
	var model models.InvoiceModel
	if err := r.preload(r.db.WithContext(ctx)).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists invoices matching the filter
func (r *GormInvoiceRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*finance.Invoice, int64, error) {
	var invoiceModels []*models.InvoiceModel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).Where("tenant_id = ?", tenantID)
	query = applySearch(query, filter.Search, "invoice_number", "notes")
	for key, value := range filter.Filters {
		switch key {
		case "student_id":
			query = query.Where("student_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "fee_structure_id":
			query = query.Where("fee_structure_id = ?", value)
		case "from":
			query = query.Where("issue_date >= ?", value)
		case "to":
			query = query.Where("issue_date <= ?", value)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := r.preload(applyPaging(query, filter, InvoiceSortFields, "issue_date")).Find(&invoiceModels).Error; err != nil {
		return nil, 0, err
	}
	return toInvoices(invoiceModels), total, nil
}

// FindByStudents returns invoices of the students, newest first
func (r *GormInvoiceRepository) FindByStudents(ctx context.Context, tenantID uuid.UUID, studentIDs []uuid.UUID, outstandingOnly bool) ([]*finance.Invoice, error) {
	if len(studentIDs) == 0 {
		return []*finance.Invoice{}, nil
	}
	query := r.db.WithContext(ctx).Where("tenant_id = ? AND student_id IN ?", tenantID, studentIDs)
	if outstandingOnly {
		query = query.Where("status IN ?", outstandingStatuses())
	}

	var invoiceModels []*models.InvoiceModel
	if err := r.preload(query).Order("due_date DESC").Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	return toInvoices(invoiceModels), nil
}

// FindOverdueCandidates returns issued or partially paid invoices due before the date
func (r *GormInvoiceRepository) FindOverdueCandidates(ctx context.Context, tenantID uuid.UUID, before time.Time) ([]*finance.Invoice, error) {
	var invoiceModels []*models.InvoiceModel
	if err := r.preload(r.db.WithContext(ctx)).
		Where("tenant_id = ? AND status IN ? AND due_date < ?", tenantID,
			[]finance.InvoiceStatus{finance.InvoiceStatusIssued, finance.InvoiceStatusPartiallyPaid}, before).
		Order("due_date ASC").
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	return toInvoices(invoiceModels), nil
}

// InvoicedStudents returns which students already hold a live invoice for the structure and term
func (r *GormInvoiceRepository) InvoicedStudents(ctx context.Context, tenantID, feeStructureID uuid.UUID, term string) (map[uuid.UUID]bool, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("tenant_id = ? AND fee_structure_id = ? AND term = ? AND status <> ?",
			tenantID, feeStructureID, term, finance.InvoiceStatusCancelled).
		Distinct("student_id").
		Pluck("student_id", &ids).Error; err != nil {
		return nil, err
	}
	result := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

// NextSequence returns one past the highest sequence used with the prefix
func (r *GormInvoiceRepository) NextSequence(ctx context.Context, tenantID uuid.UUID, prefix string) (int64, error) {
	var numbers []string
	err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("tenant_id = ? AND invoice_number LIKE ?", tenantID, prefix+"%").
		Order("invoice_number DESC").
		Limit(1).
		Pluck("invoice_number", &numbers).Error
	if err != nil {
		return 0, err
	}
	if len(numbers) == 0 {
		return 1, nil
	}
	seq, err := strconv.ParseInt(strings.TrimPrefix(numbers[0], prefix), 10, 64)
	if err != nil {
		return 0, err
	}
	return seq + 1, nil
}

func (r *GormInvoiceRepository) preload(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("paid_at ASC") })
}

func outstandingStatuses() []finance.InvoiceStatus {
	return []finance.InvoiceStatus{
		finance.InvoiceStatusIssued, finance.InvoiceStatusPartiallyPaid, finance.InvoiceStatusOverdue,
	}
}

func toInvoices(invoiceModels []*models.InvoiceModel) []*finance.Invoice {
	result := make([]*finance.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		result[i] = model.ToDomain()
	}
	return result
}

var _ finance.InvoiceRepository = (*GormInvoiceRepository)(nil)
