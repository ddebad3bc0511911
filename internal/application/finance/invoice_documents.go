package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/finance"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/schoolhub/backend/internal/infrastructure/export"
	"github.com/schoolhub/backend/internal/infrastructure/printing"
	"go.uber.org/zap"
)

// exportBatch is the page size used while walking invoices for an export
const exportBatch = shared.MaxPageSize

// PDF prints an invoice. Students and parents may print their own.
func (s *InvoiceService) PDF(ctx context.Context, actor identity.Actor, id uuid.UUID) (*printing.Document, error) {
	if s.printer == nil {
		return nil, printing.ErrPDFUnavailable
	}
	inv, err := s.find(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	student, err := s.findStudent(ctx, actor.TenantID, inv.StudentID)
	if err != nil {
		return nil, err
	}
	if !student.VisibleTo(actor) {
		return nil, shared.NewDomainError("FORBIDDEN", "You cannot view this invoice")
	}

	doc := &printing.InvoiceDocument{
		Student: printing.StudentLine{
			Name:            student.FullName(),
			AdmissionNumber: student.AdmissionNumber,
		},
		Number:       inv.InvoiceNumber,
		Status:       string(inv.Status),
		AcademicYear: inv.AcademicYear,
		Term:         inv.Term,
		IssueDate:    inv.IssueDate,
		DueDate:      inv.DueDate,
		Total:        inv.TotalAmount,
		Paid:         inv.PaidAmount,
		Balance:      inv.Balance(),
		Notes:        inv.Notes,
	}
	if student.ClassID != nil {
		if class, err := s.classRepo.FindByID(ctx, actor.TenantID, *student.ClassID); err == nil {
			doc.Student.ClassName = class.DisplayName()
		}
	}
	if sch := s.loadSchool(ctx, actor.TenantID); sch != nil {
		doc.School = printing.SchoolHeader{Name: sch.Name, Address: sch.Address, Phone: sch.Phone, Email: sch.Email}
		doc.Currency = sch.Settings.Currency
	}
	for _, item := range inv.Items {
		doc.Items = append(doc.Items, printing.InvoiceLine{Description: item.Description, Amount: item.Amount})
	}
	for _, p := range inv.Payments {
		doc.Payments = append(doc.Payments, printing.PaymentLine{
			Amount:    p.Amount,
			Method:    string(p.Method),
			Reference: p.Reference,
			PaidAt:    p.PaidAt,
		})
	}

	pdf, err := s.printer.InvoicePDF(ctx, doc)
	if err != nil {
		s.logger.Error("Failed to print invoice", zap.String("invoice_number", inv.InvoiceNumber), zap.Error(err))
		return nil, err
	}
	return pdf, nil
}

// Export writes the invoices matching the filter to an xlsx workbook
func (s *InvoiceService) Export(ctx context.Context, tenantID uuid.UUID, filter InvoiceListFilter) ([]byte, string, error) {
	sheet, err := s.ExportSheet(ctx, tenantID, filter)
	if err != nil {
		return nil, "", err
	}
	data, err := export.Workbook(sheet)
	if err != nil {
		return nil, "", err
	}
	return data, export.FileName("invoices", time.Now()), nil
}

// ExportSheet builds the invoice sheet, walking every page of the filter
func (s *InvoiceService) ExportSheet(ctx context.Context, tenantID uuid.UUID, filter InvoiceListFilter) (*export.Sheet, error) {
	sheet := &export.Sheet{
		Name: "Invoices",
		Columns: []export.Column{
			{Header: "Number", Width: 20},
			{Header: "Student", Width: 26},
			{Header: "Academic Year", Width: 14},
			{Header: "Term", Width: 12},
			{Header: "Issue Date", Width: 12},
			{Header: "Due Date", Width: 12},
			{Header: "Status", Width: 14},
			{Header: "Total", Width: 12},
			{Header: "Paid", Width: 12},
			{Header: "Balance", Width: 12},
		},
	}

	f := listFilter(filter)
	f.Page, f.PageSize = 1, exportBatch
	for {
		list, total, err := s.invoiceRepo.FindAll(ctx, tenantID, f)
		if err != nil {
			return nil, err
		}
		names := s.studentNames(ctx, tenantID, list)
		for _, inv := range list {
			sheet.AddRow(inv.InvoiceNumber, names[inv.StudentID], inv.AcademicYear, inv.Term,
				inv.IssueDate, inv.DueDate, string(inv.Status), inv.TotalAmount, inv.PaidAmount, inv.Balance())
		}
		if len(list) < f.PageSize || int64(f.Page*f.PageSize) >= total {
			break
		}
		f.Page++
	}
	return sheet, nil
}

// outstanding reports whether an invoice still counts towards the amount owed
func outstanding(inv *finance.Invoice) bool {
	return inv.Status.IsOutstanding() && inv.Balance().IsPositive()
}
