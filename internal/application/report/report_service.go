package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/application/attendance"
	"github.com/schoolhub/backend/internal/application/finance"
	"github.com/schoolhub/backend/internal/application/inventory"
	"github.com/schoolhub/backend/internal/application/people"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/schoolhub/backend/internal/infrastructure/export"
	"github.com/schoolhub/backend/internal/infrastructure/storage"
	"go.uber.org/zap"
)

// Report kinds
const (
	KindStudents   = "students"
	KindAttendance = "attendance"
	KindInvoices   = "invoices"
	KindInventory  = "inventory"
)

const archiveURLTTL = time.Hour

// StudentSheets builds the student export sheet
type StudentSheets interface {
	ExportSheet(ctx context.Context, tenantID uuid.UUID, filter people.StudentListFilter) (*export.Sheet, error)
}

// AttendanceSheets builds the attendance register sheets
type AttendanceSheets interface {
	ExportSheets(ctx context.Context, tenantID uuid.UUID, query attendance.ExportQuery) ([]*export.Sheet, error)
}

// InvoiceSheets builds the invoice export sheet
type InvoiceSheets interface {
	ExportSheet(ctx context.Context, tenantID uuid.UUID, filter finance.InvoiceListFilter) (*export.Sheet, error)
}

// InventorySheets builds the inventory export sheet
type InventorySheets interface {
	ExportSheet(ctx context.Context, tenantID uuid.UUID, filter inventory.ItemListFilter) (*export.Sheet, error)
}

// ReportServiceDeps collects the report service's collaborators
type ReportServiceDeps struct {
	Students   StudentSheets
	Attendance AttendanceSheets
	Invoices   InvoiceSheets
	Inventory  InventorySheets
	Storage    storage.ObjectStorage
	Logger     *zap.Logger
}

// ReportService renders xlsx reports and archives them to object storage
type ReportService struct {
	deps ReportServiceDeps
	now  func() time.Time
}

// NewReportService creates a new report service
func NewReportService(deps ReportServiceDeps) *ReportService {
	if deps.Storage == nil {
		deps.Storage = storage.DisabledStorage{}
	}
	return &ReportService{deps: deps, now: time.Now}
}

// Export renders a report to xlsx and returns the bytes and a file name
func (s *ReportService) Export(ctx context.Context, tenantID uuid.UUID, req ExportRequest) ([]byte, string, error) {
	sheets, err := s.sheets(ctx, tenantID, req)
	if err != nil {
		return nil, "", err
	}
	data, err := export.Workbook(sheets...)
	if err != nil {
		return nil, "", err
	}
	return data, export.FileName(req.Kind, s.now()), nil
}

// Archive renders a report, stores it under the school's exports prefix and
// returns a presigned download link
func (s *ReportService) Archive(ctx context.Context, actor identity.Actor, req ExportRequest) (*ArchiveResponse, error) {
	data, name, err := s.Export(ctx, actor.TenantID, req)
	if err != nil {
		return nil, err
	}
	key := storage.Key(actor.TenantID, storage.KindExports, name, s.now())
	if err := s.deps.Storage.Upload(ctx, key, data, export.ContentType); err != nil {
		return nil, err
	}
	url, expiresAt, err := s.deps.Storage.GenerateDownloadURL(ctx, key, archiveURLTTL)
	if err != nil {
		return nil, err
	}

	s.deps.Logger.Info("Report archived",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("kind", req.Kind),
		zap.String("key", key),
		zap.Int("bytes", len(data)),
		zap.String("requested_by", actor.UserID.String()))

	return &ArchiveResponse{Key: key, FileName: name, DownloadURL: url, ExpiresAt: expiresAt}, nil
}

func (s *ReportService) sheets(ctx context.Context, tenantID uuid.UUID, req ExportRequest) ([]*export.Sheet, error) {
	switch req.Kind {
	case KindStudents:
		sheet, err := s.deps.Students.ExportSheet(ctx, tenantID, people.StudentListFilter{ClassID: req.ClassID, Status: req.Status})
		return single(sheet, err)
	case KindAttendance:
		if req.ClassID == nil {
			return nil, shared.NewDomainError("CLASS_REQUIRED", "The attendance report needs a class")
		}
		return s.deps.Attendance.ExportSheets(ctx, tenantID, attendance.ExportQuery{ClassID: *req.ClassID, From: req.From, To: req.To})
	case KindInvoices:
		sheet, err := s.deps.Invoices.ExportSheet(ctx, tenantID, finance.InvoiceListFilter{Status: req.Status, From: req.From, To: req.To})
		return single(sheet, err)
	case KindInventory:
		sheet, err := s.deps.Inventory.ExportSheet(ctx, tenantID, inventory.ItemListFilter{})
		return single(sheet, err)
	}
	return nil, shared.NewDomainError("INVALID_REPORT_KIND", "Report kind must be students, attendance, invoices or inventory")
}

func single(sheet *export.Sheet, err error) ([]*export.Sheet, error) {
	if err != nil {
		return nil, err
	}
	return []*export.Sheet{sheet}, nil
}
