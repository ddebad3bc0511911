package report

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/schoolhub/backend/internal/infrastructure/export"
	"github.com/schoolhub/backend/internal/infrastructure/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func newReportService(stub *sheetStub, store storage.ObjectStorage) *ReportService {
	svc := NewReportService(ReportServiceDeps{
		Students:   studentSheetFunc(stub.studentSheet),
		Attendance: attendanceSheetsFunc(stub.attendanceSheets),
		Invoices:   invoiceSheetFunc(stub.invoiceSheet),
		Inventory:  inventorySheetFunc(stub.inventorySheet),
		Storage:    store,
		Logger:     zap.NewNop(),
	})
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func sheetNames(t *testing.T, data []byte) []string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	return f.GetSheetList()
}

func TestReportService_Export(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	classID := uuid.New()

	t.Run("students with filters", func(t *testing.T) {
		stub := &sheetStub{}
		data, name, err := newReportService(stub, nil).Export(ctx, tenantID, ExportRequest{Kind: KindStudents, ClassID: &classID, Status: "active"})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(name, "students-"))
		assert.True(t, strings.HasSuffix(name, ".xlsx"))
		assert.Equal(t, []string{"Students"}, sheetNames(t, data))
		require.Len(t, stub.students, 1)
		assert.Equal(t, &classID, stub.students[0].ClassID)
		assert.Equal(t, "active", stub.students[0].Status)
	})

	t.Run("attendance needs a class", func(t *testing.T) {
		stub := &sheetStub{}
		_, _, err := newReportService(stub, nil).Export(ctx, tenantID, ExportRequest{Kind: KindAttendance})
		requireCode(t, err, "CLASS_REQUIRED")
		assert.Empty(t, stub.attendance)
	})

	t.Run("attendance writes both sheets", func(t *testing.T) {
		stub := &sheetStub{}
		from := shared.NewDate(day(2026, 10, 1))
		data, _, err := newReportService(stub, nil).Export(ctx, tenantID, ExportRequest{Kind: KindAttendance, ClassID: &classID, From: &from})
		require.NoError(t, err)
		assert.Equal(t, []string{"Register", "Totals"}, sheetNames(t, data))
		require.Len(t, stub.attendance, 1)
		assert.Equal(t, classID, stub.attendance[0].ClassID)
		assert.Equal(t, &from, stub.attendance[0].From)
	})

	t.Run("invoices and inventory", func(t *testing.T) {
		stub := &sheetStub{}
		svc := newReportService(stub, nil)
		_, _, err := svc.Export(ctx, tenantID, ExportRequest{Kind: KindInvoices, Status: "overdue"})
		require.NoError(t, err)
		_, _, err = svc.Export(ctx, tenantID, ExportRequest{Kind: KindInventory})
		require.NoError(t, err)
		require.Len(t, stub.invoices, 1)
		assert.Equal(t, "overdue", stub.invoices[0].Status)
		assert.Equal(t, 1, stub.inventory)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, _, err := newReportService(&sheetStub{}, nil).Export(ctx, tenantID, ExportRequest{Kind: "payroll"})
		requireCode(t, err, "INVALID_REPORT_KIND")
	})
}

func TestReportService_Archive(t *testing.T) {
	ctx := context.Background()
	actor := identity.Actor{TenantID: uuid.New(), UserID: uuid.New(), Role: identity.RoleSchoolAdmin}

	t.Run("uploads and signs a download link", func(t *testing.T) {
		store := new(MockObjectStorage)
		expires := fixedNow.Add(archiveURLTTL)
		var uploaded string
		store.On("Upload", ctx, mock.MatchedBy(func(key string) bool {
			return storage.BelongsTo(key, actor.TenantID) && strings.Contains(key, "/exports/2026/10/inventory-")
		}), mock.Anything, export.ContentType).Run(func(args mock.Arguments) {
			uploaded = args.String(1)
		}).Return(nil)
		store.On("GenerateDownloadURL", ctx, mock.Anything, archiveURLTTL).Return("https://files.test/get", expires, nil)

		resp, err := newReportService(&sheetStub{}, store).Archive(ctx, actor, ExportRequest{Kind: KindInventory})
		require.NoError(t, err)
		assert.Equal(t, uploaded, resp.Key)
		assert.Equal(t, "https://files.test/get", resp.DownloadURL)
		assert.True(t, resp.ExpiresAt.Equal(expires))
		assert.True(t, strings.HasSuffix(resp.Key, resp.FileName))
		store.AssertExpectations(t)
	})

	t.Run("storage disabled", func(t *testing.T) {
		_, err := newReportService(&sheetStub{}, nil).Archive(ctx, actor, ExportRequest{Kind: KindInventory})
		requireCode(t, err, "STORAGE_DISABLED")
	})
}
