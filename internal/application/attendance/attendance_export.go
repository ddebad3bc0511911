package attendance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/attendance"
	"github.com/schoolhub/backend/internal/infrastructure/export"
)

// Export writes the register of a class over a period to an xlsx workbook:
// one sheet with every record and one with per-student totals.
func (s *AttendanceService) Export(ctx context.Context, tenantID uuid.UUID, query ExportQuery) ([]byte, string, error) {
	sheets, err := s.ExportSheets(ctx, tenantID, query)
	if err != nil {
		return nil, "", err
	}
	data, err := export.Workbook(sheets...)
	if err != nil {
		return nil, "", err
	}
	return data, export.FileName("attendance", time.Now()), nil
}

// ExportSheets builds the register and totals sheets
func (s *AttendanceService) ExportSheets(ctx context.Context, tenantID uuid.UUID, query ExportQuery) ([]*export.Sheet, error) {
	class, err := s.findClass(ctx, tenantID, query.ClassID)
	if err != nil {
		return nil, err
	}
	from, to := s.period(ctx, tenantID, query.From.TimePtr(), query.To.TimePtr())
	if err := checkRange(from, to); err != nil {
		return nil, err
	}

	records, err := s.recordRepo.FindForExport(ctx, tenantID, attendance.Query{ClassID: &class.ID, From: from, To: to})
	if err != nil {
		return nil, err
	}
	names := s.studentNames(ctx, tenantID, records)

	register := &export.Sheet{
		Name: "Register",
		Columns: []export.Column{
			{Header: "Date", Width: 12},
			{Header: "Student", Width: 26},
			{Header: "Class", Width: 16},
			{Header: "Status", Width: 10},
			{Header: "Remarks", Width: 40},
		},
	}
	totals := make(map[uuid.UUID]*attendance.Summary)
	var order []uuid.UUID
	for _, r := range records {
		register.AddRow(r.Date, names[r.StudentID], class.DisplayName(), string(r.Status), r.Remarks)
		sum, ok := totals[r.StudentID]
		if !ok {
			sum = &attendance.Summary{}
			totals[r.StudentID] = sum
			order = append(order, r.StudentID)
		}
		sum.Add(r.Status, 1)
	}

	summary := &export.Sheet{
		Name: "Summary",
		Columns: []export.Column{
			{Header: "Student", Width: 26},
			{Header: "Present", Width: 10},
			{Header: "Late", Width: 10},
			{Header: "Absent", Width: 10},
			{Header: "Excused", Width: 10},
			{Header: "Total", Width: 10},
			{Header: "Rate %", Width: 10},
		},
	}
	for _, id := range order {
		sum := totals[id]
		summary.AddRow(names[id], sum.Present, sum.Late, sum.Absent, sum.Excused, sum.Total, sum.Rate())
	}
	return []*export.Sheet{register, summary}, nil
}
