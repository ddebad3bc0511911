package people

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/people"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/schoolhub/backend/internal/infrastructure/export"
)

// MaxExportRows caps the rows written to one workbook
const MaxExportRows = 20000

// Export writes the filtered student list to an xlsx workbook
func (s *StudentService) Export(ctx context.Context, tenantID uuid.UUID, filter StudentListFilter) ([]byte, string, error) {
	sheet, err := s.ExportSheet(ctx, tenantID, filter)
	if err != nil {
		return nil, "", err
	}
	data, err := export.Workbook(sheet)
	if err != nil {
		return nil, "", err
	}
	return data, export.FileName("students", time.Now()), nil
}

// ExportSheet builds the student sheet, paging through every match
func (s *StudentService) ExportSheet(ctx context.Context, tenantID uuid.UUID, filter StudentListFilter) (*export.Sheet, error) {
	sheet := &export.Sheet{
		Name: "Students",
		Columns: []export.Column{
			{Header: "Admission No.", Width: 16},
			{Header: "First Name", Width: 18},
			{Header: "Last Name", Width: 18},
			{Header: "Gender", Width: 10},
			{Header: "Date of Birth", Width: 14},
			{Header: "Class", Width: 16},
			{Header: "Status", Width: 12},
			{Header: "Enrollment Date", Width: 16},
			{Header: "Guardian", Width: 22},
			{Header: "Guardian Phone", Width: 16},
			{Header: "Guardian Email", Width: 26},
		},
	}

	filter.Page = 1
	filter.PageSize = shared.MaxPageSize
	for {
		f := filter.PageQuery.Filter().
			With("status", filter.Status).
			With("gender", filter.Gender)
		if filter.ClassID != nil {
			f = f.With("class_id", *filter.ClassID)
		}
		students, total, err := s.studentRepo.FindAll(ctx, tenantID, f)
		if err != nil {
			return nil, err
		}
		names := s.ClassNames(ctx, tenantID, students)
		for _, st := range students {
			sheet.AddRow(
				st.AdmissionNumber,
				st.FirstName,
				st.LastName,
				string(st.Gender),
				st.DateOfBirth,
				className(names, st),
				string(st.Status),
				st.EnrollmentDate,
				st.Guardian.Name,
				st.Guardian.Phone,
				st.Guardian.Email,
			)
		}
		if len(students) == 0 || int64(filter.Page*filter.PageSize) >= total || len(sheet.Rows) >= MaxExportRows {
			break
		}
		filter.Page++
	}
	return sheet, nil
}

func className(names map[uuid.UUID]string, st *people.Student) string {
	if st.ClassID == nil {
		return ""
	}
	return names[*st.ClassID]
}
