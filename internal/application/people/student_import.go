package people

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/academic"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/people"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/schoolhub/backend/internal/infrastructure/importer"
	"go.uber.org/zap"
)

// MaxImportRows caps the rows read from one upload
const MaxImportRows = 5000

// Student import columns, matched against normalized headers
const (
	colAdmissionNumber = "admission_number"
	colFirstName       = "first_name"
	colLastName        = "last_name"
	colGender          = "gender"
	colDateOfBirth     = "date_of_birth"
	colEnrollmentDate  = "enrollment_date"
	colClass           = "class"
	colAddress         = "address"
	colGuardianName    = "guardian_name"
	colGuardianPhone   = "guardian_phone"
	colGuardianEmail   = "guardian_email"
)

func studentImportRules() []importer.FieldRule {
	return []importer.FieldRule{
		importer.Field(colAdmissionNumber).Required().MaxLength(50).Unique().Build(),
		importer.Field(colFirstName).Required().MaxLength(100).Build(),
		importer.Field(colLastName).Required().MaxLength(100).Build(),
		importer.Field(colGender).OneOf("male", "female", "other").Build(),
		importer.Field(colDateOfBirth).Date().Build(),
		importer.Field(colEnrollmentDate).Date().Build(),
		importer.Field(colClass).MaxLength(100).Build(),
		importer.Field(colAddress).MaxLength(500).Build(),
		importer.Field(colGuardianName).MaxLength(200).Build(),
		importer.Field(colGuardianPhone).MaxLength(50).Build(),
		importer.Field(colGuardianEmail).Email().MaxLength(200).Build(),
	}
}

// Import reads a CSV or xlsx file of students. Invalid rows and admission
// numbers already on file are skipped and reported; the rest are saved.
func (s *StudentService) Import(ctx context.Context, actor identity.Actor, fileName string, data []byte) (*importer.Result, error) {
	format, err := importer.DetectFormat(fileName)
	if err != nil {
		return nil, err
	}
	table, err := importer.Read(format, data, MaxImportRows)
	if err != nil {
		return nil, err
	}

	errs := importer.NewErrors(0)
	validator := importer.NewValidator(errs, studentImportRules()...)
	if missing := table.MissingColumns(validator.RequiredColumns()); len(missing) > 0 {
		return nil, shared.NewDomainError("IMPORT_MISSING_COLUMNS", "Missing required columns: "+strings.Join(missing, ", "))
	}

	var valid []*importer.Row
	var numbers []string
	for _, row := range table.Rows {
		if row.IsEmpty() {
			continue
		}
		if validator.ValidateRow(row) {
			valid = append(valid, row)
			numbers = append(numbers, strings.ToUpper(row.Get(colAdmissionNumber)))
		}
	}

	existing, err := s.studentRepo.ExistingAdmissionNumbers(ctx, actor.TenantID, numbers)
	if err != nil {
		return nil, err
	}

	classes := newClassLookup(s, actor.TenantID)
	var students []*people.Student
	for _, row := range valid {
		number := row.Get(colAdmissionNumber)
		if existing[strings.ToUpper(number)] {
			errs.Addf(row.Number, colAdmissionNumber, importer.CodeDuplicateInDB, "admission number %q already exists", number)
			continue
		}

		var seat *classSeats
		if name := row.Get(colClass); name != "" {
			seat, err = classes.resolve(ctx, name)
			if err != nil {
				return nil, err
			}
			if seat == nil {
				errs.Addf(row.Number, colClass, importer.CodeReference, "class %q not found", name)
				continue
			}
			if msg := seat.refusal(); msg != "" {
				errs.Addf(row.Number, colClass, importer.CodeRejected, "class %q %s", name, msg)
				continue
			}
		}

		student, err := people.NewStudent(actor.TenantID, number, people.StudentProfile{
			FirstName:      row.Get(colFirstName),
			LastName:       row.Get(colLastName),
			Gender:         people.Gender(row.Get(colGender)),
			DateOfBirth:    parseOptionalDate(row.Get(colDateOfBirth)),
			EnrollmentDate: parseOptionalDate(row.Get(colEnrollmentDate)),
			Address:        row.Get(colAddress),
			Guardian: people.Guardian{
				Name:  row.Get(colGuardianName),
				Phone: row.Get(colGuardianPhone),
				Email: row.Get(colGuardianEmail),
			},
		})
		if err != nil {
			errs.Add(importer.RowError{Row: row.Number, Code: importer.CodeRejected, Message: err.Error()})
			continue
		}
		if seat != nil {
			classID := seat.class.ID
			if err := student.AssignClass(&classID); err != nil {
				errs.Add(importer.RowError{Row: row.Number, Field: colClass, Code: importer.CodeRejected, Message: err.Error()})
				continue
			}
			seat.enrolled++
		}
		student.SetCreatedBy(actor.UserID)
		student.ClearDomainEvents()
		students = append(students, student)
	}

	if len(students) > 0 {
		if err := s.studentRepo.SaveBatch(ctx, students); err != nil {
			return nil, err
		}
	}

	result := importer.NewResult(len(table.Rows), len(students), errs)
	s.logger.Info("Students imported",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.Int("total", result.Total),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

func parseOptionalDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := importer.ParseDate(value)
	if err != nil {
		return nil
	}
	return &t
}

// classSeats tracks enrolment of a class while rows are accepted
type classSeats struct {
	class    *academic.Class
	enrolled int64
}

func (c *classSeats) refusal() string {
	if !c.class.IsActive {
		return "is not active"
	}
	if !c.class.HasRoomFor(c.enrolled) {
		return "is full"
	}
	return ""
}

// classLookup caches class names resolved during an import
type classLookup struct {
	svc      *StudentService
	tenantID uuid.UUID
	cache    map[string]*classSeats
}

func newClassLookup(svc *StudentService, tenantID uuid.UUID) *classLookup {
	return &classLookup{svc: svc, tenantID: tenantID, cache: make(map[string]*classSeats)}
}

func (l *classLookup) resolve(ctx context.Context, name string) (*classSeats, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if seat, ok := l.cache[key]; ok {
		return seat, nil
	}
	class, err := l.svc.classRepo.FindByName(ctx, l.tenantID, name)
	if err != nil {
		if shared.IsNotFound(err) {
			l.cache[key] = nil
			return nil, nil
		}
		return nil, err
	}
	enrolled, err := l.svc.studentRepo.CountByClass(ctx, l.tenantID, class.ID)
	if err != nil {
		return nil, err
	}
	seat := &classSeats{class: class, enrolled: enrolled}
	l.cache[key] = seat
	return seat, nil
}
