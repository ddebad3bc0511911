package attendance

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status of a student on a given day
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusExcused Status = "excused"
)

// AllStatuses lists every attendance status
var AllStatuses = []Status{StatusPresent, StatusAbsent, StatusLate, StatusExcused}

// ParseStatus validates an attendance status
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case StatusPresent, StatusAbsent, StatusLate, StatusExcused:
		return st, nil
	}
	return "", shared.NewDomainError("INVALID_ATTENDANCE_STATUS", "Status must be present, absent, late or excused")
}

// CountsAsAttended reports whether the status counts towards the attendance rate
func (s Status) CountsAsAttended() bool {
	return s == StatusPresent || s == StatusLate
}

// Record is one student's attendance for one class on one day
type Record struct {
	shared.TenantAggregateRoot
	StudentID uuid.UUID
	ClassID   uuid.UUID
	Date      time.Time
	Status    Status
	Remarks   string
	MarkedBy  *uuid.UUID
}

// NewRecord creates an attendance record. today is the current date in the school timezone.
func NewRecord(tenantID, studentID, classID uuid.UUID, date, today time.Time, status Status, remarks string) (*Record, error) {
	if studentID == uuid.Nil || classID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Student and class are required")
	}
	date, err := ValidateDate(date, today)
	if err != nil {
		return nil, err
	}
	r := &Record{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		StudentID:           studentID,
		ClassID:             classID,
		Date:                date,
	}
	if err := r.set(status, remarks); err != nil {
		return nil, err
	}
	return r, nil
}

// Update changes status and remarks
func (r *Record) Update(status Status, remarks string) error {
	if err := r.set(status, remarks); err != nil {
		return err
	}
	r.Touch()
	return nil
}

func (r *Record) set(status Status, remarks string) error {
	status, err := ParseStatus(string(status))
	if err != nil {
		return err
	}
	remarks, err = shared.OptionalText("INVALID_REMARKS", "Remarks", remarks, 500)
	if err != nil {
		return err
	}
	r.Status = status
	r.Remarks = remarks
	return nil
}

// ValidateDate truncates to day precision and rejects dates after today
func ValidateDate(date, today time.Time) (time.Time, error) {
	if date.IsZero() {
		return date, shared.NewDomainError("INVALID_DATE", "Date is required")
	}
	d := Day(date)
	if d.After(Day(today)) {
		return d, shared.NewDomainError("INVALID_DATE", "Attendance cannot be recorded for a future date")
	}
	return d, nil
}

// Day truncates t to a UTC calendar date
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Summary aggregates attendance counts over a period
type Summary struct {
	Total   int64 `json:"total"`
	Present int64 `json:"present"`
	Absent  int64 `json:"absent"`
	Late    int64 `json:"late"`
	Excused int64 `json:"excused"`
}

// Add counts n records with the given status
func (s *Summary) Add(status Status, n int64) {
	switch status {
	case StatusPresent:
		s.Present += n
	case StatusAbsent:
		s.Absent += n
	case StatusLate:
		s.Late += n
	case StatusExcused:
		s.Excused += n
	default:
		return
	}
	s.Total += n
}

// Rate returns (present+late)/total as a percentage rounded to 2 places; 0 when empty
func (s Summary) Rate() decimal.Decimal {
	if s.Total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(s.Present + s.Late).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(s.Total)).
		Round(2)
}
