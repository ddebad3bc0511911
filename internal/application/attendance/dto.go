package attendance

import (
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/attendance"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MarkEntry is one student's line on a class register
type MarkEntry struct {
	StudentID uuid.UUID `json:"student_id" binding:"required"`
	Status    string    `json:"status" binding:"required,attendance_status"`
	Remarks   string    `json:"remarks" binding:"max=500"`
}

// MarkAttendanceRequest submits the register of a class for one day
type MarkAttendanceRequest struct {
	ClassID uuid.UUID    `json:"class_id" binding:"required"`
	Date    *shared.Date `json:"date" binding:"required"`
	Entries []MarkEntry  `json:"entries" binding:"required,min=1,max=500,dive"`
}

// UpdateAttendanceRequest changes a single record
type UpdateAttendanceRequest struct {
	Status  string `json:"status" binding:"required,attendance_status"`
	Remarks string `json:"remarks" binding:"max=500"`
}

// AttendanceListFilter narrows attendance listings
type AttendanceListFilter struct {
	shared.PageQuery
	ClassID   *uuid.UUID   `form:"class_id,parser=encoding.TextUnmarshaler"`
	StudentID *uuid.UUID   `form:"student_id,parser=encoding.TextUnmarshaler"`
	From      *shared.Date `form:"from"`
	To        *shared.Date `form:"to"`
	Status    string       `form:"status"`
}

// SummaryQuery selects the records a summary covers. Exactly one of ClassID or StudentID is expected.
type SummaryQuery struct {
	ClassID   *uuid.UUID   `form:"class_id,parser=encoding.TextUnmarshaler"`
	StudentID *uuid.UUID   `form:"student_id,parser=encoding.TextUnmarshaler"`
	From      *shared.Date `form:"from"`
	To        *shared.Date `form:"to"`
}

// ExportQuery selects the class and period of an attendance export
type ExportQuery struct {
	ClassID uuid.UUID    `form:"class_id,parser=encoding.TextUnmarshaler" binding:"required"`
	From    *shared.Date `form:"from"`
	To      *shared.Date `form:"to"`
}

// AttendanceResponse is the API view of a record
type AttendanceResponse struct {
	ID          uuid.UUID   `json:"id"`
	StudentID   uuid.UUID   `json:"student_id"`
	StudentName string      `json:"student_name,omitempty"`
	ClassID     uuid.UUID   `json:"class_id"`
	Date        shared.Date `json:"date"`
	Status      string      `json:"status"`
	Remarks     string      `json:"remarks,omitempty"`
	MarkedBy    *uuid.UUID  `json:"marked_by,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Version     int         `json:"version"`
}

// MarkResult reports a register submission
type MarkResult struct {
	ClassID uuid.UUID            `json:"class_id"`
	Date    shared.Date          `json:"date"`
	Marked  int                  `json:"marked"`
	Records []AttendanceResponse `json:"records"`
}

// SummaryResponse is an attendance summary with its rate in percent
type SummaryResponse struct {
	attendance.Summary
	Rate decimal.Decimal `json:"rate"`
	From *shared.Date    `json:"from,omitempty"`
	To   *shared.Date    `json:"to,omitempty"`
}

// ToAttendanceResponse converts a record
func ToAttendanceResponse(r *attendance.Record) AttendanceResponse {
	return AttendanceResponse{
		ID:        r.ID,
		StudentID: r.StudentID,
		ClassID:   r.ClassID,
		Date:      shared.NewDate(r.Date),
		Status:    string(r.Status),
		Remarks:   r.Remarks,
		MarkedBy:  r.MarkedBy,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Version:   r.Version,
	}
}

// NewSummaryResponse wraps a summary
func NewSummaryResponse(s attendance.Summary, from, to *time.Time) SummaryResponse {
	resp := SummaryResponse{Summary: s, Rate: s.Rate()}
	if from != nil {
		d := shared.NewDate(*from)
		resp.From = &d
	}
	if to != nil {
		d := shared.NewDate(*to)
		resp.To = &d
	}
	return resp
}
