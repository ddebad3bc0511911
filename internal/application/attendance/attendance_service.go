package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/academic"
	"github.com/schoolhub/backend/internal/domain/attendance"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/people"
	"github.com/schoolhub/backend/internal/domain/school"
	"github.com/schoolhub/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultSummaryDays is the period summarized when no range is given
const DefaultSummaryDays = 30

// AttendanceService records and reports daily attendance
type AttendanceService struct {
	recordRepo     attendance.Repository
	studentRepo    people.StudentRepository
	classRepo      academic.ClassRepository
	schoolRepo     school.Repository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewAttendanceService creates a new attendance service
func NewAttendanceService(
	recordRepo attendance.Repository,
	studentRepo people.StudentRepository,
	classRepo academic.ClassRepository,
	schoolRepo school.Repository,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *AttendanceService {
	return &AttendanceService{
		recordRepo:     recordRepo,
		studentRepo:    studentRepo,
		classRepo:      classRepo,
		schoolRepo:     schoolRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Mark upserts the register of a class for one day. Every student must belong to the class.
func (s *AttendanceService) Mark(ctx context.Context, actor identity.Actor, req MarkAttendanceRequest) (*MarkResult, error) {
	if req.Date == nil || req.Date.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Date is required")
	}
	if len(req.Entries) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "At least one entry is required")
	}
	class, err := s.findClass(ctx, actor.TenantID, req.ClassID)
	if err != nil {
		return nil, err
	}
	if !class.IsActive {
		return nil, shared.NewDomainError("CLASS_INACTIVE", "Class is not active")
	}

	ids := make([]uuid.UUID, 0, len(req.Entries))
	seen := make(map[uuid.UUID]bool, len(req.Entries))
	for _, e := range req.Entries {
		if seen[e.StudentID] {
			return nil, shared.NewDomainError("DUPLICATE_ENTRY",
				fmt.Sprintf("Student %s appears more than once", e.StudentID))
		}
		seen[e.StudentID] = true
		ids = append(ids, e.StudentID)
	}

	students, err := s.studentRepo.FindByIDs(ctx, actor.TenantID, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*people.Student, len(students))
	for _, st := range students {
		byID[st.ID] = st
	}
	for _, id := range ids {
		st, ok := byID[id]
		if !ok || st.ClassID == nil || *st.ClassID != class.ID {
			return nil, shared.NewDomainError("STUDENT_NOT_IN_CLASS",
				fmt.Sprintf("Student %s is not enrolled in %s", id, class.DisplayName()))
		}
	}

	today := s.today(ctx, actor.TenantID)
	day, err := attendance.ValidateDate(req.Date.Time, today)
	if err != nil {
		return nil, err
	}
	existing, err := s.recordRepo.FindByClassAndDate(ctx, actor.TenantID, class.ID, day, ids)
	if err != nil {
		return nil, err
	}
	current := make(map[uuid.UUID]*attendance.Record, len(existing))
	for _, r := range existing {
		current[r.StudentID] = r
	}

	markedBy := actor.UserID
	records := make([]*attendance.Record, 0, len(req.Entries))
	for _, e := range req.Entries {
		r, ok := current[e.StudentID]
		if ok {
			err = r.Update(attendance.Status(e.Status), e.Remarks)
		} else {
			r, err = attendance.NewRecord(actor.TenantID, e.StudentID, class.ID, day, today, attendance.Status(e.Status), e.Remarks)
		}
		if err != nil {
			return nil, err
		}
		if !ok {
			r.SetCreatedBy(actor.UserID)
		}
		r.MarkedBy = &markedBy
		records = append(records, r)
	}

	if err := s.recordRepo.Upsert(ctx, records); err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, attendance.NewMarkedEvent(actor.TenantID, class.ID, day, len(records))); err != nil {
			s.logger.Warn("Failed to publish attendance events", zap.Error(err))
		}
	}

	s.logger.Info("Attendance marked",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("class_id", class.ID.String()),
		zap.Time("date", day),
		zap.Int("records", len(records)))

	result := &MarkResult{
		ClassID: class.ID,
		Date:    shared.NewDate(day),
		Marked:  len(records),
		Records: make([]AttendanceResponse, len(records)),
	}
	for i, r := range records {
		result.Records[i] = ToAttendanceResponse(r)
		result.Records[i].StudentName = byID[r.StudentID].FullName()
	}
	return result, nil
}

// List lists attendance records
func (s *AttendanceService) List(ctx context.Context, tenantID uuid.UUID, filter AttendanceListFilter) ([]AttendanceResponse, int64, error) {
	q := attendance.Query{
		ClassID:   filter.ClassID,
		StudentID: filter.StudentID,
		From:      filter.From.TimePtr(),
		To:        filter.To.TimePtr(),
	}
	if filter.Status != "" {
		status, err := attendance.ParseStatus(filter.Status)
		if err != nil {
			return nil, 0, err
		}
		q.Status = &status
	}
	if err := checkRange(q.From, q.To); err != nil {
		return nil, 0, err
	}

	records, total, err := s.recordRepo.FindAll(ctx, tenantID, q, filter.PageQuery.Filter())
	if err != nil {
		return nil, 0, err
	}
	names := s.studentNames(ctx, tenantID, records)
	out := make([]AttendanceResponse, len(records))
	for i, r := range records {
		out[i] = ToAttendanceResponse(r)
		out[i].StudentName = names[r.StudentID]
	}
	return out, total, nil
}

// Update changes the status and remarks of one record
func (s *AttendanceService) Update(ctx context.Context, actor identity.Actor, id uuid.UUID, req UpdateAttendanceRequest) (*AttendanceResponse, error) {
	record, err := s.find(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	if err := record.Update(attendance.Status(req.Status), req.Remarks); err != nil {
		return nil, err
	}
	markedBy := actor.UserID
	record.MarkedBy = &markedBy
	if err := s.recordRepo.Save(ctx, record); err != nil {
		return nil, err
	}
	record.AddDomainEvent(attendance.NewRecordChangedEvent(attendance.EventTypeAttendanceUpdated, record))
	s.publish(ctx, record)

	resp := ToAttendanceResponse(record)
	return &resp, nil
}

// Delete removes one record
func (s *AttendanceService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	record, err := s.find(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := s.recordRepo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	record.AddDomainEvent(attendance.NewRecordChangedEvent(attendance.EventTypeAttendanceDeleted, record))
	s.publish(ctx, record)
	return nil
}

// Summary counts records per status for a class or a student.
// Without a range the last DefaultSummaryDays days are covered.
func (s *AttendanceService) Summary(ctx context.Context, tenantID uuid.UUID, query SummaryQuery) (*SummaryResponse, error) {
	if query.ClassID == nil && query.StudentID == nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "class_id or student_id is required")
	}
	from, to := s.period(ctx, tenantID, query.From.TimePtr(), query.To.TimePtr())
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	summary, err := s.recordRepo.Summarize(ctx, tenantID, attendance.Query{
		ClassID:   query.ClassID,
		StudentID: query.StudentID,
		From:      from,
		To:        to,
	})
	if err != nil {
		return nil, err
	}
	resp := NewSummaryResponse(summary, from, to)
	return &resp, nil
}

// period fills a missing range with the last DefaultSummaryDays days up to today
func (s *AttendanceService) period(ctx context.Context, tenantID uuid.UUID, from, to *time.Time) (*time.Time, *time.Time) {
	if to == nil {
		today := s.today(ctx, tenantID)
		to = &today
	}
	if from == nil {
		start := to.AddDate(0, 0, -(DefaultSummaryDays - 1))
		from = &start
	}
	return from, to
}

func (s *AttendanceService) today(ctx context.Context, tenantID uuid.UUID) time.Time {
	sch, err := s.schoolRepo.FindByID(ctx, tenantID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Failed to load school timezone", zap.Error(err))
		}
		return attendance.Day(time.Now())
	}
	return sch.Today()
}

func (s *AttendanceService) studentNames(ctx context.Context, tenantID uuid.UUID, records []*attendance.Record) map[uuid.UUID]string {
	ids := make([]uuid.UUID, 0, len(records))
	seen := make(map[uuid.UUID]bool, len(records))
	for _, r := range records {
		if !seen[r.StudentID] {
			seen[r.StudentID] = true
			ids = append(ids, r.StudentID)
		}
	}
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names
	}
	students, err := s.studentRepo.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		s.logger.Warn("Failed to load student names", zap.Error(err))
		return names
	}
	for _, st := range students {
		names[st.ID] = st.FullName()
	}
	return names
}

func (s *AttendanceService) findClass(ctx context.Context, tenantID, id uuid.UUID) (*academic.Class, error) {
	class, err := s.classRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("CLASS_NOT_FOUND", "Class not found")
		}
		return nil, err
	}
	return class, nil
}

func (s *AttendanceService) find(ctx context.Context, tenantID, id uuid.UUID) (*attendance.Record, error) {
	record, err := s.recordRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("ATTENDANCE_NOT_FOUND", "Attendance record not found")
		}
		return nil, err
	}
	return record, nil
}

func (s *AttendanceService) publish(ctx context.Context, record *attendance.Record) {
	if err := shared.PublishAndClear(ctx, s.eventPublisher, record); err != nil {
		s.logger.Warn("Failed to publish attendance events", zap.Error(err))
	}
}

func checkRange(from, to *time.Time) error {
	if from != nil && to != nil && from.After(*to) {
		return shared.NewDomainError("INVALID_DATE_RANGE", "from must not be after to")
	}
	return nil
}
