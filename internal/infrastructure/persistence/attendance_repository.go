package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/attendance"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/schoolhub/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAttendanceRepository implements attendance.Repository using GORM
type GormAttendanceRepository struct {
	db *gorm.DB
}

// NewGormAttendanceRepository creates a new GormAttendanceRepository
func NewGormAttendanceRepository(db *gorm.DB) *GormAttendanceRepository {
	return &GormAttendanceRepository{db: db}
}

// Upsert inserts records or overwrites status and remarks of existing ones
func (r *GormAttendanceRepository) Upsert(ctx context.Context, records []*attendance.Record) error {
	if len(records) == 0 {
		return nil
	}
	recordModels := make([]*models.AttendanceRecordModel, len(records))
	for i, rec := range records {
		recordModels[i] = models.AttendanceRecordModelFromDomain(rec)
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "class_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "remarks", "marked_by", "updated_at"}),
		}).
		Create(&recordModels).Error; err != nil {
		return err
	}
	return r.syncIDs(ctx, records)
}

type attendanceSlot struct {
	classID uuid.UUID
	day     time.Time
}

// syncIDs copies the stored ids back onto records that hit an existing row
func (r *GormAttendanceRepository) syncIDs(ctx context.Context, records []*attendance.Record) error {
	slots := make(map[attendanceSlot][]*attendance.Record)
	for _, rec := range records {
		slot := attendanceSlot{classID: rec.ClassID, day: attendance.Day(rec.Date)}
		slots[slot] = append(slots[slot], rec)
	}
	for slot, recs := range slots {
		studentIDs := make([]uuid.UUID, len(recs))
		for i, rec := range recs {
			studentIDs[i] = rec.StudentID
		}
		var rows []struct {
			ID        uuid.UUID
			StudentID uuid.UUID
		}
		if err := r.db.WithContext(ctx).
			Model(&models.AttendanceRecordModel{}).
			Select("id, student_id").
			Where("tenant_id = ? AND class_id = ? AND date = ? AND student_id IN ?",
				recs[0].TenantID, slot.classID, slot.day, studentIDs).
			Scan(&rows).Error; err != nil {
			return err
		}
		stored := make(map[uuid.UUID]uuid.UUID, len(rows))
		for _, row := range rows {
			stored[row.StudentID] = row.ID
		}
		for _, rec := range recs {
			if id, ok := stored[rec.StudentID]; ok {
				rec.ID = id
			}
		}
	}
	return nil
}

// FindByClassAndDate returns the records already stored for the students on the day
func (r *GormAttendanceRepository) FindByClassAndDate(ctx context.Context, tenantID, classID uuid.UUID, date time.Time, studentIDs []uuid.UUID) ([]*attendance.Record, error) {
	if len(studentIDs) == 0 {
		return []*attendance.Record{}, nil
	}
	var recordModels []*models.AttendanceRecordModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND class_id = ? AND date = ? AND student_id IN ?",
			tenantID, classID, attendance.Day(date), studentIDs).
		Find(&recordModels).Error; err != nil {
		return nil, err
	}
	return toRecords(recordModels), nil
}

// Save updates a single record
func (r *GormAttendanceRepository) Save(ctx context.Context, record *attendance.Record) error {
	return saveVersioned(ctx, r.db, models.AttendanceRecordModelFromDomain(record), record.ID, record.Version)
}

// Delete deletes a record
func (r *GormAttendanceRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteResult(r.db.WithContext(ctx).Delete(&models.AttendanceRecordModel{}, "tenant_id = ? AND id = ?", tenantID, id))
}

// FindByID finds a record within a school
func (r *GormAttendanceRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*attendance.Record, error) {
	var model models.AttendanceRecordModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists records matching the query, newest first by default
func (r *GormAttendanceRepository) FindAll(ctx context.Context, tenantID uuid.UUID, q attendance.Query, filter shared.Filter) ([]*attendance.Record, int64, error) {
	var recordModels []*models.AttendanceRecordModel
	var total int64

	query := r.applyQuery(r.db.WithContext(ctx).Model(&models.AttendanceRecordModel{}).Where("tenant_id = ?", tenantID), q)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := applyPaging(query, filter, AttendanceSortFields, "date").Find(&recordModels).Error; err != nil {
		return nil, 0, err
	}
	return toRecords(recordModels), total, nil
}

// FindForExport returns every matching record ordered by date then student
func (r *GormAttendanceRepository) FindForExport(ctx context.Context, tenantID uuid.UUID, q attendance.Query) ([]*attendance.Record, error) {
	var recordModels []*models.AttendanceRecordModel
	query := r.applyQuery(r.db.WithContext(ctx).Where("tenant_id = ?", tenantID), q)
	if err := query.Order("date ASC, student_id ASC").Find(&recordModels).Error; err != nil {
		return nil, err
	}
	return toRecords(recordModels), nil
}

// Summarize counts matching records per status
func (r *GormAttendanceRepository) Summarize(ctx context.Context, tenantID uuid.UUID, q attendance.Query) (attendance.Summary, error) {
	var rows []struct {
		Status attendance.Status
		Count  int64
	}
	query := r.applyQuery(r.db.WithContext(ctx).Model(&models.AttendanceRecordModel{}).Where("tenant_id = ?", tenantID), q)
	if err := query.Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return attendance.Summary{}, err
	}
	var summary attendance.Summary
	for _, row := range rows {
		summary.Add(row.Status, row.Count)
	}
	return summary, nil
}

// MarkedClasses reports which classes already have records on the date
func (r *GormAttendanceRepository) MarkedClasses(ctx context.Context, tenantID uuid.UUID, classIDs []uuid.UUID, date time.Time) (map[uuid.UUID]bool, error) {
	marked := make(map[uuid.UUID]bool, len(classIDs))
	if len(classIDs) == 0 {
		return marked, nil
	}
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.AttendanceRecordModel{}).
		Distinct("class_id").
		Where("tenant_id = ? AND class_id IN ? AND date = ?", tenantID, classIDs, attendance.Day(date)).
		Pluck("class_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		marked[id] = true
	}
	return marked, nil
}

func (r *GormAttendanceRepository) applyQuery(query *gorm.DB, q attendance.Query) *gorm.DB {
	if q.ClassID != nil {
		query = query.Where("class_id = ?", *q.ClassID)
	}
	if q.StudentID != nil {
		query = query.Where("student_id = ?", *q.StudentID)
	}
	if q.From != nil {
		query = query.Where("date >= ?", attendance.Day(*q.From))
	}
	if q.To != nil {
		query = query.Where("date <= ?", attendance.Day(*q.To))
	}
	if q.Status != nil {
		query = query.Where("status = ?", *q.Status)
	}
	return query
}

func toRecords(recordModels []*models.AttendanceRecordModel) []*attendance.Record {
	records := make([]*attendance.Record, len(recordModels))
	for i, model := range recordModels {
		records[i] = model.ToDomain()
	}
	return records
}

var _ attendance.Repository = (*GormAttendanceRepository)(nil)
