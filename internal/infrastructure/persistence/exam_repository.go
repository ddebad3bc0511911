package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/exams"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/schoolhub/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormExamRepository implements ExamRepository using GORM
type GormExamRepository struct {
	db *gorm.DB
}

// NewGormExamRepository creates a new GormExamRepository
func NewGormExamRepository(db *gorm.DB) *GormExamRepository {
	return &GormExamRepository{db: db}
}

// Save creates or updates an exam
func (r *GormExamRepository) Save(ctx context.Context, exam *exams.Exam) error {
	return saveVersioned(ctx, r.db, models.ExamModelFromDomain(exam), exam.ID, exam.Version)
}

// Delete deletes an exam
func (r *GormExamRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteResult(r.db.WithContext(ctx).Delete(&models.ExamModel{}, "tenant_id = ? AND id = ?", tenantID, id))
}

// FindByID finds an exam within a school
func (r *GormExamRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*exams.Exam, error) {
	var model models.ExamModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple exams by id
func (r *GormExamRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*exams.Exam, error) {
	if len(ids) == 0 {
		return []*exams.Exam{}, nil
	}
	return r.find(r.db.WithContext(ctx).Where("tenant_id = ? AND id IN ?", tenantID, ids))
}

// FindAll lists exams matching the filter
func (r *GormExamRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*exams.Exam, int64, error) {
	var examModels []*models.ExamModel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.ExamModel{}).Where("tenant_id = ?", tenantID)
	query = applySearch(query, filter.Search, "name")
	for key, value := range filter.Filters {
		switch key {
		case "class_id":
			query = query.Where("class_id = ?", value)
		case "subject_id":
			query = query.Where("subject_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "term":
			query = query.Where("term = ?", value)
		case "from":
			query = query.Where("exam_date >= ?", value)
		case "to":
			query = query.Where("exam_date <= ?", value)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := applyPaging(query, filter, ExamSortFields, "exam_date").Find(&examModels).Error; err != nil {
		return nil, 0, err
	}

	result := make([]*exams.Exam, len(examModels))
	for i, model := range examModels {
		result[i] = model.ToDomain()
	}
	return result, total, nil
}

// FindUpcoming returns scheduled exams of the classes between from and to, soonest first
func (r *GormExamRepository) FindUpcoming(ctx context.Context, tenantID uuid.UUID, classIDs []uuid.UUID, from, to time.Time) ([]*exams.Exam, error) {
	if len(classIDs) == 0 {
		return []*exams.Exam{}, nil
	}
	return r.find(r.db.WithContext(ctx).
		Where("tenant_id = ? AND class_id IN ? AND status = ? AND exam_date >= ? AND exam_date <= ?",
			tenantID, classIDs, exams.StatusScheduled, from, to).
		Order("exam_date ASC"))
}

func (r *GormExamRepository) find(query *gorm.DB) ([]*exams.Exam, error) {
	var examModels []*models.ExamModel
	if err := query.Find(&examModels).Error; err != nil {
		return nil, err
	}
	result := make([]*exams.Exam, len(examModels))
	for i, model := range examModels {
		result[i] = model.ToDomain()
	}
	return result, nil
}

var _ exams.ExamRepository = (*GormExamRepository)(nil)

// GormResultRepository implements ResultRepository using GORM
type GormResultRepository struct {
	db *gorm.DB
}

// NewGormResultRepository creates a new GormResultRepository
func NewGormResultRepository(db *gorm.DB) *GormResultRepository {
	return &GormResultRepository{db: db}
}

// Upsert inserts results or overwrites marks of existing (exam, student) rows
func (r *GormResultRepository) Upsert(ctx context.Context, results []*exams.Result) error {
	if len(results) == 0 {
		return nil
	}
	resultModels := make([]*models.ExamResultModel, len(results))
	for i, res := range results {
		resultModels[i] = models.ExamResultModelFromDomain(res)
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "exam_id"}, {Name: "student_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"marks", "percentage", "grade", "passed", "remarks", "recorded_by", "updated_at",
			}),
		}).
		Create(&resultModels).Error
}

// FindByExam lists all results of an exam
func (r *GormResultRepository) FindByExam(ctx context.Context, tenantID, examID uuid.UUID) ([]*exams.Result, error) {
	return r.find(r.db.WithContext(ctx).
		Where("tenant_id = ? AND exam_id = ?", tenantID, examID).
		Order("marks DESC"))
}

// FindByExamAndStudents returns existing results for the given students
func (r *GormResultRepository) FindByExamAndStudents(ctx context.Context, tenantID, examID uuid.UUID, studentIDs []uuid.UUID) ([]*exams.Result, error) {
	if len(studentIDs) == 0 {
		return []*exams.Result{}, nil
	}
	return r.find(r.db.WithContext(ctx).
		Where("tenant_id = ? AND exam_id = ? AND student_id IN ?", tenantID, examID, studentIDs))
}

// FindByStudent returns the student's results, optionally for one term
func (r *GormResultRepository) FindByStudent(ctx context.Context, tenantID, studentID uuid.UUID, term string) ([]*exams.Result, error) {
	query := r.db.WithContext(ctx).
		Table("exam_results").
		Select("exam_results.*").
		Joins("JOIN exams ON exams.id = exam_results.exam_id").
		Where("exam_results.tenant_id = ? AND exam_results.student_id = ?", tenantID, studentID)
	if term != "" {
		query = query.Where("exams.term = ?", term)
	}
	return r.find(query.Order("exams.exam_date ASC"))
}

// FindRecentByStudent returns the latest results by exam date
func (r *GormResultRepository) FindRecentByStudent(ctx context.Context, tenantID, studentID uuid.UUID, limit int) ([]*exams.Result, error) {
	if limit <= 0 {
		limit = 5
	}
	return r.find(r.db.WithContext(ctx).
		Table("exam_results").
		Select("exam_results.*").
		Joins("JOIN exams ON exams.id = exam_results.exam_id").
		Where("exam_results.tenant_id = ? AND exam_results.student_id = ?", tenantID, studentID).
		Order("exams.exam_date DESC").
		Limit(limit))
}

// CountByExam counts the results recorded for an exam
func (r *GormResultRepository) CountByExam(ctx context.Context, tenantID, examID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ExamResultModel{}).
		Where("tenant_id = ? AND exam_id = ?", tenantID, examID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormResultRepository) find(query *gorm.DB) ([]*exams.Result, error) {
	var resultModels []*models.ExamResultModel
	if err := query.Find(&resultModels).Error; err != nil {
		return nil, err
	}
	results := make([]*exams.Result, len(resultModels))
	for i, model := range resultModels {
		results[i] = model.ToDomain()
	}
	return results, nil
}

var _ exams.ResultRepository = (*GormResultRepository)(nil)
