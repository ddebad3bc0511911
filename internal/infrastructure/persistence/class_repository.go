package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/academic"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/schoolhub/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormClassRepository implements ClassRepository using GORM
type GormClassRepository struct {
	db *gorm.DB
}

// NewGormClassRepository creates a new GormClassRepository
func NewGormClassRepository(db *gorm.DB) *GormClassRepository {
	return &GormClassRepository{db: db}
}

// Save creates or updates a class
func (r *GormClassRepository) Save(ctx context.Context, class *academic.Class) error {
	return saveVersioned(ctx, r.db, models.ClassModelFromDomain(class), class.ID, class.Version)
}

// Delete deletes a class and its subject links
func (r *GormClassRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ? AND class_id = ?", tenantID, id).
			Delete(&models.ClassSubjectModel{}).Error; err != nil {
			return err
		}
		return deleteResult(tx.Delete(&models.ClassModel{}, "tenant_id = ? AND id = ?", tenantID, id))
	})
}

// FindByID finds a class within a school
func (r *GormClassRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*academic.Class, error) {
	var model models.ClassModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple classes by id
func (r *GormClassRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*academic.Class, error) {
	if len(ids) == 0 {
		return []*academic.Class{}, nil
	}
	return r.find(r.db.WithContext(ctx).Where("tenant_id = ? AND id IN ?", tenantID, ids).Order("grade_level ASC, name ASC"))
}

// FindAll lists classes matching the filter
func (r *GormClassRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*academic.Class, int64, error) {
	var classModels []*models.ClassModel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.ClassModel{}).Where("tenant_id = ?", tenantID)
	query = applySearch(query, filter.Search, "name", "section", "room")
	for key, value := range filter.Filters {
		switch key {
		case "grade_level":
			query = query.Where("grade_level = ?", value)
		case "academic_year":
			query = query.Where("academic_year = ?", value)
		case "teacher_id":
			query = query.Where("homeroom_teacher_id = ?", value)
		case "is_active":
			query = query.Where("is_active = ?", value)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := applyPaging(query, filter, ClassSortFields, "grade_level").Find(&classModels).Error; err != nil {
		return nil, 0, err
	}

	classes := make([]*academic.Class, len(classModels))
	for i, model := range classModels {
		classes[i] = model.ToDomain()
	}
	return classes, total, nil
}

// FindByTeacher lists the classes a teacher is homeroom teacher of
func (r *GormClassRepository) FindByTeacher(ctx context.Context, tenantID, teacherID uuid.UUID) ([]*academic.Class, error) {
	return r.find(r.db.WithContext(ctx).
		Where("tenant_id = ? AND homeroom_teacher_id = ?", tenantID, teacherID).
		Order("grade_level ASC, name ASC"))
}

// FindByName finds a class by exact (case-insensitive) name, used by imports
func (r *GormClassRepository) FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*academic.Class, error) {
	var model models.ClassModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND LOWER(name) = ?", tenantID, strings.ToLower(strings.TrimSpace(name))).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// CountByTeacher counts classes with the teacher as homeroom teacher
func (r *GormClassRepository) CountByTeacher(ctx context.Context, tenantID, teacherID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ClassModel{}).
		Where("tenant_id = ? AND homeroom_teacher_id = ?", tenantID, teacherID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormClassRepository) find(query *gorm.DB) ([]*academic.Class, error) {
	var classModels []*models.ClassModel
	if err := query.Find(&classModels).Error; err != nil {
		return nil, err
	}
	classes := make([]*academic.Class, len(classModels))
	for i, model := range classModels {
		classes[i] = model.ToDomain()
	}
	return classes, nil
}

var _ academic.ClassRepository = (*GormClassRepository)(nil)
