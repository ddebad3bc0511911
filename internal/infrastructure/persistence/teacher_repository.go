package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/people"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/schoolhub/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTeacherRepository implements TeacherRepository using GORM
type GormTeacherRepository struct {
	db *gorm.DB
}

// NewGormTeacherRepository creates a new GormTeacherRepository
func NewGormTeacherRepository(db *gorm.DB) *GormTeacherRepository {
	return &GormTeacherRepository{db: db}
}

// Save creates or updates a teacher
func (r *GormTeacherRepository) Save(ctx context.Context, teacher *people.Teacher) error {
	return saveVersioned(ctx, r.db, models.TeacherModelFromDomain(teacher), teacher.ID, teacher.Version)
}

// Delete deletes a teacher
func (r *GormTeacherRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteResult(r.db.WithContext(ctx).Delete(&models.TeacherModel{}, "tenant_id = ? AND id = ?", tenantID, id))
}

// FindByID finds a teacher within a school
func (r *GormTeacherRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*people.Teacher, error) {
	var model models.TeacherModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByUserID finds the teacher record linked to a user account
func (r *GormTeacherRepository) FindByUserID(ctx context.Context, tenantID, userID uuid.UUID) (*people.Teacher, error) {
	var model models.TeacherModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists teachers matching the filter
func (r *GormTeacherRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*people.Teacher, int64, error) {
	var teacherModels []*models.TeacherModel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.TeacherModel{}).Where("tenant_id = ?", tenantID)
	query = applySearch(query, filter.Search, "employee_number", "first_name", "last_name", "email")
	if v, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", v)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := applyPaging(query, filter, TeacherSortFields, "last_name").Find(&teacherModels).Error; err != nil {
		return nil, 0, err
	}

	teachers := make([]*people.Teacher, len(teacherModels))
	for i, model := range teacherModels {
		teachers[i] = model.ToDomain()
	}
	return teachers, total, nil
}

// ExistsByEmployeeNumber checks uniqueness, optionally ignoring one teacher
func (r *GormTeacherRepository) ExistsByEmployeeNumber(ctx context.Context, tenantID uuid.UUID, employeeNumber string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&models.TeacherModel{}).
		Where("tenant_id = ? AND employee_number = ?", tenantID, strings.ToUpper(strings.TrimSpace(employeeNumber)))
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

var _ people.TeacherRepository = (*GormTeacherRepository)(nil)
