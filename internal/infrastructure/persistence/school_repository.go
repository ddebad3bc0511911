package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/school"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/schoolhub/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSchoolRepository implements school.Repository using GORM
type GormSchoolRepository struct {
	db *gorm.DB
}

// NewGormSchoolRepository creates a new GormSchoolRepository
func NewGormSchoolRepository(db *gorm.DB) *GormSchoolRepository {
	return &GormSchoolRepository{db: db}
}

// Create inserts a new school
func (r *GormSchoolRepository) Create(ctx context.Context, s *school.School) error {
	return r.db.WithContext(ctx).Create(models.SchoolModelFromDomain(s)).Error
}

// Update saves a school with an optimistic version check
func (r *GormSchoolRepository) Update(ctx context.Context, s *school.School) error {
	model := models.SchoolModelFromDomain(s)
	result := r.db.WithContext(ctx).
		Model(&models.SchoolModel{}).
		Where("id = ? AND version < ?", s.ID, s.Version).
		Select("*").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete removes a school
func (r *GormSchoolRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteResult(r.db.WithContext(ctx).Delete(&models.SchoolModel{}, "id = ?", id))
}

// FindByID finds a school by id
func (r *GormSchoolRepository) FindByID(ctx context.Context, id uuid.UUID) (*school.School, error) {
	var model models.SchoolModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByCode finds a school by its code
func (r *GormSchoolRepository) FindByCode(ctx context.Context, code string) (*school.School, error) {
	var model models.SchoolModel
	if err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists schools. Supported filters: status
func (r *GormSchoolRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*school.School, int64, error) {
	var schoolModels []*models.SchoolModel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.SchoolModel{})
	query = applySearch(query, filter.Search, "code", "name", "email")
	if v, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", v)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := applyPaging(query, filter, SchoolSortFields, "name").Find(&schoolModels).Error; err != nil {
		return nil, 0, err
	}

	schools := make([]*school.School, len(schoolModels))
	for i, model := range schoolModels {
		schools[i] = model.ToDomain()
	}
	return schools, total, nil
}

// FindActiveIDs lists every active school
func (r *GormSchoolRepository) FindActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.SchoolModel{}).
		Where("status = ?", school.StatusActive).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// ExistsByCode checks whether a school code is taken
func (r *GormSchoolRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SchoolModel{}).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByStatus counts schools per status
func (r *GormSchoolRepository) CountByStatus(ctx context.Context) (map[school.Status]int64, error) {
	var rows []struct {
		Status school.Status
		Count  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.SchoolModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[school.Status]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

var _ school.Repository = (*GormSchoolRepository)(nil)
