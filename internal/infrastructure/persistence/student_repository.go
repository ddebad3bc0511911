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

// GormStudentRepository implements StudentRepository using GORM
type GormStudentRepository struct {
	db *gorm.DB
}

// NewGormStudentRepository creates a new GormStudentRepository
func NewGormStudentRepository(db *gorm.DB) *GormStudentRepository {
	return &GormStudentRepository{db: db}
}

// Save creates or updates a student
func (r *GormStudentRepository) Save(ctx context.Context, student *people.Student) error {
	return saveVersioned(ctx, r.db, models.StudentModelFromDomain(student), student.ID, student.Version)
}

// SaveBatch inserts imported students in one transaction
func (r *GormStudentRepository) SaveBatch(ctx context.Context, students []*people.Student) error {
	if len(students) == 0 {
		return nil
	}
	studentModels := make([]*models.StudentModel, len(students))
	for i, s := range students {
		studentModels[i] = models.StudentModelFromDomain(s)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(studentModels, 100).Error
	})
}

// Delete deletes a student
func (r *GormStudentRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteResult(r.db.WithContext(ctx).Delete(&models.StudentModel{}, "tenant_id = ? AND id = ?", tenantID, id))
}

// FindByID finds a student within a school
func (r *GormStudentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*people.Student, error) {
	var model models.StudentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple students by id
func (r *GormStudentRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*people.Student, error) {
	if len(ids) == 0 {
		return []*people.Student{}, nil
	}
	return r.find(r.db.WithContext(ctx).Where("tenant_id = ? AND id IN ?", tenantID, ids))
}

// FindByAdmissionNumber finds a student by admission number
func (r *GormStudentRepository) FindByAdmissionNumber(ctx context.Context, tenantID uuid.UUID, admissionNumber string) (*people.Student, error) {
	var model models.StudentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND admission_number = ?", tenantID, strings.ToUpper(strings.TrimSpace(admissionNumber))).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists students matching the filter
func (r *GormStudentRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*people.Student, int64, error) {
	var studentModels []*models.StudentModel
	var total int64

	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.StudentModel{}).Where("tenant_id = ?", tenantID), filter)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := applyPaging(query, filter, StudentSortFields, "last_name").Find(&studentModels).Error; err != nil {
		return nil, 0, err
	}

	students := make([]*people.Student, len(studentModels))
	for i, model := range studentModels {
		students[i] = model.ToDomain()
	}
	return students, total, nil
}

// FindByClass lists the students of a class ordered by name
func (r *GormStudentRepository) FindByClass(ctx context.Context, tenantID, classID uuid.UUID, activeOnly bool) ([]*people.Student, error) {
	query := r.db.WithContext(ctx).Where("tenant_id = ? AND class_id = ?", tenantID, classID)
	if activeOnly {
		query = query.Where("status = ?", people.StudentStatusActive)
	}
	return r.find(query.Order("last_name ASC, first_name ASC"))
}

// FindByParentUser lists the children linked to a parent account
func (r *GormStudentRepository) FindByParentUser(ctx context.Context, tenantID, parentUserID uuid.UUID) ([]*people.Student, error) {
	return r.find(r.db.WithContext(ctx).
		Where("tenant_id = ? AND parent_user_id = ?", tenantID, parentUserID).
		Order("first_name ASC"))
}

// FindByStudentUser finds the student record linked to a student account
func (r *GormStudentRepository) FindByStudentUser(ctx context.Context, tenantID, userID uuid.UUID) (*people.Student, error) {
	var model models.StudentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND student_user_id = ?", tenantID, userID).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// ExistingAdmissionNumbers reports which of the numbers are already taken
func (r *GormStudentRepository) ExistingAdmissionNumbers(ctx context.Context, tenantID uuid.UUID, numbers []string) (map[string]bool, error) {
	existing := make(map[string]bool)
	if len(numbers) == 0 {
		return existing, nil
	}
	upper := make([]string, len(numbers))
	for i, n := range numbers {
		upper[i] = strings.ToUpper(strings.TrimSpace(n))
	}
	var found []string
	if err := r.db.WithContext(ctx).
		Model(&models.StudentModel{}).
		Where("tenant_id = ? AND admission_number IN ?", tenantID, upper).
		Pluck("admission_number", &found).Error; err != nil {
		return nil, err
	}
	for _, n := range found {
		existing[n] = true
	}
	return existing, nil
}

// ExistsByAdmissionNumber checks uniqueness, optionally ignoring one student
func (r *GormStudentRepository) ExistsByAdmissionNumber(ctx context.Context, tenantID uuid.UUID, admissionNumber string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&models.StudentModel{}).
		Where("tenant_id = ? AND admission_number = ?", tenantID, strings.ToUpper(strings.TrimSpace(admissionNumber)))
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByClass counts active students enrolled in a class
func (r *GormStudentRepository) CountByClass(ctx context.Context, tenantID, classID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.StudentModel{}).
		Where("tenant_id = ? AND class_id = ? AND status = ?", tenantID, classID, people.StudentStatusActive).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormStudentRepository) find(query *gorm.DB) ([]*people.Student, error) {
	var studentModels []*models.StudentModel
	if err := query.Find(&studentModels).Error; err != nil {
		return nil, err
	}
	students := make([]*people.Student, len(studentModels))
	for i, model := range studentModels {
		students[i] = model.ToDomain()
	}
	return students, nil
}

// applyFilter applies search and entity filters without pagination
func (r *GormStudentRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applySearch(query, filter.Search, "admission_number", "first_name", "last_name", "guardian_name")
	for key, value := range filter.Filters {
		switch key {
		case "class_id":
			query = query.Where("class_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "gender":
			query = query.Where("gender = ?", value)
		case "parent_user_id":
			query = query.Where("parent_user_id = ?", value)
		}
	}
	return query
}

var _ people.StudentRepository = (*GormStudentRepository)(nil)
