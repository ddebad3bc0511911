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

// GormSubjectRepository implements SubjectRepository using GORM
type GormSubjectRepository struct {
	db *gorm.DB
}

// NewGormSubjectRepository creates a new GormSubjectRepository
func NewGormSubjectRepository(db *gorm.DB) *GormSubjectRepository {
	return &GormSubjectRepository{db: db}
}

// Save creates or updates a subject
func (r *GormSubjectRepository) Save(ctx context.Context, subject *academic.Subject) error {
	return saveVersioned(ctx, r.db, models.SubjectModelFromDomain(subject), subject.ID, subject.Version)
}

// Delete deletes a subject
func (r *GormSubjectRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteResult(r.db.WithContext(ctx).Delete(&models.SubjectModel{}, "tenant_id = ? AND id = ?", tenantID, id))
}

// FindByID finds a subject within a school
func (r *GormSubjectRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*academic.Subject, error) {
	var model models.SubjectModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists subjects. Supported filters: is_active
func (r *GormSubjectRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*academic.Subject, int64, error) {
	var subjectModels []*models.SubjectModel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.SubjectModel{}).Where("tenant_id = ?", tenantID)
	query = applySearch(query, filter.Search, "code", "name")
	if v, ok := filter.Filters["is_active"]; ok {
		query = query.Where("is_active = ?", v)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := applyPaging(query, filter, SubjectSortFields, "name").Find(&subjectModels).Error; err != nil {
		return nil, 0, err
	}

	subjects := make([]*academic.Subject, len(subjectModels))
	for i, model := range subjectModels {
		subjects[i] = model.ToDomain()
	}
	return subjects, total, nil
}

// ExistsByCode checks uniqueness, optionally ignoring one subject
func (r *GormSubjectRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&models.SubjectModel{}).
		Where("tenant_id = ? AND code = ?", tenantID, strings.ToUpper(strings.TrimSpace(code)))
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// AssignToClass stores a class-subject link
func (r *GormSubjectRepository) AssignToClass(ctx context.Context, link *academic.ClassSubject) error {
	return r.db.WithContext(ctx).Create(models.ClassSubjectModelFromDomain(link)).Error
}

// RemoveFromClass deletes a class-subject link
func (r *GormSubjectRepository) RemoveFromClass(ctx context.Context, tenantID, classID, subjectID uuid.UUID) error {
	return deleteResult(r.db.WithContext(ctx).Delete(&models.ClassSubjectModel{},
		"tenant_id = ? AND class_id = ? AND subject_id = ?", tenantID, classID, subjectID))
}

// FindClassSubject finds one class-subject link
func (r *GormSubjectRepository) FindClassSubject(ctx context.Context, tenantID, classID, subjectID uuid.UUID) (*academic.ClassSubject, error) {
	var model models.ClassSubjectModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND class_id = ? AND subject_id = ?", tenantID, classID, subjectID).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindClassSubjects lists the subjects linked to a class
func (r *GormSubjectRepository) FindClassSubjects(ctx context.Context, tenantID, classID uuid.UUID) ([]*academic.ClassSubject, error) {
	var linkModels []*models.ClassSubjectModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND class_id = ?", tenantID, classID).
		Order("created_at ASC").
		Find(&linkModels).Error; err != nil {
		return nil, err
	}
	links := make([]*academic.ClassSubject, len(linkModels))
	for i, model := range linkModels {
		links[i] = model.ToDomain()
	}
	return links, nil
}

// FindClassesTaughtBy returns class ids where the teacher teaches a subject
func (r *GormSubjectRepository) FindClassesTaughtBy(ctx context.Context, tenantID, teacherID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.ClassSubjectModel{}).
		Distinct("class_id").
		Where("tenant_id = ? AND teacher_id = ?", tenantID, teacherID).
		Pluck("class_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// CountClassLinks counts the classes a subject is assigned to
func (r *GormSubjectRepository) CountClassLinks(ctx context.Context, tenantID, subjectID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ClassSubjectModel{}).
		Where("tenant_id = ? AND subject_id = ?", tenantID, subjectID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ academic.SubjectRepository = (*GormSubjectRepository)(nil)
