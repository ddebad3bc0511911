package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/communication"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/schoolhub/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAnnouncementRepository implements AnnouncementRepository using GORM
type GormAnnouncementRepository struct {
	db *gorm.DB
}

// NewGormAnnouncementRepository creates a new GormAnnouncementRepository
func NewGormAnnouncementRepository(db *gorm.DB) *GormAnnouncementRepository {
	return &GormAnnouncementRepository{db: db}
}

// Save creates or updates an announcement
func (r *GormAnnouncementRepository) Save(ctx context.Context, a *communication.Announcement) error {
	return saveVersioned(ctx, r.db, models.AnnouncementModelFromDomain(a), a.ID, a.Version)
}

// Delete deletes an announcement
func (r *GormAnnouncementRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteResult(r.db.WithContext(ctx).Delete(&models.AnnouncementModel{}, "tenant_id = ? AND id = ?", tenantID, id))
}

// FindByID finds an announcement within a school
func (r *GormAnnouncementRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*communication.Announcement, error) {
	var model models.AnnouncementModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists announcements matching the filter
func (r *GormAnnouncementRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*communication.Announcement, int64, error) {
	var announcementModels []*models.AnnouncementModel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.AnnouncementModel{}).Where("tenant_id = ?", tenantID)
	query = applySearch(query, filter.Search, "title", "content")
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "audience":
			query = query.Where("audience = ?", value)
		case "priority":
			query = query.Where("priority = ?", value)
		case "class_id":
			query = query.Where("class_id = ?", value)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := applyPaging(query, filter, AnnouncementSortFields, "created_at").Find(&announcementModels).Error; err != nil {
		return nil, 0, err
	}
	return toAnnouncements(announcementModels), total, nil
}

// FindVisible returns published, unexpired announcements for the audiences, newest first
func (r *GormAnnouncementRepository) FindVisible(ctx context.Context, tenantID uuid.UUID, audiences []communication.Audience, now time.Time, limit int) ([]*communication.Announcement, error) {
	if len(audiences) == 0 {
		return []*communication.Announcement{}, nil
	}
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ? AND audience IN ?", tenantID, communication.AnnouncementStatusPublished, audiences).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Order("published_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var announcementModels []*models.AnnouncementModel
	if err := query.Find(&announcementModels).Error; err != nil {
		return nil, err
	}
	return toAnnouncements(announcementModels), nil
}

// FindExpired returns published announcements of every school whose expiry has passed
func (r *GormAnnouncementRepository) FindExpired(ctx context.Context, now time.Time, limit int) ([]*communication.Announcement, error) {
	query := r.db.WithContext(ctx).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?", communication.AnnouncementStatusPublished, now).
		Order("expires_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var announcementModels []*models.AnnouncementModel
	if err := query.Find(&announcementModels).Error; err != nil {
		return nil, err
	}
	return toAnnouncements(announcementModels), nil
}

func toAnnouncements(announcementModels []*models.AnnouncementModel) []*communication.Announcement {
	result := make([]*communication.Announcement, len(announcementModels))
	for i, model := range announcementModels {
		result[i] = model.ToDomain()
	}
	return result
}

var _ communication.AnnouncementRepository = (*GormAnnouncementRepository)(nil)
