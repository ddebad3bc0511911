package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/communication"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/schoolhub/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormMessageRepository implements MessageRepository using GORM
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a new GormMessageRepository
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

// Save creates or updates a message
func (r *GormMessageRepository) Save(ctx context.Context, m *communication.Message) error {
	return saveVersioned(ctx, r.db, models.MessageModelFromDomain(m), m.ID, m.Version)
}

// Delete removes a message row
func (r *GormMessageRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteResult(r.db.WithContext(ctx).Delete(&models.MessageModel{}, "tenant_id = ? AND id = ?", tenantID, id))
}

// FindByID finds a message within a school
func (r *GormMessageRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*communication.Message, error) {
	var model models.MessageModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindInbox lists messages received by the user that the user has not deleted
func (r *GormMessageRepository) FindInbox(ctx context.Context, tenantID, userID uuid.UUID, unreadOnly bool, filter shared.Filter) ([]*communication.Message, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.MessageModel{}).
		Where("tenant_id = ? AND recipient_id = ? AND deleted_by_recipient = ?", tenantID, userID, false)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}
	return r.page(query, filter)
}

// FindSent lists messages sent by the user that the user has not deleted
func (r *GormMessageRepository) FindSent(ctx context.Context, tenantID, userID uuid.UUID, filter shared.Filter) ([]*communication.Message, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.MessageModel{}).
		Where("tenant_id = ? AND sender_id = ? AND deleted_by_sender = ?", tenantID, userID, false)
	return r.page(query, filter)
}

// CountUnread counts unread inbox messages
func (r *GormMessageRepository) CountUnread(ctx context.Context, tenantID, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.MessageModel{}).
		Where("tenant_id = ? AND recipient_id = ? AND deleted_by_recipient = ? AND read_at IS NULL", tenantID, userID, false).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormMessageRepository) page(query *gorm.DB, filter shared.Filter) ([]*communication.Message, int64, error) {
	var messageModels []*models.MessageModel
	var total int64

	query = applySearch(query, filter.Search, "subject", "body")
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := applyPaging(query, filter, MessageSortFields, "created_at").Find(&messageModels).Error; err != nil {
		return nil, 0, err
	}

	result := make([]*communication.Message, len(messageModels))
	for i, model := range messageModels {
		result[i] = model.ToDomain()
	}
	return result, total, nil
}

var _ communication.MessageRepository = (*GormMessageRepository)(nil)
