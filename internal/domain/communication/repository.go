package communication

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/shared"
)

// AnnouncementRepository persists announcements
type AnnouncementRepository interface {
	Save(ctx context.Context, a *Announcement) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Announcement, error)
	// FindAll supports filters: status, audience, priority, class_id
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*Announcement, int64, error)
	// FindVisible returns published, unexpired announcements for the audiences, newest first
	FindVisible(ctx context.Context, tenantID uuid.UUID, audiences []Audience, now time.Time, limit int) ([]*Announcement, error)
	// FindExpired returns published announcements of every school whose expiry has passed
	FindExpired(ctx context.Context, now time.Time, limit int) ([]*Announcement, error)
}

// MessageRepository persists messages
type MessageRepository interface {
	Save(ctx context.Context, m *Message) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Message, error)
	FindInbox(ctx context.Context, tenantID, userID uuid.UUID, unreadOnly bool, filter shared.Filter) ([]*Message, int64, error)
	FindSent(ctx context.Context, tenantID, userID uuid.UUID, filter shared.Filter) ([]*Message, int64, error)
	CountUnread(ctx context.Context, tenantID, userID uuid.UUID) (int64, error)
}
