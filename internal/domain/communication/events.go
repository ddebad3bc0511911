package communication

import (
	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/shared"
)

// Aggregate types
const (
	AggregateTypeAnnouncement = "Announcement"
	AggregateTypeMessage      = "Message"
)

// Event types
const (
	EventTypeAnnouncementCreated   = "announcement.created"
	EventTypeAnnouncementUpdated   = "announcement.updated"
	EventTypeAnnouncementPublished = "announcement.published"
	EventTypeAnnouncementArchived  = "announcement.archived"
	EventTypeAnnouncementDeleted   = "announcement.deleted"
	EventTypeMessageSent           = "message.sent"
)

// AnnouncementEvent is published on announcement lifecycle changes
type AnnouncementEvent struct {
	shared.BaseDomainEvent
	Title  string             `json:"title"`
	Status AnnouncementStatus `json:"status"`
}

// NewAnnouncementEvent creates an AnnouncementEvent of the given type
func NewAnnouncementEvent(eventType string, a *Announcement) *AnnouncementEvent {
	return &AnnouncementEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeAnnouncement, a.ID, a.TenantID),
		Title:           a.Title,
		Status:          a.Status,
	}
}

// AnnouncementPublishedEvent carries what the notifier needs to e-mail the audience
type AnnouncementPublishedEvent struct {
	shared.BaseDomainEvent
	Title    string     `json:"title"`
	Content  string     `json:"content"`
	Audience Audience   `json:"audience"`
	ClassID  *uuid.UUID `json:"class_id,omitempty"`
	Priority Priority   `json:"priority"`
}

// NewAnnouncementPublishedEvent creates an AnnouncementPublishedEvent
func NewAnnouncementPublishedEvent(a *Announcement) *AnnouncementPublishedEvent {
	return &AnnouncementPublishedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAnnouncementPublished, AggregateTypeAnnouncement, a.ID, a.TenantID),
		Title:           a.Title,
		Content:         a.Content,
		Audience:        a.Audience,
		ClassID:         a.ClassID,
		Priority:        a.Priority,
	}
}

// MessageSentEvent carries what the notifier needs to e-mail the recipient
type MessageSentEvent struct {
	shared.BaseDomainEvent
	SenderID    uuid.UUID `json:"sender_id"`
	RecipientID uuid.UUID `json:"recipient_id"`
	Subject     string    `json:"subject"`
}

// NewMessageSentEvent creates a MessageSentEvent
func NewMessageSentEvent(m *Message) *MessageSentEvent {
	return &MessageSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMessageSent, AggregateTypeMessage, m.ID, m.TenantID),
		SenderID:        m.SenderID,
		RecipientID:     m.RecipientID,
		Subject:         m.Subject,
	}
}
