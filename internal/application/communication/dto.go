package communication

import (
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/communication"
	"github.com/schoolhub/backend/internal/domain/shared"
)

// AnnouncementRequest creates or replaces an announcement
type AnnouncementRequest struct {
	Title     string     `json:"title" binding:"required,notblank,max=200"`
	Content   string     `json:"content" binding:"required,notblank,max=20000"`
	Audience  string     `json:"audience" binding:"omitempty,oneof=all staff teachers students parents"`
	ClassID   *uuid.UUID `json:"class_id"`
	Priority  string     `json:"priority" binding:"omitempty,oneof=normal high urgent"`
	ExpiresAt *time.Time `json:"expires_at"`
	Publish   bool       `json:"publish"`
}

func (r AnnouncementRequest) content() communication.AnnouncementContent {
	return communication.AnnouncementContent{
		Title:     r.Title,
		Content:   r.Content,
		Audience:  communication.Audience(r.Audience),
		ClassID:   r.ClassID,
		Priority:  communication.Priority(r.Priority),
		ExpiresAt: r.ExpiresAt,
	}
}

// AnnouncementListFilter narrows announcement listings
type AnnouncementListFilter struct {
	shared.PageQuery
	Status   string     `form:"status" binding:"omitempty,oneof=draft published archived"`
	Audience string     `form:"audience" binding:"omitempty,oneof=all staff teachers students parents"`
	Priority string     `form:"priority" binding:"omitempty,oneof=normal high urgent"`
	ClassID  *uuid.UUID `form:"class_id,parser=encoding.TextUnmarshaler"`
}

// AnnouncementResponse is the API view of an announcement
type AnnouncementResponse struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Audience    string     `json:"audience"`
	ClassID     *uuid.UUID `json:"class_id,omitempty"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	AuthorID    uuid.UUID  `json:"author_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Version     int        `json:"version"`
}

// ToAnnouncementResponse converts an announcement
func ToAnnouncementResponse(a *communication.Announcement) AnnouncementResponse {
	return AnnouncementResponse{
		ID:          a.ID,
		Title:       a.Title,
		Content:     a.Content,
		Audience:    string(a.Audience),
		ClassID:     a.ClassID,
		Priority:    string(a.Priority),
		Status:      string(a.Status),
		PublishedAt: a.PublishedAt,
		ExpiresAt:   a.ExpiresAt,
		AuthorID:    a.AuthorID,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
		Version:     a.Version,
	}
}

// SendMessageRequest sends a private message
type SendMessageRequest struct {
	RecipientID   uuid.UUID  `json:"recipient_id" binding:"required"`
	Subject       string     `json:"subject" binding:"required,notblank,max=200"`
	Body          string     `json:"body" binding:"required,notblank,max=20000"`
	ParentID      *uuid.UUID `json:"parent_id"`
	AttachmentKey string     `json:"attachment_key" binding:"max=500"`
}

// MailboxFilter pages through a mailbox
type MailboxFilter struct {
	shared.PageQuery
	UnreadOnly bool `form:"unread_only"`
}

// AttachmentUploadRequest asks for a presigned upload
type AttachmentUploadRequest struct {
	FileName    string `json:"file_name" binding:"required,notblank,max=200"`
	ContentType string `json:"content_type" binding:"required,max=100"`
}

// AttachmentUploadResponse is where the browser PUTs the file, and the key to send with the message
type AttachmentUploadResponse struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MessageResponse is the API view of a message
type MessageResponse struct {
	ID            uuid.UUID  `json:"id"`
	SenderID      uuid.UUID  `json:"sender_id"`
	SenderName    string     `json:"sender_name,omitempty"`
	RecipientID   uuid.UUID  `json:"recipient_id"`
	RecipientName string     `json:"recipient_name,omitempty"`
	Subject       string     `json:"subject"`
	Body          string     `json:"body"`
	ParentID      *uuid.UUID `json:"parent_id,omitempty"`
	AttachmentKey string     `json:"attachment_key,omitempty"`
	AttachmentURL string     `json:"attachment_url,omitempty"`
	ReadAt        *time.Time `json:"read_at,omitempty"`
	IsRead        bool       `json:"is_read"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ToMessageResponse converts a message
func ToMessageResponse(m *communication.Message) MessageResponse {
	return MessageResponse{
		ID:            m.ID,
		SenderID:      m.SenderID,
		RecipientID:   m.RecipientID,
		Subject:       m.Subject,
		Body:          m.Body,
		ParentID:      m.ParentID,
		AttachmentKey: m.AttachmentKey,
		ReadAt:        m.ReadAt,
		IsRead:        m.ReadAt != nil,
		CreatedAt:     m.CreatedAt,
	}
}

// UnreadCountResponse is the number of unread messages in the caller's inbox
type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}
