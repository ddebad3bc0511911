package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/communication"
)

// AnnouncementModel is the persistence model for the Announcement aggregate.
type AnnouncementModel struct {
	TenantAggregateModel
	Title       string                           `gorm:"type:varchar(200);not null"`
	Content     string                           `gorm:"type:text;not null"`
	Audience    communication.Audience           `gorm:"type:varchar(20);not null;default:'all'"`
	ClassID     *uuid.UUID                       `gorm:"type:uuid;index"`
	Priority    communication.Priority           `gorm:"type:varchar(10);not null;default:'normal'"`
	Status      communication.AnnouncementStatus `gorm:"type:varchar(20);not null;index"`
	PublishedAt *time.Time
	ExpiresAt   *time.Time
	AuthorID    uuid.UUID `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (AnnouncementModel) TableName() string {
	return "announcements"
}

// ToDomain converts the persistence model to a domain Announcement.
func (m *AnnouncementModel) ToDomain() *communication.Announcement {
	return &communication.Announcement{
		TenantAggregateRoot: m.TenantAggregateRoot(),
		AnnouncementContent: communication.AnnouncementContent{
			Title:     m.Title,
			Content:   m.Content,
			Audience:  m.Audience,
			ClassID:   m.ClassID,
			Priority:  m.Priority,
			ExpiresAt: m.ExpiresAt,
		},
		Status:      m.Status,
		PublishedAt: m.PublishedAt,
		AuthorID:    m.AuthorID,
	}
}

// AnnouncementModelFromDomain creates a new persistence model from a domain Announcement.
func AnnouncementModelFromDomain(a *communication.Announcement) *AnnouncementModel {
	m := &AnnouncementModel{
		Title:       a.Title,
		Content:     a.Content,
		Audience:    a.Audience,
		ClassID:     a.ClassID,
		Priority:    a.Priority,
		Status:      a.Status,
		PublishedAt: a.PublishedAt,
		ExpiresAt:   a.ExpiresAt,
		AuthorID:    a.AuthorID,
	}
	m.FromDomainTenantAggregateRoot(a.TenantAggregateRoot)
	return m
}

// MessageModel is the persistence model for a Message.
type MessageModel struct {
	TenantAggregateModel
	SenderID           uuid.UUID  `gorm:"type:uuid;not null;index"`
	RecipientID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	Subject            string     `gorm:"type:varchar(200);not null"`
	Body               string     `gorm:"type:text;not null"`
	ParentID           *uuid.UUID `gorm:"type:uuid"`
	AttachmentKey      string     `gorm:"type:varchar(500)"`
	ReadAt             *time.Time
	DeletedBySender    bool `gorm:"not null;default:false"`
	DeletedByRecipient bool `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (MessageModel) TableName() string {
	return "messages"
}

// ToDomain converts the persistence model to a domain Message.
func (m *MessageModel) ToDomain() *communication.Message {
	return &communication.Message{
		TenantAggregateRoot: m.TenantAggregateRoot(),
		SenderID:            m.SenderID,
		RecipientID:         m.RecipientID,
		Subject:             m.Subject,
		Body:                m.Body,
		ParentID:            m.ParentID,
		AttachmentKey:       m.AttachmentKey,
		ReadAt:              m.ReadAt,
		DeletedBySender:     m.DeletedBySender,
		DeletedByRecipient:  m.DeletedByRecipient,
	}
}

// MessageModelFromDomain creates a new persistence model from a domain Message.
func MessageModelFromDomain(msg *communication.Message) *MessageModel {
	m := &MessageModel{
		SenderID:           msg.SenderID,
		RecipientID:        msg.RecipientID,
		Subject:            msg.Subject,
		Body:               msg.Body,
		ParentID:           msg.ParentID,
		AttachmentKey:      msg.AttachmentKey,
		ReadAt:             msg.ReadAt,
		DeletedBySender:    msg.DeletedBySender,
		DeletedByRecipient: msg.DeletedByRecipient,
	}
	m.FromDomainTenantAggregateRoot(msg.TenantAggregateRoot)
	return m
}
