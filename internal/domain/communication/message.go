package communication

import (
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/shared"
)

// Message is a private note between two users of the same school
type Message struct {
	shared.TenantAggregateRoot
	SenderID           uuid.UUID
	RecipientID        uuid.UUID
	Subject            string
	Body               string
	ParentID           *uuid.UUID
	AttachmentKey      string
	ReadAt             *time.Time
	DeletedBySender    bool
	DeletedByRecipient bool
}

// NewMessage creates an unread message
func NewMessage(tenantID, senderID, recipientID uuid.UUID, subject, body string, parentID *uuid.UUID, attachmentKey string) (*Message, error) {
	if recipientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RECIPIENT", "Recipient is required")
	}
	if senderID == recipientID {
		return nil, shared.NewDomainError("INVALID_RECIPIENT", "Cannot send a message to yourself")
	}
	subject, err := shared.RequireText("INVALID_SUBJECT", "Subject", subject, 200)
	if err != nil {
		return nil, err
	}
	body, err = shared.RequireText("INVALID_BODY", "Body", body, 20000)
	if err != nil {
		return nil, err
	}
	attachmentKey, err = shared.OptionalText("INVALID_ATTACHMENT", "Attachment", attachmentKey, 500)
	if err != nil {
		return nil, err
	}
	m := &Message{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SenderID:            senderID,
		RecipientID:         recipientID,
		Subject:             subject,
		Body:                body,
		ParentID:            parentID,
		AttachmentKey:       attachmentKey,
	}
	m.SetCreatedBy(senderID)
	m.AddDomainEvent(NewMessageSentEvent(m))
	return m, nil
}

// IsParticipant reports whether the user sent or received the message
func (m *Message) IsParticipant(userID uuid.UUID) bool {
	return m.SenderID == userID || m.RecipientID == userID
}

// VisibleTo reports whether the user still sees the message in their mailbox
func (m *Message) VisibleTo(userID uuid.UUID) bool {
	switch userID {
	case m.SenderID:
		return !m.DeletedBySender
	case m.RecipientID:
		return !m.DeletedByRecipient
	}
	return false
}

// MarkRead records the first time the recipient opened the message.
// Returns true when the read state changed.
func (m *Message) MarkRead(userID uuid.UUID, at time.Time) bool {
	if userID != m.RecipientID || m.ReadAt != nil {
		return false
	}
	m.ReadAt = &at
	m.Touch()
	return true
}

// DeleteFor hides the message from one side of the conversation
func (m *Message) DeleteFor(userID uuid.UUID) error {
	switch userID {
	case m.SenderID:
		m.DeletedBySender = true
	case m.RecipientID:
		m.DeletedByRecipient = true
	default:
		return shared.ErrForbidden
	}
	m.Touch()
	return nil
}

// DeletedByBoth reports whether neither side sees the message anymore
func (m *Message) DeletedByBoth() bool {
	return m.DeletedBySender && m.DeletedByRecipient
}
