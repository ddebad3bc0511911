package communication

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/communication"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/schoolhub/backend/internal/infrastructure/storage"
	"go.uber.org/zap"
)

const (
	uploadURLTTL   = 15 * time.Minute
	downloadURLTTL = 15 * time.Minute
)

// MessageService delivers private messages between users of one school
type MessageService struct {
	messageRepo    communication.MessageRepository
	userRepo       identity.UserRepository
	storage        storage.ObjectStorage
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewMessageService creates a new message service
func NewMessageService(
	messageRepo communication.MessageRepository,
	userRepo identity.UserRepository,
	objectStorage storage.ObjectStorage,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *MessageService {
	if objectStorage == nil {
		objectStorage = storage.DisabledStorage{}
	}
	return &MessageService{
		messageRepo:    messageRepo,
		userRepo:       userRepo,
		storage:        objectStorage,
		eventPublisher: eventPublisher,
		logger:         logger,
		now:            time.Now,
	}
}

// Send delivers a message to another user of the actor's school
func (s *MessageService) Send(ctx context.Context, actor identity.Actor, req SendMessageRequest) (*MessageResponse, error) {
	recipient, err := s.userRepo.FindByIDForTenant(ctx, actor.TenantID, req.RecipientID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("RECIPIENT_NOT_FOUND", "Recipient not found")
		}
		return nil, err
	}
	if !recipient.IsActive() {
		return nil, shared.NewDomainError("RECIPIENT_INACTIVE", "Recipient account is not active")
	}
	if req.ParentID != nil {
		parent, err := s.find(ctx, actor.TenantID, *req.ParentID)
		if err != nil {
			return nil, err
		}
		if !parent.IsParticipant(actor.UserID) {
			return nil, shared.NewDomainError("MESSAGE_NOT_FOUND", "Message not found")
		}
	}
	key := strings.TrimSpace(req.AttachmentKey)
	if key != "" && !storage.BelongsTo(key, actor.TenantID) {
		return nil, shared.NewDomainError("INVALID_ATTACHMENT", "Attachment does not belong to this school")
	}

	msg, err := communication.NewMessage(actor.TenantID, actor.UserID, recipient.ID, req.Subject, req.Body, req.ParentID, key)
	if err != nil {
		return nil, err
	}
	if err := s.messageRepo.Save(ctx, msg); err != nil {
		return nil, err
	}
	if err := shared.PublishAndClear(ctx, s.eventPublisher, msg); err != nil {
		s.logger.Warn("Failed to publish message events", zap.Error(err))
	}

	s.logger.Info("Message sent",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("message_id", msg.ID.String()),
		zap.String("sender_id", actor.UserID.String()),
		zap.String("recipient_id", recipient.ID.String()))

	resp := ToMessageResponse(msg)
	resp.RecipientName = recipient.GetDisplayNameOrUsername()
	return &resp, nil
}

// Inbox lists messages received by the actor
func (s *MessageService) Inbox(ctx context.Context, actor identity.Actor, filter MailboxFilter) ([]MessageResponse, int64, error) {
	list, total, err := s.messageRepo.FindInbox(ctx, actor.TenantID, actor.UserID, filter.UnreadOnly, filter.PageQuery.Filter())
	if err != nil {
		return nil, 0, err
	}
	out, err := s.responses(ctx, actor.TenantID, list)
	return out, total, err
}

// Sent lists messages sent by the actor
func (s *MessageService) Sent(ctx context.Context, actor identity.Actor, filter MailboxFilter) ([]MessageResponse, int64, error) {
	list, total, err := s.messageRepo.FindSent(ctx, actor.TenantID, actor.UserID, filter.PageQuery.Filter())
	if err != nil {
		return nil, 0, err
	}
	out, err := s.responses(ctx, actor.TenantID, list)
	return out, total, err
}

// Get opens a message. Opening it as the recipient marks it read.
func (s *MessageService) Get(ctx context.Context, actor identity.Actor, id uuid.UUID) (*MessageResponse, error) {
	msg, err := s.findVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if msg.MarkRead(actor.UserID, s.now()) {
		if err := s.messageRepo.Save(ctx, msg); err != nil {
			return nil, err
		}
	}

	list, err := s.responses(ctx, actor.TenantID, []*communication.Message{msg})
	if err != nil {
		return nil, err
	}
	resp := list[0]
	if msg.AttachmentKey != "" {
		url, _, err := s.storage.GenerateDownloadURL(ctx, msg.AttachmentKey, downloadURLTTL)
		if err != nil && !errors.Is(err, storage.ErrStorageDisabled) {
			s.logger.Warn("Failed to sign attachment download",
				zap.String("message_id", msg.ID.String()),
				zap.Error(err))
		} else if err == nil {
			resp.AttachmentURL = url
		}
	}
	return &resp, nil
}

// MarkRead marks a received message read without opening it
func (s *MessageService) MarkRead(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	msg, err := s.findVisible(ctx, actor, id)
	if err != nil {
		return err
	}
	if msg.RecipientID != actor.UserID {
		return shared.NewDomainError("NOT_RECIPIENT", "Only the recipient can mark a message read")
	}
	if !msg.MarkRead(actor.UserID, s.now()) {
		return nil
	}
	return s.messageRepo.Save(ctx, msg)
}

// Delete hides a message from the actor's side. Once both sides deleted it the row and
// its attachment are removed.
func (s *MessageService) Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	msg, err := s.findVisible(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := msg.DeleteFor(actor.UserID); err != nil {
		return err
	}
	if !msg.DeletedByBoth() {
		return s.messageRepo.Save(ctx, msg)
	}

	if err := s.messageRepo.Delete(ctx, actor.TenantID, id); err != nil {
		return err
	}
	if msg.AttachmentKey != "" {
		if err := s.storage.DeleteObject(ctx, msg.AttachmentKey); err != nil && !errors.Is(err, storage.ErrStorageDisabled) {
			s.logger.Warn("Failed to delete message attachment",
				zap.String("key", msg.AttachmentKey),
				zap.Error(err))
		}
	}
	s.logger.Info("Message purged",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("message_id", id.String()))
	return nil
}

// UnreadCount counts unread messages in the actor's inbox
func (s *MessageService) UnreadCount(ctx context.Context, actor identity.Actor) (*UnreadCountResponse, error) {
	n, err := s.messageRepo.CountUnread(ctx, actor.TenantID, actor.UserID)
	if err != nil {
		return nil, err
	}
	return &UnreadCountResponse{Unread: n}, nil
}

// AttachmentUploadURL presigns a PUT for a message attachment under the school's prefix
func (s *MessageService) AttachmentUploadURL(ctx context.Context, actor identity.Actor, req AttachmentUploadRequest) (*AttachmentUploadResponse, error) {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(req.FileName), "\\", "/"))
	if name == "" || name == "." || name == "/" {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "File name is required")
	}
	key := storage.Key(actor.TenantID, storage.KindAttachments, uuid.NewString()+"-"+name, s.now())

	url, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, req.ContentType, uploadURLTTL)
	if err != nil {
		return nil, err
	}
	return &AttachmentUploadResponse{Key: key, UploadURL: url, ExpiresAt: expiresAt}, nil
}

// findVisible loads a message the actor takes part in and has not deleted.
// Anything else looks like a missing message.
func (s *MessageService) findVisible(ctx context.Context, actor identity.Actor, id uuid.UUID) (*communication.Message, error) {
	msg, err := s.find(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	if !msg.VisibleTo(actor.UserID) {
		return nil, shared.NewDomainError("MESSAGE_NOT_FOUND", "Message not found")
	}
	return msg, nil
}

func (s *MessageService) find(ctx context.Context, tenantID, id uuid.UUID) (*communication.Message, error) {
	msg, err := s.messageRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("MESSAGE_NOT_FOUND", "Message not found")
		}
		return nil, err
	}
	return msg, nil
}

// responses converts messages and fills in participant names
func (s *MessageService) responses(ctx context.Context, tenantID uuid.UUID, list []*communication.Message) ([]MessageResponse, error) {
	out := make([]MessageResponse, len(list))
	if len(list) == 0 {
		return out, nil
	}
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, m := range list {
		for _, id := range []uuid.UUID{m.SenderID, m.RecipientID} {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	users, err := s.userRepo.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(users))
	for _, u := range users {
		names[u.ID] = u.GetDisplayNameOrUsername()
	}
	for i, m := range list {
		out[i] = ToMessageResponse(m)
		out[i].SenderName = names[m.SenderID]
		out[i].RecipientName = names[m.RecipientID]
	}
	return out, nil
}
