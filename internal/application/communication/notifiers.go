package communication

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/communication"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/people"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/schoolhub/backend/internal/infrastructure/notification"
	"go.uber.org/zap"
)

// Mailer queues e-mail for background delivery
type Mailer interface {
	Dispatch(email *notification.Email) bool
}

// AnnouncementNotifier e-mails a published announcement to its audience
type AnnouncementNotifier struct {
	userRepo    identity.UserRepository
	studentRepo people.StudentRepository
	mailer      Mailer
	logger      *zap.Logger
}

// NewAnnouncementNotifier creates a new announcement handler
func NewAnnouncementNotifier(userRepo identity.UserRepository, studentRepo people.StudentRepository, mailer Mailer, logger *zap.Logger) *AnnouncementNotifier {
	return &AnnouncementNotifier{userRepo: userRepo, studentRepo: studentRepo, mailer: mailer, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *AnnouncementNotifier) EventTypes() []string {
	return []string{communication.EventTypeAnnouncementPublished}
}

// Handle processes an AnnouncementPublishedEvent
func (h *AnnouncementNotifier) Handle(ctx context.Context, event shared.DomainEvent) error {
	published, ok := event.(*communication.AnnouncementPublishedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", communication.EventTypeAnnouncementPublished),
			zap.String("actual", event.EventType()))
		return fmt.Errorf("unexpected event type: expected %s, got %s", communication.EventTypeAnnouncementPublished, event.EventType())
	}
	if h.mailer == nil {
		return nil
	}
	tenantID := event.TenantID()

	// class announcements only reach the students of that class and their parents
	var linked map[uuid.UUID]bool
	if published.ClassID != nil {
		students, err := h.studentRepo.FindByClass(ctx, tenantID, *published.ClassID, true)
		if err != nil {
			h.logger.Error("failed to load class for announcement e-mail", zap.Error(err))
			return nil
		}
		linked = make(map[uuid.UUID]bool)
		for _, st := range students {
			if st.StudentUserID != nil {
				linked[*st.StudentUserID] = true
			}
			if st.ParentUserID != nil {
				linked[*st.ParentUserID] = true
			}
		}
	}

	seen := make(map[uuid.UUID]bool)
	var to []notification.Recipient
	for _, role := range published.Audience.Roles() {
		users, err := h.userRepo.FindByRole(ctx, tenantID, role)
		if err != nil {
			h.logger.Error("failed to load announcement recipients",
				zap.String("role", string(role)),
				zap.Error(err))
			return nil
		}
		for _, u := range users {
			if seen[u.ID] || !u.IsActive() || u.Email == "" {
				continue
			}
			if linked != nil && !role.IsStaff() && !linked[u.ID] {
				continue
			}
			seen[u.ID] = true
			to = append(to, notification.Recipient{Name: u.GetDisplayNameOrUsername(), Address: u.Email})
		}
	}
	if len(to) == 0 {
		h.logger.Debug("announcement has no e-mail recipients",
			zap.String("announcement_id", event.AggregateID().String()))
		return nil
	}

	subject := published.Title
	if published.Priority != communication.PriorityNormal {
		subject = fmt.Sprintf("[%s] %s", strings.ToUpper(string(published.Priority)), published.Title)
	}
	h.mailer.Dispatch(&notification.Email{
		To:       to,
		Subject:  subject,
		TextBody: published.Content,
	})
	h.logger.Info("announcement e-mail queued",
		zap.String("announcement_id", event.AggregateID().String()),
		zap.Int("recipients", len(to)))
	return nil
}

// MessageNotifier tells the recipient of a message that something arrived
type MessageNotifier struct {
	userRepo identity.UserRepository
	mailer   Mailer
	logger   *zap.Logger
}

// NewMessageNotifier creates a new message handler
func NewMessageNotifier(userRepo identity.UserRepository, mailer Mailer, logger *zap.Logger) *MessageNotifier {
	return &MessageNotifier{userRepo: userRepo, mailer: mailer, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *MessageNotifier) EventTypes() []string {
	return []string{communication.EventTypeMessageSent}
}

// Handle processes a MessageSentEvent
func (h *MessageNotifier) Handle(ctx context.Context, event shared.DomainEvent) error {
	sent, ok := event.(*communication.MessageSentEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", communication.EventTypeMessageSent),
			zap.String("actual", event.EventType()))
		return fmt.Errorf("unexpected event type: expected %s, got %s", communication.EventTypeMessageSent, event.EventType())
	}
	if h.mailer == nil {
		return nil
	}

	users, err := h.userRepo.FindByIDs(ctx, event.TenantID(), []uuid.UUID{sent.SenderID, sent.RecipientID})
	if err != nil {
		h.logger.Error("failed to load message participants", zap.Error(err))
		return nil
	}
	var sender, recipient *identity.User
	for _, u := range users {
		switch u.ID {
		case sent.SenderID:
			sender = u
		case sent.RecipientID:
			recipient = u
		}
	}
	if recipient == nil || recipient.Email == "" || !recipient.IsActive() {
		return nil
	}
	from := "a member of your school"
	if sender != nil {
		from = sender.GetDisplayNameOrUsername()
	}

	h.mailer.Dispatch(&notification.Email{
		To:      []notification.Recipient{{Name: recipient.GetDisplayNameOrUsername(), Address: recipient.Email}},
		Subject: fmt.Sprintf("New message from %s: %s", from, sent.Subject),
		TextBody: fmt.Sprintf("You have a new message from %s.\n\nSubject: %s\n\nSign in to read it.",
			from, sent.Subject),
	})
	return nil
}

var (
	_ shared.EventHandler = (*AnnouncementNotifier)(nil)
	_ shared.EventHandler = (*MessageNotifier)(nil)
)
