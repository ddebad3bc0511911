package communication

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/communication"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/people"
	"github.com/schoolhub/backend/internal/infrastructure/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func addresses(email *notification.Email) []string {
	out := make([]string, len(email.To))
	for i, r := range email.To {
		out[i] = r.Address
	}
	return out
}

func TestAnnouncementNotifier_Handle(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	publishedEvent := func(t *testing.T, content communication.AnnouncementContent) *communication.AnnouncementPublishedEvent {
		t.Helper()
		a, err := communication.NewAnnouncement(tenantID, uuid.New(), content)
		require.NoError(t, err)
		require.NoError(t, a.Publish(fixedNow))
		return communication.NewAnnouncementPublishedEvent(a)
	}

	t.Run("e-mails every active user of the audience", func(t *testing.T) {
		users := new(MockUserRepository)
		mailer := &recordingMailer{}
		h := NewAnnouncementNotifier(users, new(MockStudentRepository), mailer, zaptest.NewLogger(t))

		gone := newUser(t, tenantID, "gone", "gone@school.test", identity.RoleTeacher)
		require.NoError(t, gone.Deactivate())
		users.On("FindByRole", ctx, tenantID, identity.RoleSchoolAdmin).Return([]*identity.User{
			newUser(t, tenantID, "head", "head@school.test", identity.RoleSchoolAdmin),
		}, nil)
		users.On("FindByRole", ctx, tenantID, identity.RoleTeacher).Return([]*identity.User{
			newUser(t, tenantID, "maths", "maths@school.test", identity.RoleTeacher),
			newUser(t, tenantID, "nomail", "", identity.RoleTeacher),
			gone,
		}, nil)

		event := publishedEvent(t, communication.AnnouncementContent{
			Title: "Staff meeting", Content: "Room 4 at 3pm", Audience: communication.AudienceStaff, Priority: communication.PriorityUrgent,
		})
		require.NoError(t, h.Handle(ctx, event))

		sent := mailer.sent()
		require.Len(t, sent, 1)
		assert.ElementsMatch(t, []string{"head@school.test", "maths@school.test"}, addresses(sent[0]))
		assert.Equal(t, "[URGENT] Staff meeting", sent[0].Subject)
		assert.Equal(t, "Room 4 at 3pm", sent[0].TextBody)
	})

	t.Run("class announcements reach only that class's families", func(t *testing.T) {
		users := new(MockUserRepository)
		students := new(MockStudentRepository)
		mailer := &recordingMailer{}
		h := NewAnnouncementNotifier(users, students, mailer, zaptest.NewLogger(t))

		classID := uuid.New()
		inClass := newUser(t, tenantID, "parent.in", "in@home.test", identity.RoleParent)
		elsewhere := newUser(t, tenantID, "parent.out", "out@home.test", identity.RoleParent)
		st, err := people.NewStudent(tenantID, "ADM-9", people.StudentProfile{FirstName: "Chi", LastName: "Eze"})
		require.NoError(t, err)
		st.LinkUsers(nil, &inClass.ID)
		students.On("FindByClass", ctx, tenantID, classID, true).Return([]*people.Student{st}, nil)
		users.On("FindByRole", ctx, tenantID, identity.RoleParent).Return([]*identity.User{inClass, elsewhere}, nil)

		event := publishedEvent(t, communication.AnnouncementContent{
			Title: "Trip form", Content: "Sign by Friday", Audience: communication.AudienceParents, ClassID: &classID,
		})
		require.NoError(t, h.Handle(ctx, event))

		sent := mailer.sent()
		require.Len(t, sent, 1)
		assert.Equal(t, []string{"in@home.test"}, addresses(sent[0]))
		assert.Equal(t, "Trip form", sent[0].Subject)
	})

	t.Run("no mailer", func(t *testing.T) {
		users := new(MockUserRepository)
		h := NewAnnouncementNotifier(users, new(MockStudentRepository), nil, zaptest.NewLogger(t))
		event := publishedEvent(t, communication.AnnouncementContent{Title: "x", Content: "y"})
		require.NoError(t, h.Handle(ctx, event))
		users.AssertNotCalled(t, "FindByRole", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects other events", func(t *testing.T) {
		h := NewAnnouncementNotifier(new(MockUserRepository), new(MockStudentRepository), &recordingMailer{}, zaptest.NewLogger(t))
		m, err := communication.NewMessage(tenantID, uuid.New(), uuid.New(), "s", "b", nil, "")
		require.NoError(t, err)
		assert.Error(t, h.Handle(ctx, communication.NewMessageSentEvent(m)))
	})
}

func TestMessageNotifier_Handle(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	sender := newUser(t, tenantID, "mrs.okafor", "okafor@school.test", identity.RoleTeacher)

	t.Run("tells the recipient", func(t *testing.T) {
		recipient := newUser(t, tenantID, "parent.ade", "ade@home.test", identity.RoleParent)
		users := new(MockUserRepository)
		mailer := &recordingMailer{}
		h := NewMessageNotifier(users, mailer, zaptest.NewLogger(t))
		users.On("FindByIDs", ctx, tenantID, []uuid.UUID{sender.ID, recipient.ID}).Return([]*identity.User{sender, recipient}, nil)

		m, err := communication.NewMessage(tenantID, sender.ID, recipient.ID, "Homework", "Body text", nil, "")
		require.NoError(t, err)
		require.NoError(t, h.Handle(ctx, communication.NewMessageSentEvent(m)))

		sent := mailer.sent()
		require.Len(t, sent, 1)
		assert.Equal(t, []string{"ade@home.test"}, addresses(sent[0]))
		assert.Equal(t, "New message from mrs.okafor: Homework", sent[0].Subject)
		assert.NotContains(t, sent[0].TextBody, "Body text")
	})

	t.Run("recipient without e-mail", func(t *testing.T) {
		recipient := newUser(t, tenantID, "student.kim", "", identity.RoleStudent)
		users := new(MockUserRepository)
		mailer := &recordingMailer{}
		h := NewMessageNotifier(users, mailer, zaptest.NewLogger(t))
		users.On("FindByIDs", ctx, tenantID, mock.Anything).Return([]*identity.User{sender, recipient}, nil)

		m, err := communication.NewMessage(tenantID, sender.ID, recipient.ID, "Hi", "Body", nil, "")
		require.NoError(t, err)
		require.NoError(t, h.Handle(ctx, communication.NewMessageSentEvent(m)))
		assert.Empty(t, mailer.sent())
	})
}
