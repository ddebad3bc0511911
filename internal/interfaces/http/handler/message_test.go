package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	appcomm "github.com/schoolhub/backend/internal/application/communication"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/schoolhub/backend/internal/infrastructure/storage"
	"github.com/schoolhub/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMessageService struct {
	mock.Mock
}

func (m *MockMessageService) message(args mock.Arguments) (*appcomm.MessageResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcomm.MessageResponse), args.Error(1)
}

func (m *MockMessageService) page(args mock.Arguments) ([]appcomm.MessageResponse, int64, error) {
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]appcomm.MessageResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockMessageService) Send(ctx context.Context, actor identity.Actor, req appcomm.SendMessageRequest) (*appcomm.MessageResponse, error) {
	return m.message(m.Called(ctx, actor, req))
}

func (m *MockMessageService) Inbox(ctx context.Context, actor identity.Actor, filter appcomm.MailboxFilter) ([]appcomm.MessageResponse, int64, error) {
	return m.page(m.Called(ctx, actor, filter))
}

func (m *MockMessageService) Sent(ctx context.Context, actor identity.Actor, filter appcomm.MailboxFilter) ([]appcomm.MessageResponse, int64, error) {
	return m.page(m.Called(ctx, actor, filter))
}

func (m *MockMessageService) Get(ctx context.Context, actor identity.Actor, id uuid.UUID) (*appcomm.MessageResponse, error) {
	return m.message(m.Called(ctx, actor, id))
}

func (m *MockMessageService) MarkRead(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *MockMessageService) Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *MockMessageService) UnreadCount(ctx context.Context, actor identity.Actor) (*appcomm.UnreadCountResponse, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcomm.UnreadCountResponse), args.Error(1)
}

func (m *MockMessageService) AttachmentUploadURL(ctx context.Context, actor identity.Actor, req appcomm.AttachmentUploadRequest) (*appcomm.AttachmentUploadResponse, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcomm.AttachmentUploadResponse), args.Error(1)
}

func setupMessageHandler(role identity.Role) (*MockMessageService, identity.Actor, http.Handler) {
	svc := new(MockMessageService)
	h := NewMessageHandler(svc)
	actor := newActor(role)
	r := newTestRouter(&actor)
	r.POST("/messages", h.Send)
	r.GET("/messages/inbox", h.Inbox)
	r.GET("/messages/sent", h.Sent)
	r.GET("/messages/unread-count", h.UnreadCount)
	r.POST("/messages/attachments", h.AttachmentURL)
	r.GET("/messages/:id", h.GetByID)
	r.POST("/messages/:id/read", h.MarkRead)
	r.DELETE("/messages/:id", h.Delete)
	return svc, actor, r
}

func TestMessageHandler_Send(t *testing.T) {
	svc, actor, r := setupMessageHandler(identity.RoleParent)
	recipient := uuid.New()
	svc.On("Send", mock.Anything, actor, mock.MatchedBy(func(req appcomm.SendMessageRequest) bool {
		return req.RecipientID == recipient && req.Subject == "Absence"
	})).Return(&appcomm.MessageResponse{ID: uuid.New(), SenderID: actor.UserID, RecipientID: recipient, Subject: "Absence"}, nil)

	w := performRequest(r, http.MethodPost, "/messages", map[string]any{
		"recipient_id": recipient,
		"subject":      "Absence",
		"body":         "Ada will be absent on Friday.",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestMessageHandler_Send_RequiresBody(t *testing.T) {
	svc, _, r := setupMessageHandler(identity.RoleParent)

	w := performRequest(r, http.MethodPost, "/messages", map[string]any{
		"recipient_id": uuid.New(),
		"subject":      "Absence",
		"body":         "  ",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestMessageHandler_Inbox(t *testing.T) {
	svc, actor, r := setupMessageHandler(identity.RoleTeacher)
	svc.On("Inbox", mock.Anything, actor, mock.MatchedBy(func(f appcomm.MailboxFilter) bool {
		return f.UnreadOnly
	})).Return([]appcomm.MessageResponse{{Subject: "Hello"}}, int64(1), nil)

	w := performRequest(r, http.MethodGet, "/messages/inbox?unread_only=true", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(1), resp.Meta.Total)
	svc.AssertExpectations(t)
}

func TestMessageHandler_GetByID_HiddenFromOthers(t *testing.T) {
	svc, actor, r := setupMessageHandler(identity.RoleStudent)
	id := uuid.New()
	svc.On("Get", mock.Anything, actor, id).Return(nil, shared.NewDomainError("MESSAGE_NOT_FOUND", "Message not found"))

	w := performRequest(r, http.MethodGet, "/messages/"+id.String(), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMessageHandler_MarkReadAndDelete(t *testing.T) {
	svc, actor, r := setupMessageHandler(identity.RoleTeacher)
	id := uuid.New()
	svc.On("MarkRead", mock.Anything, actor, id).Return(nil)
	svc.On("Delete", mock.Anything, actor, id).Return(nil)

	assert.Equal(t, http.StatusNoContent, performRequest(r, http.MethodPost, "/messages/"+id.String()+"/read", nil).Code)
	assert.Equal(t, http.StatusNoContent, performRequest(r, http.MethodDelete, "/messages/"+id.String(), nil).Code)
	svc.AssertExpectations(t)
}

func TestMessageHandler_UnreadCount(t *testing.T) {
	svc, actor, r := setupMessageHandler(identity.RoleParent)
	svc.On("UnreadCount", mock.Anything, actor).Return(&appcomm.UnreadCountResponse{Unread: 3}, nil)

	w := performRequest(r, http.MethodGet, "/messages/unread-count", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), decodeResponse(t, w).Data.(map[string]any)["unread"])
}

func TestMessageHandler_AttachmentURL(t *testing.T) {
	t.Run("presigned", func(t *testing.T) {
		svc, actor, r := setupMessageHandler(identity.RoleTeacher)
		req := appcomm.AttachmentUploadRequest{FileName: "homework.pdf", ContentType: "application/pdf"}
		svc.On("AttachmentUploadURL", mock.Anything, actor, req).Return(&appcomm.AttachmentUploadResponse{
			Key:       "schools/x/attachments/homework.pdf",
			UploadURL: "https://bucket.example/upload",
			ExpiresAt: time.Now().Add(15 * time.Minute),
		}, nil)

		w := performRequest(r, http.MethodPost, "/messages/attachments", req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://bucket.example/upload", decodeResponse(t, w).Data.(map[string]any)["upload_url"])
	})

	t.Run("storage disabled", func(t *testing.T) {
		svc, _, r := setupMessageHandler(identity.RoleTeacher)
		svc.On("AttachmentUploadURL", mock.Anything, mock.Anything, mock.Anything).Return(nil, storage.ErrStorageDisabled)

		w := performRequest(r, http.MethodPost, "/messages/attachments", map[string]string{
			"file_name":    "homework.pdf",
			"content_type": "application/pdf",
		})

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, dto.ErrCodeStorageDisabled, decodeResponse(t, w).Error.Code)
	})
}
