package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appcomm "github.com/schoolhub/backend/internal/application/communication"
	"github.com/schoolhub/backend/internal/domain/identity"
)

// MessageService is the private messaging use case consumed by MessageHandler
type MessageService interface {
	Send(ctx context.Context, actor identity.Actor, req appcomm.SendMessageRequest) (*appcomm.MessageResponse, error)
	Inbox(ctx context.Context, actor identity.Actor, filter appcomm.MailboxFilter) ([]appcomm.MessageResponse, int64, error)
	Sent(ctx context.Context, actor identity.Actor, filter appcomm.MailboxFilter) ([]appcomm.MessageResponse, int64, error)
	Get(ctx context.Context, actor identity.Actor, id uuid.UUID) (*appcomm.MessageResponse, error)
	MarkRead(ctx context.Context, actor identity.Actor, id uuid.UUID) error
	Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) error
	UnreadCount(ctx context.Context, actor identity.Actor) (*appcomm.UnreadCountResponse, error)
	AttachmentUploadURL(ctx context.Context, actor identity.Actor, req appcomm.AttachmentUploadRequest) (*appcomm.AttachmentUploadResponse, error)
}

// MessageHandler handles private message HTTP requests.
// Every operation is scoped to the caller's own mailbox.
type MessageHandler struct {
	BaseHandler
	messageService MessageService
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(messageService MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// Send godoc
//
//	@ID				sendMessage
//	@Summary		Send message
//	@Description	The recipient must be an active user of the same school
//	@Tags			messages
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appcomm.SendMessageRequest	true	"Message"
//	@Success		201		{object}	APIResponse[appcomm.MessageResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/messages [post]
func (h *MessageHandler) Send(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req appcomm.SendMessageRequest
	if !h.bindJSON(c, &req) {
		return
	}

	msg, err := h.messageService.Send(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, msg)
}

// Inbox godoc
//
//	@ID				messageInbox
//	@Summary		List received messages
//	@Tags			messages
//	@Produce		json
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)
//	@Param			unread_only	query		bool	false	"Only unread messages"
//	@Success		200			{object}	APIResponse[[]appcomm.MessageResponse]
//	@Security		BearerAuth
//	@Router			/messages/inbox [get]
func (h *MessageHandler) Inbox(c *gin.Context) {
	h.mailbox(c, h.messageService.Inbox)
}

// Sent godoc
//
//	@ID				messageSent
//	@Summary		List sent messages
//	@Tags			messages
//	@Produce		json
//	@Param			page		query		int	false	"Page number"	default(1)
//	@Param			page_size	query		int	false	"Page size"		default(20)
//	@Success		200			{object}	APIResponse[[]appcomm.MessageResponse]
//	@Security		BearerAuth
//	@Router			/messages/sent [get]
func (h *MessageHandler) Sent(c *gin.Context) {
	h.mailbox(c, h.messageService.Sent)
}

func (h *MessageHandler) mailbox(c *gin.Context, fn func(context.Context, identity.Actor, appcomm.MailboxFilter) ([]appcomm.MessageResponse, int64, error)) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var filter appcomm.MailboxFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	messages, total, err := fn(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.List(c, messages, total, filter.PageQuery)
}

// GetByID godoc
//
//	@ID				getMessage
//	@Summary		Get message
//	@Description	Only the sender or the recipient can read a message
//	@Tags			messages
//	@Produce		json
//	@Param			id	path		string	true	"Message ID"	format(uuid)
//	@Success		200	{object}	APIResponse[appcomm.MessageResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/messages/{id} [get]
func (h *MessageHandler) GetByID(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	msg, err := h.messageService.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, msg)
}

// MarkRead godoc
//
//	@ID				markMessageRead
//	@Summary		Mark message as read
//	@Tags			messages
//	@Param			id	path	string	true	"Message ID"	format(uuid)
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/messages/{id}/read [post]
func (h *MessageHandler) MarkRead(c *gin.Context) {
	h.own(c, h.messageService.MarkRead)
}

// Delete godoc
//
//	@ID				deleteMessage
//	@Summary		Delete message
//	@Description	Removes the message from the caller's mailbox only
//	@Tags			messages
//	@Param			id	path	string	true	"Message ID"	format(uuid)
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/messages/{id} [delete]
func (h *MessageHandler) Delete(c *gin.Context) {
	h.own(c, h.messageService.Delete)
}

func (h *MessageHandler) own(c *gin.Context, fn func(context.Context, identity.Actor, uuid.UUID) error) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := fn(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// UnreadCount godoc
//
//	@ID				unreadMessageCount
//	@Summary		Count unread messages
//	@Tags			messages
//	@Produce		json
//	@Success		200	{object}	APIResponse[appcomm.UnreadCountResponse]
//	@Security		BearerAuth
//	@Router			/messages/unread-count [get]
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	count, err := h.messageService.UnreadCount(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, count)
}

// AttachmentURL godoc
//
//	@ID				messageAttachmentURL
//	@Summary		Presign attachment upload
//	@Description	Returns a short-lived URL to PUT the file to, and the key to send with the message
//	@Tags			messages
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appcomm.AttachmentUploadRequest	true	"File"
//	@Success		200		{object}	APIResponse[appcomm.AttachmentUploadResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		503		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/messages/attachments [post]
func (h *MessageHandler) AttachmentURL(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req appcomm.AttachmentUploadRequest
	if !h.bindJSON(c, &req) {
		return
	}

	upload, err := h.messageService.AttachmentUploadURL(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, upload)
}
