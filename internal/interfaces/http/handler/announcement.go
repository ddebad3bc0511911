package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appcomm "github.com/schoolhub/backend/internal/application/communication"
	"github.com/schoolhub/backend/internal/domain/identity"
)

const defaultVisibleAnnouncements = 20

// AnnouncementService is the announcement use case consumed by AnnouncementHandler
type AnnouncementService interface {
	Create(ctx context.Context, actor identity.Actor, req appcomm.AnnouncementRequest) (*appcomm.AnnouncementResponse, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*appcomm.AnnouncementResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter appcomm.AnnouncementListFilter) ([]appcomm.AnnouncementResponse, int64, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, req appcomm.AnnouncementRequest) (*appcomm.AnnouncementResponse, error)
	Publish(ctx context.Context, tenantID, id uuid.UUID) (*appcomm.AnnouncementResponse, error)
	Archive(ctx context.Context, tenantID, id uuid.UUID) (*appcomm.AnnouncementResponse, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	ListVisible(ctx context.Context, actor identity.Actor, limit int) ([]appcomm.AnnouncementResponse, error)
}

// AnnouncementHandler handles announcement HTTP requests
type AnnouncementHandler struct {
	BaseHandler
	announcementService AnnouncementService
}

// NewAnnouncementHandler creates a new AnnouncementHandler
func NewAnnouncementHandler(announcementService AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcementService: announcementService}
}

// Create godoc
//
//	@ID				createAnnouncement
//	@Summary		Create announcement
//	@Description	Saved as a draft unless publish is true. A class_id narrows the audience to that class.
//	@Tags			announcements
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appcomm.AnnouncementRequest	true	"Announcement"
//	@Success		201		{object}	APIResponse[appcomm.AnnouncementResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/announcements [post]
func (h *AnnouncementHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req appcomm.AnnouncementRequest
	if !h.bindJSON(c, &req) {
		return
	}

	announcement, err := h.announcementService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, announcement)
}

// GetByID godoc
//
//	@ID				getAnnouncement
//	@Summary		Get announcement
//	@Tags			announcements
//	@Produce		json
//	@Param			id	path		string	true	"Announcement ID"	format(uuid)
//	@Success		200	{object}	APIResponse[appcomm.AnnouncementResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/announcements/{id} [get]
func (h *AnnouncementHandler) GetByID(c *gin.Context) {
	byID(&h.BaseHandler, c, h.announcementService.Get)
}

// List godoc
//
//	@ID				listAnnouncements
//	@Summary		List announcements
//	@Tags			announcements
//	@Produce		json
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)
//	@Param			search		query		string	false	"Title"
//	@Param			status		query		string	false	"Status"	Enums(draft, published, archived)
//	@Param			audience	query		string	false	"Audience"	Enums(all, staff, teachers, students, parents)
//	@Param			priority	query		string	false	"Priority"	Enums(normal, high, urgent)
//	@Param			class_id	query		string	false	"Class ID"	format(uuid)
//	@Success		200			{object}	APIResponse[[]appcomm.AnnouncementResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/announcements [get]
func (h *AnnouncementHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var filter appcomm.AnnouncementListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	announcements, total, err := h.announcementService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.BaseHandler.List(c, announcements, total, filter.PageQuery)
}

// Update godoc
//
//	@ID				updateAnnouncement
//	@Summary		Update announcement
//	@Tags			announcements
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Announcement ID"	format(uuid)
//	@Param			request	body		appcomm.AnnouncementRequest	true	"Announcement"
//	@Success		200		{object}	APIResponse[appcomm.AnnouncementResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/announcements/{id} [put]
func (h *AnnouncementHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req appcomm.AnnouncementRequest
	if !h.bindJSON(c, &req) {
		return
	}

	announcement, err := h.announcementService.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, announcement)
}

// Publish godoc
//
//	@ID				publishAnnouncement
//	@Summary		Publish announcement
//	@Tags			announcements
//	@Produce		json
//	@Param			id	path		string	true	"Announcement ID"	format(uuid)
//	@Success		200	{object}	APIResponse[appcomm.AnnouncementResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Failure		422	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/announcements/{id}/publish [post]
func (h *AnnouncementHandler) Publish(c *gin.Context) {
	byID(&h.BaseHandler, c, h.announcementService.Publish)
}

// Archive godoc
//
//	@ID				archiveAnnouncement
//	@Summary		Archive announcement
//	@Tags			announcements
//	@Produce		json
//	@Param			id	path		string	true	"Announcement ID"	format(uuid)
//	@Success		200	{object}	APIResponse[appcomm.AnnouncementResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Failure		422	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/announcements/{id}/archive [post]
func (h *AnnouncementHandler) Archive(c *gin.Context) {
	byID(&h.BaseHandler, c, h.announcementService.Archive)
}

// Delete godoc
//
//	@ID				deleteAnnouncement
//	@Summary		Delete announcement
//	@Tags			announcements
//	@Param			id	path	string	true	"Announcement ID"	format(uuid)
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/announcements/{id} [delete]
func (h *AnnouncementHandler) Delete(c *gin.Context) {
	deleteByID(&h.BaseHandler, c, h.announcementService.Delete)
}

// Visible godoc
//
//	@ID				listVisibleAnnouncements
//	@Summary		Announcements for the caller
//	@Description	Published, unexpired announcements whose audience includes the caller's role, newest first
//	@Tags			announcements
//	@Produce		json
//	@Param			limit	query		int	false	"Maximum number"	default(20)
//	@Success		200		{object}	APIResponse[[]appcomm.AnnouncementResponse]
//	@Security		BearerAuth
//	@Router			/announcements/visible [get]
func (h *AnnouncementHandler) Visible(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	announcements, err := h.announcementService.ListVisible(c.Request.Context(), actor, queryInt(c, "limit", defaultVisibleAnnouncements))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, announcements)
}
