package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appacademic "github.com/schoolhub/backend/internal/application/academic"
	"github.com/schoolhub/backend/internal/domain/identity"
)

// SubjectService is the subject catalog use case consumed by SubjectHandler
type SubjectService interface {
	Create(ctx context.Context, actor identity.Actor, req appacademic.CreateSubjectRequest) (*appacademic.SubjectResponse, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*appacademic.SubjectResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter appacademic.SubjectListFilter) ([]appacademic.SubjectResponse, int64, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, req appacademic.UpdateSubjectRequest) (*appacademic.SubjectResponse, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// SubjectHandler handles subject HTTP requests
type SubjectHandler struct {
	BaseHandler
	subjectService SubjectService
}

// NewSubjectHandler creates a new SubjectHandler
func NewSubjectHandler(subjectService SubjectService) *SubjectHandler {
	return &SubjectHandler{subjectService: subjectService}
}

// Create godoc
//
//	@ID				createSubject
//	@Summary		Create subject
//	@Tags			subjects
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appacademic.CreateSubjectRequest	true	"Subject"
//	@Success		201		{object}	APIResponse[appacademic.SubjectResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/subjects [post]
func (h *SubjectHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req appacademic.CreateSubjectRequest
	if !h.bindJSON(c, &req) {
		return
	}

	subject, err := h.subjectService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, subject)
}

// GetByID godoc
//
//	@ID				getSubject
//	@Summary		Get subject
//	@Tags			subjects
//	@Produce		json
//	@Param			id	path		string	true	"Subject ID"	format(uuid)
//	@Success		200	{object}	APIResponse[appacademic.SubjectResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/subjects/{id} [get]
func (h *SubjectHandler) GetByID(c *gin.Context) {
	byID(&h.BaseHandler, c, h.subjectService.Get)
}

// List godoc
//
//	@ID				listSubjects
//	@Summary		List subjects
//	@Tags			subjects
//	@Produce		json
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)
//	@Param			search		query		string	false	"Code or name"
//	@Param			is_active	query		bool	false	"Active flag"
//	@Success		200			{object}	APIResponse[[]appacademic.SubjectResponse]
//	@Security		BearerAuth
//	@Router			/subjects [get]
func (h *SubjectHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var filter appacademic.SubjectListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	subjects, total, err := h.subjectService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.BaseHandler.List(c, subjects, total, filter.PageQuery)
}

// Update godoc
//
//	@ID				updateSubject
//	@Summary		Update subject
//	@Description	The subject code cannot be changed
//	@Tags			subjects
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string								true	"Subject ID"	format(uuid)
//	@Param			request	body		appacademic.UpdateSubjectRequest	true	"Subject"
//	@Success		200		{object}	APIResponse[appacademic.SubjectResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/subjects/{id} [put]
func (h *SubjectHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req appacademic.UpdateSubjectRequest
	if !h.bindJSON(c, &req) {
		return
	}

	subject, err := h.subjectService.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, subject)
}

// Delete godoc
//
//	@ID				deleteSubject
//	@Summary		Delete subject
//	@Description	Refused while the subject is still assigned to classes
//	@Tags			subjects
//	@Param			id	path	string	true	"Subject ID"	format(uuid)
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Failure		409	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/subjects/{id} [delete]
func (h *SubjectHandler) Delete(c *gin.Context) {
	deleteByID(&h.BaseHandler, c, h.subjectService.Delete)
}
