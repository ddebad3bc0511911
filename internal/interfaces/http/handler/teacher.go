package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apppeople "github.com/schoolhub/backend/internal/application/people"
	"github.com/schoolhub/backend/internal/domain/identity"
)

// TeacherService is the teacher use case consumed by TeacherHandler
type TeacherService interface {
	Create(ctx context.Context, actor identity.Actor, req apppeople.CreateTeacherRequest) (*apppeople.TeacherResponse, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*apppeople.TeacherResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter apppeople.TeacherListFilter) ([]apppeople.TeacherResponse, int64, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, req apppeople.UpdateTeacherRequest) (*apppeople.TeacherResponse, error)
	ChangeStatus(ctx context.Context, tenantID, id uuid.UUID, req apppeople.ChangeTeacherStatusRequest) (*apppeople.TeacherResponse, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// TeacherHandler handles teacher HTTP requests
type TeacherHandler struct {
	BaseHandler
	teacherService TeacherService
}

// NewTeacherHandler creates a new TeacherHandler
func NewTeacherHandler(teacherService TeacherService) *TeacherHandler {
	return &TeacherHandler{teacherService: teacherService}
}

// Create godoc
//
//	@ID				createTeacher
//	@Summary		Hire teacher
//	@Tags			teachers
//	@Accept			json
//	@Produce		json
//	@Param			request	body		apppeople.CreateTeacherRequest	true	"Teacher"
//	@Success		201		{object}	APIResponse[apppeople.TeacherResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/teachers [post]
func (h *TeacherHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req apppeople.CreateTeacherRequest
	if !h.bindJSON(c, &req) {
		return
	}

	teacher, err := h.teacherService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, teacher)
}

// GetByID godoc
//
//	@ID				getTeacher
//	@Summary		Get teacher
//	@Tags			teachers
//	@Produce		json
//	@Param			id	path		string	true	"Teacher ID"	format(uuid)
//	@Success		200	{object}	APIResponse[apppeople.TeacherResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/teachers/{id} [get]
func (h *TeacherHandler) GetByID(c *gin.Context) {
	byID(&h.BaseHandler, c, h.teacherService.Get)
}

// List godoc
//
//	@ID				listTeachers
//	@Summary		List teachers
//	@Tags			teachers
//	@Produce		json
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)
//	@Param			search		query		string	false	"Name or employee number"
//	@Param			status		query		string	false	"Status"	Enums(active, on_leave, inactive)
//	@Success		200			{object}	APIResponse[[]apppeople.TeacherResponse]
//	@Security		BearerAuth
//	@Router			/teachers [get]
func (h *TeacherHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var filter apppeople.TeacherListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	teachers, total, err := h.teacherService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.BaseHandler.List(c, teachers, total, filter.PageQuery)
}

// Update godoc
//
//	@ID				updateTeacher
//	@Summary		Update teacher
//	@Tags			teachers
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Teacher ID"	format(uuid)
//	@Param			request	body		apppeople.UpdateTeacherRequest	true	"Teacher profile"
//	@Success		200		{object}	APIResponse[apppeople.TeacherResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/teachers/{id} [put]
func (h *TeacherHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req apppeople.UpdateTeacherRequest
	if !h.bindJSON(c, &req) {
		return
	}

	teacher, err := h.teacherService.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, teacher)
}

// ChangeStatus godoc
//
//	@ID				changeTeacherStatus
//	@Summary		Change teacher status
//	@Tags			teachers
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string									true	"Teacher ID"	format(uuid)
//	@Param			request	body		apppeople.ChangeTeacherStatusRequest	true	"Status"
//	@Success		200		{object}	APIResponse[apppeople.TeacherResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/teachers/{id}/status [put]
func (h *TeacherHandler) ChangeStatus(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req apppeople.ChangeTeacherStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	teacher, err := h.teacherService.ChangeStatus(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, teacher)
}

// Delete godoc
//
//	@ID				deleteTeacher
//	@Summary		Delete teacher
//	@Description	Refused while the teacher is the homeroom teacher of a class
//	@Tags			teachers
//	@Param			id	path	string	true	"Teacher ID"	format(uuid)
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Failure		409	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/teachers/{id} [delete]
func (h *TeacherHandler) Delete(c *gin.Context) {
	deleteByID(&h.BaseHandler, c, h.teacherService.Delete)
}
