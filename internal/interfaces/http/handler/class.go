package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appacademic "github.com/schoolhub/backend/internal/application/academic"
	"github.com/schoolhub/backend/internal/domain/identity"
)

// ClassService is the class use case consumed by ClassHandler
type ClassService interface {
	Create(ctx context.Context, actor identity.Actor, req appacademic.ClassRequest) (*appacademic.ClassResponse, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*appacademic.ClassResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter appacademic.ClassListFilter) ([]appacademic.ClassResponse, int64, error)
	ListForTeacher(ctx context.Context, tenantID, teacherID uuid.UUID) ([]appacademic.ClassResponse, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, req appacademic.ClassRequest) (*appacademic.ClassResponse, error)
	AssignTeacher(ctx context.Context, tenantID, id uuid.UUID, req appacademic.AssignTeacherRequest) (*appacademic.ClassResponse, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// ClassSubjectService manages the subjects taught in a class
type ClassSubjectService interface {
	AssignToClass(ctx context.Context, tenantID, classID uuid.UUID, req appacademic.AssignSubjectRequest) (*appacademic.ClassSubjectResponse, error)
	RemoveFromClass(ctx context.Context, tenantID, classID, subjectID uuid.UUID) error
	ListClassSubjects(ctx context.Context, tenantID, classID uuid.UUID) ([]appacademic.ClassSubjectResponse, error)
}

// ClassHandler handles class HTTP requests, including the subjects of a class
type ClassHandler struct {
	BaseHandler
	classService   ClassService
	subjectService ClassSubjectService
}

// NewClassHandler creates a new ClassHandler
func NewClassHandler(classService ClassService, subjectService ClassSubjectService) *ClassHandler {
	return &ClassHandler{classService: classService, subjectService: subjectService}
}

// Create godoc
//
//	@ID				createClass
//	@Summary		Create class
//	@Tags			classes
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appacademic.ClassRequest	true	"Class"
//	@Success		201		{object}	APIResponse[appacademic.ClassResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/classes [post]
func (h *ClassHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req appacademic.ClassRequest
	if !h.bindJSON(c, &req) {
		return
	}

	class, err := h.classService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, class)
}

// GetByID godoc
//
//	@ID				getClass
//	@Summary		Get class
//	@Description	Includes the number of enrolled students
//	@Tags			classes
//	@Produce		json
//	@Param			id	path		string	true	"Class ID"	format(uuid)
//	@Success		200	{object}	APIResponse[appacademic.ClassResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/classes/{id} [get]
func (h *ClassHandler) GetByID(c *gin.Context) {
	byID(&h.BaseHandler, c, h.classService.Get)
}

// List godoc
//
//	@ID				listClasses
//	@Summary		List classes
//	@Tags			classes
//	@Produce		json
//	@Param			page			query		int		false	"Page number"	default(1)
//	@Param			page_size		query		int		false	"Page size"		default(20)
//	@Param			search			query		string	false	"Name or section"
//	@Param			grade_level		query		int		false	"Grade level"	minimum(1)	maximum(13)
//	@Param			academic_year	query		string	false	"Academic year"
//	@Param			teacher_id		query		string	false	"Homeroom teacher ID"	format(uuid)
//	@Param			is_active		query		bool	false	"Active flag"
//	@Success		200				{object}	APIResponse[[]appacademic.ClassResponse]
//	@Security		BearerAuth
//	@Router			/classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var filter appacademic.ClassListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	classes, total, err := h.classService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.BaseHandler.List(c, classes, total, filter.PageQuery)
}

// Mine godoc
//
//	@ID				listMyClasses
//	@Summary		List own classes
//	@Description	The classes the calling teacher is homeroom teacher of
//	@Tags			classes
//	@Produce		json
//	@Success		200	{object}	APIResponse[[]appacademic.ClassResponse]
//	@Failure		403	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/classes/mine [get]
func (h *ClassHandler) Mine(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	teacherID, err := actor.RequireProfile()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	classes, err := h.classService.ListForTeacher(c.Request.Context(), actor.TenantID, teacherID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, classes)
}

// Update godoc
//
//	@ID				updateClass
//	@Summary		Update class
//	@Description	Capacity may not drop below the current enrollment
//	@Tags			classes
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Class ID"	format(uuid)
//	@Param			request	body		appacademic.ClassRequest	true	"Class"
//	@Success		200		{object}	APIResponse[appacademic.ClassResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/classes/{id} [put]
func (h *ClassHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req appacademic.ClassRequest
	if !h.bindJSON(c, &req) {
		return
	}

	class, err := h.classService.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, class)
}

// AssignTeacher godoc
//
//	@ID				assignClassTeacher
//	@Summary		Assign homeroom teacher
//	@Description	A null teacher_id clears the assignment
//	@Tags			classes
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Class ID"	format(uuid)
//	@Param			request	body		appacademic.AssignTeacherRequest	true	"Teacher"
//	@Success		200		{object}	APIResponse[appacademic.ClassResponse]
//	@Failure		404		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/classes/{id}/teacher [put]
func (h *ClassHandler) AssignTeacher(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req appacademic.AssignTeacherRequest
	if !h.bindJSON(c, &req) {
		return
	}

	class, err := h.classService.AssignTeacher(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, class)
}

// Delete godoc
//
//	@ID				deleteClass
//	@Summary		Delete class
//	@Description	Refused while students are enrolled
//	@Tags			classes
//	@Param			id	path	string	true	"Class ID"	format(uuid)
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Failure		409	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/classes/{id} [delete]
func (h *ClassHandler) Delete(c *gin.Context) {
	deleteByID(&h.BaseHandler, c, h.classService.Delete)
}

// ListSubjects godoc
//
//	@ID				listClassSubjects
//	@Summary		List class subjects
//	@Tags			classes
//	@Produce		json
//	@Param			id	path		string	true	"Class ID"	format(uuid)
//	@Success		200	{object}	APIResponse[[]appacademic.ClassSubjectResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/classes/{id}/subjects [get]
func (h *ClassHandler) ListSubjects(c *gin.Context) {
	byID(&h.BaseHandler, c, h.subjectService.ListClassSubjects)
}

// AssignSubject godoc
//
//	@ID				assignClassSubject
//	@Summary		Add subject to class
//	@Description	A subject appears once per class
//	@Tags			classes
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Class ID"	format(uuid)
//	@Param			request	body		appacademic.AssignSubjectRequest	true	"Subject and teacher"
//	@Success		201		{object}	APIResponse[appacademic.ClassSubjectResponse]
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/classes/{id}/subjects [post]
func (h *ClassHandler) AssignSubject(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	classID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req appacademic.AssignSubjectRequest
	if !h.bindJSON(c, &req) {
		return
	}

	cs, err := h.subjectService.AssignToClass(c.Request.Context(), tenantID, classID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, cs)
}

// RemoveSubject godoc
//
//	@ID				removeClassSubject
//	@Summary		Remove subject from class
//	@Tags			classes
//	@Param			id			path	string	true	"Class ID"		format(uuid)
//	@Param			subject_id	path	string	true	"Subject ID"	format(uuid)
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/classes/{id}/subjects/{subject_id} [delete]
func (h *ClassHandler) RemoveSubject(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	classID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	subjectID, ok := h.pathUUID(c, "subject_id")
	if !ok {
		return
	}

	if err := h.subjectService.RemoveFromClass(c.Request.Context(), tenantID, classID, subjectID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
