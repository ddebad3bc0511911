package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appschool "github.com/schoolhub/backend/internal/application/school"
	"github.com/schoolhub/backend/internal/domain/identity"
)

// SchoolService is the platform-level school management use case
type SchoolService interface {
	Create(ctx context.Context, actor identity.Actor, req appschool.CreateSchoolRequest) (*appschool.CreateSchoolResult, error)
	Get(ctx context.Context, id uuid.UUID) (*appschool.SchoolResponse, error)
	List(ctx context.Context, filter appschool.SchoolListFilter) ([]appschool.SchoolResponse, int64, error)
	Update(ctx context.Context, id uuid.UUID, req appschool.UpdateSchoolRequest) (*appschool.SchoolResponse, error)
	Suspend(ctx context.Context, id uuid.UUID) (*appschool.SchoolResponse, error)
	Activate(ctx context.Context, id uuid.UUID) (*appschool.SchoolResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SettingsService reads and writes the settings of the caller's school
type SettingsService interface {
	GetSettings(ctx context.Context, tenantID uuid.UUID) (*appschool.SettingsDTO, error)
	UpdateSettings(ctx context.Context, tenantID uuid.UUID, req appschool.SettingsDTO) (*appschool.SettingsDTO, error)
}

// SchoolHandler handles school (tenant) HTTP requests. Everything except
// settings is reserved to super admins by the router.
type SchoolHandler struct {
	BaseHandler
	schoolService   SchoolService
	settingsService SettingsService
}

// NewSchoolHandler creates a new SchoolHandler
func NewSchoolHandler(schoolService SchoolService, settingsService SettingsService) *SchoolHandler {
	return &SchoolHandler{schoolService: schoolService, settingsService: settingsService}
}

// Create godoc
//
//	@ID				createSchool
//	@Summary		Create school
//	@Description	Create a school together with its first school administrator
//	@Tags			schools
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appschool.CreateSchoolRequest	true	"School and admin account"
//	@Success		201		{object}	APIResponse[appschool.CreateSchoolResult]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/schools [post]
func (h *SchoolHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req appschool.CreateSchoolRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.schoolService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// GetByID godoc
//
//	@ID				getSchool
//	@Summary		Get school
//	@Tags			schools
//	@Produce		json
//	@Param			id	path		string	true	"School ID"	format(uuid)
//	@Success		200	{object}	APIResponse[appschool.SchoolResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/schools/{id} [get]
func (h *SchoolHandler) GetByID(c *gin.Context) {
	h.withSchool(c, h.schoolService.Get)
}

// List godoc
//
//	@ID				listSchools
//	@Summary		List schools
//	@Tags			schools
//	@Produce		json
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)
//	@Param			search		query		string	false	"Code or name"
//	@Param			status		query		string	false	"Status"	Enums(active, suspended, inactive)
//	@Success		200			{object}	APIResponse[[]appschool.SchoolResponse]
//	@Security		BearerAuth
//	@Router			/schools [get]
func (h *SchoolHandler) List(c *gin.Context) {
	var filter appschool.SchoolListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	schools, total, err := h.schoolService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.BaseHandler.List(c, schools, total, filter.PageQuery)
}

// Update godoc
//
//	@ID				updateSchool
//	@Summary		Update school
//	@Tags			schools
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"School ID"	format(uuid)
//	@Param			request	body		appschool.UpdateSchoolRequest	true	"School profile"
//	@Success		200		{object}	APIResponse[appschool.SchoolResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/schools/{id} [put]
func (h *SchoolHandler) Update(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req appschool.UpdateSchoolRequest
	if !h.bindJSON(c, &req) {
		return
	}

	school, err := h.schoolService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, school)
}

// Suspend godoc
//
//	@ID				suspendSchool
//	@Summary		Suspend school
//	@Description	Users of a suspended school can no longer sign in or call the API
//	@Tags			schools
//	@Produce		json
//	@Param			id	path		string	true	"School ID"	format(uuid)
//	@Success		200	{object}	APIResponse[appschool.SchoolResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Failure		422	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/schools/{id}/suspend [post]
func (h *SchoolHandler) Suspend(c *gin.Context) {
	h.withSchool(c, h.schoolService.Suspend)
}

// Activate godoc
//
//	@ID				activateSchool
//	@Summary		Activate school
//	@Tags			schools
//	@Produce		json
//	@Param			id	path		string	true	"School ID"	format(uuid)
//	@Success		200	{object}	APIResponse[appschool.SchoolResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Failure		422	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/schools/{id}/activate [post]
func (h *SchoolHandler) Activate(c *gin.Context) {
	h.withSchool(c, h.schoolService.Activate)
}

func (h *SchoolHandler) withSchool(c *gin.Context, fn func(context.Context, uuid.UUID) (*appschool.SchoolResponse, error)) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	school, err := fn(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, school)
}

// Delete godoc
//
//	@ID				deleteSchool
//	@Summary		Delete school
//	@Description	Refused while the school still has users
//	@Tags			schools
//	@Param			id	path	string	true	"School ID"	format(uuid)
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Failure		409	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/schools/{id} [delete]
func (h *SchoolHandler) Delete(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.schoolService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// GetSettings godoc
//
//	@ID				getSettings
//	@Summary		Get school settings
//	@Description	Academic year, term, currency, timezone and grading scale of the caller's school
//	@Tags			settings
//	@Produce		json
//	@Success		200	{object}	APIResponse[appschool.SettingsDTO]
//	@Failure		401	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/settings [get]
func (h *SchoolHandler) GetSettings(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	settings, err := h.settingsService.GetSettings(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, settings)
}

// UpdateSettings godoc
//
//	@ID				updateSettings
//	@Summary		Update school settings
//	@Description	Empty fields keep their current value. A grading scale must be strictly descending and end at 0.
//	@Tags			settings
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appschool.SettingsDTO	true	"Settings"
//	@Success		200		{object}	APIResponse[appschool.SettingsDTO]
//	@Failure		400		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/settings [put]
func (h *SchoolHandler) UpdateSettings(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req appschool.SettingsDTO
	if !h.bindJSON(c, &req) {
		return
	}

	settings, err := h.settingsService.UpdateSettings(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, settings)
}
