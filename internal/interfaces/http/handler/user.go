package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appidentity "github.com/schoolhub/backend/internal/application/identity"
	"github.com/schoolhub/backend/internal/domain/identity"
)

// UserService is the user management use case consumed by UserHandler
type UserService interface {
	Create(ctx context.Context, actor identity.Actor, req appidentity.CreateUserRequest) (*appidentity.UserResponse, error)
	Get(ctx context.Context, actor identity.Actor, id uuid.UUID) (*appidentity.UserResponse, error)
	List(ctx context.Context, actor identity.Actor, filter appidentity.UserListFilter) ([]appidentity.UserResponse, int64, error)
	Update(ctx context.Context, actor identity.Actor, id uuid.UUID, req appidentity.UpdateUserRequest) (*appidentity.UserResponse, error)
	Activate(ctx context.Context, actor identity.Actor, id uuid.UUID) (*appidentity.UserResponse, error)
	Deactivate(ctx context.Context, actor identity.Actor, id uuid.UUID) (*appidentity.UserResponse, error)
	Unlock(ctx context.Context, actor identity.Actor, id uuid.UUID) (*appidentity.UserResponse, error)
	ResetPassword(ctx context.Context, actor identity.Actor, id uuid.UUID, req appidentity.ResetPasswordRequest) error
	Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) error
}

// UserHandler handles user management HTTP requests
type UserHandler struct {
	BaseHandler
	userService UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Create godoc
//
//	@ID				createUser
//	@Summary		Create user
//	@Description	Create a user in the caller's school
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appidentity.CreateUserRequest	true	"User"
//	@Success		201		{object}	APIResponse[appidentity.UserResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/users [post]
func (h *UserHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req appidentity.CreateUserRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.userService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, user)
}

// GetByID godoc
//
//	@ID				getUser
//	@Summary		Get user
//	@Tags			users
//	@Produce		json
//	@Param			id	path		string	true	"User ID"	format(uuid)
//	@Success		200	{object}	APIResponse[appidentity.UserResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/users/{id} [get]
func (h *UserHandler) GetByID(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// List godoc
//
//	@ID				listUsers
//	@Summary		List users
//	@Tags			users
//	@Produce		json
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)
//	@Param			search		query		string	false	"Username, name or e-mail"
//	@Param			role		query		string	false	"Role"		Enums(super_admin, school_admin, teacher, student, parent)
//	@Param			status		query		string	false	"Status"	Enums(pending, active, locked, deactivated)
//	@Success		200			{object}	APIResponse[[]appidentity.UserResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/users [get]
func (h *UserHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var filter appidentity.UserListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	users, total, err := h.userService.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.BaseHandler.List(c, users, total, filter.PageQuery)
}

// Update godoc
//
//	@ID				updateUser
//	@Summary		Update user
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"User ID"	format(uuid)
//	@Param			request	body		appidentity.UpdateUserRequest	true	"Changed fields"
//	@Success		200		{object}	APIResponse[appidentity.UserResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req appidentity.UpdateUserRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.userService.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Activate godoc
//
//	@ID				activateUser
//	@Summary		Activate user
//	@Tags			users
//	@Produce		json
//	@Param			id	path		string	true	"User ID"	format(uuid)
//	@Success		200	{object}	APIResponse[appidentity.UserResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Failure		422	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/users/{id}/activate [post]
func (h *UserHandler) Activate(c *gin.Context) {
	h.transition(c, h.userService.Activate)
}

// Deactivate godoc
//
//	@ID				deactivateUser
//	@Summary		Deactivate user
//	@Description	Deactivate a user and revoke their tokens. Users cannot deactivate themselves.
//	@Tags			users
//	@Produce		json
//	@Param			id	path		string	true	"User ID"	format(uuid)
//	@Success		200	{object}	APIResponse[appidentity.UserResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Failure		422	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/users/{id}/deactivate [post]
func (h *UserHandler) Deactivate(c *gin.Context) {
	h.transition(c, h.userService.Deactivate)
}

// Unlock godoc
//
//	@ID				unlockUser
//	@Summary		Unlock user
//	@Description	Clear a login lockout
//	@Tags			users
//	@Produce		json
//	@Param			id	path		string	true	"User ID"	format(uuid)
//	@Success		200	{object}	APIResponse[appidentity.UserResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/users/{id}/unlock [post]
func (h *UserHandler) Unlock(c *gin.Context) {
	h.transition(c, h.userService.Unlock)
}

func (h *UserHandler) transition(c *gin.Context, fn func(context.Context, identity.Actor, uuid.UUID) (*appidentity.UserResponse, error)) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	user, err := fn(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// ResetPassword godoc
//
//	@ID				resetUserPassword
//	@Summary		Reset user password
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"User ID"	format(uuid)
//	@Param			request	body		appidentity.ResetPasswordRequest	true	"New password"
//	@Success		200		{object}	APIResponse[MessageData]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/users/{id}/reset-password [post]
func (h *UserHandler) ResetPassword(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req appidentity.ResetPasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.userService.ResetPassword(c.Request.Context(), actor, id, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageData{Message: "Password reset"})
}

// Delete godoc
//
//	@ID				deleteUser
//	@Summary		Delete user
//	@Tags			users
//	@Param			id	path	string	true	"User ID"	format(uuid)
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Failure		422	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
