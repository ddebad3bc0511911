package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appidentity "github.com/schoolhub/backend/internal/application/identity"
	"github.com/schoolhub/backend/internal/interfaces/http/middleware"
)

// AuthService is the authentication use case consumed by AuthHandler
type AuthService interface {
	Login(ctx context.Context, input appidentity.LoginInput) (*appidentity.LoginResult, error)
	RefreshToken(ctx context.Context, input appidentity.RefreshTokenInput) (*appidentity.TokenResult, error)
	Logout(ctx context.Context, input appidentity.LogoutInput) error
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*appidentity.UserInfo, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, input appidentity.ChangePasswordInput) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login godoc
//
//	@ID				login
//	@Summary		User login
//	@Description	Authenticate with school code, username and password. Leave school_code empty to sign in as a platform administrator.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appidentity.LoginInput	true	"Login credentials"
//	@Success		200		{object}	APIResponse[appidentity.LoginResult]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		423		{object}	ErrorResponse
//	@Router			/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var input appidentity.LoginInput
	if !h.bindJSON(c, &input) {
		return
	}
	input.IP = c.ClientIP()

	result, err := h.authService.Login(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// RefreshToken godoc
//
//	@ID				refreshToken
//	@Summary		Refresh access token
//	@Description	Exchange a refresh token for a new token pair
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appidentity.RefreshTokenInput	true	"Refresh token"
//	@Success		200		{object}	APIResponse[appidentity.TokenResult]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Router			/auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var input appidentity.RefreshTokenInput
	if !h.bindJSON(c, &input) {
		return
	}

	result, err := h.authService.RefreshToken(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Logout godoc
//
//	@ID				logout
//	@Summary		User logout
//	@Description	Revoke the access token presented with this request
//	@Tags			auth
//	@Produce		json
//	@Success		200	{object}	APIResponse[MessageData]
//	@Failure		401	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	userID, err := claims.GetUserUUID()
	if err != nil {
		h.Unauthorized(c, "Invalid user ID in token")
		return
	}

	err = h.authService.Logout(c.Request.Context(), appidentity.LogoutInput{
		UserID:   userID,
		TokenJTI: claims.ID,
		TokenTTL: claims.GetRemainingTTL(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageData{Message: "Logged out successfully"})
}

// GetCurrentUser godoc
//
//	@ID				getCurrentUser
//	@Summary		Get current user
//	@Description	Return the signed-in user with the permissions of their role
//	@Tags			auth
//	@Produce		json
//	@Success		200	{object}	APIResponse[appidentity.UserInfo]
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/auth/me [get]
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	user, err := h.authService.GetCurrentUser(c.Request.Context(), actor.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// ChangePassword godoc
//
//	@ID				changePassword
//	@Summary		Change password
//	@Description	Change the signed-in user's password. All of the user's tokens are revoked.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appidentity.ChangePasswordInput	true	"Old and new password"
//	@Success		200		{object}	APIResponse[MessageData]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var input appidentity.ChangePasswordInput
	if !h.bindJSON(c, &input) {
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), actor.UserID, input); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageData{Message: "Password changed successfully"})
}
