package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appfinance "github.com/schoolhub/backend/internal/application/finance"
	"github.com/schoolhub/backend/internal/domain/identity"
)

// FeeStructureService is the fee catalog use case consumed by FeeStructureHandler
type FeeStructureService interface {
	Create(ctx context.Context, actor identity.Actor, req appfinance.FeeStructureRequest) (*appfinance.FeeStructureResponse, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*appfinance.FeeStructureResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter appfinance.FeeStructureListFilter) ([]appfinance.FeeStructureResponse, int64, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, req appfinance.FeeStructureRequest) (*appfinance.FeeStructureResponse, error)
	Activate(ctx context.Context, tenantID, id uuid.UUID) (*appfinance.FeeStructureResponse, error)
	Deactivate(ctx context.Context, tenantID, id uuid.UUID) (*appfinance.FeeStructureResponse, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// FeeStructureHandler handles fee structure HTTP requests
type FeeStructureHandler struct {
	BaseHandler
	feeService FeeStructureService
}

// NewFeeStructureHandler creates a new FeeStructureHandler
func NewFeeStructureHandler(feeService FeeStructureService) *FeeStructureHandler {
	return &FeeStructureHandler{feeService: feeService}
}

// Create godoc
//
//	@ID				createFeeStructure
//	@Summary		Create fee structure
//	@Description	A fee without class_id applies to the whole school
//	@Tags			fee-structures
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appfinance.FeeStructureRequest	true	"Fee structure"
//	@Success		201		{object}	APIResponse[appfinance.FeeStructureResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/fee-structures [post]
func (h *FeeStructureHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req appfinance.FeeStructureRequest
	if !h.bindJSON(c, &req) {
		return
	}

	fee, err := h.feeService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, fee)
}

// GetByID godoc
//
//	@ID				getFeeStructure
//	@Summary		Get fee structure
//	@Tags			fee-structures
//	@Produce		json
//	@Param			id	path		string	true	"Fee structure ID"	format(uuid)
//	@Success		200	{object}	APIResponse[appfinance.FeeStructureResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/fee-structures/{id} [get]
func (h *FeeStructureHandler) GetByID(c *gin.Context) {
	byID(&h.BaseHandler, c, h.feeService.Get)
}

// List godoc
//
//	@ID				listFeeStructures
//	@Summary		List fee structures
//	@Tags			fee-structures
//	@Produce		json
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)
//	@Param			search		query		string	false	"Name"
//	@Param			class_id	query		string	false	"Class ID"	format(uuid)
//	@Param			is_active	query		bool	false	"Active flag"
//	@Success		200			{object}	APIResponse[[]appfinance.FeeStructureResponse]
//	@Security		BearerAuth
//	@Router			/fee-structures [get]
func (h *FeeStructureHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var filter appfinance.FeeStructureListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	fees, total, err := h.feeService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.BaseHandler.List(c, fees, total, filter.PageQuery)
}

// Update godoc
//
//	@ID				updateFeeStructure
//	@Summary		Update fee structure
//	@Description	Invoices already generated keep their amounts
//	@Tags			fee-structures
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Fee structure ID"	format(uuid)
//	@Param			request	body		appfinance.FeeStructureRequest	true	"Fee structure"
//	@Success		200		{object}	APIResponse[appfinance.FeeStructureResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/fee-structures/{id} [put]
func (h *FeeStructureHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req appfinance.FeeStructureRequest
	if !h.bindJSON(c, &req) {
		return
	}

	fee, err := h.feeService.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, fee)
}

// Activate godoc
//
//	@ID				activateFeeStructure
//	@Summary		Activate fee structure
//	@Tags			fee-structures
//	@Produce		json
//	@Param			id	path		string	true	"Fee structure ID"	format(uuid)
//	@Success		200	{object}	APIResponse[appfinance.FeeStructureResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/fee-structures/{id}/activate [post]
func (h *FeeStructureHandler) Activate(c *gin.Context) {
	byID(&h.BaseHandler, c, h.feeService.Activate)
}

// Deactivate godoc
//
//	@ID				deactivateFeeStructure
//	@Summary		Deactivate fee structure
//	@Description	Inactive structures cannot be used to generate invoices
//	@Tags			fee-structures
//	@Produce		json
//	@Param			id	path		string	true	"Fee structure ID"	format(uuid)
//	@Success		200	{object}	APIResponse[appfinance.FeeStructureResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/fee-structures/{id}/deactivate [post]
func (h *FeeStructureHandler) Deactivate(c *gin.Context) {
	byID(&h.BaseHandler, c, h.feeService.Deactivate)
}

// Delete godoc
//
//	@ID				deleteFeeStructure
//	@Summary		Delete fee structure
//	@Description	Refused while invoices reference the structure
//	@Tags			fee-structures
//	@Param			id	path	string	true	"Fee structure ID"	format(uuid)
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Failure		409	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/fee-structures/{id} [delete]
func (h *FeeStructureHandler) Delete(c *gin.Context) {
	deleteByID(&h.BaseHandler, c, h.feeService.Delete)
}
