package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appinventory "github.com/schoolhub/backend/internal/application/inventory"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/schoolhub/backend/internal/infrastructure/export"
)

// ItemService is the inventory use case consumed by InventoryHandler
type ItemService interface {
	Create(ctx context.Context, actor identity.Actor, req appinventory.ItemRequest) (*appinventory.ItemResponse, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*appinventory.ItemResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter appinventory.ItemListFilter) ([]appinventory.ItemResponse, int64, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, req appinventory.ItemRequest) (*appinventory.ItemResponse, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	AdjustStock(ctx context.Context, actor identity.Actor, id uuid.UUID, req appinventory.AdjustStockRequest) (*appinventory.AdjustStockResponse, error)
	ListMovements(ctx context.Context, tenantID, id uuid.UUID, page shared.PageQuery) ([]appinventory.MovementResponse, int64, error)
	Export(ctx context.Context, tenantID uuid.UUID, filter appinventory.ItemListFilter) ([]byte, string, error)
}

// InventoryHandler handles inventory item HTTP requests
type InventoryHandler struct {
	BaseHandler
	itemService ItemService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(itemService ItemService) *InventoryHandler {
	return &InventoryHandler{itemService: itemService}
}

// Create godoc
//
//	@ID				createInventoryItem
//	@Summary		Create inventory item
//	@Description	A non-zero opening quantity is recorded as the first stock movement
//	@Tags			inventory
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appinventory.ItemRequest	true	"Item"
//	@Success		201		{object}	APIResponse[appinventory.ItemResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/inventory/items [post]
func (h *InventoryHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req appinventory.ItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	item, err := h.itemService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// GetByID godoc
//
//	@ID				getInventoryItem
//	@Summary		Get inventory item
//	@Tags			inventory
//	@Produce		json
//	@Param			id	path		string	true	"Item ID"	format(uuid)
//	@Success		200	{object}	APIResponse[appinventory.ItemResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/inventory/items/{id} [get]
func (h *InventoryHandler) GetByID(c *gin.Context) {
	byID(&h.BaseHandler, c, h.itemService.Get)
}

// List godoc
//
//	@ID				listInventoryItems
//	@Summary		List inventory items
//	@Tags			inventory
//	@Produce		json
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)
//	@Param			search		query		string	false	"Code or name"
//	@Param			category	query		string	false	"Category"
//	@Param			low_stock	query		bool	false	"Only items at or below their reorder level"
//	@Success		200			{object}	APIResponse[[]appinventory.ItemResponse]
//	@Security		BearerAuth
//	@Router			/inventory/items [get]
func (h *InventoryHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var filter appinventory.ItemListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	items, total, err := h.itemService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.BaseHandler.List(c, items, total, filter.PageQuery)
}

// Update godoc
//
//	@ID				updateInventoryItem
//	@Summary		Update inventory item
//	@Description	Quantity is ignored; use the adjust endpoint to move stock
//	@Tags			inventory
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Item ID"	format(uuid)
//	@Param			request	body		appinventory.ItemRequest	true	"Item"
//	@Success		200		{object}	APIResponse[appinventory.ItemResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/inventory/items/{id} [put]
func (h *InventoryHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req appinventory.ItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	item, err := h.itemService.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Delete godoc
//
//	@ID				deleteInventoryItem
//	@Summary		Delete inventory item
//	@Tags			inventory
//	@Param			id	path	string	true	"Item ID"	format(uuid)
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/inventory/items/{id} [delete]
func (h *InventoryHandler) Delete(c *gin.Context) {
	deleteByID(&h.BaseHandler, c, h.itemService.Delete)
}

// AdjustStock godoc
//
//	@ID				adjustInventoryStock
//	@Summary		Adjust stock
//	@Description	Positive delta adds stock, negative removes it. Stock never goes below zero.
//	@Tags			inventory
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Item ID"	format(uuid)
//	@Param			request	body		appinventory.AdjustStockRequest	true	"Adjustment"
//	@Success		200		{object}	APIResponse[appinventory.AdjustStockResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/inventory/items/{id}/adjust [post]
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req appinventory.AdjustStockRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.itemService.AdjustStock(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Movements godoc
//
//	@ID				listInventoryMovements
//	@Summary		List stock movements
//	@Tags			inventory
//	@Produce		json
//	@Param			id			path		string	true	"Item ID"		format(uuid)
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)
//	@Success		200			{object}	APIResponse[[]appinventory.MovementResponse]
//	@Failure		404			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/inventory/items/{id}/movements [get]
func (h *InventoryHandler) Movements(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var page shared.PageQuery
	if !h.bindQuery(c, &page) {
		return
	}

	movements, total, err := h.itemService.ListMovements(c.Request.Context(), tenantID, id, page)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.BaseHandler.List(c, movements, total, page)
}

// Export godoc
//
//	@ID				exportInventory
//	@Summary		Export inventory
//	@Tags			inventory
//	@Produce		application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
//	@Param			category	query	string	false	"Category"
//	@Param			low_stock	query	bool	false	"Only items at or below their reorder level"
//	@Success		200			{file}	binary
//	@Security		BearerAuth
//	@Router			/inventory/items/export [get]
func (h *InventoryHandler) Export(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var filter appinventory.ItemListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	data, fileName, err := h.itemService.Export(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.File(c, export.ContentType, fileName, data)
}
