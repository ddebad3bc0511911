package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appfinance "github.com/schoolhub/backend/internal/application/finance"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/infrastructure/export"
	"github.com/schoolhub/backend/internal/infrastructure/printing"
)

// InvoiceService is the billing use case consumed by InvoiceHandler
type InvoiceService interface {
	Create(ctx context.Context, actor identity.Actor, req appfinance.InvoiceRequest) (*appfinance.InvoiceResponse, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*appfinance.InvoiceResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter appfinance.InvoiceListFilter) ([]appfinance.InvoiceResponse, int64, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, req appfinance.InvoiceRequest) (*appfinance.InvoiceResponse, error)
	Issue(ctx context.Context, tenantID, id uuid.UUID) (*appfinance.InvoiceResponse, error)
	Cancel(ctx context.Context, tenantID, id uuid.UUID, req appfinance.CancelInvoiceRequest) (*appfinance.InvoiceResponse, error)
	RecordPayment(ctx context.Context, actor identity.Actor, id uuid.UUID, req appfinance.RecordPaymentRequest) (*appfinance.InvoiceResponse, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	GenerateForClass(ctx context.Context, actor identity.Actor, req appfinance.GenerateInvoicesRequest) (*appfinance.GenerateInvoicesResult, error)
	ListForStudent(ctx context.Context, actor identity.Actor, studentID uuid.UUID) (*appfinance.StudentInvoicesResponse, error)
	ListMine(ctx context.Context, actor identity.Actor, outstandingOnly bool) ([]appfinance.StudentInvoicesResponse, error)
	PDF(ctx context.Context, actor identity.Actor, id uuid.UUID) (*printing.Document, error)
	Export(ctx context.Context, tenantID uuid.UUID, filter appfinance.InvoiceListFilter) ([]byte, string, error)
}

// InvoiceHandler handles invoice and payment HTTP requests
type InvoiceHandler struct {
	BaseHandler
	invoiceService InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// Create godoc
//
//	@ID				createInvoice
//	@Summary		Create draft invoice
//	@Tags			invoices
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appfinance.InvoiceRequest	true	"Invoice"
//	@Success		201		{object}	APIResponse[appfinance.InvoiceResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req appfinance.InvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	invoice, err := h.invoiceService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// GetByID godoc
//
//	@ID				getInvoice
//	@Summary		Get invoice
//	@Tags			invoices
//	@Produce		json
//	@Param			id	path		string	true	"Invoice ID"	format(uuid)
//	@Success		200	{object}	APIResponse[appfinance.InvoiceResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	byID(&h.BaseHandler, c, h.invoiceService.Get)
}

// List godoc
//
//	@ID				listInvoices
//	@Summary		List invoices
//	@Tags			invoices
//	@Produce		json
//	@Param			page				query		int		false	"Page number"	default(1)
//	@Param			page_size			query		int		false	"Page size"		default(20)
//	@Param			search				query		string	false	"Invoice number"
//	@Param			student_id			query		string	false	"Student ID"		format(uuid)
//	@Param			fee_structure_id	query		string	false	"Fee structure ID"	format(uuid)
//	@Param			status				query		string	false	"Status"	Enums(draft, issued, partially_paid, paid, overdue, cancelled)
//	@Param			from				query		string	false	"Earliest issue date"	format(date)
//	@Param			to					query		string	false	"Latest issue date"		format(date)
//	@Success		200					{object}	APIResponse[[]appfinance.InvoiceResponse]
//	@Failure		400					{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var filter appfinance.InvoiceListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	invoices, total, err := h.invoiceService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.BaseHandler.List(c, invoices, total, filter.PageQuery)
}

// Update godoc
//
//	@ID				updateInvoice
//	@Summary		Update draft invoice
//	@Tags			invoices
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Invoice ID"	format(uuid)
//	@Param			request	body		appfinance.InvoiceRequest	true	"Invoice"
//	@Success		200		{object}	APIResponse[appfinance.InvoiceResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/invoices/{id} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req appfinance.InvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	invoice, err := h.invoiceService.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Issue godoc
//
//	@ID				issueInvoice
//	@Summary		Issue invoice
//	@Tags			invoices
//	@Produce		json
//	@Param			id	path		string	true	"Invoice ID"	format(uuid)
//	@Success		200	{object}	APIResponse[appfinance.InvoiceResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Failure		422	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/invoices/{id}/issue [post]
func (h *InvoiceHandler) Issue(c *gin.Context) {
	byID(&h.BaseHandler, c, h.invoiceService.Issue)
}

// Cancel godoc
//
//	@ID				cancelInvoice
//	@Summary		Cancel invoice
//	@Description	Drafts and issued invoices without payments can be cancelled
//	@Tags			invoices
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Invoice ID"	format(uuid)
//	@Param			request	body		appfinance.CancelInvoiceRequest	false	"Reason"
//	@Success		200		{object}	APIResponse[appfinance.InvoiceResponse]
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/invoices/{id}/cancel [post]
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req appfinance.CancelInvoiceRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}

	invoice, err := h.invoiceService.Cancel(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// RecordPayment godoc
//
//	@ID				recordInvoicePayment
//	@Summary		Record payment
//	@Description	The amount may not exceed the outstanding balance
//	@Tags			invoices
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Invoice ID"	format(uuid)
//	@Param			request	body		appfinance.RecordPaymentRequest	true	"Payment"
//	@Success		200		{object}	APIResponse[appfinance.InvoiceResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/invoices/{id}/payments [post]
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req appfinance.RecordPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	invoice, err := h.invoiceService.RecordPayment(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Delete godoc
//
//	@ID				deleteInvoice
//	@Summary		Delete draft invoice
//	@Tags			invoices
//	@Param			id	path	string	true	"Invoice ID"	format(uuid)
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Failure		422	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	deleteByID(&h.BaseHandler, c, h.invoiceService.Delete)
}

// Generate godoc
//
//	@ID				generateInvoices
//	@Summary		Generate invoices for a class
//	@Description	One invoice per active student. Students already billed for the structure in the same term are skipped.
//	@Tags			invoices
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appfinance.GenerateInvoicesRequest	true	"Fee structure and class"
//	@Success		201		{object}	APIResponse[appfinance.GenerateInvoicesResult]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/invoices/generate [post]
func (h *InvoiceHandler) Generate(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req appfinance.GenerateInvoicesRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.invoiceService.GenerateForClass(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Mine godoc
//
//	@ID				listMyInvoices
//	@Summary		List own invoices
//	@Description	Invoices of the signed-in student, or of each child of the signed-in parent
//	@Tags			invoices
//	@Produce		json
//	@Param			outstanding	query		bool	false	"Only invoices with a balance"
//	@Success		200			{object}	APIResponse[[]appfinance.StudentInvoicesResponse]
//	@Failure		403			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/invoices/mine [get]
func (h *InvoiceHandler) Mine(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	outstanding, _ := strconv.ParseBool(c.Query("outstanding"))

	invoices, err := h.invoiceService.ListMine(c.Request.Context(), actor, outstanding)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoices)
}

// StudentInvoices godoc
//
//	@ID				listStudentInvoices
//	@Summary		List student invoices
//	@Description	Staff see any student; students see themselves and parents their children
//	@Tags			invoices
//	@Produce		json
//	@Param			id	path		string	true	"Student ID"	format(uuid)
//	@Success		200	{object}	APIResponse[appfinance.StudentInvoicesResponse]
//	@Failure		403	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/students/{id}/invoices [get]
func (h *InvoiceHandler) StudentInvoices(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	studentID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	invoices, err := h.invoiceService.ListForStudent(c.Request.Context(), actor, studentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoices)
}

// PDF godoc
//
//	@ID				printInvoice
//	@Summary		Print invoice
//	@Tags			invoices
//	@Produce		application/pdf
//	@Param			id	path	string	true	"Invoice ID"	format(uuid)
//	@Success		200	{file}	binary
//	@Failure		403	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		503	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/invoices/{id}/pdf [get]
func (h *InvoiceHandler) PDF(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	doc, err := h.invoiceService.PDF(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.BaseHandler.PDF(c, doc)
}

// Export godoc
//
//	@ID				exportInvoices
//	@Summary		Export invoices
//	@Tags			invoices
//	@Produce		application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
//	@Param			student_id			query	string	false	"Student ID"		format(uuid)
//	@Param			fee_structure_id	query	string	false	"Fee structure ID"	format(uuid)
//	@Param			status				query	string	false	"Status"	Enums(draft, issued, partially_paid, paid, overdue, cancelled)
//	@Param			from				query	string	false	"Earliest issue date"	format(date)
//	@Param			to					query	string	false	"Latest issue date"		format(date)
//	@Success		200					{file}	binary
//	@Failure		400					{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/invoices/export [get]
func (h *InvoiceHandler) Export(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var filter appfinance.InvoiceListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	data, fileName, err := h.invoiceService.Export(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.File(c, export.ContentType, fileName, data)
}
