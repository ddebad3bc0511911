package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appexams "github.com/schoolhub/backend/internal/application/exams"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/infrastructure/printing"
)

// ExamService is the exam scheduling use case consumed by ExamHandler
type ExamService interface {
	Create(ctx context.Context, actor identity.Actor, req appexams.ExamRequest) (*appexams.ExamResponse, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*appexams.ExamResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter appexams.ExamListFilter) ([]appexams.ExamResponse, int64, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, req appexams.ExamRequest) (*appexams.ExamResponse, error)
	Cancel(ctx context.Context, tenantID, id uuid.UUID) (*appexams.ExamResponse, error)
	Complete(ctx context.Context, tenantID, id uuid.UUID) (*appexams.ExamResponse, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// ResultService records marks and builds report cards
type ResultService interface {
	RecordResults(ctx context.Context, actor identity.Actor, examID uuid.UUID, req appexams.RecordResultsRequest) (*appexams.RecordResultsResponse, error)
	ListResults(ctx context.Context, tenantID, examID uuid.UUID) ([]appexams.ResultResponse, error)
	StudentResults(ctx context.Context, actor identity.Actor, studentID uuid.UUID, term string) ([]appexams.ResultResponse, error)
	ReportCard(ctx context.Context, actor identity.Actor, studentID uuid.UUID, term string) (*appexams.ReportCardResponse, error)
	ReportCardPDF(ctx context.Context, actor identity.Actor, studentID uuid.UUID, term string) (*printing.Document, error)
}

// ExamHandler handles exam, result and report card HTTP requests
type ExamHandler struct {
	BaseHandler
	examService   ExamService
	resultService ResultService
}

// NewExamHandler creates a new ExamHandler
func NewExamHandler(examService ExamService, resultService ResultService) *ExamHandler {
	return &ExamHandler{examService: examService, resultService: resultService}
}

// Create godoc
//
//	@ID				createExam
//	@Summary		Schedule exam
//	@Tags			exams
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appexams.ExamRequest	true	"Exam"
//	@Success		201		{object}	APIResponse[appexams.ExamResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/exams [post]
func (h *ExamHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req appexams.ExamRequest
	if !h.bindJSON(c, &req) {
		return
	}

	exam, err := h.examService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, exam)
}

// GetByID godoc
//
//	@ID				getExam
//	@Summary		Get exam
//	@Tags			exams
//	@Produce		json
//	@Param			id	path		string	true	"Exam ID"	format(uuid)
//	@Success		200	{object}	APIResponse[appexams.ExamResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/exams/{id} [get]
func (h *ExamHandler) GetByID(c *gin.Context) {
	byID(&h.BaseHandler, c, h.examService.Get)
}

// List godoc
//
//	@ID				listExams
//	@Summary		List exams
//	@Tags			exams
//	@Produce		json
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)
//	@Param			search		query		string	false	"Exam name"
//	@Param			class_id	query		string	false	"Class ID"		format(uuid)
//	@Param			subject_id	query		string	false	"Subject ID"	format(uuid)
//	@Param			status		query		string	false	"Status"		Enums(scheduled, completed, cancelled)
//	@Param			term		query		string	false	"Term"
//	@Param			from		query		string	false	"Earliest exam date"	format(date)
//	@Param			to			query		string	false	"Latest exam date"		format(date)
//	@Success		200			{object}	APIResponse[[]appexams.ExamResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/exams [get]
func (h *ExamHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var filter appexams.ExamListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	exams, total, err := h.examService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.BaseHandler.List(c, exams, total, filter.PageQuery)
}

// Update godoc
//
//	@ID				updateExam
//	@Summary		Update exam
//	@Description	Only scheduled exams can be changed
//	@Tags			exams
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Exam ID"	format(uuid)
//	@Param			request	body		appexams.ExamRequest	true	"Exam"
//	@Success		200		{object}	APIResponse[appexams.ExamResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/exams/{id} [put]
func (h *ExamHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req appexams.ExamRequest
	if !h.bindJSON(c, &req) {
		return
	}

	exam, err := h.examService.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, exam)
}

// Cancel godoc
//
//	@ID				cancelExam
//	@Summary		Cancel exam
//	@Tags			exams
//	@Produce		json
//	@Param			id	path		string	true	"Exam ID"	format(uuid)
//	@Success		200	{object}	APIResponse[appexams.ExamResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Failure		422	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/exams/{id}/cancel [post]
func (h *ExamHandler) Cancel(c *gin.Context) {
	byID(&h.BaseHandler, c, h.examService.Cancel)
}

// Complete godoc
//
//	@ID				completeExam
//	@Summary		Complete exam
//	@Tags			exams
//	@Produce		json
//	@Param			id	path		string	true	"Exam ID"	format(uuid)
//	@Success		200	{object}	APIResponse[appexams.ExamResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Failure		422	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/exams/{id}/complete [post]
func (h *ExamHandler) Complete(c *gin.Context) {
	byID(&h.BaseHandler, c, h.examService.Complete)
}

// Delete godoc
//
//	@ID				deleteExam
//	@Summary		Delete exam
//	@Description	Refused once results have been recorded
//	@Tags			exams
//	@Param			id	path	string	true	"Exam ID"	format(uuid)
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Failure		409	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/exams/{id} [delete]
func (h *ExamHandler) Delete(c *gin.Context) {
	deleteByID(&h.BaseHandler, c, h.examService.Delete)
}

// RecordResults godoc
//
//	@ID				recordExamResults
//	@Summary		Record results
//	@Description	Upsert marks for students of the exam's class. Grades come from the school grading scale.
//	@Tags			exams
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Exam ID"	format(uuid)
//	@Param			request	body		appexams.RecordResultsRequest	true	"Marks"
//	@Success		200		{object}	APIResponse[appexams.RecordResultsResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/exams/{id}/results [post]
func (h *ExamHandler) RecordResults(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	examID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req appexams.RecordResultsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.resultService.RecordResults(c.Request.Context(), actor, examID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ListResults godoc
//
//	@ID				listExamResults
//	@Summary		List exam results
//	@Tags			exams
//	@Produce		json
//	@Param			id	path		string	true	"Exam ID"	format(uuid)
//	@Success		200	{object}	APIResponse[[]appexams.ResultResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/exams/{id}/results [get]
func (h *ExamHandler) ListResults(c *gin.Context) {
	byID(&h.BaseHandler, c, h.resultService.ListResults)
}

// StudentResults godoc
//
//	@ID				listStudentResults
//	@Summary		List student results
//	@Description	Staff see any student; students see themselves and parents their children
//	@Tags			exams
//	@Produce		json
//	@Param			id		path		string	true	"Student ID"	format(uuid)
//	@Param			term	query		string	false	"Term"
//	@Success		200		{object}	APIResponse[[]appexams.ResultResponse]
//	@Failure		403		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/students/{id}/results [get]
func (h *ExamHandler) StudentResults(c *gin.Context) {
	actor, studentID, ok := h.studentRequest(c)
	if !ok {
		return
	}
	results, err := h.resultService.StudentResults(c.Request.Context(), actor, studentID, c.Query("term"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, results)
}

// ReportCard godoc
//
//	@ID				getReportCard
//	@Summary		Get report card
//	@Description	Per-subject averages and overall grade for a term. An empty term means the current term.
//	@Tags			exams
//	@Produce		json
//	@Param			id		path		string	true	"Student ID"	format(uuid)
//	@Param			term	query		string	false	"Term"
//	@Success		200		{object}	APIResponse[appexams.ReportCardResponse]
//	@Failure		403		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/students/{id}/report-card [get]
func (h *ExamHandler) ReportCard(c *gin.Context) {
	actor, studentID, ok := h.studentRequest(c)
	if !ok {
		return
	}
	card, err := h.resultService.ReportCard(c.Request.Context(), actor, studentID, c.Query("term"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, card)
}

// ReportCardPDF godoc
//
//	@ID				printReportCard
//	@Summary		Print report card
//	@Tags			exams
//	@Produce		application/pdf
//	@Param			id		path	string	true	"Student ID"	format(uuid)
//	@Param			term	query	string	false	"Term"
//	@Success		200		{file}	binary
//	@Failure		403		{object}	ErrorResponse
//	@Failure		503		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/students/{id}/report-card/pdf [get]
func (h *ExamHandler) ReportCardPDF(c *gin.Context) {
	actor, studentID, ok := h.studentRequest(c)
	if !ok {
		return
	}
	doc, err := h.resultService.ReportCardPDF(c.Request.Context(), actor, studentID, c.Query("term"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.PDF(c, doc)
}

func (h *ExamHandler) studentRequest(c *gin.Context) (identity.Actor, uuid.UUID, bool) {
	actor, ok := h.actor(c)
	if !ok {
		return identity.Actor{}, uuid.Nil, false
	}
	studentID, ok := h.pathUUID(c, "id")
	if !ok {
		return identity.Actor{}, uuid.Nil, false
	}
	return actor, studentID, true
}
