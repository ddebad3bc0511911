package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appattendance "github.com/schoolhub/backend/internal/application/attendance"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/infrastructure/export"
)

// AttendanceService is the attendance register use case consumed by AttendanceHandler
type AttendanceService interface {
	Mark(ctx context.Context, actor identity.Actor, req appattendance.MarkAttendanceRequest) (*appattendance.MarkResult, error)
	List(ctx context.Context, tenantID uuid.UUID, filter appattendance.AttendanceListFilter) ([]appattendance.AttendanceResponse, int64, error)
	Update(ctx context.Context, actor identity.Actor, id uuid.UUID, req appattendance.UpdateAttendanceRequest) (*appattendance.AttendanceResponse, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	Summary(ctx context.Context, tenantID uuid.UUID, query appattendance.SummaryQuery) (*appattendance.SummaryResponse, error)
	Export(ctx context.Context, tenantID uuid.UUID, query appattendance.ExportQuery) ([]byte, string, error)
}

// AttendanceHandler handles attendance HTTP requests
type AttendanceHandler struct {
	BaseHandler
	attendanceService AttendanceService
}

// NewAttendanceHandler creates a new AttendanceHandler
func NewAttendanceHandler(attendanceService AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: attendanceService}
}

// Mark godoc
//
//	@ID				markAttendance
//	@Summary		Mark class register
//	@Description	Upsert one record per student for a class and day. Every student must belong to the class and the date cannot be in the future.
//	@Tags			attendance
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appattendance.MarkAttendanceRequest	true	"Register"
//	@Success		200		{object}	APIResponse[appattendance.MarkResult]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/attendance [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req appattendance.MarkAttendanceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.attendanceService.Mark(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// List godoc
//
//	@ID				listAttendance
//	@Summary		List attendance records
//	@Tags			attendance
//	@Produce		json
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)
//	@Param			class_id	query		string	false	"Class ID"		format(uuid)
//	@Param			student_id	query		string	false	"Student ID"	format(uuid)
//	@Param			from		query		string	false	"First day"		format(date)
//	@Param			to			query		string	false	"Last day"		format(date)
//	@Param			status		query		string	false	"Status"		Enums(present, absent, late, excused)
//	@Success		200			{object}	APIResponse[[]appattendance.AttendanceResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var filter appattendance.AttendanceListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	records, total, err := h.attendanceService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.BaseHandler.List(c, records, total, filter.PageQuery)
}

// Update godoc
//
//	@ID				updateAttendance
//	@Summary		Correct attendance record
//	@Tags			attendance
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string									true	"Record ID"	format(uuid)
//	@Param			request	body		appattendance.UpdateAttendanceRequest	true	"Status and remarks"
//	@Success		200		{object}	APIResponse[appattendance.AttendanceResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/attendance/{id} [put]
func (h *AttendanceHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req appattendance.UpdateAttendanceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	record, err := h.attendanceService.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// Delete godoc
//
//	@ID				deleteAttendance
//	@Summary		Delete attendance record
//	@Tags			attendance
//	@Param			id	path	string	true	"Record ID"	format(uuid)
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/attendance/{id} [delete]
func (h *AttendanceHandler) Delete(c *gin.Context) {
	deleteByID(&h.BaseHandler, c, h.attendanceService.Delete)
}

// Summary godoc
//
//	@ID				attendanceSummary
//	@Summary		Attendance summary
//	@Description	Counts per status and the attendance rate, (present+late)/total, for a class or a student. Defaults to the last 30 days.
//	@Tags			attendance
//	@Produce		json
//	@Param			class_id	query		string	false	"Class ID"		format(uuid)
//	@Param			student_id	query		string	false	"Student ID"	format(uuid)
//	@Param			from		query		string	false	"First day"		format(date)
//	@Param			to			query		string	false	"Last day"		format(date)
//	@Success		200			{object}	APIResponse[appattendance.SummaryResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/attendance/summary [get]
func (h *AttendanceHandler) Summary(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var query appattendance.SummaryQuery
	if !h.bindQuery(c, &query) {
		return
	}

	summary, err := h.attendanceService.Summary(c.Request.Context(), tenantID, query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Export godoc
//
//	@ID				exportAttendance
//	@Summary		Export class register
//	@Description	Download the register of a class for a date range as an xlsx workbook
//	@Tags			attendance
//	@Produce		application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
//	@Param			class_id	query	string	true	"Class ID"	format(uuid)
//	@Param			from		query	string	false	"First day"	format(date)
//	@Param			to			query	string	false	"Last day"	format(date)
//	@Success		200			{file}	binary
//	@Failure		400			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/attendance/export [get]
func (h *AttendanceHandler) Export(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var query appattendance.ExportQuery
	if !h.bindQuery(c, &query) {
		return
	}

	data, fileName, err := h.attendanceService.Export(c.Request.Context(), tenantID, query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.File(c, export.ContentType, fileName, data)
}
