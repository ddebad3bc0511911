package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appreport "github.com/schoolhub/backend/internal/application/report"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/report"
	"github.com/schoolhub/backend/internal/infrastructure/export"
)

// StatisticsService is the cached statistics use case consumed by StatisticsHandler
type StatisticsService interface {
	Overview(ctx context.Context, tenantID uuid.UUID) (*report.Overview, error)
	AttendanceTrend(ctx context.Context, tenantID uuid.UUID, q appreport.TrendQuery) ([]report.AttendancePoint, error)
	FeeCollectionTrend(ctx context.Context, tenantID uuid.UUID, months int) ([]report.FeePoint, error)
	ExamPerformance(ctx context.Context, tenantID uuid.UUID, term string) ([]report.SubjectPerformance, error)
	EnrollmentByClass(ctx context.Context, tenantID uuid.UUID) ([]report.ClassEnrollment, error)
	Platform(ctx context.Context) (*report.PlatformSummary, error)
}

// DashboardService builds the role-specific home screen
type DashboardService interface {
	Dashboard(ctx context.Context, actor identity.Actor) (*appreport.Dashboard, error)
}

// ReportService renders spreadsheet reports
type ReportService interface {
	Export(ctx context.Context, tenantID uuid.UUID, req appreport.ExportRequest) ([]byte, string, error)
	Archive(ctx context.Context, actor identity.Actor, req appreport.ExportRequest) (*appreport.ArchiveResponse, error)
}

// StatisticsHandler handles statistics HTTP requests
type StatisticsHandler struct {
	BaseHandler
	statisticsService StatisticsService
}

// NewStatisticsHandler creates a new StatisticsHandler
func NewStatisticsHandler(statisticsService StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService}
}

// Overview godoc
//
//	@ID				statisticsOverview
//	@Summary		School overview
//	@Description	Head counts, today's attendance and the fee position of the school
//	@Tags			statistics
//	@Produce		json
//	@Success		200	{object}	APIResponse[report.Overview]
//	@Security		BearerAuth
//	@Router			/statistics/overview [get]
func (h *StatisticsHandler) Overview(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	overview, err := h.statisticsService.Overview(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, overview)
}

// AttendanceTrend godoc
//
//	@ID				statisticsAttendanceTrend
//	@Summary		Daily attendance trend
//	@Tags			statistics
//	@Produce		json
//	@Param			from	query		string	false	"First day"	format(date)
//	@Param			to		query		string	false	"Last day"	format(date)
//	@Success		200		{object}	APIResponse[[]report.AttendancePoint]
//	@Failure		400		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/statistics/attendance-trend [get]
func (h *StatisticsHandler) AttendanceTrend(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var query appreport.TrendQuery
	if !h.bindQuery(c, &query) {
		return
	}

	points, err := h.statisticsService.AttendanceTrend(c.Request.Context(), tenantID, query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, points)
}

// FeeTrend godoc
//
//	@ID				statisticsFeeTrend
//	@Summary		Monthly fee collection
//	@Tags			statistics
//	@Produce		json
//	@Param			months	query		int	false	"Months to cover"	default(6)	minimum(1)	maximum(24)
//	@Success		200		{object}	APIResponse[[]report.FeePoint]
//	@Failure		400		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/statistics/fee-trend [get]
func (h *StatisticsHandler) FeeTrend(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var query appreport.FeeTrendQuery
	if !h.bindQuery(c, &query) {
		return
	}

	points, err := h.statisticsService.FeeCollectionTrend(c.Request.Context(), tenantID, query.Months)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, points)
}

// ExamPerformance godoc
//
//	@ID				statisticsExamPerformance
//	@Summary		Average score per subject
//	@Tags			statistics
//	@Produce		json
//	@Param			term	query		string	false	"Term"
//	@Success		200		{object}	APIResponse[[]report.SubjectPerformance]
//	@Failure		400		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/statistics/exam-performance [get]
func (h *StatisticsHandler) ExamPerformance(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var query appreport.ExamPerformanceQuery
	if !h.bindQuery(c, &query) {
		return
	}

	rows, err := h.statisticsService.ExamPerformance(c.Request.Context(), tenantID, query.Term)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// Enrollment godoc
//
//	@ID				statisticsEnrollment
//	@Summary		Enrollment per class
//	@Tags			statistics
//	@Produce		json
//	@Success		200	{object}	APIResponse[[]report.ClassEnrollment]
//	@Security		BearerAuth
//	@Router			/statistics/enrollment [get]
func (h *StatisticsHandler) Enrollment(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	rows, err := h.statisticsService.EnrollmentByClass(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// Platform godoc
//
//	@ID				statisticsPlatform
//	@Summary		Platform summary
//	@Description	School and user counts across the platform. Super admin only.
//	@Tags			statistics
//	@Produce		json
//	@Success		200	{object}	APIResponse[report.PlatformSummary]
//	@Failure		403	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/statistics/platform [get]
func (h *StatisticsHandler) Platform(c *gin.Context) {
	summary, err := h.statisticsService.Platform(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// DashboardHandler serves the role-specific dashboard
type DashboardHandler struct {
	BaseHandler
	dashboardService DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Get godoc
//
//	@ID				getDashboard
//	@Summary		Dashboard
//	@Description	Exactly one section is filled, chosen by the caller's role
//	@Tags			dashboard
//	@Produce		json
//	@Success		200	{object}	APIResponse[appreport.Dashboard]
//	@Failure		403	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	dashboard, err := h.dashboardService.Dashboard(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dashboard)
}

// ReportHandler handles report export HTTP requests
type ReportHandler struct {
	BaseHandler
	reportService ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Export godoc
//
//	@ID				exportReport
//	@Summary		Download report
//	@Tags			reports
//	@Produce		application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
//	@Param			kind		query	string	true	"Report"	Enums(students, attendance, invoices, inventory)
//	@Param			class_id	query	string	false	"Class ID"	format(uuid)
//	@Param			status		query	string	false	"Status"
//	@Param			from		query	string	false	"First day"	format(date)
//	@Param			to			query	string	false	"Last day"	format(date)
//	@Success		200			{file}	binary
//	@Failure		400			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/reports/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req appreport.ExportRequest
	if !h.bindQuery(c, &req) {
		return
	}

	data, fileName, err := h.reportService.Export(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.File(c, export.ContentType, fileName, data)
}

// Archive godoc
//
//	@ID				archiveReport
//	@Summary		Archive report
//	@Description	Stores the report in object storage and returns a presigned download link
//	@Tags			reports
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appreport.ExportRequest	true	"Report and filters"
//	@Success		201		{object}	APIResponse[appreport.ArchiveResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		503		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/reports/archive [post]
func (h *ReportHandler) Archive(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req appreport.ExportRequest
	if !h.bindJSON(c, &req) {
		return
	}

	archive, err := h.reportService.Archive(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, archive)
}
