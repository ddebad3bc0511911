package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apppeople "github.com/schoolhub/backend/internal/application/people"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/infrastructure/export"
	"github.com/schoolhub/backend/internal/infrastructure/importer"
	"github.com/schoolhub/backend/internal/interfaces/http/dto"
)

// defaultMaxImportSize applies when no upload limit is configured
const defaultMaxImportSize int64 = 10 << 20

// StudentService is the student use case consumed by StudentHandler
type StudentService interface {
	Create(ctx context.Context, actor identity.Actor, req apppeople.CreateStudentRequest) (*apppeople.StudentResponse, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*apppeople.StudentResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter apppeople.StudentListFilter) ([]apppeople.StudentResponse, int64, error)
	ListMine(ctx context.Context, actor identity.Actor) ([]apppeople.StudentResponse, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, req apppeople.UpdateStudentRequest) (*apppeople.StudentResponse, error)
	AssignClass(ctx context.Context, tenantID, id uuid.UUID, req apppeople.AssignClassRequest) (*apppeople.StudentResponse, error)
	ChangeStatus(ctx context.Context, tenantID, id uuid.UUID, req apppeople.ChangeStudentStatusRequest) (*apppeople.StudentResponse, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	Export(ctx context.Context, tenantID uuid.UUID, filter apppeople.StudentListFilter) ([]byte, string, error)
	Import(ctx context.Context, actor identity.Actor, fileName string, data []byte) (*importer.Result, error)
}

// StudentHandler handles student HTTP requests
type StudentHandler struct {
	BaseHandler
	studentService StudentService
	maxImportSize  int64
}

// NewStudentHandler creates a new StudentHandler. maxImportSize caps uploaded
// import files; zero selects the default of 10MB.
func NewStudentHandler(studentService StudentService, maxImportSize int64) *StudentHandler {
	if maxImportSize <= 0 {
		maxImportSize = defaultMaxImportSize
	}
	return &StudentHandler{studentService: studentService, maxImportSize: maxImportSize}
}

// Create godoc
//
//	@ID				createStudent
//	@Summary		Enroll student
//	@Tags			students
//	@Accept			json
//	@Produce		json
//	@Param			request	body		apppeople.CreateStudentRequest	true	"Student"
//	@Success		201		{object}	APIResponse[apppeople.StudentResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req apppeople.CreateStudentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	student, err := h.studentService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, student)
}

// GetByID godoc
//
//	@ID				getStudent
//	@Summary		Get student
//	@Tags			students
//	@Produce		json
//	@Param			id	path		string	true	"Student ID"	format(uuid)
//	@Success		200	{object}	APIResponse[apppeople.StudentResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/students/{id} [get]
func (h *StudentHandler) GetByID(c *gin.Context) {
	byID(&h.BaseHandler, c, h.studentService.Get)
}

// List godoc
//
//	@ID				listStudents
//	@Summary		List students
//	@Tags			students
//	@Produce		json
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)
//	@Param			search		query		string	false	"Name or admission number"
//	@Param			class_id	query		string	false	"Class ID"	format(uuid)
//	@Param			status		query		string	false	"Status"	Enums(active, suspended, graduated, transferred)
//	@Param			gender		query		string	false	"Gender"	Enums(male, female, other)
//	@Success		200			{object}	APIResponse[[]apppeople.StudentResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/students [get]
func (h *StudentHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var filter apppeople.StudentListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	students, total, err := h.studentService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.BaseHandler.List(c, students, total, filter.PageQuery)
}

// Mine godoc
//
//	@ID				listMyStudents
//	@Summary		List own students
//	@Description	A student's own record, or the children linked to a parent account
//	@Tags			students
//	@Produce		json
//	@Success		200	{object}	APIResponse[[]apppeople.StudentResponse]
//	@Failure		403	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/students/mine [get]
func (h *StudentHandler) Mine(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	students, err := h.studentService.ListMine(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, students)
}

// Update godoc
//
//	@ID				updateStudent
//	@Summary		Update student
//	@Tags			students
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Student ID"	format(uuid)
//	@Param			request	body		apppeople.UpdateStudentRequest	true	"Student profile"
//	@Success		200		{object}	APIResponse[apppeople.StudentResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/students/{id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	var req apppeople.UpdateStudentRequest
	h.withBody(c, &req, func(ctx context.Context, tenantID, id uuid.UUID) (*apppeople.StudentResponse, error) {
		return h.studentService.Update(ctx, tenantID, id, req)
	})
}

// AssignClass godoc
//
//	@ID				assignStudentClass
//	@Summary		Assign student to class
//	@Description	The class must have remaining capacity. A null class_id removes the assignment.
//	@Tags			students
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Student ID"	format(uuid)
//	@Param			request	body		apppeople.AssignClassRequest	true	"Class"
//	@Success		200		{object}	APIResponse[apppeople.StudentResponse]
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/students/{id}/class [put]
func (h *StudentHandler) AssignClass(c *gin.Context) {
	var req apppeople.AssignClassRequest
	h.withBody(c, &req, func(ctx context.Context, tenantID, id uuid.UUID) (*apppeople.StudentResponse, error) {
		return h.studentService.AssignClass(ctx, tenantID, id, req)
	})
}

// ChangeStatus godoc
//
//	@ID				changeStudentStatus
//	@Summary		Change student status
//	@Description	Graduated and transferred students leave their class
//	@Tags			students
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string									true	"Student ID"	format(uuid)
//	@Param			request	body		apppeople.ChangeStudentStatusRequest	true	"Status"
//	@Success		200		{object}	APIResponse[apppeople.StudentResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/students/{id}/status [put]
func (h *StudentHandler) ChangeStatus(c *gin.Context) {
	var req apppeople.ChangeStudentStatusRequest
	h.withBody(c, &req, func(ctx context.Context, tenantID, id uuid.UUID) (*apppeople.StudentResponse, error) {
		return h.studentService.ChangeStatus(ctx, tenantID, id, req)
	})
}

// withBody binds req before running fn for the :id student
func (h *StudentHandler) withBody(c *gin.Context, req any, fn func(ctx context.Context, tenantID, id uuid.UUID) (*apppeople.StudentResponse, error)) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if !h.bindJSON(c, req) {
		return
	}

	student, err := fn(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, student)
}

// Delete godoc
//
//	@ID				deleteStudent
//	@Summary		Delete student
//	@Tags			students
//	@Param			id	path	string	true	"Student ID"	format(uuid)
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Failure		409	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/students/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	deleteByID(&h.BaseHandler, c, h.studentService.Delete)
}

// Export godoc
//
//	@ID				exportStudents
//	@Summary		Export students
//	@Description	Download the filtered student list as an xlsx workbook
//	@Tags			students
//	@Produce		application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
//	@Param			search		query	string	false	"Name or admission number"
//	@Param			class_id	query	string	false	"Class ID"	format(uuid)
//	@Param			status		query	string	false	"Status"	Enums(active, suspended, graduated, transferred)
//	@Param			gender		query	string	false	"Gender"	Enums(male, female, other)
//	@Success		200			{file}	binary
//	@Failure		400			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/students/export [get]
func (h *StudentHandler) Export(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var filter apppeople.StudentListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	data, fileName, err := h.studentService.Export(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.File(c, export.ContentType, fileName, data)
}

// Import godoc
//
//	@ID				importStudents
//	@Summary		Import students
//	@Description	Bulk enroll students from a CSV or xlsx file. Invalid rows and existing admission numbers are skipped and reported per row.
//	@Tags			students
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"CSV or xlsx file"
//	@Success		200		{object}	APIResponse[dto.ImportResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		413		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/students/import [post]
func (h *StudentHandler) Import(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "file is required")
		return
	}
	defer file.Close()

	if header.Size > h.maxImportSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodePayloadTooLarge,
			fmt.Sprintf("file exceeds the maximum size of %d bytes", h.maxImportSize))
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, h.maxImportSize+1))
	if err != nil {
		h.BadRequest(c, "file could not be read")
		return
	}
	if int64(len(data)) > h.maxImportSize {
		h.HandleError(c, importer.ErrFileTooLarge)
		return
	}

	result, err := h.studentService.Import(c.Request.Context(), actor, header.Filename, data)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewImportResponse(result))
}
