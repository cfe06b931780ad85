package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ravgen/rav-api/internal/dto"
	"github.com/ravgen/rav-api/internal/service"
	appErrors "github.com/ravgen/rav-api/pkg/errors"
	"github.com/ravgen/rav-api/pkg/response"
)

// StudentHandler exposes roster and upload endpoints.
type StudentHandler struct {
	students *service.StudentService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students *service.StudentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// Upload godoc
// @Summary Upload source documents
// @Description Creates one pending student per accepted file; per-file failures are reported in the response.
// @Tags Students
// @Accept multipart/form-data
// @Produce json
// @Param term formData string true "School term"
// @Param files formData file true "Source documents"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /students/upload [post]
func (h *StudentHandler) Upload(c *gin.Context) {
	teacher, ok := teacherID(c)
	if !ok {
		return
	}
	term := c.PostForm("term")
	if term == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "campo term é obrigatório"))
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "envio multipart inválido"))
		return
	}
	files := form.File["files"]

	result, err := h.students.Upload(c.Request.Context(), teacher, term, files)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, result, nil)
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Param status query string false "Filter by evaluation status"
// @Param term query string false "Filter by term"
// @Param search query string false "Search by name"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	teacher, ok := teacherID(c)
	if !ok {
		return
	}
	var query dto.ListStudentsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "parâmetros inválidos"))
		return
	}
	students, pagination, err := h.students.List(c.Request.Context(), teacher, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	out := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		out = append(out, dto.NewStudentResponse(&students[i]))
	}
	response.JSON(c, http.StatusOK, out, pagination)
}

// Summary godoc
// @Summary Roster status counts
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/summary [get]
func (h *StudentHandler) Summary(c *gin.Context) {
	teacher, ok := teacherID(c)
	if !ok {
		return
	}
	summary, err := h.students.Summary(c.Request.Context(), teacher)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Get godoc
// @Summary Get student detail
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	teacher, ok := teacherID(c)
	if !ok {
		return
	}
	student, err := h.students.Get(c.Request.Context(), c.Param("id"), teacher)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Update godoc
// @Summary Correct student data
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body dto.UpdateStudentRequest true "Fields to update"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id} [patch]
func (h *StudentHandler) Update(c *gin.Context) {
	teacher, ok := teacherID(c)
	if !ok {
		return
	}
	var req dto.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if req.Name == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "nada para atualizar"))
		return
	}
	student, err := h.students.UpdateName(c.Request.Context(), c.Param("id"), teacher, *req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Delete godoc
// @Summary Delete student
// @Description Removes the record, its questions, answers, logs and stored files.
// @Tags Students
// @Param id path string true "Student ID"
// @Success 204
// @Security BearerAuth
// @Router /students/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	teacher, ok := teacherID(c)
	if !ok {
		return
	}
	if err := h.students.Delete(c.Request.Context(), c.Param("id"), teacher); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
