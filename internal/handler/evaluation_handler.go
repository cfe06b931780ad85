package handler

import (
	"fmt"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"

	"github.com/ravgen/rav-api/internal/dto"
	"github.com/ravgen/rav-api/internal/models"
	"github.com/ravgen/rav-api/internal/service"
	appErrors "github.com/ravgen/rav-api/pkg/errors"
	"github.com/ravgen/rav-api/pkg/response"
	"github.com/ravgen/rav-api/pkg/storage"
)

// EvaluationHandler drives the per-student pipeline over HTTP.
type EvaluationHandler struct {
	evaluations *service.EvaluationService
	reports     *storage.Bucket
	signer      *storage.SignedURLSigner
}

// NewEvaluationHandler constructs EvaluationHandler.
func NewEvaluationHandler(evaluations *service.EvaluationService, reports *storage.Bucket, signer *storage.SignedURLSigner) *EvaluationHandler {
	return &EvaluationHandler{evaluations: evaluations, reports: reports, signer: signer}
}

// Start godoc
// @Summary Start evaluation processing
// @Description Extracts document data and generates the question set.
// @Tags Evaluations
// @Produce json
// @Param id path string true "Student ID"
// @Param mode query string false "Question mode override (fixed or dynamic)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id}/evaluation/start [post]
func (h *EvaluationHandler) Start(c *gin.Context) {
	teacher, ok := teacherID(c)
	if !ok {
		return
	}
	mode := models.QuestionMode(c.Query("mode"))
	if mode != "" && !mode.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "modo de perguntas inválido"))
		return
	}
	student, err := h.evaluations.Start(c.Request.Context(), c.Param("id"), teacher, mode)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Continue godoc
// @Summary Resume a stalled evaluation
// @Tags Evaluations
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id}/evaluation/continue [post]
func (h *EvaluationHandler) Continue(c *gin.Context) {
	teacher, ok := teacherID(c)
	if !ok {
		return
	}
	student, err := h.evaluations.Continue(c.Request.Context(), c.Param("id"), teacher)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Reset godoc
// @Summary Reset an evaluation to pending
// @Description Deletes questions and answers; extracted evidence survives.
// @Tags Evaluations
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id}/evaluation/reset [post]
func (h *EvaluationHandler) Reset(c *gin.Context) {
	teacher, ok := teacherID(c)
	if !ok {
		return
	}
	student, err := h.evaluations.Reset(c.Request.Context(), c.Param("id"), teacher)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Questions godoc
// @Summary List the current question set with saved drafts
// @Tags Evaluations
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id}/evaluation/questions [get]
func (h *EvaluationHandler) Questions(c *gin.Context) {
	teacher, ok := teacherID(c)
	if !ok {
		return
	}
	questions, answers, err := h.evaluations.Questions(c.Request.Context(), c.Param("id"), teacher)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"questions": questions, "answers": answers}, nil)
}

// Autosave godoc
// @Summary Save an answer draft
// @Description Best effort: the draft is queued and the request returns immediately.
// @Tags Evaluations
// @Accept json
// @Param id path string true "Student ID"
// @Param payload body dto.AutosaveAnswerRequest true "Draft answer"
// @Success 202
// @Security BearerAuth
// @Router /students/{id}/evaluation/answers/autosave [post]
func (h *EvaluationHandler) Autosave(c *gin.Context) {
	teacher, ok := teacherID(c)
	if !ok {
		return
	}
	var req dto.AutosaveAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.evaluations.Autosave(c.Request.Context(), c.Param("id"), teacher, req); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

// Submit godoc
// @Summary Submit the final answer set
// @Tags Evaluations
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body dto.SubmitAnswersRequest true "Answers"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id}/evaluation/answers [post]
func (h *EvaluationHandler) Submit(c *gin.Context) {
	teacher, ok := teacherID(c)
	if !ok {
		return
	}
	var req dto.SubmitAnswersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, err := h.evaluations.SubmitAnswers(c.Request.Context(), c.Param("id"), teacher, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Narrative godoc
// @Summary Generate the evaluation narrative
// @Tags Evaluations
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id}/evaluation/narrative [post]
func (h *EvaluationHandler) Narrative(c *gin.Context) {
	teacher, ok := teacherID(c)
	if !ok {
		return
	}
	student, err := h.evaluations.GenerateNarrative(c.Request.Context(), c.Param("id"), teacher)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Render godoc
// @Summary Render the final document
// @Tags Evaluations
// @Produce json
// @Param id path string true "Student ID"
// @Param format query string false "rtf | docx | pdf | html" default(rtf)
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id}/evaluation/render [post]
func (h *EvaluationHandler) Render(c *gin.Context) {
	teacher, ok := teacherID(c)
	if !ok {
		return
	}
	format, err := service.ParseReportFormat(c.DefaultQuery("format", "rtf"))
	if err != nil {
		response.Error(c, err)
		return
	}
	student, report, err := h.evaluations.RenderDocument(c.Request.Context(), c.Param("id"), teacher, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	token, expiresAt, err := h.signer.Generate(student.ID, report.Path)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao assinar o link de download"))
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"student":      student,
		"filename":     report.Filename,
		"content_type": report.ContentType,
		"download_url": fmt.Sprintf("/students/%s/evaluation/download?token=%s", student.ID, token),
		"expires_at":   expiresAt,
	}, nil)
}

// Download godoc
// @Summary Download the rendered document
// @Description Requires a valid HMAC signed token produced by the render call.
// @Tags Evaluations
// @Param id path string true "Student ID"
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Router /students/{id}/evaluation/download [get]
func (h *EvaluationHandler) Download(c *gin.Context) {
	studentID, relPath, _, err := h.signer.Parse(c.Query("token"), false)
	if err != nil || studentID != c.Param("id") {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "link de download inválido ou expirado"))
		return
	}
	data, err := h.reports.Read(relPath)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, appErrors.ErrStorage.Message))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(relPath)))
	c.Data(http.StatusOK, "application/octet-stream", data)
}

// Preview godoc
// @Summary HTML preview of the report
// @Tags Evaluations
// @Produce html
// @Param id path string true "Student ID"
// @Success 200 {string} string
// @Security BearerAuth
// @Router /students/{id}/evaluation/preview [get]
func (h *EvaluationHandler) Preview(c *gin.Context) {
	teacher, ok := teacherID(c)
	if !ok {
		return
	}
	html, err := h.evaluations.Preview(c.Request.Context(), c.Param("id"), teacher)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}
