package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ravgen/rav-api/internal/dto"
	"github.com/ravgen/rav-api/internal/service"
	appErrors "github.com/ravgen/rav-api/pkg/errors"
	"github.com/ravgen/rav-api/pkg/response"
)

// FixedQuestionHandler manages the teacher's question bank.
type FixedQuestionHandler struct {
	bank *service.FixedQuestionService
}

// NewFixedQuestionHandler constructs FixedQuestionHandler.
func NewFixedQuestionHandler(bank *service.FixedQuestionService) *FixedQuestionHandler {
	return &FixedQuestionHandler{bank: bank}
}

// List godoc
// @Summary List the question bank
// @Tags FixedQuestions
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /fixed-questions [get]
func (h *FixedQuestionHandler) List(c *gin.Context) {
	teacher, ok := teacherID(c)
	if !ok {
		return
	}
	questions, err := h.bank.List(c.Request.Context(), teacher)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, questions, nil)
}

// Create godoc
// @Summary Add a question to the bank
// @Tags FixedQuestions
// @Accept json
// @Produce json
// @Param payload body dto.CreateFixedQuestionRequest true "Question"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /fixed-questions [post]
func (h *FixedQuestionHandler) Create(c *gin.Context) {
	teacher, ok := teacherID(c)
	if !ok {
		return
	}
	var req dto.CreateFixedQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	question, err := h.bank.Create(c.Request.Context(), teacher, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, question)
}

// Update godoc
// @Summary Edit a bank question
// @Tags FixedQuestions
// @Accept json
// @Produce json
// @Param id path string true "Question ID"
// @Param payload body dto.UpdateFixedQuestionRequest true "Fields to update"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /fixed-questions/{id} [patch]
func (h *FixedQuestionHandler) Update(c *gin.Context) {
	teacher, ok := teacherID(c)
	if !ok {
		return
	}
	var req dto.UpdateFixedQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	question, err := h.bank.Update(c.Request.Context(), c.Param("id"), teacher, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, question, nil)
}

// Delete godoc
// @Summary Remove a bank question
// @Tags FixedQuestions
// @Param id path string true "Question ID"
// @Success 204
// @Security BearerAuth
// @Router /fixed-questions/{id} [delete]
func (h *FixedQuestionHandler) Delete(c *gin.Context) {
	teacher, ok := teacherID(c)
	if !ok {
		return
	}
	if err := h.bank.Delete(c.Request.Context(), c.Param("id"), teacher); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
