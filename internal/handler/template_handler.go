package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ravgen/rav-api/internal/service"
	appErrors "github.com/ravgen/rav-api/pkg/errors"
	"github.com/ravgen/rav-api/pkg/response"
)

// TemplateHandler manages uploaded report templates.
type TemplateHandler struct {
	templates *service.TemplateService
}

// NewTemplateHandler constructs TemplateHandler.
func NewTemplateHandler(templates *service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

// List godoc
// @Summary List report templates
// @Tags Templates
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /templates [get]
func (h *TemplateHandler) List(c *gin.Context) {
	teacher, ok := teacherID(c)
	if !ok {
		return
	}
	templates, err := h.templates.List(c.Request.Context(), teacher)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, templates, nil)
}

// Upload godoc
// @Summary Upload a report template
// @Tags Templates
// @Accept multipart/form-data
// @Produce json
// @Param name formData string false "Template name"
// @Param term formData string false "Term the template applies to"
// @Param file formData file true "Template file (rtf, txt or html)"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /templates [post]
func (h *TemplateHandler) Upload(c *gin.Context) {
	teacher, ok := teacherID(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "arquivo de modelo ausente"))
		return
	}
	tpl, err := h.templates.Upload(c.Request.Context(), teacher, c.PostForm("name"), c.PostForm("term"), fh)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, tpl)
}

// Delete godoc
// @Summary Remove a template
// @Tags Templates
// @Param id path string true "Template ID"
// @Success 204
// @Security BearerAuth
// @Router /templates/{id} [delete]
func (h *TemplateHandler) Delete(c *gin.Context) {
	teacher, ok := teacherID(c)
	if !ok {
		return
	}
	if err := h.templates.Delete(c.Request.Context(), c.Param("id"), teacher); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
