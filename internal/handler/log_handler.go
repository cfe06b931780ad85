package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ravgen/rav-api/internal/service"
	"github.com/ravgen/rav-api/pkg/response"
)

// LogHandler exposes the per-student processing audit trail.
type LogHandler struct {
	logs *service.LogService
}

// NewLogHandler constructs LogHandler.
func NewLogHandler(logs *service.LogService) *LogHandler {
	return &LogHandler{logs: logs}
}

// List godoc
// @Summary List processing logs for a student
// @Tags Logs
// @Produce json
// @Param id path string true "Student ID"
// @Param limit query int false "Max entries" default(100)
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id}/logs [get]
func (h *LogHandler) List(c *gin.Context) {
	teacher, ok := teacherID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	entries, err := h.logs.List(c.Request.Context(), c.Param("id"), teacher, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Clear godoc
// @Summary Delete a student's processing logs
// @Tags Logs
// @Param id path string true "Student ID"
// @Success 204
// @Security BearerAuth
// @Router /students/{id}/logs [delete]
func (h *LogHandler) Clear(c *gin.Context) {
	teacher, ok := teacherID(c)
	if !ok {
		return
	}
	if err := h.logs.Clear(c.Request.Context(), c.Param("id"), teacher); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
