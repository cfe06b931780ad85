package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ravgen/rav-api/internal/dto"
	"github.com/ravgen/rav-api/internal/service"
	appErrors "github.com/ravgen/rav-api/pkg/errors"
	"github.com/ravgen/rav-api/pkg/response"
)

// ConfigurationHandler exposes teacher report settings.
type ConfigurationHandler struct {
	configurations *service.ConfigurationService
}

// NewConfigurationHandler constructs ConfigurationHandler.
func NewConfigurationHandler(configurations *service.ConfigurationService) *ConfigurationHandler {
	return &ConfigurationHandler{configurations: configurations}
}

// Get godoc
// @Summary Fetch the teacher's report settings
// @Tags Configuration
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /configuration [get]
func (h *ConfigurationHandler) Get(c *gin.Context) {
	teacher, ok := teacherID(c)
	if !ok {
		return
	}
	cfg, err := h.configurations.Get(c.Request.Context(), teacher)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cfg, nil)
}

// Upsert godoc
// @Summary Save the teacher's report settings
// @Tags Configuration
// @Accept json
// @Produce json
// @Param payload body dto.UpsertConfigurationRequest true "Settings"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /configuration [put]
func (h *ConfigurationHandler) Upsert(c *gin.Context) {
	teacher, ok := teacherID(c)
	if !ok {
		return
	}
	var req dto.UpsertConfigurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	cfg, err := h.configurations.Upsert(c.Request.Context(), teacher, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cfg, nil)
}
