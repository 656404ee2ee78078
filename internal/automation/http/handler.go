package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clubworks/equipment-booking-backend/internal/auth"
	"github.com/clubworks/equipment-booking-backend/internal/automation"
	"github.com/clubworks/equipment-booking-backend/internal/pkg/response"
)

type Handler struct {
	service automation.Service
}

func NewHandler(service automation.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetSettings(c *gin.Context) {
	zoneID := c.Param("id")
	if _, err := uuid.Parse(zoneID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	settings, err := h.service.GetSettings(c.Request.Context(), zoneID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, SettingsResponse{
		ZoneID:       zoneID,
		AutoApproval: settings.AutoApproval,
		AutoEmail:    settings.AutoEmail,
	})
}

func (h *Handler) UpdateSetting(c *gin.Context) {
	zoneID := c.Param("id")
	if _, err := uuid.Parse(zoneID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	var req UpdateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	setting, err := h.service.SetSetting(
		c.Request.Context(),
		zoneID,
		automation.SettingType(c.Param("type")),
		req.Enabled,
		auth.GetUserID(c),
	)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewSettingResponse(setting))
}
