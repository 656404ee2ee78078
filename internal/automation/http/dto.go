package http

import (
	"time"

	"github.com/clubworks/equipment-booking-backend/internal/automation"
)

// SettingsResponse is the resolved toggle view for a zone.
type SettingsResponse struct {
	ZoneID       string `json:"zone_id"`
	AutoApproval bool   `json:"auto_approval"`
	AutoEmail    bool   `json:"auto_email"`
}

// UpdateSettingRequest is the payload for PUT /v1/zones/:id/automation/:type.
type UpdateSettingRequest struct {
	Enabled bool `json:"enabled"`
}

// SettingResponse is one stored toggle row.
type SettingResponse struct {
	ZoneID    string    `json:"zone_id"`
	Type      string    `json:"type"`
	Enabled   bool      `json:"enabled"`
	UpdatedBy string    `json:"updated_by"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewSettingResponse(s *automation.Setting) SettingResponse {
	return SettingResponse{
		ZoneID:    s.ZoneID,
		Type:      string(s.Type),
		Enabled:   s.Enabled,
		UpdatedBy: s.UpdatedBy,
		UpdatedAt: s.UpdatedAt,
	}
}
