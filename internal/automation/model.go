package automation

import (
	"net/http"
	"time"

	"github.com/clubworks/equipment-booking-backend/internal/pkg/apperror"
)

var (
	ErrInvalidSettingType = apperror.New(http.StatusBadRequest, "invalid automation setting type")
	ErrPermissionDenied   = apperror.New(http.StatusForbidden, "permission denied")
)

// SettingType identifies one automation toggle.
type SettingType string

const (
	// SettingAutoApproval makes new booking requests skip the manual
	// approval step and land directly in the approved state.
	SettingAutoApproval SettingType = "auto_approval"

	// SettingAutoEmail enables outbound email for booking notifications.
	SettingAutoEmail SettingType = "auto_email"
)

// Valid reports whether t is a known setting type.
func (t SettingType) Valid() bool {
	return t == SettingAutoApproval || t == SettingAutoEmail
}

// Setting is one persisted toggle for a zone. Zones without a stored row
// fall back to the default (disabled).
type Setting struct {
	ZoneID    string      `json:"zone_id"`
	Type      SettingType `json:"type"`
	Enabled   bool        `json:"enabled"`
	UpdatedBy string      `json:"updated_by"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Settings is the resolved view of every toggle for a zone.
type Settings struct {
	AutoApproval bool `json:"auto_approval"`
	AutoEmail    bool `json:"auto_email"`
}
