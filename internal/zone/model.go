package zone

import (
	"net/http"
	"time"

	"github.com/clubworks/equipment-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound          = apperror.New(http.StatusNotFound, "zone not found")
	ErrNameRequired      = apperror.New(http.StatusBadRequest, "zone name is required")
	ErrInvalidRole       = apperror.New(http.StatusBadRequest, "invalid member role")
	ErrUserAlreadyMember = apperror.New(http.StatusConflict, "user is already a member of this zone")
	ErrMemberNotFound    = apperror.New(http.StatusNotFound, "zone member not found")
	ErrPermissionDenied  = apperror.New(http.StatusForbidden, "permission denied")
)

// Zone represents a regional branch of the organization. Zones own equipment
// and are administered by zone managers.
type Zone struct {
	ID        string // UUID
	Name      string
	Region    string
	IsActive  bool
	CreatedAt time.Time
}

// Filter defines filter options for listing zones.
type Filter struct {
	Page     int
	PageSize int
}

// Roles matching the zone_permissions role enum.
const (
	RoleManager = "manager"
	RoleMember  = "member"
)

// Member represents a user with a role within a zone.
// It joins data from zone_permissions and users tables.
type Member struct {
	UserID      string
	Email       string
	DisplayName *string
	Role        string
}

// MemberFilter defines filter options for listing members.
type MemberFilter struct {
	Page     int
	PageSize int
}
