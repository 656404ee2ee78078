package notification

import (
	"net/http"
	"time"

	"github.com/clubworks/equipment-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "notification not found")
	ErrPermissionDenied = apperror.New(http.StatusForbidden, "permission denied")
)

// Notification is one persisted message for one recipient. Email delivery is
// a side channel; the row is the record.
type Notification struct {
	ID        string
	UserID    string
	ZoneID    string
	BookingID string
	Kind      string
	Title     string
	Message   string
	CreatedAt time.Time
	ReadAt    *time.Time
}

type Filter struct {
	UserID     string
	UnreadOnly bool
	Page       int
	PageSize   int
}
