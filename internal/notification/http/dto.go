package http

import (
	"time"

	"github.com/clubworks/equipment-booking-backend/internal/notification"
	"github.com/clubworks/equipment-booking-backend/internal/pkg/request"
)

// ListNotificationsRequest defines query parameters for the bearer's inbox.
type ListNotificationsRequest struct {
	request.ListParams
	UnreadOnly bool `form:"unread_only"`
}

type NotificationResponse struct {
	ID        string     `json:"id"`
	ZoneID    string     `json:"zone_id"`
	BookingID string     `json:"booking_id"`
	Kind      string     `json:"kind"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
}

func NewNotificationResponse(n *notification.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		ZoneID:    n.ZoneID,
		BookingID: n.BookingID,
		Kind:      n.Kind,
		Title:     n.Title,
		Message:   n.Message,
		CreatedAt: n.CreatedAt,
		ReadAt:    n.ReadAt,
	}
}
