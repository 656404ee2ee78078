package http

import (
	"time"

	"github.com/clubworks/equipment-booking-backend/internal/booking"
	eqHttp "github.com/clubworks/equipment-booking-backend/internal/equipment/http"
	"github.com/clubworks/equipment-booking-backend/internal/pkg/request"
	userHttp "github.com/clubworks/equipment-booking-backend/internal/user/http"
	zoneHttp "github.com/clubworks/equipment-booking-backend/internal/zone/http"
)

// ListBookingsRequest defines query parameters for listing bookings.
type ListBookingsRequest struct {
	request.ListParams
	EquipmentID string     `form:"equipment_id" binding:"omitempty,uuid"`
	ZoneID      string     `form:"zone_id" binding:"omitempty,uuid"`
	RequesterID string     `form:"requester_id" binding:"omitempty,uuid"`
	Status      string     `form:"status" binding:"omitempty,oneof=pending approved confirmed picked_up in_use cancelled"`
	From        *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To          *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

// Validate performs custom validation for ListBookingsRequest.
func (r *ListBookingsRequest) Validate() error {
	if r.From != nil && r.To != nil && r.From.After(*r.To) {
		return booking.ErrInvalidRange
	}
	return nil
}

type BookingResponse struct {
	ID              string           `json:"id"`
	Reference       string           `json:"reference"`
	Equipment       eqHttp.ItemTag   `json:"equipment"`
	Zone            zoneHttp.ZoneTag `json:"zone"`
	Requester       userHttp.UserTag `json:"requester"`
	PickupAt        time.Time        `json:"pickup_at"`
	ReturnAt        time.Time        `json:"return_at"`
	Status          string           `json:"status"`
	Purpose         string           `json:"purpose,omitempty"`
	AutoApproved    bool             `json:"auto_approved"`
	ApprovedBy      *string          `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time       `json:"approved_at,omitempty"`
	RejectionReason *string          `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:              b.ID,
		Reference:       b.Reference,
		Equipment:       eqHttp.ItemTag{ID: b.EquipmentID, Name: b.EquipmentName},
		Zone:            zoneHttp.ZoneTag{ID: b.ZoneID, Name: b.ZoneName},
		Requester:       userHttp.UserTag{ID: b.RequesterID, Name: b.RequesterName},
		PickupAt:        b.PickupAt,
		ReturnAt:        b.ReturnAt,
		Status:          string(b.Status),
		Purpose:         b.Purpose,
		AutoApproved:    b.AutoApproved,
		ApprovedBy:      b.ApprovedBy,
		ApprovedAt:      b.ApprovedAt,
		RejectionReason: b.RejectionReason,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

type CreateBookingRequest struct {
	EquipmentID string    `json:"equipment_id" binding:"required,uuid"`
	PickupAt    time.Time `json:"pickup_at" binding:"required"`
	ReturnAt    time.Time `json:"return_at" binding:"required"`
	Purpose     string    `json:"purpose"`
}

// Validate performs custom validation for CreateBookingRequest.
func (r *CreateBookingRequest) Validate() error {
	if !r.ReturnAt.After(r.PickupAt) {
		return booking.ErrInvalidRange
	}
	return nil
}

// RejectBookingRequest is the payload for POST /v1/bookings/:id/reject.
type RejectBookingRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// WindowRequest defines the query window for availability and chain reads.
type WindowRequest struct {
	Start            time.Time `form:"start" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	End              time.Time `form:"end" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	ExcludeBookingID string    `form:"exclude_booking_id" binding:"omitempty,uuid"`
}

// AvailabilityResponse reports whether a window fits and what blocks it.
type AvailabilityResponse struct {
	Available bool              `json:"available"`
	Conflicts []BookingResponse `json:"conflicts"`
}

// ChainResponse is the ordered live bookings overlapping a window.
type ChainResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// HandoverResponse positions one booking inside its equipment's chain.
type HandoverResponse struct {
	Previous     *BookingResponse `json:"previous"`
	Current      BookingResponse  `json:"current"`
	Next         *BookingResponse `json:"next"`
	Position     int              `json:"position"`
	TotalInChain int              `json:"total_in_chain"`
}

func NewHandoverResponse(view *booking.HandoverView) HandoverResponse {
	resp := HandoverResponse{
		Current:      NewBookingResponse(view.Current),
		Position:     view.Position,
		TotalInChain: view.TotalInChain,
	}
	if view.Previous != nil {
		prev := NewBookingResponse(view.Previous)
		resp.Previous = &prev
	}
	if view.Next != nil {
		next := NewBookingResponse(view.Next)
		resp.Next = &next
	}
	return resp
}

func newBookingResponses(bookings []*booking.Booking) []BookingResponse {
	resp := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = NewBookingResponse(b)
	}
	return resp
}
