package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clubworks/equipment-booking-backend/internal/auth"
	"github.com/clubworks/equipment-booking-backend/internal/booking"
	"github.com/clubworks/equipment-booking-backend/internal/pkg/response"
)

type Handler struct {
	service booking.Service
}

func NewHandler(service booking.Service) *Handler {
	return &Handler{service: service}
}

// sendError maps booking errors to JSON, attaching the conflicting bookings
// or the refused transition where the error carries them.
func sendError(c *gin.Context, err error) {
	var conflictErr *booking.ConflictError
	if errors.As(err, &conflictErr) {
		c.JSON(http.StatusConflict, gin.H{
			"error":     conflictErr.Error(),
			"conflicts": newBookingResponses(conflictErr.Conflicts),
		})
		return
	}

	var transitionErr *booking.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		c.JSON(http.StatusConflict, gin.H{
			"error":  transitionErr.Error(),
			"status": string(transitionErr.Current),
			"action": string(transitionErr.Action),
		})
		return
	}

	response.Error(c, err)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := req.Validate(); err != nil {
		sendError(c, err)
		return
	}

	b, err := h.service.Create(c.Request.Context(), booking.CreateRequest{
		RequesterID: auth.GetUserID(c),
		EquipmentID: req.EquipmentID,
		PickupAt:    req.PickupAt,
		ReturnAt:    req.ReturnAt,
		Purpose:     req.Purpose,
	})
	if err != nil {
		sendError(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

func (h *Handler) Get(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		sendError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) List(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		sendError(c, err)
		return
	}

	bookings, total, err := h.service.List(c.Request.Context(), booking.Filter{
		RequesterID: req.RequesterID,
		EquipmentID: req.EquipmentID,
		ZoneID:      req.ZoneID,
		Status:      req.Status,
		From:        req.From,
		To:          req.To,
		Page:        req.Page,
		PageSize:    req.PageSize,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		sendError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.NewPageResponse(
		newBookingResponses(bookings), req.Page, req.PageSize, total))
}

func (h *Handler) GetHandover(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	view, err := h.service.GetHandoverChain(c.Request.Context(), id, auth.GetUserID(c))
	if err != nil {
		sendError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewHandoverResponse(view))
}

func (h *Handler) CheckAvailability(c *gin.Context) {
	equipmentID := c.Param("id")
	if _, err := uuid.Parse(equipmentID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	var req WindowRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}

	result, err := h.service.CheckAvailability(c.Request.Context(), equipmentID,
		booking.DateRange{PickupAt: req.Start, ReturnAt: req.End}, req.ExcludeBookingID)
	if err != nil {
		sendError(c, err)
		return
	}

	c.JSON(http.StatusOK, AvailabilityResponse{
		Available: result.Available,
		Conflicts: newBookingResponses(result.Conflicts),
	})
}

func (h *Handler) GetChain(c *gin.Context) {
	equipmentID := c.Param("id")
	if _, err := uuid.Parse(equipmentID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	var req WindowRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}

	chain, err := h.service.GetChain(c.Request.Context(), equipmentID,
		booking.DateRange{PickupAt: req.Start, ReturnAt: req.End})
	if err != nil {
		sendError(c, err)
		return
	}

	c.JSON(http.StatusOK, ChainResponse{Bookings: newBookingResponses(chain)})
}

func (h *Handler) Approve(c *gin.Context) {
	h.lifecycle(c, func(id, callerID string) (*booking.Booking, error) {
		return h.service.Approve(c.Request.Context(), id, callerID)
	})
}

func (h *Handler) Reject(c *gin.Context) {
	var req RejectBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, booking.ErrReasonRequired)
		return
	}

	h.lifecycle(c, func(id, callerID string) (*booking.Booking, error) {
		return h.service.Reject(c.Request.Context(), id, callerID, req.Reason)
	})
}

func (h *Handler) Cancel(c *gin.Context) {
	h.lifecycle(c, func(id, callerID string) (*booking.Booking, error) {
		return h.service.Cancel(c.Request.Context(), id, callerID)
	})
}

func (h *Handler) Confirm(c *gin.Context) {
	h.lifecycle(c, func(id, callerID string) (*booking.Booking, error) {
		return h.service.Confirm(c.Request.Context(), id, callerID)
	})
}

func (h *Handler) MarkPickedUp(c *gin.Context) {
	h.lifecycle(c, func(id, callerID string) (*booking.Booking, error) {
		return h.service.MarkPickedUp(c.Request.Context(), id, callerID)
	})
}

func (h *Handler) MarkInUse(c *gin.Context) {
	h.lifecycle(c, func(id, callerID string) (*booking.Booking, error) {
		return h.service.MarkInUse(c.Request.Context(), id, callerID)
	})
}

func (h *Handler) lifecycle(c *gin.Context, op func(id, callerID string) (*booking.Booking, error)) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	b, err := op(id, auth.GetUserID(c))
	if err != nil {
		sendError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}
