package booking

import (
	"fmt"
	"net/http"
	"time"

	"github.com/clubworks/equipment-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound               = apperror.New(http.StatusNotFound, "booking not found")
	ErrEquipmentNotFound      = apperror.New(http.StatusNotFound, "equipment not found")
	ErrInvalidRange           = apperror.New(http.StatusBadRequest, "return time must be after pickup time")
	ErrTimeConflict           = apperror.New(http.StatusConflict, "equipment is not available for the requested period")
	ErrInvalidTransition      = apperror.New(http.StatusConflict, "booking status does not allow this action")
	ErrPermissionDenied       = apperror.New(http.StatusForbidden, "permission denied")
	ErrReasonRequired         = apperror.New(http.StatusBadRequest, "a rejection reason is required")
	ErrConcurrentModification = apperror.New(http.StatusConflict, "booking conflicts with a concurrent request, please retry")
	ErrEquipmentInactive      = apperror.New(http.StatusBadRequest, "equipment is not active")
	ErrPickupInPast           = apperror.New(http.StatusBadRequest, "cannot book a pickup in the past")
	ErrInvalidInput           = apperror.New(http.StatusBadRequest, "invalid input parameters")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusConfirmed Status = "confirmed"
	StatusPickedUp  Status = "picked_up"
	StatusInUse     Status = "in_use"
	StatusCancelled Status = "cancelled"
)

// Action is a lifecycle operation attempted against a booking.
type Action string

const (
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionCancel   Action = "cancel"
	ActionConfirm  Action = "confirm"
	ActionPickup   Action = "pickup"
	ActionActivate Action = "activate"
)

// transitions is the full lifecycle table. Cancellation (and rejection, which
// is a cancel with a kept reason) is legal from every non-terminal status.
var transitions = map[Status]map[Action]Status{
	StatusPending: {
		ActionApprove: StatusApproved,
		ActionReject:  StatusCancelled,
		ActionCancel:  StatusCancelled,
	},
	StatusApproved: {
		ActionConfirm: StatusConfirmed,
		ActionCancel:  StatusCancelled,
	},
	StatusConfirmed: {
		ActionPickup: StatusPickedUp,
		ActionCancel: StatusCancelled,
	},
	StatusPickedUp: {
		ActionActivate: StatusInUse,
		ActionCancel:   StatusCancelled,
	},
	StatusInUse: {
		ActionCancel: StatusCancelled,
	},
}

// NextStatus returns the status reached by applying action to current,
// or an InvalidTransitionError when the table has no such edge.
func NextStatus(current Status, action Action) (Status, error) {
	if next, ok := transitions[current][action]; ok {
		return next, nil
	}
	return "", &InvalidTransitionError{Current: current, Action: action}
}

// Booking is one reservation of a single equipment unit for a date range.
// Cancelled bookings stay in the table; every availability and chain read
// filters them out.
type Booking struct {
	ID              string
	Reference       string // human-readable, e.g. EQ-20260314-a1b2c3d4
	EquipmentID     string
	EquipmentName   string
	ZoneID          string
	ZoneName        string
	RequesterID     string
	RequesterName   string
	PickupAt        time.Time
	ReturnAt        time.Time
	Status          Status
	Purpose         string
	AutoApproved    bool
	ApprovedBy      *string
	ApprovedAt      *time.Time
	RejectionReason *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Range returns the booking's reservation interval.
func (b *Booking) Range() DateRange {
	return DateRange{PickupAt: b.PickupAt, ReturnAt: b.ReturnAt}
}

// IsLive reports whether the booking still occupies its slot.
func (b *Booking) IsLive() bool {
	return b.Status != StatusCancelled
}

type Filter struct {
	RequesterID string
	EquipmentID string
	ZoneID      string
	Status      string
	From        *time.Time // bookings returning at or after this time
	To          *time.Time // bookings picking up at or before this time
	Page        int
	PageSize    int
	SortOrder   string
}

// AvailabilityResult is the outcome of an availability check. When the
// request does not fit, Conflicts holds the live bookings that blocked it.
type AvailabilityResult struct {
	Available bool
	Conflicts []*Booking
}

// HandoverView describes a booking's neighbors in its equipment's chain.
// Previous is nil for the first pickup, Next is nil for the last.
type HandoverView struct {
	Previous     *Booking
	Current      *Booking
	Next         *Booking
	Position     int // 1-based position in the chain
	TotalInChain int
}

// ConflictError reports the live bookings that block a create. It unwraps to
// ErrTimeConflict so generic handlers still map it to 409.
type ConflictError struct {
	Conflicts []*Booking
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("equipment unavailable: %d conflicting booking(s)", len(e.Conflicts))
}

func (e *ConflictError) Unwrap() error {
	return ErrTimeConflict
}

// InvalidTransitionError reports a lifecycle action applied to a status that
// does not allow it. It unwraps to ErrInvalidTransition for generic mapping.
type InvalidTransitionError struct {
	Current Status
	Action  Action
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s a booking in status %q", e.Action, e.Current)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}
