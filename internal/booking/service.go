package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/clubworks/equipment-booking-backend/internal/automation"
	"github.com/clubworks/equipment-booking-backend/internal/equipment"
)

// createAttempts bounds the retry loop around serializable create conflicts.
const createAttempts = 3

// EventKind identifies a lifecycle notification.
type EventKind string

const (
	EventRequested        EventKind = "booking_requested"
	EventApproved         EventKind = "booking_approved"
	EventRejected         EventKind = "booking_rejected"
	EventCancelled        EventKind = "booking_cancelled"
	EventHandoverReminder EventKind = "handover_reminder"
)

// Event is the payload handed to the Notifier after a state change.
// Handover is set when the chain neighbors are relevant to the message.
type Event struct {
	Kind     EventKind
	Booking  *Booking
	Handover *HandoverView
}

// Notifier delivers booking events. Implementations are best-effort; the
// service logs returned errors and never fails the state change.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// EquipmentProvider is the slice of the equipment service the scheduler needs.
type EquipmentProvider interface {
	GetByID(ctx context.Context, id string) (*equipment.Item, error)
}

// ZoneAuthorizer answers the single authorization question the lifecycle asks.
type ZoneAuthorizer interface {
	IsZoneManager(ctx context.Context, zoneID, userID string) (bool, error)
}

// SettingsResolver supplies the zone's automation toggles at call time.
type SettingsResolver interface {
	GetSettings(ctx context.Context, zoneID string) (automation.Settings, error)
}

type CreateRequest struct {
	RequesterID string
	EquipmentID string
	PickupAt    time.Time
	ReturnAt    time.Time
	Purpose     string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Booking, error)
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)

	// CheckAvailability is a pure read: it never blocks a slot.
	CheckAvailability(ctx context.Context, equipmentID string, rng DateRange, excludeBookingID string) (*AvailabilityResult, error)

	// GetChain returns the live bookings overlapping the window, in
	// handover order.
	GetChain(ctx context.Context, equipmentID string, rng DateRange) ([]*Booking, error)

	// GetHandoverChain locates the booking inside its equipment's full
	// chain. Callable by the requester or a zone manager.
	GetHandoverChain(ctx context.Context, bookingID, callerID string) (*HandoverView, error)

	Approve(ctx context.Context, id, approverID string) (*Booking, error)
	Reject(ctx context.Context, id, managerID, reason string) (*Booking, error)
	Cancel(ctx context.Context, id, callerID string) (*Booking, error)
	Confirm(ctx context.Context, id, managerID string) (*Booking, error)
	MarkPickedUp(ctx context.Context, id, managerID string) (*Booking, error)
	MarkInUse(ctx context.Context, id, managerID string) (*Booking, error)

	// RemindUpcomingHandovers notifies holders of approved or confirmed
	// bookings picking up within the next 24 hours. Returns how many
	// reminders were emitted.
	RemindUpcomingHandovers(ctx context.Context) (int, error)
}

type service struct {
	repo      Repository
	equipment EquipmentProvider
	zones     ZoneAuthorizer
	settings  SettingsResolver
	notifier  Notifier
	now       func() time.Time
}

func NewService(repo Repository, equipmentProvider EquipmentProvider, zones ZoneAuthorizer, settings SettingsResolver, notifier Notifier) Service {
	return &service{
		repo:      repo,
		equipment: equipmentProvider,
		zones:     zones,
		settings:  settings,
		notifier:  notifier,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// newReference builds the human-readable booking reference,
// e.g. EQ-20260314-a1b2c3d4.
func newReference(pickupAt time.Time) string {
	return fmt.Sprintf("EQ-%s-%s", pickupAt.UTC().Format("20060102"), uuid.New().String()[:8])
}

func (s *service) notify(ctx context.Context, event Event) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, event); err != nil {
		log.Printf("notify %s for booking %s failed: %v", event.Kind, event.Booking.ID, err)
	}
}

func (s *service) getItem(ctx context.Context, equipmentID string) (*equipment.Item, error) {
	item, err := s.equipment.GetByID(ctx, equipmentID)
	if err != nil {
		if errors.Is(err, equipment.ErrNotFound) {
			return nil, ErrEquipmentNotFound
		}
		return nil, err
	}
	return item, nil
}

func (s *service) requireManager(ctx context.Context, zoneID, userID string) error {
	ok, err := s.zones.IsZoneManager(ctx, zoneID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPermissionDenied
	}
	return nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	rng := DateRange{PickupAt: req.PickupAt, ReturnAt: req.ReturnAt}
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	if req.PickupAt.Before(s.now()) {
		return nil, ErrPickupInPast
	}
	if req.RequesterID == "" || req.EquipmentID == "" {
		return nil, ErrInvalidInput
	}

	item, err := s.getItem(ctx, req.EquipmentID)
	if err != nil {
		return nil, err
	}
	if !item.IsActive {
		return nil, ErrEquipmentInactive
	}

	settings, err := s.settings.GetSettings(ctx, item.ZoneID)
	if err != nil {
		return nil, err
	}

	b := &Booking{
		Reference:     newReference(req.PickupAt),
		EquipmentID:   req.EquipmentID,
		EquipmentName: item.Name,
		ZoneID:        item.ZoneID,
		ZoneName:      item.ZoneName,
		RequesterID:   req.RequesterID,
		PickupAt:      req.PickupAt,
		ReturnAt:      req.ReturnAt,
		Status:        StatusPending,
		Purpose:       req.Purpose,
	}
	if settings.AutoApproval {
		now := s.now()
		b.Status = StatusApproved
		b.AutoApproved = true
		b.ApprovedAt = &now
	}

	// The availability check runs inside the same serializable transaction
	// as the insert, so two racing requests for the last unit cannot both
	// commit. One of them retries and sees the other's row.
	for attempt := 0; attempt < createAttempts; attempt++ {
		conflicts, err := s.repo.CreateIfAvailable(ctx, b, item.Quantity)
		if err != nil {
			if IsSerializationFailure(err) {
				continue
			}
			return nil, err
		}
		if len(conflicts) > 0 {
			return nil, &ConflictError{Conflicts: conflicts}
		}

		s.notify(ctx, Event{Kind: EventRequested, Booking: b})
		if b.AutoApproved {
			s.notify(ctx, Event{Kind: EventApproved, Booking: b, Handover: s.handoverOf(ctx, b)})
		}
		return b, nil
	}
	return nil, ErrConcurrentModification
}

func (s *service) GetByID(ctx context.Context, id string) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) CheckAvailability(ctx context.Context, equipmentID string, rng DateRange, excludeBookingID string) (*AvailabilityResult, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	item, err := s.getItem(ctx, equipmentID)
	if err != nil {
		return nil, err
	}

	live, err := s.repo.ListLiveOverlapping(ctx, equipmentID, rng)
	if err != nil {
		return nil, err
	}
	if excludeBookingID != "" {
		filtered := live[:0]
		for _, b := range live {
			if b.ID != excludeBookingID {
				filtered = append(filtered, b)
			}
		}
		live = filtered
	}

	conflicts := conflictsFor(rng, live, item.Quantity)
	return &AvailabilityResult{
		Available: len(conflicts) == 0,
		Conflicts: conflicts,
	}, nil
}

func (s *service) GetChain(ctx context.Context, equipmentID string, rng DateRange) ([]*Booking, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.getItem(ctx, equipmentID); err != nil {
		return nil, err
	}

	chain, err := s.repo.ListLiveOverlapping(ctx, equipmentID, rng)
	if err != nil {
		return nil, err
	}
	SortChain(chain)
	return chain, nil
}

func (s *service) GetHandoverChain(ctx context.Context, bookingID, callerID string) (*HandoverView, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.requireManager(ctx, b.ZoneID, callerID); err != nil {
		return nil, err
	}

	return s.resolveHandover(ctx, b)
}

// resolveHandover recomputes the equipment's full chain and positions b in it.
func (s *service) resolveHandover(ctx context.Context, b *Booking) (*HandoverView, error) {
	chain, err := s.repo.ListLiveByEquipment(ctx, b.EquipmentID)
	if err != nil {
		return nil, err
	}
	SortChain(chain)

	prev, current, next, position := neighbors(chain, b.ID)
	if current == nil {
		// The booking was cancelled between the load and the chain read.
		return &HandoverView{Current: b, TotalInChain: len(chain)}, nil
	}
	return &HandoverView{
		Previous:     prev,
		Current:      current,
		Next:         next,
		Position:     position,
		TotalInChain: len(chain),
	}, nil
}

// handoverOf is the best-effort variant used for notification payloads.
func (s *service) handoverOf(ctx context.Context, b *Booking) *HandoverView {
	view, err := s.resolveHandover(ctx, b)
	if err != nil {
		log.Printf("resolve handover for booking %s failed: %v", b.ID, err)
		return nil
	}
	return view
}

// advance applies action to the booking after the permission check ran.
func (s *service) advance(ctx context.Context, b *Booking, action Action) error {
	next, err := NextStatus(b.Status, action)
	if err != nil {
		return err
	}
	b.Status = next
	return s.repo.UpdateStatus(ctx, b)
}

func (s *service) Approve(ctx context.Context, id, approverID string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireManager(ctx, b.ZoneID, approverID); err != nil {
		return nil, err
	}

	now := s.now()
	b.ApprovedBy = &approverID
	b.ApprovedAt = &now
	if err := s.advance(ctx, b, ActionApprove); err != nil {
		return nil, err
	}

	s.notify(ctx, Event{Kind: EventApproved, Booking: b, Handover: s.handoverOf(ctx, b)})
	return b, nil
}

func (s *service) Reject(ctx context.Context, id, managerID, reason string) (*Booking, error) {
	if reason == "" {
		return nil, ErrReasonRequired
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireManager(ctx, b.ZoneID, managerID); err != nil {
		return nil, err
	}
	if b.Status != StatusPending {
		return nil, &InvalidTransitionError{Current: b.Status, Action: ActionReject}
	}

	b.RejectionReason = &reason
	if err := s.advance(ctx, b, ActionReject); err != nil {
		return nil, err
	}

	s.notify(ctx, Event{Kind: EventRejected, Booking: b})
	return b, nil
}

func (s *service) Cancel(ctx context.Context, id, callerID string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.RequesterID != callerID {
		if err := s.requireManager(ctx, b.ZoneID, callerID); err != nil {
			return nil, err
		}
	}

	if err := s.advance(ctx, b, ActionCancel); err != nil {
		return nil, err
	}

	s.notify(ctx, Event{Kind: EventCancelled, Booking: b})
	return b, nil
}

func (s *service) Confirm(ctx context.Context, id, managerID string) (*Booking, error) {
	return s.managerAdvance(ctx, id, managerID, ActionConfirm)
}

func (s *service) MarkPickedUp(ctx context.Context, id, managerID string) (*Booking, error) {
	return s.managerAdvance(ctx, id, managerID, ActionPickup)
}

func (s *service) MarkInUse(ctx context.Context, id, managerID string) (*Booking, error) {
	return s.managerAdvance(ctx, id, managerID, ActionActivate)
}

func (s *service) managerAdvance(ctx context.Context, id, managerID string, action Action) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireManager(ctx, b.ZoneID, managerID); err != nil {
		return nil, err
	}
	if err := s.advance(ctx, b, action); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) RemindUpcomingHandovers(ctx context.Context) (int, error) {
	from := s.now()
	to := from.Add(24 * time.Hour)

	upcoming, err := s.repo.ListUpcomingPickups(ctx, from, to)
	if err != nil {
		return 0, err
	}

	for _, b := range upcoming {
		s.notify(ctx, Event{Kind: EventHandoverReminder, Booking: b, Handover: s.handoverOf(ctx, b)})
	}
	return len(upcoming), nil
}
