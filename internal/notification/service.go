package notification

import (
	"context"
	"fmt"
	"log"

	"github.com/clubworks/equipment-booking-backend/internal/booking"
	"github.com/clubworks/equipment-booking-backend/internal/user"
	"github.com/clubworks/equipment-booking-backend/internal/zone"
)

// Service is the read side: the bearer's inbox.
type Service interface {
	List(ctx context.Context, filter Filter) ([]*Notification, int, error)
	MarkRead(ctx context.Context, id, callerID string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Notification, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) MarkRead(ctx context.Context, id, callerID string) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n.UserID != callerID {
		return ErrPermissionDenied
	}
	return s.repo.MarkRead(ctx, id)
}

// Dispatcher receives booking events, persists one notification per
// recipient, and sends email when the zone opted in. Everything here is
// best-effort; a failed row or mail never fails the booking operation.
type Dispatcher struct {
	repo     Repository
	users    user.Service
	zones    zone.Service
	settings booking.SettingsResolver
	email    EmailSender // nil disables email entirely
}

func NewDispatcher(repo Repository, users user.Service, zones zone.Service, settings booking.SettingsResolver, email EmailSender) *Dispatcher {
	return &Dispatcher{
		repo:     repo,
		users:    users,
		zones:    zones,
		settings: settings,
		email:    email,
	}
}

// Notify implements booking.Notifier.
func (d *Dispatcher) Notify(ctx context.Context, event booking.Event) error {
	recipients, err := d.recipients(ctx, event)
	if err != nil {
		return err
	}

	title, message := compose(event)

	emailEnabled := false
	if d.email != nil {
		settings, err := d.settings.GetSettings(ctx, event.Booking.ZoneID)
		if err != nil {
			log.Printf("resolve automation settings for zone %s failed: %v", event.Booking.ZoneID, err)
		} else {
			emailEnabled = settings.AutoEmail
		}
	}

	for _, userID := range recipients {
		n := &Notification{
			UserID:    userID,
			ZoneID:    event.Booking.ZoneID,
			BookingID: event.Booking.ID,
			Kind:      string(event.Kind),
			Title:     title,
			Message:   message,
		}
		if err := d.repo.Create(ctx, n); err != nil {
			log.Printf("persist notification for user %s failed: %v", userID, err)
			continue
		}

		if emailEnabled {
			d.sendEmail(ctx, userID, title, message)
		}
	}
	return nil
}

// recipients picks who hears about the event: new requests go to the zone's
// managers, everything else goes back to the requester.
func (d *Dispatcher) recipients(ctx context.Context, event booking.Event) ([]string, error) {
	if event.Kind == booking.EventRequested {
		return d.zones.ListManagerIDs(ctx, event.Booking.ZoneID)
	}
	return []string{event.Booking.RequesterID}, nil
}

func (d *Dispatcher) sendEmail(ctx context.Context, userID, subject, body string) {
	u, err := d.users.GetByID(ctx, userID)
	if err != nil {
		log.Printf("load user %s for email failed: %v", userID, err)
		return
	}
	name := u.Email
	if u.DisplayName != nil {
		name = *u.DisplayName
	}
	if err := d.email.Send(u.Email, name, subject, body); err != nil {
		log.Printf("send email to %s failed: %v", u.Email, err)
	}
}

func compose(event booking.Event) (title, message string) {
	b := event.Booking
	period := fmt.Sprintf("%s to %s",
		b.PickupAt.Format("Mon 2 Jan 15:04"), b.ReturnAt.Format("Mon 2 Jan 15:04"))

	switch event.Kind {
	case booking.EventRequested:
		title = fmt.Sprintf("New booking request for %s", b.EquipmentName)
		message = fmt.Sprintf("%s requested %s (%s), %s.",
			b.RequesterName, b.EquipmentName, b.Reference, period)

	case booking.EventApproved:
		title = fmt.Sprintf("Booking %s approved", b.Reference)
		message = fmt.Sprintf("Your booking of %s (%s) is approved.", b.EquipmentName, period)
		if event.Handover != nil && event.Handover.Previous != nil {
			message += fmt.Sprintf(" Collect from %s after their return at %s.",
				event.Handover.Previous.RequesterName,
				event.Handover.Previous.ReturnAt.Format("Mon 2 Jan 15:04"))
		}

	case booking.EventRejected:
		title = fmt.Sprintf("Booking %s rejected", b.Reference)
		message = fmt.Sprintf("Your booking of %s (%s) was rejected.", b.EquipmentName, period)
		if b.RejectionReason != nil {
			message += " Reason: " + *b.RejectionReason
		}

	case booking.EventCancelled:
		title = fmt.Sprintf("Booking %s cancelled", b.Reference)
		message = fmt.Sprintf("The booking of %s (%s) was cancelled.", b.EquipmentName, period)

	case booking.EventHandoverReminder:
		title = fmt.Sprintf("Pickup tomorrow: %s", b.EquipmentName)
		message = fmt.Sprintf("Your booking %s picks up at %s.",
			b.Reference, b.PickupAt.Format("Mon 2 Jan 15:04"))
		if event.Handover != nil && event.Handover.Previous != nil {
			message += fmt.Sprintf(" The current holder is %s.",
				event.Handover.Previous.RequesterName)
		}

	default:
		title = fmt.Sprintf("Booking %s updated", b.Reference)
		message = fmt.Sprintf("Booking of %s (%s) was updated.", b.EquipmentName, period)
	}
	return title, message
}
