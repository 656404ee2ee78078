package notification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubworks/equipment-booking-backend/internal/automation"
	"github.com/clubworks/equipment-booking-backend/internal/booking"
	"github.com/clubworks/equipment-booking-backend/internal/user"
	"github.com/clubworks/equipment-booking-backend/internal/zone"
)

type fakeRepo struct {
	created []*Notification
	seq     int
}

func (r *fakeRepo) Create(_ context.Context, n *Notification) error {
	r.seq++
	n.ID = "n" + string(rune('0'+r.seq))
	copied := *n
	r.created = append(r.created, &copied)
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*Notification, error) {
	for _, n := range r.created {
		if n.ID == id {
			copied := *n
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (r *fakeRepo) List(_ context.Context, filter Filter) ([]*Notification, int, error) {
	var out []*Notification
	for _, n := range r.created {
		if n.UserID == filter.UserID {
			out = append(out, n)
		}
	}
	return out, len(out), nil
}

func (r *fakeRepo) MarkRead(_ context.Context, id string) error {
	return nil
}

type fakeUsers struct {
	user.Service
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	return &user.User{ID: id, Email: id + "@club.example"}, nil
}

type fakeZones struct {
	zone.Service
	managerIDs []string
}

func (f *fakeZones) ListManagerIDs(_ context.Context, _ string) ([]string, error) {
	return f.managerIDs, nil
}

type fakeSettings struct {
	autoEmail bool
}

func (f *fakeSettings) GetSettings(_ context.Context, _ string) (automation.Settings, error) {
	return automation.Settings{AutoEmail: f.autoEmail}, nil
}

type recordingSender struct {
	sent []string // recipient addresses
}

func (s *recordingSender) Send(to, _, _, _ string) error {
	s.sent = append(s.sent, to)
	return nil
}

func testBooking() *booking.Booking {
	return &booking.Booking{
		ID:            "b1",
		Reference:     "EQ-20260301-a1b2c3d4",
		EquipmentName: "Box Trailer",
		ZoneID:        "zone-1",
		RequesterID:   "alice",
		RequesterName: "Alice",
	}
}

func TestDispatcherRecipients(t *testing.T) {
	t.Run("new requests go to zone managers", func(t *testing.T) {
		repo := &fakeRepo{}
		d := NewDispatcher(repo, &fakeUsers{}, &fakeZones{managerIDs: []string{"m1", "m2"}}, &fakeSettings{}, nil)

		err := d.Notify(context.Background(), booking.Event{
			Kind:    booking.EventRequested,
			Booking: testBooking(),
		})
		require.NoError(t, err)

		require.Len(t, repo.created, 2)
		assert.Equal(t, "m1", repo.created[0].UserID)
		assert.Equal(t, "m2", repo.created[1].UserID)
		assert.Equal(t, string(booking.EventRequested), repo.created[0].Kind)
		assert.Equal(t, "b1", repo.created[0].BookingID)
	})

	t.Run("approvals go back to the requester", func(t *testing.T) {
		repo := &fakeRepo{}
		d := NewDispatcher(repo, &fakeUsers{}, &fakeZones{}, &fakeSettings{}, nil)

		err := d.Notify(context.Background(), booking.Event{
			Kind:    booking.EventApproved,
			Booking: testBooking(),
		})
		require.NoError(t, err)

		require.Len(t, repo.created, 1)
		assert.Equal(t, "alice", repo.created[0].UserID)
	})
}

func TestDispatcherEmail(t *testing.T) {
	t.Run("sends when the zone opted in", func(t *testing.T) {
		sender := &recordingSender{}
		d := NewDispatcher(&fakeRepo{}, &fakeUsers{}, &fakeZones{}, &fakeSettings{autoEmail: true}, sender)

		err := d.Notify(context.Background(), booking.Event{
			Kind:    booking.EventApproved,
			Booking: testBooking(),
		})
		require.NoError(t, err)

		assert.Equal(t, []string{"alice@club.example"}, sender.sent)
	})

	t.Run("skips mail when the toggle is off", func(t *testing.T) {
		sender := &recordingSender{}
		d := NewDispatcher(&fakeRepo{}, &fakeUsers{}, &fakeZones{}, &fakeSettings{autoEmail: false}, sender)

		err := d.Notify(context.Background(), booking.Event{
			Kind:    booking.EventApproved,
			Booking: testBooking(),
		})
		require.NoError(t, err)

		assert.Empty(t, sender.sent)
	})
}

func TestCompose(t *testing.T) {
	b := testBooking()
	reason := "trailer needed for maintenance"
	b.RejectionReason = &reason

	title, message := compose(booking.Event{Kind: booking.EventRejected, Booking: b})

	assert.Contains(t, title, b.Reference)
	assert.Contains(t, message, reason)
}

func TestServiceMarkRead(t *testing.T) {
	repo := &fakeRepo{}
	require.NoError(t, repo.Create(context.Background(), &Notification{UserID: "alice"}))
	svc := NewService(repo)

	t.Run("owner can mark read", func(t *testing.T) {
		assert.NoError(t, svc.MarkRead(context.Background(), repo.created[0].ID, "alice"))
	})

	t.Run("others are denied", func(t *testing.T) {
		err := svc.MarkRead(context.Background(), repo.created[0].ID, "bob")
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})
}
