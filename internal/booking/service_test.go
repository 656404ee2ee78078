package booking

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubworks/equipment-booking-backend/internal/automation"
	"github.com/clubworks/equipment-booking-backend/internal/equipment"
)

// fakeRepo is an in-memory Repository reusing the same capacity logic as the
// pgx implementation.
type fakeRepo struct {
	mu       sync.Mutex
	bookings map[string]*Booking
	seq      int

	// failCreates makes the next N CreateIfAvailable calls fail with a
	// serialization error before touching state.
	failCreates int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{bookings: make(map[string]*Booking)}
}

func serializationErr() error {
	return &pgconn.PgError{Code: pgerrcode.SerializationFailure}
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *fakeRepo) List(_ context.Context, filter Filter) ([]*Booking, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Booking
	for _, b := range r.bookings {
		if filter.EquipmentID != "" && b.EquipmentID != filter.EquipmentID {
			continue
		}
		if filter.RequesterID != "" && b.RequesterID != filter.RequesterID {
			continue
		}
		if filter.Status != "" && string(b.Status) != filter.Status {
			continue
		}
		copied := *b
		out = append(out, &copied)
	}
	SortChain(out)
	return out, len(out), nil
}

func (r *fakeRepo) ListLiveByEquipment(_ context.Context, equipmentID string) ([]*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.liveLocked(equipmentID)
	SortChain(out)
	return out, nil
}

func (r *fakeRepo) liveLocked(equipmentID string) []*Booking {
	var out []*Booking
	for _, b := range r.bookings {
		if b.EquipmentID == equipmentID && b.IsLive() {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out
}

func (r *fakeRepo) ListLiveOverlapping(_ context.Context, equipmentID string, rng DateRange) ([]*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Booking
	for _, b := range r.liveLocked(equipmentID) {
		if b.Range().Overlaps(rng) {
			out = append(out, b)
		}
	}
	SortChain(out)
	return out, nil
}

func (r *fakeRepo) CreateIfAvailable(_ context.Context, b *Booking, quantity int) ([]*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failCreates > 0 {
		r.failCreates--
		return nil, serializationErr()
	}

	var live []*Booking
	for _, existing := range r.liveLocked(b.EquipmentID) {
		if existing.Range().Overlaps(b.Range()) {
			live = append(live, existing)
		}
	}
	if conflicts := conflictsFor(b.Range(), live, quantity); len(conflicts) > 0 {
		return conflicts, nil
	}

	r.seq++
	b.ID = fmt.Sprintf("booking-%d", r.seq)
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	copied := *b
	r.bookings[b.ID] = &copied
	return nil, nil
}

func (r *fakeRepo) UpdateStatus(_ context.Context, b *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.bookings[b.ID]
	if !ok {
		return ErrNotFound
	}
	stored.Status = b.Status
	stored.ApprovedBy = b.ApprovedBy
	stored.ApprovedAt = b.ApprovedAt
	stored.RejectionReason = b.RejectionReason
	return nil
}

func (r *fakeRepo) ListUpcomingPickups(_ context.Context, from, to time.Time) ([]*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Booking
	for _, b := range r.bookings {
		if b.Status != StatusApproved && b.Status != StatusConfirmed {
			continue
		}
		if b.PickupAt.Before(from) || !b.PickupAt.Before(to) {
			continue
		}
		copied := *b
		out = append(out, &copied)
	}
	SortChain(out)
	return out, nil
}

type fakeEquipment struct {
	items map[string]*equipment.Item
}

func (f *fakeEquipment) GetByID(_ context.Context, id string) (*equipment.Item, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, equipment.ErrNotFound
	}
	return item, nil
}

type fakeZones struct {
	managers map[string]bool // "zoneID/userID" -> true
}

func (f *fakeZones) IsZoneManager(_ context.Context, zoneID, userID string) (bool, error) {
	return f.managers[zoneID+"/"+userID], nil
}

type fakeSettings struct {
	settings map[string]automation.Settings
}

func (f *fakeSettings) GetSettings(_ context.Context, zoneID string) (automation.Settings, error) {
	return f.settings[zoneID], nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (n *recordingNotifier) Notify(_ context.Context, event Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *recordingNotifier) kinds() []EventKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]EventKind, len(n.events))
	for i, e := range n.events {
		out[i] = e.Kind
	}
	return out
}

type fixture struct {
	repo     *fakeRepo
	items    *fakeEquipment
	zones    *fakeZones
	settings *fakeSettings
	notifier *recordingNotifier
	svc      *service
}

// newFixture builds a service over one zone with one trailer (quantity 1 by
// default) and a frozen clock well before the test booking dates.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		repo: newFakeRepo(),
		items: &fakeEquipment{items: map[string]*equipment.Item{
			"trailer-1": {
				ID:       "trailer-1",
				ZoneID:   "zone-1",
				ZoneName: "North Zone",
				Name:     "Box Trailer",
				Quantity: 1,
				IsActive: true,
			},
		}},
		zones:    &fakeZones{managers: map[string]bool{"zone-1/manager": true}},
		settings: &fakeSettings{settings: map[string]automation.Settings{}},
		notifier: &recordingNotifier{},
	}

	svc := NewService(f.repo, f.items, f.zones, f.settings, f.notifier).(*service)
	svc.now = func() time.Time { return time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC) }
	f.svc = svc
	return f
}

func (f *fixture) create(t *testing.T, requester string, pickupDay, returnDay int) *Booking {
	t.Helper()
	b, err := f.svc.Create(context.Background(), CreateRequest{
		RequesterID: requester,
		EquipmentID: "trailer-1",
		PickupAt:    day(pickupDay),
		ReturnAt:    day(returnDay),
	})
	require.NoError(t, err)
	return b
}

func TestServiceCreate(t *testing.T) {
	t.Run("creates pending booking with reference", func(t *testing.T) {
		f := newFixture(t)

		b := f.create(t, "alice", 1, 3)

		assert.Equal(t, StatusPending, b.Status)
		assert.False(t, b.AutoApproved)
		assert.NotEmpty(t, b.ID)
		assert.Regexp(t, `^EQ-20260301-[0-9a-f]{8}$`, b.Reference)
		assert.Equal(t, "zone-1", b.ZoneID)
		assert.Equal(t, []EventKind{EventRequested}, f.notifier.kinds())
	})

	t.Run("auto approval skips the pending step", func(t *testing.T) {
		f := newFixture(t)
		f.settings.settings["zone-1"] = automation.Settings{AutoApproval: true}

		b := f.create(t, "alice", 1, 3)

		assert.Equal(t, StatusApproved, b.Status)
		assert.True(t, b.AutoApproved)
		require.NotNil(t, b.ApprovedAt)
		assert.Nil(t, b.ApprovedBy)
		assert.Equal(t, []EventKind{EventRequested, EventApproved}, f.notifier.kinds())
	})

	t.Run("rejects invalid range", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Create(context.Background(), CreateRequest{
			RequesterID: "alice",
			EquipmentID: "trailer-1",
			PickupAt:    day(3),
			ReturnAt:    day(1),
		})

		assert.ErrorIs(t, err, ErrInvalidRange)
	})

	t.Run("rejects pickup in the past", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Create(context.Background(), CreateRequest{
			RequesterID: "alice",
			EquipmentID: "trailer-1",
			PickupAt:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			ReturnAt:    time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
		})

		assert.ErrorIs(t, err, ErrPickupInPast)
	})

	t.Run("unknown equipment", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Create(context.Background(), CreateRequest{
			RequesterID: "alice",
			EquipmentID: "missing",
			PickupAt:    day(1),
			ReturnAt:    day(3),
		})

		assert.ErrorIs(t, err, ErrEquipmentNotFound)
	})

	t.Run("inactive equipment", func(t *testing.T) {
		f := newFixture(t)
		f.items.items["trailer-1"].IsActive = false

		_, err := f.svc.Create(context.Background(), CreateRequest{
			RequesterID: "alice",
			EquipmentID: "trailer-1",
			PickupAt:    day(1),
			ReturnAt:    day(3),
		})

		assert.ErrorIs(t, err, ErrEquipmentInactive)
	})

	t.Run("overlap returns conflict error with blockers", func(t *testing.T) {
		f := newFixture(t)
		existing := f.create(t, "alice", 1, 5)

		_, err := f.svc.Create(context.Background(), CreateRequest{
			RequesterID: "bob",
			EquipmentID: "trailer-1",
			PickupAt:    day(3),
			ReturnAt:    day(7),
		})

		var conflictErr *ConflictError
		require.ErrorAs(t, err, &conflictErr)
		require.Len(t, conflictErr.Conflicts, 1)
		assert.Equal(t, existing.ID, conflictErr.Conflicts[0].ID)
		assert.ErrorIs(t, err, ErrTimeConflict)
	})

	t.Run("back-to-back booking is legal", func(t *testing.T) {
		f := newFixture(t)
		f.create(t, "alice", 1, 3)

		b := f.create(t, "bob", 3, 5)

		assert.Equal(t, StatusPending, b.Status)
	})

	t.Run("second unit absorbs the overlap", func(t *testing.T) {
		f := newFixture(t)
		f.items.items["trailer-1"].Quantity = 2
		f.create(t, "alice", 1, 5)

		b := f.create(t, "bob", 3, 7)

		assert.Equal(t, StatusPending, b.Status)

		// A third concurrent request must fail.
		_, err := f.svc.Create(context.Background(), CreateRequest{
			RequesterID: "carol",
			EquipmentID: "trailer-1",
			PickupAt:    day(4),
			ReturnAt:    day(6),
		})
		var conflictErr *ConflictError
		require.ErrorAs(t, err, &conflictErr)
		assert.Len(t, conflictErr.Conflicts, 2)
	})

	t.Run("retries serialization failures", func(t *testing.T) {
		f := newFixture(t)
		f.repo.failCreates = 2

		b := f.create(t, "alice", 1, 3)

		assert.NotEmpty(t, b.ID)
	})

	t.Run("gives up after exhausted retries", func(t *testing.T) {
		f := newFixture(t)
		f.repo.failCreates = 3

		_, err := f.svc.Create(context.Background(), CreateRequest{
			RequesterID: "alice",
			EquipmentID: "trailer-1",
			PickupAt:    day(1),
			ReturnAt:    day(3),
		})

		assert.ErrorIs(t, err, ErrConcurrentModification)
	})
}

func TestServiceLifecycle(t *testing.T) {
	t.Run("full walk to in_use", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		b := f.create(t, "alice", 1, 3)

		b, err := f.svc.Approve(ctx, b.ID, "manager")
		require.NoError(t, err)
		assert.Equal(t, StatusApproved, b.Status)
		require.NotNil(t, b.ApprovedBy)
		assert.Equal(t, "manager", *b.ApprovedBy)

		b, err = f.svc.Confirm(ctx, b.ID, "manager")
		require.NoError(t, err)
		assert.Equal(t, StatusConfirmed, b.Status)

		b, err = f.svc.MarkPickedUp(ctx, b.ID, "manager")
		require.NoError(t, err)
		assert.Equal(t, StatusPickedUp, b.Status)

		b, err = f.svc.MarkInUse(ctx, b.ID, "manager")
		require.NoError(t, err)
		assert.Equal(t, StatusInUse, b.Status)
	})

	t.Run("approve requires zone manager", func(t *testing.T) {
		f := newFixture(t)
		b := f.create(t, "alice", 1, 3)

		_, err := f.svc.Approve(context.Background(), b.ID, "alice")

		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("approve twice is an invalid transition", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		b := f.create(t, "alice", 1, 3)

		_, err := f.svc.Approve(ctx, b.ID, "manager")
		require.NoError(t, err)

		_, err = f.svc.Approve(ctx, b.ID, "manager")
		var transitionErr *InvalidTransitionError
		require.ErrorAs(t, err, &transitionErr)
		assert.Equal(t, StatusApproved, transitionErr.Current)
		assert.Equal(t, ActionApprove, transitionErr.Action)
	})

	t.Run("reject requires a reason", func(t *testing.T) {
		f := newFixture(t)
		b := f.create(t, "alice", 1, 3)

		_, err := f.svc.Reject(context.Background(), b.ID, "manager", "")

		assert.ErrorIs(t, err, ErrReasonRequired)
	})

	t.Run("reject cancels and keeps the reason", func(t *testing.T) {
		f := newFixture(t)
		b := f.create(t, "alice", 1, 3)

		b, err := f.svc.Reject(context.Background(), b.ID, "manager", "double booked for the event")
		require.NoError(t, err)

		assert.Equal(t, StatusCancelled, b.Status)
		require.NotNil(t, b.RejectionReason)
		assert.Equal(t, "double booked for the event", *b.RejectionReason)
		assert.Contains(t, f.notifier.kinds(), EventRejected)
	})

	t.Run("reject only applies to pending", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		b := f.create(t, "alice", 1, 3)
		_, err := f.svc.Approve(ctx, b.ID, "manager")
		require.NoError(t, err)

		_, err = f.svc.Reject(ctx, b.ID, "manager", "too late")

		var transitionErr *InvalidTransitionError
		assert.ErrorAs(t, err, &transitionErr)
	})

	t.Run("requester can cancel own booking", func(t *testing.T) {
		f := newFixture(t)
		b := f.create(t, "alice", 1, 3)

		b, err := f.svc.Cancel(context.Background(), b.ID, "alice")
		require.NoError(t, err)

		assert.Equal(t, StatusCancelled, b.Status)
	})

	t.Run("stranger cannot cancel", func(t *testing.T) {
		f := newFixture(t)
		b := f.create(t, "alice", 1, 3)

		_, err := f.svc.Cancel(context.Background(), b.ID, "mallory")

		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("cancel from in_use is legal", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		b := f.create(t, "alice", 1, 3)
		for _, step := range []func(context.Context, string, string) (*Booking, error){
			f.svc.Approve, f.svc.Confirm, f.svc.MarkPickedUp, f.svc.MarkInUse,
		} {
			var err error
			b, err = step(ctx, b.ID, "manager")
			require.NoError(t, err)
		}

		b, err := f.svc.Cancel(ctx, b.ID, "manager")
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, b.Status)
	})

	t.Run("cancelled slot frees up immediately", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		b := f.create(t, "alice", 1, 5)
		_, err := f.svc.Cancel(ctx, b.ID, "alice")
		require.NoError(t, err)

		second := f.create(t, "bob", 2, 4)
		assert.Equal(t, StatusPending, second.Status)
	})
}

func TestServiceAvailability(t *testing.T) {
	t.Run("reports conflicts without blocking", func(t *testing.T) {
		f := newFixture(t)
		existing := f.create(t, "alice", 1, 5)

		result, err := f.svc.CheckAvailability(context.Background(), "trailer-1", rng(3, 7), "")
		require.NoError(t, err)

		assert.False(t, result.Available)
		require.Len(t, result.Conflicts, 1)
		assert.Equal(t, existing.ID, result.Conflicts[0].ID)
	})

	t.Run("straddling a handover lists both holders", func(t *testing.T) {
		f := newFixture(t)
		first := f.create(t, "alice", 1, 5)
		second := f.create(t, "bob", 5, 10)

		result, err := f.svc.CheckAvailability(context.Background(), "trailer-1", rng(4, 6), "")
		require.NoError(t, err)

		assert.False(t, result.Available)
		require.Len(t, result.Conflicts, 2)
		assert.Equal(t, first.ID, result.Conflicts[0].ID)
		assert.Equal(t, second.ID, result.Conflicts[1].ID)
	})

	t.Run("exclude booking id ignores itself", func(t *testing.T) {
		f := newFixture(t)
		existing := f.create(t, "alice", 1, 5)

		result, err := f.svc.CheckAvailability(context.Background(), "trailer-1", rng(1, 5), existing.ID)
		require.NoError(t, err)

		assert.True(t, result.Available)
	})

	t.Run("unknown equipment", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.CheckAvailability(context.Background(), "missing", rng(1, 3), "")

		assert.ErrorIs(t, err, ErrEquipmentNotFound)
	})
}

func TestServiceHandoverChain(t *testing.T) {
	t.Run("positions a booking between neighbors", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		first := f.create(t, "alice", 1, 3)
		middle := f.create(t, "bob", 3, 5)
		last := f.create(t, "carol", 5, 7)

		view, err := f.svc.GetHandoverChain(ctx, middle.ID, "manager")
		require.NoError(t, err)

		assert.Equal(t, first.ID, view.Previous.ID)
		assert.Equal(t, middle.ID, view.Current.ID)
		assert.Equal(t, last.ID, view.Next.ID)
		assert.Equal(t, 2, view.Position)
		assert.Equal(t, 3, view.TotalInChain)
	})

	t.Run("zone manager can inspect any booking", func(t *testing.T) {
		f := newFixture(t)
		b := f.create(t, "alice", 1, 3)

		view, err := f.svc.GetHandoverChain(context.Background(), b.ID, "manager")
		require.NoError(t, err)

		assert.Equal(t, 1, view.Position)
	})

	t.Run("only zone managers may inspect", func(t *testing.T) {
		f := newFixture(t)
		b := f.create(t, "alice", 1, 3)

		_, err := f.svc.GetHandoverChain(context.Background(), b.ID, "mallory")
		assert.ErrorIs(t, err, ErrPermissionDenied)

		// The requester is not exempt from the manager check.
		_, err = f.svc.GetHandoverChain(context.Background(), b.ID, "alice")
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("cancelling the middle relinks the chain", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		first := f.create(t, "alice", 1, 3)
		middle := f.create(t, "bob", 3, 5)
		last := f.create(t, "carol", 5, 7)

		_, err := f.svc.Cancel(ctx, middle.ID, "bob")
		require.NoError(t, err)

		view, err := f.svc.GetHandoverChain(ctx, last.ID, "manager")
		require.NoError(t, err)

		assert.Equal(t, first.ID, view.Previous.ID)
		assert.Nil(t, view.Next)
		assert.Equal(t, 2, view.Position)
		assert.Equal(t, 2, view.TotalInChain)
	})

	t.Run("missing booking", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.GetHandoverChain(context.Background(), "missing", "alice")

		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestServiceGetChain(t *testing.T) {
	f := newFixture(t)
	f.create(t, "alice", 1, 3)
	f.create(t, "bob", 3, 5)
	f.create(t, "carol", 10, 12)

	chain, err := f.svc.GetChain(context.Background(), "trailer-1", rng(2, 6))
	require.NoError(t, err)

	require.Len(t, chain, 2)
	assert.True(t, chain[0].PickupAt.Before(chain[1].PickupAt))
}

func TestRemindUpcomingHandovers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	early := f.create(t, "alice", 1, 3)
	upcoming := f.create(t, "bob", 3, 5)
	for _, id := range []string{early.ID, upcoming.ID} {
		_, err := f.svc.Approve(ctx, id, "manager")
		require.NoError(t, err)
	}
	// Far-future booking stays out of the reminder window.
	f.create(t, "carol", 20, 22)

	// Freeze the clock 12 hours before bob's pickup.
	f.svc.now = func() time.Time { return day(3).Add(-12 * time.Hour) }
	f.notifier.events = nil

	count, err := f.svc.RemindUpcomingHandovers(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	require.Len(t, f.notifier.events, 1)
	event := f.notifier.events[0]
	assert.Equal(t, EventHandoverReminder, event.Kind)
	assert.Equal(t, upcoming.ID, event.Booking.ID)
	require.NotNil(t, event.Handover)
	require.NotNil(t, event.Handover.Previous)
	assert.Equal(t, early.ID, event.Handover.Previous.ID)
}
