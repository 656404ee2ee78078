package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chainBooking(id, reference string, pickupDay, returnDay int, status Status) *Booking {
	return &Booking{
		ID:        id,
		Reference: reference,
		PickupAt:  day(pickupDay),
		ReturnAt:  day(returnDay),
		Status:    status,
	}
}

func TestSortChain(t *testing.T) {
	t.Run("orders by pickup time", func(t *testing.T) {
		chain := []*Booking{
			chainBooking("c", "EQ-20260305-cccccccc", 5, 7, StatusApproved),
			chainBooking("a", "EQ-20260301-aaaaaaaa", 1, 3, StatusApproved),
			chainBooking("b", "EQ-20260303-bbbbbbbb", 3, 5, StatusApproved),
		}

		SortChain(chain)

		assert.Equal(t, []string{"a", "b", "c"}, []string{chain[0].ID, chain[1].ID, chain[2].ID})
	})

	t.Run("breaks pickup ties by reference", func(t *testing.T) {
		chain := []*Booking{
			chainBooking("second", "EQ-20260301-ffffffff", 1, 3, StatusApproved),
			chainBooking("first", "EQ-20260301-00000000", 1, 2, StatusApproved),
		}

		SortChain(chain)

		assert.Equal(t, "first", chain[0].ID)
		assert.Equal(t, "second", chain[1].ID)
	})
}

func TestFilterLive(t *testing.T) {
	bookings := []*Booking{
		chainBooking("a", "EQ-1", 1, 3, StatusApproved),
		chainBooking("b", "EQ-2", 3, 5, StatusCancelled),
		chainBooking("c", "EQ-3", 5, 7, StatusPending),
		chainBooking("d", "EQ-4", 7, 9, StatusInUse),
	}

	live := FilterLive(bookings)

	require.Len(t, live, 3)
	for _, b := range live {
		assert.NotEqual(t, StatusCancelled, b.Status)
	}
}

func TestConflictsFor(t *testing.T) {
	t.Run("single unit blocks any overlap", func(t *testing.T) {
		live := []*Booking{chainBooking("a", "EQ-1", 1, 5, StatusApproved)}

		conflicts := conflictsFor(rng(3, 7), live, 1)

		require.Len(t, conflicts, 1)
		assert.Equal(t, "a", conflicts[0].ID)
	})

	t.Run("single unit allows back-to-back", func(t *testing.T) {
		live := []*Booking{chainBooking("a", "EQ-1", 1, 5, StatusApproved)}

		assert.Empty(t, conflictsFor(rng(5, 8), live, 1))
	})

	t.Run("two units absorb one overlap", func(t *testing.T) {
		live := []*Booking{chainBooking("a", "EQ-1", 1, 5, StatusApproved)}

		assert.Empty(t, conflictsFor(rng(3, 7), live, 2))
	})

	t.Run("two units full at two concurrent holders", func(t *testing.T) {
		live := []*Booking{
			chainBooking("a", "EQ-1", 1, 5, StatusApproved),
			chainBooking("b", "EQ-2", 2, 6, StatusApproved),
		}

		conflicts := conflictsFor(rng(3, 7), live, 2)

		require.Len(t, conflicts, 2)
	})

	t.Run("staggered holders never concurrent", func(t *testing.T) {
		// Two bookings overlap the window but hand over to each other
		// inside it, so one spare unit is always free.
		live := []*Booking{
			chainBooking("a", "EQ-1", 1, 4, StatusApproved),
			chainBooking("b", "EQ-2", 4, 8, StatusApproved),
		}

		assert.Empty(t, conflictsFor(rng(2, 6), live, 2))
	})

	t.Run("single unit reports every overlapping holder", func(t *testing.T) {
		// The request straddles a handover between a and b, so both block
		// part of it and both belong in the conflict list.
		live := []*Booking{
			chainBooking("a", "EQ-1", 1, 5, StatusApproved),
			chainBooking("b", "EQ-2", 5, 10, StatusApproved),
		}

		conflicts := conflictsFor(rng(4, 6), live, 1)

		require.Len(t, conflicts, 2)
		assert.Equal(t, "a", conflicts[0].ID)
		assert.Equal(t, "b", conflicts[1].ID)
	})

	t.Run("single unit past the handover conflicts with successor only", func(t *testing.T) {
		live := []*Booking{
			chainBooking("a", "EQ-1", 1, 5, StatusApproved),
			chainBooking("b", "EQ-2", 5, 10, StatusApproved),
		}

		conflicts := conflictsFor(rng(5, 8), live, 1)

		require.Len(t, conflicts, 1)
		assert.Equal(t, "b", conflicts[0].ID)
	})

	t.Run("zero quantity treated as one", func(t *testing.T) {
		live := []*Booking{chainBooking("a", "EQ-1", 1, 5, StatusApproved)}

		assert.Len(t, conflictsFor(rng(3, 7), live, 0), 1)
	})
}

func TestNeighbors(t *testing.T) {
	chain := []*Booking{
		chainBooking("a", "EQ-1", 1, 3, StatusApproved),
		chainBooking("b", "EQ-2", 3, 5, StatusApproved),
		chainBooking("c", "EQ-3", 5, 7, StatusApproved),
	}

	t.Run("middle of chain", func(t *testing.T) {
		prev, current, next, position := neighbors(chain, "b")

		require.NotNil(t, current)
		assert.Equal(t, "a", prev.ID)
		assert.Equal(t, "c", next.ID)
		assert.Equal(t, 2, position)
	})

	t.Run("first pickup has no predecessor", func(t *testing.T) {
		prev, current, next, position := neighbors(chain, "a")

		require.NotNil(t, current)
		assert.Nil(t, prev)
		assert.Equal(t, "b", next.ID)
		assert.Equal(t, 1, position)
	})

	t.Run("last return has no successor", func(t *testing.T) {
		prev, current, next, position := neighbors(chain, "c")

		require.NotNil(t, current)
		assert.Equal(t, "b", prev.ID)
		assert.Nil(t, next)
		assert.Equal(t, 3, position)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, current, _, position := neighbors(chain, "missing")

		assert.Nil(t, current)
		assert.Zero(t, position)
	})
}

func TestNextStatus(t *testing.T) {
	tests := []struct {
		current Status
		action  Action
		want    Status
		wantErr bool
	}{
		{StatusPending, ActionApprove, StatusApproved, false},
		{StatusPending, ActionReject, StatusCancelled, false},
		{StatusPending, ActionCancel, StatusCancelled, false},
		{StatusApproved, ActionConfirm, StatusConfirmed, false},
		{StatusConfirmed, ActionPickup, StatusPickedUp, false},
		{StatusPickedUp, ActionActivate, StatusInUse, false},
		{StatusInUse, ActionCancel, StatusCancelled, false},
		{StatusPending, ActionConfirm, "", true},
		{StatusApproved, ActionApprove, "", true},
		{StatusCancelled, ActionCancel, "", true},
		{StatusInUse, ActionActivate, "", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.current)+" "+string(tt.action), func(t *testing.T) {
			got, err := NextStatus(tt.current, tt.action)
			if tt.wantErr {
				var transitionErr *InvalidTransitionError
				require.ErrorAs(t, err, &transitionErr)
				assert.Equal(t, tt.current, transitionErr.Current)
				assert.Equal(t, tt.action, transitionErr.Action)
				assert.ErrorIs(t, err, ErrInvalidTransition)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
