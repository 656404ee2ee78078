package booking

import (
	"sort"
	"time"
)

// FilterLive returns the bookings that still occupy their slot.
func FilterLive(bookings []*Booking) []*Booking {
	live := make([]*Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.IsLive() {
			live = append(live, b)
		}
	}
	return live
}

// SortChain orders bookings ascending by pickup time, breaking ties by
// reference so the order is deterministic. The chain is never persisted;
// every read recomputes it from the live set.
func SortChain(bookings []*Booking) {
	sort.SliceStable(bookings, func(i, j int) bool {
		if bookings[i].PickupAt.Equal(bookings[j].PickupAt) {
			return bookings[i].Reference < bookings[j].Reference
		}
		return bookings[i].PickupAt.Before(bookings[j].PickupAt)
	})
}

// conflictsFor returns the live bookings overlapping the requested range when
// they would exceed the item's quantity, or nil when the request fits.
//
// The number of concurrent holders only changes at pickup instants, so it is
// enough to count holders at the requested pickup and at each overlapping
// booking's pickup that falls inside the requested range. Once any instant is
// saturated the whole overlapping set is the conflict list: every member
// blocks some part of the requested range.
func conflictsFor(requested DateRange, live []*Booking, quantity int) []*Booking {
	if quantity < 1 {
		quantity = 1
	}

	overlapping := make([]*Booking, 0, len(live))
	for _, b := range live {
		if b.Range().Overlaps(requested) {
			overlapping = append(overlapping, b)
		}
	}
	if len(overlapping) < quantity {
		return nil
	}

	instants := make([]time.Time, 0, len(overlapping)+1)
	instants = append(instants, requested.PickupAt)
	for _, b := range overlapping {
		if requested.Contains(b.PickupAt) {
			instants = append(instants, b.PickupAt)
		}
	}

	for _, t := range instants {
		holders := 0
		for _, b := range overlapping {
			if b.Range().Contains(t) {
				holders++
			}
		}
		// The request itself would be the quantity+1-th holder.
		if holders >= quantity {
			SortChain(overlapping)
			return overlapping
		}
	}
	return nil
}

// neighbors locates id inside an already-sorted chain and returns its
// predecessor, the booking itself, its successor, and its 1-based position.
func neighbors(chain []*Booking, id string) (prev, current, next *Booking, position int) {
	for i, b := range chain {
		if b.ID != id {
			continue
		}
		if i > 0 {
			prev = chain[i-1]
		}
		if i < len(chain)-1 {
			next = chain[i+1]
		}
		return prev, b, next, i + 1
	}
	return nil, nil, nil, 0
}
