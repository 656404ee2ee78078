package booking

import "time"

// DateRange is a half-open reservation interval [PickupAt, ReturnAt).
// Because the end is exclusive, a return and the next pickup may share the
// same instant without overlapping, which is what makes back-to-back
// handovers legal.
type DateRange struct {
	PickupAt time.Time
	ReturnAt time.Time
}

// Validate rejects empty and inverted ranges.
func (r DateRange) Validate() error {
	if !r.ReturnAt.After(r.PickupAt) {
		return ErrInvalidRange
	}
	return nil
}

// Overlaps reports whether the two half-open intervals share any instant.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.PickupAt.Before(other.ReturnAt) && other.PickupAt.Before(r.ReturnAt)
}

// Contains reports whether t falls inside the interval.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.PickupAt) && t.Before(r.ReturnAt)
}
