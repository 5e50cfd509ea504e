package domain

import (
	"fmt"
	"time"
)

// DateRange is the span of timestamps at which a meter has a raw value.
type DateRange struct {
	Earliest time.Time `json:"earliest"`
	Latest   time.Time `json:"latest"`
}

// DateRanges maps meter ids to their coverage. Meters without any readings
// are absent, so it may be smaller than the set that was asked for.
type DateRanges map[string]DateRange

// Bounds returns the earliest start and the latest end over all meters.
// It is a union of coverage: a window inside it can still be empty for an
// individual meter.
func (r DateRanges) Bounds() (DateRange, bool) {
	var out DateRange
	first := true
	for _, dr := range r {
		if first || dr.Earliest.Before(out.Earliest) {
			out.Earliest = dr.Earliest
		}
		if first || dr.Latest.After(out.Latest) {
			out.Latest = dr.Latest
		}
		first = false
	}
	return out, !first
}

// ValidateWindow checks the calendar days [from, to] against Bounds.
func (r DateRanges) ValidateWindow(from, to time.Time) error {
	b, ok := r.Bounds()
	if !ok {
		return fmt.Errorf("%w: no readings for the selected meters", ErrWindowOutOfRange)
	}
	from, to = Day(from), Day(to)
	if to.Before(from) {
		return fmt.Errorf("%w: %s is after %s", ErrWindowOutOfRange,
			from.Format(DateLayout), to.Format(DateLayout))
	}
	if from.Before(Day(b.Earliest)) || to.After(Day(b.Latest)) {
		return fmt.Errorf("%w: available %s to %s", ErrWindowOutOfRange,
			b.Earliest.Format(DateLayout), b.Latest.Format(DateLayout))
	}
	return nil
}
