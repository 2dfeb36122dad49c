package daterange

import (
	"fmt"
	"time"

	"github.com/Atlas-Fleet-Rentals/service-rental/internal/domain"
)

// Range is an immutable rental period. Pickup is inclusive and dropoff is
// exclusive, so a dropoff on day N and a pickup on day N do not overlap and
// same-day turnover is possible.
type Range struct {
	Pickup  time.Time `json:"pickup"`
	Dropoff time.Time `json:"dropoff"`
}

// New creates a Range from two calendar dates. Times of day are discarded;
// both dates are normalized to UTC midnight. Dropoff must be strictly after
// pickup.
func New(pickup, dropoff time.Time) (Range, error) {
	p := Truncate(pickup)
	d := Truncate(dropoff)
	if !d.After(p) {
		return Range{}, domain.NewValidationError(
			fmt.Sprintf("dropoff date %s must be after pickup date %s",
				d.Format("2006-01-02"), p.Format("2006-01-02")))
	}
	return Range{Pickup: p, Dropoff: d}, nil
}

// Truncate normalizes a timestamp to UTC midnight of its calendar day.
func Truncate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Overlaps reports whether two ranges share at least one rental day.
func (r Range) Overlaps(other Range) bool {
	return r.Pickup.Before(other.Dropoff) && other.Pickup.Before(r.Dropoff)
}

// Contains reports whether the given day falls inside the range.
func (r Range) Contains(day time.Time) bool {
	d := Truncate(day)
	return !d.Before(r.Pickup) && d.Before(r.Dropoff)
}

// Days returns the number of billable rental days.
func (r Range) Days() int {
	return int(r.Dropoff.Sub(r.Pickup).Hours() / 24)
}

// Month returns the range covering a whole calendar month, for calendar
// queries. Month overflow is handled by time.Date, so December rolls into
// January of the next year.
func Month(month time.Month, year int) Range {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC)
	return Range{Pickup: start, Dropoff: end}
}

func (r Range) String() string {
	return fmt.Sprintf("%s..%s", r.Pickup.Format("2006-01-02"), r.Dropoff.Format("2006-01-02"))
}
