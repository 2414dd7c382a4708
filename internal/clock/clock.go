// Package clock decides what "today" means for the booking rules.  All
// date comparisons go through a Clock so tests can pin the current day.
package clock

import (
	"time"

	"github.com/iliyamo/desk-booking/internal/model"
)

// Clock reports the current instant in the office time zone.
type Clock interface {
	Now() time.Time
}

// System is the wall clock observed from a fixed location.
type System struct {
	Loc *time.Location
}

func (s System) Now() time.Time {
	if s.Loc == nil {
		return time.Now().UTC()
	}
	return time.Now().In(s.Loc)
}

// Fixed always reports the same instant.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }

// Today returns the current calendar day according to c.
func Today(c Clock) model.Date { return model.DateOf(c.Now()) }
