package record

import "time"

// DateTime is an instant that is either a bare calendar date (all-day
// semantics) or a full timestamp. The two forms carry distinct value-type
// markers on the wire and must not be conflated.
type DateTime struct {
	Time     time.Time
	DateOnly bool
}

// Date returns an all-day value for the calendar date of t.
func Date(t time.Time) DateTime {
	return DateTime{Time: t, DateOnly: true}
}

// Timestamp returns a timed value for t.
func Timestamp(t time.Time) DateTime {
	return DateTime{Time: t}
}

// NextDay returns the following calendar date, preserving the date-only
// marker. Used for the implicit end of a date-only event.
func (d DateTime) NextDay() DateTime {
	return DateTime{Time: d.Time.AddDate(0, 0, 1), DateOnly: d.DateOnly}
}

func (d DateTime) IsZero() bool {
	return d.Time.IsZero()
}

func (d DateTime) Equal(other DateTime) bool {
	return d.DateOnly == other.DateOnly && d.Time.Equal(other.Time)
}
