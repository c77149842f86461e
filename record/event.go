package record

import "time"

// Participant is an attendee or organizer line: a mail address plus the
// display-name and participation-status parameters.
type Participant struct {
	Email  string
	Name   string // CN parameter
	Status string // PARTSTAT parameter, e.g. ACCEPTED, DECLINED, NEEDS-ACTION
}

// Event is the typed view of a single VEVENT.
type Event struct {
	UID            string
	Summary        string
	Notes          string
	Location       string
	Status         string
	Class          string
	Start          *DateTime
	End            *DateTime
	Categories     []string
	Organizer      *Participant
	Attendees      []Participant
	ReminderBefore *time.Duration // offset of the display alarm before the start
	RecurrenceRule string         // verbatim RRULE value, empty if none
}

// AllDay reports whether the event spans whole calendar days.
func (e *Event) AllDay() bool {
	return e.Start != nil && e.Start.DateOnly
}

// RecurrenceSummary renders the recurrence rule as a display phrase.
func (e *Event) RecurrenceSummary() string {
	return SummarizeRule(e.RecurrenceRule)
}
