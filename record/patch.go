// Package record defines the typed field views of tasks, events and
// contacts, plus the per-field directives used to mutate them.
package record

import (
	"time"

	"github.com/samber/mo"
)

// Patch fields are tri-state: a nil pointer leaves the stored value
// untouched (including its position and formatting in the encoded
// representation), Set rewrites it, and Clear removes it entirely.

// Set returns a directive that writes v over the stored value.
func Set[T any](v T) *mo.Option[T] {
	o := mo.Some(v)
	return &o
}

// Clear returns a directive that removes the field from the stored
// representation.
func Clear[T any]() *mo.Option[T] {
	o := mo.None[T]()
	return &o
}

// TaskPatch describes field changes for a single to-do item.
type TaskPatch struct {
	Summary         *mo.Option[string]
	Notes           *mo.Option[string]
	Location        *mo.Option[string]
	Status          *mo.Option[string]
	Class           *mo.Option[string]
	Priority        *mo.Option[int]
	PercentComplete *mo.Option[int]
	Due             *mo.Option[DateTime]
	Start           *mo.Option[DateTime]
	Categories      *mo.Option[[]string]
	ParentUID       *mo.Option[string]
}

// EventPatch describes field changes for a single calendar event.
type EventPatch struct {
	Summary        *mo.Option[string]
	Notes          *mo.Option[string]
	Location       *mo.Option[string]
	Status         *mo.Option[string]
	Class          *mo.Option[string]
	Start          *mo.Option[DateTime]
	End            *mo.Option[DateTime]
	Categories     *mo.Option[[]string]
	Organizer      *mo.Option[Participant]
	Attendees      *mo.Option[[]Participant]
	ReminderBefore *mo.Option[time.Duration]
	RecurrenceRule *mo.Option[string]
}

// ContactPatch describes field changes for a single contact.
type ContactPatch struct {
	FormattedName *mo.Option[string]
	Name          *mo.Option[Name]
	Emails        *mo.Option[[]TypedValue]
	Phones        *mo.Option[[]TypedValue]
	Address       *mo.Option[Address]
	Organization  *mo.Option[string]
	Title         *mo.Option[string]
	Birthday      *mo.Option[string]
	URL           *mo.Option[string]
	Note          *mo.Option[string]
}
