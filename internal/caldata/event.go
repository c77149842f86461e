package caldata

import (
	"fmt"
	"strings"
	"time"

	"github.com/anhofer/libgroupdav/record"
	"github.com/emersion/go-ical"
	"github.com/samber/mo"
)

// DecodeEvent lifts the first VEVENT of the stored representation into
// its typed field view.
func DecodeEvent(data string) (*record.Event, error) {
	cal, err := parseCalendar(data)
	if err != nil {
		return nil, err
	}
	comp := findComponent(cal, "VEVENT")
	if comp == nil {
		return nil, fmt.Errorf("no VEVENT component found")
	}
	return eventFromComponent(comp)
}

func eventFromComponent(comp *ical.Component) (*record.Event, error) {
	event := &record.Event{
		UID:            propValue(comp.Props, "UID"),
		Summary:        textValue(comp.Props, "SUMMARY"),
		Notes:          textValue(comp.Props, "DESCRIPTION"),
		Location:       textValue(comp.Props, "LOCATION"),
		Status:         propValue(comp.Props, "STATUS"),
		Class:          propValue(comp.Props, "CLASS"),
		Categories:     decodeCategories(comp.Props),
		RecurrenceRule: propValue(comp.Props, "RRULE"),
	}

	var err error
	if event.Start, err = decodeDateTime(comp.Props, "DTSTART"); err != nil {
		return nil, err
	}
	if event.End, err = decodeDateTime(comp.Props, "DTEND"); err != nil {
		return nil, err
	}

	if p := comp.Props.Get("ORGANIZER"); p != nil {
		organizer := participantFromProp(p)
		event.Organizer = &organizer
	}
	for _, p := range comp.Props["ATTENDEE"] {
		event.Attendees = append(event.Attendees, participantFromProp(&p))
	}

	for _, child := range comp.Children {
		if child.Name != "VALARM" {
			continue
		}
		trigger := child.Props.Get("TRIGGER")
		if trigger == nil {
			continue
		}
		if d, err := parseDuration(trigger.Value); err == nil && d < 0 {
			before := -d
			event.ReminderBefore = &before
			break
		}
	}

	return event, nil
}

func participantFromProp(p *ical.Prop) record.Participant {
	return record.Participant{
		Email:  strings.TrimPrefix(p.Value, "mailto:"),
		Name:   p.Params.Get("CN"),
		Status: p.Params.Get("PARTSTAT"),
	}
}

func participantProp(name string, p record.Participant) *ical.Prop {
	prop := ical.NewProp(name)
	if strings.Contains(p.Email, ":") {
		prop.Value = p.Email
	} else {
		prop.Value = "mailto:" + p.Email
	}
	if p.Name != "" {
		prop.Params.Set("CN", p.Name)
	}
	if p.Status != "" {
		prop.Params.Set("PARTSTAT", p.Status)
	}
	return prop
}

// EncodeEvent applies the patch over the original representation and
// re-encodes it. An empty original starts a fresh VEVENT carrying the
// given identifier.
func EncodeEvent(original, uid string, patch record.EventPatch) (string, error) {
	cal, comp, err := calendarFor(original, "VEVENT", uid)
	if err != nil {
		return "", err
	}

	applyText(comp.Props, "SUMMARY", patch.Summary)
	applyText(comp.Props, "DESCRIPTION", patch.Notes)
	applyText(comp.Props, "LOCATION", patch.Location)
	applyText(comp.Props, "STATUS", patch.Status)
	applyText(comp.Props, "CLASS", patch.Class)
	applyDate(comp.Props, "DTSTART", patch.Start)
	applyDate(comp.Props, "DTEND", patch.End)
	applyCategories(comp.Props, patch.Categories)
	applyRaw(comp.Props, "RRULE", patch.RecurrenceRule)
	applyParticipants(comp, patch)
	applyReminder(comp, patch.ReminderBefore)
	applyImpliedEnd(comp, patch)

	return encodeCalendar(cal)
}

func applyParticipants(comp *ical.Component, patch record.EventPatch) {
	if patch.Organizer != nil {
		if v, ok := patch.Organizer.Get(); ok {
			setProp(comp.Props, participantProp("ORGANIZER", v))
		} else {
			delete(comp.Props, "ORGANIZER")
		}
	}
	if patch.Attendees != nil {
		delete(comp.Props, "ATTENDEE")
		if list, ok := patch.Attendees.Get(); ok {
			for _, a := range list {
				comp.Props["ATTENDEE"] = append(comp.Props["ATTENDEE"], *participantProp("ATTENDEE", a))
			}
		}
	}
}

// applyReminder replaces the event's alarm sub-block with a display alarm
// triggering the given offset before the start.
func applyReminder(comp *ical.Component, d *mo.Option[time.Duration]) {
	if d == nil {
		return
	}

	var kept []*ical.Component
	for _, child := range comp.Children {
		if child.Name != "VALARM" {
			kept = append(kept, child)
		}
	}
	comp.Children = kept

	before, ok := d.Get()
	if !ok {
		return
	}
	alarm := ical.NewComponent("VALARM")
	alarm.Props.SetText("ACTION", "DISPLAY")
	alarm.Props.SetText("DESCRIPTION", "Reminder")
	trigger := ical.NewProp("TRIGGER")
	trigger.Value = negativeTrigger(before)
	setProp(alarm.Props, trigger)
	comp.Children = append(comp.Children, alarm)
}

// applyImpliedEnd gives a date-only event with no end the following
// calendar day, but only when this encode pass introduced the start;
// untouched events keep their stored shape.
func applyImpliedEnd(comp *ical.Component, patch record.EventPatch) {
	if patch.Start == nil || patch.End != nil {
		return
	}
	start, ok := patch.Start.Get()
	if !ok || !start.DateOnly {
		return
	}
	if comp.Props.Get("DTEND") != nil || comp.Props.Get("DURATION") != nil {
		return
	}
	setProp(comp.Props, dateTimeProp("DTEND", start.NextDay()))
}

// parseDuration parses the iCalendar dur-value grammar, e.g. "-PT15M" or
// "P1DT2H".
func parseDuration(v string) (time.Duration, error) {
	s := v
	sign := time.Duration(1)
	if strings.HasPrefix(s, "-") {
		sign = -1
		s = s[1:]
	} else {
		s = strings.TrimPrefix(s, "+")
	}
	if !strings.HasPrefix(s, "P") {
		return 0, fmt.Errorf("invalid duration: %s", v)
	}
	s = s[1:]

	var d time.Duration
	num := 0
	sawDigit := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			num = num*10 + int(c-'0')
			sawDigit = true
		case c == 'T':
			continue
		default:
			if !sawDigit {
				return 0, fmt.Errorf("invalid duration: %s", v)
			}
			switch c {
			case 'W':
				d += time.Duration(num) * 7 * 24 * time.Hour
			case 'D':
				d += time.Duration(num) * 24 * time.Hour
			case 'H':
				d += time.Duration(num) * time.Hour
			case 'M':
				d += time.Duration(num) * time.Minute
			case 'S':
				d += time.Duration(num) * time.Second
			default:
				return 0, fmt.Errorf("invalid duration: %s", v)
			}
			num = 0
			sawDigit = false
		}
	}
	return sign * d, nil
}

// negativeTrigger renders a "before the start" offset as a negative
// iCalendar duration.
func negativeTrigger(before time.Duration) string {
	total := int(before.Seconds())
	if total < 0 {
		total = -total
	}
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	out := "-PT"
	if h > 0 {
		out += fmt.Sprintf("%dH", h)
	}
	if m > 0 {
		out += fmt.Sprintf("%dM", m)
	}
	if s > 0 || (h == 0 && m == 0) {
		out += fmt.Sprintf("%dS", s)
	}
	return out
}
