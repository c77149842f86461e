// Package caldata is the codec for the to-do/event text grammar. Decoding
// lifts a stored iCalendar stream into typed record fields; encoding
// applies field directives over the parsed original so every property the
// caller did not touch survives re-serialization, including extension
// lines this package does not model.
package caldata

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/anhofer/libgroupdav/record"
	"github.com/emersion/go-ical"
	"github.com/samber/mo"
)

const prodID = "-//libgroupdav//NONSGML v1.0//EN"

func parseCalendar(data string) (*ical.Calendar, error) {
	cal, err := ical.NewDecoder(strings.NewReader(data)).Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to parse iCalendar data: %w", err)
	}
	return cal, nil
}

func findComponent(cal *ical.Calendar, name string) *ical.Component {
	for _, child := range cal.Children {
		if child.Name == name {
			return child
		}
	}
	return nil
}

func encodeCalendar(cal *ical.Calendar) (string, error) {
	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return "", fmt.Errorf("failed to encode calendar: %w", err)
	}
	return buf.String(), nil
}

func newCalendar(comp *ical.Component) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText("PRODID", prodID)
	cal.Props.SetText("VERSION", "2.0")
	cal.Children = append(cal.Children, comp)
	return cal
}

// calendarFor returns the calendar and component a patch applies to: the
// parsed original, or a fresh component when there is no original yet.
func calendarFor(original, compName, uid string) (*ical.Calendar, *ical.Component, error) {
	if original == "" {
		comp := ical.NewComponent(compName)
		comp.Props.SetText("UID", uid)
		comp.Props.SetDateTime("DTSTAMP", time.Now().UTC())
		return newCalendar(comp), comp, nil
	}

	cal, err := parseCalendar(original)
	if err != nil {
		return nil, nil, err
	}
	comp := findComponent(cal, compName)
	if comp == nil {
		return nil, nil, fmt.Errorf("no %s component found", compName)
	}
	// Some servers store objects without a DTSTAMP; the encoder requires
	// exactly one.
	if comp.Props.Get("DTSTAMP") == nil {
		comp.Props.SetDateTime("DTSTAMP", time.Now().UTC())
	}
	return cal, comp, nil
}

// ComponentUID returns the identifier of the first component of the given
// kind in the stored representation.
func ComponentUID(data, compName string) (string, error) {
	cal, err := parseCalendar(data)
	if err != nil {
		return "", err
	}
	comp := findComponent(cal, compName)
	if comp == nil {
		return "", fmt.Errorf("no %s component found", compName)
	}
	return propValue(comp.Props, "UID"), nil
}

func propValue(props ical.Props, name string) string {
	if p := props.Get(name); p != nil {
		return p.Value
	}
	return ""
}

func textValue(props ical.Props, name string) string {
	p := props.Get(name)
	if p == nil {
		return ""
	}
	v, err := p.Text()
	if err != nil {
		return p.Value
	}
	return v
}

func intValue(props ical.Props, name string) int {
	n, err := strconv.Atoi(propValue(props, name))
	if err != nil {
		return 0
	}
	return n
}

func setProp(props ical.Props, p *ical.Prop) {
	props[p.Name] = []ical.Prop{*p}
}

// parseDateTimeProp parses an iCalendar date or date-time value. The
// VALUE=DATE marker (or an eight-digit value) selects all-day semantics.
func parseDateTimeProp(p *ical.Prop) (record.DateTime, error) {
	dateOnly := p.Params.Get("VALUE") == "DATE" || len(p.Value) == 8

	// A trailing Z pins the value to UTC. Otherwise the TZID parameter
	// names the zone the wall-clock digits are written in.
	if strings.HasSuffix(p.Value, "Z") {
		if t, err := time.Parse("20060102T150405Z", p.Value); err == nil {
			return record.DateTime{Time: t, DateOnly: dateOnly}, nil
		}
	} else {
		loc := time.UTC
		if tzID := p.Params.Get("TZID"); tzID != "" {
			if l, err := time.LoadLocation(tzID); err == nil {
				loc = l
			}
		}
		for _, format := range []string{"20060102T150405", "20060102"} {
			if t, err := time.ParseInLocation(format, p.Value, loc); err == nil {
				return record.DateTime{Time: t, DateOnly: dateOnly}, nil
			}
		}
	}

	return record.DateTime{}, fmt.Errorf("invalid date-time format: %s", p.Value)
}

func dateTimeProp(name string, d record.DateTime) *ical.Prop {
	p := ical.NewProp(name)
	if d.DateOnly {
		p.Params.Set("VALUE", "DATE")
		p.Value = d.Time.Format("20060102")
	} else {
		p.Value = d.Time.UTC().Format("20060102T150405Z")
	}
	return p
}

func decodeDateTime(props ical.Props, name string) (*record.DateTime, error) {
	p := props.Get(name)
	if p == nil {
		return nil, nil
	}
	dt, err := parseDateTimeProp(p)
	if err != nil {
		return nil, err
	}
	return &dt, nil
}

// Directive application. A nil directive leaves the stored line exactly as
// read; set rewrites it; clear removes the key.

func applyText(props ical.Props, name string, d *mo.Option[string]) {
	if d == nil {
		return
	}
	if v, ok := d.Get(); ok {
		props.SetText(name, v)
	} else {
		delete(props, name)
	}
}

// applyRaw writes the value verbatim, for opaque grammars like RRULE.
func applyRaw(props ical.Props, name string, d *mo.Option[string]) {
	if d == nil {
		return
	}
	if v, ok := d.Get(); ok {
		p := ical.NewProp(name)
		p.Value = v
		setProp(props, p)
	} else {
		delete(props, name)
	}
}

func applyInt(props ical.Props, name string, d *mo.Option[int]) {
	if d == nil {
		return
	}
	if v, ok := d.Get(); ok {
		p := ical.NewProp(name)
		p.Value = strconv.Itoa(v)
		setProp(props, p)
	} else {
		delete(props, name)
	}
}

func applyDate(props ical.Props, name string, d *mo.Option[record.DateTime]) {
	if d == nil {
		return
	}
	if v, ok := d.Get(); ok {
		setProp(props, dateTimeProp(name, v))
	} else {
		delete(props, name)
	}
}

// Tag lists accumulate across repeated lines and across comma-separated
// values on one line. Duplicates coming from the server are preserved.

func decodeCategories(props ical.Props) []string {
	var out []string
	for _, p := range props["CATEGORIES"] {
		if p.Value == "" {
			continue
		}
		out = append(out, splitList(p.Value)...)
	}
	return out
}

func applyCategories(props ical.Props, d *mo.Option[[]string]) {
	if d == nil {
		return
	}
	delete(props, "CATEGORIES")
	list, ok := d.Get()
	if !ok || len(list) == 0 {
		return
	}
	escaped := make([]string, len(list))
	for i, c := range list {
		escaped[i] = escapeText(c)
	}
	p := ical.NewProp("CATEGORIES")
	p.Value = strings.Join(escaped, ",")
	setProp(props, p)
}

// The parent reference is the RELATED-TO line whose relationship type is
// PARENT (the default when RELTYPE is absent). Other relationship types
// pass through untouched.

func decodeParent(props ical.Props) string {
	for _, p := range props["RELATED-TO"] {
		rel := p.Params.Get("RELTYPE")
		if rel == "" || strings.EqualFold(rel, "PARENT") {
			return p.Value
		}
	}
	return ""
}

func applyParent(props ical.Props, d *mo.Option[string]) {
	if d == nil {
		return
	}
	var kept []ical.Prop
	for _, p := range props["RELATED-TO"] {
		rel := p.Params.Get("RELTYPE")
		if rel != "" && !strings.EqualFold(rel, "PARENT") {
			kept = append(kept, p)
		}
	}
	if v, ok := d.Get(); ok {
		p := ical.NewProp("RELATED-TO")
		p.Params.Set("RELTYPE", "PARENT")
		p.Value = v
		kept = append(kept, *p)
	}
	if len(kept) == 0 {
		delete(props, "RELATED-TO")
	} else {
		props["RELATED-TO"] = kept
	}
}

func escapeText(s string) string {
	r := strings.NewReplacer("\\", "\\\\", ";", "\\;", ",", "\\,", "\n", "\\n")
	return r.Replace(s)
}

// splitList splits a property value on unescaped commas and unescapes the
// items.
func splitList(v string) []string {
	var out []string
	var item strings.Builder
	escaped := false
	for _, r := range v {
		switch {
		case escaped:
			switch r {
			case 'n', 'N':
				item.WriteRune('\n')
			default:
				item.WriteRune(r)
			}
			escaped = false
		case r == '\\':
			escaped = true
		case r == ',':
			out = append(out, item.String())
			item.Reset()
		default:
			item.WriteRune(r)
		}
	}
	out = append(out, item.String())
	return out
}
