package caldata

import (
	"fmt"
	"time"

	"github.com/anhofer/libgroupdav/record"
	"github.com/emersion/go-ical"
	"github.com/samber/mo"
)

// DecodeTask lifts the first VTODO of the stored representation into its
// typed field view.
func DecodeTask(data string) (*record.Task, error) {
	cal, err := parseCalendar(data)
	if err != nil {
		return nil, err
	}
	comp := findComponent(cal, "VTODO")
	if comp == nil {
		return nil, fmt.Errorf("no VTODO component found")
	}
	return taskFromComponent(comp)
}

func taskFromComponent(comp *ical.Component) (*record.Task, error) {
	task := &record.Task{
		UID:             propValue(comp.Props, "UID"),
		Summary:         textValue(comp.Props, "SUMMARY"),
		Notes:           textValue(comp.Props, "DESCRIPTION"),
		Location:        textValue(comp.Props, "LOCATION"),
		Status:          propValue(comp.Props, "STATUS"),
		Class:           propValue(comp.Props, "CLASS"),
		Priority:        intValue(comp.Props, "PRIORITY"),
		PercentComplete: intValue(comp.Props, "PERCENT-COMPLETE"),
		Categories:      decodeCategories(comp.Props),
		ParentUID:       decodeParent(comp.Props),
	}

	var err error
	if task.Due, err = decodeDateTime(comp.Props, "DUE"); err != nil {
		return nil, err
	}
	if task.Start, err = decodeDateTime(comp.Props, "DTSTART"); err != nil {
		return nil, err
	}
	if completed, err := decodeDateTime(comp.Props, "COMPLETED"); err != nil {
		return nil, err
	} else if completed != nil {
		task.Completed = &completed.Time
	}

	return task, nil
}

// EncodeTask applies the patch over the original representation and
// re-encodes it. An empty original starts a fresh VTODO carrying the
// given identifier.
func EncodeTask(original, uid string, patch record.TaskPatch) (string, error) {
	cal, comp, err := calendarFor(original, "VTODO", uid)
	if err != nil {
		return "", err
	}

	applyText(comp.Props, "SUMMARY", patch.Summary)
	applyText(comp.Props, "DESCRIPTION", patch.Notes)
	applyText(comp.Props, "LOCATION", patch.Location)
	applyStatus(comp.Props, patch.Status, time.Now())
	applyText(comp.Props, "CLASS", patch.Class)
	applyInt(comp.Props, "PRIORITY", patch.Priority)
	applyInt(comp.Props, "PERCENT-COMPLETE", patch.PercentComplete)
	applyDate(comp.Props, "DUE", patch.Due)
	applyDate(comp.Props, "DTSTART", patch.Start)
	applyCategories(comp.Props, patch.Categories)
	applyParent(comp.Props, patch.ParentUID)

	return encodeCalendar(cal)
}

// applyStatus writes the status directive. When the directive crosses
// the completion boundary in either direction, percent-complete and the
// completion timestamp move with it; a completed task at 0% or an open
// task with a completion timestamp must never be observable.
func applyStatus(props ical.Props, d *mo.Option[string], now time.Time) {
	if d == nil {
		return
	}

	wasDone := propValue(props, "STATUS") == "COMPLETED"
	v, ok := d.Get()
	if ok {
		props.SetText("STATUS", v)
	} else {
		delete(props, "STATUS")
	}

	isDone := ok && v == "COMPLETED"
	if isDone == wasDone {
		return
	}
	if isDone {
		pc := ical.NewProp("PERCENT-COMPLETE")
		pc.Value = "100"
		setProp(props, pc)
		p := ical.NewProp("COMPLETED")
		p.Value = now.UTC().Format("20060102T150405Z")
		setProp(props, p)
	} else {
		pc := ical.NewProp("PERCENT-COMPLETE")
		pc.Value = "0"
		setProp(props, pc)
		delete(props, "COMPLETED")
	}
}

// SetTaskCompletion flips the completion state of the stored to-do.
// Status, percent-complete and the completion timestamp always move
// together; updating any of them independently would leave a visible
// inconsistency like a completed task at 0%.
func SetTaskCompletion(original string, done bool, now time.Time) (string, error) {
	cal, comp, err := calendarFor(original, "VTODO", "")
	if err != nil {
		return "", err
	}

	if done {
		comp.Props.SetText("STATUS", "COMPLETED")
		pc := ical.NewProp("PERCENT-COMPLETE")
		pc.Value = "100"
		setProp(comp.Props, pc)
		p := ical.NewProp("COMPLETED")
		p.Value = now.UTC().Format("20060102T150405Z")
		setProp(comp.Props, p)
	} else {
		comp.Props.SetText("STATUS", "NEEDS-ACTION")
		pc := ical.NewProp("PERCENT-COMPLETE")
		pc.Value = "0"
		setProp(comp.Props, pc)
		delete(comp.Props, "COMPLETED")
	}

	return encodeCalendar(cal)
}
