package record

import "time"

// Task is the typed view of a single VTODO. Properties the codec does not
// model stay in the stored representation untouched; this struct only
// carries what callers can read and patch.
type Task struct {
	UID             string
	Summary         string
	Notes           string
	Location        string
	Status          string
	Class           string
	Priority        int // 0 = undefined, 1 = highest, 9 = lowest
	PercentComplete int
	Due             *DateTime
	Start           *DateTime
	Completed       *time.Time
	Categories      []string
	ParentUID       string
}

// IsDone reports whether the task carries a completed status marker.
func (t *Task) IsDone() bool {
	return t.Status == "COMPLETED"
}
