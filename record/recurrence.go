package record

import (
	"fmt"
	"strings"

	"github.com/teambition/rrule-go"
)

// SummarizeRule renders an RRULE value as a short display phrase, e.g.
// "FREQ=WEEKLY;BYDAY=MO,WE" becomes "Every week on MO, WE". Rules with a
// frequency outside the known set, and rules that fail to parse, pass
// through as the raw value.
func SummarizeRule(rule string) string {
	if rule == "" {
		return ""
	}

	opt, err := rrule.StrToROption(rule)
	if err != nil {
		return rule
	}

	var unit string
	switch opt.Freq {
	case rrule.DAILY:
		unit = "day"
	case rrule.WEEKLY:
		unit = "week"
	case rrule.MONTHLY:
		unit = "month"
	case rrule.YEARLY:
		unit = "year"
	default:
		return rule
	}

	var phrase string
	if opt.Interval > 1 {
		phrase = fmt.Sprintf("Every %d %ss", opt.Interval, unit)
	} else {
		phrase = "Every " + unit
	}

	if len(opt.Byweekday) > 0 {
		days := make([]string, len(opt.Byweekday))
		for i, wd := range opt.Byweekday {
			days[i] = wd.String()
		}
		phrase += " on " + strings.Join(days, ", ")
	}

	return phrase
}
