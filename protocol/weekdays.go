package protocol

import (
	"fmt"
	"strings"
)

// Weekdays selects days for a timing entry, Monday first.
type Weekdays [7]bool

var dayNames = [7]string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

var (
	// Daily selects every day.
	Daily = Weekdays{true, true, true, true, true, true, true}
	// WorkingDays selects Monday to Friday.
	WorkingDays = Weekdays{true, true, true, true, true, false, false}
	// Weekend selects Saturday and Sunday.
	Weekend = Weekdays{false, false, false, false, false, true, true}
)

// Mask packs the selection into bits 0-6: day i sets bit i. Bit 7 is always
// clear so the result can be OR'ed with the timing set flag.
func (w Weekdays) Mask() byte {
	var mask byte
	for i, on := range w {
		if on {
			mask |= 1 << uint(i)
		}
	}
	return mask
}

// String lists the selected days, e.g. "mon,sun".
func (w Weekdays) String() string {
	var names []string
	for i, on := range w {
		if on {
			names = append(names, dayNames[i])
		}
	}
	return strings.Join(names, ",")
}

// WeekdaysFromSlice converts an ordered flag slice. It must have exactly one
// flag per day.
func WeekdaysFromSlice(flags []bool) (Weekdays, error) {
	var w Weekdays
	if len(flags) != len(w) {
		return w, &RangeError{Field: "weekday count", Value: len(flags), Min: len(w), Max: len(w)}
	}
	copy(w[:], flags)
	return w, nil
}

// ParseWeekdays accepts a comma separated list of day names ("mon,wed",
// "monday") or one of the shorthands "daily", "weekdays" and "weekend".
// An empty string selects no days.
func ParseWeekdays(s string) (Weekdays, error) {
	var w Weekdays
	for _, tok := range strings.Split(s, ",") {
		tok = strings.ToLower(strings.TrimSpace(tok))
		switch tok {
		case "":
			continue
		case "daily", "all":
			w = orDays(w, Daily)
			continue
		case "weekdays":
			w = orDays(w, WorkingDays)
			continue
		case "weekend":
			w = orDays(w, Weekend)
			continue
		}

		found := false
		for i, name := range dayNames {
			if len(tok) >= 3 && strings.HasPrefix(tok, name) {
				w[i] = true
				found = true
				break
			}
		}
		if !found {
			return Weekdays{}, fmt.Errorf("unknown day %q", tok)
		}
	}
	return w, nil
}

func orDays(a, b Weekdays) Weekdays {
	for i := range a {
		a[i] = a[i] || b[i]
	}
	return a
}
