// Package schedule holds the time-of-day rules: opening windows and serving radius.
package schedule

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time measured from midnight.
type TimeOfDay time.Duration

// Clock builds a TimeOfDay from hours, minutes and seconds.
func Clock(h, m, s int) TimeOfDay {
	return TimeOfDay(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second)
}

// At extracts the wall-clock part of t in t's location.
func At(t time.Time) TimeOfDay {
	h, m, s := t.Clock()
	return Clock(h, m, s) + TimeOfDay(t.Nanosecond())
}

// Parse accepts "15:04" or "15:04:05".
func Parse(s string) (TimeOfDay, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return At(t), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q", s)
}

// MustParse is Parse that panics on error. Intended for constants and tests.
func MustParse(s string) TimeOfDay {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// String formats as HH:MM, or HH:MM:SS when seconds are set.
func (t TimeOfDay) String() string {
	d := time.Duration(t)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	if s == 0 {
		return fmt.Sprintf("%02d:%02d", h, m)
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// Window is a same-day opening window. Overnight windows are not supported.
type Window struct {
	OpensAt  TimeOfDay
	ClosesAt TimeOfDay
}

// IsOpen reports whether t lies strictly between OpensAt and ClosesAt.
// A window with ClosesAt before OpensAt is never open.
func (w Window) IsOpen(t TimeOfDay) bool {
	return t > w.OpensAt && t < w.ClosesAt
}
