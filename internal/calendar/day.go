package calendar

import (
	"fmt"
	"time"
)

// civil is a calendar date with no clock or location. Holiday sets and
// per-date overrides are keyed by it so that callers may query in any zone.
type civil struct {
	year  int
	month time.Month
	day   int
}

func civilOf(t time.Time) civil {
	y, m, d := t.Date()
	return civil{year: y, month: m, day: d}
}

func (c civil) utc() time.Time {
	return time.Date(c.year, c.month, c.day, 0, 0, 0, 0, time.UTC)
}

func (c civil) addDays(n int) civil {
	return civilOf(c.utc().AddDate(0, 0, n))
}

func (c civil) weekday() time.Weekday {
	return c.utc().Weekday()
}

func (c civil) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", c.year, c.month, c.day)
}

// weekendSet flags the weekdays that are never business days.
type weekendSet [7]bool

func (w weekendSet) days() []time.Weekday {
	var out []time.Weekday
	for d, off := range w {
		if off {
			out = append(out, time.Weekday(d))
		}
	}
	return out
}

// checkDate rejects bounds the engine cannot reason about.
func checkDate(field string, t time.Time) error {
	if t.IsZero() {
		return &RangeError{Field: field, Value: t, Reason: "zero time"}
	}
	if y := t.Year(); y < MinYear || y > MaxYear {
		return &RangeError{Field: field, Value: t, Reason: fmt.Sprintf("year outside %d..%d", MinYear, MaxYear)}
	}
	return nil
}
