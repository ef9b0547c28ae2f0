package calendar

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is an offset from midnight, 00:00 through 24:00 inclusive.
type TimeOfDay time.Duration

// EndOfDay is 24:00, the exclusive end of a whole-day window.
const EndOfDay = TimeOfDay(24 * time.Hour)

// Clock returns the time of day hour:minute.
func Clock(hour, minute int) TimeOfDay {
	return TimeOfDay(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

// TimeOfDayOf returns the wall-clock time of t.
func TimeOfDayOf(t time.Time) TimeOfDay {
	h, m, s := t.Clock()
	return TimeOfDay(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second + time.Duration(t.Nanosecond()))
}

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS". "24:00" is accepted.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, configErr("time_of_day", s, "want HH:MM")
	}

	var values [3]int
	for i, p := range parts {
		if !allDigits(p) {
			return 0, configErr("time_of_day", s, "want HH:MM")
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return 0, configErr("time_of_day", s, "want HH:MM")
		}
		values[i] = v
	}

	h, m, sec := values[0], values[1], values[2]
	if h < 0 || h > 24 || m < 0 || m > 59 || sec < 0 || sec > 59 {
		return 0, configErr("time_of_day", s, "out of range")
	}
	tod := TimeOfDay(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second)
	if tod > EndOfDay {
		return 0, configErr("time_of_day", s, "past 24:00")
	}
	return tod, nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// On returns the instant tod on the date of day, in day's location.
func (t TimeOfDay) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, 0, 0, int(t), day.Location())
}

func (t TimeOfDay) String() string {
	d := time.Duration(t)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	if s != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}

// Window is a business-hours interval [Start, End) within one day.
type Window struct {
	Start TimeOfDay
	End   TimeOfDay
}

// AllDay is the 00:00-24:00 window.
var AllDay = Window{Start: 0, End: EndOfDay}

// Contains reports whether tod falls in the window; the end is exclusive.
func (w Window) Contains(tod TimeOfDay) bool {
	return tod >= w.Start && tod < w.End
}

// Duration returns the window length.
func (w Window) Duration() time.Duration {
	return time.Duration(w.End - w.Start)
}

func (w Window) String() string {
	return w.Start.String() + "-" + w.End.String()
}

// ParseWindows parses "09:00-12:00,13:00-17:00". An end of 00:00 means 24:00.
// The result is sorted and checked for overlaps.
func ParseWindows(s string) ([]Window, error) {
	var windows []Window
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		bounds := strings.Split(part, "-")
		if len(bounds) != 2 {
			return nil, configErr("hours", part, "want HH:MM-HH:MM")
		}
		start, err := ParseTimeOfDay(bounds[0])
		if err != nil {
			return nil, err
		}
		end, err := ParseTimeOfDay(bounds[1])
		if err != nil {
			return nil, err
		}
		if end == 0 {
			end = EndOfDay
		}
		windows = append(windows, Window{Start: start, End: end})
	}
	if len(windows) == 0 {
		return nil, configErr("hours", s, "no windows")
	}
	return normalizeWindows("hours", windows)
}

// normalizeWindows returns a sorted copy of windows, rejecting empty,
// out-of-range and overlapping intervals. Touching intervals are allowed.
func normalizeWindows(field string, windows []Window) ([]Window, error) {
	if len(windows) == 0 {
		return nil, configErr(field, "", "at least one window is required")
	}

	out := make([]Window, len(windows))
	copy(out, windows)
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })

	for i, w := range out {
		if w.Start < 0 || w.End > EndOfDay {
			return nil, configErr(field, w.String(), "outside 00:00-24:00")
		}
		if w.Start >= w.End {
			return nil, configErr(field, w.String(), "start must be before end")
		}
		if i > 0 && w.Start < out[i-1].End {
			return nil, configErr(field, w.String(), "overlaps "+out[i-1].String())
		}
	}
	return out, nil
}

// BusinessHours holds weekday defaults and per-date overrides.
type BusinessHours struct {
	weekly [7][]Window
	dated  map[civil][]Window
}

func newBusinessHours() *BusinessHours {
	return &BusinessHours{dated: make(map[civil][]Window)}
}

// clone returns a copy that shares no maps with h. Window slices are never
// mutated after normalizeWindows and may be shared.
func (h *BusinessHours) clone() *BusinessHours {
	out := &BusinessHours{weekly: h.weekly, dated: make(map[civil][]Window, len(h.dated))}
	for d, ws := range h.dated {
		out.dated[d] = ws
	}
	return out
}

// WindowsFor returns the windows that apply to date and whether any were declared.
// A per-date override wins over the weekday default.
func (h *BusinessHours) WindowsFor(date time.Time) ([]Window, bool) {
	if ws, ok := h.dated[civilOf(date)]; ok {
		return ws, true
	}
	if ws := h.weekly[date.Weekday()]; len(ws) > 0 {
		return ws, true
	}
	return nil, false
}

// Declared reports whether any hours were configured at all.
func (h *BusinessHours) Declared() bool {
	if len(h.dated) > 0 {
		return true
	}
	for _, ws := range h.weekly {
		if len(ws) > 0 {
			return true
		}
	}
	return false
}
