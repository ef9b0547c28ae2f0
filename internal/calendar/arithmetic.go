package calendar

import (
	"time"

	"github.com/username/business-calendar/pkg/dateutil"
)

// NextBusinessDay returns the first business day strictly after date. The
// clock and location of date are kept.
func (c *Calendar) NextBusinessDay(date time.Time) (time.Time, error) {
	if err := checkDate("date", date); err != nil {
		return time.Time{}, err
	}
	return c.step("next business day", date, 1)
}

// PreviousBusinessDay returns the last business day strictly before date.
func (c *Calendar) PreviousBusinessDay(date time.Time) (time.Time, error) {
	if err := checkDate("date", date); err != nil {
		return time.Time{}, err
	}
	return c.step("previous business day", date, -1)
}

// FirstBusinessDay returns date when it is a business day, otherwise the next one.
func (c *Calendar) FirstBusinessDay(date time.Time) (time.Time, error) {
	if err := checkDate("date", date); err != nil {
		return time.Time{}, err
	}
	if c.IsBusinessDay(date) {
		return date, nil
	}
	return c.step("first business day", date, 1)
}

// LastBusinessDay returns date when it is a business day, otherwise the previous one.
func (c *Calendar) LastBusinessDay(date time.Time) (time.Time, error) {
	if err := checkDate("date", date); err != nil {
		return time.Time{}, err
	}
	if c.IsBusinessDay(date) {
		return date, nil
	}
	return c.step("last business day", date, -1)
}

// AddBusinessDays moves n business days away from date, backwards for a
// negative n. Zero returns date unchanged, even on a non-business day.
func (c *Calendar) AddBusinessDays(date time.Time, n int) (time.Time, error) {
	if err := checkDate("date", date); err != nil {
		return time.Time{}, err
	}
	if n == 0 {
		return date, nil
	}

	dir := 1
	if n < 0 {
		dir, n = -1, -n
	}

	var err error
	for ; n > 0; n-- {
		if date, err = c.step("add business days", date, dir); err != nil {
			return time.Time{}, err
		}
	}
	return date, nil
}

// step walks one day at a time in dir until it reaches a business day.
func (c *Calendar) step(op string, from time.Time, dir int) (time.Time, error) {
	for i := 1; i <= maxSearchDays; i++ {
		candidate := from.AddDate(0, 0, dir*i)
		if err := checkDate("date", candidate); err != nil {
			return time.Time{}, err
		}
		if c.IsBusinessDay(candidate) {
			return candidate, nil
		}
	}
	return time.Time{}, &UnresolvableError{Op: op, From: from, Limit: maxSearchDays}
}

// BusinessDaysBetween counts the business days in [start, end), comparing
// calendar dates only. A reversed range yields the negated count.
func (c *Calendar) BusinessDaysBetween(start, end time.Time) (int, error) {
	if err := checkDate("start", start); err != nil {
		return 0, err
	}
	if err := checkDate("end", end); err != nil {
		return 0, err
	}

	from, to := civilOf(start).utc(), civilOf(end).utc()
	sign := 1
	if to.Before(from) {
		from, to = to, from
		sign = -1
	}

	count := 0
	for day := from; day.Before(to); day = day.AddDate(0, 0, 1) {
		if c.IsBusinessDay(day) {
			count++
		}
	}
	return sign * count, nil
}

// BusinessDurationBetween returns the business time in [start, end): the
// overlap of the range with every business-hour window of every business day
// it touches. Days are laid out in the location of the earlier bound, so a
// reversed range yields exactly the negated duration.
func (c *Calendar) BusinessDurationBetween(start, end time.Time) (time.Duration, error) {
	if err := checkDate("start", start); err != nil {
		return 0, err
	}
	if err := checkDate("end", end); err != nil {
		return 0, err
	}

	if end.Before(start) {
		d, err := c.BusinessDurationBetween(end, start)
		return -d, err
	}
	end = end.In(start.Location())

	var total time.Duration
	for day := dateutil.StartOfDay(start); day.Before(end); day = day.AddDate(0, 0, 1) {
		if !c.IsBusinessDay(day) {
			continue
		}
		windows, err := c.windowsFor(day)
		if err != nil {
			return 0, err
		}
		for _, w := range windows {
			lo, hi := w.Start.On(day), w.End.On(day)
			if lo.Before(start) {
				lo = start
			}
			if hi.After(end) {
				hi = end
			}
			if hi.After(lo) {
				total += hi.Sub(lo)
			}
		}
	}
	return total, nil
}

// NextBusinessHourStart returns the first window start at or after t.
func (c *Calendar) NextBusinessHourStart(t time.Time) (time.Time, error) {
	return c.seekBoundary("next business hour start", t, 1, func(day time.Time, windows []Window) (time.Time, bool) {
		for _, w := range windows {
			if b := w.Start.On(day); !b.Before(t) {
				return b, true
			}
		}
		return time.Time{}, false
	})
}

// NextBusinessHourEnd returns the first window end at or after t.
func (c *Calendar) NextBusinessHourEnd(t time.Time) (time.Time, error) {
	return c.seekBoundary("next business hour end", t, 1, func(day time.Time, windows []Window) (time.Time, bool) {
		for _, w := range windows {
			if b := w.End.On(day); !b.Before(t) {
				return b, true
			}
		}
		return time.Time{}, false
	})
}

// LastBusinessHourStart returns the latest window start at or before t.
func (c *Calendar) LastBusinessHourStart(t time.Time) (time.Time, error) {
	return c.seekBoundary("last business hour start", t, -1, func(day time.Time, windows []Window) (time.Time, bool) {
		for i := len(windows) - 1; i >= 0; i-- {
			if b := windows[i].Start.On(day); !b.After(t) {
				return b, true
			}
		}
		return time.Time{}, false
	})
}

// LastBusinessHourEnd returns the latest window end at or before t.
func (c *Calendar) LastBusinessHourEnd(t time.Time) (time.Time, error) {
	return c.seekBoundary("last business hour end", t, -1, func(day time.Time, windows []Window) (time.Time, bool) {
		for i := len(windows) - 1; i >= 0; i-- {
			if b := windows[i].End.On(day); !b.After(t) {
				return b, true
			}
		}
		return time.Time{}, false
	})
}

// seekBoundary scans business days from t's own day in dir and returns the
// first boundary pick accepts.
func (c *Calendar) seekBoundary(op string, t time.Time, dir int, pick func(day time.Time, windows []Window) (time.Time, bool)) (time.Time, error) {
	if err := checkDate("at", t); err != nil {
		return time.Time{}, err
	}

	start := dateutil.StartOfDay(t)
	for i := 0; i <= maxSearchDays; i++ {
		day := start.AddDate(0, 0, dir*i)
		if !c.IsBusinessDay(day) {
			continue
		}
		windows, err := c.windowsFor(day)
		if err != nil {
			return time.Time{}, err
		}
		if b, ok := pick(day, windows); ok {
			return b, nil
		}
	}
	return time.Time{}, &UnresolvableError{Op: op, From: t, Limit: maxSearchDays}
}
