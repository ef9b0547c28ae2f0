package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/username/business-calendar/internal/calendar"
	"github.com/username/business-calendar/internal/holidayfile"
)

// Builder translates the calendar section into a calendar builder. Holiday
// files are not read; see BuildCalendar.
func (c *CalendarConfig) Builder(logger *zap.Logger) (*calendar.Builder, error) {
	var errs error
	b := calendar.NewBuilder().Logger(logger).AllDayWhenNoHours(c.AllDayWhenNoHours)

	if c.WeekendDays != nil {
		days := make([]time.Weekday, 0, len(c.WeekendDays))
		for _, name := range c.WeekendDays {
			d, err := ParseWeekday(name)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("calendar.weekend_days: %w", err))
				continue
			}
			days = append(days, d)
		}
		b.WeekendDays(days...)
	}

	direction, err := calendar.ParseSubstitutionDirection(c.Substitution)
	if err != nil {
		errs = multierr.Append(errs, err)
	}
	if direction == calendar.SubstituteDefault {
		direction = calendar.SubstituteNone
	}
	b.Substitution(direction)

	if c.MaxSubstitutionWalk != 0 {
		b.MaxSubstitutionWalk(c.MaxSubstitutionWalk)
	}

	for key, value := range c.Hours {
		weekday, err := ParseWeekday(key)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("calendar.hours: %w", err))
			continue
		}
		windows, err := calendar.ParseWindows(value)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("calendar.hours.%s: %w", key, err))
			continue
		}
		b.Hours(weekday, windows...)
	}

	for key, value := range c.DateHours {
		date, err := parseDateKey(key)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("calendar.date_hours: %w", err))
			continue
		}
		windows, err := calendar.ParseWindows(value)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("calendar.date_hours.%s: %w", key, err))
			continue
		}
		b.HoursOn(date, windows...)
	}

	for i, h := range c.Holidays {
		rule, err := h.Rule()
		if err == nil {
			err = rule.Validate()
		}
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("calendar.holidays[%d] %q: %w", i, h.Name, err))
			continue
		}
		b.Holiday(rule)
	}

	errs = multierr.Append(errs, b.Err())
	if errs != nil {
		return nil, errs
	}
	return b, nil
}

// BuildCalendar builds the calendar, loading every holiday file first.
func (c *CalendarConfig) BuildCalendar(ctx context.Context, logger *zap.Logger) (*calendar.Calendar, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	b, err := c.Builder(logger)
	if err != nil {
		return nil, err
	}

	for _, src := range c.HolidayFiles {
		loader := holidayfile.NewLoader(c.GetFetchTimeout(), src.Prefix, logger)
		f, err := loader.LoadWithFallback(ctx, src.Source, src.Fallback)
		if err != nil {
			return nil, fmt.Errorf("failed to load holiday file: %w", err)
		}
		f.Apply(b)
	}

	cal, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build calendar: %w", err)
	}
	return cal, nil
}

// Rule converts the entry into a calendar rule. Start and end years wrap the
// rule in a recurring range.
func (h *HolidayConfig) Rule() (calendar.Rule, error) {
	var rule calendar.Rule

	switch strings.ToLower(strings.TrimSpace(h.Kind)) {
	case "", "fixed":
		rule = calendar.FixedDate(time.Month(h.Month), h.Day, h.Name)
	case "nth_weekday":
		weekday, err := ParseWeekday(h.Weekday)
		if err != nil {
			return calendar.Rule{}, err
		}
		rule = calendar.NthWeekday(time.Month(h.Month), weekday, h.Ordinal, h.Name)
	case "easter":
		rule = calendar.EasterRelative(h.Offset, h.Name)
	case "explicit":
		rule = calendar.Explicit(h.Year, time.Month(h.Month), h.Day, h.Name)
	default:
		return calendar.Rule{}, fmt.Errorf("unknown kind %q, want fixed, nth_weekday, easter or explicit", h.Kind)
	}

	if h.Substitution != "" {
		direction, err := calendar.ParseSubstitutionDirection(h.Substitution)
		if err != nil {
			return calendar.Rule{}, err
		}
		rule = rule.WithSubstitution(direction)
	}

	if h.StartYear != 0 || h.EndYear != 0 {
		rule = calendar.Recurring(h.StartYear, h.EndYear, rule)
	}
	return rule, nil
}
