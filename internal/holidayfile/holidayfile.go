// Package holidayfile loads holiday and special-hours dates from CSV files,
// local or served over HTTP.
//
// File format, one header line then one row per date:
//
//	date,kind,hours,name
//	2024-12-25,holiday,,Christmas Day
//	2024-12-24,hours,09:00-13:00,Christmas Eve
//	2024-12-31,hours,,Closed
//
// kind is "holiday" (the default when empty) or "hours". An "hours" row with
// an empty hours column closes the date and is recorded as a holiday.
package holidayfile

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"go.uber.org/multierr"

	"github.com/username/business-calendar/internal/calendar"
	"github.com/username/business-calendar/pkg/dateutil"
)

const (
	KindHoliday = "holiday"
	KindHours   = "hours"

	closedName = "Closed"
)

// Record is one CSV row.
type Record struct {
	Date  string `csv:"date"`
	Kind  string `csv:"kind"`
	Hours string `csv:"hours"`
	Name  string `csv:"name"`
}

// DateHours overrides the business hours of one date.
type DateHours struct {
	Date    time.Time
	Windows []calendar.Window
	Name    string
}

// File is the parsed content of a holiday file.
type File struct {
	Source   string
	Holidays []calendar.Rule
	Hours    []DateHours
}

// Parse decodes a holiday file. Every invalid row is reported; the returned
// error combines them. prefix is prepended to every holiday name.
func Parse(r io.Reader, prefix string) (*File, error) {
	var records []*Record
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, fmt.Errorf("failed to decode holiday file: %w", err)
	}

	f := &File{}
	var errs error
	for i, rec := range records {
		// header is line 1
		if err := f.add(rec, prefix); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("line %d: %w", i+2, err))
		}
	}
	if errs != nil {
		return nil, errs
	}
	return f, nil
}

func (f *File) add(rec *Record, prefix string) error {
	date, err := dateutil.ParseDate(rec.Date, time.UTC)
	if err != nil {
		return err
	}
	name := strings.TrimSpace(rec.Name)
	hours := strings.TrimSpace(rec.Hours)

	switch strings.ToLower(strings.TrimSpace(rec.Kind)) {
	case "", KindHoliday:
		if name == "" {
			return fmt.Errorf("holiday on %s has no name", rec.Date)
		}
		return f.addHoliday(date, prefix+name)

	case KindHours:
		if hours == "" {
			if name == "" {
				name = closedName
			}
			return f.addHoliday(date, prefix+name)
		}
		windows, err := calendar.ParseWindows(hours)
		if err != nil {
			return err
		}
		f.Hours = append(f.Hours, DateHours{Date: date, Windows: windows, Name: name})
		return nil
	}

	return fmt.Errorf("unknown kind %q, want %s or %s", rec.Kind, KindHoliday, KindHours)
}

func (f *File) addHoliday(date time.Time, name string) error {
	rule := calendar.Explicit(date.Year(), date.Month(), date.Day(), name)
	if err := rule.Validate(); err != nil {
		return err
	}
	f.Holidays = append(f.Holidays, rule)
	return nil
}

// Apply registers the file's holidays and hour overrides on b.
func (f *File) Apply(b *calendar.Builder) *calendar.Builder {
	b.Holiday(f.Holidays...)
	for _, h := range f.Hours {
		b.HoursOn(h.Date, h.Windows...)
	}
	return b
}
