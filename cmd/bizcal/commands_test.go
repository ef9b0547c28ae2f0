package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/username/business-calendar/internal/calendar"
)

func TestPrintHolidays(t *testing.T) {
	holidays := []calendar.Holiday{
		{Date: time.Date(2026, time.July, 4, 0, 0, 0, 0, time.UTC), Name: "Independence Day"},
		{
			Date:         time.Date(2026, time.July, 6, 0, 0, 0, 0, time.UTC),
			Name:         "Independence Day (substitute)",
			Substitute:   true,
			ObservedFrom: time.Date(2026, time.July, 4, 0, 0, 0, 0, time.UTC),
		},
		{Date: time.Date(2027, time.December, 25, 0, 0, 0, 0, time.UTC), Name: "Christmas Day", SubstitutionFailed: true},
	}

	var buf bytes.Buffer
	printHolidays(&buf, holidays)

	want := []string{
		"2026-07-04 Sat  Independence Day",
		"2026-07-06 Mon  Independence Day (substitute) (for 2026-07-04)",
		"2027-12-25 Sat  Christmas Day [no substitute placed]",
	}
	got := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(got) != len(want) {
		t.Fatalf("printHolidays() printed %d lines, want %d:\n%s", len(got), len(want), buf.String())
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPrintHolidaysEmpty(t *testing.T) {
	var buf bytes.Buffer
	printHolidays(&buf, nil)

	if got := buf.String(); got != "No holidays\n" {
		t.Errorf("printHolidays(nil) = %q, want %q", got, "No holidays\n")
	}
}

func TestPrintDay(t *testing.T) {
	cal, err := calendar.NewBuilder().
		Holiday(calendar.FixedDate(time.July, 4, "Independence Day")).
		Hours(time.Friday, calendar.Window{Start: calendar.Clock(9, 0), End: calendar.Clock(17, 0)}).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	tests := []struct {
		name string
		date time.Time
		want string
	}{
		{"business day", time.Date(2024, time.July, 5, 0, 0, 0, 0, time.UTC), "2024-07-05 Fri  business  09:00-17:00  8.0h\n"},
		{"holiday", time.Date(2024, time.July, 4, 0, 0, 0, 0, time.UTC), "2024-07-04 Thu  holiday   Independence Day\n"},
		{"no hours declared", time.Date(2024, time.July, 8, 0, 0, 0, 0, time.UTC), "2024-07-08 Mon  business  00:00-24:00  24.0h (no hours declared)\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := cal.DayInfo(tt.date)
			if err != nil {
				t.Fatalf("DayInfo() error = %v", err)
			}

			var buf bytes.Buffer
			printDay(&buf, info)
			if got := buf.String(); got != tt.want {
				t.Errorf("printDay() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAddNegativeDays(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "log:\n  level: error\ncalendar:\n  holidays:\n    - name: Independence Day\n      month: 7\n      day: 4\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"--config", path, "add", "2024-07-10", "-4"}, "2024-07-03"},
		{[]string{"--config", path, "add", "2024-07-10", "-3"}, "2024-07-05"},
		{[]string{"add", "--config", path, "2024-07-03", "2"}, "2024-07-08"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args[len(tt.args)-2:], " "), func(t *testing.T) {
			var out bytes.Buffer
			root := newRootCmd()
			root.SetOut(&out)
			root.SetArgs(tt.args)

			if err := root.Execute(); err != nil {
				t.Fatalf("Execute(%v) error = %v", tt.args, err)
			}
			if got := strings.TrimSpace(out.String()); got != tt.want {
				t.Errorf("Execute(%v) printed %q, want %q", tt.args, got, tt.want)
			}
		})
	}
}
