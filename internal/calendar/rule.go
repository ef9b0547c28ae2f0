package calendar

import (
	"fmt"
	"time"

	"github.com/username/business-calendar/pkg/dateutil"
)

// Supported year range for rule resolution and queries (proleptic Gregorian).
const (
	MinYear = 1583
	MaxYear = 9999

	maxEasterOffset = 365
)

// RuleKind tags the variant carried by a Rule
type RuleKind int

const (
	RuleFixedDate RuleKind = iota + 1
	RuleNthWeekday
	RuleEasterRelative
	RuleExplicit
	RuleRecurring
)

func (k RuleKind) String() string {
	switch k {
	case RuleFixedDate:
		return "fixed"
	case RuleNthWeekday:
		return "nth_weekday"
	case RuleEasterRelative:
		return "easter"
	case RuleExplicit:
		return "explicit"
	case RuleRecurring:
		return "recurring"
	default:
		return fmt.Sprintf("RuleKind(%d)", int(k))
	}
}

// Rule describes how a holiday recurs.
//
// Only the fields of the variant named by Kind are meaningful:
//   - RuleFixedDate:      Month, Day
//   - RuleNthWeekday:     Month, Weekday, Ordinal (negative counts from the month end)
//   - RuleEasterRelative: Offset (days from Easter Sunday)
//   - RuleExplicit:       Year, Month, Day
//   - RuleRecurring:      StartYear, EndYear (0 = unbounded), Base
//
// Rules are values; build them with the constructors below.
type Rule struct {
	Kind    RuleKind
	Name    string
	Month   time.Month
	Day     int
	Weekday time.Weekday
	Ordinal int
	Offset  int
	Year    int

	StartYear int
	EndYear   int
	Base      *Rule

	// Substitution overrides the calendar-wide direction for this rule.
	Substitution SubstitutionDirection
}

// FixedDate returns a rule for the same month and day every year.
func FixedDate(month time.Month, day int, name string) Rule {
	return Rule{Kind: RuleFixedDate, Month: month, Day: day, Name: name}
}

// NthWeekday returns a rule for the ordinal-th weekday of month,
// e.g. NthWeekday(time.January, time.Monday, 3, ...) or -1 for the last one.
func NthWeekday(month time.Month, weekday time.Weekday, ordinal int, name string) Rule {
	return Rule{Kind: RuleNthWeekday, Month: month, Weekday: weekday, Ordinal: ordinal, Name: name}
}

// EasterRelative returns a rule offset days from Western Easter Sunday.
func EasterRelative(offset int, name string) Rule {
	return Rule{Kind: RuleEasterRelative, Offset: offset, Name: name}
}

// Explicit returns a one-off rule for a single date.
func Explicit(year int, month time.Month, day int, name string) Rule {
	return Rule{Kind: RuleExplicit, Year: year, Month: month, Day: day, Name: name}
}

// Recurring limits base to the years [startYear, endYear]. Zero leaves that side open.
func Recurring(startYear, endYear int, base Rule) Rule {
	b := base
	return Rule{Kind: RuleRecurring, StartYear: startYear, EndYear: endYear, Base: &b, Name: base.Name}
}

// WithSubstitution returns a copy of r using direction instead of the calendar default.
func (r Rule) WithSubstitution(direction SubstitutionDirection) Rule {
	r.Substitution = direction
	return r
}

// HolidayName returns the name resolved dates carry.
func (r Rule) HolidayName() string {
	if r.Kind == RuleRecurring && r.Base != nil && r.Name == "" {
		return r.Base.HolidayName()
	}
	return r.Name
}

// substitutionDirection returns the innermost explicit override, if any.
func (r Rule) substitutionDirection() SubstitutionDirection {
	if r.Substitution != SubstituteDefault {
		return r.Substitution
	}
	if r.Kind == RuleRecurring && r.Base != nil {
		return r.Base.substitutionDirection()
	}
	return SubstituteDefault
}

// Resolve returns the date r falls on in year, at midnight UTC.
// A rule that does not occur in year (5th Monday, Feb 29 on a common year,
// out-of-range recurring) reports false.
func (r Rule) Resolve(year int) (time.Time, bool) {
	switch r.Kind {
	case RuleFixedDate:
		return dateIfValid(year, r.Month, r.Day)

	case RuleNthWeekday:
		day := nthWeekdayOfMonth(year, r.Month, r.Weekday, r.Ordinal)
		if day == 0 {
			return time.Time{}, false
		}
		return time.Date(year, r.Month, day, 0, 0, 0, 0, time.UTC), true

	case RuleEasterRelative:
		return EasterSunday(year).AddDate(0, 0, r.Offset), true

	case RuleExplicit:
		if year != r.Year {
			return time.Time{}, false
		}
		return dateIfValid(year, r.Month, r.Day)

	case RuleRecurring:
		if r.Base == nil {
			return time.Time{}, false
		}
		if r.StartYear != 0 && year < r.StartYear {
			return time.Time{}, false
		}
		if r.EndYear != 0 && year > r.EndYear {
			return time.Time{}, false
		}
		return r.Base.Resolve(year)
	}

	return time.Time{}, false
}

// Validate checks the variant parameters. Failures are *ConfigError.
func (r Rule) Validate() error {
	if r.HolidayName() == "" {
		return configErr("rule.name", r.Name, "holiday name is required")
	}

	switch r.Kind {
	case RuleFixedDate:
		if err := validateMonth(r.Month); err != nil {
			return err
		}
		if r.Day < 1 || r.Day > maxDaysIn(r.Month) {
			return configErr("rule.day", r.Day, fmt.Sprintf("%s has no such day", r.Month))
		}

	case RuleNthWeekday:
		if err := validateMonth(r.Month); err != nil {
			return err
		}
		if err := validateWeekday(r.Weekday); err != nil {
			return err
		}
		if r.Ordinal == 0 || r.Ordinal > 5 || r.Ordinal < -5 {
			return configErr("rule.ordinal", r.Ordinal, "must be 1..5 or -1..-5")
		}

	case RuleEasterRelative:
		if r.Offset > maxEasterOffset || r.Offset < -maxEasterOffset {
			return configErr("rule.offset", r.Offset, fmt.Sprintf("must be within ±%d days", maxEasterOffset))
		}

	case RuleExplicit:
		if r.Year < MinYear || r.Year > MaxYear {
			return configErr("rule.year", r.Year, fmt.Sprintf("must be within %d..%d", MinYear, MaxYear))
		}
		if err := validateMonth(r.Month); err != nil {
			return err
		}
		if _, ok := dateIfValid(r.Year, r.Month, r.Day); !ok {
			return configErr("rule.day", r.Day, fmt.Sprintf("%d-%02d has no such day", r.Year, r.Month))
		}

	case RuleRecurring:
		if r.Base == nil {
			return configErr("rule.base", nil, "recurring rule needs a base rule")
		}
		if r.StartYear != 0 && r.EndYear != 0 && r.StartYear > r.EndYear {
			return configErr("rule.start_year", r.StartYear, fmt.Sprintf("after end year %d", r.EndYear))
		}
		if err := r.Base.Validate(); err != nil {
			return err
		}

	default:
		return configErr("rule.kind", int(r.Kind), "unknown rule kind")
	}

	if r.Substitution < SubstituteDefault || r.Substitution > SubstituteNearest {
		return configErr("rule.substitution", int(r.Substitution), "unknown substitution direction")
	}
	return nil
}

// String describes the rule, e.g. "3rd Monday of January".
func (r Rule) String() string {
	switch r.Kind {
	case RuleFixedDate:
		return fmt.Sprintf("%s %d", r.Month, r.Day)
	case RuleNthWeekday:
		if r.Ordinal < 0 {
			if r.Ordinal == -1 {
				return fmt.Sprintf("last %s of %s", r.Weekday, r.Month)
			}
			return fmt.Sprintf("%s last %s of %s", ordinal(-r.Ordinal), r.Weekday, r.Month)
		}
		return fmt.Sprintf("%s %s of %s", ordinal(r.Ordinal), r.Weekday, r.Month)
	case RuleEasterRelative:
		return fmt.Sprintf("Easter %+d days", r.Offset)
	case RuleExplicit:
		return fmt.Sprintf("%04d-%02d-%02d", r.Year, r.Month, r.Day)
	case RuleRecurring:
		if r.Base == nil {
			return "recurring(<nil>)"
		}
		return fmt.Sprintf("%s [%s..%s]", r.Base.String(), yearBound(r.StartYear), yearBound(r.EndYear))
	}
	return r.Kind.String()
}

// nthWeekdayOfMonth returns the day of month, or 0 when the occurrence does not exist.
func nthWeekdayOfMonth(year int, month time.Month, weekday time.Weekday, n int) int {
	days := dateutil.DaysIn(year, month)

	if n > 0 {
		first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Weekday()
		day := 1 + (int(weekday)-int(first)+7)%7 + 7*(n-1)
		if day > days {
			return 0
		}
		return day
	}
	if n < 0 {
		last := time.Date(year, month, days, 0, 0, 0, 0, time.UTC).Weekday()
		day := days - (int(last)-int(weekday)+7)%7 - 7*(-n-1)
		if day < 1 {
			return 0
		}
		return day
	}
	return 0
}

func dateIfValid(year int, month time.Month, day int) (time.Time, bool) {
	if month < time.January || month > time.December || day < 1 || day > dateutil.DaysIn(year, month) {
		return time.Time{}, false
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
}

// referenceLeapYear is any leap year; months are longest in one.
const referenceLeapYear = 2000

// maxDaysIn is the longest the month gets in any year
func maxDaysIn(month time.Month) int {
	return dateutil.DaysIn(referenceLeapYear, month)
}

func validateMonth(month time.Month) error {
	if month < time.January || month > time.December {
		return configErr("rule.month", int(month), "must be 1..12")
	}
	return nil
}

func validateWeekday(weekday time.Weekday) error {
	if weekday < time.Sunday || weekday > time.Saturday {
		return configErr("weekday", int(weekday), "must be 0 (Sunday)..6 (Saturday)")
	}
	return nil
}

func ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

func yearBound(year int) string {
	if year == 0 {
		return "*"
	}
	return fmt.Sprintf("%d", year)
}
