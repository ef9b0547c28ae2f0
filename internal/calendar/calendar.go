package calendar

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// maxSearchDays bounds every day-by-day search (about ten years).
const maxSearchDays = 3660

// DayType represents the type of day
type DayType int

const (
	DayTypeBusiness DayType = iota + 1
	DayTypeWeekend
	DayTypeHoliday
)

func (t DayType) String() string {
	switch t {
	case DayTypeBusiness:
		return "business"
	case DayTypeWeekend:
		return "weekend"
	case DayTypeHoliday:
		return "holiday"
	default:
		return "unknown"
	}
}

// DayInfo represents information about a specific day
type DayInfo struct {
	Date     time.Time
	Type     DayType
	Holidays []Holiday
	Windows  []Window

	// HoursDeclared is false when Windows is the implicit all-day window.
	HoursDeclared bool
	BusinessHours time.Duration
}

// IsBusinessDay reports whether the day is neither weekend nor holiday.
func (d *DayInfo) IsBusinessDay() bool {
	return d.Type == DayTypeBusiness
}

// MonthInfo represents calendar information for a month
type MonthInfo struct {
	Year          int
	Month         time.Month
	BusinessDays  int
	Weekends      int
	Holidays      int
	BusinessHours time.Duration
	Days          []DayInfo
}

// Stats describes the calendar's current state.
type Stats struct {
	Rules        int
	CachedYears  int
	WeekendDays  []time.Weekday
	Substitution SubstitutionPolicy
}

// Calendar answers business-day and business-hour questions. It is built by
// Builder and safe for concurrent queries. AddRule, RemoveRules and
// ClearCache may run alongside queries, but a query racing a mutation may
// observe either the old or the new rules.
type Calendar struct {
	weekend weekendSet
	policy  SubstitutionPolicy
	hours   *BusinessHours
	allDay  bool
	logger  *zap.Logger

	cacheMu    sync.RWMutex
	rules      []Rule
	generation uint64
	cache      map[int]*HolidaySet
}

// holidaySet returns the resolved holidays of year, resolving on first use.
func (c *Calendar) holidaySet(year int) *HolidaySet {
	if year < MinYear || year > MaxYear {
		return newHolidaySet(year, nil)
	}

	c.cacheMu.RLock()
	if set, ok := c.cache[year]; ok {
		c.cacheMu.RUnlock()
		return set
	}
	rules := c.rules
	generation := c.generation
	c.cacheMu.RUnlock()

	r := &resolver{rules: rules, weekend: c.weekend, policy: c.policy, logger: c.logger}
	set := r.resolve(year)

	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	if existing, ok := c.cache[year]; ok {
		return existing
	}
	if generation == c.generation {
		c.cache[year] = set
		c.logger.Debug("Resolved holidays",
			zap.Int("year", year),
			zap.Int("holidays", set.Len()))
	}
	return set
}

func (c *Calendar) isBusinessDay(d civil) bool {
	if c.weekend[d.weekday()] {
		return false
	}
	return !c.holidaySet(d.year).contains(d)
}

// IsBusinessDay reports whether date, read in its own location, is neither a
// weekend day nor a holiday.
func (c *Calendar) IsBusinessDay(date time.Time) bool {
	return c.isBusinessDay(civilOf(date))
}

// IsHoliday reports whether date carries at least one holiday entry,
// substitutes included.
func (c *Calendar) IsHoliday(date time.Time) bool {
	d := civilOf(date)
	return c.holidaySet(d.year).contains(d)
}

// IsWeekend reports whether date falls on a weekend day.
func (c *Calendar) IsWeekend(date time.Time) bool {
	return c.weekend[date.Weekday()]
}

// IsBusinessMoment reports whether t is on a business day and inside one of
// its business-hour windows.
func (c *Calendar) IsBusinessMoment(t time.Time) (bool, error) {
	if err := checkDate("at", t); err != nil {
		return false, err
	}
	if !c.IsBusinessDay(t) {
		return false, nil
	}

	windows, err := c.windowsFor(t)
	if err != nil {
		return false, err
	}
	tod := TimeOfDayOf(t)
	for _, w := range windows {
		if w.Contains(tod) {
			return true, nil
		}
	}
	return false, nil
}

// windowsFor returns the windows used by time-level queries on date.
func (c *Calendar) windowsFor(date time.Time) ([]Window, error) {
	if ws, ok := c.hours.WindowsFor(date); ok {
		return ws, nil
	}
	if c.allDay {
		return []Window{AllDay}, nil
	}
	return nil, &NoHoursError{Date: civilOf(date).utc()}
}

// HolidaysInYear returns every entry of year, sorted by date with originals
// before substitutes.
func (c *Calendar) HolidaysInYear(year int) []Holiday {
	return c.holidaySet(year).Holidays()
}

// HolidaysOn returns the entries observed on date.
func (c *Calendar) HolidaysOn(date time.Time) []Holiday {
	return c.holidaySet(date.Year()).On(date)
}

// HolidaysBetween returns the entries dated from..to inclusive. The bounds may
// be given in either order.
func (c *Calendar) HolidaysBetween(from, to time.Time) []Holiday {
	lo, hi := civilOf(from), civilOf(to)
	if hi.utc().Before(lo.utc()) {
		lo, hi = hi, lo
	}

	var out []Holiday
	for year := max(lo.year, MinYear); year <= min(hi.year, MaxYear); year++ {
		for _, h := range c.holidaySet(year).entries {
			if h.Date.Before(lo.utc()) || h.Date.After(hi.utc()) {
				continue
			}
			out = append(out, h)
		}
	}
	return out
}

// DayInfo returns detailed info for a specific day. Windows is empty for
// non-business days. A business day with no declared hours reports the
// all-day window with HoursDeclared false.
func (c *Calendar) DayInfo(date time.Time) (*DayInfo, error) {
	if err := checkDate("date", date); err != nil {
		return nil, err
	}
	d := civilOf(date)
	info := &DayInfo{
		Date:     d.utc(),
		Type:     DayTypeBusiness,
		Holidays: c.holidaySet(d.year).On(date),
	}

	switch {
	case len(info.Holidays) > 0:
		info.Type = DayTypeHoliday
	case c.weekend[d.weekday()]:
		info.Type = DayTypeWeekend
	}
	if info.Type != DayTypeBusiness {
		return info, nil
	}

	windows, declared := c.hours.WindowsFor(date)
	if !declared {
		windows = []Window{AllDay}
	}
	info.Windows = windows
	info.HoursDeclared = declared
	for _, w := range windows {
		info.BusinessHours += w.Duration()
	}
	return info, nil
}

// MonthInfo returns calendar info for the entire month
func (c *Calendar) MonthInfo(year int, month time.Month) (*MonthInfo, error) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	if err := checkDate("month", first); err != nil {
		return nil, err
	}

	info := &MonthInfo{Year: year, Month: month}
	for day := first; day.Month() == month; day = day.AddDate(0, 0, 1) {
		d, err := c.DayInfo(day)
		if err != nil {
			return nil, err
		}
		switch d.Type {
		case DayTypeBusiness:
			info.BusinessDays++
			info.BusinessHours += d.BusinessHours
		case DayTypeWeekend:
			info.Weekends++
		case DayTypeHoliday:
			info.Holidays++
		}
		info.Days = append(info.Days, *d)
	}
	return info, nil
}

// AddRule validates rule, appends it and drops every cached year.
func (c *Calendar) AddRule(rule Rule) error {
	if err := rule.Validate(); err != nil {
		return err
	}

	c.cacheMu.Lock()
	rules := make([]Rule, len(c.rules), len(c.rules)+1)
	copy(rules, c.rules)
	c.rules = append(rules, rule)
	c.resetLocked()
	c.cacheMu.Unlock()

	c.logger.Info("Holiday rule added",
		zap.String("name", rule.HolidayName()),
		zap.String("rule", rule.String()))
	return nil
}

// RemoveRules removes every rule whose holiday name is name and returns how
// many were removed.
func (c *Calendar) RemoveRules(name string) int {
	c.cacheMu.Lock()
	rules := make([]Rule, 0, len(c.rules))
	for _, r := range c.rules {
		if r.HolidayName() != name {
			rules = append(rules, r)
		}
	}
	removed := len(c.rules) - len(rules)
	if removed > 0 {
		c.rules = rules
		c.resetLocked()
	}
	c.cacheMu.Unlock()

	if removed > 0 {
		c.logger.Info("Holiday rules removed",
			zap.String("name", name),
			zap.Int("count", removed))
	}
	return removed
}

// Rules returns a copy of the registered rules.
func (c *Calendar) Rules() []Rule {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// ClearCache drops every resolved year.
func (c *Calendar) ClearCache() {
	c.cacheMu.Lock()
	c.resetLocked()
	c.cacheMu.Unlock()
	c.logger.Debug("Holiday cache cleared")
}

func (c *Calendar) resetLocked() {
	c.generation++
	c.cache = make(map[int]*HolidaySet)
}

// Stats returns a snapshot of the calendar's configuration and cache.
func (c *Calendar) Stats() Stats {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()
	return Stats{
		Rules:        len(c.rules),
		CachedYears:  len(c.cache),
		WeekendDays:  c.weekend.days(),
		Substitution: c.policy,
	}
}

// CachedYears lists the years currently resolved, ascending.
func (c *Calendar) CachedYears() []int {
	c.cacheMu.RLock()
	years := make([]int, 0, len(c.cache))
	for y := range c.cache {
		years = append(years, y)
	}
	c.cacheMu.RUnlock()
	sort.Ints(years)
	return years
}
