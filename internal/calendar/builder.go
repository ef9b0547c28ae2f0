package calendar

import (
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Builder collects rules, weekend days, hours and substitution settings and
// produces a Calendar. Errors are accumulated and reported together by Build.
type Builder struct {
	weekend weekendSet
	policy  SubstitutionPolicy
	allDay  bool
	logger  *zap.Logger
	rules   []Rule
	hours   *BusinessHours

	err   error
	built bool
}

// NewBuilder returns a builder for a Saturday+Sunday weekend with no
// substitution and no business hours.
func NewBuilder() *Builder {
	b := &Builder{
		policy: SubstitutionPolicy{Direction: SubstituteNone, MaxWalk: DefaultMaxSubstitutionWalk},
		logger: zap.NewNop(),
		hours:  newBusinessHours(),
	}
	b.weekend[time.Saturday] = true
	b.weekend[time.Sunday] = true
	return b
}

// WeekendDays replaces the weekend. An empty list means every day is a workday.
func (b *Builder) WeekendDays(days ...time.Weekday) *Builder {
	var weekend weekendSet
	for _, d := range days {
		if err := validateWeekday(d); err != nil {
			b.err = multierr.Append(b.err, err)
			continue
		}
		weekend[d] = true
	}
	b.weekend = weekend
	return b
}

// Substitution sets the calendar-wide direction for holidays landing on a weekend.
func (b *Builder) Substitution(direction SubstitutionDirection) *Builder {
	b.policy.Direction = direction
	return b
}

// MaxSubstitutionWalk caps how many days a substitute may move.
func (b *Builder) MaxSubstitutionWalk(days int) *Builder {
	b.policy.MaxWalk = days
	return b
}

// AllDayWhenNoHours makes time-level queries treat a business day without
// declared hours as open 00:00-24:00 instead of failing.
func (b *Builder) AllDayWhenNoHours(enabled bool) *Builder {
	b.allDay = enabled
	return b
}

// Logger sets the logger. A nil logger disables logging.
func (b *Builder) Logger(logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	b.logger = logger
	return b
}

// Holiday registers rules.
func (b *Builder) Holiday(rules ...Rule) *Builder {
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			b.err = multierr.Append(b.err, err)
			continue
		}
		b.rules = append(b.rules, r)
	}
	return b
}

// Hours sets the default windows of weekday, replacing earlier ones.
func (b *Builder) Hours(weekday time.Weekday, windows ...Window) *Builder {
	if err := validateWeekday(weekday); err != nil {
		b.err = multierr.Append(b.err, err)
		return b
	}
	ws, err := normalizeWindows(fmt.Sprintf("hours.%s", weekday), windows)
	if err != nil {
		b.err = multierr.Append(b.err, err)
		return b
	}
	b.hours.weekly[weekday] = ws
	return b
}

// HoursOn overrides the windows of a single date, replacing earlier ones.
// Use a holiday rule to close a date entirely.
func (b *Builder) HoursOn(date time.Time, windows ...Window) *Builder {
	if err := checkDate("date_hours", date); err != nil {
		b.err = multierr.Append(b.err, configErr("date_hours", date.Format("2006-01-02"), err.Error()))
		return b
	}
	d := civilOf(date)
	ws, err := normalizeWindows("date_hours."+d.String(), windows)
	if err != nil {
		b.err = multierr.Append(b.err, err)
		return b
	}
	b.hours.dated[d] = ws
	return b
}

// Err returns the errors accumulated so far.
func (b *Builder) Err() error {
	return b.err
}

// Build validates the settings and returns the calendar. A builder can be
// built once; later changes to it do not reach the calendar.
func (b *Builder) Build() (*Calendar, error) {
	if b.built {
		return nil, configErr("builder", nil, "already built")
	}

	err := multierr.Append(b.err, b.policy.validate())
	if err != nil {
		return nil, err
	}
	b.built = true

	c := &Calendar{
		weekend: b.weekend,
		policy:  b.policy,
		hours:   b.hours.clone(),
		allDay:  b.allDay,
		logger:  b.logger,
		rules:   append([]Rule(nil), b.rules...),
		cache:   make(map[int]*HolidaySet),
	}

	if len(b.weekend.days()) == len(b.weekend) {
		b.logger.Warn("Every weekday is a weekend day, searches will fail")
	}
	b.logger.Info("Calendar built",
		zap.Int("rules", len(c.rules)),
		zap.Any("weekend", b.weekend.days()),
		zap.String("substitution", b.policy.Direction.String()),
		zap.Int("max_substitution_walk", b.policy.MaxWalk),
		zap.Bool("hours_declared", b.hours.Declared()))

	return c, nil
}
