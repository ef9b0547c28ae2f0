package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestBuilderDefaults(t *testing.T) {
	cal, err := NewBuilder().Build()
	require.NoError(t, err)

	stats := cal.Stats()
	assert.Zero(t, stats.Rules)
	assert.Equal(t, []time.Weekday{time.Sunday, time.Saturday}, stats.WeekendDays)
	assert.Equal(t, SubstitutionPolicy{Direction: SubstituteNone, MaxWalk: DefaultMaxSubstitutionWalk}, stats.Substitution)
}

func TestBuilderAccumulatesErrors(t *testing.T) {
	b := NewBuilder().
		Holiday(
			FixedDate(13, 1, "Bad Month"),
			FixedDate(time.April, 31, "Bad Day"),
			FixedDate(time.May, 1, "Labour Day"),
		).
		Hours(time.Monday, Window{Start: Clock(10, 0), End: Clock(9, 0)})

	require.Error(t, b.Err())

	_, err := b.Build()
	require.Error(t, err)

	errs := multierr.Errors(err)
	require.Len(t, errs, 3)
	for _, e := range errs {
		assert.True(t, IsConfigurationError(e), "got %v", e)
	}
}

func TestBuilderRejectsInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		b    *Builder
	}{
		{"walk of zero", NewBuilder().MaxSubstitutionWalk(0)},
		{"walk too long", NewBuilder().MaxSubstitutionWalk(32)},
		{"default direction", NewBuilder().Substitution(SubstituteDefault)},
		{"unknown weekend day", NewBuilder().WeekendDays(time.Weekday(9))},
		{"hours on unknown weekday", NewBuilder().Hours(time.Weekday(-1), AllDay)},
		{"hours without windows", NewBuilder().Hours(time.Monday)},
		{"overlapping hours", NewBuilder().Hours(time.Monday,
			Window{Start: Clock(9, 0), End: Clock(12, 0)},
			Window{Start: Clock(11, 0), End: Clock(13, 0)})},
		{"window past midnight", NewBuilder().Hours(time.Monday, Window{Start: Clock(22, 0), End: Clock(25, 0)})},
		{"date hours on zero date", NewBuilder().HoursOn(time.Time{}, AllDay)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.b.Build()
			require.Error(t, err)
			assert.True(t, IsConfigurationError(multierr.Errors(err)[0]), "got %v", err)
		})
	}
}

func TestBuilderBuildsOnce(t *testing.T) {
	b := NewBuilder()

	_, err := b.Build()
	require.NoError(t, err)

	_, err = b.Build()
	assert.True(t, IsConfigurationError(err))
}

func TestBuilderHoursReplaceEarlierWindows(t *testing.T) {
	cal, err := NewBuilder().
		Hours(time.Monday, Window{Start: Clock(9, 0), End: Clock(17, 0)}).
		Hours(time.Monday, Window{Start: Clock(10, 0), End: Clock(12, 0)}).
		Build()
	require.NoError(t, err)

	info, err := cal.DayInfo(date(2024, time.July, 8))
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, info.BusinessHours)
}

func TestBuilderChangesAfterBuildDoNotReachCalendar(t *testing.T) {
	b := NewBuilder().Hours(time.Monday, Window{Start: Clock(9, 0), End: Clock(17, 0)})
	cal, err := b.Build()
	require.NoError(t, err)

	evening := at(2024, time.July, 8, 20, 0)
	ok, err := cal.IsBusinessMoment(evening)
	require.NoError(t, err)
	require.False(t, ok)

	b.Hours(time.Monday, Window{Start: Clock(18, 0), End: Clock(22, 0)})
	b.HoursOn(date(2024, time.July, 9), AllDay)
	b.Holiday(FixedDate(time.July, 8, "Late Addition"))

	ok, err = cal.IsBusinessMoment(evening)
	require.NoError(t, err)
	assert.False(t, ok, "weekday hours changed after Build")

	_, err = cal.IsBusinessMoment(at(2024, time.July, 9, 10, 0))
	assert.ErrorIs(t, err, ErrNoHoursDefined, "date hours added after Build")
	assert.True(t, cal.IsBusinessDay(date(2024, time.July, 8)), "holiday added after Build")
	assert.Empty(t, cal.Rules())
}

func TestBuilderCustomWeekend(t *testing.T) {
	cal, err := NewBuilder().WeekendDays(time.Friday, time.Saturday).Build()
	require.NoError(t, err)

	assert.False(t, cal.IsBusinessDay(date(2024, time.July, 5)))
	assert.False(t, cal.IsBusinessDay(date(2024, time.July, 6)))
	assert.True(t, cal.IsBusinessDay(date(2024, time.July, 7)))
}

func TestBuilderLogging(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	_, err := NewBuilder().
		Logger(zap.New(core)).
		WeekendDays(time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday).
		Build()
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("Every weekday is a weekend day, searches will fail").Len())
	assert.Equal(t, 1, logs.FilterMessage("Calendar built").Len())
}

func TestBuilderNilLogger(t *testing.T) {
	cal, err := NewBuilder().Logger(nil).Holiday(FixedDate(time.July, 4, "Independence Day")).Build()
	require.NoError(t, err)
	assert.Len(t, cal.HolidaysInYear(2024), 1)
}
