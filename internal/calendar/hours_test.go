package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{"09:00", Clock(9, 0), false},
		{"9:30", Clock(9, 30), false},
		{"17:45:30", Clock(17, 45) + TimeOfDay(30*time.Second), false},
		{"24:00", EndOfDay, false},
		{"00:00", 0, false},
		{"24:01", 0, true},
		{"12:60", 0, true},
		{"noon", 0, true},
		{"12", 0, true},
		{"+9:00", 0, true},
		{"9:+5", 0, true},
		{"-0:30", 0, true},
		{"09::00", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseTimeOfDay(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "ParseTimeOfDay(%q)", tt.in)
			continue
		}
		require.NoError(t, err, "ParseTimeOfDay(%q)", tt.in)
		assert.Equal(t, tt.want, got, "ParseTimeOfDay(%q)", tt.in)
	}
}

func TestTimeOfDayString(t *testing.T) {
	assert.Equal(t, "09:05", Clock(9, 5).String())
	assert.Equal(t, "24:00", EndOfDay.String())
	assert.Equal(t, "10:00:30", (Clock(10, 0) + TimeOfDay(30*time.Second)).String())
}

func TestParseWindows(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []Window
		wantErr bool
	}{
		{
			name: "split day",
			in:   "09:00-12:00,13:00-17:00",
			want: []Window{{Clock(9, 0), Clock(12, 0)}, {Clock(13, 0), Clock(17, 0)}},
		},
		{
			name: "unsorted input is sorted",
			in:   "13:00-17:00, 09:00-12:00",
			want: []Window{{Clock(9, 0), Clock(12, 0)}, {Clock(13, 0), Clock(17, 0)}},
		},
		{
			name: "touching windows are allowed",
			in:   "09:00-12:00,12:00-13:00",
			want: []Window{{Clock(9, 0), Clock(12, 0)}, {Clock(12, 0), Clock(13, 0)}},
		},
		{
			name: "end of 00:00 means midnight",
			in:   "22:00-00:00",
			want: []Window{{Clock(22, 0), EndOfDay}},
		},
		{
			name: "whole day",
			in:   "00:00-24:00",
			want: []Window{AllDay},
		},
		{name: "overlap", in: "09:00-12:00,11:00-13:00", wantErr: true},
		{name: "reversed", in: "12:00-09:00", wantErr: true},
		{name: "zero length", in: "09:00-09:00", wantErr: true},
		{name: "missing end", in: "09:00", wantErr: true},
		{name: "bad time", in: "25:00-26:00", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWindows(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsConfigurationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWindowContainsIsHalfOpen(t *testing.T) {
	w := Window{Start: Clock(9, 0), End: Clock(17, 0)}

	assert.False(t, w.Contains(Clock(8, 59)))
	assert.True(t, w.Contains(Clock(9, 0)))
	assert.True(t, w.Contains(Clock(16, 59)))
	assert.False(t, w.Contains(Clock(17, 0)))
	assert.Equal(t, 8*time.Hour, w.Duration())
	assert.Equal(t, "09:00-17:00", w.String())

	late := Window{Start: Clock(22, 0), End: EndOfDay}
	assert.True(t, late.Contains(Clock(23, 59)))
}

func TestTimeOfDayOn(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	day := time.Date(2024, time.July, 8, 15, 30, 0, 0, loc)

	assert.True(t, Clock(9, 0).On(day).Equal(time.Date(2024, time.July, 8, 9, 0, 0, 0, loc)))
	assert.True(t, EndOfDay.On(day).Equal(time.Date(2024, time.July, 9, 0, 0, 0, 0, loc)))
	assert.Equal(t, Clock(15, 30), TimeOfDayOf(day))
}

func TestBusinessHoursWindowsFor(t *testing.T) {
	h := newBusinessHours()
	h.weekly[time.Monday] = []Window{{Clock(9, 0), Clock(17, 0)}}
	h.dated[civilOf(date(2024, time.July, 8))] = []Window{{Clock(10, 0), Clock(12, 0)}}

	ws, ok := h.WindowsFor(date(2024, time.July, 8))
	require.True(t, ok)
	assert.Equal(t, []Window{{Clock(10, 0), Clock(12, 0)}}, ws, "date override wins")

	ws, ok = h.WindowsFor(date(2024, time.July, 15))
	require.True(t, ok)
	assert.Equal(t, []Window{{Clock(9, 0), Clock(17, 0)}}, ws)

	_, ok = h.WindowsFor(date(2024, time.July, 9))
	assert.False(t, ok, "no hours on Tuesday")
	assert.True(t, h.Declared())
	assert.False(t, newBusinessHours().Declared())
}
