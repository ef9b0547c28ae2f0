package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/business-calendar/internal/calendar"
)

func testCalendar(t *testing.T, configure func(*calendar.Builder)) *calendar.Calendar {
	t.Helper()
	b := calendar.NewBuilder().
		Substitution(calendar.SubstituteForward).
		Holiday(
			calendar.FixedDate(time.July, 4, "Independence Day"),
			calendar.FixedDate(time.December, 25, "Christmas Day"),
		)
	if configure != nil {
		configure(b)
	}
	cal, err := b.Build()
	require.NoError(t, err)
	return cal
}

func withHours(b *calendar.Builder) {
	for d := time.Monday; d <= time.Friday; d++ {
		b.Hours(d, calendar.Window{Start: calendar.Clock(9, 0), End: calendar.Clock(17, 0)})
	}
}

func newTestRouter(t *testing.T, cal *calendar.Calendar) http.Handler {
	t.Helper()
	return NewRouter(NewHandler(cal, time.UTC, nil), []string{"https://example.com"})
}

func get(t *testing.T, h http.Handler, path string, out any) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), "body: %s", rec.Body.String())
	}
	return rec
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t, testCalendar(t, withHours))

	var dto HealthDTO
	rec := get(t, router, "/healthz", &dto)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "ok", dto.Status)
	assert.Equal(t, 2, dto.Rules)
	assert.Equal(t, []string{"Sunday", "Saturday"}, dto.WeekendDays)
	assert.Equal(t, "forward", dto.Substitution)
	assert.Nil(t, dto.Daemon)
}

func TestHealthStatusSource(t *testing.T) {
	h := NewHandler(testCalendar(t, nil), nil, nil)
	h.SetStatusSource(func() map[string]interface{} {
		return map[string]interface{}{"reloads": 3}
	})

	var dto HealthDTO
	rec := get(t, NewRouter(h, nil), "/healthz", &dto)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]interface{}{"reloads": float64(3)}, dto.Daemon)
}

func TestGetDay(t *testing.T) {
	router := newTestRouter(t, testCalendar(t, withHours))

	var business DayDTO
	rec := get(t, router, "/v1/days/2024-07-05", &business)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-07-05", business.Date)
	assert.Equal(t, "business", business.Type)
	assert.True(t, business.BusinessDay)
	assert.True(t, business.HoursDeclared)
	assert.Equal(t, []string{"09:00-17:00"}, business.Windows)
	assert.True(t, business.BusinessHours.Equal(decimal.NewFromInt(8)))

	// July 4, 2026 is a Saturday, observed on Monday July 6.
	var observed DayDTO
	get(t, router, "/v1/days/2026-07-06", &observed)
	assert.Equal(t, "holiday", observed.Type)
	require.Len(t, observed.Holidays, 1)
	assert.Equal(t, "Independence Day (substitute)", observed.Holidays[0].Name)
	assert.True(t, observed.Holidays[0].Substitute)
	assert.Equal(t, "2026-07-04", observed.Holidays[0].ObservedFrom)
}

func TestDateArithmetic(t *testing.T) {
	router := newTestRouter(t, testCalendar(t, nil))

	tests := []struct {
		path string
		want string
	}{
		{"/v1/days/2024-07-03/next", "2024-07-05"},
		{"/v1/days/2024-07-05/previous", "2024-07-03"},
		{"/v1/days/2024-07-03/add/3", "2024-07-09"},
		{"/v1/days/2024-07-09/add/-3", "2024-07-03"},
		{"/v1/days/2024-07-06/add/0", "2024-07-06"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			var dto DateResultDTO
			rec := get(t, router, tt.path, &dto)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, dto.Result)
		})
	}
}

func TestGetMonth(t *testing.T) {
	router := newTestRouter(t, testCalendar(t, withHours))

	var dto MonthDTO
	rec := get(t, router, "/v1/months/2024/7", &dto)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 22, dto.BusinessDays)
	assert.Equal(t, 8, dto.Weekends)
	assert.Equal(t, 1, dto.Holidays)
	assert.True(t, dto.BusinessHours.Equal(decimal.NewFromInt(176)))
	assert.Len(t, dto.Days, 31)
}

func TestGetMoment(t *testing.T) {
	router := newTestRouter(t, testCalendar(t, withHours))

	var open MomentDTO
	rec := get(t, router, "/v1/moments/2024-07-05T10:00", &open)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, open.BusinessDay)
	assert.True(t, open.BusinessMoment)
	assert.Equal(t, "2024-07-05T10:00:00Z", open.At)

	var closed MomentDTO
	get(t, router, "/v1/moments/2024-07-05T17:00", &closed)
	assert.True(t, closed.BusinessDay)
	assert.False(t, closed.BusinessMoment)
}

func TestGetDuration(t *testing.T) {
	router := newTestRouter(t, testCalendar(t, withHours))

	var dto DurationDTO
	rec := get(t, router, "/v1/duration?start=2024-07-05T16:00&end=2024-07-08T10:30", &dto)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(9000), dto.Seconds)
	assert.True(t, dto.Hours.Equal(decimal.RequireFromString("2.5")), "hours = %s", dto.Hours)
}

func TestListHolidays(t *testing.T) {
	router := newTestRouter(t, testCalendar(t, nil))

	var year HolidayListDTO
	rec := get(t, router, "/v1/holidays/2026", &year)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2026-01-01", year.From)
	assert.Equal(t, "2026-12-31", year.To)
	// July 4 is a Saturday in 2026, December 25 a Friday.
	require.Len(t, year.Holidays, 3)
	assert.Equal(t, "2026-07-06", year.Holidays[1].Date)

	var between HolidayListDTO
	rec = get(t, router, "/v1/holidays?from=2024-12-31&to=2024-01-01", &between)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, between.Holidays, 2)
	assert.Equal(t, "Independence Day", between.Holidays[0].Name)

	var empty HolidayListDTO
	get(t, router, "/v1/holidays?from=2024-08-01&to=2024-08-31", &empty)
	assert.NotNil(t, empty.Holidays)
	assert.Empty(t, empty.Holidays)
}

func TestErrorStatuses(t *testing.T) {
	withHoursRouter := newTestRouter(t, testCalendar(t, withHours))
	noHoursRouter := newTestRouter(t, testCalendar(t, nil))
	closedRouter := newTestRouter(t, testCalendar(t, func(b *calendar.Builder) {
		b.WeekendDays(time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday)
	}))

	tests := []struct {
		name   string
		router http.Handler
		path   string
		want   int
	}{
		{"malformed date", withHoursRouter, "/v1/days/yesterday", http.StatusBadRequest},
		{"date out of range", withHoursRouter, "/v1/days/1500-01-01", http.StatusBadRequest},
		{"bad day count", withHoursRouter, "/v1/days/2024-07-03/add/many", http.StatusBadRequest},
		{"month 13", withHoursRouter, "/v1/months/2024/13", http.StatusBadRequest},
		{"year out of range", withHoursRouter, "/v1/holidays/1200", http.StatusBadRequest},
		{"missing duration end", withHoursRouter, "/v1/duration?start=2024-07-05T16:00", http.StatusBadRequest},
		{"missing holiday bounds", withHoursRouter, "/v1/holidays", http.StatusBadRequest},
		{"holiday range too early", withHoursRouter, "/v1/holidays?from=0001-01-01&to=2024-01-01", http.StatusBadRequest},
		{"no hours declared", noHoursRouter, "/v1/moments/2024-07-05T10:00", http.StatusConflict},
		{"search gives up", closedRouter, "/v1/days/2024-07-03/next", http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp ErrorResponse
			rec := get(t, tt.router, tt.path, &resp)
			assert.Equal(t, tt.want, rec.Code)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(&calendar.RangeError{Field: "date"}))
	assert.Equal(t, http.StatusBadRequest, statusFor(&calendar.ConfigError{Field: "rule"}))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(&calendar.UnresolvableError{Op: "next"}))
	assert.Equal(t, http.StatusConflict, statusFor(&calendar.NoHoursError{}))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}

func TestCORS(t *testing.T) {
	router := newTestRouter(t, testCalendar(t, nil))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSetCalendar(t *testing.T) {
	h := NewHandler(testCalendar(t, nil), nil, nil)
	router := NewRouter(h, nil)

	var before DayDTO
	get(t, router, "/v1/days/2024-07-04", &before)
	assert.Equal(t, "holiday", before.Type)

	h.SetCalendar(testCalendar(t, func(b *calendar.Builder) {
		b.WeekendDays()
	}))
	cal := h.Calendar()
	cal.RemoveRules("Independence Day")

	var after DayDTO
	get(t, router, "/v1/days/2024-07-04", &after)
	assert.Equal(t, "business", after.Type)
}
