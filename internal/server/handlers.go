package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/username/business-calendar/internal/calendar"
	"github.com/username/business-calendar/pkg/dateutil"
)

// Handler serves calendar queries. The calendar may be swapped while serving.
type Handler struct {
	mu       sync.RWMutex
	cal      *calendar.Calendar
	location *time.Location
	logger   *zap.Logger
	status   func() map[string]interface{}
}

// NewHandler creates a handler. Dates without an offset are read in loc.
func NewHandler(cal *calendar.Calendar, loc *time.Location, logger *zap.Logger) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{cal: cal, location: loc, logger: logger}
}

// SetCalendar replaces the calendar used by subsequent requests.
func (h *Handler) SetCalendar(cal *calendar.Calendar) {
	h.mu.Lock()
	h.cal = cal
	h.mu.Unlock()
}

// SetStatusSource makes /healthz include the map returned by status.
func (h *Handler) SetStatusSource(status func() map[string]interface{}) {
	h.mu.Lock()
	h.status = status
	h.mu.Unlock()
}

// Calendar returns the calendar currently served.
func (h *Handler) Calendar() *calendar.Calendar {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cal
}

// Health reports liveness and calendar stats.
// GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	cal, status := h.cal, h.status
	h.mu.RUnlock()

	stats := cal.Stats()
	dto := HealthDTO{
		Status:       "ok",
		Rules:        stats.Rules,
		CachedYears:  stats.CachedYears,
		WeekendDays:  make([]string, 0, len(stats.WeekendDays)),
		Substitution: stats.Substitution.Direction.String(),
	}
	for _, d := range stats.WeekendDays {
		dto.WeekendDays = append(dto.WeekendDays, d.String())
	}
	if status != nil {
		dto.Daemon = status()
	}
	writeJSON(w, http.StatusOK, dto)
}

// GetDay describes a date.
// GET /v1/days/{date}
func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	date, ok := h.dateParam(w, r)
	if !ok {
		return
	}

	info, err := h.Calendar().DayInfo(date)
	if err != nil {
		h.writeCalendarError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDayDTO(info))
}

// NextDay returns the next business day.
// GET /v1/days/{date}/next
func (h *Handler) NextDay(w http.ResponseWriter, r *http.Request) {
	h.dateQuery(w, r, 0, h.Calendar().NextBusinessDay)
}

// PreviousDay returns the previous business day.
// GET /v1/days/{date}/previous
func (h *Handler) PreviousDay(w http.ResponseWriter, r *http.Request) {
	h.dateQuery(w, r, 0, h.Calendar().PreviousBusinessDay)
}

// AddDays moves n business days.
// GET /v1/days/{date}/add/{n}
func (h *Handler) AddDays(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid day count", err)
		return
	}
	cal := h.Calendar()
	h.dateQuery(w, r, n, func(date time.Time) (time.Time, error) {
		return cal.AddBusinessDays(date, n)
	})
}

func (h *Handler) dateQuery(w http.ResponseWriter, r *http.Request, days int, fn func(time.Time) (time.Time, error)) {
	date, ok := h.dateParam(w, r)
	if !ok {
		return
	}

	result, err := fn(date)
	if err != nil {
		h.writeCalendarError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DateResultDTO{
		From:   dateutil.FormatDate(date),
		Result: dateutil.FormatDate(result),
		Days:   days,
	})
}

// GetMonth summarizes a month.
// GET /v1/months/{year}/{month}
func (h *Handler) GetMonth(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year", err)
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "invalid month", err)
		return
	}

	info, err := h.Calendar().MonthInfo(year, time.Month(month))
	if err != nil {
		h.writeCalendarError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMonthDTO(info))
}

// GetMoment tells whether an instant is inside business hours.
// GET /v1/moments/{datetime}
func (h *Handler) GetMoment(w http.ResponseWriter, r *http.Request) {
	at, err := dateutil.ParseDateTime(chi.URLParam(r, "datetime"), h.location)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid datetime", err)
		return
	}

	cal := h.Calendar()
	ok, err := cal.IsBusinessMoment(at)
	if err != nil {
		h.writeCalendarError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MomentDTO{
		At:             at.Format(time.RFC3339),
		BusinessDay:    cal.IsBusinessDay(at),
		BusinessMoment: ok,
	})
}

// GetDuration returns the business time between two instants.
// GET /v1/duration?start=...&end=...
func (h *Handler) GetDuration(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := dateutil.ParseDateTime(q.Get("start"), h.location)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start", err)
		return
	}
	end, err := dateutil.ParseDateTime(q.Get("end"), h.location)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end", err)
		return
	}

	d, err := h.Calendar().BusinessDurationBetween(start, end)
	if err != nil {
		h.writeCalendarError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DurationDTO{
		Start:   start.Format(time.RFC3339),
		End:     end.Format(time.RFC3339),
		Seconds: int64(d / time.Second),
		Hours:   hours(d),
	})
}

// ListYearHolidays returns the holidays of a year.
// GET /v1/holidays/{year}
func (h *Handler) ListYearHolidays(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year", err)
		return
	}
	if err := checkYear(year); err != nil {
		writeError(w, http.StatusBadRequest, "invalid year", err)
		return
	}

	writeJSON(w, http.StatusOK, HolidayListDTO{
		From:     fmt.Sprintf("%04d-01-01", year),
		To:       fmt.Sprintf("%04d-12-31", year),
		Holidays: toHolidayDTOs(h.Calendar().HolidaysInYear(year)),
	})
}

// ListHolidays returns the holidays between two dates, inclusive.
// GET /v1/holidays?from=...&to=...
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := dateutil.ParseDate(q.Get("from"), h.location)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from", err)
		return
	}
	to, err := dateutil.ParseDate(q.Get("to"), h.location)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to", err)
		return
	}
	for _, bound := range []time.Time{from, to} {
		if err := checkYear(bound.Year()); err != nil {
			writeError(w, http.StatusBadRequest, "invalid range", err)
			return
		}
	}

	writeJSON(w, http.StatusOK, HolidayListDTO{
		From:     dateutil.FormatDate(from),
		To:       dateutil.FormatDate(to),
		Holidays: toHolidayDTOs(h.Calendar().HolidaysBetween(from, to)),
	})
}

func checkYear(year int) error {
	if year < calendar.MinYear || year > calendar.MaxYear {
		return fmt.Errorf("year must be within %d..%d", calendar.MinYear, calendar.MaxYear)
	}
	return nil
}

func (h *Handler) dateParam(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	date, err := dateutil.ParseDate(chi.URLParam(r, "date"), h.location)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date", err)
		return time.Time{}, false
	}
	return date, true
}

func (h *Handler) writeCalendarError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("Calendar query failed", zap.Error(err))
	}
	writeError(w, status, http.StatusText(status), err)
}

// statusFor maps calendar errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case calendar.IsConfigurationError(err), calendar.IsInvalidRange(err):
		return http.StatusBadRequest
	case calendar.IsUnresolvable(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, calendar.ErrNoHoursDefined):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
