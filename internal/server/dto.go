package server

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/username/business-calendar/internal/calendar"
	"github.com/username/business-calendar/pkg/dateutil"
)

// HealthDTO is returned by /healthz.
type HealthDTO struct {
	Status       string   `json:"status"`
	Rules        int      `json:"rules"`
	CachedYears  int      `json:"cached_years"`
	WeekendDays  []string `json:"weekend_days"`
	Substitution string   `json:"substitution"`

	Daemon map[string]interface{} `json:"daemon,omitempty"`
}

// HolidayDTO represents one holiday entry.
type HolidayDTO struct {
	Date               string `json:"date"`
	Name               string `json:"name"`
	Substitute         bool   `json:"substitute,omitempty"`
	ObservedFrom       string `json:"observed_from,omitempty"`
	SubstitutionFailed bool   `json:"substitution_failed,omitempty"`
}

// HolidayListDTO wraps a list of holidays.
type HolidayListDTO struct {
	From     string       `json:"from"`
	To       string       `json:"to"`
	Holidays []HolidayDTO `json:"holidays"`
}

// DayDTO describes a single date.
type DayDTO struct {
	Date          string          `json:"date"`
	Type          string          `json:"type"`
	BusinessDay   bool            `json:"business_day"`
	Holidays      []HolidayDTO    `json:"holidays,omitempty"`
	Windows       []string        `json:"windows,omitempty"`
	HoursDeclared bool            `json:"hours_declared"`
	BusinessHours decimal.Decimal `json:"business_hours"`
}

// MonthDTO summarizes a month.
type MonthDTO struct {
	Year          int             `json:"year"`
	Month         int             `json:"month"`
	BusinessDays  int             `json:"business_days"`
	Weekends      int             `json:"weekends"`
	Holidays      int             `json:"holidays"`
	BusinessHours decimal.Decimal `json:"business_hours"`
	Days          []DayDTO        `json:"days"`
}

// DateResultDTO is the answer of a date arithmetic query.
type DateResultDTO struct {
	From   string `json:"from"`
	Result string `json:"result"`
	Days   int    `json:"days,omitempty"`
}

// MomentDTO is the answer of a business-moment query.
type MomentDTO struct {
	At             string `json:"at"`
	BusinessDay    bool   `json:"business_day"`
	BusinessMoment bool   `json:"business_moment"`
}

// DurationDTO is the business time between two instants.
type DurationDTO struct {
	Start   string          `json:"start"`
	End     string          `json:"end"`
	Seconds int64           `json:"seconds"`
	Hours   decimal.Decimal `json:"hours"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// hours converts d to decimal hours rounded to 4 places.
func hours(d time.Duration) decimal.Decimal {
	return decimal.NewFromInt(int64(d)).
		Div(decimal.NewFromInt(int64(time.Hour))).
		Round(4)
}

func toHolidayDTO(h calendar.Holiday) HolidayDTO {
	dto := HolidayDTO{
		Date:               dateutil.FormatDate(h.Date),
		Name:               h.Name,
		Substitute:         h.Substitute,
		SubstitutionFailed: h.SubstitutionFailed,
	}
	if h.Substitute {
		dto.ObservedFrom = dateutil.FormatDate(h.ObservedFrom)
	}
	return dto
}

func toHolidayDTOs(hs []calendar.Holiday) []HolidayDTO {
	dtos := make([]HolidayDTO, 0, len(hs))
	for _, h := range hs {
		dtos = append(dtos, toHolidayDTO(h))
	}
	return dtos
}

func toDayDTO(d *calendar.DayInfo) DayDTO {
	dto := DayDTO{
		Date:          dateutil.FormatDate(d.Date),
		Type:          d.Type.String(),
		BusinessDay:   d.IsBusinessDay(),
		HoursDeclared: d.HoursDeclared,
		BusinessHours: hours(d.BusinessHours),
	}
	if len(d.Holidays) > 0 {
		dto.Holidays = toHolidayDTOs(d.Holidays)
	}
	for _, w := range d.Windows {
		dto.Windows = append(dto.Windows, w.String())
	}
	return dto
}

func toMonthDTO(m *calendar.MonthInfo) MonthDTO {
	dto := MonthDTO{
		Year:          m.Year,
		Month:         int(m.Month),
		BusinessDays:  m.BusinessDays,
		Weekends:      m.Weekends,
		Holidays:      m.Holidays,
		BusinessHours: hours(m.BusinessHours),
		Days:          make([]DayDTO, 0, len(m.Days)),
	}
	for i := range m.Days {
		dto.Days = append(dto.Days, toDayDTO(&m.Days[i]))
	}
	return dto
}
