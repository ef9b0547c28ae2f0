package calendar

import (
	"sort"
	"time"

	"go.uber.org/zap"
)

const substituteSuffix = " (substitute)"

// Holiday is one resolved holiday entry.
type Holiday struct {
	// Date is midnight UTC of the day the holiday is observed on.
	Date time.Time
	Name string

	// Substitute marks an observed day created for a holiday that fell on a
	// weekend; ObservedFrom is then the original date.
	Substitute   bool
	ObservedFrom time.Time

	// SubstitutionFailed is set on an original whose substitute could not be
	// placed within the walk limit.
	SubstitutionFailed bool
}

// HolidaySet is the resolved, substitution-applied holidays of one year.
type HolidaySet struct {
	Year    int
	entries []Holiday
	byDate  map[civil][]int
}

func newHolidaySet(year int, entries []Holiday) *HolidaySet {
	s := &HolidaySet{Year: year, entries: entries, byDate: make(map[civil][]int, len(entries))}
	for i, h := range entries {
		key := civilOf(h.Date)
		s.byDate[key] = append(s.byDate[key], i)
	}
	return s
}

// Contains reports whether date (read in its own location) is a holiday.
func (s *HolidaySet) Contains(date time.Time) bool {
	return s.contains(civilOf(date))
}

func (s *HolidaySet) contains(d civil) bool {
	_, ok := s.byDate[d]
	return ok
}

// On returns the entries observed on date.
func (s *HolidaySet) On(date time.Time) []Holiday {
	idx := s.byDate[civilOf(date)]
	if len(idx) == 0 {
		return nil
	}
	out := make([]Holiday, 0, len(idx))
	for _, i := range idx {
		out = append(out, s.entries[i])
	}
	return out
}

// Holidays returns a copy of all entries, sorted by date.
func (s *HolidaySet) Holidays() []Holiday {
	out := make([]Holiday, len(s.entries))
	copy(out, s.entries)
	return out
}

// Failed returns the originals whose substitution could not be placed.
func (s *HolidaySet) Failed() []Holiday {
	var out []Holiday
	for _, h := range s.entries {
		if h.SubstitutionFailed {
			out = append(out, h)
		}
	}
	return out
}

// Len returns the number of entries.
func (s *HolidaySet) Len() int {
	return len(s.entries)
}

// resolver turns rules into a HolidaySet for one year.
type resolver struct {
	rules   []Rule
	weekend weekendSet
	policy  SubstitutionPolicy
	logger  *zap.Logger
}

type original struct {
	holiday   Holiday
	direction SubstitutionDirection
}

// resolve builds the holiday set of year. Rules are evaluated for the
// neighbouring years as well so that substitutes crossing a year boundary
// land in the right set. Substitutes are placed in ascending date order,
// each one avoiding weekends and every holiday placed before it.
func (r *resolver) resolve(year int) *HolidaySet {
	originals := r.originals(year)

	taken := make(map[civil]bool, len(originals))
	for _, o := range originals {
		taken[civilOf(o.holiday.Date)] = true
	}

	resolved := make([]Holiday, 0, len(originals))
	for _, o := range originals {
		h := o.holiday
		day := civilOf(h.Date)

		if o.direction != SubstituteNone && r.weekend[day.weekday()] {
			if sub, ok := r.place(day, o.direction, taken); ok {
				taken[sub] = true
				resolved = append(resolved, Holiday{
					Date:         sub.utc(),
					Name:         h.Name + substituteSuffix,
					Substitute:   true,
					ObservedFrom: h.Date,
				})
			} else {
				h.SubstitutionFailed = true
				if day.year == year {
					r.logger.Warn("Holiday substitution failed, keeping original date",
						zap.String("holiday", h.Name),
						zap.String("date", day.String()),
						zap.String("direction", o.direction.String()),
						zap.Int("max_walk", r.policy.MaxWalk))
				}
			}
		}
		resolved = append(resolved, h)
	}

	inYear := resolved[:0]
	for _, h := range resolved {
		if h.Date.Year() == year {
			inYear = append(inYear, h)
		}
	}
	sort.SliceStable(inYear, func(i, j int) bool {
		a, b := inYear[i], inYear[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Substitute != b.Substitute {
			return !a.Substitute
		}
		return a.Name < b.Name
	})

	return newHolidaySet(year, inYear)
}

// originals resolves every rule for year-1..year+1, deduplicated by
// (date, name) and sorted by date.
func (r *resolver) originals(year int) []original {
	type key struct {
		day  civil
		name string
	}
	seen := make(map[key]bool)

	var out []original
	for y := year - 1; y <= year+1; y++ {
		if y < MinYear || y > MaxYear {
			continue
		}
		for _, rule := range r.rules {
			date, ok := rule.Resolve(y)
			if !ok {
				continue
			}
			name := rule.HolidayName()
			k := key{day: civilOf(date), name: name}
			if seen[k] {
				continue
			}
			seen[k] = true

			direction := rule.substitutionDirection()
			if direction == SubstituteDefault {
				direction = r.policy.Direction
			}
			out = append(out, original{
				holiday:   Holiday{Date: date, Name: name},
				direction: direction,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].holiday.Date.Before(out[j].holiday.Date)
	})
	return out
}

// place walks from day in direction until it finds a date that is neither a
// weekend nor already taken.
func (r *resolver) place(day civil, direction SubstitutionDirection, taken map[civil]bool) (civil, bool) {
	for _, offset := range r.policy.steps(direction) {
		candidate := day.addDays(offset)
		if r.weekend[candidate.weekday()] || taken[candidate] {
			continue
		}
		return candidate, true
	}
	return civil{}, false
}
