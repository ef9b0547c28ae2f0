package calendar

import (
	"fmt"
	"strings"
)

// DefaultMaxSubstitutionWalk is how many days a substitution may move a holiday.
const (
	DefaultMaxSubstitutionWalk = 7
	maxSubstitutionWalkLimit   = 31
)

// SubstitutionDirection says where a holiday landing on a weekend is observed.
type SubstitutionDirection int

const (
	// SubstituteDefault inherits the calendar-wide direction. Only valid on rules.
	SubstituteDefault SubstitutionDirection = iota
	// SubstituteNone keeps the holiday on the weekend with no observed day.
	SubstituteNone
	// SubstituteForward observes the holiday on the following free day.
	SubstituteForward
	// SubstituteBackward observes the holiday on the preceding free day.
	SubstituteBackward
	// SubstituteNearest observes the holiday on the closest free day, forward on ties.
	SubstituteNearest
)

func (d SubstitutionDirection) String() string {
	switch d {
	case SubstituteDefault:
		return "default"
	case SubstituteNone:
		return "none"
	case SubstituteForward:
		return "forward"
	case SubstituteBackward:
		return "backward"
	case SubstituteNearest:
		return "nearest"
	default:
		return fmt.Sprintf("SubstitutionDirection(%d)", int(d))
	}
}

// ParseSubstitutionDirection parses "none", "forward", "backward" or "nearest".
// An empty string yields SubstituteDefault.
func ParseSubstitutionDirection(s string) (SubstitutionDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return SubstituteDefault, nil
	case "none", "off":
		return SubstituteNone, nil
	case "forward", "next":
		return SubstituteForward, nil
	case "backward", "previous":
		return SubstituteBackward, nil
	case "nearest", "observed":
		return SubstituteNearest, nil
	}
	return SubstituteDefault, configErr("substitution", s, "must be none, forward, backward or nearest")
}

// SubstitutionPolicy is the calendar-wide substitution setting.
type SubstitutionPolicy struct {
	Direction SubstitutionDirection
	MaxWalk   int
}

// steps returns the day offsets to try, in order, for direction.
func (p SubstitutionPolicy) steps(direction SubstitutionDirection) []int {
	var offsets []int
	switch direction {
	case SubstituteForward:
		for i := 1; i <= p.MaxWalk; i++ {
			offsets = append(offsets, i)
		}
	case SubstituteBackward:
		for i := 1; i <= p.MaxWalk; i++ {
			offsets = append(offsets, -i)
		}
	case SubstituteNearest:
		for i := 1; i <= p.MaxWalk; i++ {
			offsets = append(offsets, i, -i)
		}
	}
	return offsets
}

func (p SubstitutionPolicy) validate() error {
	if p.Direction < SubstituteNone || p.Direction > SubstituteNearest {
		return configErr("substitution", p.Direction.String(), "calendar direction must be none, forward, backward or nearest")
	}
	if p.MaxWalk < 1 || p.MaxWalk > maxSubstitutionWalkLimit {
		return configErr("max_substitution_walk", p.MaxWalk, fmt.Sprintf("must be 1..%d", maxSubstitutionWalkLimit))
	}
	return nil
}
