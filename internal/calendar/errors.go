package calendar

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors, use with errors.Is
var (
	// ErrConfiguration is returned when a rule, window or option is invalid.
	// It is raised while building the calendar, never at query time.
	ErrConfiguration = errors.New("invalid calendar configuration")

	// ErrUnresolvable is returned when a bounded search runs past its cap.
	ErrUnresolvable = errors.New("unresolvable calendar query")

	// ErrInvalidRange is returned when a query bound is malformed.
	ErrInvalidRange = errors.New("invalid query range")

	// ErrNoHoursDefined is returned by time-level queries on a business day
	// that has no business hours declared.
	ErrNoHoursDefined = errors.New("no business hours defined")
)

// ConfigError describes a rejected rule, window or option.
type ConfigError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s=%v: %s", ErrConfiguration, e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}

// UnresolvableError reports which search gave up and where it started.
type UnresolvableError struct {
	Op    string
	From  time.Time
	Limit int
}

func (e *UnresolvableError) Error() string {
	return fmt.Sprintf("%s: %s from %s gave up after %d days",
		ErrUnresolvable, e.Op, e.From.Format("2006-01-02"), e.Limit)
}

func (e *UnresolvableError) Unwrap() error {
	return ErrUnresolvable
}

// RangeError describes a malformed query bound.
type RangeError struct {
	Field  string
	Value  time.Time
	Reason string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: %s=%s: %s", ErrInvalidRange, e.Field, e.Value.Format(time.RFC3339), e.Reason)
}

func (e *RangeError) Unwrap() error {
	return ErrInvalidRange
}

// NoHoursError names the business day that has no declared hours.
type NoHoursError struct {
	Date time.Time
}

func (e *NoHoursError) Error() string {
	return fmt.Sprintf("%s on %s", ErrNoHoursDefined, e.Date.Format("2006-01-02"))
}

func (e *NoHoursError) Unwrap() error {
	return ErrNoHoursDefined
}

// IsConfigurationError returns true if err comes from calendar construction.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsUnresolvable returns true if a bounded search gave up.
func IsUnresolvable(err error) bool {
	return errors.Is(err, ErrUnresolvable)
}

// IsInvalidRange returns true if a query bound was rejected.
func IsInvalidRange(err error) bool {
	return errors.Is(err, ErrInvalidRange)
}

func configErr(field string, value interface{}, reason string) error {
	return &ConfigError{Field: field, Value: value, Reason: reason}
}
