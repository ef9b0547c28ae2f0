package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"

	"github.com/username/business-calendar/internal/calendar"
	"github.com/username/business-calendar/pkg/dateutil"
)

// Config represents application configuration
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Server   ServerConfig   `mapstructure:"server"`
	Calendar CalendarConfig `mapstructure:"calendar"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	File  string `mapstructure:"file"`  // Empty logs to stderr
	Level string `mapstructure:"level"` // debug, info, warn, error
}

// ServerConfig represents HTTP API configuration
type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	CORSOrigins    []string `mapstructure:"cors_origins"`
	ReadTimeout    string   `mapstructure:"read_timeout"`
	WriteTimeout   string   `mapstructure:"write_timeout"`
	ReloadInterval string   `mapstructure:"reload_interval"` // Empty or "0" disables reloading
}

// CalendarConfig represents the business calendar definition.
// Timezone is used to read dates without an offset. Hours maps a weekday to
// windows such as "09:00-12:00,13:00-17:00"; DateHours does the same for a
// single YYYY-MM-DD date.
type CalendarConfig struct {
	Timezone            string              `mapstructure:"timezone"`
	WeekendDays         []string            `mapstructure:"weekend_days"`
	Substitution        string              `mapstructure:"substitution"`
	MaxSubstitutionWalk int                 `mapstructure:"max_substitution_walk"`
	AllDayWhenNoHours   bool                `mapstructure:"all_day_when_no_hours"`
	Hours               map[string]string   `mapstructure:"hours"`
	DateHours           map[string]string   `mapstructure:"date_hours"`
	Holidays            []HolidayConfig     `mapstructure:"holidays"`
	HolidayFiles        []HolidayFileConfig `mapstructure:"holiday_files"`
	FetchTimeout        string              `mapstructure:"fetch_timeout"`
}

// HolidayConfig represents one holiday rule
type HolidayConfig struct {
	Name         string `mapstructure:"name"`
	Kind         string `mapstructure:"kind"` // fixed, nth_weekday, easter, explicit
	Month        int    `mapstructure:"month"`
	Day          int    `mapstructure:"day"`
	Weekday      string `mapstructure:"weekday"`
	Ordinal      int    `mapstructure:"ordinal"`
	Offset       int    `mapstructure:"offset"`
	Year         int    `mapstructure:"year"`
	StartYear    int    `mapstructure:"start_year"`
	EndYear      int    `mapstructure:"end_year"`
	Substitution string `mapstructure:"substitution"`
}

// HolidayFileConfig represents a CSV holiday source
type HolidayFileConfig struct {
	Source   string `mapstructure:"source"`   // Path or http(s) URL
	Fallback string `mapstructure:"fallback"` // Used when source fails
	Prefix   string `mapstructure:"prefix"`   // Prepended to holiday names
}

// Load loads configuration from file. Without an explicit path a missing
// config file is not an error and defaults apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.bizcal")
		v.AddConfigPath("/etc/bizcal")
	}

	// Read environment variables, e.g. BIZCAL_SERVER_ADDR
	v.SetEnvPrefix("BIZCAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.reload_interval", "")
	v.SetDefault("calendar.timezone", "UTC")
	v.SetDefault("calendar.weekend_days", []string{"saturday", "sunday"})
	v.SetDefault("calendar.substitution", "none")
	v.SetDefault("calendar.max_substitution_walk", calendar.DefaultMaxSubstitutionWalk)
	v.SetDefault("calendar.all_day_when_no_hours", false)
	v.SetDefault("calendar.fetch_timeout", "10s")
}

// Validate validates the configuration. All problems are reported together.
func (c *Config) Validate() error {
	var errs error

	// Validate Log config
	if c.Log.Level != "" {
		var level zapcore.Level
		if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("log.level: %w", err))
		}
	}

	// Validate Server config
	errs = multierr.Append(errs, validateDuration("server.read_timeout", c.Server.ReadTimeout))
	errs = multierr.Append(errs, validateDuration("server.write_timeout", c.Server.WriteTimeout))
	errs = multierr.Append(errs, validateDuration("server.reload_interval", c.Server.ReloadInterval))

	// Validate Calendar config
	errs = multierr.Append(errs, validateDuration("calendar.fetch_timeout", c.Calendar.FetchTimeout))
	if c.Calendar.Timezone != "" {
		if _, err := time.LoadLocation(c.Calendar.Timezone); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("calendar.timezone: %w", err))
		}
	}
	for i, f := range c.Calendar.HolidayFiles {
		if f.Source == "" {
			errs = multierr.Append(errs, fmt.Errorf("calendar.holiday_files[%d].source is required", i))
		}
	}
	b, err := c.Calendar.Builder(nil)
	if err == nil {
		_, err = b.Build()
	}
	errs = multierr.Append(errs, err)

	return errs
}

func validateDuration(field, value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if d < 0 {
		return fmt.Errorf("%s must not be negative", field)
	}
	return nil
}

// GetLevel returns the configured log level (default: info)
func (c *LogConfig) GetLevel() zapcore.Level {
	level := zapcore.InfoLevel
	if c.Level == "" {
		return level
	}
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// GetReadTimeout returns the HTTP read timeout (default: 10s)
func (c *ServerConfig) GetReadTimeout() time.Duration {
	return parseDuration(c.ReadTimeout, 10*time.Second)
}

// GetWriteTimeout returns the HTTP write timeout (default: 10s)
func (c *ServerConfig) GetWriteTimeout() time.Duration {
	return parseDuration(c.WriteTimeout, 10*time.Second)
}

// GetReloadInterval returns how often the calendar is rebuilt. Zero disables reloading.
func (c *ServerConfig) GetReloadInterval() time.Duration {
	return parseDuration(c.ReloadInterval, 0)
}

// GetFetchTimeout returns the timeout for remote holiday files (default: 10s)
func (c *CalendarConfig) GetFetchTimeout() time.Duration {
	return parseDuration(c.FetchTimeout, 10*time.Second)
}

// GetLocation returns the zone used to read dates without an offset (default: UTC)
func (c *CalendarConfig) GetLocation() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func parseDuration(value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return duration
}

// ParseWeekday accepts full or three-letter English names, case-insensitive.
func ParseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || name == full[:3] {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", s)
}

// parseDateKey reads a date_hours key.
func parseDateKey(key string) (time.Time, error) {
	return dateutil.ParseDate(key, time.UTC)
}
