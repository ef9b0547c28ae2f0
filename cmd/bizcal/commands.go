package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/username/business-calendar/internal/calendar"
	"github.com/username/business-calendar/internal/config"
	"github.com/username/business-calendar/internal/daemon"
	"github.com/username/business-calendar/internal/server"
	"github.com/username/business-calendar/pkg/dateutil"
)

// loadCalendar loads config and builds the calendar it describes.
func loadCalendar(ctx context.Context) (*config.Config, *calendar.Calendar, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	cal, err := cfg.Calendar.BuildCalendar(ctx, logger)
	if err != nil {
		return nil, nil, err
	}
	return cfg, cal, nil
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check DATE|DATETIME",
		Short: "Show whether a date is a business day, and a time a business moment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cal, err := loadCalendar(cmd.Context())
			if err != nil {
				return err
			}
			at, err := dateutil.ParseDateTime(args[0], cfg.Calendar.GetLocation())
			if err != nil {
				return err
			}

			info, err := cal.DayInfo(at)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printDay(out, info)

			if len(strings.TrimSpace(args[0])) > len(dateutil.DateLayout) {
				ok, err := cal.IsBusinessMoment(at)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "  Business moment: %t (%s)\n", ok, at.Format(time.RFC3339))
			}
			return nil
		},
	}
}

func nextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next DATE",
		Short: "Print the next business day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDateQuery(cmd, args[0], func(cal *calendar.Calendar, d time.Time) (time.Time, error) {
				return cal.NextBusinessDay(d)
			})
		},
	}
}

func prevCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prev DATE",
		Short: "Print the previous business day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDateQuery(cmd, args[0], func(cal *calendar.Calendar, d time.Time) (time.Time, error) {
				return cal.PreviousBusinessDay(d)
			})
		},
	}
}

func addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add DATE N",
		Short: "Move N business days from DATE (negative N goes back)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid day count %q: %w", args[1], err)
			}
			return runDateQuery(cmd, args[0], func(cal *calendar.Calendar, d time.Time) (time.Time, error) {
				return cal.AddBusinessDays(d, n)
			})
		},
	}
	// Flags end at DATE so that a negative N is read as an argument.
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func runDateQuery(cmd *cobra.Command, arg string, fn func(*calendar.Calendar, time.Time) (time.Time, error)) error {
	cfg, cal, err := loadCalendar(cmd.Context())
	if err != nil {
		return err
	}
	date, err := dateutil.ParseDate(arg, cfg.Calendar.GetLocation())
	if err != nil {
		return err
	}
	result, err := fn(cal, date)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), dateutil.FormatDate(result))
	return nil
}

func durationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "duration START END",
		Short: "Print the business time between two instants",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cal, err := loadCalendar(cmd.Context())
			if err != nil {
				return err
			}
			loc := cfg.Calendar.GetLocation()
			start, err := dateutil.ParseDateTime(args[0], loc)
			if err != nil {
				return err
			}
			end, err := dateutil.ParseDateTime(args[1], loc)
			if err != nil {
				return err
			}

			d, err := cal.BusinessDurationBetween(start, end)
			if err != nil {
				return err
			}
			days, err := cal.BusinessDaysBetween(start, end)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Business time: %s (%.2fh)\n", d, d.Hours())
			fmt.Fprintf(out, "Business days: %d\n", days)
			return nil
		},
	}
}

func holidaysCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "holidays [YEAR]",
		Short: "List the holidays of a year, or of --from..--to",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cal, err := loadCalendar(cmd.Context())
			if err != nil {
				return err
			}
			loc := cfg.Calendar.GetLocation()

			var holidays []calendar.Holiday
			switch {
			case len(args) == 1:
				year, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid year %q: %w", args[0], err)
				}
				holidays = cal.HolidaysInYear(year)
			case from != "" && to != "":
				fromDate, err := dateutil.ParseDate(from, loc)
				if err != nil {
					return err
				}
				toDate, err := dateutil.ParseDate(to, loc)
				if err != nil {
					return err
				}
				holidays = cal.HolidaysBetween(fromDate, toDate)
			default:
				holidays = cal.HolidaysInYear(dateutil.Today().Year())
			}

			printHolidays(cmd.OutOrStdout(), holidays)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "First date (with --to)")
	cmd.Flags().StringVar(&to, "to", "", "Last date, inclusive")

	return cmd
}

func monthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "month YEAR MONTH",
		Short: "Print the business days and hours of a month",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid year %q: %w", args[0], err)
			}
			month, err := strconv.Atoi(args[1])
			if err != nil || month < 1 || month > 12 {
				return fmt.Errorf("invalid month %q", args[1])
			}

			_, cal, err := loadCalendar(cmd.Context())
			if err != nil {
				return err
			}
			info, err := cal.MonthInfo(year, time.Month(month))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %d\n", info.Month, info.Year)
			fmt.Fprintln(out, "═══════════════════════════════════════════════════════")
			fmt.Fprintf(out, "  Business days:  %d\n", info.BusinessDays)
			fmt.Fprintf(out, "  Weekends:       %d\n", info.Weekends)
			fmt.Fprintf(out, "  Holidays:       %d\n", info.Holidays)
			fmt.Fprintf(out, "  Business hours: %.1fh\n", info.BusinessHours.Hours())
			for i := range info.Days {
				printDay(out, &info.Days[i])
			}
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cal, err := loadCalendar(cmd.Context())
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			handler := server.NewHandler(cal, cfg.Calendar.GetLocation(), logger)
			httpServer := server.NewHTTPServer(
				cfg.Server.Addr,
				server.NewRouter(handler, cfg.Server.CORSOrigins),
				cfg.Server.GetReadTimeout(),
				cfg.Server.GetWriteTimeout(),
			)

			build := func(ctx context.Context) (*calendar.Calendar, error) {
				fresh, err := config.Load(configPath)
				if err != nil {
					return nil, fmt.Errorf("failed to load config: %w", err)
				}
				return fresh.Calendar.BuildCalendar(ctx, logger)
			}

			d := daemon.NewDaemon(build, handler, httpServer, cfg.Server.GetReloadInterval(), logger)
			logger.Info("Serving business calendar", zap.String("addr", cfg.Server.Addr))
			return d.Start()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")

	return cmd
}

func printDay(out io.Writer, info *calendar.DayInfo) {
	fmt.Fprintf(out, "%s %s  %-8s", dateutil.FormatDate(info.Date), info.Date.Weekday().String()[:3], info.Type)
	if info.IsBusinessDay() {
		windows := make([]string, 0, len(info.Windows))
		for _, w := range info.Windows {
			windows = append(windows, w.String())
		}
		suffix := ""
		if !info.HoursDeclared {
			suffix = " (no hours declared)"
		}
		fmt.Fprintf(out, "  %s  %.1fh%s", strings.Join(windows, ","), info.BusinessHours.Hours(), suffix)
	}
	for _, h := range info.Holidays {
		fmt.Fprintf(out, "  %s", h.Name)
	}
	fmt.Fprintln(out)
}

func printHolidays(out io.Writer, holidays []calendar.Holiday) {
	if len(holidays) == 0 {
		fmt.Fprintln(out, "No holidays")
		return
	}
	for _, h := range holidays {
		line := fmt.Sprintf("%s %s  %s", dateutil.FormatDate(h.Date), h.Date.Weekday().String()[:3], h.Name)
		if h.Substitute {
			line += fmt.Sprintf(" (for %s)", dateutil.FormatDate(h.ObservedFrom))
		}
		if h.SubstitutionFailed {
			line += " [no substitute placed]"
		}
		fmt.Fprintln(out, line)
	}
}
