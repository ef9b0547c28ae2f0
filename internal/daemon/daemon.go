package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/username/business-calendar/internal/calendar"
	"github.com/username/business-calendar/internal/server"
)

const shutdownTimeout = 10 * time.Second

// BuildFunc produces a fresh calendar, e.g. from config and holiday files.
type BuildFunc func(ctx context.Context) (*calendar.Calendar, error)

// Daemon serves the HTTP API and periodically rebuilds the calendar
type Daemon struct {
	build          BuildFunc
	handler        *server.Handler
	httpServer     *http.Server
	reloadInterval time.Duration // Zero disables reloading
	logger         *zap.Logger
	ctx            context.Context
	cancel         context.CancelFunc

	mu            sync.Mutex // Protect against concurrent reloads
	reloadRunning bool
	lastReload    time.Time
	reloads       int
	reloadErrors  int
}

// NewDaemon creates a new daemon instance
func NewDaemon(build BuildFunc, handler *server.Handler, httpServer *http.Server, reloadInterval time.Duration, logger *zap.Logger) *Daemon {
	ctx, cancel := context.WithCancel(context.Background())

	d := &Daemon{
		build:          build,
		handler:        handler,
		httpServer:     httpServer,
		reloadInterval: reloadInterval,
		logger:         logger,
		ctx:            ctx,
		cancel:         cancel,
	}
	handler.SetStatusSource(d.GetStatus)
	return d
}

// Start runs the daemon until SIGINT/SIGTERM or Stop
func (d *Daemon) Start() error {
	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			d.logger.Info("Received signal, shutting down",
				zap.String("signal", sig.String()))
			d.Stop()
		case <-d.ctx.Done():
		}
	}()

	return d.Run()
}

// Run serves until Stop is called or the server fails
func (d *Daemon) Run() error {
	d.logger.Info("Daemon started",
		zap.String("addr", d.httpServer.Addr),
		zap.Duration("reload_interval", d.reloadInterval))

	serveErr := make(chan error, 1)
	go func() {
		if err := d.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// A nil channel never fires, so reloading stays off without a ticker
	var tick <-chan time.Time
	if d.reloadInterval > 0 {
		ticker := time.NewTicker(d.reloadInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-d.ctx.Done():
			d.logger.Info("Daemon stopped")
			return d.shutdown()

		case err, ok := <-serveErr:
			if ok && err != nil {
				d.Stop()
				return fmt.Errorf("http server failed: %w", err)
			}
			serveErr = nil

		case <-tick:
			if err := d.Reload(); err != nil {
				d.logger.Error("Calendar reload failed, keeping previous calendar", zap.Error(err))
			}
		}
	}
}

func (d *Daemon) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := d.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}

// Stop stops the daemon
func (d *Daemon) Stop() {
	d.cancel()
}

// Reload rebuilds the calendar and swaps it into the handler
func (d *Daemon) Reload() error {
	d.mu.Lock()
	if d.reloadRunning {
		d.mu.Unlock()
		d.logger.Warn("Reload already running, skipping concurrent execution")
		return fmt.Errorf("reload already in progress")
	}
	d.reloadRunning = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.reloadRunning = false
		d.mu.Unlock()
	}()

	cal, err := d.build(d.ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.reloadErrors++
		return fmt.Errorf("failed to rebuild calendar: %w", err)
	}

	d.handler.SetCalendar(cal)
	d.lastReload = time.Now()
	d.reloads++

	stats := cal.Stats()
	d.logger.Info("Calendar reloaded",
		zap.Int("rules", stats.Rules),
		zap.Int("reloads", d.reloads))
	return nil
}

// GetStatus returns daemon status
func (d *Daemon) GetStatus() map[string]interface{} {
	d.mu.Lock()
	defer d.mu.Unlock()

	status := map[string]interface{}{
		"running":         d.ctx.Err() == nil,
		"addr":            d.httpServer.Addr,
		"reload_interval": d.reloadInterval.String(),
		"reloads":         d.reloads,
		"reload_errors":   d.reloadErrors,
	}
	if !d.lastReload.IsZero() {
		status["last_reload"] = d.lastReload.Format(time.RFC3339)
	}
	return status
}
