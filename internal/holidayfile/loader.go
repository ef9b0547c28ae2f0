package holidayfile

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultHTTPTimeout = 10 * time.Second

// Loader reads holiday files from local paths or http(s) URLs.
type Loader struct {
	httpClient *http.Client
	logger     *zap.Logger
	prefix     string
}

// NewLoader creates a loader. A zero timeout uses the default of 10s.
// prefix is prepended to every holiday name loaded.
func NewLoader(timeout time.Duration, prefix string, logger *zap.Logger) *Loader {
	if timeout == 0 {
		timeout = defaultHTTPTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Loader{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
		prefix: prefix,
	}
}

// Load reads and parses source.
func (l *Loader) Load(ctx context.Context, source string) (*File, error) {
	rc, err := l.open(ctx, source)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	f, err := Parse(rc, l.prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", source, err)
	}
	f.Source = source

	l.logger.Info("Holiday file loaded",
		zap.String("source", source),
		zap.Int("holidays", len(f.Holidays)),
		zap.Int("date_hours", len(f.Hours)))

	return f, nil
}

// LoadWithFallback tries primary first and falls back to fallback when it
// cannot be fetched or parsed. An empty fallback disables the fallback.
func (l *Loader) LoadWithFallback(ctx context.Context, primary, fallback string) (*File, error) {
	f, err := l.Load(ctx, primary)
	if err == nil {
		return f, nil
	}
	if fallback == "" {
		return nil, err
	}

	l.logger.Warn("Primary holiday source failed, falling back",
		zap.String("source", primary),
		zap.String("fallback", fallback),
		zap.Error(err))

	f, fallbackErr := l.Load(ctx, fallback)
	if fallbackErr != nil {
		return nil, fmt.Errorf("primary and fallback both failed: primary=%w, fallback=%v", err, fallbackErr)
	}
	return f, nil
}

func (l *Loader) open(ctx context.Context, source string) (io.ReadCloser, error) {
	if !isURL(source) {
		file, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open holiday file: %w", err)
		}
		return file, nil
	}

	l.logger.Debug("Fetching holiday file", zap.String("url", source))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch holiday file: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("holiday source %s returned status %d", source, resp.StatusCode)
	}
	return resp.Body, nil
}

func isURL(source string) bool {
	s := strings.ToLower(source)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
