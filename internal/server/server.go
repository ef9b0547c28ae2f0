// Package server exposes the business calendar over HTTP.
//
//	GET /healthz
//	GET /v1/days/{date}
//	GET /v1/days/{date}/next
//	GET /v1/days/{date}/previous
//	GET /v1/days/{date}/add/{n}
//	GET /v1/months/{year}/{month}
//	GET /v1/moments/{datetime}
//	GET /v1/duration?start=&end=
//	GET /v1/holidays/{year}
//	GET /v1/holidays?from=&to=
//
// Errors are JSON: 400 for malformed input, 409 when a business day has no
// declared hours, 422 when a search gives up.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)
	if len(corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsOrigins,
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))
	}

	r.Get("/healthz", h.Health)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/days/{date}", func(r chi.Router) {
			r.Get("/", h.GetDay)
			r.Get("/next", h.NextDay)
			r.Get("/previous", h.PreviousDay)
			r.Get("/add/{n}", h.AddDays)
		})
		r.Get("/months/{year}/{month}", h.GetMonth)
		r.Get("/moments/{datetime}", h.GetMoment)
		r.Get("/duration", h.GetDuration)
		r.Get("/holidays", h.ListHolidays)
		r.Get("/holidays/{year}", h.ListYearHolidays)
	})

	return r
}

// requestLogger logs one line per request with zap.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Debug("HTTP request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("elapsed", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// NewHTTPServer wraps the router in an http.Server.
func NewHTTPServer(addr string, handler http.Handler, readTimeout, writeTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
}
