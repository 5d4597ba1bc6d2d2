// Package http exposes the forecasting core as a JSON API.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"saldo/internal/core"
	"saldo/internal/services"
	"saldo/internal/storage"
)

// Store is the persistence surface the handlers need.
type Store interface {
	services.Store

	CreateAccount(ctx context.Context, a core.Account) error
	UpdateAccount(ctx context.Context, a core.Account) error
	DeleteAccount(ctx context.Context, id string) error

	GetEvent(ctx context.Context, id string) (core.CashFlowEvent, error)
	CreateEvent(ctx context.Context, e core.CashFlowEvent) error
	UpdateEvent(ctx context.Context, e core.CashFlowEvent) error
	DeleteEvent(ctx context.Context, id string) error

	UpsertSnapshot(ctx context.Context, s core.BalanceSnapshot) error
	DeleteSnapshot(ctx context.Context, id string) error

	ExportState(ctx context.Context) (storage.Envelope, error)
	ImportState(ctx context.Context, env storage.Envelope) error

	Ping(ctx context.Context) error
}

type Server struct {
	http.Server
	store        Store
	forecasts    *services.ForecastService
	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run
// server.
func NewServer(addr string, store Store, forecasts *services.ForecastService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		store:       store,
		forecasts:   forecasts,
		rateLimiter: newRateLimiter(),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/accounts", s.wrap(s.handleListAccounts))
	mux.HandleFunc("POST /api/accounts", s.wrap(s.handleCreateAccount))
	mux.HandleFunc("GET /api/accounts/{id}", s.wrap(s.handleGetAccount))
	mux.HandleFunc("PUT /api/accounts/{id}", s.wrap(s.handleUpdateAccount))
	mux.HandleFunc("DELETE /api/accounts/{id}", s.wrap(s.handleDeleteAccount))

	mux.HandleFunc("GET /api/events", s.wrap(s.handleListEvents))
	mux.HandleFunc("POST /api/events", s.wrap(s.handleCreateEvent))
	mux.HandleFunc("GET /api/events/{id}", s.wrap(s.handleGetEvent))
	mux.HandleFunc("PUT /api/events/{id}", s.wrap(s.handleUpdateEvent))
	mux.HandleFunc("DELETE /api/events/{id}", s.wrap(s.handleDeleteEvent))

	mux.HandleFunc("GET /api/snapshots", s.wrap(s.handleListSnapshots))
	mux.HandleFunc("PUT /api/snapshots", s.wrap(s.handleUpsertSnapshot))
	mux.HandleFunc("DELETE /api/snapshots/{id}", s.wrap(s.handleDeleteSnapshot))

	mux.HandleFunc("GET /api/timeline", s.wrap(s.handleTimeline))
	mux.HandleFunc("GET /api/analytics", s.wrap(s.handleAnalytics))

	mux.HandleFunc("POST /api/sample-data", s.wrap(s.handleSeedSampleData))
	mux.HandleFunc("GET /api/state/export", s.wrap(s.handleExportState))
	mux.HandleFunc("POST /api/state/import", s.wrap(s.handleImportState))

	return s
}

// wrap adds request tracing, security headers and rate limiting around a
// handler. Writes are rate limited per client; reads are not.
func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "rate limit exceeded",
				"request_id", requestID, "client_ip", clientIP, "path", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status_code", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

type contextKey string

const requestIDKey contextKey = "request_id"

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "readiness check failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Shutdown stops the rate limiter and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
