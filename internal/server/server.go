// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server is the HTTP adapter over the scan pipeline. It owns no
// analysis logic: requests are decoded, validated, and handed to scan; any
// persistence and alerting happen after the result is final.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/safescan/internal/metrics"
	"github.com/pdiddy/safescan/internal/notify"
	"github.com/pdiddy/safescan/internal/policy"
	"github.com/pdiddy/safescan/internal/scan"
	"github.com/pdiddy/safescan/pkg/types"
)

const maxBodyBytes = 1 << 20

// Store is the persistence the server needs. *store.Store satisfies it.
type Store interface {
	RecordAttempt(ctx context.Context, userID, sessionID string, isMRR bool) (types.SessionCounters, error)
	GetOverride(ctx context.Context, userID, fingerprint string) (types.AnalysisResult, error)
	PutAlert(ctx context.Context, userID string, a types.AdminAlert) error
}

// Deps are the collaborators injected into the server. Engine and Store are
// required; the rest have no-op defaults.
type Deps struct {
	Engine   *policy.Engine
	Options  scan.Options
	Store    Store
	Notifier notify.Notifier
	Metrics  *metrics.Metrics
	Limiter  *rate.Limiter
	Logger   *zap.Logger
	Now      func() time.Time
}

// Server serves the HTTP API.
type Server struct {
	deps     Deps
	validate *validator.Validate
}

// New returns a server over deps.
func New(deps Deps) *Server {
	if deps.Notifier == nil {
		deps.Notifier = notify.Discard{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Limiter == nil {
		deps.Limiter = rate.NewLimiter(rate.Inf, 0)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Server{deps: deps, validate: validator.New()}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /v1/analyze", s.rateLimit(http.HandlerFunc(s.handleAnalyze)))
	mux.Handle("POST /v1/sessions/attempts", s.rateLimit(http.HandlerFunc(s.handleAttempt)))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.deps.Metrics != nil {
		mux.Handle("GET /metrics", s.deps.Metrics.Handler())
	}

	var h http.Handler = mux
	h = s.deps.Metrics.Middleware(h)
	h = s.accessLog(h)
	h = requestID(h)
	return h
}

// ListenAndServe serves on addr until ctx is done, then shuts down within
// timeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, timeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.deps.Logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
