// Package server provides the HTTP surface for the AI adapter endpoints and the
// application and contact records.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jobcoach/jobcoach/internal/gateway"
	"github.com/jobcoach/jobcoach/internal/observability"
	"github.com/jobcoach/jobcoach/internal/server/middleware"
	"github.com/jobcoach/jobcoach/internal/server/ratelimit"
	"github.com/jobcoach/jobcoach/internal/types"
	"github.com/jobcoach/jobcoach/internal/validation"
	"golang.org/x/sync/errgroup"
)

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 30 * time.Second

	corsAllowHeaders = "authorization, x-client-info, apikey, content-type"
	corsAllowMethods = "GET, POST, PUT, DELETE, OPTIONS"
)

// Options are the collaborators the server is built from. Store and Tokens are
// optional; the record routes are only mounted when both are set.
type Options struct {
	Adapter *gateway.Adapter
	Store   Store
	Tokens  middleware.TokenValidator
	Limiter *ratelimit.Limiter
	Logger  *slog.Logger
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	adapter    *gateway.Adapter
	store      Store
	tokens     middleware.TokenValidator
	limiter    *ratelimit.Limiter
	validator  *validation.Validator
	logger     *slog.Logger
}

// New creates a new server instance listening on addr.
func New(addr string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		adapter:   opts.Adapter,
		store:     opts.Store,
		tokens:    opts.Tokens,
		limiter:   opts.Limiter,
		validator: validation.New(),
		logger:    logger,
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      150 * time.Second, // upstream calls can be slow
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	for _, uc := range types.AllUseCases() {
		mux.HandleFunc("/v1/"+string(uc), s.handleAdapter(uc))
	}

	if s.store != nil && s.tokens != nil {
		auth := middleware.AuthMiddleware(s.tokens)

		mux.Handle("GET /v1/applications", auth(http.HandlerFunc(s.handleListApplications)))
		mux.Handle("POST /v1/applications", auth(http.HandlerFunc(s.handleCreateApplication)))
		mux.Handle("GET /v1/applications/{id}", auth(http.HandlerFunc(s.handleGetApplication)))
		mux.Handle("PUT /v1/applications/{id}", auth(http.HandlerFunc(s.handleUpdateApplication)))
		mux.Handle("DELETE /v1/applications/{id}", auth(http.HandlerFunc(s.handleDeleteApplication)))

		mux.Handle("GET /v1/contacts", auth(http.HandlerFunc(s.handleListContacts)))
		mux.Handle("POST /v1/contacts", auth(http.HandlerFunc(s.handleCreateContact)))
		mux.Handle("GET /v1/contacts/{id}", auth(http.HandlerFunc(s.handleGetContact)))
		mux.Handle("PUT /v1/contacts/{id}", auth(http.HandlerFunc(s.handleUpdateContact)))
		mux.Handle("DELETE /v1/contacts/{id}", auth(http.HandlerFunc(s.handleDeleteContact)))
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		s.errorResponse(w, http.StatusNotFound, msgNotFound)
	})

	return s.withRequestID(s.withLogging(s.withCORS(s.withRecovery(s.withRateLimit(mux)))))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if s.limiter != nil {
			s.limiter.Stop()
		}
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		s.logger.Info("server stopped")
		return nil
	})

	return g.Wait()
}

// withRequestID assigns each request an ID, honouring a caller-supplied X-Request-ID.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(observability.WithRequestID(r.Context(), id)))
	})
}

// statusRecorder captures the status code written by the handler chain.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.InfoContext(r.Context(), "request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"remote", r.RemoteAddr,
		)
	})
}

// withCORS adds CORS headers to every response and answers preflight requests.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)
		w.Header().Set("Access-Control-Allow-Methods", corsAllowMethods)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRecovery turns a panic in any handler into a 500 response.
func (s *Server) withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.logger.ErrorContext(r.Context(), "handler panic", "path", r.URL.Path, "panic", rec)
				s.errorResponse(w, http.StatusInternalServerError, msgUpstream)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision := s.limiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, decision)

		if !decision.Allowed {
			retryAfter := decision.RetryAfterSeconds()
			s.logger.WarnContext(r.Context(), "inbound rate limit exceeded",
				"client", s.extractClientID(r), "path", r.URL.Path, "retry_after", retryAfter)
			s.rateLimitResponse(w, &retryAfter)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", "error", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// invalidInputResponse writes the 400 body with per-field details.
func (s *Server) invalidInputResponse(w http.ResponseWriter, details string) {
	s.jsonResponse(w, http.StatusBadRequest, map[string]string{
		"error":   msgInvalidInput,
		"details": details,
	})
}

// rateLimitResponse writes a 429 body. retryAfter is encoded as null when unknown.
func (s *Server) rateLimitResponse(w http.ResponseWriter, retryAfter *int) {
	if retryAfter != nil {
		w.Header().Set("Retry-After", strconv.Itoa(*retryAfter))
	}
	s.jsonResponse(w, http.StatusTooManyRequests, map[string]any{
		"error":      msgRateLimited,
		"retryAfter": retryAfter,
	})
}

// extractClientID uses the IP address from RemoteAddr.
// X-Forwarded-For is ignored since it can be set by any caller.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, d ratelimit.Decision) {
	if d.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetTime.Unix(), 10))
	}
}
