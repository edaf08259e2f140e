// Package web provides the HTTP server and handlers of the DSR service.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/dsr/internal/auth"
	"github.com/JonMunkholm/dsr/internal/config"
	"github.com/JonMunkholm/dsr/internal/core"
	mw "github.com/JonMunkholm/dsr/internal/web/middleware"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP server of the DSR service.
type Server struct {
	service *core.Service
	auth    *auth.Service
	cfg     *config.Config
	db      Pinger
	router  *chi.Mux
	server  *http.Server
	limits  []*rateLimiter
}

// NewServer creates a Server. db may be nil, in which case the health
// check skips the database.
func NewServer(service *core.Service, authService *auth.Service, cfg *config.Config, db Pinger) *Server {
	s := &Server{
		service: service,
		auth:    authService,
		cfg:     cfg,
		db:      db,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5, "application/json", "text/csv", "text/html"))
	s.router.Use(s.securityHeaders)

	if s.cfg.Rate.Enabled {
		s.router.Use(s.newRateLimiter(s.cfg.Rate.RequestsPerMinute).middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	var verifier mw.TokenVerifier
	if s.auth != nil {
		verifier = s.auth
	}
	requireAuth := mw.RequireAuth(&s.cfg.Security, verifier)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			if s.cfg.Rate.Enabled {
				r.Use(s.newRateLimiter(s.cfg.Rate.AuthLimit).middleware)
			}
			r.Use(s.requestTimeout())
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			// The feed outlives any request timeout.
			r.Get("/entries/stream", s.handleEntryStream)

			r.Group(func(r chi.Router) {
				r.Use(s.requestTimeout())

				r.Get("/outlet", s.handleOutlet)

				r.Post("/entries/preview", s.handlePreviewEntry)
				r.Post("/entries", s.handleCreateEntry)
				r.Get("/entries", s.handleListEntries)
				r.Get("/entries/{id}", s.handleGetEntry)
				r.Get("/entries/{id}/expenses", s.handleEntryExpenses)
				r.Delete("/entries/{id}", s.handleDeleteEntry)

				r.Get("/dashboard", s.handleDashboard)
				r.Get("/history", s.handleHistory)

				r.Get("/export/csv", s.handleExportCSV)
				r.Get("/export/xlsx", s.handleExportXLSX)

				r.Get("/import/status", s.handleImportStatus)
				r.Get("/audit-log", s.handleAuditLog)
			})

			// Imports carry their own deadline from IMPORT_TIMEOUT.
			r.Group(func(r chi.Router) {
				if s.cfg.Rate.Enabled {
					r.Use(s.newRateLimiter(s.cfg.Rate.ImportLimit).middleware)
				}
				r.Post("/import", s.handleImport)
			})
		})
	})

	s.router.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Use(s.requestTimeout())
		r.Get("/report/print", s.handlePrintReport)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and its background workers.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, l := range s.limits {
		l.stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":  "ok",
		"imports": s.service.Limiter().Status(),
		"feed":    s.service.Hub().SubscriberCount(),
	}
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			status["status"] = "degraded"
			status["database"] = err.Error()
			writeJSONStatus(w, http.StatusServiceUnavailable, status)
			return
		}
		status["database"] = "ok"
	}
	writeJSON(w, status)
}

// securityHeaders adds security headers to all responses.
func (s *Server) securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		if s.cfg.Security.EnableCSP {
			// The print view carries its stylesheet inline.
			w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
		}

		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, v interface{}) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}

// requestTimeout cancels handlers that run past SERVER_REQUEST_TIMEOUT.
// A zero timeout disables it.
func (s *Server) requestTimeout() func(http.Handler) http.Handler {
	if s.cfg.Server.RequestTimeout <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.Timeout(s.cfg.Server.RequestTimeout)
}
