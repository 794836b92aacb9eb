package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"formkeeper/internal/app"
	"formkeeper/internal/auth"
	"formkeeper/internal/ratelimit"
	"formkeeper/internal/util"
	"formkeeper/pkg/domain"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App  *app.App
	Auth *auth.Service

	// Optional per-IP limiter applied to credential endpoints.
	AuthLimiter    *ratelimit.FixedWindowLimiter
	TrustForwarded bool
}

// Server exposes the HTTP API: auth provider, record rows, and blob
// objects.
type Server struct {
	app            *app.App
	auth           *auth.Service
	authLimiter    *ratelimit.FixedWindowLimiter
	trustForwarded bool
	mux            *http.ServeMux
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	s := &Server{
		app:            cfg.App,
		auth:           cfg.Auth,
		authLimiter:    cfg.AuthLimiter,
		trustForwarded: cfg.TrustForwarded,
		mux:            http.NewServeMux(),
	}
	s.routes()
	return s
}

// Router returns the configured handler with the middleware chain.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog(util.WithSecurityHeaders(util.WithCORS(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// auth
	s.mux.Handle("/auth/signup", s.limited("signup", s.handleSignup))
	s.mux.HandleFunc("/auth/confirm", s.handleConfirm)
	s.mux.Handle("/auth/login", s.limited("login", s.handleLogin))
	s.mux.HandleFunc("/auth/logout", s.handleLogout)
	s.mux.Handle("/auth/password/reset", s.limited("reset", s.handlePasswordReset))
	s.mux.HandleFunc("/auth/password/complete", s.handlePasswordComplete)

	// records
	s.mux.Handle("/records", s.authenticated(s.handleRecords))
	s.mux.Handle("/records/", s.authenticated(s.handleRecordByID))

	// blobs
	s.mux.Handle("/storage/objects", s.authenticated(s.handleUploadObject))
	s.mux.HandleFunc("/storage/objects/", s.handleObjectByKey)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type userHandler func(http.ResponseWriter, *http.Request, domain.User)

func (s *Server) authenticated(next userHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.authorize(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r, user)
	})
}

func (s *Server) authorize(r *http.Request) (domain.User, bool) {
	token, ok := bearerToken(r)
	if !ok {
		return domain.User{}, false
	}
	return s.auth.UserFromToken(token)
}

func (s *Server) limited(action string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.authLimiter != nil {
			key := action + ":" + util.ClientIP(r, s.trustForwarded)
			if !s.authLimiter.Allow(key) {
				writeError(w, http.StatusTooManyRequests, "too many requests")
				return
			}
		}
		next(w, r)
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		slog.Debug("missing bearer prefix", "path", r.URL.Path)
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
