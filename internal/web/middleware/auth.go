package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/dsr/internal/auth"
	"github.com/JonMunkholm/dsr/internal/config"
	"github.com/JonMunkholm/dsr/internal/logging"
)

// APIKeyUser is recorded as the acting user for requests authorized by an
// API key.
const APIKeyUser = "api-key"

// TokenVerifier checks a session token.
type TokenVerifier interface {
	Verify(token string) (auth.Claims, error)
}

// RequireAuth returns middleware that accepts a bearer token (Authorization
// header, or the access_token query parameter used by WebSocket clients) or
// an X-API-Key from cfg.APIKeys. The signed-in email is stored in the
// request context.
//
// If cfg.RequireAuth is false, all requests pass through.
func RequireAuth(cfg *config.SecurityConfig, verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.RequireAuth {
				next.ServeHTTP(w, r)
				return
			}

			if apiKey := r.Header.Get("X-API-Key"); apiKey != "" {
				if !isValidAPIKey(apiKey, cfg.APIKeys) {
					slog.Warn("auth: invalid API key",
						"path", r.URL.Path,
						"method", r.Method,
						"remote_addr", r.RemoteAddr,
					)
					unauthorized(w, http.StatusForbidden, "invalid API key")
					return
				}
				ctx := logging.WithUser(r.Context(), APIKeyUser)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			token := bearerToken(r)
			if token == "" || verifier == nil {
				unauthorized(w, http.StatusUnauthorized, "sign-in required")
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				slog.Warn("auth: rejected token",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"error", err,
				)
				unauthorized(w, http.StatusUnauthorized, "session expired or invalid")
				return
			}

			ctx := logging.WithUser(r.Context(), claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return r.URL.Query().Get("access_token")
}

func unauthorized(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + message + `","message":"You are not signed in","action":"Sign in and try again","code":"AUTH003"}`))
}

// isValidAPIKey checks if the provided key matches any configured key.
// Uses constant-time comparison and checks ALL keys to prevent timing attacks.
func isValidAPIKey(key string, validKeys []string) bool {
	valid := 0
	for _, validKey := range validKeys {
		valid |= subtle.ConstantTimeCompare([]byte(key), []byte(validKey))
	}
	return valid == 1
}
