package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Monchel-Emmy/SmartRent360-backend/internal/domain"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/security/auth"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/security/ratelimit"
)

// Identity is the authenticated caller attached to the request context.
type Identity struct {
	UserID string
	Role   domain.Role
	Phone  string
}

type identityContextKey struct{}

// Authenticate validates the bearer token and attaches the caller's
// identity to the context. Routes without this wrapper are public.
func Authenticate(tm *auth.TokenManager, log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "Access token required")
				return
			}

			tokenString, err := auth.ExtractToken(authHeader)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			claims, err := tm.ValidateToken(tokenString)
			if err != nil {
				log.Debug("token validation failed", slog.String("error", err.Error()))
				writeError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			identity := &Identity{
				UserID: claims.UserID,
				Role:   claims.Role,
				Phone:  claims.Phone,
			}
			ctx := context.WithValue(r.Context(), identityContextKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles gates a route to the given roles. The check is a pure set
// membership test over the closed role enumeration; it assumes Authenticate
// already ran.
func RequireRoles(log *slog.Logger, roles ...domain.Role) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := GetIdentity(r.Context())
			if identity == nil {
				writeError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			if _, ok := allowed[identity.Role]; !ok {
				log.Warn("role gate denied",
					slog.String("user_id", identity.UserID),
					slog.String("role", string(identity.Role)),
					slog.String("path", r.URL.Path),
				)
				writeError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit rejects callers that exceed the per-user request budget.
// Unauthenticated requests are keyed by remote address.
func RateLimit(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.RemoteAddr
			if identity := GetIdentity(r.Context()); identity != nil {
				key = identity.UserID
			}

			if !limiter.Allow(key) {
				log.Warn("rate limit exceeded", slog.String("key", key))
				writeError(w, http.StatusTooManyRequests, "Too many requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetIdentity returns the authenticated caller, or nil on public routes.
func GetIdentity(ctx context.Context) *Identity {
	if v := ctx.Value(identityContextKey{}); v != nil {
		return v.(*Identity)
	}
	return nil
}

// writeError emits the uniform error envelope without depending on the
// handler package.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "error",
		"message": message,
	})
}
