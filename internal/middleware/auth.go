package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/blinkedin/backend/internal/auth"
)

type contextKey string

const ctxPrincipalKey contextKey = "principal"

// TokenValidator is the subset of the auth service the middleware needs.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (auth.Principal, error)
}

// Auth authenticates requests by validating the Bearer JWT and placing the
// resulting principal into the request context. Browsers cannot set headers
// on WebSocket dials, so a `token` query parameter is accepted as a fallback.
func Auth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := extractBearer(r)
			if raw == "" {
				raw = r.URL.Query().Get("token")
			}
			if raw == "" {
				http.Error(w, `{"error":"missing or malformed Authorization header"}`, http.StatusUnauthorized)
				return
			}

			p, err := validator.ValidateToken(r.Context(), raw)
			if err != nil {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ctxPrincipalKey, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromCtx returns the authenticated principal, if any.
func PrincipalFromCtx(ctx context.Context) (auth.Principal, bool) {
	p, ok := ctx.Value(ctxPrincipalKey).(auth.Principal)
	return p, ok
}

// WithPrincipal returns a context carrying the given principal.
func WithPrincipal(ctx context.Context, p auth.Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipalKey, p)
}

func extractBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}
