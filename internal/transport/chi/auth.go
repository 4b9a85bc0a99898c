package chi

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/kwsearch/internal/access"
	"github.com/kailas-cloud/kwsearch/internal/logger"
)

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

type principalKey struct{}

// ContextWithPrincipal stores the authenticated principal in the context.
func ContextWithPrincipal(ctx context.Context, p access.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the authenticated principal, or
// access.Anonymous when none is stored.
func PrincipalFromContext(ctx context.Context) access.Principal {
	if p, ok := ctx.Value(principalKey{}).(access.Principal); ok {
		return p
	}
	return access.Anonymous
}

// withPrincipal stores p and tags both the request logger and the
// canonical log line with its name.
func withPrincipal(ctx context.Context, p access.Principal) context.Context {
	annotate(ctx, zap.String("principal", p.Name))
	return logger.With(ContextWithPrincipal(ctx, p), zap.String("principal", p.Name))
}

// BearerAuthMiddleware resolves Bearer tokens to principals. If principals is
// empty, authentication is disabled and every request runs as anonymous.
func BearerAuthMiddleware(principals map[string]access.Principal, anonymous access.Principal) func(http.Handler) http.Handler {
	byKey := make(map[string]access.Principal, len(principals))
	for k, p := range principals {
		if k != "" {
			byKey[k] = p
		}
	}

	return func(next http.Handler) http.Handler {
		if len(byKey) == 0 {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), anonymous)))
			})
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, "missing authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeError(w, http.StatusUnauthorized,
					ErrorCodeUnauthorized, "authorization header must use Bearer scheme")
				return
			}

			p, ok := byKey[auth[len(bearerPrefix):]]
			if !ok {
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, "invalid api key")
				return
			}

			next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
		})
	}
}
