package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, token string) (Principal, bool)
}

// Authenticate resolves the bearer token, when there is one, and attaches the
// principal to the request context. It never rejects: anonymous and invalid
// credentials both continue unauthenticated and guards downstream decide.
func Authenticate(resolver PrincipalResolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := BearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			p, ok := resolver.ResolvePrincipal(ctx, raw)
			if !ok {
				slogx.FromContext(ctx).Debug("bearer token not accepted")
				next.ServeHTTP(w, r)
				return
			}

			ctx = WithPrincipal(ctx, p)
			ctx = slogx.With(ctx, slog.String("principal", p.Identity()))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(authz) < len(prefix) || !strings.EqualFold(authz[:len(prefix)], prefix) {
		return "", false
	}
	raw := strings.TrimSpace(authz[len(prefix):])
	return raw, raw != ""
}
