package httpx_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aussiebroadwan/accounts/pkg/httpx"
	"github.com/stretchr/testify/require"
)

type principal struct {
	name  string
	roles []string
}

func (p principal) Identity() string    { return p.name }
func (p principal) RoleNames() []string { return p.roles }

type resolverFunc func(ctx context.Context, token string) (httpx.Principal, bool)

func (f resolverFunc) ResolvePrincipal(ctx context.Context, token string) (httpx.Principal, bool) {
	return f(ctx, token)
}

var resolver = resolverFunc(func(_ context.Context, token string) (httpx.Principal, bool) {
	switch token {
	case "user-token":
		return principal{name: "alice", roles: []string{"user"}}, true
	case "admin-token":
		return principal{name: "root", roles: []string{"admin"}}, true
	}
	return nil, false
})

// whoami reports the principal seen by the final handler.
var whoami = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	p, ok := httpx.PrincipalFromContext(r.Context())
	if !ok {
		_, _ = w.Write([]byte("anonymous"))
		return
	}
	_, _ = w.Write([]byte(p.Identity()))
})

func serve(h http.Handler, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticateNeverRejects(t *testing.T) {
	h := httpx.Chain(whoami, httpx.Authenticate(resolver))

	tests := []struct {
		name  string
		authz string
		want  string
	}{
		{"no header", "", "anonymous"},
		{"not bearer", "Basic dXNlcjpwYXNz", "anonymous"},
		{"empty bearer", "Bearer ", "anonymous"},
		{"unknown token", "Bearer nope", "anonymous"},
		{"valid token", "Bearer user-token", "alice"},
		{"lowercase scheme", "bearer user-token", "alice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, tt.authz)
			require.Equal(t, http.StatusOK, rec.Code)
			require.Equal(t, tt.want, rec.Body.String())
		})
	}
}

func TestRequireAuthenticated(t *testing.T) {
	h := httpx.Chain(whoami, httpx.Authenticate(resolver), httpx.RequireAuthenticated())

	rec := serve(h, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")

	var env httpx.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, http.StatusUnauthorized, env.Status)

	rec = serve(h, "Bearer user-token")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole(t *testing.T) {
	h := httpx.Chain(whoami, httpx.Authenticate(resolver), httpx.RequireRole("admin"))

	require.Equal(t, http.StatusUnauthorized, serve(h, "").Code)
	require.Equal(t, http.StatusForbidden, serve(h, "Bearer user-token").Code)

	rec := serve(h, "Bearer admin-token")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "root", rec.Body.String())
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	serve(httpx.Chain(whoami, mark("a"), mark("b"), mark("c")), "")
	require.Equal(t, []string{"a", "b", "c"}, order)
}

func TestWriteEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.WriteEnvelope(rec, http.StatusOK, "ok", map[string]string{"k": "v"})

	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.JSONEq(t, `{"status":200,"message":"ok","data":{"k":"v"}}`, rec.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	var v struct{ Name string }

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"alice"}`))
	require.NoError(t, httpx.DecodeJSON(req, &v))
	require.Equal(t, "alice", v.Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	require.Error(t, httpx.DecodeJSON(req, &v))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	require.Error(t, httpx.DecodeJSON(req, &v))
}
