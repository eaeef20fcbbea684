package httpx

import "context"

type ctxKey string

const ctxKeyPrincipal ctxKey = "principal"

// Principal is the authenticated caller attached to a request.
type Principal interface {
	Identity() string
	RoleNames() []string
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKeyPrincipal, p)
}

// PrincipalFromContext returns the caller, or false for anonymous requests.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKeyPrincipal).(Principal)
	return p, ok && p != nil
}

// HasRole reports whether p carries role.
func HasRole(p Principal, role string) bool {
	for _, r := range p.RoleNames() {
		if r == role {
			return true
		}
	}
	return false
}
