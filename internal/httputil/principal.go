package httputil

import "context"

type principalKey struct{}

// Principal is the authenticated caller, resolved from the bearer token
// once per request by the auth middleware and passed by value to
// downstream handlers. There is no process-wide current user.
type Principal struct {
	UserID int64
	Email  string
}

// ContextWithPrincipal attaches the authenticated principal to the context.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext extracts the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
