package auth

import "context"

type contextKey int

const grantKey contextKey = iota

// WithGrant returns a new context with the given grant attached.
func WithGrant(ctx context.Context, g *Grant) context.Context {
	return context.WithValue(ctx, grantKey, g)
}

// GrantFromContext retrieves the grant from the context.
// Returns nil if the request was not verified.
func GrantFromContext(ctx context.Context) *Grant {
	g, _ := ctx.Value(grantKey).(*Grant)
	return g
}

// ClientIDFromContext retrieves the verified client id from the context.
// Returns empty string if no grant is present.
func ClientIDFromContext(ctx context.Context) string {
	g := GrantFromContext(ctx)
	if g == nil {
		return ""
	}
	return g.ClientID
}
