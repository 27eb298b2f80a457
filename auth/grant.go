package auth

import "time"

// Grant is the provider-agnostic result of a successful verification.
// It is only ever constructed for a token that passed every check; there is
// no partially-valid state.
type Grant struct {
	// Token is the original bearer token, kept for downstream pass-through.
	Token string

	// ClientID identifies the caller (OAuth client id or subject, depending
	// on the provider mapping).
	ClientID string

	// Scopes are the granted scope strings, deduplicated. Order carries no
	// meaning. A token without a scope claim yields an empty, non-nil slice.
	Scopes []string

	// ExpiresAt is the token's expiry instant (exp claim).
	ExpiresAt time.Time
}

// HasScope checks if the grant includes a specific scope.
func (g *Grant) HasScope(scope string) bool {
	for _, s := range g.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// IsExpired reports whether the grant's expiry has passed. A grant whose
// expiry equals the current instant counts as expired.
func (g *Grant) IsExpired() bool {
	return !time.Now().Before(g.ExpiresAt)
}
