package auth

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Provider normalizes a provider-specific claim layout into the caller
// identity and granted scopes. Implementations are pure: no I/O, no clock.
type Provider interface {
	// Name is the provider's registry name ("auth0", "okta").
	Name() string

	// Normalize extracts the client id and scope set from validated claims.
	// A token without a scope claim yields an empty, non-nil slice.
	Normalize(claims jwt.MapClaims) (clientID string, scopes []string)
}

// ProviderFor returns the adapter for a provider name.
func ProviderFor(name string) (Provider, error) {
	switch strings.ToLower(name) {
	case "auth0":
		return Auth0Provider{}, nil
	case "okta":
		return OktaProvider{}, nil
	default:
		return nil, fmt.Errorf("auth: unknown provider %q", name)
	}
}

// Auth0Provider reads Auth0's claim layout: scopes live in a single
// space-separated "scope" string, and machine-to-machine tokens carry the
// client id as the subject.
type Auth0Provider struct{}

var _ Provider = Auth0Provider{}

func (Auth0Provider) Name() string { return "auth0" }

func (Auth0Provider) Normalize(claims jwt.MapClaims) (string, []string) {
	clientID := "unknown"
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		clientID = sub
	}

	scopes := []string{}
	if scope, ok := claims["scope"].(string); ok {
		scopes = dedupe(strings.Fields(scope))
	}
	return clientID, scopes
}

// OktaProvider reads Okta's claim layout: scopes live in an "scp" list
// (older org setups emit a space-separated string instead), and the client
// id is the "cid" claim with the subject as fallback.
type OktaProvider struct{}

var _ Provider = OktaProvider{}

func (OktaProvider) Name() string { return "okta" }

func (OktaProvider) Normalize(claims jwt.MapClaims) (string, []string) {
	clientID := "unknown"
	if cid, ok := claims["cid"].(string); ok && cid != "" {
		clientID = cid
	} else if sub, ok := claims["sub"].(string); ok && sub != "" {
		clientID = sub
	}

	scopes := []string{}
	switch scp := claims["scp"].(type) {
	case []any:
		raw := make([]string, 0, len(scp))
		for _, s := range scp {
			if str, ok := s.(string); ok && str != "" {
				raw = append(raw, str)
			}
		}
		scopes = dedupe(raw)
	case string:
		scopes = dedupe(strings.Fields(scp))
	}
	return clientID, scopes
}

// dedupe removes duplicates preserving first-seen order. Always non-nil.
func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
