package auth

import (
	"fmt"
	"net/http"
	"strings"
)

// MiddlewareConfig configures the HTTP bearer middleware.
type MiddlewareConfig struct {
	// Verifier checks bearer tokens. Required.
	Verifier Verifier

	// Realm names the protected resource in the WWW-Authenticate challenge.
	// Default: "mcp"
	Realm string

	// ResourceMetadataURL, when set, is advertised in the challenge so
	// clients can discover the authorization server (RFC 9728).
	ResourceMetadataURL string
}

// Middleware returns an HTTP middleware that requires a valid bearer token.
//
// Requests without a token, or with a token the Verifier rejects, receive a
// 401 with a Bearer challenge. The response body and status are identical
// for every rejection. On success the grant is attached to the request
// context for handlers downstream.
func Middleware(cfg MiddlewareConfig) func(http.Handler) http.Handler {
	if cfg.Realm == "" {
		cfg.Realm = "mcp"
	}

	challenge := fmt.Sprintf("Bearer realm=%q", cfg.Realm)
	if cfg.ResourceMetadataURL != "" {
		challenge += fmt.Sprintf(", resource_metadata=%q", cfg.ResourceMetadataURL)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				reject(w, challenge)
				return
			}

			grant, err := cfg.Verifier.Verify(r.Context(), token)
			if err != nil {
				reject(w, challenge+`, error="invalid_token"`)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithGrant(r.Context(), grant)))
		})
	}
}

// BearerToken extracts the bearer token from the Authorization header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

func reject(w http.ResponseWriter, challenge string) {
	w.Header().Set("WWW-Authenticate", challenge)
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}
