// Package wellknown serves OAuth protected resource metadata (RFC 9728).
//
// MCP clients discover the authorization server through this document after
// receiving a Bearer challenge pointing at it.
package wellknown

import (
	"encoding/json"
	"net/http"
)

// WellKnownPath is the metadata document's canonical path.
const WellKnownPath = "/.well-known/oauth-protected-resource"

// ProtectedResourceMetadata is the RFC 9728 metadata document.
type ProtectedResourceMetadata struct {
	// Resource is the protected resource's identifier, matching the
	// audience expected in access tokens.
	Resource string `json:"resource"`

	// AuthorizationServers lists issuer identifiers of authorization
	// servers that can issue tokens for this resource.
	AuthorizationServers []string `json:"authorization_servers,omitempty"`

	// JWKSURI optionally advertises the resource server's own key set.
	JWKSURI string `json:"jwks_uri,omitempty"`

	// ScopesSupported lists scope values used in authorization requests.
	ScopesSupported []string `json:"scopes_supported,omitempty"`

	// BearerMethodsSupported lists supported bearer token presentation
	// methods. This server only reads the Authorization header.
	BearerMethodsSupported []string `json:"bearer_methods_supported,omitempty"`

	// ResourceDocumentation points at developer documentation.
	ResourceDocumentation string `json:"resource_documentation,omitempty"`
}

// NewProtectedResourceMetadata builds the document for one resource server.
func NewProtectedResourceMetadata(resource string, authorizationServers []string, scopes []string) ProtectedResourceMetadata {
	return ProtectedResourceMetadata{
		Resource:               resource,
		AuthorizationServers:   authorizationServers,
		ScopesSupported:        scopes,
		BearerMethodsSupported: []string{"header"},
	}
}

// Handler serves the metadata document. The document never changes at
// runtime, so it is marshaled once.
func Handler(meta ProtectedResourceMetadata) http.Handler {
	body, err := json.Marshal(meta)
	if err != nil {
		// Metadata is built from plain strings; marshaling cannot fail.
		panic("wellknown: marshal metadata: " + err.Error())
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		if r.Method == http.MethodHead {
			return
		}
		w.Write(body)
	})
}
