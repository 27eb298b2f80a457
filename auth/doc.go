// Package auth verifies bearer tokens for an MCP resource server.
//
// It validates JWTs issued by an external authorization server (the server
// never issues tokens itself): signing keys are resolved from the issuer's
// JWKS endpoint and cached in process, signatures are checked with RS256
// only, and provider-specific claim layouts (Auth0, Okta) are normalized
// into a single Grant carrying the client identity and granted scopes.
//
// Every failure collapses to ErrUnauthorized at the Verifier boundary; the
// specific rejection reason is kept for logs and metrics only.
package auth
