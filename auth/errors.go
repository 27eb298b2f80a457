package auth

import "errors"

// Internal rejection taxonomy. These never cross the Verifier boundary;
// they exist so operators can tell a key-rotation problem from an expired
// token in the logs.
var (
	ErrFetchFailure     = errors.New("auth: jwks fetch failed")
	ErrKeyNotFound      = errors.New("auth: signing key not found")
	ErrTokenMalformed   = errors.New("auth: token malformed")
	ErrMissingClaim     = errors.New("auth: required claim missing")
	ErrIssuerMismatch   = errors.New("auth: issuer mismatch")
	ErrAudienceMismatch = errors.New("auth: audience mismatch")
	ErrTokenExpired     = errors.New("auth: token expired")
	ErrInternal         = errors.New("auth: internal error")
)

// ErrUnauthorized is the single error returned by Verifier.Verify for any
// invalid token. Callers must not be able to distinguish why a token was
// rejected.
var ErrUnauthorized = errors.New("auth: unauthorized")

// reasonFor maps an internal rejection to a short reason code used as a log
// field and metric attribute.
func reasonFor(err error) string {
	switch {
	case errors.Is(err, ErrFetchFailure):
		return "fetch_failure"
	case errors.Is(err, ErrKeyNotFound):
		return "key_not_found"
	case errors.Is(err, ErrTokenMalformed):
		return "malformed_token"
	case errors.Is(err, ErrMissingClaim):
		return "missing_claim"
	case errors.Is(err, ErrIssuerMismatch):
		return "issuer_mismatch"
	case errors.Is(err, ErrAudienceMismatch):
		return "audience_mismatch"
	case errors.Is(err, ErrTokenExpired):
		return "token_expired"
	default:
		return "internal_error"
	}
}
