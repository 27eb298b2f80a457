package auth

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// KeySource resolves an RSA public key by key id.
type KeySource interface {
	Resolve(ctx context.Context, keyID string) (*rsa.PublicKey, error)
}

var _ KeySource = (*KeyResolver)(nil)

// ClaimsValidatorConfig configures token validation.
type ClaimsValidatorConfig struct {
	// Keys resolves signing keys for signature verification.
	Keys KeySource

	// Issuer is the exact expected iss value.
	Issuer string

	// Audience is the expected audience. A token whose aud claim is a list
	// passes when the list contains this value.
	Audience string

	// Leeway widens the expiry check to absorb clock drift between the
	// authorization server and this process. Default: 0
	Leeway time.Duration
}

// ClaimsValidator checks a token's signature and registered claims.
//
// Only RS256 is accepted. The exp, iss, aud, and sub claims are all
// required; a token at exactly its expiry instant is rejected.
type ClaimsValidator struct {
	keys     KeySource
	issuer   string
	audience string
	leeway   time.Duration
}

// NewClaimsValidator creates a validator bound to one issuer and audience.
func NewClaimsValidator(cfg ClaimsValidatorConfig) *ClaimsValidator {
	return &ClaimsValidator{
		keys:     cfg.Keys,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		leeway:   cfg.Leeway,
	}
}

// Validate verifies the raw token and returns its claims.
//
// Failures are classified into the package's internal taxonomy so the
// Verifier can log a reason; callers outside this package only ever see
// ErrUnauthorized.
func (v *ClaimsValidator) Validate(ctx context.Context, rawToken string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(rawToken, claims,
		func(t *jwt.Token) (any, error) {
			kid, _ := t.Header["kid"].(string)
			return v.keys.Resolve(ctx, kid)
		},
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
	)
	if err != nil {
		return nil, classifyParseError(err)
	}

	iss, err := claims.GetIssuer()
	if err != nil {
		return nil, fmt.Errorf("%w: iss: %v", ErrTokenMalformed, err)
	}
	if iss == "" {
		return nil, fmt.Errorf("%w: iss", ErrMissingClaim)
	}
	if iss != v.issuer {
		return nil, fmt.Errorf("%w: got %q", ErrIssuerMismatch, iss)
	}

	aud, err := claims.GetAudience()
	if err != nil {
		return nil, fmt.Errorf("%w: aud: %v", ErrTokenMalformed, err)
	}
	if len(aud) == 0 {
		return nil, fmt.Errorf("%w: aud", ErrMissingClaim)
	}
	if !containsAudience(aud, v.audience) {
		return nil, fmt.Errorf("%w: got %v", ErrAudienceMismatch, []string(aud))
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return nil, fmt.Errorf("%w: sub: %v", ErrTokenMalformed, err)
	}
	if sub == "" {
		return nil, fmt.Errorf("%w: sub", ErrMissingClaim)
	}

	return claims, nil
}

func containsAudience(aud jwt.ClaimStrings, want string) bool {
	for _, a := range aud {
		if a == want {
			return true
		}
	}
	return false
}

// classifyParseError maps golang-jwt parse failures onto the internal
// taxonomy. Key resolution errors pass through untouched; golang-jwt joins
// keyfunc errors into its own, so errors.Is still finds them.
func classifyParseError(err error) error {
	switch {
	case errors.Is(err, ErrFetchFailure), errors.Is(err, ErrKeyNotFound):
		return err
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return fmt.Errorf("%w: exp", ErrMissingClaim)
	default:
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
}
