package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/mcpguard/observe"
)

// Verifier is the single entry point for bearer token verification.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: any invalid token yields ErrUnauthorized, never the underlying
//   rejection reason.
type Verifier interface {
	// Verify checks the raw token and returns its normalized grant.
	Verify(ctx context.Context, rawToken string) (*Grant, error)
}

// VerifierConfig configures a Verifier.
type VerifierConfig struct {
	// Validator checks signature and registered claims. Required.
	Validator *ClaimsValidator

	// Provider normalizes provider-specific claims. Required.
	Provider Provider

	// Logger records rejection reasons. Optional.
	Logger observe.Logger

	// Metrics records verification outcomes. Optional.
	Metrics observe.AuthMetrics
}

type verifier struct {
	validator *ClaimsValidator
	provider  Provider
	logger    observe.Logger
	metrics   observe.AuthMetrics
}

var _ Verifier = (*verifier)(nil)

// NewVerifier creates a Verifier from the given configuration.
func NewVerifier(cfg VerifierConfig) (Verifier, error) {
	if cfg.Validator == nil {
		return nil, errors.New("auth: validator is required")
	}
	if cfg.Provider == nil {
		return nil, errors.New("auth: provider is required")
	}
	return &verifier{
		validator: cfg.Validator,
		provider:  cfg.Provider,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
	}, nil
}

// Verify validates the token and builds the grant. All rejections collapse
// to ErrUnauthorized; the internal reason only reaches logs and metrics.
// A panic anywhere below is treated as an internal rejection.
func (v *verifier) Verify(ctx context.Context, rawToken string) (g *Grant, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			v.record(ctx, start, fmt.Errorf("%w: panic: %v", ErrInternal, r))
			g, err = nil, ErrUnauthorized
		}
	}()

	claims, verr := v.validator.Validate(ctx, rawToken)
	if verr != nil {
		v.record(ctx, start, verr)
		return nil, ErrUnauthorized
	}

	exp, eerr := claims.GetExpirationTime()
	if eerr != nil || exp == nil {
		v.record(ctx, start, fmt.Errorf("%w: exp", ErrMissingClaim))
		return nil, ErrUnauthorized
	}

	clientID, scopes := v.provider.Normalize(claims)

	v.record(ctx, start, nil)
	return &Grant{
		Token:     rawToken,
		ClientID:  clientID,
		Scopes:    scopes,
		ExpiresAt: exp.Time,
	}, nil
}

func (v *verifier) record(ctx context.Context, start time.Time, rejection error) {
	duration := time.Since(start)

	if rejection == nil {
		if v.metrics != nil {
			v.metrics.RecordVerification(ctx, v.provider.Name(), duration, "")
		}
		return
	}

	reason := reasonFor(rejection)
	if v.logger != nil {
		v.logger.Warn(ctx, "token rejected",
			observe.Field{Key: "auth.provider", Value: v.provider.Name()},
			observe.Field{Key: "auth.reason", Value: reason},
			observe.Field{Key: "error", Value: rejection.Error()},
		)
	}
	if v.metrics != nil {
		v.metrics.RecordVerification(ctx, v.provider.Name(), duration, reason)
	}
}
