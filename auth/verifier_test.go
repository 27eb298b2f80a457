package auth

import (
	"context"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestVerifier(t *testing.T, key *rsa.PrivateKey, provider Provider) Verifier {
	t.Helper()

	v, err := NewVerifier(VerifierConfig{
		Validator: newTestValidator(t, key),
		Provider:  provider,
	})
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	return v
}

func TestVerifier_RoundTrip(t *testing.T) {
	key := genRSAKey(t)
	verifier := newTestVerifier(t, key, Auth0Provider{})

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	claims := jwt.MapClaims{
		"iss":   testIssuer,
		"aud":   testAudience,
		"sub":   "client-abc@clients",
		"exp":   exp.Unix(),
		"scope": "read:notes write:notes",
	}
	token := signToken(t, key, "kid-1", claims)

	grant, err := verifier.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}

	if grant.ClientID != "client-abc@clients" {
		t.Errorf("ClientID = %q, want 'client-abc@clients'", grant.ClientID)
	}
	if grant.Token != token {
		t.Error("Grant.Token does not carry the original token")
	}
	if !grant.HasScope("read:notes") || !grant.HasScope("write:notes") {
		t.Errorf("Scopes = %v, want read:notes and write:notes", grant.Scopes)
	}
	if !grant.ExpiresAt.Equal(exp) {
		t.Errorf("ExpiresAt = %v, want %v", grant.ExpiresAt, exp)
	}
	if grant.IsExpired() {
		t.Error("grant with future expiry reported as expired")
	}
}

// TestVerifier_UniformRejection verifies that every failure kind yields the
// identical ErrUnauthorized, with nothing about the cause attached.
func TestVerifier_UniformRejection(t *testing.T) {
	key := genRSAKey(t)
	otherKey := genRSAKey(t)
	verifier := newTestVerifier(t, key, Auth0Provider{})

	valid := func() jwt.MapClaims {
		return jwt.MapClaims{
			"iss": testIssuer,
			"aud": testAudience,
			"sub": "client-abc@clients",
			"exp": time.Now().Add(time.Hour).Unix(),
		}
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"garbage token", "zzz.yyy.xxx"},
		{"expired", func() string {
			c := valid()
			c["exp"] = time.Now().Add(-time.Hour).Unix()
			return signToken(t, key, "kid-1", c)
		}()},
		{"wrong issuer", func() string {
			c := valid()
			c["iss"] = "https://evil.example.com/"
			return signToken(t, key, "kid-1", c)
		}()},
		{"wrong audience", func() string {
			c := valid()
			c["aud"] = "https://other-api.example.com"
			return signToken(t, key, "kid-1", c)
		}()},
		{"missing sub", func() string {
			c := valid()
			delete(c, "sub")
			return signToken(t, key, "kid-1", c)
		}()},
		{"unknown kid", signToken(t, otherKey, "kid-unknown", valid())},
		{"wrong signing key", signToken(t, otherKey, "kid-1", valid())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grant, err := verifier.Verify(context.Background(), tt.token)
			if grant != nil {
				t.Fatal("expected nil grant on rejection")
			}
			if err != ErrUnauthorized {
				t.Errorf("err = %v, want exactly ErrUnauthorized", err)
			}
		})
	}
}

// TestVerifier_FetchFailureIsUnauthorized verifies an unreachable JWKS
// endpoint rejects tokens instead of failing open.
func TestVerifier_FetchFailureIsUnauthorized(t *testing.T) {
	key := genRSAKey(t)

	validator := NewClaimsValidator(ClaimsValidatorConfig{
		Keys:     NewKeyResolver(KeyResolverConfig{URL: "http://127.0.0.1:1/jwks.json"}),
		Issuer:   testIssuer,
		Audience: testAudience,
	})
	verifier, err := NewVerifier(VerifierConfig{Validator: validator, Provider: Auth0Provider{}})
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}

	token := signToken(t, key, "kid-1", jwt.MapClaims{
		"iss": testIssuer,
		"aud": testAudience,
		"sub": "client-abc@clients",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	if _, err := verifier.Verify(context.Background(), token); err != ErrUnauthorized {
		t.Errorf("err = %v, want exactly ErrUnauthorized", err)
	}
}

func TestVerifier_OktaScopes(t *testing.T) {
	key := genRSAKey(t)
	verifier := newTestVerifier(t, key, OktaProvider{})

	token := signToken(t, key, "kid-1", jwt.MapClaims{
		"iss": testIssuer,
		"aud": testAudience,
		"sub": "0oa1client",
		"cid": "0oa1client",
		"exp": time.Now().Add(time.Hour).Unix(),
		"scp": []string{"read:tasks"},
	})

	grant, err := verifier.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if grant.ClientID != "0oa1client" {
		t.Errorf("ClientID = %q, want '0oa1client'", grant.ClientID)
	}
	if !grant.HasScope("read:tasks") {
		t.Errorf("Scopes = %v, want read:tasks", grant.Scopes)
	}
}

func TestNewVerifier_RequiresComponents(t *testing.T) {
	if _, err := NewVerifier(VerifierConfig{Provider: Auth0Provider{}}); err == nil {
		t.Error("expected error without validator")
	}

	key := genRSAKey(t)
	if _, err := NewVerifier(VerifierConfig{Validator: newTestValidator(t, key)}); err == nil {
		t.Error("expected error without provider")
	}
}
