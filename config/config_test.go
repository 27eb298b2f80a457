package config

import (
	"strings"
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("OAUTH_ISSUER", "https://tenant.auth0.example.com/")
	t.Setenv("OAUTH_AUDIENCE", "https://api.example.com")

	cfg, err := FromEnv("notes", ":9000")
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}

	if cfg.Name != "notes" {
		t.Errorf("Name = %q, want 'notes'", cfg.Name)
	}
	if cfg.Addr != ":9000" {
		t.Errorf("Addr = %q, want ':9000'", cfg.Addr)
	}
	if cfg.Provider != "auth0" {
		t.Errorf("Provider = %q, want 'auth0'", cfg.Provider)
	}
	if cfg.KeyTTL != time.Hour {
		t.Errorf("KeyTTL = %v, want 1h", cfg.KeyTTL)
	}
	if cfg.Leeway != 0 {
		t.Errorf("Leeway = %v, want 0", cfg.Leeway)
	}
	if cfg.JWKSURL != "https://tenant.auth0.example.com/.well-known/jwks.json" {
		t.Errorf("JWKSURL = %q", cfg.JWKSURL)
	}
}

func TestFromEnv_OktaJWKSDerivation(t *testing.T) {
	t.Setenv("OAUTH_PROVIDER", "okta")
	t.Setenv("OAUTH_ISSUER", "https://dev.okta.example.com/oauth2/default")
	t.Setenv("OAUTH_AUDIENCE", "api://default")

	cfg, err := FromEnv("tasks", ":9001")
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.JWKSURL != "https://dev.okta.example.com/oauth2/default/v1/keys" {
		t.Errorf("JWKSURL = %q", cfg.JWKSURL)
	}
}

func TestFromEnv_RequiresIssuerAndAudience(t *testing.T) {
	t.Setenv("OAUTH_ISSUER", "")
	t.Setenv("OAUTH_AUDIENCE", "")

	if _, err := FromEnv("notes", ":9000"); err == nil {
		t.Error("expected error without OAUTH_ISSUER")
	}

	t.Setenv("OAUTH_ISSUER", "https://issuer.example.com/")
	if _, err := FromEnv("notes", ":9000"); err == nil {
		t.Error("expected error without OAUTH_AUDIENCE")
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("OAUTH_ISSUER", "https://issuer.example.com/")
	t.Setenv("OAUTH_AUDIENCE", "https://api.example.com")
	t.Setenv("OAUTH_JWKS_URL", "https://keys.example.com/jwks.json")
	t.Setenv("OAUTH_KEY_TTL", "15m")
	t.Setenv("OAUTH_LEEWAY", "30s")
	t.Setenv("LISTEN_ADDR", ":8088")

	cfg, err := FromEnv("notes", ":9000")
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}

	if cfg.JWKSURL != "https://keys.example.com/jwks.json" {
		t.Errorf("JWKSURL = %q", cfg.JWKSURL)
	}
	if cfg.KeyTTL != 15*time.Minute {
		t.Errorf("KeyTTL = %v, want 15m", cfg.KeyTTL)
	}
	if cfg.Leeway != 30*time.Second {
		t.Errorf("Leeway = %v, want 30s", cfg.Leeway)
	}
	if cfg.Addr != ":8088" {
		t.Errorf("Addr = %q, want ':8088'", cfg.Addr)
	}
}

func TestFromEnv_ExpandsJWKSURL(t *testing.T) {
	t.Setenv("OAUTH_ISSUER", "https://dev.okta.example.com/oauth2/default")
	t.Setenv("OAUTH_AUDIENCE", "api://default")
	t.Setenv("OAUTH_JWKS_URL", "${OAUTH_ISSUER}/v1/keys")

	cfg, err := FromEnv("tasks", ":9001")
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.JWKSURL != "https://dev.okta.example.com/oauth2/default/v1/keys" {
		t.Errorf("JWKSURL = %q", cfg.JWKSURL)
	}

	t.Setenv("OAUTH_JWKS_URL", "${NOT_SET_ANYWHERE_AT_ALL}/keys")
	if _, err := FromEnv("tasks", ":9001"); err == nil {
		t.Error("expected error for unresolvable reference")
	}
}

func TestFromEnv_BadDuration(t *testing.T) {
	t.Setenv("OAUTH_ISSUER", "https://issuer.example.com/")
	t.Setenv("OAUTH_AUDIENCE", "https://api.example.com")
	t.Setenv("OAUTH_KEY_TTL", "soon")

	if _, err := FromEnv("notes", ":9000"); err == nil {
		t.Error("expected error for unparseable OAUTH_KEY_TTL")
	}
}

func TestExpandEnvStrict(t *testing.T) {
	t.Setenv("DB_PASSWORD", "hunter2")

	got, err := ExpandEnvStrict("postgres://mcp:${DB_PASSWORD}@db/mcp")
	if err != nil {
		t.Fatalf("ExpandEnvStrict: %v", err)
	}
	if got != "postgres://mcp:hunter2@db/mcp" {
		t.Errorf("got %q", got)
	}
}

func TestExpandEnvStrict_MissingVar(t *testing.T) {
	_, err := ExpandEnvStrict("value-${DEFINITELY_NOT_SET_ANYWHERE}")
	if err == nil {
		t.Fatal("expected error for missing variable")
	}
	if !strings.Contains(err.Error(), "DEFINITELY_NOT_SET_ANYWHERE") {
		t.Errorf("error should name the missing variable: %v", err)
	}
}

func TestExpandEnvStrict_DollarEscape(t *testing.T) {
	got, err := ExpandEnvStrict("cost is $$5")
	if err != nil {
		t.Fatalf("ExpandEnvStrict: %v", err)
	}
	if got != "cost is $5" {
		t.Errorf("got %q", got)
	}
}
