package auth

import (
	"reflect"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestProviderFor(t *testing.T) {
	for _, name := range []string{"auth0", "Auth0", "okta", "OKTA"} {
		p, err := ProviderFor(name)
		if err != nil {
			t.Errorf("ProviderFor(%q): %v", name, err)
		}
		if p == nil {
			t.Errorf("ProviderFor(%q) returned nil provider", name)
		}
	}

	if _, err := ProviderFor("keycloak"); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestAuth0Provider_Normalize(t *testing.T) {
	tests := []struct {
		name       string
		claims     jwt.MapClaims
		wantClient string
		wantScopes []string
	}{
		{
			name: "space separated scopes",
			claims: jwt.MapClaims{
				"sub":   "client-abc@clients",
				"scope": "read:notes write:notes",
			},
			wantClient: "client-abc@clients",
			wantScopes: []string{"read:notes", "write:notes"},
		},
		{
			name:       "missing scope claim",
			claims:     jwt.MapClaims{"sub": "client-abc@clients"},
			wantClient: "client-abc@clients",
			wantScopes: []string{},
		},
		{
			name:       "empty scope string",
			claims:     jwt.MapClaims{"sub": "client-abc@clients", "scope": ""},
			wantClient: "client-abc@clients",
			wantScopes: []string{},
		},
		{
			name:       "missing sub",
			claims:     jwt.MapClaims{"scope": "read:notes"},
			wantClient: "unknown",
			wantScopes: []string{"read:notes"},
		},
		{
			name: "duplicate scopes collapsed",
			claims: jwt.MapClaims{
				"sub":   "client-abc@clients",
				"scope": "read:notes read:notes write:notes",
			},
			wantClient: "client-abc@clients",
			wantScopes: []string{"read:notes", "write:notes"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clientID, scopes := Auth0Provider{}.Normalize(tt.claims)
			if clientID != tt.wantClient {
				t.Errorf("clientID = %q, want %q", clientID, tt.wantClient)
			}
			if scopes == nil {
				t.Fatal("scopes must be non-nil")
			}
			if !reflect.DeepEqual(scopes, tt.wantScopes) {
				t.Errorf("scopes = %v, want %v", scopes, tt.wantScopes)
			}
		})
	}
}

func TestOktaProvider_Normalize(t *testing.T) {
	tests := []struct {
		name       string
		claims     jwt.MapClaims
		wantClient string
		wantScopes []string
	}{
		{
			name: "scp list and cid",
			claims: jwt.MapClaims{
				"cid": "0oa1client",
				"sub": "0oa1client",
				"scp": []any{"read:tasks", "write:tasks"},
			},
			wantClient: "0oa1client",
			wantScopes: []string{"read:tasks", "write:tasks"},
		},
		{
			name: "scp as space separated string",
			claims: jwt.MapClaims{
				"cid": "0oa1client",
				"scp": "read:tasks write:tasks",
			},
			wantClient: "0oa1client",
			wantScopes: []string{"read:tasks", "write:tasks"},
		},
		{
			name: "falls back to sub when cid missing",
			claims: jwt.MapClaims{
				"sub": "user@example.com",
				"scp": []any{"read:tasks"},
			},
			wantClient: "user@example.com",
			wantScopes: []string{"read:tasks"},
		},
		{
			name:       "missing cid and sub",
			claims:     jwt.MapClaims{"scp": []any{"read:tasks"}},
			wantClient: "unknown",
			wantScopes: []string{"read:tasks"},
		},
		{
			name:       "missing scp claim",
			claims:     jwt.MapClaims{"cid": "0oa1client"},
			wantClient: "0oa1client",
			wantScopes: []string{},
		},
		{
			name: "non-string entries skipped",
			claims: jwt.MapClaims{
				"cid": "0oa1client",
				"scp": []any{"read:tasks", 42, ""},
			},
			wantClient: "0oa1client",
			wantScopes: []string{"read:tasks"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clientID, scopes := OktaProvider{}.Normalize(tt.claims)
			if clientID != tt.wantClient {
				t.Errorf("clientID = %q, want %q", clientID, tt.wantClient)
			}
			if scopes == nil {
				t.Fatal("scopes must be non-nil")
			}
			if !reflect.DeepEqual(scopes, tt.wantScopes) {
				t.Errorf("scopes = %v, want %v", scopes, tt.wantScopes)
			}
		})
	}
}

func TestGrant_HasScope(t *testing.T) {
	g := &Grant{Scopes: []string{"read:notes", "write:notes"}}

	if !g.HasScope("read:notes") {
		t.Error("expected HasScope('read:notes') to be true")
	}
	if g.HasScope("admin:notes") {
		t.Error("expected HasScope('admin:notes') to be false")
	}
}
