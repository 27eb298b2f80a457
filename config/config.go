// Package config loads resource server configuration from the environment.
//
// Sources are layered: a local .env file (development), the process
// environment, and optionally an AWS Secrets Manager secret holding a JSON
// object of variables (deployment). Existing environment variables always
// win over secret values.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/joho/godotenv"
)

// Load layers configuration sources into the process environment.
// A missing .env file is not an error. AWS_SECRETS_NAME, when set, names a
// Secrets Manager secret whose JSON keys are applied as fallback values.
func Load(ctx context.Context) error {
	_ = godotenv.Load()

	secretName := os.Getenv("AWS_SECRETS_NAME")
	if secretName == "" {
		return nil
	}
	return loadAWSSecrets(ctx, secretName)
}

func loadAWSSecrets(ctx context.Context, name string) error {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}

	client := secretsmanager.NewFromConfig(awsCfg)
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		return fmt.Errorf("get secret %q: %w", name, err)
	}
	if out.SecretString == nil {
		return fmt.Errorf("secret %q has no string payload", name)
	}

	values := make(map[string]string)
	if err := json.Unmarshal([]byte(*out.SecretString), &values); err != nil {
		return fmt.Errorf("parse secret %q: %w", name, err)
	}

	for key, value := range values {
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("set %s from secret: %w", key, err)
			}
		}
	}
	return nil
}

// ServerConfig holds one resource server's settings.
type ServerConfig struct {
	// Name is the server's identity in logs, traces, and metrics.
	Name string

	// Addr is the HTTP listen address.
	Addr string

	// Provider selects the claim layout: "auth0" or "okta".
	Provider string

	// Issuer is the expected iss claim, exactly as issued.
	Issuer string

	// Audience is the expected aud claim.
	Audience string

	// JWKSURL is the issuer's key set endpoint. Derived from Issuer when
	// not set explicitly.
	JWKSURL string

	// KeyTTL bounds how long fetched signing keys are trusted.
	KeyTTL time.Duration

	// Leeway widens the expiry check. Zero unless OAUTH_LEEWAY is set.
	Leeway time.Duration

	// PublicURL is the externally visible base URL, used to build the
	// protected resource metadata link.
	PublicURL string

	// LogLevel is the structured log level (debug|info|warn|error).
	LogLevel string

	// MetricsExporter and TracingExporter select telemetry backends
	// (otlp|prometheus|stdout|none and otlp|stdout|none).
	MetricsExporter string
	TracingExporter string
}

// FromEnv builds a ServerConfig for a named server. OAUTH_ISSUER and
// OAUTH_AUDIENCE are required; everything else has defaults.
func FromEnv(name, defaultAddr string) (ServerConfig, error) {
	// URL-shaped values may reference other variables, e.g.
	// OAUTH_JWKS_URL=${OAUTH_ISSUER}/v1/keys in a .env file.
	jwksURL, err := ExpandEnvStrict(os.Getenv("OAUTH_JWKS_URL"))
	if err != nil {
		return ServerConfig{}, fmt.Errorf("config: OAUTH_JWKS_URL: %w", err)
	}
	publicURL, err := ExpandEnvStrict(os.Getenv("PUBLIC_URL"))
	if err != nil {
		return ServerConfig{}, fmt.Errorf("config: PUBLIC_URL: %w", err)
	}

	cfg := ServerConfig{
		Name:            name,
		Addr:            envOr("LISTEN_ADDR", defaultAddr),
		Provider:        envOr("OAUTH_PROVIDER", "auth0"),
		Issuer:          os.Getenv("OAUTH_ISSUER"),
		Audience:        os.Getenv("OAUTH_AUDIENCE"),
		JWKSURL:         jwksURL,
		KeyTTL:          time.Hour,
		PublicURL:       publicURL,
		LogLevel:        envOr("LOG_LEVEL", "info"),
		MetricsExporter: envOr("METRICS_EXPORTER", "none"),
		TracingExporter: envOr("TRACING_EXPORTER", "none"),
	}

	if cfg.Issuer == "" {
		return ServerConfig{}, fmt.Errorf("config: OAUTH_ISSUER is required")
	}
	if cfg.Audience == "" {
		return ServerConfig{}, fmt.Errorf("config: OAUTH_AUDIENCE is required")
	}

	if ttl := os.Getenv("OAUTH_KEY_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return ServerConfig{}, fmt.Errorf("config: parse OAUTH_KEY_TTL: %w", err)
		}
		cfg.KeyTTL = d
	}
	if leeway := os.Getenv("OAUTH_LEEWAY"); leeway != "" {
		d, err := time.ParseDuration(leeway)
		if err != nil {
			return ServerConfig{}, fmt.Errorf("config: parse OAUTH_LEEWAY: %w", err)
		}
		cfg.Leeway = d
	}

	if cfg.JWKSURL == "" {
		cfg.JWKSURL = defaultJWKSURL(cfg.Provider, cfg.Issuer)
	}
	if cfg.PublicURL == "" {
		cfg.PublicURL = "http://localhost" + cfg.Addr
	}

	return cfg, nil
}

// OpenFromEnv builds a ServerConfig for a server that exposes its MCP
// endpoint without bearer verification. Only listen address, logging, and
// telemetry settings are read.
func OpenFromEnv(name, defaultAddr string) ServerConfig {
	cfg := ServerConfig{
		Name:            name,
		Addr:            envOr("LISTEN_ADDR", defaultAddr),
		PublicURL:       os.Getenv("PUBLIC_URL"),
		LogLevel:        envOr("LOG_LEVEL", "info"),
		MetricsExporter: envOr("METRICS_EXPORTER", "none"),
		TracingExporter: envOr("TRACING_EXPORTER", "none"),
	}
	if cfg.PublicURL == "" {
		cfg.PublicURL = "http://localhost" + cfg.Addr
	}
	return cfg
}

// defaultJWKSURL derives the key set endpoint from the issuer the way each
// provider lays it out.
func defaultJWKSURL(provider, issuer string) string {
	base := strings.TrimSuffix(issuer, "/")
	if strings.EqualFold(provider, "okta") {
		return base + "/v1/keys"
	}
	return base + "/.well-known/jwks.json"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
