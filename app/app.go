package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/jonwraymond/mcpguard/auth"
	"github.com/jonwraymond/mcpguard/config"
	"github.com/jonwraymond/mcpguard/health"
	"github.com/jonwraymond/mcpguard/mcp"
	"github.com/jonwraymond/mcpguard/observe"
	"github.com/jonwraymond/mcpguard/resilience"
	"github.com/jonwraymond/mcpguard/store"
	"github.com/jonwraymond/mcpguard/wellknown"
)

// MCPPath is the MCP endpoint's path on the HTTP transport.
const MCPPath = "/mcp"

// Config configures one resource server.
type Config struct {
	// Server holds the listen address, OAuth settings, and telemetry
	// selections, usually from config.FromEnv or config.OpenFromEnv.
	Server config.ServerConfig

	// Version is reported in initialize responses and telemetry.
	Version string

	// RequireAuth gates the MCP endpoint behind bearer verification and
	// serves the protected resource metadata document.
	RequireAuth bool

	// Scopes advertised in the protected resource metadata.
	Scopes []string

	// ToolTimeout bounds each tool handler invocation.
	// Default: 30 seconds
	ToolTimeout time.Duration
}

// App is one assembled resource server.
type App struct {
	// Server is the MCP dispatcher. Register tools, resources, and prompts
	// on it before calling Run or RunStdio.
	Server *mcp.Server

	// Logger is the server's structured logger.
	Logger observe.Logger

	cfg      Config
	observer observe.Observer
	verifier auth.Verifier
	health   *health.Aggregator
	stores   []store.Collection
}

// New assembles a resource server. The returned App owns the telemetry
// providers; Run and RunStdio shut them down on exit.
func New(ctx context.Context, cfg Config) (*App, error) {
	obs, err := observe.NewObserver(ctx, observe.Config{
		ServiceName: cfg.Server.Name,
		Version:     cfg.Version,
		Tracing: observe.TracingConfig{
			Enabled:   exporterEnabled(cfg.Server.TracingExporter),
			Exporter:  cfg.Server.TracingExporter,
			SamplePct: 1.0,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  exporterEnabled(cfg.Server.MetricsExporter),
			Exporter: cfg.Server.MetricsExporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   cfg.Server.LogLevel,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("app: setup telemetry: %w", err)
	}

	middleware, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		return nil, fmt.Errorf("app: setup middleware: %w", err)
	}

	a := &App{
		Logger: obs.Logger(),
		Server: mcp.NewServer(mcp.ServerConfig{
			Name:        cfg.Server.Name,
			Version:     cfg.Version,
			Logger:      obs.Logger(),
			Middleware:  middleware,
			ToolTimeout: cfg.ToolTimeout,
		}),
		cfg:      cfg,
		observer: obs,
		health:   health.NewAggregator(),
	}

	if cfg.RequireAuth {
		if err := a.setupVerifier(obs); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *App) setupVerifier(obs observe.Observer) error {
	provider, err := auth.ProviderFor(a.cfg.Server.Provider)
	if err != nil {
		return fmt.Errorf("app: %w", err)
	}

	metrics, err := observe.NewAuthMetrics(obs.Meter())
	if err != nil {
		return fmt.Errorf("app: setup auth metrics: %w", err)
	}

	resolver := auth.NewKeyResolver(auth.KeyResolverConfig{
		URL: a.cfg.Server.JWKSURL,
		TTL: a.cfg.Server.KeyTTL,
	})
	validator := auth.NewClaimsValidator(auth.ClaimsValidatorConfig{
		Keys:     resolver,
		Issuer:   a.cfg.Server.Issuer,
		Audience: a.cfg.Server.Audience,
		Leeway:   a.cfg.Server.Leeway,
	})

	verifier, err := auth.NewVerifier(auth.VerifierConfig{
		Validator: validator,
		Provider:  provider,
		Logger:    obs.Logger(),
		Metrics:   metrics,
	})
	if err != nil {
		return fmt.Errorf("app: %w", err)
	}

	a.verifier = verifier
	a.health.Register("jwks", health.NewJWKSChecker(a.cfg.Server.JWKSURL, nil))
	return nil
}

// OpenCollection opens a named record store from the environment and
// registers it with the health probes. Backends with a network dependency
// are retried with backoff so the server survives a slow database start.
func (a *App) OpenCollection(ctx context.Context, name string) (store.Collection, error) {
	retry := resilience.NewRetry(resilience.RetryConfig{
		MaxAttempts:  5,
		InitialDelay: 500 * time.Millisecond,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			a.Logger.Warn(ctx, "store open failed, retrying",
				observe.Field{Key: "store", Value: name},
				observe.Field{Key: "attempt", Value: attempt},
				observe.Field{Key: "error", Value: err.Error()},
			)
		},
	})

	var collection store.Collection
	err := retry.Execute(ctx, func(ctx context.Context) error {
		var openErr error
		collection, openErr = store.NewCollectionFromEnv(name)
		return openErr
	})
	if err != nil {
		return nil, fmt.Errorf("app: open store %s: %w", name, err)
	}

	a.health.Register("store:"+name, health.NewCollectionChecker(name, collection))
	a.stores = append(a.stores, collection)
	return collection, nil
}

// Handler builds the server's HTTP surface: the MCP endpoint (behind bearer
// verification when enabled), the protected resource metadata document, and
// the health probes.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()

	var endpoint http.Handler = mcp.NewHTTPHandler(a.Server, a.Logger)
	if a.verifier != nil {
		metadataURL := a.cfg.Server.PublicURL + wellknown.WellKnownPath
		endpoint = auth.Middleware(auth.MiddlewareConfig{
			Verifier:            a.verifier,
			Realm:               a.cfg.Server.Name,
			ResourceMetadataURL: metadataURL,
		})(endpoint)

		mux.Handle(wellknown.WellKnownPath, wellknown.Handler(
			wellknown.NewProtectedResourceMetadata(
				a.cfg.Server.Audience,
				[]string{a.cfg.Server.Issuer},
				a.cfg.Scopes,
			),
		))
	}
	mux.Handle(MCPPath, endpoint)

	health.RegisterHandlers(mux, a.health)
	return mux
}

// Run serves HTTP until the context is canceled, then drains in-flight
// requests and shuts down telemetry.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info(ctx, "server listening",
			observe.Field{Key: "addr", Value: a.cfg.Server.Addr},
			observe.Field{Key: "auth", Value: a.verifier != nil},
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		a.shutdown(context.Background())
		return fmt.Errorf("app: serve: %w", err)

	case <-ctx.Done():
		drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		err := srv.Shutdown(drainCtx)
		a.shutdown(drainCtx)
		if err != nil {
			return fmt.Errorf("app: drain: %w", err)
		}
		return nil
	}
}

// RunStdio serves the line-framed stdio transport until the input closes,
// then shuts down telemetry. Bearer verification does not apply: the
// transport is a local pipe with no Authorization header to carry a token.
func (a *App) RunStdio(ctx context.Context) error {
	err := mcp.ServeStdio(ctx, a.Server, os.Stdin, os.Stdout)
	a.shutdown(context.Background())
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("app: serve stdio: %w", err)
	}
	return nil
}

func (a *App) shutdown(ctx context.Context) {
	for _, c := range a.stores {
		if err := c.Close(); err != nil {
			a.Logger.Warn(ctx, "store close failed",
				observe.Field{Key: "error", Value: err.Error()})
		}
	}
	if err := a.observer.Shutdown(ctx); err != nil {
		a.Logger.Warn(ctx, "telemetry shutdown failed",
			observe.Field{Key: "error", Value: err.Error()})
	}
}

func exporterEnabled(name string) bool {
	return name != "" && name != "none"
}
