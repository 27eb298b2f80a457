// Package app assembles a resource server from its parts: telemetry,
// bearer token verification, record stores, the MCP endpoint, discovery
// metadata, and health probes.
//
// A main builds an App, registers its tools, and runs it:
//
//	a, err := app.New(ctx, app.Config{Server: cfg, Version: "1.0.0", RequireAuth: true})
//	if err != nil { ... }
//	a.Server.RegisterTool(...)
//	return a.Run(ctx)
package app
