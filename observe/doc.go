// Package observe provides observability primitives for MCP request
// handling and token verification.
//
// It is a pure instrumentation library: no dispatch, no transport, no I/O
// beyond exporter setup. Servers wire the observer into their request
// middleware, and the auth verifier records outcomes through AuthMetrics.
package observe
