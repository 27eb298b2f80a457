// Package mcp implements a minimal Model Context Protocol server core.
//
// A Server owns registries of tools, resources, and prompts and dispatches
// JSON-RPC 2.0 requests to them. Transports are thin: the stdio transport
// frames messages as lines, the HTTP transport carries one request per POST
// and tracks sessions with the Mcp-Session-Id header. Authentication is the
// transport's concern; handlers read the verified grant from the request
// context.
package mcp
