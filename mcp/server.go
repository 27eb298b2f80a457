package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/jonwraymond/mcpguard/auth"
	"github.com/jonwraymond/mcpguard/observe"
	"github.com/jonwraymond/mcpguard/resilience"
)

// ServerConfig configures an MCP server.
type ServerConfig struct {
	// Name and Version identify the server in initialize responses and
	// telemetry.
	Name    string
	Version string

	// Logger records dispatch events. Optional.
	Logger observe.Logger

	// Middleware wraps every dispatched request with tracing, metrics,
	// and logging. Optional.
	Middleware *observe.Middleware

	// ToolTimeout bounds each tool handler invocation.
	// Default: 30 seconds
	ToolTimeout time.Duration
}

// Server dispatches MCP JSON-RPC requests to registered tools, resources,
// and prompts. Registration happens at startup; dispatch is safe for
// concurrent use.
type Server struct {
	name    string
	version string
	logger  observe.Logger
	timeout *resilience.Timeout
	handle  observe.HandleFunc

	mu        sync.RWMutex
	tools     []Tool
	resources []Resource
	prompts   []Prompt
}

// NewServer creates an MCP server.
func NewServer(cfg ServerConfig) *Server {
	s := &Server{
		name:    cfg.Name,
		version: cfg.Version,
		logger:  cfg.Logger,
		timeout: resilience.NewTimeout(resilience.TimeoutConfig{Timeout: cfg.ToolTimeout}),
	}
	if s.logger == nil {
		s.logger = observe.NewLogger("info")
	}

	s.handle = s.dispatch
	if cfg.Middleware != nil {
		s.handle = cfg.Middleware.Wrap(s.dispatch)
	}
	return s
}

// Name returns the server's name.
func (s *Server) Name() string { return s.name }

// RegisterTool adds a tool to the registry.
func (s *Server) RegisterTool(t Tool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tools = append(s.tools, t)
}

// RegisterResource adds a resource to the registry.
func (s *Server) RegisterResource(r Resource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources = append(s.resources, r)
}

// RegisterPrompt adds a prompt to the registry.
func (s *Server) RegisterPrompt(p Prompt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, p)
}

// HandleMessage processes one raw JSON-RPC message and returns the encoded
// response, or nil for notifications.
func (s *Server) HandleMessage(ctx context.Context, data []byte) []byte {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return encodeResponse(Response{
			JSONRPC: "2.0",
			Error:   rpcErrorf(CodeParseError, "parse error: %v", err),
		})
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		return encodeResponse(Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   rpcErrorf(CodeInvalidRequest, "invalid request"),
		})
	}

	meta := observe.CallMeta{Server: s.name, Method: req.Method}
	if req.Method == "tools/call" {
		var p toolCallParams
		if err := json.Unmarshal(req.Params, &p); err == nil {
			meta.Tool = p.Name
		}
	}

	result, err := s.handle(ctx, meta, &req)

	if req.IsNotification() {
		return nil
	}

	resp := Response{JSONRPC: "2.0", ID: req.ID}
	switch {
	case err == nil:
		resp.Result = result
	default:
		var rpcErr *RPCError
		if errors.As(err, &rpcErr) {
			resp.Error = rpcErr
		} else {
			resp.Error = rpcErrorf(CodeInternalError, "internal error")
		}
	}
	return encodeResponse(resp)
}

func encodeResponse(resp Response) []byte {
	data, err := json.Marshal(resp)
	if err != nil {
		// Responses are built from marshalable values only.
		return []byte(`{"jsonrpc":"2.0","error":{"code":-32603,"message":"internal error"}}`)
	}
	return data
}

// dispatch routes one decoded request. params is always *Request here; the
// indirection exists so observe middleware can wrap dispatch uniformly.
func (s *Server) dispatch(ctx context.Context, meta observe.CallMeta, params any) (any, error) {
	req := params.(*Request)

	switch req.Method {
	case "initialize":
		return s.handleInitialize(), nil
	case "notifications/initialized":
		return nil, nil
	case "ping":
		return map[string]any{}, nil
	case "tools/list":
		return s.handleToolsList(), nil
	case "tools/call":
		return s.handleToolsCall(ctx, req.Params)
	case "resources/list":
		return s.handleResourcesList(), nil
	case "resources/read":
		return s.handleResourcesRead(ctx, req.Params)
	case "prompts/list":
		return s.handlePromptsList(), nil
	case "prompts/get":
		return s.handlePromptsGet(ctx, req.Params)
	default:
		return nil, rpcErrorf(CodeMethodNotFound, "method not found: %s", req.Method)
	}
}

func (s *Server) handleInitialize() any {
	return map[string]any{
		"protocolVersion": ProtocolVersion,
		"capabilities": map[string]any{
			"tools":     map[string]any{},
			"resources": map[string]any{},
			"prompts":   map[string]any{},
		},
		"serverInfo": map[string]any{
			"name":    s.name,
			"version": s.version,
		},
	}
}

func (s *Server) handleToolsList() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tools := make([]Tool, len(s.tools))
	copy(tools, s.tools)
	return map[string]any{"tools": tools}
}

type toolCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

func (s *Server) handleToolsCall(ctx context.Context, raw json.RawMessage) (any, error) {
	var p toolCallParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, rpcErrorf(CodeInvalidParams, "invalid tools/call params: %v", err)
	}

	tool, ok := s.findTool(p.Name)
	if !ok {
		return nil, rpcErrorf(CodeInvalidParams, "unknown tool: %s", p.Name)
	}

	if tool.RequiredScope != "" {
		grant := auth.GrantFromContext(ctx)
		if grant == nil || !grant.HasScope(tool.RequiredScope) {
			// Scope failures are tool-level errors: the caller is
			// authenticated, just not entitled to this tool.
			return ErrorResult("missing required scope: %s", tool.RequiredScope), nil
		}
	}

	var result *ToolResult
	err := s.timeout.Execute(ctx, func(ctx context.Context) error {
		var handlerErr error
		result, handlerErr = tool.Handler(ctx, p.Arguments)
		return handlerErr
	})
	if errors.Is(err, resilience.ErrTimeout) {
		return ErrorResult("tool %s timed out", tool.Name), nil
	}
	if err != nil {
		return ErrorResult("tool %s failed: %v", tool.Name, err), nil
	}
	if result == nil {
		result = TextResult("")
	}
	return result, nil
}

func (s *Server) findTool(name string) (Tool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tools {
		if t.Name == name {
			return t, true
		}
	}
	return Tool{}, false
}

func (s *Server) handleResourcesList() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resources := make([]Resource, len(s.resources))
	copy(resources, s.resources)
	return map[string]any{"resources": resources}
}

type resourceReadParams struct {
	URI string `json:"uri"`
}

func (s *Server) handleResourcesRead(ctx context.Context, raw json.RawMessage) (any, error) {
	var p resourceReadParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, rpcErrorf(CodeInvalidParams, "invalid resources/read params: %v", err)
	}

	s.mu.RLock()
	var found *Resource
	for i := range s.resources {
		if s.resources[i].URI == p.URI {
			found = &s.resources[i]
			break
		}
	}
	s.mu.RUnlock()

	if found == nil {
		return nil, rpcErrorf(CodeInvalidParams, "unknown resource: %s", p.URI)
	}

	text, err := found.Reader(ctx)
	if err != nil {
		return nil, rpcErrorf(CodeInternalError, "read resource %s: %v", p.URI, err)
	}

	mimeType := found.MimeType
	if mimeType == "" {
		mimeType = "text/plain"
	}
	return map[string]any{
		"contents": []map[string]any{
			{"uri": found.URI, "mimeType": mimeType, "text": text},
		},
	}, nil
}

func (s *Server) handlePromptsList() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prompts := make([]Prompt, len(s.prompts))
	copy(prompts, s.prompts)
	return map[string]any{"prompts": prompts}
}

type promptGetParams struct {
	Name      string            `json:"name"`
	Arguments map[string]string `json:"arguments"`
}

func (s *Server) handlePromptsGet(ctx context.Context, raw json.RawMessage) (any, error) {
	var p promptGetParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, rpcErrorf(CodeInvalidParams, "invalid prompts/get params: %v", err)
	}

	s.mu.RLock()
	var found *Prompt
	for i := range s.prompts {
		if s.prompts[i].Name == p.Name {
			found = &s.prompts[i]
			break
		}
	}
	s.mu.RUnlock()

	if found == nil {
		return nil, rpcErrorf(CodeInvalidParams, "unknown prompt: %s", p.Name)
	}

	text, err := found.Render(ctx, p.Arguments)
	if err != nil {
		return nil, rpcErrorf(CodeInternalError, "render prompt %s: %v", p.Name, err)
	}

	return map[string]any{
		"description": found.Description,
		"messages": []map[string]any{
			{
				"role":    "user",
				"content": ContentBlock{Type: "text", Text: text},
			},
		},
	}, nil
}
