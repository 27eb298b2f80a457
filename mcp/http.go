package mcp

import (
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonwraymond/mcpguard/observe"
)

// SessionHeader carries the streamable HTTP transport's session id.
const SessionHeader = "Mcp-Session-Id"

// maxBodyBytes bounds a single JSON-RPC message.
const maxBodyBytes = 4 << 20

// httpHandler is the streamable HTTP transport: one JSON-RPC message per
// POST, responses inline. Sessions are identified by the Mcp-Session-Id
// header; the server assigns one on the first request and echoes it after.
type httpHandler struct {
	server *Server
	logger observe.Logger
}

// NewHTTPHandler wraps a server in the streamable HTTP transport.
func NewHTTPHandler(server *Server, logger observe.Logger) http.Handler {
	if logger == nil {
		logger = observe.NewLogger("info")
	}
	return &httpHandler{server: server, logger: logger}
}

func (h *httpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handlePost(w, r)

	case http.MethodDelete:
		// Session teardown. State lives in the stores, not the session,
		// so there is nothing to release.
		w.WriteHeader(http.StatusNoContent)

	default:
		w.Header().Set("Allow", "POST, DELETE")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *httpHandler) handlePost(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}

	session := r.Header.Get(SessionHeader)
	if session == "" {
		session = uuid.NewString()
	}
	w.Header().Set(SessionHeader, session)

	resp := h.server.HandleMessage(r.Context(), body)
	if resp == nil {
		// Notification: acknowledged, nothing to send back.
		w.WriteHeader(http.StatusAccepted)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(resp); err != nil {
		h.logger.Warn(r.Context(), "write response failed",
			observe.Field{Key: "error", Value: err.Error()},
			observe.Field{Key: "mcp.server", Value: h.server.Name()},
		)
	}
}
