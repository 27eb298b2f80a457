package observe

import "testing"

// TestCallMeta_SpanName verifies deterministic span naming.
func TestCallMeta_SpanName(t *testing.T) {
	tests := []struct {
		name string
		meta CallMeta
		want string
	}{
		{
			name: "tool call",
			meta: CallMeta{Server: "notes", Method: "tools/call", Tool: "create_note"},
			want: "mcp.tool.create_note",
		},
		{
			name: "plain rpc",
			meta: CallMeta{Server: "notes", Method: "tools/list"},
			want: "mcp.rpc.tools/list",
		},
		{
			name: "initialize",
			meta: CallMeta{Server: "products", Method: "initialize"},
			want: "mcp.rpc.initialize",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.meta.SpanName(); got != tt.want {
				t.Errorf("SpanName() = %q, want %q", got, tt.want)
			}
		})
	}
}
