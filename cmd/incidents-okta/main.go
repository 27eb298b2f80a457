// Command incidents-okta is an incident tracker MCP server behind bearer
// token verification against an Okta authorization server.
//
// Required environment: OAUTH_ISSUER (https://{org}/oauth2/{server}),
// OAUTH_AUDIENCE. OAUTH_PROVIDER defaults to okta here.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jonwraymond/mcpguard/app"
	"github.com/jonwraymond/mcpguard/config"
	"github.com/jonwraymond/mcpguard/mcp"
	"github.com/jonwraymond/mcpguard/store"
)

const (
	version    = "1.0.0"
	scopeRead  = "read:incidents"
	scopeWrite = "write:incidents"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if err := config.Load(ctx); err != nil {
		return err
	}
	if os.Getenv("OAUTH_PROVIDER") == "" {
		if err := os.Setenv("OAUTH_PROVIDER", "okta"); err != nil {
			return err
		}
	}

	cfg, err := config.FromEnv("incidents", ":9001")
	if err != nil {
		return err
	}

	a, err := app.New(ctx, app.Config{
		Server:      cfg,
		Version:     version,
		RequireAuth: true,
		Scopes:      []string{scopeRead, scopeWrite},
	})
	if err != nil {
		return err
	}

	incidents, err := a.OpenCollection(ctx, "incidents")
	if err != nil {
		return err
	}

	register(a, incidents)
	return a.Run(ctx)
}

func formatIncident(r store.Record) string {
	title, _ := r.Fields["title"].(string)
	severity, _ := r.Fields["severity"].(string)
	status, _ := r.Fields["status"].(string)
	return fmt.Sprintf("[%d] %s (%s, %s)", r.ID, title, severity, status)
}

func register(a *app.App, incidents store.Collection) {
	a.Server.RegisterTool(mcp.Tool{
		Name:          "create_incident",
		Description:   "Create a new incident.",
		RequiredScope: scopeWrite,
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title":    map[string]any{"type": "string", "description": "Incident title"},
				"severity": map[string]any{"type": "string", "description": `"low", "medium", "high", or "critical"`},
				"status":   map[string]any{"type": "string", "description": `"open", "investigating", or "resolved"`},
			},
			"required": []string{"title"},
		},
		Handler: func(ctx context.Context, args map[string]any) (*mcp.ToolResult, error) {
			title := mcp.StringArg(args, "title", "")
			if title == "" {
				return mcp.ErrorResult("title is required"), nil
			}
			severity := mcp.StringArg(args, "severity", "medium")
			status := mcp.StringArg(args, "status", "open")

			rec, err := incidents.Create(ctx, map[string]any{
				"title":    title,
				"severity": severity,
				"status":   status,
			})
			if err != nil {
				return nil, err
			}
			return mcp.TextResult("Incident %q created with id %d (severity=%s, status=%s).",
				title, rec.ID, severity, status), nil
		},
	})

	a.Server.RegisterTool(mcp.Tool{
		Name:          "list_incidents",
		Description:   "List incidents, optionally filtered by severity or status.",
		RequiredScope: scopeRead,
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"severity": map[string]any{"type": "string", "description": "Filter by severity, or empty for all"},
				"status":   map[string]any{"type": "string", "description": "Filter by status, or empty for all"},
			},
		},
		Handler: func(ctx context.Context, args map[string]any) (*mcp.ToolResult, error) {
			severity := mcp.StringArg(args, "severity", "")
			status := mcp.StringArg(args, "status", "")

			all, err := incidents.List(ctx)
			if err != nil {
				return nil, err
			}

			var lines []string
			for _, r := range all {
				if severity != "" && r.Fields["severity"] != severity {
					continue
				}
				if status != "" && r.Fields["status"] != status {
					continue
				}
				lines = append(lines, "- "+formatIncident(r))
			}
			if len(lines) == 0 {
				return mcp.TextResult("No matching incidents."), nil
			}
			return mcp.TextResult("Found %d incident(s):\n%s",
				len(lines), strings.Join(lines, "\n")), nil
		},
	})

	a.Server.RegisterTool(mcp.Tool{
		Name:          "resolve_incident",
		Description:   "Mark an incident as resolved.",
		RequiredScope: scopeWrite,
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id": map[string]any{"type": "integer", "description": "The incident id"},
			},
			"required": []string{"id"},
		},
		Handler: func(ctx context.Context, args map[string]any) (*mcp.ToolResult, error) {
			id, ok := mcp.IntArg(args, "id")
			if !ok {
				return mcp.ErrorResult("id is required"), nil
			}

			rec, err := incidents.Get(ctx, id)
			if errors.Is(err, store.ErrNotFound) {
				return mcp.ErrorResult("incident %d not found", id), nil
			}
			if err != nil {
				return nil, err
			}

			rec.Fields["status"] = "resolved"
			if _, err := incidents.Update(ctx, id, rec.Fields); err != nil {
				return nil, err
			}
			title, _ := rec.Fields["title"].(string)
			return mcp.TextResult("Incident %d (%q) resolved.", id, title), nil
		},
	})

	a.Server.RegisterTool(mcp.Tool{
		Name:          "get_incident",
		Description:   "Get details for a specific incident.",
		RequiredScope: scopeRead,
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id": map[string]any{"type": "integer", "description": "The incident id"},
			},
			"required": []string{"id"},
		},
		Handler: func(ctx context.Context, args map[string]any) (*mcp.ToolResult, error) {
			id, ok := mcp.IntArg(args, "id")
			if !ok {
				return mcp.ErrorResult("id is required"), nil
			}

			rec, err := incidents.Get(ctx, id)
			if errors.Is(err, store.ErrNotFound) {
				return mcp.ErrorResult("incident %d not found", id), nil
			}
			if err != nil {
				return nil, err
			}
			return mcp.JSONResult(rec.Map())
		},
	})

	a.Server.RegisterResource(mcp.Resource{
		URI:         "incidents://all",
		Name:        "All incidents",
		Description: "Every incident with severity and status.",
		Reader: func(ctx context.Context) (string, error) {
			all, err := incidents.List(ctx)
			if err != nil {
				return "", err
			}
			if len(all) == 0 {
				return "No incidents yet.", nil
			}
			lines := make([]string, len(all))
			for i, r := range all {
				lines[i] = formatIncident(r)
			}
			return strings.Join(lines, "\n"), nil
		},
	})

	a.Server.RegisterPrompt(mcp.Prompt{
		Name:        "triage_incidents",
		Description: "Ask the model to triage and analyze the incidents.",
		Arguments: []mcp.PromptArgument{
			{Name: "focus", Description: `"severity" for severity-based prioritization, "patterns" for root-cause analysis`},
		},
		Render: func(ctx context.Context, args map[string]string) (string, error) {
			all, err := incidents.List(ctx)
			if err != nil {
				return "", err
			}
			if len(all) == 0 {
				return "No incidents to triage.", nil
			}

			data, err := mcp.JSONResult(recordMaps(all))
			if err != nil {
				return "", err
			}

			instruction := "Triage these incidents by severity and recommend an action plan. " +
				"Identify which incidents need immediate attention, which can wait, " +
				"and suggest an order of resolution with reasoning."
			if args["focus"] == "patterns" {
				instruction = "Analyze these incidents for common patterns and root causes. " +
					"Group related incidents, identify systemic issues, and suggest " +
					"preventive measures to reduce future incidents."
			}
			return instruction + "\n\nIncident data:\n" + data.Content[0].Text, nil
		},
	})
}

func recordMaps(records []store.Record) []map[string]any {
	out := make([]map[string]any, len(records))
	for i, r := range records {
		out[i] = r.Map()
	}
	return out
}
