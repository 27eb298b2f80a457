// Command tasks-auth0 is a task manager MCP server behind bearer token
// verification against an Auth0 tenant.
//
// Required environment: OAUTH_ISSUER (https://{tenant}/), OAUTH_AUDIENCE.
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
	scopeRead  = "read:tasks"
	scopeWrite = "write:tasks"
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

	cfg, err := config.FromEnv("tasks", ":9000")
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

	tasks, err := a.OpenCollection(ctx, "tasks")
	if err != nil {
		return err
	}

	register(a, tasks)
	return a.Run(ctx)
}

func formatTask(r store.Record) string {
	title, _ := r.Fields["title"].(string)
	status, _ := r.Fields["status"].(string)
	priority, _ := r.Fields["priority"].(string)
	return fmt.Sprintf("[%d] %s (%s, %s)", r.ID, title, status, priority)
}

func register(a *app.App, tasks store.Collection) {
	a.Server.RegisterTool(mcp.Tool{
		Name:          "create_task",
		Description:   "Create a new task.",
		RequiredScope: scopeWrite,
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title":    map[string]any{"type": "string", "description": "Task title"},
				"status":   map[string]any{"type": "string", "description": `"todo", "in_progress", or "done"`},
				"priority": map[string]any{"type": "string", "description": `"low", "medium", or "high"`},
			},
			"required": []string{"title"},
		},
		Handler: func(ctx context.Context, args map[string]any) (*mcp.ToolResult, error) {
			title := mcp.StringArg(args, "title", "")
			if title == "" {
				return mcp.ErrorResult("title is required"), nil
			}
			status := mcp.StringArg(args, "status", "todo")
			priority := mcp.StringArg(args, "priority", "medium")

			rec, err := tasks.Create(ctx, map[string]any{
				"title":    title,
				"status":   status,
				"priority": priority,
			})
			if err != nil {
				return nil, err
			}
			return mcp.TextResult("Task %q created with id %d (status=%s, priority=%s).",
				title, rec.ID, status, priority), nil
		},
	})

	a.Server.RegisterTool(mcp.Tool{
		Name:          "list_tasks",
		Description:   "List tasks, optionally filtered by status.",
		RequiredScope: scopeRead,
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"status": map[string]any{"type": "string", "description": "Filter by status, or empty for all"},
			},
		},
		Handler: func(ctx context.Context, args map[string]any) (*mcp.ToolResult, error) {
			status := mcp.StringArg(args, "status", "")

			all, err := tasks.List(ctx)
			if err != nil {
				return nil, err
			}

			var lines []string
			for _, r := range all {
				if status != "" && r.Fields["status"] != status {
					continue
				}
				lines = append(lines, "- "+formatTask(r))
			}
			if len(lines) == 0 {
				if status != "" {
					return mcp.TextResult("No tasks with status %q.", status), nil
				}
				return mcp.TextResult("No tasks found."), nil
			}
			return mcp.TextResult("Found %d task(s):\n%s",
				len(lines), strings.Join(lines, "\n")), nil
		},
	})

	a.Server.RegisterTool(mcp.Tool{
		Name:          "get_task",
		Description:   "Get details for a specific task.",
		RequiredScope: scopeRead,
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id": map[string]any{"type": "integer", "description": "The task id"},
			},
			"required": []string{"id"},
		},
		Handler: func(ctx context.Context, args map[string]any) (*mcp.ToolResult, error) {
			id, ok := mcp.IntArg(args, "id")
			if !ok {
				return mcp.ErrorResult("id is required"), nil
			}

			rec, err := tasks.Get(ctx, id)
			if errors.Is(err, store.ErrNotFound) {
				return mcp.ErrorResult("task %d not found", id), nil
			}
			if err != nil {
				return nil, err
			}
			return mcp.JSONResult(rec.Map())
		},
	})

	a.Server.RegisterTool(mcp.Tool{
		Name:          "complete_task",
		Description:   "Mark a task as done.",
		RequiredScope: scopeWrite,
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id": map[string]any{"type": "integer", "description": "The task id"},
			},
			"required": []string{"id"},
		},
		Handler: func(ctx context.Context, args map[string]any) (*mcp.ToolResult, error) {
			id, ok := mcp.IntArg(args, "id")
			if !ok {
				return mcp.ErrorResult("id is required"), nil
			}

			rec, err := tasks.Get(ctx, id)
			if errors.Is(err, store.ErrNotFound) {
				return mcp.ErrorResult("task %d not found", id), nil
			}
			if err != nil {
				return nil, err
			}

			rec.Fields["status"] = "done"
			if _, err := tasks.Update(ctx, id, rec.Fields); err != nil {
				return nil, err
			}
			title, _ := rec.Fields["title"].(string)
			return mcp.TextResult("Task %d (%q) marked done.", id, title), nil
		},
	})

	a.Server.RegisterTool(mcp.Tool{
		Name:          "delete_task",
		Description:   "Delete a task.",
		RequiredScope: scopeWrite,
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id": map[string]any{"type": "integer", "description": "The task id"},
			},
			"required": []string{"id"},
		},
		Handler: func(ctx context.Context, args map[string]any) (*mcp.ToolResult, error) {
			id, ok := mcp.IntArg(args, "id")
			if !ok {
				return mcp.ErrorResult("id is required"), nil
			}

			err := tasks.Delete(ctx, id)
			if errors.Is(err, store.ErrNotFound) {
				return mcp.ErrorResult("task %d not found", id), nil
			}
			if err != nil {
				return nil, err
			}
			return mcp.TextResult("Task %d deleted.", id), nil
		},
	})

	a.Server.RegisterResource(mcp.Resource{
		URI:         "tasks://all",
		Name:        "All tasks",
		Description: "Every task with status and priority.",
		Reader: func(ctx context.Context) (string, error) {
			all, err := tasks.List(ctx)
			if err != nil {
				return "", err
			}
			if len(all) == 0 {
				return "No tasks yet.", nil
			}
			lines := make([]string, len(all))
			for i, r := range all {
				lines[i] = formatTask(r)
			}
			return strings.Join(lines, "\n"), nil
		},
	})

	a.Server.RegisterPrompt(mcp.Prompt{
		Name:        "prioritize_tasks",
		Description: "Ask the model to prioritize the open tasks.",
		Arguments: []mcp.PromptArgument{
			{Name: "focus", Description: `"urgency" for deadline-driven, "impact" for value-driven analysis`},
		},
		Render: func(ctx context.Context, args map[string]string) (string, error) {
			all, err := tasks.List(ctx)
			if err != nil {
				return "", err
			}
			if len(all) == 0 {
				return "No tasks to prioritize.", nil
			}

			data, err := mcp.JSONResult(recordMaps(all))
			if err != nil {
				return "", err
			}

			instruction := "Analyze these tasks and prioritize them by urgency. " +
				"Consider current status, priority level, and dependencies. " +
				"Suggest which tasks to tackle first and why."
			if args["focus"] == "impact" {
				instruction = "Analyze these tasks and prioritize them by business impact. " +
					"Consider which tasks deliver the most value, unblock other work, " +
					"or reduce technical debt. Suggest a ranked order with reasoning."
			}
			return instruction + "\n\nTask data:\n" + data.Content[0].Text, nil
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
