// Command notes-stdio is a notes MCP server on the stdio transport.
//
// No bearer verification applies: the transport is a local pipe. Logs go to
// stderr so stdout carries only JSON-RPC messages.
package main

import (
	"context"
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

const version = "1.0.0"

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

	a, err := app.New(ctx, app.Config{
		Server:  config.OpenFromEnv("notes", ":8000"),
		Version: version,
	})
	if err != nil {
		return err
	}

	notes := store.NewNotes()
	register(a, notes)
	return a.RunStdio(ctx)
}

// previewText flattens newlines and truncates to max runes, never
// splitting a multi-byte character.
func previewText(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func register(a *app.App, notes *store.Notes) {
	a.Server.RegisterTool(mcp.Tool{
		Name:        "add_note",
		Description: "Add a new note or update an existing one.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name":    map[string]any{"type": "string", "description": "Short identifier for the note"},
				"content": map[string]any{"type": "string", "description": "The text content of the note"},
			},
			"required": []string{"name", "content"},
		},
		Handler: func(ctx context.Context, args map[string]any) (*mcp.ToolResult, error) {
			name := mcp.StringArg(args, "name", "")
			content := mcp.StringArg(args, "content", "")
			if name == "" || content == "" {
				return mcp.ErrorResult("name and content are required"), nil
			}
			notes.Put(name, content)
			return mcp.TextResult("Note %q saved (%d chars).", name, len(content)), nil
		},
	})

	a.Server.RegisterTool(mcp.Tool{
		Name:        "search_notes",
		Description: "Search notes by keyword (case-insensitive substring match).",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{"type": "string", "description": "Search term for note names and content"},
			},
			"required": []string{"query"},
		},
		Handler: func(ctx context.Context, args map[string]any) (*mcp.ToolResult, error) {
			query := mcp.StringArg(args, "query", "")
			matches := notes.Search(query)
			if len(matches) == 0 {
				return mcp.TextResult("No notes matching %q.", query), nil
			}

			lines := make([]string, 0, len(matches)+1)
			lines = append(lines, fmt.Sprintf("Found %d note(s):", len(matches)))
			for _, m := range matches {
				lines = append(lines, fmt.Sprintf("- %s: %s", m.Name, previewText(m.Content, 120)))
			}
			return mcp.TextResult("%s", strings.Join(lines, "\n")), nil
		},
	})

	a.Server.RegisterTool(mcp.Tool{
		Name:        "read_note",
		Description: "Read the full content of a specific note.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name": map[string]any{"type": "string", "description": "The note identifier"},
			},
			"required": []string{"name"},
		},
		Handler: func(ctx context.Context, args map[string]any) (*mcp.ToolResult, error) {
			name := mcp.StringArg(args, "name", "")
			content, ok := notes.Get(name)
			if !ok {
				return mcp.ErrorResult("note %q not found", name), nil
			}
			return mcp.TextResult("%s", content), nil
		},
	})

	a.Server.RegisterResource(mcp.Resource{
		URI:         "notes://list",
		Name:        "All notes",
		Description: "Names of all stored notes.",
		Reader: func(ctx context.Context) (string, error) {
			all := notes.All()
			if len(all) == 0 {
				return "No notes stored yet.", nil
			}
			names := make([]string, len(all))
			for i, n := range all {
				names[i] = "- " + n.Name
			}
			return strings.Join(names, "\n"), nil
		},
	})

	a.Server.RegisterPrompt(mcp.Prompt{
		Name:        "summarize_notes",
		Description: "Ask the model to summarize all stored notes.",
		Arguments: []mcp.PromptArgument{
			{Name: "style", Description: `"brief" for a short overview, "detailed" for an in-depth analysis`},
		},
		Render: func(ctx context.Context, args map[string]string) (string, error) {
			all := notes.All()
			if len(all) == 0 {
				return "There are no notes to summarize.", nil
			}

			sections := make([]string, len(all))
			for i, n := range all {
				sections[i] = fmt.Sprintf("## %s\n%s", n.Name, n.Content)
			}

			instruction := "Provide a brief summary of the following notes in a few sentences."
			if args["style"] == "detailed" {
				instruction = "Provide a detailed analysis of the following notes. " +
					"Include key themes, action items, and connections between notes."
			}
			return instruction + "\n\n" + strings.Join(sections, "\n\n"), nil
		},
	})
}
