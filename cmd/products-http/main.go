// Command products-http is a product catalog MCP server on the streamable
// HTTP transport, served without bearer verification.
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
		Server:  config.OpenFromEnv("products", ":8000"),
		Version: version,
	})
	if err != nil {
		return err
	}

	products, err := a.OpenCollection(ctx, "products")
	if err != nil {
		return err
	}

	register(a, products)
	return a.Run(ctx)
}

func formatProduct(r store.Record) string {
	name, _ := r.Fields["name"].(string)
	price, _ := r.Fields["price"].(float64)
	category, _ := r.Fields["category"].(string)
	return fmt.Sprintf("[%d] %s ($%.2f, %s)", r.ID, name, price, category)
}

func register(a *app.App, products store.Collection) {
	a.Server.RegisterTool(mcp.Tool{
		Name:        "add_product",
		Description: "Add a new product to the catalog.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name":     map[string]any{"type": "string", "description": "Product name"},
				"price":    map[string]any{"type": "number", "description": "Price in USD"},
				"category": map[string]any{"type": "string", "description": "Product category"},
			},
			"required": []string{"name", "price", "category"},
		},
		Handler: func(ctx context.Context, args map[string]any) (*mcp.ToolResult, error) {
			name := mcp.StringArg(args, "name", "")
			category := mcp.StringArg(args, "category", "")
			price, ok := mcp.NumberArg(args, "price")
			if name == "" || category == "" || !ok {
				return mcp.ErrorResult("name, price, and category are required"), nil
			}

			rec, err := products.Create(ctx, map[string]any{
				"name":     name,
				"price":    price,
				"category": category,
			})
			if err != nil {
				return nil, err
			}
			return mcp.TextResult("Product %q added with id %d ($%.2f, %s).",
				name, rec.ID, price, category), nil
		},
	})

	a.Server.RegisterTool(mcp.Tool{
		Name:        "search_products",
		Description: "Search products by name or category (case-insensitive).",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{"type": "string", "description": "Search term for product name or category"},
			},
			"required": []string{"query"},
		},
		Handler: func(ctx context.Context, args map[string]any) (*mcp.ToolResult, error) {
			query := strings.ToLower(mcp.StringArg(args, "query", ""))

			all, err := products.List(ctx)
			if err != nil {
				return nil, err
			}

			var lines []string
			for _, r := range all {
				name, _ := r.Fields["name"].(string)
				category, _ := r.Fields["category"].(string)
				if strings.Contains(strings.ToLower(name), query) ||
					strings.Contains(strings.ToLower(category), query) {
					lines = append(lines, "- "+formatProduct(r))
				}
			}
			if len(lines) == 0 {
				return mcp.TextResult("No products matching %q.", query), nil
			}
			return mcp.TextResult("Found %d product(s):\n%s",
				len(lines), strings.Join(lines, "\n")), nil
		},
	})

	a.Server.RegisterTool(mcp.Tool{
		Name:        "get_product",
		Description: "Get details for a specific product.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id": map[string]any{"type": "integer", "description": "The product id"},
			},
			"required": []string{"id"},
		},
		Handler: func(ctx context.Context, args map[string]any) (*mcp.ToolResult, error) {
			id, ok := mcp.IntArg(args, "id")
			if !ok {
				return mcp.ErrorResult("id is required"), nil
			}

			rec, err := products.Get(ctx, id)
			if errors.Is(err, store.ErrNotFound) {
				return mcp.ErrorResult("product %d not found", id), nil
			}
			if err != nil {
				return nil, err
			}
			return mcp.JSONResult(rec.Map())
		},
	})

	a.Server.RegisterResource(mcp.Resource{
		URI:         "products://all",
		Name:        "Product catalog",
		Description: "All products in the catalog.",
		Reader: func(ctx context.Context) (string, error) {
			all, err := products.List(ctx)
			if err != nil {
				return "", err
			}
			if len(all) == 0 {
				return "Catalog is empty.", nil
			}
			lines := make([]string, len(all))
			for i, r := range all {
				lines[i] = formatProduct(r)
			}
			return strings.Join(lines, "\n"), nil
		},
	})

	a.Server.RegisterPrompt(mcp.Prompt{
		Name:        "analyze_catalog",
		Description: "Ask the model to analyze the product catalog.",
		Arguments: []mcp.PromptArgument{
			{Name: "focus", Description: `"pricing" for price analysis, "inventory" for category overview`},
		},
		Render: func(ctx context.Context, args map[string]string) (string, error) {
			all, err := products.List(ctx)
			if err != nil {
				return "", err
			}
			if len(all) == 0 {
				return "The catalog is empty, nothing to analyze.", nil
			}

			catalog, err := mcp.JSONResult(recordMaps(all))
			if err != nil {
				return "", err
			}

			instruction := "Analyze the pricing of this product catalog. " +
				"Identify the price range, suggest competitive adjustments, " +
				"and flag any outliers."
			if args["focus"] == "inventory" {
				instruction = "Analyze this product catalog focusing on inventory composition. " +
					"Break down products by category, identify gaps, and suggest " +
					"categories that could be added."
			}
			return instruction + "\n\nCatalog data:\n" + catalog.Content[0].Text, nil
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
