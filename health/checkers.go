package health

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jonwraymond/mcpguard/store"
)

// JWKSChecker verifies the authorization server's key set endpoint is
// reachable. An unreachable endpoint does not break verification while
// cached keys are fresh, so it degrades rather than fails.
type JWKSChecker struct {
	url    string
	client *http.Client
}

// NewJWKSChecker creates a checker for a JWKS endpoint. A nil client gets
// a 5s timeout default.
func NewJWKSChecker(url string, client *http.Client) *JWKSChecker {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &JWKSChecker{url: url, client: client}
}

func (c *JWKSChecker) Name() string { return "jwks" }

func (c *JWKSChecker) Check(ctx context.Context) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return Unhealthy("build jwks request", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Degraded("jwks endpoint unreachable, serving from cached keys").
			WithDetails(map[string]any{"url": c.url})
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Degraded(fmt.Sprintf("jwks endpoint returned %d", resp.StatusCode)).
			WithDetails(map[string]any{"url": c.url})
	}
	return Healthy("jwks endpoint reachable")
}

// CollectionChecker verifies a record store answers queries.
type CollectionChecker struct {
	name       string
	collection store.Collection
}

// NewCollectionChecker creates a checker for one store collection.
func NewCollectionChecker(name string, collection store.Collection) *CollectionChecker {
	return &CollectionChecker{name: name, collection: collection}
}

func (c *CollectionChecker) Name() string { return "store:" + c.name }

func (c *CollectionChecker) Check(ctx context.Context) Result {
	records, err := c.collection.List(ctx)
	if err != nil {
		return Unhealthy("store query failed", err)
	}
	return Healthy("store reachable").
		WithDetails(map[string]any{"records": len(records)})
}
