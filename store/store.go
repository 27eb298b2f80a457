// Package store persists the resource servers' records.
//
// Each MCP server owns one named collection of JSON records with numeric
// ids. Backends cover in-process (memory), single-node (file), and shared
// (postgres, redis) deployments; the backend is selected by environment,
// see NewCollectionFromEnv.
package store

import (
	"context"
	"errors"
)

// Storage errors.
var (
	// ErrNotFound indicates no record exists with the given id.
	ErrNotFound = errors.New("store: record not found")

	// ErrClosed indicates the collection has been closed.
	ErrClosed = errors.New("store: collection closed")
)

// Record is one stored document.
type Record struct {
	ID     int            `json:"id"`
	Fields map[string]any `json:"fields"`
}

// Map returns the record flattened into a single map, id included. Tool
// results are built from this form.
func (r Record) Map() map[string]any {
	out := make(map[string]any, len(r.Fields)+1)
	for k, v := range r.Fields {
		out[k] = v
	}
	out["id"] = r.ID
	return out
}

// Collection is an ordered set of records with numeric ids.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Ids: Create assigns max(existing)+1, starting at 1. Ids of deleted
//   records may be reused by later creates.
// - Errors: Get, Update, and Delete return ErrNotFound for unknown ids.
type Collection interface {
	// List returns all records ordered by id.
	List(ctx context.Context) ([]Record, error)

	// Get returns the record with the given id.
	Get(ctx context.Context, id int) (Record, error)

	// Create stores a new record and returns it with its assigned id.
	Create(ctx context.Context, fields map[string]any) (Record, error)

	// Update replaces the fields of an existing record.
	Update(ctx context.Context, id int, fields map[string]any) (Record, error)

	// Delete removes the record with the given id.
	Delete(ctx context.Context, id int) error

	// Close releases backend resources.
	Close() error
}
