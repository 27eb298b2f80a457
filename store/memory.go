package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryCollection is an in-process Collection. It is the default backend
// and the reference semantics for the others.
type MemoryCollection struct {
	mu      sync.RWMutex
	records map[int]Record
	closed  bool
}

var _ Collection = (*MemoryCollection)(nil)

// NewMemoryCollection creates an empty in-memory collection.
func NewMemoryCollection() *MemoryCollection {
	return &MemoryCollection{records: make(map[int]Record)}
}

// NewMemoryCollectionWith creates a collection pre-loaded with records.
// Useful for seeding demo servers.
func NewMemoryCollectionWith(seed []map[string]any) *MemoryCollection {
	c := NewMemoryCollection()
	for _, fields := range seed {
		_, _ = c.Create(context.Background(), fields)
	}
	return c
}

func (c *MemoryCollection) List(ctx context.Context) ([]Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, ErrClosed
	}

	out := make([]Record, 0, len(c.records))
	for _, r := range c.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (c *MemoryCollection) Get(ctx context.Context, id int) (Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return Record{}, ErrClosed
	}

	r, ok := c.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return r, nil
}

func (c *MemoryCollection) Create(ctx context.Context, fields map[string]any) (Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return Record{}, ErrClosed
	}

	id := 1
	for existing := range c.records {
		if existing >= id {
			id = existing + 1
		}
	}

	r := Record{ID: id, Fields: cloneFields(fields)}
	c.records[id] = r
	return r, nil
}

func (c *MemoryCollection) Update(ctx context.Context, id int, fields map[string]any) (Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return Record{}, ErrClosed
	}

	if _, ok := c.records[id]; !ok {
		return Record{}, ErrNotFound
	}

	r := Record{ID: id, Fields: cloneFields(fields)}
	c.records[id] = r
	return r, nil
}

func (c *MemoryCollection) Delete(ctx context.Context, id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	if _, ok := c.records[id]; !ok {
		return ErrNotFound
	}
	delete(c.records, id)
	return nil
}

func (c *MemoryCollection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func cloneFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
