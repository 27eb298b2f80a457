package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// FileCollection is a Collection persisted to a single JSON file. The whole
// collection is held in memory; every mutation rewrites the file atomically
// (temp file then rename).
type FileCollection struct {
	path string

	mu      sync.RWMutex
	records map[int]Record
	closed  bool
}

var _ Collection = (*FileCollection)(nil)

type fileDocument struct {
	Records []Record `json:"records"`
}

// NewFileCollection opens (or creates) a file-backed collection.
func NewFileCollection(path string) (*FileCollection, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	c := &FileCollection{
		path:    path,
		records: make(map[int]Record),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store file: %w", err)
	}

	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse store file %s: %w", path, err)
	}
	for _, r := range doc.Records {
		c.records[r.ID] = r
	}
	return c, nil
}

func (c *FileCollection) List(ctx context.Context) ([]Record, error) {
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

func (c *FileCollection) Get(ctx context.Context, id int) (Record, error) {
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

func (c *FileCollection) Create(ctx context.Context, fields map[string]any) (Record, error) {
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
	if err := c.persistLocked(); err != nil {
		delete(c.records, id)
		return Record{}, err
	}
	return r, nil
}

func (c *FileCollection) Update(ctx context.Context, id int, fields map[string]any) (Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return Record{}, ErrClosed
	}

	prev, ok := c.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}

	r := Record{ID: id, Fields: cloneFields(fields)}
	c.records[id] = r
	if err := c.persistLocked(); err != nil {
		c.records[id] = prev
		return Record{}, err
	}
	return r, nil
}

func (c *FileCollection) Delete(ctx context.Context, id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	prev, ok := c.records[id]
	if !ok {
		return ErrNotFound
	}

	delete(c.records, id)
	if err := c.persistLocked(); err != nil {
		c.records[id] = prev
		return err
	}
	return nil
}

func (c *FileCollection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// persistLocked writes the collection atomically. Caller must hold the
// write lock.
func (c *FileCollection) persistLocked() error {
	doc := fileDocument{Records: make([]Record, 0, len(c.records))}
	for _, r := range c.records {
		doc.Records = append(doc.Records, r)
	}
	sort.Slice(doc.Records, func(i, j int) bool { return doc.Records[i].ID < doc.Records[j].ID })

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store file: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}
