package store

import (
	"sort"
	"strings"
	"sync"
)

// Note is one named text note.
type Note struct {
	Name    string
	Content string
}

// Notes is an in-memory set of notes keyed by caller-chosen names. Unlike
// Collection it has no persistence and no allocated ids; a Put under an
// existing name replaces the note.
type Notes struct {
	mu    sync.RWMutex
	notes map[string]string
}

// NewNotes creates an empty note set.
func NewNotes() *Notes {
	return &Notes{notes: make(map[string]string)}
}

// Put adds or replaces a note.
func (n *Notes) Put(name, content string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes[name] = content
}

// Get returns a note's content.
func (n *Notes) Get(name string) (string, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	content, ok := n.notes[name]
	return content, ok
}

// Len returns the number of stored notes.
func (n *Notes) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.notes)
}

// All returns every note ordered by name.
func (n *Notes) All() []Note {
	n.mu.RLock()
	defer n.mu.RUnlock()

	all := make([]Note, 0, len(n.notes))
	for name, content := range n.notes {
		all = append(all, Note{Name: name, Content: content})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all
}

// Search returns notes whose name or content contains the query,
// case-insensitively, ordered by name.
func (n *Notes) Search(query string) []Note {
	q := strings.ToLower(query)

	n.mu.RLock()
	defer n.mu.RUnlock()

	var matches []Note
	for name, content := range n.notes {
		if strings.Contains(strings.ToLower(name), q) ||
			strings.Contains(strings.ToLower(content), q) {
			matches = append(matches, Note{Name: name, Content: content})
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Name < matches[j].Name })
	return matches
}
