// Package history persists evaluated formulas, so a session can recall
// what was asked of the board and how large each result set was.
package history

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry is one evaluated formula.
type Entry struct {
	ID        string    `json:"id"`
	Formula   string    `json:"formula"`
	Points    int       `json:"points"`   // elements in the result set
	Universe  int       `json:"universe"` // universe size at evaluation time
	CreatedAt time.Time `json:"created_at"`
}

// NewEntry creates an entry with a fresh ID and timestamp.
func NewEntry(formula string, points, universe int) Entry {
	return Entry{
		ID:        uuid.New().String(),
		Formula:   formula,
		Points:    points,
		Universe:  universe,
		CreatedAt: time.Now().UTC(),
	}
}

// Store persists formula history.
type Store interface {
	// Append records an entry.
	Append(ctx context.Context, e Entry) error

	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]Entry, error)

	// Close releases store resources.
	Close() error
}

// MemoryStore is an in-memory Store for tests and ephemeral sessions.
type MemoryStore struct {
	mu      sync.Mutex
	entries []Entry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return nil
}

func (s *MemoryStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 || limit > len(s.entries) {
		limit = len(s.entries)
	}
	out := make([]Entry, 0, limit)
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.entries[i])
	}
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
