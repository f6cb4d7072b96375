package core

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MemoryEntry is a cached association between a query and a set of
// documents, with access metadata used for relevance ranking and eviction.
// Entries reference documents that exist independently; memory never owns
// document identity.
type MemoryEntry struct {
	ID          string
	QueryID     string
	QueryText   string
	Documents   []*Document
	Relevance   float64
	AccessCount int
	CreatedAt   time.Time
	AccessedAt  time.Time
	TTL         time.Duration // 0 means no expiration
	Embedding   []float32
}

// NewMemoryEntry creates an entry associating a query with documents.
func NewMemoryEntry(q Query, docs []*Document, relevance float64) MemoryEntry {
	now := time.Now()
	return MemoryEntry{
		ID:         uuid.NewString(),
		QueryID:    q.ID,
		QueryText:  q.Text,
		Documents:  docs,
		Relevance:  relevance,
		CreatedAt:  now,
		AccessedAt: now,
	}
}

// Expired reports whether the entry has reached its TTL at the given time.
// An entry is expired from exactly CreatedAt+TTL onward.
func (e *MemoryEntry) Expired(now time.Time) bool {
	return e.TTL > 0 && now.Sub(e.CreatedAt) >= e.TTL
}

// MemoryStats describes one memory tier's health and usage.
type MemoryStats struct {
	Tier     string
	Entries  int
	Recalls  uint64
	Hits     uint64
	Writes   uint64
	Degraded bool
}

// MemoryStore is the two-method capability contract shared by the
// short-term cache, the durable long-term store and the tiered composite.
//
// Recall returns zero or more entries ordered by relevance descending,
// updating access metadata as a side effect (read-through promotion).
// Remember is at-least-once: duplicate entries for the same query are
// permitted and reconciled by ranking at recall time, not prevented at
// write time.
type MemoryStore interface {
	Recall(ctx context.Context, q Query, limit int) ([]MemoryEntry, error)
	Remember(ctx context.Context, entry MemoryEntry) error
	Stats() []MemoryStats
}
