package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jaganthoutam/agentic-rag/core"
	"github.com/jaganthoutam/agentic-rag/logging"
)

// ShortTermOptions configures the short-term tier.
type ShortTermOptions struct {
	// Capacity is the maximum number of entries held. Inserting beyond it
	// evicts the least-recently-accessed entry first, ties broken by
	// oldest creation time.
	Capacity int

	// TTL is applied to entries remembered without their own TTL.
	// 0 means entries never expire.
	TTL time.Duration

	// Logger receives eviction and expiry events at debug level.
	Logger logging.Logger
}

// ShortTerm is the bounded in-process memory tier. Safe for concurrent use.
type ShortTerm struct {
	opts    ShortTermOptions
	entries map[string]*core.MemoryEntry
	mu      sync.Mutex

	recalls uint64
	hits    uint64
	writes  uint64

	// now is swapped in tests to exercise TTL expiry.
	now func() time.Time
}

var _ core.MemoryStore = (*ShortTerm)(nil)

// NewShortTerm creates a short-term memory tier.
func NewShortTerm(optFns ...func(o *ShortTermOptions)) *ShortTerm {
	opts := ShortTermOptions{
		Capacity: 1000,
		TTL:      time.Hour,
		Logger:   logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &ShortTerm{
		opts:    opts,
		entries: make(map[string]*core.MemoryEntry),
		now:     time.Now,
	}
}

// Recall scores stored entries against the query and returns the best
// matches ordered by score descending. Returned entries carry the match
// score in Relevance; access metadata on the stored entries is updated as a
// side effect (read-through promotion).
func (st *ShortTerm) Recall(_ context.Context, q core.Query, limit int) ([]core.MemoryEntry, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	st.sweepExpiredLocked(now)
	st.recalls++

	type scored struct {
		entry *core.MemoryEntry
		score float64
	}

	var candidates []scored
	for _, e := range st.entries {
		overlap := keywordOverlap(q.Text, e.QueryText)
		if overlap == 0 {
			continue
		}

		recency := 1.0
		if e.TTL > 0 {
			recency = 1.0 - float64(now.Sub(e.CreatedAt))/float64(e.TTL)
			if recency < 0 {
				recency = 0
			}
		}

		access := float64(e.AccessCount) / 10.0
		if access > 1 {
			access = 1
		}

		candidates = append(candidates, scored{
			entry: e,
			score: overlap*0.6 + recency*0.3 + access*0.1,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].entry.ID < candidates[j].entry.ID
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	out := make([]core.MemoryEntry, 0, len(candidates))
	for _, c := range candidates {
		c.entry.AccessCount++
		c.entry.AccessedAt = now

		recalled := *c.entry
		recalled.Relevance = c.score
		out = append(out, recalled)
	}

	if len(out) > 0 {
		st.hits++
	}

	return out, nil
}

// Remember inserts the entry, stamping it with the configured TTL when it
// has none, and evicts least-recently-accessed entries while over capacity.
func (st *ShortTerm) Remember(_ context.Context, entry core.MemoryEntry) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	st.sweepExpiredLocked(now)
	st.writes++

	if entry.TTL == 0 {
		entry.TTL = st.opts.TTL
	}
	entry.AccessedAt = now

	st.entries[entry.ID] = &entry

	for st.opts.Capacity > 0 && len(st.entries) > st.opts.Capacity {
		st.evictLocked()
	}

	return nil
}

// Stats reports this tier's usage counters. The short-term tier is never
// degraded.
func (st *ShortTerm) Stats() []core.MemoryStats {
	st.mu.Lock()
	defer st.mu.Unlock()

	return []core.MemoryStats{{
		Tier:    "short_term",
		Entries: len(st.entries),
		Recalls: st.recalls,
		Hits:    st.hits,
		Writes:  st.writes,
	}}
}

// Len returns the current number of live entries.
func (st *ShortTerm) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.entries)
}

func (st *ShortTerm) sweepExpiredLocked(now time.Time) {
	for id, e := range st.entries {
		if e.Expired(now) {
			delete(st.entries, id)
			st.opts.Logger.Debug("short-term entry expired", "entry_id", id)
		}
	}
}

// evictLocked removes the least-recently-accessed entry, ties broken by
// oldest creation time, then by id for determinism.
func (st *ShortTerm) evictLocked() {
	var victim *core.MemoryEntry
	for _, e := range st.entries {
		if victim == nil || olderThan(e, victim) {
			victim = e
		}
	}
	if victim == nil {
		return
	}

	delete(st.entries, victim.ID)
	st.opts.Logger.Debug("short-term entry evicted", "entry_id", victim.ID)
}

func olderThan(a, b *core.MemoryEntry) bool {
	if !a.AccessedAt.Equal(b.AccessedAt) {
		return a.AccessedAt.Before(b.AccessedAt)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
