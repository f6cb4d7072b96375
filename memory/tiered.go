package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jaganthoutam/agentic-rag/core"
	"github.com/jaganthoutam/agentic-rag/logging"
)

// TieredOptions configures the two-tier composite.
type TieredOptions struct {
	// PersistFloor is the minimum entry relevance required to also write
	// to the long-term tier. 0 persists everything.
	PersistFloor float64

	// PersistTimeout bounds each background long-term write.
	PersistTimeout time.Duration

	// Logger receives degrade warnings.
	Logger logging.Logger
}

// Tiered composes a short-term and an optional long-term store behind the
// core.MemoryStore contract.
//
// Recall consults short-term first and only reaches for long-term when the
// cache cannot fill the limit; long-term hits are promoted into the cache.
// Remember always writes short-term synchronously; the long-term write is
// fire-and-forget so the user-visible response never blocks on durability.
// Long-term unavailability degrades to short-term-only service with a
// warning, never an error.
type Tiered struct {
	short core.MemoryStore
	long  core.MemoryStore
	opts  TieredOptions

	// persistAsync is disabled in tests to make long-term writes
	// deterministic.
	persistAsync bool
}

var _ core.MemoryStore = (*Tiered)(nil)

// NewTiered composes the tiers. long may be nil for cache-only deployments.
func NewTiered(short, long core.MemoryStore, optFns ...func(o *TieredOptions)) *Tiered {
	opts := TieredOptions{
		PersistTimeout: 10 * time.Second,
		Logger:         logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Tiered{short: short, long: long, opts: opts, persistAsync: true}
}

// Recall returns the best entries across both tiers ordered by relevance
// descending. A long-term failure is logged and swallowed; the short-term
// results still stand.
func (t *Tiered) Recall(ctx context.Context, q core.Query, limit int) ([]core.MemoryEntry, error) {
	entries, err := t.short.Recall(ctx, q, limit)
	if err != nil {
		return nil, err
	}

	if t.long == nil || (limit > 0 && len(entries) >= limit) {
		return entries, nil
	}

	longEntries, err := t.long.Recall(ctx, q, limit)
	if err != nil {
		// Any long-term failure degrades to short-term-only service; only
		// the short tier can fail a recall outright.
		t.opts.Logger.Warn("long-term recall failed, degraded to short-term",
			"query_id", q.ID, "error", err)
		return entries, nil
	}

	for _, e := range longEntries {
		if containsEntry(entries, e.ID) {
			continue
		}
		entries = append(entries, e)

		// Promote the durable hit into the cache for the next recall.
		if err := t.short.Remember(ctx, e); err != nil {
			t.opts.Logger.Warn("failed to promote long-term entry", "entry_id", e.ID, "error", err)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Relevance > entries[j].Relevance
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	return entries, nil
}

// Remember writes the entry to short-term and, when its relevance clears
// the persistence floor, to long-term without blocking the caller.
func (t *Tiered) Remember(ctx context.Context, entry core.MemoryEntry) error {
	if err := t.short.Remember(ctx, entry); err != nil {
		return err
	}

	if t.long == nil || entry.Relevance < t.opts.PersistFloor {
		return nil
	}

	if t.persistAsync {
		go t.persist(entry)
	} else {
		t.persistWithContext(ctx, entry)
	}

	return nil
}

// Stats concatenates the per-tier stats.
func (t *Tiered) Stats() []core.MemoryStats {
	stats := t.short.Stats()
	if t.long != nil {
		stats = append(stats, t.long.Stats()...)
	}
	return stats
}

func (t *Tiered) persist(entry core.MemoryEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), t.opts.PersistTimeout)
	defer cancel()
	t.persistWithContext(ctx, entry)
}

func (t *Tiered) persistWithContext(ctx context.Context, entry core.MemoryEntry) {
	if err := t.long.Remember(ctx, entry); err != nil {
		t.opts.Logger.Warn("long-term memory unavailable, entry kept short-term only",
			"entry_id", entry.ID, "error", err)
	}
}

func containsEntry(entries []core.MemoryEntry, id string) bool {
	for _, e := range entries {
		if e.ID == id {
			return true
		}
	}
	return false
}
