package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaganthoutam/agentic-rag/core"
)

// fakeLongTerm stands in for the durable tier; flipping unavailable makes
// every call fail the way a dead Postgres would.
type fakeLongTerm struct {
	mu          sync.Mutex
	unavailable bool
	entries     []core.MemoryEntry
	writes      int
}

func (f *fakeLongTerm) Recall(_ context.Context, q core.Query, limit int) ([]core.MemoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.unavailable {
		return nil, fmt.Errorf("%w: recall: connection refused", core.ErrMemoryUnavailable)
	}

	var out []core.MemoryEntry
	for _, e := range f.entries {
		if keywordOverlap(q.Text, e.QueryText) > 0 {
			out = append(out, e)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeLongTerm) Remember(_ context.Context, entry core.MemoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.unavailable {
		return fmt.Errorf("%w: remember: connection refused", core.ErrMemoryUnavailable)
	}

	f.entries = append(f.entries, entry)
	f.writes++
	return nil
}

func (f *fakeLongTerm) Stats() []core.MemoryStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return []core.MemoryStats{{
		Tier:     "long_term",
		Entries:  len(f.entries),
		Writes:   uint64(f.writes),
		Degraded: f.unavailable,
	}}
}

func newTestTiered(long core.MemoryStore, optFns ...func(o *TieredOptions)) *Tiered {
	t := NewTiered(NewShortTerm(), long, optFns...)
	t.persistAsync = false
	return t
}

func TestTieredRemembersBothTiers(t *testing.T) {
	long := &fakeLongTerm{}
	tiered := newTestTiered(long)
	ctx := context.Background()

	require.NoError(t, tiered.Remember(ctx, entryFor("capital of France", 0.9, "Paris")))

	assert.Equal(t, 1, long.writes)

	got, err := tiered.Recall(ctx, core.NewQuery("capital of France"), 5)
	require.NoError(t, err)
	assert.NotEmpty(t, got)
}

func TestTieredPersistFloorGatesLongTermWrite(t *testing.T) {
	long := &fakeLongTerm{}
	tiered := newTestTiered(long, func(o *TieredOptions) { o.PersistFloor = 0.5 })
	ctx := context.Background()

	require.NoError(t, tiered.Remember(ctx, entryFor("low confidence fact", 0.2)))
	assert.Equal(t, 0, long.writes, "below-floor entry stays short-term only")

	require.NoError(t, tiered.Remember(ctx, entryFor("high confidence fact", 0.9)))
	assert.Equal(t, 1, long.writes)
}

func TestTieredDegradesWhenLongTermUnavailable(t *testing.T) {
	long := &fakeLongTerm{unavailable: true}
	tiered := newTestTiered(long)
	ctx := context.Background()

	// Remember must still succeed via the short-term tier.
	require.NoError(t, tiered.Remember(ctx, entryFor("resilient fact", 0.9)))

	// Recall must still serve short-term results.
	got, err := tiered.Recall(ctx, core.NewQuery("resilient fact"), 5)
	require.NoError(t, err)
	assert.NotEmpty(t, got)

	// Stats must surface the degraded long-term tier.
	var sawDegraded bool
	for _, s := range tiered.Stats() {
		if s.Tier == "long_term" && s.Degraded {
			sawDegraded = true
		}
	}
	assert.True(t, sawDegraded)
}

// erringLongTerm fails recall with an arbitrary error rather than the
// unavailability sentinel.
type erringLongTerm struct {
	fakeLongTerm
}

func (e *erringLongTerm) Recall(context.Context, core.Query, int) ([]core.MemoryEntry, error) {
	return nil, fmt.Errorf("scan row: unexpected column type")
}

func TestTieredDegradesOnAnyLongTermRecallError(t *testing.T) {
	tiered := newTestTiered(&erringLongTerm{})
	ctx := context.Background()

	require.NoError(t, tiered.short.Remember(ctx, entryFor("cached fact", 0.9)))

	// Short-term results survive a long-term failure of any shape.
	got, err := tiered.Recall(ctx, core.NewQuery("cached fact"), 5)
	require.NoError(t, err)
	assert.NotEmpty(t, got)
}

func TestTieredPromotesLongTermHits(t *testing.T) {
	long := &fakeLongTerm{}
	tiered := newTestTiered(long)
	ctx := context.Background()

	// Seed long-term directly, bypassing the cache.
	durable := entryFor("archived knowledge item", 0.8, "archived doc")
	require.NoError(t, long.Remember(ctx, durable))

	got, err := tiered.Recall(ctx, core.NewQuery("archived knowledge item"), 5)
	require.NoError(t, err)
	require.NotEmpty(t, got)

	// The hit is now cached: flip long-term off and recall again.
	long.mu.Lock()
	long.unavailable = true
	long.mu.Unlock()

	got, err = tiered.Recall(ctx, core.NewQuery("archived knowledge item"), 5)
	require.NoError(t, err)
	assert.NotEmpty(t, got)
}

func TestTieredShortTermFillStopsAtLimit(t *testing.T) {
	long := &fakeLongTerm{unavailable: true}
	tiered := newTestTiered(long)
	ctx := context.Background()

	require.NoError(t, tiered.Remember(ctx, entryFor("cached fact alpha", 0.9)))

	// Limit satisfied by the cache: the dead long-term tier is never hit,
	// so no degrade warning path is involved.
	got, err := tiered.Recall(ctx, core.NewQuery("cached fact alpha"), 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestTieredWithoutLongTerm(t *testing.T) {
	tiered := newTestTiered(nil)
	ctx := context.Background()

	require.NoError(t, tiered.Remember(ctx, entryFor("cache only fact", 0.9)))

	got, err := tiered.Recall(ctx, core.NewQuery("cache only fact"), 5)
	require.NoError(t, err)
	assert.NotEmpty(t, got)

	stats := tiered.Stats()
	require.Len(t, stats, 1)
	assert.Equal(t, "short_term", stats[0].Tier)
}
