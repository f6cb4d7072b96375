package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaganthoutam/agentic-rag/core"
)

func entryFor(text string, relevance float64, docs ...string) core.MemoryEntry {
	q := core.NewQuery(text)
	var documents []*core.Document
	for _, d := range docs {
		documents = append(documents, core.NewDocument(d, "test"))
	}
	return core.NewMemoryEntry(q, documents, relevance)
}

func TestShortTermRecallByKeywordOverlap(t *testing.T) {
	st := NewShortTerm()
	ctx := context.Background()

	require.NoError(t, st.Remember(ctx, entryFor("capital of France", 0.9, "Paris")))
	require.NoError(t, st.Remember(ctx, entryFor("population of Japan", 0.9, "125M")))

	got, err := st.Recall(ctx, core.NewQuery("what is the capital of France"), 5)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "capital of France", got[0].QueryText)

	got, err = st.Recall(ctx, core.NewQuery("weather in Berlin"), 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestShortTermCapacityNeverExceeded(t *testing.T) {
	st := NewShortTerm(func(o *ShortTermOptions) { o.Capacity = 3 })
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, st.Remember(ctx, entryFor("query number", 0.5)))
		assert.LessOrEqual(t, st.Len(), 3)
	}
}

func TestShortTermEvictsLeastRecentlyAccessed(t *testing.T) {
	st := NewShortTerm(func(o *ShortTermOptions) { o.Capacity = 2 })

	base := time.Now()
	st.now = func() time.Time { return base }

	ctx := context.Background()

	old := entryFor("alpha aardvark", 0.5)
	mid := entryFor("beta butterfly", 0.5)
	require.NoError(t, st.Remember(ctx, old))

	st.now = func() time.Time { return base.Add(time.Second) }
	require.NoError(t, st.Remember(ctx, mid))

	// Touch the oldest entry so "mid" becomes the LRU victim.
	st.now = func() time.Time { return base.Add(2 * time.Second) }
	_, err := st.Recall(ctx, core.NewQuery("alpha aardvark"), 1)
	require.NoError(t, err)

	st.now = func() time.Time { return base.Add(3 * time.Second) }
	require.NoError(t, st.Remember(ctx, entryFor("gamma giraffe", 0.5)))

	got, err := st.Recall(ctx, core.NewQuery("beta butterfly"), 5)
	require.NoError(t, err)
	assert.Empty(t, got, "LRU victim should be gone")

	got, err = st.Recall(ctx, core.NewQuery("alpha aardvark"), 5)
	require.NoError(t, err)
	assert.NotEmpty(t, got, "recently accessed entry should survive")
}

func TestShortTermEvictionTieBrokenByCreatedAt(t *testing.T) {
	st := NewShortTerm(func(o *ShortTermOptions) { o.Capacity = 2 })

	base := time.Now()

	first := entryFor("alpha aardvark", 0.5)
	first.CreatedAt = base.Add(-time.Hour)
	second := entryFor("beta butterfly", 0.5)
	second.CreatedAt = base

	// Same AccessedAt for both inserts.
	st.now = func() time.Time { return base }
	ctx := context.Background()
	require.NoError(t, st.Remember(ctx, first))
	require.NoError(t, st.Remember(ctx, second))

	st.now = func() time.Time { return base.Add(time.Second) }
	require.NoError(t, st.Remember(ctx, entryFor("gamma giraffe", 0.5)))

	got, err := st.Recall(ctx, core.NewQuery("alpha aardvark"), 5)
	require.NoError(t, err)
	assert.Empty(t, got, "older created_at loses the tie")
}

func TestShortTermTTLExpiry(t *testing.T) {
	st := NewShortTerm(func(o *ShortTermOptions) { o.TTL = time.Minute })

	base := time.Now()
	st.now = func() time.Time { return base }

	ctx := context.Background()
	e := entryFor("ephemeral fact", 0.5)
	e.CreatedAt = base
	require.NoError(t, st.Remember(ctx, e))

	got, err := st.Recall(ctx, core.NewQuery("ephemeral fact"), 5)
	require.NoError(t, err)
	require.NotEmpty(t, got)

	// At or past TTL the entry must never come back.
	st.now = func() time.Time { return base.Add(2 * time.Minute) }
	got, err = st.Recall(ctx, core.NewQuery("ephemeral fact"), 5)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, st.Len())
}

func TestShortTermTTLZeroNeverExpires(t *testing.T) {
	st := NewShortTerm(func(o *ShortTermOptions) { o.TTL = 0 })

	base := time.Now()
	st.now = func() time.Time { return base }

	ctx := context.Background()
	require.NoError(t, st.Remember(ctx, entryFor("durable fact", 0.5)))

	st.now = func() time.Time { return base.Add(1000 * time.Hour) }
	got, err := st.Recall(ctx, core.NewQuery("durable fact"), 5)
	require.NoError(t, err)
	assert.NotEmpty(t, got)
}

func TestShortTermReadThroughPromotion(t *testing.T) {
	st := NewShortTerm()
	ctx := context.Background()

	require.NoError(t, st.Remember(ctx, entryFor("promotion test query", 0.5)))

	first, err := st.Recall(ctx, core.NewQuery("promotion test query"), 1)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, first[0].AccessCount)

	second, err := st.Recall(ctx, core.NewQuery("promotion test query"), 1)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, 2, second[0].AccessCount)
}

func TestShortTermStats(t *testing.T) {
	st := NewShortTerm()
	ctx := context.Background()

	require.NoError(t, st.Remember(ctx, entryFor("stats query", 0.5)))
	_, _ = st.Recall(ctx, core.NewQuery("stats query"), 1)
	_, _ = st.Recall(ctx, core.NewQuery("no match at all zzz"), 1)

	stats := st.Stats()
	require.Len(t, stats, 1)
	assert.Equal(t, "short_term", stats[0].Tier)
	assert.Equal(t, 1, stats[0].Entries)
	assert.Equal(t, uint64(2), stats[0].Recalls)
	assert.Equal(t, uint64(1), stats[0].Hits)
	assert.Equal(t, uint64(1), stats[0].Writes)
	assert.False(t, stats[0].Degraded)
}

func TestRankHelpers(t *testing.T) {
	assert.InDelta(t, 1.0, keywordOverlap("capital of france", "capital of france"), 1e-9)
	assert.Zero(t, keywordOverlap("alpha beta", "gamma delta"))
	assert.Zero(t, keywordOverlap("", "anything"))

	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{1, 0}), 1e-9)
	assert.Zero(t, cosineSimilarity([]float32{1, 0}, []float32{0, 1}))
	assert.Zero(t, cosineSimilarity(nil, []float32{1}))

	assert.InDelta(t, 1.0, recencyDecay(0, time.Hour), 1e-9)
	assert.InDelta(t, 0.5, recencyDecay(time.Hour, time.Hour), 1e-9)
	assert.InDelta(t, 1.0, recencyDecay(time.Hour, 0), 1e-9)
}
