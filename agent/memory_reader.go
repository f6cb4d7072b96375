package agent

import (
	"context"
	"time"

	"github.com/jaganthoutam/agentic-rag/core"
	"github.com/jaganthoutam/agentic-rag/logging"
)

// MemoryReaderOptions configures the memory reader agent.
type MemoryReaderOptions struct {
	// Limit is how many entries to recall per step.
	Limit int

	Logger logging.Logger
}

// MemoryReader serves the memory_read capability by recalling prior
// results from the memory store. The cheapest agent in the fleet; planners
// dispatch it before any external source.
type MemoryReader struct {
	base
	store core.MemoryStore
	opts  MemoryReaderOptions
}

var _ core.Agent = (*MemoryReader)(nil)

// NewMemoryReader creates a memory reader over the given store.
func NewMemoryReader(store core.MemoryStore, optFns ...func(o *MemoryReaderOptions)) *MemoryReader {
	opts := MemoryReaderOptions{
		Limit:  5,
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &MemoryReader{
		base:  newBase("memory-reader", core.CapabilityMemoryRead, opts.Logger),
		store: store,
		opts:  opts,
	}
}

// Execute recalls entries matching the query. Confidence is the best
// entry's match relevance; a cold memory yields an empty zero-confidence
// result, not an error.
func (a *MemoryReader) Execute(ctx context.Context, task core.Task) (*core.AgentResult, error) {
	started := time.Now()

	entries, err := a.store.Recall(ctx, task.Query, a.opts.Limit)
	if err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		return a.newResult(task, nil, 0, started), nil
	}

	seen := make(map[string]struct{})
	var docs []*core.Document
	for _, e := range entries {
		for _, d := range e.Documents {
			if _, ok := seen[d.ID]; ok {
				continue
			}
			seen[d.ID] = struct{}{}
			docs = append(docs, d)
		}
	}

	confidence := entries[0].Relevance
	if confidence > 1 {
		confidence = 1
	}

	a.logger.Debug("memory reader recalled entries",
		"query_id", task.Query.ID, "entries", len(entries), "confidence", confidence)

	return a.newResult(task, docs, confidence, started), nil
}
