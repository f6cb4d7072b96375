package memory

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/jaganthoutam/agentic-rag/core"
	"github.com/jaganthoutam/agentic-rag/logging"
)

// entryRow is the persisted form of a core.MemoryEntry.
type entryRow struct {
	bun.BaseModel `bun:"table:memory_entries,alias:me"`

	ID          string    `bun:"id,pk"`
	QueryID     string    `bun:"query_id,notnull"`
	QueryText   string    `bun:"query_text,notnull"`
	Relevance   float64   `bun:"relevance,notnull"`
	AccessCount int       `bun:"access_count,notnull,default:0"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
	AccessedAt  time.Time `bun:"accessed_at,notnull"`
}

// documentRow persists documents independently of the entries referencing
// them; the same document may back many entries.
type documentRow struct {
	bun.BaseModel `bun:"table:documents,alias:d"`

	ID        string            `bun:"id,pk"`
	Content   string            `bun:"content,notnull"`
	Source    string            `bun:"source"`
	CreatedAt time.Time         `bun:"created_at,notnull"`
	Metadata  map[string]string `bun:"metadata,type:jsonb"`
}

// entryDocumentRow is the many-to-many entry/document mapping; position
// preserves document order within the entry.
type entryDocumentRow struct {
	bun.BaseModel `bun:"table:entry_documents,alias:ed"`

	EntryID    string `bun:"entry_id,pk"`
	DocumentID string `bun:"document_id,pk"`
	Position   int    `bun:"position,notnull"`
}

// embeddingRow stores the optional similarity vector for an entry.
type embeddingRow struct {
	bun.BaseModel `bun:"table:embeddings,alias:emb"`

	EntryID string    `bun:"entry_id,pk"`
	Vector  []float32 `bun:"vector,array"`
}

// LongTermOptions configures the durable tier.
type LongTermOptions struct {
	// Weights control the recall ranking formula.
	Weights RankWeights

	// RecencyHalfLife is the age at which an entry's recency term halves.
	RecencyHalfLife time.Duration

	// CandidateLimit caps how many rows are fetched for in-process
	// scoring per recall.
	CandidateLimit int

	// Embedder turns query text into a vector for cosine ranking against
	// stored embeddings. Nil disables vector similarity; keyword overlap
	// is always computed as the floor.
	Embedder func(ctx context.Context, text string) ([]float32, error)

	// Logger receives recall/persistence events.
	Logger logging.Logger
}

// LongTerm is the durable Postgres-backed memory tier. Ranking happens
// in-process over a bounded candidate set so the store works without any
// vector extension installed.
//
// Every operational failure is wrapped in core.ErrMemoryUnavailable; the
// tiered composite turns that into degraded short-term-only service.
type LongTerm struct {
	db   *bun.DB
	opts LongTermOptions

	mu       sync.Mutex
	recalls  uint64
	hits     uint64
	writes   uint64
	degraded bool
}

var _ core.MemoryStore = (*LongTerm)(nil)

// NewLongTerm connects to Postgres with the given DSN.
func NewLongTerm(dsn string, optFns ...func(o *LongTermOptions)) *LongTerm {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return NewLongTermWithDB(bun.NewDB(sqldb, pgdialect.New()), optFns...)
}

// NewLongTermWithDB wraps an existing bun.DB, letting callers share a
// connection pool or inject a test database.
func NewLongTermWithDB(db *bun.DB, optFns ...func(o *LongTermOptions)) *LongTerm {
	opts := LongTermOptions{
		Weights:         DefaultRankWeights,
		RecencyHalfLife: 7 * 24 * time.Hour,
		CandidateLimit:  200,
		Logger:          logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &LongTerm{db: db, opts: opts}
}

// Migrate creates the backing tables when they do not exist yet.
func (lt *LongTerm) Migrate(ctx context.Context) error {
	models := []any{
		(*entryRow)(nil),
		(*documentRow)(nil),
		(*entryDocumentRow)(nil),
		(*embeddingRow)(nil),
	}

	for _, model := range models {
		if _, err := lt.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("%w: create table: %v", core.ErrMemoryUnavailable, err)
		}
	}

	return nil
}

// Recall fetches a bounded candidate set ordered by recent access, scores
// each candidate by weighted similarity, recency decay and access history,
// and returns the top entries with their documents attached. Access
// metadata on returned entries is bumped in the store.
func (lt *LongTerm) Recall(ctx context.Context, q core.Query, limit int) ([]core.MemoryEntry, error) {
	lt.countRecall()

	var rows []entryRow
	err := lt.db.NewSelect().
		Model(&rows).
		Order("accessed_at DESC").
		Limit(lt.opts.CandidateLimit).
		Scan(ctx)
	if err != nil {
		lt.setDegraded(true)
		return nil, fmt.Errorf("%w: recall: %v", core.ErrMemoryUnavailable, err)
	}
	lt.setDegraded(false)

	if len(rows) == 0 {
		return nil, nil
	}

	vectors, err := lt.loadVectors(ctx, rows)
	if err != nil {
		return nil, err
	}

	var queryVector []float32
	if lt.opts.Embedder != nil {
		queryVector, err = lt.opts.Embedder(ctx, q.Text)
		if err != nil {
			lt.opts.Logger.Warn("query embedding failed, ranking by keywords only",
				"query_id", q.ID, "error", err)
		}
	}

	now := time.Now()

	type scored struct {
		row   entryRow
		score float64
	}

	var candidates []scored
	for _, row := range rows {
		similarity := keywordOverlap(q.Text, row.QueryText)
		if cos := cosineSimilarity(queryVector, vectors[row.ID]); cos > similarity {
			similarity = cos
		}
		if similarity == 0 {
			continue
		}

		score := lt.opts.Weights.score(similarity,
			recencyDecay(now.Sub(row.CreatedAt), lt.opts.RecencyHalfLife),
			row.AccessCount)

		candidates = append(candidates, scored{row: row, score: score})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].row.ID < candidates[j].row.ID
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	entries := make([]core.MemoryEntry, 0, len(candidates))
	for _, c := range candidates {
		docs, err := lt.loadDocuments(ctx, c.row.ID)
		if err != nil {
			return nil, err
		}

		entries = append(entries, core.MemoryEntry{
			ID:          c.row.ID,
			QueryID:     c.row.QueryID,
			QueryText:   c.row.QueryText,
			Documents:   docs,
			Relevance:   c.score,
			AccessCount: c.row.AccessCount,
			CreatedAt:   c.row.CreatedAt,
			AccessedAt:  c.row.AccessedAt,
			Embedding:   vectors[c.row.ID],
		})

		if err := lt.touch(ctx, c.row.ID, now); err != nil {
			lt.opts.Logger.Warn("failed to update access metadata", "entry_id", c.row.ID, "error", err)
		}
	}

	if len(entries) > 0 {
		lt.countHit()
	}

	return entries, nil
}

// Remember persists the entry, its documents, the entry/document mapping
// and the optional embedding in one transaction. Writes are at-least-once:
// duplicate entries for a query are allowed and reconciled by ranking at
// recall time.
func (lt *LongTerm) Remember(ctx context.Context, entry core.MemoryEntry) error {
	lt.countWrite()

	err := lt.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		row := entryRow{
			ID:          entry.ID,
			QueryID:     entry.QueryID,
			QueryText:   entry.QueryText,
			Relevance:   entry.Relevance,
			AccessCount: entry.AccessCount,
			CreatedAt:   entry.CreatedAt,
			AccessedAt:  entry.AccessedAt,
		}
		if _, err := tx.NewInsert().Model(&row).On("CONFLICT (id) DO NOTHING").Exec(ctx); err != nil {
			return err
		}

		for i, doc := range entry.Documents {
			docRow := documentRow{
				ID:        doc.ID,
				Content:   doc.Content,
				Source:    doc.Source,
				CreatedAt: doc.CreatedAt,
				Metadata:  doc.Metadata,
			}
			if _, err := tx.NewInsert().Model(&docRow).On("CONFLICT (id) DO NOTHING").Exec(ctx); err != nil {
				return err
			}

			mapping := entryDocumentRow{EntryID: entry.ID, DocumentID: doc.ID, Position: i}
			if _, err := tx.NewInsert().Model(&mapping).On("CONFLICT DO NOTHING").Exec(ctx); err != nil {
				return err
			}
		}

		if len(entry.Embedding) > 0 {
			emb := embeddingRow{EntryID: entry.ID, Vector: entry.Embedding}
			if _, err := tx.NewInsert().Model(&emb).On("CONFLICT (entry_id) DO NOTHING").Exec(ctx); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		lt.setDegraded(true)
		return fmt.Errorf("%w: remember: %v", core.ErrMemoryUnavailable, err)
	}
	lt.setDegraded(false)

	return nil
}

// Cleanup removes entries older than the given age along with their
// mappings and embeddings. Documents are kept; they may be shared.
func (lt *LongTerm) Cleanup(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)

	var stale []entryRow
	err := lt.db.NewSelect().
		Model(&stale).
		Column("id").
		Where("accessed_at < ?", cutoff).
		Scan(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: cleanup: %v", core.ErrMemoryUnavailable, err)
	}
	if len(stale) == 0 {
		return 0, nil
	}

	ids := make([]string, len(stale))
	for i, row := range stale {
		ids[i] = row.ID
	}

	err = lt.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*entryDocumentRow)(nil)).
			Where("entry_id IN (?)", bun.In(ids)).Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*embeddingRow)(nil)).
			Where("entry_id IN (?)", bun.In(ids)).Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*entryRow)(nil)).
			Where("id IN (?)", bun.In(ids)).Exec(ctx); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: cleanup: %v", core.ErrMemoryUnavailable, err)
	}

	return len(ids), nil
}

// Stats reports the durable tier's usage counters and degraded flag.
func (lt *LongTerm) Stats() []core.MemoryStats {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	return []core.MemoryStats{{
		Tier:     "long_term",
		Recalls:  lt.recalls,
		Hits:     lt.hits,
		Writes:   lt.writes,
		Degraded: lt.degraded,
	}}
}

// Close releases the underlying database handle.
func (lt *LongTerm) Close() error { return lt.db.Close() }

func (lt *LongTerm) loadVectors(ctx context.Context, rows []entryRow) (map[string][]float32, error) {
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}

	var embs []embeddingRow
	err := lt.db.NewSelect().
		Model(&embs).
		Where("entry_id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load embeddings: %v", core.ErrMemoryUnavailable, err)
	}

	vectors := make(map[string][]float32, len(embs))
	for _, emb := range embs {
		vectors[emb.EntryID] = emb.Vector
	}

	return vectors, nil
}

func (lt *LongTerm) loadDocuments(ctx context.Context, entryID string) ([]*core.Document, error) {
	var mappings []entryDocumentRow
	err := lt.db.NewSelect().
		Model(&mappings).
		Where("entry_id = ?", entryID).
		Order("position ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load documents: %v", core.ErrMemoryUnavailable, err)
	}
	if len(mappings) == 0 {
		return nil, nil
	}

	ids := make([]string, len(mappings))
	for i, m := range mappings {
		ids[i] = m.DocumentID
	}

	var docRows []documentRow
	err = lt.db.NewSelect().
		Model(&docRows).
		Where("id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load documents: %v", core.ErrMemoryUnavailable, err)
	}

	byID := make(map[string]*core.Document, len(docRows))
	for i := range docRows {
		row := docRows[i]
		byID[row.ID] = &core.Document{
			ID:        row.ID,
			Content:   row.Content,
			Source:    row.Source,
			CreatedAt: row.CreatedAt,
			Metadata:  row.Metadata,
		}
	}

	docs := make([]*core.Document, 0, len(mappings))
	for _, m := range mappings {
		if d, ok := byID[m.DocumentID]; ok {
			docs = append(docs, d)
		}
	}

	return docs, nil
}

func (lt *LongTerm) touch(ctx context.Context, entryID string, now time.Time) error {
	_, err := lt.db.NewUpdate().
		Model((*entryRow)(nil)).
		Set("access_count = access_count + 1").
		Set("accessed_at = ?", now).
		Where("id = ?", entryID).
		Exec(ctx)
	return err
}

func (lt *LongTerm) countRecall() {
	lt.mu.Lock()
	lt.recalls++
	lt.mu.Unlock()
}

func (lt *LongTerm) countHit() {
	lt.mu.Lock()
	lt.hits++
	lt.mu.Unlock()
}

func (lt *LongTerm) countWrite() {
	lt.mu.Lock()
	lt.writes++
	lt.mu.Unlock()
}

func (lt *LongTerm) setDegraded(v bool) {
	lt.mu.Lock()
	lt.degraded = v
	lt.mu.Unlock()
}
