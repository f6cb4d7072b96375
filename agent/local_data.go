package agent

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jaganthoutam/agentic-rag/core"
	"github.com/jaganthoutam/agentic-rag/logging"
)

// LocalDataOptions configures the local data agent.
type LocalDataOptions struct {
	// Extensions whitelists readable file types.
	Extensions []string

	// MaxDocuments caps documents per query.
	MaxDocuments int

	// MaxFileSize skips files larger than this many bytes.
	MaxFileSize int64

	Logger logging.Logger
}

// LocalData serves the local_data capability by scanning a directory tree
// of text files for keyword matches against the query.
type LocalData struct {
	base
	root string
	opts LocalDataOptions
}

var _ core.Agent = (*LocalData)(nil)

// NewLocalData creates a local data agent rooted at the given directory.
func NewLocalData(root string, optFns ...func(o *LocalDataOptions)) *LocalData {
	opts := LocalDataOptions{
		Extensions:   []string{".txt", ".md", ".csv", ".json"},
		MaxDocuments: 10,
		MaxFileSize:  1 << 20, // 1 MiB
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &LocalData{
		base: newBase("local-data", core.CapabilityLocalData, opts.Logger),
		root: root,
		opts: opts,
	}
}

// Execute walks the data directory and returns files whose content shares
// keywords with the query. Confidence is the mean per-file match ratio.
func (a *LocalData) Execute(ctx context.Context, task core.Task) (*core.AgentResult, error) {
	started := time.Now()

	keywords := queryKeywords(task.Query.Text)

	var docs []*core.Document
	var scoreSum float64

	err := filepath.WalkDir(a.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || len(docs) >= a.opts.MaxDocuments {
			return nil
		}
		if !a.readableExtension(path) {
			return nil
		}

		info, err := d.Info()
		if err != nil || info.Size() > a.opts.MaxFileSize {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			a.logger.Warn("failed to read local file", "path", path, "error", err)
			return nil
		}

		score := matchRatio(string(content), keywords)
		if score == 0 {
			return nil
		}

		doc := core.NewDocument(string(content), path)
		docs = append(docs, doc)
		scoreSum += score

		return nil
	})
	if err != nil {
		return nil, err
	}

	confidence := 0.0
	if len(docs) > 0 {
		confidence = scoreSum / float64(len(docs))
	}

	a.logger.Debug("local data agent finished",
		"query_id", task.Query.ID, "documents", len(docs), "confidence", confidence)

	return a.newResult(task, docs, confidence, started), nil
}

func (a *LocalData) readableExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range a.opts.Extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// queryKeywords extracts lowercase query terms longer than two runes,
// dropping stop-word noise.
func queryKeywords(text string) []string {
	var keywords []string
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		tok = strings.Trim(tok, ".,!?\"'")
		if len(tok) > 2 {
			keywords = append(keywords, tok)
		}
	}
	return keywords
}

// matchRatio is the fraction of query keywords present in the content.
func matchRatio(content string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}

	lower := strings.ToLower(content)
	matched := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			matched++
		}
	}

	return float64(matched) / float64(len(keywords))
}
