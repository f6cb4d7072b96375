package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jaganthoutam/agentic-rag/core"
	"github.com/jaganthoutam/agentic-rag/logging"
)

// SearchOptions configures the web search agent.
type SearchOptions struct {
	// Endpoint is the search API base URL. The agent issues
	// GET {Endpoint}?q=<query>&limit=<n> expecting a JSON body.
	Endpoint string

	// APIKey is sent as a bearer token when set.
	APIKey string

	// MaxResults caps documents per search.
	MaxResults int

	// HTTPClient may be replaced for testing; defaults to a client with a
	// 15s timeout.
	HTTPClient *http.Client

	Logger logging.Logger
}

// searchResponse is the wire shape returned by the search API.
type searchResponse struct {
	Results []struct {
		Title     string  `json:"title"`
		Snippet   string  `json:"snippet"`
		URL       string  `json:"url"`
		Relevance float64 `json:"relevance"`
	} `json:"results"`
}

// Search serves the search capability against an external search API.
type Search struct {
	base
	opts SearchOptions
}

var _ core.Agent = (*Search)(nil)

// NewSearch creates a web search agent.
func NewSearch(endpoint string, optFns ...func(o *SearchOptions)) *Search {
	opts := SearchOptions{
		Endpoint:   endpoint,
		MaxResults: 10,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		Logger:     logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Search{
		base: newBase("web-search", core.CapabilitySearch, opts.Logger),
		opts: opts,
	}
}

// Execute queries the search API and converts hits into documents.
// Confidence blends average hit relevance with result count: many strong
// hits score high, a single weak hit stays low.
func (a *Search) Execute(ctx context.Context, task core.Task) (*core.AgentResult, error) {
	started := time.Now()

	reqURL := fmt.Sprintf("%s?q=%s&limit=%d",
		a.opts.Endpoint, url.QueryEscape(task.Query.Text), a.opts.MaxResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	if a.opts.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.opts.APIKey)
	}

	resp, err := a.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search api returned status %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	var docs []*core.Document
	var relevanceSum float64
	for _, hit := range body.Results {
		if len(docs) >= a.opts.MaxResults {
			break
		}
		content := hit.Title
		if hit.Snippet != "" {
			content = hit.Title + "\n" + hit.Snippet
		}
		doc := core.NewDocument(content, hit.URL)
		docs = append(docs, doc)
		relevanceSum += hit.Relevance
	}

	confidence := 0.0
	if len(docs) > 0 {
		avgRelevance := relevanceSum / float64(len(docs))
		countFactor := float64(len(docs)) / float64(a.opts.MaxResults)
		if countFactor > 1 {
			countFactor = 1
		}
		confidence = avgRelevance*0.7 + countFactor*0.3
	}

	a.logger.Debug("search agent finished",
		"query_id", task.Query.ID, "documents", len(docs), "confidence", confidence)

	return a.newResult(task, docs, confidence, started), nil
}
