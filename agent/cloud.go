package agent

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/jaganthoutam/agentic-rag/core"
	"github.com/jaganthoutam/agentic-rag/logging"
)

// CloudOptions configures the cloud storage agent.
type CloudOptions struct {
	// Prefix narrows object listing within the bucket.
	Prefix string

	// MaxObjects caps how many objects are fetched per query.
	MaxObjects int

	// MaxObjectSize skips objects larger than this many bytes.
	MaxObjectSize int64

	Logger logging.Logger
}

// Cloud serves the cloud capability by scanning objects in a Cloud Storage
// bucket for keyword matches against the query.
type Cloud struct {
	base
	client *storage.Client
	bucket string
	opts   CloudOptions
}

var _ core.Agent = (*Cloud)(nil)

// NewCloud creates a cloud agent over the given bucket using ambient
// credentials.
func NewCloud(ctx context.Context, bucket string, optFns ...func(o *CloudOptions)) (*Cloud, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return NewCloudFromClient(client, bucket, optFns...), nil
}

// NewCloudFromClient creates a cloud agent from an existing client, letting
// callers inject emulator-backed clients in tests.
func NewCloudFromClient(client *storage.Client, bucket string, optFns ...func(o *CloudOptions)) *Cloud {
	opts := CloudOptions{
		MaxObjects:    10,
		MaxObjectSize: 1 << 20, // 1 MiB
		Logger:        logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Cloud{
		base:   newBase("cloud-storage", core.CapabilityCloud, opts.Logger),
		client: client,
		bucket: bucket,
		opts:   opts,
	}
}

// Execute lists bucket objects under the configured prefix and returns
// those whose name or content matches the query keywords. Confidence grows
// with match count and saturates at 0.8: bucket contents are rarely
// authoritative on their own.
func (a *Cloud) Execute(ctx context.Context, task core.Task) (*core.AgentResult, error) {
	started := time.Now()

	keywords := queryKeywords(task.Query.Text)
	bucket := a.client.Bucket(a.bucket)

	it := bucket.Objects(ctx, &storage.Query{Prefix: a.opts.Prefix})

	var docs []*core.Document
	for len(docs) < a.opts.MaxObjects {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list objects in %s: %w", a.bucket, err)
		}

		if attrs.Size > a.opts.MaxObjectSize {
			continue
		}
		if !nameMatches(attrs.Name, keywords) {
			continue
		}

		content, err := a.readObject(ctx, bucket, attrs.Name)
		if err != nil {
			a.logger.Warn("failed to read object", "bucket", a.bucket, "object", attrs.Name, "error", err)
			continue
		}

		doc := core.NewDocument(content, "gs://"+a.bucket+"/"+attrs.Name)
		docs = append(docs, doc)
	}

	confidence := 0.0
	if len(docs) > 0 {
		confidence = 0.5 + 0.1*float64(len(docs))
		if confidence > 0.8 {
			confidence = 0.8
		}
	}

	a.logger.Debug("cloud agent finished",
		"query_id", task.Query.ID, "bucket", a.bucket, "documents", len(docs), "confidence", confidence)

	return a.newResult(task, docs, confidence, started), nil
}

func (a *Cloud) readObject(ctx context.Context, bucket *storage.BucketHandle, name string) (string, error) {
	r, err := bucket.Object(name).NewReader(ctx)
	if err != nil {
		return "", err
	}
	defer r.Close()

	data, err := io.ReadAll(io.LimitReader(r, a.opts.MaxObjectSize))
	if err != nil {
		return "", err
	}

	return string(data), nil
}

func nameMatches(name string, keywords []string) bool {
	lower := strings.ToLower(name)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
