package core

import (
	"time"

	"github.com/google/uuid"
)

// Query is one user question entering the system. Immutable once created;
// it exists only for the duration of a single orchestration run.
type Query struct {
	ID        string
	Text      string
	ArrivedAt time.Time
	Metadata  map[string]string
}

// NewQuery creates a Query with a generated id and arrival timestamp.
func NewQuery(text string) Query {
	return Query{
		ID:        uuid.NewString(),
		Text:      text,
		ArrivedAt: time.Now(),
	}
}

// Document is a retrieved or generated content unit. Documents are immutable
// after creation and shared by reference between AgentResults and memory
// entries, never copied wholesale.
type Document struct {
	ID        string
	Content   string
	Source    string
	Embedding []float32
	CreatedAt time.Time
	Metadata  map[string]string
}

// NewDocument creates a Document with a generated id and creation timestamp.
func NewDocument(content, source string) *Document {
	return &Document{
		ID:        uuid.NewString(),
		Content:   content,
		Source:    source,
		CreatedAt: time.Now(),
	}
}
