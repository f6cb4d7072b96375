package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jaganthoutam/agentic-rag/core"
	"github.com/jaganthoutam/agentic-rag/logging"
	"github.com/jaganthoutam/agentic-rag/model"
)

// GenerativeOptions configures the generative agent.
type GenerativeOptions struct {
	// MaxContextDocuments caps how many evidence documents are folded
	// into the prompt.
	MaxContextDocuments int

	Logger logging.Logger
}

// Generative serves the generative capability: it synthesizes a final
// answer from the evidence gathered by earlier steps using a language
// model.
type Generative struct {
	base
	model model.Model
	opts  GenerativeOptions
}

var _ core.Agent = (*Generative)(nil)

// NewGenerative creates a generative agent over the given model.
func NewGenerative(m model.Model, optFns ...func(o *GenerativeOptions)) *Generative {
	opts := GenerativeOptions{
		MaxContextDocuments: 10,
		Logger:              logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Generative{
		base:  newBase("generative", core.CapabilityGenerative, opts.Logger),
		model: m,
		opts:  opts,
	}
}

// Execute prompts the model with the query and the evidence documents from
// task.Context. Synthesis grounded in evidence is reported at 0.9
// confidence; an ungrounded answer drops to 0.7.
func (a *Generative) Execute(ctx context.Context, task core.Task) (*core.AgentResult, error) {
	started := time.Now()

	prompt, grounded := a.buildPrompt(task)

	answer, err := a.model.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("model completion: %w", err)
	}

	confidence := 0.7
	if grounded {
		confidence = 0.9
	}

	doc := core.NewDocument(answer, "generated:"+a.model.Info().Name)

	a.logger.Debug("generative agent finished",
		"query_id", task.Query.ID, "grounded", grounded, "confidence", confidence)

	return a.newResult(task, []*core.Document{doc}, confidence, started), nil
}

func (a *Generative) buildPrompt(task core.Task) (string, bool) {
	docs := task.Context
	if len(docs) > a.opts.MaxContextDocuments {
		docs = docs[:a.opts.MaxContextDocuments]
	}

	if len(docs) == 0 {
		return fmt.Sprintf("Generate a helpful response to the following query: %s", task.Query.Text), false
	}

	var sb strings.Builder
	sb.WriteString("Use the provided context to answer the query.\n\nContext:\n")
	for i, d := range docs {
		fmt.Fprintf(&sb, "[%d] (%s) %s\n", i+1, d.Source, d.Content)
	}
	fmt.Fprintf(&sb, "\nQuery: %s", task.Query.Text)

	return sb.String(), true
}
