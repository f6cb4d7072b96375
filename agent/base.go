package agent

import (
	"time"

	"github.com/google/uuid"

	"github.com/jaganthoutam/agentic-rag/core"
	"github.com/jaganthoutam/agentic-rag/logging"
)

// base carries the identity and logger every concrete agent embeds.
type base struct {
	info   core.AgentInfo
	logger logging.Logger
}

func newBase(name string, agentType core.Capability, logger logging.Logger) base {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return base{
		info: core.AgentInfo{
			ID:   name + "-" + uuid.NewString()[:8],
			Name: name,
			Type: agentType,
		},
		logger: logger,
	}
}

// Info implements core.Agent.
func (b *base) Info() core.AgentInfo { return b.info }

// newResult assembles an AgentResult for the given task, stamping latency
// from the provided start time.
func (b *base) newResult(task core.Task, docs []*core.Document, confidence float64, started time.Time) *core.AgentResult {
	return &core.AgentResult{
		AgentID:    b.info.ID,
		AgentType:  b.info.Type,
		QueryID:    task.Query.ID,
		Documents:  docs,
		Confidence: confidence,
		Latency:    time.Since(started),
	}
}
