package core

import "time"

// AgentResult is the output of one agent invocation for one step. Created
// once per invocation, never mutated.
type AgentResult struct {
	AgentID    string
	AgentType  Capability
	QueryID    string
	Documents  []*Document
	Confidence float64
	Latency    time.Duration
	Metadata   map[string]string
}

// AggregatedResult is the fusion of one or more AgentResults for a step or
// a whole plan: deduplicated documents, per-document provenance, a combined
// confidence and the set of agent types that contributed. Immutable once
// built by the aggregator.
type AggregatedResult struct {
	QueryID    string
	Documents  []*Document
	Provenance map[string][]string // document id -> contributing agent ids
	Confidence float64
	AgentTypes []Capability
}
