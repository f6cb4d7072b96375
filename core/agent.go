package core

import "context"

// Capability is a named kind of work an agent can perform. The registry
// indexes agents by capability tag; the orchestrator never inspects
// concrete agent types.
type Capability string

const (
	// CapabilitySearch retrieves from external search sources.
	CapabilitySearch Capability = "search"
	// CapabilityLocalData retrieves from local files and datasets.
	CapabilityLocalData Capability = "local_data"
	// CapabilityCloud retrieves from cloud object storage.
	CapabilityCloud Capability = "cloud"
	// CapabilityGenerative synthesizes an answer from gathered evidence.
	CapabilityGenerative Capability = "generative"
	// CapabilityMemoryRead recalls prior results from the memory store.
	// The cheapest capability; planners prefer it before external agents.
	CapabilityMemoryRead Capability = "memory_read"
)

// AgentInfo carries identifying details about an agent used in results and
// logs. ID is unique per instance; Type is the primary capability tag.
type AgentInfo struct {
	ID   string
	Name string
	Type Capability
}

// Task is the envelope handed to an agent for one step invocation. Context
// holds the fused evidence gathered by earlier steps; agents treat it as
// read-only.
type Task struct {
	Query   Query
	Step    *Step
	Context []*Document
}

// Agent is the black-box contract between the orchestrator and concrete
// retrieval/generation agents.
//
// Implementations must report their own confidence in [0,1], respect
// context cancellation, and must not panic across the boundary; the
// orchestrator converts framework-level failures into "no result" rather
// than propagating them.
type Agent interface {
	Info() AgentInfo
	Execute(ctx context.Context, task Task) (*AgentResult, error)
}
