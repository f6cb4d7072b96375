// Package core defines the shared data model and service interfaces of the
// agentic-rag orchestration framework: queries, plans, documents, agent
// results, memory entries, plus the Agent / Planner / MemoryStore contracts
// that the concrete packages (agent, planner, memory, orchestrator)
// implement and compose.
//
// The package has no dependencies on its siblings; everything else depends
// on core.
package core
