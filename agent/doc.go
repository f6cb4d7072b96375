// Package agent contains the concrete retrieval and generation agents
// dispatched by the orchestrator: memory reader, web search, local data,
// cloud storage and generative synthesis. Each implements core.Agent,
// reports its own confidence in [0,1], and converts internal failures into
// errors the orchestrator absorbs as missing results.
package agent
