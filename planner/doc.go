// Package planner provides the two interchangeable planning strategies.
//
// ReAct interleaves reasoning and acting: every observation feeds back into
// the choice of the next step, so the plan adapts mid-run (skipping
// retrieval after a strong memory hit, widening sources after an empty
// search). Chain-of-Thought decomposes the query up front into a
// bounded-depth tree of sub-questions and executes its depth-first
// flattening without revision; its only adaptive behavior is pruning a
// subtree whose root observation came back irrelevant.
//
// Both implement core.Planner and are selected at orchestrator construction
// time.
package planner
