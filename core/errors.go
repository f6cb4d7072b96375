package core

import "errors"

// Error taxonomy for orchestration runs. Step- and agent-level errors are
// absorbed locally and surface only as reduced confidence or coverage;
// run-level errors wrap one of these sentinels so callers can classify the
// outcome without seeing raw internals.
var (
	// ErrAgentUnavailable: no registered agent matches a step's capability.
	// Step-local and recoverable (skip / low-confidence observation).
	ErrAgentUnavailable = errors.New("no agent available for capability")

	// ErrAgentTimeout: a single agent call exceeded its per-call timeout.
	// Recoverable; the call yields no result and siblings continue.
	ErrAgentTimeout = errors.New("agent call timed out")

	// ErrPlanTimeout: the whole-plan deadline expired. Recoverable; the run
	// finalizes with whatever was aggregated so far, flagged partial.
	ErrPlanTimeout = errors.New("plan deadline exceeded")

	// ErrPlanningFailure: the planner cannot proceed. Fatal for the run; no
	// partial answer is fabricated.
	ErrPlanningFailure = errors.New("planner cannot proceed")

	// ErrMemoryUnavailable: the long-term tier is unreachable. Never fatal;
	// the tiered store degrades to short-term only.
	ErrMemoryUnavailable = errors.New("long-term memory unavailable")
)
