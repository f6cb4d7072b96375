// Package orchestrator drives one query through the plan/dispatch/aggregate
// loop: recall memory context, ask the planner for the next step, fan the
// step out to every eligible agent concurrently, fuse their results, feed
// the observation back, and finally commit the fused outcome to memory.
//
// Failure containment is the point of this package: a missing capability, a
// slow agent or a panicking agent degrades one step's evidence, never the
// run; only the planner declaring failure loses the run, and bound expiry
// yields an explicitly partial result instead of an error.
package orchestrator
