// Package registry provides thread-safe capability-indexed agent lookup.
//
// Agents are registered under one or more capability tags and resolved by
// the orchestrator when a plan step names a capability. Multiple agents may
// share a capability; all of them are dispatched concurrently for matching
// steps.
package registry
