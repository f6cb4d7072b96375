// Package aggregate fuses agent results for a single step or plan into one
// deduplicated, confidence-scored result.
//
// Aggregation is a pure function of its inputs: for the same set of agent
// results it produces the same output regardless of arrival order, so
// concurrent fan-out never makes runs non-reproducible.
package aggregate
