// Package model defines the minimal language-model contract used by the
// generative agent for answer synthesis, plus a deterministic MockModel for
// tests. Provider adapters live in the openai and anthropic subpackages.
package model
