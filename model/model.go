package model

import (
	"context"
	"fmt"
)

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Model is the minimal interface the generative agent needs: one prompt in,
// one completion out. Streaming and tool calling are deliberately out of
// scope for answer synthesis.
type Model interface {
	Complete(ctx context.Context, prompt string) (string, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
type MockModel struct {
	info      Info
	responses map[string]string
}

// NewMockModel constructs a MockModel.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: "mock"},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for a prompt.
func (m *MockModel) AddResponse(prompt, response string) { m.responses[prompt] = response }

// Complete implements Model; unknown prompts get an echoing placeholder.
func (m *MockModel) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if resp, ok := m.responses[prompt]; ok {
		return resp, nil
	}
	return fmt.Sprintf("Mock response to: %s", prompt), nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
