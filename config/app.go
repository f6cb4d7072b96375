package config

import (
	"fmt"
	"strings"
	"time"
)

// Runtime tunes the orchestration run loop.
type Runtime struct {
	MaxAgentsPerStep   int           `split_words:"true" default:"5"`
	ConfidenceFloor    float64       `split_words:"true" default:"0"`
	AgentTimeout       time.Duration `split_words:"true" default:"30s"`
	PlanTimeout        time.Duration `split_words:"true" default:"2m"`
	MaxSteps           int           `split_words:"true" default:"50"`
	RecallLimit        int           `split_words:"true" default:"5"`
	MemoryHitThreshold float64       `split_words:"true" default:"0.8"`
}

// Planner selects and tunes the planning strategy.
type Planner struct {
	// Strategy is "react" or "cot".
	Strategy string `split_words:"true" default:"react"`

	// MaxSteps and PlanTimeout bound the ReAct strategy.
	MaxSteps    int           `split_words:"true" default:"10"`
	PlanTimeout time.Duration `split_words:"true" default:"60s"`

	// MaxDepth and IrrelevanceFloor bound the Chain-of-Thought strategy.
	MaxDepth         int     `split_words:"true" default:"5"`
	IrrelevanceFloor float64 `split_words:"true" default:"0.2"`
}

// Validate checks the strategy name.
func (c Planner) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Strategy)) {
	case "react", "cot":
		return nil
	default:
		return fmt.Errorf("unknown planner strategy %q", c.Strategy)
	}
}

// Memory configures both memory tiers. An empty LongTermDSN disables the
// durable tier.
type Memory struct {
	Capacity     int           `split_words:"true" default:"1000"`
	TTL          time.Duration `envconfig:"TTL" default:"1h"`
	LongTermDSN  string        `envconfig:"LONG_TERM_DSN"`
	PersistFloor float64       `split_words:"true" default:"0"`
}

// Search configures the web search agent. An empty endpoint disables it.
type Search struct {
	Endpoint   string `split_words:"true"`
	APIKey     string `envconfig:"API_KEY"`
	MaxResults int    `split_words:"true" default:"5"`
}

// LocalData configures the local dataset agent. An empty root disables it.
type LocalData struct {
	Root        string `split_words:"true"`
	MaxFileSize int64  `split_words:"true" default:"1048576"`
}

// Cloud configures the cloud storage agent. An empty bucket disables it.
type Cloud struct {
	Bucket string `split_words:"true"`
	Prefix string `split_words:"true"`
}

// Model configures the generative model backing the synthesis agent.
type Model struct {
	// Provider is "mock", "openai" or "anthropic".
	Provider string `split_words:"true" default:"mock"`

	// Name overrides the provider's default model when set.
	Name string `split_words:"true"`
}

// Validate checks the provider name. Provider API keys are read by the
// provider SDKs from their own environment variables.
func (c Model) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Provider)) {
	case "mock", "openai", "anthropic":
		return nil
	default:
		return fmt.Errorf("unknown model provider %q", c.Provider)
	}
}

// App bundles all subsystem configuration under one prefix.
type App struct {
	LogLevel string `split_words:"true" default:"info"`

	Runtime   Runtime
	Planner   Planner
	Memory    Memory
	Search    Search
	LocalData LocalData `split_words:"true"`
	Cloud     Cloud
	Model     Model
}

// Validate runs all subsystem validations.
func (c App) Validate() error {
	if err := c.Planner.Validate(); err != nil {
		return err
	}
	return c.Model.Validate()
}
