// Package agenticrag provides a high-level façade over the orchestrator and
// its services (planning, agents, two-tier memory, logging) for building
// retrieval-augmented query answering systems. Most applications interact
// with this package by:
//  1. Creating an AgenticRAG via New() (or FromConfig() for env-driven wiring)
//  2. Registering one or more retrieval/generation agents
//  3. Running queries with Ask or Run
//
// The façade delegates execution to orchestrator.Orchestrator while keeping
// setup ergonomics concise. All defaults are safe for local development and
// testing; production deployments typically supply a search endpoint, a
// durable memory DSN and a real model provider through configuration.
package agenticrag

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/jaganthoutam/agentic-rag/agent"
	"github.com/jaganthoutam/agentic-rag/config"
	"github.com/jaganthoutam/agentic-rag/core"
	"github.com/jaganthoutam/agentic-rag/logging"
	"github.com/jaganthoutam/agentic-rag/memory"
	"github.com/jaganthoutam/agentic-rag/model"
	anthropicmodel "github.com/jaganthoutam/agentic-rag/model/anthropic"
	openaimodel "github.com/jaganthoutam/agentic-rag/model/openai"
	"github.com/jaganthoutam/agentic-rag/orchestrator"
	"github.com/jaganthoutam/agentic-rag/planner"
)

// Options configures the AgenticRAG instance. Unset services default to
// in-memory implementations.
type Options = orchestrator.Options

// AgenticRAG is the high-level façade aggregating the orchestrator and its
// services.
type AgenticRAG struct {
	orch   *orchestrator.Orchestrator
	logger logging.Logger
}

// New creates an AgenticRAG instance with optional overrides. Any unset
// service is backed by an in-memory default.
func New(optFns ...func(o *Options)) *AgenticRAG {
	var logger logging.Logger = logging.NoOpLogger{}

	return &AgenticRAG{
		orch: orchestrator.New(func(o *Options) {
			for _, fn := range optFns {
				fn(o)
			}
			logger = o.Logger
		}),
		logger: logger,
	}
}

// FromConfig assembles a fully wired instance from typed configuration:
// logger, planning strategy, both memory tiers and every agent the
// configuration enables. The context is used for cloud client setup and
// long-term schema migration.
func FromConfig(ctx context.Context, cfg *config.App) (*AgenticRAG, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logging.NewJSONLogger(logging.ParseLevel(cfg.LogLevel), nil)

	mem, err := buildMemory(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	a := New(func(o *Options) {
		o.Config = orchestrator.Config{
			MaxAgentsPerStep:   cfg.Runtime.MaxAgentsPerStep,
			ConfidenceFloor:    cfg.Runtime.ConfidenceFloor,
			AgentTimeout:       cfg.Runtime.AgentTimeout,
			PlanTimeout:        cfg.Runtime.PlanTimeout,
			MaxSteps:           cfg.Runtime.MaxSteps,
			RecallLimit:        cfg.Runtime.RecallLimit,
			MemoryHitThreshold: cfg.Runtime.MemoryHitThreshold,
		}
		o.Planner = buildPlanner(cfg.Planner, logger)
		o.Memory = mem
		o.Logger = logger
	})

	if err := a.registerConfiguredAgents(ctx, cfg, mem, logger); err != nil {
		return nil, err
	}

	return a, nil
}

// RegisterAgent adds an agent under the given capability tags.
func (a *AgenticRAG) RegisterAgent(ag core.Agent, caps ...core.Capability) {
	a.orch.Register(ag, caps...)
}

// Run executes one query to completion.
func (a *AgenticRAG) Run(ctx context.Context, q core.Query) (*orchestrator.Result, error) {
	return a.orch.Run(ctx, q)
}

// Ask is Run for a plain text question.
func (a *AgenticRAG) Ask(ctx context.Context, text string) (*orchestrator.Result, error) {
	return a.orch.Run(ctx, core.NewQuery(text))
}

// MemoryStats reports per-tier memory statistics for health endpoints.
func (a *AgenticRAG) MemoryStats() []core.MemoryStats {
	return a.orch.Stats()
}

func buildPlanner(cfg config.Planner, logger logging.Logger) core.Planner {
	if strings.EqualFold(strings.TrimSpace(cfg.Strategy), "cot") {
		return planner.NewCoT(func(o *planner.CoTOptions) {
			o.MaxDepth = cfg.MaxDepth
			o.IrrelevanceFloor = cfg.IrrelevanceFloor
			o.Logger = logger
		})
	}

	return planner.NewReAct(func(o *planner.ReActOptions) {
		o.MaxSteps = cfg.MaxSteps
		o.PlanTimeout = cfg.PlanTimeout
		o.Logger = logger
	})
}

func buildMemory(ctx context.Context, cfg *config.App, logger logging.Logger) (core.MemoryStore, error) {
	short := memory.NewShortTerm(func(o *memory.ShortTermOptions) {
		o.Capacity = cfg.Memory.Capacity
		o.TTL = cfg.Memory.TTL
		o.Logger = logger
	})

	var long core.MemoryStore
	if dsn := strings.TrimSpace(cfg.Memory.LongTermDSN); dsn != "" {
		lt := memory.NewLongTerm(dsn, func(o *memory.LongTermOptions) {
			o.Logger = logger
		})
		if err := lt.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate long-term memory: %w", err)
		}
		long = lt
	}

	return memory.NewTiered(short, long, func(o *memory.TieredOptions) {
		o.PersistFloor = cfg.Memory.PersistFloor
		o.Logger = logger
	}), nil
}

func (a *AgenticRAG) registerConfiguredAgents(ctx context.Context, cfg *config.App, mem core.MemoryStore, logger logging.Logger) error {
	a.RegisterAgent(agent.NewMemoryReader(mem, func(o *agent.MemoryReaderOptions) {
		o.Logger = logger
	}), core.CapabilityMemoryRead)

	if endpoint := strings.TrimSpace(cfg.Search.Endpoint); endpoint != "" {
		a.RegisterAgent(agent.NewSearch(endpoint, func(o *agent.SearchOptions) {
			o.APIKey = cfg.Search.APIKey
			o.MaxResults = cfg.Search.MaxResults
			o.Logger = logger
		}), core.CapabilitySearch)
	}

	if root := strings.TrimSpace(cfg.LocalData.Root); root != "" {
		a.RegisterAgent(agent.NewLocalData(root, func(o *agent.LocalDataOptions) {
			o.MaxFileSize = cfg.LocalData.MaxFileSize
			o.Logger = logger
		}), core.CapabilityLocalData)
	}

	if bucket := strings.TrimSpace(cfg.Cloud.Bucket); bucket != "" {
		cloud, err := agent.NewCloud(ctx, bucket, func(o *agent.CloudOptions) {
			o.Prefix = cfg.Cloud.Prefix
			o.Logger = logger
		})
		if err != nil {
			return fmt.Errorf("cloud agent: %w", err)
		}
		a.RegisterAgent(cloud, core.CapabilityCloud)
	}

	m, err := buildModel(cfg.Model)
	if err != nil {
		return err
	}
	a.RegisterAgent(agent.NewGenerative(m, func(o *agent.GenerativeOptions) {
		o.Logger = logger
	}), core.CapabilityGenerative)

	return nil
}

func buildModel(cfg config.Model) (model.Model, error) {
	name := strings.TrimSpace(cfg.Name)

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "openai":
		return openaimodel.NewModel(func(o *openaimodel.Options) {
			if name != "" {
				o.Model = name
			}
		}), nil
	case "anthropic":
		return anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			if name != "" {
				o.Model = anthropic.Model(name)
			}
		}), nil
	case "mock":
		if name == "" {
			name = "mock"
		}
		return model.NewMockModel(name), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}
