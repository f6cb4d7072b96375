package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jaganthoutam/agentic-rag/aggregate"
	"github.com/jaganthoutam/agentic-rag/core"
	"github.com/jaganthoutam/agentic-rag/logging"
	"github.com/jaganthoutam/agentic-rag/memory"
	"github.com/jaganthoutam/agentic-rag/planner"
	"github.com/jaganthoutam/agentic-rag/registry"
)

// Status classifies a run outcome for callers. Partial results are never
// disguised as full success.
type Status string

const (
	// StatusSuccess means the planner exhausted its plan naturally.
	StatusSuccess Status = "success"
	// StatusPartial means a bound (steps, plan timeout) cut the run short
	// and the result carries whatever was aggregated so far.
	StatusPartial Status = "partial"
	// StatusFailed means planning could not proceed; no partial answer is
	// fabricated.
	StatusFailed Status = "failed"
)

// Result is the outcome of one orchestration run.
type Result struct {
	Query      core.Query
	Aggregated *core.AggregatedResult
	Status     Status
	Reason     string
	Steps      int
	FromMemory bool
	Elapsed    time.Duration
}

// Config defines tuning parameters for run behavior.
type Config struct {
	// MaxAgentsPerStep caps how many agent results the aggregator
	// considers per step. 0 means unlimited.
	MaxAgentsPerStep int

	// ConfidenceFloor drops agent results below this confidence before
	// fusion (keep-best fallback applies).
	ConfidenceFloor float64

	// AgentTimeout bounds each individual agent call within a step.
	AgentTimeout time.Duration

	// PlanTimeout bounds the whole run independent of per-agent
	// timeouts; expiry finalizes with partial results.
	PlanTimeout time.Duration

	// MaxSteps is a hard safety valve on dispatched steps, independent
	// of the planner's own bounds. 0 means unlimited.
	MaxSteps int

	// RecallLimit is how many memory entries to recall as plan context.
	RecallLimit int

	// MemoryHitThreshold short-circuits the run entirely when recalled
	// memory already answers the query at or above this relevance.
	// 0 disables the short-circuit.
	MemoryHitThreshold float64
}

// DefaultConfig provides production-ready defaults.
var DefaultConfig = Config{
	MaxAgentsPerStep:   5,
	AgentTimeout:       30 * time.Second,
	PlanTimeout:        2 * time.Minute,
	MaxSteps:           50,
	RecallLimit:        5,
	MemoryHitThreshold: 0.8,
}

// Options configures an Orchestrator using the functional options pattern.
// All dependencies have in-memory defaults suitable for development and
// tests.
type Options struct {
	// Config contains operational parameters for run behavior.
	Config Config

	// Registry resolves capability tags to agents. Defaults to an empty
	// registry.
	Registry *registry.Registry

	// Planner chooses the next step each iteration. Defaults to ReAct.
	Planner core.Planner

	// Memory supplies plan context and stores run outcomes. Defaults to
	// a short-term-only tiered store.
	Memory core.MemoryStore

	// Logger provides structured logging. Defaults to NoOp.
	Logger logging.Logger
}

// Orchestrator executes queries against a shared registry, planner and
// memory store. One instance serves many concurrent runs; per-run state
// lives entirely on the Run stack.
type Orchestrator struct {
	config   Config
	registry *registry.Registry
	planner  core.Planner
	memory   core.MemoryStore
	logger   logging.Logger
}

// New creates an Orchestrator.
func New(optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		Config:   DefaultConfig,
		Registry: registry.New(),
		Planner:  planner.NewReAct(),
		Memory:   memory.NewTiered(memory.NewShortTerm(), nil),
		Logger:   logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Orchestrator{
		config:   opts.Config,
		registry: opts.Registry,
		planner:  opts.Planner,
		memory:   opts.Memory,
		logger:   opts.Logger,
	}
}

// Register adds an agent under the given capability tags.
func (o *Orchestrator) Register(a core.Agent, caps ...core.Capability) {
	o.registry.Register(a, caps...)
}

// Stats reports per-tier memory statistics for health endpoints.
func (o *Orchestrator) Stats() []core.MemoryStats { return o.memory.Stats() }

// Run executes one query to completion. The returned Result always carries
// a Status; the error is non-nil only for planning failure or caller
// cancellation, in which case no partial answer is fabricated.
func (o *Orchestrator) Run(ctx context.Context, q core.Query) (*Result, error) {
	started := time.Now()

	runCtx := ctx
	if o.config.PlanTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, o.config.PlanTimeout)
		defer cancel()
	}

	recalled := o.recall(ctx, q)

	if hit := o.memoryShortCircuit(q, recalled); hit != nil {
		hit.Elapsed = time.Since(started)
		o.logger.Info("query answered from memory",
			"query_id", q.ID, "confidence", hit.Aggregated.Confidence)
		return hit, nil
	}

	pc := &core.PlanContext{
		Query:        q,
		Capabilities: o.registry.Capabilities(),
		Memory:       recalled,
		StartedAt:    started,
	}

	limiter := core.NewStepLimiter(o.config.MaxSteps)

	var collected []*core.AgentResult

	for {
		decision := o.planner.NextStep(pc)

		switch decision.Kind {
		case core.DecideFailed:
			o.logger.Error("planning failed", "query_id", q.ID, "reason", decision.Reason)
			return &Result{
				Query:   q,
				Status:  StatusFailed,
				Reason:  decision.Reason,
				Steps:   len(pc.Observations),
				Elapsed: time.Since(started),
			}, fmt.Errorf("%w: %s", core.ErrPlanningFailure, decision.Reason)

		case core.DecideDone:
			return o.finalize(ctx, q, collected, pc, decision.Partial, decision.Reason, started), nil
		}

		// Bound checks before dispatching the decided step.
		if err := runCtx.Err(); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			o.logger.Warn("plan timeout reached",
				"query_id", q.ID, "steps", len(pc.Observations), "error", core.ErrPlanTimeout)
			return o.finalize(ctx, q, collected, pc, true, "plan timeout reached", started), nil
		}
		if err := limiter.Increment(); err != nil {
			o.logger.Warn("step limit reached", "query_id", q.ID, "steps", len(pc.Observations))
			return o.finalize(ctx, q, collected, pc, true, err.Error(), started), nil
		}

		results, agg := o.dispatch(runCtx, q, decision.Step, pc)
		collected = append(collected, results...)
		pc.Observations = append(pc.Observations, core.Observation{Step: decision.Step, Result: agg})

		if len(agg.Documents) > 0 {
			o.remember(ctx, q, agg)
		}
	}
}

// dispatch fans one step out to every eligible agent concurrently and fuses
// whatever came back. A capability with no registered agents fails the step
// but feeds a zero-confidence observation back so the loop continues.
func (o *Orchestrator) dispatch(ctx context.Context, q core.Query, step *core.Step, pc *core.PlanContext) ([]*core.AgentResult, *core.AggregatedResult) {
	step.Status = core.StepRunning

	agents := o.registry.Resolve(step.Capability)
	if len(agents) == 0 {
		step.Status = core.StepFailed
		o.logger.Warn("no eligible agents for step",
			"query_id", q.ID, "capability", step.Capability, "error", core.ErrAgentUnavailable)
		return nil, aggregate.Aggregate(q.ID, nil)
	}

	task := core.Task{Query: q, Step: step, Context: pc.Documents()}

	var (
		mu      sync.Mutex
		results []*core.AgentResult
		wg      sync.WaitGroup
	)

	for _, a := range agents {
		wg.Add(1)
		go func(a core.Agent) {
			defer wg.Done()

			res, err := o.invoke(ctx, a, task)
			if err != nil {
				o.logger.Warn("agent call yielded no result",
					"query_id", q.ID, "agent_id", a.Info().ID, "error", err)
				return
			}

			mu.Lock()
			results = append(results, res)
			mu.Unlock()
		}(a)
	}

	wg.Wait()

	agg := aggregate.Aggregate(q.ID, results, func(ao *aggregate.Options) {
		ao.MaxAgents = o.config.MaxAgentsPerStep
		ao.ConfidenceFloor = o.config.ConfidenceFloor
	})

	if len(results) > 0 {
		step.Status = core.StepDone
	} else {
		step.Status = core.StepFailed
	}

	o.logger.Debug("step dispatched",
		"query_id", q.ID, "capability", step.Capability,
		"agents", len(agents), "results", len(results), "confidence", agg.Confidence)

	return results, agg
}

// invoke runs a single agent under its own timeout, absorbing panics so a
// misbehaving agent cannot take down sibling dispatches or the run.
func (o *Orchestrator) invoke(ctx context.Context, a core.Agent, task core.Task) (res *core.AgentResult, err error) {
	callCtx := ctx
	if o.config.AgentTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, o.config.AgentTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("agent panicked: %v", r)
		}
	}()

	res, err = a.Execute(callCtx, task)
	if err != nil {
		if callCtx.Err() != nil && ctx.Err() == nil {
			err = fmt.Errorf("%w: %v", core.ErrAgentTimeout, err)
		}
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf("agent returned no result")
	}

	return res, nil
}

// finalize fuses everything collected across the run, commits it to memory
// and classifies the outcome.
func (o *Orchestrator) finalize(ctx context.Context, q core.Query, collected []*core.AgentResult, pc *core.PlanContext, partial bool, reason string, started time.Time) *Result {
	final := aggregate.Aggregate(q.ID, collected, func(ao *aggregate.Options) {
		ao.ConfidenceFloor = o.config.ConfidenceFloor
	})

	if len(final.Documents) > 0 {
		o.remember(ctx, q, final)
	}

	status := StatusSuccess
	if partial {
		status = StatusPartial
	}

	o.logger.Info("run finished",
		"query_id", q.ID, "status", status, "steps", len(pc.Observations),
		"documents", len(final.Documents), "confidence", final.Confidence)

	return &Result{
		Query:      q,
		Aggregated: final,
		Status:     status,
		Reason:     reason,
		Steps:      len(pc.Observations),
		Elapsed:    time.Since(started),
	}
}

func (o *Orchestrator) recall(ctx context.Context, q core.Query) []core.MemoryEntry {
	entries, err := o.memory.Recall(ctx, q, o.config.RecallLimit)
	if err != nil {
		o.logger.Warn("memory recall failed, planning without context",
			"query_id", q.ID, "error", err)
		return nil
	}
	return entries
}

// memoryShortCircuit answers the query straight from memory when the best
// recalled entry clears the hit threshold, skipping planning entirely.
func (o *Orchestrator) memoryShortCircuit(q core.Query, recalled []core.MemoryEntry) *Result {
	if o.config.MemoryHitThreshold <= 0 || len(recalled) == 0 {
		return nil
	}

	best := recalled[0]
	if best.Relevance < o.config.MemoryHitThreshold {
		return nil
	}

	// Long-term rank scores have an unbounded access term; confidence
	// reported to callers stays in [0,1].
	confidence := best.Relevance
	if confidence > 1 {
		confidence = 1
	}

	provenance := make(map[string][]string, len(best.Documents))
	for _, d := range best.Documents {
		provenance[d.ID] = []string{"memory"}
	}

	return &Result{
		Query: q,
		Aggregated: &core.AggregatedResult{
			QueryID:    q.ID,
			Documents:  best.Documents,
			Provenance: provenance,
			Confidence: confidence,
			AgentTypes: []core.Capability{core.CapabilityMemoryRead},
		},
		Status:     StatusSuccess,
		FromMemory: true,
	}
}

// remember commits a fused result to memory. The tiered store decides
// durability; failures only cost future recall, never the response.
func (o *Orchestrator) remember(ctx context.Context, q core.Query, agg *core.AggregatedResult) {
	entry := core.NewMemoryEntry(q, agg.Documents, agg.Confidence)
	if err := o.memory.Remember(ctx, entry); err != nil {
		o.logger.Warn("failed to remember result", "query_id", q.ID, "error", err)
	}
}
