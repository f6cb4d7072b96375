package planner

import (
	"fmt"
	"strings"
	"time"

	"github.com/jaganthoutam/agentic-rag/core"
	"github.com/jaganthoutam/agentic-rag/logging"
)

// ReActOptions configures the ReAct planner.
type ReActOptions struct {
	// MaxSteps bounds how many steps one run may dispatch. Hitting the
	// bound completes the run with a partial result, it never fails it.
	// 0 means unlimited.
	MaxSteps int

	// PlanTimeout bounds the wall-clock duration of one run. Like MaxSteps
	// it forces partial completion, never failure. 0 disables the bound.
	PlanTimeout time.Duration

	// MemoryHitThreshold is the memory observation confidence at or above
	// which remaining retrieval steps are skipped and the planner jumps
	// straight to synthesis.
	MemoryHitThreshold float64

	// Logger receives planner reasoning at debug level.
	Logger logging.Logger
}

// ReAct is the reasoning-and-acting strategy: it decides one step at a
// time, folding every observation back into the next decision.
//
// The planner holds no per-run state; everything it needs is in the
// PlanContext, so one instance is safe to share across concurrent runs.
type ReAct struct {
	opts ReActOptions

	// now is swapped in tests to exercise the plan timeout bound.
	now func() time.Time
}

var _ core.Planner = (*ReAct)(nil)

// NewReAct creates a ReAct planner with sensible bounds.
func NewReAct(optFns ...func(o *ReActOptions)) *ReAct {
	opts := ReActOptions{
		MaxSteps:           10,
		PlanTimeout:        60 * time.Second,
		MemoryHitThreshold: 0.8,
		Logger:             logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &ReAct{opts: opts, now: time.Now}
}

// Name returns the strategy name.
func (p *ReAct) Name() string { return "react" }

// NextStep decides the next step for the run described by pc.
//
// Candidate order is cheapest-first: memory read, then external retrieval
// (search, local data, cloud, gated by query heuristics), then synthesis.
// Bounds are checked only when a candidate exists: exhausting the plan
// naturally is a complete result, while a bound cutting off remaining
// candidates marks the result partial.
func (p *ReAct) NextStep(pc *core.PlanContext) core.Decision {
	if len(pc.Capabilities) == 0 {
		return core.FailedDecision("no agent capabilities registered")
	}

	step := p.nextCandidate(pc)
	if step == nil {
		return core.DoneDecision(false, "plan exhausted")
	}

	if p.opts.MaxSteps > 0 && len(pc.Observations) >= p.opts.MaxSteps {
		p.opts.Logger.Debug("react planner hit step bound",
			"query_id", pc.Query.ID, "max_steps", p.opts.MaxSteps)
		return core.DoneDecision(true, fmt.Sprintf("max steps (%d) reached", p.opts.MaxSteps))
	}

	if p.opts.PlanTimeout > 0 && p.now().Sub(pc.StartedAt) >= p.opts.PlanTimeout {
		p.opts.Logger.Debug("react planner hit plan timeout",
			"query_id", pc.Query.ID, "timeout", p.opts.PlanTimeout)
		return core.DoneDecision(true, "plan timeout reached")
	}

	return core.NextStepDecision(step)
}

func (p *ReAct) nextCandidate(pc *core.PlanContext) *core.Step {
	if pc.HasCapability(core.CapabilityMemoryRead) && !pc.Observed(core.CapabilityMemoryRead) {
		return core.NewStep(core.CapabilityMemoryRead,
			fmt.Sprintf("check memory for similar queries to %q", pc.Query.Text))
	}

	if !p.memoryAnsweredQuery(pc) {
		needsLocal := queryNeedsLocalData(pc.Query.Text)
		needsCloud := queryNeedsCloud(pc.Query.Text)

		// An empty search widens the net to every other source.
		if p.searchCameBackEmpty(pc) {
			needsLocal, needsCloud = true, true
		}

		if queryNeedsSearch(pc.Query.Text) &&
			pc.HasCapability(core.CapabilitySearch) && !pc.Observed(core.CapabilitySearch) {
			return core.NewStep(core.CapabilitySearch,
				fmt.Sprintf("search external sources for %q", pc.Query.Text))
		}

		if needsLocal &&
			pc.HasCapability(core.CapabilityLocalData) && !pc.Observed(core.CapabilityLocalData) {
			return core.NewStep(core.CapabilityLocalData,
				fmt.Sprintf("retrieve relevant local data for %q", pc.Query.Text))
		}

		if needsCloud &&
			pc.HasCapability(core.CapabilityCloud) && !pc.Observed(core.CapabilityCloud) {
			return core.NewStep(core.CapabilityCloud,
				fmt.Sprintf("access cloud storage for %q", pc.Query.Text))
		}
	}

	if pc.HasCapability(core.CapabilityGenerative) && !pc.Observed(core.CapabilityGenerative) {
		return core.NewStep(core.CapabilityGenerative,
			fmt.Sprintf("generate final response to %q", pc.Query.Text))
	}

	return nil
}

// memoryAnsweredQuery reports whether a memory observation already answered
// the query with high confidence, making further retrieval redundant.
func (p *ReAct) memoryAnsweredQuery(pc *core.PlanContext) bool {
	for _, obs := range pc.Observations {
		if obs.Step == nil || obs.Step.Capability != core.CapabilityMemoryRead {
			continue
		}
		if obs.Result != nil && obs.Result.Confidence >= p.opts.MemoryHitThreshold {
			return true
		}
	}
	return false
}

func (p *ReAct) searchCameBackEmpty(pc *core.PlanContext) bool {
	for _, obs := range pc.Observations {
		if obs.Step == nil || obs.Step.Capability != core.CapabilitySearch {
			continue
		}
		return obs.Result == nil || len(obs.Result.Documents) == 0
	}
	return false
}

var localDataKeywords = []string{
	"local", "file", "document", "internal", "our", "company",
	"dataset", "database", "data", "report", "analysis",
}

var cloudKeywords = []string{
	"cloud", "aws", "gcs", "s3", "bucket", "remote", "service",
	"api", "endpoint", "storage",
}

// queryNeedsSearch defaults to true: most queries benefit from at least one
// external lookup.
func queryNeedsSearch(string) bool { return true }

func queryNeedsLocalData(text string) bool { return containsAny(text, localDataKeywords) }

func queryNeedsCloud(text string) bool { return containsAny(text, cloudKeywords) }

func containsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
