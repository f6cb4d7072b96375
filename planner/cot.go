package planner

import (
	"fmt"
	"strings"

	"github.com/jaganthoutam/agentic-rag/core"
	"github.com/jaganthoutam/agentic-rag/logging"
)

// CoTOptions configures the Chain-of-Thought planner.
type CoTOptions struct {
	// MaxDepth bounds the decomposition tree depth. Depth 1 produces a
	// flat list of sub-questions; deeper levels refine individual needs.
	MaxDepth int

	// IrrelevanceFloor is the observation confidence below which the
	// remaining subtree under a sub-question is skipped instead of
	// executed. This pruning is the strategy's only adaptive behavior.
	IrrelevanceFloor float64

	// Logger receives planner reasoning at debug level.
	Logger logging.Logger
}

// cotNode is one sub-question in the decomposition tree.
type cotNode struct {
	step     *core.Step
	children []*cotNode
}

// flatStep is one entry of the depth-first flattening. subtreeEnd is the
// index one past the node's last descendant, so pruning a subtree is a
// single index jump.
type flatStep struct {
	step       *core.Step
	subtreeEnd int
}

// CoT is the Chain-of-Thought strategy: the whole decomposition is fixed
// up front and executed in depth-first order without revision.
//
// The compiled flattening lives in the PlanContext, so it is discarded with
// the run however the run ends and a shared instance stays safe across
// concurrent runs.
type CoT struct {
	opts CoTOptions
}

var _ core.Planner = (*CoT)(nil)

// NewCoT creates a Chain-of-Thought planner.
func NewCoT(optFns ...func(o *CoTOptions)) *CoT {
	opts := CoTOptions{
		MaxDepth:         5,
		IrrelevanceFloor: 0.2,
		Logger:           logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &CoT{opts: opts}
}

// Name returns the strategy name.
func (p *CoT) Name() string { return "cot" }

// NextStep walks the precompiled flattening, matching prior observations to
// already-dispatched steps in order. A dispatched sub-question whose
// observation confidence fell below the irrelevance floor prunes its whole
// subtree; pruned steps are marked skipped and never dispatched.
func (p *CoT) NextStep(pc *core.PlanContext) core.Decision {
	if len(pc.Capabilities) == 0 {
		return core.FailedDecision("no agent capabilities registered")
	}

	flat := p.planFor(pc)
	if len(flat) == 0 {
		return core.FailedDecision("no dispatchable sub-questions for registered capabilities")
	}

	obsIdx := 0
	skipUntil := -1

	for i, fs := range flat {
		if i < skipUntil {
			if fs.step.Status == core.StepPending {
				fs.step.Status = core.StepSkipped
				p.opts.Logger.Debug("cot planner skipped pruned step",
					"query_id", pc.Query.ID, "step_id", fs.step.ID)
			}
			continue
		}

		if fs.step.Status == core.StepSkipped {
			continue
		}

		if obsIdx < len(pc.Observations) {
			obs := pc.Observations[obsIdx]
			obsIdx++

			irrelevant := obs.Result == nil || obs.Result.Confidence < p.opts.IrrelevanceFloor
			if irrelevant && fs.subtreeEnd > i+1 {
				skipUntil = fs.subtreeEnd
			}
			continue
		}

		return core.NextStepDecision(fs.step)
	}

	return core.DoneDecision(false, "plan exhausted")
}

func (p *CoT) planFor(pc *core.PlanContext) []flatStep {
	if flat, ok := pc.State.([]flatStep); ok {
		return flat
	}

	flat := flatten(p.decompose(pc))
	pc.State = flat

	return flat
}

// decompose builds the sub-question tree for the query: a memory check
// first, one node per identified information need (refined one level deeper
// where the need supports it), and a final synthesis node.
func (p *CoT) decompose(pc *core.PlanContext) []*cotNode {
	var roots []*cotNode

	if pc.HasCapability(core.CapabilityMemoryRead) {
		roots = append(roots, &cotNode{
			step: core.NewStep(core.CapabilityMemoryRead,
				fmt.Sprintf("retrieve relevant prior knowledge about %q", pc.Query.Text)),
		})
	}

	for _, need := range analyzeQuery(pc.Query.Text) {
		capability, ok := capabilityForNeed(need.kind, pc)
		if !ok {
			continue
		}

		node := &cotNode{step: core.NewStep(capability, need.description)}

		if p.opts.MaxDepth >= 2 {
			node.children = p.refine(need, pc)
		}

		roots = append(roots, node)
	}

	if pc.HasCapability(core.CapabilityGenerative) {
		roots = append(roots, &cotNode{
			step: core.NewStep(core.CapabilityGenerative,
				fmt.Sprintf("generate comprehensive response to %q", pc.Query.Text)),
		})
	}

	return roots
}

// refine expands a single information need one level deeper.
func (p *CoT) refine(need infoNeed, pc *core.PlanContext) []*cotNode {
	switch need.kind {
	case needComparison:
		left, right, ok := splitComparison(pc.Query.Text)
		if !ok || !pc.HasCapability(core.CapabilitySearch) {
			return nil
		}
		return []*cotNode{
			{step: core.NewStep(core.CapabilitySearch, fmt.Sprintf("gather facts about %q", left))},
			{step: core.NewStep(core.CapabilitySearch, fmt.Sprintf("gather facts about %q", right))},
		}
	case needData:
		if !pc.HasCapability(core.CapabilityCloud) {
			return nil
		}
		return []*cotNode{
			{step: core.NewStep(core.CapabilityCloud,
				fmt.Sprintf("check cloud storage for datasets related to %q", pc.Query.Text))},
		}
	default:
		return nil
	}
}

func flatten(roots []*cotNode) []flatStep {
	var flat []flatStep

	var walk func(n *cotNode)
	walk = func(n *cotNode) {
		idx := len(flat)
		flat = append(flat, flatStep{step: n.step})
		for _, child := range n.children {
			walk(child)
		}
		flat[idx].subtreeEnd = len(flat)
	}

	for _, root := range roots {
		walk(root)
	}

	return flat
}

type needKind string

const (
	needFactual        needKind = "factual"
	needDefinition     needKind = "definition"
	needComparison     needKind = "comparison"
	needData           needKind = "data"
	needRecommendation needKind = "recommendation"
	needGeneral        needKind = "general"
)

type infoNeed struct {
	kind        needKind
	description string
}

// analyzeQuery identifies the information needs of a query from surface
// cues. Falls back to one general lookup when nothing specific matches.
func analyzeQuery(text string) []infoNeed {
	lower := strings.ToLower(text)
	var needs []infoNeed

	if containsAny(lower, []string{"who", "what", "when", "where", "how", "why"}) {
		needs = append(needs, infoNeed{needFactual,
			fmt.Sprintf("retrieve factual information about %q", text)})
	}
	if containsAny(lower, []string{"define", "explain", "mean", "definition"}) {
		needs = append(needs, infoNeed{needDefinition,
			fmt.Sprintf("retrieve definitions for concepts in %q", text)})
	}
	if containsAny(lower, []string{"compare", "difference", "versus", "vs"}) {
		needs = append(needs, infoNeed{needComparison,
			fmt.Sprintf("compare entities mentioned in %q", text)})
	}
	if containsAny(lower, []string{"data", "statistic", "number", "percent", "figure"}) {
		needs = append(needs, infoNeed{needData,
			fmt.Sprintf("retrieve data or statistics related to %q", text)})
	}
	if containsAny(lower, []string{"recommend", "suggestion", "best", "top"}) {
		needs = append(needs, infoNeed{needRecommendation,
			fmt.Sprintf("gather material for recommendations on %q", text)})
	}

	if len(needs) == 0 {
		needs = append(needs, infoNeed{needGeneral,
			fmt.Sprintf("search for general information about %q", text)})
	}

	return needs
}

// capabilityForNeed maps an information need to an available capability,
// falling back to search for retrieval-shaped needs. Recommendation needs
// are covered by the final synthesis node and produce no retrieval step of
// their own beyond a search fallback.
func capabilityForNeed(kind needKind, pc *core.PlanContext) (core.Capability, bool) {
	preferred := map[needKind]core.Capability{
		needFactual:        core.CapabilitySearch,
		needDefinition:     core.CapabilitySearch,
		needComparison:     core.CapabilitySearch,
		needData:           core.CapabilityLocalData,
		needRecommendation: core.CapabilitySearch,
		needGeneral:        core.CapabilitySearch,
	}[kind]

	if pc.HasCapability(preferred) {
		return preferred, true
	}
	if pc.HasCapability(core.CapabilitySearch) {
		return core.CapabilitySearch, true
	}

	return "", false
}

// splitComparison extracts the two compared entities from queries shaped
// like "X vs Y" or "difference between X and Y".
func splitComparison(text string) (string, string, bool) {
	lower := strings.ToLower(text)

	if idx := strings.Index(lower, "difference between "); idx >= 0 {
		rest := text[idx+len("difference between "):]
		if parts := strings.SplitN(strings.ToLower(rest), " and ", 2); len(parts) == 2 {
			left := strings.TrimSpace(rest[:len(parts[0])])
			right := strings.TrimSpace(rest[len(parts[0])+len(" and "):])
			if left != "" && right != "" {
				return left, right, true
			}
		}
	}

	for _, sep := range []string{" versus ", " vs ", " vs. "} {
		if idx := strings.Index(lower, sep); idx >= 0 {
			left := strings.TrimSpace(text[:idx])
			right := strings.TrimSpace(strings.TrimSuffix(text[idx+len(sep):], "?"))
			if left != "" && right != "" {
				return left, right, true
			}
		}
	}

	return "", "", false
}
