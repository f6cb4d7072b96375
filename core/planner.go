package core

import "time"

// PlannerState labels the phases of an iterative planning loop. Exposed for
// logging and introspection; orchestration logic keys off Decision values,
// not states.
type PlannerState string

const (
	// StateThinking means the planner is choosing the next step.
	StateThinking PlannerState = "thinking"
	// StateActing means a chosen step is being dispatched.
	StateActing PlannerState = "acting"
	// StateObserving means a dispatch result is being folded back in.
	StateObserving PlannerState = "observing"
	// StateDone means the planner declared the query answerable.
	StateDone PlannerState = "done"
	// StateFailed means the planner hit an unrecoverable error.
	StateFailed PlannerState = "failed"
)

// DecisionKind discriminates the three possible planner verdicts.
type DecisionKind int

const (
	// DecideStep emits the next step to dispatch.
	DecideStep DecisionKind = iota
	// DecideDone declares the plan complete (possibly partial).
	DecideDone
	// DecideFailed declares an unrecoverable planning error.
	DecideFailed
)

// Decision is the planner's verdict for one iteration of the loop.
// Partial is set on DecideDone when a bound (max steps, plan timeout)
// forced completion before the plan ran out naturally.
type Decision struct {
	Kind    DecisionKind
	Step    *Step
	Partial bool
	Reason  string
}

// NextStepDecision wraps a step into a DecideStep verdict.
func NextStepDecision(s *Step) Decision { return Decision{Kind: DecideStep, Step: s} }

// DoneDecision declares completion; partial marks bound-forced completion.
func DoneDecision(partial bool, reason string) Decision {
	return Decision{Kind: DecideDone, Partial: partial, Reason: reason}
}

// FailedDecision declares an unrecoverable planning error.
func FailedDecision(reason string) Decision {
	return Decision{Kind: DecideFailed, Reason: reason}
}

// Observation is the fused outcome of one dispatched step, fed back into
// the planner's context.
type Observation struct {
	Step   *Step
	Result *AggregatedResult
}

// PlanContext is the running state of one orchestration handed to the
// planner on every NextStep call: the query, the capabilities currently
// registered, recalled memory, and all observations so far. The
// orchestrator owns it; planners read it.
type PlanContext struct {
	Query        Query
	Capabilities []Capability
	Memory       []MemoryEntry
	Observations []Observation
	StartedAt    time.Time

	// State is planner-private scratch space scoped to this run. It is
	// discarded with the context however the run ends; the orchestrator
	// never reads it.
	State any
}

// HasCapability reports whether at least one registered agent carries the tag.
func (pc *PlanContext) HasCapability(c Capability) bool {
	for _, have := range pc.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

// Observed reports whether a step bound to the capability has already been
// dispatched and observed in this run.
func (pc *PlanContext) Observed(c Capability) bool {
	for _, obs := range pc.Observations {
		if obs.Step != nil && obs.Step.Capability == c {
			return true
		}
	}
	return false
}

// Documents flattens all observed documents in observation order, skipping
// duplicates by id. Used to build the evidence context for later steps.
func (pc *PlanContext) Documents() []*Document {
	seen := make(map[string]struct{})
	var docs []*Document
	for _, obs := range pc.Observations {
		if obs.Result == nil {
			continue
		}
		for _, d := range obs.Result.Documents {
			if _, ok := seen[d.ID]; ok {
				continue
			}
			seen[d.ID] = struct{}{}
			docs = append(docs, d)
		}
	}
	return docs
}

// Planner produces the next step (or declares completion/failure) given the
// query and everything observed so far. Two interchangeable strategies
// implement it (ReAct and Chain-of-Thought), selected at orchestrator
// construction time.
type Planner interface {
	Name() string
	NextStep(pc *PlanContext) Decision
}
