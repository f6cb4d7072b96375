package core

import (
	"fmt"

	"github.com/google/uuid"
)

// StepStatus tracks the lifecycle of a single plan step. The orchestrator
// owns dispatch status transitions; planners may additionally mark steps
// skipped before dispatch.
type StepStatus string

const (
	// StepPending marks a step that has not been dispatched yet.
	StepPending StepStatus = "pending"
	// StepRunning marks a step currently being dispatched to agents.
	StepRunning StepStatus = "running"
	// StepDone marks a step that produced at least one agent result.
	StepDone StepStatus = "done"
	// StepFailed marks a step with no eligible agents or no usable results.
	StepFailed StepStatus = "failed"
	// StepSkipped marks a step dropped by the planner (CoT subtree pruning).
	StepSkipped StepStatus = "skipped"
)

// Step is one unit of planned work bound to an agent capability.
type Step struct {
	ID          string
	Capability  Capability
	Description string
	Status      StepStatus
}

// NewStep creates a pending Step for the given capability.
func NewStep(capability Capability, description string) *Step {
	return &Step{
		ID:          uuid.NewString(),
		Capability:  capability,
		Description: description,
		Status:      StepPending,
	}
}

func (s *Step) String() string {
	return fmt.Sprintf("step %s [%s] %s", s.ID, s.Capability, s.Status)
}

// Plan is the ordered sequence of steps produced for one query. It exists
// only for the duration of the request.
type Plan struct {
	ID      string
	QueryID string
	Steps   []*Step
}

// NewPlan creates an empty Plan owned by the given query.
func NewPlan(queryID string) *Plan {
	return &Plan{ID: uuid.NewString(), QueryID: queryID}
}

// Append adds a step to the end of the plan.
func (p *Plan) Append(s *Step) { p.Steps = append(p.Steps, s) }
