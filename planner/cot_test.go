package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaganthoutam/agentic-rag/core"
)

func TestCoTNoCapabilitiesFails(t *testing.T) {
	p := NewCoT()
	d := p.NextStep(planContext("anything"))
	assert.Equal(t, core.DecideFailed, d.Kind)
}

func TestCoTDepthFirstOrder(t *testing.T) {
	p := NewCoT()
	pc := planContext("compare Go vs Rust",
		core.CapabilityMemoryRead, core.CapabilitySearch, core.CapabilityGenerative)

	var steps []*core.Step
	for {
		d := p.NextStep(pc)
		if d.Kind != core.DecideStep {
			require.Equal(t, core.DecideDone, d.Kind)
			assert.False(t, d.Partial)
			break
		}
		steps = append(steps, d.Step)
		observe(pc, d.Step, 0.7, "evidence "+d.Step.ID)
	}

	// memory check, the comparison sub-question, its two per-entity
	// children (depth-first), then synthesis.
	require.Len(t, steps, 5)
	assert.Equal(t, core.CapabilityMemoryRead, steps[0].Capability)
	assert.Equal(t, core.CapabilitySearch, steps[1].Capability)
	assert.Contains(t, steps[2].Description, "Go")
	assert.Contains(t, steps[3].Description, "Rust")
	assert.Equal(t, core.CapabilityGenerative, steps[4].Capability)
}

func TestCoTPrunesIrrelevantSubtree(t *testing.T) {
	p := NewCoT(func(o *CoTOptions) { o.IrrelevanceFloor = 0.3 })
	pc := planContext("compare Go vs Rust",
		core.CapabilitySearch, core.CapabilityGenerative)

	d := p.NextStep(pc)
	require.Equal(t, core.DecideStep, d.Kind)
	comparison := d.Step
	observe(pc, comparison, 0.1) // below floor: subtree must be pruned

	d = p.NextStep(pc)
	require.Equal(t, core.DecideStep, d.Kind)
	assert.Equal(t, core.CapabilityGenerative, d.Step.Capability)
	observe(pc, d.Step, 0.9, "answer")

	d = p.NextStep(pc)
	assert.Equal(t, core.DecideDone, d.Kind)
}

func TestCoTMaxDepthOneStaysFlat(t *testing.T) {
	p := NewCoT(func(o *CoTOptions) { o.MaxDepth = 1 })
	pc := planContext("compare Go vs Rust",
		core.CapabilitySearch, core.CapabilityGenerative)

	var steps []*core.Step
	for {
		d := p.NextStep(pc)
		if d.Kind != core.DecideStep {
			break
		}
		steps = append(steps, d.Step)
		observe(pc, d.Step, 0.7, "evidence "+d.Step.ID)
	}

	// No refinement children at depth 1: just the comparison lookup and
	// synthesis.
	require.Len(t, steps, 2)
}

func TestCoTDataNeedRefinesIntoCloud(t *testing.T) {
	p := NewCoT()
	pc := planContext("revenue data by quarter",
		core.CapabilityLocalData, core.CapabilityCloud, core.CapabilityGenerative)

	var caps []core.Capability
	for {
		d := p.NextStep(pc)
		if d.Kind != core.DecideStep {
			break
		}
		caps = append(caps, d.Step.Capability)
		observe(pc, d.Step, 0.7, "evidence "+d.Step.ID)
	}

	assert.Equal(t, []core.Capability{
		core.CapabilityLocalData,
		core.CapabilityCloud,
		core.CapabilityGenerative,
	}, caps)
}

func TestCoTFallsBackToSearch(t *testing.T) {
	p := NewCoT()
	// Data need with no local-data agent falls back to search.
	pc := planContext("statistics on rainfall",
		core.CapabilitySearch, core.CapabilityGenerative)

	d := p.NextStep(pc)
	require.Equal(t, core.DecideStep, d.Kind)
	assert.Equal(t, core.CapabilitySearch, d.Step.Capability)
}

func TestCoTConcurrentQueriesKeepSeparatePlans(t *testing.T) {
	p := NewCoT()
	pcA := planContext("compare Go vs Rust", core.CapabilitySearch, core.CapabilityGenerative)
	pcB := planContext("what is a monad", core.CapabilitySearch, core.CapabilityGenerative)

	dA := p.NextStep(pcA)
	dB := p.NextStep(pcB)

	require.Equal(t, core.DecideStep, dA.Kind)
	require.Equal(t, core.DecideStep, dB.Kind)
	assert.NotEqual(t, dA.Step.ID, dB.Step.ID)

	// Interleaved progress on A must not disturb B's plan.
	observe(pcA, dA.Step, 0.7, "evidence")
	dA2 := p.NextStep(pcA)
	require.Equal(t, core.DecideStep, dA2.Kind)

	dB2 := p.NextStep(pcB)
	require.Equal(t, core.DecideStep, dB2.Kind)
	assert.Equal(t, dB.Step.ID, dB2.Step.ID)
}

func TestCoTPlanStateScopedToRun(t *testing.T) {
	p := NewCoT()

	// Runs abandoned mid-plan and runs that fail outright leave their
	// compiled plan on the run context, not on the shared planner.
	for i := 0; i < 100; i++ {
		pc := planContext("compare Go vs Rust",
			core.CapabilitySearch, core.CapabilityGenerative)
		d := p.NextStep(pc)
		require.Equal(t, core.DecideStep, d.Kind)
		assert.NotNil(t, pc.State)
	}
	require.Equal(t, core.DecideFailed, p.NextStep(planContext("anything")).Kind)

	// A fresh context for an already-seen query text compiles a fresh plan
	// from the top.
	pcA := planContext("compare Go vs Rust", core.CapabilitySearch, core.CapabilityGenerative)
	pcB := planContext("compare Go vs Rust", core.CapabilitySearch, core.CapabilityGenerative)
	dA := p.NextStep(pcA)
	dB := p.NextStep(pcB)
	require.Equal(t, core.DecideStep, dA.Kind)
	require.Equal(t, core.DecideStep, dB.Kind)
	assert.NotEqual(t, dA.Step.ID, dB.Step.ID)
}

func TestSplitComparison(t *testing.T) {
	tests := []struct {
		text        string
		left, right string
		ok          bool
	}{
		{"Go vs Rust", "Go", "Rust", true},
		{"Go versus Rust", "Go", "Rust", true},
		{"difference between apples and oranges", "apples", "oranges", true},
		{"what is Go", "", "", false},
	}

	for _, tt := range tests {
		left, right, ok := splitComparison(tt.text)
		assert.Equal(t, tt.ok, ok, tt.text)
		if tt.ok {
			assert.Equal(t, tt.left, left, tt.text)
			assert.Equal(t, tt.right, right, tt.text)
		}
	}
}
