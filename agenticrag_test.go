package agenticrag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaganthoutam/agentic-rag/agent"
	"github.com/jaganthoutam/agentic-rag/config"
	"github.com/jaganthoutam/agentic-rag/core"
	"github.com/jaganthoutam/agentic-rag/memory"
	"github.com/jaganthoutam/agentic-rag/model"
	"github.com/jaganthoutam/agentic-rag/orchestrator"
)

func TestAskWithManualWiring(t *testing.T) {
	a := New()

	store := memory.NewShortTerm()
	a.RegisterAgent(agent.NewMemoryReader(store), core.CapabilityMemoryRead)
	a.RegisterAgent(agent.NewGenerative(model.NewMockModel("test-model")), core.CapabilityGenerative)

	res, err := a.Ask(context.Background(), "what is retrieval augmented generation?")
	require.NoError(t, err)

	assert.Equal(t, orchestrator.StatusSuccess, res.Status)
	assert.NotEmpty(t, res.Aggregated.Documents)
}

func TestFromConfigDefaults(t *testing.T) {
	t.Setenv("ARAG_TEST_FACADE_LOG_LEVEL", "error")

	cfg, err := config.New[config.App]("ARAG_TEST_FACADE")
	require.NoError(t, err)

	a, err := FromConfig(context.Background(), cfg)
	require.NoError(t, err)

	// Defaults wire only the memory reader and the mock-backed generative
	// agent; search, local data and cloud stay disabled.
	res, err := a.Ask(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, orchestrator.StatusSuccess, res.Status)

	stats := a.MemoryStats()
	require.NotEmpty(t, stats)
	assert.Equal(t, "short_term", stats[0].Tier)
}

func TestFromConfigRejectsBadStrategy(t *testing.T) {
	cfg := &config.App{
		Planner: config.Planner{Strategy: "oracle"},
		Model:   config.Model{Provider: "mock"},
	}

	_, err := FromConfig(context.Background(), cfg)
	assert.Error(t, err)
}

func TestFromConfigCoTStrategy(t *testing.T) {
	t.Setenv("ARAG_TEST_COT_LOG_LEVEL", "error")
	t.Setenv("ARAG_TEST_COT_PLANNER_STRATEGY", "cot")

	cfg, err := config.New[config.App]("ARAG_TEST_COT")
	require.NoError(t, err)

	a, err := FromConfig(context.Background(), cfg)
	require.NoError(t, err)

	res, err := a.Ask(context.Background(), "what is a vector database?")
	require.NoError(t, err)
	assert.Equal(t, orchestrator.StatusSuccess, res.Status)
}
