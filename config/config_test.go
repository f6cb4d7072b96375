package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppliesDefaults(t *testing.T) {
	cfg, err := New[Runtime]("ARAG_TEST_DEFAULTS")
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.MaxAgentsPerStep)
	assert.Equal(t, 30*time.Second, cfg.AgentTimeout)
	assert.Equal(t, 2*time.Minute, cfg.PlanTimeout)
	assert.Equal(t, 50, cfg.MaxSteps)
	assert.InDelta(t, 0.8, cfg.MemoryHitThreshold, 1e-9)
}

func TestNewReadsEnvironment(t *testing.T) {
	t.Setenv("ARAG_TEST_ENV_MAX_STEPS", "7")
	t.Setenv("ARAG_TEST_ENV_AGENT_TIMEOUT", "5s")
	t.Setenv("ARAG_TEST_ENV_CONFIDENCE_FLOOR", "0.25")

	cfg, err := New[Runtime]("ARAG_TEST_ENV")
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.MaxSteps)
	assert.Equal(t, 5*time.Second, cfg.AgentTimeout)
	assert.InDelta(t, 0.25, cfg.ConfidenceFloor, 1e-9)
}

func TestNewNestedApp(t *testing.T) {
	t.Setenv("ARAG_TEST_APP_LOG_LEVEL", "debug")
	t.Setenv("ARAG_TEST_APP_PLANNER_STRATEGY", "cot")
	t.Setenv("ARAG_TEST_APP_MEMORY_TTL", "30m")
	t.Setenv("ARAG_TEST_APP_LOCAL_DATA_ROOT", "/srv/datasets")

	cfg, err := New[App]("ARAG_TEST_APP")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "cot", cfg.Planner.Strategy)
	assert.Equal(t, 30*time.Minute, cfg.Memory.TTL)
	assert.Equal(t, "/srv/datasets", cfg.LocalData.Root)
	assert.NoError(t, cfg.Validate())
}

func TestNewEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path,
		[]byte("ARAG_TEST_FILE_MAX_STEPS=3\n"), 0o644))

	// Process environment wins over file values.
	t.Setenv("ARAG_TEST_FILE_RECALL_LIMIT", "9")

	cfg, err := New[Runtime]("ARAG_TEST_FILE", func(o *Options) { o.EnvFile = path })
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.MaxSteps)
	assert.Equal(t, 9, cfg.RecallLimit)
}

func TestNewEnvFileMissing(t *testing.T) {
	_, err := New[Runtime]("ARAG_TEST_MISSING", func(o *Options) {
		o.EnvFile = filepath.Join(t.TempDir(), "nope.env")
	})
	assert.Error(t, err)
}

func TestPlannerValidate(t *testing.T) {
	assert.NoError(t, Planner{Strategy: "react"}.Validate())
	assert.NoError(t, Planner{Strategy: "CoT"}.Validate())
	assert.Error(t, Planner{Strategy: "oracle"}.Validate())
}

func TestModelValidate(t *testing.T) {
	assert.NoError(t, Model{Provider: "mock"}.Validate())
	assert.Error(t, Model{Provider: "llama-at-home"}.Validate())
}
