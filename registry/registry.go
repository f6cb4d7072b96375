package registry

import (
	"sort"
	"sync"

	"github.com/jaganthoutam/agentic-rag/core"
)

// Registry maps capability tags to the agents that provide them.
//
// All methods are safe for concurrent use. Registration is typically
// completed during initialization before runs start, but replacing or
// adding agents while runs are in flight is safe: each Resolve call
// returns a snapshot slice that later mutations do not affect.
type Registry struct {
	agents map[core.Capability][]core.Agent
	byID   map[string]core.Agent
	mu     sync.RWMutex
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		agents: make(map[core.Capability][]core.Agent),
		byID:   make(map[string]core.Agent),
	}
}

// Register adds an agent under the given capability tags. An agent may be
// registered under several capabilities; registering the same agent twice
// under the same capability is a no-op for that capability.
func (r *Registry) Register(a core.Agent, caps ...core.Capability) {
	r.mu.Lock()
	defer r.mu.Unlock()

	info := a.Info()
	r.byID[info.ID] = a

	for _, c := range caps {
		if r.containsLocked(c, info.ID) {
			continue
		}
		r.agents[c] = append(r.agents[c], a)
	}
}

func (r *Registry) containsLocked(c core.Capability, id string) bool {
	for _, existing := range r.agents[c] {
		if existing.Info().ID == id {
			return true
		}
	}
	return false
}

// Resolve returns all agents registered under the capability. The returned
// slice is a copy and safe to retain across later registrations.
func (r *Registry) Resolve(c core.Capability) []core.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := r.agents[c]
	if len(matched) == 0 {
		return nil
	}

	out := make([]core.Agent, len(matched))
	copy(out, matched)

	return out
}

// Get retrieves a registered agent by its ID.
func (r *Registry) Get(id string) (core.Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	return a, ok
}

// Capabilities returns the sorted list of capabilities that currently have
// at least one agent registered. Planners use this to decide which step
// kinds are dispatchable.
func (r *Registry) Capabilities() []core.Capability {
	r.mu.RLock()
	defer r.mu.RUnlock()

	caps := make([]core.Capability, 0, len(r.agents))
	for c, agents := range r.agents {
		if len(agents) == 0 {
			continue
		}
		caps = append(caps, c)
	}

	sort.Slice(caps, func(i, j int) bool { return caps[i] < caps[j] })

	return caps
}

// Len returns the number of distinct registered agents.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
