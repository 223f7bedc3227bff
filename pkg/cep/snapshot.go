package cep

import "fmt"

// Snapshot is the logical persisted-state tuple named in spec §6: each
// step's pending and new_and_every state events (which carry their own
// WITHIN creation timestamps), plus the per-stream router counters. The
// byte format of any durable encoding is out of scope for the core
// (pkg/cep/persistence owns that); this is the in-memory tuple.
type Snapshot struct {
	Steps          []StepSnapshot
	RouterCounters map[string]uint64
}

// StepSnapshot captures one step's mutable pre-processor state.
type StepSnapshot struct {
	Pending     []*StateEvent
	NewAndEvery []*StateEvent
}

// Snapshot captures the pattern's current in-flight state (spec §6).
func (cp *CompiledPattern) Snapshot() Snapshot {
	out := Snapshot{
		Steps:          make([]StepSnapshot, len(cp.steps)),
		RouterCounters: make(map[string]uint64, len(cp.router.counters)),
	}
	for i, s := range cp.steps {
		out.Steps[i] = StepSnapshot{
			Pending:     append([]*StateEvent(nil), s.pre.pending...),
			NewAndEvery: append([]*StateEvent(nil), s.pre.newAndEvery...),
		}
	}
	for k, v := range cp.router.counters {
		out.RouterCounters[k] = v
	}
	return out
}

// Restore replaces the pattern's in-flight state with a previously
// captured Snapshot (spec §6). The topology (steps, wiring, router
// bindings) is assumed unchanged; only mutable state is restored.
func (cp *CompiledPattern) Restore(s Snapshot) error {
	if len(s.Steps) != len(cp.steps) {
		return newConfigError("Restore", "steps", "",
			fmt.Errorf("snapshot has %d steps, compiled pattern has %d", len(s.Steps), len(cp.steps)))
	}
	for i, step := range cp.steps {
		step.pre.pending = append([]*StateEvent(nil), s.Steps[i].Pending...)
		step.pre.newAndEvery = append([]*StateEvent(nil), s.Steps[i].NewAndEvery...)
	}
	cp.router.counters = make(map[string]uint64, len(s.RouterCounters))
	for streamID, c := range s.RouterCounters {
		cp.router.counters[streamID] = c
	}
	return nil
}
