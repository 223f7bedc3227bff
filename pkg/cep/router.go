package cep

// binding is one (step, slot) target a stream can be routed to.
type binding struct {
	step *step
	slot slot
}

// router dispatches arrivals on a stream to the correct pre-processor(s)
// (spec §4.6). When a single stream feeds only one chain position, the
// arrival always goes there. When the same stream feeds K positions, a
// per-stream counter selects position c mod K and advances, so each
// arrival is delivered to exactly one binding — never broadcast to all K
// and never delivered twice to the same junction subscription.
type router struct {
	bindings map[string][]binding
	counters map[string]uint64
}

func newRouter() *router {
	return &router{bindings: make(map[string][]binding), counters: make(map[string]uint64)}
}

func (r *router) subscribe(streamID string, s *step, sl slot) {
	r.bindings[streamID] = append(r.bindings[streamID], binding{step: s, slot: sl})
}

// dispatch returns the single binding this arrival on streamID should be
// routed to, or false if nothing in the pattern subscribes to streamID
// (spec §6: "unknown stream ids at on_event are ignored").
func (r *router) dispatch(streamID string) (binding, bool) {
	targets := r.bindings[streamID]
	k := len(targets)
	if k == 0 {
		return binding{}, false
	}
	if k == 1 {
		return targets[0], true
	}
	c := r.counters[streamID]
	r.counters[streamID] = c + 1
	return targets[c%uint64(k)], true
}
