package cep

import (
	"time"

	"go.jetify.com/typeid"
)

// CompiledPattern is the immutable topology produced by Builder.Build
// (spec §4.5): wired pre/post step pairs, the router, and the terminal
// bridge, plus the per-instance mutable state (pending lists, router
// counters) that OnEvent advances.
type CompiledPattern struct {
	ID           string
	stateType    StateType
	every        bool
	within       time.Duration
	numPositions int
	steps        []*step
	router       *router
	emit         EmitFunc
	seq          uint64
}

// newCompiledPattern wires the builder's chain elements into a flat
// []*step, allocating contiguous position ids (simple step: 1, logical
// group: 2, per spec §4.5), and hands each stream's bindings to the
// router. Grounded on the teacher's NewEventStore (construct-and-wire)
// and BuildDecisionModel (assemble + combine several pieces into one
// result).
func newCompiledPattern(b *Builder, registry StreamRegistry, emit EmitFunc) (*CompiledPattern, error) {
	tid, err := typeid.WithPrefix("pattern")
	id := ""
	if err == nil {
		id = tid.String()
	}

	cp := &CompiledPattern{
		ID:        id,
		stateType: b.stateType,
		every:     b.every,
		within:    b.within,
		router:    newRouter(),
		emit:      emit,
	}

	pos := 0
	steps := make([]*step, 0, len(b.elems))
	for _, e := range b.elems {
		if e.simple != nil {
			s := &step{
				index:    len(steps),
				kind:     stepKindCount,
				pos:      pos,
				streamID: e.simple.StreamID,
				min:      e.simple.Min,
				max:      e.simple.Max,
				filter:   e.simple.Filter,
				pattern:  cp,
			}
			pos++
			steps = append(steps, s)
		} else {
			s := &step{
				index:       len(steps),
				kind:        stepKindLogical,
				logicalKind: e.logical.Kind,
				leftPos:     pos,
				rightPos:    pos + 1,
				left:        e.logical.Left,
				right:       e.logical.Right,
				pattern:     cp,
			}
			pos += 2
			steps = append(steps, s)
		}
	}
	cp.numPositions = pos
	cp.steps = steps

	for i, s := range steps {
		s.isStart = i == 0
		s.isLast = i == len(steps)-1
		s.pre = &preProc{step: s}
		s.post = &postProc{step: s}
		if !s.isLast {
			s.next = steps[i+1]
		}
		switch s.kind {
		case stepKindCount:
			cp.router.subscribe(s.streamID, s, slotMain)
		case stepKindLogical:
			cp.router.subscribe(s.left.StreamID, s, slotLeft)
			cp.router.subscribe(s.right.StreamID, s, slotRight)
		}
	}

	return cp, nil
}

// OnEvent is the input surface (spec §6): it routes a raw arrival on
// streamID to the correct pre-processor(s) and drives the resulting
// advancement to quiescence before returning (spec §5: single-entry, runs
// to completion, no suspension points).
func (cp *CompiledPattern) OnEvent(streamID string, ev StreamEvent) error {
	b, ok := cp.router.dispatch(streamID)
	if !ok {
		return nil // unknown stream id: ignored, spec §6
	}
	cp.seq++
	ev.Seq = cp.seq
	ev.StreamID = streamID

	now := ev.Timestamp
	forwarded := b.step.pre.ProcessArrival(ev, b.slot, now)
	for _, se := range forwarded {
		b.step.post.Handle(se, now)
	}
	return nil
}

// complete flattens and emits a state event that satisfied every
// position's min (spec §4.7).
func (cp *CompiledPattern) complete(se *StateEvent, now time.Time) {
	if !se.flattened {
		se.FlatRow = flatten(se, cp.ID, se.CreatedAt)
		se.flattened = true
	}
	if cp.emit == nil {
		return
	}
	cp.emit(se.FlatRow, now)
}
