package cep

import "time"

// preProc is the pre-processor half of a step's pre/post pair (spec
// §4.4): it admits incoming candidates and raw arrivals, grows chains,
// and decides what gets forwarded to the post-processor.
//
// pending and newAndEvery are the two persistent collections of spec §3's
// "PendingList per step" (the third, current, is the ephemeral slice of
// candidates being matched against the just-arrived input within a single
// ProcessArrival call — it is never retained across arrivals, so it is a
// local variable here rather than a field).
type preProc struct {
	step        *step
	pending     []*StateEvent
	newAndEvery []*StateEvent
}

// Admit receives a state event advanced from the previous step (spec
// §4.4's admit(state_event)). Under EVERY, pending accumulates
// concurrent candidates; otherwise the new candidate replaces whatever
// was pending, since a non-EVERY chain tracks a single live attempt per
// step (this is the mechanism behind spec §8 scenario S2: "A1 replaced by
// A2" — without replacement a second, independent completion would be
// emitted for the superseded candidate, which the scenario's expected
// output rules out).
func (pp *preProc) Admit(se *StateEvent) {
	if pp.step.pattern.every {
		pp.pending = append(pp.pending, se)
		return
	}
	pp.pending = []*StateEvent{se}
}

// AdmitEvery places se into new_and_every, marking it to survive the next
// reset boundary (spec §4.4's admit_every). Only meaningful on the start
// step's pre-processor, which is where the chain's EVERY loopback is
// wired (spec §4.5, §9).
func (pp *preProc) AdmitEvery(se *StateEvent) {
	se.skipReset = true
	pp.newAndEvery = append(pp.newAndEvery, se)
}

// Reset clears pending at a reset boundary, unless this is the start step
// of an EVERY pattern (spec §4.4's is_every flag).
func (pp *preProc) Reset() {
	if pp.step.pattern.every && pp.step.isStart {
		return
	}
	kept := pp.pending[:0]
	for _, se := range pp.pending {
		if se.skipReset {
			kept = append(kept, se)
		}
	}
	pp.pending = kept
}

// ProcessArrival runs one raw stream arrival through this step (spec
// §4.4). It returns the state events that reached this step's min and
// must be handed to the post-processor. sl identifies which side of a
// logical group the arrival is attributed to (ignored for count steps).
func (pp *preProc) ProcessArrival(ev StreamEvent, sl slot, now time.Time) []*StateEvent {
	if ev.Kind == EventReset {
		pp.Reset()
		return nil
	}

	if pp.step.kind == stepKindLogical {
		return pp.processLogicalArrival(ev, sl, now)
	}

	s := pp.step
	pattern := s.pattern

	// (i) drain new_and_every into pending.
	if len(pp.newAndEvery) > 0 {
		for _, se := range pp.newAndEvery {
			if pattern.every {
				pp.pending = append(pp.pending, se)
			} else {
				pp.pending = []*StateEvent{se}
			}
		}
		pp.newAndEvery = nil
	}

	passesFilter := s.filter == nil || s.filter(ev)

	// existing is a snapshot of the candidates that were pending before
	// this arrival; spawned collects any brand-new seeds created below.
	// Kept deliberately separate (rather than appended into pp.pending
	// up front) so that compacting existing's survivors can never alias
	// over — and silently drop — a seed appended moments earlier.
	existing := append([]*StateEvent(nil), pp.pending...)
	var spawned []*StateEvent
	var forwarded []*StateEvent

	if s.isStart {
		hasNonEmpty := false
		for _, se := range existing {
			if se.CountAt(s.pos) > 0 {
				hasNonEmpty = true
				break
			}
		}
		spawnSeed := !hasNonEmpty || pattern.every
		if spawnSeed && passesFilter {
			seed := NewStateEvent(pattern.numPositions, now)
			seed.Append(s.pos, ev)
			forwarded = append(forwarded, pp.advance(seed, now)...)
			if seed.CountAt(s.pos) < s.effectiveMax() {
				spawned = append(spawned, seed)
			}
		}
	}

	// Walk the candidates that existed before this arrival's seeding/spawn
	// pass and attempt to grow each one. A count of 0 at this position is
	// the ordinary state for a non-start step's first arrival here (the
	// candidate was handed over from the previous step with this position
	// still empty) — it is not special-cased; every existing candidate is
	// grown the same way.
	keptExisting := existing[:0]
	for _, se := range existing {
		if s.isStart && se.CountAt(s.pos) == 0 {
			// A drained EVERY loopback placeholder (see AdmitEvery): the
			// isStart branch above already spawned a dedicated fresh seed
			// for this arrival, so this inert placeholder is left
			// untouched rather than also being grown from the same
			// arrival — growing both would double-count a single A event
			// across two independent windows.
			keptExisting = append(keptExisting, se)
			continue
		}
		if se.CountAt(s.pos) >= s.effectiveMax() {
			// Already exhausted; should have been removed when it hit max.
			continue
		}
		if !passesFilter {
			keptExisting = append(keptExisting, se)
			continue
		}
		se.Append(s.pos, ev)
		forwarded = append(forwarded, pp.advance(se, now)...)
		if se.CountAt(s.pos) < s.effectiveMax() {
			keptExisting = append(keptExisting, se)
		}
	}
	pp.pending = append(keptExisting, spawned...)

	return forwarded
}

// effectiveMax treats an unbounded (max==0) step as growable without
// limit for the purposes of the retain-for-further-growth check.
func (s *step) effectiveMax() int {
	if s.max == 0 {
		return int(^uint(0) >> 1) // max int
	}
	return s.max
}

// advance checks se's chain length at this step's position against
// min/max and the pattern's WITHIN budget, forwarding a snapshot clone
// when min has been reached (spec §4.4). The original se is left in
// place for the caller to decide whether it stays in pending (still
// growable) or is dropped (max reached).
func (pp *preProc) advance(se *StateEvent, now time.Time) []*StateEvent {
	s := pp.step
	count := se.CountAt(s.pos)
	if count < s.min {
		return nil
	}
	if within := s.pattern.within; within > 0 && now.Sub(se.CreatedAt) > within {
		return nil
	}
	return []*StateEvent{se.Clone()}
}

// postProc is the post-processor half of a step's pre/post pair (spec
// §4.4): it receives a candidate that reached min at this step and either
// hands it to the next step's pre-processor or, for the last step,
// forwards it to the terminal bridge (looping back to the start step
// under EVERY).
type postProc struct {
	step *step
}

func (post *postProc) Handle(se *StateEvent, now time.Time) {
	s := post.step
	if s.isLast {
		s.pattern.complete(se, now)
		if s.pattern.every {
			loop := NewStateEvent(s.pattern.numPositions, now)
			s.pattern.steps[0].pre.AdmitEvery(loop)
		}
		return
	}
	s.next.pre.Admit(se)
}
