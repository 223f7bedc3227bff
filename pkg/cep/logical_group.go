package cep

import "time"

// processLogicalArrival runs one raw arrival through a logical AND/OR
// group (spec §4.4). AND requires both sides populated before
// forwarding; OR forwards as soon as either side accepts, and the first
// acceptance removes the candidate so the other side's later arrival
// cannot re-trigger it.
func (pp *preProc) processLogicalArrival(ev StreamEvent, sl slot, now time.Time) []*StateEvent {
	s := pp.step
	pattern := s.pattern

	// Drain new_and_every to keep the contract uniform with count steps.
	// A logical group only grows candidates already in pending and never
	// seeds a fresh state event, so a pattern whose first element is a
	// logical group accepts arrivals but emits no match.
	if len(pp.newAndEvery) > 0 {
		pp.pending = append(pp.pending, pp.newAndEvery...)
		pp.newAndEvery = nil
	}

	var cfg StepConfig
	var pos int
	switch sl {
	case slotLeft:
		cfg, pos = s.left, s.leftPos
	case slotRight:
		cfg, pos = s.right, s.rightPos
	default:
		return nil
	}
	if cfg.Filter != nil && !cfg.Filter(ev) {
		return nil
	}

	var forwarded []*StateEvent
	kept := pp.pending[:0]
	for _, se := range pp.pending {
		if se.CountAt(pos) > 0 {
			// This side already satisfied for this candidate.
			kept = append(kept, se)
			continue
		}
		se.Append(pos, ev)

		if within := pattern.within; within > 0 && now.Sub(se.CreatedAt) > within {
			continue // expired, drop
		}

		switch s.logicalKind {
		case LogicalAnd:
			if se.CountAt(s.leftPos) > 0 && se.CountAt(s.rightPos) > 0 {
				forwarded = append(forwarded, se.Clone())
				continue // complete: not retained
			}
			kept = append(kept, se)
		case LogicalOr:
			forwarded = append(forwarded, se.Clone())
			// Complete as soon as one side accepts; not retained.
		}
	}
	pp.pending = kept

	return forwarded
}
