package cep

import (
	"time"

	"go.jetify.com/typeid"
)

// EventKind tags the role of a StreamEvent within its originating stream
// (spec §3).
type EventKind uint8

const (
	EventCurrent EventKind = iota
	EventExpired
	EventTimer
	EventReset
)

// AttributeRow is an ordered set of named attribute values, addressed by
// index (the index<->name mapping is owned by the stream schema, which is
// outside the core per spec §1).
type AttributeRow []AttributeValue

// At returns the value at idx, or Null if idx is out of range.
func (r AttributeRow) At(idx int) AttributeValue {
	if idx < 0 || idx >= len(r) {
		return Null
	}
	return r[idx]
}

// StreamEvent is an immutable input row, optionally chained to the next
// event accepted at the same state-event position (spec §3).
type StreamEvent struct {
	StreamID         string
	Timestamp        time.Time
	Kind             EventKind
	BeforeWindowData AttributeRow
	OutputData       AttributeRow
	Seq              uint64 // arrival sequence number, used to break timestamp ties (spec §5)
	Next             *StreamEvent
}

// Attr reads attrIdx from BeforeWindowData, falling back to OutputData
// (spec §4.2).
func (e StreamEvent) Attr(attrIdx int) AttributeValue {
	if v := e.BeforeWindowData.At(attrIdx); !v.IsNull() {
		return v
	}
	return e.OutputData.At(attrIdx)
}

// Position holds the (possibly empty) stream-event chain accepted at one
// pattern position of a StateEvent (spec §3).
type Position struct {
	head  *StreamEvent
	tail  *StreamEvent
	count int
}

// Chain returns an ordered view of the stream events at this position,
// head first. Empty when the position has not been populated (spec §4.1).
func (p *Position) Chain() []StreamEvent {
	out := make([]StreamEvent, 0, p.count)
	for ev := p.head; ev != nil; ev = ev.Next {
		out = append(out, *ev)
	}
	return out
}

// Count returns the chain length (spec §4.1).
func (p *Position) Count() int { return p.count }

// Append adds ev to the tail of the chain, lazily allocating the head
// (spec §4.1). The caller is responsible for the prefix invariant.
func (p *Position) Append(ev StreamEvent) {
	ev.Next = nil
	node := ev
	if p.head == nil {
		p.head = &node
		p.tail = &node
	} else {
		p.tail.Next = &node
		p.tail = &node
	}
	p.count++
}

// Populated reports whether this position has at least one accepted event.
func (p *Position) Populated() bool { return p.count > 0 }

// clone deep-copies the chain: state events are logically shared-immutable,
// but cloning (sliding windows, EVERY loopback) duplicates the underlying
// data so each clone can grow independently (spec §3 Ownership).
func (p Position) clone() Position {
	var out Position
	for ev := p.head; ev != nil; ev = ev.Next {
		cp := *ev
		cp.Next = nil
		out.Append(cp)
	}
	return out
}

// StateEvent is a composite object representing a partial or completed
// match: one chain per pattern position (spec §3).
type StateEvent struct {
	ID         string
	Positions  []Position
	CreatedAt  time.Time
	FlatRow    FlatRow
	flattened  bool
	skipReset  bool // set by AdmitEvery: this event must survive the next reset boundary
}

// NewStateEvent allocates a fresh state event with numPositions empty
// positions, stamped at createdAt (spec §3 Lifecycle).
func NewStateEvent(numPositions int, createdAt time.Time) *StateEvent {
	tid, err := typeid.WithPrefix("state")
	id := ""
	if err == nil {
		id = tid.String()
	}
	return &StateEvent{
		ID:        id,
		Positions: make([]Position, numPositions),
		CreatedAt: createdAt,
	}
}

// Clone duplicates the state event, including deep copies of every
// position's chain, for sliding-window/EVERY spawns (spec §3 Ownership).
func (s *StateEvent) Clone() *StateEvent {
	cp := &StateEvent{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		Positions: make([]Position, len(s.Positions)),
	}
	for i, p := range s.Positions {
		cp.Positions[i] = p.clone()
	}
	if tid, err := typeid.WithPrefix("state"); err == nil {
		cp.ID = tid.String()
	}
	return cp
}

// FlatRow is the single downstream row produced by the terminal bridge
// (spec §4.7): one AttributeRow per pattern position.
type FlatRow struct {
	PatternID string
	Rows      []AttributeRow
	Timestamp time.Time
}
