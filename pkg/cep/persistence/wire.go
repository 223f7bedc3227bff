package persistence

import (
	"time"

	"cepcore/pkg/cep"
)

// This file owns the translation between cep's in-memory Snapshot tuple
// and the JSONB wire shape declared in store.go. The core (pkg/cep)
// keeps its Position internals unexported; this package only ever talks
// to it through cep's exported accessors (ChainAt/CountAt/Append,
// NewStateEvent), never through struct literals of unexported fields.

func toWireSnapshot(snap cep.Snapshot) wireSnapshot {
	out := wireSnapshot{
		Steps:          make([]wireStepSnapshot, len(snap.Steps)),
		RouterCounters: snap.RouterCounters,
	}
	for i, step := range snap.Steps {
		out.Steps[i] = wireStepSnapshot{
			Pending:     toWireStateEvents(step.Pending),
			NewAndEvery: toWireStateEvents(step.NewAndEvery),
		}
	}
	return out
}

func toWireStateEvents(events []*cep.StateEvent) []wireStateEvent {
	out := make([]wireStateEvent, len(events))
	for i, se := range events {
		out[i] = toWireStateEvent(se)
	}
	return out
}

func toWireStateEvent(se *cep.StateEvent) wireStateEvent {
	positions := make([]wirePosition, len(se.Positions))
	for i := range se.Positions {
		chain := se.ChainAt(i)
		positions[i] = wirePosition{Chain: toWireStreamEvents(chain)}
	}
	return wireStateEvent{
		ID:        se.ID,
		CreatedAt: se.CreatedAt.UnixNano(),
		Positions: positions,
		FlatRow:   toWireRows(se.FlatRow.Rows),
	}
}

func toWireStreamEvents(chain []cep.StreamEvent) []wireStreamEvent {
	out := make([]wireStreamEvent, len(chain))
	for i, ev := range chain {
		out[i] = wireStreamEvent{
			StreamID:         ev.StreamID,
			Timestamp:        ev.Timestamp.UnixNano(),
			Kind:             uint8(ev.Kind),
			BeforeWindowData: toWireRow(ev.BeforeWindowData),
			OutputData:       toWireRow(ev.OutputData),
			Seq:              ev.Seq,
		}
	}
	return out
}

func toWireRows(rows []cep.AttributeRow) []wireAttributeRow {
	out := make([]wireAttributeRow, len(rows))
	for i, r := range rows {
		out[i] = toWireRow(r)
	}
	return out
}

func toWireRow(row cep.AttributeRow) wireAttributeRow {
	out := make(wireAttributeRow, len(row))
	for i, v := range row {
		out[i] = wireAttributeValue{
			Kind:    uint8(v.Kind),
			Bool:    v.Bool,
			Int32:   v.Int32,
			Int64:   v.Int64,
			Float64: v.Float64,
			String:  v.String,
		}
	}
	return out
}

func fromWireSnapshot(wire wireSnapshot) cep.Snapshot {
	out := cep.Snapshot{
		Steps:          make([]cep.StepSnapshot, len(wire.Steps)),
		RouterCounters: wire.RouterCounters,
	}
	if out.RouterCounters == nil {
		out.RouterCounters = make(map[string]uint64)
	}
	for i, step := range wire.Steps {
		out.Steps[i] = cep.StepSnapshot{
			Pending:     fromWireStateEvents(step.Pending),
			NewAndEvery: fromWireStateEvents(step.NewAndEvery),
		}
	}
	return out
}

func fromWireStateEvents(events []wireStateEvent) []*cep.StateEvent {
	out := make([]*cep.StateEvent, len(events))
	for i, w := range events {
		out[i] = fromWireStateEvent(w)
	}
	return out
}

func fromWireStateEvent(w wireStateEvent) *cep.StateEvent {
	createdAt := time.Unix(0, w.CreatedAt).UTC()
	se := cep.NewStateEvent(len(w.Positions), createdAt)
	se.ID = w.ID
	for pos, wp := range w.Positions {
		for _, wev := range wp.Chain {
			se.Append(pos, fromWireStreamEvent(wev))
		}
	}
	se.FlatRow = cep.FlatRow{Rows: fromWireRows(w.FlatRow), Timestamp: createdAt}
	return se
}

func fromWireStreamEvent(w wireStreamEvent) cep.StreamEvent {
	return cep.StreamEvent{
		StreamID:         w.StreamID,
		Timestamp:        time.Unix(0, w.Timestamp).UTC(),
		Kind:             cep.EventKind(w.Kind),
		BeforeWindowData: fromWireRow(w.BeforeWindowData),
		OutputData:       fromWireRow(w.OutputData),
		Seq:              w.Seq,
	}
}

func fromWireRows(rows []wireAttributeRow) []cep.AttributeRow {
	out := make([]cep.AttributeRow, len(rows))
	for i, r := range rows {
		out[i] = fromWireRow(r)
	}
	return out
}

func fromWireRow(row wireAttributeRow) cep.AttributeRow {
	out := make(cep.AttributeRow, len(row))
	for i, v := range row {
		out[i] = cep.AttributeValue{
			Kind:    cep.Kind(v.Kind),
			Bool:    v.Bool,
			Int32:   v.Int32,
			Int64:   v.Int64,
			Float64: v.Float64,
			String:  v.String,
		}
	}
	return out
}
