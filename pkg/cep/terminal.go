package cep

import "time"

// flatten implements the terminal bridge (spec §4.7): it produces one
// downstream row per pattern position by taking the first stream event's
// BeforeWindowData at that position. The full, un-flattened StateEvent is
// what the collection aggregators (expr_aggregate.go) evaluate against —
// the terminal bridge only needs to supply the selector-facing scalar
// row.
func flatten(se *StateEvent, patternID string, ts time.Time) FlatRow {
	rows := make([]AttributeRow, len(se.Positions))
	for i := range se.Positions {
		chain := se.ChainAt(i)
		if len(chain) > 0 {
			rows[i] = chain[0].BeforeWindowData
		}
	}
	return FlatRow{PatternID: patternID, Rows: rows, Timestamp: ts}
}
