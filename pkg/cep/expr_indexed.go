package cep

// IndexSpec selects a single element of a chain: either a numeric offset
// or the last element (spec §4.2).
type IndexSpec struct {
	Last    bool
	Numeric int
}

// AtIndex returns the fixed-offset IndexSpec for k.
func AtIndex(k int) IndexSpec { return IndexSpec{Numeric: k} }

// AtLast is the IndexSpec that always resolves to the chain's last element.
var AtLast = IndexSpec{Last: true}

// IndexedVariable evaluates a single attribute read from one position of a
// state event (spec §4.2, the "array access" executor).
type IndexedVariable struct {
	Position  int
	Index     IndexSpec
	AttrIndex int
}

// Eval resolves the IndexedVariable against a state event. Any
// out-of-range access degrades to Null per spec §4.2 and §7 — this
// executor never returns an error.
func (iv IndexedVariable) Eval(se *StateEvent) AttributeValue {
	if se == nil {
		return Null
	}
	chain := se.ChainAt(iv.Position)
	if len(chain) == 0 {
		return Null
	}
	idx := iv.Index.Numeric
	if iv.Index.Last {
		idx = len(chain) - 1
	}
	if idx < 0 || idx >= len(chain) {
		return Null
	}
	return chain[idx].Attr(iv.AttrIndex)
}
