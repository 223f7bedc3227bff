package cep

import "math"

// Aggregators are stateless batch functions over the chain at one state
// event position (spec §4.3). Build-time validation of which aggregators
// accept an attribute argument lives in validation.go, not here: these
// functions assume they were called with an argument shape the builder
// already accepted.

// CountAggregate returns the chain length at pos. Never Null: an empty
// chain yields 0 (spec §4.3).
func CountAggregate(se *StateEvent, pos int) AttributeValue {
	if se == nil {
		return Int64Value(0)
	}
	return Int64Value(int64(se.CountAt(pos)))
}

// SumAggregate iterates the chain at pos, coercing attrIdx to float64 and
// summing. Nulls are skipped; an empty or all-null chain yields Null. The
// return type follows the declared integral-ness of the attribute unless
// the accumulation needed float64 precision or overflowed 2^53, in which
// case it returns Float64 or Null respectively (spec §4.3, §7, §9).
func SumAggregate(se *StateEvent, pos, attrIdx int, attrIsIntegral bool) AttributeValue {
	if se == nil {
		return Null
	}
	chain := se.ChainAt(pos)
	var sum float64
	seen := false
	roundedAway := false
	for _, ev := range chain {
		v := ev.Attr(attrIdx)
		f, ok := v.AsFloat64()
		if !ok {
			continue
		}
		seen = true
		sum += f
		if attrIsIntegral && f != math.Trunc(f) {
			roundedAway = true
		}
	}
	if !seen {
		return Null
	}
	if attrIsIntegral && !roundedAway {
		if !isSafeInteger(sum) {
			return Null
		}
		return Int64Value(int64(sum))
	}
	return Float64Value(sum)
}

// AvgAggregate divides the sum of non-null values by the non-null count.
// Empty or all-null chain yields Null. Always Float64 (spec §4.3).
func AvgAggregate(se *StateEvent, pos, attrIdx int) AttributeValue {
	if se == nil {
		return Null
	}
	chain := se.ChainAt(pos)
	var sum float64
	n := 0
	for _, ev := range chain {
		f, ok := ev.Attr(attrIdx).AsFloat64()
		if !ok {
			continue
		}
		sum += f
		n++
	}
	if n == 0 {
		return Null
	}
	return Float64Value(sum / float64(n))
}

// MinAggregate reduces the non-null numeric values at pos/attrIdx using
// total ordering. Empty/all-null yields Null; the return type follows the
// winning input value's own kind (spec §4.3).
func MinAggregate(se *StateEvent, pos, attrIdx int) AttributeValue {
	return reduceExtreme(se, pos, attrIdx, func(a, b AttributeValue) bool { return a.Less(b) })
}

// MaxAggregate is the dual of MinAggregate.
func MaxAggregate(se *StateEvent, pos, attrIdx int) AttributeValue {
	return reduceExtreme(se, pos, attrIdx, func(a, b AttributeValue) bool { return b.Less(a) })
}

func reduceExtreme(se *StateEvent, pos, attrIdx int, better func(candidate, current AttributeValue) bool) AttributeValue {
	if se == nil {
		return Null
	}
	chain := se.ChainAt(pos)
	var best AttributeValue
	found := false
	for _, ev := range chain {
		v := ev.Attr(attrIdx)
		if v.IsNull() || !v.isNumeric() {
			continue
		}
		if !found || better(v, best) {
			best = v
			found = true
		}
	}
	if !found {
		return Null
	}
	return best
}

// StdDevAggregate computes the population standard deviation over the
// non-null values at pos/attrIdx in a single pass using Welford's
// two-moment accumulation. Empty (or all-null) chain yields Null
// (spec §4.3). Always Float64.
func StdDevAggregate(se *StateEvent, pos, attrIdx int) AttributeValue {
	if se == nil {
		return Null
	}
	chain := se.ChainAt(pos)
	var mean, m2 float64
	n := 0
	for _, ev := range chain {
		f, ok := ev.Attr(attrIdx).AsFloat64()
		if !ok {
			continue
		}
		n++
		delta := f - mean
		mean += delta / float64(n)
		m2 += delta * (f - mean)
	}
	if n == 0 {
		return Null
	}
	return Float64Value(math.Sqrt(m2 / float64(n)))
}
