package cep

import "math"

// Kind tags the variant held by an AttributeValue.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt32
	KindInt64
	KindFloat64
	KindString
	KindObject
)

// AttributeValue is a compact tagged union over the value kinds a stream
// event or aggregate result can carry. Null is a first-class variant, not
// a sentinel: a Go zero-value AttributeValue is Null.
type AttributeValue struct {
	Kind   Kind
	Bool   bool
	Int32  int32
	Int64  int64
	Float64 float64
	String string
	Object any
}

// Null is the canonical Null attribute value.
var Null = AttributeValue{Kind: KindNull}

func BoolValue(v bool) AttributeValue       { return AttributeValue{Kind: KindBool, Bool: v} }
func Int32Value(v int32) AttributeValue     { return AttributeValue{Kind: KindInt32, Int32: v} }
func Int64Value(v int64) AttributeValue     { return AttributeValue{Kind: KindInt64, Int64: v} }
func Float64Value(v float64) AttributeValue { return AttributeValue{Kind: KindFloat64, Float64: v} }
func StringValue(v string) AttributeValue   { return AttributeValue{Kind: KindString, String: v} }
func ObjectValue(v any) AttributeValue      { return AttributeValue{Kind: KindObject, Object: v} }

// IsNull reports whether the value is the Null variant.
func (v AttributeValue) IsNull() bool { return v.Kind == KindNull }

// isNumeric reports whether the value carries a numeric kind.
func (v AttributeValue) isNumeric() bool {
	switch v.Kind {
	case KindInt32, KindInt64, KindFloat64:
		return true
	default:
		return false
	}
}

// AsFloat64 coerces a numeric AttributeValue to float64. The second
// return value is false for non-numeric or Null values.
func (v AttributeValue) AsFloat64() (float64, bool) {
	switch v.Kind {
	case KindInt32:
		return float64(v.Int32), true
	case KindInt64:
		return float64(v.Int64), true
	case KindFloat64:
		return v.Float64, true
	default:
		return 0, false
	}
}

// isIntegral reports whether the declared kind is one of the integer kinds.
func (v AttributeValue) isIntegral() bool {
	return v.Kind == KindInt32 || v.Kind == KindInt64
}

// maxSafeIntegerFloat is 2^53, the largest integer magnitude a float64
// represents exactly. Sum's overflow policy (spec §4.3/§7) clamps to Null
// once the accumulator's magnitude crosses this threshold for an integral
// attribute.
const maxSafeIntegerFloat = 1 << 53

// Equal reports value equality across compatible kinds (numeric kinds
// compare by float64 value; other kinds compare exactly).
func (v AttributeValue) Equal(other AttributeValue) bool {
	if v.isNumeric() && other.isNumeric() {
		a, _ := v.AsFloat64()
		b, _ := other.AsFloat64()
		return a == b
	}
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindBool:
		return v.Bool == other.Bool
	case KindString:
		return v.String == other.String
	case KindObject:
		return v.Object == other.Object
	default:
		return false
	}
}

// Less gives the total ordering over numeric values used by Min/Max
// (spec §4.3). Non-numeric inputs always compare false.
func (v AttributeValue) Less(other AttributeValue) bool {
	a, aok := v.AsFloat64()
	b, bok := other.AsFloat64()
	if !aok || !bok {
		return false
	}
	return a < b
}

// isSafeInteger reports whether f is within the exact-integer range of
// float64 (|f| <= 2^53).
func isSafeInteger(f float64) bool {
	return math.Abs(f) <= maxSafeIntegerFloat
}
