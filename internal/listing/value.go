package listing

import (
	"math"
	"strconv"
)

// Kind tags a Value. The order of the constants is the cross-kind sort order.
type Kind int

const (
	KindBool Kind = iota
	KindNumber
	KindString
)

// Value is a comparable scalar cell used as a grouping key and tooltip value.
type Value struct {
	Kind Kind
	B    bool
	N    float64
	S    string
}

func String(s string) Value  { return Value{Kind: KindString, S: s} }
func Number(n float64) Value { return Value{Kind: KindNumber, N: n} }
func Bool(b bool) Value      { return Value{Kind: KindBool, B: b} }

// Less is the natural ascending order: false<true, numeric, lexical.
// NaN sorts after every other number.
func (v Value) Less(o Value) bool {
	if v.Kind != o.Kind {
		return v.Kind < o.Kind
	}
	switch v.Kind {
	case KindBool:
		return !v.B && o.B
	case KindNumber:
		vn, on := math.IsNaN(v.N), math.IsNaN(o.N)
		if vn || on {
			return !vn && on
		}
		return v.N < o.N
	default:
		return v.S < o.S
	}
}

// Equal reports identity, treating NaN as equal to NaN so it groups once.
func (v Value) Equal(o Value) bool {
	return !v.Less(o) && !o.Less(v)
}

// String renders the value the way the tooltip and pivot headers show it.
func (v Value) String() string {
	switch v.Kind {
	case KindBool:
		return strconv.FormatBool(v.B)
	case KindNumber:
		if v.N == math.Trunc(v.N) && !math.IsInf(v.N, 0) {
			return strconv.FormatFloat(v.N, 'f', -1, 64)
		}
		return strconv.FormatFloat(v.N, 'f', 2, 64)
	default:
		return v.S
	}
}

// Format renders numbers with two decimals, everything else as String.
func (v Value) Format() string {
	if v.Kind == KindNumber {
		return strconv.FormatFloat(v.N, 'f', 2, 64)
	}
	return v.String()
}

// Hash is a stable map key for a Value.
func (v Value) Hash() string {
	switch v.Kind {
	case KindBool:
		return "b:" + strconv.FormatBool(v.B)
	case KindNumber:
		if math.IsNaN(v.N) {
			return "n:NaN"
		}
		if v.N == 0 {
			return "n:0"
		}
		return "n:" + strconv.FormatFloat(v.N, 'g', -1, 64)
	default:
		return "s:" + v.S
	}
}
