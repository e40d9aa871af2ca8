package value

import "fmt"

// Order is the result of comparing two values of the same Kind.
type Order int

const (
	Unordered Order = iota
	Less
	Equal
	Greater
)

// Value is the common interface implemented by every concrete value kind
// a Structure field can hold. Concrete kinds are value types (Int,
// Fraction, ...) or slice types for variable-length containers (IntList,
// DoubleList, List, Array, Buffer).
type Value interface {
	// Kind identifies the concrete representation for registry dispatch.
	Kind() Kind
	// IsFixed reports whether the value denotes exactly one concrete
	// member (as opposed to a range or list of alternatives).
	IsFixed() bool
	// String renders the value using the textual grammar from spec.md §6,
	// e.g. "48000", "[1, 1920]", "{1, 2}", "<1, 2, 3>".
	String() string
}

// Int is a fixed 64-bit integer value.
type Int int64

func (Int) Kind() Kind       { return KindInt }
func (Int) IsFixed() bool    { return true }
func (v Int) String() string { return fmt.Sprintf("%d", int64(v)) }

// IntRange is an inclusive [Min, Max] integer range, optionally stepped.
// Step == 0 means every integer in [Min, Max] is a member; Step > 1 means
// only Min, Min+Step, Min+2*Step, ... are members.
type IntRange struct {
	Min, Max int64
	Step     int64
}

func (IntRange) Kind() Kind    { return KindIntRange }
func (IntRange) IsFixed() bool { return false }
func (r IntRange) String() string {
	if r.Step > 1 {
		return fmt.Sprintf("[%d, %d, %d]", r.Min, r.Max, r.Step)
	}
	return fmt.Sprintf("[%d, %d]", r.Min, r.Max)
}

// Singleton reports whether the range collapses to exactly one value,
// per spec.md §4.1 ("x ∈ [a,b] collapses to x when range is singleton").
func (r IntRange) Singleton() (Int, bool) {
	if r.Min == r.Max {
		return Int(r.Min), true
	}
	return 0, false
}

// IntList is an unordered set of alternative integers (LIST semantics:
// equality is mutual-subset, not positional).
type IntList []int64

func (IntList) Kind() Kind    { return KindIntList }
func (IntList) IsFixed() bool { return false }
func (l IntList) String() string {
	return joinBraces(l, '{', '}', func(v int64) string { return fmt.Sprintf("%d", v) })
}

// Double is a fixed floating point value.
type Double float64

func (Double) Kind() Kind       { return KindDouble }
func (Double) IsFixed() bool    { return true }
func (v Double) String() string { return fmt.Sprintf("%g", float64(v)) }

// DoubleRange is an inclusive [Min, Max] floating point range. Ranges are
// closed (spec.md §4.1: "open subtraction is approximated; ranges are
// closed").
type DoubleRange struct{ Min, Max float64 }

func (DoubleRange) Kind() Kind       { return KindDoubleRange }
func (DoubleRange) IsFixed() bool    { return false }
func (r DoubleRange) String() string { return fmt.Sprintf("[%g, %g]", r.Min, r.Max) }

// DoubleList is an unordered set of alternative doubles.
type DoubleList []float64

func (DoubleList) Kind() Kind    { return KindDoubleList }
func (DoubleList) IsFixed() bool { return false }
func (l DoubleList) String() string {
	return joinBraces(l, '{', '}', func(v float64) string { return fmt.Sprintf("%g", v) })
}

// Bool is a fixed boolean value.
type Bool bool

func (Bool) Kind() Kind       { return KindBool }
func (Bool) IsFixed() bool    { return true }
func (v Bool) String() string { return fmt.Sprintf("%t", bool(v)) }

// String is a fixed, quoted string value.
type String string

func (String) Kind() Kind       { return KindString }
func (String) IsFixed() bool    { return true }
func (v String) String() string { return quoteString(string(v)) }

// FourCC is a fixed 32-bit four-character-code value.
type FourCC uint32

func (FourCC) Kind() Kind    { return KindFourCC }
func (FourCC) IsFixed() bool { return true }
func (v FourCC) String() string {
	b := [4]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
	return string(b[:])
}

// Date is a fixed calendar date encoded as days since the Unix epoch.
type Date int32

func (Date) Kind() Kind       { return KindDate }
func (Date) IsFixed() bool    { return true }
func (v Date) String() string { return fmt.Sprintf("%d", int32(v)) }

// Buffer is an opaque fixed byte region (e.g. codec_data).
type Buffer []byte

func (Buffer) Kind() Kind    { return KindBuffer }
func (Buffer) IsFixed() bool { return true }
func (v Buffer) String() string {
	return fmt.Sprintf("<buffer %d bytes>", len(v))
}

// List is an unordered alternative set of heterogeneous-but-same-kind
// member values (LIST semantics from spec.md §4.1: two lists are equal
// iff mutual subsets, order does not matter).
type List []Value

func (List) Kind() Kind    { return KindList }
func (List) IsFixed() bool { return false }
func (l List) String() string {
	return joinBraces(l, '{', '}', func(v Value) string { return v.String() })
}

// Array is an ordered, fixed-length sequence compared position-wise
// (ARRAY semantics from spec.md §4.1).
type Array []Value

func (a Array) Kind() Kind { return KindArray }
func (a Array) IsFixed() bool {
	for _, v := range a {
		if !v.IsFixed() {
			return false
		}
	}
	return true
}
func (a Array) String() string {
	return joinBraces(a, '<', '>', func(v Value) string { return v.String() })
}

func joinBraces[T any](items []T, open, close byte, fmtFn func(T) string) string {
	out := make([]byte, 0, 32)
	out = append(out, open)
	for i, it := range items {
		if i > 0 {
			out = append(out, ", "...)
		}
		out = append(out, fmtFn(it)...)
	}
	out = append(out, close)
	return string(out)
}
