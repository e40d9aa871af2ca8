package value

import (
	"fmt"
	"math/bits"
)

// Fraction is a reduced rational number: gcd(|Num|, |Den|) == 1 and
// Den > 0, the sign lives in Num. Comparison uses 64-bit cross
// multiplication in a wider intermediate type to avoid overflow, per
// spec.md §4.1 ("compared by cross-multiplication in 64-bit arithmetic to
// avoid overflow").
type Fraction struct {
	Num, Den int64
}

func (Fraction) Kind() Kind    { return KindFraction }
func (Fraction) IsFixed() bool { return true }
func (f Fraction) String() string {
	return fmt.Sprintf("%d/%d", f.Num, f.Den)
}

// NewFraction builds a reduced Fraction from an arbitrary numerator and
// denominator. Den == 0 is treated as Den = 1 to avoid a division panic;
// callers that need strict validation should check before calling.
func NewFraction(num, den int64) Fraction {
	if den == 0 {
		den = 1
	}
	if den < 0 {
		num, den = -num, -den
	}
	if g := gcd64(abs64(num), den); g > 1 {
		num /= g
		den /= g
	}
	return Fraction{Num: num, Den: den}
}

// Compare orders two fractions by cross multiplication: a/b vs c/d is
// a*d vs c*b. Both denominators are positive by construction, so the sign
// of the cross product alone determines order.
func (f Fraction) Compare(g Fraction) Order {
	lhs := int128Mul(f.Num, g.Den)
	rhs := int128Mul(g.Num, f.Den)
	switch {
	case lhs.less(rhs):
		return Less
	case rhs.less(lhs):
		return Greater
	default:
		return Equal
	}
}

// FractionRange is an inclusive [Min, Max] range of fractions.
type FractionRange struct{ Min, Max Fraction }

func (FractionRange) Kind() Kind    { return KindFractionRange }
func (FractionRange) IsFixed() bool { return false }
func (r FractionRange) String() string {
	return fmt.Sprintf("[%s, %s]", r.Min.String(), r.Max.String())
}

// Contains reports whether f lies within the inclusive range.
func (r FractionRange) Contains(f Fraction) bool {
	return r.Min.Compare(f) != Greater && r.Max.Compare(f) != Less
}

func gcd64(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// int128 is a minimal signed 128-bit integer, just enough to compare the
// products of two int64 values without overflow. Go's standard library has
// no native int128; math/bits.Mul64 (unsigned 64x64->128 multiply) plus a
// sign correction is the idiomatic way to get a wider intermediate without
// pulling in math/big for a single comparison.
type int128 struct {
	neg      bool
	hi, lo   uint64
}

func int128Mul(a, b int64) int128 {
	neg := (a < 0) != (b < 0)
	ua, ub := uint64(abs64(a)), uint64(abs64(b))
	hi, lo := bits.Mul64(ua, ub)
	return int128{neg: neg, hi: hi, lo: lo}
}

// less compares two (possibly negative) magnitudes represented as
// sign+128-bit-unsigned-magnitude.
func (x int128) less(y int128) bool {
	if x.neg != y.neg {
		// zero has neg==false by construction (abs64(0) == 0), so unequal
		// signs always means one side is strictly negative and nonzero.
		return x.neg
	}
	if x.neg {
		// both negative: larger magnitude is the smaller value.
		return x.hi > y.hi || (x.hi == y.hi && x.lo > y.lo)
	}
	return x.hi < y.hi || (x.hi == y.hi && x.lo < y.lo)
}
