package value

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestIntRangeIntersectCommutativeProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("IntRange intersection does not depend on operand order", prop.ForAll(
		func(aMin, aWidth, bMin, bWidth int64) bool {
			a := IntRange{Min: aMin, Max: aMin + aWidth}
			b := IntRange{Min: bMin, Max: bMin + bWidth}

			fwd, fwdOK := Intersect(a, b)
			rev, revOK := Intersect(b, a)
			if fwdOK != revOK {
				return false
			}
			if !fwdOK {
				return true
			}
			return fwd == rev
		},
		gen.Int64Range(-1000, 1000), gen.Int64Range(0, 2000),
		gen.Int64Range(-1000, 1000), gen.Int64Range(0, 2000),
	))

	properties.TestingRun(t)
}

func TestSubtractSelfIsAlwaysEmptyProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("subtracting a fixed int from itself is always empty", prop.ForAll(
		func(n int64) bool {
			_, empty := Subtract(Int(n), Int(n))
			return empty
		},
		gen.Int64Range(-1_000_000, 1_000_000),
	))

	properties.TestingRun(t)
}

func TestFractionReductionProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("NewFraction always reduces to a positive denominator in lowest terms", prop.ForAll(
		func(num, den int64) bool {
			if den == 0 {
				return true
			}
			f := NewFraction(num, den)
			if f.Den <= 0 {
				return false
			}
			if f.Num == 0 {
				return f.Den == 1
			}
			return gcd64(abs64(f.Num), f.Den) == 1
		},
		gen.Int64Range(-1000, 1000), gen.Int64Range(-1000, 1000),
	))

	properties.TestingRun(t)
}

func TestSerializeParseRoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("serializing then parsing a structure of scalar fields reproduces it", prop.ForAll(
		func(width, height int64, format string) bool {
			s := NewStructure("video/x-raw")
			s.Set("width", Int(width))
			s.Set("height", Int(height))
			s.Set("format", String(format))

			text := Serialize(s)
			parsed, err := Parse(text)
			if err != nil {
				return false
			}
			return s.Equal(parsed)
		},
		gen.Int64Range(-1000, 1000), gen.Int64Range(-1000, 1000), gen.AlphaString(),
	))

	properties.TestingRun(t)
}
