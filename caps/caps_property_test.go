package caps

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/flowgraph/core/value"
)

func widthCaps(min, max int64) *Caps {
	s := value.NewStructure("video/x-raw")
	s.Set("width", value.IntRange{Min: min, Max: max})
	return FromStructure(s)
}

func TestIntersectCommutativeProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("intersecting two width-range caps does not depend on operand order", prop.ForAll(
		func(aMin, aWidth, bMin, bWidth int64) bool {
			a := widthCaps(aMin, aMin+aWidth)
			b := widthCaps(bMin, bMin+bWidth)

			fwd := Intersect(a, b)
			rev := Intersect(b, a)
			return sameStructureSet(fwd, rev)
		},
		gen.Int64Range(-1000, 1000), gen.Int64Range(0, 2000),
		gen.Int64Range(-1000, 1000), gen.Int64Range(0, 2000),
	))

	properties.TestingRun(t)
}

func TestSubtractSelfIsEmptyProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("a caps subtracted from itself is always EMPTY", prop.ForAll(
		func(min, width int64) bool {
			a := widthCaps(min, min+width)
			return Subtract(a, a).IsEmpty()
		},
		gen.Int64Range(-1000, 1000), gen.Int64Range(0, 2000),
	))

	properties.TestingRun(t)
}

func TestSubtractEmptyIsIdentityProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("subtracting EMPTY leaves a caps unchanged", prop.ForAll(
		func(min, width int64) bool {
			a := widthCaps(min, min+width)
			return sameStructureSet(Subtract(a, New()), a)
		},
		gen.Int64Range(-1000, 1000), gen.Int64Range(0, 2000),
	))

	properties.TestingRun(t)
}

func TestParseSerializeRoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("parsing a caps' own textual rendering reproduces it", prop.ForAll(
		func(min, width int64) bool {
			a := widthCaps(min, min+width)
			parsed, err := Parse(a.String())
			if err != nil {
				return false
			}
			return sameStructureSet(a, parsed)
		},
		gen.Int64Range(-1000, 1000), gen.Int64Range(0, 2000),
	))

	properties.TestingRun(t)
}

// sameStructureSet reports whether a and b contain the same structures as
// an unordered set, the notion of caps equality the intersect/subtract
// laws above are stated against (operand order never affects membership).
func sameStructureSet(a, b *Caps) bool {
	if a.IsAny() != b.IsAny() {
		return false
	}
	if len(a.Structures()) != len(b.Structures()) {
		return false
	}
	used := make([]bool, len(b.Structures()))
	for _, as := range a.Structures() {
		found := false
		for i, bs := range b.Structures() {
			if !used[i] && as.Equal(bs) {
				used[i] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
