// Package caps implements the capability-set algebra: a caps is an ordered
// disjunction of value.Structure alternatives, with intersect/union/
// subtract/subset/fixate operations over that disjunction.
package caps

import (
	"strings"
	"sync/atomic"

	"github.com/flowgraph/core/value"
)

// Caps is an ordered sequence of structures interpreted as a disjunction:
// a buffer or pad "has" these caps if it matches any one of the member
// structures. A caps additionally carries any/empty flags for the two
// degenerate cases (ANY matches everything, EMPTY matches nothing) that
// cannot be represented as a structure list.
type Caps struct {
	structures []*value.Structure
	any        bool
	refcount   int32
}

// New returns an empty (EMPTY) caps: matches nothing until structures are
// appended.
func New() *Caps {
	return &Caps{refcount: 1}
}

// Any returns the ANY caps: matches everything, used as a wildcard
// template on pads that accept arbitrary data.
func Any() *Caps {
	return &Caps{any: true, refcount: 1}
}

// FromStructure returns a caps containing exactly the given structure.
func FromStructure(s *value.Structure) *Caps {
	c := &Caps{structures: []*value.Structure{s}, refcount: 1}
	s.SetParentRefcount(&c.refcount)
	return c
}

// IsWritable reports whether the caps may be mutated: refcount <= 1, the
// same mutability gate value.Structure uses.
func (c *Caps) IsWritable() bool { return atomic.LoadInt32(&c.refcount) <= 1 }

// Ref increments the shared refcount, matching the teacher's explicit
// ref/unref lifetime idiom for shared objects rather than relying on the
// garbage collector alone to decide when sharing makes a value read-only.
func (c *Caps) Ref() *Caps {
	atomic.AddInt32(&c.refcount, 1)
	return c
}

// Unref decrements the shared refcount.
func (c *Caps) Unref() { atomic.AddInt32(&c.refcount, -1) }

// AppendStructure adds s to the disjunction. Panics if the caps is shared
// (refcount > 1): this is an internal invariant violation, mirroring
// value.Structure.Set's panic-on-shared-mutation behavior.
func (c *Caps) AppendStructure(s *value.Structure) {
	if !c.IsWritable() {
		panic("caps: AppendStructure on non-writable caps (shared, refcount > 1)")
	}
	c.any = false
	s.SetParentRefcount(&c.refcount)
	c.structures = append(c.structures, s)
}

// Structures returns the member structures in order. Callers must not
// mutate the returned slice or its elements unless IsWritable().
func (c *Caps) Structures() []*value.Structure { return c.structures }

// IsAny reports whether this caps is the wildcard ANY caps.
func (c *Caps) IsAny() bool { return c.any }

// IsEmpty reports whether this caps matches nothing (no structures, not ANY).
func (c *Caps) IsEmpty() bool { return !c.any && len(c.structures) == 0 }

// IsFixed reports whether the caps contains exactly one structure, all of
// whose fields are fixed.
func (c *Caps) IsFixed() bool {
	return !c.any && len(c.structures) == 1 && c.structures[0].IsFixed()
}

// Copy returns a deep-enough copy: new structures, unattached to any
// parent refcount, so the result is always writable regardless of the
// receiver's sharing state.
func (c *Caps) Copy() *Caps {
	cp := &Caps{any: c.any, refcount: 1}
	for _, s := range c.structures {
		cp.structures = append(cp.structures, s.Copy())
	}
	for _, s := range cp.structures {
		s.SetParentRefcount(&cp.refcount)
	}
	return cp
}

// Intersect computes a ⊓ b: the union, over every (Ai, Bj) pair in
// lexicographic index order, of their structure intersection where it is
// non-empty. ANY intersected with X is X; EMPTY intersected with anything
// is EMPTY.
func Intersect(a, b *Caps) *Caps {
	if a.IsAny() {
		return b.Copy()
	}
	if b.IsAny() {
		return a.Copy()
	}
	out := New()
	for _, ai := range a.structures {
		for _, bj := range b.structures {
			if s, ok := ai.Intersect(bj); ok {
				out.AppendStructure(s)
			}
		}
	}
	return out
}

// Union computes a ⊔ b: concatenation of both structure lists with exact
// duplicates removed. ANY absorbs anything (union with ANY is ANY).
func Union(a, b *Caps) *Caps {
	if a.IsAny() || b.IsAny() {
		return Any()
	}
	out := New()
	for _, s := range a.structures {
		out.AppendStructure(s.Copy())
	}
	for _, s := range b.structures {
		if !containsEqual(out.structures, s) {
			out.AppendStructure(s.Copy())
		}
	}
	return out
}

func containsEqual(list []*value.Structure, s *value.Structure) bool {
	for _, x := range list {
		if x.Equal(s) {
			return true
		}
	}
	return false
}

// Subtract computes a \ b: per matching-name structure, field-wise
// subtraction distributed back out into a caps of alternatives. A
// structure in a whose name has no counterpart in b passes through
// unchanged (nothing to subtract from it).
func Subtract(a, b *Caps) *Caps {
	if b.IsAny() {
		return New()
	}
	out := New()
	for _, ai := range a.structures {
		// Copy up front: when no bj shares ai's name, remaining stays as
		// this single element and is appended straight into out below.
		// AppendStructure rewires its parentRefcount to out's, which must
		// never happen to a structure a itself still holds.
		remaining := []*value.Structure{ai.Copy()}
		for _, bj := range b.structures {
			if ai.Name() != bj.Name() {
				continue
			}
			var next []*value.Structure
			for _, r := range remaining {
				next = append(next, subtractStructure(r, bj)...)
			}
			remaining = next
			if len(remaining) == 0 {
				break
			}
		}
		for _, r := range remaining {
			out.AppendStructure(r)
		}
	}
	return out
}

// subtractStructure subtracts bj field-by-field from ai, distributing any
// multi-alternative field subtraction result into multiple output
// structures (each identical to ai except for the one subtracted field).
func subtractStructure(ai, bj *value.Structure) []*value.Structure {
	result := ai.Copy()
	subtracted := false
	for _, name := range bj.Names() {
		bv, _ := bj.Get(name)
		av, ok := result.Get(name)
		if !ok {
			continue
		}
		rv, empty := value.Subtract(av, bv)
		if empty {
			return nil
		}
		subtracted = true
		if alts, isList := rv.(value.List); isList {
			var out []*value.Structure
			for _, alt := range alts {
				variant := result.Copy()
				variant.Set(name, alt)
				out = append(out, variant)
			}
			return out
		}
		result.Set(name, rv)
	}
	if !subtracted {
		return nil
	}
	return []*value.Structure{result}
}

// IsSubsetOf reports whether every structure in a is a subset of some
// structure in b (a matches only data b also matches).
func IsSubsetOf(a, b *Caps) bool {
	if b.IsAny() {
		return true
	}
	if a.IsAny() {
		return b.IsAny()
	}
	for _, ai := range a.structures {
		matched := false
		for _, bj := range b.structures {
			if ai.IsSubsetOf(bj) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// Fixate returns a new, fixed caps built from the first structure of c,
// resolving every unfixed field by a deterministic policy: integer range
// and double range pick the midpoint, list picks the first element,
// fraction range picks the member nearest 1/1, boolean picks true.
func Fixate(c *Caps) *Caps {
	if c.IsAny() || len(c.structures) == 0 {
		return c.Copy()
	}
	src := c.structures[0]
	out := value.NewStructure(src.Name())
	for _, name := range src.Names() {
		v, _ := src.Get(name)
		out.Set(name, fixateValue(v))
	}
	return FromStructure(out)
}

func fixateValue(v value.Value) value.Value {
	switch t := v.(type) {
	case value.IntRange:
		return value.Int((t.Min + t.Max) / 2)
	case value.DoubleRange:
		return value.Double((t.Min + t.Max) / 2)
	case value.IntList:
		if len(t) > 0 {
			return value.Int(t[0])
		}
		return t
	case value.DoubleList:
		if len(t) > 0 {
			return value.Double(t[0])
		}
		return t
	case value.List:
		if len(t) > 0 {
			return fixateValue(t[0])
		}
		return t
	case value.FractionRange:
		return nearestToUnity(t)
	case value.Bool:
		return value.Bool(true)
	default:
		return v
	}
}

func nearestToUnity(r value.FractionRange) value.Fraction {
	one := value.NewFraction(1, 1)
	if r.Min.Compare(one) != value.Less && r.Max.Compare(one) != value.Greater {
		return one
	}
	if r.Max.Compare(one) == value.Less {
		return r.Max
	}
	return r.Min
}

// String renders the caps using spec.md §6's textual grammar: ANY/EMPTY
// for the degenerate cases, or structures joined with "; ".
func (c *Caps) String() string {
	if c.any {
		return "ANY"
	}
	if len(c.structures) == 0 {
		return "EMPTY"
	}
	parts := make([]string, len(c.structures))
	for i, s := range c.structures {
		parts[i] = s.String()
	}
	return strings.Join(parts, "; ")
}
