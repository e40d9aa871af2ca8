package value

import (
	"fmt"
	"sync/atomic"
)

// field is one name/value pair within a Structure, keeping insertion order.
type field struct {
	name  string
	value Value
}

// Structure is an ordered mapping from symbolic field name to a typed
// Value, plus a head name (spec.md §3: "ordered mapping from symbolic key
// to typed value, plus a name"). Iteration order follows insertion order
// since Go maps do not preserve one.
//
// A Structure embedded in a refcounted parent (a Caps structure list) may
// carry parentRefcount: when the referenced count is greater than 1 the
// structure is read-only, enforcing the mutability gate spec.md §3
// describes.
type Structure struct {
	name   string
	fields []field
	index  map[string]int

	parentRefcount *int32
}

// NewStructure creates an empty, writable Structure with the given head
// name.
func NewStructure(name string) *Structure {
	return &Structure{name: name, index: make(map[string]int)}
}

// Name returns the structure's head name.
func (s *Structure) Name() string { return s.name }

// IsWritable reports whether the structure may be mutated: either it has
// no parent refcount (owned exclusively) or the parent refcount's current
// value is <= 1.
func (s *Structure) IsWritable() bool {
	if s.parentRefcount == nil {
		return true
	}
	return atomic.LoadInt32(s.parentRefcount) <= 1
}

// SetParentRefcount wires this structure to a shared refcount so it
// becomes read-only once the refcount rises above one. Used by Caps when
// a structure is appended to a caps that may subsequently be shared.
func (s *Structure) SetParentRefcount(rc *int32) { s.parentRefcount = rc }

// Set inserts or overwrites the value for name. Panics if the structure is
// not writable: this is an internal invariant violation (a caller mutating
// a shared structure), not a recoverable user error.
func (s *Structure) Set(name string, v Value) {
	if !s.IsWritable() {
		panic("value: Set on non-writable structure (shared, refcount > 1)")
	}
	if i, ok := s.index[name]; ok {
		s.fields[i].value = v
		return
	}
	s.index[name] = len(s.fields)
	s.fields = append(s.fields, field{name: name, value: v})
}

// Get returns the value for name and whether it was present.
func (s *Structure) Get(name string) (Value, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.fields[i].value, true
}

// Remove deletes the named field, if present.
func (s *Structure) Remove(name string) {
	i, ok := s.index[name]
	if !ok {
		return
	}
	s.fields = append(s.fields[:i], s.fields[i+1:]...)
	delete(s.index, name)
	for n, idx := range s.index {
		if idx > i {
			s.index[n] = idx - 1
		}
	}
}

// Names returns field names in insertion order.
func (s *Structure) Names() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.name
	}
	return out
}

// Len returns the number of fields.
func (s *Structure) Len() int { return len(s.fields) }

// IsFixed reports whether every field holds a fixed value (spec.md §3:
// "A caps is fixed iff it contains exactly one structure all of whose
// values are fixed").
func (s *Structure) IsFixed() bool {
	for _, f := range s.fields {
		if !f.value.IsFixed() {
			return false
		}
	}
	return true
}

// Copy returns a deep-enough copy: a new Structure with the same fields,
// unattached to any parent refcount (so it is writable even if the
// original was not).
func (s *Structure) Copy() *Structure {
	cp := NewStructure(s.name)
	for _, f := range s.fields {
		cp.Set(f.name, f.value)
	}
	return cp
}

// Equal reports structural equality under the comparison rules in
// spec.md §4.1/§8: same name, same field set, each field Equal under the
// registered compare function for its kind.
func (s *Structure) Equal(o *Structure) bool {
	if s.name != o.name || len(s.fields) != len(o.fields) {
		return false
	}
	for _, f := range s.fields {
		ov, ok := o.Get(f.name)
		if !ok || f.value.Kind() != ov.Kind() || Compare(f.value, ov) != Equal {
			return false
		}
	}
	return true
}

// Intersect returns a new Structure containing, for every field present
// in both s and o, the intersection of their values (empty intersection on
// any shared field fails the whole operation per spec.md §4.2). Fields
// present only on one side are copied through unchanged.
func (s *Structure) Intersect(o *Structure) (*Structure, bool) {
	if s.name != o.name {
		return nil, false
	}
	out := NewStructure(s.name)
	seen := make(map[string]bool, len(s.fields))
	for _, f := range s.fields {
		seen[f.name] = true
		if ov, ok := o.Get(f.name); ok {
			v, ok := Intersect(f.value, ov)
			if !ok {
				return nil, false
			}
			out.Set(f.name, v)
		} else {
			out.Set(f.name, f.value)
		}
	}
	for _, f := range o.fields {
		if !seen[f.name] {
			out.Set(f.name, f.value)
		}
	}
	return out, true
}

// IsSubsetOf reports whether every field of s is present in o and s's
// value for that field equals o's value intersected with itself (i.e. is
// entirely contained in o's field value).
func (s *Structure) IsSubsetOf(o *Structure) bool {
	if s.name != o.name {
		return false
	}
	for _, f := range s.fields {
		ov, ok := o.Get(f.name)
		if !ok {
			return false
		}
		v, ok := Intersect(f.value, ov)
		if !ok || v.Kind() != f.value.Kind() || Compare(v, f.value) != Equal {
			return false
		}
	}
	return true
}

func (s *Structure) String() string {
	out := s.name
	for _, f := range s.fields {
		out += fmt.Sprintf(", %s=%s", f.name, formatTyped(f.value))
	}
	return out
}
