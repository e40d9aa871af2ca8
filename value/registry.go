package value

// pairKey identifies an ordered (Kind, Kind) registration, mirroring the
// original (type1, type2) registration keys in gst_value_register_*_func.
type pairKey struct{ a, b Kind }

// CompareFunc orders two values of the same Kind.
type CompareFunc func(a, b Value) Order

// IntersectFunc computes the intersection of a value of kind a with a
// value of kind b. ok is false when the intersection is empty.
type IntersectFunc func(a, b Value) (Value, bool)

// UnionFunc computes the union of a value of kind a with a value of kind
// b. isList is true when the union could not collapse to a single value
// and the caller should treat the result as a List of alternatives.
type UnionFunc func(a, b Value) (result Value, isList bool)

// SubtractFunc computes (minuend of kind a) minus (subtrahend of kind b).
// empty is true when nothing remains; result may be a single Value or a
// List distributing multiple remaining alternatives.
type SubtractFunc func(minuend, subtrahend Value) (result Value, empty bool)

// Registry is the central dispatch table the value package's Intersect,
// Union, Subtract, and Compare free functions consult, mirroring spec.md
// §9's "dynamic type tables → registered trait implementations" note and
// gst_value_register_{intersect,union,subtract}_func's pairwise table.
type Registry struct {
	compare   map[Kind]CompareFunc
	intersect map[pairKey]IntersectFunc
	union     map[pairKey]UnionFunc
	subtract  map[pairKey]SubtractFunc
}

// global is the default registry, pre-populated with every built-in kind's
// behavior by the init() in builtins.go. Callers needing an isolated registry (e.g.
// tests exercising registration order) can call NewRegistry and populate
// it with RegisterBuiltins.
var global = NewRegistry()

// NewRegistry returns an empty Registry. Use RegisterBuiltins to populate
// it with the value kinds this package implements.
func NewRegistry() *Registry {
	return &Registry{
		compare:   make(map[Kind]CompareFunc),
		intersect: make(map[pairKey]IntersectFunc),
		union:     make(map[pairKey]UnionFunc),
		subtract:  make(map[pairKey]SubtractFunc),
	}
}

// RegisterCompare installs the comparison function invoked when both
// operands have the given Kind.
func (r *Registry) RegisterCompare(k Kind, fn CompareFunc) { r.compare[k] = fn }

// RegisterIntersect installs an intersection function for the ordered
// (a, b) kind pair. Intersect(x, y) tries (x.Kind(), y.Kind()) first and
// falls back to the swapped pair with arguments reversed, matching
// gst_value_intersect's symmetric lookup.
func (r *Registry) RegisterIntersect(a, b Kind, fn IntersectFunc) {
	r.intersect[pairKey{a, b}] = fn
}

// RegisterUnion installs a union function for the ordered (a, b) kind pair.
func (r *Registry) RegisterUnion(a, b Kind, fn UnionFunc) { r.union[pairKey{a, b}] = fn }

// RegisterSubtract installs a subtract function for the ordered
// (minuend, subtrahend) kind pair.
func (r *Registry) RegisterSubtract(a, b Kind, fn SubtractFunc) {
	r.subtract[pairKey{a, b}] = fn
}

// Compare orders two values. Values of differing Kind (other than the
// numeric Int/Double/Fraction triad, which never compare against each
// other here) are Unordered.
func (r *Registry) Compare(a, b Value) Order {
	if a.Kind() != b.Kind() {
		return Unordered
	}
	fn, ok := r.compare[a.Kind()]
	if !ok {
		return Unordered
	}
	return fn(a, b)
}

// Intersect computes a ⊓ b, trying the registered (a.Kind, b.Kind) entry
// and, failing that, the swapped entry with arguments reversed.
func (r *Registry) Intersect(a, b Value) (Value, bool) {
	if fn, ok := r.intersect[pairKey{a.Kind(), b.Kind()}]; ok {
		return fn(a, b)
	}
	if fn, ok := r.intersect[pairKey{b.Kind(), a.Kind()}]; ok {
		return fn(b, a)
	}
	if a.Kind() == b.Kind() {
		if r.Compare(a, b) == Equal {
			return a, true
		}
		return nil, false
	}
	return nil, false
}

// Union computes a ⊔ b.
func (r *Registry) Union(a, b Value) (Value, bool) {
	if fn, ok := r.union[pairKey{a.Kind(), b.Kind()}]; ok {
		return fn(a, b)
	}
	if fn, ok := r.union[pairKey{b.Kind(), a.Kind()}]; ok {
		return fn(b, a)
	}
	if a.Kind() == b.Kind() && r.Compare(a, b) == Equal {
		return a, false
	}
	return List{a, b}, true
}

// Subtract computes minuend minus subtrahend.
func (r *Registry) Subtract(minuend, subtrahend Value) (Value, bool) {
	if fn, ok := r.subtract[pairKey{minuend.Kind(), subtrahend.Kind()}]; ok {
		return fn(minuend, subtrahend)
	}
	if minuend.Kind() == subtrahend.Kind() {
		if r.Compare(minuend, subtrahend) == Equal {
			return nil, true
		}
		return minuend, false
	}
	return minuend, false
}

// Compare, Intersect, Union, and Subtract are package-level convenience
// wrappers around the default global registry.
func Compare(a, b Value) Order              { return global.Compare(a, b) }
func Intersect(a, b Value) (Value, bool)    { return global.Intersect(a, b) }
func Union(a, b Value) (Value, bool)        { return global.Union(a, b) }
func Subtract(a, b Value) (Value, bool)     { return global.Subtract(a, b) }
func Default() *Registry                   { return global }
