// Package value implements the symbolic value algebra fields in a
// Structure carry: fixed values, ranges, lists, fractions, and the
// List/Array container kinds. Every Kind registers its own
// compare/intersect/union/subtract behavior in a central Registry, rather
// than relying on type switches scattered across callers; the textual
// serialize/parse code in serialize.go is not part of the Registry.
package value

// Kind tags the concrete representation of a Value so registries and
// serializers can dispatch without a type switch at every call site.
type Kind int

const (
	KindInvalid Kind = iota
	KindInt
	KindIntRange
	KindIntList
	KindDouble
	KindDoubleRange
	KindDoubleList
	KindFraction
	KindFractionRange
	KindBool
	KindString
	KindFourCC
	KindDate
	KindBuffer
	KindStruct
	KindList
	KindArray
)

// shortAlias maps the textual-grammar type alias (spec.md §6) to the Kind
// it denotes, e.g. "i" / "int" both mean KindInt.
var shortAlias = map[string]Kind{
	"i": KindInt, "int": KindInt,
	"f": KindDouble, "float": KindDouble, "d": KindDouble, "double": KindDouble,
	"4": KindFourCC, "fourcc": KindFourCC,
	"b": KindBool, "bool": KindBool, "boolean": KindBool,
	"s": KindString, "str": KindString, "string": KindString,
	"fraction": KindFraction,
}

// aliasForKind is the inverse of shortAlias, used by the serializer.
var aliasForKind = map[Kind]string{
	KindInt:      "int",
	KindDouble:   "double",
	KindFourCC:   "fourcc",
	KindBool:     "boolean",
	KindString:   "string",
	KindFraction: "fraction",
}

// KindFromAlias resolves a textual-grammar type alias to a Kind. ok is
// false when alias is not recognized.
func KindFromAlias(alias string) (Kind, bool) {
	k, ok := shortAlias[alias]
	return k, ok
}

// AliasForKind returns the canonical (long-form) alias for a scalar Kind,
// or "" if the kind has no short-form alias (e.g. container kinds).
func AliasForKind(k Kind) string {
	return aliasForKind[k]
}

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindIntRange:
		return "int-range"
	case KindIntList:
		return "int-list"
	case KindDouble:
		return "double"
	case KindDoubleRange:
		return "double-range"
	case KindDoubleList:
		return "double-list"
	case KindFraction:
		return "fraction"
	case KindFractionRange:
		return "fraction-range"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindFourCC:
		return "fourcc"
	case KindDate:
		return "date"
	case KindBuffer:
		return "buffer"
	case KindStruct:
		return "structure"
	case KindList:
		return "list"
	case KindArray:
		return "array"
	default:
		return "invalid"
	}
}
