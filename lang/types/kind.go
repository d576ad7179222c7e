// Package types defines the static type lattice used by the parser (for
// declared type annotations) and the resolver (for inference, widening and
// the `as`/instanceof checks). It does not hold runtime values; see
// lang/runtime for the boxed Value model that actually flows through the
// execution engine.
package types

// Kind enumerates the primitive and compound families of the Jactl type
// lattice.
type Kind int8

const (
	VOID Kind = iota
	NULL
	BOOL
	INT
	LONG
	DOUBLE
	DECIMAL
	STRING
	LIST
	MAP
	INSTANCE
	FUNCTION
	ITERATOR
	CLASS
	ANY // `def`
)

var kindNames = [...]string{
	VOID:     "void",
	NULL:     "null",
	BOOL:     "boolean",
	INT:      "int",
	LONG:     "long",
	DOUBLE:   "double",
	DECIMAL:  "Decimal",
	STRING:   "String",
	LIST:     "List",
	MAP:      "Map",
	INSTANCE: "instance",
	FUNCTION: "Function",
	ITERATOR: "Iterator",
	CLASS:    "Class",
	ANY:      "def",
}

func (k Kind) String() string { return kindNames[k] }

// IsNumeric reports whether k is one of the four numeric kinds.
func (k Kind) IsNumeric() bool {
	switch k {
	case INT, LONG, DOUBLE, DECIMAL:
		return true
	default:
		return false
	}
}

// IsPrimitive reports whether k is a value type that is never null (boolean
// and the numeric kinds); all others are reference kinds that admit null.
func (k Kind) IsPrimitive() bool {
	switch k {
	case BOOL, INT, LONG, DOUBLE, DECIMAL:
		return true
	default:
		return false
	}
}
