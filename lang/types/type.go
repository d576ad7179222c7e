package types

import "strings"

// Type is a fully resolved static type: a Kind plus, for the compound
// kinds, the extra information needed to check and convert values of that
// type (the class name for INSTANCE/CLASS, the element type for LIST and
// ITERATOR, the value type for MAP, whose keys are always strings).
type Type struct {
	Kind      Kind
	ClassName string // set for INSTANCE and CLASS
	Elem      *Type  // set for LIST, ITERATOR and MAP (value type); nil means ANY
}

// TypeName implements ast.Type so *Type can be stored directly on an
// ast.Expr without ast importing this package.
func (t *Type) TypeName() string {
	if t == nil {
		return ANY.String()
	}
	switch t.Kind {
	case INSTANCE, CLASS:
		return t.ClassName
	case LIST:
		if t.Elem != nil && t.Elem.Kind != ANY {
			return "List<" + t.Elem.TypeName() + ">"
		}
		return "List"
	case ITERATOR:
		if t.Elem != nil && t.Elem.Kind != ANY {
			return "Iterator<" + t.Elem.TypeName() + ">"
		}
		return "Iterator"
	default:
		return t.Kind.String()
	}
}

func (t *Type) String() string { return t.TypeName() }

var (
	Void    = &Type{Kind: VOID}
	NullT   = &Type{Kind: NULL}
	Bool    = &Type{Kind: BOOL}
	Int     = &Type{Kind: INT}
	Long    = &Type{Kind: LONG}
	Double  = &Type{Kind: DOUBLE}
	Decimal = &Type{Kind: DECIMAL}
	Str     = &Type{Kind: STRING}
	Any     = &Type{Kind: ANY}
	Func    = &Type{Kind: FUNCTION}
)

// ListOf returns the type List<elem>, or a bare untyped List if elem is nil.
func ListOf(elem *Type) *Type { return &Type{Kind: LIST, Elem: elem} }

// MapOf returns the MAP type. Jactl maps are always string-keyed, so only
// the value type varies, carried in Elem for symmetry with ListOf.
func MapOf(val *Type) *Type { return &Type{Kind: MAP, Elem: val} }

// IteratorOf returns the type Iterator<elem>.
func IteratorOf(elem *Type) *Type { return &Type{Kind: ITERATOR, Elem: elem} }

// InstanceOf returns the INSTANCE type for the named class.
func InstanceOf(className string) *Type { return &Type{Kind: INSTANCE, ClassName: className} }

// ClassOf returns the CLASS (static/meta) type for the named class.
func ClassOf(className string) *Type { return &Type{Kind: CLASS, ClassName: className} }

// Equal reports whether t and u denote the same static type.
func Equal(t, u *Type) bool {
	if t == nil || u == nil {
		return t == u
	}
	if t.Kind != u.Kind {
		return false
	}
	switch t.Kind {
	case INSTANCE, CLASS:
		return t.ClassName == u.ClassName
	case LIST, ITERATOR, MAP:
		return Equal(t.Elem, u.Elem)
	default:
		return true
	}
}

// Lookup parses a bare type name (no generics) into its builtin Type, or
// reports ok=false for a user class name the caller must resolve itself.
func Lookup(name string) (t *Type, ok bool) {
	switch strings.TrimSpace(name) {
	case "void":
		return Void, true
	case "boolean":
		return Bool, true
	case "int":
		return Int, true
	case "long":
		return Long, true
	case "double":
		return Double, true
	case "Decimal":
		return Decimal, true
	case "String":
		return Str, true
	case "List":
		return ListOf(nil), true
	case "Map":
		return MapOf(nil), true
	case "def":
		return Any, true
	default:
		return nil, false
	}
}
