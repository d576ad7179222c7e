package types

import "fmt"

// numericRank orders the numeric kinds for widening: a value of a lower
// rank is always safely widenable to any kind of a higher rank.
var numericRank = map[Kind]int{
	INT:     0,
	LONG:    1,
	DOUBLE:  2,
	DECIMAL: 3,
}

// CanWiden reports whether a value of kind from can be implicitly widened
// to kind to without an explicit `as` cast (INT -> LONG -> DOUBLE ->
// DECIMAL, and anything -> ANY).
func CanWiden(from, to Kind) bool {
	if to == ANY {
		return true
	}
	if from == to {
		return true
	}
	rf, fok := numericRank[from]
	rt, tok := numericRank[to]
	return fok && tok && rf <= rt
}

// Widen returns the narrowest numeric kind that both a and b can be
// implicitly widened to, per the standard arithmetic promotion ladder. It
// does not reject a kind that is not numeric: such a kind ranks as INT, so
// the result is only meaningful when both kinds are numeric.
func Widen(a, b Kind) Kind {
	ra, rb := numericRank[a], numericRank[b]
	if ra >= rb {
		return a
	}
	return b
}

// CanCast reports whether an explicit `expr as Type` conversion from kind
// from to kind to is defined. This is strictly wider than CanWiden: it also
// allows numeric narrowing, String<->number, and the LIST/MAP/INSTANCE
// structural conversions used to adapt a Map into a class instance or vice
// versa.
func CanCast(from, to *Type) bool {
	if from == nil || to == nil {
		return false
	}
	if to.Kind == ANY || from.Kind == ANY {
		return true
	}
	if Equal(from, to) {
		return true
	}
	switch {
	case from.Kind.IsNumeric() && to.Kind.IsNumeric():
		return true
	case from.Kind == STRING && to.Kind.IsNumeric():
		return true
	case from.Kind.IsNumeric() && to.Kind == STRING:
		return true
	case from.Kind == BOOL && to.Kind == STRING:
		return true
	case from.Kind == MAP && to.Kind == INSTANCE:
		return true
	case from.Kind == INSTANCE && to.Kind == MAP:
		return true
	case from.Kind == LIST && to.Kind == LIST:
		return true
	case from.Kind == MAP && to.Kind == MAP:
		return true
	case from.Kind == NULL && !to.Kind.IsPrimitive():
		return true
	default:
		return false
	}
}

// ErrIncompatibleCast is returned (wrapped with the concrete types) when a
// resolver-time `as` check fails.
type ErrIncompatibleCast struct {
	From, To *Type
}

func (e *ErrIncompatibleCast) Error() string {
	return fmt.Sprintf("cannot cast %s as %s", e.From.TypeName(), e.To.TypeName())
}
