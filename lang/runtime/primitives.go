package runtime

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/jaccomoc/jactl-sub011/lang/types"
)

// Null is the single value of the NULL type.
type Null struct{}

func (Null) String() string    { return "null" }
func (Null) Kind() types.Kind  { return types.NULL }
func (Null) Truth() bool       { return false }
func (Null) Cmp(y Value) (int, error) {
	if _, ok := y.(Null); ok {
		return 0, nil
	}
	return 0, fmt.Errorf("cannot compare null with %s", y.Kind())
}

// TheNull is the shared Null instance; NULL carries no state so there is no
// need to allocate more than one.
var TheNull Value = Null{}

// Bool wraps a boolean.
type Bool bool

func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}
func (b Bool) Kind() types.Kind { return types.BOOL }
func (b Bool) Truth() bool      { return bool(b) }
func (b Bool) Cmp(y Value) (int, error) {
	yb, ok := y.(Bool)
	if !ok {
		return 0, fmt.Errorf("cannot compare boolean with %s", y.Kind())
	}
	switch {
	case b == yb:
		return 0, nil
	case !bool(b) && bool(yb):
		return -1, nil
	default:
		return 1, nil
	}
}

// Int wraps a 32-bit signed integer.
type Int int32

func (i Int) String() string   { return strconv.FormatInt(int64(i), 10) }
func (i Int) Kind() types.Kind { return types.INT }
func (i Int) Truth() bool      { return i != 0 }
func (i Int) Cmp(y Value) (int, error) { return cmpNumeric(i, y) }

// Long wraps a 64-bit signed integer.
type Long int64

func (l Long) String() string   { return strconv.FormatInt(int64(l), 10) }
func (l Long) Kind() types.Kind { return types.LONG }
func (l Long) Truth() bool      { return l != 0 }
func (l Long) Cmp(y Value) (int, error) { return cmpNumeric(l, y) }

// Double wraps a 64-bit IEEE754 float.
type Double float64

func (d Double) String() string   { return strconv.FormatFloat(float64(d), 'g', -1, 64) }
func (d Double) Kind() types.Kind { return types.DOUBLE }
func (d Double) Truth() bool      { return d != 0 }
func (d Double) Cmp(y Value) (int, error) { return cmpNumeric(d, y) }

// Decimal wraps an arbitrary-precision decimal, backed by shopspring/decimal
// to give Jactl's DECIMAL type exact base-10 arithmetic (the semantics
// financial/scientific Jactl scripts rely on, unlike DOUBLE).
type Decimal struct{ D decimal.Decimal }

func NewDecimal(d decimal.Decimal) Decimal { return Decimal{D: d} }

func (d Decimal) String() string   { return d.D.String() }
func (d Decimal) Kind() types.Kind { return types.DECIMAL }
func (d Decimal) Truth() bool      { return !d.D.IsZero() }
func (d Decimal) Cmp(y Value) (int, error) {
	yd, err := toDecimal(y)
	if err != nil {
		return 0, err
	}
	return d.D.Cmp(yd), nil
}

// Str wraps a Jactl STRING value.
type Str string

func (s Str) String() string   { return string(s) }
func (s Str) Kind() types.Kind { return types.STRING }
func (s Str) Truth() bool      { return s != "" }
func (s Str) Cmp(y Value) (int, error) {
	ys, ok := y.(Str)
	if !ok {
		return 0, fmt.Errorf("cannot compare String with %s", y.Kind())
	}
	switch {
	case s < ys:
		return -1, nil
	case s > ys:
		return 1, nil
	default:
		return 0, nil
	}
}
func (s Str) Len() int { return len([]rune(string(s))) }
func (s Str) Iterate() Iterator {
	runes := []rune(string(s))
	i := 0
	return iteratorFunc(func() (Value, bool, error) {
		if i >= len(runes) {
			return nil, false, nil
		}
		r := runes[i]
		i++
		return Str(string(r)), true, nil
	})
}

// cmpNumeric compares two numeric values of any numeric kinds by converting
// both to Decimal, returning -1, 0 or 1.
func cmpNumeric(x Value, y Value) (int, error) {
	xd, err := toDecimal(x)
	if err != nil {
		return 0, err
	}
	yd, err := toDecimal(y)
	if err != nil {
		return 0, fmt.Errorf("cannot compare %s with %s", x.Kind(), y.Kind())
	}
	return xd.Cmp(yd), nil
}

// toDecimal widens any numeric Value to a decimal.Decimal so comparisons and
// mixed-type arithmetic can be performed uniformly before narrowing the
// result back down per the modulo-law / widening rules in the resolver.
func toDecimal(v Value) (decimal.Decimal, error) {
	switch v := v.(type) {
	case Int:
		return decimal.NewFromInt32(int32(v)), nil
	case Long:
		return decimal.NewFromInt(int64(v)), nil
	case Double:
		return decimal.NewFromFloat(float64(v)), nil
	case Decimal:
		return v.D, nil
	default:
		return decimal.Decimal{}, fmt.Errorf("%s is not numeric", v.Kind())
	}
}

// AsDecimal converts v to a Decimal: numeric kinds widen the same way
// toDecimal does, and Str is parsed as a decimal literal (e.g. the `as
// Decimal` conversion applied to a regex capture group).
func AsDecimal(v Value) (Decimal, error) {
	if s, ok := v.(Str); ok {
		d, err := decimal.NewFromString(string(s))
		if err != nil {
			return Decimal{}, fmt.Errorf("cannot convert %q to Decimal: %w", string(s), err)
		}
		return Decimal{D: d}, nil
	}
	d, err := toDecimal(v)
	return Decimal{D: d}, err
}

type iteratorFunc func() (Value, bool, error)

func (f iteratorFunc) Next() (Value, bool, error) { return f() }
