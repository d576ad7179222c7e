package machine

import (
	"fmt"
	"math"

	"github.com/jaccomoc/jactl-sub011/lang/ast"
	"github.com/jaccomoc/jactl-sub011/lang/runtime"
	"github.com/jaccomoc/jactl-sub011/lang/token"
)

// opWithoutEq strips the trailing "=" off a compound-assignment operator
// token so the op= forms can share binaryOp with their plain counterparts.
func opWithoutEq(op token.Kind) token.Kind {
	switch op {
	case token.PLUS_EQ:
		return token.PLUS
	case token.MINUS_EQ:
		return token.MINUS
	case token.STAR_EQ:
		return token.STAR
	case token.SLASH_EQ:
		return token.SLASH
	case token.PERCENT_EQ:
		return token.PERCENT
	case token.PERCENT_PERCENT_EQ:
		return token.PERCENT_PERCENT
	case token.STAR_STAR_EQ:
		return token.STAR_STAR
	case token.AMP_EQ:
		return token.AMPERSAND
	case token.PIPE_EQ:
		return token.PIPE
	case token.CIRCUMFLEX_EQ:
		return token.CIRCUMFLEX
	case token.LTLT_EQ:
		return token.LTLT
	case token.GTGT_EQ:
		return token.GTGT
	case token.GTGTGT_EQ:
		return token.GTGTGT
	case token.AMP_AMP_EQ:
		return token.AND
	case token.PIPE_PIPE_EQ:
		return token.OR
	case token.ELVIS_EQ:
		return token.QUESTION_COLON
	default:
		return op
	}
}

func (e *evaluator) evalBinary(fr *Frame, n *ast.Binary) (runtime.Value, error) {
	switch n.Op {
	case token.AND:
		l, err := e.eval(fr, n.Left)
		if err != nil {
			return nil, err
		}
		if !l.Truth() {
			return runtime.Bool(false), nil
		}
		r, err := e.eval(fr, n.Right)
		if err != nil {
			return nil, err
		}
		return runtime.Bool(r.Truth()), nil
	case token.OR:
		l, err := e.eval(fr, n.Left)
		if err != nil {
			return nil, err
		}
		if l.Truth() {
			return runtime.Bool(true), nil
		}
		r, err := e.eval(fr, n.Right)
		if err != nil {
			return nil, err
		}
		return runtime.Bool(r.Truth()), nil
	case token.QUESTION_COLON:
		l, err := e.eval(fr, n.Left)
		if err != nil {
			return nil, err
		}
		if _, isNull := l.(runtime.Null); !isNull && l.Truth() {
			return l, nil
		}
		return e.eval(fr, n.Right)
	}

	l, err := e.eval(fr, n.Left)
	if err != nil {
		return nil, err
	}
	r, err := e.eval(fr, n.Right)
	if err != nil {
		return nil, err
	}
	return binaryOp(n.Op, l, r)
}

// binaryOp applies a single arithmetic/comparison/bitwise operator to two
// already-evaluated values. Numeric operands are widened through the same
// Decimal-mediated path runtime.cmpNumeric uses for comparisons, so mixed
// int/long/double/Decimal arithmetic always picks the wider kind's rules.
func binaryOp(op token.Kind, l, r runtime.Value) (runtime.Value, error) {
	switch op {
	case token.PLUS:
		if ls, ok := l.(runtime.Str); ok {
			return runtime.Str(string(ls) + r.String()), nil
		}
		return arith(op, l, r)
	case token.MINUS, token.STAR, token.SLASH, token.PERCENT, token.PERCENT_PERCENT, token.STAR_STAR:
		return arith(op, l, r)
	case token.EQEQ:
		return runtime.Bool(valuesEqual(l, r)), nil
	case token.BANGEQ:
		return runtime.Bool(!valuesEqual(l, r)), nil
	case token.TRIPLE_EQ:
		return runtime.Bool(valuesIdentical(l, r)), nil
	case token.BANG_DOUBLE_EQ:
		return runtime.Bool(!valuesIdentical(l, r)), nil
	case token.LT, token.LE, token.GT, token.GE, token.COMPARE:
		ord, ok := l.(runtime.Ordered)
		if !ok {
			return nil, fmt.Errorf("%s is not comparable", l.Kind())
		}
		c, err := ord.Cmp(r)
		if err != nil {
			return nil, err
		}
		switch op {
		case token.LT:
			return runtime.Bool(c < 0), nil
		case token.LE:
			return runtime.Bool(c <= 0), nil
		case token.GT:
			return runtime.Bool(c > 0), nil
		case token.GE:
			return runtime.Bool(c >= 0), nil
		default:
			return runtime.Int(int32(c)), nil
		}
	case token.AMPERSAND, token.PIPE, token.CIRCUMFLEX, token.LTLT, token.GTGT, token.GTGTGT:
		return bitwise(op, l, r)
	default:
		if hb, ok := l.(runtime.HasBinary); ok {
			return hb.Binary(op.String(), r, runtime.LeftSide)
		}
		return nil, fmt.Errorf("unsupported operator %s on %s", op, l.Kind())
	}
}

func valuesEqual(l, r runtime.Value) bool {
	if ord, ok := l.(runtime.Ordered); ok {
		c, err := ord.Cmp(r)
		return err == nil && c == 0
	}
	return l.String() == r.String() && l.Kind() == r.Kind()
}

// valuesIdentical implements === / !==: reference types (List, Map,
// Instance, Function) compare by identity, not structural equality, so two
// distinct-but-equal collections are never ===. Primitives have no separate
// identity from their value, so they fall back to valuesEqual.
func valuesIdentical(l, r runtime.Value) bool {
	switch lv := l.(type) {
	case *runtime.List:
		rv, ok := r.(*runtime.List)
		return ok && lv == rv
	case *runtime.Map:
		rv, ok := r.(*runtime.Map)
		return ok && lv == rv
	case *runtime.Instance:
		rv, ok := r.(*runtime.Instance)
		return ok && lv == rv
	case *runtime.Function:
		rv, ok := r.(*runtime.Function)
		return ok && lv == rv
	default:
		return valuesEqual(l, r)
	}
}

func toLong(v runtime.Value) (int64, error) {
	switch n := v.(type) {
	case runtime.Int:
		return int64(n), nil
	case runtime.Long:
		return int64(n), nil
	case runtime.Double:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("%s is not numeric", v.Kind())
	}
}

func toDouble(v runtime.Value) (float64, error) {
	switch n := v.(type) {
	case runtime.Int:
		return float64(n), nil
	case runtime.Long:
		return float64(n), nil
	case runtime.Double:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("%s is not numeric", v.Kind())
	}
}

func arith(op token.Kind, l, r runtime.Value) (runtime.Value, error) {
	_, lDouble := l.(runtime.Double)
	_, rDouble := r.(runtime.Double)
	_, lDec := l.(runtime.Decimal)
	_, rDec := r.(runtime.Decimal)
	_, lLong := l.(runtime.Long)
	_, rLong := r.(runtime.Long)

	if lDec || rDec {
		return arithDecimal(op, l, r)
	}
	if lDouble || rDouble {
		a, err := toDouble(l)
		if err != nil {
			return nil, err
		}
		b, err := toDouble(r)
		if err != nil {
			return nil, err
		}
		v, err := arithFloat(op, a, b)
		return runtime.Double(v), err
	}
	if lLong || rLong {
		a, err := toLong(l)
		if err != nil {
			return nil, err
		}
		b, err := toLong(r)
		if err != nil {
			return nil, err
		}
		v, err := arithInt(op, a, b)
		return runtime.Long(v), err
	}
	a, err := toLong(l)
	if err != nil {
		return nil, err
	}
	b, err := toLong(r)
	if err != nil {
		return nil, err
	}
	v, err := arithInt(op, a, b)
	return runtime.Int(int32(v)), err
}

func arithInt(op token.Kind, a, b int64) (int64, error) {
	switch op {
	case token.PLUS:
		return a + b, nil
	case token.MINUS:
		return a - b, nil
	case token.STAR:
		return a * b, nil
	case token.SLASH:
		if b == 0 {
			return 0, fmt.Errorf("divide by zero")
		}
		return a / b, nil
	case token.PERCENT:
		// % is defined as ((x %% y) + y) %% y: magnitude under |y|, sign
		// of y, even though %% itself is sign-of-dividend truncation.
		if b == 0 {
			return 0, fmt.Errorf("divide by zero")
		}
		return (a%b + b) % b, nil
	case token.PERCENT_PERCENT:
		if b == 0 {
			return 0, fmt.Errorf("divide by zero")
		}
		return a % b, nil
	case token.STAR_STAR:
		var res int64 = 1
		for i := int64(0); i < b; i++ {
			res *= a
		}
		return res, nil
	default:
		return 0, fmt.Errorf("unsupported integer operator %s", op)
	}
}

func arithFloat(op token.Kind, a, b float64) (float64, error) {
	switch op {
	case token.PLUS:
		return a + b, nil
	case token.MINUS:
		return a - b, nil
	case token.STAR:
		return a * b, nil
	case token.SLASH:
		return a / b, nil
	case token.PERCENT:
		if b == 0 {
			return 0, fmt.Errorf("divide by zero")
		}
		return mod(mod(a, b)+b, b), nil
	case token.PERCENT_PERCENT:
		if b == 0 {
			return 0, fmt.Errorf("divide by zero")
		}
		return mod(a, b), nil
	case token.STAR_STAR:
		r := 1.0
		for i := 0; i < int(b); i++ {
			r *= a
		}
		return r, nil
	default:
		return 0, fmt.Errorf("unsupported double operator %s", op)
	}
}

// mod is truncated remainder (sign of the dividend), matching Go's and
// Java's %. The zero-yielding [0, |y|)-with-sign-of-y form is built on top
// of this in arithFloat, not the other way round.
func mod(a, b float64) float64 {
	return math.Mod(a, b)
}

func arithDecimal(op token.Kind, l, r runtime.Value) (runtime.Value, error) {
	ld, err := runtime.AsDecimal(l)
	if err != nil {
		return nil, err
	}
	rd, err := runtime.AsDecimal(r)
	if err != nil {
		return nil, err
	}
	switch op {
	case token.PLUS:
		return runtime.NewDecimal(ld.D.Add(rd.D)), nil
	case token.MINUS:
		return runtime.NewDecimal(ld.D.Sub(rd.D)), nil
	case token.STAR:
		return runtime.NewDecimal(ld.D.Mul(rd.D)), nil
	case token.SLASH:
		return runtime.NewDecimal(ld.D.Div(rd.D)), nil
	case token.PERCENT:
		return runtime.NewDecimal(ld.D.Mod(rd.D).Add(rd.D).Mod(rd.D)), nil
	case token.PERCENT_PERCENT:
		return runtime.NewDecimal(ld.D.Mod(rd.D)), nil
	default:
		return nil, fmt.Errorf("unsupported decimal operator %s", op)
	}
}

func bitwise(op token.Kind, l, r runtime.Value) (runtime.Value, error) {
	a, err := toLong(l)
	if err != nil {
		return nil, err
	}
	b, err := toLong(r)
	if err != nil {
		return nil, err
	}
	var v int64
	switch op {
	case token.AMPERSAND:
		v = a & b
	case token.PIPE:
		v = a | b
	case token.CIRCUMFLEX:
		v = a ^ b
	case token.LTLT:
		v = a << uint(b)
	case token.GTGT:
		v = a >> uint(b)
	case token.GTGTGT:
		v = int64(uint64(a) >> uint(b))
	}
	if _, ok := l.(runtime.Long); ok {
		return runtime.Long(v), nil
	}
	return runtime.Int(int32(v)), nil
}

func (e *evaluator) evalPrefixUnary(fr *Frame, n *ast.PrefixUnary) (runtime.Value, error) {
	v, err := e.eval(fr, n.Right)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case token.MINUS:
		return negate(v)
	case token.BANG, token.NOT:
		return runtime.Bool(!v.Truth()), nil
	case token.TILDE:
		a, err := toLong(v)
		if err != nil {
			return nil, err
		}
		return runtime.Long(^a), nil
	case token.PLUS_PLUS, token.MINUS_MINUS:
		delta := int64(1)
		if n.Op == token.MINUS_MINUS {
			delta = -1
		}
		nv, err := arith(token.PLUS, v, runtime.Int(int32(delta)))
		if err != nil {
			return nil, err
		}
		if ident, ok := n.Right.(*ast.Identifier); ok {
			return nv, e.store(fr, ident.Scope, ident.Slot, nv)
		}
		return nv, nil
	default:
		return nil, fmt.Errorf("unsupported prefix operator %s", n.Op)
	}
}

func (e *evaluator) evalPostfixUnary(fr *Frame, n *ast.PostfixUnary) (runtime.Value, error) {
	v, err := e.eval(fr, n.Left)
	if err != nil {
		return nil, err
	}
	delta := int64(1)
	if n.Op == token.MINUS_MINUS {
		delta = -1
	}
	nv, err := arith(token.PLUS, v, runtime.Int(int32(delta)))
	if err != nil {
		return nil, err
	}
	if ident, ok := n.Left.(*ast.Identifier); ok {
		if err := e.store(fr, ident.Scope, ident.Slot, nv); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func negate(v runtime.Value) (runtime.Value, error) {
	switch n := v.(type) {
	case runtime.Int:
		return runtime.Int(-n), nil
	case runtime.Long:
		return runtime.Long(-n), nil
	case runtime.Double:
		return runtime.Double(-n), nil
	case runtime.Decimal:
		return runtime.NewDecimal(n.D.Neg()), nil
	default:
		return nil, fmt.Errorf("cannot negate %s", v.Kind())
	}
}
