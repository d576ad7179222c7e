package machine

import (
	"fmt"
	"regexp"

	"github.com/jaccomoc/jactl-sub011/lang/ast"
	"github.com/jaccomoc/jactl-sub011/lang/runtime"
)

func (e *evaluator) eval(fr *Frame, x ast.Expr) (runtime.Value, error) {
	if err := e.th.tick(); err != nil {
		return nil, err
	}
	switch n := x.(type) {
	case *ast.Literal:
		return literalValue(n), nil
	case *ast.Identifier:
		return e.load(fr, n.Scope, n.Slot), nil
	case *ast.CaptureVar:
		return e.th.captureGroup(n.Index), nil
	case *ast.Paren:
		return e.eval(fr, n.Inner)
	case *ast.Noop:
		return runtime.TheNull, nil
	case *ast.DefaultValue:
		return defaultValueFor(n.Target), nil
	case *ast.ListLiteral:
		items := make([]runtime.Value, len(n.Items))
		for i, it := range n.Items {
			v, err := e.eval(fr, it)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return runtime.NewList(items), nil
	case *ast.MapLiteral:
		m := runtime.NewMap(len(n.Entries))
		for _, ent := range n.Entries {
			k, err := e.eval(fr, ent.Key)
			if err != nil {
				return nil, err
			}
			v, err := e.eval(fr, ent.Value)
			if err != nil {
				return nil, err
			}
			if err := m.Set(k, v); err != nil {
				return nil, err
			}
		}
		return m, nil
	case *ast.ExprString:
		var sb []byte
		for _, p := range n.Parts {
			v, err := e.eval(fr, p)
			if err != nil {
				return nil, err
			}
			sb = append(sb, v.String()...)
		}
		return runtime.Str(sb), nil
	case *ast.Binary:
		return e.evalBinary(fr, n)
	case *ast.PrefixUnary:
		return e.evalPrefixUnary(fr, n)
	case *ast.PostfixUnary:
		return e.evalPostfixUnary(fr, n)
	case *ast.Ternary:
		c, err := e.eval(fr, n.Cond)
		if err != nil {
			return nil, err
		}
		if c.Truth() {
			return e.eval(fr, n.Then)
		}
		return e.eval(fr, n.Else)
	case *ast.ConvertTo:
		v, err := e.eval(fr, n.Value)
		if err != nil {
			return nil, err
		}
		return convertTo(v, n.Target.Name)
	case *ast.InstanceOf:
		v, err := e.eval(fr, n.Value)
		if err != nil {
			return nil, err
		}
		is := instanceOfCheck(v, n.Target.Name)
		if n.Negate {
			is = !is
		}
		return runtime.Bool(is), nil
	case *ast.VarDecl:
		return e.varDecl(fr, n)
	case *ast.Closure:
		return e.makeClosureLike(fr, n.Sig, n.Body, "", n.Captures, n), nil
	case *ast.VarAssign:
		v, err := e.eval(fr, n.Value)
		if err != nil {
			return nil, err
		}
		return v, e.store(fr, n.Target.Scope, n.Target.Slot, v)
	case *ast.VarOpAssign:
		cur := e.load(fr, n.Target.Scope, n.Target.Slot)
		rhs, err := e.eval(fr, n.Value)
		if err != nil {
			return nil, err
		}
		v, err := binaryOp(opWithoutEq(n.Op), cur, rhs)
		if err != nil {
			return nil, err
		}
		return v, e.store(fr, n.Target.Scope, n.Target.Slot, v)
	case *ast.FieldAccess:
		return e.evalFieldAccess(fr, n)
	case *ast.Index:
		return e.evalIndex(fr, n)
	case *ast.FieldAssign:
		return e.evalFieldAssign(fr, n)
	case *ast.FieldOpAssign:
		return e.evalFieldOpAssign(fr, n)
	case *ast.Call:
		return e.evalCall(fr, n)
	case *ast.MethodCall:
		return e.evalMethodCall(fr, n)
	case *ast.RegexMatch:
		return e.evalRegexMatch(fr, n)
	case *ast.RegexSubst:
		return e.evalRegexSubst(fr, n)
	case *ast.Eval:
		return e.evalEval(fr, n)
	case *ast.BlockExpr:
		return e.execBlock(fr, n.Body)
	case *ast.InvokeNew:
		return e.evalInvokeNew(fr, n)
	case *ast.InvokeInit:
		for _, a := range n.Args {
			if _, err := e.eval(fr, a); err != nil {
				return nil, err
			}
		}
		return runtime.TheNull, nil
	case *ast.ClassPath:
		return runtime.Str(joinPath(n.Segments)), nil
	case *ast.Return:
		var v runtime.Value = runtime.TheNull
		if n.Value != nil {
			var err error
			v, err = e.eval(fr, n.Value)
			if err != nil {
				return nil, err
			}
		}
		return nil, returnSignal{value: v}
	case *ast.Break:
		return nil, breakSignal{label: n.Label}
	case *ast.Continue:
		return nil, continueSignal{label: n.Label}
	case *ast.Print:
		return e.printStmt(fr, n.Args, n.Newline)
	case *ast.Die:
		v, err := e.eval(fr, n.Value)
		if err != nil {
			return nil, err
		}
		return nil, runtime.DieError{Value: v}
	default:
		return nil, fmt.Errorf("machine: unhandled expression %T", x)
	}
}

func joinPath(segs []string) string {
	out := ""
	for i, s := range segs {
		if i > 0 {
			out += "."
		}
		out += s
	}
	return out
}

func literalValue(n *ast.Literal) runtime.Value {
	switch v := n.Value.(type) {
	case nil:
		return runtime.TheNull
	case bool:
		return runtime.Bool(v)
	case int32:
		return runtime.Int(v)
	case int64:
		return runtime.Long(v)
	case float64:
		return runtime.Double(v)
	case string:
		return runtime.Str(v)
	case runtime.Value:
		return v
	default:
		return runtime.TheNull
	}
}

func defaultValueFor(t *ast.TypeExpr) runtime.Value {
	if t == nil {
		return runtime.TheNull
	}
	switch t.Name {
	case "int":
		return runtime.Int(0)
	case "long":
		return runtime.Long(0)
	case "double":
		return runtime.Double(0)
	case "boolean":
		return runtime.Bool(false)
	case "String":
		return runtime.Str("")
	case "List":
		return runtime.NewList(nil)
	case "Map":
		return runtime.NewMap(0)
	default:
		return runtime.TheNull
	}
}

func (e *evaluator) evalFieldAccess(fr *Frame, n *ast.FieldAccess) (runtime.Value, error) {
	t, err := e.eval(fr, n.Target)
	if err != nil {
		return nil, err
	}
	if n.NullSafe {
		if _, isNull := t.(runtime.Null); isNull {
			return runtime.TheNull, nil
		}
	}
	if hf, ok := t.(runtime.HasFields); ok {
		v, err := hf.Field(n.Field)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
	if e.host != nil {
		return e.host.CallMethod(e.th, t, n.Field, nil)
	}
	return nil, fmt.Errorf("%s has no field %q", t.Kind(), n.Field)
}

func (e *evaluator) evalIndex(fr *Frame, n *ast.Index) (runtime.Value, error) {
	t, err := e.eval(fr, n.Target)
	if err != nil {
		return nil, err
	}
	ix, err := e.eval(fr, n.Idx)
	if err != nil {
		return nil, err
	}
	if idxable, ok := t.(runtime.Indexable); ok {
		if iv, ok := ix.(runtime.Int); ok {
			return idxable.Index(int(iv))
		}
	}
	if mapping, ok := t.(runtime.Mapping); ok {
		v, _, err := mapping.Get(ix)
		return v, err
	}
	return nil, fmt.Errorf("%s is not indexable", t.Kind())
}

func (e *evaluator) evalFieldAssign(fr *Frame, n *ast.FieldAssign) (runtime.Value, error) {
	v, err := e.eval(fr, n.Value)
	if err != nil {
		return nil, err
	}
	switch target := n.Target.(type) {
	case *ast.FieldAccess:
		t, err := e.eval(fr, target.Target)
		if err != nil {
			return nil, err
		}
		if sf, ok := t.(runtime.HasSettableFields); ok {
			return v, sf.SetField(target.Field, v)
		}
		return nil, fmt.Errorf("%s has no settable field %q", t.Kind(), target.Field)
	case *ast.Index:
		t, err := e.eval(fr, target.Target)
		if err != nil {
			return nil, err
		}
		ix, err := e.eval(fr, target.Idx)
		if err != nil {
			return nil, err
		}
		if si, ok := t.(runtime.SettableIndex); ok {
			if iv, ok := ix.(runtime.Int); ok {
				return v, si.SetIndex(int(iv), v)
			}
		}
		if sm, ok := t.(runtime.SettableMapping); ok {
			return v, sm.Set(ix, v)
		}
		return nil, fmt.Errorf("%s is not settable by index", t.Kind())
	}
	return nil, fmt.Errorf("invalid assignment target %T", n.Target)
}

func (e *evaluator) evalFieldOpAssign(fr *Frame, n *ast.FieldOpAssign) (runtime.Value, error) {
	cur, err := e.eval(fr, n.Target)
	if err != nil {
		return nil, err
	}
	rhs, err := e.eval(fr, n.Value)
	if err != nil {
		return nil, err
	}
	v, err := binaryOp(opWithoutEq(n.Op), cur, rhs)
	if err != nil {
		return nil, err
	}
	return e.evalFieldAssign(fr, &ast.FieldAssign{Target: n.Target, Value: litWrap(v)})
}

// litWrap re-wraps an already-computed runtime.Value as a constant-folded
// Literal so evalFieldAssign's normal Value-evaluation path can reuse it.
func litWrap(v runtime.Value) ast.Expr {
	return &ast.Literal{Value: v}
}

func (e *evaluator) evalCall(fr *Frame, n *ast.Call) (runtime.Value, error) {
	if ident, ok := n.Callee.(*ast.Identifier); ok && ident.Scope == ast.ScopeGlobal {
		args := make([]runtime.Value, len(n.Args))
		for i, a := range n.Args {
			v, err := e.eval(fr, a)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		if n.IsAsync() && e.host != nil && e.host.IsAsync(ident.Name) {
			return e.th.suspendAndAwait(AsyncCall{Name: ident.Name, Args: args})
		}
		if e.host != nil {
			return e.host.Call(e.th, ident.Name, args)
		}
		return nil, fmt.Errorf("no host bound: cannot call %q", ident.Name)
	}

	callee, err := e.eval(fr, n.Callee)
	if err != nil {
		return nil, err
	}
	fn, ok := callee.(*runtime.Function)
	if !ok {
		return nil, fmt.Errorf("%s is not callable", callee.Kind())
	}

	if n.NamedArgs {
		return e.callNamedArgs(fr, fn, n)
	}

	args := make([]runtime.Value, len(n.Args))
	for i, a := range n.Args {
		v, err := e.eval(fr, a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return e.callFunction(fn, args)
}

// callNamedArgs resolves a `f(name: value, ...)` call site: n.Args[0] is the
// single MapLiteral (ast.Call.NamedArgs) the parser collapsed the name:value
// pairs into. Each declared parameter is matched by name against the map;
// anything left unmatched falls back to its default expression, and a
// required parameter (no default) left unmatched is a runtime error.
func (e *evaluator) callNamedArgs(fr *Frame, fn *runtime.Function, n *ast.Call) (runtime.Value, error) {
	namedVal, err := e.eval(fr, n.Args[0])
	if err != nil {
		return nil, err
	}
	m, ok := namedVal.(*runtime.Map)
	if !ok {
		return nil, fmt.Errorf("named arguments must evaluate to a Map, got %s", namedVal.Kind())
	}

	_, params, err := funcParts(fn)
	if err != nil {
		return nil, err
	}

	args := make([]runtime.Value, len(params))
	provided := make([]bool, len(params))
	for i, p := range params {
		v, found, err := m.Get(runtime.Str(p.Name))
		if err != nil {
			return nil, err
		}
		if found {
			args[i] = v
			provided[i] = true
		}
	}
	for i, p := range params {
		if !provided[i] && p.Default == nil {
			return nil, fmt.Errorf("missing required parameter %q in call to %s", p.Name, fn.Name)
		}
	}
	return e.callFunctionArgs(fn, args, provided)
}

func (e *evaluator) evalMethodCall(fr *Frame, n *ast.MethodCall) (runtime.Value, error) {
	t, err := e.eval(fr, n.Target)
	if err != nil {
		return nil, err
	}
	if n.NullSafe {
		if _, isNull := t.(runtime.Null); isNull {
			return runtime.TheNull, nil
		}
	}
	args := make([]runtime.Value, len(n.Args))
	for i, a := range n.Args {
		v, err := e.eval(fr, a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	if n.IsAsync() && e.host != nil && e.host.IsAsync(n.Method) {
		return e.th.suspendAndAwait(AsyncCall{Name: n.Method, Args: append([]runtime.Value{t}, args...)})
	}
	if e.host == nil {
		return nil, fmt.Errorf("no host bound: cannot call method %q", n.Method)
	}
	return e.host.CallMethod(e.th, t, n.Method, args)
}

func (e *evaluator) evalRegexMatch(fr *Frame, n *ast.RegexMatch) (runtime.Value, error) {
	target, err := e.eval(fr, n.Target)
	if err != nil {
		return nil, err
	}
	pat, err := e.eval(fr, n.Pattern)
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(pat.String())
	if err != nil {
		return nil, err
	}
	s := target.String()

	if !n.Global {
		loc := re.FindStringSubmatchIndex(s)
		if loc != nil {
			e.th.setLastMatch(s, loc)
		}
		return runtime.Bool(loc != nil != n.Negate), nil
	}

	// Global match: resume from where the last match against this node
	// left off, so using the expression as a while-loop condition walks
	// forward through every occurrence instead of looping on the first.
	if e.th.regexPos == nil {
		e.th.regexPos = map[*ast.RegexMatch]int{}
	}
	pos, ok := e.th.regexPos[n]
	if !ok || pos > len(s) {
		pos = 0
	}
	loc := re.FindStringSubmatchIndex(s[pos:])
	if loc == nil {
		delete(e.th.regexPos, n)
		return runtime.Bool(n.Negate), nil
	}
	for i := range loc {
		if loc[i] >= 0 {
			loc[i] += pos
		}
	}
	e.th.setLastMatch(s, loc)
	next := loc[1]
	if next == loc[0] {
		next++
	}
	e.th.regexPos[n] = next
	return runtime.Bool(!n.Negate), nil
}

func (e *evaluator) evalRegexSubst(fr *Frame, n *ast.RegexSubst) (runtime.Value, error) {
	target, err := e.eval(fr, n.Target)
	if err != nil {
		return nil, err
	}
	pat, err := e.eval(fr, n.Pattern)
	if err != nil {
		return nil, err
	}
	repl, err := e.eval(fr, n.Replacement)
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(pat.String())
	if err != nil {
		return nil, err
	}
	s := target.String()
	r := repl.String()
	if n.Global {
		return runtime.Str(re.ReplaceAllString(s, r)), nil
	}
	replaced := false
	out := re.ReplaceAllStringFunc(s, func(m string) string {
		if replaced {
			return m
		}
		replaced = true
		return re.ReplaceAllString(m, r)
	})
	return runtime.Str(out), nil
}

func (e *evaluator) evalEval(fr *Frame, n *ast.Eval) (runtime.Value, error) {
	src, err := e.eval(fr, n.Source)
	if err != nil {
		return nil, err
	}
	return e.th.suspendAndAwait(AsyncCall{Name: "eval", Args: []runtime.Value{src}})
}

func (e *evaluator) evalInvokeNew(fr *Frame, n *ast.InvokeNew) (runtime.Value, error) {
	className := n.Target.Name
	inst := runtime.NewInstance(className, len(n.Args))
	for _, a := range n.Args {
		if _, err := e.eval(fr, a); err != nil {
			return nil, err
		}
	}
	if e.host != nil {
		if v, err := e.host.CallMethod(e.th, inst, "<init>", nil); err == nil {
			if asInst, ok := v.(*runtime.Instance); ok {
				return asInst, nil
			}
		}
	}
	return inst, nil
}

func convertTo(v runtime.Value, typeName string) (runtime.Value, error) {
	switch typeName {
	case "int":
		d, err := toLong(v)
		return runtime.Int(int32(d)), err
	case "long":
		d, err := toLong(v)
		return runtime.Long(d), err
	case "double":
		d, err := toDouble(v)
		return runtime.Double(d), err
	case "String":
		return runtime.Str(v.String()), nil
	case "boolean":
		return runtime.Bool(v.Truth()), nil
	case "Decimal":
		return runtime.AsDecimal(v)
	default:
		return v, nil
	}
}

func instanceOfCheck(v runtime.Value, typeName string) bool {
	switch typeName {
	case "int":
		_, ok := v.(runtime.Int)
		return ok
	case "long":
		_, ok := v.(runtime.Long)
		return ok
	case "double":
		_, ok := v.(runtime.Double)
		return ok
	case "String":
		_, ok := v.(runtime.Str)
		return ok
	case "List":
		_, ok := v.(*runtime.List)
		return ok
	case "Map":
		_, ok := v.(*runtime.Map)
		return ok
	default:
		if inst, ok := v.(*runtime.Instance); ok {
			return inst.ClassName == typeName
		}
		return false
	}
}
