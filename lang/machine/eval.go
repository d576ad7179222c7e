package machine

import (
	"fmt"

	"github.com/jaccomoc/jactl-sub011/lang/ast"
	"github.com/jaccomoc/jactl-sub011/lang/runtime"
)

// Host is the binding surface the evaluator calls out to for any name the
// resolver left as ast.ScopeGlobal: built-in functions, and methods that a
// concrete runtime.Value type doesn't implement itself. lang/host.Registry
// is the concrete implementation; tests in this package use small stub
// Hosts.
type Host interface {
	Call(th *Thread, name string, args []runtime.Value) (runtime.Value, error)
	IsAsync(name string) bool
	CallMethod(th *Thread, target runtime.Value, method string, args []runtime.Value) (runtime.Value, error)
}

// evaluator is the tree-walking interpreter core. One evaluator exists per
// Thread.Execute goroutine; its current Frame is whichever function call is
// innermost on th.callStack.
type evaluator struct {
	th   *Thread
	host Host
}

func frameOf(th *Thread) *Frame {
	if len(th.callStack) == 0 {
		return nil
	}
	return th.callStack[len(th.callStack)-1]
}

func slotCount(body *ast.Block) int {
	if body == nil {
		return 0
	}
	return body.NumLocals
}

// funcParts returns the resolved body and declared parameters behind a
// runtime.Function value, whichever AST shape (FunDecl or Closure) it wraps.
func funcParts(fn *runtime.Function) (*ast.Block, []*ast.Param, error) {
	switch d := fn.Body.(type) {
	case *ast.FunDecl:
		return d.Body, d.Sig.Params, nil
	case *ast.Closure:
		return d.Body, d.Sig.Params, nil
	default:
		return nil, nil, fmt.Errorf("call target %q has no AST body", fn.Name)
	}
}

// callFunction calls fn with a plain positional argument vector: args[i] is
// the value for params[i], missing trailing positions fall back to that
// parameter's default expression.
func (e *evaluator) callFunction(fn *runtime.Function, args []runtime.Value) (runtime.Value, error) {
	return e.callFunctionArgs(fn, args, nil)
}

// callFunctionArgs is the canonical argument-resolution entry point: a
// positional argument vector plus, for a named-argument call, a parallel
// mask of which positions the caller actually supplied (the rest fall back
// to their declared defaults). provided == nil means "derive it from
// len(args)" (a plain positional call).
func (e *evaluator) callFunctionArgs(fn *runtime.Function, args []runtime.Value, provided []bool) (runtime.Value, error) {
	body, params, err := funcParts(fn)
	if err != nil {
		return nil, err
	}

	fr := &Frame{
		Callable: fn,
		Locals:   make([]runtime.Value, slotCount(body)),
		Cells:    make([]*runtime.Cell, slotCount(body)),
		Captured: fn.Captured,
		Decl:     fn.Body,
	}
	for i := range fr.Locals {
		fr.Locals[i] = runtime.TheNull
	}
	for i, p := range params {
		var v runtime.Value = runtime.TheNull
		have := i < len(args)
		if provided != nil {
			have = i < len(provided) && provided[i]
		}
		if have {
			v = args[i]
		} else if p.Default != nil {
			dv, err := e.eval(fr, p.Default)
			if err != nil {
				return nil, err
			}
			v = dv
		}
		if err := e.store(fr, p.Scope, p.Slot, v); err != nil {
			return nil, err
		}
	}

	if err := e.th.pushFrame(fr); err != nil {
		return nil, err
	}
	defer e.th.popFrame()

	v, err := e.execBlock(fr, body)
	if rs, ok := err.(returnSignal); ok {
		return rs.value, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// execBlock evaluates a block's statements in order, returning the value of
// the last expression statement so do{} blocks can be used in expression
// position. Control-flow signals (return/break/continue) propagate up as
// the error.
func (e *evaluator) execBlock(fr *Frame, b *ast.Block) (runtime.Value, error) {
	var last runtime.Value = runtime.TheNull
	for _, s := range b.Stmts {
		v, err := e.execStmt(fr, s)
		if err != nil {
			return nil, err
		}
		last = v
	}
	return last, nil
}

func (e *evaluator) execStmt(fr *Frame, s ast.Stmt) (runtime.Value, error) {
	if err := e.th.tick(); err != nil {
		return nil, err
	}
	switch s := s.(type) {
	case *ast.Stmts:
		var last runtime.Value = runtime.TheNull
		for _, sub := range s.List {
			v, err := e.execStmt(fr, sub)
			if err != nil {
				return nil, err
			}
			last = v
		}
		return last, nil
	case *ast.Block:
		return e.execBlock(fr, s)
	case *ast.ExprStmt:
		return e.eval(fr, s.X)
	case *ast.If:
		cond, err := e.eval(fr, s.Cond)
		if err != nil {
			return nil, err
		}
		truth := cond.Truth()
		if s.Unless {
			truth = !truth
		}
		if truth {
			return e.execStmt(fr, s.Then)
		}
		if s.Else != nil {
			return e.execStmt(fr, s.Else)
		}
		return runtime.TheNull, nil
	case *ast.While:
		for {
			cond, err := e.eval(fr, s.Cond)
			if err != nil {
				return nil, err
			}
			if !cond.Truth() {
				break
			}
			_, err = e.execStmt(fr, s.Body)
			if err != nil {
				if bs, ok := err.(breakSignal); ok {
					if bs.label == "" || bs.label == s.Label {
						break
					}
				}
				if cs, ok := err.(continueSignal); ok {
					if cs.label == "" || cs.label == s.Label {
						continue
					}
				}
				return nil, err
			}
		}
		return runtime.TheNull, nil
	case *ast.VarDecl:
		return e.varDecl(fr, s)
	case *ast.Return:
		var v runtime.Value = runtime.TheNull
		if s.Value != nil {
			var err error
			v, err = e.eval(fr, s.Value)
			if err != nil {
				return nil, err
			}
		}
		return nil, returnSignal{value: v}
	case *ast.Break:
		return nil, breakSignal{label: s.Label}
	case *ast.Continue:
		return nil, continueSignal{label: s.Label}
	case *ast.Print:
		return e.printStmt(fr, s.Args, s.Newline)
	case *ast.Die:
		v, err := e.eval(fr, s.Value)
		if err != nil {
			return nil, err
		}
		return nil, runtime.DieError{Value: v}
	case *ast.ThrowError:
		v, err := e.eval(fr, s.Value)
		if err != nil {
			return nil, err
		}
		return nil, runtime.DieError{Value: v}
	case *ast.FunDecl:
		// nested named function: bound once, as a local, to its own closure.
		fn := e.makeClosureLike(fr, s.Sig, s.Body, s.Name, s.Captures, s)
		return runtime.TheNull, e.store(fr, s.Scope, s.Slot, fn)
	case *ast.ClassDecl:
		return runtime.TheNull, nil // class bodies are bound at resolve time; nothing to execute here
	case *ast.Import:
		return runtime.TheNull, nil
	default:
		return nil, fmt.Errorf("machine: unhandled statement %T", s)
	}
}

func (e *evaluator) printStmt(fr *Frame, args []ast.Expr, newline bool) (runtime.Value, error) {
	for i, a := range args {
		v, err := e.eval(fr, a)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			fmt.Fprint(e.th.stdout, " ")
		}
		fmt.Fprint(e.th.stdout, v.String())
	}
	if newline {
		fmt.Fprintln(e.th.stdout)
	}
	return runtime.TheNull, nil
}

func (e *evaluator) varDecl(fr *Frame, s *ast.VarDecl) (runtime.Value, error) {
	v := runtime.Value(runtime.TheNull)
	if s.Value != nil {
		var err error
		v, err = e.eval(fr, s.Value)
		if err != nil {
			return nil, err
		}
	}
	return v, e.store(fr, s.Scope, s.Slot, v)
}

// store writes v into the slot addressed by (scope, slot) within fr,
// materialising a heap Cell on first write for a ScopeCell slot.
func (e *evaluator) store(fr *Frame, scope ast.BindingScope, slot int, v runtime.Value) error {
	switch scope {
	case ast.ScopeLocal:
		if slot >= 0 && slot < len(fr.Locals) {
			fr.Locals[slot] = v
		}
	case ast.ScopeCell:
		if slot >= 0 && slot < len(fr.Cells) {
			if fr.Cells[slot] == nil {
				fr.Cells[slot] = runtime.NewCell(v)
			} else {
				fr.Cells[slot].V = v
			}
		}
	case ast.ScopeFree:
		if slot >= 0 && slot < len(fr.Captured) {
			fr.Captured[slot].V = v
		}
	}
	return nil
}

// cellAt returns the heap cell backing a ScopeCell local, creating it (with
// a Null initial value) the first time it is needed — which may be at
// closure-creation time, before the variable's own declaration statement
// has run if the closure appears lexically before it is first assigned.
func (e *evaluator) cellAt(fr *Frame, slot int) *runtime.Cell {
	if slot < 0 || slot >= len(fr.Cells) {
		return runtime.NewCell(runtime.TheNull)
	}
	if fr.Cells[slot] == nil {
		fr.Cells[slot] = runtime.NewCell(runtime.TheNull)
	}
	return fr.Cells[slot]
}

// makeClosureLike builds the runtime.Function value for either a Closure
// expression or a nested named FunDecl statement, capturing the cells its
// free variables were promoted into in the defining frame.
func (e *evaluator) makeClosureLike(fr *Frame, sig *ast.FuncSignature, body *ast.Block, name string, captures []*ast.Identifier, decl interface{}) *runtime.Function {
	captured := make([]*runtime.Cell, len(captures))
	for i, c := range captures {
		captured[i] = e.cellAt(fr, c.Slot)
	}
	var paramNames []string
	for _, p := range sig.Params {
		paramNames = append(paramNames, p.Name)
	}
	return &runtime.Function{
		Name:       name,
		ParamNames: paramNames,
		IsAsync:    sig.IsAsync,
		Captured:   captured,
		Body:       decl,
	}
}

func (e *evaluator) load(fr *Frame, scope ast.BindingScope, slot int) runtime.Value {
	switch scope {
	case ast.ScopeLocal:
		if slot >= 0 && slot < len(fr.Locals) {
			return fr.Locals[slot]
		}
	case ast.ScopeCell:
		if slot >= 0 && slot < len(fr.Cells) && fr.Cells[slot] != nil {
			return fr.Cells[slot].V
		}
	case ast.ScopeFree:
		if slot >= 0 && slot < len(fr.Captured) {
			return fr.Captured[slot].V
		}
	}
	return runtime.TheNull
}
