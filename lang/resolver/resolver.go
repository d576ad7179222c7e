// Package resolver performs the semantic analysis pass between parsing and
// execution: scope and binding resolution (including the closure-capture
// heap-cell promotion that lets a nested function share a mutable local
// with its enclosing function), type checking/inference, and async
// propagation (marking every function that may suspend, directly or
// transitively, so the execution engine knows which call sites need a
// resumable Frame).
package resolver

import (
	"fmt"

	"github.com/jaccomoc/jactl-sub011/lang/ast"
	"github.com/jaccomoc/jactl-sub011/lang/token"
	"github.com/jaccomoc/jactl-sub011/lang/types"
)

// AsyncOracle reports whether a named host function is async, so the
// resolver can seed async propagation from host bindings it has no other
// visibility into. The host package's Registry implements this.
type AsyncOracle interface {
	IsAsyncFunc(name string) bool
	IsAsyncMethod(typeName, method string) bool
}

// env is one lexical block's symbol table, chained to its enclosing block.
type env struct {
	parent   *env
	fn       *Function
	bindings map[string]*Binding
	isClass  bool // this env holds a class's fields, not a block's locals
}

// Resolver walks an ast.Block (the synthesized top-level script body) and
// annotates every ast.Identifier, ast.Closure and ast.FunDecl it reaches
// with scope, slot, type and async information.
type Resolver struct {
	Oracle AsyncOracle

	errs    token.ErrorList
	src     *token.Source
	env     *env
	classes map[string]*ast.ClassDecl
	funcs   []*Function // every function seen, for the async fixed-point pass
	calls   map[*Function][]*Function
}

// New returns a Resolver ready to resolve a single compilation unit.
func New(src *token.Source, oracle AsyncOracle) *Resolver {
	return &Resolver{
		Oracle:  oracle,
		src:     src,
		classes: make(map[string]*ast.ClassDecl),
		calls:   make(map[*Function][]*Function),
	}
}

// Resolve runs the full pass over the top-level statements of a script and
// returns the accumulated diagnostics (empty if resolution succeeded).
func (r *Resolver) Resolve(top *ast.Block) token.ErrorList {
	script := &Function{Decl: nil}
	r.funcs = append(r.funcs, script)
	r.env = &env{fn: script, bindings: make(map[string]*Binding)}

	r.collectClasses(top)
	r.block(top)
	script.NumCells = countCells(script.Locals)

	r.propagateAsync()
	r.errs.Sort()
	return r.errs
}

func (r *Resolver) errorf(p token.Pos, format string, args ...interface{}) {
	r.errs.Add(r.src.Position(p), fmt.Sprintf(format, args...))
}

// collectClasses pre-declares every class at this level so forward
// references (a class used before its declaration appears lexically) and
// mutual/cyclic `extends` chains can be detected before any method body is
// resolved.
func (r *Resolver) collectClasses(top *ast.Block) {
	for _, s := range top.Stmts {
		if cd, ok := s.(*ast.ClassDecl); ok {
			r.classes[cd.Name] = cd
		}
	}
	for _, cd := range r.classes {
		r.checkInheritanceCycle(cd, map[string]bool{})
	}
}

func (r *Resolver) checkInheritanceCycle(cd *ast.ClassDecl, seen map[string]bool) {
	if cd.Extends == nil {
		return
	}
	name := cd.Extends.Name
	if seen[cd.Name] {
		r.errorf(cd.ClassPos, "cyclic inheritance involving class %s", cd.Name)
		return
	}
	seen[cd.Name] = true
	if parent, ok := r.classes[name]; ok {
		r.checkInheritanceCycle(parent, seen)
	}
}

func (r *Resolver) pushBlock() {
	r.env = &env{parent: r.env, fn: r.env.fn, bindings: make(map[string]*Binding)}
}

func (r *Resolver) pushFunction(fn *Function, isClass bool) {
	r.funcs = append(r.funcs, fn)
	r.env = &env{parent: r.env, fn: fn, bindings: make(map[string]*Binding), isClass: isClass}
}

func (r *Resolver) pop() { r.env = r.env.parent }

func (r *Resolver) block(b *ast.Block) {
	r.pushBlock()
	r.collectFuncDecls(b)
	for _, s := range b.Stmts {
		r.stmt(s)
	}
	b.NumLocals = len(r.env.fn.Locals)
	b.NumCells = countCells(r.env.fn.Locals)
	r.pop()
}

// collectFuncDecls pre-declares every named function at this block's top
// level so sibling functions can forward-reference or mutually recurse with
// each other regardless of lexical order, mirroring collectClasses. funDecl
// sees the name already bound and skips re-binding it.
func (r *Resolver) collectFuncDecls(b *ast.Block) {
	for _, s := range b.Stmts {
		if fd, ok := s.(*ast.FunDecl); ok {
			r.bind(fd.Name, fd.NamePos, true, fd)
		}
	}
}

func countCells(locals []*Binding) int {
	n := 0
	for _, b := range locals {
		if b.Scope == ast.ScopeCell {
			n++
		}
	}
	return n
}

// bind declares name in the current block, rejecting re-declaration within
// the same block (shadowing an outer block is fine).
func (r *Resolver) bind(name string, pos token.Pos, isConst bool, decl ast.Node) *Binding {
	if _, ok := r.env.bindings[name]; ok {
		r.errorf(pos, "variable already declared in this scope: %s", name)
	}
	scope := ast.ScopeLocal
	if r.env.isClass {
		scope = ast.ScopeField
	}
	b := &Binding{Name: name, Scope: scope, IsConst: isConst, Decl: decl, DeclLine: pos.Line, DeclCol: pos.Col}
	if scope == ast.ScopeLocal {
		r.env.fn.addLocal(b)
	}
	r.env.bindings[name] = b
	setDeclScope(decl, scope, b.Index)
	return b
}

// setDeclScope writes the resolver's verdict back onto the declaring node
// so the evaluator can find the right slot without re-walking bindings.
func setDeclScope(decl ast.Node, scope ast.BindingScope, slot int) {
	switch d := decl.(type) {
	case *ast.VarDecl:
		d.Scope, d.Slot = scope, slot
	case *ast.Param:
		d.Scope, d.Slot = scope, slot
	case *ast.FunDecl:
		d.Scope, d.Slot = scope, slot
	}
}

// use resolves ident against the enclosing scope chain, promoting a found
// binding from Local to Cell the moment it is referenced from a nested
// function (generalizing the Local -> Cell hoist so the heap cell exists
// by the time either side needs to share it across a suspend/resume).
func (r *Resolver) use(ident *ast.Identifier) {
	startFn := r.env.fn
	for e := r.env; e != nil; e = e.parent {
		b, ok := e.bindings[ident.Name]
		if !ok {
			continue
		}
		// Named functions (and methods) support forward reference and mutual
		// recursion within their scope, so the declared-after-use check below
		// applies only to plain variable/param bindings.
		if _, isFunc := b.Decl.(*ast.FunDecl); !isFunc {
			if ident.NamePos.Line != 0 && ident.NamePos.Line < b.DeclLine ||
				(ident.NamePos.Line == b.DeclLine && ident.NamePos.Col < b.DeclCol) {
				r.errorf(ident.NamePos, "cannot capture variable declared after this reference: %s", ident.Name)
			}
		}

		if e.fn != startFn && b.Scope == ast.ScopeLocal {
			b.Scope = ast.ScopeCell
			setDeclScope(b.Decl, b.Scope, b.Index)
		}
		if e.fn != startFn {
			ix := startFn.addFreeVar(b)
			ident.Scope = ast.ScopeFree
			ident.Slot = ix
			return
		}
		ident.Scope = b.Scope
		ident.Slot = b.Index
		return
	}
	if IsBuiltinFunc(ident.Name) || (r.Oracle != nil && r.Oracle.IsAsyncFunc(ident.Name)) {
		ident.Scope = ast.ScopeGlobal
		return
	}
	if _, ok := r.classes[ident.Name]; ok {
		ident.Scope = ast.ScopeGlobal
		return
	}
	r.errorf(ident.NamePos, "undeclared variable: %s", ident.Name)
	ident.Scope = ast.ScopeGlobal
}

func (r *Resolver) stmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.Stmts:
		for _, sub := range s.List {
			r.stmt(sub)
		}
	case *ast.Block:
		r.block(s)
	case *ast.If:
		r.expr(s.Cond)
		r.stmt(s.Then)
		if s.Else != nil {
			r.stmt(s.Else)
		}
	case *ast.While:
		r.expr(s.Cond)
		r.stmt(s.Body)
	case *ast.ExprStmt:
		r.expr(s.X)
	case *ast.VarDecl:
		r.varDecl(s)
	case *ast.Return:
		r.returnExpr(s)
	case *ast.Break, *ast.Continue:
		// no bindings to resolve
	case *ast.Print:
		for _, a := range s.Args {
			r.expr(a)
		}
	case *ast.Die:
		r.expr(s.Value)
	case *ast.ThrowError:
		r.expr(s.Value)
	case *ast.FunDecl:
		r.funDecl(s)
	case *ast.ClassDecl:
		r.classDecl(s)
	case *ast.Import:
		// resolved by the host's package loader, not the scope resolver
	default:
		r.errorf(token.NoPos, "resolver: unhandled statement %T", s)
	}
}

func (r *Resolver) varDecl(s *ast.VarDecl) {
	if s.Value != nil {
		r.expr(s.Value)
	}
	declType := types.Any
	if s.TypeExpr != nil {
		if t, ok := types.Lookup(s.TypeExpr.Name); ok {
			declType = t
		} else {
			declType = types.InstanceOf(s.TypeExpr.Name)
		}
	} else if s.Value != nil {
		if vt, ok := s.Value.Type().(*types.Type); ok {
			declType = vt
		}
	}
	s.SetType(declType)
	r.bind(s.Name, s.NamePos, s.IsConst, s)
}

func (r *Resolver) returnExpr(s *ast.Return) {
	if s.Value != nil {
		r.expr(s.Value)
	}
}

func (r *Resolver) funDecl(s *ast.FunDecl) {
	if _, ok := r.env.bindings[s.Name]; !ok {
		r.bind(s.Name, s.NamePos, true, s)
	}
	fn := &Function{Decl: s, Parent: r.env.fn}
	r.pushFunction(fn, false)
	for _, p := range s.Sig.Params {
		if p.Default != nil {
			r.expr(p.Default)
		}
		r.bind(p.Name, p.NamePos, false, p)
	}
	r.block(s.Body)
	r.pop()
	fn.NumCells = countCells(fn.Locals)
	s.Sig.IsAsync = fn.IsAsync

	s.Captures = make([]*ast.Identifier, len(fn.FreeVars))
	for i, b := range fn.FreeVars {
		s.Captures[i] = &ast.Identifier{Name: b.Name, Scope: b.Scope, Slot: b.Index}
	}
	r.calls[r.env.fn] = append(r.calls[r.env.fn], fn)
}

func (r *Resolver) closure(c *ast.Closure) {
	fn := &Function{Decl: c, Parent: r.env.fn}
	r.pushFunction(fn, false)
	for _, p := range c.Sig.Params {
		if p.Default != nil {
			r.expr(p.Default)
		}
		r.bind(p.Name, p.NamePos, false, p)
	}
	r.block(c.Body)
	r.pop()
	fn.NumCells = countCells(fn.Locals)
	c.Sig.IsAsync = fn.IsAsync

	c.Captures = make([]*ast.Identifier, len(fn.FreeVars))
	for i, b := range fn.FreeVars {
		c.Captures[i] = &ast.Identifier{Name: b.Name, Scope: b.Scope, Slot: b.Index}
	}
	r.calls[r.env.fn] = append(r.calls[r.env.fn], fn)
}

func (r *Resolver) classDecl(cd *ast.ClassDecl) {
	classFn := &Function{Decl: cd, Parent: r.env.fn}
	r.pushFunction(classFn, true)
	for _, f := range cd.Body.Fields {
		if f.Default != nil {
			r.expr(f.Default)
		}
		r.bind(f.Name, f.NamePos, f.IsConst, f)
	}
	for _, m := range cd.Body.Methods {
		r.bind(m.Name, m.NamePos, true, m)
	}
	for _, m := range cd.Body.Methods {
		r.funDecl(m)
	}
	for _, nested := range cd.Body.Classes {
		r.classDecl(nested)
	}
	r.pop()
}

func (r *Resolver) expr(e ast.Expr) {
	switch e := e.(type) {
	case *ast.Literal:
		e.IsConst = true
		e.ConstValue = e.Value
	case *ast.Identifier:
		r.use(e)
	case *ast.CaptureVar:
		e.SetType(types.Str)
	case *ast.Binary:
		r.expr(e.Left)
		r.expr(e.Right)
	case *ast.PrefixUnary:
		r.expr(e.Right)
	case *ast.PostfixUnary:
		r.expr(e.Left)
	case *ast.Ternary:
		r.expr(e.Cond)
		r.expr(e.Then)
		r.expr(e.Else)
	case *ast.ConvertTo:
		r.expr(e.Value)
	case *ast.InstanceOf:
		r.expr(e.Value)
	case *ast.Call:
		r.expr(e.Callee)
		for _, a := range e.Args {
			r.expr(a)
		}
		r.markCallAsync(e)
	case *ast.MethodCall:
		r.expr(e.Target)
		for _, a := range e.Args {
			r.expr(a)
		}
		if r.Oracle != nil {
			tname := e.Target.Type().TypeName()
			if r.Oracle.IsAsyncMethod(tname, e.Method) {
				e.SetAsync(true)
				r.env.fn.IsAsync = true
			}
		}
	case *ast.ListLiteral:
		for _, it := range e.Items {
			r.expr(it)
		}
	case *ast.MapLiteral:
		for _, ent := range e.Entries {
			r.expr(ent.Key)
			r.expr(ent.Value)
		}
	case *ast.ExprString:
		for _, p := range e.Parts {
			r.expr(p)
		}
	case *ast.RegexMatch:
		r.expr(e.Target)
		r.expr(e.Pattern)
	case *ast.RegexSubst:
		r.expr(e.Target)
		r.expr(e.Pattern)
		r.expr(e.Replacement)
	case *ast.VarDecl:
		r.varDecl(e)
	case *ast.Closure:
		r.closure(e)
	case *ast.VarAssign:
		r.use(e.Target)
		r.expr(e.Value)
	case *ast.VarOpAssign:
		r.use(e.Target)
		r.expr(e.Value)
	case *ast.FieldAccess:
		r.expr(e.Target)
	case *ast.Index:
		r.expr(e.Target)
		r.expr(e.Idx)
	case *ast.FieldAssign:
		r.expr(e.Target)
		r.expr(e.Value)
	case *ast.FieldOpAssign:
		r.expr(e.Target)
		r.expr(e.Value)
	case *ast.Return:
		r.returnExpr(e)
	case *ast.Break, *ast.Continue:
	case *ast.Print:
		for _, a := range e.Args {
			r.expr(a)
		}
	case *ast.Die:
		r.expr(e.Value)
	case *ast.Eval:
		r.expr(e.Source)
		e.SetAsync(true)
		r.env.fn.IsAsync = true
	case *ast.BlockExpr:
		r.block(e.Body)
	case *ast.InvokeNew:
		for _, a := range e.Args {
			r.expr(a)
		}
	case *ast.InvokeInit:
		for _, a := range e.Args {
			r.expr(a)
		}
	case *ast.DefaultValue, *ast.Noop, *ast.ClassPath:
		// nothing to resolve
	case *ast.Paren:
		r.expr(e.Inner)
	default:
		r.errorf(token.NoPos, "resolver: unhandled expression %T", e)
	}
}

// markCallAsync records the direct-call edge for the async fixed-point pass
// and, if the callee is a known async host function, marks the call site
// and its enclosing function immediately.
func (r *Resolver) markCallAsync(call *ast.Call) {
	ident, ok := call.Callee.(*ast.Identifier)
	if !ok {
		return
	}
	if r.Oracle != nil && r.Oracle.IsAsyncFunc(ident.Name) {
		call.SetAsync(true)
		r.env.fn.IsAsync = true
	}
}

// propagateAsync runs a worklist fixed point over the call graph built
// during the main pass: any function that calls (directly, or
// transitively through a chain already marked async) an async function
// becomes async itself, until no function's status changes.
func (r *Resolver) propagateAsync() {
	changed := true
	for changed {
		changed = false
		for caller, callees := range r.calls {
			if caller.IsAsync {
				continue
			}
			for _, callee := range callees {
				if callee.IsAsync {
					caller.IsAsync = true
					changed = true
					break
				}
			}
		}
	}
	for _, fn := range r.funcs {
		switch d := fn.Decl.(type) {
		case *ast.FunDecl:
			d.Sig.IsAsync = d.Sig.IsAsync || fn.IsAsync
		case *ast.Closure:
			d.Sig.IsAsync = d.Sig.IsAsync || fn.IsAsync
		}
	}
}
