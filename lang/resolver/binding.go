package resolver

import "github.com/jaccomoc/jactl-sub011/lang/ast"

// Binding is the resolver's bookkeeping record for one declared name. The
// ast.Identifier nodes that reference the name only store the final
// Scope/Slot (see ast.Identifier), but during resolution we need this
// richer record to detect re-declaration, track forward references for the
// "captured before declared" diagnostic, and to grow a function's local/
// cell/freevar tables as new names are bound or promoted.
type Binding struct {
	Name    string
	Scope   ast.BindingScope
	Index   int // slot within the owning Function's Locals/Cells/FreeVars
	Decl    ast.Node
	IsConst bool

	// DeclLine/DeclCol are set once, at bind time, and used to reject a closure that
	// captures the variable via a reference appearing lexically before the
	// declaration.
	DeclLine, DeclCol int
}

// Function tracks the per-function resolution state: its locals (turned
// into cells on demand), the free variables captured from enclosing
// functions, and whether any operation inside it is async.
type Function struct {
	Decl     ast.Node // *ast.FunDecl, *ast.Closure, or nil for the top-level script
	Parent   *Function
	Locals   []*Binding
	FreeVars []*Binding
	IsAsync  bool

	// NumCells is computed once resolution finishes: the subset of Locals
	// that ended up with Scope == ast.ScopeCell.
	NumCells int
}

func (fn *Function) addLocal(b *Binding) {
	b.Index = len(fn.Locals)
	fn.Locals = append(fn.Locals, b)
}

func (fn *Function) addFreeVar(b *Binding) int {
	ix := len(fn.FreeVars)
	fn.FreeVars = append(fn.FreeVars, b)
	return ix
}
