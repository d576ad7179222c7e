package machine

import (
	"github.com/jaccomoc/jactl-sub011/lang/ast"
	"github.com/jaccomoc/jactl-sub011/lang/runtime"
	"github.com/jaccomoc/jactl-sub011/lang/token"
)

// Frame is one entry of the reified call stack: the function being
// executed, its local variable slots, its heap cells (for locals promoted
// by the resolver to ast.ScopeCell), and the cells captured from its
// defining closure. Keeping this as an explicit, inspectable value (rather
// than Go's own call stack) is what lets Thread suspend mid-call and
// resume later with the same locals intact.
type Frame struct {
	Callable *runtime.Function
	Locals   []runtime.Value
	Cells    []*runtime.Cell
	Captured []*runtime.Cell

	// This is the receiver for a method frame, nil for a plain function.
	This *runtime.Instance

	Decl interface{} // *ast.FunDecl, *ast.Closure or nil for the top-level script
}

// Position returns the source location of decl for error reporting.
func Position(decl interface{}) (start token.Pos) {
	if n, ok := decl.(ast.Node); ok {
		start, _ = n.Span()
	}
	return start
}
