package runtime

import "github.com/jaccomoc/jactl-sub011/lang/types"

// Cell is a heap box around a Value. A local variable the resolver has
// promoted from ScopeLocal to ScopeCell (because some nested closure
// captures it) is stored as a *Cell in its frame's locals array instead of
// a bare Value, so the enclosing frame and every closure over it share one
// mutable location. Capturing a cell across a suspend/resume boundary is
// exactly what lets a closure observe mutations made after it suspended.
type Cell struct{ V Value }

func NewCell(v Value) *Cell { return &Cell{V: v} }

func (c *Cell) String() string   { return "cell(" + c.V.String() + ")" }
func (c *Cell) Kind() types.Kind { return c.V.Kind() }
func (c *Cell) Truth() bool      { return c.V.Truth() }

// Function is a callable value: either a user-defined Jactl function/method
// (AST identifies the body) or a closure over captured cells. The execution
// engine, not this package, knows how to invoke it; Function only carries
// the data needed to do so.
type Function struct {
	Name     string
	ParamNames []string
	IsAsync  bool
	// Captured holds the heap cells a closure captured from its enclosing
	// scopes, in the order the resolver assigned them.
	Captured []*Cell
	// Body is an opaque handle the machine package understands (an
	// *ast.FunDecl or *ast.Closure); kept as interface{} here to avoid a
	// runtime -> ast import cycle, since ast nodes never need to know about
	// runtime.Value.
	Body interface{}
	// Bound, if non-nil, is the receiver a method was bound to ("x.m" as a
	// first-class value captures x).
	Bound Value
}

func (fn *Function) String() string   { return "function " + fn.Name }
func (fn *Function) Kind() types.Kind { return types.FUNCTION }
func (fn *Function) Truth() bool      { return true }
