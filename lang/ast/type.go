package ast

import (
	"fmt"

	"github.com/jaccomoc/jactl-sub011/lang/token"
)

// TypeExpr is the syntax of a type annotation: a bare name (int, String,
// MyClass), a package-qualified name, a generic instantiation (List<int>,
// Map<String,def>) or an array type (int[]).
type TypeExpr struct {
	Pos        token.Pos
	Name       string   // "int", "def", "List", "MyClass", ...
	Qualifier  []string // package segments preceding Name, if any
	TypeParams []*TypeExpr
	ArrayDepth int
	End        token.Pos
}

func (n *TypeExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "type "+n.Name, nil) }
func (n *TypeExpr) Span() (start, end token.Pos)  { return n.Pos, n.End }
func (n *TypeExpr) Walk(v Visitor) {
	for _, p := range n.TypeParams {
		Walk(v, p)
	}
}
