// Package ast defines the abstract syntax tree produced by the parser and
// consumed by the resolver and the execution engine. Every node pairs a
// concrete grammar production with the location it was parsed from; fields
// that the resolver fills in later (resolved type, constant-folding results,
// async propagation, capture info) live directly on the node so that later
// passes never need a side table keyed by node identity.
package ast

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jaccomoc/jactl-sub011/lang/token"
)

// Node is implemented by every AST node.
type Node interface {
	fmt.Formatter

	// Span reports the start and end source position of the node.
	Span() (start, end token.Pos)

	// Walk visits the node's direct children (see Visitor).
	Walk(v Visitor)
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	expr()

	// Type returns the type the resolver inferred for this expression.
	// It is ast.Unresolved until the resolver pass runs.
	Type() Type
	SetType(Type)

	// IsAsync reports whether evaluating this expression may suspend the
	// enclosing frame, per the resolver's async propagation pass.
	IsAsync() bool
	SetAsync(bool)
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node

	// BlockEnding reports whether the statement can only legally appear as
	// the last statement of a block (return, break, continue, throw).
	BlockEnding() bool
}

// Type is a placeholder for the resolved static type of an expression; the
// types package defines the concrete lattice. It is declared here as an
// interface so ast has no import-cycle dependency on types.
type Type interface {
	TypeName() string
}

// Unresolved is the Type value every expression starts out with before the
// resolver assigns a concrete type.
var Unresolved Type = unresolvedType{}

type unresolvedType struct{}

func (unresolvedType) TypeName() string { return "<unresolved>" }

// exprBase is embedded by every Expr implementation to carry the fields the
// resolver attaches uniformly: static type, async-ness, constant-folding
// result and null-ability. Concrete node types add their own grammar fields
// alongside this embed.
type exprBase struct {
	typ        Type
	async      bool
	IsConst    bool
	ConstValue interface{}
	CouldBeNull bool
}

func (b *exprBase) expr() {}
func (b *exprBase) Type() Type {
	if b.typ == nil {
		return Unresolved
	}
	return b.typ
}
func (b *exprBase) SetType(t Type)  { b.typ = t }
func (b *exprBase) IsAsync() bool   { return b.async }
func (b *exprBase) SetAsync(a bool) { b.async = a }

// Unwrap strips parenthesisation, returning the innermost non-Paren
// expression.
func Unwrap(e Expr) Expr {
	for {
		p, ok := e.(*Paren)
		if !ok {
			return e
		}
		e = p.Inner
	}
}

// IsAssignable reports whether e can appear on the left of an assignment:
// an identifier, a field access, or an index expression.
func IsAssignable(e Expr) bool {
	switch e := e.(type) {
	case *Identifier:
		return true
	case *FieldAccess:
		return true
	case *Index:
		return true
	case *Paren:
		return IsAssignable(e.Inner)
	default:
		return false
	}
}

func format(f fmt.State, verb rune, n Node, label string, counts map[string]int) {
	if verb != 'v' && verb != 's' {
		fmt.Fprintf(f, "%%!%c(%T)", verb, n)
		return
	}

	label = strings.ReplaceAll(label, "\r\n", "\\n")
	label = strings.ReplaceAll(label, "\n", "\\n")
	label = strings.ReplaceAll(label, "\t", "\\t")

	if w, ok := f.Width(); ok {
		minus, plus := f.Flag('-'), f.Flag('+')
		runes := []rune(label)
		if len(runes) >= w {
			runes = runes[:w]
		} else if minus {
			runes = append(runes, []rune(strings.Repeat(" ", w-len(runes)))...)
		} else if !plus {
			runes = append([]rune(strings.Repeat(" ", w-len(runes))), runes...)
		}
		label = string(runes)
	}

	fmt.Fprint(f, label)
	if f.Flag('#') && len(counts) > 0 {
		keys := make([]string, 0, len(counts))
		for k := range counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprint(f, " {")
		for i, k := range keys {
			if i > 0 {
				fmt.Fprint(f, ", ")
			}
			fmt.Fprintf(f, "%s=%d", k, counts[k])
		}
		fmt.Fprint(f, "}")
	}
}
