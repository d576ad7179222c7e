package ast

import (
	"fmt"

	"github.com/jaccomoc/jactl-sub011/lang/token"
)

type (
	// Stmts is an ordered sequence of statements that does not introduce its
	// own scope (used for a compilation unit's top level, and for the
	// desugared init/update parts of a for loop).
	Stmts struct {
		List []Stmt
	}

	// Block is a brace-delimited statement sequence with its own scope.
	// NumLocals/NumCells are filled in by the resolver: the count of plain
	// stack slots and of heap cells this block's frame needs to allocate.
	Block struct {
		Lbrace    token.Pos
		Stmts     []Stmt
		Rbrace    token.Pos
		NumLocals int
		NumCells  int
	}

	// If is `if (cond) then [else else_]` or the postfix form `stmt if cond`
	// (in which case Then wraps the single preceding statement and Postfix
	// is true).
	If struct {
		IfPos   token.Pos
		Cond    Expr
		Then    Stmt
		Else    Stmt
		Postfix bool
		Unless  bool // `unless` keyword instead of `if` (cond is negated)
	}

	// While is `while (cond) body`, optionally labelled for break/continue.
	While struct {
		WhilePos token.Pos
		Label    string
		Cond     Expr
		Body     Stmt
	}

	// ExprStmt is an expression evaluated for its side effect at statement
	// level.
	ExprStmt struct {
		X Expr
	}

	// FunDecl is a named function or method declaration.
	FunDecl struct {
		Def      token.Pos
		Name     string
		NamePos  token.Pos
		Sig      *FuncSignature
		Body     *Block
		End      token.Pos
		IsStatic bool

		// Scope and Slot are filled in by the resolver for a nested (non
		// top-level, non-method) function declaration, which is bound like any
		// other local.
		Scope BindingScope
		Slot  int

		// Captures lists the free variables a nested FunDecl closes over,
		// exactly like Closure.Captures.
		Captures []*Identifier
	}

	// ClassDecl is a class (or interface) declaration, possibly nested
	// inside another ClassDecl's body.
	ClassDecl struct {
		ClassPos   token.Pos
		Name       string
		NamePos    token.Pos
		Extends    *TypeExpr
		Implements []*TypeExpr
		Body       *ClassBody
		End        token.Pos
		IsInterface bool
	}

	// Import is `import a.b.C` or `import a.b.C as Alias`.
	Import struct {
		ImportPos token.Pos
		Path      []string
		Alias     string
		End       token.Pos
	}

	// ThrowError is an explicit `throw expr` statement, raising a
	// DieError that carries the thrown value.
	ThrowError struct {
		ThrowPos token.Pos
		Value    Expr
	}
)

func (n *Stmts) Format(f fmt.State, verb rune) {
	format(f, verb, n, "stmts", map[string]int{"count": len(n.List)})
}
func (n *Stmts) Span() (start, end token.Pos) {
	if len(n.List) == 0 {
		return token.NoPos, token.NoPos
	}
	start, _ = n.List[0].Span()
	_, end = n.List[len(n.List)-1].Span()
	return start, end
}
func (n *Stmts) Walk(v Visitor) {
	for _, s := range n.List {
		Walk(v, s)
	}
}
func (n *Stmts) BlockEnding() bool {
	return len(n.List) > 0 && n.List[len(n.List)-1].BlockEnding()
}

func (n *Block) Format(f fmt.State, verb rune) {
	format(f, verb, n, "block", map[string]int{"stmts": len(n.Stmts), "locals": n.NumLocals, "cells": n.NumCells})
}
func (n *Block) Span() (start, end token.Pos) { return n.Lbrace, n.Rbrace }
func (n *Block) Walk(v Visitor) {
	for _, s := range n.Stmts {
		Walk(v, s)
	}
}
func (n *Block) BlockEnding() bool {
	return len(n.Stmts) > 0 && n.Stmts[len(n.Stmts)-1].BlockEnding()
}

func (n *If) Format(f fmt.State, verb rune) {
	lbl := "if"
	if n.Unless {
		lbl = "unless"
	}
	format(f, verb, n, lbl, nil)
}
func (n *If) Span() (start, end token.Pos) {
	_, end = n.Then.Span()
	if n.Else != nil {
		_, end = n.Else.Span()
	}
	return n.IfPos, end
}
func (n *If) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Then)
	if n.Else != nil {
		Walk(v, n.Else)
	}
}
func (n *If) BlockEnding() bool {
	return n.Else != nil && n.Then.BlockEnding() && n.Else.BlockEnding()
}

func (n *While) Format(f fmt.State, verb rune) { format(f, verb, n, "while "+n.Label, nil) }
func (n *While) Span() (start, end token.Pos) {
	_, end = n.Body.Span()
	return n.WhilePos, end
}
func (n *While) Walk(v Visitor) { Walk(v, n.Cond); Walk(v, n.Body) }
func (n *While) BlockEnding() bool { return false }

func (n *ExprStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "expr stmt", nil) }
func (n *ExprStmt) Span() (start, end token.Pos)  { return n.X.Span() }
func (n *ExprStmt) Walk(v Visitor)                { Walk(v, n.X) }
func (n *ExprStmt) BlockEnding() bool             { return false }

func (n *FunDecl) Format(f fmt.State, verb rune) {
	format(f, verb, n, "def "+n.Name, map[string]int{"params": len(n.Sig.Params)})
}
func (n *FunDecl) Span() (start, end token.Pos) { return n.Def, n.End }
func (n *FunDecl) Walk(v Visitor) {
	for _, p := range n.Sig.Params {
		if p.TypeExpr != nil {
			Walk(v, p.TypeExpr)
		}
		if p.Default != nil {
			Walk(v, p.Default)
		}
	}
	Walk(v, n.Body)
}
func (n *FunDecl) BlockEnding() bool { return false }

func (n *ClassDecl) Format(f fmt.State, verb rune) {
	format(f, verb, n, "class "+n.Name, map[string]int{
		"fields":  len(n.Body.Fields),
		"methods": len(n.Body.Methods),
		"classes": len(n.Body.Classes),
	})
}
func (n *ClassDecl) Span() (start, end token.Pos) { return n.ClassPos, n.End }
func (n *ClassDecl) Walk(v Visitor) {
	if n.Extends != nil {
		Walk(v, n.Extends)
	}
	for _, i := range n.Implements {
		Walk(v, i)
	}
	for _, fld := range n.Body.Fields {
		if fld.TypeExpr != nil {
			Walk(v, fld.TypeExpr)
		}
		if fld.Default != nil {
			Walk(v, fld.Default)
		}
	}
	for _, m := range n.Body.Methods {
		Walk(v, m)
	}
	for _, c := range n.Body.Classes {
		Walk(v, c)
	}
}
func (n *ClassDecl) BlockEnding() bool { return false }

func (n *Import) Format(f fmt.State, verb rune) { format(f, verb, n, "import", nil) }
func (n *Import) Span() (start, end token.Pos)  { return n.ImportPos, n.End }
func (n *Import) Walk(v Visitor)                {}
func (n *Import) BlockEnding() bool             { return false }

func (n *ThrowError) Format(f fmt.State, verb rune) { format(f, verb, n, "throw", nil) }
func (n *ThrowError) Span() (start, end token.Pos) {
	_, end = n.Value.Span()
	return n.ThrowPos, end
}
func (n *ThrowError) Walk(v Visitor)    { Walk(v, n.Value) }
func (n *ThrowError) BlockEnding() bool { return true }
