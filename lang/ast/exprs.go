package ast

import (
	"fmt"

	"github.com/jaccomoc/jactl-sub011/lang/token"
)

// BindingScope classifies where an Identifier's value lives once the
// resolver has run. ScopeUndefined is the zero value, before resolution.
type BindingScope int

const (
	ScopeUndefined BindingScope = iota
	ScopeLocal                  // a simple stack local, never captured
	ScopeCell                   // hoisted to a heap cell because a nested closure captures it
	ScopeFree                   // accessed from an enclosing function's cell through a closure
	ScopeField                  // an instance field of the enclosing class
	ScopeGlobal                 // a predeclared / global binding
)

type (
	// Literal is a constant int, long, double, decimal, string, boolean or
	// null value.
	Literal struct {
		exprBase
		Pos   token.Pos
		Kind  token.Kind
		Raw   string
		Value interface{}
	}

	// Identifier is a bare name reference. Scope and Slot are filled in by
	// the resolver; Slot indexes into the enclosing frame's locals, cells or
	// captured-cells array depending on Scope.
	Identifier struct {
		exprBase
		NamePos token.Pos
		Name    string
		Scope   BindingScope
		Slot    int
	}

	// Binary is a two-operand operator expression (arithmetic, comparison,
	// logical, bitwise).
	Binary struct {
		exprBase
		Left  Expr
		Op    token.Kind
		OpPos token.Pos
		Right Expr
	}

	// PrefixUnary is a prefix operator expression: -x, !x, ++x, --x.
	PrefixUnary struct {
		exprBase
		Op    token.Kind
		OpPos token.Pos
		Right Expr
	}

	// PostfixUnary is x++ or x--.
	PostfixUnary struct {
		exprBase
		Left  Expr
		Op    token.Kind
		OpPos token.Pos
	}

	// Ternary is cond ? then : else.
	Ternary struct {
		exprBase
		Cond     Expr
		Question token.Pos
		Then     Expr
		Colon    token.Pos
		Else     Expr
	}

	// ConvertTo is the `expr as Type` cast expression.
	ConvertTo struct {
		exprBase
		Value  Expr
		As     token.Pos
		Target *TypeExpr
	}

	// InstanceOf is `expr instanceof Type` (optionally negated by a leading !).
	InstanceOf struct {
		exprBase
		Value  Expr
		Pos    token.Pos
		Target *TypeExpr
		Negate bool
	}

	// Call is a direct function invocation, fn(args...).
	Call struct {
		exprBase
		Callee    Expr
		Lparen    token.Pos
		Args      []Expr
		NamedArgs bool // true when Args is a single trailing MapLiteral of name:value pairs
		Rparen    token.Pos
	}

	// MethodCall is target.method(args...), optionally null-safe (?.).
	MethodCall struct {
		exprBase
		Target   Expr
		NullSafe bool
		Dot      token.Pos
		Method   string
		Lparen   token.Pos
		Args     []Expr
		Rparen   token.Pos
	}

	// ListLiteral is [a, b, c].
	ListLiteral struct {
		exprBase
		Lbrack token.Pos
		Items  []Expr
		Rbrack token.Pos
	}

	// MapEntry is a single key:value pair of a MapLiteral.
	MapEntry struct {
		Key   Expr
		Colon token.Pos
		Value Expr
	}

	// MapLiteral is [a:1, b:2] or [:] for an empty map. IsNamedArgs marks a
	// map literal synthesized by the parser for a named-argument call.
	MapLiteral struct {
		exprBase
		Lbrack      token.Pos
		Entries     []*MapEntry
		Rbrack      token.Pos
		IsNamedArgs bool
	}

	// ExprString is an interpolated string: alternating *Literal segments and
	// embedded expressions, e.g. "x=${x}!" -> [Literal("x="), Identifier(x),
	// Literal("!")].
	ExprString struct {
		exprBase
		Pos   token.Pos
		Parts []Expr
	}

	// CaptureVar is a `$1`, `$2`, ... reference to a regex capture group set
	// by the most recently evaluated RegexMatch on the current thread. $0 is
	// the whole match.
	CaptureVar struct {
		exprBase
		Pos   token.Pos
		Index int
	}

	// RegexMatch is `target =~ pattern` (or `!~` when Negate is true). Global
	// marks the 'g' modifier, which drives repeated-match iteration.
	RegexMatch struct {
		exprBase
		Target  Expr
		Pos     token.Pos
		Pattern Expr
		Negate  bool
		Global  bool
	}

	// RegexSubst is `target =~ s/pattern/replacement/modifiers`.
	RegexSubst struct {
		exprBase
		Target      Expr
		Pos         token.Pos
		Pattern     Expr
		Replacement Expr
		Global      bool
	}

	// VarDecl declares a local variable, e.g. `def x = 1` or `int y`. It
	// satisfies both Expr (for use as a for-loop initialiser) and Stmt (as
	// an ordinary declaration statement).
	VarDecl struct {
		exprBase
		TypeExpr *TypeExpr // nil for `def`
		Name     string
		NamePos  token.Pos
		Value    Expr // nil if uninitialised
		IsConst  bool

		// Scope and Slot are filled in by the resolver.
		Scope BindingScope
		Slot  int
	}

	// Closure is an anonymous function literal: `{ params -> body }` or the
	// bare trailing-closure form `{ stmts }`.
	Closure struct {
		exprBase
		Fn       token.Pos
		Sig      *FuncSignature
		Body     *Block
		End      token.Pos
		Captures []*Identifier // filled by the resolver
	}

	// VarAssign is `ident = value`.
	VarAssign struct {
		exprBase
		Target *Identifier
		Eq     token.Pos
		Value  Expr
	}

	// VarOpAssign is `ident op= value` (+=, -=, *=, /=, %%=, &&=, ||=, ?:=, ...).
	VarOpAssign struct {
		exprBase
		Target *Identifier
		Op     token.Kind
		OpPos  token.Pos
		Value  Expr
	}

	// FieldAccess is `target.field`, `target?.field` or `target*.field` (the
	// last flattens over a list, applying the access to each element).
	FieldAccess struct {
		exprBase
		Target   Expr
		NullSafe bool
		Flatten  bool
		Dot      token.Pos
		Field    string
	}

	// Index is `target[index]`.
	Index struct {
		exprBase
		Target Expr
		Lbrack token.Pos
		Idx    Expr
		Rbrack token.Pos
	}

	// FieldAssign is `target.field = value` or `target[index] = value`.
	FieldAssign struct {
		exprBase
		Target Expr // *FieldAccess or *Index
		Eq     token.Pos
		Value  Expr
	}

	// FieldOpAssign is the op= form of FieldAssign.
	FieldOpAssign struct {
		exprBase
		Target Expr
		Op     token.Kind
		OpPos  token.Pos
		Value  Expr
	}

	// Return is `return value` (value may be nil). It satisfies both Expr
	// (return can appear as the RHS of a ?: chain) and Stmt.
	Return struct {
		exprBase
		Pos   token.Pos
		Value Expr
	}

	// Break is `break` or `break label`.
	Break struct {
		exprBase
		Pos   token.Pos
		Label string
	}

	// Continue is `continue` or `continue label`.
	Continue struct {
		exprBase
		Pos   token.Pos
		Label string
	}

	// Print is `print(...)` or `println(...)`.
	Print struct {
		exprBase
		Pos     token.Pos
		Args    []Expr
		Newline bool
	}

	// Die is `die value`, raising a DieError.
	Die struct {
		exprBase
		Pos   token.Pos
		Value Expr
	}

	// Eval compiles and runs Source as a fresh script, returning its result.
	Eval struct {
		exprBase
		Pos    token.Pos
		Source Expr
	}

	// BlockExpr is a `do { ... }` block used in expression position; its
	// value is that of the last statement/expression in Body.
	BlockExpr struct {
		exprBase
		Do    token.Pos
		Body  *Block
		End   token.Pos
	}

	// InvokeNew is `new Type(args...)`.
	InvokeNew struct {
		exprBase
		New    token.Pos
		Target *TypeExpr
		Args   []Expr
		Rparen token.Pos
	}

	// InvokeInit is a `this(args...)` or `super(args...)` call as the first
	// statement of a constructor body.
	InvokeInit struct {
		exprBase
		Pos   token.Pos
		Super bool
		Args  []Expr
	}

	// DefaultValue yields the zero value for a declared type (0, 0.0, "",
	// false, null, ...), used when a field or parameter has no explicit
	// initialiser.
	DefaultValue struct {
		exprBase
		Pos    token.Pos
		Target *TypeExpr
	}

	// Noop is a placeholder expression with no runtime effect, used for an
	// elided ternary/elvis branch.
	Noop struct {
		exprBase
		Pos token.Pos
	}

	// ClassPath is a package-qualified class reference, e.g. a.b.MyClass
	// used where a type or a static member is addressed directly.
	ClassPath struct {
		exprBase
		Pos      token.Pos
		Segments []string
	}

	// Paren is a parenthesised expression, kept in the tree so Span and
	// IsAssignable unwrapping have an explicit node to walk through.
	Paren struct {
		exprBase
		Lparen token.Pos
		Inner  Expr
		Rparen token.Pos
	}
)

func (n *Literal) Format(f fmt.State, verb rune) { format(f, verb, n, n.Kind.String()+" "+n.Raw, nil) }
func (n *Literal) Span() (start, end token.Pos)  { return n.Pos, n.Pos }
func (n *Literal) Walk(v Visitor)                {}

func (n *Identifier) Format(f fmt.State, verb rune) { format(f, verb, n, n.Name, nil) }
func (n *Identifier) Span() (start, end token.Pos)  { return n.NamePos, n.NamePos }
func (n *Identifier) Walk(v Visitor)                {}

func (n *CaptureVar) Format(f fmt.State, verb rune) { format(f, verb, n, "$capture", nil) }
func (n *CaptureVar) Span() (start, end token.Pos)  { return n.Pos, n.Pos }
func (n *CaptureVar) Walk(v Visitor)                {}

func (n *Binary) Format(f fmt.State, verb rune) { format(f, verb, n, "binary "+n.Op.String(), nil) }
func (n *Binary) Span() (start, end token.Pos) {
	start, _ = n.Left.Span()
	_, end = n.Right.Span()
	return start, end
}
func (n *Binary) Walk(v Visitor) { Walk(v, n.Left); Walk(v, n.Right) }

func (n *PrefixUnary) Format(f fmt.State, verb rune) { format(f, verb, n, "prefix "+n.Op.String(), nil) }
func (n *PrefixUnary) Span() (start, end token.Pos) {
	_, end = n.Right.Span()
	return n.OpPos, end
}
func (n *PrefixUnary) Walk(v Visitor) { Walk(v, n.Right) }

func (n *PostfixUnary) Format(f fmt.State, verb rune) {
	format(f, verb, n, "postfix "+n.Op.String(), nil)
}
func (n *PostfixUnary) Span() (start, end token.Pos) {
	start, _ = n.Left.Span()
	return start, n.OpPos
}
func (n *PostfixUnary) Walk(v Visitor) { Walk(v, n.Left) }

func (n *Ternary) Format(f fmt.State, verb rune) { format(f, verb, n, "ternary", nil) }
func (n *Ternary) Span() (start, end token.Pos) {
	start, _ = n.Cond.Span()
	_, end = n.Else.Span()
	return start, end
}
func (n *Ternary) Walk(v Visitor) { Walk(v, n.Cond); Walk(v, n.Then); Walk(v, n.Else) }

func (n *ConvertTo) Format(f fmt.State, verb rune) { format(f, verb, n, "as "+n.Target.Name, nil) }
func (n *ConvertTo) Span() (start, end token.Pos) {
	start, _ = n.Value.Span()
	return start, n.Target.End
}
func (n *ConvertTo) Walk(v Visitor) { Walk(v, n.Value); Walk(v, n.Target) }

func (n *InstanceOf) Format(f fmt.State, verb rune) {
	lbl := "instanceof " + n.Target.Name
	if n.Negate {
		lbl = "!" + lbl
	}
	format(f, verb, n, lbl, nil)
}
func (n *InstanceOf) Span() (start, end token.Pos) {
	start, _ = n.Value.Span()
	return start, n.Target.End
}
func (n *InstanceOf) Walk(v Visitor) { Walk(v, n.Value); Walk(v, n.Target) }

func (n *Call) Format(f fmt.State, verb rune) { format(f, verb, n, "call", map[string]int{"args": len(n.Args)}) }
func (n *Call) Span() (start, end token.Pos) {
	start, _ = n.Callee.Span()
	return start, n.Rparen
}
func (n *Call) Walk(v Visitor) {
	Walk(v, n.Callee)
	for _, a := range n.Args {
		Walk(v, a)
	}
}

func (n *MethodCall) Format(f fmt.State, verb rune) {
	format(f, verb, n, "call ."+n.Method, map[string]int{"args": len(n.Args)})
}
func (n *MethodCall) Span() (start, end token.Pos) {
	start, _ = n.Target.Span()
	return start, n.Rparen
}
func (n *MethodCall) Walk(v Visitor) {
	Walk(v, n.Target)
	for _, a := range n.Args {
		Walk(v, a)
	}
}

func (n *ListLiteral) Format(f fmt.State, verb rune) {
	format(f, verb, n, "list", map[string]int{"items": len(n.Items)})
}
func (n *ListLiteral) Span() (start, end token.Pos) { return n.Lbrack, n.Rbrack }
func (n *ListLiteral) Walk(v Visitor) {
	for _, e := range n.Items {
		Walk(v, e)
	}
}

func (n *MapLiteral) Format(f fmt.State, verb rune) {
	format(f, verb, n, "map", map[string]int{"entries": len(n.Entries)})
}
func (n *MapLiteral) Span() (start, end token.Pos) { return n.Lbrack, n.Rbrack }
func (n *MapLiteral) Walk(v Visitor) {
	for _, e := range n.Entries {
		Walk(v, e.Key)
		Walk(v, e.Value)
	}
}

func (n *ExprString) Format(f fmt.State, verb rune) {
	format(f, verb, n, "interpolated string", map[string]int{"parts": len(n.Parts)})
}
func (n *ExprString) Span() (start, end token.Pos) {
	end = n.Pos
	if len(n.Parts) > 0 {
		_, end = n.Parts[len(n.Parts)-1].Span()
	}
	return n.Pos, end
}
func (n *ExprString) Walk(v Visitor) {
	for _, p := range n.Parts {
		Walk(v, p)
	}
}

func (n *RegexMatch) Format(f fmt.State, verb rune) {
	lbl := "=~"
	if n.Negate {
		lbl = "!~"
	}
	format(f, verb, n, lbl, nil)
}
func (n *RegexMatch) Span() (start, end token.Pos) {
	start, _ = n.Target.Span()
	_, end = n.Pattern.Span()
	return start, end
}
func (n *RegexMatch) Walk(v Visitor) { Walk(v, n.Target); Walk(v, n.Pattern) }

func (n *RegexSubst) Format(f fmt.State, verb rune) { format(f, verb, n, "=~ s///", nil) }
func (n *RegexSubst) Span() (start, end token.Pos) {
	start, _ = n.Target.Span()
	_, end = n.Replacement.Span()
	return start, end
}
func (n *RegexSubst) Walk(v Visitor) {
	Walk(v, n.Target)
	Walk(v, n.Pattern)
	Walk(v, n.Replacement)
}

func (n *VarDecl) Format(f fmt.State, verb rune) { format(f, verb, n, "var "+n.Name, nil) }
func (n *VarDecl) Span() (start, end token.Pos) {
	end = n.NamePos
	if n.Value != nil {
		_, end = n.Value.Span()
	}
	return n.NamePos, end
}
func (n *VarDecl) Walk(v Visitor) {
	if n.TypeExpr != nil {
		Walk(v, n.TypeExpr)
	}
	if n.Value != nil {
		Walk(v, n.Value)
	}
}
func (n *VarDecl) BlockEnding() bool { return false }

func (n *Closure) Format(f fmt.State, verb rune) {
	format(f, verb, n, "closure", map[string]int{"params": len(n.Sig.Params), "captures": len(n.Captures)})
}
func (n *Closure) Span() (start, end token.Pos) { return n.Fn, n.End }
func (n *Closure) Walk(v Visitor) {
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

func (n *VarAssign) Format(f fmt.State, verb rune) { format(f, verb, n, n.Target.Name+" =", nil) }
func (n *VarAssign) Span() (start, end token.Pos) {
	_, end = n.Value.Span()
	return n.Target.NamePos, end
}
func (n *VarAssign) Walk(v Visitor) { Walk(v, n.Target); Walk(v, n.Value) }

func (n *VarOpAssign) Format(f fmt.State, verb rune) {
	format(f, verb, n, n.Target.Name+" "+n.Op.String(), nil)
}
func (n *VarOpAssign) Span() (start, end token.Pos) {
	_, end = n.Value.Span()
	return n.Target.NamePos, end
}
func (n *VarOpAssign) Walk(v Visitor) { Walk(v, n.Target); Walk(v, n.Value) }

func (n *FieldAccess) Format(f fmt.State, verb rune) {
	dot := "."
	if n.NullSafe {
		dot = "?."
	} else if n.Flatten {
		dot = "*."
	}
	format(f, verb, n, "expr"+dot+n.Field, nil)
}
func (n *FieldAccess) Span() (start, end token.Pos) {
	start, _ = n.Target.Span()
	return start, n.Dot
}
func (n *FieldAccess) Walk(v Visitor) { Walk(v, n.Target) }

func (n *Index) Format(f fmt.State, verb rune) { format(f, verb, n, "expr[index]", nil) }
func (n *Index) Span() (start, end token.Pos) {
	start, _ = n.Target.Span()
	return start, n.Rbrack
}
func (n *Index) Walk(v Visitor) { Walk(v, n.Target); Walk(v, n.Idx) }

func (n *FieldAssign) Format(f fmt.State, verb rune) { format(f, verb, n, "field =", nil) }
func (n *FieldAssign) Span() (start, end token.Pos) {
	start, _ = n.Target.Span()
	_, end = n.Value.Span()
	return start, end
}
func (n *FieldAssign) Walk(v Visitor) { Walk(v, n.Target); Walk(v, n.Value) }

func (n *FieldOpAssign) Format(f fmt.State, verb rune) { format(f, verb, n, "field "+n.Op.String(), nil) }
func (n *FieldOpAssign) Span() (start, end token.Pos) {
	start, _ = n.Target.Span()
	_, end = n.Value.Span()
	return start, end
}
func (n *FieldOpAssign) Walk(v Visitor) { Walk(v, n.Target); Walk(v, n.Value) }

func (n *Return) Format(f fmt.State, verb rune) { format(f, verb, n, "return", nil) }
func (n *Return) Span() (start, end token.Pos) {
	end = n.Pos
	if n.Value != nil {
		_, end = n.Value.Span()
	}
	return n.Pos, end
}
func (n *Return) Walk(v Visitor) {
	if n.Value != nil {
		Walk(v, n.Value)
	}
}
func (n *Return) BlockEnding() bool { return true }

func (n *Break) Format(f fmt.State, verb rune) { format(f, verb, n, "break "+n.Label, nil) }
func (n *Break) Span() (start, end token.Pos)  { return n.Pos, n.Pos }
func (n *Break) Walk(v Visitor)                {}
func (n *Break) BlockEnding() bool              { return true }

func (n *Continue) Format(f fmt.State, verb rune) { format(f, verb, n, "continue "+n.Label, nil) }
func (n *Continue) Span() (start, end token.Pos)  { return n.Pos, n.Pos }
func (n *Continue) Walk(v Visitor)                {}
func (n *Continue) BlockEnding() bool              { return true }

func (n *Print) Format(f fmt.State, verb rune) {
	lbl := "print"
	if n.Newline {
		lbl = "println"
	}
	format(f, verb, n, lbl, map[string]int{"args": len(n.Args)})
}
func (n *Print) Span() (start, end token.Pos) {
	end = n.Pos
	if len(n.Args) > 0 {
		_, end = n.Args[len(n.Args)-1].Span()
	}
	return n.Pos, end
}
func (n *Print) Walk(v Visitor) {
	for _, a := range n.Args {
		Walk(v, a)
	}
}
func (n *Print) BlockEnding() bool { return false }

func (n *Die) Format(f fmt.State, verb rune) { format(f, verb, n, "die", nil) }
func (n *Die) Span() (start, end token.Pos) {
	_, end = n.Value.Span()
	return n.Pos, end
}
func (n *Die) Walk(v Visitor)     { Walk(v, n.Value) }
func (n *Die) BlockEnding() bool  { return true }

func (n *Eval) Format(f fmt.State, verb rune) { format(f, verb, n, "eval", nil) }
func (n *Eval) Span() (start, end token.Pos) {
	_, end = n.Source.Span()
	return n.Pos, end
}
func (n *Eval) Walk(v Visitor) { Walk(v, n.Source) }

func (n *BlockExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "do block", nil) }
func (n *BlockExpr) Span() (start, end token.Pos)  { return n.Do, n.End }
func (n *BlockExpr) Walk(v Visitor)                { Walk(v, n.Body) }

func (n *InvokeNew) Format(f fmt.State, verb rune) {
	format(f, verb, n, "new "+n.Target.Name, map[string]int{"args": len(n.Args)})
}
func (n *InvokeNew) Span() (start, end token.Pos) { return n.New, n.Rparen }
func (n *InvokeNew) Walk(v Visitor) {
	Walk(v, n.Target)
	for _, a := range n.Args {
		Walk(v, a)
	}
}

func (n *InvokeInit) Format(f fmt.State, verb rune) {
	lbl := "this(...)"
	if n.Super {
		lbl = "super(...)"
	}
	format(f, verb, n, lbl, nil)
}
func (n *InvokeInit) Span() (start, end token.Pos) {
	end = n.Pos
	if len(n.Args) > 0 {
		_, end = n.Args[len(n.Args)-1].Span()
	}
	return n.Pos, end
}
func (n *InvokeInit) Walk(v Visitor) {
	for _, a := range n.Args {
		Walk(v, a)
	}
}

func (n *DefaultValue) Format(f fmt.State, verb rune) { format(f, verb, n, "default("+n.Target.Name+")", nil) }
func (n *DefaultValue) Span() (start, end token.Pos)  { return n.Pos, n.Target.End }
func (n *DefaultValue) Walk(v Visitor)                { Walk(v, n.Target) }

func (n *Noop) Format(f fmt.State, verb rune) { format(f, verb, n, "noop", nil) }
func (n *Noop) Span() (start, end token.Pos)  { return n.Pos, n.Pos }
func (n *Noop) Walk(v Visitor)                {}

func (n *ClassPath) Format(f fmt.State, verb rune) {
	lbl := n.Segments[len(n.Segments)-1]
	format(f, verb, n, "path "+lbl, nil)
}
func (n *ClassPath) Span() (start, end token.Pos) { return n.Pos, n.Pos }
func (n *ClassPath) Walk(v Visitor)               {}

func (n *Paren) Format(f fmt.State, verb rune) { format(f, verb, n, "(expr)", nil) }
func (n *Paren) Span() (start, end token.Pos)  { return n.Lparen, n.Rparen }
func (n *Paren) Walk(v Visitor)                { Walk(v, n.Inner) }
