package ast

import "github.com/jaccomoc/jactl-sub011/lang/token"

// Param is a single parameter of a function or closure declaration.
type Param struct {
	Name     string
	NamePos  token.Pos
	TypeExpr *TypeExpr // nil for a `def` (dynamically typed) parameter
	Default  Expr      // nil if the parameter has no default value
	VarArgs  bool       // true for the final "...name" parameter

	// Scope and Slot are filled in by the resolver, exactly like
	// Identifier.Scope/Slot, so the evaluator knows where to store the
	// argument value when the frame is built.
	Scope BindingScope
	Slot  int
}

// FuncSignature is the parameter list and declared return type shared by
// FunDecl and Closure.
type FuncSignature struct {
	ReturnType *TypeExpr // nil for `def` return type
	Params     []*Param
	IsAsync    bool // filled in by the resolver's async propagation pass
}

// ClassField is a single field declared in a class body.
type ClassField struct {
	Name     string
	NamePos  token.Pos
	TypeExpr *TypeExpr
	Default  Expr // nil if no initialiser
	IsConst  bool
	IsStatic bool
}

// ClassBody groups the fields, methods and nested classes of a class
// declaration.
type ClassBody struct {
	Fields  []*ClassField
	Methods []*FunDecl
	Classes []*ClassDecl
}
