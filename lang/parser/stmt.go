package parser

import (
	"github.com/jaccomoc/jactl-sub011/lang/ast"
	"github.com/jaccomoc/jactl-sub011/lang/token"
)

// parseStmt dispatches on the current token to the right statement
// production. Simple statement forms (expr stmt, def, const, return, break,
// continue, print/println, die) accept a trailing postfix `if`/`unless`
// modifier; compound forms (block, if, while, for, class, import) do not,
// since a postfix conditional dangling off e.g. a block would be ambiguous
// with a second, syntactically-adjacent if statement.
func (p *parser) parseStmt() ast.Stmt {
	switch p.tok.Kind {
	case token.LBRACE:
		return p.parseBlockStmtAsStmt()
	case token.IF:
		return p.parseIf(false)
	case token.UNLESS:
		return p.parseIf(true)
	case token.WHILE:
		return p.parseWhile("")
	case token.FOR:
		return p.parseFor("")
	case token.IDENT:
		if lbl, ok := p.tryLabel(); ok {
			return p.parseLabelled(lbl)
		}
		if p.peekIsIdent() {
			return p.maybePostfixCond(p.parseTypedDecl())
		}
		return p.maybePostfixCond(p.parseSimpleStmt())
	case token.DEF, token.VAR, token.CONST, token.FINAL:
		return p.maybePostfixCond(p.parseDef())
	case token.CLASS, token.INTERFACE:
		return p.parseClassDecl()
	case token.IMPORT:
		return p.parseImport()
	case token.RETURN:
		return p.maybePostfixCond(p.wrapExpr(p.parseReturn()))
	case token.BREAK:
		return p.maybePostfixCond(p.wrapExpr(p.parseBreak()))
	case token.CONTINUE:
		return p.maybePostfixCond(p.wrapExpr(p.parseContinue()))
	case token.PRINT:
		return p.maybePostfixCond(p.wrapExpr(p.parsePrint(false)))
	case token.PRINTLN:
		return p.maybePostfixCond(p.wrapExpr(p.parsePrint(true)))
	case token.DIE:
		return p.maybePostfixCond(p.wrapExpr(p.parseDieExpr()))
	default:
		return p.maybePostfixCond(p.parseSimpleStmt())
	}
}

// wrapExpr lifts a dual Expr+Stmt node (Return, Break, Continue, Print, Die,
// VarDecl) to the ast.Stmt it already satisfies directly, without the
// ExprStmt wrapper that a plain expression statement needs.
func (p *parser) wrapExpr(e interface {
	ast.Expr
	ast.Stmt
}) ast.Stmt {
	return e
}

// parseSimpleStmt parses a bare expression statement.
func (p *parser) parseSimpleStmt() ast.Stmt {
	x := p.parseExpr()
	return &ast.ExprStmt{X: x}
}

// maybePostfixCond wraps s in an *ast.If when it is immediately followed by
// a trailing `if cond` or `unless cond` modifier.
func (p *parser) maybePostfixCond(s ast.Stmt) ast.Stmt {
	switch p.tok.Kind {
	case token.IF:
		pos := p.pos()
		p.advance()
		cond := p.parseExpr()
		return &ast.If{IfPos: pos, Cond: cond, Then: s, Postfix: true}
	case token.UNLESS:
		pos := p.pos()
		p.advance()
		cond := p.parseExpr()
		return &ast.If{IfPos: pos, Cond: cond, Then: s, Postfix: true, Unless: true}
	default:
		return s
	}
}

// tryLabel looks ahead for `IDENT COLON` immediately followed by while/for,
// the syntax for a labelled loop, without committing to it: plain
// identifier-led expression statements (e.g. a bare map-literal-less ternary
// starting with an ident) must not be mistaken for a label.
func (p *parser) tryLabel() (string, bool) {
	if p.tok.Kind != token.IDENT {
		return "", false
	}
	cp := p.sc.Save()
	saved := p.tok
	savedParen := p.parenDepth
	name := p.tok.Lexeme
	p.advance()
	if p.tok.Kind == token.COLON {
		p.advance()
		if p.tok.Kind == token.WHILE || p.tok.Kind == token.FOR {
			return name, true
		}
	}
	p.sc.Restore(cp)
	p.tok = saved
	p.parenDepth = savedParen
	return "", false
}

func (p *parser) parseLabelled(label string) ast.Stmt {
	if p.tok.Kind == token.WHILE {
		return p.parseWhile(label)
	}
	return p.parseFor(label)
}

// parseIf parses `if (cond) then` with an optional `else` clause. The else
// may appear after intervening blank lines, so the EOL lookahead is
// restorable.
func (p *parser) parseIf(unless bool) ast.Stmt {
	pos := p.pos()
	p.advance()
	p.expect(token.LPAREN)
	cond := p.parseExpr()
	p.expect(token.RPAREN)
	p.skipEOLs()
	then := p.parseStmt()

	n := &ast.If{IfPos: pos, Cond: cond, Then: then, Unless: unless}
	if p.tryConsumeAfterEOLs(token.ELSE) {
		p.skipEOLs()
		n.Else = p.parseStmt()
	}
	return n
}

// tryConsumeAfterEOLs reports whether, after skipping any run of EOLs, the
// current token is k; if not, it restores the parser to before the EOLs
// were skipped (an `else` must be found on its own for this lookahead to
// commit, otherwise the EOLs belong to whatever follows).
func (p *parser) tryConsumeAfterEOLs(k token.Kind) bool {
	if p.tok.Kind != token.EOL && p.tok.Kind != k {
		return false
	}
	cp := p.sc.Save()
	saved := p.tok
	savedParen := p.parenDepth
	p.skipEOLs()
	if p.tok.Kind == k {
		p.advance()
		return true
	}
	p.sc.Restore(cp)
	p.tok = saved
	p.parenDepth = savedParen
	return false
}

func (p *parser) parseWhile(label string) ast.Stmt {
	pos := p.pos()
	p.advance()
	p.expect(token.LPAREN)
	cond := p.parseExpr()
	p.expect(token.RPAREN)
	p.skipEOLs()
	body := p.parseStmt()
	return &ast.While{WhilePos: pos, Label: label, Cond: cond, Body: body}
}

// parseFor desugars the C-style `for (init; cond; update) body` form into
// Block{init; While{cond, Block{body, update}}}, since ast.While carries no
// update clause of its own. A `continue` inside body re-enters the Go loop
// backing the While directly and so skips update; Jactl programs relying on
// continue inside a C-style for loop to still run their update clause are
// not supported by this desugaring.
func (p *parser) parseFor(label string) ast.Stmt {
	pos := p.pos()
	p.advance()
	p.expect(token.LPAREN)

	var init ast.Stmt
	if !p.at(token.SEMI) {
		init = p.parseForClauseStmt()
	}
	p.expect(token.SEMI)

	var cond ast.Expr = &ast.Literal{Pos: p.pos(), Kind: token.TRUE, Raw: "true", Value: true}
	if !p.at(token.SEMI) {
		cond = p.parseExpr()
	}
	p.expect(token.SEMI)

	var update ast.Stmt
	if !p.at(token.RPAREN) {
		update = p.parseForClauseStmt()
	}
	p.expect(token.RPAREN)
	p.skipEOLs()
	body := p.parseStmt()

	loopBody := body
	if update != nil {
		loopBody = &ast.Block{Lbrace: pos, Stmts: []ast.Stmt{body, update}, Rbrace: pos}
	}
	whileStmt := &ast.While{WhilePos: pos, Label: label, Cond: cond, Body: loopBody}
	if init == nil {
		return whileStmt
	}
	return &ast.Block{Lbrace: pos, Stmts: []ast.Stmt{init, whileStmt}, Rbrace: pos}
}

// parseForClauseStmt parses the init/update clause of a C-style for loop: a
// var declaration or a comma-separated list of expression statements.
func (p *parser) parseForClauseStmt() ast.Stmt {
	if p.at(token.DEF, token.VAR) {
		return p.parseDef()
	}
	x := p.parseExpr()
	if !p.at(token.COMMA) {
		return &ast.ExprStmt{X: x}
	}
	stmts := []ast.Stmt{&ast.ExprStmt{X: x}}
	for p.accept(token.COMMA) {
		stmts = append(stmts, &ast.ExprStmt{X: p.parseExpr()})
	}
	return &ast.Stmts{List: stmts}
}

// parseDef parses a `def`/`var`/typed variable declaration, or a `def name(
// ...)` function declaration when followed by a parenthesised parameter
// list. `const`/`final` mark the declaration IsConst.
func (p *parser) parseDef() ast.Stmt {
	isConst := p.at(token.CONST, token.FINAL)
	if isConst {
		p.advance()
	}

	var typeExpr *ast.TypeExpr
	if p.tok.Kind == token.DEF || p.tok.Kind == token.VAR {
		p.advance()
	} else {
		typeExpr = p.parseTypeExpr()
	}

	name := p.tok.Lexeme
	namePos := p.pos()
	p.expect(token.IDENT)

	if p.tok.Kind == token.LPAREN {
		return p.parseFunDeclRest(namePos, name, typeExpr, false)
	}

	decl := p.parseVarDeclRest(namePos, name, typeExpr, isConst)
	for p.accept(token.COMMA) {
		n2 := p.tok.Lexeme
		np2 := p.pos()
		p.expect(token.IDENT)
		more := p.parseVarDeclRest(np2, n2, typeExpr, isConst)
		return &ast.Stmts{List: []ast.Stmt{decl, more}}
	}
	return decl
}

// parseTypedDecl parses a statement that starts with a bare type name (no
// leading def/var/const), e.g. `int c = 0` or `String s(x) { ... }`: the
// IDENT-IDENT lookahead in parseStmt already confirmed the first identifier
// is a type, not a bare expression.
func (p *parser) parseTypedDecl() ast.Stmt {
	typeExpr := p.parseTypeExpr()
	name := p.tok.Lexeme
	namePos := p.pos()
	p.expect(token.IDENT)

	if p.tok.Kind == token.LPAREN {
		return p.parseFunDeclRest(namePos, name, typeExpr, false)
	}

	decl := p.parseVarDeclRest(namePos, name, typeExpr, false)
	for p.accept(token.COMMA) {
		n2 := p.tok.Lexeme
		np2 := p.pos()
		p.expect(token.IDENT)
		more := p.parseVarDeclRest(np2, n2, typeExpr, false)
		return &ast.Stmts{List: []ast.Stmt{decl, more}}
	}
	return decl
}

func (p *parser) parseVarDeclRest(namePos token.Pos, name string, typeExpr *ast.TypeExpr, isConst bool) ast.Stmt {
	var value ast.Expr
	if p.accept(token.EQ) {
		value = p.parseExpr()
	}
	vd := &ast.VarDecl{TypeExpr: typeExpr, Name: name, NamePos: namePos, Value: value, IsConst: isConst}
	vd.IsConst = isConst
	return vd
}

func (p *parser) parseFunDeclRest(defPos token.Pos, name string, returnType *ast.TypeExpr, isStatic bool) *ast.FunDecl {
	p.expect(token.LPAREN)
	var params []*ast.Param
	for !p.at(token.RPAREN) {
		params = append(params, p.parseTypedParam())
		if !p.accept(token.COMMA) {
			break
		}
	}
	rp := p.expect(token.RPAREN)
	_ = rp
	p.skipEOLs()
	body := p.parseBlockStmt()
	return &ast.FunDecl{
		Def: defPos, Name: name, NamePos: defPos,
		Sig:      &ast.FuncSignature{ReturnType: returnType, Params: params},
		Body:     body,
		End:      body.Rbrace,
		IsStatic: isStatic,
	}
}

// parseTypedParam parses a function/method parameter, which unlike a
// closure parameter may carry an explicit type annotation.
func (p *parser) parseTypedParam() *ast.Param {
	var typeExpr *ast.TypeExpr
	if p.tok.Kind == token.DEF {
		p.advance()
	} else if p.tok.Kind != token.IDENT || p.peekIsIdent() {
		typeExpr = p.parseTypeExpr()
	}
	name := p.tok.Lexeme
	namePos := p.pos()
	p.expect(token.IDENT)
	var def ast.Expr
	if p.accept(token.EQ) {
		def = p.parseExpr()
	}
	return &ast.Param{Name: name, NamePos: namePos, TypeExpr: typeExpr, Default: def}
}

// peekIsIdent reports whether the current IDENT token is followed by
// another IDENT, which only happens in `Type name` parameter syntax (a bare
// `name` parameter is never followed directly by another identifier).
func (p *parser) peekIsIdent() bool {
	if p.tok.Kind != token.IDENT {
		return false
	}
	cp := p.sc.Save()
	saved := p.tok
	savedParen := p.parenDepth
	p.advance()
	isIdent := p.tok.Kind == token.IDENT
	p.sc.Restore(cp)
	p.tok = saved
	p.parenDepth = savedParen
	return isIdent
}

func (p *parser) parseBlockStmtAsStmt() ast.Stmt {
	return p.parseBlockStmt()
}

func (p *parser) parseBlockStmt() *ast.Block {
	lb := p.expect(token.LBRACE)
	p.skipEOLs()
	var stmts []ast.Stmt
	for !p.at(token.RBRACE, token.EOF) {
		stmts = append(stmts, p.parseStmtRecover())
		p.endStmt()
		p.skipEOLs()
	}
	rb := p.expect(token.RBRACE)
	return &ast.Block{Lbrace: lb, Stmts: stmts, Rbrace: rb}
}

func (p *parser) parseClassDecl() ast.Stmt {
	pos := p.pos()
	isInterface := p.tok.Kind == token.INTERFACE
	p.advance()
	name := p.tok.Lexeme
	namePos := p.pos()
	p.expect(token.IDENT)

	var extends *ast.TypeExpr
	if p.accept(token.EXTENDS) {
		extends = p.parseTypeExpr()
	}
	var implements []*ast.TypeExpr
	if p.accept(token.IMPLEMENTS) {
		implements = append(implements, p.parseTypeExpr())
		for p.accept(token.COMMA) {
			implements = append(implements, p.parseTypeExpr())
		}
	}

	p.skipEOLs()
	body := p.parseClassBody()
	return &ast.ClassDecl{
		ClassPos: pos, Name: name, NamePos: namePos,
		Extends: extends, Implements: implements,
		Body: body, End: p.pos(), IsInterface: isInterface,
	}
}

func (p *parser) parseClassBody() *ast.ClassBody {
	p.expect(token.LBRACE)
	p.skipEOLs()
	body := &ast.ClassBody{}
	for !p.at(token.RBRACE, token.EOF) {
		p.parseClassMember(body)
		p.endStmt()
		p.skipEOLs()
	}
	p.expect(token.RBRACE)
	return body
}

func (p *parser) parseClassMember(body *ast.ClassBody) {
	isStatic := p.accept(token.STATIC)
	isConst := p.accept(token.CONST) || p.accept(token.FINAL)

	if p.at(token.CLASS, token.INTERFACE) {
		if cd, ok := p.parseClassDecl().(*ast.ClassDecl); ok {
			body.Classes = append(body.Classes, cd)
		}
		return
	}

	var typeExpr *ast.TypeExpr
	if p.tok.Kind == token.DEF || p.tok.Kind == token.VAR {
		p.advance()
	} else {
		typeExpr = p.parseTypeExpr()
	}
	name := p.tok.Lexeme
	namePos := p.pos()
	p.expect(token.IDENT)

	if p.tok.Kind == token.LPAREN {
		fn := p.parseFunDeclRest(namePos, name, typeExpr, isStatic)
		body.Methods = append(body.Methods, fn)
		return
	}

	var def ast.Expr
	if p.accept(token.EQ) {
		def = p.parseExpr()
	}
	body.Fields = append(body.Fields, &ast.ClassField{
		Name: name, NamePos: namePos, TypeExpr: typeExpr, Default: def, IsConst: isConst, IsStatic: isStatic,
	})
}

func (p *parser) parseImport() ast.Stmt {
	pos := p.pos()
	p.advance()
	var path []string
	path = append(path, p.tok.Lexeme)
	p.expect(token.IDENT)
	for p.accept(token.DOT) {
		path = append(path, p.tok.Lexeme)
		p.expect(token.IDENT)
	}
	var alias string
	if p.accept(token.AS) {
		alias = p.tok.Lexeme
		p.expect(token.IDENT)
	}
	return &ast.Import{ImportPos: pos, Path: path, Alias: alias, End: p.pos()}
}

func (p *parser) parseReturn() *ast.Return {
	pos := p.pos()
	p.advance()
	var value ast.Expr
	if !p.at(token.EOL, token.SEMI, token.RBRACE, token.EOF, token.IF, token.UNLESS) {
		value = p.parseExpr()
	}
	return &ast.Return{Pos: pos, Value: value}
}

func (p *parser) parseBreak() *ast.Break {
	pos := p.pos()
	p.advance()
	var label string
	if p.tok.Kind == token.IDENT {
		label = p.tok.Lexeme
		p.advance()
	}
	return &ast.Break{Pos: pos, Label: label}
}

func (p *parser) parseContinue() *ast.Continue {
	pos := p.pos()
	p.advance()
	var label string
	if p.tok.Kind == token.IDENT {
		label = p.tok.Lexeme
		p.advance()
	}
	return &ast.Continue{Pos: pos, Label: label}
}

func (p *parser) parsePrint(newline bool) *ast.Print {
	pos := p.pos()
	p.advance()
	var args []ast.Expr
	if p.accept(token.LPAREN) {
		if !p.at(token.RPAREN) {
			args, _ = p.parseArgList()
		}
		p.expect(token.RPAREN)
	} else if !p.at(token.EOL, token.SEMI, token.RBRACE, token.EOF, token.IF, token.UNLESS) {
		args = append(args, p.parseExpr())
	}
	return &ast.Print{Pos: pos, Args: args, Newline: newline}
}

func (p *parser) parseDieExpr() *ast.Die {
	pos := p.pos()
	p.advance()
	value := p.parseExpr()
	return &ast.Die{Pos: pos, Value: value}
}
