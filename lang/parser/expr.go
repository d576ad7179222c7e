package parser

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jaccomoc/jactl-sub011/lang/ast"
	"github.com/jaccomoc/jactl-sub011/lang/runtime"
	"github.com/jaccomoc/jactl-sub011/lang/token"
)

// prio is the left/right binding power of a binary operator, indexed by
// token.Kind; the gap between left and right encodes associativity (equal
// for left-assoc, right < left for right-assoc, as with STAR_STAR below).
type prio struct{ left, right int }

var binopPriority = map[token.Kind]prio{
	token.QUESTION_COLON: {1, 1},
	token.OR:             {2, 2},
	token.AND:            {3, 3},
	token.EQEQ:           {4, 4}, token.BANGEQ: {4, 4},
	token.TRIPLE_EQ: {4, 4}, token.BANG_DOUBLE_EQ: {4, 4}, token.COMPARE: {4, 4},
	token.LT: {5, 5}, token.LE: {5, 5}, token.GT: {5, 5}, token.GE: {5, 5},
	token.MATCH: {6, 6}, token.NOT_MATCH: {6, 6},
	token.PIPE:      {7, 7},
	token.CIRCUMFLEX: {8, 8},
	token.AMPERSAND:  {9, 9},
	token.LTLT:       {10, 10}, token.GTGT: {10, 10}, token.GTGTGT: {10, 10},
	token.PLUS: {11, 11}, token.MINUS: {11, 11},
	token.STAR: {12, 12}, token.SLASH: {12, 12}, token.PERCENT: {12, 12}, token.PERCENT_PERCENT: {12, 12},
	token.STAR_STAR: {14, 13}, // right-associative
}

const unaryPriority = 13

func isUnaryOp(k token.Kind) bool {
	switch k {
	case token.MINUS, token.BANG, token.NOT, token.TILDE, token.PLUS_PLUS, token.MINUS_MINUS:
		return true
	}
	return false
}

var compoundAssignOps = map[token.Kind]bool{
	token.PLUS_EQ: true, token.MINUS_EQ: true, token.STAR_EQ: true, token.SLASH_EQ: true,
	token.PERCENT_EQ: true, token.PERCENT_PERCENT_EQ: true, token.STAR_STAR_EQ: true,
	token.AMP_EQ: true, token.PIPE_EQ: true, token.CIRCUMFLEX_EQ: true,
	token.LTLT_EQ: true, token.GTGT_EQ: true, token.GTGTGT_EQ: true,
	token.QUESTION_EQ: true, token.AMP_AMP_EQ: true, token.PIPE_PIPE_EQ: true, token.ELVIS_EQ: true,
}

// parseExpr parses a full expression: assignment, then ternary, then the
// precedence-climbed binary/unary/postfix chain.
func (p *parser) parseExpr() ast.Expr {
	return p.parseAssign()
}

func (p *parser) parseAssign() ast.Expr {
	left := p.parseTernary()
	switch {
	case p.tok.Kind == token.EQ:
		eq := p.pos()
		p.advance()
		value := p.parseAssign()
		return p.buildAssign(left, eq, value)
	case compoundAssignOps[p.tok.Kind]:
		op := p.tok.Kind
		opPos := p.pos()
		p.advance()
		value := p.parseAssign()
		return p.buildOpAssign(left, op, opPos, value)
	}
	return left
}

func (p *parser) buildAssign(target ast.Expr, eq token.Pos, value ast.Expr) ast.Expr {
	switch t := ast.Unwrap(target).(type) {
	case *ast.Identifier:
		return &ast.VarAssign{Target: t, Eq: eq, Value: value}
	case *ast.FieldAccess, *ast.Index:
		return &ast.FieldAssign{Target: t, Eq: eq, Value: value}
	default:
		p.error(eq, "invalid assignment target")
		return target
	}
}

func (p *parser) buildOpAssign(target ast.Expr, op token.Kind, opPos token.Pos, value ast.Expr) ast.Expr {
	switch t := ast.Unwrap(target).(type) {
	case *ast.Identifier:
		return &ast.VarOpAssign{Target: t, Op: op, OpPos: opPos, Value: value}
	case *ast.FieldAccess, *ast.Index:
		return &ast.FieldOpAssign{Target: t, Op: op, OpPos: opPos, Value: value}
	default:
		p.error(opPos, "invalid assignment target")
		return target
	}
}

func (p *parser) parseTernary() ast.Expr {
	cond := p.parseSubExpr(0)
	if p.tok.Kind == token.QUESTION {
		q := p.pos()
		p.advance()
		then := p.parseAssign()
		colon := p.expect(token.COLON)
		els := p.parseAssign()
		return &ast.Ternary{Cond: cond, Question: q, Then: then, Colon: colon, Else: els}
	}
	return cond
}

// parseSubExpr is the precedence-climbing core: it parses a unary-or-postfix
// operand, the optional `as`/`instanceof` suffixes, then repeatedly folds in
// binary operators whose left binding power exceeds limit.
func (p *parser) parseSubExpr(limit int) ast.Expr {
	var left ast.Expr
	if isUnaryOp(p.tok.Kind) {
		op := p.tok.Kind
		opPos := p.pos()
		p.advance()
		right := p.parseSubExpr(unaryPriority)
		left = &ast.PrefixUnary{Op: op, OpPos: opPos, Right: right}
	} else {
		left = p.parsePostfix(p.parsePrimary())
	}

	for p.at(token.AS, token.INSTANCE_OF) {
		if p.tok.Kind == token.AS {
			asPos := p.pos()
			p.advance()
			target := p.parseTypeExpr()
			left = &ast.ConvertTo{Value: left, As: asPos, Target: target}
		} else {
			pos := p.pos()
			p.advance()
			target := p.parseTypeExpr()
			left = &ast.InstanceOf{Value: left, Pos: pos, Target: target}
		}
	}

	for {
		pr, ok := binopPriority[p.tok.Kind]
		if !ok || pr.left <= limit {
			break
		}
		op := p.tok.Kind
		opPos := p.pos()
		if op == token.MATCH || op == token.NOT_MATCH {
			left = p.parseRegexOperand(left, op, opPos)
			continue
		}
		p.advance()
		right := p.parseSubExpr(pr.right)
		left = &ast.Binary{Left: left, Op: op, OpPos: opPos, Right: right}
	}
	return left
}

// parseRegexOperand scans the pattern (and, for a s/pattern/replacement/
// substitution, the replacement) half of a =~/!~ expression directly from
// the scanner, bypassing the parser's normal advance since the scanner's
// cursor sits unconsumed at the opening '/' the instant MATCH/NOT_MATCH is
// returned as the current token.
func (p *parser) parseRegexOperand(target ast.Expr, op token.Kind, opPos token.Pos) ast.Expr {
	negate := op == token.NOT_MATCH
	p.sc.SkipInlineSpace()
	substitution := p.sc.Current() == 's' && p.sc.Peek(0) == '/'
	if substitution {
		p.sc.ConsumeMarker()
	}
	patTok := p.sc.ScanPattern()
	pattern := &ast.Literal{Pos: opPos, Kind: token.REGEX_STRING, Raw: patTok.Value.Raw, Value: patTok.Value.String}

	if substitution {
		replTok := p.sc.ScanPatternBody()
		replacement := &ast.Literal{Pos: opPos, Kind: token.REGEX_STRING, Raw: replTok.Value.Raw, Value: replTok.Value.String}
		global := strings.Contains(p.sc.ScanModifiers(), "g")
		p.advance()
		return &ast.RegexSubst{Target: target, Pos: opPos, Pattern: pattern, Replacement: replacement, Global: global}
	}

	global := strings.Contains(p.sc.ScanModifiers(), "g")
	p.advance()
	return &ast.RegexMatch{Target: target, Pos: opPos, Pattern: pattern, Negate: negate, Global: global}
}

func (p *parser) parsePostfix(e ast.Expr) ast.Expr {
	for {
		switch p.tok.Kind {
		case token.LPAREN:
			e = p.parseCall(e)
		case token.DOT, token.QUESTION_DOT, token.STAR_DOT:
			e = p.parseFieldOrMethod(e)
		case token.LBRACK:
			e = p.parseIndex(e)
		case token.PLUS_PLUS, token.MINUS_MINUS:
			op := p.tok.Kind
			opPos := p.pos()
			p.advance()
			e = &ast.PostfixUnary{Left: e, Op: op, OpPos: opPos}
		default:
			return e
		}
	}
}

func (p *parser) parseCall(callee ast.Expr) ast.Expr {
	lp := p.expect(token.LPAREN)
	var args []ast.Expr
	namedArgs := false
	if !p.at(token.RPAREN) {
		args, namedArgs = p.parseArgList()
	}
	rp := p.expect(token.RPAREN)
	return &ast.Call{Callee: callee, Lparen: lp, Args: args, NamedArgs: namedArgs, Rparen: rp}
}

// parseArgList parses a call's argument list. If the first argument has the
// `name: value` shape, the whole list is treated as named arguments and
// collapsed into a single trailing MapLiteral per ast.Call.NamedArgs.
func (p *parser) parseArgList() ([]ast.Expr, bool) {
	if p.tok.Kind == token.IDENT {
		cp := p.sc.Save()
		saved := p.tok
		name := p.tok.Lexeme
		namePos := p.pos()
		p.advance()
		if p.tok.Kind == token.COLON {
			p.advance()
			first := p.parseExpr()
			entries := []*ast.MapEntry{{Key: &ast.Literal{Pos: namePos, Kind: token.STRING, Raw: name, Value: name}, Value: first}}
			for p.accept(token.COMMA) {
				n := p.tok.Lexeme
				np := p.pos()
				p.expect(token.IDENT)
				p.expect(token.COLON)
				v := p.parseExpr()
				entries = append(entries, &ast.MapEntry{Key: &ast.Literal{Pos: np, Kind: token.STRING, Raw: n, Value: n}, Value: v})
			}
			return []ast.Expr{&ast.MapLiteral{Entries: entries, IsNamedArgs: true}}, true
		}
		p.sc.Restore(cp)
		p.tok = saved
	}

	args := []ast.Expr{p.parseExpr()}
	for p.accept(token.COMMA) {
		args = append(args, p.parseExpr())
	}
	return args, false
}

func (p *parser) parseFieldOrMethod(target ast.Expr) ast.Expr {
	nullSafe := p.tok.Kind == token.QUESTION_DOT
	flatten := p.tok.Kind == token.STAR_DOT
	dot := p.pos()
	p.advance()
	name := p.tok.Lexeme
	p.expect(token.IDENT)
	if p.tok.Kind == token.LPAREN {
		lp := p.expect(token.LPAREN)
		var args []ast.Expr
		if !p.at(token.RPAREN) {
			args, _ = p.parseArgList()
		}
		rp := p.expect(token.RPAREN)
		return &ast.MethodCall{Target: target, NullSafe: nullSafe, Dot: dot, Method: name, Lparen: lp, Args: args, Rparen: rp}
	}
	return &ast.FieldAccess{Target: target, NullSafe: nullSafe, Flatten: flatten, Dot: dot, Field: name}
}

func (p *parser) parseIndex(target ast.Expr) ast.Expr {
	lb := p.expect(token.LBRACK)
	idx := p.parseExpr()
	rb := p.expect(token.RBRACK)
	return &ast.Index{Target: target, Lbrack: lb, Idx: idx, Rbrack: rb}
}

func (p *parser) parsePrimary() ast.Expr {
	switch p.tok.Kind {
	case token.INT, token.LONG, token.DOUBLE, token.DECIMAL, token.STRING, token.TRUE, token.FALSE, token.NULL:
		return p.parseLiteral()
	case token.EXPR_STRING_START:
		return p.parseExprString()
	case token.IDENT:
		return p.parseIdentifier()
	case token.CAPTURE_VAR:
		return p.parseCaptureVar()
	case token.THIS:
		pos := p.pos()
		p.advance()
		return &ast.Identifier{NamePos: pos, Name: "this"}
	case token.LPAREN:
		lp := p.pos()
		p.advance()
		inner := p.parseExpr()
		rp := p.expect(token.RPAREN)
		return &ast.Paren{Lparen: lp, Inner: inner, Rparen: rp}
	case token.LBRACK:
		return p.parseListOrMapLiteral()
	case token.LBRACE:
		return p.parseClosure()
	case token.NEW:
		return p.parseNew()
	case token.DO:
		return p.parseDoBlock()
	case token.RETURN:
		return p.parseReturn()
	case token.DIE:
		return p.parseDieExpr()
	case token.PRINT:
		return p.parsePrint(false)
	case token.PRINTLN:
		return p.parsePrint(true)
	default:
		p.errorExpected("expression")
		panic(errPanicMode)
	}
}

func (p *parser) parseIdentifier() ast.Expr {
	name := p.tok.Lexeme
	pos := p.pos()
	p.advance()
	return &ast.Identifier{NamePos: pos, Name: name}
}

func (p *parser) parseCaptureVar() ast.Expr {
	pos := p.pos()
	idx, _ := strconv.Atoi(p.tok.Lexeme[1:])
	p.advance()
	return &ast.CaptureVar{Pos: pos, Index: idx}
}

func (p *parser) parseLiteral() ast.Expr {
	tok := p.tok
	pos := p.pos()
	var val interface{}
	switch tok.Kind {
	case token.INT:
		val = int32(tok.Value.Int)
	case token.LONG:
		val = tok.Value.Long
	case token.DOUBLE:
		val = tok.Value.Double
	case token.DECIMAL:
		d, err := decimal.NewFromString(tok.Value.Raw)
		if err != nil {
			d = decimal.NewFromFloat(tok.Value.Double)
		}
		val = runtime.NewDecimal(d)
	case token.STRING:
		val = tok.Value.String
	case token.TRUE:
		val = true
	case token.FALSE:
		val = false
	case token.NULL:
		val = nil
	}
	p.advance()
	return &ast.Literal{Pos: pos, Kind: tok.Kind, Raw: tok.Lexeme, Value: val}
}

// parseExprString assembles an interpolated string's alternating literal and
// embedded-expression parts. The scanner already delimits each literal
// segment as its own EXPR_STRING_START/MID/END token and resumes literal
// scanning the instant an embedded expression's closing '}' (or bare $ident)
// is consumed, so parsing the embedded expressions is just parseExpr called
// in a loop; no special termination handling is needed.
func (p *parser) parseExprString() *ast.ExprString {
	startPos := p.pos()
	parts := []ast.Expr{&ast.Literal{Pos: startPos, Kind: token.STRING, Raw: p.tok.Value.Raw, Value: p.tok.Value.String}}
	p.advance()
	for {
		switch p.tok.Kind {
		case token.EXPR_STRING_MID:
			parts = append(parts, &ast.Literal{Pos: p.pos(), Kind: token.STRING, Raw: p.tok.Value.Raw, Value: p.tok.Value.String})
			p.advance()
		case token.EXPR_STRING_END:
			parts = append(parts, &ast.Literal{Pos: p.pos(), Kind: token.STRING, Raw: p.tok.Value.Raw, Value: p.tok.Value.String})
			p.advance()
			return &ast.ExprString{Pos: startPos, Parts: parts}
		case token.EOF:
			p.error(p.pos(), "interpolated string not terminated")
			return &ast.ExprString{Pos: startPos, Parts: parts}
		default:
			parts = append(parts, p.parseExpr())
		}
	}
}

func (p *parser) parseListOrMapLiteral() ast.Expr {
	lb := p.expect(token.LBRACK)
	p.skipEOLs()
	if p.tok.Kind == token.COLON {
		p.advance()
		rb := p.expect(token.RBRACK)
		return &ast.MapLiteral{Lbrack: lb, Rbrack: rb}
	}
	if p.tok.Kind == token.RBRACK {
		rb := p.pos()
		p.advance()
		return &ast.ListLiteral{Lbrack: lb, Rbrack: rb}
	}

	first := p.parseExpr()
	p.skipEOLs()
	if p.tok.Kind == token.COLON {
		p.advance()
		p.skipEOLs()
		val := p.parseExpr()
		entries := []*ast.MapEntry{{Key: first, Value: val}}
		for p.accept(token.COMMA) {
			p.skipEOLs()
			k := p.parseExpr()
			p.skipEOLs()
			p.expect(token.COLON)
			p.skipEOLs()
			v := p.parseExpr()
			entries = append(entries, &ast.MapEntry{Key: k, Value: v})
			p.skipEOLs()
		}
		rb := p.expect(token.RBRACK)
		return &ast.MapLiteral{Lbrack: lb, Entries: entries, Rbrack: rb}
	}

	items := []ast.Expr{first}
	for p.accept(token.COMMA) {
		p.skipEOLs()
		items = append(items, p.parseExpr())
		p.skipEOLs()
	}
	rb := p.expect(token.RBRACK)
	return &ast.ListLiteral{Lbrack: lb, Items: items, Rbrack: rb}
}

// closureHasParamList looks ahead, without committing, for an ARROW at the
// closure's own nesting depth before any statement boundary, distinguishing
// `{ x, y -> body }` from the bare trailing-closure form `{ stmts }`.
func (p *parser) closureHasParamList() bool {
	cp := p.sc.Save()
	saved := p.tok
	savedParen := p.parenDepth
	defer func() {
		p.sc.Restore(cp)
		p.tok = saved
		p.parenDepth = savedParen
	}()

	depth := 0
	for {
		switch p.tok.Kind {
		case token.LBRACE, token.LBRACK, token.LPAREN:
			depth++
		case token.RBRACE:
			if depth == 0 {
				return false
			}
			depth--
		case token.RBRACK, token.RPAREN:
			depth--
		case token.ARROW:
			if depth == 0 {
				return true
			}
		case token.SEMI, token.EOF:
			if depth == 0 {
				return false
			}
		case token.EOL:
			if depth == 0 {
				return false
			}
		}
		p.advance()
	}
}

func (p *parser) parseClosure() ast.Expr {
	fn := p.expect(token.LBRACE)
	var params []*ast.Param
	if p.closureHasParamList() {
		p.skipEOLs()
		for !p.at(token.ARROW, token.EOF) {
			params = append(params, p.parseParam())
			if !p.accept(token.COMMA) {
				break
			}
		}
		p.expect(token.ARROW)
	}
	p.skipEOLs()
	var stmts []ast.Stmt
	for !p.at(token.RBRACE, token.EOF) {
		stmts = append(stmts, p.parseStmtRecover())
		p.endStmt()
		p.skipEOLs()
	}
	end := p.expect(token.RBRACE)
	body := &ast.Block{Lbrace: fn, Stmts: stmts, Rbrace: end}
	return &ast.Closure{Fn: fn, Sig: &ast.FuncSignature{Params: params}, Body: body, End: end}
}

func (p *parser) parseNew() ast.Expr {
	np := p.pos()
	p.advance()
	target := p.parseTypeExpr()
	p.expect(token.LPAREN)
	var args []ast.Expr
	if !p.at(token.RPAREN) {
		args, _ = p.parseArgList()
	}
	rp := p.expect(token.RPAREN)
	return &ast.InvokeNew{New: np, Target: target, Args: args, Rparen: rp}
}

func (p *parser) parseDoBlock() ast.Expr {
	do := p.pos()
	p.advance()
	p.skipEOLs()
	body := p.parseBlockStmt()
	return &ast.BlockExpr{Do: do, Body: body, End: body.Rbrace}
}

func (p *parser) parseTypeExpr() *ast.TypeExpr {
	pos := p.pos()
	name := p.tok.Lexeme
	p.expect(token.IDENT)
	var qualifier []string
	for p.tok.Kind == token.DOT {
		p.advance()
		qualifier = append(qualifier, name)
		name = p.tok.Lexeme
		p.expect(token.IDENT)
	}
	return &ast.TypeExpr{Pos: pos, Name: name, Qualifier: qualifier, End: p.pos()}
}

func (p *parser) parseParam() *ast.Param {
	name := p.tok.Lexeme
	namePos := p.pos()
	p.expect(token.IDENT)
	var def ast.Expr
	if p.tok.Kind == token.EQ {
		p.advance()
		def = p.parseExpr()
	}
	return &ast.Param{Name: name, NamePos: namePos, Default: def}
}
