// Package parser implements the recursive-descent, precedence-climbing
// parser that turns a token stream from lang/scanner into the lang/ast tree
// consumed by lang/resolver and lang/machine.
//
// The overall shape — an explicit init/advance pair driving a single token
// of lookahead, panic-mode error recovery at statement boundaries, and a
// binopPriority table feeding a parseSubExpr precedence climber — is
// adapted from github.com/mna/nenuphar's lang/parser package.
package parser

import (
	"errors"
	"strings"

	"github.com/jaccomoc/jactl-sub011/lang/ast"
	"github.com/jaccomoc/jactl-sub011/lang/scanner"
	"github.com/jaccomoc/jactl-sub011/lang/token"
)

// ParseProgram parses src as a single compilation unit and returns the
// top-level statement block plus any diagnostics collected along the way.
// A non-empty ErrorList does not necessarily mean block is nil: parsing
// recovers at statement boundaries so later errors can still be reported in
// the same pass (spec's "report every error found in the file" contract).
func ParseProgram(src *token.Source) (*ast.Block, token.ErrorList) {
	var p parser
	p.init(src)
	block := p.parseTopLevel()
	p.errs.Sort()
	return block, p.errs
}

// parser holds all mutable state for a single parse of one Source.
type parser struct {
	src *token.Source
	sc  *scanner.Scanner
	errs token.ErrorList

	tok token.Token // current token

	// parenDepth tracks unmatched ( or [ opened since the start of the
	// current statement; while it is > 0 an EOL from the scanner is
	// insignificant (a line continuation inside an argument list or index
	// expression), mirroring spec.md's EOL-ambiguity rule. Unlike
	// sc.BraceDepth, this does not count '{', since Jactl blocks use braces
	// that always terminate a statement.
	parenDepth int
}

func (p *parser) init(src *token.Source) {
	p.src = src
	p.errs = nil
	p.sc = scanner.New(src, &p.errs)
	p.parenDepth = 0
	p.advance()
}

// advance fetches the next token from the scanner, keeping parenDepth in
// sync and silently dropping EOL tokens while inside a paren/bracket group.
func (p *parser) advance() {
	for {
		p.tok = p.sc.Scan()
		switch p.tok.Kind {
		case token.LPAREN, token.LBRACK:
			p.parenDepth++
		case token.RPAREN, token.RBRACK:
			p.parenDepth--
		}
		if p.tok.Kind == token.EOL && p.parenDepth > 0 {
			continue
		}
		return
	}
}

func (p *parser) pos() token.Pos { return token.Pos{Line: p.tok.Line, Col: p.tok.Col} }

var errPanicMode = errors.New("parser: panic mode")

// expect consumes the current token if its kind is k, reporting an error
// and entering panic-mode recovery (unwound at the statement level)
// otherwise. It returns the position of the consumed token.
func (p *parser) expect(k token.Kind) token.Pos {
	pos := p.pos()
	if p.tok.Kind != k {
		p.errorExpected(k.String())
		panic(errPanicMode)
	}
	p.advance()
	return pos
}

// at reports whether the current token is one of the given kinds, without
// consuming it.
func (p *parser) at(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.tok.Kind == k {
			return true
		}
	}
	return false
}

// accept consumes and returns true if the current token is k, otherwise
// leaves the parser untouched and returns false.
func (p *parser) accept(k token.Kind) bool {
	if p.tok.Kind == k {
		p.advance()
		return true
	}
	return false
}

func (p *parser) error(pos token.Pos, msg string) {
	p.errs.Add(p.src.Position(pos), msg)
}

func (p *parser) errorf(pos token.Pos, format string, args ...interface{}) {
	p.errs.Addf(p.src.Position(pos), format, args...)
}

func (p *parser) errorExpected(what string) {
	msg := "expected " + what
	if p.tok.Lexeme != "" {
		msg += ", found " + p.tok.Lexeme
	} else {
		msg += ", found " + p.tok.Kind.String()
	}
	p.error(p.pos(), msg)
}

// skipEOLs consumes any run of insignificant blank-line separators, used
// between top-level declarations and at places in the grammar (e.g. after
// an opening brace) where a newline never carries statement-terminator
// meaning.
func (p *parser) skipEOLs() {
	for p.tok.Kind == token.EOL {
		p.advance()
	}
}

// synchronize discards tokens until it reaches a statement boundary (an EOL,
// a semicolon, a closing brace or EOF), so a single malformed statement does
// not cascade into spurious errors for the rest of the file.
func (p *parser) synchronize() {
	for !p.at(token.EOL, token.SEMI, token.RBRACE, token.EOF) {
		p.advance()
	}
	for p.at(token.EOL, token.SEMI) {
		p.advance()
	}
}

// parseTopLevel parses a whole compilation unit as an implicit top-level
// block: an optional `package` statement (recorded then discarded, since
// lang/host resolves packages outside the parser) followed by a sequence of
// statements, consumed until EOF.
func (p *parser) parseTopLevel() (result *ast.Block) {
	defer func() {
		if r := recover(); r != nil {
			if r != errPanicMode {
				panic(r)
			}
		}
	}()

	start := p.pos()
	p.skipEOLs()
	if p.tok.Kind == token.PACKAGE {
		p.advance()
		for !p.at(token.EOL, token.SEMI, token.EOF) {
			p.advance()
		}
		p.skipEOLs()
	}

	var stmts []ast.Stmt
	for !p.at(token.EOF) {
		p.skipEOLs()
		if p.at(token.EOF) {
			break
		}
		stmts = append(stmts, p.parseStmtRecover())
		p.endStmt()
	}
	return &ast.Block{Lbrace: start, Stmts: stmts, Rbrace: p.pos()}
}

// parseStmtRecover parses one statement, recovering to the next statement
// boundary if a panic-mode error was raised while parsing it.
func (p *parser) parseStmtRecover() (s ast.Stmt) {
	defer func() {
		if r := recover(); r != nil {
			if r != errPanicMode {
				panic(r)
			}
			p.synchronize()
			s = &ast.ExprStmt{X: &ast.Noop{Pos: p.pos()}}
		}
	}()
	return p.parseStmt()
}

// endStmt consumes the statement terminator (EOL or ';'), which is optional
// immediately before a closing brace or EOF.
func (p *parser) endStmt() {
	for p.at(token.EOL, token.SEMI) {
		p.advance()
	}
}

func tokenIn(k token.Kind, kinds ...token.Kind) bool {
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

func joinNames(kinds []token.Kind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return strings.Join(names, ", ")
}
