package ast_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaccomoc/jactl-sub011/lang/ast"
	"github.com/jaccomoc/jactl-sub011/lang/token"
)

func TestWalkVisitsChildren(t *testing.T) {
	left := &ast.Literal{Pos: token.Pos{Line: 1, Col: 1}, Kind: token.INT, Raw: "1"}
	right := &ast.Literal{Pos: token.Pos{Line: 1, Col: 5}, Kind: token.INT, Raw: "2"}
	bin := &ast.Binary{Left: left, Op: token.PLUS, Right: right}

	var visited []ast.Node
	ast.Walk(ast.VisitorFunc(func(n ast.Node, dir ast.VisitDirection) ast.Visitor {
		if dir == ast.VisitEnter {
			visited = append(visited, n)
		}
		return ast.VisitorFunc(func(n ast.Node, dir ast.VisitDirection) ast.Visitor {
			if dir == ast.VisitEnter {
				visited = append(visited, n)
			}
			return nil
		})
	}), bin)

	require.Len(t, visited, 3)
	assert.Same(t, bin, visited[0])
}

func TestVarDeclSatisfiesExprAndStmt(t *testing.T) {
	decl := &ast.VarDecl{Name: "x", Value: &ast.Literal{Kind: token.INT, Raw: "1"}}
	var _ ast.Expr = decl
	var _ ast.Stmt = decl
	assert.False(t, decl.BlockEnding())
}

func TestReturnSatisfiesExprAndStmt(t *testing.T) {
	ret := &ast.Return{Value: &ast.Identifier{Name: "x"}}
	var _ ast.Expr = ret
	var _ ast.Stmt = ret
	assert.True(t, ret.BlockEnding())
}

func TestIsAssignable(t *testing.T) {
	ident := &ast.Identifier{Name: "x"}
	assert.True(t, ast.IsAssignable(ident))

	lit := &ast.Literal{Kind: token.INT, Raw: "1"}
	assert.False(t, ast.IsAssignable(lit))

	fa := &ast.FieldAccess{Target: ident, Field: "y"}
	assert.True(t, ast.IsAssignable(fa))

	paren := &ast.Paren{Inner: ident}
	assert.True(t, ast.IsAssignable(paren))
}

func TestUnwrapParen(t *testing.T) {
	ident := &ast.Identifier{Name: "x"}
	p := &ast.Paren{Inner: &ast.Paren{Inner: ident}}
	assert.Same(t, ident, ast.Unwrap(p))
}

func TestPrinterWritesOneLinePerNode(t *testing.T) {
	block := &ast.Block{Stmts: []ast.Stmt{
		&ast.ExprStmt{X: &ast.Literal{Kind: token.INT, Raw: "1"}},
	}}
	var buf bytes.Buffer
	p := &ast.Printer{Output: &buf}
	require.NoError(t, p.Print(block))
	assert.Contains(t, buf.String(), "block")
	assert.Contains(t, buf.String(), "int literal 1")
}

func TestUnresolvedTypeDefaultsBeforeResolve(t *testing.T) {
	lit := &ast.Literal{Kind: token.INT, Raw: "1"}
	assert.Equal(t, "<unresolved>", lit.Type().TypeName())
}
