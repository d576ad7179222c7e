package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaccomoc/jactl-sub011/lang/ast"
	"github.com/jaccomoc/jactl-sub011/lang/parser"
	"github.com/jaccomoc/jactl-sub011/lang/token"
)

func parse(t *testing.T, src string) (*ast.Block, token.ErrorList) {
	t.Helper()
	s := token.NewSource("test.jactl", []byte(src))
	return parser.ParseProgram(s)
}

func parseOK(t *testing.T, src string) *ast.Block {
	t.Helper()
	block, errs := parse(t, src)
	require.Empty(t, errs, "unexpected parse errors for %q", src)
	require.NotNil(t, block)
	return block
}

func TestParseVarDeclAndArithmetic(t *testing.T) {
	block := parseOK(t, "def x = 1 + 2 * 3\n")
	require.Len(t, block.Stmts, 1)
	decl, ok := block.Stmts[0].(*ast.VarDecl)
	require.True(t, ok)
	assert.Equal(t, "x", decl.Name)

	bin, ok := decl.Value.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, token.PLUS, bin.Op)
	rhs, ok := bin.Right.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, token.STAR, rhs.Op)
}

func TestParseStarStarIsRightAssociative(t *testing.T) {
	block := parseOK(t, "def x = 2 ** 3 ** 2\n")
	decl := block.Stmts[0].(*ast.VarDecl)
	top, ok := decl.Value.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, token.STAR_STAR, top.Op)
	_, rightIsBinary := top.Right.(*ast.Binary)
	assert.True(t, rightIsBinary, "** should group as 2 ** (3 ** 2)")
	_, leftIsLiteral := top.Left.(*ast.Literal)
	assert.True(t, leftIsLiteral)
}

func TestParseIfElse(t *testing.T) {
	block := parseOK(t, "if (x > 0) { return 1 } else { return -1 }\n")
	require.Len(t, block.Stmts, 1)
	ifStmt, ok := block.Stmts[0].(*ast.If)
	require.True(t, ok)
	assert.NotNil(t, ifStmt.Then)
	assert.NotNil(t, ifStmt.Else)
	assert.False(t, ifStmt.Postfix)
}

func TestParsePostfixIfOnReturn(t *testing.T) {
	block := parseOK(t, "return 1 if x > 0\n")
	require.Len(t, block.Stmts, 1)
	ifStmt, ok := block.Stmts[0].(*ast.If)
	require.True(t, ok)
	assert.True(t, ifStmt.Postfix)
	_, ok = ifStmt.Then.(*ast.Return)
	assert.True(t, ok)
}

func TestParseWhileLoop(t *testing.T) {
	block := parseOK(t, "while (i < 10) { i = i + 1 }\n")
	w, ok := block.Stmts[0].(*ast.While)
	require.True(t, ok)
	assert.Empty(t, w.Label)
}

func TestParseLabelledWhile(t *testing.T) {
	block := parseOK(t, "outer: while (true) { break outer }\n")
	w, ok := block.Stmts[0].(*ast.While)
	require.True(t, ok)
	assert.Equal(t, "outer", w.Label)
}

func TestParseCStyleForDesugarsToWhile(t *testing.T) {
	block := parseOK(t, "for (def i = 0; i < 10; i = i + 1) { print(i) }\n")
	outer, ok := block.Stmts[0].(*ast.Block)
	require.True(t, ok)
	require.Len(t, outer.Stmts, 2)
	_, ok = outer.Stmts[0].(*ast.VarDecl)
	require.True(t, ok)
	w, ok := outer.Stmts[1].(*ast.While)
	require.True(t, ok)
	body, ok := w.Body.(*ast.Block)
	require.True(t, ok)
	require.Len(t, body.Stmts, 2)
}

func TestParseFunDecl(t *testing.T) {
	block := parseOK(t, "def add(int a, int b = 2) { return a + b }\n")
	fn, ok := block.Stmts[0].(*ast.FunDecl)
	require.True(t, ok)
	assert.Equal(t, "add", fn.Name)
	require.Len(t, fn.Sig.Params, 2)
	assert.Equal(t, "a", fn.Sig.Params[0].Name)
	assert.NotNil(t, fn.Sig.Params[1].Default)
}

func TestParseClassDecl(t *testing.T) {
	block := parseOK(t, `
class Point {
  def x = 0
  def y = 0
  def dist() {
    return x + y
  }
}
`)
	cls, ok := block.Stmts[0].(*ast.ClassDecl)
	require.True(t, ok)
	assert.Equal(t, "Point", cls.Name)
	require.Len(t, cls.Body.Fields, 2)
	require.Len(t, cls.Body.Methods, 1)
}

func TestParseClosureWithParams(t *testing.T) {
	block := parseOK(t, "def f = { x, y -> x + y }\n")
	decl := block.Stmts[0].(*ast.VarDecl)
	cl, ok := decl.Value.(*ast.Closure)
	require.True(t, ok)
	require.Len(t, cl.Sig.Params, 2)
}

func TestParseBareClosureHasNoParams(t *testing.T) {
	block := parseOK(t, "def f = { return 1 }\n")
	decl := block.Stmts[0].(*ast.VarDecl)
	cl, ok := decl.Value.(*ast.Closure)
	require.True(t, ok)
	assert.Empty(t, cl.Sig.Params)
}

func TestParseListAndMapLiterals(t *testing.T) {
	block := parseOK(t, "def l = [1, 2, 3]\ndef m = [a: 1, b: 2]\ndef e = [:]\n")
	l := block.Stmts[0].(*ast.VarDecl).Value.(*ast.ListLiteral)
	assert.Len(t, l.Items, 3)
	m := block.Stmts[1].(*ast.VarDecl).Value.(*ast.MapLiteral)
	assert.Len(t, m.Entries, 2)
	e := block.Stmts[2].(*ast.VarDecl).Value.(*ast.MapLiteral)
	assert.Empty(t, e.Entries)
}

func TestParseNamedArgsCall(t *testing.T) {
	block := parseOK(t, "f(x: 1, y: 2)\n")
	stmt := block.Stmts[0].(*ast.ExprStmt)
	call, ok := stmt.X.(*ast.Call)
	require.True(t, ok)
	assert.True(t, call.NamedArgs)
	require.Len(t, call.Args, 1)
	_, ok = call.Args[0].(*ast.MapLiteral)
	assert.True(t, ok)
}

func TestParseMethodCallChainAndFieldAccess(t *testing.T) {
	block := parseOK(t, "x.foo().bar\n")
	stmt := block.Stmts[0].(*ast.ExprStmt)
	fa, ok := stmt.X.(*ast.FieldAccess)
	require.True(t, ok)
	assert.Equal(t, "bar", fa.Field)
	_, ok = fa.Target.(*ast.MethodCall)
	assert.True(t, ok)
}

func TestParseNullSafeAccess(t *testing.T) {
	block := parseOK(t, "x?.foo\n")
	stmt := block.Stmts[0].(*ast.ExprStmt)
	fa, ok := stmt.X.(*ast.FieldAccess)
	require.True(t, ok)
	assert.True(t, fa.NullSafe)
}

func TestParseTernaryAndElvis(t *testing.T) {
	block := parseOK(t, "def a = cond ? 1 : 2\ndef b = x ?: 0\n")
	_, ok := block.Stmts[0].(*ast.VarDecl).Value.(*ast.Ternary)
	assert.True(t, ok)
	elvis, ok := block.Stmts[1].(*ast.VarDecl).Value.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, token.QUESTION_COLON, elvis.Op)
}

func TestParseRegexMatch(t *testing.T) {
	block := parseOK(t, "if (x =~ /abc/) { return 1 }\n")
	ifStmt := block.Stmts[0].(*ast.If)
	m, ok := ifStmt.Cond.(*ast.RegexMatch)
	require.True(t, ok)
	assert.False(t, m.Negate)
}

func TestParseRegexSubstitution(t *testing.T) {
	block := parseOK(t, "x =~ s/foo/bar/g\n")
	stmt := block.Stmts[0].(*ast.ExprStmt)
	subst, ok := stmt.X.(*ast.RegexSubst)
	require.True(t, ok)
	assert.True(t, subst.Global)
}

func TestParseInterpolatedString(t *testing.T) {
	block := parseOK(t, `def greeting = "hello ${name}!"` + "\n")
	decl := block.Stmts[0].(*ast.VarDecl)
	es, ok := decl.Value.(*ast.ExprString)
	require.True(t, ok)
	assert.GreaterOrEqual(t, len(es.Parts), 3)
}

func TestParseImport(t *testing.T) {
	block := parseOK(t, "import a.b.MyClass as MC\n")
	imp, ok := block.Stmts[0].(*ast.Import)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b", "MyClass"}, imp.Path)
	assert.Equal(t, "MC", imp.Alias)
}

func TestParseErrorRecoversToNextStatement(t *testing.T) {
	_, errs := parse(t, "def x = \ndef y = 2\n")
	assert.NotEmpty(t, errs)
}

func TestParseNewExpression(t *testing.T) {
	block := parseOK(t, "def p = new Point(1, 2)\n")
	decl := block.Stmts[0].(*ast.VarDecl)
	n, ok := decl.Value.(*ast.InvokeNew)
	require.True(t, ok)
	assert.Equal(t, "Point", n.Target.Name)
	assert.Len(t, n.Args, 2)
}
