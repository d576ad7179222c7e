package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaccomoc/jactl-sub011/lang/ast"
	"github.com/jaccomoc/jactl-sub011/lang/resolver"
	"github.com/jaccomoc/jactl-sub011/lang/token"
)

func pos(line, col int) token.Pos { return token.Pos{Line: line, Col: col} }

func ident(name string, p token.Pos) *ast.Identifier {
	return &ast.Identifier{Name: name, NamePos: p}
}

func block(stmts ...ast.Stmt) *ast.Block { return &ast.Block{Stmts: stmts} }

type stubOracle struct {
	asyncFuncs map[string]bool
}

func (o *stubOracle) IsAsyncFunc(name string) bool { return o.asyncFuncs[name] }
func (o *stubOracle) IsAsyncMethod(string, string) bool { return false }

func resolve(t *testing.T, top *ast.Block, oracle resolver.AsyncOracle) token.ErrorList {
	t.Helper()
	src := token.NewSource("test.jactl", nil)
	return resolver.New(src, oracle).Resolve(top)
}

func TestSimpleLocalResolvesWithoutCellPromotion(t *testing.T) {
	xDecl := &ast.VarDecl{Name: "x", NamePos: pos(1, 5), Value: &ast.Literal{Kind: token.INT, Value: int64(1)}}
	xUse := ident("x", pos(2, 1))
	top := block(xDecl, &ast.ExprStmt{X: xUse})

	errs := resolve(t, top, nil)
	require.Empty(t, errs)
	assert.Equal(t, ast.ScopeLocal, xUse.Scope)
}

func TestClosureCapturePromotesLocalToCell(t *testing.T) {
	xDecl := &ast.VarDecl{Name: "x", NamePos: pos(1, 5), Value: &ast.Literal{Kind: token.INT, Value: int64(0)}}
	xUseInClosure := ident("x", pos(2, 10))
	closure := &ast.Closure{
		Sig:  &ast.FuncSignature{},
		Body: block(&ast.ExprStmt{X: xUseInClosure}),
	}
	top := block(xDecl, &ast.ExprStmt{X: closure})

	errs := resolve(t, top, nil)
	require.Empty(t, errs)

	assert.Equal(t, ast.ScopeFree, xUseInClosure.Scope)
	require.Len(t, closure.Captures, 1)
	assert.Equal(t, "x", closure.Captures[0].Name)
	assert.Equal(t, ast.ScopeCell, closure.Captures[0].Scope)
}

func TestCaptureBeforeDeclarationIsAnError(t *testing.T) {
	xUseInClosure := ident("x", pos(1, 1))
	closure := &ast.Closure{
		Sig:  &ast.FuncSignature{},
		Body: block(&ast.ExprStmt{X: xUseInClosure}),
	}
	xDecl := &ast.VarDecl{Name: "x", NamePos: pos(5, 1), Value: &ast.Literal{Kind: token.INT, Value: int64(0)}}
	top := block(&ast.ExprStmt{X: closure}, xDecl)

	errs := resolve(t, top, nil)
	require.NotEmpty(t, errs)
}

func TestRedeclarationInSameBlockIsAnError(t *testing.T) {
	top := block(
		&ast.VarDecl{Name: "x", NamePos: pos(1, 1), Value: &ast.Literal{Kind: token.INT, Value: int64(1)}},
		&ast.VarDecl{Name: "x", NamePos: pos(2, 1), Value: &ast.Literal{Kind: token.INT, Value: int64(2)}},
	)
	errs := resolve(t, top, nil)
	require.NotEmpty(t, errs)
}

func TestUndeclaredVariableIsAnError(t *testing.T) {
	top := block(&ast.ExprStmt{X: ident("nope", pos(1, 1))})
	errs := resolve(t, top, nil)
	require.NotEmpty(t, errs)
}

func TestBuiltinFuncNeverReportsUndeclared(t *testing.T) {
	top := block(&ast.ExprStmt{X: ident("sprintf", pos(1, 1))})
	errs := resolve(t, top, nil)
	assert.Empty(t, errs)
}

func TestCallingAsyncHostFuncMarksEnclosingFunctionAsync(t *testing.T) {
	call := &ast.Call{Callee: ident("sleep", pos(2, 1))}
	fn := &ast.FunDecl{
		Name: "f",
		Sig:  &ast.FuncSignature{},
		Body: block(&ast.ExprStmt{X: call}),
	}
	top := block(fn)

	oracle := &stubOracle{asyncFuncs: map[string]bool{"sleep": true}}
	errs := resolve(t, top, oracle)
	require.Empty(t, errs)
	assert.True(t, fn.Sig.IsAsync)
	assert.True(t, call.IsAsync())
}

func TestAsyncPropagatesThroughNestedClosureCall(t *testing.T) {
	inner := &ast.Call{Callee: ident("sleep", pos(3, 1))}
	outerFn := &ast.FunDecl{
		Name: "outer",
		Sig:  &ast.FuncSignature{},
		Body: block(&ast.ExprStmt{X: &ast.Closure{
			Sig:  &ast.FuncSignature{},
			Body: block(&ast.ExprStmt{X: inner}),
		}}),
	}
	top := block(outerFn)

	oracle := &stubOracle{asyncFuncs: map[string]bool{"sleep": true}}
	errs := resolve(t, top, oracle)
	require.Empty(t, errs)
	assert.True(t, outerFn.Sig.IsAsync)
}

func TestCyclicInheritanceIsDetected(t *testing.T) {
	a := &ast.ClassDecl{Name: "A", Body: &ast.ClassBody{}}
	b := &ast.ClassDecl{Name: "B", Body: &ast.ClassBody{}}
	a.Extends = &ast.TypeExpr{Name: "B"}
	b.Extends = &ast.TypeExpr{Name: "A"}
	top := block(a, b)

	errs := resolve(t, top, nil)
	require.NotEmpty(t, errs)
}
