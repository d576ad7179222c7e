package host_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaccomoc/jactl-sub011/lang/ast"
	"github.com/jaccomoc/jactl-sub011/lang/host"
	"github.com/jaccomoc/jactl-sub011/lang/machine"
	"github.com/jaccomoc/jactl-sub011/lang/parser"
	"github.com/jaccomoc/jactl-sub011/lang/resolver"
	"github.com/jaccomoc/jactl-sub011/lang/runtime"
	"github.com/jaccomoc/jactl-sub011/lang/token"
)

func newRegistry(t *testing.T) *host.Registry {
	t.Helper()
	r := host.NewRegistry()
	require.NoError(t, host.RegisterBuiltins(r))
	r.Close()
	return r
}

// run parses, resolves and executes src against a freshly-built registry,
// wrapping the top-level block in a synthetic no-argument closure the way
// an embedding facade would before handing it to a Thread.
func run(t *testing.T, src string) runtime.Value {
	t.Helper()
	r := newRegistry(t)

	s := token.NewSource("test.jactl", []byte(src))
	block, perrs := parser.ParseProgram(s)
	require.Empty(t, perrs, "parse errors for %q", src)

	res := resolver.New(s, r)
	rerrs := res.Resolve(block)
	require.Empty(t, rerrs, "resolve errors for %q", src)

	fn := &runtime.Function{
		Name: "script",
		Body: &ast.Closure{Sig: &ast.FuncSignature{}, Body: block},
	}

	th := &machine.Thread{Host: r, MaxSteps: 100000}
	v, susp, err := th.Execute(context.Background(), fn, nil)
	require.NoError(t, err)
	require.Nil(t, susp)
	return v
}

func TestRegistryRejectsRegistrationAfterClose(t *testing.T) {
	r := host.NewRegistry()
	r.Close()
	err := r.RegisterFunc(host.FuncSpec{
		Name:     "extra",
		Dispatch: func(*machine.Thread, runtime.Value, []runtime.Value) (runtime.Value, error) { return runtime.TheNull, nil },
	})
	assert.Error(t, err)
	assert.True(t, r.Closed())
}

func TestRegistryRejectsNilDispatch(t *testing.T) {
	r := host.NewRegistry()
	assert.Error(t, r.RegisterFunc(host.FuncSpec{Name: "f"}))
	assert.Error(t, r.RegisterMethod(host.FuncSpec{Name: "m"}))
}

func TestSprintfFormatsArgs(t *testing.T) {
	v := run(t, `return sprintf("%s is %d", "x", 3)`)
	assert.Equal(t, runtime.Str("x is 3"), v)
}

func TestSprintfxUppercasesHex(t *testing.T) {
	v := run(t, `return sprintfx("%x", 255)`)
	assert.Equal(t, runtime.Str("FF"), v)
}

func TestUuidProducesCanonicalFormat(t *testing.T) {
	v := run(t, `return uuid()`)
	s, ok := v.(runtime.Str)
	require.True(t, ok)
	assert.Len(t, string(s), 36)
}

func TestSleepIsAsync(t *testing.T) {
	r := host.NewRegistry()
	require.NoError(t, host.RegisterBuiltins(r))
	assert.True(t, r.IsAsyncFunc("sleep"))
	assert.False(t, r.IsAsyncFunc("uuid"))
}

func TestUniversalMethods(t *testing.T) {
	assert.Equal(t, runtime.Str("[1, 2, 3]"), run(t, `return [1, 2, 3].toString()`))
	assert.Equal(t, runtime.Str("List"), run(t, `return [1, 2, 3].getClass()`))
	assert.Equal(t, runtime.Int(3), run(t, `return [1, 2, 3].size()`))
}

func TestMapFilterCollectPipeline(t *testing.T) {
	v := run(t, `return [1, 2, 3, 4].filter({ x -> x % 2 == 0 }).map({ x -> x * 10 }).collect()`)
	lst, ok := v.(*runtime.List)
	require.True(t, ok)
	assert.Equal(t, []runtime.Value{runtime.Int(20), runtime.Int(40)}, lst.Elems())
}

func TestEachAppliesSideEffectsInOrder(t *testing.T) {
	v := run(t, `
def total = 0
[1, 2, 3].each({ x -> total = total + x })
return total
`)
	assert.Equal(t, runtime.Int(6), v)
}

func TestLimitSkipGroupedReverseUnique(t *testing.T) {
	assert.Equal(t, []runtime.Value{runtime.Int(1), runtime.Int(2)},
		run(t, `return [1, 2, 3, 4].limit(2).collect()`).(*runtime.List).Elems())
	assert.Equal(t, []runtime.Value{runtime.Int(3), runtime.Int(4)},
		run(t, `return [1, 2, 3, 4].skip(2).collect()`).(*runtime.List).Elems())
	assert.Equal(t, []runtime.Value{runtime.Int(4), runtime.Int(3), runtime.Int(2), runtime.Int(1)},
		run(t, `return [1, 2, 3, 4].reverse().collect()`).(*runtime.List).Elems())
	assert.Equal(t, []runtime.Value{runtime.Int(1), runtime.Int(2)},
		run(t, `return [1, 1, 2, 2].unique().collect()`).(*runtime.List).Elems())
}

func TestAsListOnIterator(t *testing.T) {
	v := run(t, `return [1, 2].map({ x -> x }).asList()`)
	lst, ok := v.(*runtime.List)
	require.True(t, ok)
	assert.Len(t, lst.Elems(), 2)
}

func TestCallMethodUnknownMethodErrors(t *testing.T) {
	r := newRegistry(t)
	_, err := r.CallMethod(&machine.Thread{}, runtime.NewList(nil), "noSuchMethod", nil)
	assert.Error(t, err)
}
