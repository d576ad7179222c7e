package jactl_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaccomoc/jactl-sub011/jactl"
	"github.com/jaccomoc/jactl-sub011/lang/host"
	"github.com/jaccomoc/jactl-sub011/lang/machine"
	"github.com/jaccomoc/jactl-sub011/lang/runtime"
)

func compileAndRun(t *testing.T, reg *jactl.Registry, src string) runtime.Value {
	t.Helper()
	script, errs := jactl.Compile("test.jactl", []byte(src), reg)
	require.Empty(t, errs, "compile errors for %q", src)

	th := &machine.Thread{Host: reg, MaxSteps: 1000000}
	v, susp, err := jactl.Execute(context.Background(), th, script)
	require.NoError(t, err)
	require.Nil(t, susp, "script suspended unexpectedly")
	return v
}

func TestRecursiveFactorial(t *testing.T) {
	reg, err := jactl.NewRegistry()
	require.NoError(t, err)
	reg.Close()

	v := compileAndRun(t, reg, `def fact(n){ n<=1 ? 1 : n*fact(n-1) }; fact(10)`)
	assert.Equal(t, runtime.Int(3628800), v)
}

func TestMutuallyRecursiveFunctions(t *testing.T) {
	reg, err := jactl.NewRegistry()
	require.NoError(t, err)
	reg.Close()

	v := compileAndRun(t, reg, `
def isEven(n){ n==0 ? true : isOdd(n-1) }
def isOdd(n){ n==0 ? false : isEven(n-1) }
isEven(10)
`)
	assert.Equal(t, runtime.Bool(true), v)
}

func TestNamedArgumentCallFillsDefault(t *testing.T) {
	reg, err := jactl.NewRegistry()
	require.NoError(t, err)
	reg.Close()

	v := compileAndRun(t, reg, `
def greet(greeting = 'Hello', name){ greeting + ', ' + name + '!' }
greet(name: 'World')
`)
	assert.Equal(t, runtime.Str("Hello, World!"), v)
}

func TestIdentityVsStructuralEquality(t *testing.T) {
	reg, err := jactl.NewRegistry()
	require.NoError(t, err)
	reg.Close()

	v := compileAndRun(t, reg, `
def a = [1, 2, 3]
def b = [1, 2, 3]
def c = a
[a == b, a === b, a === c]
`)
	lst, ok := v.(*runtime.List)
	require.True(t, ok)
	assert.Equal(t, []runtime.Value{runtime.Bool(true), runtime.Bool(false), runtime.Bool(true)}, lst.Elems())
}

func TestClosureCaptureWithMutation(t *testing.T) {
	reg, err := jactl.NewRegistry()
	require.NoError(t, err)
	reg.Close()

	v := compileAndRun(t, reg, `
def counter(){ int c=0; return { -> ++c } }
def x = counter()
def y = counter()
[x(), x(), y()]
`)
	lst, ok := v.(*runtime.List)
	require.True(t, ok)
	assert.Equal(t, []runtime.Value{runtime.Int(1), runtime.Int(2), runtime.Int(1)}, lst.Elems())
}

func TestModuloBoundaries(t *testing.T) {
	reg, err := jactl.NewRegistry()
	require.NoError(t, err)
	reg.Close()

	assert.Equal(t, runtime.Int(1), compileAndRun(t, reg, `-5 % 3`))
	assert.Equal(t, runtime.Int(-2), compileAndRun(t, reg, `3 % -5`))
	assert.Equal(t, runtime.Int(-3), compileAndRun(t, reg, `-3 % -5`))
}

// TestAsyncSuspendResume checks that two sequential calls to an async host
// function each produce their own suspension, in order, and that resuming
// each with the embedder-supplied result lets the script finish with both
// results concatenated.
func TestAsyncSuspendResume(t *testing.T) {
	r := host.NewRegistry()
	require.NoError(t, host.RegisterBuiltins(r))
	require.NoError(t, r.RegisterFunc(host.FuncSpec{
		Name:    "fetch",
		IsAsync: true,
		Dispatch: func(*machine.Thread, runtime.Value, []runtime.Value) (runtime.Value, error) {
			t.Fatal("fetch Dispatch should never run: async calls bypass it")
			return nil, nil
		},
	}))
	r.Close()

	script, errs := jactl.Compile("test.jactl", []byte(`
def r = fetch('x://1') + ':' + fetch('x://2')
return r
`), r)
	require.Empty(t, errs)

	th := &machine.Thread{Host: r, MaxSteps: 1000000}
	v, susp, err := jactl.Execute(context.Background(), th, script)
	require.NoError(t, err)
	require.NotNil(t, susp, "expected first suspension")
	assert.Equal(t, "fetch", susp.Pending.Name)
	assert.Equal(t, []runtime.Value{runtime.Str("x://1")}, susp.Pending.Args)

	v, susp, err = jactl.Resume(context.Background(), th, susp, runtime.Str("A"), nil)
	require.NoError(t, err)
	require.NotNil(t, susp, "expected second suspension")
	assert.Equal(t, "fetch", susp.Pending.Name)
	assert.Equal(t, []runtime.Value{runtime.Str("x://2")}, susp.Pending.Args)

	v, susp, err = jactl.Resume(context.Background(), th, susp, runtime.Str("B"), nil)
	require.NoError(t, err)
	assert.Nil(t, susp)
	assert.Equal(t, runtime.Str("A:B"), v)
}

// TestHeapHoistAcrossSuspension checks that a local variable captured by a
// closure survives a suspend/resume round trip with its mutated value
// intact: i must still be the cell the closure incremented, not a copy
// reset by the suspension.
func TestHeapHoistAcrossSuspension(t *testing.T) {
	reg, err := jactl.NewRegistry()
	require.NoError(t, err)
	reg.Close()

	script, errs := jactl.Compile("test.jactl", []byte(`
def i=0
def f={ -> i++ }
sleep(1)
f()
return i
`), reg)
	require.Empty(t, errs)

	th := &machine.Thread{Host: reg, MaxSteps: 1000000}
	v, susp, err := jactl.Execute(context.Background(), th, script)
	require.NoError(t, err)
	require.NotNil(t, susp, "sleep should suspend")
	assert.Equal(t, "sleep", susp.Pending.Name)

	v, susp, err = jactl.Resume(context.Background(), th, susp, runtime.TheNull, nil)
	require.NoError(t, err)
	require.Nil(t, susp)
	assert.Equal(t, runtime.Int(1), v)
}

func TestRegexGlobalIteration(t *testing.T) {
	reg, err := jactl.NewRegistry()
	require.NoError(t, err)
	reg.Close()

	v := compileAndRun(t, reg, `
def data='AAPL=$151.03, MSFT=$255.29'
def m=[:]
while (data =~ /(\w+)=\$([\d.]+)/g) { m[$1] = $2 as Decimal }
return m
`)
	m, ok := v.(*runtime.Map)
	require.True(t, ok)

	aapl, found, err := m.Get(runtime.Str("AAPL"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "151.03", aapl.String())

	msft, found, err := m.Get(runtime.Str("MSFT"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "255.29", msft.String())
}
