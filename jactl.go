// Package jactl is the embedding facade: Compile a script once, then
// Execute it on as many Threads as needed, resuming any that suspend on a
// host async call with Resume. It wires lang/parser, lang/resolver and
// lang/machine together and re-exports lang/host.Registry as the surface an
// embedder registers functions and methods against.
package jactl

import (
	"context"

	"github.com/jaccomoc/jactl-sub011/lang/ast"
	"github.com/jaccomoc/jactl-sub011/lang/host"
	"github.com/jaccomoc/jactl-sub011/lang/machine"
	"github.com/jaccomoc/jactl-sub011/lang/parser"
	"github.com/jaccomoc/jactl-sub011/lang/resolver"
	"github.com/jaccomoc/jactl-sub011/lang/runtime"
	"github.com/jaccomoc/jactl-sub011/lang/token"
)

// Registry is lang/host.Registry, re-exported so a caller driving only the
// facade never needs a second import for the common case.
type Registry = host.Registry

// NewRegistry returns an open Registry with the standard builtin functions
// and universal/collection-pipeline methods already registered. Callers
// that need additional host bindings should call RegisterFunc/RegisterMethod
// on the result before Close; Compile requires a closed Registry.
func NewRegistry() (*Registry, error) {
	r := host.NewRegistry()
	if err := host.RegisterBuiltins(r); err != nil {
		return nil, err
	}
	return r, nil
}

// Script is a compiled, runnable unit returned by Compile.
type Script struct {
	Name string
	fn   *runtime.Function
}

// Compile parses and resolves src as one compilation unit named name,
// against reg as the resolver's AsyncOracle (so host function/method
// async-ness is visible to the resolver's fixed-point propagation pass).
// reg must already be closed: resolving against bindings that could still
// change would make the compiled Script's async annotations stale.
func Compile(name string, src []byte, reg *Registry) (*Script, token.ErrorList) {
	if !reg.Closed() {
		return nil, token.ErrorList{{Msg: "jactl: Compile requires a closed Registry"}}
	}
	s := token.NewSource(name, src)
	block, perrs := parser.ParseProgram(s)
	if len(perrs) > 0 {
		return nil, perrs
	}
	res := resolver.New(s, reg)
	rerrs := res.Resolve(block)
	if len(rerrs) > 0 {
		return nil, rerrs
	}
	return &Script{
		Name: name,
		fn:   &runtime.Function{Name: name, Body: &ast.Closure{Sig: &ast.FuncSignature{}, Body: block}},
	}, nil
}

// Execute runs script on th to completion or to its first suspension. th
// must have its Host set to the same Registry script was compiled against.
func Execute(ctx context.Context, th *machine.Thread, script *Script) (runtime.Value, *machine.Suspension, error) {
	return th.Execute(ctx, script.fn, nil)
}

// Resume continues a suspended script with the embedder-supplied outcome of
// the pending AsyncCall (result, or err if the async operation failed). th
// must be the same Thread that produced susp.
func Resume(ctx context.Context, th *machine.Thread, susp *machine.Suspension, result runtime.Value, err error) (runtime.Value, *machine.Suspension, error) {
	return th.Resume(ctx, susp, result, err)
}
