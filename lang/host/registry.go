// Package host implements the binding surface an embedder uses to expose
// functions and methods into a running script: a single Registry satisfying
// both machine.Host, so the execution engine can dispatch a call, and
// resolver.AsyncOracle, so the resolver can mark a call site async before a
// single statement of the script has run.
package host

import (
	"fmt"
	"sync"

	"github.com/dolthub/swiss"

	"github.com/jaccomoc/jactl-sub011/lang/machine"
	"github.com/jaccomoc/jactl-sub011/lang/runtime"
)

// Dispatch is the Go function backing one registered function or method.
// target is nil for a global function call; for a method call it is the
// receiver the call was made on.
type Dispatch func(th *machine.Thread, target runtime.Value, args []runtime.Value) (runtime.Value, error)

// FuncSpec describes one function or method binding.
type FuncSpec struct {
	Name string
	// OwnerType is informational: "" for a global function, otherwise the
	// type the binding is documented against ("*" for a binding that applies
	// across every kind). It plays no part in dispatch, since a `def`-typed
	// script variable rarely carries a known static type for the resolver to
	// key on; Dispatch itself narrows by the target's dynamic Kind.
	OwnerType  string
	Params     []string
	ReturnType string
	IsAsync    bool
	Dispatch   Dispatch
}

// Registry is the process-wide catalogue of host bindings. It has a
// two-phase lifecycle: RegisterFunc/RegisterMethod build it up, then Close
// freezes it before any script starts running, matching the rule that host
// bindings are fixed for the lifetime of every script that shares the
// Registry.
type Registry struct {
	mu      sync.RWMutex
	closed  bool
	funcs   *swiss.Map[string, *FuncSpec]
	methods *swiss.Map[string, *FuncSpec]
}

// NewRegistry returns an empty, open Registry.
func NewRegistry() *Registry {
	return &Registry{
		funcs:   swiss.NewMap[string, *FuncSpec](16),
		methods: swiss.NewMap[string, *FuncSpec](32),
	}
}

var errClosed = fmt.Errorf("host: registry is closed, no further bindings can be registered")

// RegisterFunc adds a global function binding, callable from a script with
// no import. It fails once Close has been called.
func (r *Registry) RegisterFunc(spec FuncSpec) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return errClosed
	}
	if spec.Name == "" {
		return fmt.Errorf("host: function registered with an empty name")
	}
	if spec.Dispatch == nil {
		return fmt.Errorf("host: function %q registered with a nil Dispatch", spec.Name)
	}
	s := spec
	r.funcs.Put(spec.Name, &s)
	return nil
}

// RegisterMethod adds a method binding, keyed only by method name. It fails
// once Close has been called.
func (r *Registry) RegisterMethod(spec FuncSpec) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return errClosed
	}
	if spec.Name == "" {
		return fmt.Errorf("host: method registered with an empty name")
	}
	if spec.Dispatch == nil {
		return fmt.Errorf("host: method %q registered with a nil Dispatch", spec.Name)
	}
	s := spec
	r.methods.Put(spec.Name, &s)
	return nil
}

// Close freezes the Registry against further registration. Safe to call
// more than once; a script must never start running against a Registry that
// hasn't been closed yet, since a binding added mid-script would be visible
// to some call sites and not others.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}

// Closed reports whether Close has been called.
func (r *Registry) Closed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.closed
}

// Call implements machine.Host.
func (r *Registry) Call(th *machine.Thread, name string, args []runtime.Value) (runtime.Value, error) {
	spec, ok := r.funcs.Get(name)
	if !ok {
		return nil, fmt.Errorf("host: no such function %q", name)
	}
	return spec.Dispatch(th, nil, args)
}

// CallMethod implements machine.Host.
func (r *Registry) CallMethod(th *machine.Thread, target runtime.Value, method string, args []runtime.Value) (runtime.Value, error) {
	spec, ok := r.methods.Get(method)
	if !ok {
		return nil, fmt.Errorf("host: no such method %q on %s", method, target.Kind())
	}
	return spec.Dispatch(th, target, args)
}

// IsAsync implements machine.Host: the evaluator checks it by bare name at
// both call-expression and method-call-expression sites.
func (r *Registry) IsAsync(name string) bool {
	if spec, ok := r.funcs.Get(name); ok {
		return spec.IsAsync
	}
	if spec, ok := r.methods.Get(name); ok {
		return spec.IsAsync
	}
	return false
}

// IsAsyncFunc implements resolver.AsyncOracle.
func (r *Registry) IsAsyncFunc(name string) bool {
	spec, ok := r.funcs.Get(name)
	return ok && spec.IsAsync
}

// IsAsyncMethod implements resolver.AsyncOracle. typeName is the resolver's
// statically inferred receiver type, which for a `def`-typed value (the
// common case) carries no more information than "def"; async-ness is
// therefore tracked per method name rather than per (type, method) pair,
// and typeName is accepted only to satisfy the interface.
func (r *Registry) IsAsyncMethod(typeName, method string) bool {
	spec, ok := r.methods.Get(method)
	return ok && spec.IsAsync
}
