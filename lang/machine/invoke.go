package machine

import "github.com/jaccomoc/jactl-sub011/lang/runtime"

// InvokeFunction calls fn synchronously on the same goroutine and call stack
// already driving th. Host method implementations that take a closure
// argument (map, filter, each, and friends) use this to call back into
// script code, rather than th.Execute, because they run from inside th's own
// driving goroutine already: a second Execute would spawn a second goroutine
// contending over the same suspension channels.
//
// An async call reached inside fn suspends th in the same way as one reached
// directly from script code: th's driving goroutine parks inside this call
// and the embedder receives the Suspension from Execute or Resume.
func InvokeFunction(th *Thread, fn *runtime.Function, args []runtime.Value) (runtime.Value, error) {
	e := &evaluator{th: th, host: th.Host}
	return e.callFunction(fn, args)
}
