package machine

// Control-flow signals are returned as ordinary errors from the statement
// evaluator and type-switched on at the boundary that knows how to handle
// them (a loop for breakSignal/continueSignal, a function call for
// returnSignal). Any other error is a genuine runtime failure and keeps
// propagating.

import "github.com/jaccomoc/jactl-sub011/lang/runtime"

type returnSignal struct{ value runtime.Value }

func (returnSignal) Error() string { return "return outside a function (resolver bug)" }

type breakSignal struct{ label string }

func (breakSignal) Error() string { return "break outside a loop (resolver bug)" }

type continueSignal struct{ label string }

func (continueSignal) Error() string { return "continue outside a loop (resolver bug)" }
