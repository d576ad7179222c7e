package host

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jaccomoc/jactl-sub011/lang/machine"
	"github.com/jaccomoc/jactl-sub011/lang/runtime"
)

// RegisterBuiltins adds the global functions and universal/collection-
// pipeline methods every script can call without an explicit import. Call
// it once on a fresh Registry, before any other RegisterFunc/RegisterMethod
// calls from the embedder and before Close.
func RegisterBuiltins(r *Registry) error {
	for _, spec := range builtinFuncSpecs() {
		if err := r.RegisterFunc(spec); err != nil {
			return err
		}
	}
	for _, spec := range builtinMethodSpecs() {
		if err := r.RegisterMethod(spec); err != nil {
			return err
		}
	}
	return nil
}

func builtinFuncSpecs() []FuncSpec {
	return []FuncSpec{
		{
			Name: "sprintf", Params: []string{"format", "args"}, ReturnType: "String",
			Dispatch: func(_ *machine.Thread, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
				return doSprintf(args)
			},
		},
		{
			// sprintfx mirrors Java's String.format %X vs %x convention: same
			// formatting as sprintf, but hex verbs come out upper-case.
			Name: "sprintfx", Params: []string{"format", "args"}, ReturnType: "String",
			Dispatch: func(_ *machine.Thread, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
				if len(args) == 0 {
					return nil, fmt.Errorf("sprintfx: at least one argument (format) required")
				}
				format, ok := args[0].(runtime.Str)
				if !ok {
					return nil, fmt.Errorf("sprintfx: format must be a String, got %s", args[0].Kind())
				}
				upperArgs := append([]runtime.Value{runtime.Str(strings.ReplaceAll(string(format), "%x", "%X"))}, args[1:]...)
				return doSprintf(upperArgs)
			},
		},
		{
			Name: "timestamp", ReturnType: "long",
			Dispatch: func(_ *machine.Thread, _ runtime.Value, _ []runtime.Value) (runtime.Value, error) {
				return runtime.Long(time.Now().UnixMilli()), nil
			},
		},
		{
			Name: "nanoTime", ReturnType: "long",
			Dispatch: func(_ *machine.Thread, _ runtime.Value, _ []runtime.Value) (runtime.Value, error) {
				return runtime.Long(time.Now().UnixNano()), nil
			},
		},
		{
			// sleep is async: the resolver marks every call site reachable
			// from one async and the engine routes the call through
			// Thread.suspendAndAwait instead of here, so this Dispatch only
			// runs if something calls sleep synchronously by mistake.
			Name: "sleep", Params: []string{"millis"}, ReturnType: "void", IsAsync: true,
			Dispatch: func(_ *machine.Thread, _ runtime.Value, _ []runtime.Value) (runtime.Value, error) {
				return nil, fmt.Errorf("host: sleep is async and must be driven through Thread.Resume, not called directly")
			},
		},
		{
			Name: "uuid", ReturnType: "String",
			Dispatch: func(_ *machine.Thread, _ runtime.Value, _ []runtime.Value) (runtime.Value, error) {
				return runtime.Str(uuid.NewString()), nil
			},
		},
	}
}

func doSprintf(args []runtime.Value) (runtime.Value, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("sprintf: at least one argument (format) required")
	}
	format, ok := args[0].(runtime.Str)
	if !ok {
		return nil, fmt.Errorf("sprintf: format must be a String, got %s", args[0].Kind())
	}
	rest := make([]interface{}, len(args)-1)
	for i, a := range args[1:] {
		rest[i] = toGoArg(a)
	}
	return runtime.Str(fmt.Sprintf(string(format), rest...)), nil
}

func toGoArg(v runtime.Value) interface{} {
	switch v := v.(type) {
	case runtime.Int:
		return int32(v)
	case runtime.Long:
		return int64(v)
	case runtime.Double:
		return float64(v)
	case runtime.Decimal:
		return v.D.String()
	case runtime.Str:
		return string(v)
	case runtime.Bool:
		return bool(v)
	default:
		return v.String()
	}
}
