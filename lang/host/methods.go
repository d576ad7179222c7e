package host

import (
	"fmt"

	"github.com/jaccomoc/jactl-sub011/lang/machine"
	"github.com/jaccomoc/jactl-sub011/lang/runtime"
)

// builtinMethodSpecs implements the universal methods every value responds
// to (toString, getClass, asList, size) and the lazy collection-pipeline
// methods (map, filter, flatMap, limit, skip, grouped, unique, reverse,
// collect, each) built on top of lang/runtime's Iterator stage
// constructors. Nothing in lang/machine dispatches these itself; the host
// Registry is the only place they are implemented.
func builtinMethodSpecs() []FuncSpec {
	return []FuncSpec{
		{
			Name: "toString", OwnerType: "*", ReturnType: "String",
			Dispatch: func(_ *machine.Thread, target runtime.Value, _ []runtime.Value) (runtime.Value, error) {
				return runtime.Str(target.String()), nil
			},
		},
		{
			Name: "getClass", OwnerType: "*", ReturnType: "String",
			Dispatch: func(_ *machine.Thread, target runtime.Value, _ []runtime.Value) (runtime.Value, error) {
				return runtime.Str(target.Kind().String()), nil
			},
		},
		{
			Name: "asList", OwnerType: "*", ReturnType: "List",
			Dispatch: func(_ *machine.Thread, target runtime.Value, _ []runtime.Value) (runtime.Value, error) {
				if l, ok := target.(*runtime.List); ok {
					return l, nil
				}
				it, err := toIterable(target)
				if err != nil {
					return nil, err
				}
				return runtime.Drain(it.Iterate())
			},
		},
		{
			Name: "size", OwnerType: "*", ReturnType: "int",
			Dispatch: func(_ *machine.Thread, target runtime.Value, _ []runtime.Value) (runtime.Value, error) {
				sized, ok := target.(interface{ Len() int })
				if !ok {
					return nil, fmt.Errorf("size: not supported on %s", target.Kind())
				}
				return runtime.Int(sized.Len()), nil
			},
		},
		{
			Name: "map", OwnerType: "*", Params: []string{"closure"}, ReturnType: "Iterator",
			Dispatch: func(th *machine.Thread, target runtime.Value, args []runtime.Value) (runtime.Value, error) {
				it, err := toIterable(target)
				if err != nil {
					return nil, err
				}
				fn, err := toClosure(args, "map")
				if err != nil {
					return nil, err
				}
				stage := runtime.MapStage(it.Iterate(), func(v runtime.Value) (runtime.Value, error) {
					return machine.InvokeFunction(th, fn, []runtime.Value{v})
				})
				return runtime.NewIterValue(stage), nil
			},
		},
		{
			Name: "filter", OwnerType: "*", Params: []string{"closure"}, ReturnType: "Iterator",
			Dispatch: func(th *machine.Thread, target runtime.Value, args []runtime.Value) (runtime.Value, error) {
				it, err := toIterable(target)
				if err != nil {
					return nil, err
				}
				fn, err := toClosure(args, "filter")
				if err != nil {
					return nil, err
				}
				stage := runtime.FilterStage(it.Iterate(), func(v runtime.Value) (bool, error) {
					out, err := machine.InvokeFunction(th, fn, []runtime.Value{v})
					if err != nil {
						return false, err
					}
					return out.Truth(), nil
				})
				return runtime.NewIterValue(stage), nil
			},
		},
		{
			Name: "flatMap", OwnerType: "*", Params: []string{"closure"}, ReturnType: "Iterator",
			Dispatch: func(th *machine.Thread, target runtime.Value, args []runtime.Value) (runtime.Value, error) {
				it, err := toIterable(target)
				if err != nil {
					return nil, err
				}
				fn, err := toClosure(args, "flatMap")
				if err != nil {
					return nil, err
				}
				stage := runtime.FlatMapStage(it.Iterate(), func(v runtime.Value) (runtime.Iterable, error) {
					out, err := machine.InvokeFunction(th, fn, []runtime.Value{v})
					if err != nil {
						return nil, err
					}
					sub, ok := out.(runtime.Iterable)
					if !ok {
						return nil, fmt.Errorf("flatMap: closure must return an iterable, got %s", out.Kind())
					}
					return sub, nil
				})
				return runtime.NewIterValue(stage), nil
			},
		},
		{
			Name: "limit", OwnerType: "*", Params: []string{"n"}, ReturnType: "Iterator",
			Dispatch: func(_ *machine.Thread, target runtime.Value, args []runtime.Value) (runtime.Value, error) {
				it, err := toIterable(target)
				if err != nil {
					return nil, err
				}
				n, err := toInt(args, "limit")
				if err != nil {
					return nil, err
				}
				return runtime.NewIterValue(runtime.LimitStage(it.Iterate(), n)), nil
			},
		},
		{
			Name: "skip", OwnerType: "*", Params: []string{"n"}, ReturnType: "Iterator",
			Dispatch: func(_ *machine.Thread, target runtime.Value, args []runtime.Value) (runtime.Value, error) {
				it, err := toIterable(target)
				if err != nil {
					return nil, err
				}
				n, err := toInt(args, "skip")
				if err != nil {
					return nil, err
				}
				return runtime.NewIterValue(runtime.SkipStage(it.Iterate(), n)), nil
			},
		},
		{
			Name: "grouped", OwnerType: "*", Params: []string{"n"}, ReturnType: "Iterator",
			Dispatch: func(_ *machine.Thread, target runtime.Value, args []runtime.Value) (runtime.Value, error) {
				it, err := toIterable(target)
				if err != nil {
					return nil, err
				}
				n, err := toInt(args, "grouped")
				if err != nil {
					return nil, err
				}
				return runtime.NewIterValue(runtime.GroupedStage(it.Iterate(), n)), nil
			},
		},
		{
			Name: "unique", OwnerType: "*", ReturnType: "Iterator",
			Dispatch: func(_ *machine.Thread, target runtime.Value, _ []runtime.Value) (runtime.Value, error) {
				it, err := toIterable(target)
				if err != nil {
					return nil, err
				}
				return runtime.NewIterValue(runtime.UniqueStage(it.Iterate())), nil
			},
		},
		{
			Name: "reverse", OwnerType: "*", ReturnType: "Iterator",
			Dispatch: func(_ *machine.Thread, target runtime.Value, _ []runtime.Value) (runtime.Value, error) {
				it, err := toIterable(target)
				if err != nil {
					return nil, err
				}
				return runtime.NewIterValue(runtime.ReverseStage(it.Iterate())), nil
			},
		},
		{
			Name: "collect", OwnerType: "*", ReturnType: "List",
			Dispatch: func(_ *machine.Thread, target runtime.Value, _ []runtime.Value) (runtime.Value, error) {
				it, err := toIterable(target)
				if err != nil {
					return nil, err
				}
				return runtime.Drain(it.Iterate())
			},
		},
		{
			Name: "each", OwnerType: "*", Params: []string{"closure"}, ReturnType: "def",
			Dispatch: func(th *machine.Thread, target runtime.Value, args []runtime.Value) (runtime.Value, error) {
				it, err := toIterable(target)
				if err != nil {
					return nil, err
				}
				fn, err := toClosure(args, "each")
				if err != nil {
					return nil, err
				}
				iter := it.Iterate()
				for {
					v, ok, err := iter.Next()
					if err != nil {
						return nil, err
					}
					if !ok {
						break
					}
					if _, err := machine.InvokeFunction(th, fn, []runtime.Value{v}); err != nil {
						return nil, err
					}
				}
				return target, nil
			},
		},
	}
}

func toIterable(v runtime.Value) (runtime.Iterable, error) {
	it, ok := v.(runtime.Iterable)
	if !ok {
		return nil, fmt.Errorf("%s is not iterable", v.Kind())
	}
	return it, nil
}

func toClosure(args []runtime.Value, method string) (*runtime.Function, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%s: expects a closure argument", method)
	}
	fn, ok := args[0].(*runtime.Function)
	if !ok {
		return nil, fmt.Errorf("%s: argument must be a function, got %s", method, args[0].Kind())
	}
	return fn, nil
}

func toInt(args []runtime.Value, method string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%s: expects an integer argument", method)
	}
	switch v := args[0].(type) {
	case runtime.Int:
		return int(v), nil
	case runtime.Long:
		return int(v), nil
	default:
		return 0, fmt.Errorf("%s: argument must be numeric, got %s", method, args[0].Kind())
	}
}
