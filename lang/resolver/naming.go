package resolver

// builtinFuncs are the global functions available in every script without
// an explicit import: the spec's standard library surface that isn't tied
// to a particular value's methods. They resolve to ast.ScopeGlobal rather
// than raising an undeclared-variable error.
var builtinFuncs = map[string]bool{
	"sprintf": true,
	"sprintfx": true,
	"timestamp": true,
	"nanoTime": true,
	"sleep":    true,
	"uuid":     true,
}

// universalMethods are available on a value of any type (the spec's
// "universal methods" such as toString()/getClass() that every Jactl value
// responds to regardless of static type), so a MethodCall naming one of
// them is never a resolve error even when the target's static type is ANY.
var universalMethods = map[string]bool{
	"toString": true,
	"getClass": true,
	"asList":   true,
	"size":     true,
}

// IsBuiltinFunc reports whether name is one of the always-available global
// functions, independent of any host Registry.
func IsBuiltinFunc(name string) bool { return builtinFuncs[name] }

// IsUniversalMethod reports whether name is callable on any value
// regardless of its static type.
func IsUniversalMethod(name string) bool { return universalMethods[name] }
