// Package interp executes benchmark functions under an embedded Go
// interpreter. It backs the constrained runtime profile: the same
// catalogue sources run interpreted instead of compiled, with the
// engine's fixed-doubling calibration absorbing the interpreter's high
// per-call overhead.
package interp

import (
	"fmt"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/mlow/benchoor/catalogue"
	"github.com/mlow/benchoor/engine"
)

// Compile evaluates a benchmark source snippet and returns it as an
// engine.BenchFunc. The snippet declares its functions and ends with the
// benchmark function name as an expression. Each benchmark gets a fresh
// interpreter so state never leaks between benchmarks.
func Compile(name, src string) (engine.BenchFunc, error) {
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("benchmark %s: load stdlib symbols: %w", name, err)
	}

	v, err := i.Eval(src)
	if err != nil {
		return nil, fmt.Errorf("benchmark %s: eval source: %w", name, err)
	}

	switch fn := v.Interface().(type) {
	case func(int64) int64:
		return func(seed int64) any { return fn(seed) }, nil
	case func(int64) string:
		return func(seed int64) any { return fn(seed) }, nil
	case func(int64) any:
		return fn, nil
	default:
		return nil, fmt.Errorf(
			"benchmark %s: source evaluates to %T, want func(int64) int64, string or any",
			name, v.Interface(),
		)
	}
}

// Resolver adapts Compile to the catalogue's resolver signature, so
// RunAll measures every entry's interpreted source instead of its
// native implementation.
func Resolver() catalogue.Resolver {
	return func(e catalogue.Entry) (engine.BenchFunc, error) {
		return Compile(e.Name, e.Source)
	}
}
