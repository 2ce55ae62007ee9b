// Package catalogue supplies named benchmark functions and their
// declared inner-iteration counts to the measurement engine.
package catalogue

import (
	"fmt"

	"github.com/mlow/benchoor/engine"
)

// Entry is one registered benchmark. Run is the native implementation;
// Source carries the same function as Go source for execution targets
// that interpret their benchmarks instead of running compiled code.
type Entry struct {
	Name            string
	Description     string
	InnerIterations int
	Run             engine.BenchFunc
	Source          string
}

// Resolver maps an entry to the function the engine should measure.
// The zero resolver uses the native implementation; the interpreted
// runtime supplies one that compiles Entry.Source instead.
type Resolver func(Entry) (engine.BenchFunc, error)

// Catalogue is an ordered registry of benchmark entries.
type Catalogue struct {
	entries map[string]Entry
	order   []string
}

// New returns a catalogue pre-populated with the builtin benchmarks.
func New() *Catalogue {
	c := &Catalogue{entries: make(map[string]Entry)}

	for _, e := range builtins() {
		// Builtins are statically well-formed; Register only fails on
		// duplicates or missing fields.
		if err := c.Register(e); err != nil {
			panic(fmt.Sprintf("builtin benchmark %q: %v", e.Name, err))
		}
	}

	return c
}

// Register adds an entry. Names are unique; the inner-iteration count
// is a declared contract and must be positive.
func (c *Catalogue) Register(e Entry) error {
	if e.Name == "" {
		return fmt.Errorf("benchmark name must not be empty")
	}

	if e.Run == nil {
		return fmt.Errorf("benchmark %q has no function", e.Name)
	}

	if e.InnerIterations <= 0 {
		return fmt.Errorf(
			"benchmark %q: inner iterations must be positive, got %d",
			e.Name, e.InnerIterations,
		)
	}

	if _, exists := c.entries[e.Name]; exists {
		return fmt.Errorf("benchmark %q already registered", e.Name)
	}

	c.entries[e.Name] = e
	c.order = append(c.order, e.Name)

	return nil
}

// Names returns all registered names in registration order.
func (c *Catalogue) Names() []string {
	names := make([]string, len(c.order))
	copy(names, c.order)

	return names
}

// Lookup returns the entry for name.
func (c *Catalogue) Lookup(name string) (Entry, bool) {
	e, ok := c.entries[name]
	return e, ok
}

// RunAll measures the named benchmarks strictly sequentially and
// returns a mapping of name to result. Names absent from the catalogue
// yield the missing-benchmark marker record instead of failing the
// whole run; a resolver failure yields a record carrying its error.
// Only a programming-contract violation inside the engine aborts.
func RunAll(
	eng *engine.Engine,
	cat *Catalogue,
	names []string,
	opts engine.Options,
	resolve Resolver,
) (map[string]engine.Result, error) {
	if len(names) == 0 {
		names = cat.Names()
	}

	results := make(map[string]engine.Result, len(names))

	for _, name := range names {
		entry, ok := cat.Lookup(name)
		if !ok {
			results[name] = engine.MissingResult(name)
			continue
		}

		run := entry.Run
		if resolve != nil {
			var err error

			run, err = resolve(entry)
			if err != nil {
				results[name] = engine.Result{Name: name, Error: err.Error()}
				continue
			}
		}

		res, err := eng.Run(engine.Spec{
			Name:            entry.Name,
			Run:             run,
			InnerIterations: entry.InnerIterations,
			Options:         opts,
		})
		if err != nil {
			return nil, fmt.Errorf("run %s: %w", name, err)
		}

		results[name] = res
	}

	return results, nil
}
