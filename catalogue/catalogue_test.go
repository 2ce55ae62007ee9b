package catalogue

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlow/benchoor/engine"
)

// fastClock advances 100ms per read. Every batch then appears to reach
// the calibration target immediately, so runs keep batch size 1 and
// execute only a handful of real calls.
func fastClock() engine.Candidate {
	t := 0.0

	return engine.Candidate{
		Source: engine.SourcePerf,
		Now: func() float64 {
			t += 100
			return t
		},
	}
}

func testEngine(t *testing.T) *engine.Engine {
	t.Helper()

	return engine.New(engine.ProfileNative, engine.Options{
		WarmupIterations:   1,
		WarmupMs:           1,
		MeasuredIterations: 5,
	}, nil, fastClock())
}

func TestNewRegistersBuiltins(t *testing.T) {
	c := New()

	names := c.Names()
	require.NotEmpty(t, names)
	assert.Contains(t, names, "arith")
	assert.Contains(t, names, "fib")
	assert.Contains(t, names, "string_build")

	for _, name := range names {
		e, ok := c.Lookup(name)
		require.True(t, ok, name)
		assert.NotNil(t, e.Run, name)
		assert.NotEmpty(t, e.Source, name)
		assert.Positive(t, e.InnerIterations, name)
	}
}

func TestRegisterValidation(t *testing.T) {
	c := New()

	noop := func(seed int64) any { return seed }

	assert.Error(t, c.Register(Entry{Name: "", Run: noop, InnerIterations: 1}))
	assert.Error(t, c.Register(Entry{Name: "x", InnerIterations: 1}))
	assert.Error(t, c.Register(Entry{Name: "x", Run: noop}))
	assert.Error(t, c.Register(Entry{Name: "arith", Run: noop, InnerIterations: 1}))

	require.NoError(t, c.Register(Entry{Name: "x", Run: noop, InnerIterations: 1}))
	assert.Error(t, c.Register(Entry{Name: "x", Run: noop, InnerIterations: 1}))
}

func TestRunAllMissingBenchmark(t *testing.T) {
	c := New()

	results, err := RunAll(testEngine(t), c, []string{"ghost"}, engine.Options{}, nil)
	require.NoError(t, err)

	assert.Equal(t, engine.Result{
		Name:  "ghost",
		Error: "missing benchmark",
	}, results["ghost"])
}

func TestRunAllMixedNames(t *testing.T) {
	c := New()

	results, err := RunAll(
		testEngine(t), c,
		[]string{"fib", "ghost"},
		engine.Options{WarmupIterations: 1, WarmupMs: 1, MeasuredIterations: 5},
		nil,
	)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Empty(t, results["fib"].Error)
	assert.Greater(t, results["fib"].OpsPerSec, 0.0)
	assert.Equal(t, "missing benchmark", results["ghost"].Error)
}

func TestRunAllResolverFailure(t *testing.T) {
	c := New()

	resolve := func(e Entry) (engine.BenchFunc, error) {
		return nil, fmt.Errorf("compile %s: boom", e.Name)
	}

	results, err := RunAll(testEngine(t), c, []string{"fib"}, engine.Options{}, resolve)
	require.NoError(t, err)

	assert.Equal(t, "compile fib: boom", results["fib"].Error)
}

func TestRunAllDefaultsToAllBenchmarks(t *testing.T) {
	c := New()

	results, err := RunAll(
		testEngine(t), c, nil,
		engine.Options{WarmupIterations: 1, WarmupMs: 1, MeasuredIterations: 5},
		nil,
	)
	require.NoError(t, err)

	assert.Len(t, results, len(c.Names()))
	for name, res := range results {
		assert.Empty(t, res.Error, name)
		assert.GreaterOrEqual(t, res.BatchSize, 1, name)
	}
}

func TestBuiltinsConsumeSeed(t *testing.T) {
	c := New()

	for _, name := range c.Names() {
		e, _ := c.Lookup(name)

		// Different seeds must not produce trivially identical work for
		// value-returning benchmarks.
		a := e.Run(1)
		b := e.Run(2)
		assert.NotNil(t, a, name)
		assert.NotNil(t, b, name)
		assert.NotEqual(t, a, b, name)
	}
}
