// Package engine is the adaptive measurement core: it selects and
// verifies a clock source, warms the benchmark up, calibrates a batch
// size whose sample duration is statistically meaningful relative to
// clock resolution, runs the measured sampling loop, and reduces the raw
// samples to throughput and latency statistics.
//
// The whole pipeline for one benchmark executes synchronously on the
// calling goroutine; benchmarks must be run strictly sequentially so
// cache and adaptive-tier state is not perturbed by unrelated work.
package engine

import (
	"fmt"
	"log/slog"
)

// Profile selects between the two calibration algorithms. The native
// profile runs the full resolution-aware pipeline; the constrained
// profile is for execution targets whose per-call branching overhead
// would distort the full algorithm's own measurements, and substitutes
// fixed-doubling calibration, count-only warmup, and sort-free
// statistics.
type Profile int

const (
	ProfileNative Profile = iota
	ProfileConstrained
)

func (p Profile) String() string {
	if p == ProfileConstrained {
		return "constrained"
	}

	return "native"
}

// BenchFunc is one executable unit of work. The seed advances by one per
// call; the return value is folded into the run's accumulator so the
// call cannot be eliminated as dead code.
type BenchFunc func(seed int64) any

// Spec describes one benchmark to measure. InnerIterations declares how
// many synthetic operations one call of Run performs; it must be
// positive. Spec is owned by the caller and immutable for the duration
// of a run.
type Spec struct {
	Name            string
	Run             BenchFunc
	InnerIterations int
	Options         Options
}

// Options bounds the warmup and measured phases. Zero fields fall back
// to the engine's process-wide defaults, then to hardcoded constants.
type Options struct {
	WarmupIterations   int
	MeasuredIterations int
	WarmupMs           float64
	MaxMeasuredTotalMs float64
}

// Hardcoded option defaults, the last stop of the fallback chain.
const (
	DefaultWarmupIterations   = 20
	DefaultMeasuredIterations = 30
	DefaultMaxMeasuredTotalMs = 2000
	defaultMinWarmupMs        = 100
)

// merged fills zero fields of o from fallback.
func (o Options) merged(fallback Options) Options {
	if o.WarmupIterations == 0 {
		o.WarmupIterations = fallback.WarmupIterations
	}

	if o.MeasuredIterations == 0 {
		o.MeasuredIterations = fallback.MeasuredIterations
	}

	if o.WarmupMs == 0 {
		o.WarmupMs = fallback.WarmupMs
	}

	if o.MaxMeasuredTotalMs == 0 {
		o.MaxMeasuredTotalMs = fallback.MaxMeasuredTotalMs
	}

	return o
}

// Engine runs benchmarks under one profile. Candidates defaults to the
// built-in time sources; tests inject synthetic clocks through it.
type Engine struct {
	profile    Profile
	defaults   Options
	candidates []Candidate
	logger     *slog.Logger
}

// New creates an Engine. defaults is the process-wide option override
// object (zero fields mean "use the hardcoded constants"); candidates
// may be empty to use the built-in time sources.
func New(
	profile Profile,
	defaults Options,
	logger *slog.Logger,
	candidates ...Candidate,
) *Engine {
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		profile:    profile,
		defaults:   defaults,
		candidates: candidates,
		logger:     logger.With(slog.String("profile", profile.String())),
	}
}

// Profile returns the profile the engine was constructed with.
func (e *Engine) Profile() Profile {
	return e.profile
}

// Run measures one benchmark to completion and returns its result
// record. Measurement degeneracies (frozen clocks, sub-resolution
// samples, exhausted calibration budgets) resolve internally and never
// surface as errors; the only error is the contract violation of a
// non-positive InnerIterations, which is a caller bug.
func (e *Engine) Run(spec Spec) (Result, error) {
	if spec.Run == nil {
		return MissingResult(spec.Name), nil
	}

	if spec.InnerIterations <= 0 {
		return Result{}, fmt.Errorf(
			"benchmark %q: inner iterations must be positive, got %d",
			spec.Name, spec.InnerIterations,
		)
	}

	opts := spec.Options.merged(e.defaults).merged(Options{
		WarmupIterations:   DefaultWarmupIterations,
		MeasuredIterations: DefaultMeasuredIterations,
		MaxMeasuredTotalMs: DefaultMaxMeasuredTotalMs,
	})

	candidates := e.candidates
	if len(candidates) == 0 {
		candidates = DefaultCandidates()
	}

	clk := selectClock(e.profile, candidates)
	if clk.Source == SourceNone {
		e.logger.Warn("no monotonic clock available, durations degrade to zero",
			slog.String("benchmark", spec.Name),
		)
	}

	strategy := e.strategy(spec.InnerIterations)
	target := strategy.targetMs(clk.ResolutionMs)

	if opts.WarmupMs == 0 {
		opts.WarmupMs = target
		if opts.WarmupMs < defaultMinWarmupMs {
			opts.WarmupMs = defaultMinWarmupMs
		}
	}

	acc := NewAccumulator()
	runBatch := func(batch int) float64 {
		start := clk.Now()
		for i := 0; i < batch; i++ {
			acc.Fold(spec.Run(acc.NextSeed()))
		}

		return clk.Now() - start
	}

	warmup(e.profile, spec.Run, acc, clk, opts.WarmupIterations, opts.WarmupMs)

	cal := strategy.calibrate(target, clk.ResolutionMs, runBatch)

	measured := opts.MeasuredIterations
	if e.profile == ProfileNative {
		measured = cappedIterations(measured, cal, opts.MaxMeasuredTotalMs)
	}

	e.logger.Debug("calibrated",
		slog.String("benchmark", spec.Name),
		slog.Int("batch_size", cal.BatchSize),
		slog.Float64("elapsed_ms", cal.ElapsedMs),
		slog.Int("measured_iterations", measured),
	)

	samples := sample(runBatch, cal.BatchSize, measured)

	var summary Summary
	if e.profile == ProfileConstrained {
		summary = summarizeUnsorted(samples)
	} else {
		summary = Summarize(samples)
	}

	totalOps := int64(spec.InnerIterations) * int64(cal.BatchSize) * int64(measured)
	nsPerOp, opsPerSec := throughput(summary.TotalMs, totalOps)

	warmupMs := opts.WarmupMs
	if e.profile == ProfileConstrained {
		warmupMs = 0
	}

	return Result{
		Name:               spec.Name,
		WarmupIterations:   opts.WarmupIterations,
		MeasuredIterations: measured,
		InnerIterations:    spec.InnerIterations,
		BatchSize:          cal.BatchSize,
		WarmupMs:           warmupMs,
		TotalMs:            summary.TotalMs,
		MeanMs:             summary.MeanMs,
		MedianMs:           summary.MedianMs,
		P95Ms:              summary.P95Ms,
		MinMs:              summary.MinMs,
		MaxMs:              summary.MaxMs,
		NsPerOp:            nsPerOp,
		OpsPerSec:          opsPerSec,
		ClockSource:        clk.Source,
		ClockResolutionMs:  clk.ResolutionMs,
		TargetSampleMs:     target,
		ThinSample:         measured < thinSampleThreshold,
	}, nil
}

func (e *Engine) strategy(innerIterations int) calibrationStrategy {
	if e.profile == ProfileConstrained {
		return fixedDoubling{}
	}

	return resolutionAware{maxBatch: maxBatchFor(innerIterations)}
}
