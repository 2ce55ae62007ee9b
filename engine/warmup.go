package engine

const minTimedWarmupIterations = 50

// warmup stabilizes any adaptive execution tier before measurement.
//
// The full path runs two stages: a fixed number of untimed single-call
// batches, then a time-boxed stage that keeps issuing single calls until
// warmupMs of wall time elapses or an iteration cap is hit. Count-based
// warmup alone misses tiers that promote hot code after a time-dependent
// number of calls; a purely time-boxed stage alone would loop forever on
// a frozen clock, so both bounds apply.
//
// The constrained path has no adaptive tiering to stabilize and runs the
// count-based stage only.
func warmup(
	profile Profile,
	run BenchFunc,
	acc *Accumulator,
	clk Clock,
	iterations int,
	warmupMs float64,
) {
	for i := 0; i < iterations; i++ {
		acc.Fold(run(acc.NextSeed()))
	}

	if profile == ProfileConstrained {
		return
	}

	iterCap := iterations * 10
	if iterCap < minTimedWarmupIterations {
		iterCap = minTimedWarmupIterations
	}

	start := clk.Now()

	for i := 0; i < iterCap; i++ {
		if clk.Now()-start >= warmupMs {
			break
		}

		acc.Fold(run(acc.NextSeed()))
	}
}
