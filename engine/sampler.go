package engine

import "math"

// minMeasuredIterations floors the budget-capped sample count so the
// measured phase always yields a nonzero statistical sample.
const minMeasuredIterations = 5

// cappedIterations derives the effective measured-iteration count from
// the configured one. When the calibrated per-sample cost would blow the
// total wall-time budget, the count is scaled down to fit; it is only
// ever scaled down, never up.
func cappedIterations(
	measured int,
	cal Calibration,
	maxTotalMs float64,
) int {
	if cal.ElapsedMs <= 0 {
		return measured
	}

	if cal.ElapsedMs*float64(measured) <= maxTotalMs {
		return measured
	}

	scaled := int(math.Ceil(maxTotalMs / cal.ElapsedMs))
	if scaled < minMeasuredIterations {
		scaled = minMeasuredIterations
	}

	if scaled > measured {
		return measured
	}

	return scaled
}

// sample runs the measured phase: iterations timed batches at the
// calibrated batch size, one elapsed duration per batch.
func sample(run batchRunner, batchSize, iterations int) []float64 {
	samples := make([]float64, iterations)
	for i := range samples {
		samples[i] = run(batchSize)
	}

	return samples
}
