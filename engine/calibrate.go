package engine

import "math"

// Calibration is the outcome of batch-size discovery: the batch size the
// sampler will use and the elapsed time its last calibration run took.
type Calibration struct {
	BatchSize int
	ElapsedMs float64
}

// batchRunner executes the benchmark function batch times between two
// clock reads and returns the elapsed milliseconds.
type batchRunner func(batch int) float64

// calibrationStrategy discovers a batch size whose sample duration
// reaches the strategy's target. Implementations never block
// indefinitely: the attempt budget is a hard bound and the last attempt
// is accepted even when it falls short.
type calibrationStrategy interface {
	// targetMs derives the sample-duration target from the clock's
	// demonstrated resolution.
	targetMs(resolutionMs float64) float64

	// calibrate runs batches until one reaches target or the attempt
	// budget is exhausted.
	calibrate(target, resolutionMs float64, run batchRunner) Calibration
}

const (
	defaultMaxBatchSize = 1_000_000
	maxOpsPerSample     = 5_000_000

	resolutionAwareAttempts = 20
	resolutionTargetFactor  = 50
	minTargetSampleMs       = 20
	maxTargetSampleMs       = 100

	doublingTargetMs     = 20
	doublingMaxBatchSize = 10_000
	doublingAttempts     = 15
)

// maxBatchFor caps the batch size so that one sample never executes more
// than maxOpsPerSample synthetic operations, whatever innerIterations is.
func maxBatchFor(innerIterations int) int {
	maxBatch := defaultMaxBatchSize
	if limit := maxOpsPerSample / innerIterations; limit < maxBatch {
		maxBatch = limit
	}

	if maxBatch < 1 {
		return 1
	}

	return maxBatch
}

// resolutionAware grows the batch proportionally toward a target derived
// from the clock resolution: at least 50x the demonstrated resolution,
// clamped to [20ms, 100ms].
type resolutionAware struct {
	maxBatch int
}

func (s resolutionAware) targetMs(resolutionMs float64) float64 {
	target := resolutionMs * resolutionTargetFactor
	if target < minTargetSampleMs {
		return minTargetSampleMs
	}

	if target > maxTargetSampleMs {
		return maxTargetSampleMs
	}

	return target
}

func (s resolutionAware) calibrate(
	target, resolutionMs float64,
	run batchRunner,
) Calibration {
	batch := 1

	var elapsed float64

	for attempt := 0; ; attempt++ {
		elapsed = run(batch)
		if elapsed >= target || attempt == resolutionAwareAttempts-1 {
			break
		}

		// A sub-resolution read gives elapsed <= 0; substitute a floor
		// so the scale factor stays finite.
		floor := elapsed
		if floor <= 0 {
			floor = resolutionMs
			if floor < 1 {
				floor = 1
			}
		}

		next := int(math.Ceil(float64(batch) * (target / floor)))
		if next < batch+1 {
			next = batch + 1
		}

		if next > s.maxBatch {
			next = s.maxBatch
		}

		batch = next
	}

	return Calibration{BatchSize: batch, ElapsedMs: elapsed}
}

// fixedDoubling is the constrained-target strategy: a fixed 20ms target
// and plain doubling, trading calibration precision for a bounded,
// allocation-free loop on runtimes where the full algorithm's own
// branching cost would distort results.
type fixedDoubling struct{}

func (fixedDoubling) targetMs(float64) float64 {
	return doublingTargetMs
}

func (fixedDoubling) calibrate(
	target, _ float64,
	run batchRunner,
) Calibration {
	batch := 1

	var elapsed float64

	for attempt := 0; ; attempt++ {
		elapsed = run(batch)
		if elapsed >= target || attempt == doublingAttempts-1 {
			break
		}

		batch *= 2
		if batch > doublingMaxBatchSize {
			batch = doublingMaxBatchSize
		}
	}

	return Calibration{BatchSize: batch, ElapsedMs: elapsed}
}
