package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentileSingleElement(t *testing.T) {
	sorted := []float64{3.5}

	for _, p := range []float64{0.01, 0.5, 0.95, 1} {
		assert.Equal(t, 3.5, percentile(sorted, p), "p=%v", p)
	}
}

func TestPercentileIndexing(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	// index = ceil(p*n) - 1, clamped.
	assert.Equal(t, 5.0, percentile(sorted, 0.5))
	assert.Equal(t, 10.0, percentile(sorted, 0.95))
	assert.Equal(t, 10.0, percentile(sorted, 1))
	assert.Equal(t, 1.0, percentile(sorted, 0.05))
}

func TestSummarizeOrderingInvariant(t *testing.T) {
	samples := []float64{5, 1, 9, 3, 3, 7, 2, 8, 4, 6, 2.5}

	s := Summarize(samples)

	assert.LessOrEqual(t, s.MinMs, s.MedianMs)
	assert.LessOrEqual(t, s.MedianMs, s.P95Ms)
	assert.LessOrEqual(t, s.P95Ms, s.MaxMs)
	assert.Equal(t, 1.0, s.MinMs)
	assert.Equal(t, 9.0, s.MaxMs)
	assert.InDelta(t, 50.5, s.TotalMs, 1e-9)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))
	assert.Equal(t, Summary{}, summarizeUnsorted(nil))
}

func TestSummarizeUnsortedApproximations(t *testing.T) {
	samples := []float64{4, 2, 8, 6}

	s := summarizeUnsorted(samples)

	assert.Equal(t, 20.0, s.TotalMs)
	assert.Equal(t, 5.0, s.MeanMs)
	// The constrained path trades percentile fidelity for loop count:
	// median is reported as the mean and p95 as the max.
	assert.Equal(t, s.MeanMs, s.MedianMs)
	assert.Equal(t, s.MaxMs, s.P95Ms)
	assert.Equal(t, 2.0, s.MinMs)
	assert.Equal(t, 8.0, s.MaxMs)
}

func TestThroughput(t *testing.T) {
	nsPerOp, opsPerSec := throughput(100, 1000)

	// 100ms over 1000 ops: 100_000ns/op, 10_000 ops/sec.
	assert.InDelta(t, 100_000, nsPerOp, 1e-6)
	assert.InDelta(t, 10_000, opsPerSec, 1e-6)
}

func TestThroughputDegenerate(t *testing.T) {
	nsPerOp, opsPerSec := throughput(0, 1000)
	assert.Zero(t, nsPerOp)
	assert.Zero(t, opsPerSec)

	nsPerOp, opsPerSec = throughput(100, 0)
	assert.Zero(t, nsPerOp)
	assert.Greater(t, opsPerSec, -1.0) // defined, just zero ops
	assert.Zero(t, opsPerSec)
}

func TestThroughputConsistency(t *testing.T) {
	// ops_per_sec must equal totalOps / (total_ms/1000) within
	// floating-point tolerance.
	totalMs := 73.25
	totalOps := int64(12 * 400 * 30)

	_, opsPerSec := throughput(totalMs, totalOps)
	want := float64(totalOps) / (totalMs / 1000)

	assert.InEpsilon(t, want, opsPerSec, 1e-12)
}
