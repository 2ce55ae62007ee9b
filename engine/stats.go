package engine

import (
	"math"
	"sort"

	"github.com/samber/lo"
)

// Summary reduces a raw sample set to its descriptive statistics. All
// fields are milliseconds.
type Summary struct {
	TotalMs  float64 `json:"total_ms"`
	MeanMs   float64 `json:"mean_ms"`
	MedianMs float64 `json:"median_ms"`
	P95Ms    float64 `json:"p95_ms"`
	MinMs    float64 `json:"min_ms"`
	MaxMs    float64 `json:"max_ms"`
}

// Summarize computes the full-path statistics for a sample set: sorted
// percentiles for median and p95, true min and max. An empty set yields
// a zero Summary.
func Summarize(samples []float64) Summary {
	if len(samples) == 0 {
		return Summary{}
	}

	total := lo.Sum(samples)

	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	return Summary{
		TotalMs:  total,
		MeanMs:   total / float64(len(samples)),
		MedianMs: percentile(sorted, 0.5),
		P95Ms:    percentile(sorted, 0.95),
		MinMs:    sorted[0],
		MaxMs:    sorted[len(sorted)-1],
	}
}

// summarizeUnsorted computes the constrained-path statistics: the same
// totals but median reported as the mean and p95 as the max, skipping
// the sort. These fields are approximations and are not comparable
// like-for-like with full-path percentiles.
func summarizeUnsorted(samples []float64) Summary {
	if len(samples) == 0 {
		return Summary{}
	}

	total := lo.Sum(samples)
	mean := total / float64(len(samples))

	return Summary{
		TotalMs:  total,
		MeanMs:   mean,
		MedianMs: mean,
		P95Ms:    lo.Max(samples),
		MinMs:    lo.Min(samples),
		MaxMs:    lo.Max(samples),
	}
}

// percentile returns sorted[min(n-1, max(0, ceil(p*n)-1))]: the smallest
// element whose cumulative fraction reaches p, clamped to valid bounds.
// For n == 1 every p yields the single element.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)

	idx := int(math.Ceil(p*float64(n))) - 1
	if idx < 0 {
		idx = 0
	}

	if idx > n-1 {
		idx = n - 1
	}

	return sorted[idx]
}

// throughput derives ns/op and ops/sec from the totals. Zero totals
// degrade to zero rather than dividing by zero.
func throughput(totalMs float64, totalOps int64) (nsPerOp, opsPerSec float64) {
	if totalOps > 0 {
		nsPerOp = totalMs * 1e6 / float64(totalOps)
	}

	if totalMs > 0 {
		opsPerSec = float64(totalOps) / (totalMs / 1000)
	}

	return nsPerOp, opsPerSec
}
