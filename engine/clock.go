package engine

import "time"

// Clock source identifiers as they appear in result records.
const (
	SourcePerf      = "perf"
	SourceWallclock = "wallclock"
	SourceNone      = "none"
)

// Clock is the time source used for one benchmark run. Now returns
// milliseconds from an arbitrary origin; ResolutionMs is the smallest
// positive delta observed between consecutive reads (0 when not estimated).
type Clock struct {
	Now          func() float64
	Source       string
	ResolutionMs float64
}

// Candidate is a time source offered for selection. Candidates are tried
// in order and must prove themselves by producing a strictly increasing
// reading under a CPU-bound spin before being accepted.
type Candidate struct {
	Source string
	Now    func() float64
}

const (
	probeRounds     = 6
	probeSpinCount  = 20000
	resolutionReads = 1000
)

// probeSink keeps the probe spin loop observable so it cannot be
// optimized away.
var probeSink int64

// DefaultCandidates returns the built-in time sources in preference
// order: the monotonic reading first, the coarse wall clock second.
func DefaultCandidates() []Candidate {
	origin := time.Now()

	return []Candidate{
		{
			Source: SourcePerf,
			Now: func() float64 {
				return float64(time.Since(origin).Nanoseconds()) / 1e6
			},
		},
		{
			Source: SourceWallclock,
			Now: func() float64 {
				return float64(time.Now().UnixMilli())
			},
		},
	}
}

// selectClock picks the first candidate that passes the monotonicity
// probe. If none passes, it returns a degenerate clock whose reads are
// constant zero; downstream code must treat all-zero durations as
// unmeasurable rather than instant.
//
// On the constrained profile the probe is skipped entirely (its own cost
// would distort measurement there) and the first candidate is accepted
// with no resolution estimate.
func selectClock(profile Profile, candidates []Candidate) Clock {
	if len(candidates) > 0 && profile == ProfileConstrained {
		first := candidates[0]

		return Clock{Now: first.Now, Source: first.Source}
	}

	for _, c := range candidates {
		if !proveMonotonic(c) {
			continue
		}

		return Clock{
			Now:          c.Now,
			Source:       c.Source,
			ResolutionMs: estimateResolution(c.Now),
		}
	}

	return Clock{
		Now:    func() float64 { return 0 },
		Source: SourceNone,
	}
}

// proveMonotonic runs up to probeRounds CPU-bound spins and accepts the
// candidate as soon as one spin produces a strictly increasing reading.
// This filters out timers that look monotonic by type but are frozen at
// the granularity being measured.
func proveMonotonic(c Candidate) bool {
	for round := 0; round < probeRounds; round++ {
		before := c.Now()

		var spin int64
		for i := 0; i < probeSpinCount; i++ {
			spin++
		}
		probeSink += spin

		if c.Now() > before {
			return true
		}
	}

	return false
}

// estimateResolution takes resolutionReads consecutive readings and
// returns the minimum strictly-positive delta. A clock that never
// advances across all reads is assumed to tick at 1ms.
func estimateResolution(now func() float64) float64 {
	res := 0.0
	prev := now()

	for i := 0; i < resolutionReads; i++ {
		cur := now()

		if d := cur - prev; d > 0 && (res == 0 || d < res) {
			res = d
		}

		prev = cur
	}

	if res == 0 {
		return 1
	}

	return res
}
