package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// steppingCandidate returns a synthetic source whose reading advances by
// stepMs on every call.
func steppingCandidate(source string, stepMs float64) Candidate {
	t := 0.0

	return Candidate{
		Source: source,
		Now: func() float64 {
			t += stepMs
			return t
		},
	}
}

// frozenCandidate returns a source stuck at a constant reading.
func frozenCandidate(source string) Candidate {
	return Candidate{
		Source: source,
		Now:    func() float64 { return 42 },
	}
}

func TestSelectClockAcceptsMonotonicCandidate(t *testing.T) {
	clk := selectClock(ProfileNative, []Candidate{
		steppingCandidate(SourcePerf, 0.5),
	})

	assert.Equal(t, SourcePerf, clk.Source)
	assert.InDelta(t, 0.5, clk.ResolutionMs, 1e-9)
}

func TestSelectClockSkipsFrozenCandidate(t *testing.T) {
	clk := selectClock(ProfileNative, []Candidate{
		frozenCandidate(SourcePerf),
		steppingCandidate(SourceWallclock, 1),
	})

	assert.Equal(t, SourceWallclock, clk.Source)
	assert.InDelta(t, 1.0, clk.ResolutionMs, 1e-9)
}

func TestSelectClockFallsBackToNone(t *testing.T) {
	clk := selectClock(ProfileNative, []Candidate{
		frozenCandidate(SourcePerf),
		frozenCandidate(SourceWallclock),
	})

	require.Equal(t, SourceNone, clk.Source)
	assert.Zero(t, clk.Now())
	assert.Zero(t, clk.Now())
	assert.Zero(t, clk.ResolutionMs)
}

func TestSelectClockConstrainedSkipsProbe(t *testing.T) {
	// A frozen first candidate would be rejected by the probe, but the
	// constrained profile accepts it as-is and estimates no resolution.
	clk := selectClock(ProfileConstrained, []Candidate{
		frozenCandidate(SourcePerf),
		steppingCandidate(SourceWallclock, 1),
	})

	assert.Equal(t, SourcePerf, clk.Source)
	assert.Zero(t, clk.ResolutionMs)
}

func TestEstimateResolutionMinPositiveDelta(t *testing.T) {
	reads := 0
	t0 := 0.0
	now := func() float64 {
		reads++
		// Mostly 2ms ticks with a single 0.25ms tick in the middle.
		if reads == 500 {
			t0 += 0.25
		} else {
			t0 += 2
		}
		return t0
	}

	res := estimateResolution(now)
	assert.InDelta(t, 0.25, res, 1e-9)
}

func TestEstimateResolutionFrozenDefaultsTo1ms(t *testing.T) {
	res := estimateResolution(func() float64 { return 7 })
	assert.Equal(t, 1.0, res)
}

func TestDefaultCandidatesOrder(t *testing.T) {
	cands := DefaultCandidates()

	require.Len(t, cands, 2)
	assert.Equal(t, SourcePerf, cands[0].Source)
	assert.Equal(t, SourceWallclock, cands[1].Source)
}
