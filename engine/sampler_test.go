package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCappedIterations(t *testing.T) {
	tests := []struct {
		name       string
		measured   int
		elapsedMs  float64
		maxTotalMs float64
		want       int
	}{
		{
			name:     "within budget untouched",
			measured: 30, elapsedMs: 10, maxTotalMs: 2000,
			want: 30,
		},
		{
			name:     "scaled down to fit budget",
			measured: 30, elapsedMs: 100, maxTotalMs: 1500,
			want: 15,
		},
		{
			name:     "floor of five when budget is tight",
			measured: 30, elapsedMs: 50, maxTotalMs: 100,
			want: 5,
		},
		{
			name:     "never scaled up past configured count",
			measured: 3, elapsedMs: 50, maxTotalMs: 100,
			want: 3,
		},
		{
			name:     "zero elapsed skips capping",
			measured: 30, elapsedMs: 0, maxTotalMs: 100,
			want: 30,
		},
		{
			name:     "fractional scale rounds up",
			measured: 30, elapsedMs: 300, maxTotalMs: 2000,
			want: 7, // ceil(2000/300) = 7
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cappedIterations(
				tt.measured,
				Calibration{BatchSize: 1, ElapsedMs: tt.elapsedMs},
				tt.maxTotalMs,
			)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSampleRunsExactCount(t *testing.T) {
	var batches []int
	samples := sample(func(batch int) float64 {
		batches = append(batches, batch)
		return 1.5
	}, 7, 4)

	assert.Equal(t, []int{7, 7, 7, 7}, batches)
	assert.Equal(t, []float64{1.5, 1.5, 1.5, 1.5}, samples)
}
