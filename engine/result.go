package engine

import "encoding/json"

// thinSampleThreshold marks sample sets too small for a meaningful p95.
// The budget-capping floor of 5 measured iterations is kept for
// compatibility; thin results are flagged instead of rejected.
const thinSampleThreshold = 20

// MissingBenchmarkError is the error marker emitted when a requested
// benchmark name cannot be resolved to a callable function.
const MissingBenchmarkError = "missing benchmark"

// Result is the durable output record of one benchmark run. Callers
// iterate a mapping of name to Result and must tolerate both the full
// shape and the error-marker shape (Name plus Error only).
type Result struct {
	Name  string `json:"name"`
	Error string `json:"error,omitempty"`

	WarmupIterations   int `json:"warmup_iterations"`
	MeasuredIterations int `json:"measured_iterations"`
	InnerIterations    int `json:"inner_iterations"`
	BatchSize          int `json:"batch_size"`

	WarmupMs float64 `json:"warmup_ms"`

	TotalMs  float64 `json:"total_ms"`
	MeanMs   float64 `json:"mean_ms"`
	MedianMs float64 `json:"median_ms"`
	P95Ms    float64 `json:"p95_ms"`
	MinMs    float64 `json:"min_ms"`
	MaxMs    float64 `json:"max_ms"`

	NsPerOp   float64 `json:"ns_per_op"`
	OpsPerSec float64 `json:"ops_per_sec"`

	ClockSource       string  `json:"clock_source"`
	ClockResolutionMs float64 `json:"clock_resolution_ms"`
	TargetSampleMs    float64 `json:"target_sample_ms"`

	// ThinSample flags a measured phase whose sample count fell below
	// thinSampleThreshold, meaning the reported p95 is statistically
	// weak.
	ThinSample bool `json:"thin_sample,omitempty"`
}

// MarshalJSON emits the bare error-marker shape (name and error only)
// for records carrying an error, and the full field set otherwise.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Error != "" {
		return json.Marshal(struct {
			Name  string `json:"name"`
			Error string `json:"error"`
		}{Name: r.Name, Error: r.Error})
	}

	type full Result

	return json.Marshal(full(r))
}

// MissingResult builds the error-marker record for an unresolvable
// benchmark name.
func MissingResult(name string) Result {
	return Result{Name: name, Error: MissingBenchmarkError}
}
