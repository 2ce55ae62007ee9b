package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlow/benchoor/engine"
	"github.com/mlow/benchoor/httpload"
	"github.com/mlow/benchoor/proc"
)

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	s, err := New(dir)
	require.NoError(t, err)
	require.NotEmpty(t, s.RunID())

	micro := map[string]engine.Result{
		"fib": {
			Name:        "fib",
			BatchSize:   128,
			OpsPerSec:   123456.7,
			ClockSource: engine.SourcePerf,
		},
		"ghost": engine.MissingResult("ghost"),
	}

	_, err = s.SaveMicrobench("go", "native", micro)
	require.NoError(t, err)

	_, err = s.SaveHTTP("go", httpload.Result{
		Endpoint:          "http://127.0.0.1:8080/json",
		Requests:          100,
		RequestsPerSecond: 5000,
	})
	require.NoError(t, err)

	_, err = s.SaveColdStart("go", []float64{12.5, 14.0, 11.0})
	require.NoError(t, err)

	_, err = s.SaveMemory("go", proc.MemoryStats{
		BaselineKB: 1024,
		PeakKB:     4096,
		AvgKB:      2048,
		Samples:    20,
	})
	require.NoError(t, err)

	_, err = s.SaveVersions(map[string]string{"go": "go1.24.0"})
	require.NoError(t, err)

	_, err = s.SaveSystemInfo()
	require.NoError(t, err)

	session, err := Load(dir)
	require.NoError(t, err)

	require.NotNil(t, session.System)
	assert.Equal(t, s.RunID(), session.System.RunID)
	assert.Positive(t, session.System.CPUCores)

	require.Len(t, session.Microbench, 1)
	assert.Equal(t, "go", session.Microbench[0].Runtime)
	assert.Equal(t, "native", session.Microbench[0].Profile)
	assert.Equal(t, 128, session.Microbench[0].Benchmarks["fib"].BatchSize)
	assert.Equal(t, "missing benchmark", session.Microbench[0].Benchmarks["ghost"].Error)

	require.Len(t, session.HTTP, 1)
	assert.Equal(t, "http://127.0.0.1:8080/json", session.HTTP[0].Endpoint)

	require.Len(t, session.ColdStart, 1)
	assert.Equal(t, 3, session.ColdStart[0].Runs)
	assert.Equal(t, 11.0, session.ColdStart[0].Summary.MinMs)
	assert.Equal(t, 14.0, session.ColdStart[0].Summary.MaxMs)

	require.Len(t, session.Memory, 1)
	assert.Equal(t, "go", session.Memory[0].Runtime)
	assert.Equal(t, int64(4096), session.Memory[0].Metrics.PeakKB)
	assert.Equal(t, 20, session.Memory[0].Metrics.Samples)

	require.NotNil(t, session.Versions)
	assert.Equal(t, s.RunID(), session.Versions.RunID)
	assert.Equal(t, "go1.24.0", session.Versions.Runtimes["go"])
}

func TestSaveHTTPFilenameSanitized(t *testing.T) {
	dir := t.TempDir()

	s, err := New(dir)
	require.NoError(t, err)

	path, err := s.SaveHTTP("go", httpload.Result{
		Endpoint: "http://127.0.0.1:8080/plain?x=1",
	})
	require.NoError(t, err)

	base := filepath.Base(path)
	assert.NotContains(t, base, "/")
	assert.NotContains(t, base, ":")
	assert.NotContains(t, base, "?")
	assert.Contains(t, base, "http_go_")
}

func TestLoadMissingDir(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
}

func TestLoadEmptyDir(t *testing.T) {
	session, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Nil(t, session.System)
	assert.Nil(t, session.Versions)
	assert.Empty(t, session.Microbench)
	assert.Empty(t, session.HTTP)
	assert.Empty(t, session.ColdStart)
	assert.Empty(t, session.Memory)
}
