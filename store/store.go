// Package store persists benchmark results as one JSON file per
// category in a results directory, the layout the report renderer and
// external analysis tooling consume.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mlow/benchoor/engine"
	"github.com/mlow/benchoor/httpload"
	"github.com/mlow/benchoor/proc"
)

// Store writes result files for one benchmark session. Every file is
// stamped with the session's run ID and timestamp.
type Store struct {
	dir   string
	runID string
}

// New creates the results directory if needed and starts a session.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create results dir %s: %w", dir, err)
	}

	return &Store{dir: dir, runID: uuid.NewString()}, nil
}

// RunID returns the session identifier stamped into every file.
func (s *Store) RunID() string {
	return s.runID
}

// Dir returns the results directory.
func (s *Store) Dir() string {
	return s.dir
}

// MicrobenchFile is the persisted shape of one microbenchmark session.
type MicrobenchFile struct {
	RunID      string                   `json:"run_id"`
	Timestamp  string                   `json:"timestamp"`
	Runtime    string                   `json:"runtime"`
	Profile    string                   `json:"profile"`
	Benchmarks map[string]engine.Result `json:"benchmarks"`
}

// SaveMicrobench writes microbench_<runtime>.json and returns its path.
func (s *Store) SaveMicrobench(
	runtimeLabel, profile string,
	results map[string]engine.Result,
) (string, error) {
	return s.write("microbench_"+sanitize(runtimeLabel)+".json", MicrobenchFile{
		RunID:      s.runID,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Runtime:    runtimeLabel,
		Profile:    profile,
		Benchmarks: results,
	})
}

// HTTPFile is the persisted shape of one HTTP load run.
type HTTPFile struct {
	RunID     string          `json:"run_id"`
	Timestamp string          `json:"timestamp"`
	Runtime   string          `json:"runtime"`
	Endpoint  string          `json:"endpoint"`
	Metrics   httpload.Result `json:"metrics"`
}

// SaveHTTP writes http_<runtime>_<endpoint>.json and returns its path.
func (s *Store) SaveHTTP(runtimeLabel string, res httpload.Result) (string, error) {
	name := fmt.Sprintf(
		"http_%s_%s.json", sanitize(runtimeLabel), sanitize(res.Endpoint),
	)

	return s.write(name, HTTPFile{
		RunID:     s.runID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Runtime:   runtimeLabel,
		Endpoint:  res.Endpoint,
		Metrics:   res,
	})
}

// ColdStartFile is the persisted shape of one cold-start session.
type ColdStartFile struct {
	RunID     string         `json:"run_id"`
	Timestamp string         `json:"timestamp"`
	Runtime   string         `json:"runtime"`
	Runs      int            `json:"runs"`
	SamplesMs []float64      `json:"samples_ms"`
	Summary   engine.Summary `json:"summary"`
}

// SaveColdStart writes coldstart_<runtime>.json and returns its path.
func (s *Store) SaveColdStart(
	runtimeLabel string,
	samples []float64,
) (string, error) {
	return s.write("coldstart_"+sanitize(runtimeLabel)+".json", ColdStartFile{
		RunID:     s.runID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Runtime:   runtimeLabel,
		Runs:      len(samples),
		SamplesMs: samples,
		Summary:   engine.Summarize(samples),
	})
}

// MemoryFile is the persisted shape of one memory-usage session.
type MemoryFile struct {
	RunID     string           `json:"run_id"`
	Timestamp string           `json:"timestamp"`
	Runtime   string           `json:"runtime"`
	Metrics   proc.MemoryStats `json:"metrics"`
}

// SaveMemory writes memory_<runtime>.json and returns its path.
func (s *Store) SaveMemory(
	runtimeLabel string,
	stats proc.MemoryStats,
) (string, error) {
	return s.write("memory_"+sanitize(runtimeLabel)+".json", MemoryFile{
		RunID:     s.runID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Runtime:   runtimeLabel,
		Metrics:   stats,
	})
}

// VersionsFile records the version strings of the runtimes under test.
type VersionsFile struct {
	RunID     string            `json:"run_id"`
	Timestamp string            `json:"timestamp"`
	Runtimes  map[string]string `json:"runtimes"`
}

// SaveVersions writes versions.json and returns its path.
func (s *Store) SaveVersions(runtimes map[string]string) (string, error) {
	return s.write("versions.json", VersionsFile{
		RunID:     s.runID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Runtimes:  runtimes,
	})
}

// SystemInfo describes the host a session ran on.
type SystemInfo struct {
	RunID     string `json:"run_id"`
	Timestamp string `json:"timestamp"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	CPUCores  int    `json:"cpu_cores"`
	GoVersion string `json:"go_version"`
	Hostname  string `json:"hostname"`
}

// SaveSystemInfo writes system_info.json and returns its path.
func (s *Store) SaveSystemInfo() (string, error) {
	hostname, _ := os.Hostname()

	return s.write("system_info.json", SystemInfo{
		RunID:     s.runID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		CPUCores:  runtime.NumCPU(),
		GoVersion: runtime.Version(),
		Hostname:  hostname,
	})
}

func (s *Store) write(name string, v any) (string, error) {
	path := filepath.Join(s.dir, name)

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", name, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	return path, nil
}

// sanitize turns a label or URL into a filename fragment.
func sanitize(s string) string {
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "https://")

	replacer := strings.NewReplacer(
		"/", "_", ":", "_", "?", "_", "&", "_", "=", "_", " ", "_",
	)

	return replacer.Replace(s)
}
