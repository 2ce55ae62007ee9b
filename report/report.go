// Package report formats persisted benchmark sessions into markdown
// comparison tables or raw JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/mlow/benchoor/store"
)

// Generate writes a markdown report for the given session.
func Generate(w io.Writer, session *store.Session) error {
	if len(session.Microbench) == 0 &&
		len(session.HTTP) == 0 &&
		len(session.ColdStart) == 0 &&
		len(session.Memory) == 0 {
		return fmt.Errorf("no results to report")
	}

	fmt.Fprintln(w, "# Benchmark Results")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "**Generated:** %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintln(w)

	writeSystemInfo(w, session.System)
	writeVersions(w, session.Versions)
	writeMicrobench(w, session.Microbench)
	writeHTTP(w, session.HTTP)
	writeColdStart(w, session.ColdStart)
	writeMemory(w, session.Memory)

	return nil
}

// GenerateJSON writes the whole session as JSON to w.
func GenerateJSON(w io.Writer, session *store.Session) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(session)
}

func writeSystemInfo(w io.Writer, info *store.SystemInfo) {
	if info == nil {
		return
	}

	fmt.Fprintln(w, "## System Information")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "- **OS:** %s/%s\n", info.OS, info.Arch)
	fmt.Fprintf(w, "- **Cores:** %d\n", info.CPUCores)
	fmt.Fprintf(w, "- **Go:** %s\n", info.GoVersion)
	fmt.Fprintf(w, "- **Host:** %s\n", info.Hostname)
	fmt.Fprintln(w)
}

func writeVersions(w io.Writer, versions *store.VersionsFile) {
	if versions == nil || len(versions.Runtimes) == 0 {
		return
	}

	fmt.Fprintln(w, "### Runtime Versions")
	fmt.Fprintln(w)

	names := lo.Keys(versions.Runtimes)
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(w, "- **%s:** %s\n", name, versions.Runtimes[name])
	}

	fmt.Fprintln(w)
}

func writeMicrobench(w io.Writer, files []store.MicrobenchFile) {
	if len(files) == 0 {
		return
	}

	fmt.Fprintln(w, "## Microbenchmark Results")
	fmt.Fprintln(w)

	for _, f := range files {
		fmt.Fprintf(w, "### %s (%s profile)\n", f.Runtime, f.Profile)
		fmt.Fprintln(w)

		if f.Profile == "constrained" {
			fmt.Fprintln(w, "Median and p95 are approximations on this "+
				"profile (median = mean, p95 = max); do not compare them "+
				"like-for-like with full-profile percentiles.")
			fmt.Fprintln(w)
		}

		fmt.Fprintln(w, "| Benchmark | Ops/sec | ns/op "+
			"| Mean | Median | p95 | Batch | Clock |")
		fmt.Fprintln(w, "|-----------|---------|-------"+
			"|------|--------|-----|-------|-------|")

		names := lo.Keys(f.Benchmarks)
		sort.Strings(names)

		for _, name := range names {
			r := f.Benchmarks[name]

			if r.Error != "" {
				fmt.Fprintf(w, "| %s | ERROR: %s | | | | | | |\n", name, r.Error)
				continue
			}

			label := name
			if r.ThinSample {
				label += " †"
			}

			fmt.Fprintf(w, "| %s | %s | %.1f | %s | %s | %s | %d | %s |\n",
				label,
				formatOps(r.OpsPerSec),
				r.NsPerOp,
				formatMs(r.MeanMs),
				formatMs(r.MedianMs),
				formatMs(r.P95Ms),
				r.BatchSize,
				r.ClockSource,
			)
		}

		fmt.Fprintln(w)

		if lo.SomeBy(names, func(name string) bool {
			return f.Benchmarks[name].ThinSample
		}) {
			fmt.Fprintln(w, "† thin sample: fewer than 20 measured "+
				"iterations after budget capping, p95 is statistically weak.")
			fmt.Fprintln(w)
		}
	}
}

func writeHTTP(w io.Writer, files []store.HTTPFile) {
	if len(files) == 0 {
		return
	}

	fmt.Fprintln(w, "## HTTP Benchmark Results")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| Runtime | Endpoint | RPS | p95 Latency | Failures |")
	fmt.Fprintln(w, "|---------|----------|-----|-------------|----------|")

	for _, f := range files {
		fmt.Fprintf(w, "| %s | %s | %.0f | %s | %d |\n",
			f.Runtime,
			f.Endpoint,
			f.Metrics.RequestsPerSecond,
			formatMs(f.Metrics.Latency.P95Ms),
			f.Metrics.Failures,
		)
	}

	fmt.Fprintln(w)
}

func writeColdStart(w io.Writer, files []store.ColdStartFile) {
	if len(files) == 0 {
		return
	}

	fmt.Fprintln(w, "## Cold Start Results")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| Runtime | Runs | Mean | Median | Min | Max |")
	fmt.Fprintln(w, "|---------|------|------|--------|-----|-----|")

	fastest := findFastestColdStart(files)

	for _, f := range files {
		label := f.Runtime
		if len(files) > 1 && f.Summary.MeanMs == fastest && fastest > 0 {
			label += " (fastest)"
		}

		fmt.Fprintf(w, "| %s | %d | %s | %s | %s | %s |\n",
			label,
			f.Runs,
			formatMs(f.Summary.MeanMs),
			formatMs(f.Summary.MedianMs),
			formatMs(f.Summary.MinMs),
			formatMs(f.Summary.MaxMs),
		)
	}

	fmt.Fprintln(w)
}

func writeMemory(w io.Writer, files []store.MemoryFile) {
	if len(files) == 0 {
		return
	}

	fmt.Fprintln(w, "## Memory Usage")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| Runtime | Baseline | Peak | Avg |")
	fmt.Fprintln(w, "|---------|----------|------|-----|")

	for _, f := range files {
		fmt.Fprintf(w, "| %s | %d KB | %d KB | %d KB |\n",
			f.Runtime,
			f.Metrics.BaselineKB,
			f.Metrics.PeakKB,
			f.Metrics.AvgKB,
		)
	}

	fmt.Fprintln(w)
}

func findFastestColdStart(files []store.ColdStartFile) float64 {
	means := lo.FilterMap(files, func(f store.ColdStartFile, _ int) (float64, bool) {
		return f.Summary.MeanMs, f.Summary.MeanMs > 0
	})

	if len(means) == 0 {
		return 0
	}

	return lo.Min(means)
}

// formatMs renders a millisecond value with a unit suited to its
// magnitude.
func formatMs(ms float64) string {
	switch {
	case ms <= 0:
		return "0ms"
	case ms < 0.001:
		return fmt.Sprintf("%.0fns", ms*1e6)
	case ms < 1:
		return fmt.Sprintf("%.2fµs", ms*1000)
	case ms < 1000:
		return fmt.Sprintf("%.2fms", ms)
	default:
		return fmt.Sprintf("%.2fs", ms/1000)
	}
}

func formatOps(ops float64) string {
	switch {
	case ops >= 1e6:
		return fmt.Sprintf("%.2fM", ops/1e6)
	case ops >= 1e3:
		return fmt.Sprintf("%.1fk", ops/1e3)
	default:
		return fmt.Sprintf("%.1f", ops)
	}
}
