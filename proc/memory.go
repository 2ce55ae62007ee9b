package proc

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// MemoryStats summarizes resident-set-size samples of one monitored
// process. Values are kilobytes as reported by the kernel.
type MemoryStats struct {
	BaselineKB int64 `json:"baseline_kb"`
	PeakKB     int64 `json:"peak_kb"`
	AvgKB      int64 `json:"avg_kb"`
	Samples    int   `json:"samples"`
}

// Pid returns the process id, or 0 before the process has started.
func (p *Process) Pid() int {
	if p.cmd.Process == nil {
		return 0
	}

	return p.cmd.Process.Pid
}

// RSSKB reads the process's current resident set size from procfs.
func (p *Process) RSSKB() (int64, error) {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/status", p.Pid()))
	if err != nil {
		return 0, fmt.Errorf("read status of pid %d: %w", p.Pid(), err)
	}

	kb, ok := parseVmRSS(data)
	if !ok {
		return 0, fmt.Errorf("pid %d: no VmRSS line in status", p.Pid())
	}

	return kb, nil
}

// parseVmRSS extracts the VmRSS value in kB from a procfs status file.
func parseVmRSS(status []byte) (int64, bool) {
	for _, line := range strings.Split(string(status), "\n") {
		if !strings.HasPrefix(line, "VmRSS:") {
			continue
		}

		fields := strings.Fields(strings.TrimPrefix(line, "VmRSS:"))
		if len(fields) == 0 {
			return 0, false
		}

		kb, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return 0, false
		}

		return kb, true
	}

	return 0, false
}

// MemoryMonitor samples a process's resident set on a fixed interval
// until stopped. Single use: Stop may be called once.
type MemoryMonitor struct {
	stop    chan struct{}
	done    chan struct{}
	samples []int64
}

// MonitorMemory starts background sampling every interval. The first
// sample is taken immediately and becomes the baseline. Reads that fail
// (the process exited, no procfs) are skipped, not fatal.
func (p *Process) MonitorMemory(interval time.Duration) *MemoryMonitor {
	m := &MemoryMonitor{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	go func() {
		defer close(m.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			if kb, err := p.RSSKB(); err == nil {
				m.samples = append(m.samples, kb)
			}

			select {
			case <-m.stop:
				return
			case <-ticker.C:
			}
		}
	}()

	return m
}

// Stop halts sampling and reduces the samples collected so far. A
// monitor that never managed a successful read returns zero stats.
func (m *MemoryMonitor) Stop() MemoryStats {
	close(m.stop)
	<-m.done

	return memoryStatsFrom(m.samples)
}

func memoryStatsFrom(samples []int64) MemoryStats {
	if len(samples) == 0 {
		return MemoryStats{}
	}

	stats := MemoryStats{
		BaselineKB: samples[0],
		Samples:    len(samples),
	}

	var total int64
	for _, kb := range samples {
		total += kb
		if kb > stats.PeakKB {
			stats.PeakKB = kb
		}
	}

	stats.AvgKB = total / int64(len(samples))

	return stats
}
