package proc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"
)

func TestParseVmRSS(t *testing.T) {
	status := "Name:\tsleep\nVmPeak:\t     708 kB\nVmRSS:\t     612 kB\nThreads:\t1\n"

	kb, ok := parseVmRSS([]byte(status))
	if !ok {
		t.Fatal("expected VmRSS to parse")
	}
	if kb != 612 {
		t.Errorf("VmRSS = %d, want 612", kb)
	}

	if _, ok := parseVmRSS([]byte("Name:\tsleep\nThreads:\t1\n")); ok {
		t.Error("expected no VmRSS in status without the line")
	}
	if _, ok := parseVmRSS([]byte("VmRSS:\tgarbage kB\n")); ok {
		t.Error("expected unparsable VmRSS to be rejected")
	}
}

func TestMemoryStatsFromSamples(t *testing.T) {
	stats := memoryStatsFrom([]int64{100, 300, 200})

	if stats.BaselineKB != 100 {
		t.Errorf("baseline = %d, want 100", stats.BaselineKB)
	}
	if stats.PeakKB != 300 {
		t.Errorf("peak = %d, want 300", stats.PeakKB)
	}
	if stats.AvgKB != 200 {
		t.Errorf("avg = %d, want 200", stats.AvgKB)
	}
	if stats.Samples != 3 {
		t.Errorf("samples = %d, want 3", stats.Samples)
	}

	empty := memoryStatsFrom(nil)
	if empty != (MemoryStats{}) {
		t.Errorf("empty samples = %+v, want zero stats", empty)
	}
}

func TestMonitorMemoryLiveProcess(t *testing.T) {
	if _, err := os.Stat("/proc/self/status"); err != nil {
		t.Skip("procfs not available")
	}

	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		},
	))
	defer srv.Close()

	s := NewServer("sleeper", []string{"sleep", "30"}, nil, nil)

	p, _, err := s.Start(context.Background(), srv.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer func() { _ = p.Stop() }()

	mon := p.MonitorMemory(10 * time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	stats := mon.Stop()

	if stats.Samples == 0 {
		t.Fatal("expected at least one memory sample")
	}
	if stats.BaselineKB <= 0 {
		t.Errorf("baseline = %d, want > 0", stats.BaselineKB)
	}
	if stats.PeakKB < stats.BaselineKB {
		t.Errorf("peak %d < baseline %d", stats.PeakKB, stats.BaselineKB)
	}
	if stats.AvgKB <= 0 {
		t.Errorf("avg = %d, want > 0", stats.AvgKB)
	}
}

func TestVersionFirstLine(t *testing.T) {
	v, err := Version(context.Background(), []string{"sh", "-c", "echo v1.2.3; echo extra"})
	if err != nil {
		t.Fatalf("Version failed: %v", err)
	}
	if v != "v1.2.3" {
		t.Errorf("version = %q, want v1.2.3", v)
	}
}

func TestVersionEmptyCommand(t *testing.T) {
	if _, err := Version(context.Background(), nil); err == nil {
		t.Error("expected error for empty command")
	}
}

func TestVersionFailingCommand(t *testing.T) {
	if _, err := Version(context.Background(), []string{"/nonexistent/binary-xyz"}); err == nil {
		t.Error("expected error for unknown binary")
	}
}
