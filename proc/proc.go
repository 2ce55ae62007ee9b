// Package proc manages server process lifecycles for HTTP and
// cold-start benchmarks: spawn, readiness polling, teardown.
package proc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"time"
)

const readyPollInterval = 10 * time.Millisecond

// Server describes a server binary to spawn. Env is appended to the
// inherited environment.
type Server struct {
	Name    string
	Command []string
	Env     []string
	Logger  *slog.Logger
}

// NewServer creates a Server runner for the named command.
func NewServer(name string, command, env []string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		Name:    name,
		Command: command,
		Env:     env,
		Logger:  logger.With(slog.String("server", name)),
	}
}

// Process is a running server spawned by Start.
type Process struct {
	cmd    *exec.Cmd
	stderr bytes.Buffer
}

// Start launches the server and polls readyURL until it answers with a
// 2xx status or timeout expires. It returns the running process and the
// cold-start duration in milliseconds (spawn to first successful
// response).
func (s *Server) Start(
	ctx context.Context,
	readyURL string,
	timeout time.Duration,
) (*Process, float64, error) {
	if len(s.Command) == 0 {
		return nil, 0, fmt.Errorf("server %s: empty command", s.Name)
	}

	cmd := exec.CommandContext(ctx, s.Command[0], s.Command[1:]...)
	if len(s.Env) > 0 {
		cmd.Env = append(os.Environ(), s.Env...)
	}

	p := &Process{cmd: cmd}
	cmd.Stderr = &p.stderr

	s.Logger.Info("starting server",
		slog.String("binary", s.Command[0]),
		slog.String("ready_url", readyURL),
	)

	start := time.Now()

	if err := cmd.Start(); err != nil {
		return nil, 0, fmt.Errorf("start %s: %w", s.Name, err)
	}

	client := &http.Client{Timeout: readyPollInterval * 10}
	deadline := start.Add(timeout)

	for {
		if ready(ctx, client, readyURL) {
			coldStartMs := float64(time.Since(start).Nanoseconds()) / 1e6

			s.Logger.Info("server ready",
				slog.Float64("cold_start_ms", coldStartMs),
			)

			return p, coldStartMs, nil
		}

		if ctx.Err() != nil || time.Now().After(deadline) {
			_ = p.Stop()

			return nil, 0, fmt.Errorf(
				"server %s not ready after %s\nstderr: %s",
				s.Name, timeout, p.stderr.String(),
			)
		}

		time.Sleep(readyPollInterval)
	}
}

// MeasureColdStarts runs the full spawn/ready/kill cycle runs times and
// returns the cold-start durations in milliseconds.
func (s *Server) MeasureColdStarts(
	ctx context.Context,
	readyURL string,
	timeout time.Duration,
	runs int,
) ([]float64, error) {
	samples := make([]float64, 0, runs)

	for i := 0; i < runs; i++ {
		p, coldStartMs, err := s.Start(ctx, readyURL, timeout)
		if err != nil {
			return nil, fmt.Errorf("cold start %d/%d: %w", i+1, runs, err)
		}

		samples = append(samples, coldStartMs)

		if err := p.Stop(); err != nil {
			return nil, fmt.Errorf("stop after cold start %d/%d: %w", i+1, runs, err)
		}
	}

	return samples, nil
}

// Stop kills the process and reaps it. A kill-induced exit status is
// not an error.
func (p *Process) Stop() error {
	if p.cmd.Process == nil {
		return nil
	}

	if err := p.cmd.Process.Kill(); err != nil && !processGone(err) {
		return fmt.Errorf("kill pid %d: %w", p.cmd.Process.Pid, err)
	}

	// Wait returns a non-nil error for the killed process; only reaping
	// matters here.
	_ = p.cmd.Wait()

	return nil
}

// Stderr returns what the process wrote to stderr so far.
func (p *Process) Stderr() string {
	return p.stderr.String()
}

func processGone(err error) bool {
	return errors.Is(err, os.ErrProcessDone)
}

func ready(ctx context.Context, client *http.Client, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}

	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
