// Package httpload is the load-generation wrapper for HTTP benchmarks:
// a fixed request count at bounded concurrency, with per-request
// latencies reduced by the engine's statistics.
package httpload

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mlow/benchoor/engine"
)

// Config parameterizes one load run.
type Config struct {
	URL         string
	Requests    int
	Concurrency int
	Timeout     time.Duration
}

// Result is the durable output of one load run.
type Result struct {
	Endpoint          string         `json:"endpoint"`
	Requests          int            `json:"requests"`
	Concurrency       int            `json:"concurrency"`
	Failures          int            `json:"failures"`
	WallMs            float64        `json:"wall_ms"`
	RequestsPerSecond float64        `json:"requests_per_second"`
	Latency           engine.Summary `json:"latency"`
}

// Run issues cfg.Requests GET requests against cfg.URL with at most
// cfg.Concurrency in flight. Failed requests count toward Failures and
// contribute no latency sample; the run itself only errors on a
// malformed configuration.
func Run(ctx context.Context, cfg Config, logger *slog.Logger) (Result, error) {
	if cfg.URL == "" {
		return Result{}, fmt.Errorf("load run: url must not be empty")
	}

	if cfg.Requests <= 0 {
		return Result{}, fmt.Errorf("load run: requests must be positive, got %d", cfg.Requests)
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	if logger == nil {
		logger = slog.Default()
	}

	client := &http.Client{Timeout: cfg.Timeout}

	// One slot per request; failures leave a negative marker so no
	// locking is needed around the sample slice.
	latencies := make([]float64, cfg.Requests)

	var failures atomic.Int64

	logger.Info("starting load run",
		slog.String("url", cfg.URL),
		slog.Int("requests", cfg.Requests),
		slog.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	wallStart := time.Now()

	for i := 0; i < cfg.Requests; i++ {
		i := i
		g.Go(func() error {
			ms, err := timedGet(gctx, client, cfg.URL)
			if err != nil {
				failures.Add(1)
				latencies[i] = -1

				return nil
			}

			latencies[i] = ms

			return nil
		})
	}

	// Workers swallow request errors, so Wait only propagates context
	// cancellation.
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	wallMs := float64(time.Since(wallStart).Nanoseconds()) / 1e6

	ok := make([]float64, 0, cfg.Requests)
	for _, ms := range latencies {
		if ms >= 0 {
			ok = append(ok, ms)
		}
	}

	res := Result{
		Endpoint:    cfg.URL,
		Requests:    cfg.Requests,
		Concurrency: concurrency,
		Failures:    int(failures.Load()),
		WallMs:      wallMs,
		Latency:     engine.Summarize(ok),
	}

	if wallMs > 0 {
		res.RequestsPerSecond = float64(len(ok)) / (wallMs / 1000)
	}

	logger.Info("load run finished",
		slog.Float64("wall_ms", wallMs),
		slog.Int("failures", res.Failures),
		slog.Float64("requests_per_second", res.RequestsPerSecond),
	)

	return res, nil
}

func timedGet(ctx context.Context, client *http.Client, url string) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	start := time.Now()

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return 0, err
	}

	elapsed := float64(time.Since(start).Nanoseconds()) / 1e6

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("status %d", resp.StatusCode)
	}

	return elapsed, nil
}
