// Package main provides the CLI entry point for benchoor, an adaptive
// runtime benchmarking tool.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/mlow/benchoor/catalogue"
	"github.com/mlow/benchoor/config"
	"github.com/mlow/benchoor/engine"
	"github.com/mlow/benchoor/httpload"
	"github.com/mlow/benchoor/interp"
	"github.com/mlow/benchoor/proc"
	"github.com/mlow/benchoor/report"
	"github.com/mlow/benchoor/store"
)

const memorySampleInterval = 100 * time.Millisecond

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	root := newRootCmd(logger)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "benchoor",
		Short: "Adaptive runtime benchmarking tool",
		Long: `Benchoor measures microbenchmarks with clock-resolution-aware batch
calibration, drives HTTP load against a spawned server, and records
cold-start times, persisting everything as comparable JSON result files.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd(logger))
	root.AddCommand(newReportCmd())

	return root
}

func newRunCmd(logger *slog.Logger) *cobra.Command {
	var (
		configPath string
		benchmarks []string
		profile    string
		runtimeTag string
		resultsDir string
		skipHTTP   bool
		skipCold   bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run benchmarks and persist results",
		Long: `Run the configured microbenchmarks through the measurement engine,
then optionally spawn the configured server for HTTP load and cold-start
benchmarks. Flags override config file values.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Default()

			if configPath != "" {
				var err error

				cfg, err = config.Load(configPath)
				if err != nil {
					return err
				}
			}

			if len(benchmarks) > 0 {
				cfg.Benchmarks = benchmarks
			}

			if cmd.Flags().Changed("profile") {
				cfg.Profile = profile
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			if cmd.Flags().Changed("runtime") {
				cfg.Runtime = runtimeTag
			}

			if skipHTTP {
				cfg.HTTP.URL = ""
			}

			if skipCold {
				cfg.Server.ColdStarts = 0
			}

			return runBenchmarks(cmd.Context(), logger, cfg, resultsDir)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "",
		"Path to YAML configuration file")
	flags.StringSliceVar(&benchmarks, "benchmarks", nil,
		"Benchmarks to run (default: all registered)")
	flags.StringVar(&profile, "profile", "",
		"Calibration profile: native or constrained")
	flags.StringVar(&runtimeTag, "runtime", "",
		"Runtime label stamped into result files")
	flags.StringVar(&resultsDir, "results-dir", "results",
		"Directory for result files")
	flags.BoolVar(&skipHTTP, "skip-http", false,
		"Skip the HTTP load benchmark")
	flags.BoolVar(&skipCold, "skip-coldstart", false,
		"Skip the cold-start benchmark")

	return cmd
}

func runBenchmarks(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.Config,
	resultsDir string,
) error {
	st, err := store.New(resultsDir)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting benchmark session",
		slog.String("run_id", st.RunID()),
		slog.String("runtime", cfg.Runtime),
		slog.String("profile", cfg.EngineProfile().String()),
		slog.String("results_dir", st.Dir()),
	)

	if _, err := st.SaveSystemInfo(); err != nil {
		return err
	}

	if err := saveVersions(ctx, logger, cfg, st); err != nil {
		return err
	}

	if err := runMicrobench(ctx, logger, cfg, st); err != nil {
		return err
	}

	if err := runServerBenchmarks(ctx, logger, cfg, st); err != nil {
		return err
	}

	logger.InfoContext(ctx, "benchmark session complete",
		slog.String("results_dir", st.Dir()),
	)

	return nil
}

// saveVersions records the version strings of the runtimes under test:
// the host toolchain always, plus the configured runtime's own version
// command when one is set.
func saveVersions(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.Config,
	st *store.Store,
) error {
	versions := map[string]string{"go": runtime.Version()}

	if len(cfg.Server.VersionCommand) > 0 {
		v, err := proc.Version(ctx, cfg.Server.VersionCommand)
		if err != nil {
			logger.WarnContext(ctx, "version command failed",
				slog.Any("error", err),
			)
		} else {
			versions[cfg.Runtime] = v
		}
	}

	_, err := st.SaveVersions(versions)

	return err
}

func runMicrobench(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.Config,
	st *store.Store,
) error {
	profile := cfg.EngineProfile()
	eng := engine.New(profile, cfg.EngineOptions(), logger)
	cat := catalogue.New()

	// The constrained profile measures interpreted benchmark sources
	// instead of the compiled implementations.
	var resolve catalogue.Resolver
	if profile == engine.ProfileConstrained {
		resolve = interp.Resolver()
	}

	logger.InfoContext(ctx, "running microbenchmarks",
		slog.Int("available", len(cat.Names())),
		slog.Int("selected", len(cfg.Benchmarks)),
	)

	results, err := catalogue.RunAll(eng, cat, cfg.Benchmarks, cfg.EngineOptions(), resolve)
	if err != nil {
		return fmt.Errorf("microbenchmarks: %w", err)
	}

	path, err := st.SaveMicrobench(cfg.Runtime, profile.String(), results)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "microbenchmark results saved",
		slog.String("path", path),
	)

	return nil
}

func runServerBenchmarks(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.Config,
	st *store.Store,
) error {
	wantHTTP := cfg.HTTP.URL != ""
	wantCold := cfg.Server.ColdStarts > 0

	if !wantHTTP && !wantCold {
		return nil
	}

	if len(cfg.Server.Command) == 0 {
		logger.WarnContext(ctx,
			"http/cold-start benchmarks configured but server.command is empty, skipping")

		return nil
	}

	srv := proc.NewServer(cfg.Runtime, cfg.Server.Command, cfg.Server.Env, logger)

	readyURL := cfg.Server.ReadyURL
	if readyURL == "" {
		readyURL = cfg.HTTP.URL
	}

	if wantHTTP {
		p, _, err := srv.Start(ctx, readyURL, cfg.Server.ReadyTimeout())
		if err != nil {
			return fmt.Errorf("http benchmark: %w", err)
		}

		// Sample the server's resident set while it handles the load.
		mon := p.MonitorMemory(memorySampleInterval)

		res, err := httpload.Run(ctx, httpload.Config{
			URL:         cfg.HTTP.URL,
			Requests:    cfg.HTTP.Requests,
			Concurrency: cfg.HTTP.Concurrency,
			Timeout:     cfg.HTTP.Timeout(),
		}, logger)

		memStats := mon.Stop()

		if stopErr := p.Stop(); stopErr != nil {
			logger.WarnContext(ctx, "stopping server failed",
				slog.Any("error", stopErr),
			)
		}

		if err != nil {
			return fmt.Errorf("http benchmark: %w", err)
		}

		path, err := st.SaveHTTP(cfg.Runtime, res)
		if err != nil {
			return err
		}

		logger.InfoContext(ctx, "http results saved",
			slog.String("path", path),
			slog.Float64("requests_per_second", res.RequestsPerSecond),
		)

		if memStats.Samples > 0 {
			memPath, err := st.SaveMemory(cfg.Runtime, memStats)
			if err != nil {
				return err
			}

			logger.InfoContext(ctx, "memory results saved",
				slog.String("path", memPath),
				slog.Int64("peak_kb", memStats.PeakKB),
			)
		}
	}

	if wantCold {
		samples, err := srv.MeasureColdStarts(
			ctx, readyURL, cfg.Server.ReadyTimeout(), cfg.Server.ColdStarts,
		)
		if err != nil {
			return fmt.Errorf("cold-start benchmark: %w", err)
		}

		path, err := st.SaveColdStart(cfg.Runtime, samples)
		if err != nil {
			return err
		}

		logger.InfoContext(ctx, "cold-start results saved",
			slog.String("path", path),
			slog.Int("runs", len(samples)),
		)
	}

	return nil
}

func newReportCmd() *cobra.Command {
	var (
		resultsDir string
		outputJSON bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render persisted results as a markdown report",
		RunE: func(_ *cobra.Command, _ []string) error {
			session, err := store.Load(resultsDir)
			if err != nil {
				return err
			}

			if outputJSON {
				return report.GenerateJSON(os.Stdout, session)
			}

			return report.Generate(os.Stdout, session)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&resultsDir, "results-dir", "results",
		"Directory holding result files")
	flags.BoolVar(&outputJSON, "json", false,
		"Output the raw session as JSON instead of markdown")

	return cmd
}
