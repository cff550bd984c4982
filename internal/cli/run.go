package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/opsdeck/watchdesk/internal/engine"
	"github.com/opsdeck/watchdesk/internal/ledger"
	"github.com/opsdeck/watchdesk/internal/metrics"
	"github.com/opsdeck/watchdesk/internal/policy"
	"github.com/opsdeck/watchdesk/internal/source"
)

type runOptions struct {
	root        *RootOptions
	dbPath      string
	policyPath  string
	interval    time.Duration
	poll        time.Duration
	metricsAddr string
}

func newRunCommand(root *RootOptions) *cobra.Command {
	opts := &runOptions{root: root}

	cmd := &cobra.Command{
		Use:   "run <facts-file>",
		Short: "Watch a facts file and evaluate alerts continuously",
		Long: `Run starts the evaluation loop: the facts file is polled for
changes, every change and every tick re-evaluates the full alert set,
and critical alerts are recorded in the escalation ledger.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.dbPath, "db", os.Getenv("WATCHDESK_DB"), "path to the escalation ledger database")
	cmd.Flags().StringVar(&opts.policyPath, "policy", "", "path to a CUE policy file (defaults apply when unset)")
	cmd.Flags().DurationVar(&opts.interval, "interval", engine.DefaultInterval, "re-evaluation tick interval")
	cmd.Flags().DurationVar(&opts.poll, "poll", source.DefaultPollInterval, "facts file poll interval")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "listen address for Prometheus metrics (disabled when empty)")

	return cmd
}

func runWatch(ctx context.Context, opts *runOptions, factsPath string) error {
	configureLogging(opts.root.Verbose)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	pol, err := loadPolicy(opts.policyPath)
	if err != nil {
		return NewExitError(ExitCommandError, err)
	}

	watchOpts := []engine.WatcherOption{engine.WithInterval(opts.interval)}

	if opts.dbPath != "" {
		led, err := ledger.Open(opts.dbPath)
		if err != nil {
			return NewExitError(ExitFailure, fmt.Errorf("opening ledger: %w", err))
		}
		defer led.Close()
		watchOpts = append(watchOpts, engine.WithLedger(led))
		slog.Info("escalation ledger enabled", "path", opts.dbPath)
	} else {
		slog.Warn("no ledger configured, critical alerts will not be recorded")
	}

	if opts.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		m := metrics.New(reg)
		watchOpts = append(watchOpts, engine.WithMetrics(m))
		go serveMetrics(ctx, opts.metricsAddr, reg)
	}

	eval := engine.NewEvaluator(pol, time.Local)
	src := source.NewFile(factsPath, opts.poll)
	watcher := engine.NewWatcher(src, eval, watchOpts...)

	slog.Info("starting watch loop", "facts", factsPath, "interval", opts.interval)
	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return NewExitError(ExitFailure, err)
	}
	slog.Info("shutting down")
	return nil
}

func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("metrics listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("metrics server failed", "error", err)
	}
}

func loadPolicy(path string) (policy.Policy, error) {
	if path == "" {
		return policy.Default(), nil
	}
	return policy.Load(path)
}

func configureLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
