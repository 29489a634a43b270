package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/torosent/burstfire/internal/config"
	"github.com/torosent/burstfire/internal/httpclient"
	"github.com/torosent/burstfire/internal/metrics"
	"github.com/torosent/burstfire/internal/output"
	"github.com/torosent/burstfire/internal/runner"
	"github.com/torosent/burstfire/internal/server"
	"github.com/torosent/burstfire/internal/tracing"
)

const progressInterval = time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "[burstfire] tracing shutdown: %v\n", err)
		}
	}()

	if cfg.Serve {
		return runServer(ctx, cfg, provider)
	}
	return runBatchCommand(ctx, cfg, provider)
}

// runBatchCommand executes a single batch and prints its report.
func runBatchCommand(ctx context.Context, cfg *config.Config, provider *tracing.Provider) error {
	builder, err := httpclient.NewRequestBuilder(cfg.TargetURL, cfg.Method, cfg.Headers, []byte(cfg.Body))
	if err != nil {
		return err
	}

	client := httpclient.NewClient(cfg.Timeout)
	collector := metrics.NewCollector()
	requester := httpclient.NewRequester(client, builder, collector, provider)

	var onOutcome func(runner.Outcome)
	if cfg.LogErrors {
		onOutcome = func(o runner.Outcome) {
			if !o.Success {
				fmt.Fprintf(os.Stderr, "[burstfire] request %d failed: %s\n", o.Sequence, o.Error)
			}
		}
	}

	r := runner.New(runner.Options{
		Concurrency:   cfg.Concurrency,
		Requests:      cfg.Requests,
		RatePerSecond: cfg.Rate,
		Requester:     requester,
		OnOutcome:     onOutcome,
	})

	var progress *output.ProgressReporter
	if !cfg.JSONOutput {
		progress = output.NewProgressReporter(collector, progressInterval, os.Stdout)
		progress.Start()
	}

	// Mark the actual start time in the collector so the progress line's RPS
	// reflects the moment the batch began, not process startup.
	collector.Start()
	result, err := r.Run(ctx)
	if progress != nil {
		progress.Stop()
		fmt.Fprintln(os.Stdout)
	}
	if err != nil {
		return err
	}

	result.Summary.TargetURL = cfg.TargetURL
	stats := collector.Stats(result.Summary.TotalDuration)
	report := output.Report{Summary: result.Summary, Latency: &stats}

	if cfg.JSONOutput {
		if err := output.PrintJSONReport(os.Stdout, report); err != nil {
			return err
		}
	} else {
		output.PrintReport(os.Stdout, report)
	}

	if cfg.OutputFile != "" {
		if err := output.WriteJSONReport(cfg.OutputFile, report); err != nil {
			return err
		}
	}

	// Failed requests are data in the report, not a command failure.
	return nil
}

// runServer exposes batches over HTTP until interrupted.
func runServer(ctx context.Context, cfg *config.Config, provider *tracing.Provider) error {
	batch := func(ctx context.Context, target string, requests, concurrency int) (runner.Result, error) {
		builder, err := httpclient.NewRequestBuilder(target, cfg.Method, cfg.Headers, []byte(cfg.Body))
		if err != nil {
			return runner.Result{}, fmt.Errorf("%w: %v", runner.ErrInvalidOptions, err)
		}

		client := httpclient.NewClient(cfg.Timeout)
		requester := httpclient.NewRequester(client, builder, nil, provider)

		r := runner.New(runner.Options{
			Concurrency:   concurrency,
			Requests:      requests,
			RatePerSecond: cfg.Rate,
			Requester:     requester,
		})
		return r.Run(ctx)
	}

	srv := server.New(cfg.Listen, batch, cfg.TargetURL, cfg.Requests, cfg.Concurrency)
	fmt.Fprintf(os.Stderr, "[burstfire] listening on %s\n", cfg.Listen)
	return srv.ListenAndServe(ctx)
}
