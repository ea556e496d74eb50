package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/docfields/internal/async"
	"github.com/joseph-ayodele/docfields/internal/ingest"
)

type watchOptions struct {
	outDir      string
	initialScan bool
	debounce    time.Duration
	skipHidden  bool
}

func newWatchCmd(root *rootOptions) *cobra.Command {
	opts := &watchOptions{}
	cmd := &cobra.Command{
		Use:   "watch [directory...]",
		Short: "Watch directories and extract documents as they arrive",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, root, opts, args)
		},
	}
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", "", "directory for per-file JSON results (required)")
	cmd.Flags().BoolVar(&opts.initialScan, "initial-scan", true, "process files already present")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", 500*time.Millisecond, "wait for writes to settle")
	cmd.Flags().BoolVar(&opts.skipHidden, "skip-hidden", true, "skip dot files and directories")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func runWatch(cmd *cobra.Command, root *rootOptions, opts *watchOptions, roots []string) error {
	cfg, eng, logger, err := root.setup(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	queue := async.NewProcessorQueue(eng.Processor, logger,
		async.WithWorkers(cfg.Queue.Workers),
		async.WithQueueSize(cfg.Queue.Size),
		async.WithProcessTimeout(cfg.Queue.Timeout),
		async.WithResultHandler(func(r async.Result) {
			if r.Err != nil {
				logger.Error("watch.failed", "job_id", r.Job.ID, "file", r.Job.Document.Filename, "error", r.Err)
				return
			}
			out, err := writeResult(opts.outDir, r.Response)
			if err != nil {
				logger.Error("watch.write_failed", "job_id", r.Job.ID, "error", err)
				return
			}
			logger.Info("watch.done", "job_id", r.Job.ID, "status", r.Response.Status, "out", out, "duration", r.Duration)
		}),
	)

	ing := ingest.NewIngestor(queue, cfg.Server.MaxUploadBytes, logger)
	logger.Info("watching", "roots", roots)
	err = ing.Watch(ctx, ingest.WatchConfig{
		Roots:       roots,
		InitialScan: opts.initialScan,
		Debounce:    opts.debounce,
		SkipHidden:  opts.skipHidden,
	})

	drainCtx, cancel := context.WithTimeout(context.Background(), cfg.Queue.Timeout)
	defer cancel()
	queue.Shutdown(drainCtx)

	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
