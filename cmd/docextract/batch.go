package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/docfields/constants"
	"github.com/joseph-ayodele/docfields/internal/ingest"
	"github.com/joseph-ayodele/docfields/internal/pipeline"
)

type batchOptions struct {
	outDir     string
	xlsxPath   string
	workers    int
	skipHidden bool
}

func newBatchCmd(root *rootOptions) *cobra.Command {
	opts := &batchOptions{}
	cmd := &cobra.Command{
		Use:   "batch [directory]",
		Short: "Extract every PDF and image under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, root, opts, args[0])
		},
	}
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", "", "directory for per-file JSON results (required)")
	cmd.Flags().StringVar(&opts.xlsxPath, "xlsx", "", "write a summary workbook of all documents")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "concurrent documents (default from config)")
	cmd.Flags().BoolVar(&opts.skipHidden, "skip-hidden", true, "skip dot files and directories")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func runBatch(cmd *cobra.Command, root *rootOptions, opts *batchOptions, dir string) error {
	cfg, eng, logger, err := root.setup(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	paths, stats, err := ingest.Discover(dir, opts.skipHidden)
	if err != nil {
		return err
	}
	logger.Info("batch.discovered", "dir", dir, "scanned", stats.Scanned, "matched", stats.Matched)
	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return err
	}

	workers := opts.workers
	if workers <= 0 {
		workers = cfg.Queue.Workers
	}

	var (
		mu        sync.Mutex
		responses = make([]pipeline.Response, len(paths))
		failed    int
	)
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			image := constants.MapExtToFormat(constants.NormalizeExt(filepath.Ext(path))) == constants.IMAGE
			resp, err := extractFile(ctx, eng.Processor, path, image, cfg.Server.MaxUploadBytes, cfg.Queue.Timeout)
			if err != nil {
				if ctx.Err() != nil {
					return err
				}
				logger.Error("batch.failed", "path", path, "error", err)
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			out, err := writeResult(opts.outDir, resp)
			if err != nil {
				return err
			}
			logger.Info("batch.done", "path", path, "status", resp.Status, "out", out)
			mu.Lock()
			responses[i] = resp
			if resp.Status != constants.StatusSuccess {
				failed++
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if opts.xlsxPath != "" {
		done := responses[:0]
		for _, r := range responses {
			if r.Filename != "" {
				done = append(done, r)
			}
		}
		data, err := eng.Exporter.BatchXLSX(done)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.xlsxPath, data, 0o644); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "processed %d documents, %d failed\n", len(paths), failed)
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d documents", errExtractionFailed, failed, len(paths))
	}
	return nil
}
