package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/docfields/constants"
	"github.com/joseph-ayodele/docfields/internal/common"
	"github.com/joseph-ayodele/docfields/internal/ingest"
	"github.com/joseph-ayodele/docfields/internal/pipeline"
)

var errExtractionFailed = errors.New("extraction failed")

func newExtractCmd(root *rootOptions) *cobra.Command {
	var xlsxPath string
	cmd := &cobra.Command{
		Use:   "extract [file.pdf...]",
		Short: "Extract fields and tables from PDF files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, root, args, false, xlsxPath)
		},
	}
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also write an XLSX workbook (single file only)")
	return cmd
}

func newImageCmd(root *rootOptions) *cobra.Command {
	var xlsxPath string
	cmd := &cobra.Command{
		Use:   "image [photo...]",
		Short: "Extract tables from photographed pages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, root, args, true, xlsxPath)
		},
	}
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also write an XLSX workbook (single file only)")
	return cmd
}

func runExtract(cmd *cobra.Command, root *rootOptions, args []string, image bool, xlsxPath string) error {
	if xlsxPath != "" && len(args) != 1 {
		return errors.New("--xlsx needs exactly one input file")
	}
	cfg, eng, logger, err := root.setup(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	failed := 0
	for _, path := range args {
		resp, err := extractFile(cmd.Context(), eng.Processor, path, image, cfg.Server.MaxUploadBytes, cfg.Server.RequestTimeout)
		if err != nil {
			logger.Error("extract failed", "path", path, "error", err)
			failed++
			continue
		}
		if resp.Status != constants.StatusSuccess {
			failed++
		}
		if err := writeJSON(cmd.OutOrStdout(), resp); err != nil {
			return err
		}
		if xlsxPath != "" {
			data, err := eng.Exporter.ResponseXLSX(resp)
			if err != nil {
				return err
			}
			if err := os.WriteFile(xlsxPath, data, 0o644); err != nil {
				return err
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d documents", errExtractionFailed, failed, len(args))
	}
	return nil
}

// extractFile runs one file through the processor. Only read failures and
// cancellation are errors; content failures come back as an error envelope.
func extractFile(ctx context.Context, proc *pipeline.Processor, path string, image bool, maxBytes int, timeout time.Duration) (pipeline.Response, error) {
	data, err := ingest.ReadFile(path, maxBytes)
	if err != nil {
		return pipeline.Response{}, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := common.WithTimeout(ctx, timeout)
	defer cancel()

	doc := pipeline.Document{Filename: filepath.Base(path), Data: data, RequestID: uuid.NewString()}
	var out *pipeline.Outcome
	if image {
		out, err = proc.ProcessImage(ctx, doc)
	} else {
		out, err = proc.Process(ctx, doc)
	}
	if err != nil && common.IsCanceled(err) {
		return pipeline.Response{}, err
	}
	return pipeline.NewResponse(doc, out, err), nil
}
