package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/docfields/internal/common"
	"github.com/joseph-ayodele/docfields/internal/engine"
	"github.com/joseph-ayodele/docfields/internal/metrics"
	"github.com/joseph-ayodele/docfields/internal/pipeline"
)

type rootOptions struct {
	configPath string
	policy     string
	strategy   string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "docextract",
		Short: "Extract invoice fields and tables from documents",
		Long: `Extract structured invoice data (supplier, buyer, payment details,
line items, totals) from PDFs and photographed pages.

Text-layer PDFs are read directly; scanned pages go through table
segmentation and per-cell OCR.

Examples:
  docextract extract invoice.pdf
  docextract image photo.jpg --policy image-only
  docextract batch ./inbox --out ./results --xlsx summary.xlsx
  docextract watch ./inbox --out ./results`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (yaml, json or toml)")
	root.PersistentFlags().StringVar(&opts.policy, "policy", "", "text-first, image-only or supplement (overrides config)")
	root.PersistentFlags().StringVar(&opts.strategy, "strategy", "", "structural or edges (overrides config)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error (overrides config)")

	root.AddCommand(newExtractCmd(opts), newImageCmd(opts), newBatchCmd(opts), newWatchCmd(opts))
	return root
}

// setup loads the configuration, applies flag overrides and builds the engine.
func (o *rootOptions) setup(stderr io.Writer) (*common.Config, *engine.Engine, *slog.Logger, error) {
	cfg, err := common.LoadConfig(o.configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if o.policy != "" {
		cfg.Pipeline.Policy = o.policy
	}
	if o.strategy != "" {
		cfg.Pipeline.Strategy = o.strategy
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}
	// logs go to stderr so stdout carries only results
	logger := common.NewLogger(stderr, cfg.Log)
	slog.SetDefault(logger)

	eng, err := engine.Build(cfg, metrics.New(), logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, eng, logger, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// writeResult writes resp as <name>.json into dir.
func writeResult(dir string, resp pipeline.Response) (string, error) {
	name := strings.TrimSuffix(resp.Filename, filepath.Ext(resp.Filename))
	if name == "" {
		name = resp.RequestID
	}
	path := filepath.Join(dir, name+".json")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := writeJSON(f, resp); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, f.Close()
}
