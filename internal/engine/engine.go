// Package engine assembles the extraction engine from configuration.
package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/docfields/constants"
	"github.com/joseph-ayodele/docfields/internal/common"
	"github.com/joseph-ayodele/docfields/internal/export"
	"github.com/joseph-ayodele/docfields/internal/metrics"
	"github.com/joseph-ayodele/docfields/internal/ocr"
	"github.com/joseph-ayodele/docfields/internal/pdftext"
	"github.com/joseph-ayodele/docfields/internal/pipeline"
	"github.com/joseph-ayodele/docfields/internal/pipeline/imagescan"
	"github.com/joseph-ayodele/docfields/internal/pipeline/textlayer"
	"github.com/joseph-ayodele/docfields/internal/segment"
)

// Engine is a configured processor and the services around it.
type Engine struct {
	Processor *pipeline.Processor
	Exporter  *export.Service
	Metrics   *metrics.Metrics

	closers []func() error
}

// Close releases in-process OCR handles.
func (e *Engine) Close() error {
	var errs []error
	for _, c := range e.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// OCRConfig maps the ocr and raster sections onto ocr.Config.
func OCRConfig(cfg *common.Config) ocr.Config {
	return ocr.Config{
		Tesseract:     cfg.OCR.Tesseract,
		Pdftoppm:      cfg.Raster.Pdftoppm,
		Language:      cfg.OCR.Language,
		TessdataDir:   cfg.OCR.TessdataDir,
		PSM:           cfg.OCR.PSM,
		DPI:           cfg.Raster.DPI,
		MaxPages:      cfg.Raster.MaxPages,
		HeicConverter: cfg.OCR.HeicConverter,
	}
}

// Build wires every component from cfg. m may be nil.
func Build(cfg *common.Config, m *metrics.Metrics, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{Exporter: export.NewService(logger), Metrics: m}
	runner := ocr.NewExecRunner(logger)
	ocrCfg := OCRConfig(cfg)

	var recognizer ocr.Engine
	switch cfg.OCR.Engine {
	case "gosseract":
		g, err := ocr.NewGosseract(ocrCfg)
		if err != nil {
			return nil, fmt.Errorf("gosseract: %w", err)
		}
		e.closers = append(e.closers, g.Close)
		recognizer = g
	default:
		recognizer = ocr.NewTesseract(ocrCfg, runner, logger)
	}

	var raster ocr.Rasterizer
	switch cfg.Raster.Backend {
	case "fitz":
		f, err := ocr.NewFitz(ocrCfg, logger)
		if err != nil {
			_ = e.Close()
			return nil, fmt.Errorf("fitz: %w", err)
		}
		raster = f
	default:
		raster = ocr.NewPdftoppm(ocrCfg, runner, logger)
	}

	var reader pdftext.Reader = pdftext.NewNative(cfg.Raster.MaxPages, logger)
	if cfg.PDFText.EnableFallback && ocr.Available(cfg.PDFText.Pdftotext) {
		reader = pdftext.NewLayered(reader, pdftext.NewPdftotext(cfg.PDFText.Pdftotext, runner, logger), logger)
	}

	strategy, ok := constants.ParseStrategy(cfg.Pipeline.Strategy)
	if !ok {
		_ = e.Close()
		return nil, fmt.Errorf("%w: strategy %q", common.ErrInvalidInput, cfg.Pipeline.Strategy)
	}
	policy, ok := constants.ParsePolicy(cfg.Pipeline.Policy)
	if !ok {
		_ = e.Close()
		return nil, fmt.Errorf("%w: policy %q", common.ErrInvalidInput, cfg.Pipeline.Policy)
	}

	cells := ocr.NewCellRecognizer(recognizer, logger, ocr.WithFailureHook(m.CellFailed))
	images := imagescan.NewPipeline(raster, segment.New(strategy, logger), cells, logger)
	e.Processor = pipeline.NewProcessor(logger,
		textlayer.NewPipeline(reader, logger),
		images,
		ocr.NewDecoder(ocrCfg, runner, logger),
		pipeline.WithPolicy(policy),
		pipeline.WithSchemaValidation(cfg.Pipeline.ValidateSchema),
		pipeline.WithMetrics(m),
	)
	logger.Info("engine ready",
		"ocr_engine", cfg.OCR.Engine,
		"raster", cfg.Raster.Backend,
		"policy", string(policy),
		"strategy", string(strategy),
	)
	return e, nil
}
