package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/joseph-ayodele/docfields/constants"
	"github.com/joseph-ayodele/docfields/internal/common"
	"github.com/joseph-ayodele/docfields/internal/extract"
	"github.com/joseph-ayodele/docfields/internal/pipeline/imagescan"
	"github.com/joseph-ayodele/docfields/internal/pipeline/textlayer"
)

// Partial is the content one strategy extracted from a document.
type Partial struct {
	Method constants.Method
	Text   string
	Tables []extract.Table
	Pages  int
	// Scan is set by the image strategy, also alongside a failure.
	Scan *imagescan.Scan
}

func (p *Partial) empty() bool {
	return p == nil || (p.Text == "" && len(p.Tables) == 0)
}

// Strategy extracts content from PDF bytes. A document it cannot get any
// content from is an InputError; the Partial may still be non-nil then.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, pdf []byte) (*Partial, error)
}

type textLayerStrategy struct {
	pipeline *textlayer.Pipeline
}

// TextLayer adapts the text-layer pipeline to Strategy.
func TextLayer(p *textlayer.Pipeline) Strategy { return textLayerStrategy{pipeline: p} }

func (textLayerStrategy) Name() string { return "text-layer" }

func (s textLayerStrategy) Extract(ctx context.Context, pdf []byte) (*Partial, error) {
	res, err := s.pipeline.Run(ctx, pdf)
	if err != nil {
		return nil, err
	}
	return &Partial{Method: res.Method, Text: res.Text, Tables: res.Tables, Pages: res.Pages}, nil
}

type imageScanStrategy struct {
	pipeline *imagescan.Pipeline
}

// ImageScan adapts the image pipeline to Strategy.
func ImageScan(p *imagescan.Pipeline) Strategy { return imageScanStrategy{pipeline: p} }

func (imageScanStrategy) Name() string { return "image-scan" }

func (s imageScanStrategy) Extract(ctx context.Context, pdf []byte) (*Partial, error) {
	return scanPartial(s.pipeline.Run(ctx, pdf))
}

const msgNoTables = "No tables detected in document"

// scanPartial turns an image pipeline result into a Partial. A scan that
// found neither tables nor text is reported as an InputError.
func scanPartial(res *imagescan.Result, err error) (*Partial, error) {
	if res == nil {
		return nil, err
	}
	scan := res.Scan
	p := &Partial{
		Method: constants.MethodImageScan,
		Text:   res.Text,
		Tables: res.Tables,
		Pages:  res.Pages,
		Scan:   &scan,
	}
	if err != nil {
		return p, err
	}
	if p.empty() {
		return p, common.NewExtractionError(common.InputError, msgNoTables, common.ErrNoContent)
	}
	return p, nil
}

// Chain is an ordered list of strategies.
type Chain []Strategy

// First returns the result of the first strategy that yields content. Only
// InputErrors move on to the next strategy; the error of the last one is
// returned when none succeeds, with the last non-nil Partial.
func (c Chain) First(ctx context.Context, pdf []byte, logger *slog.Logger) (*Partial, error) {
	var (
		last    *Partial
		lastErr error = common.NewExtractionError(common.InputError, msgNoContent, common.ErrNoContent)
	)
	for _, s := range c {
		p, err := s.Extract(ctx, pdf)
		if err == nil && !p.empty() {
			return p, nil
		}
		if err != nil && !common.IsKind(err, common.InputError) {
			return p, err
		}
		if err == nil {
			err = common.NewExtractionError(common.InputError, msgNoContent, common.ErrNoContent)
		}
		logger.Info("pipeline.strategy.empty", "strategy", s.Name(), "error", err)
		if p != nil {
			last = p
		}
		lastErr = err
	}
	return last, lastErr
}

// All runs every strategy and concatenates what they found. It fails only
// when none of them yields content.
func (c Chain) All(ctx context.Context, pdf []byte, logger *slog.Logger) (*Partial, error) {
	var (
		out     *Partial
		scan    *imagescan.Scan
		methods []constants.Method
		errs    []error
	)
	for _, s := range c {
		p, err := s.Extract(ctx, pdf)
		if p != nil && p.Scan != nil {
			scan = p.Scan
		}
		if err != nil {
			if !common.IsKind(err, common.InputError) {
				return nil, err
			}
			logger.Info("pipeline.strategy.empty", "strategy", s.Name(), "error", err)
			errs = append(errs, err)
			continue
		}
		if p.empty() {
			continue
		}
		methods = append(methods, p.Method)
		if out == nil {
			out = &Partial{}
		}
		out.Text += p.Text
		out.Tables = append(out.Tables, p.Tables...)
		out.Pages = max(out.Pages, p.Pages)
	}
	if out == nil {
		var err error = common.NewExtractionError(common.InputError, msgNoContent, common.ErrNoContent)
		if len(errs) > 0 {
			err = errs[len(errs)-1]
		}
		if scan != nil {
			return &Partial{Method: constants.MethodImageScan, Scan: scan}, err
		}
		return nil, err
	}
	out.Scan = scan
	out.Method = methods[0]
	if len(methods) > 1 {
		out.Method = constants.MethodSupplement
	}
	return out, nil
}

// extractionMessage returns the caller-facing message of err.
func extractionMessage(err error) string {
	var ee *common.ExtractionError
	if errors.As(err, &ee) {
		return ee.Message
	}
	return err.Error()
}
