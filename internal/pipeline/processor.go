// Package pipeline coordinates the extraction strategies for one document
// and builds the structured result from what they found.
package pipeline

import (
	"context"
	"image"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/docfields/constants"
	"github.com/joseph-ayodele/docfields/internal/common"
	"github.com/joseph-ayodele/docfields/internal/extract"
	"github.com/joseph-ayodele/docfields/internal/metrics"
	"github.com/joseph-ayodele/docfields/internal/ocr"
	"github.com/joseph-ayodele/docfields/internal/pipeline/imagescan"
	"github.com/joseph-ayodele/docfields/internal/pipeline/textlayer"
)

const (
	msgNoContent  = "Failed to extract data from PDF"
	msgBadImage   = "Failed to decode image"
	entryDocument = "document"
	entryImage    = "image"
)

// Document is one uploaded file held in memory.
type Document struct {
	Filename  string
	Data      []byte
	RequestID string
}

// Outcome is what a document yielded. After a failure only the scan notes are set.
type Outcome struct {
	RequestID string
	Method    constants.Method
	// Data is the sanitized structured result.
	Data   map[string]any
	Fields extract.Fields
	Text   string
	Tables []extract.Table
	Scan   *imagescan.Scan
	Pages  int
	// Confidence is a 0..1 heuristic over the recognized text.
	Confidence float32
}

// ImageDecoder turns photographed-page bytes into an image.
type ImageDecoder interface {
	Decode(ctx context.Context, data []byte) (image.Image, string, error)
}

// Processor runs documents through the text-layer and image pipelines
// according to its policy.
type Processor struct {
	Logger *slog.Logger

	policy   constants.Policy
	text     Strategy
	images   *imagescan.Pipeline
	decoder  ImageDecoder
	validate bool
	metrics  *metrics.Metrics
}

type Option func(*Processor)

func WithPolicy(policy constants.Policy) Option {
	return func(p *Processor) {
		if policy != "" {
			p.policy = policy
		}
	}
}

// WithSchemaValidation checks every result against extract.ResultSchema and
// logs mismatches. Results are returned either way.
func WithSchemaValidation(enabled bool) Option {
	return func(p *Processor) { p.validate = enabled }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Processor) { p.metrics = m }
}

func NewProcessor(logger *slog.Logger, text *textlayer.Pipeline, images *imagescan.Pipeline, decoder ImageDecoder, opts ...Option) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{
		Logger:  logger,
		policy:  constants.PolicyTextFirst,
		text:    TextLayer(text),
		images:  images,
		decoder: decoder,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Processor) Policy() constants.Policy { return p.policy }

func (p *Processor) chain() Chain {
	switch p.policy {
	case constants.PolicyImageOnly:
		return Chain{ImageScan(p.images)}
	default:
		return Chain{p.text, ImageScan(p.images)}
	}
}

// Process extracts a PDF. Under text-first the image pipeline runs only when
// the text layer has nothing; under supplement both run and their content is
// concatenated. On failure the returned Outcome is non-nil when an image scan
// ran, so that its page notes can still be reported.
func (p *Processor) Process(ctx context.Context, doc Document) (*Outcome, error) {
	ctx, requestID := p.requestContext(ctx, doc)
	start := time.Now()

	var (
		part *Partial
		err  error
	)
	if p.policy == constants.PolicySupplement {
		part, err = p.chain().All(ctx, doc.Data, p.Logger)
	} else {
		part, err = p.chain().First(ctx, doc.Data, p.Logger)
	}
	return p.finish(ctx, entryDocument, requestID, doc, part, err, start)
}

// ProcessImage extracts a single photographed page through the image pipeline.
func (p *Processor) ProcessImage(ctx context.Context, doc Document) (*Outcome, error) {
	ctx, requestID := p.requestContext(ctx, doc)
	start := time.Now()

	img, format, err := p.decoder.Decode(ctx, doc.Data)
	if err != nil {
		if !common.IsCanceled(err) {
			err = common.NewExtractionError(common.InputError, msgBadImage, err)
		}
		return p.finish(ctx, entryImage, requestID, doc, nil, err, start)
	}
	p.Logger.Debug("processor.image.decoded", "request_id", requestID, "format", format, "bounds", img.Bounds().String())

	part, err := scanPartial(p.images.RunImages(ctx, []image.Image{img}))
	return p.finish(ctx, entryImage, requestID, doc, part, err, start)
}

func (p *Processor) requestContext(ctx context.Context, doc Document) (context.Context, string) {
	if doc.RequestID != "" {
		ctx = common.WithRequestID(ctx, doc.RequestID)
	}
	if doc.Filename != "" {
		ctx = common.WithFilename(ctx, doc.Filename)
	}
	return common.EnsureRequestID(ctx)
}

func (p *Processor) finish(ctx context.Context, entry, requestID string, doc Document, part *Partial, err error, start time.Time) (*Outcome, error) {
	elapsed := time.Since(start)
	if err != nil {
		p.Logger.Error("processor.extract.failed",
			"request_id", requestID,
			"filename", doc.Filename,
			"entry", entry,
			"error", err,
			"duration_ms", elapsed.Milliseconds(),
		)
		p.metrics.ObserveDocument(entry, "", string(constants.StatusError), elapsed)
		if part == nil || part.Scan == nil {
			return nil, err
		}
		return &Outcome{RequestID: requestID, Method: part.Method, Scan: part.Scan, Pages: part.Pages, Data: map[string]any{}}, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	fields := extract.ParseFields(part.Text)
	confidence := ocr.HeuristicConfidence(part.Text)
	data := extract.Build(extract.Merge(fields, extract.ProcessTables(part.Tables)))
	if p.validate {
		if verr := extract.ValidateResult(data); verr != nil {
			p.Logger.Warn("processor.result.schema_mismatch", "request_id", requestID, "error", verr)
		}
	}

	p.metrics.ObserveDocument(entry, string(part.Method), string(constants.StatusSuccess), elapsed)
	p.metrics.AddPages(string(part.Method), part.Pages)
	for _, t := range part.Tables {
		p.metrics.IncTable(string(t.Kind))
	}
	p.Logger.Info("processor.extract.ok",
		"request_id", requestID,
		"filename", doc.Filename,
		"entry", entry,
		"method", string(part.Method),
		"pages", part.Pages,
		"tables", len(part.Tables),
		"fields", len(fields),
		"confidence", confidence,
		"duration_ms", elapsed.Milliseconds(),
	)
	return &Outcome{
		RequestID: requestID,
		Method:    part.Method,
		Data:      data,
		Fields:    fields,
		Text:      part.Text,
		Tables:    part.Tables,
		Scan:      part.Scan,
		Pages:     part.Pages,

		Confidence: confidence,
	}, nil
}
