// Package textlayer extracts text and tables from the embedded text layer of
// a PDF, without rasterizing it.
package textlayer

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/docfields/constants"
	"github.com/joseph-ayodele/docfields/internal/common"
	"github.com/joseph-ayodele/docfields/internal/extract"
	"github.com/joseph-ayodele/docfields/internal/pdftext"
)

const (
	msgNoContent = "Failed to extract data from PDF"
	msgReadError = "Error processing PDF"
)

// Result is the text-layer content of one document.
type Result struct {
	Text   string
	Tables []extract.Table
	Pages  int
	Method constants.Method
}

type Pipeline struct {
	reader pdftext.Reader
	logger *slog.Logger
}

func NewPipeline(reader pdftext.Reader, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{reader: reader, logger: logger}
}

// Run reads the text layer of pdf. Tables are cleaned and classified; those
// left empty by cleaning are dropped. A document with neither text nor
// tables fails with an InputError, which callers treat as the signal to fall
// back to the image pipeline.
func (p *Pipeline) Run(ctx context.Context, pdf []byte) (*Result, error) {
	if len(pdf) == 0 {
		return nil, common.NewExtractionError(common.InputError, msgNoContent, common.ErrInvalidInput)
	}
	doc, err := p.reader.Read(ctx, pdf)
	if err != nil {
		if common.IsCanceled(err) {
			return nil, err
		}
		p.logger.Warn("textlayer.read.failed", "error", err)
		return nil, common.NewExtractionError(common.InputError, msgReadError, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{Text: doc.FullText(), Pages: len(doc.Pages), Method: doc.Method}
	if res.Method == "" {
		res.Method = constants.MethodTextLayer
	}
	for _, page := range doc.Pages {
		for i, raw := range page.Tables {
			if t, ok := extract.NewTable(page.Number, i+1, raw); ok {
				res.Tables = append(res.Tables, t)
			}
		}
	}

	if !doc.HasText() && len(res.Tables) == 0 {
		p.logger.Info("textlayer.empty", "pages", res.Pages)
		return nil, common.NewExtractionError(common.InputError, msgNoContent, common.ErrNoContent)
	}
	p.logger.Debug("textlayer.ok",
		"pages", res.Pages,
		"tables", len(res.Tables),
		"chars", len(res.Text),
		"method", string(res.Method),
	)
	return res, nil
}
