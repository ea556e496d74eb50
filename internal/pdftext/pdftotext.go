package pdftext

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/docfields/constants"
	"github.com/joseph-ayodele/docfields/internal/common"
	"github.com/joseph-ayodele/docfields/internal/ocr"
)

// Pdftotext reads page text with poppler's pdftotext. It finds no tables.
type Pdftotext struct {
	bin    string
	runner ocr.Runner
	logger *slog.Logger
}

func NewPdftotext(bin string, runner ocr.Runner, logger *slog.Logger) *Pdftotext {
	if logger == nil {
		logger = slog.Default()
	}
	if bin == "" {
		bin = "pdftotext"
	}
	if runner == nil {
		runner = ocr.NewExecRunner(logger)
	}
	return &Pdftotext{bin: bin, runner: runner, logger: logger}
}

func (p *Pdftotext) Read(ctx context.Context, data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, common.ErrInvalidInput
	}
	tmpDir, err := os.MkdirTemp("", "df-pt-*")
	if err != nil {
		return nil, err
	}
	defer func(path string) {
		if err := os.RemoveAll(path); err != nil {
			p.logger.Warn("pdftotext.tmp.cleanup_failed", "path", path, "error", err)
		}
	}(tmpDir)

	in := filepath.Join(tmpDir, "in.pdf")
	if err := os.WriteFile(in, data, 0o600); err != nil {
		return nil, err
	}

	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := p.runner.Run(ctx, p.bin, "-layout", "-enc", "UTF-8", "-eol", "unix", in, "-")
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("pdftotext: %w: %s", err, strings.TrimSpace(string(errb)))
	}
	return &Document{Method: constants.MethodPDFToText, Pages: splitPages(string(out))}, nil
}

// splitPages splits pdftotext output on form feeds. The trailing form feed
// after the last page does not start a new page.
func splitPages(out string) []Page {
	out = strings.TrimSuffix(out, "\f")
	if out == "" {
		return nil
	}
	parts := strings.Split(out, "\f")
	pages := make([]Page, 0, len(parts))
	for i, part := range parts {
		pages = append(pages, Page{Number: i + 1, Text: ocr.Normalize(part)})
	}
	return pages
}
