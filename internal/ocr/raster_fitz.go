//go:build fitz

package ocr

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/gen2brain/go-fitz"

	"github.com/joseph-ayodele/docfields/internal/common"
)

// Fitz renders PDF pages in-process with MuPDF.
type Fitz struct {
	cfg    Config
	logger *slog.Logger
}

func NewFitz(cfg Config, logger *slog.Logger) (*Fitz, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fitz{cfg: cfg.withDefaults(), logger: logger}, nil
}

func (f *Fitz) Rasterize(ctx context.Context, pdf []byte) ([]image.Image, error) {
	doc, err := fitz.NewFromMemory(pdf)
	if err != nil {
		return nil, fmt.Errorf("fitz open: %w", err)
	}
	defer doc.Close()

	n := doc.NumPage()
	if f.cfg.MaxPages > 0 && n > f.cfg.MaxPages {
		n = f.cfg.MaxPages
	}
	if n == 0 {
		return nil, common.ErrNoPages
	}
	pages := make([]image.Image, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := doc.ImageDPI(i, float64(f.cfg.DPI))
		if err != nil {
			return nil, fmt.Errorf("fitz render page %d: %w", i+1, err)
		}
		pages = append(pages, img)
	}
	f.logger.Debug("raster.fitz.ok", "pages", len(pages), "dpi", f.cfg.DPI)
	return pages, nil
}
