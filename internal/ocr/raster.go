package ocr

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/joseph-ayodele/docfields/internal/common"
)

// Pdftoppm renders PDF pages with poppler's pdftoppm.
type Pdftoppm struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewPdftoppm(cfg Config, runner Runner, logger *slog.Logger) *Pdftoppm {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = NewExecRunner(logger)
	}
	return &Pdftoppm{cfg: cfg.withDefaults(), runner: runner, logger: logger}
}

// Rasterize returns one image per page in page order. A document that renders
// no pages yields common.ErrNoPages.
func (p *Pdftoppm) Rasterize(ctx context.Context, pdf []byte) ([]image.Image, error) {
	tmpDir, err := os.MkdirTemp("", "df-pp-*")
	if err != nil {
		return nil, err
	}
	defer func(path string) {
		if err := os.RemoveAll(path); err != nil {
			p.logger.Warn("raster.tmp.cleanup_failed", "path", path, "error", err)
		}
	}(tmpDir)

	in := filepath.Join(tmpDir, "in.pdf")
	if err := os.WriteFile(in, pdf, 0o600); err != nil {
		return nil, err
	}

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	args := []string{"-r", strconv.Itoa(p.cfg.DPI), "-png"}
	if p.cfg.MaxPages > 0 {
		args = append(args, "-l", strconv.Itoa(p.cfg.MaxPages))
	}
	args = append(args, in, prefix)
	if _, errb, err := p.runner.Run(ctx, p.cfg.Pdftoppm, args...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, truncate(string(errb), 512))
	}

	// collect generated pngs (page-1.png, page-2.png, ... zero padded by pdftoppm)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if p.cfg.MaxPages > 0 && len(matches) > p.cfg.MaxPages {
		matches = matches[:p.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return nil, common.ErrNoPages
	}

	pages := make([]image.Image, 0, len(matches))
	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := readPNG(m)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", filepath.Base(m), err)
		}
		pages = append(pages, img)
	}
	p.logger.Debug("raster.pdftoppm.ok", "pages", len(pages), "dpi", p.cfg.DPI)
	return pages, nil
}

func readPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return png.Decode(f)
}
