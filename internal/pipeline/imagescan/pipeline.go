// Package imagescan extracts tables from page images: each page is
// segmented into tables and cells, and every cell is recognized on its own.
package imagescan

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/docfields/internal/common"
	"github.com/joseph-ayodele/docfields/internal/extract"
	"github.com/joseph-ayodele/docfields/internal/ocr"
	"github.com/joseph-ayodele/docfields/internal/pdftext"
	"github.com/joseph-ayodele/docfields/internal/segment"
)

const msgNoImages = "Failed to extract images from PDF"

// Result is the image pipeline's view of one document. Tables and Text are
// derived from the scan in reading order so the field parser and table
// extractor can run over them.
type Result struct {
	Scan   Scan
	Text   string
	Tables []extract.Table
	Pages  int
}

// Segmenter discovers tables on a page image.
type Segmenter interface {
	Tables(ctx context.Context, page image.Image) ([]segment.Table, error)
}

// CellReader returns the text of one cell rectangle of a page.
type CellReader interface {
	Recognize(ctx context.Context, page image.Image, r image.Rectangle) (string, error)
}

type Pipeline struct {
	raster    ocr.Rasterizer
	segmenter Segmenter
	cells     CellReader
	logger    *slog.Logger
}

func NewPipeline(raster ocr.Rasterizer, segmenter Segmenter, cells CellReader, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{raster: raster, segmenter: segmenter, cells: cells, logger: logger}
}

// Run renders pdf to page images and scans them. When no page can be
// rendered it returns an InputError together with a Result whose scan holds
// the error note.
func (p *Pipeline) Run(ctx context.Context, pdf []byte) (*Result, error) {
	pages, err := p.raster.Rasterize(ctx, pdf)
	if err != nil && common.IsCanceled(err) {
		return nil, err
	}
	if err != nil || len(pages) == 0 {
		if err == nil {
			err = common.ErrNoPages
		}
		p.logger.Warn("imagescan.raster.failed", "error", err)
		return &Result{Scan: Scan{Error: msgNoImages}}, common.NewExtractionError(common.InputError, msgNoImages, err)
	}
	return p.RunImages(ctx, pages)
}

// RunImages scans already decoded pages, numbered from 1. A page that fails
// is recorded with an error note and the scan moves on; only cancellation
// aborts the document.
func (p *Pipeline) RunImages(ctx context.Context, pages []image.Image) (*Result, error) {
	if len(pages) == 0 {
		return &Result{Scan: Scan{Error: msgNoImages}}, common.NewExtractionError(common.InputError, msgNoImages, common.ErrNoPages)
	}
	res := &Result{Pages: len(pages)}
	var text strings.Builder
	for i, img := range pages {
		number := i + 1
		start := time.Now()
		page, err := p.scanPage(ctx, number, img)
		if err != nil {
			return nil, err
		}
		res.Scan.Pages = append(res.Scan.Pages, page)

		pageText := p.collect(res, page)
		if pageText != "" {
			text.WriteString(pdftext.PageMarker(number))
			text.WriteString(pageText)
		}
		p.logger.Debug("imagescan.page.done",
			"page", number,
			"tables", len(page.Tables),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	res.Text = text.String()
	return res, nil
}

func (p *Pipeline) scanPage(ctx context.Context, number int, img image.Image) (page PageScan, err error) {
	page.Number = number
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("imagescan.page.panic", "page", number, "panic", r)
			page = PageScan{Number: number, Error: fmt.Sprintf("%s%v", errPrefix, r)}
			err = nil
		}
	}()

	if img == nil {
		return PageScan{Number: number, Error: errPrefix + "empty page image"}, nil
	}
	tables, err := p.segmenter.Tables(ctx, img)
	if err != nil {
		if common.IsCanceled(err) {
			return page, err
		}
		p.logger.Warn("imagescan.page.failed", "page", number, "error", err)
		return PageScan{Number: number, Error: errPrefix + err.Error()}, nil
	}

	for _, t := range tables {
		ts := TableScan{Number: t.Index, Bounds: t.Bounds}
		for k, r := range t.Cells {
			text, err := p.cells.Recognize(ctx, img, r)
			if err != nil {
				if common.IsCanceled(err) {
					return page, err
				}
				// readers degrade failures to empty text; anything else is a page failure
				p.logger.Warn("imagescan.cell.failed", "page", number, "table", t.Index, "cell", k+1, "error", err)
				return PageScan{Number: number, Error: errPrefix + err.Error()}, nil
			}
			ts.Cells = append(ts.Cells, CellScan{Number: k + 1, Rect: r, Text: text})
		}
		if len(ts.Cells) > 0 {
			page.Tables = append(page.Tables, ts)
		}
	}
	return page, nil
}

// collect adds the page's tables to res in reading order and returns the
// page text, one line per row with cells separated by tabs.
func (p *Pipeline) collect(res *Result, page PageScan) string {
	var lines []string
	for _, ts := range page.Tables {
		grid := Grid(ts)
		for _, row := range grid {
			if line := strings.TrimSpace(strings.Join(row, "\t")); line != "" {
				lines = append(lines, line)
			}
		}
		if t, ok := extract.NewTable(page.Number, ts.Number, grid); ok {
			res.Tables = append(res.Tables, t)
		}
	}
	return strings.Join(lines, "\n")
}

// Grid arranges the cells of a scanned table into rows in reading order.
// Rectangles enclosing other cells are left out.
func Grid(ts TableScan) [][]string {
	rects := make([]image.Rectangle, len(ts.Cells))
	texts := make(map[image.Rectangle]string, len(ts.Cells))
	for i, c := range ts.Cells {
		rects[i] = c.Rect
		if _, seen := texts[c.Rect]; !seen {
			texts[c.Rect] = c.Text
		}
	}
	rows := segment.Rows(rects)
	grid := make([][]string, 0, len(rows))
	for _, row := range rows {
		line := make([]string, len(row))
		for i, r := range row {
			line[i] = texts[r]
		}
		grid = append(grid, line)
	}
	return grid
}
