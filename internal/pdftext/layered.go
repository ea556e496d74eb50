package pdftext

import (
	"context"
	"log/slog"
)

// Layered reads with a primary reader and, when that finds no text at all,
// takes page text from a fallback. Tables always come from the primary.
type Layered struct {
	primary  Reader
	fallback Reader
	logger   *slog.Logger
}

func NewLayered(primary, fallback Reader, logger *slog.Logger) *Layered {
	if logger == nil {
		logger = slog.Default()
	}
	return &Layered{primary: primary, fallback: fallback, logger: logger}
}

func (l *Layered) Read(ctx context.Context, data []byte) (*Document, error) {
	doc, err := l.primary.Read(ctx, data)
	if err != nil {
		if ctx.Err() != nil || l.fallback == nil {
			return nil, err
		}
		l.logger.Warn("pdftext.primary.failed", "error", err)
		doc = nil
	}
	if doc.HasText() || l.fallback == nil {
		return doc, nil
	}

	fb, err := l.fallback.Read(ctx, data)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		l.logger.Warn("pdftext.fallback.failed", "error", err)
		if doc == nil {
			return nil, err
		}
		return doc, nil
	}
	if !fb.HasText() {
		if doc == nil {
			return fb, nil
		}
		return doc, nil
	}
	l.logger.Info("pdftext.fallback.used", "pages", len(fb.Pages))
	if doc != nil {
		mergeTables(fb, doc)
	}
	return fb, nil
}

// mergeTables copies tables from src pages onto the pages of dst with the same number.
func mergeTables(dst, src *Document) {
	byNumber := make(map[int]int, len(dst.Pages))
	for i, p := range dst.Pages {
		byNumber[p.Number] = i
	}
	for _, p := range src.Pages {
		if len(p.Tables) == 0 {
			continue
		}
		if i, ok := byNumber[p.Number]; ok {
			dst.Pages[i].Tables = append(dst.Pages[i].Tables, p.Tables...)
			continue
		}
		dst.Pages = append(dst.Pages, Page{Number: p.Number, Tables: p.Tables})
	}
}
