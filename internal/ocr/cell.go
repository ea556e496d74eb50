package ocr

import (
	"context"
	"image"
	"log/slog"

	"github.com/joseph-ayodele/docfields/internal/imgproc"
)

// MinCellSide is the exclusive lower bound for a cell's width and height.
const MinCellSide = 5

// ValidCell reports whether r is wider and taller than MinCellSide and lies inside bounds.
func ValidCell(r, bounds image.Rectangle) bool {
	return r.Dx() > MinCellSide && r.Dy() > MinCellSide && r.In(bounds)
}

// CellRecognizer returns cleaned text for one rectangular region of a page.
type CellRecognizer struct {
	engine    Engine
	logger    *slog.Logger
	onFailure func(error)
}

type CellOption func(*CellRecognizer)

// WithFailureHook is called for every recognition failure (after logging).
func WithFailureHook(fn func(error)) CellOption {
	return func(c *CellRecognizer) {
		c.onFailure = fn
	}
}

func NewCellRecognizer(engine Engine, logger *slog.Logger, opts ...CellOption) *CellRecognizer {
	if logger == nil {
		logger = slog.Default()
	}
	c := &CellRecognizer{engine: engine, logger: logger}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Recognize returns the text inside r, or "" when r is not a valid cell or
// recognition fails. The only error is context cancellation.
func (c *CellRecognizer) Recognize(ctx context.Context, img image.Image, r image.Rectangle) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !ValidCell(r, img.Bounds()) {
		return "", nil
	}
	region := Preprocess(imgproc.CropToGray(img, r))
	text, err := c.engine.Recognize(ctx, region)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		c.logger.Warn("ocr.cell.failed", "rect", r.String(), "error", err)
		if c.onFailure != nil {
			c.onFailure(err)
		}
		return "", nil
	}
	return CollapseWhitespace(text), nil
}
