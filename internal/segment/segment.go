// Package segment finds table regions and cell rectangles in page images
// using line morphology. Two interchangeable strategies discover tables on a
// page; both share the structural-line cell search inside a known region.
package segment

import (
	"context"
	"image"
	"log/slog"
	"sort"

	"github.com/joseph-ayodele/docfields/constants"
	"github.com/joseph-ayodele/docfields/internal/imgproc"
)

// Table is one discovered table region and the cells found inside it.
type Table struct {
	// Index is the 1-based position of the candidate on its page. Candidates
	// without cells are dropped, so indexes may skip.
	Index  int
	Bounds image.Rectangle
	// Cells are in contour discovery order, not reading order. See Rows.
	Cells []image.Rectangle
}

// Segmenter applies one discovery strategy to whole pages.
type Segmenter struct {
	strategy constants.Strategy
	logger   *slog.Logger
}

func New(strategy constants.Strategy, logger *slog.Logger) *Segmenter {
	if logger == nil {
		logger = slog.Default()
	}
	if strategy == "" {
		strategy = constants.StrategyStructural
	}
	return &Segmenter{strategy: strategy, logger: logger}
}

func (s *Segmenter) Strategy() constants.Strategy { return s.strategy }

// Tables returns the tables discovered on page. Tables with no cells are omitted.
func (s *Segmenter) Tables(ctx context.Context, page image.Image) ([]Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	gray := imgproc.ToGray(page)

	var tables []Table
	switch s.strategy {
	case constants.StrategyEdges:
		tables = EdgeTables(gray)
	default:
		tables = OuterTables(gray)
	}
	s.logger.Debug("segment.page.done", "strategy", string(s.strategy), "tables", len(tables))
	return tables, ctx.Err()
}

// expand grows r by n pixels on each side, clamped to bounds the same way for
// the origin and the size.
func expand(r image.Rectangle, n int, bounds image.Rectangle) image.Rectangle {
	x := max(bounds.Min.X, r.Min.X-n)
	y := max(bounds.Min.Y, r.Min.Y-n)
	w := min(bounds.Max.X-x, r.Dx()+2*n)
	h := min(bounds.Max.Y-y, r.Dy()+2*n)
	return image.Rect(x, y, x+w, y+h)
}

// cellsIn runs the structural cell search on the region r of gray and reports
// cells in page coordinates.
func cellsIn(gray *image.Gray, r image.Rectangle) []image.Rectangle {
	region := imgproc.Crop(gray, r)
	return Cells(region, r.Min)
}

func byAreaDesc(contours []imgproc.Contour) []imgproc.Contour {
	sorted := make([]imgproc.Contour, len(contours))
	copy(sorted, contours)
	sort.SliceStable(sorted, func(i, j int) bool {
		return imgproc.ContourArea(sorted[i]) > imgproc.ContourArea(sorted[j])
	})
	return sorted
}
