package segment

import (
	"image"

	"github.com/joseph-ayodele/docfields/internal/imgproc"
)

const (
	adaptiveBlock  = 15
	adaptiveC      = 5
	strokeLength   = 25
	minCellArea    = 100
	cellEpsilon    = 0.02
	minAspectRatio = 0.1
	maxAspectRatio = 10.0
)

// GridLines binarizes region and keeps only long horizontal and vertical
// strokes, thickened so that adjacent ruling segments join.
func GridLines(region *image.Gray) *image.Gray {
	bin := imgproc.AdaptiveGaussian(region, adaptiveBlock, adaptiveC, true)
	horizontal := imgproc.Open(bin, strokeLength, 1)
	vertical := imgproc.Open(bin, 1, strokeLength)
	grid := imgproc.Add(horizontal, vertical)
	grid = imgproc.Dilate(grid, 3, 3, 2)
	return imgproc.Close(grid, 3, 3)
}

// Cells finds cell rectangles inside region with the structural-line
// strategy. region must be origin-anchored; offset is added to every result
// so rectangles refer to the uncropped page.
func Cells(region *image.Gray, offset image.Point) []image.Rectangle {
	grid := GridLines(region)

	var cells []image.Rectangle
	for _, c := range imgproc.FindContours(grid, imgproc.RetrieveList) {
		if imgproc.ContourArea(c) <= minCellArea {
			continue
		}
		approx := imgproc.ApproxPolyDP(c, cellEpsilon*imgproc.ArcLength(c, true), true)
		if len(approx) < 4 {
			continue
		}
		r := imgproc.BoundingRect(approx)
		aspect := float64(r.Dx()) / float64(r.Dy())
		if aspect <= minAspectRatio || aspect >= maxAspectRatio {
			continue
		}
		cells = append(cells, r.Add(offset))
	}
	return cells
}
