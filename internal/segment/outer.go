package segment

import (
	"image"

	"github.com/joseph-ayodele/docfields/internal/imgproc"
)

const (
	outerStroke    = 20
	maxOuterTables = 5
	outerEpsilon   = 0.01
	outerExpand    = 5
	edgeMinArea    = 1000
	edgeEpsilon    = 0.02
	edgeExpand     = 10
	cannyLow       = 50
	cannyHigh      = 150
)

// OuterTables finds up to five table candidates on a whole page by their
// ruling structure, largest first, and searches each for cells.
func OuterTables(gray *image.Gray) []Table {
	bin := imgproc.ThresholdOtsu(gray, true)
	horizontal := imgproc.Open(bin, outerStroke, 1)
	vertical := imgproc.Open(bin, 1, outerStroke)
	structure := imgproc.Dilate(imgproc.Add(horizontal, vertical), 2, 2, 2)

	contours := byAreaDesc(imgproc.FindContours(structure, imgproc.RetrieveExternal))
	if len(contours) > maxOuterTables {
		contours = contours[:maxOuterTables]
	}

	var tables []Table
	for i, c := range contours {
		approx := imgproc.ApproxPolyDP(c, outerEpsilon*imgproc.ArcLength(c, true), true)
		if len(approx) < 4 {
			continue
		}
		bounds := expand(imgproc.BoundingRect(approx), outerExpand, gray.Bounds())
		if cells := cellsIn(gray, bounds); len(cells) > 0 {
			tables = append(tables, Table{Index: i + 1, Bounds: bounds, Cells: cells})
		}
	}
	return tables
}

// EdgeTables finds quadrilateral table outlines from Canny edges and searches
// each for cells.
func EdgeTables(gray *image.Gray) []Table {
	bin := imgproc.ThresholdOtsu(gray, false)
	edges := imgproc.Canny(bin, cannyLow, cannyHigh)
	closed := imgproc.Close(edges, 2, 2)

	var outlines []image.Rectangle
	for _, c := range imgproc.FindContours(closed, imgproc.RetrieveExternal) {
		if imgproc.ContourArea(c) <= edgeMinArea {
			continue
		}
		approx := imgproc.ApproxPolyDP(c, edgeEpsilon*imgproc.ArcLength(c, true), true)
		if len(approx) == 4 {
			outlines = append(outlines, imgproc.BoundingRect(approx))
		}
	}

	var tables []Table
	for i, r := range outlines {
		bounds := expand(r, edgeExpand, gray.Bounds())
		if cells := cellsIn(gray, bounds); len(cells) > 0 {
			tables = append(tables, Table{Index: i + 1, Bounds: bounds, Cells: cells})
		}
	}
	return tables
}
