package segment

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/docfields/constants"
)

var (
	gridXs = []int{20, 140, 260, 380}
	gridYs = []int{20, 100, 180}
)

// ruledPage draws a 2×3 ruled table with lines of the given thickness.
func ruledPage(w, h, thickness int) *image.Gray {
	page := image.NewGray(image.Rect(0, 0, w, h))
	draw.Draw(page, page.Bounds(), &image.Uniform{C: color.Gray{Y: 255}}, image.Point{}, draw.Src)
	black := &image.Uniform{C: color.Gray{Y: 0}}
	right := gridXs[len(gridXs)-1] + thickness
	bottom := gridYs[len(gridYs)-1] + thickness
	for _, x := range gridXs {
		draw.Draw(page, image.Rect(x, gridYs[0], x+thickness, bottom), black, image.Point{}, draw.Src)
	}
	for _, y := range gridYs {
		draw.Draw(page, image.Rect(gridXs[0], y, right, y+thickness), black, image.Point{}, draw.Src)
	}
	return page
}

// expectedCentres are the centres of the six cells in reading order.
func expectedCentres() []image.Point {
	var pts []image.Point
	for r := 0; r < len(gridYs)-1; r++ {
		for c := 0; c < len(gridXs)-1; c++ {
			pts = append(pts, image.Pt((gridXs[c]+gridXs[c+1])/2, (gridYs[r]+gridYs[r+1])/2))
		}
	}
	return pts
}

func assertGrid(t *testing.T, cells []image.Rectangle) {
	t.Helper()
	rows := Rows(cells)
	require.Len(t, rows, 2)
	centres := expectedCentres()
	k := 0
	for _, row := range rows {
		require.Len(t, row, 3)
		for _, cell := range row {
			assert.True(t, centres[k].In(cell), "cell %d %v should contain %v", k+1, cell, centres[k])
			k++
		}
	}
}

func TestCells_StructuralGrid(t *testing.T) {
	page := ruledPage(400, 200, 2)
	cells := Cells(page, image.Point{})

	// the table outline plus six cells
	require.Len(t, cells, 7)
	assert.Equal(t, image.Rect(18, 18, 384, 184), cells[0])
	assert.Equal(t, image.Rect(24, 24, 138, 98), cells[1])
	assert.Equal(t, image.Rect(144, 24, 258, 98), cells[2])
	assert.Equal(t, image.Rect(24, 104, 138, 178), cells[4])
	assertGrid(t, cells)
}

func TestCells_Offset(t *testing.T) {
	page := ruledPage(400, 200, 2)
	cells := Cells(page, image.Pt(100, 50))
	require.NotEmpty(t, cells)
	assert.Equal(t, image.Rect(124, 74, 238, 148), cells[1])
}

func TestCells_IgnoresNoise(t *testing.T) {
	page := image.NewGray(image.Rect(0, 0, 200, 100))
	draw.Draw(page, page.Bounds(), &image.Uniform{C: color.Gray{Y: 255}}, image.Point{}, draw.Src)
	// short strokes and a dot, none long enough to be a ruling
	draw.Draw(page, image.Rect(10, 10, 30, 12), &image.Uniform{C: color.Gray{}}, image.Point{}, draw.Src)
	draw.Draw(page, image.Rect(50, 40, 52, 60), &image.Uniform{C: color.Gray{}}, image.Point{}, draw.Src)
	draw.Draw(page, image.Rect(100, 50, 103, 53), &image.Uniform{C: color.Gray{}}, image.Point{}, draw.Src)
	assert.Empty(t, Cells(page, image.Point{}))
}

func TestOuterTables(t *testing.T) {
	page := ruledPage(400, 200, 2)
	tables := OuterTables(page)
	require.Len(t, tables, 1)
	tbl := tables[0]
	assert.Equal(t, 1, tbl.Index)
	assert.True(t, image.Rect(20, 20, 382, 182).In(tbl.Bounds), "bounds %v", tbl.Bounds)
	assert.True(t, tbl.Bounds.In(page.Bounds()))
	assert.Len(t, tbl.Cells, 7)
	assertGrid(t, tbl.Cells)
}

func TestEdgeTables(t *testing.T) {
	page := ruledPage(400, 210, 4)
	tables := EdgeTables(page)
	require.Len(t, tables, 1)
	assert.True(t, image.Rect(20, 20, 384, 184).In(tables[0].Bounds), "bounds %v", tables[0].Bounds)
	assertGrid(t, tables[0].Cells)
}

func TestSegmenter_Tables(t *testing.T) {
	ctx := context.Background()

	s := New("", nil)
	assert.Equal(t, constants.StrategyStructural, s.Strategy())
	tables, err := s.Tables(ctx, ruledPage(400, 200, 2))
	require.NoError(t, err)
	require.Len(t, tables, 1)

	blank := image.NewGray(image.Rect(0, 0, 120, 80))
	draw.Draw(blank, blank.Bounds(), &image.Uniform{C: color.Gray{Y: 255}}, image.Point{}, draw.Src)
	tables, err = New(constants.StrategyEdges, nil).Tables(ctx, blank)
	require.NoError(t, err)
	assert.Empty(t, tables)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = s.Tables(canceled, blank)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExpand_ClampsToBounds(t *testing.T) {
	b := image.Rect(0, 0, 100, 100)
	assert.Equal(t, image.Rect(5, 5, 35, 35), expand(image.Rect(10, 10, 30, 30), 5, b))
	assert.Equal(t, image.Rect(0, 0, 28, 28), expand(image.Rect(2, 2, 20, 20), 5, b))
	assert.Equal(t, image.Rect(85, 85, 100, 100), expand(image.Rect(90, 90, 98, 98), 5, b))
}

func TestRows(t *testing.T) {
	cells := []image.Rectangle{
		image.Rect(0, 0, 300, 100),   // outline
		image.Rect(110, 52, 200, 98), // row 2, col 2
		image.Rect(10, 2, 100, 48),   // row 1, col 1
		image.Rect(10, 50, 100, 98),  // row 2, col 1
		image.Rect(110, 4, 200, 50),  // row 1, col 2 (slightly lower)
	}
	rows := Rows(cells)
	require.Len(t, rows, 2)
	assert.Equal(t, []image.Rectangle{image.Rect(10, 2, 100, 48), image.Rect(110, 4, 200, 50)}, rows[0])
	assert.Equal(t, []image.Rectangle{image.Rect(10, 50, 100, 98), image.Rect(110, 52, 200, 98)}, rows[1])

	assert.Nil(t, Rows(nil))
}
