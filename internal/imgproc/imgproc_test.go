package imgproc

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filled(w, h int, v uint8) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for i := range g.Pix {
		g.Pix[i] = v
	}
	return g
}

func fillRect(g *image.Gray, r image.Rectangle, v uint8) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			g.SetGray(x, y, color.Gray{Y: v})
		}
	}
}

func frame(g *image.Gray, r image.Rectangle, thickness int, v uint8) {
	fillRect(g, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+thickness), v)
	fillRect(g, image.Rect(r.Min.X, r.Max.Y-thickness, r.Max.X, r.Max.Y), v)
	fillRect(g, image.Rect(r.Min.X, r.Min.Y, r.Min.X+thickness, r.Max.Y), v)
	fillRect(g, image.Rect(r.Max.X-thickness, r.Min.Y, r.Max.X, r.Max.Y), v)
}

func TestThreshold(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 4, 1))
	copy(g.Pix, []uint8{50, 100, 101, 200})

	assert.Equal(t, []uint8{0, 0, 255, 255}, Threshold(g, 100, White, false).Pix)
	assert.Equal(t, []uint8{255, 255, 0, 0}, Threshold(g, 100, White, true).Pix)
}

func TestThresholdOtsu_Bimodal(t *testing.T) {
	g := filled(10, 10, 230)
	fillRect(g, image.Rect(0, 0, 5, 10), 20)

	th := Otsu(g)
	assert.GreaterOrEqual(t, th, uint8(20))
	assert.Less(t, th, uint8(230))

	inv := ThresholdOtsu(g, true)
	assert.Equal(t, White, inv.GrayAt(1, 1).Y)
	assert.Equal(t, Black, inv.GrayAt(8, 8).Y)
}

func TestAdaptiveGaussian_MarksDarkStrokes(t *testing.T) {
	g := filled(40, 40, 255)
	fillRect(g, image.Rect(0, 20, 40, 22), 0)

	bin := AdaptiveGaussian(g, 15, 5, true)
	assert.Equal(t, White, bin.GrayAt(10, 20).Y)
	assert.Equal(t, Black, bin.GrayAt(10, 5).Y)
	assert.Equal(t, Black, bin.GrayAt(10, 30).Y)
}

func TestMorphology(t *testing.T) {
	g := filled(9, 9, 0)
	g.SetGray(4, 4, color.Gray{Y: 255})

	assert.Equal(t, 9, CountNonZero(Dilate(g, 3, 3, 1)))
	assert.Equal(t, 25, CountNonZero(Dilate(g, 3, 3, 2)))
	assert.Equal(t, 1, CountNonZero(Close(g, 3, 3)))
	assert.Equal(t, 0, CountNonZero(Open(g, 3, 3)))
	assert.Equal(t, g.Pix, Open(g, 1, 1).Pix)
}

func TestOpen_DirectionalKernels(t *testing.T) {
	g := filled(60, 60, 0)
	fillRect(g, image.Rect(5, 5, 45, 6), 255)   // horizontal stroke
	fillRect(g, image.Rect(50, 5, 51, 45), 255) // vertical stroke

	h := Open(g, 25, 1)
	v := Open(g, 1, 25)
	assert.Equal(t, 40, CountNonZero(h))
	assert.Equal(t, White, h.GrayAt(20, 5).Y)
	assert.Equal(t, Black, h.GrayAt(50, 20).Y)
	assert.Equal(t, 40, CountNonZero(v))
	assert.Equal(t, 80, CountNonZero(Add(h, v)))
}

func TestMedianBlur_RemovesSpeckle(t *testing.T) {
	g := filled(7, 7, 0)
	g.SetGray(3, 3, color.Gray{Y: 255})
	assert.Equal(t, 0, CountNonZero(MedianBlur(g, 3)))
}

func TestUpscaleAndCrop(t *testing.T) {
	g := filled(10, 6, 128)
	up := Upscale(g, 2)
	assert.Equal(t, image.Rect(0, 0, 20, 12), up.Bounds())
	assert.Equal(t, uint8(128), up.GrayAt(7, 7).Y)

	c := Crop(g, image.Rect(-5, 2, 4, 100))
	assert.Equal(t, image.Rect(0, 0, 4, 4), c.Bounds())
}

func TestAdd_Saturates(t *testing.T) {
	a := filled(2, 2, 200)
	b := filled(2, 2, 100)
	assert.Equal(t, uint8(255), Add(a, b).GrayAt(0, 0).Y)
}

func TestCanny_StepEdge(t *testing.T) {
	g := filled(20, 10, 0)
	fillRect(g, image.Rect(10, 0, 20, 10), 255)

	edges := Canny(g, 50, 150)
	assert.Equal(t, 10, CountNonZero(edges))
	for y := 0; y < 10; y++ {
		assert.Equal(t, White, edges.GrayAt(9, y).Y)
	}
}

func TestFindContours_FilledRect(t *testing.T) {
	g := filled(30, 20, 0)
	fillRect(g, image.Rect(5, 5, 15, 11), 255)

	cs := FindContours(g, RetrieveExternal)
	require.Len(t, cs, 1)
	assert.Equal(t, image.Rect(5, 5, 15, 11), BoundingRect(cs[0]))
	assert.Equal(t, 45.0, ContourArea(cs[0]))
	assert.Equal(t, 28.0, ArcLength(cs[0], true))

	poly := ApproxPolyDP(cs[0], 1, true)
	assert.Len(t, poly, 4)
	assert.Equal(t, image.Pt(5, 5), poly[0])
}

func TestFindContours_FrameWithHole(t *testing.T) {
	g := filled(40, 30, 0)
	frame(g, image.Rect(5, 5, 25, 17), 2, 255)

	list := FindContours(g, RetrieveList)
	require.Len(t, list, 2)
	assert.Equal(t, image.Rect(5, 5, 25, 17), BoundingRect(list[0]))
	assert.Equal(t, image.Rect(7, 7, 23, 15), BoundingRect(list[1]))
	assert.Len(t, ApproxPolyDP(list[1], 0.02*ArcLength(list[1], true), true), 4)

	ext := FindContours(g, RetrieveExternal)
	require.Len(t, ext, 1)
	assert.Equal(t, image.Rect(5, 5, 25, 17), BoundingRect(ext[0]))
}

func TestFindContours_NestedComponent(t *testing.T) {
	g := filled(40, 30, 0)
	frame(g, image.Rect(5, 5, 35, 25), 2, 255)
	fillRect(g, image.Rect(15, 12, 20, 16), 255)

	assert.Len(t, FindContours(g, RetrieveExternal), 1)
	assert.Len(t, FindContours(g, RetrieveList), 3)
}

func TestFindContours_SinglePixelAndEmpty(t *testing.T) {
	g := filled(5, 5, 0)
	assert.Empty(t, FindContours(g, RetrieveList))

	g.SetGray(2, 2, color.Gray{Y: 255})
	cs := FindContours(g, RetrieveExternal)
	require.Len(t, cs, 1)
	assert.Equal(t, Contour{image.Pt(2, 2)}, cs[0])
	assert.Equal(t, 0.0, ContourArea(cs[0]))
}

func TestApproxPolyDP_OpenLine(t *testing.T) {
	line := Contour{{0, 0}, {1, 0}, {2, 1}, {3, 0}, {4, 0}}
	assert.Equal(t, Contour{{0, 0}, {4, 0}}, ApproxPolyDP(line, 1.5, false))
	assert.Len(t, ApproxPolyDP(line, 0.5, false), 5-2)
}
