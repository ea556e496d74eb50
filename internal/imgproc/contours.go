package imgproc

import "image"

// Contour is a closed boundary polyline in pixel coordinates.
type Contour []image.Point

// RetrievalMode selects which borders FindContours reports.
type RetrievalMode int

const (
	// RetrieveExternal reports only outer borders of components not enclosed by another component.
	RetrieveExternal RetrievalMode = iota
	// RetrieveList reports every outer border and every hole border, without hierarchy.
	RetrieveList
)

// moore lists the 8 neighbours clockwise (y grows downwards) starting west.
var moore = [8]image.Point{
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1},
}

var four = [4]image.Point{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

type region struct {
	start image.Point
	label int32
	size  int
	hole  bool
}

// FindContours traces borders of a binary image (non-zero is foreground).
// Foreground is 8-connected and background 4-connected. Outer borders follow
// foreground pixels; a hole border follows the enclosed background pixels.
// Contours are returned in raster order of their first pixel.
func FindContours(bin *image.Gray, mode RetrievalMode) []Contour {
	bin = normalized(bin)
	w, h := bin.Bounds().Dx(), bin.Bounds().Dy()
	if w == 0 || h == 0 {
		return nil
	}
	fg := func(i int) bool { return bin.Pix[i] != 0 }

	fgLabel := make([]int32, w*h)
	bgLabel := make([]int32, w*h)
	bgOutside := []bool{false}
	var regions []region
	var queue []int

	var nextFg, nextBg int32
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			switch {
			case fg(i) && fgLabel[i] == 0:
				nextFg++
				size := flood(i, w, h, nextFg, fgLabel, moore[:], fg, &queue, nil)
				outer := true
				if mode == RetrieveExternal && x > 0 {
					outer = bgOutside[bgLabel[i-1]]
				}
				if outer {
					regions = append(regions, region{start: image.Pt(x, y), label: nextFg, size: size})
				}
			case !fg(i) && bgLabel[i] == 0:
				nextBg++
				touches := false
				size := flood(i, w, h, nextBg, bgLabel, four[:], func(j int) bool { return !fg(j) }, &queue, &touches)
				bgOutside = append(bgOutside, touches)
				if mode == RetrieveList && !touches {
					regions = append(regions, region{start: image.Pt(x, y), label: nextBg, size: size, hole: true})
				}
			}
		}
	}

	out := make([]Contour, 0, len(regions))
	for _, r := range regions {
		labels, label := fgLabel, r.label
		if r.hole {
			labels = bgLabel
		}
		member := func(p image.Point) bool {
			return p.X >= 0 && p.Y >= 0 && p.X < w && p.Y < h && labels[p.Y*w+p.X] == label
		}
		out = append(out, traceBorder(member, r.start, 4*r.size+16))
	}
	return out
}

// flood labels the component containing seed and returns its pixel count.
// touches, when non-nil, reports whether the component reaches the image border.
func flood(seed, w, h int, label int32, labels []int32, nbrs []image.Point, in func(int) bool, queue *[]int, touches *bool) int {
	q := append((*queue)[:0], seed)
	labels[seed] = label
	size := 0
	for len(q) > 0 {
		i := q[len(q)-1]
		q = q[:len(q)-1]
		size++
		x, y := i%w, i/w
		if touches != nil && (x == 0 || y == 0 || x == w-1 || y == h-1) {
			*touches = true
		}
		for _, d := range nbrs {
			nx, ny := x+d.X, y+d.Y
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			j := ny*w + nx
			if labels[j] == 0 && in(j) {
				labels[j] = label
				q = append(q, j)
			}
		}
	}
	*queue = q
	return size
}

// traceBorder walks the boundary of a region with Moore-neighbour tracing.
// start must be the region's first pixel in raster order. Tracing stops when
// the start pixel is left in the same direction as the first move (Jacob's
// criterion) or after limit steps.
func traceBorder(member func(image.Point) bool, start image.Point, limit int) Contour {
	contour := Contour{start}
	p := start
	back := start.Add(moore[0])
	var second image.Point
	haveSecond := false

	for step := 0; step < limit; step++ {
		from := dirIndex(back.Sub(p))
		prev := back
		var next image.Point
		found := false
		for k := 1; k <= 8; k++ {
			q := p.Add(moore[(from+k)%8])
			if member(q) {
				next, found = q, true
				break
			}
			prev = q
		}
		if !found {
			return contour
		}
		if p == start && haveSecond && next == second {
			break
		}
		if !haveSecond {
			second, haveSecond = next, true
		}
		back = prev
		p = next
		contour = append(contour, p)
	}
	if n := len(contour); n > 1 && contour[n-1] == start {
		contour = contour[:n-1]
	}
	return contour
}

func dirIndex(d image.Point) int {
	for i, m := range moore {
		if m == d {
			return i
		}
	}
	return 0
}
