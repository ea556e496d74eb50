package imgproc

import (
	"image"
	"math"
)

// ContourArea is the polygon area enclosed by c (shoelace formula).
func ContourArea(c Contour) float64 {
	if len(c) < 3 {
		return 0
	}
	var s int
	for i := range c {
		a, b := c[i], c[(i+1)%len(c)]
		s += a.X*b.Y - b.X*a.Y
	}
	return math.Abs(float64(s)) / 2
}

// ArcLength is the perimeter of c; closed adds the segment back to the first point.
func ArcLength(c Contour, closed bool) float64 {
	if len(c) < 2 {
		return 0
	}
	var l float64
	for i := 1; i < len(c); i++ {
		l += dist(c[i-1], c[i])
	}
	if closed {
		l += dist(c[len(c)-1], c[0])
	}
	return l
}

// BoundingRect is the smallest rectangle containing every point of c.
func BoundingRect(c Contour) image.Rectangle {
	if len(c) == 0 {
		return image.Rectangle{}
	}
	r := image.Rectangle{Min: c[0], Max: c[0]}
	for _, p := range c[1:] {
		r.Min.X = min(r.Min.X, p.X)
		r.Min.Y = min(r.Min.Y, p.Y)
		r.Max.X = max(r.Max.X, p.X)
		r.Max.Y = max(r.Max.Y, p.Y)
	}
	r.Max = r.Max.Add(image.Pt(1, 1))
	return r
}

// ApproxPolyDP simplifies c with the Douglas-Peucker algorithm so that no
// dropped point lies farther than epsilon from the result. A closed contour
// is split at the point farthest from its first point and both halves are
// simplified independently.
func ApproxPolyDP(c Contour, epsilon float64, closed bool) Contour {
	if len(c) < 3 {
		return append(Contour(nil), c...)
	}
	if !closed {
		return simplify(c, epsilon)
	}
	far, best := 0, -1.0
	for i, p := range c {
		if d := dist(c[0], p); d > best {
			far, best = i, d
		}
	}
	if far == 0 {
		return Contour{c[0]}
	}
	first := simplify(c[:far+1], epsilon)
	tail := make(Contour, 0, len(c)-far+1)
	tail = append(tail, c[far:]...)
	tail = append(tail, c[0])
	second := simplify(tail, epsilon)

	out := make(Contour, 0, len(first)+len(second))
	out = append(out, first...)
	out = append(out, second[1:len(second)-1]...)
	return out
}

// simplify keeps both endpoints of an open polyline.
func simplify(pts Contour, epsilon float64) Contour {
	n := len(pts)
	if n <= 2 {
		return append(Contour(nil), pts...)
	}
	keep := make([]bool, n)
	keep[0], keep[n-1] = true, true
	type span struct{ a, b int }
	stack := []span{{0, n - 1}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		idx, dmax := -1, epsilon
		for i := s.a + 1; i < s.b; i++ {
			if d := segmentDistance(pts[i], pts[s.a], pts[s.b]); d > dmax {
				idx, dmax = i, d
			}
		}
		if idx >= 0 {
			keep[idx] = true
			stack = append(stack, span{s.a, idx}, span{idx, s.b})
		}
	}
	out := make(Contour, 0, n)
	for i, k := range keep {
		if k {
			out = append(out, pts[i])
		}
	}
	return out
}

func segmentDistance(p, a, b image.Point) float64 {
	if a == b {
		return dist(p, a)
	}
	dx, dy := float64(b.X-a.X), float64(b.Y-a.Y)
	cross := dx*float64(p.Y-a.Y) - dy*float64(p.X-a.X)
	return math.Abs(cross) / math.Hypot(dx, dy)
}

func dist(a, b image.Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}
