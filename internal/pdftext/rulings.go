package pdftext

import (
	"math"

	"github.com/ledongthuc/pdf"
)

// affine is a PDF transformation matrix [a b c d e f].
type affine [6]float64

var identity = affine{1, 0, 0, 1, 0, 0}

// then returns the transform that applies m first and n second.
func (m affine) then(n affine) affine {
	return affine{
		m[0]*n[0] + m[1]*n[2],
		m[0]*n[1] + m[1]*n[3],
		m[2]*n[0] + m[3]*n[2],
		m[2]*n[1] + m[3]*n[3],
		m[4]*n[0] + m[5]*n[2] + n[4],
		m[4]*n[1] + m[5]*n[3] + n[5],
	}
}

func (m affine) apply(x, y float64) pdf.Point {
	return pdf.Point{X: m[0]*x + m[2]*y + m[4], Y: m[1]*x + m[3]*y + m[5]}
}

// pathBuilder collects the current path in device space.
type pathBuilder struct {
	rects []pdf.Rect // from re
	lines []pdf.Rect // straight segments, as degenerate boxes
	start pdf.Point
	cur   pdf.Point
	open  bool
}

func (b *pathBuilder) moveTo(p pdf.Point) {
	b.start, b.cur, b.open = p, p, true
}

func (b *pathBuilder) lineTo(p pdf.Point) {
	if b.open {
		b.lines = append(b.lines, segmentBox(b.cur, p))
	}
	b.cur, b.open = p, true
}

func (b *pathBuilder) close() {
	if b.open && b.cur != b.start {
		b.lines = append(b.lines, segmentBox(b.cur, b.start))
	}
	b.cur = b.start
}

func (b *pathBuilder) reset() { *b = pathBuilder{} }

// segmentBox returns the bounding box of an axis-aligned segment. Diagonal
// segments never form table rulings and come back empty.
func segmentBox(p, q pdf.Point) pdf.Rect {
	if math.Abs(p.X-q.X) > rulingThickness && math.Abs(p.Y-q.Y) > rulingThickness {
		return pdf.Rect{}
	}
	return pdf.Rect{
		Min: pdf.Point{X: math.Min(p.X, q.X), Y: math.Min(p.Y, q.Y)},
		Max: pdf.Point{X: math.Max(p.X, q.X), Y: math.Max(p.Y, q.Y)},
	}
}

// PageRulings returns the painted rectangles and stroked straight segments
// of a page in device space, the space the library reports glyphs in.
// Rectangles that only clip (re W n) are dropped.
func PageRulings(p pdf.Page) []pdf.Rect {
	contents := p.V.Key("Contents")
	if contents.Kind() != pdf.Array {
		return streamRulings(contents)
	}
	var out []pdf.Rect
	for i := 0; i < contents.Len(); i++ {
		out = append(out, streamRulings(contents.Index(i))...)
	}
	return out
}

func streamRulings(strm pdf.Value) []pdf.Rect {
	if strm.Kind() != pdf.Stream {
		return nil
	}
	var (
		out   []pdf.Rect
		ctm   = identity
		saved []affine
		path  pathBuilder
	)
	paint := func(stroke bool) {
		out = append(out, path.rects...)
		if stroke {
			for _, l := range path.lines {
				if l != (pdf.Rect{}) {
					out = append(out, l)
				}
			}
		}
		path.reset()
	}

	pdf.Interpret(strm, func(stk *pdf.Stack, op string) {
		args := make([]float64, stk.Len())
		for i := len(args) - 1; i >= 0; i-- {
			args[i] = stk.Pop().Float64()
		}
		switch op {
		case "q":
			saved = append(saved, ctm)
		case "Q":
			if n := len(saved); n > 0 {
				ctm, saved = saved[n-1], saved[:n-1]
			}
		case "cm":
			if len(args) == 6 {
				ctm = affine{args[0], args[1], args[2], args[3], args[4], args[5]}.then(ctm)
			}
		case "m":
			if len(args) == 2 {
				path.moveTo(ctm.apply(args[0], args[1]))
			}
		case "l":
			if len(args) == 2 {
				path.lineTo(ctm.apply(args[0], args[1]))
			}
		case "h":
			path.close()
		case "re":
			if len(args) != 4 {
				return
			}
			x, y, w, h := args[0], args[1], args[2], args[3]
			corners := []pdf.Point{
				ctm.apply(x, y), ctm.apply(x+w, y), ctm.apply(x+w, y+h), ctm.apply(x, y+h),
			}
			r := pdf.Rect{Min: corners[0], Max: corners[0]}
			for _, c := range corners[1:] {
				r.Min.X, r.Min.Y = math.Min(r.Min.X, c.X), math.Min(r.Min.Y, c.Y)
				r.Max.X, r.Max.Y = math.Max(r.Max.X, c.X), math.Max(r.Max.Y, c.Y)
			}
			path.rects = append(path.rects, r)
			path.moveTo(corners[0])
		case "S", "B", "B*":
			paint(true)
		case "s", "b", "b*":
			path.close()
			paint(true)
		case "f", "F", "f*":
			paint(false)
		case "n":
			path.reset()
		}
	})
	return out
}
