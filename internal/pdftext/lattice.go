package pdftext

import (
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	// rulingThickness is the largest extent, in points, of a rectangle that is
	// drawn as a line rather than a box.
	rulingThickness = 3.0
	// snapTolerance merges ruling positions closer than this many points.
	snapTolerance = 3.0
)

type ruling struct {
	horizontal bool
	pos        float64 // y for horizontal, x for vertical
	from, to   float64
}

func (r ruling) crosses(o ruling) bool {
	h, v := r, o
	if !h.horizontal {
		h, v = o, r
	}
	return v.pos >= h.from-snapTolerance && v.pos <= h.to+snapTolerance &&
		h.pos >= v.from-snapTolerance && h.pos <= v.to+snapTolerance
}

// LatticeTables builds tables from ruling lines (see PageRulings) and
// places each glyph into the grid cell containing its centre. Thin
// rectangles are rulings; larger boxes contribute their four edges. Rows run
// top to bottom (PDF y descending).
func LatticeTables(texts []pdf.Text, rects []pdf.Rect) [][][]string {
	rulings := rulingsFrom(rects)
	if len(rulings) < 4 {
		return nil
	}

	var tables [][][]string
	for _, group := range connected(rulings) {
		xs, ys := gridLines(group)
		if len(xs) < 2 || len(ys) < 2 || (len(xs)-1)*(len(ys)-1) < 2 {
			continue
		}
		if t := fillGrid(texts, xs, ys); t != nil {
			tables = append(tables, t)
		}
	}
	return tables
}

func rulingsFrom(rects []pdf.Rect) []ruling {
	var out []ruling
	for _, r := range rects {
		x0, x1 := math.Min(r.Min.X, r.Max.X), math.Max(r.Min.X, r.Max.X)
		y0, y1 := math.Min(r.Min.Y, r.Max.Y), math.Max(r.Min.Y, r.Max.Y)
		w, h := x1-x0, y1-y0
		switch {
		case w <= rulingThickness && h <= rulingThickness:
			// dot
		case h <= rulingThickness:
			out = append(out, ruling{horizontal: true, pos: (y0 + y1) / 2, from: x0, to: x1})
		case w <= rulingThickness:
			out = append(out, ruling{pos: (x0 + x1) / 2, from: y0, to: y1})
		default:
			out = append(out,
				ruling{horizontal: true, pos: y0, from: x0, to: x1},
				ruling{horizontal: true, pos: y1, from: x0, to: x1},
				ruling{pos: x0, from: y0, to: y1},
				ruling{pos: x1, from: y0, to: y1},
			)
		}
	}
	return out
}

// connected splits rulings into groups of mutually crossing lines.
func connected(rulings []ruling) [][]ruling {
	parent := make([]int, len(rulings))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	for i := range rulings {
		for j := i + 1; j < len(rulings); j++ {
			if rulings[i].horizontal != rulings[j].horizontal && rulings[i].crosses(rulings[j]) {
				parent[find(i)] = find(j)
			}
		}
	}

	byRoot := map[int][]ruling{}
	var order []int
	for i, r := range rulings {
		root := find(i)
		if _, ok := byRoot[root]; !ok {
			order = append(order, root)
		}
		byRoot[root] = append(byRoot[root], r)
	}

	groups := make([][]ruling, 0, len(order))
	for _, root := range order {
		groups = append(groups, byRoot[root])
	}
	// top of page first
	sort.SliceStable(groups, func(i, j int) bool { return top(groups[i]) > top(groups[j]) })
	return groups
}

func top(group []ruling) float64 {
	t := math.Inf(-1)
	for _, r := range group {
		if r.horizontal {
			t = math.Max(t, r.pos)
		} else {
			t = math.Max(t, r.to)
		}
	}
	return t
}

// gridLines returns column boundaries ascending and row boundaries descending.
func gridLines(group []ruling) (xs, ys []float64) {
	var vx, hy []float64
	for _, r := range group {
		if r.horizontal {
			hy = append(hy, r.pos)
		} else {
			vx = append(vx, r.pos)
		}
	}
	xs = snap(vx)
	ys = snap(hy)
	sort.Sort(sort.Reverse(sort.Float64Slice(ys)))
	return xs, ys
}

// snap sorts values and merges chains of values closer than snapTolerance
// into their mean.
func snap(values []float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var out []float64
	sum, n, last := sorted[0], 1, sorted[0]
	for _, v := range sorted[1:] {
		if v-last <= snapTolerance {
			sum += v
			n++
			last = v
			continue
		}
		out = append(out, sum/float64(n))
		sum, n, last = v, 1, v
	}
	return append(out, sum/float64(n))
}

func fillGrid(texts []pdf.Text, xs, ys []float64) [][]string {
	rows, cols := len(ys)-1, len(xs)-1
	buckets := make([][][]pdf.Text, rows)
	for i := range buckets {
		buckets[i] = make([][]pdf.Text, cols)
	}

	placed := 0
	for _, t := range texts {
		cx := t.X + t.W/2
		cy := t.Y + t.FontSize*0.3
		col := sort.Search(cols, func(i int) bool { return xs[i+1] > cx })
		row := sort.Search(rows, func(i int) bool { return ys[i+1] < cy })
		if col >= cols || row >= rows || cx < xs[0] || cy > ys[0] {
			continue
		}
		buckets[row][col] = append(buckets[row][col], t)
		placed++
	}
	if placed == 0 {
		return nil
	}

	table := make([][]string, rows)
	for r := range buckets {
		table[r] = make([]string, cols)
		for c, glyphs := range buckets[r] {
			table[r][c] = cellText(glyphs)
		}
	}
	return table
}

// cellText lays glyphs out in lines (y descending) and joins the lines with spaces.
func cellText(glyphs []pdf.Text) string {
	if len(glyphs) == 0 {
		return ""
	}
	sorted := append([]pdf.Text(nil), glyphs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y > sorted[j].Y })

	var lines []string
	line := []pdf.Text{sorted[0]}
	for _, g := range sorted[1:] {
		tol := math.Max(line[0].FontSize, g.FontSize) / 2
		if line[0].Y-g.Y > tol {
			lines = append(lines, joinFragments(line))
			line = nil
		}
		line = append(line, g)
	}
	lines = append(lines, joinFragments(line))
	return strings.Join(strings.Fields(strings.Join(lines, " ")), " ")
}
