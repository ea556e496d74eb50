package segment

import (
	"image"
	"sort"
)

// Rows groups cells into rows in reading order: top to bottom by vertical
// centre, left to right inside a row. A rectangle that contains another cell
// (the table outline, merged headers spanning sub-cells) is left out so that
// only leaf cells remain.
func Rows(cells []image.Rectangle) [][]image.Rectangle {
	leaves := leafCells(cells)
	if len(leaves) == 0 {
		return nil
	}
	sort.SliceStable(leaves, func(i, j int) bool {
		return centreY(leaves[i]) < centreY(leaves[j])
	})

	var rows [][]image.Rectangle
	current := []image.Rectangle{leaves[0]}
	anchor := leaves[0]
	for _, c := range leaves[1:] {
		// a new row starts once the centre leaves the anchor's vertical span
		tolerance := min(anchor.Dy(), c.Dy()) / 2
		if centreY(c)-centreY(anchor) > tolerance {
			rows = append(rows, current)
			current = []image.Rectangle{c}
			anchor = c
			continue
		}
		current = append(current, c)
	}
	rows = append(rows, current)

	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].Min.X < row[j].Min.X })
	}
	return rows
}

func leafCells(cells []image.Rectangle) []image.Rectangle {
	var out []image.Rectangle
	for i, c := range cells {
		container := false
		for j, o := range cells {
			if i != j && o != c && o.In(c) {
				container = true
				break
			}
		}
		if !container {
			out = append(out, c)
		}
	}
	return out
}

func centreY(r image.Rectangle) int {
	return (r.Min.Y + r.Max.Y) / 2
}
