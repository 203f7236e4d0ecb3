package pdf

import (
	"math"
	"sort"
	"strings"
)

const (
	fallbackFontSize = 10
	wordGap          = 0.2
)

type glyph struct {
	X, W     float64
	FontSize float64
	S        string
}

type line struct {
	Y      float64
	Glyphs []glyph
}

type cell struct {
	X    float64
	Text string
}

// detectTables finds runs of at least two consecutive lines that each split
// into two or more cells. Cells are separated by a horizontal gap wider than
// gap times the font size. Each run becomes one grid whose columns are
// anchored on its widest line; a line lacking a column gets a nil cell.
func detectTables(lines []line, gap float64) [][][]any {
	var grids [][][]any
	var block [][]cell
	flush := func() {
		if len(block) >= 2 {
			grids = append(grids, gridFromBlock(block))
		}
		block = nil
	}
	for _, l := range lines {
		cells := splitCells(l.Glyphs, gap)
		if len(cells) < 2 {
			flush()
			continue
		}
		block = append(block, cells)
	}
	flush()
	return grids
}

func splitCells(glyphs []glyph, gap float64) []cell {
	if len(glyphs) == 0 {
		return nil
	}
	sorted := make([]glyph, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var cells []cell
	var b strings.Builder
	cur := cell{X: sorted[0].X}
	end := sorted[0].X
	emit := func() {
		if text := strings.TrimSpace(b.String()); text != "" {
			cur.Text = text
			cells = append(cells, cur)
		}
		b.Reset()
	}
	for i, g := range sorted {
		size := g.FontSize
		if size <= 0 {
			size = fallbackFontSize
		}
		if i > 0 && g.X-end > gap*size {
			emit()
			cur = cell{X: g.X}
		}
		if strings.TrimSpace(b.String()) == "" && strings.TrimSpace(g.S) != "" {
			cur.X = g.X
		}
		b.WriteString(g.S)
		end = math.Max(end, g.X+g.W)
	}
	emit()
	return cells
}

func gridFromBlock(block [][]cell) [][]any {
	anchor := block[0]
	for _, cells := range block[1:] {
		if len(cells) > len(anchor) {
			anchor = cells
		}
	}

	grid := make([][]any, 0, len(block))
	for _, cells := range block {
		row := make([]any, len(anchor))
		for _, c := range cells {
			col := nearestColumn(anchor, c.X)
			if prev, ok := row[col].(string); ok {
				row[col] = prev + " " + c.Text
				continue
			}
			row[col] = c.Text
		}
		grid = append(grid, row)
	}
	return grid
}

func nearestColumn(anchor []cell, x float64) int {
	best, bestDist := 0, math.Inf(1)
	for i, a := range anchor {
		if d := math.Abs(a.X - x); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
