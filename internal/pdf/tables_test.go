package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// word lays out s as one glyph per rune, 6 units wide, starting at x.
func word(x float64, s string) []glyph {
	var out []glyph
	for _, r := range s {
		out = append(out, glyph{X: x, W: 6, FontSize: 10, S: string(r)})
		x += 6
	}
	return out
}

func row(y float64, parts ...[]glyph) line {
	l := line{Y: y}
	for _, p := range parts {
		l.Glyphs = append(l.Glyphs, p...)
	}
	return l
}

func TestSplitCells_GapSeparates(t *testing.T) {
	g := append(word(0, "ab c"), word(100, "d")...)
	cells := splitCells(g, 1.5)
	require.Len(t, cells, 2)
	assert.Equal(t, "ab c", cells[0].Text)
	assert.Equal(t, "d", cells[1].Text)
	assert.Equal(t, float64(100), cells[1].X)
}

func TestDetectTables_HeaderAndRows(t *testing.T) {
	lines := []line{
		row(700, word(0, "Intro paragraph")),
		row(680, word(0, "A"), word(100, "B")),
		row(660, word(0, "1"), word(100, "2")),
		row(640, word(0, "3"), word(100, "4")),
		row(620, word(0, "Closing text")),
	}

	grids := detectTables(lines, 1.5)
	require.Len(t, grids, 1)
	assert.Equal(t, [][]any{{"A", "B"}, {"1", "2"}, {"3", "4"}}, grids[0])
}

func TestDetectTables_MissingCellIsNil(t *testing.T) {
	lines := []line{
		row(700, word(0, "Name"), word(100, "Qty"), word(200, "Price")),
		row(680, word(0, "Pen"), word(200, "5")),
	}

	grids := detectTables(lines, 1.5)
	require.Len(t, grids, 1)
	assert.Equal(t, []any{"Pen", nil, "5"}, grids[0][1])
}

func TestDetectTables_SeparateBlocks(t *testing.T) {
	lines := []line{
		row(700, word(0, "a"), word(100, "b")),
		row(680, word(0, "c"), word(100, "d")),
		row(660, word(0, "break")),
		row(640, word(0, "e"), word(100, "f")),
		row(620, word(0, "g"), word(100, "h")),
		row(600, word(0, "i"), word(100, "j")),
	}
	grids := detectTables(lines, 1.5)
	require.Len(t, grids, 2)
	assert.Len(t, grids[0], 2)
	assert.Len(t, grids[1], 3)
}

func TestDetectTables_SingleRowIsNotATable(t *testing.T) {
	lines := []line{
		row(700, word(0, "a"), word(100, "b")),
		row(680, word(0, "plain")),
	}
	assert.Empty(t, detectTables(lines, 1.5))
}

func TestNormalize(t *testing.T) {
	// U+FEE3 U+FEA4 U+FEE4 U+FEAA are presentation forms of "محمد"
	assert.Equal(t, "محمد\nline", Normalize("ﻣﺤﻤﺪ  \r\nline", NormNFKC))
	assert.Equal(t, "ﻣ", Normalize("ﻣ", NormNone))
	assert.Equal(t, "a\nb", Normalize("a\rb", NormNFC))
	assert.Equal(t, "", Normalize("", NormNFKC))
}

func TestFileSizeKB(t *testing.T) {
	assert.Equal(t, "0.00", FileSizeKB(0))
	assert.Equal(t, "1.00", FileSizeKB(1024))
	assert.Equal(t, "1.50", FileSizeKB(1536))
}

func TestPageText_SpacesAndBlankRuns(t *testing.T) {
	lines := []line{
		{Y: 700, Glyphs: []glyph{
			{X: 0, W: 6, FontSize: 12, S: "a"},
			{X: 6, W: 6, FontSize: 12, S: " "},
			{X: 12, W: 0, FontSize: 12, S: " "},
			{X: 12, W: 6, FontSize: 12, S: "b"},
			{X: 40, W: 6, FontSize: 12, S: "c"},
		}},
		{Y: 680, Glyphs: []glyph{{X: 0, W: 6, FontSize: 12, S: "d"}}},
	}
	assert.Equal(t, "a b c\nd", pageText(lines))
}
