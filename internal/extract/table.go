package extract

import (
	"fmt"

	"github.com/sultanMIB/pdf-ui/internal/entity"
)

// NormalizeTable converts a raw cell grid into a Table. Row 0 becomes the
// headers, the rest become rows. nil cells become "", everything else is
// rendered with fmt.Sprint.
func NormalizeTable(page, index int, grid [][]any) entity.Table {
	t := entity.Table{
		Page:       page,
		TableIndex: index,
		Headers:    []string{},
		Rows:       [][]string{},
	}
	if len(grid) == 0 {
		return t
	}

	t.Headers = cellStrings(grid[0])
	for _, row := range grid[1:] {
		t.Rows = append(t.Rows, cellStrings(row))
	}
	return t
}

// NormalizeTables applies NormalizeTable to each grid of a page, numbering from 1.
func NormalizeTables(page int, grids [][][]any) []entity.Table {
	out := make([]entity.Table, 0, len(grids))
	for i, g := range grids {
		out = append(out, NormalizeTable(page, i+1, g))
	}
	return out
}

func cellStrings(row []any) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		if cell == nil {
			continue
		}
		out[i] = fmt.Sprint(cell)
	}
	return out
}
