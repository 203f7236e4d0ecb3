package pdf

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	lpdf "github.com/ledongthuc/pdf"

	"github.com/sultanMIB/pdf-ui/internal/common"
	"github.com/sultanMIB/pdf-ui/internal/extract"
)

// ExtractPages returns one Page per physical page in order. With IsolatePages
// a page that fails is returned with Err set and the walk continues; without
// it the first page failure fails the whole document.
func (e *Extractor) ExtractPages(ctx context.Context, data []byte) ([]extract.Page, error) {
	log := common.LoggerFrom(ctx, e.logger)

	r, err := openReader(data)
	if err != nil {
		return nil, err
	}

	total := r.NumPage()
	if e.cfg.MaxPages > 0 && total > e.cfg.MaxPages {
		log.Warn("pdf.pages.truncated", "pages", total, "max_pages", e.cfg.MaxPages)
		total = e.cfg.MaxPages
	}

	pages := make([]extract.Page, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := e.extractPage(r, i)
		if p.Err != nil {
			if !e.cfg.IsolatePages {
				return nil, fmt.Errorf("%w: page %d: %w", common.ErrMalformedDocument, i, p.Err)
			}
			log.Warn("pdf.page.failed", "page", i, "error", p.Err)
		}
		pages = append(pages, p)
	}
	log.Debug("pdf.pages.extracted", "pages", len(pages))
	return pages, nil
}

func openReader(data []byte) (r *lpdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r, err = nil, common.RecoverError(common.ErrMalformedDocument, rec)
		}
	}()
	r, err = lpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrMalformedDocument, err)
	}
	return r, nil
}

// extractPage runs in its own recover scope; the parser panics on some
// malformed content streams.
func (e *Extractor) extractPage(r *lpdf.Reader, num int) (p extract.Page) {
	p.Number = num
	defer func() {
		if rec := recover(); rec != nil {
			p = extract.Page{Number: num, Err: common.RecoverError(common.ErrPageFailed, rec)}
		}
	}()

	page := r.Page(num)
	if page.V.IsNull() {
		return p
	}

	lines := linesFromContent(page.Content().Text, e.cfg.Normalization)
	p.Text = Normalize(pageText(lines), e.cfg.Normalization)
	p.Grids = detectTables(lines, e.cfg.ColumnGap)
	return p
}

// linesFromContent groups positioned glyphs into lines by baseline, top to
// bottom, each line ordered left to right. A glyph joins the current line
// when its baseline is within half a font size of the line's.
func linesFromContent(texts []lpdf.Text, form string) []line {
	glyphs := make([]glyph, 0, len(texts))
	ys := make([]float64, 0, len(texts))
	for _, t := range texts {
		if t.S == "" {
			continue
		}
		g := glyph{X: t.X, W: t.W, FontSize: t.FontSize, S: applyForm(t.S, form)}
		if strings.TrimSpace(g.S) == "" {
			// TJ ends with a synthetic "\n"; whitespace only ever separates words here
			g.S = " "
		}
		glyphs = append(glyphs, g)
		ys = append(ys, t.Y)
	}
	order := make([]int, len(glyphs))
	for i := range order {
		order[i] = i
	}
	// PDF space grows upwards; read top to bottom.
	sort.SliceStable(order, func(a, b int) bool { return ys[order[a]] > ys[order[b]] })

	var out []line
	for _, idx := range order {
		g, y := glyphs[idx], ys[idx]
		if n := len(out); n > 0 && out[n-1].Y-y <= baselineTolerance(g.FontSize) {
			out[n-1].Glyphs = append(out[n-1].Glyphs, g)
			continue
		}
		out = append(out, line{Y: y, Glyphs: []glyph{g}})
	}
	for i := range out {
		gs := out[i].Glyphs
		sort.SliceStable(gs, func(a, b int) bool { return gs[a].X < gs[b].X })
	}
	return out
}

func baselineTolerance(size float64) float64 {
	if size <= 0 {
		size = fallbackFontSize
	}
	return math.Max(1, size/2)
}

// pageText renders lines separated by newlines. Within a line a space goes
// where the gap to the previous glyph is wider than a fifth of the font size;
// runs of blank glyphs collapse to one space.
func pageText(lines []line) string {
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		end := math.Inf(-1)
		prevSpace := true
		for _, g := range l.Glyphs {
			size := g.FontSize
			if size <= 0 {
				size = fallbackFontSize
			}
			prevEnd := end
			end = math.Max(end, g.X+g.W)
			if g.S == " " {
				if !prevSpace {
					b.WriteByte(' ')
				}
				prevSpace = true
				continue
			}
			if !prevSpace && g.X-prevEnd > size*wordGap {
				b.WriteByte(' ')
			}
			b.WriteString(g.S)
			prevSpace = false
		}
	}
	return b.String()
}
