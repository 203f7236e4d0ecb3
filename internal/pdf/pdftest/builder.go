// Package pdftest assembles small, well-formed PDF documents for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"strings"
)

// GlyphWidth is the advance of every glyph at 12pt: 556/1000 em.
const GlyphWidth = 0.556 * 12

// Text is one string drawn at (X, Y) in 12pt Helvetica.
type Text struct {
	X, Y float64
	S    string
}

// Page is the content of one page. Raw, when set, replaces the generated
// content stream verbatim. Matrix positions text with Tm instead of Td.
type Page struct {
	Texts  []Text
	Raw    string
	Matrix bool
}

// Doc describes a document. Info is written only when NoInfo is false.
type Doc struct {
	Title        string
	Author       string
	CreationDate string
	NoInfo       bool
	Pages        []Page
}

// Lines stacks ASCII lines at the left margin from the top of the page.
func Lines(lines ...string) Page {
	p := Page{}
	y := 720.0
	for _, l := range lines {
		p.Texts = append(p.Texts, Text{X: 72, Y: y, S: l})
		y -= 16
	}
	return p
}

// Words draws each word of line separately on baseline y starting at x, at
// the advance the font gives, so word gaps are one space wide.
func Words(x, y float64, line string) []Text {
	var out []Text
	for _, w := range strings.Fields(line) {
		out = append(out, Text{X: x, Y: y, S: w})
		x += GlyphWidth * float64(len(w)+1)
	}
	return out
}

// Row draws cells on one baseline at the given x offsets.
func Row(y float64, xs []float64, cells ...string) []Text {
	out := make([]Text, 0, len(cells))
	for i, c := range cells {
		out = append(out, Text{X: xs[i], Y: y, S: c})
	}
	return out
}

// Build renders d with a correct cross-reference table.
func Build(d Doc) []byte {
	var objs []string
	add := func(body string) int {
		objs = append(objs, body)
		return len(objs)
	}

	catalog := add("") // filled once the page tree number is known
	pagesRef := add("")
	font := add(fmt.Sprintf("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 126 /Widths [%s] >>", widths()))

	var kids []string
	for _, p := range d.Pages {
		content := p.Raw
		if content == "" {
			content = stream(p.Texts, p.Matrix)
		}
		c := add(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
		pg := add(fmt.Sprintf("<< /Type /Page /Parent %d 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>", pagesRef, font, c))
		kids = append(kids, fmt.Sprintf("%d 0 R", pg))
	}
	objs[catalog-1] = fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", pagesRef)
	objs[pagesRef-1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(kids))

	info := 0
	if !d.NoInfo {
		var fields []string
		if d.Title != "" {
			fields = append(fields, "/Title "+literal(d.Title))
		}
		if d.Author != "" {
			fields = append(fields, "/Author "+literal(d.Author))
		}
		if d.CreationDate != "" {
			fields = append(fields, "/CreationDate "+literal(d.CreationDate))
		}
		fields = append(fields, "/Producer (pdftest)")
		info = add("<< " + strings.Join(fields, " ") + " >>")
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, body := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R", len(objs)+1, catalog)
	if info > 0 {
		fmt.Fprintf(&buf, " /Info %d 0 R", info)
	}
	fmt.Fprintf(&buf, " >>\nstartxref\n%d\n%%%%EOF\n", xref)
	return buf.Bytes()
}

func stream(texts []Text, matrix bool) string {
	var b strings.Builder
	for _, t := range texts {
		if matrix {
			fmt.Fprintf(&b, "BT /F1 12 Tf 1 0 0 1 %.2f %.2f Tm %s Tj ET\n", t.X, t.Y, literal(t.S))
			continue
		}
		fmt.Fprintf(&b, "BT /F1 12 Tf %.2f %.2f Td %s Tj ET\n", t.X, t.Y, literal(t.S))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// widths gives every printable ASCII glyph the same advance so positioned
// text keeps its order.
func widths() string {
	w := make([]string, 126-32+1)
	for i := range w {
		w[i] = "556"
	}
	return strings.Join(w, " ")
}

func literal(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return "(" + r.Replace(s) + ")"
}
