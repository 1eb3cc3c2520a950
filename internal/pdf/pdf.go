// Package pdf implements a small PDF 1.4 writer sufficient for text
// reports: headings, wrapped paragraphs, and ruled tables on A4 pages
// with the built-in Helvetica fonts.
//
// Text is emitted in WinAnsi encoding; runes outside Latin-1 are replaced
// so the document stays structurally valid for every report language.
package pdf

import (
	"bytes"
	"fmt"
	"strings"
)

const (
	pageWidth  = 595.28 // A4 portrait, points
	pageHeight = 841.89
	marginX    = 50.0
	marginTop  = 56.0
	marginBot  = 56.0

	headingSize = 18.0
	subSize     = 13.0
	bodySize    = 10.0
	lineGap     = 1.45
)

// Doc accumulates pages and serializes them with Bytes.
type Doc struct {
	pages []*page
}

type page struct {
	content bytes.Buffer
	y       float64
}

func New() *Doc {
	d := &Doc{}
	d.AddPage()
	return d
}

// AddPage starts a fresh page; subsequent writes land on it.
func (d *Doc) AddPage() {
	d.pages = append(d.pages, &page{y: pageHeight - marginTop})
}

func (d *Doc) cur() *page { return d.pages[len(d.pages)-1] }

// ensure reserves vertical space, breaking to a new page when the current
// one cannot fit it.
func (d *Doc) ensure(h float64) *page {
	if d.cur().y-h < marginBot {
		d.AddPage()
	}
	return d.cur()
}

// Heading writes a section title.
func (d *Doc) Heading(text string) {
	d.writeLine(text, "F2", headingSize, 0.10, 0.35, 0.66)
	d.cur().y -= headingSize * 0.5
}

// SubHeading writes a secondary title.
func (d *Doc) SubHeading(text string) {
	d.cur().y -= subSize * 0.4
	d.writeLine(text, "F2", subSize, 0.15, 0.15, 0.15)
}

// Text writes a paragraph, wrapping at the page width.
func (d *Doc) Text(text string) {
	for _, para := range strings.Split(text, "\n") {
		if strings.TrimSpace(para) == "" {
			d.cur().y -= bodySize * lineGap * 0.6
			continue
		}
		for _, line := range wrap(para, pageWidth-2*marginX, bodySize) {
			d.writeLine(line, "F1", bodySize, 0.2, 0.2, 0.2)
		}
	}
	d.cur().y -= bodySize * 0.5
}

// Table draws a ruled table with a bold header row. Cells are clipped to
// their column width.
func (d *Doc) Table(headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}
	usable := pageWidth - 2*marginX
	colW := usable / float64(len(headers))
	rowH := bodySize * lineGap * 1.25

	drawRow := func(cells []string, font string) {
		p := d.ensure(rowH)
		top := p.y
		fmt.Fprintf(&p.content, "0.75 0.75 0.75 RG %.2f w %.2f %.2f m %.2f %.2f l S\n",
			0.5, marginX, top, marginX+usable, top)
		for i, cell := range cells {
			if i >= len(headers) {
				break
			}
			x := marginX + colW*float64(i) + 4
			emitText(&p.content, font, bodySize, x, top-bodySize*1.1,
				clip(cell, colW-8, bodySize), 0.2, 0.2, 0.2)
		}
		p.y -= rowH
	}

	drawRow(headers, "F2")
	for _, row := range rows {
		drawRow(row, "F1")
	}
	p := d.cur()
	fmt.Fprintf(&p.content, "0.75 0.75 0.75 RG 0.50 w %.2f %.2f m %.2f %.2f l S\n",
		marginX, p.y, marginX+usable, p.y)
	p.y -= rowH * 0.6
}

func (d *Doc) writeLine(text, font string, size, r, g, b float64) {
	p := d.ensure(size * lineGap)
	p.y -= size * lineGap
	emitText(&p.content, font, size, marginX, p.y, text, r, g, b)
}

func emitText(w *bytes.Buffer, font string, size, x, y float64, text string, r, g, b float64) {
	fmt.Fprintf(w, "BT /%s %.2f Tf %.3f %.3f %.3f rg %.2f %.2f Td (%s) Tj ET\n",
		font, size, r, g, b, x, y, escape(text))
}

// Bytes serializes the document: header, objects, xref, trailer.
func (d *Doc) Bytes() []byte {
	var out bytes.Buffer
	out.WriteString("%PDF-1.4\n")

	// Object ids: 1 catalog, 2 page tree, 3 regular font, 4 bold font,
	// then one page object and one content stream per page.
	total := 4 + 2*len(d.pages)
	offsets := make([]int, total+1)

	writeObj := func(id int, body string) {
		offsets[id] = out.Len()
		fmt.Fprintf(&out, "%d 0 obj\n%s\nendobj\n", id, body)
	}

	kids := make([]string, len(d.pages))
	for i := range d.pages {
		kids[i] = fmt.Sprintf("%d 0 R", 5+2*i)
	}

	writeObj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>",
		strings.Join(kids, " "), len(d.pages)))
	writeObj(3, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	writeObj(4, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica-Bold /Encoding /WinAnsiEncoding >>")

	for i, pg := range d.pages {
		pageID := 5 + 2*i
		contentID := pageID + 1
		writeObj(pageID, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %.2f %.2f] /Contents %d 0 R /Resources << /Font << /F1 3 0 R /F2 4 0 R >> >> >>",
			pageWidth, pageHeight, contentID))

		stream := pg.content.Bytes()
		offsets[contentID] = out.Len()
		fmt.Fprintf(&out, "%d 0 obj\n<< /Length %d >>\nstream\n", contentID, len(stream))
		out.Write(stream)
		out.WriteString("endstream\nendobj\n")
	}

	xref := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n0000000000 65535 f \n", total+1)
	for id := 1; id <= total; id++ {
		fmt.Fprintf(&out, "%010d 00000 n \n", offsets[id])
	}
	fmt.Fprintf(&out, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", total+1, xref)
	return out.Bytes()
}

// ---- text metrics and encoding ----

// charWidth approximates Helvetica advance width as a fraction of size.
// Good enough for wrapping; real metrics are not needed here.
const charWidth = 0.52

func textWidth(s string, size float64) float64 {
	n := 0
	for range s {
		n++
	}
	return float64(n) * charWidth * size
}

func wrap(s string, width, size float64) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if textWidth(line+" "+w, size) > width {
			lines = append(lines, line)
			line = w
			continue
		}
		line += " " + w
	}
	return append(lines, line)
}

func clip(s string, width, size float64) string {
	if textWidth(s, size) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && textWidth(string(runes)+"...", size) > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

// escape produces a WinAnsi-safe PDF string literal. Runes outside
// Latin-1 degrade to '?' rather than corrupting the stream.
func escape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '(' || r == ')' || r == '\\':
			b.WriteByte('\\')
			b.WriteByte(byte(r))
		case r == '\n' || r == '\r' || r == '\t':
			b.WriteByte(' ')
		case r < 32 || r > 255:
			b.WriteByte('?')
		default:
			b.WriteByte(byte(r))
		}
	}
	return b.String()
}
