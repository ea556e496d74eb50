package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/docfields/constants"
	"github.com/joseph-ayodele/docfields/internal/common"
)

// buildPDF writes a one-page PDF with a monospaced WinAnsi font (600 units
// per glyph) and the given content stream.
func buildPDF(content string) []byte {
	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Courier /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 126 /Widths [" +
			strings.TrimSpace(strings.Repeat("600 ", 95)) + "] >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
	}
	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return b.Bytes()
}

const invoiceStream = `BT /F1 12 Tf 72 720 Td (INN 1234567890) Tj ET
BT /F1 12 Tf 72 700 Td (Total 5000) Tj ET
72 600 300 0.5 re
72 570 300 0.5 re
72 540 300 0.5 re
72 540 0.5 60.5 re
222 540 0.5 60.5 re
371.5 540 0.5 60.5 re
f
BT /F1 12 Tf 80 580 Td (BIK) Tj ET
BT /F1 12 Tf 230 580 Td (044525225) Tj ET
BT /F1 12 Tf 80 550 Td (Bank) Tj ET
BT /F1 12 Tf 230 550 Td (Sber) Tj ET`

func TestNative_TextAndLatticeTable(t *testing.T) {
	doc, err := NewNative(0, nil).Read(context.Background(), buildPDF(invoiceStream))
	require.NoError(t, err)
	require.Len(t, doc.Pages, 1)
	assert.Equal(t, constants.MethodTextLayer, doc.Method)

	page := doc.Pages[0]
	assert.Equal(t, 1, page.Number)
	assert.Contains(t, page.Text, "INN 1234567890")
	assert.Contains(t, page.Text, "Total 5000")
	assert.True(t, doc.HasText())
	assert.True(t, strings.HasPrefix(doc.FullText(), "\n--- Страница 1 ---\n"))

	require.Len(t, page.Tables, 1)
	assert.Equal(t, [][]string{{"BIK", "044525225"}, {"Bank", "Sber"}}, page.Tables[0])
}

const tableText = `BT /F1 12 Tf 80 580 Td (BIK) Tj ET
BT /F1 12 Tf 230 580 Td (044525225) Tj ET
BT /F1 12 Tf 80 550 Td (Bank) Tj ET
BT /F1 12 Tf 230 550 Td (Sber) Tj ET`

func TestNative_TableRulings(t *testing.T) {
	want := [][]string{{"BIK", "044525225"}, {"Bank", "Sber"}}
	cases := map[string]string{
		// the same grid at half size under a 2x scale
		"scaled": `q 2 0 0 2 0 0 cm
36 300 150 0.25 re
36 285 150 0.25 re
36 270 150 0.25 re
36 270 0.25 30.25 re
111 270 0.25 30.25 re
185.75 270 0.25 30.25 re
f Q`,
		"stroked": `0.5 w
72 600 m 372 600 l 72 570 m 372 570 l 72 540 m 372 540 l
72 540 m 72 600 l 222 540 m 222 600 l 372 540 m 372 600 l S`,
		// top-down coordinates under a y flip
		"flipped": `q 1 0 0 -1 0 792 cm
72 192 m 372 192 l 72 222 m 372 222 l 72 252 m 372 252 l
72 192 m 72 252 l 222 192 m 222 252 l 372 192 m 372 252 l S Q`,
		"closed boxes": `72 570 150 30 re 222 570 150 30 re 72 540 150 30 re 222 540 150 30 re S`,
	}
	for name, grid := range cases {
		t.Run(name, func(t *testing.T) {
			doc, err := NewNative(0, nil).Read(context.Background(), buildPDF(grid+"\n"+tableText))
			require.NoError(t, err)
			require.Len(t, doc.Pages, 1)
			require.Len(t, doc.Pages[0].Tables, 1)
			assert.Equal(t, want, doc.Pages[0].Tables[0])
		})
	}
}

func TestNative_IgnoresClipAndUnpaintedPaths(t *testing.T) {
	grid := `72 540 300 60 re W n
72 600 m 372 600 l 72 570 m 372 570 l 72 540 m 372 540 l
72 540 m 72 600 l 222 540 m 222 600 l 372 540 m 372 600 l n`
	doc, err := NewNative(0, nil).Read(context.Background(), buildPDF(grid+"\n"+tableText))
	require.NoError(t, err)
	assert.Empty(t, doc.Pages[0].Tables)
	assert.Contains(t, doc.Pages[0].Text, "BIK")
}

func TestAffine(t *testing.T) {
	scale := affine{2, 0, 0, 2, 0, 0}
	shift := affine{1, 0, 0, 1, 10, 20}
	assert.Equal(t, pdf.Point{X: 12, Y: 26}, scale.then(shift).apply(1, 3))
	assert.Equal(t, pdf.Point{X: 22, Y: 46}, shift.then(scale).apply(1, 3))

	flip := affine{1, 0, 0, -1, 0, 792}
	assert.Equal(t, pdf.Point{X: 72, Y: 600}, flip.apply(72, 192))
	assert.Equal(t, identity, identity.then(identity))
}

func TestNative_BadInput(t *testing.T) {
	n := NewNative(0, nil)
	_, err := n.Read(context.Background(), nil)
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = n.Read(context.Background(), []byte("this is not a pdf at all"))
	assert.Error(t, err)
}

func glyphs(s string, x, y, size float64) []pdf.Text {
	var out []pdf.Text
	w := size * 0.6
	for i, r := range s {
		out = append(out, pdf.Text{FontSize: size, X: x + float64(i)*w, Y: y, W: w, S: string(r)})
	}
	return out
}

func box(x0, y0, x1, y1 float64) pdf.Rect {
	return pdf.Rect{Min: pdf.Point{X: x0, Y: y0}, Max: pdf.Point{X: x1, Y: y1}}
}

func TestLatticeTables_BoxCells(t *testing.T) {
	// a 2×3 table drawn as one box per cell, edges shared within tolerance
	var rects []pdf.Rect
	for r := 0; r < 2; r++ {
		for c := 0; c < 3; c++ {
			x0 := 50 + float64(c)*100
			y1 := 500 - float64(r)*20
			rects = append(rects, box(x0, y1-20, x0+100+0.5, y1))
		}
	}
	var texts []pdf.Text
	texts = append(texts, glyphs("Name", 55, 485, 10)...)
	texts = append(texts, glyphs("Qty", 155, 485, 10)...)
	texts = append(texts, glyphs("Widget", 55, 465, 10)...)
	texts = append(texts, glyphs("2", 155, 465, 10)...)
	texts = append(texts, glyphs("100,00", 255, 465, 10)...)
	// outside the grid
	texts = append(texts, glyphs("Footer", 55, 300, 10)...)

	tables := LatticeTables(texts, rects)
	require.Len(t, tables, 1)
	assert.Equal(t, [][]string{
		{"Name", "Qty", ""},
		{"Widget", "2", "100,00"},
	}, tables[0])
}

func TestLatticeTables_MultiLineCellAndSpaces(t *testing.T) {
	rects := []pdf.Rect{
		box(0, 100, 200, 101), box(0, 50, 200, 51), box(0, 0, 200, 1),
		box(0, 0, 1, 101), box(100, 0, 101, 101), box(199, 0, 200, 101),
	}
	var texts []pdf.Text
	texts = append(texts, glyphs("OOO", 5, 80, 10)...)
	texts = append(texts, glyphs("Romashka", 35, 80, 10)...) // wide gap before
	texts = append(texts, glyphs("second", 5, 65, 10)...)
	texts = append(texts, glyphs("x", 105, 20, 10)...)

	tables := LatticeTables(texts, rects)
	require.Len(t, tables, 1)
	assert.Equal(t, "OOO Romashka second", tables[0][0][0])
	assert.Equal(t, "", tables[0][0][1])
	assert.Equal(t, "x", tables[0][1][1])
}

func TestLatticeTables_SeparateTablesTopFirst(t *testing.T) {
	grid := func(x0, y0 float64) []pdf.Rect {
		return []pdf.Rect{
			box(x0, y0+40, x0+100, y0+40.5), box(x0, y0+20, x0+100, y0+20.5), box(x0, y0, x0+100, y0+0.5),
			box(x0, y0, x0+0.5, y0+40.5), box(x0+99.5, y0, x0+100, y0+40.5),
		}
	}
	rects := append(grid(50, 100), grid(50, 600)...)
	texts := append(glyphs("low", 55, 125, 10), glyphs("high", 55, 625, 10)...)

	tables := LatticeTables(texts, rects)
	require.Len(t, tables, 2)
	assert.Equal(t, "high", tables[0][0][0])
	assert.Equal(t, "low", tables[1][0][0])
}

func TestLatticeTables_IgnoresFramesAndEmptyGrids(t *testing.T) {
	// a single page frame is one cell, not a table
	texts := glyphs("body", 100, 400, 10)
	assert.Empty(t, LatticeTables(texts, []pdf.Rect{box(20, 20, 592, 772)}))

	// a grid without any text inside
	rects := []pdf.Rect{box(0, 0, 100, 0.5), box(0, 50, 100, 50.5), box(0, 100, 100, 100.5),
		box(0, 0, 0.5, 100), box(100, 0, 100.5, 100)}
	assert.Empty(t, LatticeTables(texts, rects))
	assert.Empty(t, LatticeTables(nil, nil))
}

func TestSnap(t *testing.T) {
	assert.Equal(t, []float64{1, 10, 20.5}, snap([]float64{20, 1, 10, 21, 0.5, 1.5}))
	assert.Nil(t, snap(nil))
}

type fakeRunner struct {
	out  string
	err  error
	args []string
}

func (f *fakeRunner) Run(_ context.Context, _ string, args ...string) ([]byte, []byte, error) {
	f.args = args
	return []byte(f.out), []byte("boom"), f.err
}

func TestPdftotext_SplitsPages(t *testing.T) {
	r := &fakeRunner{out: "ИНН 1234567890\t\tстрока\n\fвторая страница\n\f"}
	doc, err := NewPdftotext("", r, nil).Read(context.Background(), []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, constants.MethodPDFToText, doc.Method)
	require.Len(t, doc.Pages, 2)
	assert.Equal(t, "ИНН 1234567890 строка", doc.Pages[0].Text)
	assert.Equal(t, 2, doc.Pages[1].Number)
	assert.Equal(t, "вторая страница", doc.Pages[1].Text)
	assert.Equal(t, []string{"-layout", "-enc", "UTF-8", "-eol", "unix"}, r.args[:5])
	assert.Equal(t, "-", r.args[len(r.args)-1])

	_, err = NewPdftotext("", &fakeRunner{err: errors.New("exit 1")}, nil).Read(context.Background(), []byte("%PDF"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

type fakeReader struct {
	doc   *Document
	err   error
	calls int
}

func (f *fakeReader) Read(context.Context, []byte) (*Document, error) {
	f.calls++
	return f.doc, f.err
}

func TestLayered(t *testing.T) {
	ctx := context.Background()
	table := [][]string{{"БИК", "044525225"}}
	withText := &Document{Method: constants.MethodTextLayer, Pages: []Page{{Number: 1, Text: "текст"}}}
	tablesOnly := &Document{Method: constants.MethodTextLayer, Pages: []Page{{Number: 1, Tables: [][][]string{table}}}}
	fallbackText := &Document{Method: constants.MethodPDFToText, Pages: []Page{{Number: 1, Text: "из pdftotext"}}}

	t.Run("primary text wins", func(t *testing.T) {
		fb := &fakeReader{doc: fallbackText}
		doc, err := NewLayered(&fakeReader{doc: withText}, fb, nil).Read(ctx, []byte("x"))
		require.NoError(t, err)
		assert.Same(t, withText, doc)
		assert.Zero(t, fb.calls)
	})

	t.Run("fallback text keeps primary tables", func(t *testing.T) {
		fb := &fakeReader{doc: &Document{Method: constants.MethodPDFToText, Pages: []Page{{Number: 1, Text: "из pdftotext"}}}}
		doc, err := NewLayered(&fakeReader{doc: tablesOnly}, fb, nil).Read(ctx, []byte("x"))
		require.NoError(t, err)
		assert.Equal(t, constants.MethodPDFToText, doc.Method)
		require.Len(t, doc.Pages, 1)
		assert.Equal(t, "из pdftotext", doc.Pages[0].Text)
		assert.Equal(t, [][][]string{table}, doc.Pages[0].Tables)
	})

	t.Run("primary error falls back", func(t *testing.T) {
		doc, err := NewLayered(&fakeReader{err: errors.New("bad xref")}, &fakeReader{doc: fallbackText}, nil).Read(ctx, []byte("x"))
		require.NoError(t, err)
		assert.Equal(t, "из pdftotext", doc.Pages[0].Text)
	})

	t.Run("fallback failure keeps primary", func(t *testing.T) {
		doc, err := NewLayered(&fakeReader{doc: tablesOnly}, &fakeReader{err: errors.New("missing binary")}, nil).Read(ctx, []byte("x"))
		require.NoError(t, err)
		assert.Same(t, tablesOnly, doc)
	})

	t.Run("no fallback", func(t *testing.T) {
		_, err := NewLayered(&fakeReader{err: errors.New("bad")}, nil, nil).Read(ctx, []byte("x"))
		assert.Error(t, err)
	})
}

func TestFullText_SkipsEmptyPages(t *testing.T) {
	doc := &Document{Pages: []Page{{Number: 1, Text: "a"}, {Number: 2}, {Number: 3, Text: "c"}}}
	assert.Equal(t, "\n--- Страница 1 ---\na\n--- Страница 3 ---\nc", doc.FullText())
	var nilDoc *Document
	assert.Equal(t, "", nilDoc.FullText())
	assert.False(t, nilDoc.HasText())
}
