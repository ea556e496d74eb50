package imagescan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
)

const (
	infoNoTables = "No tables detected"
	errPrefix    = "Processing error: "
)

// CellScan is the recognized text of one cell. Number is 1-based in contour
// discovery order.
type CellScan struct {
	Number int
	Rect   image.Rectangle
	Text   string
}

type TableScan struct {
	Number int
	Bounds image.Rectangle
	Cells  []CellScan
}

// PageScan holds the tables of one page, or an Info or Error note when
// there are none.
type PageScan struct {
	Number int
	Tables []TableScan
	Info   string
	Error  string
}

// Scan is the nested page → table → cell result of the image pipeline.
// Error is set when no page could be rendered at all.
type Scan struct {
	Pages []PageScan
	Error string
}

// Map renders the scan as page_<n> → table_<m> → cell_<k> → text.
func (s Scan) Map() map[string]any {
	if s.Error != "" {
		return map[string]any{"error": s.Error}
	}
	out := make(map[string]any, len(s.Pages))
	for _, p := range s.Pages {
		out[pageKey(p.Number)] = p.Map()
	}
	return out
}

func (p PageScan) Map() map[string]any {
	switch {
	case p.Error != "":
		return map[string]any{"error": p.Error}
	case len(p.Tables) == 0:
		return map[string]any{"info": infoNoTables}
	}
	out := make(map[string]any, len(p.Tables))
	for _, t := range p.Tables {
		cells := make(map[string]any, len(t.Cells))
		for _, c := range t.Cells {
			cells[fmt.Sprintf("cell_%d", c.Number)] = c.Text
		}
		out[fmt.Sprintf("table_%d", t.Number)] = cells
	}
	return out
}

// MarshalJSON writes keys in page, table and cell order rather than the
// lexical order encoding/json uses for maps, so that cell_10 follows cell_9.
func (s Scan) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	if s.Error != "" {
		b.WriteString(`{"error":`)
		writeString(&b, s.Error)
		b.WriteByte('}')
		return b.Bytes(), nil
	}
	b.WriteByte('{')
	for i, p := range s.Pages {
		if i > 0 {
			b.WriteByte(',')
		}
		writeString(&b, pageKey(p.Number))
		b.WriteByte(':')
		writePage(&b, p)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

func writePage(b *bytes.Buffer, p PageScan) {
	switch {
	case p.Error != "":
		b.WriteString(`{"error":`)
		writeString(b, p.Error)
		b.WriteByte('}')
		return
	case len(p.Tables) == 0:
		b.WriteString(`{"info":`)
		writeString(b, infoNoTables)
		b.WriteByte('}')
		return
	}
	b.WriteByte('{')
	for i, t := range p.Tables {
		if i > 0 {
			b.WriteByte(',')
		}
		writeString(b, fmt.Sprintf("table_%d", t.Number))
		b.WriteString(":{")
		for j, c := range t.Cells {
			if j > 0 {
				b.WriteByte(',')
			}
			writeString(b, fmt.Sprintf("cell_%d", c.Number))
			b.WriteByte(':')
			writeString(b, c.Text)
		}
		b.WriteByte('}')
	}
	b.WriteByte('}')
}

func writeString(b *bytes.Buffer, s string) {
	enc, _ := json.Marshal(s)
	b.Write(enc)
}

func pageKey(n int) string { return fmt.Sprintf("page_%d", n) }
