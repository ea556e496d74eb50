// Package pdftext reads the embedded text layer of PDF documents: page text
// in reading order and ruled (lattice) tables, without rasterization.
package pdftext

import (
	"context"
	"fmt"
	"strings"

	"github.com/joseph-ayodele/docfields/constants"
)

// Page is the text layer of one page. Number is 1-based.
type Page struct {
	Number int
	Text   string
	// Tables are raw cell grids in reading order, empty cells included.
	Tables [][][]string
}

// Document is everything the text layer produced for one PDF.
type Document struct {
	Pages  []Page
	Method constants.Method
}

// Reader extracts per-page text and tables from PDF bytes.
type Reader interface {
	Read(ctx context.Context, pdf []byte) (*Document, error)
}

// PageMarker is the separator written before each page's text in the
// document-wide text.
func PageMarker(n int) string {
	return fmt.Sprintf("\n--- Страница %d ---\n", n)
}

// FullText concatenates the text of all pages that have any, each preceded
// by its page marker.
func (d *Document) FullText() string {
	if d == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range d.Pages {
		if p.Text == "" {
			continue
		}
		b.WriteString(PageMarker(p.Number))
		b.WriteString(p.Text)
	}
	return b.String()
}

// HasText reports whether any page carries non-blank text.
func (d *Document) HasText() bool {
	if d == nil {
		return false
	}
	for _, p := range d.Pages {
		if strings.TrimSpace(p.Text) != "" {
			return true
		}
	}
	return false
}
