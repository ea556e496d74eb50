package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/docfields/constants"
	"github.com/joseph-ayodele/docfields/internal/common"
)

// spaceGap is the horizontal gap, as a fraction of the font size, above
// which two neighbouring fragments are separated by a space.
const spaceGap = 0.3

// Native reads the text layer in-process with github.com/ledongthuc/pdf.
type Native struct {
	logger   *slog.Logger
	maxPages int
}

func NewNative(maxPages int, logger *slog.Logger) *Native {
	if logger == nil {
		logger = slog.Default()
	}
	return &Native{logger: logger, maxPages: maxPages}
}

// Read returns one Page per PDF page. A page the library cannot parse is
// logged and kept with empty content.
func (n *Native) Read(ctx context.Context, data []byte) (doc *Document, err error) {
	if len(data) == 0 {
		return nil, common.ErrInvalidInput
	}
	// the parser panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("pdf reader: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	total := r.NumPage()
	if n.maxPages > 0 && total > n.maxPages {
		total = n.maxPages
	}
	doc = &Document{Method: constants.MethodTextLayer, Pages: make([]Page, 0, total)}
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := n.readPage(r.Page(i), i)
		if err != nil {
			n.logger.Warn("pdftext.page.failed", "page", i, "error", err)
		}
		doc.Pages = append(doc.Pages, page)
	}
	n.logger.Debug("pdftext.native.ok", "pages", len(doc.Pages))
	return doc, nil
}

func (n *Native) readPage(p pdf.Page, number int) (page Page, err error) {
	page = Page{Number: number}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse page: %v", r)
		}
	}()
	if p.V.IsNull() {
		return page, nil
	}

	rows, err := p.GetTextByRow()
	if err != nil {
		return page, err
	}
	page.Text = rowsText(rows)

	// rulings in device space, like the glyphs
	page.Tables = LatticeTables(p.Content().Text, PageRulings(p))
	return page, nil
}

// rowsText joins rows top to bottom, one line per row.
func rowsText(rows pdf.Rows) string {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		if line := strings.TrimSpace(joinFragments(row.Content)); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// joinFragments concatenates fragments of one line ordered by X. A space is
// inserted when the gap to the previous fragment is wide, or when widths are
// unknown.
func joinFragments(texts []pdf.Text) string {
	if len(texts) == 0 {
		return ""
	}
	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var b strings.Builder
	prev := sorted[0]
	b.WriteString(prev.S)
	for _, t := range sorted[1:] {
		if needsSpace(prev, t) && !strings.HasSuffix(b.String(), " ") && !strings.HasPrefix(t.S, " ") {
			b.WriteByte(' ')
		}
		b.WriteString(t.S)
		prev = t
	}
	return b.String()
}

func needsSpace(prev, next pdf.Text) bool {
	if prev.W <= 0 {
		return true
	}
	size := math.Max(prev.FontSize, next.FontSize)
	if size <= 0 {
		size = 10
	}
	return next.X-(prev.X+prev.W) > spaceGap*size
}
