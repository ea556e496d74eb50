// Package export renders extraction results as XLSX workbooks.
package export

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/docfields/internal/extract"
	"github.com/joseph-ayodele/docfields/internal/pipeline"
)

const (
	resultSheet    = "Result"
	productsSheet  = "Products"
	documentsSheet = "Documents"
	maxSheetName   = 31
)

// summaryFields are the result paths shown per document in a batch workbook.
var summaryFields = []string{
	"supplier.name",
	"supplier.inn",
	"buyer.name",
	"document_info.number",
	"document_info.date",
	"payment_details.amount",
	"payment_details.bank_account",
	"payment_details.bik",
}

// Service produces XLSX bytes for extraction responses.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ResponseXLSX writes one document: a flattened result sheet, a products
// sheet when there are products, and one sheet per extracted table.
func (s *Service) ResponseXLSX(resp pipeline.Response) ([]byte, error) {
	start := time.Now()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", resultSheet); err != nil {
		return nil, err
	}
	header := [][]any{
		{"Field", "Value"},
		{"status", string(resp.Status)},
		{"message", resp.Message},
		{"filename", resp.Filename},
		{"method", string(resp.Method)},
	}
	flat := Flatten(resp.Data)
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		header = append(header, []any{k, flat[k]})
	}
	if err := writeRows(f, resultSheet, header); err != nil {
		return nil, err
	}
	_ = f.SetColWidth(resultSheet, "A", "A", 32)
	_ = f.SetColWidth(resultSheet, "B", "B", 60)

	if products, ok := resp.Data["products"].([]any); ok && len(products) > 0 {
		if err := s.writeProducts(f, products); err != nil {
			return nil, err
		}
	}
	for _, t := range resp.Tables {
		if err := writeTable(f, t); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.xlsx.ok",
		"filename", resp.Filename,
		"tables", len(resp.Tables),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// BatchXLSX writes one summary row per document.
func (s *Service) BatchXLSX(responses []pipeline.Response) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName("Sheet1", documentsSheet); err != nil {
		return nil, err
	}

	header := []any{"Filename", "Status", "Method", "Message", "Tables"}
	for _, k := range summaryFields {
		header = append(header, k)
	}
	rows := [][]any{header}
	for _, r := range responses {
		flat := Flatten(r.Data)
		row := []any{r.Filename, string(r.Status), string(r.Method), truncate(r.Message, 140), len(r.Tables)}
		for _, k := range summaryFields {
			row = append(row, flat[k])
		}
		rows = append(rows, row)
	}
	if err := writeRows(f, documentsSheet, rows); err != nil {
		return nil, err
	}
	_ = f.SetColWidth(documentsSheet, "A", "A", 32)
	_ = f.SetColWidth(documentsSheet, "D", "D", 48)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.batch.ok", "documents", len(responses))
	return buf.Bytes(), nil
}

func (s *Service) writeProducts(f *excelize.File, products []any) error {
	if _, err := f.NewSheet(productsSheet); err != nil {
		return err
	}
	rows := [][]any{{"Name", "Quantity", "Price", "Amount"}}
	for _, p := range products {
		m, _ := p.(map[string]any)
		rows = append(rows, []any{m["name"], m["quantity"], m["price"], m["amount"]})
	}
	if err := writeRows(f, productsSheet, rows); err != nil {
		return err
	}
	_ = f.SetColWidth(productsSheet, "A", "A", 48)
	_ = f.SetColWidth(productsSheet, "B", "D", 14)
	return nil
}

func writeTable(f *excelize.File, t extract.Table) error {
	sheet := TableSheetName(t)
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	rows := make([][]any, 0, len(t.Data))
	for _, r := range t.Data {
		row := make([]any, len(r))
		for i, c := range r {
			row[i] = c
		}
		rows = append(rows, row)
	}
	return writeRows(f, sheet, rows)
}

// TableSheetName is "p<page> t<number> <type>", cut to the sheet name limit.
func TableSheetName(t extract.Table) string {
	name := fmt.Sprintf("p%d t%d %s", t.Page, t.Number, t.Kind)
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	return name
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// Flatten maps a nested result onto dotted paths. Sequence elements are
// addressed as name[i], starting at 1.
func Flatten(v map[string]any) map[string]string {
	out := map[string]string{}
	flatten("", v, out)
	return out
}

func flatten(prefix string, v any, out map[string]string) {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			flatten(join(prefix, k), child, out)
		}
	case []any:
		for i, child := range t {
			flatten(fmt.Sprintf("%s[%d]", prefix, i+1), child, out)
		}
	case nil:
	default:
		out[prefix] = fmt.Sprint(t)
	}
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n-1])) + "…"
}
