package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/docfields/constants"
	"github.com/joseph-ayodele/docfields/internal/extract"
	"github.com/joseph-ayodele/docfields/internal/pipeline"
)

func sampleResponse() pipeline.Response {
	return pipeline.Response{
		Status:   constants.StatusSuccess,
		Message:  "File successfully processed",
		Filename: "invoice.pdf",
		Method:   constants.MethodTextLayer,
		Data: map[string]any{
			"supplier":        map[string]any{"name": "ООО Ромашка", "inn": "1234567890"},
			"payment_details": map[string]any{"amount": "5000 руб"},
			"products": []any{
				map[string]any{"name": "Бумага", "price": "250", "amount": "500"},
				map[string]any{"name": "Ручка", "quantity": "10", "price": "25", "amount": "250"},
			},
		},
		Tables: []extract.Table{
			{Page: 1, Number: 2, Kind: constants.TableBankDetails, Data: [][]string{{"БИК", "044525225"}}},
		},
	}
}

func open(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestResponseXLSX(t *testing.T) {
	data, err := NewService(nil).ResponseXLSX(sampleResponse())
	require.NoError(t, err)
	f := open(t, data)

	assert.Equal(t, []string{"Result", "Products", "p1 t2 bank_details"}, f.GetSheetList())

	rows, err := f.GetRows("Result")
	require.NoError(t, err)
	assert.Equal(t, []string{"Field", "Value"}, rows[0])
	assert.Equal(t, []string{"status", "success"}, rows[1])
	assert.Contains(t, rows, []string{"supplier.inn", "1234567890"})
	assert.Contains(t, rows, []string{"products[2].quantity", "10"})

	rows, err = f.GetRows("Products")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Бумага", "", "250", "500"}, rows[1])

	rows, err = f.GetRows("p1 t2 bank_details")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"БИК", "044525225"}}, rows)
}

func TestBatchXLSX(t *testing.T) {
	failed := pipeline.Response{Status: constants.StatusError, Message: "Failed to extract data from PDF", Filename: "blank.pdf", Data: map[string]any{}}
	data, err := NewService(nil).BatchXLSX([]pipeline.Response{sampleResponse(), failed})
	require.NoError(t, err)

	rows, err := open(t, data).GetRows("Documents")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "supplier.name", rows[0][5])
	assert.Equal(t, []string{"invoice.pdf", "success", "text-layer", "File successfully processed", "1", "ООО Ромашка", "1234567890"}, rows[1][:7])
	assert.Equal(t, []string{"blank.pdf", "error", "", "Failed to extract data from PDF", "0"}, rows[2])
}

func TestFlatten(t *testing.T) {
	got := Flatten(map[string]any{
		"a": map[string]any{"b": "x", "c": nil},
		"l": []any{"first", map[string]any{"k": 2}},
	})
	assert.Equal(t, map[string]string{"a.b": "x", "l[1]": "first", "l[2].k": "2"}, got)
}

func TestTableSheetName(t *testing.T) {
	name := TableSheetName(extract.Table{Page: 120, Number: 15, Kind: "a_very_long_table_kind_name"})
	assert.Len(t, name, 31)
	assert.Equal(t, "p3 t1 totals", TableSheetName(extract.Table{Page: 3, Number: 1, Kind: constants.TableTotals}))
}
