package extract

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/docfields/constants"
)

const invoiceText = `
--- Страница 1 ---
Счет № 154 от 12.03.2024
Поставщик: ООО "Ромашка", ИНН 7701234567
Покупатель: ИП Иванов И.И.
Договор № Д-17/2024
Банк получателя р/с 40702810900000012345
БИК 044525225
Итого: 12 500,00 руб`

func TestParseFields_Invoice(t *testing.T) {
	f := ParseFields(invoiceText)
	want := Fields{
		FieldSupplierINN:    "7701234567",
		FieldSupplierName:   `ООО "Ромашка", ИНН 7701234567`,
		FieldBuyerName:      "ИП Иванов И.И.",
		FieldAmount:         "12 500,00 руб",
		FieldInvoiceNumber:  "154 от 12.03.2024",
		FieldDate:           "12.03.2024",
		FieldBankAccount:    "40702810900000012345",
		FieldBIK:            "044525225",
		FieldContractNumber: "Д-17/2024",
	}
	assert.Equal(t, want, f)
}

func TestParseFields_ScenarioAndAbsence(t *testing.T) {
	f := ParseFields("ИНН 1234567890\nПоставщик: ООО Ромашка\nИтого 5000 руб")
	assert.Equal(t, "1234567890", f[FieldSupplierINN])
	assert.Equal(t, "ООО Ромашка", f[FieldSupplierName])
	assert.Equal(t, "5000 руб", f[FieldAmount])

	_, ok := f.Get(FieldBIK)
	assert.False(t, ok)
	_, ok = f.Get(FieldDate)
	assert.False(t, ok)
	for _, v := range f {
		assert.NotEmpty(t, v)
	}
}

func TestParseFields_CaseAndSpaces(t *testing.T) {
	f := ParseFields("инн 1234567890\nСЧЁТ №7\nбик 044525225")
	assert.Equal(t, "1234567890", f[FieldSupplierINN])
	assert.Equal(t, "7", f[FieldInvoiceNumber])
	assert.Equal(t, "044525225", f[FieldBIK])
	assert.Empty(t, ParseFields(""))
}

func TestCleanTable(t *testing.T) {
	raw := [][]string{
		{"  Наименование ", "Кол-во"},
		{"", "   "},
		{"Товар А", ""},
	}
	assert.Equal(t, [][]string{{"Наименование", "Кол-во"}, {"Товар А", ""}}, CleanTable(raw))
	assert.Nil(t, CleanTable([][]string{{"", " "}, {}}))

	_, ok := NewTable(1, 1, [][]string{{" "}})
	assert.False(t, ok)
	tbl, ok := NewTable(2, 3, [][]string{{"БИК", "044525225"}})
	require.True(t, ok)
	assert.Equal(t, Table{Page: 2, Number: 3, Kind: constants.TableBankDetails, Data: [][]string{{"БИК", "044525225"}}}, tbl)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		want   constants.TableKind
	}{
		{"product and price", []string{"Наименование товара", "Цена"}, constants.TableProducts},
		{"product and quantity", []string{"Услуга", "Кол-во"}, constants.TableProducts},
		{"product wins over totals", []string{"Товар", "Сумма", "Итого"}, constants.TableProducts},
		{"product alone is not enough", []string{"Наименование", "Примечание"}, constants.TableGeneral},
		{"bank", []string{"Банк получателя", ""}, constants.TableBankDetails},
		{"bank beats totals", []string{"Счёт", "Сумма"}, constants.TableBankDetails},
		{"totals", []string{"Всего к оплате", "1 000"}, constants.TableTotals},
		{"general", []string{"Примечание", "Подпись"}, constants.TableGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify([][]string{tt.header, {"x", "y"}}))
		})
	}
	assert.Equal(t, constants.TableUnknown, Classify(nil))
}

func TestExtractProducts(t *testing.T) {
	table := [][]string{
		{"№", "Наименование", "Кол-во", "Цена", "Сумма"},
		{"1", "Бумага А4", "10", "350,00", "3 500,00"},
		{"", "", "", "", ""},
		{"2", "Ручка", "", "", "45,00"},
		{"3"},
	}
	assert.Equal(t, []Product{
		{Name: "Бумага А4", Quantity: "10", Price: "350,00", Amount: "3 500,00"},
		{Name: "Ручка", Amount: "45,00"},
	}, ExtractProducts(table))

	assert.Nil(t, ExtractProducts(table[:1]))
}

func TestExtractBankDetails(t *testing.T) {
	table := [][]string{
		{"Реквизиты", ""},
		{"БИК", "044525225"},
		{"Банк получателя", "ПАО Сбербанк"},
		{"Р/с", "40702810900000012345"},
		{"Корреспондентский", "30101810400000000225"},
		{"ИНН", "7701234567"},
		{"БИК", "044525999"},
		{"одна ячейка"},
	}
	assert.Equal(t, map[string]string{
		BIK:                  "044525999",
		BankName:             "ПАО Сбербанк",
		AccountNumber:        "40702810900000012345",
		CorrespondentAccount: "30101810400000000225",
		INN:                  "7701234567",
	}, ExtractBankDetails(table))

	assert.Equal(t, map[string]string{BIK: "044525225"}, ExtractBankDetails([][]string{{"БИК", "044525225"}}))
}

func TestExtractTotals(t *testing.T) {
	assert.Equal(t, map[string]string{TotalAmount: "1500 руб"}, ExtractTotals([][]string{{"Итого", "", "1500 руб"}}))
	assert.Equal(t, map[string]string{TotalAmount: "900"}, ExtractTotals([][]string{
		{"Итого", "100", "200"},
		{"Total", "900", "руб"},
		{"Подпись", "123"},
	}))
	assert.Empty(t, ExtractTotals([][]string{{"Всего", "нет"}}))
}

func TestProcessTables(t *testing.T) {
	td := ProcessTables([]Table{
		{Kind: constants.TableProducts, Data: [][]string{{"Товар", "Цена"}, {"A", "1"}}},
		{Kind: constants.TableBankDetails, Data: [][]string{{"БИК", "044525225"}}},
		{Kind: constants.TableProducts, Data: [][]string{{"Товар", "Цена"}, {"B", "2"}}},
		{Kind: constants.TableTotals, Data: [][]string{{"Итого", "3"}}},
		{Kind: constants.TableGeneral, Data: [][]string{{"Итого", "99"}}},
		{Kind: constants.TableTotals},
	})
	assert.Equal(t, []Product{{Name: "A", Price: "1"}, {Name: "B", Price: "2"}}, td.Products)
	assert.Equal(t, map[string]string{BIK: "044525225"}, td.BankDetails)
	assert.Equal(t, map[string]string{TotalAmount: "3"}, td.Totals)
}

func TestBuild_TextOnlyScenario(t *testing.T) {
	fields := ParseFields("ИНН 1234567890\nПоставщик: ООО Ромашка\nИтого 5000 руб")
	result := Build(Merge(fields, ProcessTables(nil)))

	assert.Equal(t, map[string]any{
		"supplier":        map[string]any{"name": "ООО Ромашка", "inn": "1234567890"},
		"payment_details": map[string]any{"amount": "5000 руб"},
	}, result)
	assert.NotContains(t, result, "products")
	assert.NoError(t, ValidateResult(result))
}

func TestBuild_TablePrecedence(t *testing.T) {
	fields := Fields{
		FieldAmount:      "100",
		FieldBankAccount: "text-account",
		FieldBIK:         "111111111",
		FieldSupplierINN: "7701234567",
	}
	td := TableData{
		BankDetails: map[string]string{AccountNumber: "table-account", INN: "0000000000", BankName: "ПАО Банк"},
		Totals:      map[string]string{TotalAmount: "12 500,00"},
		Products:    []Product{{Name: "Бумага", Amount: "12 500,00"}},
	}
	result := Build(Merge(fields, td))

	assert.Equal(t, map[string]any{
		"amount":       "12 500,00",
		"bank_account": "table-account",
		"bik":          "111111111",
		"bank_name":    "ПАО Банк",
	}, result["payment_details"])
	assert.Equal(t, map[string]any{"inn": "7701234567"}, result["supplier"])
	assert.Equal(t, []any{map[string]any{"name": "Бумага", "amount": "12 500,00"}}, result["products"])
	assert.NoError(t, ValidateResult(result))

	// the bank table INN fills in when the text has none
	delete(fields, FieldSupplierINN)
	result = Build(Merge(fields, td))
	assert.Equal(t, map[string]any{"inn": "0000000000"}, result["supplier"])
}

func TestBuild_Empty(t *testing.T) {
	result := Build(Merge(Fields{}, TableData{}))
	assert.Equal(t, map[string]any{}, result)
	assert.NoError(t, ValidateResult(result))
}

func TestSanitize(t *testing.T) {
	in := map[string]any{
		"keep":  "value",
		"unk":   Unknown,
		"blank": "",
		"nil":   nil,
		"nested": map[string]any{
			"only": map[string]any{"x": Unknown},
		},
		"list":  []any{"", nil, map[string]any{}, map[string]any{"a": Unknown, "b": "1"}, []any{Unknown}},
		"empty": []any{},
		"flat":  map[string]string{"k": "", "v": "ok"},
	}
	want := map[string]any{
		"keep": "value",
		"list": []any{map[string]any{"b": "1"}},
		"flat": map[string]any{"v": "ok"},
	}
	assert.Equal(t, want, Sanitize(in))
	assert.Equal(t, "x", Sanitize("x"))
	assert.Equal(t, 42, Sanitize(42))
}

// randomTree builds nested values mixing the markers the sanitizer removes.
func randomTree(r *rand.Rand, depth int) any {
	leaves := []any{Unknown, "", nil, "v", "значение"}
	if depth == 0 {
		return leaves[r.Intn(len(leaves))]
	}
	switch r.Intn(4) {
	case 0:
		return leaves[r.Intn(len(leaves))]
	case 1:
		n := r.Intn(4)
		s := make([]any, n)
		for i := range s {
			s[i] = randomTree(r, depth-1)
		}
		return s
	default:
		n := r.Intn(4)
		m := make(map[string]any, n)
		for i := 0; i < n; i++ {
			m[fmt.Sprintf("k%d", i)] = randomTree(r, depth-1)
		}
		return m
	}
}

func assertClean(t *testing.T, v any) {
	t.Helper()
	switch x := v.(type) {
	case map[string]any:
		for k, child := range x {
			require.False(t, isEmpty(child), "key %q holds %#v", k, child)
			assertClean(t, child)
		}
	case []any:
		for i, child := range x {
			require.False(t, isEmpty(child), "index %d holds %#v", i, child)
			assertClean(t, child)
		}
	case string:
		require.NotEqual(t, Unknown, x)
	}
}

func TestSanitize_IdempotentAndClean(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		tree := map[string]any{"root": randomTree(r, 4)}
		once := Sanitize(tree)
		assertClean(t, once)
		assert.Equal(t, once, Sanitize(once))
	}
}

func TestValidateResult_RejectsUnknownShape(t *testing.T) {
	assert.Error(t, ValidateResult(map[string]any{"supplier": map[string]any{"phone": "1"}}))
	assert.Error(t, ValidateResult(map[string]any{"unexpected": "x"}))
	assert.Error(t, ValidateResult(map[string]any{"products": []any{}}))
	assert.NotEmpty(t, ResultSchema()["properties"])
}
