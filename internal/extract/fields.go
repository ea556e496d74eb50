package extract

import (
	"regexp"
	"strings"
)

// Field names a value parsed from the document text.
type Field string

const (
	FieldSupplierINN    Field = "supplier_inn"
	FieldSupplierName   Field = "supplier_name"
	FieldBuyerName      Field = "buyer_name"
	FieldAmount         Field = "amount"
	FieldInvoiceNumber  Field = "invoice_number"
	FieldDate           Field = "date"
	FieldBankAccount    Field = "bank_account"
	FieldBIK            Field = "bik"
	FieldContractNumber Field = "contract_number"
)

// AllFields lists every parsed field in a stable order.
var AllFields = []Field{
	FieldSupplierINN, FieldSupplierName, FieldBuyerName, FieldAmount, FieldInvoiceNumber,
	FieldDate, FieldBankAccount, FieldBIK, FieldContractNumber,
}

// fieldPatterns are matched case-insensitively in multiline mode; group 1 is the value.
var fieldPatterns = map[Field]*regexp.Regexp{
	FieldSupplierINN:    regexp.MustCompile(`(?im)ИНН\s*(\d{10,12})`),
	FieldSupplierName:   regexp.MustCompile(`(?im)Поставщик[:\s]+([^\n]+)`),
	FieldBuyerName:      regexp.MustCompile(`(?im)(?:Плательщик|Покупатель|Заказчик)[:\s]+([^\n]+)`),
	FieldAmount:         regexp.MustCompile(`(?im)(?:Сумма|Итого)\s*[:\s]*([\d\s,]+(?:\s*руб)?)`),
	FieldInvoiceNumber:  regexp.MustCompile(`(?im)(?:Счет|Счёт)[\s№]*([^\n]+)`),
	FieldDate:           regexp.MustCompile(`(?im)(\d{2}\.\d{2}\.\d{4})`),
	FieldBankAccount:    regexp.MustCompile(`(?im)(?:р/с|расч[ёе]тный сч[ёе]т)\s*([^\n]+)`),
	FieldBIK:            regexp.MustCompile(`(?im)БИК\s*(\d{9})`),
	FieldContractNumber: regexp.MustCompile(`(?im)(?:Договор|Дог\.)\s*[№\s]*([^\n]+)`),
}

// Fields maps parsed field names to values. A field that was not found has
// no entry; present values are never empty.
type Fields map[Field]string

// Get returns the value of f and whether it was found.
func (f Fields) Get(name Field) (string, bool) {
	v, ok := f[name]
	return v, ok
}

// ParseFields runs every field pattern against the full document text and
// keeps the first match of each, trimmed.
func ParseFields(text string) Fields {
	text = NormalizeText(text)
	out := make(Fields, len(fieldPatterns))
	for _, name := range AllFields {
		m := fieldPatterns[name].FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if v := strings.TrimSpace(m[1]); v != "" {
			out[name] = v
		}
	}
	return out
}
