package extract

import (
	"strings"
	"unicode"

	"github.com/joseph-ayodele/docfields/constants"
)

// Table is a cleaned, classified table of one page.
type Table struct {
	Page   int                 `json:"page"`
	Number int                 `json:"table_number"`
	Kind   constants.TableKind `json:"type"`
	Data   [][]string          `json:"data"`
}

var (
	productKeywords  = []string{"товар", "услуга", "наименование", "описание", "артикул"}
	priceKeywords    = []string{"цена", "стоимость", "сумма", "итого", "всего"}
	quantityKeywords = []string{"количество", "кол-во", "шт", "кг"}
	bankKeywords     = []string{"реквизит", "банк", "счет", "бик"}
	totalsKeywords   = []string{"итого", "всего", "сумма"}
	totalsRowWords   = []string{"итого", "всего", "сумма", "total"}

	nameColumn     = []string{"наименование", "товар", "услуга", "описание"}
	quantityColumn = []string{"количество", "кол-во", "шт"}
	priceColumn    = []string{"цена", "стоимость"}
	amountColumn   = []string{"сумма", "amount", "итого"}
)

// CleanTable trims and normalizes every cell and drops rows without any
// non-empty cell. It returns nil when no row survives.
func CleanTable(raw [][]string) [][]string {
	var out [][]string
	for _, row := range raw {
		cleaned := make([]string, len(row))
		hasData := false
		for i, cell := range row {
			cleaned[i] = strings.TrimSpace(NormalizeText(cell))
			if cleaned[i] != "" {
				hasData = true
			}
		}
		if hasData {
			out = append(out, cleaned)
		}
	}
	return out
}

// NewTable cleans raw and classifies it. ok is false when nothing survives cleaning.
func NewTable(page, number int, raw [][]string) (Table, bool) {
	data := CleanTable(raw)
	if len(data) == 0 {
		return Table{}, false
	}
	return Table{Page: page, Number: number, Kind: Classify(data), Data: data}, true
}

// Classify tags a table by the keywords in its first row. Products need a
// product keyword together with a price or quantity keyword and win over
// bank details, which win over totals.
func Classify(table [][]string) constants.TableKind {
	if len(table) == 0 {
		return constants.TableUnknown
	}
	header := keyText(strings.Join(table[0], " "))

	hasProducts := containsAny(header, productKeywords)
	hasPrices := containsAny(header, priceKeywords)
	hasQuantity := containsAny(header, quantityKeywords)
	switch {
	case hasProducts && (hasPrices || hasQuantity):
		return constants.TableProducts
	case containsAny(header, bankKeywords):
		return constants.TableBankDetails
	case containsAny(header, totalsKeywords):
		return constants.TableTotals
	default:
		return constants.TableGeneral
	}
}

// Product is one line item. Blank attributes are dropped from the result.
type Product struct {
	Name     string `json:"name,omitempty"`
	Quantity string `json:"quantity,omitempty"`
	Price    string `json:"price,omitempty"`
	Amount   string `json:"amount,omitempty"`
}

func (p Product) empty() bool {
	return p == Product{}
}

// ExtractProducts reads line items below the header row. Columns are located
// by header keywords; the first matching column wins.
func ExtractProducts(table [][]string) []Product {
	if len(table) < 2 {
		return nil
	}
	headers := make([]string, len(table[0]))
	for i, h := range table[0] {
		headers[i] = keyText(h)
	}
	nameCol := columnIndex(headers, nameColumn)
	qtyCol := columnIndex(headers, quantityColumn)
	priceCol := columnIndex(headers, priceColumn)
	amountCol := columnIndex(headers, amountColumn)

	var products []Product
	for _, row := range table[1:] {
		if blankRow(row) {
			continue
		}
		p := Product{
			Name:     cellAt(row, nameCol),
			Quantity: cellAt(row, qtyCol),
			Price:    cellAt(row, priceCol),
			Amount:   cellAt(row, amountCol),
		}
		if !p.empty() {
			products = append(products, p)
		}
	}
	return products
}

// Bank detail keys.
const (
	BankName             = "bank_name"
	AccountNumber        = "account_number"
	BIK                  = "bik"
	CorrespondentAccount = "correspondent_account"
	INN                  = "inn"
)

// ExtractBankDetails reads label/value pairs from the first two cells of
// each row. Later rows overwrite earlier ones for the same key.
func ExtractBankDetails(table [][]string) map[string]string {
	details := map[string]string{}
	for _, row := range table {
		if len(row) < 2 {
			continue
		}
		key := keyText(strings.TrimSpace(row[0]))
		value := strings.TrimSpace(row[1])
		if key == "" || value == "" {
			continue
		}
		switch {
		case strings.Contains(key, "банк"):
			details[BankName] = value
		case strings.Contains(key, "счет") || strings.Contains(key, "р/с"):
			details[AccountNumber] = value
		case strings.Contains(key, "бик"):
			details[BIK] = value
		case strings.Contains(key, "корр"):
			details[CorrespondentAccount] = value
		case strings.Contains(key, "инн"):
			details[INN] = value
		}
	}
	return details
}

// TotalAmount is the totals key.
const TotalAmount = "total_amount"

// ExtractTotals finds rows mentioning a total and takes, scanning each such
// row from the right, the first cell containing a digit.
func ExtractTotals(table [][]string) map[string]string {
	totals := map[string]string{}
	for _, row := range table {
		var parts []string
		for _, c := range row {
			if c != "" {
				parts = append(parts, c)
			}
		}
		if !containsAny(keyText(strings.Join(parts, " ")), totalsRowWords) {
			continue
		}
		for i := len(row) - 1; i >= 0; i-- {
			if strings.IndexFunc(row[i], unicode.IsDigit) >= 0 {
				totals[TotalAmount] = strings.TrimSpace(row[i])
				break
			}
		}
	}
	return totals
}

// TableData gathers category-specific content from all tables of a document.
type TableData struct {
	Products    []Product
	BankDetails map[string]string
	Totals      map[string]string
}

// ProcessTables extracts every classified table in order. Products from all
// product tables are concatenated; bank details and totals from later tables
// overwrite earlier keys.
func ProcessTables(tables []Table) TableData {
	td := TableData{BankDetails: map[string]string{}, Totals: map[string]string{}}
	for _, t := range tables {
		if len(t.Data) == 0 {
			continue
		}
		switch t.Kind {
		case constants.TableProducts:
			td.Products = append(td.Products, ExtractProducts(t.Data)...)
		case constants.TableBankDetails:
			for k, v := range ExtractBankDetails(t.Data) {
				td.BankDetails[k] = v
			}
		case constants.TableTotals:
			for k, v := range ExtractTotals(t.Data) {
				td.Totals[k] = v
			}
		}
	}
	return td
}

func columnIndex(headers []string, keywords []string) int {
	for i, h := range headers {
		if containsAny(h, keywords) {
			return i
		}
	}
	return -1
}

func cellAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
