package constants

import (
	"strings"
)

// TableKind is the header-driven classification of an extracted table.
type TableKind string

const (
	TableProducts    TableKind = "products"
	TableBankDetails TableKind = "bank_details"
	TableTotals      TableKind = "totals"
	TableGeneral     TableKind = "general"
	TableUnknown     TableKind = "unknown"
)

var allTableKinds = []TableKind{
	TableProducts,
	TableBankDetails,
	TableTotals,
	TableGeneral,
	TableUnknown,
}

func TableKindsAsStrings() []string {
	result := make([]string, len(allTableKinds))
	for i, k := range allTableKinds {
		result[i] = string(k)
	}
	return result
}

// ParseTableKind maps loose input (including a few synonyms) onto a TableKind.
func ParseTableKind(input string) (TableKind, bool) {
	if input == "" {
		return TableUnknown, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	synonyms := map[string]TableKind{
		"items":    TableProducts,
		"goods":    TableProducts,
		"bank":     TableBankDetails,
		"payment":  TableBankDetails,
		"total":    TableTotals,
		"summary":  TableTotals,
		"other":    TableGeneral,
		"untagged": TableUnknown,
	}

	if k, ok := synonyms[normalized]; ok {
		return k, true
	}

	for _, k := range allTableKinds {
		if normalized == string(k) {
			return k, true
		}
	}

	return TableUnknown, false
}
