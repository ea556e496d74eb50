package extract

// Record is the merge of parsed fields with table-derived content for one document.
type Record struct {
	Fields      Fields
	BankDetails map[string]string
	Products    []Product
	Totals      map[string]string
}

// Merge combines text fields with table data. Bank details and totals keep
// their own namespaces; products, when any table produced them, replace
// anything earlier. Which source wins for an overlapping output field is
// decided by Build.
func Merge(fields Fields, td TableData) Record {
	rec := Record{Fields: Fields{}, BankDetails: map[string]string{}, Totals: map[string]string{}}
	for k, v := range fields {
		rec.Fields[k] = v
	}
	for k, v := range td.BankDetails {
		rec.BankDetails[k] = v
	}
	if len(td.Products) > 0 {
		rec.Products = append([]Product(nil), td.Products...)
	}
	for k, v := range td.Totals {
		rec.Totals[k] = v
	}
	return rec
}

// first returns the first found value, or Unknown.
func first(values ...func() (string, bool)) string {
	for _, get := range values {
		if v, ok := get(); ok && v != "" {
			return v
		}
	}
	return Unknown
}

func fromMap(m map[string]string, key string) func() (string, bool) {
	return func() (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func fromFields(f Fields, name Field) func() (string, bool) {
	return func() (string, bool) { return f.Get(name) }
}
