package extract

// Unknown marks a field that was not found. Sanitize removes it.
const Unknown = "<UNKNOWN>"

// Build maps a record onto the output structure and sanitizes it. Table
// values take precedence for what tables cover: the amount comes from the
// totals table, the account and BIK from the bank details table. The
// supplier INN prefers the text, as a bank details table lists the payee's
// INN only incidentally.
func Build(rec Record) map[string]any {
	f, bank, totals := rec.Fields, rec.BankDetails, rec.Totals

	payment := map[string]any{
		"amount":       first(fromMap(totals, TotalAmount), fromFields(f, FieldAmount)),
		"bank_account": first(fromMap(bank, AccountNumber), fromFields(f, FieldBankAccount)),
		"bik":          first(fromMap(bank, BIK), fromFields(f, FieldBIK)),
	}
	if len(bank) > 0 {
		payment["bank_name"] = first(fromMap(bank, BankName))
		payment["correspondent_account"] = first(fromMap(bank, CorrespondentAccount))
	}

	result := map[string]any{
		"supplier": map[string]any{
			"name": first(fromFields(f, FieldSupplierName)),
			"inn":  first(fromFields(f, FieldSupplierINN), fromMap(bank, INN)),
		},
		"buyer": map[string]any{
			"name": first(fromFields(f, FieldBuyerName)),
		},
		"payment_details": payment,
		"document_info": map[string]any{
			"number":          first(fromFields(f, FieldInvoiceNumber)),
			"date":            first(fromFields(f, FieldDate)),
			"contract_number": first(fromFields(f, FieldContractNumber)),
		},
	}
	if len(rec.Products) > 0 {
		products := make([]any, 0, len(rec.Products))
		for _, p := range rec.Products {
			products = append(products, map[string]any{
				"name":     p.Name,
				"quantity": p.Quantity,
				"price":    p.Price,
				"amount":   p.Amount,
			})
		}
		result["products"] = products
	}

	out, _ := Sanitize(result).(map[string]any)
	if out == nil {
		out = map[string]any{}
	}
	return out
}

// Sanitize removes Unknown markers, nil, empty strings, and mappings or
// sequences left empty, depth first. Applying it twice changes nothing.
func Sanitize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			if s, ok := child.(string); ok && s == Unknown {
				continue
			}
			clean := Sanitize(child)
			if isEmpty(clean) {
				continue
			}
			out[k] = clean
		}
		return out
	case []any:
		out := make([]any, 0, len(t))
		for _, child := range t {
			clean := Sanitize(child)
			if isEmpty(clean) {
				continue
			}
			out = append(out, clean)
		}
		return out
	case map[string]string:
		m := make(map[string]any, len(t))
		for k, s := range t {
			m[k] = s
		}
		return Sanitize(m)
	case []string:
		s := make([]any, len(t))
		for i, x := range t {
			s[i] = x
		}
		return Sanitize(s)
	default:
		return v
	}
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == "" || t == Unknown
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	}
	return false
}
