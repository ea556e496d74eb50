package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ResultSchema returns the JSON-Schema of a sanitized result as a generic map.
// Every property is optional since sanitization drops what was not found.
func ResultSchema() map[string]any {
	str := map[string]any{"type": "string", "minLength": 1}
	object := func(props ...string) map[string]any {
		p := make(map[string]any, len(props))
		for _, name := range props {
			p[name] = str
		}
		return map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"minProperties":        1,
			"properties":           p,
		}
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"supplier":        object("name", "inn"),
			"buyer":           object("name"),
			"payment_details": object("amount", "bank_account", "bik", "bank_name", "correspondent_account"),
			"document_info":   object("number", "date", "contract_number"),
			"products": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items":    object("name", "quantity", "price", "amount"),
			},
		},
	}
}

var (
	resultSchemaOnce sync.Once
	resultSchema     *jsonschema.Schema
	resultSchemaErr  error
)

func compiledResultSchema() (*jsonschema.Schema, error) {
	resultSchemaOnce.Do(func() {
		b, err := json.Marshal(ResultSchema())
		if err != nil {
			resultSchemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("result.json", bytes.NewReader(b)); err != nil {
			resultSchemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		resultSchema, resultSchemaErr = compiler.Compile("result.json")
		if resultSchemaErr != nil {
			resultSchemaErr = fmt.Errorf("compile schema: %w", resultSchemaErr)
		}
	})
	return resultSchema, resultSchemaErr
}

// ValidateResult checks a built result against ResultSchema. The value is
// round-tripped through JSON so that any Go representation validates the
// same way as the wire form.
func ValidateResult(result map[string]any) error {
	schema, err := compiledResultSchema()
	if err != nil {
		return err
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal result: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("result does not match schema: %w", err)
	}
	return nil
}
