package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildInvoiceJSONSchema returns a JSON-Schema (draft 2020-12 subset)
// as a generic map. It is sent to the model as the output constraint
// and used locally to validate what comes back.
//
// "articles" is deliberately loose: the model is allowed to answer
// with a list of objects, a list of tuples, or a markdown table
// string. Shape resolution is the normalizer's job.
func BuildInvoiceJSONSchema() map[string]any {
	props := map[string]any{
		"invoice_number":      map[string]any{"type": "string", "minLength": 1},
		"invoice_date":        map[string]any{"type": "string", "minLength": 1},
		"supplier_name":       map[string]any{"type": "string", "minLength": 1},
		"supplier_address":    map[string]any{"type": "string"},
		"total_packages":      map[string]any{"type": "integer", "minimum": 0},
		"total_without_taxes": map[string]any{"type": "number", "minimum": 0},
		"taxes_amount":        map[string]any{"type": "number", "minimum": 0},
		"total_amount":        map[string]any{"type": "number", "minimum": 0},
		"articles": map[string]any{
			"anyOf": []any{
				map[string]any{"type": "array"},
				map[string]any{"type": "string"},
			},
		},
	}
	required := []string{"invoice_number", "invoice_date", "supplier_name", "total_amount"}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
