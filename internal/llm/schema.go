package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/pactly/contract-analyzer/constants"
)

// BuildClauseJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. It is embedded in the prompt as the output contract and used
// locally to validate what the model returns.
func BuildClauseJSONSchema() map[string]any {
	clauseProps := map[string]any{
		"clause_type": map[string]any{
			"type": "string",
			"enum": constants.ClauseTypeStrings(),
		},
		"title": map[string]any{
			"type":      "string",
			"minLength": 1,
			"maxLength": constants.MaxClauseTitleLen,
		},
		"content": map[string]any{"type": "string", "minLength": 1},
		"summary": map[string]any{"type": "string"},
		"section_reference": map[string]any{
			"type": []string{"string", "null"},
		},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"clauses"},
		"properties": map[string]any{
			"clauses": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []string{"clause_type", "title", "content", "summary"},
					"properties":           clauseProps,
				},
			},
		},
	}
}

// ValidateJSONAgainstSchema validates data against schemaMap.
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
