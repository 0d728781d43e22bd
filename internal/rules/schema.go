package rules

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ruleFileSchema describes the YAML/JSON rule file.
var ruleFileSchema = map[string]any{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type":    "object",
	"properties": map[string]any{
		"rules": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":                 "object",
				"required":             []any{"id"},
				"additionalProperties": false,
				"properties": map[string]any{
					"id":                map[string]any{"type": "integer", "minimum": 1},
					"name":              map[string]any{"type": "string"},
					"max_points":        map[string]any{"type": "number"},
					"positive_points":   map[string]any{"type": "number", "minimum": 0},
					"negative_points":   map[string]any{"type": "number"},
					"default_points":    map[string]any{"type": "number"},
					"positive_keywords": keywordList,
					"negative_keywords": keywordList,
				},
			},
		},
	},
	"required": []any{"rules"},

	// the decision threshold is scoring config, not part of a rule file
	"additionalProperties": false,
}

var keywordList = map[string]any{
	"type":  "array",
	"items": map[string]any{"type": "string"},
}

// validateAgainstSchema validates JSON data against schemaMap.
func validateAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("rules.schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("rules.schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("rules do not match schema: %w", err)
	}
	return nil
}
