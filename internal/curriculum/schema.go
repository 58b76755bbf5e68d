package curriculum

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const catalogSchemaURL = "schema://keycamp-catalog.json"

var thresholdSchema = map[string]any{
	"type":     "object",
	"required": []any{"level", "wpm", "accuracy"},
	"properties": map[string]any{
		"level":    map[string]any{"type": "integer", "minimum": 1, "maximum": MaxStars},
		"wpm":      map[string]any{"type": "integer", "minimum": 0},
		"accuracy": map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
	},
	"additionalProperties": false,
}

var stringList = map[string]any{
	"type":  []any{"array", "null"},
	"items": map[string]any{"type": "string", "minLength": 1},
}

// catalogSchema describes the YAML catalog document.
var catalogSchema = map[string]any{
	"type":     "object",
	"required": []any{"chapters"},
	"properties": map[string]any{
		"chapters": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":     "object",
				"required": []any{"id", "title", "phase", "phase_number", "stars"},
				"properties": map[string]any{
					"id":               map[string]any{"type": "integer", "minimum": 1},
					"title":            map[string]any{"type": "string", "minLength": 1},
					"description":      map[string]any{"type": "string"},
					"phase":            map[string]any{"type": "string", "minLength": 1},
					"phase_number":     map[string]any{"type": "integer", "minimum": 1},
					"target_wpm":       map[string]any{"type": "integer", "minimum": 0},
					"minimum_accuracy": map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
					"focus_keys":       stringList,
					"words":            stringList,
					"sentences":        stringList,
					"unlock": map[string]any{
						"type":     []any{"object", "null"},
						"required": []any{"chapter_id", "min_stars"},
						"properties": map[string]any{
							"chapter_id": map[string]any{"type": "integer", "minimum": 1},
							"min_stars":  map[string]any{"type": "integer", "minimum": MinStars, "maximum": MaxStars},
						},
						"additionalProperties": false,
					},
					"stars": map[string]any{
						"type":     "array",
						"minItems": MaxStars,
						"maxItems": MaxStars,
						"items":    thresholdSchema,
					},
				},
				"additionalProperties": false,
			},
		},
	},
	"additionalProperties": false,
}

var (
	compiledOnce   sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func getCompiledSchema() (*jsonschema.Schema, error) {
	compiledOnce.Do(func() {
		// The compiler wants plain JSON values, so round-trip the Go literal.
		defBytes, err := json.Marshal(catalogSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal catalog schema: %w", err)
			return
		}
		var defParsed any
		if err := json.Unmarshal(defBytes, &defParsed); err != nil {
			compileErr = fmt.Errorf("parse catalog schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(catalogSchemaURL, defParsed); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(catalogSchemaURL)
	})
	return compiledSchema, compileErr
}

// validateDocument checks a decoded YAML document against the catalog schema.
func validateDocument(raw any) error {
	compiled, err := getCompiledSchema()
	if err != nil {
		return err
	}
	docBytes, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("invalid catalog document: %w", err)
	}
	var doc any
	if err := json.Unmarshal(docBytes, &doc); err != nil {
		return fmt.Errorf("invalid catalog document: %w", err)
	}
	if err := compiled.Validate(doc); err != nil {
		return fmt.Errorf("catalog schema validation failed: %w", err)
	}
	return nil
}
