package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/sultanMIB/pdf-ui/constants"
	"github.com/sultanMIB/pdf-ui/internal/lexicon"
	"github.com/sultanMIB/pdf-ui/internal/pipeline"
)

const resourceName = "analysis-result.json"

// ResultSchema describes both result shapes, with label enums taken from lex
// and collection bounds from limits.
func ResultSchema(lex *lexicon.Lexicon, limits pipeline.Limits) map[string]any {
	var entityLabels, docLabels, langLabels []any
	for _, t := range constants.EntityTypes() {
		entityLabels = append(entityLabels, lex.EntityLabel(t))
	}
	for _, t := range constants.DocumentTypes() {
		docLabels = append(docLabels, lex.DocumentLabel(t))
	}
	for _, l := range constants.Languages() {
		langLabels = append(langLabels, lex.LanguageLabel(l))
	}

	str := map[string]any{"type": "string"}
	strArray := map[string]any{"type": "array", "items": str}

	metadata := map[string]any{
		"type":     "object",
		"required": []any{"pageCount", "title", "author", "creationDate", "fileSizeKB"},
		"properties": map[string]any{
			"pageCount":    map[string]any{"type": "integer", "minimum": 0},
			"title":        str,
			"author":       str,
			"creationDate": str,
			"fileSizeKB":   map[string]any{"type": "string", "pattern": `^[0-9]+\.[0-9]{2}$`},
		},
	}
	table := map[string]any{
		"type":     "object",
		"required": []any{"page", "tableIndex", "headers", "rows"},
		"properties": map[string]any{
			"page":       map[string]any{"type": "integer", "minimum": 1},
			"tableIndex": map[string]any{"type": "integer", "minimum": 1},
			"headers":    strArray,
			"rows":       map[string]any{"type": "array", "items": strArray},
		},
	}
	ent := map[string]any{
		"type":     "object",
		"required": []any{"type", "text", "confidence"},
		"properties": map[string]any{
			"type":       map[string]any{"enum": entityLabels},
			"text":       map[string]any{"type": "string", "minLength": 1},
			"confidence": map[string]any{"type": "integer", "minimum": 70, "maximum": 95},
		},
	}
	sem := map[string]any{
		"type":     "object",
		"required": []any{"documentType", "topics", "language", "summary"},
		"properties": map[string]any{
			"documentType": map[string]any{"enum": docLabels},
			"topics":       map[string]any{"type": "array", "items": str, "maxItems": limits.Topics},
			"language":     map[string]any{"enum": langLabels},
			"summary":      str,
		},
	}

	success := map[string]any{
		"type": "object",
		"required": []any{
			"success", "basicInfo", "rawText", "tables", "entities", "semanticAnalysis", "processingTime",
		},
		"additionalProperties": false,
		"properties": map[string]any{
			"success":          map[string]any{"const": true},
			"basicInfo":        metadata,
			"rawText":          map[string]any{"type": "string", "maxLength": limits.RawTextRunes},
			"tables":           map[string]any{"type": "array", "items": table, "maxItems": limits.Tables},
			"entities":         map[string]any{"type": "array", "items": ent, "maxItems": limits.Entities},
			"semanticAnalysis": sem,
			"processingTime": map[string]any{
				"type":    "string",
				"pattern": `^[0-9]{4}-[0-9]{2}-[0-9]{2}T[0-9]{2}:[0-9]{2}:[0-9]{2}\.[0-9]{6}$`,
			},
		},
	}
	failure := map[string]any{
		"type":                 "object",
		"required":             []any{"success", "error"},
		"additionalProperties": false,
		"properties": map[string]any{
			"success": map[string]any{"const": false},
			"error":   map[string]any{"type": "string", "minLength": 1},
		},
	}

	return map[string]any{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"title":   "AnalysisResult",
		"oneOf":   []any{success, failure},
	}
}

// Compile turns a schema map into a reusable validator.
func Compile(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(resourceName, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(resourceName)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// ValidateJSON checks data against a compiled schema.
func ValidateJSON(schema *jsonschema.Schema, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

// ValidateJSONAgainstSchema compiles schemaMap and validates data in one step.
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	schema, err := Compile(schemaMap)
	if err != nil {
		return err
	}
	return ValidateJSON(schema, data)
}
