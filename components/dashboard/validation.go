package dashboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ChangeValidator checks raw filter-change payloads before they are decoded.
type ChangeValidator interface {
	Validate(payload []byte) error
}

const changeSchemaName = "filter_change.json"

func changeSchema() map[string]any {
	fields := make([]string, 0, len(Fields()))
	for _, f := range Fields() {
		fields = append(fields, string(f))
	}
	dateTime := map[string]any{"type": "string", "format": "date-time"}
	return map[string]any{
		"type":                 "object",
		"required":             []string{"field"},
		"additionalProperties": false,
		"properties": map[string]any{
			"field": map[string]any{"type": "string", "enum": fields},
			"value": map[string]any{"type": "string", "maxLength": 256},
			"range": map[string]any{
				"type":                 []string{"object", "null"},
				"additionalProperties": false,
				"properties": map[string]any{
					"from": dateTime,
					"to":   dateTime,
				},
			},
		},
	}
}

// JSONSchemaValidator validates filter changes against a compiled JSON schema.
type JSONSchemaValidator struct {
	once     sync.Once
	compiled *jsonschema.Schema
	err      error
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{}
}

// Validate ensures payload is a well-formed filter change.
func (v *JSONSchemaValidator) Validate(payload []byte) error {
	schema, err := v.schema()
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidChange, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidChange, err)
	}
	return nil
}

func (v *JSONSchemaValidator) schema() (*jsonschema.Schema, error) {
	v.once.Do(func() {
		data, err := json.Marshal(changeSchema())
		if err != nil {
			v.err = fmt.Errorf("dashboard: marshal change schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		compiler.AssertFormat = true
		if err := compiler.AddResource(changeSchemaName, bytes.NewReader(data)); err != nil {
			v.err = fmt.Errorf("dashboard: load change schema: %w", err)
			return
		}
		v.compiled, v.err = compiler.Compile(changeSchemaName)
		if v.err != nil {
			v.err = fmt.Errorf("dashboard: compile change schema: %w", v.err)
		}
	})
	return v.compiled, v.err
}
