package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJSONSchemaValidatorAcceptsChanges(t *testing.T) {
	validator := NewJSONSchemaValidator()
	for _, payload := range []string{
		`{"field":"region","value":"ภาค 1"}`,
		`{"field":"search_text","value":""}`,
		`{"field":"date_range","range":{"from":"2025-01-01T00:00:00Z","to":"2025-01-31T23:59:59Z"}}`,
		`{"field":"date_range","range":null}`,
	} {
		assert.NoError(t, validator.Validate([]byte(payload)), payload)
	}
}

func TestJSONSchemaValidatorRejectsChanges(t *testing.T) {
	validator := NewJSONSchemaValidator()
	for _, payload := range []string{
		`{"value":"ภาค 1"}`,
		`{"field":"colour","value":"red"}`,
		`{"field":"region","value":1}`,
		`{"field":"region","extra":true}`,
		`{"field":"date_range","range":{"from":"yesterday"}}`,
		`not json`,
	} {
		err := validator.Validate([]byte(payload))
		assert.ErrorIs(t, err, ErrInvalidChange, payload)
	}
}
