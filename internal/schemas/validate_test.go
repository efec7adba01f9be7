package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["id"],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"count": {"type": "integer"}
	}
}`

func TestValidateBytes_Valid(t *testing.T) {
	err := ValidateBytes([]byte(testSchema), []byte(`{"id": "abc", "count": 3}`))
	assert.NoError(t, err)
}

func TestValidateBytes_MissingRequiredField(t *testing.T) {
	err := ValidateBytes([]byte(testSchema), []byte(`{"count": 3}`))
	require.Error(t, err)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Greater(t, len(validationErr.Errors), 0)
}

func TestValidateBytes_WrongType(t *testing.T) {
	err := ValidateBytes([]byte(testSchema), []byte(`{"id": "abc", "count": "three"}`))
	require.Error(t, err)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	found := false
	for _, fe := range validationErr.Errors {
		if fe.Field == "count" {
			found = true
		}
	}
	assert.True(t, found, "expected a violation at field 'count'")
}

func TestValidateBytes_BrokenSchema(t *testing.T) {
	err := ValidateBytes([]byte(`{"type": 42}`), []byte(`{}`))
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestValidationError_MessageListsFields(t *testing.T) {
	err := &ValidationError{Errors: []FieldError{
		{Field: "id", Message: "is required"},
		{Field: "count", Message: "must be an integer"},
	}}
	msg := err.Error()
	assert.Contains(t, msg, "id")
	assert.Contains(t, msg, "count")
}
