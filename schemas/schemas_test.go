package schemas

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"
)

func TestProfileSchema_ValidJSON(t *testing.T) {
	var v interface{}
	err := json.Unmarshal(Profile, &v)
	require.NoError(t, err, "schema file should be valid JSON")
}

func TestProfileSchema_Compiles(t *testing.T) {
	loader := gojsonschema.NewBytesLoader(Profile)
	_, err := gojsonschema.NewSchema(loader)
	assert.NoError(t, err, "schema should compile as draft-07 JSON Schema")
}
