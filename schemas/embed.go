// Package schemas embeds the JSON Schema documents shipped with the binary.
package schemas

import _ "embed"

// Profile is the schema every candidate profile document must satisfy
// before the pipeline accepts it.
//
//go:embed profile.schema.json
var Profile []byte
