package content

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed pack_schema.json
var packSchemaJSON string

var packSchema = jsonschema.MustCompileString("pack_schema.json", packSchemaJSON)

// DecodeJSON validates raw JSON against the pack schema (unknown and missing
// keys are rejected) and decodes it into a Pack. Administrative uploads go
// through here so a permissive client cannot smuggle malformed curves or
// negative weights into the active configuration.
func DecodeJSON(data []byte) (*Pack, error) {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("pack is not valid JSON: %w", err)
	}
	if err := packSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("pack failed schema validation: %w", err)
	}

	var pack Pack
	if err := json.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("decode pack: %w", err)
	}
	if err := pack.Validate(); err != nil {
		return nil, err
	}
	return &pack, nil
}
