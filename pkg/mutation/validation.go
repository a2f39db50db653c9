package mutation

import (
	"encoding/json"
	"errors"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema validates payloads of one transition kind against a JSON Schema
// (draft 2020-12). Schemas are compiled once, at engine construction, and
// reused for every live commit of that kind.
//
// Validation must happen before the transition is applied to state:
// a payload rejected after apply would leave state ahead of the log and
// break replay.
type Schema struct {
	compiled *jsonschema.Schema
}

// CompileSchema compiles raw schema bytes into a reusable Schema.
func CompileSchema(schema []byte) (*Schema, error) {
	if len(schema) == 0 {
		return nil, errors.New("schema is empty")
	}
	c := jsonschema.NewCompiler()
	// anonymous in-memory schema from parsed JSON
	var doc any
	if err := json.Unmarshal(schema, &doc); err != nil {
		return nil, err
	}
	if err := c.AddResource("mem://schema.json", doc); err != nil {
		return nil, err
	}
	sch, err := c.Compile("mem://schema.json")
	if err != nil {
		return nil, err
	}
	return &Schema{compiled: sch}, nil
}

// Validate checks a single payload. The payload is normalized through a
// JSON round trip first, so a live in-memory payload validates exactly like
// the same payload loaded back from an exported capture.
func (s *Schema) Validate(payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return s.compiled.Validate(v)
}
