package blockmodel

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var schemaSource string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

// documentSchema checks the document shape only. Block members are left
// loose so that a single bad block becomes a per-block diagnostic rather than
// failing the whole load.
func documentSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("blockmodel.schema.json", schemaSource)
	})
	return schema, schemaErr
}

// Parse decodes and validates a model document.
func Parse(data []byte) (*Document, error) {
	s, err := documentSchema()
	if err != nil {
		return nil, fmt.Errorf("could not compile document schema: %w", err)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if obj, ok := raw.(map[string]any); ok {
		if v, ok := obj["regions"]; !ok || v == nil {
			return nil, ErrNoRegions
		}
	}
	if err := s.Validate(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	var doc Document
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if doc.Regions == nil {
		return nil, ErrNoRegions
	}
	return &doc, nil
}
