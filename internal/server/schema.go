package server

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// compileSchemas compiles the input schema of every tool.
func compileSchemas(tools []Tool) (map[string]*jsonschema.Schema, error) {
	schemas := make(map[string]*jsonschema.Schema, len(tools))
	for _, tool := range tools {
		raw, err := json.Marshal(tool.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize schema of %s: %w", tool.Name, err)
		}

		url := tool.Name + ".json"
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("failed to load schema of %s: %w", tool.Name, err)
		}
		schema, err := compiler.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema of %s: %w", tool.Name, err)
		}
		schemas[tool.Name] = schema
	}
	return schemas, nil
}

// validateArgs checks tool arguments against the tool's input schema.
// Missing arguments validate as an empty object.
func (s *Server) validateArgs(name string, args json.RawMessage) error {
	schema, ok := s.schemas[name]
	if !ok {
		return fmt.Errorf("unknown tool: %s", name)
	}

	var doc any = map[string]any{}
	if len(bytes.TrimSpace(args)) > 0 && !bytes.Equal(bytes.TrimSpace(args), []byte("null")) {
		if err := json.Unmarshal(args, &doc); err != nil {
			return fmt.Errorf("arguments are not valid JSON: %w", err)
		}
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("arguments do not match schema: %w", err)
	}
	return nil
}
