package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	productSchemaOnce sync.Once
	productSchema     *jsonschema.Schema
	productSchemaErr  error
)

// CheckProductSchema validates structuring output against ProductArraySchema.
// The decoder is lenient and may still recover records from output that fails
// this check; callers report the mismatch instead of rejecting the document.
func CheckProductSchema(output string) error {
	productSchemaOnce.Do(func() {
		productSchema, productSchemaErr = compileSchema(ProductArraySchema())
	})
	if productSchemaErr != nil {
		return productSchemaErr
	}
	return validateWith(productSchema, []byte(StripCodeFence(output)))
}

func compileSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

func validateWith(schema *jsonschema.Schema, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
