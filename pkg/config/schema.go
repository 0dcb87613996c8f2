package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/kaptinlin/jsonschema"
)

//go:embed schema/config.schema.json
var schemaJSON []byte

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// SchemaError reports a JSON document that does not match the
// configuration schema.
type SchemaError struct {
	// Problems lists each failing location with its message.
	Problems []string
}

func (e SchemaError) Error() string {
	if len(e.Problems) == 0 {
		return "configuration does not match schema"
	}
	return fmt.Sprintf("configuration does not match schema: %s", strings.Join(e.Problems, "; "))
}

// Schema returns the embedded JSON Schema for configuration documents.
func Schema() []byte {
	return append([]byte(nil), schemaJSON...)
}

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiledSchema, schemaErr = compiler.Compile(schemaJSON)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile configuration schema: %w", schemaErr)
		}
	})
	return compiledSchema, schemaErr
}

// ValidateSchema checks a JSON configuration document against the embedded
// schema. It returns a SchemaError listing every problem.
func ValidateSchema(data []byte) error {
	schema, err := loadSchema()
	if err != nil {
		return err
	}
	result := schema.ValidateJSON(data)
	if result.IsValid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors))
	for location, e := range result.Errors {
		problems = append(problems, fmt.Sprintf("%s: %s", location, e.Message))
	}
	sort.Strings(problems)
	return SchemaError{Problems: problems}
}

// isJSONDocument reports whether a configuration document is JSON, either
// by extension or because it starts with an object.
func isJSONDocument(path string, data []byte) bool {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return true
	}
	return bytes.HasPrefix(bytes.TrimSpace(data), []byte("{"))
}
