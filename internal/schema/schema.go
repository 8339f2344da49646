// Package schema validates serialized results against the embedded output
// schema. Only the two top-level fields are checked.
package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed result.schema.json
var resultSchema []byte

const resultSchemaURL = "result.schema.json"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("result does not match schema")

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func load() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(resultSchemaURL, bytes.NewReader(resultSchema)); err != nil {
			compileErr = fmt.Errorf("failed to load result schema: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile(resultSchemaURL)
		if compileErr != nil {
			compileErr = fmt.Errorf("failed to compile result schema: %w", compileErr)
		}
	})
	return compiled, compileErr
}

// Validate checks serialized result JSON.
func Validate(data []byte) error {
	sch, err := load()
	if err != nil {
		return err
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Raw returns the embedded schema document.
func Raw() []byte {
	return bytes.Clone(resultSchema)
}
