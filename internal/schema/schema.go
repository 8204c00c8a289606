// Package schema validates structured documents against a JSON Schema.
package schema

import (
	_ "embed"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/spigell/ats-checker/internal/document"
)

//go:embed resume.schema.json
var resumeSchema string

// ValidationError lists every schema violation of a document.
type ValidationError struct {
	Errors []FieldError
}

// FieldError is a single violation at a field path.
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// LoadError is returned when the schema itself cannot be compiled.
type LoadError struct {
	Source string
	Cause  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load schema %s: %v", e.Source, e.Cause)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Validator checks documents against a compiled schema. Safe for concurrent
// use.
type Validator struct {
	source string
	schema *gojsonschema.Schema
}

// NewResumeValidator returns a validator for the bundled resume schema.
func NewResumeValidator() (*Validator, error) {
	return NewFromString(resumeSchema)
}

// NewFromString compiles a schema given as JSON text.
func NewFromString(content string) (*Validator, error) {
	return compile("(string schema)", gojsonschema.NewStringLoader(content))
}

// NewFromFile compiles the schema stored at path.
func NewFromFile(path string) (*Validator, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve schema path: %w", err)
	}
	return compile(abs, gojsonschema.NewReferenceLoader("file://"+filepath.ToSlash(abs)))
}

func compile(source string, loader gojsonschema.JSONLoader) (*Validator, error) {
	compiled, err := gojsonschema.NewSchema(loader)
	if err != nil {
		return nil, &LoadError{Source: source, Cause: err}
	}
	return &Validator{source: source, schema: compiled}, nil
}

// Source returns the schema origin used in messages.
func (v *Validator) Source() string { return v.source }

// Validate returns a *ValidationError when doc violates the schema.
func (v *Validator) Validate(doc document.Value) error {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(doc.Canonical()))
	if err != nil {
		return fmt.Errorf("validate document: %w", err)
	}
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}

	return validationErr
}
