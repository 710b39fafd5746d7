package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	ErrSchemaInvalid    = errors.New("schema invalid")
	ErrSchemaValidation = errors.New("schema validation failed")
)

// Issue captures a single validation failure.
type Issue struct {
	Location string
	Message  string
}

// OptionsError lists the required option names that were absent and any
// other schema violations found in the payload.
type OptionsError struct {
	Missing []string
	Issues  []Issue
	Cause   error
}

func (e *OptionsError) Error() string {
	parts := make([]string, 0, len(e.Missing)+len(e.Issues))
	for _, name := range e.Missing {
		parts = append(parts, fmt.Sprintf("missing option %q", name))
	}
	for _, issue := range e.Issues {
		location := issue.Location
		if location == "" {
			location = "#"
		} else if !strings.HasPrefix(location, "#") {
			location = "#" + location
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	if len(parts) == 0 && e.Cause != nil {
		return e.Cause.Error()
	}
	return strings.Join(parts, "; ")
}

func (e *OptionsError) Unwrap() error { return ErrSchemaValidation }

// Compile validates schema and returns the compiled form.
func Compile(schema map[string]any) (*jsonschema.Schema, error) {
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("schema.json", bytes.NewReader(encoded)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	return compiled, nil
}

// ValidateOptions checks options against schema. Top level required
// properties that are absent are reported by name in OptionsError.Missing so
// callers can surface the option that must be supplied.
func ValidateOptions(schema map[string]any, options map[string]any) error {
	if len(schema) == 0 {
		return nil
	}
	compiled, err := Compile(schema)
	if err != nil {
		return err
	}

	payload, err := normalizePayload(options)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}

	missing := missingRequired(schema, options)
	validationErr := compiled.Validate(payload)
	if validationErr == nil && len(missing) == 0 {
		return nil
	}

	out := &OptionsError{Missing: missing, Cause: validationErr}
	var schemaErr *jsonschema.ValidationError
	if errors.As(validationErr, &schemaErr) {
		for _, issue := range collectIssues(schemaErr) {
			if len(missing) > 0 && strings.Contains(issue.Message, "missing properties") {
				continue
			}
			out.Issues = append(out.Issues, issue)
		}
	}
	return out
}

// normalizePayload round trips options through JSON so typed Go values
// ([]string, int) become the generic shapes the validator expects.
func normalizePayload(options map[string]any) (any, error) {
	if options == nil {
		return map[string]any{}, nil
	}
	encoded, err := json.Marshal(options)
	if err != nil {
		return nil, err
	}
	var payload any
	decoder := json.NewDecoder(bytes.NewReader(encoded))
	decoder.UseNumber()
	if err := decoder.Decode(&payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func missingRequired(schema map[string]any, options map[string]any) []string {
	var required []string
	switch v := schema["required"].(type) {
	case []string:
		required = v
	case []any:
		for _, item := range v {
			if name, ok := item.(string); ok {
				required = append(required, name)
			}
		}
	}
	var missing []string
	for _, name := range required {
		if _, ok := options[name]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

func collectIssues(err *jsonschema.ValidationError) []Issue {
	var issues []Issue
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, Issue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
