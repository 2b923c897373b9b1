package validation

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"mortgage-workers/pkg/registry"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Validator checks job variables against the input schemas declared in the
// activity registry, keyed by task type.
type Validator struct {
	schemas map[string]*gojsonschema.Schema
}

// NewValidator compiles the input schema of every registry activity. An
// activity without an input schema accepts any variables.
func NewValidator(reg *registry.ActivityRegistry) (*Validator, error) {
	v := &Validator{schemas: make(map[string]*gojsonschema.Schema)}
	if reg == nil {
		return v, nil
	}
	for _, activity := range reg.Activities {
		if len(activity.InputSchema) == 0 {
			continue
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(activity.InputSchema))
		if err != nil {
			return nil, fmt.Errorf("compile input schema for %s: %w", activity.TaskType, err)
		}
		v.schemas[activity.TaskType] = schema
	}
	return v, nil
}

// ValidateInput validates raw job variables for taskType. Errors are sorted
// by field for stable reporting.
func (v *Validator) ValidateInput(taskType string, variables []byte) (*ValidationResult, error) {
	if v == nil {
		return &ValidationResult{Valid: true}, nil
	}
	schema, ok := v.schemas[taskType]
	if !ok {
		return &ValidationResult{Valid: true}, nil
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(variables))
	if err != nil {
		return nil, fmt.Errorf("validate %s input: %w", taskType, err)
	}

	errs := make([]ValidationError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		errs = append(errs, ValidationError{
			Field:   fieldPath(desc),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })

	return &ValidationResult{Valid: result.Valid(), Errors: errs}, nil
}

// HasSchema reports whether taskType has a compiled input schema.
func (v *Validator) HasSchema(taskType string) bool {
	if v == nil {
		return false
	}
	_, ok := v.schemas[taskType]
	return ok
}

// fieldPath renders a gojsonschema context as scenario.applicants[0].age.
// Required-property errors point at the missing property itself.
func fieldPath(desc gojsonschema.ResultError) string {
	raw := strings.TrimPrefix(desc.Context().String(), "(root)")
	raw = strings.TrimPrefix(raw, ".")

	var b strings.Builder
	if raw != "" {
		for _, part := range strings.Split(raw, ".") {
			if _, err := strconv.Atoi(part); err == nil {
				b.WriteString("[" + part + "]")
				continue
			}
			if b.Len() > 0 {
				b.WriteString(".")
			}
			b.WriteString(part)
		}
	}

	if desc.Type() == "required" {
		if prop, ok := desc.Details()["property"].(string); ok {
			if b.Len() > 0 {
				b.WriteString(".")
			}
			b.WriteString(prop)
		}
	}
	if b.Len() == 0 {
		return "(root)"
	}
	return b.String()
}

// GetErrorMessages renders every error as "field: message".
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// FirstError returns the first error, if any.
func (vr *ValidationResult) FirstError() (ValidationError, bool) {
	if len(vr.Errors) == 0 {
		return ValidationError{}, false
	}
	return vr.Errors[0], true
}
