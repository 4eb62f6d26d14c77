package parser

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// stepSchema validates a single step object. The action field is the only
// hard requirement; everything else depends on the action kind and is
// checked at execution time.
const stepSchema = `{
  "type": "object",
  "required": ["action"],
  "properties": {
    "action":           {"type": "string", "minLength": 1},
    "selectors":        {"type": "array", "items": {"type": "string"}},
    "value":            {"type": "string"},
    "url":              {"type": "string"},
    "selectorRef":      {"type": "string"},
    "object-folder-id": {"type": "string"},
    "inIframe":         {"type": "boolean"},
    "frameInfo": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["frameSelector"],
        "properties": {
          "index":         {"type": "integer", "minimum": 0},
          "frameSelector": {"type": "string", "minLength": 1}
        }
      }
    },
    "store_as":       {"type": "string"},
    "targetSelector": {"type": "string"},
    "attributeName":  {"type": "string"},
    "hash":           {"type": "string"}
  }
}`

var payloadSchema = fmt.Sprintf(`{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "minItems": 1,
  "items": {
    "oneOf": [
      %[1]s,
      {"type": "array", "items": %[1]s},
      {
        "type": "object",
        "required": ["steps"],
        "properties": {
          "name":  {"type": "string"},
          "steps": {"type": "array", "items": %[1]s}
        }
      }
    ]
  }
}`, stepSchema)

// ValidationError describes a single schema violation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks a raw payload against the input schema and returns every
// violation found.
func Validate(data []byte) ([]*ValidationError, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(payloadSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("validating payload: %w", err)
	}

	if result.Valid() {
		return nil, nil
	}

	errs := make([]*ValidationError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		errs = append(errs, &ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
		})
	}
	return errs, nil
}
