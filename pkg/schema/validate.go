package schema

import (
	"errors"
	"maps"
	"slices"
)

// Schema is a map of field names to their expected types.
// Example: {"id": String(), "actions": Optional(Slice(String()))}
type Schema map[string]Type

// Validate checks if data conforms to the schema.
// Fields are checked in name order and every failure is reported. Keys of data that the
// schema does not mention are ignored.
func Validate(schema Schema, data map[string]any) error {
	if len(schema) == 0 {
		return nil
	}

	var errs []error
	for _, fieldName := range slices.Sorted(maps.Keys(schema)) {
		errs = append(errs, check(fieldName, schema[fieldName], data)...)
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

func check(fieldName string, fieldType Type, data map[string]any) []error {
	value, exists := data[fieldName]
	if !exists {
		if isOptional(fieldType) {
			return nil
		}
		return []error{&ValidationError{Key: fieldName, Reason: "required"}}
	}

	err := fieldType.Validate(value)
	if err == nil {
		return nil
	}

	// Nested object failures are flattened with a dotted key.
	if aggr, ok := err.(*AggregateError); ok {
		out := make([]error, 0, len(aggr.Errors))
		for _, nested := range aggr.Errors {
			var ve *ValidationError
			if errors.As(nested, &ve) {
				out = append(out, &ValidationError{Key: fieldName + "." + ve.Key, Reason: ve.Reason, Value: ve.Value})
				continue
			}
			out = append(out, &ValidationError{Key: fieldName, Reason: nested.Error()})
		}
		return out
	}

	return []error{&ValidationError{Key: fieldName, Reason: err.Error(), Value: value}}
}
