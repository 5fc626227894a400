package schema_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/carepath/pkg/schema"
)

var treatment = schema.Schema{
	"id":           schema.String(),
	"type":         schema.Enum("decision", "action", "treatment"),
	"durationDays": schema.Optional(schema.Int()),
	"plus":         schema.Optional(schema.Slice(schema.String())),
	"dose":         schema.Optional(schema.Any()),
	"metadata": schema.Optional(schema.Object(schema.Schema{
		"version": schema.String(),
	})),
}

func fieldErrors(t *testing.T, err error) []*schema.ValidationError {
	t.Helper()
	var aggr *schema.AggregateError
	require.True(t, errors.As(err, &aggr), "want *AggregateError, got %T", err)
	out := make([]*schema.ValidationError, 0, len(aggr.Errors))
	for _, e := range aggr.Errors {
		var ve *schema.ValidationError
		require.True(t, errors.As(e, &ve))
		out = append(out, ve)
	}
	return out
}

func TestValidate(t *testing.T) {
	t.Run("Valid node with unknown keys", func(t *testing.T) {
		err := schema.Validate(treatment, map[string]any{
			"id":           "amox-5d",
			"type":         "treatment",
			"durationDays": 5.0,
			"plus":         []any{"Paracetamol"},
			"dose":         map[string]any{"child": "40mg/kg/day"},
			"unmodelled":   true,
		})
		assert.NoError(t, err)
	})

	t.Run("Missing required fields", func(t *testing.T) {
		errs := fieldErrors(t, schema.Validate(treatment, map[string]any{}))
		require.Len(t, errs, 2)
		assert.Equal(t, "id", errs[0].Key)
		assert.Equal(t, "required", errs[0].Reason)
		assert.Equal(t, "type", errs[1].Key)
	})

	t.Run("Every mismatch is reported in key order", func(t *testing.T) {
		errs := fieldErrors(t, schema.Validate(treatment, map[string]any{
			"id":           3.0,
			"type":         "prescription",
			"durationDays": "five",
		}))
		require.Len(t, errs, 3)
		assert.Equal(t, []string{"durationDays", "id", "type"}, []string{errs[0].Key, errs[1].Key, errs[2].Key})
		assert.Equal(t, "five", errs[0].Value)
	})

	t.Run("Nested keys are dotted", func(t *testing.T) {
		errs := fieldErrors(t, schema.Validate(treatment, map[string]any{
			"id":       "a",
			"type":     "action",
			"metadata": map[string]any{},
		}))
		require.Len(t, errs, 1)
		assert.Equal(t, "metadata.version", errs[0].Key)
		assert.Equal(t, `field "metadata.version": required`, errs[0].Error())
	})

	t.Run("Explicit null on an optional field", func(t *testing.T) {
		assert.NoError(t, schema.Validate(treatment, map[string]any{"id": "a", "type": "action", "plus": nil}))
	})

	t.Run("Empty schema accepts anything", func(t *testing.T) {
		assert.NoError(t, schema.Validate(nil, map[string]any{"x": 1}))
		assert.NoError(t, schema.Validate(schema.Schema{}, nil))
	})
}

func TestAggregateError(t *testing.T) {
	one := &schema.AggregateError{Errors: []error{&schema.ValidationError{Key: "id", Reason: "required"}}}
	assert.Equal(t, `field "id": required`, one.Error())

	two := &schema.AggregateError{Errors: []error{
		&schema.ValidationError{Key: "id", Reason: "required"},
		&schema.ValidationError{Key: "drug", Reason: "expected string, got bool", Value: true},
	}}
	assert.Equal(t, "2 validation errors:\n"+
		"  1. field \"id\": required\n"+
		"  2. field \"drug\": expected string, got bool (got bool)\n", two.Error())
}
