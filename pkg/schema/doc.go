// Package schema validates the shape of generic decoded documents.
//
// JSON and YAML documents are first decoded into map[string]any; a Schema maps field
// names to Types and reports every mismatch at once, with dotted keys for nested
// objects:
//
//	node := schema.Schema{
//	    "id":           schema.String(),
//	    "type":         schema.Enum("decision", "action", "treatment"),
//	    "durationDays": schema.Optional(schema.Int()),
//	    "plus":         schema.Optional(schema.Slice(schema.String())),
//	    "dose":         schema.Optional(schema.Any()),
//	}
//
//	if err := schema.Validate(node, data); err != nil {
//	    var aggr *schema.AggregateError
//	    if errors.As(err, &aggr) {
//	        // each entry is a *schema.ValidationError with Key and Reason
//	    }
//	}
//
// Keys the schema does not mention are ignored. The package has no dependencies
// beyond the standard library.
package schema
