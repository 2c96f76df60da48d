package model

import "fmt"

// SchemaViolationError means the oracle answered, but not with a JSON
// document matching the event schema. Raw is the unmodified answer.
type SchemaViolationError struct {
	Reason string
	Raw    string
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("oracle response violates the event schema: %s\nRaw output:\n%s", e.Reason, e.Raw)
}
