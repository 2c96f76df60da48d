package ical

import (
	"errors"
	"fmt"
)

// RenderError reports an event field that can't be rendered into
// iCalendar, e.g. an unparseable datetime.
type RenderError struct {
	Field string
	Value string
	Err   error
}

func (e *RenderError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("can't render %s %q", e.Field, e.Value)
	}
	return fmt.Sprintf("can't render %s %q: %s", e.Field, e.Value, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

func newRenderError(field, value string, err error) *RenderError {
	return &RenderError{Field: field, Value: value, Err: err}
}

var errEndNotAfterStart = errors.New("end must be after start")
