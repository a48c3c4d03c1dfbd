package tidy

import (
	"fmt"
)

// ConfigurationError reports a missing, malformed or contradictory job
// parameter. Raw carries the offending input verbatim when there is one.
type ConfigurationError struct {
	Param string
	Raw   string
	Msg   string
	Err   error
}

func (e *ConfigurationError) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = "invalid configuration"
	}
	if e.Param != "" {
		msg = fmt.Sprintf("%s (parameter %s)", msg, e.Param)
	}
	if e.Raw != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Raw)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// NotFoundError reports an input path that does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string { return "file not found: " + e.Path }

// SchemaError reports a column reference or column set that does not fit
// a dataset.
type SchemaError struct {
	Column string
	Msg    string
}

func (e *SchemaError) Error() string {
	if e.Column == "" {
		return "schema: " + e.Msg
	}
	return fmt.Sprintf("schema: column %q: %s", e.Column, e.Msg)
}
