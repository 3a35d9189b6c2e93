package dialect

import (
	"fmt"

	"github.com/YaroslavMizgirev/shelf/pkg/core"
)

// RowError locates a rejected row in a document.
type RowError struct {
	Line int // 1-based physical line
	Err  error
}

// Error formats the row error with its line number.
func (e *RowError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Unwrap returns the underlying Err so RowError participates in errors.Is.
func (e *RowError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// FieldError describes a field that could not be coerced in strict mode.
type FieldError struct {
	Field string
	Value string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%v: %s=%q", core.ErrMalformedField, e.Field, e.Value)
}

// Unwrap always yields core.ErrMalformedField.
func (e *FieldError) Unwrap() error {
	return core.ErrMalformedField
}

// shortRowError is returned by Decode for rows with too few fields.
func shortRowError(n int) error {
	return fmt.Errorf("%w: %d fields, want at least %d", core.ErrMalformedRow, n, Columns)
}
