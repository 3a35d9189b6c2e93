package core

import "errors"

// Common errors.
var (
	// ErrMalformedRow marks a row that tokenizes to fewer than nine fields.
	ErrMalformedRow = errors.New("malformed row")
	// ErrMalformedField marks a field that failed coercion in strict mode.
	ErrMalformedField = errors.New("malformed field")
	// ErrUnsupportedFormat is returned by imports of anything that is neither
	// the delimited dialect nor a sequence of structured objects.
	ErrUnsupportedFormat = errors.New("unsupported import format")
	// ErrSourceUnavailable is returned when the catalog document cannot be read.
	ErrSourceUnavailable = errors.New("catalog source unavailable")
	ErrNotFound          = errors.New("book not found")
	ErrDuplicateID       = errors.New("book id already exists")
	ErrReadOnly          = errors.New("repository is in read-only mode")
)
