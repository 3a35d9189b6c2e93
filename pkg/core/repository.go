package core

import (
	"context"
	"time"
)

// Source yields the full text of a named document.
type Source interface {
	// Read returns the whole document. A missing document is an error.
	Read(ctx context.Context, name string) ([]byte, error)
}

// Sink accepts the full text of a named document.
type Sink interface {
	// Write replaces the document with data.
	Write(ctx context.Context, name string, data []byte) error
}

// Repository defines the contract for storing and retrieving catalog documents.
// Adhering to this interface allows the core to be independent of the
// underlying storage mechanism (Filesystem, SQLite, ...).
type Repository interface {
	Source
	Sink

	// Initialize ensures the underlying storage is ready (e.g., create directories, git init, schema migration).
	Initialize(ctx context.Context) error
}

// Watchable defines an interface for repositories that report external changes.
type Watchable interface {
	// Watch emits an event whenever the named document changes.
	// The channel is closed when ctx is done.
	Watch(ctx context.Context, name string) (<-chan Event, error)
}

// Codec converts a whole collection to and from one Format.
//
// Decode may return books together with a non-nil error. When every
// component of that error is row-level (see IsRowError) the books are the
// rows that survived; any other error means nothing was decoded.
type Codec interface {
	Decode(data []byte) ([]Book, error)
	Encode(books []Book) ([]byte, error)
}

// Confirmer asks the user to approve a destructive operation.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a plain function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

type contextKey string

// ChangeReasonKey is the context key for passing a change reason (commit message) to Sink.Write.
const ChangeReasonKey contextKey = "change_reason"

// ChangeReason returns the change reason carried by ctx, or fallback.
func ChangeReason(ctx context.Context, fallback string) string {
	if val, ok := ctx.Value(ChangeReasonKey).(string); ok && val != "" {
		return val
	}
	return fallback
}

// Revision is one recorded change of a document.
type Revision struct {
	ID     string    `json:"id"`
	Reason string    `json:"reason"`
	When   time.Time `json:"when"`
}

// Versioned is implemented by repositories that keep a change history.
type Versioned interface {
	// History lists the revisions of the named document, newest first.
	History(ctx context.Context, name string) ([]Revision, error)
}
