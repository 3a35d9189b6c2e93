package shelf

import (
	"log/slog"

	"github.com/YaroslavMizgirev/shelf/internal/platform"
	"github.com/YaroslavMizgirev/shelf/pkg/core"
)

// --- Types ---

// Book is a catalog record.
type Book = core.Book

// Service is the collection synchronizer.
type Service = core.Service

// --- Configuration ---

// Option defines a functional option for configuring shelf.
type Option = platform.Option

// WithAutoInit enables automatic initialization of the library (creates directory and git init).
func WithAutoInit(auto bool) Option {
	return platform.WithAutoInit(auto)
}

// WithVersioning enables or disables version control.
func WithVersioning(enabled bool) Option {
	return platform.WithVersioning(enabled)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithDevSafety controls the sandbox used under `go run` and `go test`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithMustExist ensures the library directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithRepository allows injecting a custom storage adapter.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// WithAdapter selects the storage adapter by name ("fs" or "sqlite").
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithSystemDir sets the hidden directory name (default ".shelf").
func WithSystemDir(name string) Option {
	return platform.WithSystemDir(name)
}

// WithCatalog sets the catalog document name (default "lib.csv").
func WithCatalog(name string) Option {
	return platform.WithCatalog(name)
}

// WithEventBuffer sets the buffer of the channel returned by Service.Watch.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// WithStrict makes malformed rows and fields errors instead of warnings.
func WithStrict(strict bool) Option {
	return platform.WithStrict(strict)
}

// WithReadOnly enables read-only mode.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithConfirmer sets the prompt consulted before removals.
func WithConfirmer(c core.Confirmer) Option {
	return platform.WithConfirmer(c)
}

// WithSerializer registers a codec for a format.
func WithSerializer(format core.Format, c core.Codec) Option {
	return platform.WithSerializer(format, c)
}

// WithWatcherErrorHandler registers a callback for watch loop failures.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Factory ---

// New creates a new shelf Service. The catalog is not loaded yet.
func New(path string, opts ...Option) (*core.Service, error) {
	return platform.New(path, opts...)
}

// Init prepares the library at path without creating a service.
func Init(path string, opts ...Option) (core.Repository, error) {
	return platform.Init(path, opts...)
}

// FindRoot looks upwards from dir for a library root.
func FindRoot(dir string) (string, error) {
	return platform.FindRoot(dir)
}
