package platform

import (
	"log/slog"

	"github.com/YaroslavMizgirev/shelf/pkg/core"
)

// options holds the internal configuration for the shelf service.
type options struct {
	repository  core.Repository
	logger      *slog.Logger
	adapter     string
	confirmer   core.Confirmer
	config      map[string]interface{}
	serializers map[core.Format]core.Codec
}

// Option defines a functional option for configuring shelf.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		adapter:     "fs",
		config:      make(map[string]interface{}),
		serializers: make(map[core.Format]core.Codec),
	}
}

// WithSerializer registers a codec for a format, replacing the default one.
func WithSerializer(format core.Format, c core.Codec) Option {
	return func(o *options) {
		o.serializers[format] = c
	}
}

// WithAutoInit enables automatic initialization of the library (creates directory and git init).
func WithAutoInit(auto bool) Option {
	return func(o *options) {
		o.config["auto_init"] = auto
	}
}

// WithVersioning enables or disables version control (Git for "fs").
// When not set, versioning follows what the library directory already uses.
func WithVersioning(enabled bool) Option {
	return func(o *options) {
		o.config["gitless"] = !enabled
	}
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.config["temp_dir"] = force
	}
}

// WithMustExist ensures the library directory must already exist.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.config["must_exist"] = must
	}
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRepository allows injecting a custom storage adapter (e.g. a mock).
// If provided, the named adapter is skipped.
func WithRepository(repo core.Repository) Option {
	return func(o *options) {
		o.repository = repo
	}
}

// WithAdapter selects the storage adapter by name: "fs" or "sqlite".
// Defaults to "fs".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithSystemDir sets the hidden directory name (default ".shelf").
func WithSystemDir(name string) Option {
	return func(o *options) {
		o.config["system_dir"] = name
	}
}

// WithCatalog sets the catalog document name (default "lib.csv").
func WithCatalog(name string) Option {
	return func(o *options) {
		o.config["catalog"] = name
	}
}

// WithEventBuffer sets the buffer of the channel returned by Service.Watch.
// Zero means default (100).
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.config["event_buffer"] = size
	}
}

// WithStrict makes malformed rows and fields errors instead of warnings.
// Non-numeric years and isRead values other than true/false are rejected.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.config["strict"] = strict
	}
}

// WithConfirmer sets the prompt consulted before removals.
func WithConfirmer(c core.Confirmer) Option {
	return func(o *options) {
		o.confirmer = c
	}
}

// WithWatcherErrorHandler registers a callback for errors occurring in the
// watch loop (e.g. permission denied), which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.config["watcher_error_handler"] = fn
	}
}

// WithReadOnly enables read-only mode.
// In this mode:
// 1. Mutations return core.ErrReadOnly.
// 2. Initialization (Mkdir, Git Init) is skipped.
// 3. The dev sandbox is bypassed (uses the real path).
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.config["read_only"] = enabled
	}
}

// WithDevSafety controls the sandbox used when running via `go run` or
// `go test`. By default (true) the library is re-rooted into a temporary
// directory to prevent accidental data loss.
//
// CAUTION: Only disable this if you are sure your code is safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.config["dev_safety"] = enabled
	}
}
