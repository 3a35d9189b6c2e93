package platform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/YaroslavMizgirev/shelf/pkg/adapters/fs"
	"github.com/YaroslavMizgirev/shelf/pkg/adapters/sqlite"
	"github.com/YaroslavMizgirev/shelf/pkg/core"
)

// DefaultSystemDir is the hidden directory holding locks and local state.
const DefaultSystemDir = ".shelf"

// Init prepares the library at uri and returns its repository.
// The uri is adapter-specific: a directory for "fs", a directory or a
// database file for "sqlite".
func Init(uri string, opts ...Option) (core.Repository, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return initRepository(uri, o)
}

func initRepository(uri string, o *options) (core.Repository, error) {
	if o.repository != nil {
		return o.repository, nil
	}

	var repo core.Repository
	var err error

	switch o.adapter {
	case "fs", "":
		repo, err = initFS(uri, o)
	case "sqlite":
		repo, err = initSQLite(uri, o)
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}
	if err != nil {
		return nil, err
	}

	if err := repo.Initialize(context.Background()); err != nil {
		return nil, err
	}
	return repo, nil
}

// resolvePath applies the dev sandbox rules to the library path.
func resolvePath(path string, o *options) (string, bool) {
	tempDir, _ := o.config["temp_dir"].(bool)
	isReadOnly, _ := o.config["read_only"].(bool)
	devSafety := true
	if val, ok := o.config["dev_safety"].(bool); ok {
		devSafety = val
	}

	bypassSafety := isReadOnly || !devSafety
	useTemp := tempDir || (IsDevRun() && !bypassSafety)
	resolved := ResolveLibraryPath(path, useTemp)

	if o.logger != nil && useTemp && resolved != filepath.Clean(path) {
		o.logger.Warn("running in SAFE MODE (Dev/Test)", "original_path", path, "resolved_path", resolved)
	}
	return resolved, useTemp
}

// initFS handles the initialization logic for the filesystem adapter.
func initFS(path string, o *options) (core.Repository, error) {
	autoInit, _ := o.config["auto_init"].(bool)
	gitless, _ := o.config["gitless"].(bool)
	mustExist, _ := o.config["must_exist"].(bool)
	isReadOnly, _ := o.config["read_only"].(bool)
	systemDir, _ := o.config["system_dir"].(string)
	errorHandler, _ := o.config["watcher_error_handler"].(func(error))

	if systemDir == "" {
		systemDir = DefaultSystemDir
	}
	resolvedPath, useTemp := resolvePath(path, o)

	// Without an explicit choice, versioning follows the directory:
	// an existing .git means Git, a fresh library started with auto-init
	// gets Git when it is installed, anything else stays gitless.
	if _, ok := o.config["gitless"]; !ok {
		switch {
		case hasFile(resolvedPath, ".git"):
			gitless = false
		case autoInit && !hasFile(resolvedPath, systemDir):
			gitless = !fs.IsGitInstalled()
		default:
			gitless = true
		}
		if gitless && o.logger != nil {
			o.logger.Debug("auto-detected gitless mode", "reason", ".git missing")
		}
	}

	repo := fs.NewRepository(fs.Config{
		Path:         resolvedPath,
		AutoInit:     autoInit,
		Gitless:      gitless,
		MustExist:    mustExist || (!autoInit && !useTemp),
		ReadOnly:     isReadOnly,
		SystemDir:    systemDir,
		Logger:       o.logger,
		ErrorHandler: errorHandler,
	})
	return repo, nil
}

// initSQLite opens the snapshot database. A uri ending in ".db" names the
// file; anything else is the library directory holding shelf.db.
func initSQLite(uri string, o *options) (core.Repository, error) {
	isReadOnly, _ := o.config["read_only"].(bool)
	mustExist, _ := o.config["must_exist"].(bool)

	resolved, _ := resolvePath(uri, o)
	dbPath := resolved
	if !strings.HasSuffix(strings.ToLower(resolved), ".db") {
		dbPath = filepath.Join(resolved, sqlite.DefaultFilename)
	}
	if mustExist {
		if _, err := os.Stat(dbPath); err != nil {
			return nil, fmt.Errorf("library database does not exist: %s", dbPath)
		}
	}

	return sqlite.NewRepository(sqlite.Config{
		Path:     dbPath,
		ReadOnly: isReadOnly,
		Logger:   o.logger,
	}), nil
}
