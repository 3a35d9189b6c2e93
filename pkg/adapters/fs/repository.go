package fs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/YaroslavMizgirev/shelf/pkg/core"
	"github.com/YaroslavMizgirev/shelf/pkg/git"
)

// Repository implements core.Repository on a library directory, optionally
// versioned with Git.
type Repository struct {
	Path   string
	git    *git.Client
	config Config

	mu            sync.RWMutex
	watcherActive bool
	lastWrite     *time.Time
	writes        int
	uncommitted   int
}

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path      string
	AutoInit  bool // create the directory (and the git repository when versioned)
	Gitless   bool // skip committing writes
	MustExist bool
	ReadOnly  bool
	SystemDir string // e.g. ".shelf"; holds the write lock
	Logger    *slog.Logger
	// ErrorHandler receives watcher failures that would otherwise only be logged.
	ErrorHandler func(error)
}

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) *Repository {
	if config.SystemDir == "" {
		config.SystemDir = ".shelf"
	}
	return &Repository{
		Path:   config.Path,
		git:    git.NewClient(config.Path, config.Logger),
		config: config,
	}
}

// Initialize performs the necessary setup for the repository (mkdir, git init).
func (r *Repository) Initialize(ctx context.Context) error {
	if r.config.MustExist || r.config.ReadOnly {
		info, err := os.Stat(r.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("library path does not exist: %s", r.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("library path is not a directory: %s", r.Path)
		}
	} else if err := os.MkdirAll(r.Path, 0755); err != nil {
		return fmt.Errorf("failed to create library directory: %w", err)
	}

	if r.config.Gitless || r.config.ReadOnly {
		return nil
	}

	if !git.IsInstalled() {
		return fmt.Errorf("git is not installed")
	}

	wasNewRepo := false
	if !r.git.IsRepo() {
		if !r.config.AutoInit {
			return fmt.Errorf("path is not a git repository: %s", r.Path)
		}
		if err := r.git.Init(ctx); err != nil {
			return fmt.Errorf("failed to git init: %w", err)
		}
		wasNewRepo = true
	}

	mod, err := r.ensureIgnore()
	if err != nil {
		return fmt.Errorf("failed to ensure .gitignore: %w", err)
	}
	if mod && wasNewRepo {
		if err := r.git.Add(ctx, ".gitignore"); err != nil {
			return fmt.Errorf("failed to add .gitignore: %w", err)
		}
		if err := r.git.Commit(ctx, fmt.Sprintf("chore: configure %s ignore", r.config.SystemDir)); err != nil {
			return fmt.Errorf("failed to commit .gitignore: %w", err)
		}
	}

	return nil
}

// ensureIgnore keeps the system directory out of version control.
func (r *Repository) ensureIgnore() (bool, error) {
	ignorePath := filepath.Join(r.Path, ".gitignore")
	ignoreEntry := r.config.SystemDir + "/"

	content, err := os.ReadFile(ignorePath)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}

	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) == ignoreEntry {
			return false, nil
		}
	}

	f, err := os.OpenFile(ignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return false, err
	}
	defer f.Close()

	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		if _, err := f.WriteString("\n"); err != nil {
			return false, err
		}
	}
	if _, err := f.WriteString(ignoreEntry + "\n"); err != nil {
		return false, err
	}
	return true, nil
}

// resolve maps a document name onto a path inside the library.
func (r *Repository) resolve(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("document has no name")
	}
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("document %q is outside the library", name)
	}
	return filepath.Join(r.Path, clean), nil
}

// Read returns the full text of the named document.
func (r *Repository) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := r.resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if r.config.Logger != nil {
		r.config.Logger.Debug("read document", "name", name, "bytes", len(data))
	}
	return data, nil
}

// Write replaces the named document and, unless gitless, commits it.
//
// Workflow:
//  1. Take the library write lock.
//  2. Write the document atomically (temp file + rename).
//  3. (If Git enabled) 'git add' and 'git commit' with the change reason from ctx.
//
// Once the rename happened the document holds data, so a failed commit is
// logged and counted in State but does not fail the write.
func (r *Repository) Write(ctx context.Context, name string, data []byte) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	path, err := r.resolve(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	lockPath := filepath.Join(r.Path, r.config.SystemDir, "write.lock")
	err = withFileLock(ctx, lockPath, func() error {
		if err := writeFileAtomic(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write file: %w", err)
		}
		if r.config.Gitless {
			return nil
		}
		if err := r.commit(ctx, name); err != nil {
			r.recordUncommitted()
			if r.config.Logger != nil {
				r.config.Logger.Warn("document written but not committed", "name", name, "error", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.recordWrite()
	if r.config.Logger != nil {
		r.config.Logger.Debug("wrote document", "name", name, "bytes", len(data))
	}
	return nil
}

func (r *Repository) commit(ctx context.Context, name string) error {
	rel := filepath.ToSlash(filepath.Clean(filepath.FromSlash(name)))
	changed, err := r.git.Changed(ctx, rel)
	if err != nil {
		return fmt.Errorf("failed to git status: %w", err)
	}
	if !changed {
		return nil
	}
	if err := r.git.Add(ctx, rel); err != nil {
		return fmt.Errorf("failed to git add: %w", err)
	}
	if err := r.git.Commit(ctx, core.ChangeReason(ctx, "update "+rel)); err != nil {
		return fmt.Errorf("failed to git commit: %w", err)
	}
	return nil
}

// History returns the commits recorded for the named document, newest
// first. Gitless libraries have no history.
func (r *Repository) History(ctx context.Context, name string) ([]core.Revision, error) {
	if r.config.Gitless {
		return nil, fmt.Errorf("history is not available in gitless mode")
	}
	if _, err := r.resolve(name); err != nil {
		return nil, err
	}
	entries, err := r.git.Log(ctx, filepath.ToSlash(filepath.Clean(filepath.FromSlash(name))))
	if err != nil {
		return nil, err
	}
	revs := make([]core.Revision, 0, len(entries))
	for _, e := range entries {
		revs = append(revs, core.Revision{ID: e.Hash, Reason: e.Subject, When: e.When})
	}
	return revs, nil
}

// IsGitInstalled checks if git is available in the system path.
func IsGitInstalled() bool {
	return git.IsInstalled()
}

var _ core.Repository = (*Repository)(nil)
var _ core.Watchable = (*Repository)(nil)
var _ core.Versioned = (*Repository)(nil)
