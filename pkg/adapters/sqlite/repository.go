// Package sqlite keeps catalog documents as an append-only log of snapshots
// in a SQLite database. Every write appends a revision; reads return the
// newest one.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/aretw0/introspection"
	_ "modernc.org/sqlite"

	"github.com/YaroslavMizgirev/shelf/pkg/core"
)

// DefaultFilename is the database file created inside the library directory.
const DefaultFilename = "shelf.db"

// Config holds the configuration for the SQLite repository.
type Config struct {
	Path     string // database file
	ReadOnly bool
	Logger   *slog.Logger
}

// Repository implements core.Repository on top of SQLite.
type Repository struct {
	config Config

	mu sync.Mutex
	db *sql.DB
}

// NewRepository creates a repository. The database is opened by Initialize.
func NewRepository(config Config) *Repository {
	return &Repository{config: config}
}

// Initialize opens the database and applies the schema.
func (r *Repository) Initialize(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db != nil {
		return nil
	}
	if !r.config.ReadOnly {
		if err := os.MkdirAll(filepath.Dir(r.config.Path), 0755); err != nil {
			return fmt.Errorf("ensure database directory: %w", err)
		}
	} else if _, err := os.Stat(r.config.Path); err != nil {
		return fmt.Errorf("open read-only database: %w", err)
	}

	db, err := sql.Open("sqlite", r.config.Path)
	if err != nil {
		return fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	r.db = db
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS snapshots (
        id         INTEGER PRIMARY KEY AUTOINCREMENT,
        name       TEXT NOT NULL,
        reason     TEXT NOT NULL,
        data       BLOB NOT NULL,
        written_at TEXT NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_snapshots_name ON snapshots(name, id)`,
}

// Close closes the underlying database connection.
func (r *Repository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

func (r *Repository) handle() (*sql.DB, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db == nil {
		return nil, errors.New("sqlite repository is not initialized")
	}
	return r.db, nil
}

// Read returns the newest snapshot of the named document.
func (r *Repository) Read(ctx context.Context, name string) ([]byte, error) {
	db, err := r.handle()
	if err != nil {
		return nil, err
	}

	var data []byte
	err = db.QueryRowContext(ctx,
		`SELECT data FROM snapshots WHERE name = ? ORDER BY id DESC LIMIT 1`, name,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", name, os.ErrNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return data, nil
}

// Write appends a new snapshot of the named document. A write identical to
// the newest snapshot is not stored again.
func (r *Repository) Write(ctx context.Context, name string, data []byte) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	db, err := r.handle()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var latest []byte
	err = tx.QueryRowContext(ctx,
		`SELECT data FROM snapshots WHERE name = ? ORDER BY id DESC LIMIT 1`, name,
	).Scan(&latest)
	switch {
	case err == nil && string(latest) == string(data):
		return nil
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("read snapshot: %w", err)
	}

	if data == nil {
		data = []byte{}
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO snapshots (name, reason, data, written_at) VALUES (?, ?, ?, ?)`,
		name,
		core.ChangeReason(ctx, "update "+name),
		data,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}

	if r.config.Logger != nil {
		r.config.Logger.Debug("appended snapshot", "name", name, "bytes", len(data))
	}
	return nil
}

// History lists the stored revisions of the named document, newest first.
// Revision ids are the snapshot numbers.
func (r *Repository) History(ctx context.Context, name string) ([]core.Revision, error) {
	db, err := r.handle()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, reason, written_at FROM snapshots WHERE name = ? ORDER BY id DESC`, name,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var revs []core.Revision
	for rows.Next() {
		var (
			number  int64
			rev     core.Revision
			written string
		)
		if err := rows.Scan(&number, &rev.Reason, &written); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		rev.ID = strconv.FormatInt(number, 10)
		if t, err := time.Parse(time.RFC3339Nano, written); err == nil {
			rev.When = t
		}
		revs = append(revs, rev)
	}
	return revs, rows.Err()
}

// Snapshot returns the document as stored under the given revision number.
func (r *Repository) Snapshot(ctx context.Context, name string, number int64) ([]byte, error) {
	db, err := r.handle()
	if err != nil {
		return nil, err
	}
	var data []byte
	err = db.QueryRowContext(ctx,
		`SELECT data FROM snapshots WHERE name = ? AND id = ?`, name, number,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("revision %d of %s: %w", number, name, os.ErrNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("read revision: %w", err)
	}
	return data, nil
}

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Path     string `json:"path"`
	Open     bool   `json:"open"`
	ReadOnly bool   `json:"read_only"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RepositoryState{Path: r.config.Path, Open: r.db != nil, ReadOnly: r.config.ReadOnly}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "sqlite-repository"
}

var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)
var _ core.Repository = (*Repository)(nil)
var _ core.Versioned = (*Repository)(nil)
