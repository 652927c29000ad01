package sqlite

import (
	"context"
	"database/sql"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/complaints/pkg/types"
)

// Compile-time interface check: Backend must implement Store.
var _ types.Store = (*Backend)(nil)

// Backend implements types.Store on a single SQLite file. One connection is
// held for the lifetime of the attachment; WithTx serializes units of work.
type Backend struct {
	mu       sync.Mutex
	attached bool
	config   types.Config
	path     string
	db       *sql.DB
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{}
}

// Attach opens the database described by config, creating DataDir and the
// schema if they do not exist. Existing data is kept.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return &types.StorageError{Op: "create data dir", Err: err}
	}

	path := filepath.Join(dataDir, config.DBFileName())
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return &types.StorageError{Op: "open database", Err: err}
	}
	// Pragmas are per connection; a single connection keeps them in force.
	db.SetMaxOpenConns(1)

	if err := initSchema(context.Background(), db); err != nil {
		db.Close()
		return err
	}

	b.db = db
	b.path = path
	b.config = config
	b.attached = true
	return nil
}

// Detach releases the database handle. After Detach, WithTx and Init return
// ErrStoreDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	b.attached = false
	db := b.db
	b.db = nil
	b.path = ""
	if err := db.Close(); err != nil {
		return &types.StorageError{Op: "close database", Err: err}
	}
	return nil
}

// Path returns the database file path, or "" when detached.
func (b *Backend) Path() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.path
}

// Init creates any missing tables and indexes. Safe to call repeatedly.
func (b *Backend) Init(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}
	return initSchema(ctx, b.db)
}

// WithTx runs fn inside a transaction. The transaction commits before WithTx
// returns when fn succeeds and rolls back when fn returns an error.
func (b *Backend) WithTx(ctx context.Context, fn func(types.Tables) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return &types.StorageError{Op: "begin transaction", Err: err}
	}
	defer tx.Rollback()

	if err := fn(&tables{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return &types.StorageError{Op: "commit transaction", Err: err}
	}
	return nil
}

// initSchema executes the table and index DDL.
func initSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaDDL {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return &types.StorageError{Op: "create schema", Err: err}
		}
	}
	for _, stmt := range indexDDL {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return &types.StorageError{Op: "create index", Err: err}
		}
	}
	return nil
}

// dsn builds a modernc.org/sqlite connection URI with foreign keys
// enforced and a busy timeout. The path is percent-escaped so characters
// such as '?' and '#' stay part of the file name.
func dsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	u := &url.URL{
		Scheme:   "file",
		OmitHost: true,
		Path:     filepath.ToSlash(path),
		RawQuery: q.Encode(),
	}
	return u.String()
}
