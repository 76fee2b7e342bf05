/*
Package sqlite provides the SQLite-backed key-value store for the journal.

The journal is one JSON document saved under one key, the same shape the browser
version kept in localStorage. SQLite gives atomic replacement of that document and
lets the feed server read while the CLI writes (WAL mode).

USAGE:

	st, err := sqlite.New(settings.DatabasePath())
	if err != nil {
	    return err
	}
	defer st.Close()

Use ":memory:" for a throwaway database.
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tartampluch/go-together/internal/config"
	"github.com/tartampluch/go-together/internal/store"
	_ "modernc.org/sqlite"
)

const (
	driverName = "sqlite"
	memoryPath = ":memory:"
	dsnPragmas = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

	schema = `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at TEXT NOT NULL
	);`

	querySelect = `SELECT value FROM kv WHERE key = ?`
	queryUpsert = `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	queryDelete = `DELETE FROM kv WHERE key = ?`
)

// Store implements store.Store on a single SQLite table.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	path   string
	closed bool
}

var _ store.Store = (*Store)(nil)

// New opens (and creates if needed) the database at dbPath.
func New(dbPath string) (*Store, error) {
	dsn := memoryPath
	if dbPath != memoryPath {
		if err := os.MkdirAll(filepath.Dir(dbPath), config.DirPermUserRWX); err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrCreateDir, err)
		}
		dsn = "file:" + dbPath + dsnPragmas
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrStoreOpen, err)
	}
	// Each connection to :memory: is its own database.
	if dbPath == memoryPath {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", config.ErrStoreOpen, err)
	}

	if dbPath != memoryPath {
		_ = os.Chmod(dbPath, config.FilePermUserRW)
	}

	slog.Debug(config.MsgStoreOpened,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyPath, dbPath,
	)
	return &Store{db: db, path: dbPath}, nil
}

// Path returns the database location the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// Load returns the blob saved under key or store.ErrNotFound.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, store.ErrClosed
	}

	var value []byte
	err := s.db.QueryRowContext(ctx, querySelect, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrStoreRead, err)
	}
	return value, nil
}

// Save replaces the blob under key.
func (s *Store) Save(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.ErrClosed
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx, queryUpsert, key, value, now); err != nil {
		return fmt.Errorf("%s: %w", config.ErrStoreWrite, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.ErrClosed
	}

	if _, err := s.db.ExecContext(ctx, queryDelete, key); err != nil {
		return fmt.Errorf("%s: %w", config.ErrStoreWrite, err)
	}
	return nil
}

// Close closes the database. Further calls return store.ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
