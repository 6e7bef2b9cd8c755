package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/curator/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/curator/internal/core/domain"
	"github.com/custodia-labs/curator/internal/core/ports/driven"
)

// DatabaseFile is the file name of the database inside the data directory.
const DatabaseFile = "curator.db"

var _ driven.Storage = (*Store)(nil)

// Store is a SQLite-backed driven.Storage.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the database in dataDir and applies pending
// migrations. If dataDir is empty, defaults to ~/.curator/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".curator", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_blobs.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

func clean(p string) string {
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}

// Read returns the bytes stored at p.
func (s *Store) Read(ctx context.Context, p string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT data FROM blobs WHERE path = ?", clean(p)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.StorageError{Op: "read", Path: p, Err: domain.ErrNotFound}
	}
	if err != nil {
		return nil, &domain.StorageError{Op: "read", Path: p, Err: err}
	}
	return data, nil
}

// Write stores data at p, replacing any previous row.
func (s *Store) Write(ctx context.Context, p string, data []byte) error {
	if data == nil {
		data = []byte{}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blobs (path, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(path) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, clean(p), data)
	if err != nil {
		return &domain.StorageError{Op: "write", Path: p, Err: err}
	}
	return nil
}

// Exists reports whether p holds data or prefixes a stored path.
func (s *Store) Exists(ctx context.Context, p string) (bool, error) {
	key := clean(p)
	query, args := "SELECT 1 FROM blobs LIMIT 1", []any{}
	if key != "" {
		query = "SELECT 1 FROM blobs WHERE path = ? OR substr(path, 1, ?) = ? LIMIT 1"
		args = prefixArgs(key)
	}

	var one int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, &domain.StorageError{Op: "exists", Path: p, Err: err}
	}
	return true, nil
}

// Mirror replaces dst with a copy of everything under src.
func (s *Store) Mirror(ctx context.Context, src, dst string) error {
	from, to := clean(src), clean(dst)
	if from == to {
		return fmt.Errorf("%w: mirror %s onto itself", domain.ErrInvalidInput, src)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &domain.StorageError{Op: "mirror", Path: src, Err: err}
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := removeTx(ctx, tx, to); err != nil {
		return &domain.StorageError{Op: "mirror", Path: dst, Err: err}
	}

	// Rows keep their path tail; only the leading src segment is swapped.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO blobs (path, data, updated_at)
		SELECT CASE WHEN path = ? THEN ? ELSE ? || substr(path, ?) END, data, updated_at
		FROM blobs WHERE path = ? OR substr(path, 1, ?) = ?
	`, append([]any{from, to, to + "/", utf8.RuneCountInString(from) + 2}, prefixArgs(from)...)...)
	if err != nil {
		return &domain.StorageError{Op: "mirror", Path: src, Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &domain.StorageError{Op: "mirror", Path: src, Err: err}
	}
	return nil
}

// Remove deletes p and everything under it.
func (s *Store) Remove(ctx context.Context, p string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &domain.StorageError{Op: "remove", Path: p, Err: err}
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := removeTx(ctx, tx, clean(p)); err != nil {
		return &domain.StorageError{Op: "remove", Path: p, Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &domain.StorageError{Op: "remove", Path: p, Err: err}
	}
	return nil
}

// Mkdir is a no-op: directories are implicit.
func (s *Store) Mkdir(_ context.Context, _ string) error {
	return nil
}

// Count returns the number of stored rows.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM blobs").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting blobs: %w", err)
	}
	return n, nil
}

func removeTx(ctx context.Context, tx *sql.Tx, key string) error {
	if key == "" {
		_, err := tx.ExecContext(ctx, "DELETE FROM blobs")
		return err
	}
	_, err := tx.ExecContext(ctx, "DELETE FROM blobs WHERE path = ? OR substr(path, 1, ?) = ?", prefixArgs(key)...)
	return err
}

// prefixArgs binds the exact-path and directory-prefix placeholders for key.
func prefixArgs(key string) []any {
	dir := key + "/"
	return []any{key, utf8.RuneCountInString(dir), dir}
}
