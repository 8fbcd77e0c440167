// Package blob stores binary attachments (voice recordings, food photos) in
// a dedicated SQLite database, separate from the record database so large
// payloads never sit in the same file as the journal tables.
//
// Blobs are addressed by a path of the form "<owner>/<filename>", where owner
// is the child the attachment belongs to.
package blob

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"

	"github.com/distincto/journal/internal/common"
	"github.com/distincto/journal/internal/journal/blob/migrations"
	"github.com/distincto/journal/internal/logging"

	_ "modernc.org/sqlite"
)

// Blob is a stored attachment.
type Blob struct {
	Path        string
	Data        []byte
	ContentType string

	// Timestamp is the save time in Unix milliseconds.
	Timestamp int64
}

// BlobInfo describes a stored blob without carrying its payload.
type BlobInfo struct {
	Path        string
	ContentType string
	Timestamp   int64
}

// Store owns the blob database connection. Safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	dsn    string
	logger logging.Logger
	db     *sql.DB

	// now is a seam for tests.
	now func() time.Time
}

func New(dsn string, logger logging.Logger) *Store {
	return &Store{dsn: dsn, logger: logger, now: time.Now}
}

// RunMigrations applies the embedded blob migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// Initialize opens the database and applies migrations. Idempotent.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}
	return s.open(ctx)
}

func (s *Store) open(ctx context.Context) error {
	db, err := sql.Open("sqlite", s.dsn)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorageInit, err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return fmt.Errorf("%w: %v", common.ErrStorageInit, err)
	}

	s.db = db
	s.logger.Info(ctx, "blob database ready", "dsn", s.dsn)
	return nil
}

// Save stores data under "<owner>/<filename>", generating a random filename
// when none is given, and returns the resulting path. Saving to an existing
// path overwrites the previous blob.
func (s *Store) Save(ctx context.Context, owner, filename string, data []byte, contentType string) (string, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return "", err
	}
	if filename == "" {
		filename = uuid.New().String()
	}
	path := owner + "/" + filename

	_, err = db.ExecContext(ctx,
		`INSERT OR REPLACE INTO blobs (path, data, content_type, timestamp) VALUES (?, ?, ?, ?)`,
		path, data, contentType, s.now().UnixMilli())
	if err != nil {
		return "", fmt.Errorf("failed to save blob %q: %w", path, common.ClassifyWriteError(err))
	}
	return path, nil
}

// Get returns the blob at path, or (nil, nil) when it does not exist.
func (s *Store) Get(ctx context.Context, path string) (*Blob, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx, `SELECT path, data, content_type, timestamp FROM blobs WHERE path = ?`, path)
	b := &Blob{}
	err = row.Scan(&b.Path, &b.Data, &b.ContentType, &b.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get blob %q: %w", path, err)
	}
	return b, nil
}

// Delete removes the blob at path; deleting a missing path is not an error.
func (s *Store) Delete(ctx context.Context, path string) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM blobs WHERE path = ?`, path); err != nil {
		return fmt.Errorf("failed to delete blob %q: %w", path, common.ClassifyWriteError(err))
	}
	return nil
}

// List returns metadata for every blob whose path starts with prefix, in
// lexical path order. An empty prefix lists everything. Payloads stay in the
// database; fetch them with Get.
func (s *Store) List(ctx context.Context, prefix string) ([]BlobInfo, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT path, content_type, timestamp FROM blobs ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("failed to list blobs: %w", err)
	}
	defer rows.Close()

	var result []BlobInfo
	for rows.Next() {
		var info BlobInfo
		if err := rows.Scan(&info.Path, &info.ContentType, &info.Timestamp); err != nil {
			return nil, err
		}
		if strings.HasPrefix(info.Path, prefix) {
			result = append(result, info)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteAll removes every blob.
func (s *Store) DeleteAll(ctx context.Context) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM blobs`); err != nil {
		return fmt.Errorf("failed to clear blobs: %w", common.ClassifyWriteError(err))
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// conn returns the live connection. A handle that went stale since the last
// operation is reopened once; a store that was never initialized is not.
func (s *Store) conn(ctx context.Context) (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil, common.ErrStorageUnavailable
	}
	if err := s.db.PingContext(ctx); err != nil {
		if !common.IsConnClosed(err) {
			return nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
		}
		s.logger.Warn(ctx, "blob database connection lost, reopening", "dsn", s.dsn)
		s.db = nil
		if err := s.open(ctx); err != nil {
			return nil, err
		}
	}
	return s.db, nil
}
