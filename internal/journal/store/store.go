// Package store wires the local SQLite database: it opens the connection,
// applies embedded goose migrations and vends the record repositories.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"

	"github.com/distincto/journal/internal/common"
	"github.com/distincto/journal/internal/dbx"
	"github.com/distincto/journal/internal/journal/repositories/children"
	"github.com/distincto/journal/internal/journal/repositories/entries"
	"github.com/distincto/journal/internal/journal/repositories/fooditems"
	"github.com/distincto/journal/internal/journal/repositories/reports"
	"github.com/distincto/journal/internal/journal/repositories/syncmeta"
	"github.com/distincto/journal/internal/journal/store/migrations"
	"github.com/distincto/journal/internal/logging"

	_ "modernc.org/sqlite"
)

// Store owns the journal database connection and its repositories. All
// methods are safe for concurrent use.
//
// The repositories are bound to the store, not to a connection snapshot: a
// handle that went stale between operations is reopened once on the next
// call, so long-lived holders (services, the sync coordinator) never end up
// pinned to a closed connection.
type Store struct {
	mu     sync.Mutex
	dsn    string
	logger logging.Logger
	db     *sql.DB

	Children  children.Repository
	Entries   entries.Repository
	FoodItems fooditems.Repository
	Reports   reports.Repository
	SyncMeta  syncmeta.Repository
}

func New(dsn string, logger logging.Logger) *Store {
	s := &Store{dsn: dsn, logger: logger}
	live := &liveDB{s: s}
	s.Children = children.NewSQLiteRepository(live)
	s.Entries = entries.NewSQLiteRepository(live)
	s.FoodItems = fooditems.NewSQLiteRepository(live)
	s.Reports = reports.NewSQLiteRepository(live)
	s.SyncMeta = syncmeta.NewSQLiteRepository(live)
	return s
}

// RunMigrations applies the embedded migrations. Safe to run repeatedly;
// goose tracks the applied version in goose_db_version.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// Initialize opens the database and brings the schema up to date. Calling it
// again on an initialized store is a no-op, so callers do not need to track
// whether the store is already open.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}
	return s.open(ctx)
}

// Ensure verifies the connection is alive, reopening it once if a previous
// Close (or a failed operation) left it unusable.
func (s *Store) Ensure(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		err := s.db.PingContext(ctx)
		if err == nil {
			return nil
		}
		if !common.IsConnClosed(err) {
			return fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
		}
		s.logger.Warn(ctx, "journal database connection lost, reopening", "dsn", s.dsn)
		s.db = nil
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
		if strings.Contains(err.Error(), "database is locked") {
			return fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
		}
		return fmt.Errorf("%w: %v", common.ErrStorageInit, err)
	}

	s.db = db
	s.logger.Info(ctx, "journal database ready", "dsn", s.dsn)
	return nil
}

// handle returns the live connection, running the one-shot reopen when the
// previous handle is stale or absent.
func (s *Store) handle(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(ctx); err != nil {
		return nil, err
	}
	return s.DB(), nil
}

// DB exposes the raw connection for transactional helpers and tests.
func (s *Store) DB() *sql.DB {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db
}

// DeleteAllData wipes every record table in a single transaction. The sync
// bookkeeping keys are cleared too, since last-sync state is meaningless for
// an empty database; other metadata (the key salt) survives the wipe.
func (s *Store) DeleteAllData(ctx context.Context) error {
	db, err := s.handle(ctx)
	if err != nil {
		return err
	}
	return dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, table := range []string{"journal_entries", "food_items", "reports", "children"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, common.ClassifyWriteError(err))
			}
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM sync_metadata WHERE key IN (?, ?, ?, ?, ?)`,
			syncmeta.KeyLastSync, syncmeta.KeyPendingSync, syncmeta.KeyIsOnline,
			syncmeta.KeyLeaseOwner, syncmeta.KeyLeaseExpiry)
		if err != nil {
			return fmt.Errorf("failed to clear sync metadata: %w", common.ClassifyWriteError(err))
		}
		return nil
	})
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

// liveDB adapts the store to dbx.DBTX so repositories always reach the
// current connection instead of the one that existed when they were built.
type liveDB struct {
	s *Store
}

func (l *liveDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	db, err := l.s.handle(ctx)
	if err != nil {
		return nil, err
	}
	return db.ExecContext(ctx, query, args...)
}

func (l *liveDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	db, err := l.s.handle(ctx)
	if err != nil {
		return nil, err
	}
	return db.QueryContext(ctx, query, args...)
}

func (l *liveDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	db, err := l.s.handle(ctx)
	if err != nil {
		// *sql.Row has no error slot; run the query against a closed
		// handle so the Scan reports the connection failure.
		db = deadDB
	}
	return db.QueryRowContext(ctx, query, args...)
}

// deadDB is a permanently closed handle backing QueryRowContext when no live
// connection can be produced.
var deadDB = func() *sql.DB {
	db, _ := sql.Open("sqlite", ":memory:")
	_ = db.Close()
	return db
}()
