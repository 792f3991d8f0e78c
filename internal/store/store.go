package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"media-dedup/internal/logging"
	"media-dedup/internal/metrics"
)

// Default timeout for individual queries.
const defaultTimeout = 5 * time.Second

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Store persists the scan catalog: file records, their snapshot
// fingerprints, and the fileset metadata singleton. All writes from a
// scan go through one Store; SQLite's WAL mode keeps readers unblocked
// while a scan is writing.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Open opens (creating if needed) the catalog database at dbPath. The
// parent directory must already exist and be writable.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	logging.Info("catalog database: %s", dbPath)

	// busy_timeout prevents "database is locked" errors when a reader
	// races the scan writer; foreign_keys makes the snapshot CASCADE work.
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_temp_store=MEMORY&_busy_timeout=5000&_foreign_keys=on", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("closing database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, dbPath: dbPath}
	if err := s.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("closing database after schema failure: %v", closeErr)
		}
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return s, nil
}

func (s *Store) initialize(ctx context.Context) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("initialize_schema", start, err) }()

	schema := `
	CREATE TABLE IF NOT EXISTS files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT NOT NULL UNIQUE,
		size_bytes INTEGER NOT NULL DEFAULT 0,
		modified_at INTEGER NOT NULL,
		file_type TEXT NOT NULL,
		blake3 TEXT,
		sha256 TEXT,
		ahash INTEGER,
		dhash INTEGER,
		phash INTEGER,
		ffmpeg_metadata TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
		updated_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	CREATE INDEX IF NOT EXISTS idx_files_blake3 ON files(blake3);
	CREATE INDEX IF NOT EXISTS idx_files_sha256 ON files(sha256);
	CREATE INDEX IF NOT EXISTS idx_files_type ON files(file_type);

	CREATE TABLE IF NOT EXISTS file_snapshots (
		file_id INTEGER NOT NULL,
		snapshot_index INTEGER NOT NULL,
		snapshot_count INTEGER NOT NULL,
		at_ms INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		ahash INTEGER,
		dhash INTEGER,
		phash INTEGER,
		PRIMARY KEY (file_id, snapshot_index),
		FOREIGN KEY (file_id) REFERENCES files(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS fileset (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		name TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT '',
		root_path TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	INSERT OR IGNORE INTO fileset (id) VALUES (1);
	`

	_, err = s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path the store was opened with.
func (s *Store) Path() string {
	return s.dbPath
}

// Checkpoint flushes the WAL back into the main database file. Called
// after a scan finishes so the catalog is a single portable file.
func (s *Store) Checkpoint(ctx context.Context) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("checkpoint", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err = s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)")
	return err
}

// Vacuum rebuilds the database file, reclaiming space after deletions.
func (s *Store) Vacuum(ctx context.Context) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("vacuum", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	_, err = s.db.ExecContext(ctx, "VACUUM")
	return err
}

// UpdateDBMetrics publishes connection pool gauges.
func (s *Store) UpdateDBMetrics() {
	metrics.DBConnectionsOpen.Set(float64(s.db.Stats().OpenConnections))
}

// recordQuery records query metrics.
func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil && !errors.Is(err, ErrNotFound) {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}

// inTx runs fn inside a transaction, committing on nil and rolling back
// on error.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	txStart := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		metrics.DBTransactionDuration.WithLabelValues("rollback").Observe(time.Since(txStart).Seconds())
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback also failed: %w", rbErr))
		}
		return err
	}

	metrics.DBTransactionDuration.WithLabelValues("commit").Observe(time.Since(txStart).Seconds())
	return tx.Commit()
}
