package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Pagination bounds. Requests beyond them are clamped, not rejected, so
// a caller paging blindly cannot run the store out of memory.
const (
	DefaultListLimit = 100
	MaxListLimit     = 10_000
	MaxListOffset    = 10_000_000
)

// ClampLimit normalizes a requested page size into [1, MaxListLimit],
// substituting DefaultListLimit for zero or negative requests.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

// ClampOffset normalizes a requested offset into [0, MaxListOffset].
func ClampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	if offset > MaxListOffset {
		return MaxListOffset
	}
	return offset
}

const fileColumns = "id, path, size_bytes, modified_at, file_type, blake3, sha256, ahash, dhash, phash, ffmpeg_metadata"

func scanFileRow(row interface{ Scan(...any) error }) (*FileRecord, error) {
	var f FileRecord
	var blake3, sha256, meta sql.NullString
	var ahash, dhash, phash sql.NullInt64

	err := row.Scan(
		&f.ID, &f.Path, &f.SizeBytes, &f.ModifiedAt, &f.FileType,
		&blake3, &sha256, &ahash, &dhash, &phash, &meta,
	)
	if err != nil {
		return nil, err
	}

	f.Blake3 = blake3.String
	f.Sha256 = sha256.String
	f.AHash = hashFromSQL(ahash)
	f.DHash = hashFromSQL(dhash)
	f.PHash = hashFromSQL(phash)
	f.FFmpegMetadata = meta.String
	return &f, nil
}

// upsertFileTx inserts or updates a file record keyed by path. An
// existing row keeps its id; only the observed attributes change.
func upsertFileTx(tx *sql.Tx, f *FileRecord) (int64, error) {
	query := `
	INSERT INTO files (path, size_bytes, modified_at, file_type, blake3, sha256, ahash, dhash, phash, ffmpeg_metadata, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, strftime('%s', 'now'))
	ON CONFLICT(path) DO UPDATE SET
		size_bytes = excluded.size_bytes,
		modified_at = excluded.modified_at,
		file_type = excluded.file_type,
		blake3 = excluded.blake3,
		sha256 = excluded.sha256,
		ahash = excluded.ahash,
		dhash = excluded.dhash,
		phash = excluded.phash,
		ffmpeg_metadata = excluded.ffmpeg_metadata,
		updated_at = strftime('%s', 'now')
	`

	_, err := tx.ExecContext(context.Background(), query,
		f.Path,
		f.SizeBytes,
		f.ModifiedAt,
		f.FileType,
		textToSQL(f.Blake3),
		textToSQL(f.Sha256),
		hashToSQL(f.AHash),
		hashToSQL(f.DHash),
		hashToSQL(f.PHash),
		f.FFmpegMetadata,
	)
	if err != nil {
		return 0, err
	}

	var id int64
	if err := tx.QueryRowContext(context.Background(),
		"SELECT id FROM files WHERE path = ?", f.Path).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// UpsertFile writes one file record and returns its row id. Re-scanning
// an unchanged path updates the existing row in place.
func (s *Store) UpsertFile(ctx context.Context, f *FileRecord) (int64, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("upsert_file", start, err) }()

	var id int64
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		var txErr error
		id, txErr = upsertFileTx(tx, f)
		return txErr
	})
	if err != nil {
		return 0, err
	}
	f.ID = id
	return id, nil
}

// PutFileWithSnapshots writes a file record and its snapshot fingerprints
// atomically: readers never observe the file row with a stale or partial
// snapshot set.
func (s *Store) PutFileWithSnapshots(ctx context.Context, f *FileRecord, snaps []SnapshotRecord) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("put_file_with_snapshots", start, err) }()

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		id, txErr := upsertFileTx(tx, f)
		if txErr != nil {
			return txErr
		}
		f.ID = id
		return replaceSnapshotsTx(tx, id, snaps)
	})
	return err
}

// GetFileByPath looks up a single record. Returns ErrNotFound when the
// path is not cataloged.
func (s *Store) GetFileByPath(ctx context.Context, path string) (*FileRecord, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_file_by_path", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+fileColumns+" FROM files WHERE path = ?", path)

	f, scanErr := scanFileRow(row)
	if scanErr != nil {
		if errors.Is(scanErr, sql.ErrNoRows) {
			err = ErrNotFound
			return nil, fmt.Errorf("file %s: %w", path, ErrNotFound)
		}
		err = scanErr
		return nil, scanErr
	}
	return f, nil
}

// ListFiles returns a page of catalog rows ordered by row id, so pages
// taken at any size reassemble into the same overall sequence. With
// duplicatesOnly set, only files whose strong hash is shared by at least
// one other file are returned.
func (s *Store) ListFiles(ctx context.Context, duplicatesOnly bool, limit, offset int) ([]FileRecord, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("list_files", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := "SELECT " + fileColumns + " FROM files"
	if duplicatesOnly {
		query += ` WHERE blake3 IS NOT NULL AND blake3 IN (
			SELECT blake3 FROM files WHERE blake3 IS NOT NULL
			GROUP BY blake3 HAVING COUNT(*) > 1
		)`
	}
	query += " ORDER BY id ASC LIMIT ? OFFSET ?"

	rows, err := s.db.QueryContext(ctx, query, ClampLimit(limit), ClampOffset(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FileRecord
	for rows.Next() {
		f, scanErr := scanFileRow(rows)
		if scanErr != nil {
			err = scanErr
			return nil, scanErr
		}
		out = append(out, *f)
	}
	err = rows.Err()
	return out, err
}

// ListAllFiles streams every catalog row ordered by row id. Used by the
// clustering queries, which need the whole population.
func (s *Store) ListAllFiles(ctx context.Context) ([]FileRecord, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("list_all_files", start, err) }()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+fileColumns+" FROM files ORDER BY id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FileRecord
	for rows.Next() {
		f, scanErr := scanFileRow(rows)
		if scanErr != nil {
			err = scanErr
			return nil, scanErr
		}
		out = append(out, *f)
	}
	err = rows.Err()
	return out, err
}

// CountFiles returns the number of cataloged files.
func (s *Store) CountFiles(ctx context.Context) (int64, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("count_files", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var n int64
	err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM files").Scan(&n)
	return n, err
}

// DeleteFileByPath removes a record and, via CASCADE, its snapshots.
// Deleting an unknown path is not an error; the returned count is 0.
func (s *Store) DeleteFileByPath(ctx context.Context, path string) (int64, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("delete_file", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := s.db.ExecContext(ctx, "DELETE FROM files WHERE path = ?", path)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
