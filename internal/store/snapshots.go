package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

func replaceSnapshotsTx(tx *sql.Tx, fileID int64, snaps []SnapshotRecord) error {
	ctx := context.Background()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM file_snapshots WHERE file_id = ?", fileID); err != nil {
		return err
	}

	for i := range snaps {
		snap := &snaps[i]
		_, err := tx.ExecContext(ctx, `
			INSERT INTO file_snapshots (file_id, snapshot_index, snapshot_count, at_ms, duration_ms, ahash, dhash, phash)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			fileID,
			snap.SnapshotIndex,
			snap.SnapshotCount,
			snap.AtMs,
			snap.DurationMs,
			hashToSQL(snap.AHash),
			hashToSQL(snap.DHash),
			hashToSQL(snap.PHash),
		)
		if err != nil {
			return err
		}
		snap.FileID = fileID
	}
	return nil
}

// ReplaceSnapshots swaps a file's snapshot set for a new one in a single
// transaction.
func (s *Store) ReplaceSnapshots(ctx context.Context, fileID int64, snaps []SnapshotRecord) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("replace_snapshots", start, err) }()

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		return replaceSnapshotsTx(tx, fileID, snaps)
	})
	return err
}

// ListSnapshotsByPath returns a file's snapshot fingerprints ordered by
// snapshot index. Returns ErrNotFound when the path is not cataloged; a
// cataloged file with no snapshots yields an empty slice.
func (s *Store) ListSnapshotsByPath(ctx context.Context, path string) ([]SnapshotRecord, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("list_snapshots", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var fileID int64
	err = s.db.QueryRowContext(ctx,
		"SELECT id FROM files WHERE path = ?", path).Scan(&fileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrNotFound
			return nil, fmt.Errorf("file %s: %w", path, ErrNotFound)
		}
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT file_id, snapshot_index, snapshot_count, at_ms, duration_ms, ahash, dhash, phash
		FROM file_snapshots WHERE file_id = ?
		ORDER BY snapshot_index ASC`, fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []SnapshotRecord{}
	for rows.Next() {
		var snap SnapshotRecord
		var ahash, dhash, phash sql.NullInt64
		if scanErr := rows.Scan(
			&snap.FileID, &snap.SnapshotIndex, &snap.SnapshotCount,
			&snap.AtMs, &snap.DurationMs, &ahash, &dhash, &phash,
		); scanErr != nil {
			err = scanErr
			return nil, scanErr
		}
		snap.AHash = hashFromSQL(ahash)
		snap.DHash = hashFromSQL(dhash)
		snap.PHash = hashFromSQL(phash)
		out = append(out, snap)
	}
	err = rows.Err()
	return out, err
}
