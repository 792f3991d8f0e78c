package store

import (
	"context"
	"time"
)

// GetFilesetMetadata reads the singleton metadata row. A freshly created
// catalog returns zero-value fields with an empty status.
func (s *Store) GetFilesetMetadata(ctx context.Context) (*FilesetMetadata, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_fileset", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var meta FilesetMetadata
	err = s.db.QueryRowContext(ctx, `
		SELECT name, description, notes, status, root_path, created_at
		FROM fileset WHERE id = 1`).Scan(
		&meta.Name, &meta.Description, &meta.Notes,
		&meta.Status, &meta.RootPath, &meta.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

// SetFilesetMetadata overwrites the metadata row wholesale, status
// included. Only the creation time survives; callers that want to keep
// an existing field must read it back first.
func (s *Store) SetFilesetMetadata(ctx context.Context, meta *FilesetMetadata) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("set_fileset", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = s.db.ExecContext(ctx, `
		UPDATE fileset SET name = ?, description = ?, notes = ?, status = ?, root_path = ?
		WHERE id = 1`,
		meta.Name, meta.Description, meta.Notes, meta.Status, meta.RootPath,
	)
	return err
}

// SetFilesetStatus records the scan lifecycle state ("scanning",
// "completed", "incomplete").
func (s *Store) SetFilesetStatus(ctx context.Context, status string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("set_fileset_status", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = s.db.ExecContext(ctx,
		"UPDATE fileset SET status = ? WHERE id = 1", status)
	return err
}
