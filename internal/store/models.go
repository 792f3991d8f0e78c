package store

import (
	"database/sql"

	"media-dedup/internal/mediatypes"
)

// FileRecord is one cataloged file. Path is relative to the scanned root
// and is the stable identity of the record across re-scans; ID is the
// database row id and survives updates in place.
//
// The hash columns are nullable: a record with empty strong hashes is a
// file that was seen but could not be read (or was a non-media file the
// scan only inventoried), and nil fingerprints mean no decodable pixel
// data was available.
type FileRecord struct {
	ID         int64               `json:"id"`
	Path       string              `json:"path"`
	SizeBytes  int64               `json:"sizeBytes"`
	ModifiedAt int64               `json:"modifiedAt"`
	FileType   mediatypes.FileType `json:"fileType"`

	Blake3 string `json:"blake3,omitempty"`
	Sha256 string `json:"sha256,omitempty"`

	AHash *uint64 `json:"ahash,omitempty"`
	DHash *uint64 `json:"dhash,omitempty"`
	PHash *uint64 `json:"phash,omitempty"`

	FFmpegMetadata string `json:"ffmpegMetadata,omitempty"`
}

// HasFingerprints reports whether at least one perceptual hash is set.
func (f *FileRecord) HasFingerprints() bool {
	return f.AHash != nil || f.DHash != nil || f.PHash != nil
}

// SnapshotRecord is one sampled video frame's fingerprints. Snapshots are
// keyed (file_id, snapshot_index) and replaced wholesale whenever their
// file is re-scanned.
type SnapshotRecord struct {
	FileID        int64 `json:"fileId"`
	SnapshotIndex int   `json:"snapshotIndex"`
	SnapshotCount int   `json:"snapshotCount"`
	AtMs          int64 `json:"atMs"`
	DurationMs    int64 `json:"durationMs"`

	AHash *uint64 `json:"ahash,omitempty"`
	DHash *uint64 `json:"dhash,omitempty"`
	PHash *uint64 `json:"phash,omitempty"`
}

// FilesetMetadata is the catalog's singleton descriptive row.
type FilesetMetadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Notes       string `json:"notes"`
	Status      string `json:"status"`
	RootPath    string `json:"rootPath"`
	CreatedAt   int64  `json:"createdAt"`
}

// Fileset status values written by the scan engine.
const (
	StatusScanning   = "scanning"
	StatusCompleted  = "completed"
	StatusIncomplete = "incomplete"
)

// SQLite INTEGER is signed 64-bit, so the unsigned fingerprint bit
// patterns round-trip through a cast.
func hashToSQL(h *uint64) any {
	if h == nil {
		return nil
	}
	return int64(*h)
}

func hashFromSQL(n sql.NullInt64) *uint64 {
	if !n.Valid {
		return nil
	}
	v := uint64(n.Int64)
	return &v
}

func textToSQL(s string) any {
	if s == "" {
		return nil
	}
	return s
}
